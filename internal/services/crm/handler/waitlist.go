package handler

import (
	"context"
	"time"

	"atelier-crm/internal/crm"
	"atelier-crm/internal/database/models"
)

type WaitlistParams struct {
	ClientID     int64
	DesiredModel *string
	DesiredTier  *int32
}

// AddToWaitlist creates an active entry for a client. The client must
// exist and at least one of desired model/tier must be given.
func (h *CRMHandler) AddToWaitlist(ctx context.Context, p WaitlistParams) (*models.WaitlistEntry, error) {
	if p.DesiredModel == nil && p.DesiredTier == nil {
		return nil, &crm.ValidationError{Field: "desired", Reason: "desired model or tier is required"}
	}
	if p.DesiredTier != nil && (*p.DesiredTier < 1 || *p.DesiredTier > 4) {
		return nil, &crm.ValidationError{Field: "desiredTier", Reason: "rank must be between 1 and 4"}
	}
	if _, err := h.GetClient(ctx, p.ClientID); err != nil {
		return nil, err
	}

	entry := models.WaitlistEntry{
		ClientID:     p.ClientID,
		DesiredModel: p.DesiredModel,
		DesiredTier:  p.DesiredTier,
		AddedAt:      time.Now().UTC(),
		IsActive:     true,
	}
	if err := h.db.WithContext(ctx).Create(&entry).Error; err != nil {
		return nil, persistenceErr("add to waitlist", err)
	}
	return &entry, nil
}

// DeactivateWaitlistEntry marks an entry inactive; used on allocation
// or cancellation. Entries are never deleted.
func (h *CRMHandler) DeactivateWaitlistEntry(ctx context.Context, id int64) error {
	res := h.db.WithContext(ctx).Model(&models.WaitlistEntry{}).
		Where("id = ? AND is_active = ?", id, true).
		Update("is_active", false)
	if res.Error != nil {
		return persistenceErr("deactivate waitlist entry", res.Error)
	}
	if res.RowsAffected == 0 {
		return crm.ErrNotFound
	}
	return nil
}

func (h *CRMHandler) ListWaitlist(ctx context.Context, activeOnly bool) ([]models.WaitlistEntry, error) {
	query := h.db.WithContext(ctx).Preload("Client")
	if activeOnly {
		query = query.Where("is_active = ?", true)
	}

	var entries []models.WaitlistEntry
	if err := query.Order("added_at asc").Find(&entries).Error; err != nil {
		return nil, persistenceErr("list waitlist", err)
	}
	return entries, nil
}

// WaitlistView decorates an entry with its derived fields: days
// waiting and the freshly computed priority score.
type WaitlistView struct {
	Entry         models.WaitlistEntry `json:"entry"`
	DaysWaiting   int                  `json:"daysWaiting"`
	PriorityScore float64              `json:"priorityScore"`
}

// ListWaitlistScored re-scores entries on every read; no cached score
// survives past one computation cycle. Entries with invalid client
// data are returned unscored rather than dropped.
func (h *CRMHandler) ListWaitlistScored(ctx context.Context, sched *crm.Scheduler) ([]WaitlistView, error) {
	entries, err := h.ListWaitlist(ctx, true)
	if err != nil {
		return nil, err
	}

	views := make([]WaitlistView, 0, len(entries))
	for _, entry := range entries {
		view := WaitlistView{Entry: entry, DaysWaiting: sched.DaysSince(entry.AddedAt)}
		if entry.Client != nil {
			if tier, err := crm.ParseTier(entry.Client.Tier); err == nil {
				if score, err := crm.PriorityScore(tier, view.DaysWaiting, entry.Client.LifetimeSpend); err == nil {
					view.PriorityScore = score
				}
			}
		}
		views = append(views, view)
	}
	return views, nil
}
