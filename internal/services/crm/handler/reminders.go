package handler

import (
	"context"
	"fmt"
	"time"

	"atelier-crm/internal/crm"
	"atelier-crm/internal/database/models"
)

const (
	ReminderTypeFollowUp = "follow-up"
	ReminderTypeCallBack = "call-back"
	ReminderTypeMeeting  = "meeting"
	ReminderTypeCustom   = "custom"
)

func validReminderType(t string) bool {
	switch t {
	case ReminderTypeFollowUp, ReminderTypeCallBack, ReminderTypeMeeting, ReminderTypeCustom:
		return true
	}
	return false
}

type ReminderParams struct {
	ClientID     int64
	ReminderDate time.Time
	Type         string
	Notes        *string
}

func (h *CRMHandler) CreateReminder(ctx context.Context, p ReminderParams) (*models.Reminder, error) {
	if !validReminderType(p.Type) {
		return nil, &crm.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown reminder type %q", p.Type)}
	}
	if p.ReminderDate.IsZero() {
		return nil, &crm.ValidationError{Field: "reminderDate", Reason: "must be set"}
	}
	if _, err := h.GetClient(ctx, p.ClientID); err != nil {
		return nil, err
	}

	reminder := models.Reminder{
		ClientID:     p.ClientID,
		ReminderDate: p.ReminderDate.UTC(),
		Type:         p.Type,
		Notes:        p.Notes,
	}
	if err := h.db.WithContext(ctx).Create(&reminder).Error; err != nil {
		return nil, persistenceErr("create reminder", err)
	}
	return &reminder, nil
}

type ReminderUpdate struct {
	ReminderDate *time.Time
	Type         *string
	Notes        *string
}

func (h *CRMHandler) UpdateReminder(ctx context.Context, id int64, u ReminderUpdate) (*models.Reminder, error) {
	reminder, err := h.getReminder(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if u.ReminderDate != nil {
		updates["reminder_date"] = u.ReminderDate.UTC()
	}
	if u.Type != nil {
		if !validReminderType(*u.Type) {
			return nil, &crm.ValidationError{Field: "type", Reason: fmt.Sprintf("unknown reminder type %q", *u.Type)}
		}
		updates["type"] = *u.Type
	}
	if u.Notes != nil {
		updates["notes"] = *u.Notes
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(reminder).Updates(updates).Error; err != nil {
			return nil, persistenceErr("update reminder", err)
		}
	}
	return reminder, nil
}

// CompleteReminder sets isCompleted and completedAt together; the two
// fields never disagree.
func (h *CRMHandler) CompleteReminder(ctx context.Context, id int64) (*models.Reminder, error) {
	reminder, err := h.getReminder(ctx, id)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	updates := map[string]interface{}{
		"is_completed": true,
		"completed_at": now,
	}
	if err := h.db.WithContext(ctx).Model(reminder).Updates(updates).Error; err != nil {
		return nil, persistenceErr("complete reminder", err)
	}
	reminder.IsCompleted = true
	reminder.CompletedAt = &now
	return reminder, nil
}

// SnoozeReminder pushes the due date forward and reopens the reminder,
// clearing completedAt with isCompleted.
func (h *CRMHandler) SnoozeReminder(ctx context.Context, id int64, days int) (*models.Reminder, error) {
	if days <= 0 {
		return nil, &crm.ValidationError{Field: "days", Reason: "must be positive"}
	}
	reminder, err := h.getReminder(ctx, id)
	if err != nil {
		return nil, err
	}

	newDate := reminder.ReminderDate.UTC().AddDate(0, 0, days)
	updates := map[string]interface{}{
		"reminder_date": newDate,
		"is_completed":  false,
		"completed_at":  nil,
	}
	if err := h.db.WithContext(ctx).Model(reminder).Updates(updates).Error; err != nil {
		return nil, persistenceErr("snooze reminder", err)
	}
	reminder.ReminderDate = newDate
	reminder.IsCompleted = false
	reminder.CompletedAt = nil
	return reminder, nil
}

func (h *CRMHandler) DeleteReminder(ctx context.Context, id int64) error {
	res := h.db.WithContext(ctx).Delete(&models.Reminder{}, id)
	if res.Error != nil {
		return persistenceErr("delete reminder", res.Error)
	}
	if res.RowsAffected == 0 {
		return crm.ErrNotFound
	}
	return nil
}

type ReminderFilter struct {
	ClientID  *int64
	Pending   bool
	DueBefore *time.Time
}

func (h *CRMHandler) ListReminders(ctx context.Context, filter ReminderFilter) ([]models.Reminder, error) {
	query := h.db.WithContext(ctx).Preload("Client")
	if filter.ClientID != nil {
		query = query.Where("client_id = ?", *filter.ClientID)
	}
	if filter.Pending {
		query = query.Where("is_completed = ?", false)
	}
	if filter.DueBefore != nil {
		query = query.Where("reminder_date <= ?", filter.DueBefore.UTC())
	}

	var reminders []models.Reminder
	if err := query.Order("reminder_date asc").Find(&reminders).Error; err != nil {
		return nil, persistenceErr("list reminders", err)
	}
	return reminders, nil
}

func (h *CRMHandler) getReminder(ctx context.Context, id int64) (*models.Reminder, error) {
	var reminder models.Reminder
	if err := h.db.WithContext(ctx).First(&reminder, id).Error; err != nil {
		return nil, persistenceErr("get reminder", err)
	}
	return &reminder, nil
}
