package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"atelier-crm/internal/crm"
	"atelier-crm/internal/database/models"
	"atelier-crm/internal/logger"
)

const (
	CRM_CACHE_PREFIX  = "crm:"
	CLIENTS_CACHE_KEY = "crm:clients"
	WATCHES_CACHE_KEY = "crm:watches"
	CACHE_TTL_SHORT   = 5 * time.Minute
	CACHE_TTL_MEDIUM  = 30 * time.Minute
)

// CRMHandler is the persistence collaborator for the allocation
// engine: it fetches snapshots and owns all primary-record writes.
// Engine snapshots are always read fresh so no score goes stale.
type CRMHandler struct {
	db    *gorm.DB
	redis *redis.Client
	log   *logger.Logger
}

func NewCRMHandler(db *gorm.DB, redisClient *redis.Client, baseLog *logger.Logger) *CRMHandler {
	return &CRMHandler{
		db:    db,
		redis: redisClient,
		log:   baseLog.With("handler", "crm"),
	}
}

func persistenceErr(op string, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return crm.ErrNotFound
	}
	return fmt.Errorf("persistence %s: %w", op, err)
}

// --- Cache helpers ---

func (h *CRMHandler) cacheGet(ctx context.Context, key string, dest interface{}) bool {
	if h.redis == nil {
		return false
	}
	raw, err := h.redis.Get(ctx, key).Result()
	if err != nil {
		return false
	}
	return json.Unmarshal([]byte(raw), dest) == nil
}

func (h *CRMHandler) cacheSet(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if h.redis == nil {
		return
	}
	raw, err := json.Marshal(value)
	if err != nil {
		return
	}
	if err := h.redis.Set(ctx, key, raw, ttl).Err(); err != nil {
		h.log.Warn("cache set failed", "key", key, "error", err)
	}
}

func (h *CRMHandler) invalidateClientCaches(ctx context.Context) {
	if h.redis == nil {
		return
	}
	if err := h.redis.Del(ctx, CLIENTS_CACHE_KEY).Err(); err != nil {
		h.log.Warn("cache invalidation failed", "key", CLIENTS_CACHE_KEY, "error", err)
	}
}

// --- Snapshot fetches (engine input; never cached) ---

func (h *CRMHandler) FetchActiveWaitlist(ctx context.Context) ([]models.WaitlistEntry, error) {
	var entries []models.WaitlistEntry
	if err := h.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("added_at asc").
		Find(&entries).Error; err != nil {
		return nil, persistenceErr("fetch active waitlist", err)
	}
	return entries, nil
}

func (h *CRMHandler) FetchAvailableInventory(ctx context.Context) ([]models.Watch, error) {
	var watches []models.Watch
	if err := h.db.WithContext(ctx).
		Where("available_quantity > ?", 0).
		Find(&watches).Error; err != nil {
		return nil, persistenceErr("fetch available inventory", err)
	}
	return watches, nil
}

type ClientFilter struct {
	Tier     *string
	Search   *string
	Page     int
	PageSize int
}

func (h *CRMHandler) FetchClients(ctx context.Context, filter ClientFilter) ([]models.Client, error) {
	query := h.db.WithContext(ctx).Model(&models.Client{})
	if filter.Tier != nil {
		tier, err := crm.ParseTier(*filter.Tier)
		if err != nil {
			return nil, err
		}
		query = query.Where("tier = ?", string(tier))
	}
	if filter.Search != nil && *filter.Search != "" {
		pattern := "%" + *filter.Search + "%"
		query = query.Where("name ILIKE ? OR email ILIKE ?", pattern, pattern)
	}
	if filter.PageSize > 0 {
		page := filter.Page
		if page < 1 {
			page = 1
		}
		query = query.Offset((page - 1) * filter.PageSize).Limit(filter.PageSize)
	}

	var clients []models.Client
	if err := query.Order("name asc").Find(&clients).Error; err != nil {
		return nil, persistenceErr("fetch clients", err)
	}
	return clients, nil
}

// Snapshot assembles the engine input in one shot.
func (h *CRMHandler) Snapshot(ctx context.Context) (crm.Snapshot, error) {
	clients, err := h.FetchClients(ctx, ClientFilter{})
	if err != nil {
		return crm.Snapshot{}, err
	}
	watches, err := h.FetchAvailableInventory(ctx)
	if err != nil {
		return crm.Snapshot{}, err
	}
	waitlist, err := h.FetchActiveWaitlist(ctx)
	if err != nil {
		return crm.Snapshot{}, err
	}
	return crm.Snapshot{Clients: clients, Watches: watches, Waitlist: waitlist}, nil
}

// --- Client CRUD ---

type ClientParams struct {
	Name             string
	Email            string
	Phone            *string
	Tier             string
	LifetimeSpend    decimal.Decimal
	LastContactDate  *time.Time
	LastPurchaseDate *time.Time
	Notes            *string
}

func validateClientParams(p ClientParams) (crm.Tier, error) {
	if p.Name == "" {
		return crm.TierNone, &crm.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	tier, err := crm.ParseTier(p.Tier)
	if err != nil {
		return crm.TierNone, err
	}
	if p.LifetimeSpend.IsNegative() {
		return crm.TierNone, &crm.ValidationError{Field: "lifetimeSpend", Reason: "must not be negative"}
	}
	return tier, nil
}

func (h *CRMHandler) GetClient(ctx context.Context, id int64) (*models.Client, error) {
	var client models.Client
	if err := h.db.WithContext(ctx).First(&client, id).Error; err != nil {
		return nil, persistenceErr("get client", err)
	}
	return &client, nil
}

func (h *CRMHandler) CreateClient(ctx context.Context, p ClientParams) (*models.Client, error) {
	tier, err := validateClientParams(p)
	if err != nil {
		return nil, err
	}
	client := models.Client{
		Name:             p.Name,
		Email:            p.Email,
		Phone:            p.Phone,
		Tier:             string(tier),
		LifetimeSpend:    p.LifetimeSpend,
		LastContactDate:  p.LastContactDate,
		LastPurchaseDate: p.LastPurchaseDate,
		Notes:            p.Notes,
	}
	if err := h.db.WithContext(ctx).Create(&client).Error; err != nil {
		return nil, persistenceErr("create client", err)
	}
	h.invalidateClientCaches(ctx)
	return &client, nil
}

type ClientUpdate struct {
	Name             *string
	Email            *string
	Phone            *string
	Tier             *string
	LifetimeSpend    *decimal.Decimal
	LastContactDate  *time.Time
	LastPurchaseDate *time.Time
	Notes            *string
}

func (h *CRMHandler) UpdateClient(ctx context.Context, id int64, u ClientUpdate) (*models.Client, error) {
	client, err := h.GetClient(ctx, id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if u.Name != nil {
		if *u.Name == "" {
			return nil, &crm.ValidationError{Field: "name", Reason: "must not be empty"}
		}
		updates["name"] = *u.Name
	}
	if u.Email != nil {
		updates["email"] = *u.Email
	}
	if u.Phone != nil {
		updates["phone"] = *u.Phone
	}
	if u.Tier != nil {
		tier, err := crm.ParseTier(*u.Tier)
		if err != nil {
			return nil, err
		}
		updates["tier"] = string(tier)
	}
	if u.LifetimeSpend != nil {
		if u.LifetimeSpend.IsNegative() {
			return nil, &crm.ValidationError{Field: "lifetimeSpend", Reason: "must not be negative"}
		}
		updates["lifetime_spend"] = *u.LifetimeSpend
	}
	if u.LastContactDate != nil {
		updates["last_contact_date"] = *u.LastContactDate
	}
	if u.LastPurchaseDate != nil {
		updates["last_purchase_date"] = *u.LastPurchaseDate
	}
	if u.Notes != nil {
		updates["notes"] = *u.Notes
	}

	if len(updates) > 0 {
		if err := h.db.WithContext(ctx).Model(client).Updates(updates).Error; err != nil {
			return nil, persistenceErr("update client", err)
		}
		h.invalidateClientCaches(ctx)
	}
	return client, nil
}

func (h *CRMHandler) DeleteClient(ctx context.Context, id int64) error {
	res := h.db.WithContext(ctx).Delete(&models.Client{}, id)
	if res.Error != nil {
		return persistenceErr("delete client", res.Error)
	}
	if res.RowsAffected == 0 {
		return crm.ErrNotFound
	}
	h.invalidateClientCaches(ctx)
	return nil
}

// ListClients serves the read endpoint through a short-TTL cache when
// no filter is applied, the way list endpoints are cached elsewhere in
// the system.
func (h *CRMHandler) ListClients(ctx context.Context, filter ClientFilter) ([]models.Client, error) {
	unfiltered := filter.Tier == nil && filter.Search == nil && filter.PageSize == 0
	if unfiltered {
		var cached []models.Client
		if h.cacheGet(ctx, CLIENTS_CACHE_KEY, &cached) {
			return cached, nil
		}
	}

	clients, err := h.FetchClients(ctx, filter)
	if err != nil {
		return nil, err
	}
	if unfiltered {
		h.cacheSet(ctx, CLIENTS_CACHE_KEY, clients, CACHE_TTL_SHORT)
	}
	return clients, nil
}

func (h *CRMHandler) SearchClients(ctx context.Context, q string) ([]models.Client, error) {
	if q == "" {
		return nil, &crm.ValidationError{Field: "q", Reason: "must not be empty"}
	}
	return h.FetchClients(ctx, ClientFilter{Search: &q})
}

// ImportClients bulk-creates clients, skipping invalid rows. Returns
// how many were created.
func (h *CRMHandler) ImportClients(ctx context.Context, rows []ClientParams) (int, error) {
	created := 0
	err := h.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, p := range rows {
			tier, err := validateClientParams(p)
			if err != nil {
				h.log.Warn("import row skipped", "name", p.Name, "error", err)
				continue
			}
			client := models.Client{
				Name:             p.Name,
				Email:            p.Email,
				Phone:            p.Phone,
				Tier:             string(tier),
				LifetimeSpend:    p.LifetimeSpend,
				LastContactDate:  p.LastContactDate,
				LastPurchaseDate: p.LastPurchaseDate,
				Notes:            p.Notes,
			}
			if err := tx.Create(&client).Error; err != nil {
				return err
			}
			created++
		}
		return nil
	})
	if err != nil {
		return 0, persistenceErr("import clients", err)
	}
	h.invalidateClientCaches(ctx)
	return created, nil
}

func (h *CRMHandler) RecordLastContact(ctx context.Context, clientID int64, ts time.Time) error {
	res := h.db.WithContext(ctx).Model(&models.Client{}).
		Where("id = ?", clientID).
		Update("last_contact_date", ts.UTC())
	if res.Error != nil {
		return persistenceErr("record last contact", res.Error)
	}
	if res.RowsAffected == 0 {
		return crm.ErrNotFound
	}
	h.invalidateClientCaches(ctx)
	return nil
}

// --- Inventory ---

func (h *CRMHandler) ListWatches(ctx context.Context) ([]models.Watch, error) {
	var cached []models.Watch
	if h.cacheGet(ctx, WATCHES_CACHE_KEY, &cached) {
		return cached, nil
	}

	var watches []models.Watch
	if err := h.db.WithContext(ctx).Order("model asc").Find(&watches).Error; err != nil {
		return nil, persistenceErr("list watches", err)
	}
	h.cacheSet(ctx, WATCHES_CACHE_KEY, watches, CACHE_TTL_SHORT)
	return watches, nil
}
