package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"atelier-crm/internal/logger"
	"atelier-crm/internal/services/crm/handler"
)

type ClientHTTPHandler struct {
	store *handler.CRMHandler
	log   *logger.Logger
}

func NewClientHTTPHandler(store *handler.CRMHandler, baseLog *logger.Logger) *ClientHTTPHandler {
	return &ClientHTTPHandler{
		store: store,
		log:   baseLog.With("handler", "clients"),
	}
}

type ClientRequest struct {
	Name             string     `json:"name" binding:"required"`
	Email            string     `json:"email" binding:"required,email"`
	Phone            *string    `json:"phone,omitempty"`
	Tier             string     `json:"tier"`
	LifetimeSpend    *string    `json:"lifetime_spend,omitempty"`
	LastContactDate  *time.Time `json:"last_contact_date,omitempty"`
	LastPurchaseDate *time.Time `json:"last_purchase_date,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

type UpdateClientRequest struct {
	Name             *string    `json:"name,omitempty"`
	Email            *string    `json:"email,omitempty"`
	Phone            *string    `json:"phone,omitempty"`
	Tier             *string    `json:"tier,omitempty"`
	LifetimeSpend    *string    `json:"lifetime_spend,omitempty"`
	LastContactDate  *time.Time `json:"last_contact_date,omitempty"`
	LastPurchaseDate *time.Time `json:"last_purchase_date,omitempty"`
	Notes            *string    `json:"notes,omitempty"`
}

type ListClientsQuery struct {
	Page     int     `form:"page,default=1"`
	PageSize int     `form:"page_size,default=0"`
	Tier     *string `form:"tier,omitempty"`
}

func parseSpend(raw *string) (decimal.Decimal, error) {
	if raw == nil || *raw == "" {
		return decimal.Zero, nil
	}
	return decimal.NewFromString(*raw)
}

func (h *ClientHTTPHandler) CreateClient(c *gin.Context) {
	var req ClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}
	spend, err := parseSpend(req.LifetimeSpend)
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid lifetime_spend amount"))
		return
	}

	client, err := h.store.CreateClient(c.Request.Context(), handler.ClientParams{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Tier:             req.Tier,
		LifetimeSpend:    spend,
		LastContactDate:  req.LastContactDate,
		LastPurchaseDate: req.LastPurchaseDate,
		Notes:            req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Client created", client))
}

func (h *ClientHTTPHandler) GetClient(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid client id"))
		return
	}
	client, err := h.store.GetClient(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Client found", client))
}

func (h *ClientHTTPHandler) ListClients(c *gin.Context) {
	var query ListClientsQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}
	clients, err := h.store.ListClients(c.Request.Context(), handler.ClientFilter{
		Tier:     query.Tier,
		Page:     query.Page,
		PageSize: query.PageSize,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Clients listed", clients))
}

func (h *ClientHTTPHandler) UpdateClient(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid client id"))
		return
	}
	var req UpdateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	update := handler.ClientUpdate{
		Name:             req.Name,
		Email:            req.Email,
		Phone:            req.Phone,
		Tier:             req.Tier,
		LastContactDate:  req.LastContactDate,
		LastPurchaseDate: req.LastPurchaseDate,
		Notes:            req.Notes,
	}
	if req.LifetimeSpend != nil {
		spend, err := decimal.NewFromString(*req.LifetimeSpend)
		if err != nil {
			c.JSON(http.StatusBadRequest, errorResponse("Invalid lifetime_spend amount"))
			return
		}
		update.LifetimeSpend = &spend
	}

	client, err := h.store.UpdateClient(c.Request.Context(), id, update)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Client updated", client))
}

func (h *ClientHTTPHandler) DeleteClient(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid client id"))
		return
	}
	if err := h.store.DeleteClient(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Client deleted", nil))
}

type RecordContactRequest struct {
	ContactedAt *time.Time `json:"contacted_at,omitempty"`
}

func (h *ClientHTTPHandler) RecordContact(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid client id"))
		return
	}
	var req RecordContactRequest
	if err := c.ShouldBindJSON(&req); err != nil && c.Request.ContentLength > 0 {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	ts := time.Now().UTC()
	if req.ContactedAt != nil {
		ts = req.ContactedAt.UTC()
	}
	if err := h.store.RecordLastContact(c.Request.Context(), id, ts); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Contact recorded", gin.H{"last_contact_date": ts}))
}

func (h *ClientHTTPHandler) SearchClients(c *gin.Context) {
	clients, err := h.store.SearchClients(c.Request.Context(), c.Query("q"))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Search results", clients))
}

type ImportClientsRequest struct {
	Clients []ClientRequest `json:"clients" binding:"required"`
}

func (h *ClientHTTPHandler) ImportClients(c *gin.Context) {
	var req ImportClientsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	rows := make([]handler.ClientParams, 0, len(req.Clients))
	for _, r := range req.Clients {
		spend, err := parseSpend(r.LifetimeSpend)
		if err != nil {
			continue
		}
		rows = append(rows, handler.ClientParams{
			Name:             r.Name,
			Email:            r.Email,
			Phone:            r.Phone,
			Tier:             r.Tier,
			LifetimeSpend:    spend,
			LastContactDate:  r.LastContactDate,
			LastPurchaseDate: r.LastPurchaseDate,
			Notes:            r.Notes,
		})
	}

	created, err := h.store.ImportClients(c.Request.Context(), rows)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Import complete", gin.H{
		"imported": created,
		"skipped":  len(req.Clients) - created,
	}))
}
