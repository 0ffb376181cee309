package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"atelier-crm/internal/logger"
	"atelier-crm/internal/services/crm/handler"
)

type ReminderHTTPHandler struct {
	store *handler.CRMHandler
	log   *logger.Logger
}

func NewReminderHTTPHandler(store *handler.CRMHandler, baseLog *logger.Logger) *ReminderHTTPHandler {
	return &ReminderHTTPHandler{
		store: store,
		log:   baseLog.With("handler", "reminders"),
	}
}

type ReminderRequest struct {
	ClientID     int64     `json:"client_id" binding:"required"`
	ReminderDate time.Time `json:"reminder_date" binding:"required"`
	Type         string    `json:"type" binding:"required"`
	Notes        *string   `json:"notes,omitempty"`
}

type UpdateReminderRequest struct {
	ReminderDate *time.Time `json:"reminder_date,omitempty"`
	Type         *string    `json:"type,omitempty"`
	Notes        *string    `json:"notes,omitempty"`
}

type SnoozeReminderRequest struct {
	Days int `json:"days" binding:"required"`
}

type ListRemindersQuery struct {
	ClientID *int64 `form:"client_id,omitempty"`
	Pending  bool   `form:"pending,default=false"`
}

func (h *ReminderHTTPHandler) CreateReminder(c *gin.Context) {
	var req ReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	reminder, err := h.store.CreateReminder(c.Request.Context(), handler.ReminderParams{
		ClientID:     req.ClientID,
		ReminderDate: req.ReminderDate,
		Type:         req.Type,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Reminder created", reminder))
}

func (h *ReminderHTTPHandler) ListReminders(c *gin.Context) {
	var query ListRemindersQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid query parameters"))
		return
	}

	reminders, err := h.store.ListReminders(c.Request.Context(), handler.ReminderFilter{
		ClientID: query.ClientID,
		Pending:  query.Pending,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Reminders listed", reminders))
}

func (h *ReminderHTTPHandler) UpdateReminder(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid reminder id"))
		return
	}
	var req UpdateReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	reminder, err := h.store.UpdateReminder(c.Request.Context(), id, handler.ReminderUpdate{
		ReminderDate: req.ReminderDate,
		Type:         req.Type,
		Notes:        req.Notes,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Reminder updated", reminder))
}

func (h *ReminderHTTPHandler) CompleteReminder(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid reminder id"))
		return
	}
	reminder, err := h.store.CompleteReminder(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Reminder completed", reminder))
}

func (h *ReminderHTTPHandler) SnoozeReminder(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid reminder id"))
		return
	}
	var req SnoozeReminderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	reminder, err := h.store.SnoozeReminder(c.Request.Context(), id, req.Days)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Reminder snoozed", reminder))
}

func (h *ReminderHTTPHandler) DeleteReminder(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid reminder id"))
		return
	}
	if err := h.store.DeleteReminder(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Reminder deleted", nil))
}
