package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier-crm/internal/crm"
	"atelier-crm/internal/logger"
	"atelier-crm/internal/services/crm/handler"
)

type WaitlistHTTPHandler struct {
	store *handler.CRMHandler
	sched *crm.Scheduler
	log   *logger.Logger
}

func NewWaitlistHTTPHandler(store *handler.CRMHandler, sched *crm.Scheduler, baseLog *logger.Logger) *WaitlistHTTPHandler {
	return &WaitlistHTTPHandler{
		store: store,
		sched: sched,
		log:   baseLog.With("handler", "waitlist"),
	}
}

type WaitlistRequest struct {
	ClientID     int64   `json:"client_id" binding:"required"`
	DesiredModel *string `json:"desired_model,omitempty"`
	DesiredTier  *int32  `json:"desired_tier,omitempty"`
}

func (h *WaitlistHTTPHandler) AddEntry(c *gin.Context) {
	var req WaitlistRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid request format"))
		return
	}

	entry, err := h.store.AddToWaitlist(c.Request.Context(), handler.WaitlistParams{
		ClientID:     req.ClientID,
		DesiredModel: req.DesiredModel,
		DesiredTier:  req.DesiredTier,
	})
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, successResponse("Waitlist entry created", entry))
}

// ListEntries returns active entries with freshly computed priority
// scores.
func (h *WaitlistHTTPHandler) ListEntries(c *gin.Context) {
	views, err := h.store.ListWaitlistScored(c.Request.Context(), h.sched)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Waitlist listed", views))
}

// RemoveEntry deactivates an entry on allocation or cancellation.
func (h *WaitlistHTTPHandler) RemoveEntry(c *gin.Context) {
	id, err := parseIDParam(c, "id")
	if err != nil {
		c.JSON(http.StatusBadRequest, errorResponse("Invalid waitlist entry id"))
		return
	}
	if err := h.store.DeactivateWaitlistEntry(c.Request.Context(), id); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Waitlist entry deactivated", nil))
}
