package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier-crm/internal/crm"
	"atelier-crm/internal/logger"
	"atelier-crm/internal/services/crm/handler"
)

type AlertsHTTPHandler struct {
	store  *handler.CRMHandler
	engine *crm.Engine
	log    *logger.Logger
}

func NewAlertsHTTPHandler(store *handler.CRMHandler, engine *crm.Engine, baseLog *logger.Logger) *AlertsHTTPHandler {
	return &AlertsHTTPHandler{
		store:  store,
		engine: engine,
		log:    baseLog.With("handler", "alerts"),
	}
}

// GetAllocationAlerts recomputes the full alert feed from a fresh
// snapshot on every request.
func (h *AlertsHTTPHandler) GetAllocationAlerts(c *gin.Context) {
	snap, err := h.store.Snapshot(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	feed := h.engine.Classify(snap)
	c.JSON(http.StatusOK, feed)
}

// GetCadenceConfig exposes the tier cadence table as static
// configuration for callers that need the schedule without invoking
// the scheduler.
func (h *AlertsHTTPHandler) GetCadenceConfig(c *gin.Context) {
	c.JSON(http.StatusOK, successResponse("Tier cadence table", crm.CadenceTable()))
}
