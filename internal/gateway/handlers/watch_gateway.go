package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"atelier-crm/internal/logger"
	"atelier-crm/internal/services/crm/handler"
)

type WatchHTTPHandler struct {
	store *handler.CRMHandler
	log   *logger.Logger
}

func NewWatchHTTPHandler(store *handler.CRMHandler, baseLog *logger.Logger) *WatchHTTPHandler {
	return &WatchHTTPHandler{
		store: store,
		log:   baseLog.With("handler", "watches"),
	}
}

// ListWatches returns the full inventory, sold-out references included,
// so staff can review allocation candidates next to the waitlist.
func (h *WatchHTTPHandler) ListWatches(c *gin.Context) {
	watches, err := h.store.ListWatches(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, successResponse("Watches retrieved", watches))
}
