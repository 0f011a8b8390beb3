package handlers

import (
	"fmt"
	"io"
	"net/http"

	"inkwell/models"
	"inkwell/realtime"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// EventsHandler streams a provider's calendar room over SSE so concurrent
// viewers see holds and bookings change without re-polling.
type EventsHandler struct {
	hub    *realtime.Hub
	logger *zap.Logger
}

func NewEventsHandler(hub *realtime.Hub, logger *zap.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, logger: logger}
}

// StreamCalendar handles GET /api/calendar/:providerType/:providerId/events.
func (h *EventsHandler) StreamCalendar(c *gin.Context) {
	providerType := models.ProviderType(c.Param("providerType"))
	if !providerType.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unknown provider type"})
		return
	}
	room := fmt.Sprintf("%s:%s", providerType, c.Param("providerId"))

	events, cancel := h.hub.Subscribe(room)
	defer cancel()

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")

	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-events:
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Kind), ev)
			return true
		case <-c.Request.Context().Done():
			return false
		}
	})
}
