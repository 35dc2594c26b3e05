// Package handler provides the HTTP endpoints: webhook ingress, admin
// conversation API, and health checks.
package handler

import (
	"net/http"

	"github.com/washlane/booking-assistant/internal/events"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	publisher *events.Publisher
	natsUsed  bool
}

// NewHealthHandler creates a new health handler. publisher may be nil when
// booking events are not configured.
func NewHealthHandler(publisher *events.Publisher, natsUsed bool) *HealthHandler {
	return &HealthHandler{
		publisher: publisher,
		natsUsed:  natsUsed,
	}
}

// Health handles GET /health
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
	})
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.natsUsed && !h.publisher.IsConnected() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "NATS not connected",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
