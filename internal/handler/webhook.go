package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/washlane/booking-assistant/internal/engine"
	"github.com/washlane/booking-assistant/internal/middleware"
	"github.com/washlane/booking-assistant/internal/model"
	"github.com/washlane/booking-assistant/pkg/logger"
)

// WebhookHandler receives inbound message events from the messaging gateway.
type WebhookHandler struct {
	engine *engine.Engine
	logger *logger.Logger

	// turnTimeout bounds a single turn's network calls.
	turnTimeout time.Duration
}

// NewWebhookHandler creates a webhook handler.
func NewWebhookHandler(eng *engine.Engine, log *logger.Logger) *WebhookHandler {
	return &WebhookHandler{
		engine:      eng,
		logger:      log,
		turnTimeout: 2 * time.Minute,
	}
}

// Receive handles POST /webhook/messages. The event is acknowledged with 202
// and processed asynchronously so the gateway is never blocked on the
// dialogue loop.
func (h *WebhookHandler) Receive(w http.ResponseWriter, r *http.Request) {
	var in model.InboundMessage
	if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageID(in.ID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateChatID(in.From); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageBody(in.Body); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.turnTimeout)
		defer cancel()
		h.engine.HandleInbound(ctx, in)
	}()

	writeJSON(w, http.StatusAccepted, map[string]string{
		"status": "accepted",
	})
}
