package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/washlane/booking-assistant/internal/channel"
	"github.com/washlane/booking-assistant/internal/memory"
	"github.com/washlane/booking-assistant/internal/middleware"
	"github.com/washlane/booking-assistant/internal/model"
	"github.com/washlane/booking-assistant/pkg/logger"
	"github.com/washlane/booking-assistant/pkg/metrics"
)

// ConversationHandler exposes the in-memory conversation state and an
// operator send primitive on the admin API.
type ConversationHandler struct {
	store  *memory.Store
	sender channel.Sender
	logger *logger.Logger
}

// NewConversationHandler creates a conversation handler.
func NewConversationHandler(store *memory.Store, sender channel.Sender, log *logger.Logger) *ConversationHandler {
	return &ConversationHandler{
		store:  store,
		sender: sender,
		logger: log,
	}
}

type conversationSummary struct {
	ChatID       string `json:"chat_id"`
	MessageCount int    `json:"message_count"`
}

// List handles GET /api/v1/conversations
func (h *ConversationHandler) List(w http.ResponseWriter, r *http.Request) {
	keys := h.store.Keys()
	summaries := make([]conversationSummary, 0, len(keys))
	for _, key := range keys {
		summaries = append(summaries, conversationSummary{
			ChatID:       key,
			MessageCount: h.store.Len(key),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"conversations": summaries,
		"total":         len(summaries),
	})
}

// Messages handles GET /api/v1/conversations/{chatID}/messages
func (h *ConversationHandler) Messages(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if err := middleware.ValidateChatID(chatID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	msgs := h.store.Messages(chatID)
	writeJSON(w, http.StatusOK, map[string]any{
		"chat_id":  chatID,
		"messages": msgs,
	})
}

// Clear handles DELETE /api/v1/conversations/{chatID}
func (h *ConversationHandler) Clear(w http.ResponseWriter, r *http.Request) {
	chatID := chi.URLParam(r, "chatID")
	if err := middleware.ValidateChatID(chatID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.store.Clear(chatID)
	h.logger.Info("conversation cleared",
		zap.String("chat_id", chatID),
		zap.String("operator", middleware.GetOperatorID(r.Context())),
	)
	w.WriteHeader(http.StatusNoContent)
}

type operatorSendRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

// Send handles POST /api/v1/messages: an operator-initiated outbound message.
// The sent text is recorded in memory as an assistant turn so the dialogue
// loop sees it on the customer's next message.
func (h *ConversationHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req operatorSendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if err := middleware.ValidateChatID(req.To); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := middleware.ValidateMessageBody(req.Text); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.sender.Send(r.Context(), req.To, req.Text); err != nil {
		h.logger.Error("operator send failed",
			zap.String("chat_id", req.To),
			zap.Error(err),
		)
		writeError(w, http.StatusBadGateway, "failed to deliver message")
		return
	}

	h.store.Append(req.To, model.AssistantMessage(req.Text))
	metrics.RepliesSent.WithLabelValues("operator").Inc()

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "sent",
	})
}
