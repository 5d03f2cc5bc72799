package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/tuneport/support-assistant/internal/middleware"
	"github.com/tuneport/support-assistant/internal/model"
	"github.com/tuneport/support-assistant/internal/service"
	"github.com/tuneport/support-assistant/pkg/logger"
)

// MessageHandler handles message endpoints.
type MessageHandler struct {
	turns    *service.TurnService
	sessions *service.SessionService
	logger   *logger.Logger
}

// NewMessageHandler creates a new message handler.
func NewMessageHandler(
	turns *service.TurnService,
	sessions *service.SessionService,
	log *logger.Logger,
) *MessageHandler {
	return &MessageHandler{
		turns:    turns,
		sessions: sessions,
		logger:   log,
	}
}

// List handles GET /api/v1/sessions/{id}/messages
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	sessionID := chi.URLParam(r, "id")

	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	history, err := h.sessions.History(ctx, tenantID, sessionID)
	if err != nil {
		writeError(w, http.StatusNotFound, "session not found")
		return
	}

	writeJSON(w, http.StatusOK, &model.ListMessagesResponse{
		Messages: history,
		Total:    len(history),
	})
}

// Send handles POST /api/v1/sessions/{id}/messages. One user message in, one
// reply out; there are no streaming or multi-reply turns.
func (h *MessageHandler) Send(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	tenantID := middleware.GetTenantID(ctx)
	sessionID := chi.URLParam(r, "id")

	if err := middleware.ValidateSessionID(sessionID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	var req model.SendMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if err := middleware.ValidateMessageContent(req.Content); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	log := h.logger.WithSession(middleware.GetCorrelationID(ctx), tenantID, sessionID)

	resp, err := h.turns.ProcessTurn(ctx, tenantID, sessionID, req.Content)
	if err != nil {
		if errors.Is(err, service.ErrSessionNotFound) {
			writeError(w, http.StatusNotFound, "session not found")
			return
		}
		log.Error("failed to process turn", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "failed to process message")
		return
	}

	writeJSON(w, http.StatusCreated, resp)
}
