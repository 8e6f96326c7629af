package stream

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/logging"
	"github.com/chemassist/assistant/backend/internal/model/chat"
	chatService "github.com/chemassist/assistant/backend/internal/service/chat"
	"github.com/chemassist/assistant/backend/pkg/utils"
)

// Handler streams one chat turn via Server-Sent Events
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New creates a new stream handler
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		logger:  logging.OrNop(logger),
	}
}

// StreamResponse represents a streaming response chunk
type StreamResponse struct {
	Event     string        `json:"event"`
	SessionID string        `json:"sessionId,omitempty"`
	Mode      chat.Mode     `json:"mode,omitempty"`
	Message   *chat.Message `json:"message,omitempty"`
	Content   string        `json:"content,omitempty"`
	Finished  bool          `json:"finished,omitempty"`
	Error     string        `json:"error,omitempty"`
}

// RegisterRoutes 注册流式路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/stream/{sessionID}", h.handleStream)
}

func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")
	userMessage := r.URL.Query().Get("message")

	if userMessage == "" {
		utils.RespondError(w, http.StatusBadRequest, "message query parameter is required")
		return
	}
	if _, err := h.chatSvc.GetSession(r.Context(), sessionID); err != nil {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	if err := h.HandleStreamRequest(r.Context(), w, sessionID, userMessage); err != nil {
		h.logger.Warn("stream request failed", zap.String("session", sessionID), zap.Error(err))
	}
}

// HandleStreamRequest processes one input and streams the resulting
// transcript entries
func (h *Handler) HandleStreamRequest(ctx context.Context, w http.ResponseWriter, sessionID string, userMessage string) error {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return fmt.Errorf("streaming unsupported")
	}

	utils.SetupSSEHeaders(w)

	h.sendSSE(w, flusher, StreamResponse{Event: "start", SessionID: sessionID})

	turn, err := h.chatSvc.Submit(ctx, sessionID, userMessage)
	if err != nil {
		if errors.Is(err, chatService.ErrSessionNotFound) {
			h.sendSSEError(w, flusher, "session not found")
		} else {
			h.sendSSEError(w, flusher, "failed to process input")
		}
		return err
	}

	for i := range turn.Entries {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "message",
			SessionID: sessionID,
			Message:   &turn.Entries[i],
		})
	}

	if turn.Notice != "" {
		h.sendSSE(w, flusher, StreamResponse{
			Event:     "notice",
			SessionID: sessionID,
			Content:   turn.Notice,
		})
	}

	// Send completion signal
	h.sendSSE(w, flusher, StreamResponse{
		Event:     "end",
		SessionID: sessionID,
		Mode:      turn.Mode,
		Content:   turn.Prompt,
		Finished:  true,
	})

	h.logger.Debug("stream completed", zap.String("session", sessionID), zap.Int("entries", len(turn.Entries)))
	return nil
}

// sendSSE sends a Server-Sent Event named after response.Event
func (h *Handler) sendSSE(w http.ResponseWriter, flusher http.Flusher, response StreamResponse) {
	utils.SendSSEEvent(w, flusher, response.Event, response)
}

// sendSSEError sends an error via Server-Sent Events
func (h *Handler) sendSSEError(w http.ResponseWriter, flusher http.Flusher, errorMsg string) {
	h.sendSSE(w, flusher, StreamResponse{
		Event: "error",
		Error: errorMsg,
	})
}
