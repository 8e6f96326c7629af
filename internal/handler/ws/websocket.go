package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/logging"
	chatservice "github.com/chemassist/assistant/backend/internal/service/chat"
)

const (
	readTimeout  = 60 * time.Second
	pingInterval = 54 * time.Second
)

// Handler WebSocket 聊天处理器，每条文本输入对应一次会话回合
type Handler struct {
	chatSvc  *chatservice.Service
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// New 创建WebSocket处理器
func New(chatSvc *chatservice.Service, logger *zap.Logger) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		logger:  logging.OrNop(logger),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// RegisterRoutes 注册WebSocket路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/ws/{sessionID}", h.handleWebSocket)
}

type inboundMessage struct {
	Type      string          `json:"type"`
	SessionID string          `json:"sessionId"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
}

// InputMessage 用户输入
type InputMessage struct {
	Text string `json:"text"`
}

type outgoingMessage struct {
	Type      string      `json:"type"`
	SessionID string      `json:"sessionId,omitempty"`
	Data      interface{} `json:"data,omitempty"`
	Timestamp int64       `json:"timestamp"`
}

// handleWebSocket 处理WebSocket连接
func (h *Handler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	sessionID := chi.URLParam(r, "sessionID")

	session, err := h.chatSvc.GetSession(r.Context(), sessionID)
	if err != nil {
		http.Error(w, "session not found", http.StatusNotFound)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	h.logger.Info("websocket connected", zap.String("session", sessionID))

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	conn.SetReadDeadline(time.Now().Add(readTimeout))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(readTimeout))
		return nil
	})

	writes := make(chan outgoingMessage, 8)
	go h.writeLoop(ctx, cancel, conn, writes)

	send := func(msg outgoingMessage) bool {
		select {
		case writes <- msg:
			return true
		case <-ctx.Done():
			return false
		}
	}

	send(outgoingMessage{
		Type:      "connected",
		SessionID: sessionID,
		Data: map[string]any{
			"mode":   session.Mode,
			"prompt": h.chatSvc.Prompt(session.Mode),
		},
		Timestamp: time.Now().Unix(),
	})

	for {
		var msg inboundMessage
		if err := conn.ReadJSON(&msg); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("websocket read error", zap.String("session", sessionID), zap.Error(err))
			}
			return
		}

		conn.SetReadDeadline(time.Now().Add(readTimeout))

		if msg.SessionID != "" && msg.SessionID != sessionID {
			if !send(errorMessage("session mismatch")) {
				return
			}
			continue
		}

		if !send(h.handleMessage(ctx, sessionID, &msg)) {
			return
		}
	}
}

func (h *Handler) handleMessage(ctx context.Context, sessionID string, msg *inboundMessage) outgoingMessage {
	switch msg.Type {
	case "input", "text":
		var input InputMessage
		if err := json.Unmarshal(msg.Data, &input); err != nil {
			return errorMessage("invalid input payload")
		}
		if strings.TrimSpace(input.Text) == "" {
			return errorMessage("text is required")
		}

		turn, err := h.chatSvc.Submit(ctx, sessionID, input.Text)
		if err != nil {
			return errorMessage(err.Error())
		}
		return outgoingMessage{Type: "turn", SessionID: sessionID, Data: turn, Timestamp: time.Now().Unix()}
	case "ping":
		return outgoingMessage{Type: "pong", SessionID: sessionID, Timestamp: time.Now().Unix()}
	default:
		return errorMessage("unsupported message type: " + msg.Type)
	}
}

// writeLoop 串行写出消息并定期发送ping，写失败时结束整个连接
func (h *Handler) writeLoop(ctx context.Context, cancel context.CancelFunc, conn *websocket.Conn, writes <-chan outgoingMessage) {
	defer cancel()

	ticker := time.NewTicker(pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case msg := <-writes:
			if err := conn.WriteJSON(msg); err != nil {
				h.logger.Debug("websocket write failed", zap.Error(err))
				return
			}
		case <-ticker.C:
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func errorMessage(message string) outgoingMessage {
	return outgoingMessage{
		Type:      "error",
		Data:      map[string]string{"message": message},
		Timestamp: time.Now().Unix(),
	}
}
