package chat

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/logging"
	"github.com/chemassist/assistant/backend/internal/model/chat"
	chatService "github.com/chemassist/assistant/backend/internal/service/chat"
	"github.com/chemassist/assistant/backend/pkg/utils"
)

// Handler 聊天服务的HTTP处理器
type Handler struct {
	chatSvc *chatService.Service
	logger  *zap.Logger
}

// New 创建聊天处理器
func New(chatSvc *chatService.Service, logger *zap.Logger) *Handler {
	return &Handler{
		chatSvc: chatSvc,
		logger:  logging.OrNop(logger),
	}
}

// RegisterRoutes 注册聊天相关的路由
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Get("/menu", h.handleMenu)
	r.Post("/session", h.handleCreateSession)
	r.Get("/session/{sessionID}", h.handleGetSession)
	r.Get("/session/{sessionID}/transcript", h.handleTranscript)
	r.Post("/session/{sessionID}/input", h.handleInput)
}

type sessionView struct {
	chat.Session
	Prompt      string `json:"prompt"`
	MenuCommand string `json:"menuCommand,omitempty"`
}

// handleMenu 返回欢迎菜单
func (h *Handler) handleMenu(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, chatService.DefaultMenu())
}

// handleCreateSession 创建会话
func (h *Handler) handleCreateSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.CreateSession(r.Context())
	if err != nil {
		utils.RespondError(w, http.StatusInternalServerError, err.Error())
		return
	}

	utils.RespondJSON(w, http.StatusCreated, h.view(session))
}

// handleGetSession 查询会话及当前模式
func (h *Handler) handleGetSession(w http.ResponseWriter, r *http.Request) {
	session, err := h.chatSvc.GetSession(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, h.view(session))
}

// handleTranscript 返回完整对话记录
func (h *Handler) handleTranscript(w http.ResponseWriter, r *http.Request) {
	messages, err := h.chatSvc.LoadTranscript(r.Context(), chi.URLParam(r, "sessionID"))
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, map[string]any{"messages": messages})
}

// handleInput 提交一条用户输入
func (h *Handler) handleInput(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		Input string `json:"input"`
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		utils.RespondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	turn, err := h.chatSvc.Submit(r.Context(), chi.URLParam(r, "sessionID"), payload.Input)
	if err != nil {
		h.respondServiceError(w, err)
		return
	}

	utils.RespondJSON(w, http.StatusOK, turn)
}

func (h *Handler) view(session chat.Session) sessionView {
	return sessionView{
		Session:     session,
		Prompt:      h.chatSvc.Prompt(session.Mode),
		MenuCommand: h.chatSvc.MenuCommand(),
	}
}

func (h *Handler) respondServiceError(w http.ResponseWriter, err error) {
	if errors.Is(err, chatService.ErrSessionNotFound) {
		utils.RespondError(w, http.StatusNotFound, err.Error())
		return
	}
	h.logger.Error("chat request failed", zap.Error(err))
	utils.RespondError(w, http.StatusInternalServerError, "internal error")
}
