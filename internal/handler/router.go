package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/chemassist/assistant/backend/internal/app"
	"github.com/chemassist/assistant/backend/internal/handler/chat"
	"github.com/chemassist/assistant/backend/internal/handler/sidebar"
	"github.com/chemassist/assistant/backend/internal/handler/stream"
	"github.com/chemassist/assistant/backend/internal/handler/ws"
	"github.com/chemassist/assistant/backend/internal/logging"
	middlewarePkg "github.com/chemassist/assistant/backend/internal/middleware"
	"github.com/chemassist/assistant/backend/pkg/utils"
	"github.com/chemassist/assistant/backend/web"
)

// NewRouter wires HTTP routes to core services.
func NewRouter(services *app.Services, logger *zap.Logger) http.Handler {
	logger = logging.OrNop(logger)

	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middlewarePkg.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	// Create handlers
	chatHandler := chat.New(services.Chat, logger)
	streamHandler := stream.New(services.Chat, logger)
	wsHandler := ws.New(services.Chat, logger)
	sidebarHandler := sidebar.New(services.Assets, logger)

	r.Route("/api", func(api chi.Router) {
		api.Get("/health", handleHealth)

		chatHandler.RegisterRoutes(api)
		streamHandler.RegisterRoutes(api)
		wsHandler.RegisterRoutes(api)
		sidebarHandler.RegisterRoutes(api)
	})

	// Browser shell
	r.Get("/", handleIndex)

	return r
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(web.Index())
}
