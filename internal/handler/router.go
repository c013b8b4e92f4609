package handler

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	chatHandler "chat-ai-api/internal/handler/chat"
	middlewarePkg "chat-ai-api/internal/middleware"
	chatService "chat-ai-api/internal/service/chat"
	"chat-ai-api/pkg/utils"
	"chat-ai-api/web"
)

// Pinger is the liveness probe dependency, satisfied by the Postgres store.
type Pinger interface {
	Ping(ctx context.Context) error
}

// NewRouter wires HTTP routes to core services.
func NewRouter(chatSvc *chatService.Service, db Pinger) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middlewarePkg.CORS)

	chatHandler.New(chatSvc).RegisterRoutes(r)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		if db != nil {
			if err := db.Ping(r.Context()); err != nil {
				utils.RespondError(w, http.StatusServiceUnavailable, "database unreachable")
				return
			}
		}
		utils.RespondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	// Embedded single-page front-end on everything else.
	r.NotFound(web.Handler().ServeHTTP)

	return r
}
