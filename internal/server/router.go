package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/hivemindhq/hivemind/internal/api"
	"github.com/hivemindhq/hivemind/internal/api/handlers"
	"github.com/hivemindhq/hivemind/internal/api/middleware"
)

type RouterConfig struct {
	AuthValidator  middleware.AuthValidator
	EntryHandler   *handlers.EntryHandler
	SummaryHandler *handlers.SummaryHandler
	QueryHandler   *handlers.QueryHandler
	AuthHandler    *handlers.AuthHandler
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	const maxBodyBytes int64 = 1 * 1024 * 1024

	r.Use(middleware.RequestID)
	r.Use(middleware.SentryMiddleware)
	r.Use(middleware.AccessLog)
	r.Use(middleware.MaxBodyBytes(maxBodyBytes))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		api.Success(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Group(func(r chi.Router) {
		r.Use(middleware.APIKeyAuth(cfg.AuthValidator))

		r.Route("/entries", func(r chi.Router) {
			r.Post("/", cfg.EntryHandler.Create)
			r.Get("/", cfg.EntryHandler.List)
			r.Get("/{id}", cfg.EntryHandler.Get)
		})

		r.Route("/summaries", func(r chi.Router) {
			r.Get("/", cfg.SummaryHandler.List)
			r.Get("/domains", cfg.SummaryHandler.ListDomains)
			r.Get("/{id}", cfg.SummaryHandler.Get)
		})

		r.Post("/query", cfg.QueryHandler.Resolve)
	})

	r.Post("/spaces", cfg.AuthHandler.CreateSpace)
	r.Post("/apikeys", cfg.AuthHandler.CreateAPIKey)

	return r
}
