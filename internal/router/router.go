package router

import (
	"safenetwork-api/internal/handler"
	"safenetwork-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Actions *handler.ActionHandler
	Status  *handler.StatusHandler
}

// New creates and configures the HTTP router. The whole storefront API is
// one POST endpoint dispatched on the action name; auth is resolved per
// action inside the handler, not here.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "apikey", "x-client-info"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/api/status", cfg.Status.Status)

	r.Post("/api/actions", cfg.Actions.Dispatch)
	r.Options("/api/actions", cfg.Actions.Preflight)

	return r
}
