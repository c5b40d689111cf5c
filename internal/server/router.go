package server

import (
	"net/http"

	"github.com/cloo-solutions/fingertips/internal/api"
	"github.com/cloo-solutions/fingertips/internal/api/handlers"
	"github.com/cloo-solutions/fingertips/internal/api/middleware"
	"github.com/go-chi/chi/v5"
)

type RouterConfig struct {
	// SlackSigningSecret guards /slack/events; empty leaves it unmounted.
	SlackSigningSecret string
	// APIToken guards the operator endpoints; empty leaves them unmounted.
	APIToken string

	EventsHandler *handlers.EventsHandler
	PagesHandler  *handlers.PagesHandler
	AskHandler    *handlers.AskHandler
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

	if cfg.SlackSigningSecret != "" && cfg.EventsHandler != nil {
		r.Group(func(r chi.Router) {
			r.Use(middleware.SlackSignature(cfg.SlackSigningSecret))
			r.Post("/slack/events", cfg.EventsHandler.Receive)
		})
	}

	if cfg.APIToken != "" {
		r.Group(func(r chi.Router) {
			r.Use(middleware.ServiceTokenAuth(cfg.APIToken))

			if cfg.PagesHandler != nil {
				r.Get("/pages", cfg.PagesHandler.List)
			}
			if cfg.AskHandler != nil {
				r.Post("/ask", cfg.AskHandler.Ask)
			}
		})
	}

	return r
}
