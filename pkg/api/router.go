// Package api provides the diagnostics HTTP server.
package api

import (
	"github.com/go-chi/chi/v5"

	"github.com/wirebus/wirebus/config"
	"github.com/wirebus/wirebus/pkg/api/handlers"
	"github.com/wirebus/wirebus/pkg/api/middleware"
	"github.com/wirebus/wirebus/pkg/logger"
)

// Handlers holds all HTTP handlers.
type Handlers struct {
	// Signals exposes the bus registry.
	Signals *handlers.SignalsHandler

	// Health handles health check endpoints.
	Health *handlers.HealthHandler

	// WebSocket streams bus events; nil disables /ws/events.
	WebSocket *handlers.WebSocketHandler

	// Metrics is the optional metrics recorder.
	Metrics middleware.MetricsRecorder
}

// NewRouter creates a new chi router with middleware and routes.
func NewRouter(cfg *config.Config, log logger.Logger, handlers *Handlers) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID())
	r.Use(middleware.Logger(log))
	r.Use(middleware.Recovery(log))

	if handlers.Metrics != nil {
		r.Use(middleware.Metrics(handlers.Metrics))
	}

	if cfg.Tracing.Enabled {
		r.Use(middleware.Tracing(middleware.DefaultTracingOptions()))
	}

	r.Use(middleware.Timeout(cfg.Server.HTTP.ReadTimeout))

	RegisterRoutes(r, handlers)

	return r
}

// RegisterRoutes registers all API routes.
func RegisterRoutes(r chi.Router, handlers *Handlers) {
	r.Route("/api/v1", func(r chi.Router) {
		if handlers.Signals != nil {
			r.Route("/signals", func(r chi.Router) {
				r.Get("/", handlers.Signals.List)
				r.Get("/stats", handlers.Signals.Stats)
				r.Get("/{emitter}", handlers.Signals.Get)
			})
		}
	})

	if handlers.Health != nil {
		r.Get("/health", handlers.Health.Health)
		r.Get("/ready", handlers.Health.Ready)
		r.Get("/status", handlers.Health.Status)
	}

	if handlers.WebSocket != nil {
		r.Get("/ws/events", handlers.WebSocket.ServeHTTP)
	}
}
