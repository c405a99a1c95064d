// Package handlers provides HTTP request handlers.
package handlers

import (
	"net/http"
	"time"

	"github.com/wirebus/wirebus/pkg/api/response"
	"github.com/wirebus/wirebus/pkg/signal"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	bus     *signal.Bus
	version string
	started time.Time
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(bus *signal.Bus, version string) *HealthHandler {
	return &HealthHandler{
		bus:     bus,
		version: version,
		started: time.Now(),
	}
}

// Health handles the /health endpoint (liveness probe).
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}

// Ready handles the /ready endpoint (readiness probe).
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]bool{
		"ready": true,
	})
}

// Status handles the /status endpoint (detailed status).
func (h *HealthHandler) Status(w http.ResponseWriter, r *http.Request) {
	stats := h.bus.Stats()
	response.JSON(w, http.StatusOK, map[string]any{
		"version":        h.version,
		"uptime_seconds": int64(time.Since(h.started).Seconds()),
		"bus": map[string]int{
			"emitters": stats.Emitters,
			"signals":  stats.Signals,
			"bindings": stats.Bindings,
		},
	})
}
