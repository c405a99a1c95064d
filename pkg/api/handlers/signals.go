package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/wirebus/wirebus/pkg/api/middleware"
	"github.com/wirebus/wirebus/pkg/api/response"
	"github.com/wirebus/wirebus/pkg/signal"
)

// SignalsHandler exposes the bus registry for diagnostics.
type SignalsHandler struct {
	bus *signal.Bus
}

// NewSignalsHandler creates a new signals handler.
func NewSignalsHandler(bus *signal.Bus) *SignalsHandler {
	return &SignalsHandler{bus: bus}
}

// List handles GET /api/v1/signals: every emitter with its declared
// signals and current bindings in connection order.
func (h *SignalsHandler) List(w http.ResponseWriter, r *http.Request) {
	response.JSON(w, http.StatusOK, map[string]any{
		"emitters": h.bus.InspectAll(),
	})
}

// Get handles GET /api/v1/signals/{emitter}: the registry entry for a
// single emitter, matched by its display name.
func (h *SignalsHandler) Get(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "emitter")

	for _, info := range h.bus.InspectAll() {
		if info.Emitter == name {
			response.JSON(w, http.StatusOK, info)
			return
		}
	}

	response.Error(w,
		http.StatusNotFound,
		response.ErrCodeNotFound,
		"unknown emitter: "+name,
		middleware.GetRequestID(r.Context()),
	)
}

// Stats handles GET /api/v1/signals/stats: registry-wide counts.
func (h *SignalsHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats := h.bus.Stats()
	response.JSON(w, http.StatusOK, map[string]int{
		"emitters": stats.Emitters,
		"signals":  stats.Signals,
		"bindings": stats.Bindings,
	})
}
