package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/wirebus/wirebus/pkg/signal"
)

type namedEmitter struct{ name string }

func (e *namedEmitter) String() string { return e.name }

func newTestBus(t *testing.T) (*signal.Bus, *namedEmitter) {
	t.Helper()
	bus := signal.New()
	emitter := &namedEmitter{name: "OrderService"}
	if err := bus.Declare(emitter, "orderPlaced"); err != nil {
		t.Fatalf("declare: %v", err)
	}
	if _, err := bus.Connect(emitter, "orderPlaced", func(args ...any) error { return nil }); err != nil {
		t.Fatalf("connect: %v", err)
	}
	return bus, emitter
}

func TestSignalsHandler_List(t *testing.T) {
	bus, _ := newTestBus(t)
	h := NewSignalsHandler(bus)

	w := httptest.NewRecorder()
	h.List(w, httptest.NewRequest(http.MethodGet, "/api/v1/signals", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var body struct {
		Emitters []signal.EmitterInfo `json:"emitters"`
	}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(body.Emitters) != 1 {
		t.Fatalf("expected 1 emitter, got %d", len(body.Emitters))
	}
	if body.Emitters[0].Emitter != "OrderService" {
		t.Errorf("emitter = %q, want OrderService", body.Emitters[0].Emitter)
	}
	if len(body.Emitters[0].Signals) != 1 || body.Emitters[0].Signals[0].Name != "orderPlaced" {
		t.Errorf("signals = %+v", body.Emitters[0].Signals)
	}
}

func TestSignalsHandler_Get(t *testing.T) {
	bus, _ := newTestBus(t)
	h := NewSignalsHandler(bus)

	r := chi.NewRouter()
	r.Get("/api/v1/signals/{emitter}", h.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/signals/OrderService", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var info signal.EmitterInfo
	if err := json.NewDecoder(w.Body).Decode(&info); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if info.Emitter != "OrderService" {
		t.Errorf("emitter = %q, want OrderService", info.Emitter)
	}
}

func TestSignalsHandler_GetUnknown(t *testing.T) {
	bus, _ := newTestBus(t)
	h := NewSignalsHandler(bus)

	r := chi.NewRouter()
	r.Get("/api/v1/signals/{emitter}", h.Get)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/signals/Nope", nil))

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestSignalsHandler_Stats(t *testing.T) {
	bus, _ := newTestBus(t)
	h := NewSignalsHandler(bus)

	w := httptest.NewRecorder()
	h.Stats(w, httptest.NewRequest(http.MethodGet, "/api/v1/signals/stats", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	var stats map[string]int
	if err := json.NewDecoder(w.Body).Decode(&stats); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if stats["emitters"] != 1 || stats["signals"] != 1 || stats["bindings"] != 1 {
		t.Errorf("stats = %v", stats)
	}
}
