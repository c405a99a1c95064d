package middleware

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

type recordedRequest struct {
	method string
	path   string
	status int
}

type fakeRecorder struct {
	mu       sync.Mutex
	requests []recordedRequest
}

func (f *fakeRecorder) RecordHTTPRequest(method, path string, status int, duration time.Duration) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, recordedRequest{method, path, status})
}

func TestMetrics(t *testing.T) {
	recorder := &fakeRecorder{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	wrapped := Metrics(recorder)(handler)

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/signals", nil))

	if len(recorder.requests) != 1 {
		t.Fatalf("expected 1 recorded request, got %d", len(recorder.requests))
	}
	got := recorder.requests[0]
	if got.method != http.MethodPost || got.path != "/api/v1/signals" || got.status != http.StatusCreated {
		t.Errorf("recorded %+v", got)
	}
}

func TestMetrics_SkipsMetricsEndpoint(t *testing.T) {
	recorder := &fakeRecorder{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})

	wrapped := Metrics(recorder)(handler)
	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if len(recorder.requests) != 0 {
		t.Errorf("expected no recorded requests for /metrics, got %d", len(recorder.requests))
	}
}

func TestMetrics_RecordsOnPanic(t *testing.T) {
	recorder := &fakeRecorder{}
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	})

	wrapped := Metrics(recorder)(handler)

	defer func() {
		if r := recover(); r == nil {
			t.Fatal("expected panic to propagate")
		}
		if len(recorder.requests) != 1 {
			t.Fatalf("expected 1 recorded request, got %d", len(recorder.requests))
		}
		if recorder.requests[0].status != http.StatusInternalServerError {
			t.Errorf("status = %d, want 500", recorder.requests[0].status)
		}
	}()

	w := httptest.NewRecorder()
	wrapped.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/boom", nil))
}

func TestNormalizePath(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"/api/v1/signals", "/api/v1/signals"},
		{"/api/v1/orders/42", "/api/v1/orders/:id"},
		{"/api/v1/bindings/0b371c72-9c75-4b4f-9f3e-9a5e3a1f2b4c", "/api/v1/bindings/:id"},
	}
	for _, tt := range tests {
		if got := normalizePath(tt.in); got != tt.want {
			t.Errorf("normalizePath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
