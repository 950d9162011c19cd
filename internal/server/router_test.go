package server

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "carinderia/internal/log"
	"carinderia/internal/metrics"
)

func TestNewRouterRegistersHealthRoute(t *testing.T) {
	router := newRouter(metrics.NewRegistry())
	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected /healthz to return 200, got %d", rr.Code)
	}
	if ct := rr.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %q", ct)
	}
}

func TestNewRouterWithoutRegistryOmitsMetrics(t *testing.T) {
	router := newRouter(nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected /metrics to be absent, got %d", rr.Code)
	}
}

func TestRootRedirectsToDashboard(t *testing.T) {
	router := newRouter(nil)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))
	if rr.Code != http.StatusSeeOther || rr.Header().Get("Location") != "/app" {
		t.Fatalf("expected redirect to /app, got %d %q", rr.Code, rr.Header().Get("Location"))
	}

	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/nope", nil))
	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for unknown path, got %d", rr.Code)
	}
}

func TestWithRequestIDReusesOrGeneratesID(t *testing.T) {
	var seen string
	handler := withRequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = applog.RequestID(r.Context())
	}))

	rr := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, "req-42")
	handler.ServeHTTP(rr, req)
	if seen != "req-42" || rr.Header().Get(requestIDHeader) != "req-42" {
		t.Fatalf("expected client request id to be reused, got ctx=%q header=%q", seen, rr.Header().Get(requestIDHeader))
	}

	rr = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(requestIDHeader, strings.Repeat("x", maxRequestIDLength+1))
	handler.ServeHTTP(rr, req)
	if seen == "" || len(seen) > maxRequestIDLength {
		t.Fatalf("expected a generated request id, got %q", seen)
	}
	if rr.Header().Get(requestIDHeader) != seen {
		t.Fatalf("expected generated id to be echoed, got %q", rr.Header().Get(requestIDHeader))
	}
}
