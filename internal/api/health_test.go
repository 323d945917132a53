package api_test

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/persistorai/docgraph/internal/api"
)

func TestLiveness_ReturnsOK(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(nil, testLogger(), "test-v1", "memory")

	r := gin.New()
	r.GET("/health", h.Liveness)

	body := mustStatus(t, doRequest(r, http.MethodGet, "/health", ""), http.StatusOK)

	if body["status"] != "ok" {
		t.Errorf("expected status 'ok', got %v", body["status"])
	}
	if body["version"] != "test-v1" {
		t.Errorf("expected version 'test-v1', got %v", body["version"])
	}
	if body["store"] != "not_configured" {
		t.Errorf("expected store 'not_configured', got %v", body["store"])
	}
	if _, ok := body["schema_version"]; ok {
		t.Errorf("memory store should not report a schema version, got %v", body["schema_version"])
	}
}

func TestLiveness_StoreDown(t *testing.T) {
	t.Parallel()

	h := api.NewHealthHandler(failingPinger{}, testLogger(), "test-v1", "postgres")

	r := gin.New()
	r.GET("/health", h.Liveness)

	body := mustStatus(t, doRequest(r, http.MethodGet, "/health", ""), http.StatusOK)

	if body["store"] != "disconnected" {
		t.Errorf("expected store 'disconnected', got %v", body["store"])
	}
	if body["schema_version"] != float64(1) {
		t.Errorf("expected schema_version 1, got %v", body["schema_version"])
	}
}

func TestReadiness(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		store  api.Pinger
		status int
		check  string
	}{
		{"not configured", nil, http.StatusServiceUnavailable, "not_configured"},
		{"store down", failingPinger{}, http.StatusServiceUnavailable, "error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			h := api.NewHealthHandler(tt.store, testLogger(), "test", "postgres")
			r := gin.New()
			r.GET("/ready", h.Readiness)

			body := mustStatus(t, doRequest(r, http.MethodGet, "/ready", ""), tt.status)
			checks, _ := body["checks"].(map[string]any)
			if checks["store"] != tt.check {
				t.Errorf("expected store check %q, got %v", tt.check, checks["store"])
			}
		})
	}
}

func TestReadiness_MemoryStore(t *testing.T) {
	t.Parallel()

	app := newTestApp(t)
	body := mustStatus(t, doRequest(app, http.MethodGet, "/api/v1/ready", ""), http.StatusOK)

	if body["status"] != "ready" {
		t.Errorf("expected status 'ready', got %v", body["status"])
	}
}
