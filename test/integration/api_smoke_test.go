package integration_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/Drakkarus-debug/Roam-Romance-001/internal/app/apiapp"
	"github.com/Drakkarus-debug/Roam-Romance-001/internal/config"
)

func newSmokeServer(t *testing.T) *httptest.Server {
	t.Helper()
	cfg := config.Default()
	cfg.HTTP.Addr = ":0"
	cfg.Postgres.DSN = ""
	cfg.Redis.Addr = ""
	cfg.S3.Endpoint = ""
	cfg.Quota.Backend = config.QuotaBackendLocal

	app, err := apiapp.New(context.Background(), cfg, zap.NewNop())
	if err != nil {
		t.Fatalf("create app: %v", err)
	}
	ts := httptest.NewServer(app.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = app.Shutdown(context.Background())
	})
	return ts
}

func TestHealthz(t *testing.T) {
	ts := newSmokeServer(t)

	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("get healthz: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}

	var payload struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if payload.Status != "ok" {
		t.Fatalf("unexpected payload: %+v", payload)
	}
}

func TestPlansArePublic(t *testing.T) {
	ts := newSmokeServer(t)

	resp, err := http.Get(ts.URL + "/v1/subscriptions")
	if err != nil {
		t.Fatalf("get plans: %v", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("unexpected status: got %d want %d", resp.StatusCode, http.StatusOK)
	}
	var payload struct {
		Plans []struct {
			ID string `json:"id"`
		} `json:"plans"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(payload.Plans) != 3 {
		t.Fatalf("unexpected plan count: got %d want 3", len(payload.Plans))
	}
}
