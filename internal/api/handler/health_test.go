package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
)

type stubPinger struct{ err error }

func (p stubPinger) Ping(context.Context) error { return p.err }

func TestLiveness(t *testing.T) {
	c, rec := newJSONContext(http.MethodGet, "/health", "")
	if err := NewHealthHandler().Liveness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_Healthy(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]Pinger{"redis": stubPinger{}})
	c, rec := newJSONContext(http.MethodGet, "/health/ready", "")

	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_Degraded(t *testing.T) {
	h := NewHealthDependenciesHandler(map[string]Pinger{
		"redis": stubPinger{err: errors.New("connection refused")},
	})
	c, rec := newJSONContext(http.MethodGet, "/health/ready", "")

	if err := h.Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if resp.Status != "degraded" || resp.Dependencies["redis"].Error != "connection refused" {
		t.Errorf("resp = %+v", resp)
	}
}
