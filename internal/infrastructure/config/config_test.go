package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.Port != "8080" || cfg.State.Backend != "redis" {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Catalog.FilterDebounce != 600*time.Millisecond || cfg.Catalog.LoadMoreDelay != 500*time.Millisecond {
		t.Errorf("catalog timings = %+v", cfg.Catalog)
	}
	if cfg.API.Timeout != 15*time.Second {
		t.Errorf("api timeout = %v", cfg.API.Timeout)
	}
	if !cfg.Pretty() {
		t.Error("development must log pretty")
	}
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"STATE_BACKEND":   "mongo",
		"API_BASE_URL":    "http://localhost:9000/api1",
		"FILTER_DEBOUNCE": "1s",
		"ENV":             "production",
	}))
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}
	if cfg.State.Backend != "mongo" || cfg.API.BaseURL != "http://localhost:9000/api1" || cfg.Catalog.FilterDebounce != time.Second {
		t.Errorf("cfg = %+v", cfg)
	}
	if cfg.Pretty() {
		t.Error("production must log JSON")
	}
}

func TestLoadFrom_RejectsUnknownBackend(t *testing.T) {
	_, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{"STATE_BACKEND": "sqlite"}))
	if err == nil {
		t.Fatal("expected error")
	}
}
