package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultTimeWindow != "24h" || cfg.DefaultViewMode != "grid" {
		t.Fatalf("unexpected defaults window=%q view=%q", cfg.DefaultTimeWindow, cfg.DefaultViewMode)
	}
	if cfg.MaxRetries != 3 {
		t.Fatalf("expected max_retries 3, got %d", cfg.MaxRetries)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("unexpected request timeout %v", cfg.RequestTimeout)
	}
	if cfg.RefreshInterval != 0 {
		t.Fatalf("auto refresh should be disabled by default, got %v", cfg.RefreshInterval)
	}
	if cfg.Location == nil {
		t.Fatalf("expected display location to be resolved")
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("DEFAULT_TIME_WINDOW", "7D")
	t.Setenv("DEFAULT_VIEW_MODE", "list")
	t.Setenv("REFRESH_INTERVAL", "60")
	t.Setenv("DISPLAY_TIMEZONE", "UTC")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.DefaultTimeWindow != "7d" || cfg.DefaultViewMode != "list" {
		t.Fatalf("env overrides not applied: %+v", cfg)
	}
	if cfg.RefreshInterval != time.Minute {
		t.Fatalf("unexpected refresh interval %v", cfg.RefreshInterval)
	}
	if cfg.Location != time.UTC {
		t.Fatalf("expected UTC location, got %v", cfg.Location)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"DEFAULT_TIME_WINDOW": "1y",
		"DEFAULT_VIEW_MODE":   "carousel",
		"REQUEST_TIMEOUT":     "0",
		"MAX_RETRIES":         "-1",
		"DISPLAY_TIMEZONE":    "Mars/Olympus",
	}
	for key, val := range cases {
		t.Run(key, func(t *testing.T) {
			t.Chdir(t.TempDir())
			t.Setenv(key, val)
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", key, val)
			}
		})
	}
}
