package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("expected default port 8080, got %d", cfg.Server.Port)
	}
	if cfg.Aggregation.FailureMode != "partial" {
		t.Errorf("expected default failure mode partial, got %s", cfg.Aggregation.FailureMode)
	}
	if cfg.Sources.FetchTimeout != 10*time.Second {
		t.Errorf("expected default fetch timeout 10s, got %v", cfg.Sources.FetchTimeout)
	}
	if cfg.Logging.Level != "info" || cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults: %s/%s", cfg.Logging.Level, cfg.Logging.Format)
	}
	if cfg.Monitor.Lat != nil || cfg.Monitor.Lon != nil {
		t.Error("expected no monitor coordinates by default")
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("AGGREGATION_FAILURE_MODE", "strict")
	t.Setenv("OPENWEATHER_API_KEY", "abc123")
	t.Setenv("MONITOR_LAT", "30.27")
	t.Setenv("MONITOR_LON", "-97.74")
	t.Setenv("LOG_FORMAT", "text")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if cfg.Server.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.Server.Port)
	}
	if cfg.Aggregation.FailureMode != "strict" {
		t.Errorf("expected strict mode, got %s", cfg.Aggregation.FailureMode)
	}
	if cfg.Sources.OpenWeatherAPIKey != "abc123" {
		t.Errorf("unexpected API key: %s", cfg.Sources.OpenWeatherAPIKey)
	}
	if cfg.Monitor.Lat == nil || *cfg.Monitor.Lat != 30.27 {
		t.Errorf("unexpected monitor lat: %v", cfg.Monitor.Lat)
	}
	if cfg.Logging.Format != "text" {
		t.Errorf("expected text format, got %s", cfg.Logging.Format)
	}
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"bad port", "SERVER_PORT", "70000"},
		{"bad log level", "LOG_LEVEL", "verbose"},
		{"bad log format", "LOG_FORMAT", "xml"},
		{"bad failure mode", "AGGREGATION_FAILURE_MODE", "best-effort"},
		{"fetch timeout too short", "FETCH_TIMEOUT", "100ms"},
		{"monitor interval too short", "MONITOR_INTERVAL", "5s"},
		{"lat without lon", "MONITOR_LAT", "30.0"},
		{"bad rate limit", "RATE_LIMIT_RPS", "0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := Load(); err == nil {
				t.Errorf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}
