package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server      ServerConfig
	Sources     SourcesConfig
	Aggregation AggregationConfig
	Monitor     MonitorConfig
	Logging     LoggingConfig
	RateLimit   RateLimitConfig
}

type ServerConfig struct {
	Host string
	Port int
}

type SourcesConfig struct {
	USGSBaseURL        string
	NWSBaseURL         string
	NWSUserAgent       string
	NWSArea            string
	OpenWeatherAPIKey  string
	OpenWeatherBaseURL string
	FetchTimeout       time.Duration
}

type AggregationConfig struct {
	// FailureMode is "partial" (default: degrade to surviving sources)
	// or "strict" (fail the whole call on any source error).
	FailureMode string
}

type MonitorConfig struct {
	Enabled     bool
	Interval    time.Duration
	Retention   time.Duration
	WorkerCount int
	BufferSize  int
	// Lat/Lon anchor the monitor's condition-feed cycles; when unset the
	// condition source is skipped, matching per-request behavior.
	Lat *float64
	Lon *float64
}

type LoggingConfig struct {
	Level  string
	Format string
}

type RateLimitConfig struct {
	RPS int
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host: getEnv("SERVER_HOST", "localhost"),
			Port: getEnvInt("SERVER_PORT", 8080),
		},
		Sources: SourcesConfig{
			USGSBaseURL:        getEnv("USGS_BASE_URL", "https://earthquake.usgs.gov/earthquakes/feed/v1.0/summary"),
			NWSBaseURL:         getEnv("NWS_BASE_URL", "https://api.weather.gov"),
			NWSUserAgent:       getEnv("NWS_USER_AGENT", "DisasterSentinel (contact@disastersentinel.dev)"),
			NWSArea:            getEnv("NWS_AREA", ""),
			OpenWeatherAPIKey:  getEnv("OPENWEATHER_API_KEY", ""),
			OpenWeatherBaseURL: getEnv("OPENWEATHER_BASE_URL", "https://api.openweathermap.org"),
			FetchTimeout:       getEnvDuration("FETCH_TIMEOUT", 10*time.Second),
		},
		Aggregation: AggregationConfig{
			FailureMode: getEnv("AGGREGATION_FAILURE_MODE", "partial"),
		},
		Monitor: MonitorConfig{
			Enabled:     getEnvBool("MONITOR_ENABLED", true),
			Interval:    getEnvDuration("MONITOR_INTERVAL", 5*time.Minute),
			Retention:   getEnvDuration("MONITOR_RETENTION", 24*time.Hour),
			WorkerCount: getEnvInt("MONITOR_WORKER_COUNT", 2),
			BufferSize:  getEnvInt("MONITOR_BUFFER_SIZE", 100),
			Lat:         getEnvFloat("MONITOR_LAT"),
			Lon:         getEnvFloat("MONITOR_LON"),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		RateLimit: RateLimitConfig{
			RPS: getEnvInt("RATE_LIMIT_RPS", 5),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "text" {
		return fmt.Errorf("invalid log format: %s", c.Logging.Format)
	}

	if c.Aggregation.FailureMode != "partial" && c.Aggregation.FailureMode != "strict" {
		return fmt.Errorf("invalid aggregation failure mode: %s", c.Aggregation.FailureMode)
	}

	if c.Sources.FetchTimeout < time.Second {
		return fmt.Errorf("fetch timeout must be at least 1 second")
	}
	if c.Monitor.Enabled && c.Monitor.Interval < 30*time.Second {
		return fmt.Errorf("monitor interval must be at least 30 seconds")
	}
	if (c.Monitor.Lat == nil) != (c.Monitor.Lon == nil) {
		return fmt.Errorf("MONITOR_LAT and MONITOR_LON must be set together")
	}

	if c.RateLimit.RPS < 1 {
		return fmt.Errorf("invalid rate limit: %d", c.RateLimit.RPS)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}

func getEnvFloat(key string) *float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return &f
		}
	}
	return nil
}
