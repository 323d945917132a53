// Package config provides environment-driven configuration for docgraph.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Store drivers.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	StoreDriver        string
	DatabaseURL        Secret
	Port               string
	ListenHost         string
	MetricsPort        string
	CORSOrigins        []string
	LogLevel           string
	DBMaxConns         int32
	GraphCollection    string
	CursorBatchSize    int
	ElementCacheSize   int
	AuditEnabled       bool
	AuditRetentionDays int
	RateLimitRPS       float64
	RateLimitBurst     int
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		StoreDriver:     envOrDefault("STORE_DRIVER", DriverPostgres),
		DatabaseURL:     Secret(envOrDefault("DATABASE_URL", "")),
		Port:            envOrDefault("PORT", "3040"),
		ListenHost:      envOrDefault("LISTEN_HOST", "127.0.0.1"),
		MetricsPort:     envOrDefault("METRICS_PORT", "9092"),
		LogLevel:        envOrDefault("LOG_LEVEL", "info"),
		GraphCollection: envOrDefault("GRAPH_COLLECTION", "_graphs"),
		AuditEnabled:    envOrDefault("AUDIT_ENABLED", "true") == "true",
	}

	var err error
	if cfg.DBMaxConns, err = int32Env("DB_MAX_CONNS", "21", 2, 200); err != nil {
		return nil, err
	}
	if cfg.CursorBatchSize, err = intEnv("CURSOR_BATCH_SIZE", "100", 1, 10000); err != nil {
		return nil, err
	}
	if cfg.ElementCacheSize, err = intEnv("ELEMENT_CACHE_SIZE", "4096", 1, 1<<20); err != nil {
		return nil, err
	}
	if cfg.AuditRetentionDays, err = intEnv("AUDIT_RETENTION_DAYS", "90", 1, 3650); err != nil {
		return nil, err
	}
	if cfg.RateLimitBurst, err = intEnv("RATE_LIMIT_BURST", "100", 1, 100000); err != nil {
		return nil, err
	}

	rps, err := strconv.ParseFloat(envOrDefault("RATE_LIMIT_RPS", "50"), 64)
	if err != nil || rps <= 0 {
		return nil, fmt.Errorf("RATE_LIMIT_RPS must be a positive number")
	}
	cfg.RateLimitRPS = rps

	if origins := envOrDefault("CORS_ORIGINS", ""); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}

// intEnv parses key as an integer in [lo, hi].
func intEnv(key, fallback string, lo, hi int) (int, error) {
	v, err := strconv.Atoi(envOrDefault(key, fallback))
	if err != nil || v < lo || v > hi {
		return 0, fmt.Errorf("%s must be an integer between %d and %d", key, lo, hi)
	}
	return v, nil
}

func int32Env(key, fallback string, lo, hi int) (int32, error) {
	v, err := intEnv(key, fallback, lo, hi)
	return int32(v), err //nolint:gosec // bounded by hi.
}
