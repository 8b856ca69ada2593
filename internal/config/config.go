// Package config loads and validates application configuration from environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/pkordes/flightlog/internal/enrich"
)

// Record store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

// Enrichment providers.
const (
	EnrichMock = "mock"
	EnrichHTTP = "http"
)

// Config holds all configuration values for the API server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// CORSOrigins is the list of allowed cross-origin request origins.
	// Defaults to ["http://localhost:5173"] (Vite dev server).
	// Set CORS_ORIGINS to a comma-separated list to override.
	CORSOrigins []string

	// StoreBackend selects the logbook's record store: memory, postgres or redis.
	StoreBackend string

	// DatabaseURL is the Postgres connection string.
	// Required when StoreBackend is postgres.
	DatabaseURL string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	// EnrichProvider selects the flight lookup: mock or http.
	EnrichProvider string
	// EnrichBaseURL is the lookup API root. Required when EnrichProvider is http.
	EnrichBaseURL string
	EnrichAPIKey  string
	// EnrichMockDelay is the simulated latency of the mock lookup.
	EnrichMockDelay time.Duration

	// RateLimitRPS and RateLimitBurst bound requests per client IP.
	RateLimitRPS   float64
	RateLimitBurst int

	// MaxBodyBytes caps request bodies.
	MaxBodyBytes int64
}

// Load reads configuration from environment variables and returns a Config.
// Every invalid value and missing required variable is reported in one error.
func Load() (Config, error) {
	p := &parser{}

	cfg := Config{
		Port:            getEnv("PORT", "8080"),
		LogLevel:        strings.ToLower(getEnv("LOG_LEVEL", "info")),
		CORSOrigins:     splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		StoreBackend:    strings.ToLower(getEnv("STORE_BACKEND", StoreMemory)),
		DatabaseURL:     os.Getenv("DATABASE_URL"),
		RedisAddr:       getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:   os.Getenv("REDIS_PASSWORD"),
		RedisDB:         p.getInt("REDIS_DB", 0),
		EnrichProvider:  strings.ToLower(getEnv("ENRICH_PROVIDER", EnrichMock)),
		EnrichBaseURL:   os.Getenv("ENRICH_BASE_URL"),
		EnrichAPIKey:    os.Getenv("ENRICH_API_KEY"),
		EnrichMockDelay: p.getDuration("ENRICH_MOCK_DELAY", enrich.DefaultMockDelay),
		RateLimitRPS:    p.getFloat("RATE_LIMIT_RPS", 10),
		RateLimitBurst:  p.getInt("RATE_LIMIT_BURST", 20),
		MaxBodyBytes:    int64(p.getInt("MAX_BODY_BYTES", 1<<20)),
	}

	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		p.fail("LOG_LEVEL must be one of debug, info, warn, error")
	}

	var missing []string
	switch cfg.StoreBackend {
	case StoreMemory, StoreRedis:
	case StorePostgres:
		if cfg.DatabaseURL == "" {
			missing = append(missing, "DATABASE_URL")
		}
	default:
		p.fail("STORE_BACKEND must be one of memory, postgres, redis")
	}

	switch cfg.EnrichProvider {
	case EnrichMock:
	case EnrichHTTP:
		if cfg.EnrichBaseURL == "" {
			missing = append(missing, "ENRICH_BASE_URL")
		}
	default:
		p.fail("ENRICH_PROVIDER must be one of mock, http")
	}

	if cfg.RateLimitRPS <= 0 {
		p.fail("RATE_LIMIT_RPS must be positive")
	}
	if cfg.RateLimitBurst <= 0 {
		p.fail("RATE_LIMIT_BURST must be positive")
	}
	if cfg.MaxBodyBytes <= 0 {
		p.fail("MAX_BODY_BYTES must be positive")
	}

	if len(missing) > 0 {
		p.fail(fmt.Sprintf("required environment variables not set: %s", strings.Join(missing, ", ")))
	}
	if err := p.err(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// parser collects every conversion failure so Load can report them together.
type parser struct {
	errs []error
}

func (p *parser) fail(msg string) {
	p.errs = append(p.errs, errors.New(msg))
}

func (p *parser) err() error {
	return errors.Join(p.errs...)
}

func (p *parser) getInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		p.fail(fmt.Sprintf("%s: %q is not an integer", key, v))
		return fallback
	}
	return n
}

func (p *parser) getFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		p.fail(fmt.Sprintf("%s: %q is not a number", key, v))
		return fallback
	}
	return f
}

func (p *parser) getDuration(key string, fallback time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		p.fail(fmt.Sprintf("%s: %q is not a duration", key, v))
		return fallback
	}
	return d
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
