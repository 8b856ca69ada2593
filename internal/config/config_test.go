package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/pkordes/flightlog/internal/config"
)

var allVars = []string{
	"PORT", "LOG_LEVEL", "CORS_ORIGINS", "STORE_BACKEND", "DATABASE_URL",
	"REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "ENRICH_PROVIDER",
	"ENRICH_BASE_URL", "ENRICH_API_KEY", "ENRICH_MOCK_DELAY",
	"RATE_LIMIT_RPS", "RATE_LIMIT_BURST", "MAX_BODY_BYTES",
}

// clearEnv blanks every variable Load reads so the host environment cannot
// leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range allVars {
		t.Setenv(k, "")
	}
}

// TestLoad_defaults verifies that an empty environment is valid and every
// value falls back to its default.
func TestLoad_defaults(t *testing.T) {
	clearEnv(t)

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "8080", cfg.Port)
	require.Equal(t, "info", cfg.LogLevel)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.CORSOrigins)
	require.Equal(t, config.StoreMemory, cfg.StoreBackend)
	require.Equal(t, "localhost:6379", cfg.RedisAddr)
	require.Equal(t, 0, cfg.RedisDB)
	require.Equal(t, config.EnrichMock, cfg.EnrichProvider)
	require.Equal(t, 800*time.Millisecond, cfg.EnrichMockDelay)
	require.InDelta(t, 10.0, cfg.RateLimitRPS, 1e-9)
	require.Equal(t, 20, cfg.RateLimitBurst)
	require.Equal(t, int64(1048576), cfg.MaxBodyBytes)
}

// TestLoad_overrides verifies that all values can be overridden via env vars.
func TestLoad_overrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "DEBUG")
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://admin.example.com")
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("DATABASE_URL", "postgres://user:pass@db:5432/flightlog")
	t.Setenv("REDIS_DB", "3")
	t.Setenv("ENRICH_PROVIDER", "http")
	t.Setenv("ENRICH_BASE_URL", "https://flights.example.com/v1")
	t.Setenv("ENRICH_API_KEY", "secret")
	t.Setenv("ENRICH_MOCK_DELAY", "50ms")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_BURST", "5")
	t.Setenv("MAX_BODY_BYTES", "4096")

	cfg, err := config.Load()

	require.NoError(t, err)
	require.Equal(t, "9090", cfg.Port)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, []string{"https://app.example.com", "https://admin.example.com"}, cfg.CORSOrigins)
	require.Equal(t, config.StorePostgres, cfg.StoreBackend)
	require.Equal(t, "postgres://user:pass@db:5432/flightlog", cfg.DatabaseURL)
	require.Equal(t, 3, cfg.RedisDB)
	require.Equal(t, config.EnrichHTTP, cfg.EnrichProvider)
	require.Equal(t, "https://flights.example.com/v1", cfg.EnrichBaseURL)
	require.Equal(t, "secret", cfg.EnrichAPIKey)
	require.Equal(t, 50*time.Millisecond, cfg.EnrichMockDelay)
	require.InDelta(t, 2.5, cfg.RateLimitRPS, 1e-9)
	require.Equal(t, 5, cfg.RateLimitBurst)
	require.Equal(t, int64(4096), cfg.MaxBodyBytes)
}

// TestLoad_missingRequired verifies that conditionally required variables
// are named together in one error.
func TestLoad_missingRequired(t *testing.T) {
	clearEnv(t)
	t.Setenv("STORE_BACKEND", "postgres")
	t.Setenv("ENRICH_PROVIDER", "http")

	_, err := config.Load()

	require.Error(t, err)
	require.ErrorContains(t, err, "DATABASE_URL")
	require.ErrorContains(t, err, "ENRICH_BASE_URL")
}

// TestLoad_invalidValues verifies that every malformed value is reported.
func TestLoad_invalidValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("LOG_LEVEL", "verbose")
	t.Setenv("STORE_BACKEND", "firestore")
	t.Setenv("REDIS_DB", "one")
	t.Setenv("ENRICH_MOCK_DELAY", "800")
	t.Setenv("RATE_LIMIT_BURST", "0")

	_, err := config.Load()

	require.Error(t, err)
	for _, want := range []string{"LOG_LEVEL", "STORE_BACKEND", "REDIS_DB", "ENRICH_MOCK_DELAY", "RATE_LIMIT_BURST"} {
		require.ErrorContains(t, err, want)
	}
}
