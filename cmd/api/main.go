// Package main is the entry point for the flightlog API server.
// Its sole responsibility is wiring dependencies together and starting the server.
// No business logic belongs here.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/pressly/goose/v3"
	"github.com/redis/go-redis/v9"

	"github.com/pkordes/flightlog/internal/config"
	"github.com/pkordes/flightlog/internal/enrich"
	"github.com/pkordes/flightlog/internal/handler"
	"github.com/pkordes/flightlog/internal/metrics"
	"github.com/pkordes/flightlog/internal/middleware"
	"github.com/pkordes/flightlog/internal/repo"
	"github.com/pkordes/flightlog/internal/service"
	"github.com/pkordes/flightlog/migrations"
	"github.com/pkordes/flightlog/spec"
)

func main() {
	// A missing .env is normal outside local development.
	_ = godotenv.Load()

	// --- Config -----------------------------------------------------------
	cfg, err := config.Load()
	if err != nil {
		// Use the default stderr logger before ours is configured.
		slog.Error("configuration error", "error", err)
		os.Exit(1)
	}

	// --- Logger -----------------------------------------------------------
	var logLevel slog.Level
	if err := logLevel.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(cfg, logger); err != nil {
		logger.Error("server exited", "error", err)
		os.Exit(1)
	}
	logger.Info("server stopped")
}

func run(cfg config.Config, logger *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	metrics.Register()

	// --- Record store -----------------------------------------------------
	store, closeStore, err := openStore(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeStore()

	// --- Services ---------------------------------------------------------
	tracker := service.NewTrackerService(newEnricher(cfg), nil, logger)
	// Wait for outstanding lookups so their outcome is logged before exit.
	defer tracker.Wait()

	logbook := service.NewLogbookService(store, nil, logger)
	if err := logbook.Start(ctx); err != nil {
		// The logbook reports the failure through its state; keep serving.
		logger.Error("logbook subscription failed to start", "error", err)
	}
	defer logbook.Close()

	export := service.NewExportService(tracker, logbook)

	// --- Router -----------------------------------------------------------
	// Middleware is applied in order: RequestID → RealIP → Logger → Recoverer
	// → metrics → CORS → rate limit → body size.
	limiter := middleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst, "/healthz", "/metrics")

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewSlogLogger(logger))
	r.Use(chimiddleware.Recoverer)
	r.Use(metrics.HTTPMiddleware)
	r.Use(middleware.NewCORSHandler(cfg.CORSOrigins))
	r.Use(limiter.Handler)
	r.Use(middleware.NewMaxBodySizeHandler(cfg.MaxBodyBytes))

	r.Handle("/metrics", metrics.Handler())
	r.Mount("/", handler.NewServer(tracker, logbook, export, spec.OpenAPI).Routes())

	// --- HTTP Server ------------------------------------------------------
	// Explicit timeouts prevent slowloris and resource exhaustion attacks.
	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", srv.Addr, "store", cfg.StoreBackend, "enrich", cfg.EnrichProvider)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return fmt.Errorf("listen: %w", err)
	case <-ctx.Done():
	}
	logger.Info("shutting down server")

	// Give in-flight requests up to 15 seconds to complete.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// openStore builds the configured DocStore and returns a func releasing its
// connections.
func openStore(ctx context.Context, cfg config.Config, logger *slog.Logger) (repo.DocStore, func(), error) {
	switch cfg.StoreBackend {
	case config.StorePostgres:
		// pgxpool manages a pool of Postgres connections.
		// New() does not open connections immediately; the first query does.
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, nil, fmt.Errorf("create database pool: %w", err)
		}
		// Verify the DB is reachable before accepting traffic.
		if err := pool.Ping(ctx); err != nil {
			pool.Close()
			return nil, nil, fmt.Errorf("connect to database: %w", err)
		}
		if err := migrate(ctx, pool, logger); err != nil {
			pool.Close()
			return nil, nil, err
		}
		logger.Info("database connection established")
		return repo.NewPGStore(pool), pool.Close, nil

	case config.StoreRedis:
		rdb := redis.NewClient(&redis.Options{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
		})
		if err := rdb.Ping(ctx).Err(); err != nil {
			_ = rdb.Close()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		logger.Info("redis connection established", "addr", cfg.RedisAddr)
		return repo.NewRedisStore(rdb), func() { _ = rdb.Close() }, nil

	default:
		logger.Warn("using in-memory record store; logbook entries are lost on restart")
		return repo.NewMemoryStore(), func() {}, nil
	}
}

// migrate applies the embedded goose migrations through a database/sql
// handle borrowed from the pool.
func migrate(ctx context.Context, pool *pgxpool.Pool, logger *slog.Logger) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()

	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	for _, res := range results {
		logger.Info("migration applied", "version", res.Source.Version, "duration", res.Duration)
	}
	return nil
}

func newEnricher(cfg config.Config) service.Enricher {
	if cfg.EnrichProvider == config.EnrichHTTP {
		return enrich.NewClient(cfg.EnrichBaseURL, enrich.WithAPIKey(cfg.EnrichAPIKey))
	}
	return enrich.NewMock(cfg.EnrichMockDelay)
}
