// Copyright (c) 2026 Tomeswap. All rights reserved.
// Author: tai.buivan.jp@gmail.com

// Command api is the entry point for the Tomeswap HTTP API server.
//
// # Startup Sequence
//
//  1. Initialize structured logger.
//  2. Load configuration from environment variables.
//  3. Connect to PostgreSQL (pgxpool).
//  4. Connect to Redis.
//  5. Run database migrations (idempotent).
//  6. Start the thumbnail worker.
//  7. Wire HTTP handlers.
//  8. Start HTTP server with graceful shutdown.
//
// No business logic lives here. All wiring is explicit constructor injection.
package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/taibuivan/tomeswap/internal/api"
	"github.com/taibuivan/tomeswap/internal/core/book"
	"github.com/taibuivan/tomeswap/internal/core/swap"
	"github.com/taibuivan/tomeswap/internal/media/thumbnail"
	"github.com/taibuivan/tomeswap/internal/platform/config"
	"github.com/taibuivan/tomeswap/internal/platform/constants"
	"github.com/taibuivan/tomeswap/internal/platform/migration"
	pgstore "github.com/taibuivan/tomeswap/internal/platform/postgres"
	redisstore "github.com/taibuivan/tomeswap/internal/platform/redis"
	"github.com/taibuivan/tomeswap/internal/platform/sec"
	"github.com/taibuivan/tomeswap/internal/users/auth"
)

func main() {
	// ── 1. Logger ──────────────────────────────────────────────────────────
	// Initialize first so that subsequent startup errors are structured JSON.
	rawLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))

	// Add global context to all log entries.
	log := rawLog.With(slog.String("app", "tomeswap"))
	slog.SetDefault(log)

	log.Info("[Tomeswap] service_initializing")

	// ── 2. Configuration ──────────────────────────────────────────────────
	cfg, err := config.Load()
	must(log, err, "load configuration")

	if cfg.Debug {
		debugLog := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
			Level: slog.LevelDebug,
		}))
		log = debugLog.With(slog.String("app", "tomeswap"))
		slog.SetDefault(log)
		log.Debug("debug_logging_enabled")
	}

	log.Info("configuration_loaded",
		slog.String("environment", cfg.Environment),
		slog.String("port", cfg.ServerPort),
	)

	// Root context for startup. Use a 30s deadline so misconfiguration is
	// caught quickly rather than hanging indefinitely.
	startupCtx, startupCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer startupCancel()

	// Application lifetime context. Canceling it stops the thumbnail worker
	// and the rate limiter's cleanup goroutine.
	appCtx, appCancel := context.WithCancel(context.Background())
	defer appCancel()

	// ── 3. PostgreSQL ─────────────────────────────────────────────────────
	pool, err := pgstore.NewPool(startupCtx, cfg.DatabaseURL, log)
	must(log, err, "connect to postgres")
	defer func() {
		log.Info("closing postgres pool")
		pool.Close()
	}()

	// ── 4. Redis ──────────────────────────────────────────────────────────
	rdb, err := redisstore.NewClient(startupCtx, cfg.RedisURL, log)
	must(log, err, "connect to redis")
	defer func() {
		log.Info("closing redis client")
		if cerr := rdb.Close(); cerr != nil {
			log.Error("redis close error", slog.Any("error", cerr))
		}
	}()

	// ── 5. Migrations ─────────────────────────────────────────────────────
	must(log, migration.RunUp(cfg.DatabaseURL, cfg.MigrationPath, log), "run migrations")

	// ── 6. Auth Service ───────────────────────────────────────────────────
	jwtSvc, err := sec.NewTokenService(cfg.JWTPrivKeyPath, cfg.JWTPubKeyPath, constants.AuthIssuer)
	must(log, err, "initialize jwt service")

	// ── 7. Health handlers (wired with real dependency checkers) ──────────
	liveness, readiness := api.NewHealthHandlers(api.HealthDependencies{
		CheckDatabase: func() error {
			return pgstore.Ping(context.Background(), pool)
		},
		CheckCache: func() error {
			return redisstore.Ping(context.Background(), rdb)
		},
	}, log)

	// ── 8. Thumbnail Pipeline ─────────────────────────────────────────────
	// Single background consumer; lives until the worker context is canceled
	// during shutdown.
	bookRepository := book.NewPostgresRepository(pool)

	imageProcessor, err := thumbnail.NewImageProcessor(cfg.MediaDir, cfg.MediaBaseURL)
	must(log, err, "initialize thumbnail processor")

	thumbnailQueue := thumbnail.NewQueue(cfg.ThumbnailQueueSize)
	thumbnailWorker := thumbnail.NewWorker(thumbnailQueue, imageProcessor, bookRepository.SetThumbnailURL, log)

	go thumbnailWorker.Run(appCtx)

	// ── 9. Domain Wiring ──────────────────────────────────────────────────
	userRepository := auth.NewPostgresUserRepository(pool)
	sessionRepository := auth.NewPostgresSessionRepository(pool)
	refreshTokens := auth.NewRedisRefreshTokenStore(rdb)
	authService := auth.NewService(userRepository, sessionRepository, refreshTokens, jwtSvc)
	authHandler := auth.NewHandler(authService)

	bookService := book.NewService(bookRepository, thumbnailQueue, log)
	bookHandler := book.NewHandler(bookService)

	swapRepository := swap.NewPostgresRepository(pool)
	reputation := swap.NewRedisReputation(rdb)
	swapService := swap.NewService(swapRepository, bookRepository, reputation, log)
	swapHandler := swap.NewHandler(swapService)

	// ── 10. HTTP Server ───────────────────────────────────────────────────
	handlers := api.Handlers{
		Liveness:  liveness,
		Readiness: readiness,
		Auth:      authHandler,
		Book:      bookHandler,
		Swap:      swapHandler,
	}

	server := api.NewServer(appCtx, cfg, log, jwtSvc, handlers)

	// ── 11. Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	serverErr := make(chan error, 1)
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
	}()

	// Block until OS signal or server error.
	select {
	case sig := <-quit:
		log.Info("shutdown signal received", slog.String("signal", sig.String()))
	case err := <-serverErr:
		log.Error("server startup error", slog.Any("error", err))
	}

	// Give in-flight requests enough time to complete, then stop the worker.
	shutdownTimeout := constants.ShutdownTimeout
	log.Info("shutting down server", slog.Duration("timeout", shutdownTimeout))

	if err := server.Shutdown(shutdownTimeout); err != nil {
		log.Error("shutdown error", slog.Any("error", err))
		os.Exit(1)
	}

	appCancel()

	log.Info("server stopped cleanly")
}

// must logs a structured fatal error and terminates the process if err is non-nil.
//
// It is intentionally limited to startup wiring. After startup, all errors
// must be returned and handled explicitly (never panic).
func must(log *slog.Logger, err error, context string) {
	if err != nil {
		log.Error("startup failure",
			slog.String("context", context),
			slog.Any("error", err),
		)
		os.Exit(1)
	}
}
