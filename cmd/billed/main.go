// Command billed serves the Billed expense report web application.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/billed/billed-app/internal/api"
	"github.com/billed/billed-app/internal/api/handler"
	"github.com/billed/billed-app/internal/core/service"
	mongodb "github.com/billed/billed-app/internal/infrastructure/db/mongo"
	redisdb "github.com/billed/billed-app/internal/infrastructure/db/redis"
	"github.com/billed/billed-app/internal/pkg/config"
	"github.com/billed/billed-app/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// version is stamped at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg := config.Load()
	log := logger.Init(logger.Options{Level: cfg.LogLevel, Pretty: cfg.LogPretty, Version: version})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Error().Err(err).Msg("billed stopped")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	client, db, err := mongodb.Connect(ctx, mongodb.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	if err != nil {
		return err
	}
	defer func() {
		dctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := client.Disconnect(dctx); err != nil {
			log.Warn().Err(err).Msg("mongo disconnect")
		}
	}()
	if err := mongodb.EnsureIndexes(ctx, db); err != nil {
		return err
	}

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		PoolSize: cfg.Redis.PoolSize,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Warn().Err(err).Msg("redis close")
		}
	}()

	// --- Dependencies ---
	billRepo := mongodb.NewBillRepository(db)
	receipts := mongodb.NewReceiptStorage(db)
	cache := redisdb.NewBillCache(rdb, cfg.Redis.CacheTTL)
	guard := redisdb.NewSubmitGuard(rdb, cfg.Redis.SubmitGuardTTL)

	svc := api.Services{
		Store:     service.NewBillStore(billRepo, receipts, cache, guard, log),
		Receipts:  receipts,
		Dashboard: service.NewDashboardService(billRepo, cache, log),
		Auth:      service.NewAuthService(mongodb.NewAuthRepository(db), cfg.JWTSecret, cfg.Session.TTL),
		Readiness: map[string]handler.Pinger{
			"mongodb": handler.PingFunc(func(ctx context.Context) error { return client.Ping(ctx, nil) }),
			"redis":   handler.PingFunc(redisdb.Pinger(rdb)),
		},
	}

	e := api.NewRouter(svc, api.Options{
		JWTSecret:          cfg.JWTSecret,
		Cookie:             handler.CookieConfig{TTL: cfg.Session.TTL, Secure: cfg.Session.SecureCookie},
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Production:         cfg.IsProduction(),
		Log:                log,
	})

	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           e,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", server.Addr).Str("env", cfg.Env).Msg("billed listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
