// Command devserver runs the storefront API over the in-memory store with a
// seeded catalog. Nothing is persisted between runs.
package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"nana-store/internal/config"
	"nana-store/internal/logger"
	"nana-store/internal/memstore"
	"nana-store/internal/server"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const devSecret = "nana-dev-secret"

func main() {
	cfg := config.Load()

	log, err := logger.New(cfg.Server.Env)
	if err != nil {
		panic(fmt.Sprintf("failed to initialize logger: %v", err))
	}
	defer log.Sync()

	if cfg.JWT.Secret == "" {
		log.Warn("JWT_SECRET not set, using the development secret")
		cfg.JWT.Secret = devSecret
	}

	ctx := context.Background()
	db := memstore.New()
	store := db.Store()
	now := time.Now()

	if err := seedCatalog(ctx, store.Products, cfg.Dev.SampleStock, now); err != nil {
		log.Fatal("Failed to seed catalog", zap.Error(err))
	}
	admin, err := seedAdmin(ctx, store.Users, cfg.Dev.AdminEmail, cfg.Dev.AdminPassword, now)
	if err != nil {
		log.Fatal("Failed to seed admin", zap.Error(err))
	}
	log.Info("In-memory store seeded",
		zap.Int("products", len(samples)),
		zap.String("admin_email", admin.Email),
	)

	var closers []io.Closer
	var redisClient *redis.Client
	if cfg.Redis.Enabled {
		redisClient = redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr(), Password: cfg.Redis.Password, DB: cfg.Redis.DB})
	} else {
		// an in-process redis keeps rate limiting active without external services
		mr, err := miniredis.Run()
		if err != nil {
			log.Fatal("Failed to start embedded redis", zap.Error(err))
		}
		defer mr.Close()
		redisClient = redis.NewClient(&redis.Options{Addr: mr.Addr()})
	}
	closers = append(closers, redisClient)

	srv := server.NewServer(cfg, log, store, server.Options{
		Redis:   redisClient,
		Health:  db.Health,
		Closers: closers,
	})

	go func() {
		log.Info("Dev server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	<-sigCtx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}
	_ = srv.Close()
	log.Info("Dev server stopped")
}
