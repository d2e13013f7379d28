package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/trip-trio/trip-planner-api/internal/adapters/httpapi"
	"github.com/trip-trio/trip-planner-api/internal/adapters/httpmirror"
	memidempotency "github.com/trip-trio/trip-planner-api/internal/adapters/memory/idempotency"
	memlocalstore "github.com/trip-trio/trip-planner-api/internal/adapters/memory/localstore"
	memtripregistry "github.com/trip-trio/trip-planner-api/internal/adapters/memory/tripregistry"
	"github.com/trip-trio/trip-planner-api/internal/adapters/postgres"
	pgidempotency "github.com/trip-trio/trip-planner-api/internal/adapters/postgres/idempotency"
	pglocalstore "github.com/trip-trio/trip-planner-api/internal/adapters/postgres/localstore"
	redislocalstore "github.com/trip-trio/trip-planner-api/internal/adapters/redis/localstore"
	"github.com/trip-trio/trip-planner-api/internal/app/auth"
	"github.com/trip-trio/trip-planner-api/internal/app/trips"
	platformclock "github.com/trip-trio/trip-planner-api/internal/platform/clock"
	"github.com/trip-trio/trip-planner-api/internal/platform/config"
	"github.com/trip-trio/trip-planner-api/internal/platform/logging"
	idempotencyport "github.com/trip-trio/trip-planner-api/internal/ports/out/idempotency"
	localstoreport "github.com/trip-trio/trip-planner-api/internal/ports/out/localstore"
	mirrorport "github.com/trip-trio/trip-planner-api/internal/ports/out/mirror"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger := logging.New(cfg.LogLevel)
	defer func() { _ = logger.Sync() }()

	clk := platformclock.NewSystemClock()

	var store localstoreport.Store
	var idem idempotencyport.Store = memidempotency.NewStore()
	var cleanup func()
	switch cfg.StorageBackend {
	case config.BackendRedis:
		rs, err := redislocalstore.NewStore(cfg.RedisURL)
		if err != nil {
			logger.Fatal("redis init", zap.Error(err))
		}
		store = rs
		cleanup = func() { _ = rs.Close() }
	case config.BackendPostgres:
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if err := postgres.Migrate(ctx, cfg.DatabaseURL); err != nil {
			cancel()
			logger.Fatal("postgres migrate", zap.Error(err))
		}
		pool, err := postgres.NewPool(ctx, cfg.DatabaseURL)
		cancel()
		if err != nil {
			logger.Fatal("postgres init", zap.Error(err))
		}
		store = pglocalstore.NewStore(pool)
		idem = pgidempotency.NewStore(pool)
		cleanup = pool.Close
	default:
		store = memlocalstore.NewStore()
	}
	if cleanup != nil {
		defer cleanup()
	}

	var m mirrorport.Mirror = mirrorport.Nop{}
	if cfg.MirrorBaseURL != "" {
		m = httpmirror.NewClient(cfg.MirrorBaseURL)
	}

	authSvc := auth.NewService(store, clk, auth.Options{
		SessionSecret: cfg.SessionSecret,
		SessionTTL:    cfg.SessionTTL,
		Delay:         cfg.AuthDelay,
	})
	tripsSvc := trips.NewService(store, m, clk, logger)
	if err := tripsSvc.Load(context.Background()); err != nil {
		logger.Fatal("load trip collection", zap.Error(err))
	}

	api := httpapi.NewServer(tripsSvc, authSvc, memtripregistry.NewRegistry(), idem, clk, logger)
	handler := httpapi.NewRouter(api, logger, cfg.CORSOrigins)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("api listening", zap.String("addr", srv.Addr), zap.String("backend", cfg.StorageBackend))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Shutdown(shutdownCtx)
}
