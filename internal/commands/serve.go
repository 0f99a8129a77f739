package commands

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/botwall-io/botwall/internal/aggregator"
	"github.com/botwall-io/botwall/internal/cache"
	"github.com/botwall-io/botwall/internal/classifier"
	"github.com/botwall-io/botwall/internal/handlers"
	"github.com/botwall-io/botwall/internal/logging"
	"github.com/botwall-io/botwall/internal/messaging"
	"github.com/botwall-io/botwall/internal/middleware"
	"github.com/botwall-io/botwall/internal/ratelimit"
	"github.com/botwall-io/botwall/internal/repository"
	"github.com/botwall-io/botwall/internal/server"
	"github.com/botwall-io/botwall/internal/service"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the botwall API server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe() error {
	logger := logging.New(logging.ParseLevel(cfg.Logging.Level), cfg.Logging.Format)
	logging.SetDefault(logger)
	ctx := context.Background()

	// Storage
	var (
		repo  repository.Repository
		ready server.ReadinessChecker
	)
	switch cfg.Database.Type {
	case "postgres":
		pg, err := repository.NewPostgresRepository(ctx, cfg.Database.Postgres.ConnString())
		if err != nil {
			return fmt.Errorf("database connection failed: %w", err)
		}
		defer pg.Close()
		repo = pg
		ready = pg.Ping
		logger.InfoContext(ctx, "connected to postgres",
			"host", cfg.Database.Postgres.Host,
			"database", cfg.Database.Postgres.Database,
		)
	case "memory":
		repo = repository.NewInMemoryRepository()
		logger.WarnContext(ctx, "using in-memory storage, data will not survive restarts")
	default:
		return fmt.Errorf("unknown database type %q", cfg.Database.Type)
	}

	// Key cache
	var keyCache cache.KeyCache = cache.NoOpKeyCache{}
	if cfg.Redis.Enabled {
		kc, err := cache.NewRedisKeyCache(cfg.Redis.URL, cfg.Redis.KeyCacheTTL)
		if err != nil {
			return fmt.Errorf("redis connection failed: %w", err)
		}
		defer kc.Close()
		keyCache = kc
		logger.InfoContext(ctx, "key cache enabled", "ttl", cfg.Redis.KeyCacheTTL.String())
	}

	// Rate limiter
	var limiter ratelimit.RateLimiter = ratelimit.NoOpRateLimiter{}
	if cfg.Ingestion.RateLimitEnabled {
		rl, err := ratelimit.NewRedisRateLimiter(cfg.Redis.URL,
			cfg.Ingestion.RateLimitRequests, cfg.Ingestion.RateLimitWindow)
		if err != nil {
			return fmt.Errorf("rate limiter setup failed: %w", err)
		}
		defer rl.Close()
		limiter = rl
	}

	// Message bus and rollup worker
	var publisher messaging.Publisher = messaging.NoOpPublisher{}
	if cfg.NATS.Enabled {
		bus, err := messaging.NewNATSBus(messaging.DefaultNATSConfig(cfg.NATS.URL))
		if err != nil {
			return fmt.Errorf("nats connection failed: %w", err)
		}
		defer bus.Close()
		publisher = bus

		worker := aggregator.NewWorker(repo, bus, logger)
		if err := worker.Start(); err != nil {
			return err
		}
		defer worker.Stop()
	}

	// Services and handlers
	pricing := service.NewFlatRate(cfg.Analytics.RevenuePerBotRequest)
	registry := service.NewRegistryService(repo, keyCache, logger)
	validator := service.NewValidatorService(repo, keyCache, logger)
	ingest := service.NewIngestService(repo, validator, classifier.NewRuleBased(), pricing, publisher, logger)
	analytics := service.NewAnalyticsService(repo, pricing, logger)

	router := server.NewRouter(
		handlers.NewSitesHandler(registry),
		handlers.NewIngestHandler(validator, ingest, limiter, cfg.Ingestion.MaxBodySize),
		handlers.NewAnalyticsHandler(analytics),
		middleware.NewOwnerAuth(cfg.Auth.JWTSecret),
		ready,
	)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "botwall listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case sig := <-quit:
		logger.InfoContext(ctx, "shutting down", "signal", sig.String())
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown failed: %w", err)
	}

	logger.InfoContext(ctx, "shutdown complete")
	return nil
}
