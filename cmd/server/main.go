package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	httpAdapter "github.com/iho/wealthengine/internal/adapter/http"
	"github.com/iho/wealthengine/internal/adapter/http/handler"
	postgresRepo "github.com/iho/wealthengine/internal/adapter/repository/postgres"
	redisRepo "github.com/iho/wealthengine/internal/adapter/repository/redis"
	"github.com/iho/wealthengine/internal/engine"
	"github.com/iho/wealthengine/internal/infrastructure/config"
	"github.com/iho/wealthengine/internal/infrastructure/logger"
	"github.com/iho/wealthengine/internal/infrastructure/metrics"
	"github.com/iho/wealthengine/internal/infrastructure/postgres"
	"github.com/iho/wealthengine/internal/infrastructure/redis"
	"github.com/iho/wealthengine/internal/usecase"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(logger.Config{Level: cfg.LogLevel, Format: cfg.LogFormat, Service: "wealthengine"})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		log.Fatal().Err(err).Msg("server failed")
	}
}

func run(ctx context.Context, cfg *config.Config, log zerolog.Logger) error {
	// Connect to PostgreSQL
	pool, err := postgres.NewPoolWithConfig(ctx, poolConfig(cfg))
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()
	log.Info().Msg("connected to postgres")

	if cfg.RunMigrations {
		if err := postgres.RunMigrations(cfg.DatabaseURL, cfg.MigrationsPath, log); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	// Connect to Redis
	redisClient, err := redis.NewClient(ctx, redis.ClientConfig{
		URL:         cfg.RedisURL,
		PoolSize:    cfg.RedisPoolSize,
		DialTimeout: cfg.RedisDialTimeout,
	})
	if err != nil {
		return fmt.Errorf("connect to redis: %w", err)
	}
	defer redisClient.Close()
	log.Info().Msg("connected to redis")

	server := newServer(cfg, buildRouter(cfg, pool, redisClient, metrics.New(), log))

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.HTTPPort).Msg("starting server")
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

	log.Info().Msg("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	log.Info().Msg("server stopped")
	return nil
}

// buildRouter wires repositories, use cases and handlers into the HTTP router.
func buildRouter(
	cfg *config.Config,
	pool *pgxpool.Pool,
	redisClient *goredis.Client,
	m *metrics.Metrics,
	log zerolog.Logger,
) http.Handler {
	// Initialize repositories
	txManager := postgresRepo.NewTxManager(pool, postgresRepo.WithLockTimeout(cfg.DatabaseLockWait))
	holdingRepo := postgresRepo.NewHoldingRepository(pool)
	rateRepo := postgresRepo.NewRateRepository(pool)
	yearlyRepo := postgresRepo.NewYearlyRecordRepository(pool)
	monthlyRepo := postgresRepo.NewMonthlySnapshotRepository(pool)
	allocationRepo := postgresRepo.NewAllocationRepository(pool)
	auditRepo := postgresRepo.NewAuditRepository(pool)
	retrier := postgresRepo.NewRetrier(log, m)
	idGen := postgresRepo.NewULIDGenerator()
	cache := redisRepo.NewCache(redisClient)
	idempotencyStore := redisRepo.NewIdempotencyStore(redisClient)

	// Initialize use cases
	rateUC := usecase.NewRateUseCase(rateRepo, cache, cfg.RateCacheTTL, auditRepo, idGen, m, log)
	holdingUC := usecase.NewHoldingUseCase(
		txManager, holdingRepo, rateUC, retrier, auditRepo, idGen, engineTolerance(cfg), m, log,
	)
	portfolioUC := usecase.NewPortfolioUseCase(holdingRepo, allocationRepo, rateUC, cfg.RebalanceThreshold, m, log)
	performanceUC := usecase.NewPerformanceUseCase(
		txManager, yearlyRepo, monthlyRepo, auditRepo, idGen, aggregateOptions(cfg), m, log,
	)

	// Initialize handlers
	healthHandler := handler.NewHealthHandler(
		handler.Check{Name: "postgres", Ping: pool.Ping},
		handler.Check{Name: "redis", Ping: func(ctx context.Context) error {
			return redis.Ping(ctx, redisClient)
		}},
	)

	return httpAdapter.NewRouter(httpAdapter.RouterConfig{
		RateHandler:        handler.NewRateHandler(rateUC),
		HoldingHandler:     handler.NewHoldingHandler(holdingUC),
		PortfolioHandler:   handler.NewPortfolioHandler(portfolioUC),
		PerformanceHandler: handler.NewPerformanceHandler(performanceUC),
		HealthHandler:      healthHandler,
		IdempotencyStore:   idempotencyStore,
		IdempotencyTTL:     cfg.IdempotencyTTL,
		Logger:             log,
	})
}

func poolConfig(cfg *config.Config) postgres.PoolConfig {
	return postgres.PoolConfig{
		DatabaseURL:    cfg.DatabaseURL,
		MaxConns:       cfg.DatabaseMaxConns,
		MinConns:       cfg.DatabaseMinConns,
		ConnectTimeout: cfg.DatabaseTimeout,
	}
}

// engineTolerance falls back to the engine default for negative or all-zero bounds.
func engineTolerance(cfg *config.Config) engine.Tolerance {
	if cfg.ReconcileTolerancePercent.IsNegative() || cfg.ReconcileToleranceAbsolute.IsNegative() {
		return engine.DefaultTolerance
	}
	if cfg.ReconcileTolerancePercent.IsZero() && cfg.ReconcileToleranceAbsolute.IsZero() {
		return engine.DefaultTolerance
	}
	return engine.Tolerance{
		Percent:  cfg.ReconcileTolerancePercent,
		Absolute: cfg.ReconcileToleranceAbsolute,
	}
}

func aggregateOptions(cfg *config.Config) engine.AggregateOptions {
	return engine.AggregateOptions{ClampLosses: cfg.RollupClampLosses}
}

func newServer(cfg *config.Config, h http.Handler) *http.Server {
	return &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler:      h,
		ReadTimeout:  cfg.HTTPReadTimeout,
		WriteTimeout: cfg.HTTPWriteTimeout,
		IdleTimeout:  cfg.HTTPIdleTimeout,
	}
}
