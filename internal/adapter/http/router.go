package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/iho/wealthengine/internal/adapter/http/handler"
	"github.com/iho/wealthengine/internal/adapter/http/middleware"
	"github.com/iho/wealthengine/internal/usecase"
)

// RouterConfig holds dependencies for the router.
type RouterConfig struct {
	RateHandler        *handler.RateHandler
	HoldingHandler     *handler.HoldingHandler
	PortfolioHandler   *handler.PortfolioHandler
	PerformanceHandler *handler.PerformanceHandler
	HealthHandler      *handler.HealthHandler
	IdempotencyStore   usecase.IdempotencyStore
	IdempotencyTTL     time.Duration
	Logger             zerolog.Logger
}

// NewRouter creates a new HTTP router.
func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.NewLoggingMiddleware(cfg.Logger).Wrap)
	r.Use(middleware.Recovery(cfg.Logger))
	r.Use(middleware.Metrics)

	// Health endpoints
	r.Get("/health", cfg.HealthHandler.Liveness)
	r.Get("/ready", cfg.HealthHandler.Readiness)
	r.Handle("/metrics", promhttp.Handler())

	// API v1
	r.Route("/api/v1/users/{userID}", func(r chi.Router) {
		r.Use(middleware.RequestContext)

		// Idempotency middleware for mutating requests
		if cfg.IdempotencyStore != nil {
			idempotencyMiddleware := middleware.NewIdempotencyMiddleware(cfg.IdempotencyStore, cfg.IdempotencyTTL, cfg.Logger)
			r.Use(idempotencyMiddleware.Wrap)
		}

		// Exchange rates
		r.Get("/rates", cfg.RateHandler.Get)
		r.Put("/rates", cfg.RateHandler.Save)

		// Portfolio valuation
		r.Route("/portfolio", func(r chi.Router) {
			r.Get("/", cfg.PortfolioHandler.Snapshot)
			r.Get("/drift", cfg.PortfolioHandler.Drift)
		})

		// Holdings
		r.Route("/holdings", func(r chi.Router) {
			r.Get("/reconcile", cfg.HoldingHandler.Reconcile)
			r.Post("/{holdingID}/lots", cfg.HoldingHandler.ApplyLot)
			r.Put("/{holdingID}/price", cfg.HoldingHandler.SetPrice)
			r.Post("/{holdingID}/fix", cfg.HoldingHandler.FixValue)
			r.Get("/{holdingID}/history", cfg.HoldingHandler.History)
		})

		// Yearly performance
		r.Route("/performance", func(r chi.Router) {
			r.Get("/rollup", cfg.PerformanceHandler.Rollup)
			r.Get("/series", cfg.PerformanceHandler.Series)
			r.Post("/rebuild", cfg.PerformanceHandler.Rebuild)
			r.Post("/monthly", cfg.PerformanceHandler.RecordMonth)
			r.Post("/yearly", cfg.PerformanceHandler.SaveYearly)
		})
	})

	return r
}
