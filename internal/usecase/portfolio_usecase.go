package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/engine"
	"github.com/iho/wealthengine/internal/infrastructure/metrics"
)

// PortfolioUseCase values a user's holdings and compares them with allocation targets.
type PortfolioUseCase struct {
	holdingRepo      HoldingRepository
	allocationRepo   AllocationRepository
	rates            RateProvider
	defaultThreshold decimal.Decimal
	metrics          *metrics.Metrics
	logger           zerolog.Logger
}

// NewPortfolioUseCase creates a new PortfolioUseCase.
// defaultThreshold applies to users without a stored rebalance threshold.
func NewPortfolioUseCase(
	holdingRepo HoldingRepository,
	allocationRepo AllocationRepository,
	rates RateProvider,
	defaultThreshold decimal.Decimal,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *PortfolioUseCase {
	if !defaultThreshold.IsPositive() {
		defaultThreshold = domain.DefaultRebalanceThreshold
	}
	return &PortfolioUseCase{
		holdingRepo:      holdingRepo,
		allocationRepo:   allocationRepo,
		rates:            rates,
		defaultThreshold: defaultThreshold,
		metrics:          m,
		logger:           logger.With().Str("component", "portfolio").Logger(),
	}
}

// DriftReport pairs a snapshot with its allocation drift and rebalance plan.
type DriftReport struct {
	Snapshot  engine.PortfolioSnapshot
	Threshold decimal.Decimal
	Rows      []engine.DriftRow
	Plan      []engine.RebalanceAmount
}

// Snapshot values every holding of the user in the display currency.
func (uc *PortfolioUseCase) Snapshot(ctx context.Context, userID string, display domain.Currency) (*engine.PortfolioSnapshot, error) {
	start := time.Now()

	snapshot, _, err := uc.snapshot(ctx, userID, display)
	observe(uc.metrics, "snapshot", start, err)
	if err != nil {
		return nil, err
	}

	return &snapshot, nil
}

// Drift compares the current allocation with the user's targets.
func (uc *PortfolioUseCase) Drift(ctx context.Context, userID string, display domain.Currency) (*DriftReport, error) {
	start := time.Now()

	report, err := uc.drift(ctx, userID, display)
	observe(uc.metrics, "drift", start, err)
	if err != nil {
		return nil, err
	}

	return report, nil
}

func (uc *PortfolioUseCase) drift(ctx context.Context, userID string, display domain.Currency) (*DriftReport, error) {
	snapshot, categories, err := uc.snapshot(ctx, userID, display)
	if err != nil {
		return nil, err
	}

	threshold, err := uc.allocationRepo.GetRebalanceThreshold(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !threshold.IsPositive() {
		threshold = uc.defaultThreshold
	}

	targets := domain.TargetsFromCategories(categories, threshold)
	if err := targets.Validate(); err != nil {
		return nil, err
	}

	rows := engine.AllocationDrift(snapshot, targets)
	for _, row := range rows {
		if !row.NeedsRebalance {
			continue
		}
		if uc.metrics != nil {
			uc.metrics.RebalanceAlerts.WithLabelValues(row.CategoryID).Inc()
		}
		uc.logger.Info().
			Str("user_id", userID).
			Str("category_id", row.CategoryID).
			Str("drift_percent", row.DriftPercent.StringFixed(2)).
			Msg("category outside rebalance threshold")
	}

	return &DriftReport{
		Snapshot:  snapshot,
		Threshold: threshold,
		Rows:      rows,
		Plan:      engine.RebalancePlan(rows, snapshot.Total),
	}, nil
}

func (uc *PortfolioUseCase) snapshot(
	ctx context.Context,
	userID string,
	display domain.Currency,
) (engine.PortfolioSnapshot, []domain.AllocationCategory, error) {
	if !display.IsValid() {
		return engine.PortfolioSnapshot{}, nil, fmt.Errorf("%w: display currency %q", domain.ErrInvalidCurrency, display)
	}

	holdings, err := uc.holdingRepo.ListByUser(ctx, userID)
	if err != nil {
		return engine.PortfolioSnapshot{}, nil, err
	}

	categoryPtrs, err := uc.allocationRepo.ListCategories(ctx, userID)
	if err != nil {
		return engine.PortfolioSnapshot{}, nil, err
	}
	categories := make([]domain.AllocationCategory, 0, len(categoryPtrs))
	for _, c := range categoryPtrs {
		categories = append(categories, *c)
	}

	// an empty portfolio needs no rates
	rates := domain.ExchangeRateSet{UserID: userID}
	if len(holdings) > 0 {
		latest, err := uc.rates.Latest(ctx, userID)
		if err != nil {
			return engine.PortfolioSnapshot{}, nil, err
		}
		rates = *latest
	}

	values := make([]domain.Holding, 0, len(holdings))
	for _, h := range holdings {
		values = append(values, *h)
	}

	snapshot, err := engine.Aggregate(values, categories, rates, display)
	if err != nil {
		return engine.PortfolioSnapshot{}, nil, err
	}

	return snapshot, categories, nil
}
