package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/engine"
	"github.com/iho/wealthengine/internal/infrastructure/metrics"
)

// HoldingUseCase mutates holdings through the cost basis engine.
type HoldingUseCase struct {
	txManager   TransactionManager
	holdingRepo HoldingRepository
	rates       RateProvider
	retrier     Retrier
	audit       auditTrail
	auditRepo   AuditRepository
	tolerance   engine.Tolerance
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewHoldingUseCase creates a new HoldingUseCase. retrier, auditRepo and m may be nil.
func NewHoldingUseCase(
	txManager TransactionManager,
	holdingRepo HoldingRepository,
	rates RateProvider,
	retrier Retrier,
	auditRepo AuditRepository,
	idGen IDGenerator,
	tolerance engine.Tolerance,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *HoldingUseCase {
	return &HoldingUseCase{
		txManager:   txManager,
		holdingRepo: holdingRepo,
		rates:       rates,
		retrier:     retrier,
		audit:       auditTrail{repo: auditRepo, idGen: idGen, metrics: m},
		auditRepo:   auditRepo,
		tolerance:   tolerance,
		metrics:     m,
		logger:      logger.With().Str("component", "holdings").Logger(),
	}
}

// ApplyLotInput represents a purchase lot recorded against a holding.
type ApplyLotInput struct {
	UserID     string
	HoldingID  string
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	OccurredAt time.Time
}

// SetPriceInput represents a new market price for a holding.
type SetPriceInput struct {
	UserID    string
	HoldingID string
	UnitPrice decimal.Decimal
	Source    domain.PriceSource
	UpdatedAt time.Time
}

// mutation transforms a locked holding into its next state.
type mutation func(current domain.Holding, rates domain.ExchangeRateSet) (domain.Holding, error)

// ApplyLot folds a purchase lot into the holding's weighted average cost and revalues it.
func (uc *HoldingUseCase) ApplyLot(ctx context.Context, input ApplyLotInput) (*domain.Holding, error) {
	start := time.Now()

	lot := domain.LotEvent{
		Quantity:   input.Quantity,
		UnitPrice:  input.UnitPrice,
		OccurredAt: input.OccurredAt,
	}
	if err := lot.Validate(); err != nil {
		observe(uc.metrics, "apply_lot", start, err)
		return nil, err
	}

	updated, err := uc.mutate(ctx, input.UserID, input.HoldingID, domain.AuditActionLotApply,
		func(current domain.Holding, rates domain.ExchangeRateSet) (domain.Holding, error) {
			next, err := engine.ApplyLotToHolding(current, lot)
			if err != nil {
				return domain.Holding{}, err
			}
			return engine.Revalue(next, rates)
		})
	observe(uc.metrics, "apply_lot", start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.LotsApplied.Inc()
	}

	uc.logger.Info().
		Str("user_id", input.UserID).
		Str("holding_id", input.HoldingID).
		Str("quantity", updated.Quantity.String()).
		Str("unit_cost", updated.UnitCost.String()).
		Msg("lot applied")

	return updated, nil
}

// SetPrice replaces the holding's current price and revalues it. Cost basis is untouched.
func (uc *HoldingUseCase) SetPrice(ctx context.Context, input SetPriceInput) (*domain.Holding, error) {
	start := time.Now()

	source := input.Source
	if source == "" {
		source = domain.PriceSourceManual
	}
	updatedAt := input.UpdatedAt
	if updatedAt.IsZero() {
		updatedAt = time.Now().UTC()
	}
	update := domain.PriceUpdate{UnitPrice: input.UnitPrice, Source: source, UpdatedAt: updatedAt}
	if err := update.Validate(); err != nil {
		observe(uc.metrics, "set_price", start, err)
		return nil, err
	}

	updated, err := uc.mutate(ctx, input.UserID, input.HoldingID, domain.AuditActionPriceSet,
		func(current domain.Holding, rates domain.ExchangeRateSet) (domain.Holding, error) {
			next, err := engine.SetCurrentPrice(current, update)
			if err != nil {
				return domain.Holding{}, err
			}
			return engine.Revalue(next, rates)
		})
	observe(uc.metrics, "set_price", start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.PricesUpdated.Inc()
	}

	uc.logger.Info().
		Str("user_id", input.UserID).
		Str("holding_id", input.HoldingID).
		Str("unit_price", input.UnitPrice.String()).
		Str("source", string(source)).
		Msg("price updated")

	return updated, nil
}

// Reconcile checks every holding of the user for stored value drift.
func (uc *HoldingUseCase) Reconcile(ctx context.Context, userID string) ([]engine.ReconciliationReport, error) {
	start := time.Now()

	holdings, err := uc.holdingRepo.ListByUser(ctx, userID)
	observe(uc.metrics, "reconcile", start, err)
	if err != nil {
		return nil, err
	}

	reports := make([]engine.ReconciliationReport, 0, len(holdings))
	for _, h := range holdings {
		report := engine.Reconcile(*h, uc.tolerance)
		reports = append(reports, report)

		if uc.metrics != nil && report.Checkable {
			uc.metrics.ReconciliationChecks.Inc()
		}
		if report.Checkable && !report.Consistent {
			if uc.metrics != nil {
				uc.metrics.ReconciliationMismatches.Inc()
			}
			uc.logger.Warn().
				Str("user_id", userID).
				Str("holding_id", h.ID).
				Str("calculated", report.CalculatedValue.String()).
				Str("stored", report.StoredValue.String()).
				Str("delta_percent", report.DeltaPercent.StringFixed(2)).
				Msg("holding value out of tolerance")
		}
	}

	return reports, nil
}

// FixValue recomputes a unit-tracked holding's stored value from quantity and price.
func (uc *HoldingUseCase) FixValue(ctx context.Context, userID, holdingID string) (*domain.Holding, engine.ReconciliationReport, error) {
	start := time.Now()

	var report engine.ReconciliationReport
	updated, err := uc.mutate(ctx, userID, holdingID, domain.AuditActionValueFix,
		func(current domain.Holding, rates domain.ExchangeRateSet) (domain.Holding, error) {
			fixed, r, err := engine.FixValue(current, rates, uc.tolerance)
			if err != nil {
				return domain.Holding{}, err
			}
			report = r
			return fixed, nil
		})
	observe(uc.metrics, "fix_value", start, err)
	if err != nil {
		return nil, engine.ReconciliationReport{}, err
	}

	if uc.metrics != nil {
		uc.metrics.ValueFixes.Inc()
	}

	uc.logger.Info().
		Str("user_id", userID).
		Str("holding_id", holdingID).
		Str("previous_value", report.StoredValue.String()).
		Str("value", updated.Value.String()).
		Msg("holding value fixed")

	return updated, report, nil
}

// History lists audit logs for one of the user's holdings, newest first.
func (uc *HoldingUseCase) History(ctx context.Context, userID, holdingID string, limit int) ([]*domain.AuditLog, error) {
	holding, err := uc.holdingRepo.GetByID(ctx, holdingID)
	if err != nil {
		return nil, err
	}
	if holding.UserID != userID {
		return nil, domain.ErrHoldingNotFound
	}

	if uc.auditRepo == nil {
		return []*domain.AuditLog{}, nil
	}
	if limit <= 0 || limit > DefaultAuditLimit {
		limit = DefaultAuditLimit
	}

	return uc.auditRepo.List(ctx, domain.AuditFilter{
		UserID:       userID,
		ResourceType: "holding",
		ResourceID:   holdingID,
		Limit:        limit,
	})
}

// mutate runs fn against the locked holding inside a transaction, retrying
// transient storage conflicts. The audit log is written in the same transaction.
func (uc *HoldingUseCase) mutate(
	ctx context.Context,
	userID, holdingID string,
	action domain.AuditAction,
	fn mutation,
) (*domain.Holding, error) {
	rates, err := uc.rates.Latest(ctx, userID)
	if err != nil {
		return nil, err
	}

	var updated *domain.Holding
	err = uc.retry(ctx, func() error {
		h, err := uc.mutateTx(ctx, userID, holdingID, action, *rates, fn)
		if err != nil {
			return err
		}
		updated = h
		return nil
	})
	if err != nil {
		return nil, err
	}

	return updated, nil
}

func (uc *HoldingUseCase) mutateTx(
	ctx context.Context,
	userID, holdingID string,
	action domain.AuditAction,
	rates domain.ExchangeRateSet,
	fn mutation,
) (*domain.Holding, error) {
	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	current, err := uc.holdingRepo.GetByIDForUpdate(txCtx, tx, holdingID)
	if err != nil {
		return nil, err
	}
	if current.UserID != userID {
		return nil, domain.ErrHoldingNotFound
	}

	next, err := fn(*current, rates)
	if err != nil {
		return nil, err
	}
	next.UpdatedAt = time.Now().UTC()

	if err := uc.holdingRepo.Update(txCtx, tx, &next); err != nil {
		return nil, err
	}

	entry := uc.audit.entry(ctx, userID, action, "holding", holdingID)
	entry.BeforeState = domain.MarshalState(current)
	entry.AfterState = domain.MarshalState(next)
	if err := uc.audit.recordTx(txCtx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return &next, nil
}

func (uc *HoldingUseCase) retry(ctx context.Context, op func() error) error {
	if uc.retrier == nil {
		return op()
	}
	return uc.retrier.Retry(ctx, op)
}
