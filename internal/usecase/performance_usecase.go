package usecase

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/engine"
	"github.com/iho/wealthengine/internal/infrastructure/metrics"
)

// PerformanceUseCase builds yearly performance series from monthly snapshots
// and standalone yearly records.
type PerformanceUseCase struct {
	txManager   TransactionManager
	yearlyRepo  YearlyRecordRepository
	monthlyRepo MonthlySnapshotRepository
	audit       auditTrail
	idGen       IDGenerator
	opts        engine.AggregateOptions
	metrics     *metrics.Metrics
	logger      zerolog.Logger
}

// NewPerformanceUseCase creates a new PerformanceUseCase.
func NewPerformanceUseCase(
	txManager TransactionManager,
	yearlyRepo YearlyRecordRepository,
	monthlyRepo MonthlySnapshotRepository,
	auditRepo AuditRepository,
	idGen IDGenerator,
	opts engine.AggregateOptions,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *PerformanceUseCase {
	return &PerformanceUseCase{
		txManager:   txManager,
		yearlyRepo:  yearlyRepo,
		monthlyRepo: monthlyRepo,
		audit:       auditTrail{repo: auditRepo, idGen: idGen, metrics: m},
		idGen:       idGen,
		opts:        opts,
		metrics:     m,
		logger:      logger.With().Str("component", "performance").Logger(),
	}
}

// PerformanceSeries is the merged, derived yearly series with its summary.
type PerformanceSeries struct {
	Records []domain.YearlyRecord
	Summary engine.PerformanceSummary
}

// Rollup aggregates the user's monthly snapshots into yearly records.
func (uc *PerformanceUseCase) Rollup(ctx context.Context, userID string) ([]domain.YearlyRecord, error) {
	start := time.Now()

	records, err := uc.rollup(ctx, userID)
	observe(uc.metrics, "rollup", start, err)
	if err != nil {
		return nil, err
	}

	return records, nil
}

// Series merges monthly-derived and standalone yearly records, then derives
// savings rate, market gains and return for every year.
func (uc *PerformanceUseCase) Series(ctx context.Context, userID string) (*PerformanceSeries, error) {
	start := time.Now()

	series, err := uc.series(ctx, userID)
	observe(uc.metrics, "series", start, err)
	if err != nil {
		return nil, err
	}

	return series, nil
}

func (uc *PerformanceUseCase) series(ctx context.Context, userID string) (*PerformanceSeries, error) {
	monthly, err := uc.rollup(ctx, userID)
	if err != nil {
		return nil, err
	}

	yearly, err := uc.listYearly(ctx, userID)
	if err != nil {
		return nil, err
	}

	derived := engine.Derive(engine.Merge(monthly, yearly))

	return &PerformanceSeries{
		Records: derived,
		Summary: engine.Summarize(derived),
	}, nil
}

// RebuildYearly persists monthly-derived yearly records, replacing stored rows
// for the same years. Years without monthly data are left alone.
func (uc *PerformanceUseCase) RebuildYearly(ctx context.Context, userID string) ([]domain.YearlyRecord, error) {
	start := time.Now()

	records, err := uc.rebuild(ctx, userID)
	observe(uc.metrics, "rebuild_yearly", start, err)
	if err != nil {
		return nil, err
	}

	if uc.metrics != nil {
		uc.metrics.YearlyRecordsRebuilt.Add(float64(len(records)))
	}

	uc.logger.Info().
		Str("user_id", userID).
		Int("years", len(records)).
		Msg("yearly records rebuilt")

	return records, nil
}

func (uc *PerformanceUseCase) rebuild(ctx context.Context, userID string) ([]domain.YearlyRecord, error) {
	monthly, err := uc.rollup(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(monthly) == 0 {
		return monthly, nil
	}

	existing, err := uc.listYearly(ctx, userID)
	if err != nil {
		return nil, err
	}

	rebuilt := make(map[int]bool, len(monthly))
	for _, r := range monthly {
		rebuilt[r.Year] = true
	}

	var records []domain.YearlyRecord
	for _, r := range engine.Merge(monthly, existing) {
		if !rebuilt[r.Year] {
			continue
		}
		if r.ID == "" {
			r.ID = uc.idGen.Generate()
		}
		r.UserID = userID
		records = append(records, r)
	}

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	years := make([]int, 0, len(records))
	for i := range records {
		if err := uc.yearlyRepo.Upsert(txCtx, tx, &records[i]); err != nil {
			return nil, err
		}
		years = append(years, records[i].Year)
	}

	entry := uc.audit.entry(ctx, userID, domain.AuditActionYearlyRebuild, "yearly_record", userID)
	entry.AfterState = domain.JSON{"years": years}
	if err := uc.audit.recordTx(txCtx, tx, entry); err != nil {
		return nil, err
	}

	if err := tx.Commit(txCtx); err != nil {
		return nil, err
	}

	return records, nil
}

// RecordMonth validates and stores one monthly snapshot, replacing any entry for the same month.
func (uc *PerformanceUseCase) RecordMonth(ctx context.Context, snapshot *domain.MonthlySnapshot) error {
	if err := snapshot.Validate(); err != nil {
		return err
	}
	if err := domain.ValidateNotes(snapshot.Notes); err != nil {
		return err
	}
	if snapshot.ID == "" {
		snapshot.ID = uc.idGen.Generate()
	}

	if err := uc.monthlyRepo.Upsert(ctx, snapshot); err != nil {
		return err
	}

	uc.logger.Debug().
		Str("user_id", snapshot.UserID).
		Int("year", snapshot.Year).
		Int("month", snapshot.Month).
		Msg("monthly snapshot recorded")

	return nil
}

// SaveYearly stores a user-entered yearly record for a year without monthly data.
func (uc *PerformanceUseCase) SaveYearly(ctx context.Context, record *domain.YearlyRecord) error {
	if err := record.Validate(); err != nil {
		return err
	}
	if err := domain.ValidateNotes(record.Notes); err != nil {
		return err
	}
	if record.ID == "" {
		record.ID = uc.idGen.Generate()
	}
	if record.Provenance == "" {
		record.Provenance = domain.ProvenanceUser
	}
	if record.Confidence == "" {
		record.Confidence = domain.ConfidenceHigh
	}
	record.SavingsRate = engine.SavingsRate(record.Income, record.Savings)

	txCtx, cancel := context.WithTimeout(ctx, DefaultTransactionTimeout)
	defer cancel()

	tx, err := uc.txManager.Begin(txCtx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(txCtx) }()

	if err := uc.yearlyRepo.Upsert(txCtx, tx, record); err != nil {
		return err
	}

	entry := uc.audit.entry(ctx, record.UserID, domain.AuditActionYearlySave, "yearly_record", record.ID)
	entry.AfterState = domain.MarshalState(record)
	if err := uc.audit.recordTx(txCtx, tx, entry); err != nil {
		return err
	}

	return tx.Commit(txCtx)
}

func (uc *PerformanceUseCase) rollup(ctx context.Context, userID string) ([]domain.YearlyRecord, error) {
	snapshots, err := uc.monthlyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	values := make([]domain.MonthlySnapshot, 0, len(snapshots))
	for _, s := range snapshots {
		values = append(values, *s)
	}

	return engine.AggregateMonthly(values, uc.opts), nil
}

func (uc *PerformanceUseCase) listYearly(ctx context.Context, userID string) ([]domain.YearlyRecord, error) {
	records, err := uc.yearlyRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	values := make([]domain.YearlyRecord, 0, len(records))
	for _, r := range records {
		values = append(values, *r)
	}
	return values, nil
}
