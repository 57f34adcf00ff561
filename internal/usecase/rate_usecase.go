package usecase

import (
	"context"
	"encoding/json"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/infrastructure/metrics"
)

// RateUseCase serves and stores per-user exchange rate snapshots.
type RateUseCase struct {
	rateRepo RateRepository
	cache    Cache
	cacheTTL time.Duration
	audit    auditTrail
	metrics  *metrics.Metrics
	logger   zerolog.Logger
}

// NewRateUseCase creates a new RateUseCase. cache and auditRepo may be nil.
func NewRateUseCase(
	rateRepo RateRepository,
	cache Cache,
	cacheTTL time.Duration,
	auditRepo AuditRepository,
	idGen IDGenerator,
	m *metrics.Metrics,
	logger zerolog.Logger,
) *RateUseCase {
	if cacheTTL <= 0 {
		cacheTTL = DefaultRateCacheTTL
	}
	return &RateUseCase{
		rateRepo: rateRepo,
		cache:    cache,
		cacheTTL: cacheTTL,
		audit:    auditTrail{repo: auditRepo, idGen: idGen, metrics: m},
		metrics:  m,
		logger:   logger.With().Str("component", "rates").Logger(),
	}
}

func rateCacheKey(userID string) string {
	return "rates:" + userID
}

// Latest returns the user's current rate set, reading through the cache.
func (uc *RateUseCase) Latest(ctx context.Context, userID string) (*domain.ExchangeRateSet, error) {
	if set, ok := uc.fromCache(ctx, userID); ok {
		return set, nil
	}

	set, err := uc.rateRepo.GetLatest(ctx, userID)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		data, err := json.Marshal(set)
		if err == nil {
			err = uc.cache.Set(ctx, rateCacheKey(userID), data, uc.cacheTTL)
		}
		if err != nil {
			uc.logger.Warn().Err(err).Str("user_id", userID).Msg("failed to cache rate set")
		}
	}

	return set, nil
}

func (uc *RateUseCase) fromCache(ctx context.Context, userID string) (*domain.ExchangeRateSet, bool) {
	if uc.cache == nil {
		return nil, false
	}

	result := "miss"
	defer func() {
		if uc.metrics != nil {
			uc.metrics.RateCacheLookups.WithLabelValues(result).Inc()
		}
	}()

	data, err := uc.cache.Get(ctx, rateCacheKey(userID))
	if err != nil || len(data) == 0 {
		return nil, false
	}

	var set domain.ExchangeRateSet
	if err := json.Unmarshal(data, &set); err != nil {
		uc.logger.Warn().Err(err).Str("user_id", userID).Msg("discarding unreadable cached rate set")
		return nil, false
	}

	result = "hit"
	return &set, true
}

// SaveRatesInput represents a full replacement of a user's rate snapshot.
type SaveRatesInput struct {
	UserID string
	Rates  map[string]decimal.Decimal
	Source domain.RateSource
}

// Save validates and stores a complete rate snapshot, then drops the cached copy.
func (uc *RateUseCase) Save(ctx context.Context, input SaveRatesInput) (*domain.ExchangeRateSet, error) {
	start := time.Now()

	set := &domain.ExchangeRateSet{
		UserID:    input.UserID,
		Rates:     input.Rates,
		Source:    input.Source,
		UpdatedAt: start.UTC(),
	}
	if set.Source == "" {
		set.Source = domain.RateSourceManual
	}

	err := set.Validate()
	if err == nil {
		err = uc.rateRepo.Save(ctx, set)
	}
	observe(uc.metrics, "save_rates", start, err)
	if err != nil {
		return nil, err
	}

	if uc.cache != nil {
		if err := uc.cache.Delete(ctx, rateCacheKey(input.UserID)); err != nil {
			uc.logger.Warn().Err(err).Str("user_id", input.UserID).Msg("failed to invalidate cached rate set")
		}
	}

	if uc.metrics != nil {
		uc.metrics.RateSetsSaved.Inc()
	}

	entry := uc.audit.entry(ctx, input.UserID, domain.AuditActionRatesSave, "rates", input.UserID)
	entry.AfterState = domain.MarshalState(set)
	if err := uc.audit.record(ctx, entry); err != nil {
		uc.logger.Error().Err(err).Str("user_id", input.UserID).Msg("failed to audit rate save")
	}

	uc.logger.Info().
		Str("user_id", input.UserID).
		Str("source", string(set.Source)).
		Msg("rate set saved")

	return set, nil
}
