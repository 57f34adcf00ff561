package usecase

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
)

// HoldingRepository defines data access for holdings.
type HoldingRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.Holding, error)
	GetByID(ctx context.Context, id string) (*domain.Holding, error)
	GetByIDForUpdate(ctx context.Context, tx Transaction, id string) (*domain.Holding, error)
	Update(ctx context.Context, tx Transaction, holding *domain.Holding) error
}

// RateRepository defines data access for per-user exchange rate sets.
type RateRepository interface {
	// GetLatest returns domain.ErrRatesNotFound when the user has no stored rates.
	GetLatest(ctx context.Context, userID string) (*domain.ExchangeRateSet, error)
	Save(ctx context.Context, set *domain.ExchangeRateSet) error
}

// RateProvider resolves the exchange rate set a user's valuations run against.
type RateProvider interface {
	Latest(ctx context.Context, userID string) (*domain.ExchangeRateSet, error)
}

// YearlyRecordRepository defines data access for standalone yearly records.
type YearlyRecordRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.YearlyRecord, error)
	Upsert(ctx context.Context, tx Transaction, record *domain.YearlyRecord) error
}

// MonthlySnapshotRepository defines data access for monthly snapshots.
type MonthlySnapshotRepository interface {
	ListByUser(ctx context.Context, userID string) ([]*domain.MonthlySnapshot, error)
	Upsert(ctx context.Context, snapshot *domain.MonthlySnapshot) error
}

// AllocationRepository defines data access for allocation categories and targets.
type AllocationRepository interface {
	ListCategories(ctx context.Context, userID string) ([]*domain.AllocationCategory, error)
	// GetRebalanceThreshold returns zero when the user never set one.
	GetRebalanceThreshold(ctx context.Context, userID string) (decimal.Decimal, error)
}

// AuditRepository defines data access for audit logs.
type AuditRepository interface {
	Create(ctx context.Context, log *domain.AuditLog) error
	CreateTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error
	List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error)
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit(ctx context.Context) error
	Rollback(ctx context.Context) error
}

// TransactionManager handles transaction lifecycle.
type TransactionManager interface {
	Begin(ctx context.Context) (Transaction, error)
}

// Retrier re-runs an operation on transient storage errors.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Cache defines caching operations.
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

// IdempotencyStore handles idempotency key storage.
type IdempotencyStore interface {
	// CheckAndSet atomically checks if key exists, sets if not.
	// Returns (exists, existingValue, error).
	CheckAndSet(ctx context.Context, key string, response []byte, ttl time.Duration) (bool, []byte, error)
	// Update updates an existing key with the final response.
	Update(ctx context.Context, key string, response []byte, ttl time.Duration) error
	// Release drops a reservation whose request did not succeed.
	Release(ctx context.Context, key string) error
}
