package usecase

import "time"

const (
	// DefaultTransactionTimeout is the maximum duration for a database transaction
	DefaultTransactionTimeout = 10 * time.Second

	// DefaultRateCacheTTL is how long a user's latest rate set stays cached
	DefaultRateCacheTTL = 15 * time.Minute

	// IdempotencyKeyTTL is how long idempotency keys are cached
	IdempotencyKeyTTL = 24 * time.Hour

	// DefaultAuditLimit caps audit history queries
	DefaultAuditLimit = 100

	// SystemActor is recorded when no caller identity is supplied
	SystemActor = "system"
)
