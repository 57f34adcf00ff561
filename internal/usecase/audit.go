package usecase

import (
	"context"
	"time"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/infrastructure/metrics"
)

// auditTrail stamps and stores audit logs. A nil repo disables auditing.
type auditTrail struct {
	repo    AuditRepository
	idGen   IDGenerator
	metrics *metrics.Metrics
}

func (a auditTrail) entry(ctx context.Context, userID string, action domain.AuditAction, resourceType, resourceID string) *domain.AuditLog {
	actor, ok := domain.ActorFromContext(ctx)
	if !ok {
		actor = SystemActor
	}

	log := &domain.AuditLog{
		UserID:       userID,
		Actor:        actor,
		Action:       action,
		ResourceType: resourceType,
		ResourceID:   resourceID,
		RequestID:    domain.RequestIDFromContext(ctx),
		Status:       domain.AuditStatusSuccess,
		CreatedAt:    time.Now().UTC(),
	}
	if a.idGen != nil {
		log.ID = a.idGen.Generate()
	}
	return log
}

func (a auditTrail) recordTx(ctx context.Context, tx Transaction, log *domain.AuditLog) error {
	if a.repo == nil {
		return nil
	}
	if err := a.repo.CreateTx(ctx, tx, log); err != nil {
		return err
	}
	a.count(log)
	return nil
}

// record stores a log outside any transaction. Failures are reported, not fatal.
func (a auditTrail) record(ctx context.Context, log *domain.AuditLog) error {
	if a.repo == nil {
		return nil
	}
	if err := a.repo.Create(ctx, log); err != nil {
		return err
	}
	a.count(log)
	return nil
}

func (a auditTrail) count(log *domain.AuditLog) {
	if a.metrics != nil {
		a.metrics.AuditLogsCreated.WithLabelValues(string(log.Action), string(log.Status)).Inc()
	}
}

// observe records outcome and latency of one use case operation.
func observe(m *metrics.Metrics, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.EngineOperations.WithLabelValues(operation, status).Inc()
	m.EngineDuration.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}
