package postgres

import (
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/usecase"
)

const insertAuditLogSQL = `
	INSERT INTO audit_logs (
		id, user_id, actor, action, resource_type, resource_id, request_id,
		before_state, after_state, status, error_message, created_at
	) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

// AuditRepository implements usecase.AuditRepository.
type AuditRepository struct {
	db dbtx
}

// NewAuditRepository creates a new audit repository.
func NewAuditRepository(pool *pgxpool.Pool) *AuditRepository {
	return newAuditRepository(pool)
}

func newAuditRepository(db dbtx) *AuditRepository {
	return &AuditRepository{db: db}
}

// Create inserts a new audit log entry outside any transaction.
func (r *AuditRepository) Create(ctx context.Context, log *domain.AuditLog) error {
	return insertAuditLog(ctx, r.db, log)
}

// CreateTx inserts a new audit log entry within a transaction.
func (r *AuditRepository) CreateTx(ctx context.Context, tx usecase.Transaction, log *domain.AuditLog) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}
	return insertAuditLog(ctx, ptx, log)
}

func insertAuditLog(ctx context.Context, db dbtx, log *domain.AuditLog) error {
	if log.ID == "" {
		log.ID = uuid.New().String()
	}
	if log.CreatedAt.IsZero() {
		log.CreatedAt = time.Now().UTC()
	}

	beforeStateJSON, err := marshalState(log.BeforeState)
	if err != nil {
		return err
	}
	afterStateJSON, err := marshalState(log.AfterState)
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, insertAuditLogSQL,
		log.ID,
		log.UserID,
		log.Actor,
		string(log.Action),
		log.ResourceType,
		log.ResourceID,
		log.RequestID,
		beforeStateJSON,
		afterStateJSON,
		string(log.Status),
		log.ErrorMessage,
		log.CreatedAt,
	)

	return err
}

func marshalState(state domain.JSON) ([]byte, error) {
	if state == nil {
		return nil, nil
	}
	return json.Marshal(state)
}

// List retrieves audit logs with filtering, newest first.
func (r *AuditRepository) List(ctx context.Context, filter domain.AuditFilter) ([]*domain.AuditLog, error) {
	var (
		sb   strings.Builder
		args []any
	)

	sb.WriteString(`
		SELECT id, user_id, actor, action, resource_type, resource_id, request_id,
		       before_state, after_state, status, error_message, created_at
		FROM audit_logs
		WHERE 1=1`)

	addFilter := func(column, value string) {
		if value == "" {
			return
		}
		args = append(args, value)
		sb.WriteString(" AND " + column + " = $" + strconv.Itoa(len(args)))
	}

	addFilter("user_id", filter.UserID)
	addFilter("action", string(filter.Action))
	addFilter("resource_type", filter.ResourceType)
	addFilter("resource_id", filter.ResourceID)

	sb.WriteString(" ORDER BY created_at DESC")

	limit := filter.Limit
	if limit <= 0 {
		limit = usecase.DefaultAuditLimit
	}
	args = append(args, limit)
	sb.WriteString(" LIMIT $" + strconv.Itoa(len(args)))

	rows, err := r.db.Query(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]*domain.AuditLog, 0)
	for rows.Next() {
		log, err := scanAuditLog(rows)
		if err != nil {
			return nil, err
		}
		logs = append(logs, log)
	}

	return logs, rows.Err()
}

func scanAuditLog(row pgx.Row) (*domain.AuditLog, error) {
	var (
		log                             domain.AuditLog
		action, status                  string
		beforeStateJSON, afterStateJSON []byte
	)

	err := row.Scan(
		&log.ID,
		&log.UserID,
		&log.Actor,
		&action,
		&log.ResourceType,
		&log.ResourceID,
		&log.RequestID,
		&beforeStateJSON,
		&afterStateJSON,
		&status,
		&log.ErrorMessage,
		&log.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	log.Action = domain.AuditAction(action)
	log.Status = domain.AuditStatus(status)

	if len(beforeStateJSON) > 0 {
		if err := json.Unmarshal(beforeStateJSON, &log.BeforeState); err != nil {
			return nil, err
		}
	}
	if len(afterStateJSON) > 0 {
		if err := json.Unmarshal(afterStateJSON, &log.AfterState); err != nil {
			return nil, err
		}
	}

	return &log, nil
}
