package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
)

// AllocationRepository implements usecase.AllocationRepository.
type AllocationRepository struct {
	db dbtx
}

// NewAllocationRepository creates a new AllocationRepository.
func NewAllocationRepository(pool *pgxpool.Pool) *AllocationRepository {
	return newAllocationRepository(pool)
}

func newAllocationRepository(db dbtx) *AllocationRepository {
	return &AllocationRepository{db: db}
}

// ListCategories returns the user's categories in display order.
func (r *AllocationRepository) ListCategories(ctx context.Context, userID string) ([]*domain.AllocationCategory, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, name, target_percent
		FROM allocation_categories
		WHERE user_id = $1
		ORDER BY position, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	categories := make([]*domain.AllocationCategory, 0)
	for rows.Next() {
		var (
			c      domain.AllocationCategory
			target pgtype.Numeric
		)
		if err := rows.Scan(&c.ID, &c.UserID, &c.Name, &target); err != nil {
			return nil, err
		}
		c.TargetPercent = numericToDecimal(target)
		categories = append(categories, &c)
	}

	return categories, rows.Err()
}

// GetRebalanceThreshold returns the user's threshold, zero when unset.
func (r *AllocationRepository) GetRebalanceThreshold(ctx context.Context, userID string) (decimal.Decimal, error) {
	var threshold pgtype.Numeric

	err := r.db.QueryRow(ctx,
		`SELECT rebalance_threshold FROM allocation_settings WHERE user_id = $1`, userID,
	).Scan(&threshold)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return decimal.Zero, nil
		}
		return decimal.Zero, err
	}

	return numericToDecimal(threshold), nil
}
