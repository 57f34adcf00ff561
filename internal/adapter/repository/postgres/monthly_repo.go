package postgres

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/wealthengine/internal/domain"
)

// MonthlySnapshotRepository implements usecase.MonthlySnapshotRepository.
type MonthlySnapshotRepository struct {
	db dbtx
}

// NewMonthlySnapshotRepository creates a new MonthlySnapshotRepository.
func NewMonthlySnapshotRepository(pool *pgxpool.Pool) *MonthlySnapshotRepository {
	return newMonthlySnapshotRepository(pool)
}

func newMonthlySnapshotRepository(db dbtx) *MonthlySnapshotRepository {
	return &MonthlySnapshotRepository{db: db}
}

// ListByUser returns the user's snapshots in chronological order.
func (r *MonthlySnapshotRepository) ListByUser(ctx context.Context, userID string) ([]*domain.MonthlySnapshot, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, year, month, income, expenses, portfolio_value, net_worth, notes
		FROM monthly_snapshots
		WHERE user_id = $1
		ORDER BY year, month`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := make([]*domain.MonthlySnapshot, 0)
	for rows.Next() {
		var (
			s                                          domain.MonthlySnapshot
			income, expenses, portfolioValue, netWorth pgtype.Numeric
		)
		if err := rows.Scan(
			&s.ID,
			&s.UserID,
			&s.Year,
			&s.Month,
			&income,
			&expenses,
			&portfolioValue,
			&netWorth,
			&s.Notes,
		); err != nil {
			return nil, err
		}

		s.Income = numericToDecimal(income)
		s.Expenses = numericToDecimal(expenses)
		s.PortfolioValue = numericToDecimal(portfolioValue)
		s.NetWorth = numericToDecimal(netWorth)
		snapshots = append(snapshots, &s)
	}

	return snapshots, rows.Err()
}

// Upsert inserts or replaces the snapshot for (user, year, month).
func (r *MonthlySnapshotRepository) Upsert(ctx context.Context, s *domain.MonthlySnapshot) error {
	return r.db.QueryRow(ctx, `
		INSERT INTO monthly_snapshots (
			id, user_id, year, month, income, expenses, portfolio_value, net_worth, notes
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (user_id, year, month) DO UPDATE SET
			income = EXCLUDED.income,
			expenses = EXCLUDED.expenses,
			portfolio_value = EXCLUDED.portfolio_value,
			net_worth = EXCLUDED.net_worth,
			notes = EXCLUDED.notes
		RETURNING id`,
		s.ID,
		s.UserID,
		s.Year,
		s.Month,
		decimalToNumeric(s.Income),
		decimalToNumeric(s.Expenses),
		decimalToNumeric(s.PortfolioValue),
		decimalToNumeric(s.NetWorth),
		s.Notes,
	).Scan(&s.ID)
}
