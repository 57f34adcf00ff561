package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/usecase"
)

// YearlyRecordRepository implements usecase.YearlyRecordRepository.
type YearlyRecordRepository struct {
	db dbtx
}

// NewYearlyRecordRepository creates a new YearlyRecordRepository.
func NewYearlyRecordRepository(pool *pgxpool.Pool) *YearlyRecordRepository {
	return newYearlyRecordRepository(pool)
}

func newYearlyRecordRepository(db dbtx) *YearlyRecordRepository {
	return &YearlyRecordRepository{db: db}
}

// ListByUser returns the user's yearly records ordered by year.
func (r *YearlyRecordRepository) ListByUser(ctx context.Context, userID string) ([]*domain.YearlyRecord, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, user_id, year, income, expenses, savings, net_worth, market_gains,
		       return_percent, savings_rate, srs_contribution, provenance, confidence,
		       is_estimated, months_covered, notes
		FROM yearly_records
		WHERE user_id = $1
		ORDER BY year`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	records := make([]*domain.YearlyRecord, 0)
	for rows.Next() {
		rec, err := scanYearlyRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}

// Upsert inserts or replaces the record for (user, year). The stored row keeps
// its original ID, which is written back to record.
func (r *YearlyRecordRepository) Upsert(ctx context.Context, tx usecase.Transaction, record *domain.YearlyRecord) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	return ptx.QueryRow(ctx, `
		INSERT INTO yearly_records (
			id, user_id, year, income, expenses, savings, net_worth, market_gains,
			return_percent, savings_rate, srs_contribution, provenance, confidence,
			is_estimated, months_covered, notes, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, NOW())
		ON CONFLICT (user_id, year) DO UPDATE SET
			income = EXCLUDED.income,
			expenses = EXCLUDED.expenses,
			savings = EXCLUDED.savings,
			net_worth = EXCLUDED.net_worth,
			market_gains = EXCLUDED.market_gains,
			return_percent = EXCLUDED.return_percent,
			savings_rate = EXCLUDED.savings_rate,
			srs_contribution = EXCLUDED.srs_contribution,
			provenance = EXCLUDED.provenance,
			confidence = EXCLUDED.confidence,
			is_estimated = EXCLUDED.is_estimated,
			months_covered = EXCLUDED.months_covered,
			notes = EXCLUDED.notes,
			updated_at = NOW()
		RETURNING id`,
		record.ID,
		record.UserID,
		record.Year,
		decimalToNumeric(record.Income),
		decimalToNumeric(record.Expenses),
		decimalToNumeric(record.Savings),
		decimalToNumeric(record.NetWorth),
		decimalToNumeric(record.MarketGains),
		decimalToNumeric(record.ReturnPercent),
		decimalToNumeric(record.SavingsRate),
		decimalToNumeric(record.SRSContribution),
		string(record.Provenance),
		string(record.Confidence),
		record.IsEstimated,
		record.MonthsCovered,
		record.Notes,
	).Scan(&record.ID)
}

func scanYearlyRecord(row pgx.Row) (*domain.YearlyRecord, error) {
	var (
		rec                                        domain.YearlyRecord
		provenance, confidence                     string
		income, expenses, savings, netWorth, gains pgtype.Numeric
		returnPct, savingsRate, srs                pgtype.Numeric
	)

	err := row.Scan(
		&rec.ID,
		&rec.UserID,
		&rec.Year,
		&income,
		&expenses,
		&savings,
		&netWorth,
		&gains,
		&returnPct,
		&savingsRate,
		&srs,
		&provenance,
		&confidence,
		&rec.IsEstimated,
		&rec.MonthsCovered,
		&rec.Notes,
	)
	if err != nil {
		return nil, err
	}

	rec.Income = numericToDecimal(income)
	rec.Expenses = numericToDecimal(expenses)
	rec.Savings = numericToDecimal(savings)
	rec.NetWorth = numericToDecimal(netWorth)
	rec.MarketGains = numericToDecimal(gains)
	rec.ReturnPercent = numericToDecimal(returnPct)
	rec.SavingsRate = numericToDecimal(savingsRate)
	rec.SRSContribution = numericToDecimal(srs)
	rec.Provenance = domain.Provenance(provenance)
	rec.Confidence = domain.Confidence(confidence)

	return &rec, nil
}
