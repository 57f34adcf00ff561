package postgres

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
)

// RateRepository implements usecase.RateRepository.
// Each directed pair is its own column, named after its lower-cased rate key.
type RateRepository struct {
	db dbtx
}

// NewRateRepository creates a new RateRepository.
func NewRateRepository(pool *pgxpool.Pool) *RateRepository {
	return newRateRepository(pool)
}

func newRateRepository(db dbtx) *RateRepository {
	return &RateRepository{db: db}
}

func rateColumns() []string {
	keys := domain.RequiredRateKeys()
	cols := make([]string, len(keys))
	for i, k := range keys {
		cols[i] = strings.ToLower(k)
	}
	return cols
}

// GetLatest returns the user's stored rate set.
func (r *RateRepository) GetLatest(ctx context.Context, userID string) (*domain.ExchangeRateSet, error) {
	keys := domain.RequiredRateKeys()
	values := make([]pgtype.Numeric, len(keys))

	set := &domain.ExchangeRateSet{UserID: userID, Rates: make(map[string]decimal.Decimal, len(keys))}
	var source string

	dest := make([]any, 0, len(keys)+2)
	for i := range values {
		dest = append(dest, &values[i])
	}
	dest = append(dest, &source, &set.UpdatedAt)

	query := `SELECT ` + strings.Join(rateColumns(), ", ") + `, source, updated_at
		FROM exchange_rate_sets WHERE user_id = $1`
	if err := r.db.QueryRow(ctx, query, userID).Scan(dest...); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrRatesNotFound
		}
		return nil, err
	}

	for i, k := range keys {
		set.Rates[k] = numericToDecimal(values[i])
	}
	set.Source = domain.RateSource(source)

	return set, nil
}

// Save replaces the user's rate set.
func (r *RateRepository) Save(ctx context.Context, set *domain.ExchangeRateSet) error {
	cols := rateColumns()
	keys := domain.RequiredRateKeys()

	args := make([]any, 0, len(keys)+3)
	args = append(args, set.UserID)
	placeholders := make([]string, 0, len(keys))
	updates := make([]string, 0, len(keys)+2)
	for i, k := range keys {
		args = append(args, decimalToNumeric(set.Rates[k]))
		placeholders = append(placeholders, "$"+strconv.Itoa(i+2))
		updates = append(updates, cols[i]+" = EXCLUDED."+cols[i])
	}
	args = append(args, string(set.Source), timeToPgTimestamptz(set.UpdatedAt))
	updates = append(updates, "source = EXCLUDED.source", "updated_at = EXCLUDED.updated_at")

	query := `INSERT INTO exchange_rate_sets (user_id, ` + strings.Join(cols, ", ") + `, source, updated_at)
		VALUES ($1, ` + strings.Join(placeholders, ", ") + `, $` + strconv.Itoa(len(keys)+2) + `, $` + strconv.Itoa(len(keys)+3) + `)
		ON CONFLICT (user_id) DO UPDATE SET ` + strings.Join(updates, ", ")

	_, err := r.db.Exec(ctx, query, args...)
	return err
}
