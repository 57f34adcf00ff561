package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/usecase"
)

const holdingColumns = `id, user_id, symbol, name, currency, quantity, unit_cost, current_unit_price,
	value, value_sgd, value_usd, value_inr, category_id, price_source, price_updated_at,
	created_at, updated_at`

// HoldingRepository implements usecase.HoldingRepository.
type HoldingRepository struct {
	db dbtx
}

// NewHoldingRepository creates a new HoldingRepository.
func NewHoldingRepository(pool *pgxpool.Pool) *HoldingRepository {
	return newHoldingRepository(pool)
}

func newHoldingRepository(db dbtx) *HoldingRepository {
	return &HoldingRepository{db: db}
}

// ListByUser returns the user's holdings ordered by symbol.
func (r *HoldingRepository) ListByUser(ctx context.Context, userID string) ([]*domain.Holding, error) {
	rows, err := r.db.Query(ctx,
		`SELECT `+holdingColumns+` FROM holdings WHERE user_id = $1 ORDER BY symbol, id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	holdings := make([]*domain.Holding, 0)
	for rows.Next() {
		h, err := scanHolding(rows)
		if err != nil {
			return nil, err
		}
		holdings = append(holdings, h)
	}

	return holdings, rows.Err()
}

// GetByID retrieves a holding by ID.
func (r *HoldingRepository) GetByID(ctx context.Context, id string) (*domain.Holding, error) {
	row := r.db.QueryRow(ctx, `SELECT `+holdingColumns+` FROM holdings WHERE id = $1`, id)

	h, err := scanHolding(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHoldingNotFound
		}
		return nil, err
	}

	return h, nil
}

// GetByIDForUpdate retrieves a holding by ID with a FOR UPDATE lock.
func (r *HoldingRepository) GetByIDForUpdate(ctx context.Context, tx usecase.Transaction, id string) (*domain.Holding, error) {
	ptx, err := pgxTx(tx)
	if err != nil {
		return nil, err
	}

	row := ptx.QueryRow(ctx, `SELECT `+holdingColumns+` FROM holdings WHERE id = $1 FOR UPDATE`, id)

	h, err := scanHolding(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrHoldingNotFound
		}
		return nil, err
	}

	return h, nil
}

// Update stores the mutable fields of a holding.
func (r *HoldingRepository) Update(ctx context.Context, tx usecase.Transaction, h *domain.Holding) error {
	ptx, err := pgxTx(tx)
	if err != nil {
		return err
	}

	tag, err := ptx.Exec(ctx, `
		UPDATE holdings SET
			quantity = $2,
			unit_cost = $3,
			current_unit_price = $4,
			value = $5,
			value_sgd = $6,
			value_usd = $7,
			value_inr = $8,
			price_source = $9,
			price_updated_at = $10,
			updated_at = $11
		WHERE id = $1`,
		h.ID,
		nullableDecimalToNumeric(h.Quantity),
		decimalToNumeric(h.UnitCost),
		nullableDecimalToNumeric(h.CurrentUnitPrice),
		decimalToNumeric(h.Value),
		decimalToNumeric(h.ValueSGD),
		decimalToNumeric(h.ValueUSD),
		decimalToNumeric(h.ValueINR),
		string(h.PriceSource),
		nullableTimeToPgTimestamptz(h.PriceUpdatedAt),
		timeToPgTimestamptz(h.UpdatedAt),
	)
	if err != nil {
		return err
	}

	if tag.RowsAffected() == 0 {
		return domain.ErrHoldingNotFound
	}

	return nil
}

func scanHolding(row pgx.Row) (*domain.Holding, error) {
	var (
		h                                      domain.Holding
		currency, source                       string
		qty, cost, price, value, sgd, usd, inr pgtype.Numeric
		priceUpdatedAt                         pgtype.Timestamptz
	)

	err := row.Scan(
		&h.ID,
		&h.UserID,
		&h.Symbol,
		&h.Name,
		&currency,
		&qty,
		&cost,
		&price,
		&value,
		&sgd,
		&usd,
		&inr,
		&h.CategoryID,
		&source,
		&priceUpdatedAt,
		&h.CreatedAt,
		&h.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	h.Currency = domain.Currency(currency)
	h.Quantity = numericToDecimalPtr(qty)
	h.UnitCost = numericToDecimal(cost)
	h.CurrentUnitPrice = numericToDecimalPtr(price)
	h.Value = numericToDecimal(value)
	h.ValueSGD = numericToDecimal(sgd)
	h.ValueUSD = numericToDecimal(usd)
	h.ValueINR = numericToDecimal(inr)
	h.PriceSource = domain.PriceSource(source)
	h.PriceUpdatedAt = pgTimestamptzToTimePtr(priceUpdatedAt)

	return &h, nil
}
