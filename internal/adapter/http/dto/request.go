package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/usecase"
)

// SaveRatesRequest replaces a user's exchange rate snapshot.
// Rates are keyed by directed pair, e.g. SGD_TO_USD.
type SaveRatesRequest struct {
	Rates  map[string]decimal.Decimal `json:"rates"`
	Source string                     `json:"source,omitempty"`
}

// ToUseCaseInput converts to use case input.
func (r *SaveRatesRequest) ToUseCaseInput(userID string) usecase.SaveRatesInput {
	return usecase.SaveRatesInput{
		UserID: userID,
		Rates:  r.Rates,
		Source: domain.RateSource(r.Source),
	}
}

// ApplyLotRequest records a purchase lot against a holding.
type ApplyLotRequest struct {
	Quantity   decimal.Decimal `json:"quantity"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	OccurredAt *time.Time      `json:"occurred_at,omitempty"`
}

// ToUseCaseInput converts to use case input. A missing timestamp becomes now.
func (r *ApplyLotRequest) ToUseCaseInput(userID, holdingID string, now time.Time) usecase.ApplyLotInput {
	occurredAt := now
	if r.OccurredAt != nil {
		occurredAt = *r.OccurredAt
	}
	return usecase.ApplyLotInput{
		UserID:     userID,
		HoldingID:  holdingID,
		Quantity:   r.Quantity,
		UnitPrice:  r.UnitPrice,
		OccurredAt: occurredAt,
	}
}

// SetPriceRequest sets a holding's current unit price.
type SetPriceRequest struct {
	UnitPrice decimal.Decimal `json:"unit_price"`
	Source    string          `json:"source,omitempty"`
	UpdatedAt *time.Time      `json:"updated_at,omitempty"`
}

// ToUseCaseInput converts to use case input. A missing timestamp becomes now.
func (r *SetPriceRequest) ToUseCaseInput(userID, holdingID string, now time.Time) usecase.SetPriceInput {
	updatedAt := now
	if r.UpdatedAt != nil {
		updatedAt = *r.UpdatedAt
	}
	return usecase.SetPriceInput{
		UserID:    userID,
		HoldingID: holdingID,
		UnitPrice: r.UnitPrice,
		Source:    domain.PriceSource(r.Source),
		UpdatedAt: updatedAt,
	}
}

// MonthlySnapshotRequest records one month of income, expenses and balances.
type MonthlySnapshotRequest struct {
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Income         decimal.Decimal `json:"income"`
	Expenses       decimal.Decimal `json:"expenses"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	NetWorth       decimal.Decimal `json:"net_worth"`
	Notes          string          `json:"notes,omitempty"`
}

// ToDomain converts to a domain snapshot owned by userID.
func (r *MonthlySnapshotRequest) ToDomain(userID string) *domain.MonthlySnapshot {
	return &domain.MonthlySnapshot{
		UserID:         userID,
		Year:           r.Year,
		Month:          r.Month,
		Income:         r.Income,
		Expenses:       r.Expenses,
		PortfolioValue: r.PortfolioValue,
		NetWorth:       r.NetWorth,
		Notes:          r.Notes,
	}
}

// YearlyRecordRequest stores a user-entered yearly record.
// Savings defaults to income minus expenses.
type YearlyRecordRequest struct {
	Year            int              `json:"year"`
	Income          decimal.Decimal  `json:"income"`
	Expenses        decimal.Decimal  `json:"expenses"`
	Savings         *decimal.Decimal `json:"savings,omitempty"`
	NetWorth        decimal.Decimal  `json:"net_worth"`
	SRSContribution decimal.Decimal  `json:"srs_contribution"`
	Confidence      string           `json:"confidence,omitempty"`
	IsEstimated     bool             `json:"is_estimated"`
	Notes           string           `json:"notes,omitempty"`
}

// ToDomain converts to a domain record owned by userID.
func (r *YearlyRecordRequest) ToDomain(userID string) *domain.YearlyRecord {
	savings := r.Income.Sub(r.Expenses)
	if r.Savings != nil {
		savings = *r.Savings
	}

	provenance := domain.ProvenanceUser
	if r.IsEstimated {
		provenance = domain.ProvenanceEstimated
	}

	return &domain.YearlyRecord{
		UserID:          userID,
		Year:            r.Year,
		Income:          r.Income,
		Expenses:        r.Expenses,
		Savings:         savings,
		NetWorth:        r.NetWorth,
		SRSContribution: r.SRSContribution,
		Provenance:      provenance,
		Confidence:      domain.Confidence(r.Confidence),
		IsEstimated:     r.IsEstimated,
		Notes:           r.Notes,
	}
}
