package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
)

var hundred = decimal.NewFromInt(100)

// LotResult is the holding state after a lot has been absorbed.
type LotResult struct {
	Quantity decimal.Decimal
	UnitCost decimal.Decimal
}

// ApplyLot blends a new lot into an existing position with the weighted-average method.
func ApplyLot(existingQty, existingUnitCost, newQty, newUnitCost decimal.Decimal) (LotResult, error) {
	if !newQty.IsPositive() {
		return LotResult{}, fmt.Errorf("%w: quantity %s must be positive", domain.ErrInvalidLot, newQty)
	}
	if newUnitCost.IsNegative() || existingUnitCost.IsNegative() {
		return LotResult{}, fmt.Errorf("%w: unit cost must not be negative", domain.ErrInvalidLot)
	}
	if existingQty.IsNegative() {
		return LotResult{}, fmt.Errorf("%w: existing quantity %s is negative", domain.ErrInvalidLot, existingQty)
	}

	combined := existingQty.Add(newQty)
	if existingQty.IsZero() {
		return LotResult{Quantity: combined, UnitCost: newUnitCost}, nil
	}

	totalCost := existingQty.Mul(existingUnitCost).Add(newQty.Mul(newUnitCost))

	return LotResult{
		Quantity: combined,
		UnitCost: totalCost.Div(combined),
	}, nil
}

// ApplyLotToHolding returns a copy of h with the lot absorbed into quantity and weighted cost.
// Current price and stored values are untouched; revaluing is a separate step.
func ApplyLotToHolding(h domain.Holding, lot domain.LotEvent) (domain.Holding, error) {
	if h.Quantity == nil {
		return domain.Holding{}, fmt.Errorf("%w: %w", domain.ErrInvalidLot, domain.ErrValueOnlyHolding)
	}

	res, err := ApplyLot(*h.Quantity, h.UnitCost, lot.Quantity, lot.UnitPrice)
	if err != nil {
		return domain.Holding{}, err
	}

	out := h.Clone()
	out.Quantity = domain.DecimalPtr(res.Quantity)
	out.UnitCost = res.UnitCost
	return out, nil
}

// SetCurrentPrice returns a copy of h with only the market price fields replaced.
// The update must carry its timestamp.
func SetCurrentPrice(h domain.Holding, update domain.PriceUpdate) (domain.Holding, error) {
	if err := update.Validate(); err != nil {
		return domain.Holding{}, fmt.Errorf("%w: %s", err, update.UnitPrice)
	}
	if update.UpdatedAt.IsZero() {
		return domain.Holding{}, fmt.Errorf("%w: missing price timestamp", domain.ErrInvalidPrice)
	}

	ts := update.UpdatedAt

	out := h.Clone()
	out.CurrentUnitPrice = domain.DecimalPtr(update.UnitPrice)
	out.PriceSource = update.Source
	out.PriceUpdatedAt = &ts
	return out, nil
}

// Tolerance bounds how far stored value may drift from quantity x price.
type Tolerance struct {
	Percent  decimal.Decimal
	Absolute decimal.Decimal
}

// DefaultTolerance flags mismatches above 1% or 10 units of native currency.
var DefaultTolerance = Tolerance{
	Percent:  decimal.NewFromInt(1),
	Absolute: decimal.NewFromInt(10),
}

// ReconciliationReport describes the outcome of a reconciliation check.
type ReconciliationReport struct {
	HoldingID       string
	Symbol          string
	Checkable       bool
	Consistent      bool
	CalculatedValue decimal.Decimal
	StoredValue     decimal.Decimal
	Delta           decimal.Decimal
	DeltaPercent    decimal.Decimal
	Reason          string
}

// Reconcile compares quantity x current price to the stored native value.
// It never modifies the holding.
func Reconcile(h domain.Holding, tol Tolerance) ReconciliationReport {
	report := ReconciliationReport{
		HoldingID:   h.ID,
		Symbol:      h.Symbol,
		StoredValue: h.Value,
		Consistent:  true,
	}

	if !h.TracksUnits() {
		report.Reason = domain.ErrValueOnlyHolding.Error()
		return report
	}

	calculated := h.Quantity.Mul(*h.CurrentUnitPrice)
	delta := h.Value.Sub(calculated)

	report.Checkable = true
	report.CalculatedValue = calculated
	report.Delta = delta
	report.DeltaPercent = percentOf(delta.Abs(), calculated)

	if report.DeltaPercent.GreaterThan(tol.Percent) || delta.Abs().GreaterThan(tol.Absolute) {
		report.Consistent = false
		report.Reason = domain.ErrInconsistentValue.Error()
	}

	return report
}

// FixValue rewrites the stored native and converted values from quantity x price.
// It is the explicit correction path; Reconcile never calls it.
func FixValue(h domain.Holding, rates domain.ExchangeRateSet, tol Tolerance) (domain.Holding, ReconciliationReport, error) {
	report := Reconcile(h, tol)
	if !report.Checkable {
		return domain.Holding{}, report, fmt.Errorf("cannot fix %s: %w", h.ID, domain.ErrValueOnlyHolding)
	}

	converted, err := ConvertToAll(report.CalculatedValue, h.Currency, rates)
	if err != nil {
		return domain.Holding{}, report, err
	}

	out := h.Clone()
	out.Value = report.CalculatedValue
	out.SetConverted(converted)
	return out, report, nil
}

// percentOf returns part/whole*100. A zero whole yields 100 when part is non-zero.
func percentOf(part, whole decimal.Decimal) decimal.Decimal {
	if whole.IsZero() {
		if part.IsZero() {
			return decimal.Zero
		}
		return hundred
	}
	return part.Div(whole.Abs()).Mul(hundred)
}
