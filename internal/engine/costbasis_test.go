package engine

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/wealthengine/internal/domain"
)

func TestApplyLot_WeightedAverage(t *testing.T) {
	res, err := ApplyLot(d("500"), d("4.40"), d("200"), d("15.00"))
	require.NoError(t, err)

	assert.True(t, res.Quantity.Equal(d("700")))
	// (500*4.40 + 200*15.00) / 700 = 5200 / 700
	assert.Equal(t, "7.43", res.UnitCost.StringFixed(2))
	assert.True(t, res.UnitCost.Mul(res.Quantity).Round(8).Equal(d("5200")))
}

func TestApplyLot_ZeroBaseTakesNewCost(t *testing.T) {
	res, err := ApplyLot(decimal.Zero, decimal.Zero, d("200"), d("5.00"))
	require.NoError(t, err)

	assert.True(t, res.Quantity.Equal(d("200")))
	assert.True(t, res.UnitCost.Equal(d("5")))
}

func TestApplyLot_InvalidLots(t *testing.T) {
	tests := []struct {
		name         string
		existingQty  string
		existingCost string
		newQty       string
		newCost      string
	}{
		{name: "zero quantity", existingQty: "10", existingCost: "1", newQty: "0", newCost: "1"},
		{name: "negative quantity", existingQty: "10", existingCost: "1", newQty: "-5", newCost: "1"},
		{name: "negative new cost", existingQty: "10", existingCost: "1", newQty: "5", newCost: "-1"},
		{name: "negative existing cost", existingQty: "10", existingCost: "-1", newQty: "5", newCost: "1"},
		{name: "negative existing quantity", existingQty: "-10", existingCost: "1", newQty: "5", newCost: "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ApplyLot(d(tt.existingQty), d(tt.existingCost), d(tt.newQty), d(tt.newCost))
			assert.ErrorIs(t, err, domain.ErrInvalidLot)
		})
	}
}

func TestApplyLotToHolding_LeavesPriceAndCallerUntouched(t *testing.T) {
	h := unitHolding("h-1", "eq", domain.CurrencySGD, "500", "9")
	h.UnitCost = d("4.40")
	h.Value = d("4500")

	out, err := ApplyLotToHolding(h, domain.LotEvent{Quantity: d("200"), UnitPrice: d("15")})
	require.NoError(t, err)

	assert.True(t, out.Quantity.Equal(d("700")))
	assert.Equal(t, "7.43", out.UnitCost.StringFixed(2))
	assert.True(t, out.CurrentUnitPrice.Equal(d("9")), "lot must not touch the market price")
	assert.True(t, out.Value.Equal(d("4500")), "lot must not touch the stored value")

	assert.True(t, h.Quantity.Equal(d("500")), "caller holding mutated")
	assert.True(t, h.UnitCost.Equal(d("4.40")), "caller cost mutated")
}

func TestApplyLotToHolding_ValueOnlyRejected(t *testing.T) {
	h := valueHolding("cash", "cash", domain.CurrencySGD, "1000")

	_, err := ApplyLotToHolding(h, domain.LotEvent{Quantity: d("1"), UnitPrice: d("1")})
	assert.ErrorIs(t, err, domain.ErrInvalidLot)
	assert.ErrorIs(t, err, domain.ErrValueOnlyHolding)
}

func TestSetCurrentPrice_OnlyTouchesPriceFields(t *testing.T) {
	h := unitHolding("h-1", "eq", domain.CurrencyUSD, "10", "5")
	h.UnitCost = d("4")
	ts := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)

	out, err := SetCurrentPrice(h, domain.PriceUpdate{
		UnitPrice: d("6.25"),
		Source:    domain.PriceSourceLive,
		UpdatedAt: ts,
	})
	require.NoError(t, err)

	assert.True(t, out.CurrentUnitPrice.Equal(d("6.25")))
	assert.Equal(t, domain.PriceSourceLive, out.PriceSource)
	require.NotNil(t, out.PriceUpdatedAt)
	assert.True(t, out.PriceUpdatedAt.Equal(ts))

	assert.True(t, out.Quantity.Equal(d("10")), "quantity changed")
	assert.True(t, out.UnitCost.Equal(d("4")), "weighted cost changed")
	assert.True(t, h.CurrentUnitPrice.Equal(d("5")), "caller price mutated")
}

func TestSetCurrentPrice_RejectsNegative(t *testing.T) {
	h := unitHolding("h-1", "eq", domain.CurrencyUSD, "10", "5")
	_, err := SetCurrentPrice(h, domain.PriceUpdate{UnitPrice: d("-1"), UpdatedAt: time.Now()})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestSetCurrentPrice_RequiresTimestamp(t *testing.T) {
	h := valueHolding("prop", "re", domain.CurrencySGD, "1")
	_, err := SetCurrentPrice(h, domain.PriceUpdate{UnitPrice: d("2"), Source: domain.PriceSourceManual})
	assert.ErrorIs(t, err, domain.ErrInvalidPrice)
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name         string
		qty, price   string
		stored       string
		consistent   bool
		calculated   string
		deltaPercent string
	}{
		{name: "flagged over percent", qty: "10", price: "5", stored: "60", consistent: false, calculated: "50", deltaPercent: "20"},
		{name: "exact match", qty: "10", price: "5", stored: "50", consistent: true, calculated: "50", deltaPercent: "0"},
		{name: "within both limits", qty: "1000", price: "10", stored: "10005", consistent: true, calculated: "10000", deltaPercent: "0.05"},
		{name: "over absolute only", qty: "100000", price: "10", stored: "1000011", consistent: false, calculated: "1000000", deltaPercent: "0.0011"},
		{name: "stored below calculated", qty: "10", price: "5", stored: "40", consistent: false, calculated: "50", deltaPercent: "20"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := unitHolding("h", "eq", domain.CurrencySGD, tt.qty, tt.price)
			h.Value = d(tt.stored)

			report := Reconcile(h, DefaultTolerance)

			assert.True(t, report.Checkable)
			assert.Equal(t, tt.consistent, report.Consistent)
			assert.True(t, report.CalculatedValue.Equal(d(tt.calculated)), "calculated %s", report.CalculatedValue)
			assert.True(t, report.StoredValue.Equal(d(tt.stored)))
			assert.True(t, report.DeltaPercent.Equal(d(tt.deltaPercent)), "delta percent %s", report.DeltaPercent)
			if !tt.consistent {
				assert.Equal(t, domain.ErrInconsistentValue.Error(), report.Reason)
			}
		})
	}
}

func TestReconcile_CustomTolerance(t *testing.T) {
	h := unitHolding("h", "eq", domain.CurrencySGD, "10", "5")
	h.Value = d("60")

	loose := Tolerance{Percent: d("25"), Absolute: d("20")}
	assert.True(t, Reconcile(h, loose).Consistent)
}

func TestReconcile_ValueOnlyIsNotCheckable(t *testing.T) {
	report := Reconcile(valueHolding("cash", "cash", domain.CurrencySGD, "500"), DefaultTolerance)
	assert.False(t, report.Checkable)
	assert.True(t, report.Consistent)
}

func TestReconcile_ZeroCalculatedValue(t *testing.T) {
	h := unitHolding("h", "eq", domain.CurrencySGD, "0", "5")
	h.Value = d("3")

	report := Reconcile(h, DefaultTolerance)
	assert.False(t, report.Consistent)
	assert.True(t, report.DeltaPercent.Equal(d("100")))
}

func TestFixValue(t *testing.T) {
	h := unitHolding("h", "eq", domain.CurrencySGD, "10", "5")
	h.Value = d("60")

	fixed, report, err := FixValue(h, testRates(), DefaultTolerance)
	require.NoError(t, err)

	assert.False(t, report.Consistent, "report reflects the state before the fix")
	assert.True(t, fixed.Value.Equal(d("50")))
	assert.True(t, fixed.ValueSGD.Equal(d("50")))
	assert.True(t, fixed.ValueUSD.Equal(d("37.5")))
	assert.True(t, fixed.ValueINR.Equal(d("3100")))
	assert.True(t, h.Value.Equal(d("60")), "caller holding mutated")

	assert.True(t, Reconcile(fixed, DefaultTolerance).Consistent)
}

func TestFixValue_ValueOnlyRejected(t *testing.T) {
	_, _, err := FixValue(valueHolding("cash", "cash", domain.CurrencySGD, "1"), testRates(), DefaultTolerance)
	assert.ErrorIs(t, err, domain.ErrValueOnlyHolding)
}
