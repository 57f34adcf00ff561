package usecase_test

import (
	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
)

func dec(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRates(userID string) *domain.ExchangeRateSet {
	return &domain.ExchangeRateSet{
		UserID: userID,
		Source: domain.RateSourceManual,
		Rates: map[string]decimal.Decimal{
			"SGD_TO_USD": dec("0.75"),
			"SGD_TO_INR": dec("62"),
			"USD_TO_SGD": dec("1.3333"),
			"USD_TO_INR": dec("83"),
			"INR_TO_SGD": dec("0.0161"),
			"INR_TO_USD": dec("0.012"),
		},
	}
}

func unitHolding(id, userID string, qty, cost, price, value string) *domain.Holding {
	return &domain.Holding{
		ID:               id,
		UserID:           userID,
		Symbol:           "VWRA",
		Currency:         domain.CurrencyUSD,
		Quantity:         domain.DecimalPtr(dec(qty)),
		UnitCost:         dec(cost),
		CurrentUnitPrice: domain.DecimalPtr(dec(price)),
		Value:            dec(value),
		CategoryID:       "equities",
	}
}
