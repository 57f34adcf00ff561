package engine

import (
	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
)

func d(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func testRates() domain.ExchangeRateSet {
	return domain.ExchangeRateSet{
		Rates: map[string]decimal.Decimal{
			"SGD_TO_USD": d("0.75"),
			"SGD_TO_INR": d("62"),
			"USD_TO_SGD": d("1.3333"),
			"USD_TO_INR": d("83"),
			"INR_TO_SGD": d("0.0161"),
			"INR_TO_USD": d("0.012"),
		},
		Source: domain.RateSourceManual,
	}
}

func unitHolding(id, category string, currency domain.Currency, qty, price string) domain.Holding {
	return domain.Holding{
		ID:               id,
		Symbol:           id,
		Currency:         currency,
		CategoryID:       category,
		Quantity:         domain.DecimalPtr(d(qty)),
		CurrentUnitPrice: domain.DecimalPtr(d(price)),
	}
}

func valueHolding(id, category string, currency domain.Currency, value string) domain.Holding {
	return domain.Holding{
		ID:         id,
		Symbol:     id,
		Currency:   currency,
		CategoryID: category,
		Value:      d(value),
	}
}
