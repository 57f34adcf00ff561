package engine

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
)

// Convert converts amount from one currency to another using the directed rate.
// Identical currencies short-circuit without a rate lookup.
func Convert(amount decimal.Decimal, from, to domain.Currency, rates domain.ExchangeRateSet) (decimal.Decimal, error) {
	if !from.IsValid() {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, from)
	}
	if !to.IsValid() {
		return decimal.Zero, fmt.Errorf("%w: %q", domain.ErrInvalidCurrency, to)
	}

	if from == to {
		return amount, nil
	}

	rate, ok := rates.Rate(from, to)
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", domain.ErrMissingRate, domain.RateKey(from, to))
	}

	return amount.Mul(rate), nil
}

// ConvertToAll expresses amount in every supported currency.
func ConvertToAll(amount decimal.Decimal, from domain.Currency, rates domain.ExchangeRateSet) (domain.MultiCurrencyValue, error) {
	var out domain.MultiCurrencyValue

	sgd, err := Convert(amount, from, domain.CurrencySGD, rates)
	if err != nil {
		return out, err
	}
	usd, err := Convert(amount, from, domain.CurrencyUSD, rates)
	if err != nil {
		return out, err
	}
	inr, err := Convert(amount, from, domain.CurrencyINR, rates)
	if err != nil {
		return out, err
	}

	out.SGD = sgd
	out.USD = usd
	out.INR = inr
	return out, nil
}
