package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// Currency is an ISO 4217 code supported by the engine.
type Currency string

const (
	CurrencySGD Currency = "SGD"
	CurrencyUSD Currency = "USD"
	CurrencyINR Currency = "INR"
)

// SupportedCurrencies lists display currencies in their canonical order.
var SupportedCurrencies = []Currency{CurrencySGD, CurrencyUSD, CurrencyINR}

// IsValid reports whether c is one of the supported currencies.
func (c Currency) IsValid() bool {
	switch c {
	case CurrencySGD, CurrencyUSD, CurrencyINR:
		return true
	}
	return false
}

// ParseCurrency normalizes and validates a currency code.
func ParseCurrency(code string) (Currency, error) {
	c := Currency(strings.ToUpper(strings.TrimSpace(code)))
	if !c.IsValid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCurrency, code)
	}
	return c, nil
}

// RateSource tells where an exchange rate snapshot came from.
type RateSource string

const (
	RateSourceManual RateSource = "manual"
	RateSourceLive   RateSource = "live"
)

// IsValid reports whether s is a known rate source.
func (s RateSource) IsValid() bool {
	return s == RateSourceManual || s == RateSourceLive
}

// RateKey returns the directed rate key, e.g. SGD_TO_USD.
func RateKey(from, to Currency) string {
	return string(from) + "_TO_" + string(to)
}

// ExchangeRateSet is a whole snapshot of the six directed rates.
// Triangular consistency is the supplier's responsibility.
type ExchangeRateSet struct {
	UserID    string
	Rates     map[string]decimal.Decimal
	Source    RateSource
	UpdatedAt time.Time
}

// Rate returns the directed rate from -> to.
func (s ExchangeRateSet) Rate(from, to Currency) (decimal.Decimal, bool) {
	if s.Rates == nil {
		return decimal.Zero, false
	}
	r, ok := s.Rates[RateKey(from, to)]
	return r, ok
}

// RequiredRateKeys lists every directed pair among the supported currencies.
func RequiredRateKeys() []string {
	keys := make([]string, 0, 6)
	for _, from := range SupportedCurrencies {
		for _, to := range SupportedCurrencies {
			if from != to {
				keys = append(keys, RateKey(from, to))
			}
		}
	}
	return keys
}

// MissingRates returns the required keys absent from the set.
func (s ExchangeRateSet) MissingRates() []string {
	var missing []string
	for _, key := range RequiredRateKeys() {
		if _, ok := s.Rates[key]; !ok {
			missing = append(missing, key)
		}
	}
	return missing
}

// Validate checks that the snapshot is complete and every rate is positive.
func (s ExchangeRateSet) Validate() error {
	if missing := s.MissingRates(); len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingRate, strings.Join(missing, ", "))
	}
	for key, rate := range s.Rates {
		if !rate.IsPositive() {
			return fmt.Errorf("%w: %s must be positive", ErrInvalidRate, key)
		}
	}
	if s.Source != "" && !s.Source.IsValid() {
		return fmt.Errorf("%w: unknown source %q", ErrInvalidRate, s.Source)
	}
	return nil
}

// MultiCurrencyValue holds one amount expressed in every supported currency.
type MultiCurrencyValue struct {
	SGD decimal.Decimal `json:"value_sgd"`
	USD decimal.Decimal `json:"value_usd"`
	INR decimal.Decimal `json:"value_inr"`
}

// In returns the amount in currency c.
func (v MultiCurrencyValue) In(c Currency) decimal.Decimal {
	switch c {
	case CurrencySGD:
		return v.SGD
	case CurrencyUSD:
		return v.USD
	case CurrencyINR:
		return v.INR
	}
	return decimal.Zero
}

// Add sums two values currency by currency.
func (v MultiCurrencyValue) Add(o MultiCurrencyValue) MultiCurrencyValue {
	return MultiCurrencyValue{
		SGD: v.SGD.Add(o.SGD),
		USD: v.USD.Add(o.USD),
		INR: v.INR.Add(o.INR),
	}
}
