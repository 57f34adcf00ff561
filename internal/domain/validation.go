package domain

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrInvalidSymbol  = errors.New("invalid holding symbol")
	ErrAmountTooLarge = errors.New("amount exceeds maximum allowed")
	ErrNegativeAmount = errors.New("amount must not be negative")
	ErrNotesTooLong   = errors.New("notes exceed maximum length")
)

// Validation constants
const (
	MaxSymbolLength = 32
	MaxNotesLength  = 2000
	MaxAmount       = "1000000000000000" // 1 quadrillion, covers INR net worth
	MinRecordYear   = 1900
	MaxRecordYear   = 2200
)

var symbolRegex = regexp.MustCompile(`^[A-Za-z0-9._:\-]+$`)

// ValidateSymbol validates a ticker-like symbol.
func ValidateSymbol(symbol string) error {
	symbol = strings.TrimSpace(symbol)

	if symbol == "" {
		return fmt.Errorf("%w: symbol cannot be empty", ErrInvalidSymbol)
	}

	if len(symbol) > MaxSymbolLength {
		return fmt.Errorf("%w: symbol exceeds %d characters", ErrInvalidSymbol, MaxSymbolLength)
	}

	if !symbolRegex.MatchString(symbol) {
		return fmt.Errorf("%w: contains forbidden characters", ErrInvalidSymbol)
	}

	return nil
}

// ValidateCurrency validates a currency code against the supported set.
func ValidateCurrency(currency string) error {
	_, err := ParseCurrency(currency)
	return err
}

// ValidateAmount validates a non-negative monetary amount.
func ValidateAmount(amount decimal.Decimal) error {
	if amount.IsNegative() {
		return ErrNegativeAmount
	}

	maxAmount := decimal.RequireFromString(MaxAmount)
	if amount.GreaterThan(maxAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxAmount)
	}

	return nil
}

// ValidateNotes validates free-text notes.
func ValidateNotes(notes string) error {
	if len(notes) > MaxNotesLength {
		return fmt.Errorf("%w: %d characters, limit %d", ErrNotesTooLong, len(notes), MaxNotesLength)
	}
	return nil
}
