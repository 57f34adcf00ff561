package domain

import (
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
)

func TestValidateSymbol(t *testing.T) {
	t.Parallel()

	t.Run("valid symbol", func(t *testing.T) {
		for _, s := range []string{"D05.SI", "VWRA", "NSE:INFY", "BRK-B"} {
			if err := ValidateSymbol(s); err != nil {
				t.Fatalf("expected %q to be valid, got %v", s, err)
			}
		}
	})

	t.Run("empty symbol rejected", func(t *testing.T) {
		if err := ValidateSymbol("  "); !errors.Is(err, ErrInvalidSymbol) {
			t.Fatalf("expected ErrInvalidSymbol, got %v", err)
		}
	})

	t.Run("symbol too long", func(t *testing.T) {
		if err := ValidateSymbol(strings.Repeat("A", MaxSymbolLength+1)); !errors.Is(err, ErrInvalidSymbol) {
			t.Fatalf("expected ErrInvalidSymbol, got %v", err)
		}
	})

	t.Run("symbol with spaces", func(t *testing.T) {
		if err := ValidateSymbol("ABC DEF"); !errors.Is(err, ErrInvalidSymbol) {
			t.Fatalf("expected ErrInvalidSymbol, got %v", err)
		}
	})
}

func TestValidateCurrency(t *testing.T) {
	t.Parallel()

	if err := ValidateCurrency("sgd"); err != nil {
		t.Fatalf("expected uppercase conversion to succeed, got %v", err)
	}

	if err := ValidateCurrency("EUR"); !errors.Is(err, ErrInvalidCurrency) {
		t.Fatalf("expected ErrInvalidCurrency, got %v", err)
	}
}

func TestValidateAmount(t *testing.T) {
	t.Parallel()

	if err := ValidateAmount(decimal.Zero); err != nil {
		t.Fatalf("expected zero to be valid, got %v", err)
	}

	if err := ValidateAmount(decimal.NewFromInt(-1)); !errors.Is(err, ErrNegativeAmount) {
		t.Fatalf("expected ErrNegativeAmount, got %v", err)
	}

	huge := decimal.RequireFromString(MaxAmount).Add(decimal.NewFromInt(1))
	if err := ValidateAmount(huge); !errors.Is(err, ErrAmountTooLarge) {
		t.Fatalf("expected ErrAmountTooLarge, got %v", err)
	}
}

func TestValidateNotes(t *testing.T) {
	if err := ValidateNotes("bonus year"); err != nil {
		t.Fatalf("expected valid notes, got %v", err)
	}
	if err := ValidateNotes(strings.Repeat("x", MaxNotesLength+1)); !errors.Is(err, ErrNotesTooLong) {
		t.Fatalf("expected ErrNotesTooLong, got %v", err)
	}
}
