package domain

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
)

func TestAllocationTargets_Validate(t *testing.T) {
	tests := []struct {
		name        string
		targets     map[string]decimal.Decimal
		expectError bool
	}{
		{
			name: "sums to 100",
			targets: map[string]decimal.Decimal{
				"equities": decimal.NewFromInt(60),
				"bonds":    decimal.NewFromInt(20),
				"cash":     decimal.NewFromInt(10),
				"crypto":   decimal.NewFromInt(10),
			},
		},
		{
			name: "sums to 90",
			targets: map[string]decimal.Decimal{
				"equities": decimal.NewFromInt(60),
				"bonds":    decimal.NewFromInt(30),
			},
			expectError: true,
		},
		{
			name: "negative target",
			targets: map[string]decimal.Decimal{
				"equities": decimal.NewFromInt(110),
				"bonds":    decimal.NewFromInt(-10),
			},
			expectError: true,
		},
		{
			name:    "no targets",
			targets: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AllocationTargets{Targets: tt.targets}.Validate()

			if tt.expectError && !errors.Is(err, ErrInvalidTargets) {
				t.Errorf("expected ErrInvalidTargets, got %v", err)
			}

			if !tt.expectError && err != nil {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestAllocationTargets_Threshold(t *testing.T) {
	if !(AllocationTargets{}).Threshold().Equal(decimal.NewFromInt(5)) {
		t.Fatal("expected default threshold of 5")
	}

	custom := AllocationTargets{RebalanceThreshold: decimal.NewFromInt(3)}
	if !custom.Threshold().Equal(decimal.NewFromInt(3)) {
		t.Fatalf("expected threshold 3, got %s", custom.Threshold())
	}
}

func TestTargetsFromCategories(t *testing.T) {
	cats := []AllocationCategory{
		{ID: "eq", TargetPercent: decimal.NewFromInt(70)},
		{ID: "cash", TargetPercent: decimal.NewFromInt(30)},
	}

	targets := TargetsFromCategories(cats, decimal.NewFromInt(4))
	if len(targets.Targets) != 2 || !targets.Targets["eq"].Equal(decimal.NewFromInt(70)) {
		t.Fatalf("unexpected targets %+v", targets.Targets)
	}
	if err := targets.Validate(); err != nil {
		t.Fatalf("expected valid targets, got %v", err)
	}
}
