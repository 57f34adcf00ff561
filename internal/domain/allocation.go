package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// UncategorizedID groups holdings without a category.
const UncategorizedID = "uncategorized"

// DefaultRebalanceThreshold is the drift, in percentage points, that triggers a rebalance.
var DefaultRebalanceThreshold = decimal.NewFromInt(5)

// AllocationCategory is a bucket of holdings with a target share.
type AllocationCategory struct {
	ID            string
	UserID        string
	Name          string
	TargetPercent decimal.Decimal
}

// AllocationTargets are per-category target percentages and the rebalance threshold.
type AllocationTargets struct {
	Targets            map[string]decimal.Decimal
	RebalanceThreshold decimal.Decimal
}

// TargetsFromCategories builds targets from the categories' target percentages.
func TargetsFromCategories(categories []AllocationCategory, threshold decimal.Decimal) AllocationTargets {
	targets := make(map[string]decimal.Decimal, len(categories))
	for _, c := range categories {
		targets[c.ID] = c.TargetPercent
	}
	return AllocationTargets{Targets: targets, RebalanceThreshold: threshold}
}

// Threshold returns the configured threshold or the default.
func (t AllocationTargets) Threshold() decimal.Decimal {
	if t.RebalanceThreshold.IsPositive() {
		return t.RebalanceThreshold
	}
	return DefaultRebalanceThreshold
}

// Validate checks targets are non-negative and sum to 100.
func (t AllocationTargets) Validate() error {
	sum := decimal.Zero
	for id, pct := range t.Targets {
		if pct.IsNegative() {
			return fmt.Errorf("%w: %s target is negative", ErrInvalidTargets, id)
		}
		sum = sum.Add(pct)
	}
	if len(t.Targets) > 0 && !sum.Equal(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: targets sum to %s, expected 100", ErrInvalidTargets, sum)
	}
	if t.RebalanceThreshold.IsNegative() {
		return fmt.Errorf("%w: rebalance threshold is negative", ErrInvalidTargets)
	}
	return nil
}
