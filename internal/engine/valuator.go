package engine

import (
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
)

// HoldingValuation is one holding's contribution to a snapshot.
type HoldingValuation struct {
	HoldingID   string
	Symbol      string
	CategoryID  string
	Currency    domain.Currency
	NativeValue decimal.Decimal
	Values      domain.MultiCurrencyValue
	CostBasis   decimal.Decimal
}

// CategoryValue is the aggregate of a category in the display currency.
type CategoryValue struct {
	CategoryID    string
	Name          string
	Value         decimal.Decimal
	HoldingsCount int
}

// PortfolioSnapshot is the whole portfolio valued at one rate set.
type PortfolioSnapshot struct {
	DisplayCurrency domain.Currency
	Total           decimal.Decimal
	Totals          domain.MultiCurrencyValue
	ByCategory      []CategoryValue
	ByCurrency      map[domain.Currency]decimal.Decimal
	Holdings        []HoldingValuation
}

// NativeValue is quantity x current price when both are known, otherwise the stored value.
func NativeValue(h domain.Holding) decimal.Decimal {
	if h.TracksUnits() {
		return h.Quantity.Mul(*h.CurrentUnitPrice)
	}
	return h.Value
}

// ValueHolding expresses the holding's native value in every supported currency.
func ValueHolding(h domain.Holding, rates domain.ExchangeRateSet) (domain.MultiCurrencyValue, error) {
	values, err := ConvertToAll(NativeValue(h), h.Currency, rates)
	if err != nil {
		return domain.MultiCurrencyValue{}, fmt.Errorf("value holding %s: %w", h.ID, err)
	}
	return values, nil
}

// Revalue returns a copy of h with stored native and converted values refreshed.
func Revalue(h domain.Holding, rates domain.ExchangeRateSet) (domain.Holding, error) {
	values, err := ValueHolding(h, rates)
	if err != nil {
		return domain.Holding{}, err
	}
	out := h.Clone()
	out.Value = NativeValue(h)
	out.SetConverted(values)
	return out, nil
}

// Aggregate values every holding and sums by category and by native currency.
// Categories without holdings are reported with a zero value. Holdings whose
// category is unknown are grouped under that ID rather than dropped.
func Aggregate(
	holdings []domain.Holding,
	categories []domain.AllocationCategory,
	rates domain.ExchangeRateSet,
	display domain.Currency,
) (PortfolioSnapshot, error) {
	if !display.IsValid() {
		return PortfolioSnapshot{}, fmt.Errorf("%w: display currency %q", domain.ErrInvalidCurrency, display)
	}

	snapshot := PortfolioSnapshot{
		DisplayCurrency: display,
		Total:           decimal.Zero,
		ByCurrency:      make(map[domain.Currency]decimal.Decimal),
		Holdings:        make([]HoldingValuation, 0, len(holdings)),
	}

	index := make(map[string]int, len(categories))
	byCategory := make([]CategoryValue, 0, len(categories))
	for _, c := range categories {
		if _, dup := index[c.ID]; dup {
			continue
		}
		index[c.ID] = len(byCategory)
		byCategory = append(byCategory, CategoryValue{CategoryID: c.ID, Name: c.Name, Value: decimal.Zero})
	}
	known := len(byCategory)

	for _, h := range holdings {
		values, err := ValueHolding(h, rates)
		if err != nil {
			return PortfolioSnapshot{}, err
		}
		inDisplay := values.In(display)

		categoryID := h.CategoryID
		if categoryID == "" {
			categoryID = domain.UncategorizedID
		}
		i, ok := index[categoryID]
		if !ok {
			i = len(byCategory)
			index[categoryID] = i
			byCategory = append(byCategory, CategoryValue{CategoryID: categoryID, Name: categoryID, Value: decimal.Zero})
		}
		byCategory[i].Value = byCategory[i].Value.Add(inDisplay)
		byCategory[i].HoldingsCount++

		snapshot.ByCurrency[h.Currency] = snapshot.ByCurrency[h.Currency].Add(inDisplay)
		snapshot.Totals = snapshot.Totals.Add(values)
		snapshot.Total = snapshot.Total.Add(inDisplay)
		snapshot.Holdings = append(snapshot.Holdings, HoldingValuation{
			HoldingID:   h.ID,
			Symbol:      h.Symbol,
			CategoryID:  categoryID,
			Currency:    h.Currency,
			NativeValue: NativeValue(h),
			Values:      values,
			CostBasis:   h.CostBasis(),
		})
	}

	extra := byCategory[known:]
	sort.Slice(extra, func(i, j int) bool { return extra[i].CategoryID < extra[j].CategoryID })
	snapshot.ByCategory = byCategory

	return snapshot, nil
}

// DriftRow compares a category's current share with its target.
type DriftRow struct {
	CategoryID     string
	Name           string
	Value          decimal.Decimal
	CurrentPercent decimal.Decimal
	TargetPercent  decimal.Decimal
	DriftPercent   decimal.Decimal
	NeedsRebalance bool
}

// AllocationDrift computes each category's drift against its target.
// A zero portfolio total yields zero current percentages.
func AllocationDrift(snapshot PortfolioSnapshot, targets domain.AllocationTargets) []DriftRow {
	threshold := targets.Threshold()
	rows := make([]DriftRow, 0, len(snapshot.ByCategory))
	seen := make(map[string]bool, len(snapshot.ByCategory))

	row := func(id, name string, value decimal.Decimal) DriftRow {
		current := decimal.Zero
		if !snapshot.Total.IsZero() {
			current = value.Div(snapshot.Total).Mul(hundred)
		}
		target := targets.Targets[id]
		drift := current.Sub(target)
		return DriftRow{
			CategoryID:     id,
			Name:           name,
			Value:          value,
			CurrentPercent: current,
			TargetPercent:  target,
			DriftPercent:   drift,
			NeedsRebalance: drift.Abs().GreaterThan(threshold),
		}
	}

	for _, c := range snapshot.ByCategory {
		seen[c.CategoryID] = true
		rows = append(rows, row(c.CategoryID, c.Name, c.Value))
	}

	// Targets for categories missing from the snapshot still show up as under-allocated.
	var missing []string
	for id := range targets.Targets {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	sort.Strings(missing)
	for _, id := range missing {
		rows = append(rows, row(id, id, decimal.Zero))
	}

	return rows
}

// RebalanceAmount is the display-currency trade that restores a category to target.
// Positive means buy, negative means sell.
type RebalanceAmount struct {
	CategoryID string
	Amount     decimal.Decimal
}

// RebalancePlan returns the trade per category flagged for rebalance.
func RebalancePlan(rows []DriftRow, total decimal.Decimal) []RebalanceAmount {
	var plan []RebalanceAmount
	for _, r := range rows {
		if !r.NeedsRebalance {
			continue
		}
		targetValue := total.Mul(r.TargetPercent).Div(hundred)
		plan = append(plan, RebalanceAmount{
			CategoryID: r.CategoryID,
			Amount:     targetValue.Sub(r.Value),
		})
	}
	return plan
}
