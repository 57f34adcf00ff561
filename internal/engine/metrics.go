package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
)

// SavingsRate is savings as a percentage of income, zero without income.
func SavingsRate(income, savings decimal.Decimal) decimal.Decimal {
	if !income.IsPositive() {
		return decimal.Zero
	}
	return savings.Div(income).Mul(hundred)
}

// YearMetrics are the derived fields of one yearly record.
type YearMetrics struct {
	SavingsRate   decimal.Decimal
	MarketGains   decimal.Decimal
	ReturnPercent decimal.Decimal
}

// DeriveYear computes metrics for sorted[index]. sorted must be ascending by year
// and carry raw net worth values. Market gains are the net worth change not
// explained by fresh savings.
func DeriveYear(index int, sorted []domain.YearlyRecord) YearMetrics {
	r := sorted[index]
	m := YearMetrics{SavingsRate: SavingsRate(r.Income, r.Savings)}

	if index == 0 {
		m.MarketGains = r.NetWorth.Sub(r.Savings)
		if r.Savings.IsPositive() {
			m.ReturnPercent = m.MarketGains.Div(r.Savings).Mul(hundred)
		} else {
			m.ReturnPercent = decimal.Zero
		}
		return m
	}

	prev := sorted[index-1].NetWorth
	m.MarketGains = r.NetWorth.Sub(prev).Sub(r.Savings)
	if prev.IsPositive() {
		m.ReturnPercent = m.MarketGains.Div(prev).Mul(hundred)
	} else {
		m.ReturnPercent = decimal.Zero
	}
	return m
}

// SortByYear returns a copy of records ordered by year ascending.
func SortByYear(records []domain.YearlyRecord) []domain.YearlyRecord {
	sorted := make([]domain.YearlyRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Year < sorted[j].Year })
	return sorted
}

// Derive sorts a copy of records by year and annotates every record with
// savings rate, market gains and return percent. The input is not mutated.
func Derive(records []domain.YearlyRecord) []domain.YearlyRecord {
	sorted := SortByYear(records)
	for i := range sorted {
		m := DeriveYear(i, sorted)
		sorted[i].SavingsRate = m.SavingsRate
		sorted[i].MarketGains = m.MarketGains
		sorted[i].ReturnPercent = m.ReturnPercent
	}
	return sorted
}

// PerformanceSummary condenses a derived series for reporting.
type PerformanceSummary struct {
	Years              int
	FirstYear          int
	LastYear           int
	TotalIncome        decimal.Decimal
	TotalSavings       decimal.Decimal
	TotalMarketGains   decimal.Decimal
	AverageSavingsRate decimal.Decimal
	BestYear           int
	WorstYear          int
	LatestNetWorth     decimal.Decimal
}

// Summarize totals a derived series. Records must already be derived.
func Summarize(derived []domain.YearlyRecord) PerformanceSummary {
	var s PerformanceSummary
	if len(derived) == 0 {
		return s
	}

	sorted := SortByYear(derived)
	s.Years = len(sorted)
	s.FirstYear = sorted[0].Year
	s.LastYear = sorted[len(sorted)-1].Year
	s.LatestNetWorth = sorted[len(sorted)-1].NetWorth

	best, worst := sorted[0], sorted[0]
	for _, r := range sorted {
		s.TotalIncome = s.TotalIncome.Add(r.Income)
		s.TotalSavings = s.TotalSavings.Add(r.Savings)
		s.TotalMarketGains = s.TotalMarketGains.Add(r.MarketGains)
		if r.ReturnPercent.GreaterThan(best.ReturnPercent) {
			best = r
		}
		if r.ReturnPercent.LessThan(worst.ReturnPercent) {
			worst = r
		}
	}
	s.BestYear = best.Year
	s.WorstYear = worst.Year
	s.AverageSavingsRate = SavingsRate(s.TotalIncome, s.TotalSavings)

	return s
}
