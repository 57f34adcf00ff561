package engine

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
)

// AggregateOptions tune the monthly rollup.
type AggregateOptions struct {
	// ClampLosses floors market gains at zero, so a declining year reads as flat.
	ClampLosses bool
}

// DefaultAggregateOptions keep the historical clamp.
var DefaultAggregateOptions = AggregateOptions{ClampLosses: true}

// AggregateMonthly rolls monthly snapshots up into one record per year, ascending.
// Year-end net worth is the last month's balance, never a sum. When a month
// appears more than once the later snapshot in the input replaces the earlier.
func AggregateMonthly(snapshots []domain.MonthlySnapshot, opts AggregateOptions) []domain.YearlyRecord {
	if len(snapshots) == 0 {
		return []domain.YearlyRecord{}
	}

	byYear := make(map[int]map[int]domain.MonthlySnapshot)
	for _, s := range snapshots {
		if byYear[s.Year] == nil {
			byYear[s.Year] = make(map[int]domain.MonthlySnapshot, 12)
		}
		byYear[s.Year][s.Month] = s
	}

	years := make([]int, 0, len(byYear))
	for y := range byYear {
		years = append(years, y)
	}
	sort.Ints(years)

	out := make([]domain.YearlyRecord, 0, len(years))
	var prevYearEnd decimal.Decimal

	for i, year := range years {
		months := make([]domain.MonthlySnapshot, 0, len(byYear[year]))
		for _, m := range byYear[year] {
			months = append(months, m)
		}
		sort.Slice(months, func(a, b int) bool { return months[a].Month < months[b].Month })

		income, expenses, savings := decimal.Zero, decimal.Zero, decimal.Zero
		for _, m := range months {
			income = income.Add(m.Income)
			expenses = expenses.Add(m.Expenses)
			savings = savings.Add(m.Savings())
		}
		yearEnd := months[len(months)-1].NetWorth

		prev := decimal.Zero
		if i > 0 {
			prev = prevYearEnd
		}
		gains := yearEnd.Sub(prev)
		if opts.ClampLosses && gains.IsNegative() {
			gains = decimal.Zero
		}
		returnPct := decimal.Zero
		if prev.IsPositive() {
			returnPct = gains.Div(prev).Mul(hundred)
		}

		userID := months[0].UserID
		out = append(out, domain.YearlyRecord{
			UserID:        userID,
			Year:          year,
			Income:        income,
			Expenses:      expenses,
			Savings:       savings,
			NetWorth:      yearEnd,
			MarketGains:   gains,
			ReturnPercent: returnPct,
			SavingsRate:   SavingsRate(income, savings),
			Provenance:    domain.ProvenanceMonthly,
			Confidence:    confidenceFor(len(months)),
			MonthsCovered: len(months),
		})
		prevYearEnd = yearEnd
	}

	return out
}

func confidenceFor(months int) domain.Confidence {
	switch {
	case months >= 12:
		return domain.ConfidenceHigh
	case months >= 6:
		return domain.ConfidenceMedium
	default:
		return domain.ConfidenceLow
	}
}

// Merge unions monthly-derived and standalone yearly records by year.
// Monthly data wins where both exist; output is ascending with each year once.
func Merge(monthly, yearly []domain.YearlyRecord) []domain.YearlyRecord {
	byYear := make(map[int]domain.YearlyRecord, len(monthly)+len(yearly))

	for _, r := range yearly {
		if _, dup := byYear[r.Year]; !dup {
			byYear[r.Year] = r
		}
	}
	fromMonthly := make(map[int]bool, len(monthly))
	for _, r := range monthly {
		if fromMonthly[r.Year] {
			continue
		}
		if existing, ok := byYear[r.Year]; ok {
			// keep identity and user-only fields of the standalone row
			r.ID = existing.ID
			if r.SRSContribution.IsZero() {
				r.SRSContribution = existing.SRSContribution
			}
			if r.Notes == "" {
				r.Notes = existing.Notes
			}
		}
		byYear[r.Year] = r
		fromMonthly[r.Year] = true
	}

	out := make([]domain.YearlyRecord, 0, len(byYear))
	for _, r := range byYear {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
