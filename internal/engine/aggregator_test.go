package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/wealthengine/internal/domain"
)

func monthSnap(year, month int, income, expenses, netWorth string) domain.MonthlySnapshot {
	return domain.MonthlySnapshot{
		UserID:   "u-1",
		Year:     year,
		Month:    month,
		Income:   d(income),
		Expenses: d(expenses),
		NetWorth: d(netWorth),
	}
}

func TestAggregateMonthly_SumsFlowsAndTakesLastNetWorth(t *testing.T) {
	// deliberately out of order: the last month by number wins, not by position
	snaps := []domain.MonthlySnapshot{
		monthSnap(2024, 3, "1000", "500", "11000"),
		monthSnap(2024, 1, "1000", "500", "10000"),
		monthSnap(2024, 2, "1000", "500", "10500"),
	}

	out := AggregateMonthly(snaps, DefaultAggregateOptions)
	require.Len(t, out, 1)

	r := out[0]
	assert.Equal(t, 2024, r.Year)
	assert.Equal(t, "u-1", r.UserID)
	assert.True(t, r.Income.Equal(d("3000")))
	assert.True(t, r.Expenses.Equal(d("1500")))
	assert.True(t, r.Savings.Equal(d("1500")))
	assert.True(t, r.NetWorth.Equal(d("11000")), "net worth is the last month's balance")
	assert.True(t, r.SavingsRate.Equal(d("50")))
	assert.Equal(t, domain.ProvenanceMonthly, r.Provenance)
	assert.Equal(t, 3, r.MonthsCovered)
	assert.Equal(t, domain.ConfidenceLow, r.Confidence)

	assert.Equal(t, 3, snaps[0].Month, "caller snapshots reordered")
}

func TestAggregateMonthly_LaterSnapshotReplacesSameMonth(t *testing.T) {
	snaps := []domain.MonthlySnapshot{
		monthSnap(2024, 1, "1000", "500", "10000"),
		monthSnap(2024, 2, "1000", "500", "10500"),
		monthSnap(2024, 2, "1200", "400", "10800"),
	}

	out := AggregateMonthly(snaps, DefaultAggregateOptions)
	require.Len(t, out, 1)

	r := out[0]
	assert.Equal(t, 2, r.MonthsCovered)
	assert.True(t, r.Income.Equal(d("2200")), "income %s", r.Income)
	assert.True(t, r.Expenses.Equal(d("900")), "expenses %s", r.Expenses)
	assert.True(t, r.NetWorth.Equal(d("10800")))
}

func TestAggregateMonthly_GainsAgainstPreviousYearEnd(t *testing.T) {
	var snaps []domain.MonthlySnapshot
	for m := 1; m <= 12; m++ {
		snaps = append(snaps, monthSnap(2023, m, "100", "50", "100000"))
	}
	snaps = append(snaps,
		monthSnap(2024, 1, "100", "50", "105000"),
		monthSnap(2024, 6, "100", "50", "120000"),
	)

	out := AggregateMonthly(snaps, DefaultAggregateOptions)
	require.Len(t, out, 2)

	first := out[0]
	assert.True(t, first.MarketGains.Equal(d("100000")), "first year gains measured from zero")
	assert.True(t, first.ReturnPercent.IsZero())
	assert.Equal(t, domain.ConfidenceHigh, first.Confidence)

	second := out[1]
	assert.True(t, second.MarketGains.Equal(d("20000")))
	assert.True(t, second.ReturnPercent.Equal(d("20")))
	assert.Equal(t, domain.ConfidenceLow, second.Confidence)
}

func TestAggregateMonthly_LossYear(t *testing.T) {
	snaps := []domain.MonthlySnapshot{
		monthSnap(2022, 12, "0", "0", "100000"),
		monthSnap(2023, 12, "0", "0", "90000"),
	}

	clamped := AggregateMonthly(snaps, DefaultAggregateOptions)
	assert.True(t, clamped[1].MarketGains.IsZero(), "clamp reads a loss year as flat")
	assert.True(t, clamped[1].ReturnPercent.IsZero())

	signed := AggregateMonthly(snaps, AggregateOptions{ClampLosses: false})
	assert.True(t, signed[1].MarketGains.Equal(d("-10000")))
	assert.True(t, signed[1].ReturnPercent.Equal(d("-10")))
}

func TestAggregateMonthly_Empty(t *testing.T) {
	out := AggregateMonthly(nil, DefaultAggregateOptions)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestMerge_UnionWithMonthlyPrecedence(t *testing.T) {
	monthly := []domain.YearlyRecord{
		{Year: 2024, NetWorth: d("200"), Provenance: domain.ProvenanceMonthly},
		{Year: 2022, NetWorth: d("120"), Provenance: domain.ProvenanceMonthly},
	}
	yearly := []domain.YearlyRecord{
		{ID: "y-2021", Year: 2021, NetWorth: d("100"), Provenance: domain.ProvenanceUser},
		{ID: "y-2022", Year: 2022, NetWorth: d("999"), Provenance: domain.ProvenanceUser, SRSContribution: d("15300"), Notes: "bonus"},
	}

	out := Merge(monthly, yearly)
	require.Len(t, out, 3)

	assert.Equal(t, []int{2021, 2022, 2024}, []int{out[0].Year, out[1].Year, out[2].Year})

	assert.Equal(t, domain.ProvenanceUser, out[0].Provenance, "yearly-only year kept")
	assert.Equal(t, domain.ProvenanceMonthly, out[2].Provenance, "monthly-only year kept")

	both := out[1]
	assert.Equal(t, domain.ProvenanceMonthly, both.Provenance)
	assert.True(t, both.NetWorth.Equal(d("120")), "monthly values win")
	assert.Equal(t, "y-2022", both.ID)
	assert.True(t, both.SRSContribution.Equal(d("15300")))
	assert.Equal(t, "bonus", both.Notes)
}

func TestMerge_EachYearOnce(t *testing.T) {
	yearly := []domain.YearlyRecord{{Year: 2020}, {Year: 2020}, {Year: 2019}}
	monthly := []domain.YearlyRecord{{Year: 2020}, {Year: 2020}}

	out := Merge(monthly, yearly)
	require.Len(t, out, 2)
	assert.Equal(t, 2019, out[0].Year)
	assert.Equal(t, 2020, out[1].Year)
}

func TestMerge_Empty(t *testing.T) {
	assert.Empty(t, Merge(nil, nil))
}
