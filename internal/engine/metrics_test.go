package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/wealthengine/internal/domain"
)

func TestSavingsRate(t *testing.T) {
	assert.True(t, SavingsRate(d("100000"), d("25000")).Equal(d("25")))
	assert.True(t, SavingsRate(d("0"), d("25000")).IsZero(), "no income means zero rate")
	assert.True(t, SavingsRate(d("-5"), d("1")).IsZero())
	assert.True(t, SavingsRate(d("1000"), d("-200")).Equal(d("-20")))
}

func TestDeriveYear_FirstRecord(t *testing.T) {
	records := []domain.YearlyRecord{
		{Year: 2020, Income: d("0"), NetWorth: d("100000"), Savings: d("20000")},
	}

	m := DeriveYear(0, records)
	assert.True(t, m.MarketGains.Equal(d("80000")))
	assert.True(t, m.ReturnPercent.Equal(d("400")))
	assert.True(t, m.SavingsRate.IsZero())
}

func TestDeriveYear_FirstRecordWithoutSavings(t *testing.T) {
	records := []domain.YearlyRecord{{Year: 2020, NetWorth: d("5000")}}

	m := DeriveYear(0, records)
	assert.True(t, m.MarketGains.Equal(d("5000")))
	assert.True(t, m.ReturnPercent.IsZero())
}

func TestDeriveYear_SubsequentRecord(t *testing.T) {
	records := []domain.YearlyRecord{
		{Year: 2020, NetWorth: d("100000")},
		{Year: 2021, Income: d("80000"), NetWorth: d("150000"), Savings: d("20000")},
	}

	m := DeriveYear(1, records)
	assert.True(t, m.MarketGains.Equal(d("30000")))
	assert.True(t, m.ReturnPercent.Equal(d("30")))
	assert.True(t, m.SavingsRate.Equal(d("25")))
}

func TestDeriveYear_LossYearAndZeroPrevious(t *testing.T) {
	records := []domain.YearlyRecord{
		{Year: 2020, NetWorth: d("0")},
		{Year: 2021, NetWorth: d("10000"), Savings: d("12000")},
		{Year: 2022, NetWorth: d("9000"), Savings: d("1000")},
	}

	m := DeriveYear(1, records)
	assert.True(t, m.MarketGains.Equal(d("-2000")))
	assert.True(t, m.ReturnPercent.IsZero(), "zero previous net worth yields zero return")

	m = DeriveYear(2, records)
	assert.True(t, m.MarketGains.Equal(d("-2000")))
	assert.True(t, m.ReturnPercent.Equal(d("-20")))
}

func TestDerive_SortsAndDoesNotMutate(t *testing.T) {
	input := []domain.YearlyRecord{
		{Year: 2022, Income: d("100"), NetWorth: d("150000"), Savings: d("20000"), Notes: "second"},
		{Year: 2021, Income: d("100"), NetWorth: d("100000"), Savings: d("20000"), Notes: "first"},
	}

	out := Derive(input)
	require.Len(t, out, 2)

	assert.Equal(t, 2021, out[0].Year)
	assert.Equal(t, "first", out[0].Notes)
	assert.True(t, out[0].MarketGains.Equal(d("80000")))
	assert.True(t, out[1].MarketGains.Equal(d("30000")))
	assert.True(t, out[1].ReturnPercent.Equal(d("30")))

	assert.Equal(t, 2022, input[0].Year, "caller slice reordered")
	assert.True(t, input[0].MarketGains.IsZero(), "caller record annotated")
}

func TestDerive_IsStableOnRawInputs(t *testing.T) {
	input := []domain.YearlyRecord{
		{Year: 2021, NetWorth: d("100000"), Savings: d("20000")},
		{Year: 2022, NetWorth: d("150000"), Savings: d("20000")},
	}

	once := Derive(input)
	twice := Derive(once)
	for i := range once {
		assert.True(t, once[i].MarketGains.Equal(twice[i].MarketGains))
		assert.True(t, once[i].ReturnPercent.Equal(twice[i].ReturnPercent))
	}
}

func TestDerive_Empty(t *testing.T) {
	out := Derive(nil)
	assert.NotNil(t, out)
	assert.Empty(t, out)
}

func TestSummarize(t *testing.T) {
	derived := Derive([]domain.YearlyRecord{
		{Year: 2020, Income: d("50000"), NetWorth: d("100000"), Savings: d("20000")},
		{Year: 2021, Income: d("50000"), NetWorth: d("150000"), Savings: d("20000")},
		{Year: 2022, Income: d("100000"), NetWorth: d("140000"), Savings: d("10000")},
	})

	s := Summarize(derived)
	assert.Equal(t, 3, s.Years)
	assert.Equal(t, 2020, s.FirstYear)
	assert.Equal(t, 2022, s.LastYear)
	assert.True(t, s.TotalSavings.Equal(d("50000")))
	assert.True(t, s.TotalMarketGains.Equal(d("90000")))
	assert.True(t, s.AverageSavingsRate.Equal(d("25")))
	assert.Equal(t, 2020, s.BestYear)
	assert.Equal(t, 2022, s.WorstYear)
	assert.True(t, s.LatestNetWorth.Equal(d("140000")))

	assert.Equal(t, PerformanceSummary{}, Summarize(nil))
}
