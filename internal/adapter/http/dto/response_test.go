package dto

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/engine"
	"github.com/iho/wealthengine/internal/usecase"
)

func TestHoldingFromDomainOmitsUnitsForValueOnly(t *testing.T) {
	h := &domain.Holding{
		ID:       "cpf",
		Symbol:   "CPF-OA",
		Currency: domain.CurrencySGD,
		Value:    decimal.NewFromInt(50000),
		ValueSGD: decimal.NewFromInt(50000),
	}

	data, err := json.Marshal(HoldingFromDomain(h))
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if _, ok := raw["quantity"]; ok {
		t.Fatalf("value-only holding must not expose quantity: %s", data)
	}
	if raw["value_sgd"] != "50000" {
		t.Fatalf("expected value_sgd 50000 as string, got %v", raw["value_sgd"])
	}
}

func TestSnapshotFromEngine(t *testing.T) {
	snap := &engine.PortfolioSnapshot{
		DisplayCurrency: domain.CurrencySGD,
		Total:           decimal.NewFromInt(1500),
		Totals: domain.MultiCurrencyValue{
			SGD: decimal.NewFromInt(1500),
			USD: decimal.NewFromInt(1125),
			INR: decimal.NewFromInt(93375),
		},
		ByCategory: []engine.CategoryValue{{CategoryID: "equities", Name: "Equities", Value: decimal.NewFromInt(1500), HoldingsCount: 1}},
		ByCurrency: map[domain.Currency]decimal.Decimal{domain.CurrencyUSD: decimal.NewFromInt(1500)},
		Holdings: []engine.HoldingValuation{{
			HoldingID: "h1",
			Symbol:    "VWRA",
			Currency:  domain.CurrencyUSD,
			Values:    domain.MultiCurrencyValue{SGD: decimal.NewFromInt(1500)},
		}},
	}

	resp := SnapshotFromEngine(snap)
	if resp.DisplayCurrency != "SGD" || !resp.TotalUSD.Equal(decimal.NewFromInt(1125)) {
		t.Fatalf("unexpected totals: %+v", resp)
	}
	if len(resp.ByCategory) != 1 || resp.ByCategory[0].HoldingsCount != 1 {
		t.Fatalf("unexpected categories: %+v", resp.ByCategory)
	}
	if !resp.ByCurrency["USD"].Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("unexpected currency breakdown: %v", resp.ByCurrency)
	}
	if len(resp.Holdings) != 1 || !resp.Holdings[0].ValueSGD.Equal(decimal.NewFromInt(1500)) {
		t.Fatalf("unexpected holdings: %+v", resp.Holdings)
	}
}

func TestDriftFromUseCase(t *testing.T) {
	report := &usecase.DriftReport{
		Snapshot:  engine.PortfolioSnapshot{DisplayCurrency: domain.CurrencyUSD, Total: decimal.NewFromInt(1000)},
		Threshold: decimal.NewFromInt(5),
		Rows: []engine.DriftRow{
			{CategoryID: "equities", DriftPercent: decimal.NewFromInt(20), NeedsRebalance: true},
		},
		Plan: []engine.RebalanceAmount{{CategoryID: "equities", Amount: decimal.NewFromInt(-200)}},
	}

	resp := DriftFromUseCase(report)
	if resp.DisplayCurrency != "USD" || len(resp.Rows) != 1 || !resp.Rows[0].NeedsRebalance {
		t.Fatalf("unexpected drift response: %+v", resp)
	}
	if len(resp.Plan) != 1 || !resp.Plan[0].Amount.Equal(decimal.NewFromInt(-200)) {
		t.Fatalf("unexpected plan: %+v", resp.Plan)
	}
}

func TestSeriesFromUseCase(t *testing.T) {
	series := &usecase.PerformanceSeries{
		Records: []domain.YearlyRecord{{Year: 2022, Provenance: domain.ProvenanceMonthly, MonthsCovered: 12}},
		Summary: engine.PerformanceSummary{Years: 1, FirstYear: 2022, LastYear: 2022, BestYear: 2022, WorstYear: 2022},
	}

	resp := SeriesFromUseCase(series)
	if len(resp.Records) != 1 || resp.Records[0].Provenance != "monthly" || resp.Records[0].MonthsCovered != 12 {
		t.Fatalf("unexpected records: %+v", resp.Records)
	}
	if resp.Summary.Years != 1 || resp.Summary.BestYear != 2022 {
		t.Fatalf("unexpected summary: %+v", resp.Summary)
	}
}

func TestReconciliationsFromEngine(t *testing.T) {
	reports := []engine.ReconciliationReport{
		{HoldingID: "h1", Checkable: true, Consistent: false, Delta: decimal.NewFromInt(100), Reason: "stored value differs"},
		{HoldingID: "cpf", Checkable: false, Consistent: true},
	}

	resp := ReconciliationsFromEngine(reports)
	if len(resp) != 2 || resp[0].Consistent || !resp[1].Consistent {
		t.Fatalf("unexpected reconciliation responses: %+v", resp)
	}
	if !resp[0].Delta.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected delta 100, got %s", resp[0].Delta)
	}
}
