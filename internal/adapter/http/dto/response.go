package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/iho/wealthengine/internal/domain"
	"github.com/iho/wealthengine/internal/engine"
	"github.com/iho/wealthengine/internal/usecase"
)

// HoldingResponse represents a holding in API responses.
type HoldingResponse struct {
	ID               string           `json:"id"`
	Symbol           string           `json:"symbol"`
	Name             string           `json:"name"`
	Currency         string           `json:"currency"`
	Quantity         *decimal.Decimal `json:"quantity,omitempty"`
	UnitCost         decimal.Decimal  `json:"unit_cost"`
	CurrentUnitPrice *decimal.Decimal `json:"current_unit_price,omitempty"`
	Value            decimal.Decimal  `json:"value"`
	ValueSGD         decimal.Decimal  `json:"value_sgd"`
	ValueUSD         decimal.Decimal  `json:"value_usd"`
	ValueINR         decimal.Decimal  `json:"value_inr"`
	CategoryID       string           `json:"category_id"`
	PriceSource      string           `json:"price_source,omitempty"`
	PriceUpdatedAt   *time.Time       `json:"price_updated_at,omitempty"`
	UpdatedAt        time.Time        `json:"updated_at"`
}

// HoldingFromDomain converts a domain holding to response.
func HoldingFromDomain(h *domain.Holding) *HoldingResponse {
	return &HoldingResponse{
		ID:               h.ID,
		Symbol:           h.Symbol,
		Name:             h.Name,
		Currency:         string(h.Currency),
		Quantity:         h.Quantity,
		UnitCost:         h.UnitCost,
		CurrentUnitPrice: h.CurrentUnitPrice,
		Value:            h.Value,
		ValueSGD:         h.ValueSGD,
		ValueUSD:         h.ValueUSD,
		ValueINR:         h.ValueINR,
		CategoryID:       h.CategoryID,
		PriceSource:      string(h.PriceSource),
		PriceUpdatedAt:   h.PriceUpdatedAt,
		UpdatedAt:        h.UpdatedAt,
	}
}

// RatesResponse represents a rate snapshot in API responses.
type RatesResponse struct {
	Rates     map[string]decimal.Decimal `json:"rates"`
	Source    string                     `json:"source"`
	UpdatedAt time.Time                  `json:"updated_at"`
}

// RatesFromDomain converts a domain rate set to response.
func RatesFromDomain(set *domain.ExchangeRateSet) *RatesResponse {
	return &RatesResponse{
		Rates:     set.Rates,
		Source:    string(set.Source),
		UpdatedAt: set.UpdatedAt,
	}
}

// HoldingValuationResponse is one holding's line in a snapshot.
type HoldingValuationResponse struct {
	HoldingID   string          `json:"holding_id"`
	Symbol      string          `json:"symbol"`
	CategoryID  string          `json:"category_id"`
	Currency    string          `json:"currency"`
	NativeValue decimal.Decimal `json:"native_value"`
	ValueSGD    decimal.Decimal `json:"value_sgd"`
	ValueUSD    decimal.Decimal `json:"value_usd"`
	ValueINR    decimal.Decimal `json:"value_inr"`
	CostBasis   decimal.Decimal `json:"cost_basis"`
}

// CategoryValueResponse is a category subtotal in the display currency.
type CategoryValueResponse struct {
	CategoryID    string          `json:"category_id"`
	Name          string          `json:"name"`
	Value         decimal.Decimal `json:"value"`
	HoldingsCount int             `json:"holdings_count"`
}

// SnapshotResponse represents a portfolio valuation.
type SnapshotResponse struct {
	DisplayCurrency string                     `json:"display_currency"`
	Total           decimal.Decimal            `json:"total"`
	TotalSGD        decimal.Decimal            `json:"total_sgd"`
	TotalUSD        decimal.Decimal            `json:"total_usd"`
	TotalINR        decimal.Decimal            `json:"total_inr"`
	ByCategory      []CategoryValueResponse    `json:"by_category"`
	ByCurrency      map[string]decimal.Decimal `json:"by_currency"`
	Holdings        []HoldingValuationResponse `json:"holdings"`
}

// SnapshotFromEngine converts a portfolio snapshot to response.
func SnapshotFromEngine(s *engine.PortfolioSnapshot) *SnapshotResponse {
	resp := &SnapshotResponse{
		DisplayCurrency: string(s.DisplayCurrency),
		Total:           s.Total,
		TotalSGD:        s.Totals.SGD,
		TotalUSD:        s.Totals.USD,
		TotalINR:        s.Totals.INR,
		ByCategory:      make([]CategoryValueResponse, len(s.ByCategory)),
		ByCurrency:      make(map[string]decimal.Decimal, len(s.ByCurrency)),
		Holdings:        make([]HoldingValuationResponse, len(s.Holdings)),
	}

	for i, c := range s.ByCategory {
		resp.ByCategory[i] = CategoryValueResponse{
			CategoryID:    c.CategoryID,
			Name:          c.Name,
			Value:         c.Value,
			HoldingsCount: c.HoldingsCount,
		}
	}
	for c, v := range s.ByCurrency {
		resp.ByCurrency[string(c)] = v
	}
	for i, h := range s.Holdings {
		resp.Holdings[i] = HoldingValuationResponse{
			HoldingID:   h.HoldingID,
			Symbol:      h.Symbol,
			CategoryID:  h.CategoryID,
			Currency:    string(h.Currency),
			NativeValue: h.NativeValue,
			ValueSGD:    h.Values.SGD,
			ValueUSD:    h.Values.USD,
			ValueINR:    h.Values.INR,
			CostBasis:   h.CostBasis,
		}
	}

	return resp
}

// DriftRowResponse is one category's allocation drift.
type DriftRowResponse struct {
	CategoryID     string          `json:"category_id"`
	Name           string          `json:"name"`
	Value          decimal.Decimal `json:"value"`
	CurrentPercent decimal.Decimal `json:"current_percent"`
	TargetPercent  decimal.Decimal `json:"target_percent"`
	DriftPercent   decimal.Decimal `json:"drift_percent"`
	NeedsRebalance bool            `json:"needs_rebalance"`
}

// RebalanceAmountResponse is the trade restoring a category to target.
type RebalanceAmountResponse struct {
	CategoryID string          `json:"category_id"`
	Amount     decimal.Decimal `json:"amount"`
}

// DriftResponse represents an allocation drift report.
type DriftResponse struct {
	DisplayCurrency string                    `json:"display_currency"`
	Total           decimal.Decimal           `json:"total"`
	Threshold       decimal.Decimal           `json:"threshold"`
	Rows            []DriftRowResponse        `json:"rows"`
	Plan            []RebalanceAmountResponse `json:"plan"`
}

// DriftFromUseCase converts a drift report to response.
func DriftFromUseCase(r *usecase.DriftReport) *DriftResponse {
	resp := &DriftResponse{
		DisplayCurrency: string(r.Snapshot.DisplayCurrency),
		Total:           r.Snapshot.Total,
		Threshold:       r.Threshold,
		Rows:            make([]DriftRowResponse, len(r.Rows)),
		Plan:            make([]RebalanceAmountResponse, len(r.Plan)),
	}
	for i, row := range r.Rows {
		resp.Rows[i] = DriftRowResponse{
			CategoryID:     row.CategoryID,
			Name:           row.Name,
			Value:          row.Value,
			CurrentPercent: row.CurrentPercent,
			TargetPercent:  row.TargetPercent,
			DriftPercent:   row.DriftPercent,
			NeedsRebalance: row.NeedsRebalance,
		}
	}
	for i, p := range r.Plan {
		resp.Plan[i] = RebalanceAmountResponse{CategoryID: p.CategoryID, Amount: p.Amount}
	}
	return resp
}

// ReconciliationResponse represents one holding's reconciliation outcome.
type ReconciliationResponse struct {
	HoldingID       string          `json:"holding_id"`
	Symbol          string          `json:"symbol"`
	Checkable       bool            `json:"checkable"`
	Consistent      bool            `json:"consistent"`
	CalculatedValue decimal.Decimal `json:"calculated_value"`
	StoredValue     decimal.Decimal `json:"stored_value"`
	Delta           decimal.Decimal `json:"delta"`
	DeltaPercent    decimal.Decimal `json:"delta_percent"`
	Reason          string          `json:"reason,omitempty"`
}

// ReconciliationFromEngine converts a reconciliation report to response.
func ReconciliationFromEngine(r engine.ReconciliationReport) ReconciliationResponse {
	return ReconciliationResponse{
		HoldingID:       r.HoldingID,
		Symbol:          r.Symbol,
		Checkable:       r.Checkable,
		Consistent:      r.Consistent,
		CalculatedValue: r.CalculatedValue,
		StoredValue:     r.StoredValue,
		Delta:           r.Delta,
		DeltaPercent:    r.DeltaPercent,
		Reason:          r.Reason,
	}
}

// ReconciliationsFromEngine converts reconciliation reports to responses.
func ReconciliationsFromEngine(reports []engine.ReconciliationReport) []ReconciliationResponse {
	result := make([]ReconciliationResponse, len(reports))
	for i, r := range reports {
		result[i] = ReconciliationFromEngine(r)
	}
	return result
}

// FixValueResponse pairs the corrected holding with the report that triggered the fix.
type FixValueResponse struct {
	Holding *HoldingResponse       `json:"holding"`
	Report  ReconciliationResponse `json:"report"`
}

// YearlyRecordResponse represents a yearly record in API responses.
type YearlyRecordResponse struct {
	ID              string          `json:"id,omitempty"`
	Year            int             `json:"year"`
	Income          decimal.Decimal `json:"income"`
	Expenses        decimal.Decimal `json:"expenses"`
	Savings         decimal.Decimal `json:"savings"`
	NetWorth        decimal.Decimal `json:"net_worth"`
	MarketGains     decimal.Decimal `json:"market_gains"`
	ReturnPercent   decimal.Decimal `json:"return_percent"`
	SavingsRate     decimal.Decimal `json:"savings_rate"`
	SRSContribution decimal.Decimal `json:"srs_contribution"`
	Provenance      string          `json:"provenance"`
	Confidence      string          `json:"confidence"`
	IsEstimated     bool            `json:"is_estimated"`
	MonthsCovered   int             `json:"months_covered"`
	Notes           string          `json:"notes,omitempty"`
}

// YearlyRecordFromDomain converts a domain yearly record to response.
func YearlyRecordFromDomain(r domain.YearlyRecord) YearlyRecordResponse {
	return YearlyRecordResponse{
		ID:              r.ID,
		Year:            r.Year,
		Income:          r.Income,
		Expenses:        r.Expenses,
		Savings:         r.Savings,
		NetWorth:        r.NetWorth,
		MarketGains:     r.MarketGains,
		ReturnPercent:   r.ReturnPercent,
		SavingsRate:     r.SavingsRate,
		SRSContribution: r.SRSContribution,
		Provenance:      string(r.Provenance),
		Confidence:      string(r.Confidence),
		IsEstimated:     r.IsEstimated,
		MonthsCovered:   r.MonthsCovered,
		Notes:           r.Notes,
	}
}

// YearlyRecordsFromDomain converts domain yearly records to responses.
func YearlyRecordsFromDomain(records []domain.YearlyRecord) []YearlyRecordResponse {
	result := make([]YearlyRecordResponse, len(records))
	for i, r := range records {
		result[i] = YearlyRecordFromDomain(r)
	}
	return result
}

// SummaryResponse condenses a performance series.
type SummaryResponse struct {
	Years              int             `json:"years"`
	FirstYear          int             `json:"first_year,omitempty"`
	LastYear           int             `json:"last_year,omitempty"`
	TotalIncome        decimal.Decimal `json:"total_income"`
	TotalSavings       decimal.Decimal `json:"total_savings"`
	TotalMarketGains   decimal.Decimal `json:"total_market_gains"`
	AverageSavingsRate decimal.Decimal `json:"average_savings_rate"`
	BestYear           int             `json:"best_year,omitempty"`
	WorstYear          int             `json:"worst_year,omitempty"`
	LatestNetWorth     decimal.Decimal `json:"latest_net_worth"`
}

// SeriesResponse represents the merged, derived yearly series.
type SeriesResponse struct {
	Records []YearlyRecordResponse `json:"records"`
	Summary SummaryResponse        `json:"summary"`
}

// SeriesFromUseCase converts a performance series to response.
func SeriesFromUseCase(s *usecase.PerformanceSeries) *SeriesResponse {
	return &SeriesResponse{
		Records: YearlyRecordsFromDomain(s.Records),
		Summary: SummaryResponse{
			Years:              s.Summary.Years,
			FirstYear:          s.Summary.FirstYear,
			LastYear:           s.Summary.LastYear,
			TotalIncome:        s.Summary.TotalIncome,
			TotalSavings:       s.Summary.TotalSavings,
			TotalMarketGains:   s.Summary.TotalMarketGains,
			AverageSavingsRate: s.Summary.AverageSavingsRate,
			BestYear:           s.Summary.BestYear,
			WorstYear:          s.Summary.WorstYear,
			LatestNetWorth:     s.Summary.LatestNetWorth,
		},
	}
}

// MonthlySnapshotResponse represents a stored monthly snapshot.
type MonthlySnapshotResponse struct {
	ID             string          `json:"id"`
	Year           int             `json:"year"`
	Month          int             `json:"month"`
	Income         decimal.Decimal `json:"income"`
	Expenses       decimal.Decimal `json:"expenses"`
	Savings        decimal.Decimal `json:"savings"`
	PortfolioValue decimal.Decimal `json:"portfolio_value"`
	NetWorth       decimal.Decimal `json:"net_worth"`
	Notes          string          `json:"notes,omitempty"`
}

// MonthlySnapshotFromDomain converts a domain snapshot to response.
func MonthlySnapshotFromDomain(s *domain.MonthlySnapshot) *MonthlySnapshotResponse {
	return &MonthlySnapshotResponse{
		ID:             s.ID,
		Year:           s.Year,
		Month:          s.Month,
		Income:         s.Income,
		Expenses:       s.Expenses,
		Savings:        s.Savings(),
		PortfolioValue: s.PortfolioValue,
		NetWorth:       s.NetWorth,
		Notes:          s.Notes,
	}
}

// AuditLogResponse represents an audit log entry.
type AuditLogResponse struct {
	ID          string         `json:"id"`
	Actor       string         `json:"actor"`
	Action      string         `json:"action"`
	RequestID   string         `json:"request_id,omitempty"`
	BeforeState map[string]any `json:"before_state,omitempty"`
	AfterState  map[string]any `json:"after_state,omitempty"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
}

// AuditLogsFromDomain converts domain audit logs to responses.
func AuditLogsFromDomain(logs []*domain.AuditLog) []AuditLogResponse {
	result := make([]AuditLogResponse, len(logs))
	for i, l := range logs {
		result[i] = AuditLogResponse{
			ID:          l.ID,
			Actor:       l.Actor,
			Action:      string(l.Action),
			RequestID:   l.RequestID,
			BeforeState: l.BeforeState,
			AfterState:  l.AfterState,
			Status:      string(l.Status),
			CreatedAt:   l.CreatedAt,
		}
	}
	return result
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
