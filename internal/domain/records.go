package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Provenance records where a yearly record's figures came from.
type Provenance string

const (
	ProvenanceUser      Provenance = "user"
	ProvenanceMonthly   Provenance = "monthly"
	ProvenanceEstimated Provenance = "estimated"
)

// Confidence is a coarse quality tag on a yearly record.
type Confidence string

const (
	ConfidenceHigh   Confidence = "high"
	ConfidenceMedium Confidence = "medium"
	ConfidenceLow    Confidence = "low"
)

// YearlyRecord is one row of the year-over-year series; one per user per year.
type YearlyRecord struct {
	ID              string
	UserID          string
	Year            int
	Income          decimal.Decimal
	Expenses        decimal.Decimal
	Savings         decimal.Decimal
	NetWorth        decimal.Decimal
	MarketGains     decimal.Decimal
	ReturnPercent   decimal.Decimal
	SavingsRate     decimal.Decimal
	SRSContribution decimal.Decimal
	Provenance      Provenance
	Confidence      Confidence
	IsEstimated     bool
	MonthsCovered   int
	Notes           string
}

// Validate checks the record's key fields.
func (r *YearlyRecord) Validate() error {
	if r.Year < MinRecordYear || r.Year > MaxRecordYear {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidRecord, r.Year)
	}
	if r.Income.IsNegative() || r.Expenses.IsNegative() {
		return fmt.Errorf("%w: income and expenses must not be negative", ErrInvalidRecord)
	}
	return nil
}

// MonthlySnapshot is a point-in-time monthly entry.
type MonthlySnapshot struct {
	ID             string
	UserID         string
	Year           int
	Month          int
	Income         decimal.Decimal
	Expenses       decimal.Decimal
	PortfolioValue decimal.Decimal
	NetWorth       decimal.Decimal
	Notes          string
}

// Savings is income minus expenses for the month.
func (s *MonthlySnapshot) Savings() decimal.Decimal {
	return s.Income.Sub(s.Expenses)
}

// Validate checks the snapshot's period and flows.
func (s *MonthlySnapshot) Validate() error {
	if s.Year < MinRecordYear || s.Year > MaxRecordYear {
		return fmt.Errorf("%w: year %d out of range", ErrInvalidSnapshot, s.Year)
	}
	if s.Month < 1 || s.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidSnapshot, s.Month)
	}
	if s.Income.IsNegative() || s.Expenses.IsNegative() {
		return fmt.Errorf("%w: income and expenses must not be negative", ErrInvalidSnapshot)
	}
	return nil
}
