package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource tags where a holding's current unit price came from.
type PriceSource string

const (
	PriceSourceManual PriceSource = "manual"
	PriceSourceLive   PriceSource = "live"
	PriceSourceLot    PriceSource = "lot"
)

// Holding is a position owned by a single user.
// Quantity and CurrentUnitPrice are nil for value-only holdings (cash, property, CPF).
type Holding struct {
	ID               string
	UserID           string
	Symbol           string
	Name             string
	Currency         Currency
	Quantity         *decimal.Decimal
	UnitCost         decimal.Decimal
	CurrentUnitPrice *decimal.Decimal
	Value            decimal.Decimal
	ValueSGD         decimal.Decimal
	ValueUSD         decimal.Decimal
	ValueINR         decimal.Decimal
	CategoryID       string
	PriceSource      PriceSource
	PriceUpdatedAt   *time.Time
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

// TracksUnits reports whether both quantity and current unit price are known.
func (h *Holding) TracksUnits() bool {
	return h.Quantity != nil && h.CurrentUnitPrice != nil
}

// Converted returns the stored converted values.
func (h *Holding) Converted() MultiCurrencyValue {
	return MultiCurrencyValue{SGD: h.ValueSGD, USD: h.ValueUSD, INR: h.ValueINR}
}

// SetConverted stores converted values on the holding.
func (h *Holding) SetConverted(v MultiCurrencyValue) {
	h.ValueSGD = v.SGD
	h.ValueUSD = v.USD
	h.ValueINR = v.INR
}

// CostBasis is quantity times weighted unit cost, zero for value-only holdings.
func (h *Holding) CostBasis() decimal.Decimal {
	if h.Quantity == nil {
		return decimal.Zero
	}
	return h.Quantity.Mul(h.UnitCost)
}

// Clone returns a deep copy so engine results never alias caller state.
func (h Holding) Clone() Holding {
	c := h
	if h.Quantity != nil {
		q := *h.Quantity
		c.Quantity = &q
	}
	if h.CurrentUnitPrice != nil {
		p := *h.CurrentUnitPrice
		c.CurrentUnitPrice = &p
	}
	if h.PriceUpdatedAt != nil {
		t := *h.PriceUpdatedAt
		c.PriceUpdatedAt = &t
	}
	return c
}

// LotEvent is a purchase of additional units at a price.
// It is consumed into the holding's weighted cost and not stored.
type LotEvent struct {
	Quantity   decimal.Decimal
	UnitPrice  decimal.Decimal
	OccurredAt time.Time
}

// Validate checks lot invariants.
func (l LotEvent) Validate() error {
	if !l.Quantity.IsPositive() {
		return ErrInvalidLot
	}
	if l.UnitPrice.IsNegative() {
		return ErrInvalidLot
	}
	return nil
}

// PriceUpdate is a market price refresh. It never touches quantity or cost.
type PriceUpdate struct {
	UnitPrice decimal.Decimal
	Source    PriceSource
	UpdatedAt time.Time
}

// Validate checks price update invariants.
func (p PriceUpdate) Validate() error {
	if p.UnitPrice.IsNegative() {
		return ErrInvalidPrice
	}
	return nil
}

// DecimalPtr is a convenience for optional decimal fields.
func DecimalPtr(d decimal.Decimal) *decimal.Decimal {
	return &d
}
