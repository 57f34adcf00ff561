package domain

import "errors"

var (
	// Conversion errors
	ErrInvalidCurrency = errors.New("invalid currency code")
	ErrMissingRate     = errors.New("exchange rate missing")
	ErrInvalidRate     = errors.New("invalid exchange rate")
	ErrRatesNotFound   = errors.New("exchange rates not found")

	// Holding errors
	ErrInvalidLot        = errors.New("invalid lot")
	ErrInvalidPrice      = errors.New("invalid unit price")
	ErrValueOnlyHolding  = errors.New("holding does not track quantity")
	ErrInconsistentValue = errors.New("holding value inconsistent with quantity and price")
	ErrHoldingNotFound   = errors.New("holding not found")

	// Record errors
	ErrInvalidRecord   = errors.New("invalid yearly record")
	ErrInvalidSnapshot = errors.New("invalid monthly snapshot")
	ErrInvalidTargets  = errors.New("invalid allocation targets")
)
