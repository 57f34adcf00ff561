// Package engine is the financial aggregation and valuation core.
//
// Every function is a pure transform of its arguments: no I/O, no shared
// state, no logging. Callers load data, invoke the engine and persist the
// returned values. Monetary arithmetic uses shopspring/decimal throughout.
package engine
