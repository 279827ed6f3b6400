package types

import (
	"math"
	"time"

	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

// Fill is an executed transaction. Quantity is signed: positive buys,
// negative sells or shorts.
type Fill struct {
	ID         string    `csv:"id"`
	Symbol     string    `csv:"symbol"`
	Date       time.Time `csv:"date"`
	Quantity   float64   `csv:"quantity"`
	Price      float64   `csv:"price"`
	Commission float64   `csv:"commission"`
	// PairID links the fill to a pair trade; empty for single-leg fills.
	PairID string `csv:"pair_id"`
}

// Validate validates the Fill fields.
func (f *Fill) Validate() error {
	if f.Symbol == "" {
		return errors.New(errors.ErrCodeInvalidFill, "fill must name a symbol")
	}

	if f.Quantity == 0 {
		return errors.Newf(errors.ErrCodeInvalidFill, "fill quantity cannot be zero for %s", f.Symbol)
	}

	if f.Price <= 0 {
		return errors.Newf(errors.ErrCodeInvalidFill, "fill price must be positive for %s: %f", f.Symbol, f.Price)
	}

	if f.Commission < 0 {
		return errors.Newf(errors.ErrCodeInvalidFill, "commission cannot be negative for %s: %f", f.Symbol, f.Commission)
	}

	return nil
}

// Notional returns the unsigned trade value (|quantity| * price).
func (f *Fill) Notional() float64 {
	return math.Abs(f.Quantity) * f.Price
}

// CashDelta returns the signed cash impact of the fill:
// -(quantity * price) - commission.
func (f *Fill) CashDelta() float64 {
	return -(f.Quantity * f.Price) - f.Commission
}

// RoundTrip is a completed position episode: created when a position's
// quantity returns to exactly zero.
type RoundTrip struct {
	Symbol string `csv:"symbol"`
	// PairID is set when the episode belongs to a pair trade.
	PairID string `csv:"pair_id"`
	// Entry is the fill that opened the episode; Exit the fill that
	// brought the quantity back to zero.
	Entry Fill `csv:"-"`
	Exit  Fill `csv:"-"`
	// Quantity is the unsigned size of the closed position.
	Quantity float64 `csv:"quantity"`
	// RealizedPnL is the pnl realized over the whole episode, net of nothing:
	// commissions are reported separately.
	RealizedPnL float64 `csv:"realized_pnl"`
	// Commission is the total commission paid across the episode's fills.
	Commission  float64 `csv:"commission"`
	HoldingDays int     `csv:"holding_days"`
}

// IsWinner reports whether the round trip was profitable.
func (rt *RoundTrip) IsWinner() bool {
	return rt.RealizedPnL > 0
}

// EntryNotional returns the unsigned notional at entry.
func (rt *RoundTrip) EntryNotional() float64 {
	return rt.Quantity * rt.Entry.Price
}

// EquityPoint is one entry of the equity curve.
type EquityPoint struct {
	Date   time.Time `csv:"date" yaml:"date"`
	Equity float64   `csv:"equity" yaml:"equity"`
}
