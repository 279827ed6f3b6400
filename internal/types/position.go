package types

import (
	"math"

	"github.com/shopspring/decimal"
)

type PositionSide string

const (
	PositionSideLong  PositionSide = "LONG"
	PositionSideShort PositionSide = "SHORT"
	PositionSideFlat  PositionSide = "FLAT"
)

// Position represents current holdings of a single symbol. Quantity is
// signed: negative means short.
type Position struct {
	Symbol        string  `csv:"symbol"`
	Quantity      float64 `csv:"quantity"`
	AvgEntryPrice float64 `csv:"avg_entry_price"`
	CurrentPrice  float64 `csv:"current_price"`
	// RealizedPnL accumulates pnl realized while this position episode is open.
	RealizedPnL float64 `csv:"realized_pnl"`
}

// Side returns the position direction.
func (p *Position) Side() PositionSide {
	switch {
	case p.Quantity > 0:
		return PositionSideLong
	case p.Quantity < 0:
		return PositionSideShort
	default:
		return PositionSideFlat
	}
}

// IsFlat reports whether the position holds no quantity.
func (p *Position) IsFlat() bool {
	return p.Quantity == 0
}

// MarketValue returns quantity times the current price (signed).
func (p *Position) MarketValue() float64 {
	return p.Quantity * p.CurrentPrice
}

// CostBasis returns quantity times the average entry price (signed).
func (p *Position) CostBasis() float64 {
	return p.Quantity * p.AvgEntryPrice
}

// UnrealizedPnL returns market value minus cost basis.
func (p *Position) UnrealizedPnL() float64 {
	return p.MarketValue() - p.CostBasis()
}

// TotalPnL returns realized plus unrealized pnl.
func (p *Position) TotalPnL() float64 {
	return p.RealizedPnL + p.UnrealizedPnL()
}

// UpdatePrice sets the current market price used for marking to market.
func (p *Position) UpdatePrice(price float64) {
	p.CurrentPrice = price
}

// AddQuantity applies a signed quantity at the given price and returns the
// pnl realized by this transaction (zero when opening or adding).
//
// Same-direction quantity averages into the entry price. Opposite-direction
// quantity first closes against the existing position, realizing
// (exit - entry) * closed * sign; any excess flips the position to the new
// side at the transaction price.
func (p *Position) AddQuantity(quantity, price float64) float64 {
	if p.Quantity == 0 {
		p.Quantity = quantity
		p.AvgEntryPrice = price

		return 0
	}

	// Same direction: average in.
	if (p.Quantity > 0) == (quantity > 0) {
		costDec := decimal.NewFromFloat(p.CostBasis()).Add(
			decimal.NewFromFloat(quantity).Mul(decimal.NewFromFloat(price)))
		p.Quantity += quantity
		p.AvgEntryPrice, _ = costDec.Div(decimal.NewFromFloat(p.Quantity)).Float64()

		return 0
	}

	// Opposite direction: realize pnl on the closed quantity.
	closing := math.Min(math.Abs(quantity), math.Abs(p.Quantity))

	closingDec := decimal.NewFromFloat(closing)
	priceDec := decimal.NewFromFloat(price)
	entryDec := decimal.NewFromFloat(p.AvgEntryPrice)

	var realizedDec decimal.Decimal
	if p.Quantity > 0 {
		// Long position, selling.
		realizedDec = closingDec.Mul(priceDec.Sub(entryDec))
	} else {
		// Short position, buying to cover.
		realizedDec = closingDec.Mul(entryDec.Sub(priceDec))
	}

	realized, _ := realizedDec.Float64()
	p.RealizedPnL += realized

	remaining := math.Abs(quantity) - closing
	if remaining > 0 {
		// Flipping sides.
		if quantity > 0 {
			p.Quantity = remaining
		} else {
			p.Quantity = -remaining
		}

		p.AvgEntryPrice = price
	} else {
		p.Quantity += quantity
		if p.Quantity == 0 {
			p.AvgEntryPrice = 0
		}
	}

	return realized
}
