package engine

import (
	"math"
	"sort"
	"time"

	"github.com/rxtech-lab/pairbacktest/internal/datasource"
	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

// accountingTolerance is the relative tolerance for the ledger identity
// equity = initial + realized + unrealized - commission.
const accountingTolerance = 1e-6

// episode tracks one open position from first entry until flat, to build a
// RoundTrip when it closes.
type episode struct {
	entry          types.Fill
	commission     float64
	maxAbsQuantity float64
}

// Portfolio is the ledger: cash, positions, the fill log, completed round
// trips and the equity curve. All mutation goes through ApplyFill and
// MarkToMarket; both enforce the accounting identity.
type Portfolio struct {
	initialCapital float64
	priceField     types.PriceField

	cash      float64
	positions map[string]*types.Position
	episodes  map[string]*episode

	fills      []types.Fill
	roundTrips []types.RoundTrip
	equity     []types.EquityPoint

	realizedPnL     float64
	totalCommission float64
}

func NewPortfolio(initialCapital float64, priceField types.PriceField) *Portfolio {
	return &Portfolio{
		initialCapital: initialCapital,
		priceField:     priceField,
		cash:           initialCapital,
		positions:      make(map[string]*types.Position),
		episodes:       make(map[string]*episode),
	}
}

// Cash returns the current cash balance.
func (p *Portfolio) Cash() float64 {
	return p.cash
}

// InitialCapital returns the starting cash.
func (p *Portfolio) InitialCapital() float64 {
	return p.initialCapital
}

// Equity returns cash plus the signed market value of all open positions.
func (p *Portfolio) Equity() float64 {
	equity := p.cash
	for _, position := range p.positions {
		equity += position.MarketValue()
	}

	return equity
}

// Position returns the open position for symbol, if any.
func (p *Portfolio) Position(symbol string) (*types.Position, bool) {
	position, ok := p.positions[symbol]

	return position, ok
}

// Positions returns copies of all open positions in sorted symbol order.
func (p *Portfolio) Positions() []types.Position {
	symbols := make([]string, 0, len(p.positions))
	for symbol := range p.positions {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	positions := make([]types.Position, 0, len(symbols))
	for _, symbol := range symbols {
		positions = append(positions, *p.positions[symbol])
	}

	return positions
}

// Fills returns a copy of the fill log in application order.
func (p *Portfolio) Fills() []types.Fill {
	fills := make([]types.Fill, len(p.fills))
	copy(fills, p.fills)

	return fills
}

// RoundTrips returns a copy of the completed round trips in completion order.
func (p *Portfolio) RoundTrips() []types.RoundTrip {
	roundTrips := make([]types.RoundTrip, len(p.roundTrips))
	copy(roundTrips, p.roundTrips)

	return roundTrips
}

// EquityCurve returns a copy of the recorded equity points in date order.
func (p *Portfolio) EquityCurve() []types.EquityPoint {
	equity := make([]types.EquityPoint, len(p.equity))
	copy(equity, p.equity)

	return equity
}

// RealizedPnL returns cumulative realized pnl across all positions.
func (p *Portfolio) RealizedPnL() float64 {
	return p.realizedPnL
}

// TotalCommission returns the commission paid across all fills.
func (p *Portfolio) TotalCommission() float64 {
	return p.totalCommission
}

// GrossExposure returns the sum of absolute position market values divided by
// equity. Exposed for strategies and reporting; nothing in the engine caps it.
func (p *Portfolio) GrossExposure() float64 {
	equity := p.Equity()
	if equity == 0 {
		return 0
	}

	var gross float64
	for _, position := range p.positions {
		gross += math.Abs(position.MarketValue())
	}

	return gross / equity
}

// ApplyFill applies an executed fill to the ledger: moves cash, updates the
// position, and emits a RoundTrip when the position's quantity returns to
// exactly zero.
func (p *Portfolio) ApplyFill(fill types.Fill) error {
	if err := fill.Validate(); err != nil {
		return errors.Wrapf(errors.ErrCodeFillFailed, err, "cannot apply fill for %s", fill.Symbol)
	}

	position, ok := p.positions[fill.Symbol]
	if !ok {
		position = &types.Position{Symbol: fill.Symbol}
		p.positions[fill.Symbol] = position
	}

	ep, ok := p.episodes[fill.Symbol]
	if !ok {
		ep = &episode{entry: fill}
		p.episodes[fill.Symbol] = ep
	}

	realized := position.AddQuantity(fill.Quantity, fill.Price)
	position.UpdatePrice(fill.Price)

	p.cash += fill.CashDelta()
	p.realizedPnL += realized
	p.totalCommission += fill.Commission

	ep.commission += fill.Commission
	if abs := math.Abs(position.Quantity); abs > ep.maxAbsQuantity {
		ep.maxAbsQuantity = abs
	}

	p.fills = append(p.fills, fill)

	if position.IsFlat() {
		p.roundTrips = append(p.roundTrips, types.RoundTrip{
			Symbol:      fill.Symbol,
			PairID:      ep.entry.PairID,
			Entry:       ep.entry,
			Exit:        fill,
			Quantity:    ep.maxAbsQuantity,
			RealizedPnL: position.RealizedPnL,
			Commission:  ep.commission,
			HoldingDays: int(fill.Date.Sub(ep.entry.Date).Hours() / 24),
		})

		delete(p.positions, fill.Symbol)
		delete(p.episodes, fill.Symbol)
	}

	return p.checkIdentity()
}

// MarkToMarket updates every open position to its closing price on date and
// records an equity point. A held symbol without a bar on date is fatal.
func (p *Portfolio) MarkToMarket(date time.Time, view *datasource.PointInTimeView) error {
	symbols := make([]string, 0, len(p.positions))
	for symbol := range p.positions {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	for _, symbol := range symbols {
		bar, err := view.GetLatest(symbol).Take()
		if err != nil || !bar.Date.Equal(date) {
			return errors.NewMissingPriceError(symbol, date)
		}

		p.positions[symbol].UpdatePrice(bar.Price(p.priceField))
	}

	p.equity = append(p.equity, types.EquityPoint{
		Date:   date,
		Equity: p.Equity(),
	})

	return p.checkIdentity()
}

// checkIdentity verifies equity = initial + realized + unrealized - commission
// within a relative tolerance. A violation means the ledger itself is broken.
func (p *Portfolio) checkIdentity() error {
	var unrealized float64
	for _, position := range p.positions {
		unrealized += position.UnrealizedPnL()
	}

	expected := p.initialCapital + p.realizedPnL + unrealized - p.totalCommission
	actual := p.Equity()

	tolerance := accountingTolerance * math.Max(1, math.Abs(expected))
	if math.Abs(actual-expected) > tolerance {
		return errors.Newf(errors.ErrCodeAccountingViolation,
			"equity %f diverged from ledger identity %f", actual, expected)
	}

	return nil
}
