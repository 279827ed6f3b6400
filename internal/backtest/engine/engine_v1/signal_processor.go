package engine

import (
	"math"
	"sort"
	"time"

	"github.com/rxtech-lab/pairbacktest/internal/datasource"
	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

// TargetDelta is a desired signed quantity change for one symbol, produced by
// the SignalProcessor and consumed by the ExecutionModel.
type TargetDelta struct {
	Symbol   string
	Quantity float64
	// PairID tags deltas that belong to a pair trade.
	PairID string
}

// SignalProcessor translates strategy signals into ordered target deltas.
// Deltas are always emitted in sorted symbol order so fill sequences are
// deterministic across runs.
type SignalProcessor struct {
	config BacktestConfig
}

func NewSignalProcessor(config BacktestConfig) *SignalProcessor {
	return &SignalProcessor{
		config: config,
	}
}

// Process validates the signal and converts it into target deltas against the
// current portfolio state. A nil return with no error means nothing to trade.
func (p *SignalProcessor) Process(signal types.Signal, portfolio *Portfolio, view *datasource.PointInTimeView, date time.Time) ([]TargetDelta, error) {
	if signal == nil {
		return nil, nil
	}

	if err := signal.Validate(); err != nil {
		return nil, err
	}

	switch s := signal.(type) {
	case types.PairSignal:
		return p.processPairSignal(s, portfolio, view, date)
	case types.WeightSignal:
		return p.processWeightSignal(s, portfolio, view, date)
	default:
		return nil, errors.NewInvalidSignalError("unsupported signal", "unknown signal type")
	}
}

func (p *SignalProcessor) processPairSignal(signal types.PairSignal, portfolio *Portfolio, view *datasource.PointInTimeView, date time.Time) ([]TargetDelta, error) {
	pairID := signal.GetPairID()

	if signal.Kind == types.SignalKindClosePair {
		return p.closePair(signal, portfolio, pairID)
	}

	longPrice, err := p.executionPrice(signal.LongSymbol, view, date)
	if err != nil {
		return nil, err
	}

	shortPrice, err := p.executionPrice(signal.ShortSymbol, view, date)
	if err != nil {
		return nil, err
	}

	// Split the pair allocation so that short notional = long notional *
	// hedge ratio: long gets capital / (1 + hedge).
	longNotional := p.config.CapitalPerPair / (1 + signal.HedgeRatio)
	shortNotional := longNotional * signal.HedgeRatio

	deltas := []TargetDelta{
		{Symbol: signal.LongSymbol, Quantity: longNotional / longPrice, PairID: pairID},
		{Symbol: signal.ShortSymbol, Quantity: -shortNotional / shortPrice, PairID: pairID},
	}

	sortDeltas(deltas)

	return deltas, nil
}

func (p *SignalProcessor) closePair(signal types.PairSignal, portfolio *Portfolio, pairID string) ([]TargetDelta, error) {
	var deltas []TargetDelta

	for _, symbol := range []string{signal.LongSymbol, signal.ShortSymbol} {
		position, ok := portfolio.Position(symbol)
		if !ok || position.IsFlat() {
			continue
		}

		deltas = append(deltas, TargetDelta{
			Symbol:   symbol,
			Quantity: -position.Quantity,
			PairID:   pairID,
		})
	}

	sortDeltas(deltas)

	return deltas, nil
}

func (p *SignalProcessor) processWeightSignal(signal types.WeightSignal, portfolio *Portfolio, view *datasource.PointInTimeView, date time.Time) ([]TargetDelta, error) {
	equity := portfolio.Equity()

	var deltas []TargetDelta

	for _, symbol := range signal.Symbols() {
		weight := signal.Weights[symbol]

		price, err := p.executionPrice(symbol, view, date)
		if err != nil {
			return nil, err
		}

		var currentQuantity float64
		if position, ok := portfolio.Position(symbol); ok {
			currentQuantity = position.Quantity
		}

		if !signal.Rebalance && equity > 0 {
			currentWeight := currentQuantity * price / equity
			if math.Abs(currentWeight-weight) <= DefaultRebalanceTolerance {
				continue
			}
		}

		targetQuantity := weight * equity / price

		delta := targetQuantity - currentQuantity
		if delta == 0 {
			continue
		}

		deltas = append(deltas, TargetDelta{
			Symbol:   symbol,
			Quantity: delta,
		})
	}

	return deltas, nil
}

func (p *SignalProcessor) executionPrice(symbol string, view *datasource.PointInTimeView, date time.Time) (float64, error) {
	latest := view.GetLatest(symbol)

	bar, err := latest.Take()
	if err != nil || !bar.Date.Equal(date) {
		return 0, errors.NewMissingPriceError(symbol, date)
	}

	return bar.Price(p.config.PriceField), nil
}

func sortDeltas(deltas []TargetDelta) {
	sort.Slice(deltas, func(i, j int) bool {
		return deltas[i].Symbol < deltas[j].Symbol
	})
}
