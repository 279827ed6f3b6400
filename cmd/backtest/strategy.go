package main

import (
	"math"
	"time"

	"github.com/rxtech-lab/pairbacktest/internal/datasource"
	"github.com/rxtech-lab/pairbacktest/internal/strategy"
	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

// zscoreStrategy is the demo strategy for the CLI: it trades the spread
// between two symbols on a rolling z-score. The engine library ships no
// strategies; this one lives with the binary.
type zscoreStrategy struct {
	strategy.BaseStrategy

	symbolA    string
	symbolB    string
	hedgeRatio float64
	lookback   int
	entryZ     float64
	exitZ      float64

	open bool
}

func newZScoreStrategy(symbolA, symbolB string, hedgeRatio float64, lookback int, entryZ, exitZ float64) *zscoreStrategy {
	return &zscoreStrategy{
		symbolA:    symbolA,
		symbolB:    symbolB,
		hedgeRatio: hedgeRatio,
		lookback:   lookback,
		entryZ:     entryZ,
		exitZ:      exitZ,
	}
}

func (s *zscoreStrategy) Name() string {
	return "zscore-pair"
}

func (s *zscoreStrategy) OnBar(date time.Time, view *datasource.PointInTimeView) (types.Signal, error) {
	barsA, err := view.History(s.symbolA, s.lookback)
	if err != nil {
		if errors.IsInsufficientDataError(err) {
			// Still warming up.
			return nil, nil
		}

		return nil, err
	}

	barsB, err := view.History(s.symbolB, s.lookback)
	if err != nil {
		if errors.IsInsufficientDataError(err) {
			return nil, nil
		}

		return nil, err
	}

	window := s.spreadWindow(barsA, barsB)
	if len(window) < s.lookback {
		// The legs traded on different dates inside the window.
		return nil, nil
	}

	mean := 0.0
	for _, v := range window {
		mean += v
	}
	mean /= float64(len(window))

	variance := 0.0
	for _, v := range window {
		d := v - mean
		variance += d * d
	}
	variance /= float64(len(window) - 1)

	std := math.Sqrt(variance)
	if std == 0 {
		return nil, nil
	}

	z := (window[len(window)-1] - mean) / std

	if s.open {
		if math.Abs(z) < s.exitZ {
			s.open = false

			return types.PairSignal{
				Kind:        types.SignalKindClosePair,
				LongSymbol:  s.symbolA,
				ShortSymbol: s.symbolB,
				HedgeRatio:  s.hedgeRatio,
			}, nil
		}

		return nil, nil
	}

	switch {
	case z > s.entryZ:
		// Spread rich: short A, long B.
		s.open = true

		return types.PairSignal{
			Kind:        types.SignalKindOpenPair,
			LongSymbol:  s.symbolB,
			ShortSymbol: s.symbolA,
			HedgeRatio:  s.hedgeRatio,
		}, nil
	case z < -s.entryZ:
		s.open = true

		return types.PairSignal{
			Kind:        types.SignalKindOpenPair,
			LongSymbol:  s.symbolA,
			ShortSymbol: s.symbolB,
			HedgeRatio:  s.hedgeRatio,
		}, nil
	default:
		return nil, nil
	}
}

// spreadWindow returns priceA - hedge * priceB for every date both legs have
// a bar in their lookback windows.
func (s *zscoreStrategy) spreadWindow(barsA, barsB []types.PriceBar) []float64 {
	pricesB := make(map[time.Time]float64, len(barsB))
	for _, bar := range barsB {
		pricesB[bar.Date] = bar.AdjClose
	}

	var spreads []float64

	for _, bar := range barsA {
		if priceB, ok := pricesB[bar.Date]; ok {
			spreads = append(spreads, bar.AdjClose-s.hedgeRatio*priceB)
		}
	}

	return spreads
}
