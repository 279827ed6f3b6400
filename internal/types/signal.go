package types

import (
	"fmt"
	"math"
	"sort"

	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

type SignalKind string

const (
	// SignalKindOpenPair opens a new pair position with explicit long/short legs.
	SignalKindOpenPair SignalKind = "open_pair"
	// SignalKindClosePair closes an existing pair position.
	SignalKindClosePair SignalKind = "close_pair"
)

// Signal is the strategy output union: PairSignal, WeightSignal, or nil for
// no action. The interface is sealed so the set of variants is fixed.
type Signal interface {
	// Validate checks the signal is well-formed, returning an
	// InvalidSignalError otherwise.
	Validate() error

	isSignal()
}

// PairSignal is a discrete pair trade: open or close a specific long/short
// pair with an explicit hedge ratio sizing the short leg.
type PairSignal struct {
	Kind        SignalKind
	LongSymbol  string
	ShortSymbol string
	// HedgeRatio is the ratio of short to long notional (1.0 = dollar neutral).
	HedgeRatio float64
	// PairID identifies the pair; generated from the symbols if empty.
	PairID string
}

func (s PairSignal) isSignal() {}

// Validate validates the PairSignal fields.
func (s PairSignal) Validate() error {
	if s.Kind != SignalKindOpenPair && s.Kind != SignalKindClosePair {
		return errors.NewInvalidSignalError("invalid pair signal", fmt.Sprintf("unknown signal kind %q", s.Kind))
	}

	if s.LongSymbol == "" || s.ShortSymbol == "" {
		return errors.NewInvalidSignalError("invalid pair signal", "both legs must name a symbol")
	}

	if s.LongSymbol == s.ShortSymbol {
		return errors.NewInvalidSignalError("invalid pair signal", "long and short symbols must be different")
	}

	if s.HedgeRatio <= 0 {
		return errors.NewInvalidSignalError("invalid pair signal", "hedge ratio must be positive")
	}

	return nil
}

// GetPairID returns the pair id, deriving one from the legs if not set.
func (s PairSignal) GetPairID() string {
	if s.PairID != "" {
		return s.PairID
	}

	return fmt.Sprintf("%s_%s", s.LongSymbol, s.ShortSymbol)
}

// Symbols returns the (long, short) legs.
func (s PairSignal) Symbols() (string, string) {
	return s.LongSymbol, s.ShortSymbol
}

// WeightSignal carries target portfolio weights per symbol. Weights are in
// [-1, 1]; negative means short. With Rebalance false, symbols already within
// the tolerance band of their target are left untouched.
type WeightSignal struct {
	Weights   map[string]float64
	Rebalance bool
}

func (s WeightSignal) isSignal() {}

// Validate validates the WeightSignal fields.
func (s WeightSignal) Validate() error {
	if len(s.Weights) == 0 {
		return errors.NewInvalidSignalError("invalid weight signal", "weights cannot be empty")
	}

	for symbol, weight := range s.Weights {
		if symbol == "" {
			return errors.NewInvalidSignalError("invalid weight signal", "empty symbol")
		}

		if weight < -1 || weight > 1 {
			return errors.NewInvalidSignalError("invalid weight signal",
				fmt.Sprintf("weight %f for %s outside [-1, 1]", weight, symbol))
		}
	}

	return nil
}

// Symbols returns the signal's symbols in sorted order so that downstream
// fill generation is deterministic.
func (s WeightSignal) Symbols() []string {
	symbols := make([]string, 0, len(s.Weights))
	for symbol := range s.Weights {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}

// NetExposure returns the sum of weights.
func (s WeightSignal) NetExposure() float64 {
	var net float64
	for _, weight := range s.Weights {
		net += weight
	}

	return net
}

// GrossExposure returns the sum of absolute weights. No aggregate leverage
// cap is enforced here; callers that need one check this value.
func (s WeightSignal) GrossExposure() float64 {
	var gross float64
	for _, weight := range s.Weights {
		gross += math.Abs(weight)
	}

	return gross
}

// IsDollarNeutral reports whether the net exposure is within tolerance of zero.
func (s WeightSignal) IsDollarNeutral(tolerance float64) bool {
	return math.Abs(s.NetExposure()) <= tolerance
}
