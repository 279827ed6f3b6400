// Package datasource provides point-in-time access to daily price bars.
//
// A PointInTimeView exposes only the bars dated at or before its reference
// date. Strategies receive a view instead of the raw dataset so that
// look-ahead access is a type-system impossibility rather than a convention.
package datasource

import (
	"fmt"
	"sort"
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

// PointInTimeView is an immutable snapshot of price data as of a reference
// date. All accessors return data dated at or before the reference date;
// AdvanceTo produces a new view rather than mutating the receiver, so a view
// handed to a strategy can never be rolled back.
type PointInTimeView struct {
	// bars is the full dataset sorted by (date, symbol). Shared across views
	// produced by AdvanceTo and never mutated.
	bars []types.PriceBar
	// symbolBars indexes the same dataset per symbol, sorted by date.
	symbolBars map[string][]types.PriceBar

	referenceDate time.Time
}

// NewPointInTimeView builds a view over the given bars as of referenceDate.
// Bars are copied and sorted internally; each bar must pass validation.
func NewPointInTimeView(bars []types.PriceBar, referenceDate time.Time) (*PointInTimeView, error) {
	sorted := make([]types.PriceBar, len(bars))
	copy(sorted, bars)

	for i := range sorted {
		if err := sorted[i].Validate(); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidPriceBar, err,
				"cannot construct point-in-time view: bar %d is invalid", i)
		}
	}

	sort.Slice(sorted, func(i, j int) bool {
		if !sorted[i].Date.Equal(sorted[j].Date) {
			return sorted[i].Date.Before(sorted[j].Date)
		}

		return sorted[i].Symbol < sorted[j].Symbol
	})

	symbolBars := make(map[string][]types.PriceBar)
	for _, bar := range sorted {
		symbolBars[bar.Symbol] = append(symbolBars[bar.Symbol], bar)
	}

	return &PointInTimeView{
		bars:          sorted,
		symbolBars:    symbolBars,
		referenceDate: referenceDate,
	}, nil
}

// ReferenceDate returns the view's as-of date.
func (v *PointInTimeView) ReferenceDate() time.Time {
	return v.referenceDate
}

// AdvanceTo returns a new view at newDate. newDate must be at or after the
// current reference date; moving backwards returns a LookAheadBiasError since
// rewinding would let a caller replay decisions with knowledge of the future.
func (v *PointInTimeView) AdvanceTo(newDate time.Time) (*PointInTimeView, error) {
	if newDate.Before(v.referenceDate) {
		return nil, errors.NewLookAheadBiasError(
			"cannot advance a point-in-time view backwards", v.referenceDate, newDate)
	}

	return &PointInTimeView{
		bars:          v.bars,
		symbolBars:    v.symbolBars,
		referenceDate: newDate,
	}, nil
}

// GetData returns every bar visible as of the reference date, sorted by
// (date, symbol). Calling it repeatedly on the same view yields the same rows.
// The returned slice is a copy; mutating it does not affect the view.
func (v *PointInTimeView) GetData() []types.PriceBar {
	visible := v.bars[:v.visibleLen()]

	out := make([]types.PriceBar, len(visible))
	copy(out, visible)

	return out
}

// Slice returns the visible bars with dates in [start, end]. It returns a
// LookAheadBiasError when end is after the reference date, whether or not any
// bar actually exists in the hidden range.
func (v *PointInTimeView) Slice(start, end time.Time) ([]types.PriceBar, error) {
	if end.After(v.referenceDate) {
		return nil, errors.NewLookAheadBiasError(
			"slice end is beyond the reference date", v.referenceDate, end)
	}

	visible := v.bars[:v.visibleLen()]

	from := sort.Search(len(visible), func(i int) bool {
		return !visible[i].Date.Before(start)
	})
	to := sort.Search(len(visible), func(i int) bool {
		return visible[i].Date.After(end)
	})

	window := make([]types.PriceBar, to-from)
	copy(window, visible[from:to])

	return window, nil
}

// ForSymbol returns the visible bars for one symbol, sorted by date. The
// returned slice is a copy; mutating it does not affect the view.
func (v *PointInTimeView) ForSymbol(symbol string) []types.PriceBar {
	bars := v.visibleForSymbol(symbol)

	out := make([]types.PriceBar, len(bars))
	copy(out, bars)

	return out
}

// History returns the most recent n visible bars for symbol, oldest first. It
// returns an InsufficientDataError when fewer than n bars are visible.
func (v *PointInTimeView) History(symbol string, n int) ([]types.PriceBar, error) {
	bars := v.visibleForSymbol(symbol)
	if len(bars) < n {
		return nil, errors.NewInsufficientDataError(n, len(bars), symbol,
			fmt.Sprintf("%s has %d visible bars, need %d", symbol, len(bars), n))
	}

	out := make([]types.PriceBar, n)
	copy(out, bars[len(bars)-n:])

	return out, nil
}

// GetLatest returns the most recent visible bar for symbol, or None when the
// symbol has no bar at or before the reference date.
func (v *PointInTimeView) GetLatest(symbol string) optional.Option[types.PriceBar] {
	bars := v.visibleForSymbol(symbol)
	if len(bars) == 0 {
		return optional.None[types.PriceBar]()
	}

	return optional.Some(bars[len(bars)-1])
}

// Symbols returns every symbol in the dataset in sorted order. Symbol
// membership is not point-in-time filtered; only bar visibility is.
func (v *PointInTimeView) Symbols() []string {
	symbols := make([]string, 0, len(v.symbolBars))
	for symbol := range v.symbolBars {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	return symbols
}

// VisibleRows returns the number of bars visible as of the reference date.
func (v *PointInTimeView) VisibleRows() int {
	return v.visibleLen()
}

// TradingDates returns the unique sorted dates in [start, end] on which any
// symbol has a bar. The schedule spans the whole dataset regardless of the
// reference date; a trading calendar is not price data.
func (v *PointInTimeView) TradingDates(start, end time.Time) []time.Time {
	var dates []time.Time
	for _, bar := range v.bars {
		if bar.Date.Before(start) || bar.Date.After(end) {
			continue
		}

		if len(dates) == 0 || !dates[len(dates)-1].Equal(bar.Date) {
			dates = append(dates, bar.Date)
		}
	}

	return dates
}

// visibleForSymbol returns the internal per-symbol slice truncated at the
// reference date. Callers must not hand it out without copying.
func (v *PointInTimeView) visibleForSymbol(symbol string) []types.PriceBar {
	bars := v.symbolBars[symbol]

	n := sort.Search(len(bars), func(i int) bool {
		return bars[i].Date.After(v.referenceDate)
	})

	return bars[:n]
}

func (v *PointInTimeView) visibleLen() int {
	return sort.Search(len(v.bars), func(i int) bool {
		return v.bars[i].Date.After(v.referenceDate)
	})
}
