// Package strategy defines the contract between the backtest runner and a
// trading strategy. The engine ships no concrete strategies; callers implement
// Strategy (usually by embedding BaseStrategy) and hand it to the runner.
package strategy

import (
	"time"

	"github.com/rxtech-lab/pairbacktest/internal/datasource"
	"github.com/rxtech-lab/pairbacktest/internal/types"
)

// Strategy is implemented by trading strategies driven by the runner. OnBar is
// called once per trading date with a point-in-time view; returning a nil
// signal means no action. Any returned error aborts the run.
type Strategy interface {
	// Name returns the strategy name used in logs and results.
	Name() string

	// OnStart is called once before the first trading date.
	OnStart(start, end time.Time) error

	// OnBar is called for every trading date in order. The view's reference
	// date equals the current date; the strategy can only observe data at or
	// before it.
	OnBar(date time.Time, view *datasource.PointInTimeView) (types.Signal, error)

	// OnFill is called after each fill generated from this strategy's signals
	// is applied to the portfolio.
	OnFill(fill types.Fill)

	// OnEnd is called once after the last trading date, whether or not the
	// run completed all dates.
	OnEnd()
}

// BaseStrategy provides no-op lifecycle hooks for embedding, leaving only
// Name and OnBar for the strategy author to implement.
type BaseStrategy struct{}

func (s *BaseStrategy) OnStart(start, end time.Time) error {
	return nil
}

func (s *BaseStrategy) OnFill(fill types.Fill) {}

func (s *BaseStrategy) OnEnd() {}
