package engine

import (
	"time"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/pairbacktest/internal/datasource"
	"github.com/rxtech-lab/pairbacktest/internal/logger"
	"github.com/rxtech-lab/pairbacktest/internal/strategy"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
	"go.uber.org/zap"
)

// OnDayCallback is invoked after each simulated day, for progress reporting.
type OnDayCallback func(dayIndex int, totalDays int, date time.Time)

// Runner drives the daily simulation loop: advance the view, ask the strategy
// for a signal, translate it into fills, apply them, then mark to market.
type Runner struct {
	config    BacktestConfig
	strategy  strategy.Strategy
	processor *SignalProcessor
	execution ExecutionModel
	log       *logger.Logger
}

// NewRunner builds a Runner. The config is validated (and defaulted) here so
// a Runner always holds a usable config.
func NewRunner(config BacktestConfig, strat strategy.Strategy, execution ExecutionModel, log *logger.Logger) (*Runner, error) {
	if strat == nil {
		return nil, errors.New(errors.ErrCodeStrategyNotSet, "runner requires a strategy")
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &Runner{
		config:    config,
		strategy:  strat,
		processor: NewSignalProcessor(config),
		execution: execution,
		log:       log,
	}, nil
}

// Run executes the backtest over the view's data and returns the result. The
// optional callback fires once per simulated day.
func (r *Runner) Run(view *datasource.PointInTimeView, onDay optional.Option[OnDayCallback]) (*BacktestResult, error) {
	start, end := r.period(view)

	dates := view.TradingDates(start, end)
	if len(dates) == 0 {
		return nil, errors.Newf(errors.ErrCodeBacktestNoDates,
			"no trading dates between %s and %s",
			start.Format(time.DateOnly), end.Format(time.DateOnly))
	}

	r.log.Info("starting backtest",
		zap.String("strategy", r.strategy.Name()),
		zap.Time("start", dates[0]),
		zap.Time("end", dates[len(dates)-1]),
		zap.Int("trading_days", len(dates)),
	)

	portfolio := NewPortfolio(r.config.InitialCapital, r.config.PriceField)

	if err := r.strategy.OnStart(dates[0], dates[len(dates)-1]); err != nil {
		return nil, errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err,
			"strategy %s failed to start", r.strategy.Name())
	}

	defer r.strategy.OnEnd()

	current := view

	for i, date := range dates {
		var err error

		current, err = current.AdvanceTo(date)
		if err != nil {
			// The schedule is sorted, so a backward advance is a bug in the
			// runner itself rather than bad input.
			return nil, errors.Wrapf(errors.ErrCodeBacktestAborted, err,
				"internal date ordering violation at %s", date.Format(time.DateOnly))
		}

		if err := r.step(date, current, portfolio); err != nil {
			return nil, errors.Wrapf(errors.ErrCodeBacktestAborted, err,
				"backtest aborted on %s", date.Format(time.DateOnly))
		}

		if callback, cbErr := onDay.Take(); cbErr == nil && callback != nil {
			callback(i, len(dates), date)
		}
	}

	result := r.buildResult(portfolio, dates)

	r.log.Info("backtest complete",
		zap.String("strategy", r.strategy.Name()),
		zap.Float64("final_equity", result.FinalEquity()),
		zap.Int("fills", len(result.Fills)),
		zap.Int("round_trips", len(result.RoundTrips)),
	)

	return result, nil
}

func (r *Runner) step(date time.Time, view *datasource.PointInTimeView, portfolio *Portfolio) error {
	signal, err := r.strategy.OnBar(date, view)
	if err != nil {
		return errors.Wrapf(errors.ErrCodeStrategyRuntimeError, err,
			"strategy %s failed", r.strategy.Name())
	}

	deltas, err := r.processor.Process(signal, portfolio, view, date)
	if err != nil {
		return err
	}

	for _, delta := range deltas {
		bar, takeErr := view.GetLatest(delta.Symbol).Take()
		if takeErr != nil || !bar.Date.Equal(date) {
			return errors.NewMissingPriceError(delta.Symbol, date)
		}

		fill, fillErr := r.execution.Fill(delta, bar, date)
		if fillErr != nil {
			return fillErr
		}

		if applyErr := portfolio.ApplyFill(fill); applyErr != nil {
			return applyErr
		}

		r.strategy.OnFill(fill)

		r.log.Debug("fill applied",
			zap.String("symbol", fill.Symbol),
			zap.Float64("quantity", fill.Quantity),
			zap.Float64("price", fill.Price),
			zap.String("pair_id", fill.PairID),
		)
	}

	return portfolio.MarkToMarket(date, view)
}

// period resolves the simulation window from the config, falling back to the
// data's own bounds for unset ends.
func (r *Runner) period(view *datasource.PointInTimeView) (time.Time, time.Time) {
	start := time.Time{}
	end := time.Date(9999, 12, 31, 0, 0, 0, 0, time.UTC)

	if s, err := r.config.StartTime.Take(); err == nil {
		start = s
	}

	if e, err := r.config.EndTime.Take(); err == nil {
		end = e
	}

	return start, end
}

func (r *Runner) buildResult(portfolio *Portfolio, dates []time.Time) *BacktestResult {
	analyzer := NewPerformanceAnalyzer(r.config.RiskFreeRate)

	return &BacktestResult{
		StrategyName: r.strategy.Name(),
		Config:       r.config,
		StartDate:    dates[0],
		EndDate:      dates[len(dates)-1],
		Fills:        portfolio.Fills(),
		RoundTrips:   portfolio.RoundTrips(),
		EquityCurve:  portfolio.EquityCurve(),
		Metrics: analyzer.Analyze(
			r.config.InitialCapital,
			portfolio.EquityCurve(),
			portfolio.RoundTrips(),
			portfolio.TotalCommission(),
		),
	}
}
