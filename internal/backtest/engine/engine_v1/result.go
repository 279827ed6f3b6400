package engine

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/rxtech-lab/pairbacktest/internal/types"
)

// BacktestResult is the immutable outcome of one run.
type BacktestResult struct {
	StrategyName string
	Config       BacktestConfig
	StartDate    time.Time
	EndDate      time.Time

	Fills       []types.Fill
	RoundTrips  []types.RoundTrip
	EquityCurve []types.EquityPoint
	Metrics     types.PerformanceMetrics
}

// FinalEquity returns the last equity point, or the initial capital when the
// run produced no equity curve.
func (r *BacktestResult) FinalEquity() float64 {
	if len(r.EquityCurve) == 0 {
		return r.Config.InitialCapital
	}

	return r.EquityCurve[len(r.EquityCurve)-1].Equity
}

// DailyReturns returns the simple daily return series of the equity curve.
func (r *BacktestResult) DailyReturns() []float64 {
	if len(r.EquityCurve) < 2 {
		return nil
	}

	return dailyReturns(r.EquityCurve)
}

// CumulativeReturns returns the equity curve rebased to the initial capital,
// one value per equity point.
func (r *BacktestResult) CumulativeReturns() []float64 {
	if len(r.EquityCurve) == 0 || r.Config.InitialCapital == 0 {
		return nil
	}

	cumulative := make([]float64, len(r.EquityCurve))
	for i, point := range r.EquityCurve {
		cumulative[i] = point.Equity/r.Config.InitialCapital - 1
	}

	return cumulative
}

// Summary renders a human-readable report of the run.
func (r *BacktestResult) Summary() string {
	var b strings.Builder

	line := strings.Repeat("=", 50)

	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Backtest Summary: %s\n", r.StrategyName)
	fmt.Fprintln(&b, line)
	fmt.Fprintf(&b, "Period:               %s to %s\n",
		r.StartDate.Format(time.DateOnly), r.EndDate.Format(time.DateOnly))
	fmt.Fprintf(&b, "Initial capital:      %.2f\n", r.Config.InitialCapital)
	fmt.Fprintf(&b, "Final equity:         %.2f\n", r.FinalEquity())
	fmt.Fprintln(&b, strings.Repeat("-", 50))
	fmt.Fprintf(&b, "Total return:         %.2f%%\n", r.Metrics.TotalReturn*100)
	fmt.Fprintf(&b, "Annualized return:    %.2f%%\n", r.Metrics.AnnualizedReturn*100)
	fmt.Fprintf(&b, "Sharpe ratio:         %s\n", formatSharpe(r.Metrics.SharpeRatio))
	fmt.Fprintf(&b, "Annualized vol:       %.2f%%\n", r.Metrics.Volatility*100)
	fmt.Fprintf(&b, "Max drawdown:         %.2f%%\n", r.Metrics.MaxDrawdown*100)
	fmt.Fprintf(&b, "Max drawdown length:  %d days\n", r.Metrics.MaxDrawdownDurationDays)
	fmt.Fprintln(&b, strings.Repeat("-", 50))
	fmt.Fprintf(&b, "Round trips:          %d (%d won / %d lost)\n",
		r.Metrics.NumRoundTrips, r.Metrics.WinningRoundTrips, r.Metrics.LosingRoundTrips)
	fmt.Fprintf(&b, "Win rate:             %.2f%%\n", r.Metrics.WinRate*100)
	fmt.Fprintf(&b, "Profit factor:        %s\n", formatProfitFactor(r.Metrics.ProfitFactor))
	fmt.Fprintf(&b, "Avg holding days:     %.1f\n", r.Metrics.AvgHoldingDays)
	fmt.Fprintf(&b, "Total commission:     %.2f\n", r.Metrics.TotalCommission)
	fmt.Fprintln(&b, line)

	return b.String()
}

func formatSharpe(sharpe float64) string {
	if math.IsNaN(sharpe) {
		return "n/a (flat returns)"
	}

	return fmt.Sprintf("%.2f", sharpe)
}

func formatProfitFactor(pf float64) string {
	if math.IsInf(pf, 1) {
		return "inf (no losers)"
	}

	return fmt.Sprintf("%.2f", pf)
}
