package engine

import (
	"math"

	"github.com/rxtech-lab/pairbacktest/internal/types"
)

// TradingDaysPerYear is the annualization factor for daily data.
const TradingDaysPerYear = 252

// minEquityPoints is the minimum curve length for meaningful metrics.
const minEquityPoints = 2

// PerformanceAnalyzer computes summary metrics from a completed run. It is a
// pure function of the equity curve and round-trip log.
type PerformanceAnalyzer struct {
	riskFreeRate float64
}

func NewPerformanceAnalyzer(riskFreeRate float64) *PerformanceAnalyzer {
	return &PerformanceAnalyzer{
		riskFreeRate: riskFreeRate,
	}
}

// Analyze computes performance metrics. With fewer than two equity points all
// metrics are zero.
func (a *PerformanceAnalyzer) Analyze(initialCapital float64, equityCurve []types.EquityPoint, roundTrips []types.RoundTrip, totalCommission float64) types.PerformanceMetrics {
	metrics := types.PerformanceMetrics{
		TotalCommission: totalCommission,
	}

	a.analyzeRoundTrips(&metrics, roundTrips)

	if len(equityCurve) < minEquityPoints || initialCapital <= 0 {
		return metrics
	}

	final := equityCurve[len(equityCurve)-1].Equity
	metrics.TotalReturn = (final - initialCapital) / initialCapital

	days := len(equityCurve)
	metrics.AnnualizedReturn = math.Pow(1+metrics.TotalReturn, TradingDaysPerYear/float64(days)) - 1

	returns := dailyReturns(equityCurve)
	mean := meanOf(returns)
	std := sampleStd(returns, mean)

	metrics.Volatility = std * math.Sqrt(TradingDaysPerYear)

	// Sharpe is undefined on a flat return series; NaN keeps that visible
	// instead of masquerading as a zero-Sharpe strategy.
	dailyRiskFree := a.riskFreeRate / TradingDaysPerYear
	if std == 0 {
		metrics.SharpeRatio = math.NaN()
	} else {
		metrics.SharpeRatio = (mean - dailyRiskFree) / std * math.Sqrt(TradingDaysPerYear)
	}

	metrics.MaxDrawdown, metrics.MaxDrawdownDurationDays = maxDrawdown(equityCurve)

	return metrics
}

func (a *PerformanceAnalyzer) analyzeRoundTrips(metrics *types.PerformanceMetrics, roundTrips []types.RoundTrip) {
	metrics.NumRoundTrips = len(roundTrips)
	if len(roundTrips) == 0 {
		return
	}

	var grossProfit, grossLoss, holdingDays float64

	for i := range roundTrips {
		rt := &roundTrips[i]
		holdingDays += float64(rt.HoldingDays)

		if rt.IsWinner() {
			metrics.WinningRoundTrips++
			grossProfit += rt.RealizedPnL
		} else {
			metrics.LosingRoundTrips++
			grossLoss += -rt.RealizedPnL
		}
	}

	metrics.WinRate = float64(metrics.WinningRoundTrips) / float64(len(roundTrips))
	metrics.AvgHoldingDays = holdingDays / float64(len(roundTrips))

	switch {
	case grossLoss > 0:
		metrics.ProfitFactor = grossProfit / grossLoss
	case grossProfit > 0:
		metrics.ProfitFactor = math.Inf(1)
	default:
		metrics.ProfitFactor = 0
	}
}

func dailyReturns(equityCurve []types.EquityPoint) []float64 {
	returns := make([]float64, 0, len(equityCurve)-1)
	for i := 1; i < len(equityCurve); i++ {
		prev := equityCurve[i-1].Equity
		if prev == 0 {
			returns = append(returns, 0)

			continue
		}

		returns = append(returns, equityCurve[i].Equity/prev-1)
	}

	return returns
}

func meanOf(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}

	var sum float64
	for _, v := range values {
		sum += v
	}

	return sum / float64(len(values))
}

// sampleStd returns the sample standard deviation (n-1 denominator).
func sampleStd(values []float64, mean float64) float64 {
	if len(values) < 2 {
		return 0
	}

	var sum float64
	for _, v := range values {
		d := v - mean
		sum += d * d
	}

	return math.Sqrt(sum / float64(len(values)-1))
}

// maxDrawdown returns the deepest peak-to-trough decline and the longest time
// spent below a prior peak in calendar days.
func maxDrawdown(equityCurve []types.EquityPoint) (float64, int) {
	var maxDD float64
	var maxDuration int

	peak := equityCurve[0].Equity
	peakDate := equityCurve[0].Date

	for _, point := range equityCurve[1:] {
		if point.Equity >= peak {
			peak = point.Equity
			peakDate = point.Date

			continue
		}

		if peak > 0 {
			dd := (peak - point.Equity) / peak
			if dd > maxDD {
				maxDD = dd
			}
		}

		duration := int(point.Date.Sub(peakDate).Hours() / 24)
		if duration > maxDuration {
			maxDuration = duration
		}
	}

	return maxDD, maxDuration
}
