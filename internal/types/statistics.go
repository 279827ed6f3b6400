package types

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// PerformanceMetrics summarizes a completed backtest run. Derived read-only
// from the equity curve and round-trip log.
type PerformanceMetrics struct {
	// Total return as a decimal (0.10 = 10%).
	TotalReturn float64 `yaml:"total_return"`
	// Annualized return as a decimal.
	AnnualizedReturn float64 `yaml:"annualized_return"`
	// Annualized Sharpe ratio. NaN when daily return variance is zero.
	SharpeRatio float64 `yaml:"sharpe_ratio"`
	// Largest peak-to-trough decline as a decimal (0.20 = 20%).
	MaxDrawdown float64 `yaml:"max_drawdown"`
	// Calendar days spent in the longest drawdown.
	MaxDrawdownDurationDays int `yaml:"max_drawdown_duration_days"`
	// Annualized volatility of daily returns.
	Volatility float64 `yaml:"volatility"`
	// Fraction of winning round trips in [0, 1].
	WinRate float64 `yaml:"win_rate"`
	// Gross profit divided by gross loss. +Inf with winners and no losers.
	ProfitFactor float64 `yaml:"profit_factor"`
	// Count of completed round trips.
	NumRoundTrips int `yaml:"num_round_trips"`
	// Counts of profitable and losing round trips.
	WinningRoundTrips int `yaml:"winning_round_trips"`
	LosingRoundTrips  int `yaml:"losing_round_trips"`
	// Average holding period across round trips in calendar days.
	AvgHoldingDays float64 `yaml:"avg_holding_days"`
	// Total commission paid across all fills.
	TotalCommission float64 `yaml:"total_commission"`
}

// WritePerformanceMetrics writes metrics to a YAML file.
func WritePerformanceMetrics(path string, metrics PerformanceMetrics) error {
	data, err := yaml.Marshal(metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal performance metrics to YAML: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write performance metrics to file: %w", err)
	}

	return nil
}
