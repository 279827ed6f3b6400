package types

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestWritePerformanceMetrics(t *testing.T) {
	dir, err := os.MkdirTemp("", "metrics-test")
	require.NoError(t, err)
	defer os.RemoveAll(dir)

	metrics := PerformanceMetrics{
		TotalReturn:             0.125,
		AnnualizedReturn:        0.30,
		SharpeRatio:             1.8,
		MaxDrawdown:             0.07,
		MaxDrawdownDurationDays: 12,
		Volatility:              0.15,
		WinRate:                 0.6,
		ProfitFactor:            2.5,
		NumRoundTrips:           10,
		WinningRoundTrips:       6,
		LosingRoundTrips:        4,
		AvgHoldingDays:          5.5,
		TotalCommission:         42.0,
	}

	path := filepath.Join(dir, "metrics.yaml")
	require.NoError(t, WritePerformanceMetrics(path, metrics))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var loaded PerformanceMetrics
	require.NoError(t, yaml.Unmarshal(data, &loaded))

	assert.Equal(t, metrics, loaded)
}

func TestWritePerformanceMetricsBadPath(t *testing.T) {
	err := WritePerformanceMetrics("/nonexistent/dir/metrics.yaml", PerformanceMetrics{})
	assert.Error(t, err)
}
