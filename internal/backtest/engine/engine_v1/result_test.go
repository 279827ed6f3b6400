package engine

import (
	"math"
	"testing"

	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/stretchr/testify/suite"
)

type ResultTestSuite struct {
	suite.Suite
	result *BacktestResult
}

func TestResultSuite(t *testing.T) {
	suite.Run(t, new(ResultTestSuite))
}

func (suite *ResultTestSuite) SetupTest() {
	config := EmptyConfig()

	suite.result = &BacktestResult{
		StrategyName: "scripted",
		Config:       config,
		StartDate:    day(2),
		EndDate:      day(4),
		EquityCurve: []types.EquityPoint{
			{Date: day(2), Equity: 100_000},
			{Date: day(3), Equity: 101_000},
			{Date: day(4), Equity: 100_500},
		},
		Metrics: types.PerformanceMetrics{
			TotalReturn:  0.005,
			SharpeRatio:  1.23,
			ProfitFactor: 2.0,
		},
	}
}

func (suite *ResultTestSuite) TestFinalEquity() {
	suite.Equal(100_500.0, suite.result.FinalEquity())

	empty := &BacktestResult{Config: EmptyConfig()}
	suite.Equal(DefaultInitialCapital, empty.FinalEquity())
}

func (suite *ResultTestSuite) TestDailyReturns() {
	returns := suite.result.DailyReturns()
	suite.Require().Len(returns, 2)
	suite.InDelta(0.01, returns[0], 1e-9)
	suite.InDelta(-0.004950495, returns[1], 1e-9)

	empty := &BacktestResult{}
	suite.Nil(empty.DailyReturns())
}

func (suite *ResultTestSuite) TestCumulativeReturns() {
	cumulative := suite.result.CumulativeReturns()
	suite.Require().Len(cumulative, 3)
	suite.InDelta(0.0, cumulative[0], 1e-9)
	suite.InDelta(0.01, cumulative[1], 1e-9)
	suite.InDelta(0.005, cumulative[2], 1e-9)
}

func (suite *ResultTestSuite) TestSummaryContents() {
	summary := suite.result.Summary()

	suite.Contains(summary, "Backtest Summary: scripted")
	suite.Contains(summary, "2024-01-02 to 2024-01-04")
	suite.Contains(summary, "Initial capital:      100000.00")
	suite.Contains(summary, "Final equity:         100500.00")
	suite.Contains(summary, "Total return:         0.50%")
	suite.Contains(summary, "Sharpe ratio:         1.23")
	suite.Contains(summary, "Profit factor:        2.00")
}

func (suite *ResultTestSuite) TestSummaryHandlesNaNSharpe() {
	suite.result.Metrics.SharpeRatio = math.NaN()

	suite.Contains(suite.result.Summary(), "n/a (flat returns)")
}

func (suite *ResultTestSuite) TestSummaryHandlesInfiniteProfitFactor() {
	suite.result.Metrics.ProfitFactor = math.Inf(1)

	suite.Contains(suite.result.Summary(), "inf (no losers)")
}
