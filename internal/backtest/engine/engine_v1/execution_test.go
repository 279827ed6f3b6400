package engine

import (
	"testing"

	"github.com/rxtech-lab/pairbacktest/internal/backtest/engine/engine_v1/commission"
	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/stretchr/testify/suite"
)

type ExecutionTestSuite struct {
	suite.Suite
}

func TestExecutionSuite(t *testing.T) {
	suite.Run(t, new(ExecutionTestSuite))
}

func (suite *ExecutionTestSuite) TestFillAtClose() {
	execution := NewClosePriceExecution(types.PriceFieldClose, commission.NewZeroCommission())

	bar := types.PriceBar{
		Symbol: "KO", Date: day(2),
		Open: 59, High: 61, Low: 58, Close: 60, AdjClose: 59.5, Volume: 1000,
	}

	result, err := execution.Fill(TargetDelta{Symbol: "KO", Quantity: 100, PairID: "p"}, bar, day(2))
	suite.Require().NoError(err)

	suite.NotEmpty(result.ID)
	suite.Equal("KO", result.Symbol)
	suite.Equal(100.0, result.Quantity)
	suite.Equal(60.0, result.Price)
	suite.Equal(0.0, result.Commission)
	suite.Equal("p", result.PairID)
}

func (suite *ExecutionTestSuite) TestFillAtAdjustedClose() {
	execution := NewClosePriceExecution(types.PriceFieldAdjustedClose, commission.NewZeroCommission())

	bar := types.PriceBar{
		Symbol: "KO", Date: day(2),
		Open: 59, High: 61, Low: 58, Close: 60, AdjClose: 59.5, Volume: 1000,
	}

	result, err := execution.Fill(TargetDelta{Symbol: "KO", Quantity: -100}, bar, day(2))
	suite.Require().NoError(err)
	suite.Equal(59.5, result.Price)
}

func (suite *ExecutionTestSuite) TestFillCommission() {
	execution := NewClosePriceExecution(types.PriceFieldClose,
		commission.NewPerShareCommission(0.005, 1.0, 0))

	bar := barAt("KO", day(2), 60.0)

	result, err := execution.Fill(TargetDelta{Symbol: "KO", Quantity: 1000}, bar, day(2))
	suite.Require().NoError(err)
	suite.Equal(5.0, result.Commission)
}

func (suite *ExecutionTestSuite) TestFillIDsAreDeterministic() {
	bar := barAt("KO", day(2), 60.0)
	delta := TargetDelta{Symbol: "KO", Quantity: 100, PairID: "p"}

	first, err := NewClosePriceExecution(types.PriceFieldClose, commission.NewZeroCommission()).
		Fill(delta, bar, day(2))
	suite.Require().NoError(err)

	second, err := NewClosePriceExecution(types.PriceFieldClose, commission.NewZeroCommission()).
		Fill(delta, bar, day(2))
	suite.Require().NoError(err)

	suite.Equal(first, second)

	// A different symbol or date yields a different id.
	other, err := NewClosePriceExecution(types.PriceFieldClose, commission.NewZeroCommission()).
		Fill(delta, barAt("KO", day(3), 60.0), day(3))
	suite.Require().NoError(err)
	suite.NotEqual(first.ID, other.ID)
}

func (suite *ExecutionTestSuite) TestFillRejectsNonPositivePrice() {
	execution := NewClosePriceExecution(types.PriceFieldAdjustedClose, commission.NewZeroCommission())

	// Raw close is fine but the adjusted close is missing.
	bar := types.PriceBar{
		Symbol: "KO", Date: day(2),
		Open: 59, High: 61, Low: 58, Close: 60, AdjClose: 0, Volume: 1000,
	}

	_, err := execution.Fill(TargetDelta{Symbol: "KO", Quantity: 100}, bar, day(2))
	suite.Require().Error(err)
}
