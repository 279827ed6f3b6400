package engine

import (
	"testing"

	"github.com/rxtech-lab/pairbacktest/internal/datasource"
	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
	"github.com/stretchr/testify/suite"
)

type SignalProcessorTestSuite struct {
	suite.Suite
	config    BacktestConfig
	processor *SignalProcessor
	portfolio *Portfolio
	view      *datasource.PointInTimeView
}

func TestSignalProcessorSuite(t *testing.T) {
	suite.Run(t, new(SignalProcessorTestSuite))
}

func (suite *SignalProcessorTestSuite) SetupTest() {
	suite.config = EmptyConfig()
	suite.config.PriceField = types.PriceFieldClose
	suite.Require().NoError(suite.config.Validate())

	suite.processor = NewSignalProcessor(suite.config)
	suite.portfolio = NewPortfolio(suite.config.InitialCapital, suite.config.PriceField)

	bars := []types.PriceBar{
		barAt("KO", day(2), 50.0),
		barAt("PEP", day(2), 100.0),
	}

	view, err := datasource.NewPointInTimeView(bars, day(2))
	suite.Require().NoError(err)
	suite.view = view
}

func (suite *SignalProcessorTestSuite) TestNilSignalProducesNothing() {
	deltas, err := suite.processor.Process(nil, suite.portfolio, suite.view, day(2))
	suite.NoError(err)
	suite.Empty(deltas)
}

func (suite *SignalProcessorTestSuite) TestOpenPairSizing() {
	signal := types.PairSignal{
		Kind:        types.SignalKindOpenPair,
		LongSymbol:  "KO",
		ShortSymbol: "PEP",
		HedgeRatio:  1.0,
	}

	deltas, err := suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.Require().NoError(err)
	suite.Require().Len(deltas, 2)

	// capital_per_pair 10000, hedge 1.0: 5000 notional per leg.
	suite.Equal("KO", deltas[0].Symbol)
	suite.InDelta(100.0, deltas[0].Quantity, 1e-9) // 5000 / 50
	suite.Equal("PEP", deltas[1].Symbol)
	suite.InDelta(-50.0, deltas[1].Quantity, 1e-9) // -5000 / 100

	suite.Equal("KO_PEP", deltas[0].PairID)
	suite.Equal("KO_PEP", deltas[1].PairID)
}

func (suite *SignalProcessorTestSuite) TestOpenPairHedgeRatioSplitsNotional() {
	signal := types.PairSignal{
		Kind:        types.SignalKindOpenPair,
		LongSymbol:  "KO",
		ShortSymbol: "PEP",
		HedgeRatio:  0.6,
	}

	deltas, err := suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.Require().NoError(err)
	suite.Require().Len(deltas, 2)

	// long notional = 10000 / 1.6 = 6250; short = 6250 * 0.6 = 3750.
	suite.InDelta(125.0, deltas[0].Quantity, 1e-9)  // 6250 / 50
	suite.InDelta(-37.5, deltas[1].Quantity, 1e-9)  // -3750 / 100
}

func (suite *SignalProcessorTestSuite) TestClosePairFlattensBothLegs() {
	suite.Require().NoError(suite.portfolio.ApplyFill(fill("KO", day(2), 100, 50.0, 0)))
	suite.Require().NoError(suite.portfolio.ApplyFill(fill("PEP", day(2), -50, 100.0, 0)))

	signal := types.PairSignal{
		Kind:        types.SignalKindClosePair,
		LongSymbol:  "KO",
		ShortSymbol: "PEP",
		HedgeRatio:  1.0,
	}

	deltas, err := suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.Require().NoError(err)
	suite.Require().Len(deltas, 2)

	suite.Equal("KO", deltas[0].Symbol)
	suite.InDelta(-100.0, deltas[0].Quantity, 1e-9)
	suite.Equal("PEP", deltas[1].Symbol)
	suite.InDelta(50.0, deltas[1].Quantity, 1e-9)
}

func (suite *SignalProcessorTestSuite) TestClosePairWithNoPositionsIsEmpty() {
	signal := types.PairSignal{
		Kind:        types.SignalKindClosePair,
		LongSymbol:  "KO",
		ShortSymbol: "PEP",
		HedgeRatio:  1.0,
	}

	deltas, err := suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.NoError(err)
	suite.Empty(deltas)
}

func (suite *SignalProcessorTestSuite) TestInvalidSignalRejected() {
	signal := types.PairSignal{
		Kind:        types.SignalKindOpenPair,
		LongSymbol:  "KO",
		ShortSymbol: "KO",
		HedgeRatio:  1.0,
	}

	_, err := suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.Require().Error(err)
	suite.True(errors.IsInvalidSignalError(err))
}

func (suite *SignalProcessorTestSuite) TestOpenPairMissingPrice() {
	signal := types.PairSignal{
		Kind:        types.SignalKindOpenPair,
		LongSymbol:  "KO",
		ShortSymbol: "XOM",
		HedgeRatio:  1.0,
	}

	_, err := suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.Require().Error(err)
	suite.True(errors.IsMissingPriceError(err))
}

func (suite *SignalProcessorTestSuite) TestWeightSignalTargets() {
	signal := types.WeightSignal{
		Weights:   map[string]float64{"KO": 0.5, "PEP": -0.5},
		Rebalance: true,
	}

	deltas, err := suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.Require().NoError(err)
	suite.Require().Len(deltas, 2)

	// equity 100000: 50000 long KO at 50, 50000 short PEP at 100.
	suite.Equal("KO", deltas[0].Symbol)
	suite.InDelta(1000.0, deltas[0].Quantity, 1e-9)
	suite.Equal("PEP", deltas[1].Symbol)
	suite.InDelta(-500.0, deltas[1].Quantity, 1e-9)
}

func (suite *SignalProcessorTestSuite) TestWeightSignalDeltasAgainstExistingPosition() {
	suite.Require().NoError(suite.portfolio.ApplyFill(fill("KO", day(2), 400, 50.0, 0)))

	signal := types.WeightSignal{
		Weights:   map[string]float64{"KO": 0.5},
		Rebalance: true,
	}

	deltas, err := suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.Require().NoError(err)
	suite.Require().Len(deltas, 1)

	// target 50000 / 50 = 1000 shares, minus the 400 held.
	suite.InDelta(600.0, deltas[0].Quantity, 1e-9)
}

func (suite *SignalProcessorTestSuite) TestWeightSignalToleranceSkipsSmallDrift() {
	// 0.5 weight of 100000 equity is 1000 shares at 50.
	suite.Require().NoError(suite.portfolio.ApplyFill(fill("KO", day(2), 995, 50.0, 0)))

	signal := types.WeightSignal{
		Weights:   map[string]float64{"KO": 0.5},
		Rebalance: false,
	}

	// Current weight 0.4975 is within the 0.01 band of 0.5.
	deltas, err := suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.NoError(err)
	suite.Empty(deltas)

	// With rebalancing forced, the drift is traded away.
	signal.Rebalance = true
	deltas, err = suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.Require().NoError(err)
	suite.Require().Len(deltas, 1)
	suite.InDelta(5.0, deltas[0].Quantity, 1e-9)
}

func (suite *SignalProcessorTestSuite) TestWeightSignalSortedOutput() {
	signal := types.WeightSignal{
		Weights:   map[string]float64{"PEP": -0.3, "KO": 0.3},
		Rebalance: true,
	}

	deltas, err := suite.processor.Process(signal, suite.portfolio, suite.view, day(2))
	suite.Require().NoError(err)
	suite.Require().Len(deltas, 2)
	suite.Equal("KO", deltas[0].Symbol)
	suite.Equal("PEP", deltas[1].Symbol)
}
