package commission

import (
	"math"
	"testing"

	"github.com/stretchr/testify/suite"
)

type CommissionTestSuite struct {
	suite.Suite
}

func TestCommissionSuite(t *testing.T) {
	suite.Run(t, new(CommissionTestSuite))
}

func (suite *CommissionTestSuite) TestZeroCommission() {
	model := NewZeroCommission()
	suite.NotNil(model)

	tests := []struct {
		name     string
		quantity float64
		price    float64
		expected float64
	}{
		{"zero quantity", 0, 50.0, 0},
		{"small quantity", 10, 50.0, 0},
		{"large quantity", 10000, 50.0, 0},
		{"negative quantity", -100, 50.0, 0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, model.Calculate(tc.quantity, tc.price))
		})
	}
}

func (suite *CommissionTestSuite) TestPerShareCommission() {
	model := NewPerShareCommission(0.005, 1.0, 0)

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"small quantity - min fee", 10, 1.0},     // 0.005 * 10 = 0.05 < 1.0
		{"quantity at threshold", 200, 1.0},       // 0.005 * 200 = 1.0
		{"large quantity", 1000, 5.0},             // 0.005 * 1000 = 5.0
		{"negative quantity charged on abs", -1000, 5.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, model.Calculate(tc.quantity, 50.0))
		})
	}
}

func (suite *CommissionTestSuite) TestPerShareCommissionMaxCap() {
	model := NewPerShareCommission(0.005, 1.0, 10.0)

	suite.Equal(10.0, model.Calculate(10000, 50.0)) // uncapped would be 50.0
	suite.Equal(5.0, model.Calculate(1000, 50.0))   // below the cap
}

func (suite *CommissionTestSuite) TestPercentageCommission() {
	model := NewPercentageCommission(0.001, 1.0)

	tests := []struct {
		name     string
		quantity float64
		price    float64
		expected float64
	}{
		{"min fee applies", 10, 50.0, 1.0},       // 0.001 * 500 = 0.5 < 1.0
		{"above min", 100, 50.0, 5.0},            // 0.001 * 5000 = 5.0
		{"short fill charged on abs", -100, 50.0, 5.0},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.Equal(tc.expected, model.Calculate(tc.quantity, tc.price))
		})
	}
}

func (suite *CommissionTestSuite) TestTieredCommission() {
	model := NewTieredCommission(DefaultTiers, 1.0)

	tests := []struct {
		name     string
		quantity float64
		expected float64
	}{
		{"first tier", 100, 1.0},            // 0.0085 * 100 = 0.85 < min 1.0
		{"first tier above min", 300, 2.55}, // 0.0085 * 300
		{"second tier", 1000, 6.5},          // 0.0065 * 1000
		{"third tier", 10000, 45.0},         // 0.0045 * 10000
		{"catch-all tier", 50000, 175.0},    // 0.0035 * 50000
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			suite.InDelta(tc.expected, model.Calculate(tc.quantity, 50.0), 1e-9)
		})
	}
}

func (suite *CommissionTestSuite) TestTieredCommissionEmptyTable() {
	model := NewTieredCommission(nil, 1.5)
	suite.Equal(1.5, model.Calculate(1000, 50.0))
}

func (suite *CommissionTestSuite) TestGetCommissionModel() {
	tests := []struct {
		name           string
		model          Model
		testQuantity   float64
		testPrice      float64
		expectedResult float64
	}{
		{
			name:           "zero",
			model:          ModelZero,
			testQuantity:   1000,
			testPrice:      50.0,
			expectedResult: 0.0,
		},
		{
			name:           "per share",
			model:          ModelPerShare,
			testQuantity:   1000,
			testPrice:      50.0,
			expectedResult: 5.0,
		},
		{
			name:           "percentage",
			model:          ModelPercentage,
			testQuantity:   1000,
			testPrice:      50.0,
			expectedResult: 50.0,
		},
		{
			name:           "unknown model defaults to zero",
			model:          Model("unknown"),
			testQuantity:   1000,
			testPrice:      50.0,
			expectedResult: 0.0,
		},
	}

	for _, tc := range tests {
		suite.Run(tc.name, func() {
			handler := GetCommissionModel(tc.model)
			suite.NotNil(handler)
			suite.Equal(tc.expectedResult, handler.Calculate(tc.testQuantity, tc.testPrice))
		})
	}
}

func (suite *CommissionTestSuite) TestAllModels() {
	suite.Len(AllModels, 4)
	suite.Contains(AllModels, ModelZero)
	suite.Contains(AllModels, ModelPerShare)
	suite.Contains(AllModels, ModelPercentage)
	suite.Contains(AllModels, ModelTiered)
}

func (suite *CommissionTestSuite) TestDefaultTiersOrdered() {
	for i := 1; i < len(DefaultTiers); i++ {
		suite.True(DefaultTiers[i-1].UpToQuantity < DefaultTiers[i].UpToQuantity)
	}

	suite.True(math.IsInf(DefaultTiers[len(DefaultTiers)-1].UpToQuantity, 1))
}
