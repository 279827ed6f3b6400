package commission

import "math"

// PercentageCommission charges a fraction of the trade notional with a
// minimum fee.
type PercentageCommission struct {
	Rate          float64
	MinCommission float64
}

func NewPercentageCommission(rate, minCommission float64) CommissionModel {
	return &PercentageCommission{
		Rate:          rate,
		MinCommission: minCommission,
	}
}

func (c *PercentageCommission) Calculate(quantity float64, price float64) float64 {
	fee := c.Rate * math.Abs(quantity) * price

	if fee < c.MinCommission {
		fee = c.MinCommission
	}

	return fee
}
