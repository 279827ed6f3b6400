package commission

import "math"

// PerShareCommission charges a fixed rate per share with a minimum fee and an
// optional maximum cap.
type PerShareCommission struct {
	RatePerShare  float64
	MinCommission float64
	// MaxCommission caps the fee; zero or negative disables the cap.
	MaxCommission float64
}

func NewPerShareCommission(ratePerShare, minCommission, maxCommission float64) CommissionModel {
	return &PerShareCommission{
		RatePerShare:  ratePerShare,
		MinCommission: minCommission,
		MaxCommission: maxCommission,
	}
}

func (c *PerShareCommission) Calculate(quantity float64, price float64) float64 {
	fee := c.RatePerShare * math.Abs(quantity)

	if fee < c.MinCommission {
		fee = c.MinCommission
	}

	if c.MaxCommission > 0 && fee > c.MaxCommission {
		fee = c.MaxCommission
	}

	return fee
}
