package commission

import "math"

// Tier is one bracket of a tiered schedule: the per-share rate applied when
// the fill quantity is at most UpToQuantity.
type Tier struct {
	// UpToQuantity is the inclusive upper bound of this bracket. The last
	// tier's bound is ignored and acts as a catch-all.
	UpToQuantity float64
	RatePerShare float64
}

// DefaultTiers is a volume-discount schedule: rates drop as fills get larger.
var DefaultTiers = []Tier{
	{UpToQuantity: 300, RatePerShare: 0.0085},
	{UpToQuantity: 3000, RatePerShare: 0.0065},
	{UpToQuantity: 20000, RatePerShare: 0.0045},
	{UpToQuantity: math.Inf(1), RatePerShare: 0.0035},
}

// TieredCommission charges a per-share rate selected by fill size from an
// ordered bracket table. Tiers must be sorted by ascending UpToQuantity.
type TieredCommission struct {
	Tiers         []Tier
	MinCommission float64
}

func NewTieredCommission(tiers []Tier, minCommission float64) CommissionModel {
	return &TieredCommission{
		Tiers:         tiers,
		MinCommission: minCommission,
	}
}

func (c *TieredCommission) Calculate(quantity float64, price float64) float64 {
	shares := math.Abs(quantity)
	if len(c.Tiers) == 0 {
		return c.MinCommission
	}

	rate := c.Tiers[len(c.Tiers)-1].RatePerShare
	for _, tier := range c.Tiers {
		if shares <= tier.UpToQuantity {
			rate = tier.RatePerShare

			break
		}
	}

	fee := rate * shares
	if fee < c.MinCommission {
		fee = c.MinCommission
	}

	return fee
}
