package commission

// CommissionModel computes the commission fee in USD for a single fill.
// Quantity may be signed; models charge on its absolute value.
type CommissionModel interface {
	// Calculate returns the commission fee for a fill of the given quantity
	// at the given price.
	Calculate(quantity float64, price float64) float64
}

type Model string

const (
	ModelZero       Model = "zero"
	ModelPerShare   Model = "per_share"
	ModelPercentage Model = "percentage"
	ModelTiered     Model = "tiered"
)

var AllModels = []any{
	ModelZero,
	ModelPerShare,
	ModelPercentage,
	ModelTiered,
}

// GetCommissionModel returns the commission model for the given name with its
// default parameters. Unknown names fall back to zero commission.
func GetCommissionModel(model Model) CommissionModel {
	switch model {
	case ModelZero:
		return NewZeroCommission()
	case ModelPerShare:
		return NewPerShareCommission(0.005, 1.0, 0)
	case ModelPercentage:
		return NewPercentageCommission(0.001, 0)
	case ModelTiered:
		return NewTieredCommission(DefaultTiers, 1.0)
	default:
		return NewZeroCommission()
	}
}
