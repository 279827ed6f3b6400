package commission

type ZeroCommission struct {
}

func NewZeroCommission() CommissionModel {
	return &ZeroCommission{}
}

func (c *ZeroCommission) Calculate(quantity float64, price float64) float64 {
	return 0
}
