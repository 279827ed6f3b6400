package engine

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rxtech-lab/pairbacktest/internal/backtest/engine/engine_v1/commission"
	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

// ExecutionModel converts a target delta into an executed fill.
type ExecutionModel interface {
	// Fill executes the full delta quantity against the given bar and returns
	// the resulting fill.
	Fill(delta TargetDelta, bar types.PriceBar, date time.Time) (types.Fill, error)
}

// ClosePriceExecution fills the entire delta at the bar's closing price, raw
// or adjusted per the configured price field. There is no partial-fill or
// slippage modeling; commission comes from the configured model.
type ClosePriceExecution struct {
	priceField types.PriceField
	commission commission.CommissionModel
}

func NewClosePriceExecution(priceField types.PriceField, model commission.CommissionModel) *ClosePriceExecution {
	return &ClosePriceExecution{
		priceField: priceField,
		commission: model,
	}
}

// Fill implements ExecutionModel.
func (e *ClosePriceExecution) Fill(delta TargetDelta, bar types.PriceBar, date time.Time) (types.Fill, error) {
	price := bar.Price(e.priceField)
	if price <= 0 {
		return types.Fill{}, errors.Newf(errors.ErrCodeFillFailed,
			"non-positive execution price %f for %s on %s",
			price, delta.Symbol, date.Format(time.DateOnly))
	}

	fill := types.Fill{
		ID:         fillID(delta.Symbol, date),
		Symbol:     delta.Symbol,
		Date:       date,
		Quantity:   delta.Quantity,
		Price:      price,
		Commission: e.commission.Calculate(delta.Quantity, price),
		PairID:     delta.PairID,
	}

	if err := fill.Validate(); err != nil {
		return types.Fill{}, errors.Wrapf(errors.ErrCodeFillFailed, err,
			"generated an invalid fill for %s", delta.Symbol)
	}

	return fill, nil
}

// fillID derives a content-addressed fill id. A run produces at most one fill
// per symbol per day, so (symbol, date) identifies a fill and identical runs
// yield identical ids.
func fillID(symbol string, date time.Time) string {
	name := fmt.Sprintf("%s|%s", symbol, date.Format(time.DateOnly))

	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(name)).String()
}
