package types

import (
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

// PriceField selects which closing price column is used for execution and
// mark-to-market.
type PriceField string

const (
	PriceFieldClose         PriceField = "close"
	PriceFieldAdjustedClose PriceField = "adjusted_close"
)

// PriceBar is a single day of OHLCV data for one symbol. Bars are immutable
// values; construct them through NewPriceBar so that no invalid bar is ever
// observable.
type PriceBar struct {
	Symbol string    `yaml:"symbol" json:"symbol" csv:"symbol" validate:"required"`
	Date   time.Time `yaml:"date" json:"date" csv:"date" validate:"required"`
	Open   float64   `yaml:"open" json:"open" csv:"open" validate:"gte=0"`
	High   float64   `yaml:"high" json:"high" csv:"high" validate:"gte=0"`
	Low    float64   `yaml:"low" json:"low" csv:"low" validate:"gte=0"`
	Close  float64   `yaml:"close" json:"close" csv:"close" validate:"gte=0"`
	// AdjClose is the split and dividend adjusted closing price.
	AdjClose float64 `yaml:"adj_close" json:"adj_close" csv:"adj_close" validate:"gte=0"`
	Volume   int64   `yaml:"volume" json:"volume" csv:"volume" validate:"gte=0"`
}

// NewPriceBar builds a validated PriceBar. It rejects negative prices, a high
// below the low, and a close outside [low, high].
func NewPriceBar(symbol string, date time.Time, open, high, low, closePrice, adjClose float64, volume int64) (PriceBar, error) {
	bar := PriceBar{
		Symbol:   symbol,
		Date:     date,
		Open:     open,
		High:     high,
		Low:      low,
		Close:    closePrice,
		AdjClose: adjClose,
		Volume:   volume,
	}

	if err := bar.Validate(); err != nil {
		return PriceBar{}, err
	}

	return bar, nil
}

// Validate validates the PriceBar struct.
func (b *PriceBar) Validate() error {
	validate := validator.New()
	if err := validate.Struct(b); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPriceBar, "invalid price bar", err)
	}

	if b.High < b.Low {
		return errors.Newf(errors.ErrCodeInvalidPriceBar,
			"high (%f) cannot be less than low (%f) for %s on %s",
			b.High, b.Low, b.Symbol, b.Date.Format(time.DateOnly))
	}

	if b.Close < b.Low || b.Close > b.High {
		return errors.Newf(errors.ErrCodeInvalidPriceBar,
			"close (%f) outside [low, high] for %s on %s",
			b.Close, b.Symbol, b.Date.Format(time.DateOnly))
	}

	return nil
}

// Price returns the bar's closing price for the given field.
func (b *PriceBar) Price(field PriceField) float64 {
	if field == PriceFieldAdjustedClose {
		return b.AdjClose
	}

	return b.Close
}
