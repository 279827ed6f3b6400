// Package dataloader reads price bars from CSV files for the CLI. The engine
// itself never loads data; it consumes whatever bars the caller provides.
package dataloader

import (
	"io"
	"os"
	"time"

	"github.com/gocarina/gocsv"
	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

// Date parses CSV date cells as either a plain date or RFC 3339.
type Date struct {
	time.Time
}

// UnmarshalCSV implements gocsv unmarshaling for Date.
func (d *Date) UnmarshalCSV(csv string) error {
	parsed, err := time.Parse(time.DateOnly, csv)
	if err != nil {
		parsed, err = time.Parse(time.RFC3339, csv)
		if err != nil {
			return err
		}
	}

	d.Time = parsed

	return nil
}

// MarshalCSV implements gocsv marshaling for Date.
func (d Date) MarshalCSV() (string, error) {
	return d.Format(time.DateOnly), nil
}

type barRow struct {
	Symbol   string  `csv:"symbol"`
	Date     Date    `csv:"date"`
	Open     float64 `csv:"open"`
	High     float64 `csv:"high"`
	Low      float64 `csv:"low"`
	Close    float64 `csv:"close"`
	AdjClose float64 `csv:"adj_close"`
	Volume   int64   `csv:"volume"`
}

// LoadBars reads all price bars from a CSV file. Rows failing bar validation
// are rejected with the row context attached.
func LoadBars(path string) ([]types.PriceBar, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, errors.Wrapf(errors.ErrCodeDataNotFound, err, "failed to open CSV file %s", path)
	}
	defer file.Close()

	return LoadBarsFromReader(file)
}

// LoadBarsFromReader reads price bars from CSV content.
func LoadBarsFromReader(r io.Reader) ([]types.PriceBar, error) {
	var rows []barRow
	if err := gocsv.Unmarshal(r, &rows); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidParameter, "failed to unmarshal CSV", err)
	}

	bars := make([]types.PriceBar, 0, len(rows))

	for i, row := range rows {
		bar, err := types.NewPriceBar(row.Symbol, row.Date.Time,
			row.Open, row.High, row.Low, row.Close, row.AdjClose, row.Volume)
		if err != nil {
			return nil, errors.Wrapf(errors.ErrCodeInvalidPriceBar, err, "invalid bar at CSV row %d", i+1)
		}

		bars = append(bars, bar)
	}

	return bars, nil
}
