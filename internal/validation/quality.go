// Package validation runs data-quality checks over a bar dataset before it is
// handed to the backtest. Checks either fail fast on the first violation or
// collect every violation for a full report.
package validation

import (
	"fmt"
	"sort"
	"time"

	"github.com/rxtech-lab/pairbacktest/internal/types"
	"github.com/rxtech-lab/pairbacktest/pkg/errors"
)

// Check names reported inside DataQualityError.
const (
	CheckNonNegativePrice = "non_negative_price"
	CheckHighLowOrder     = "high_low_order"
	CheckCloseInRange     = "close_in_range"
	CheckDuplicateBar     = "duplicate_bar"
	CheckCalendarGap      = "calendar_gap"
)

// Mode selects how the checker reacts to violations.
type Mode string

const (
	// ModeFailFast stops at the first violation.
	ModeFailFast Mode = "fail_fast"
	// ModeCollect gathers every violation before reporting.
	ModeCollect Mode = "collect"
)

// Checker validates a bar dataset.
type Checker struct {
	mode Mode
	// maxGapDays flags a symbol whose consecutive bars are more than this many
	// calendar days apart. Zero disables the gap check.
	maxGapDays int
}

// Option configures a Checker.
type Option func(*Checker)

// WithMode sets the violation handling mode.
func WithMode(mode Mode) Option {
	return func(c *Checker) {
		c.mode = mode
	}
}

// WithMaxGapDays enables the calendar-gap check with the given threshold.
func WithMaxGapDays(days int) Option {
	return func(c *Checker) {
		c.maxGapDays = days
	}
}

// NewChecker creates a Checker. The default mode is fail fast with the gap
// check disabled.
func NewChecker(opts ...Option) *Checker {
	checker := &Checker{
		mode: ModeFailFast,
	}

	for _, opt := range opts {
		opt(checker)
	}

	return checker
}

// Check runs all quality checks over the bars. In fail-fast mode it returns
// the first violation; in collect mode it returns every violation found.
func (c *Checker) Check(bars []types.PriceBar) []error {
	var violations []error

	record := func(err error) bool {
		violations = append(violations, err)

		return c.mode == ModeFailFast
	}

	for i := range bars {
		if err := c.checkBar(&bars[i]); err != nil {
			if record(err) {
				return violations
			}
		}
	}

	if err := c.checkDuplicates(bars); err != nil {
		if record(err) {
			return violations
		}
	}

	if c.maxGapDays > 0 {
		for _, err := range c.checkGaps(bars) {
			if record(err) {
				return violations
			}
		}
	}

	return violations
}

// CheckAll is a convenience wrapper returning the first violation as a single
// error, or nil when the dataset is clean.
func (c *Checker) CheckAll(bars []types.PriceBar) error {
	violations := c.Check(bars)
	if len(violations) == 0 {
		return nil
	}

	return violations[0]
}

func (c *Checker) checkBar(bar *types.PriceBar) error {
	date := bar.Date.Format(time.DateOnly)

	if bar.Open < 0 || bar.High < 0 || bar.Low < 0 || bar.Close < 0 || bar.AdjClose < 0 {
		return errors.NewDataQualityError(
			fmt.Sprintf("negative price on %s", date), bar.Symbol, CheckNonNegativePrice)
	}

	if bar.High < bar.Low {
		return errors.NewDataQualityError(
			fmt.Sprintf("high %f below low %f on %s", bar.High, bar.Low, date),
			bar.Symbol, CheckHighLowOrder)
	}

	if bar.Close < bar.Low || bar.Close > bar.High {
		return errors.NewDataQualityError(
			fmt.Sprintf("close %f outside [%f, %f] on %s", bar.Close, bar.Low, bar.High, date),
			bar.Symbol, CheckCloseInRange)
	}

	return nil
}

func (c *Checker) checkDuplicates(bars []types.PriceBar) error {
	seen := make(map[string]struct{}, len(bars))
	for i := range bars {
		key := bars[i].Symbol + "|" + bars[i].Date.Format(time.DateOnly)
		if _, ok := seen[key]; ok {
			return errors.NewDataQualityError(
				fmt.Sprintf("duplicate bar on %s", bars[i].Date.Format(time.DateOnly)),
				bars[i].Symbol, CheckDuplicateBar)
		}

		seen[key] = struct{}{}
	}

	return nil
}

func (c *Checker) checkGaps(bars []types.PriceBar) []error {
	bySymbol := make(map[string][]time.Time)
	for i := range bars {
		bySymbol[bars[i].Symbol] = append(bySymbol[bars[i].Symbol], bars[i].Date)
	}

	symbols := make([]string, 0, len(bySymbol))
	for symbol := range bySymbol {
		symbols = append(symbols, symbol)
	}

	sort.Strings(symbols)

	var violations []error

	for _, symbol := range symbols {
		dates := bySymbol[symbol]
		sort.Slice(dates, func(i, j int) bool { return dates[i].Before(dates[j]) })

		for i := 1; i < len(dates); i++ {
			gap := int(dates[i].Sub(dates[i-1]).Hours() / 24)
			if gap > c.maxGapDays {
				err := errors.NewDataQualityError(
					fmt.Sprintf("%d day gap between %s and %s", gap,
						dates[i-1].Format(time.DateOnly), dates[i].Format(time.DateOnly)),
					symbol, CheckCalendarGap)
				violations = append(violations, err)
			}
		}
	}

	return violations
}
