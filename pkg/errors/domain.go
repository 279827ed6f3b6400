package errors

import (
	"errors"
	"fmt"
	"time"
)

// LookAheadBiasError represents an attempt to use data that would not have
// been observable at the reference date: a backward reference-date move or a
// range request extending past the visibility boundary.
type LookAheadBiasError struct {
	Message    string    // Error description
	AccessDate time.Time // The date from which access was attempted
	DataDate   time.Time // The date of the data being accessed
}

// NewLookAheadBiasError creates a new LookAheadBiasError.
func NewLookAheadBiasError(message string, accessDate, dataDate time.Time) *LookAheadBiasError {
	return &LookAheadBiasError{
		Message:    message,
		AccessDate: accessDate,
		DataDate:   dataDate,
	}
}

// Error implements the error interface.
func (e *LookAheadBiasError) Error() string {
	return fmt.Sprintf("%s: attempted to access %s data from %s",
		e.Message, e.DataDate.Format(time.DateOnly), e.AccessDate.Format(time.DateOnly))
}

// IsLookAheadBiasError checks if an error is a LookAheadBiasError.
// It uses errors.As to check the error chain.
func IsLookAheadBiasError(err error) bool {
	var biasErr *LookAheadBiasError

	return errors.As(err, &biasErr)
}

// DataQualityError represents a failed data-quality check.
type DataQualityError struct {
	Message   string            // Error description
	Symbol    string            // Optional: affected symbol
	CheckName string            // Name of the quality check that failed
	Details   map[string]string // Optional additional context
}

// NewDataQualityError creates a new DataQualityError.
func NewDataQualityError(message, symbol, checkName string) *DataQualityError {
	return &DataQualityError{
		Message:   message,
		Symbol:    symbol,
		CheckName: checkName,
		Details:   nil,
	}
}

// Error implements the error interface.
func (e *DataQualityError) Error() string {
	msg := e.Message
	if e.Symbol != "" {
		msg = fmt.Sprintf("%s | symbol: %s", msg, e.Symbol)
	}

	if e.CheckName != "" {
		msg = fmt.Sprintf("%s | check: %s", msg, e.CheckName)
	}

	return msg
}

// IsDataQualityError checks if an error is a DataQualityError.
func IsDataQualityError(err error) bool {
	var qualityErr *DataQualityError

	return errors.As(err, &qualityErr)
}

// InsufficientDataError represents an error when there is not enough data
// for an operation (e.g., metric calculations requiring a minimum history).
type InsufficientDataError struct {
	Required int    // Minimum data points required
	Actual   int    // Actual data points available
	Symbol   string // Optional: symbol context
	Message  string // Human-readable message
}

// NewInsufficientDataError creates a new InsufficientDataError.
func NewInsufficientDataError(required, actual int, symbol, message string) *InsufficientDataError {
	return &InsufficientDataError{
		Required: required,
		Actual:   actual,
		Symbol:   symbol,
		Message:  message,
	}
}

// Error implements the error interface.
func (e *InsufficientDataError) Error() string {
	return e.Message
}

// IsInsufficientDataError checks if an error is an InsufficientDataError.
func IsInsufficientDataError(err error) bool {
	var insufficientErr *InsufficientDataError

	return errors.As(err, &insufficientErr)
}

// InvalidSignalError represents malformed strategy output, such as a
// non-positive hedge ratio or a weight outside [-1, 1].
type InvalidSignalError struct {
	Message string // Error description
	Reason  string // Why the signal is invalid
}

// NewInvalidSignalError creates a new InvalidSignalError.
func NewInvalidSignalError(message, reason string) *InvalidSignalError {
	return &InvalidSignalError{
		Message: message,
		Reason:  reason,
	}
}

// Error implements the error interface.
func (e *InvalidSignalError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("%s (%s)", e.Message, e.Reason)
	}

	return e.Message
}

// IsInvalidSignalError checks if an error is an InvalidSignalError.
func IsInvalidSignalError(err error) bool {
	var signalErr *InvalidSignalError

	return errors.As(err, &signalErr)
}

// MissingPriceError represents a held position without a closing price on a
// visible date. Given the point-in-time data contract this is a fatal
// internal invariant violation, not a recoverable condition.
type MissingPriceError struct {
	Symbol string    // Symbol lacking a price
	Date   time.Time // Date of the missing price
}

// NewMissingPriceError creates a new MissingPriceError.
func NewMissingPriceError(symbol string, date time.Time) *MissingPriceError {
	return &MissingPriceError{
		Symbol: symbol,
		Date:   date,
	}
}

// Error implements the error interface.
func (e *MissingPriceError) Error() string {
	return fmt.Sprintf("no price for held position %s on %s", e.Symbol, e.Date.Format(time.DateOnly))
}

// IsMissingPriceError checks if an error is a MissingPriceError.
func IsMissingPriceError(err error) bool {
	var priceErr *MissingPriceError

	return errors.As(err, &priceErr)
}
