package errors

// ErrorCode represents a unique error code for identifying different error types.
type ErrorCode int

const (
	// General errors (1-99)
	ErrCodeUnknown ErrorCode = 1

	// Validation errors (100-199)
	ErrCodeInvalidParameter     ErrorCode = 100
	ErrCodeInvalidConfiguration ErrorCode = 101
	ErrCodeInvalidPriceBar      ErrorCode = 102
	ErrCodeInvalidSignal        ErrorCode = 103
	ErrCodeInvalidFill          ErrorCode = 104

	// Data/Resource errors (200-299)
	ErrCodeDataNotFound     ErrorCode = 200
	ErrCodeLookAheadBias    ErrorCode = 202
	ErrCodeDataQuality      ErrorCode = 203
	ErrCodeMissingPrice     ErrorCode = 204
	ErrCodeStoreUnavailable ErrorCode = 205

	// Strategy errors (400-499)
	ErrCodeStrategyRuntimeError ErrorCode = 400
	ErrCodeStrategyNotSet       ErrorCode = 401

	// Portfolio errors (500-599)
	ErrCodeFillFailed          ErrorCode = 500
	ErrCodeAccountingViolation ErrorCode = 502

	// Backtest errors (600-699)
	ErrCodeBacktestNoDates   ErrorCode = 601
	ErrCodeBacktestAborted   ErrorCode = 602
	ErrCodeResultWriteFailed ErrorCode = 603
)
