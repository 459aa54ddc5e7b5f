package errors

import (
	stderrors "errors"
	"fmt"
)

// AppError represents a structured application error
type AppError struct {
	Code    string
	Message string
	Cause   error
}

func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is matches any AppError carrying the same code, so callers can test
// against the sentinel values below with the standard errors.Is.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// New creates a new AppError
func New(code, message string) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
	}
}

// Newf creates a new AppError with a formatted message
func Newf(code, format string, args ...interface{}) *AppError {
	return New(code, fmt.Sprintf(format, args...))
}

// Wrap wraps an error with additional context
func Wrap(err error, message string) error {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return &AppError{
			Code:    appErr.Code,
			Message: message,
			Cause:   err,
		}
	}
	return &AppError{
		Code:    CodeInternalError,
		Message: message,
		Cause:   err,
	}
}

// Wrapf wraps an error with formatted additional context
func Wrapf(err error, format string, args ...interface{}) error {
	if err == nil {
		return nil
	}
	return Wrap(err, fmt.Sprintf(format, args...))
}

// WithCode adds an error code to an existing error
func WithCode(code string, err error) error {
	if err == nil {
		return nil
	}
	if appErr, ok := err.(*AppError); ok {
		return &AppError{
			Code:    code,
			Message: appErr.Message,
			Cause:   appErr.Cause,
		}
	}
	return &AppError{
		Code:    code,
		Message: err.Error(),
		Cause:   err,
	}
}

// IsAppError checks if an error is an AppError
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// GetCode returns the code of the outermost AppError in the chain, or "UNKNOWN"
func GetCode(err error) string {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr.Code
	}
	return "UNKNOWN"
}

// HasCode reports whether any AppError in the chain carries code.
func HasCode(err error, code string) bool {
	return stderrors.Is(err, &AppError{Code: code})
}

// Predefined error codes
const (
	CodeConfigInvalid   = "CONFIG_INVALID"
	CodeValidationError = "VALIDATION_ERROR"
	CodeNotFound        = "NOT_FOUND"
	CodeConflict        = "CONFLICT"
	CodeInternalError   = "INTERNAL_ERROR"
	CodeInvalidInput    = "INVALID_INPUT"

	// Analysis engine codes
	CodeUnknownColumn              = "UNKNOWN_COLUMN"
	CodeEmptyTable                 = "EMPTY_TABLE"
	CodeEmptySeries                = "EMPTY_SERIES"
	CodeInsufficientData           = "INSUFFICIENT_DATA"
	CodeDefectsExceedOpportunities = "DEFECTS_EXCEED_OPPORTUNITIES"
	CodeOutOfRangeResult           = "OUT_OF_RANGE_RESULT"
)

// Sentinels for errors.Is checks; only the code is compared.
var (
	ErrUnknownColumn              = New(CodeUnknownColumn, "unknown column")
	ErrEmptyTable                 = New(CodeEmptyTable, "empty table")
	ErrEmptySeries                = New(CodeEmptySeries, "empty series")
	ErrInsufficientData           = New(CodeInsufficientData, "insufficient data")
	ErrInvalidInput               = New(CodeInvalidInput, "invalid input")
	ErrDefectsExceedOpportunities = New(CodeDefectsExceedOpportunities, "defects exceed opportunities")
	ErrOutOfRangeResult           = New(CodeOutOfRangeResult, "result out of range")
	ErrNotFound                   = New(CodeNotFound, "not found")
	ErrConflict                   = New(CodeConflict, "conflict")
)

// Common error constructors
func ConfigInvalid(message string) *AppError {
	return New(CodeConfigInvalid, message)
}

func ValidationError(message string) *AppError {
	return New(CodeValidationError, message)
}

func NotFound(resource string) *AppError {
	return New(CodeNotFound, fmt.Sprintf("%s not found", resource))
}

func Conflict(message string) *AppError {
	return New(CodeConflict, message)
}

func InternalError(message string) *AppError {
	return New(CodeInternalError, message)
}

func InvalidInput(message string) *AppError {
	return New(CodeInvalidInput, message)
}

func UnknownColumn(name string) *AppError {
	return New(CodeUnknownColumn, fmt.Sprintf("column %q not found", name))
}

func EmptyTable(message string) *AppError {
	return New(CodeEmptyTable, message)
}

func EmptySeries(column string) *AppError {
	if column == "" {
		return New(CodeEmptySeries, "series has no values")
	}
	return New(CodeEmptySeries, fmt.Sprintf("column %q has no values", column))
}

func InsufficientData(message string) *AppError {
	return New(CodeInsufficientData, message)
}
