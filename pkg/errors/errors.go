package errors

import (
	"errors"
	"fmt"
)

// Common application errors
var (
	ErrEmptySeries      = errors.New("series is empty after cleaning")
	ErrInsufficientData = errors.New("insufficient data for the requested model")
	ErrInvalidConfig    = errors.New("invalid model configuration")
	ErrInvalidInputData = errors.New("invalid input data")
	ErrModelNotFitted   = errors.New("model must be fitted before forecasting")
)

// As wraps errors.As so callers need only one errors import.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// Is wraps errors.Is so callers need only one errors import.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// ErrorType represents different categories of errors
type ErrorType string

const (
	ErrorTypeValidation       ErrorType = "validation"
	ErrorTypeInsufficientData ErrorType = "insufficient_data"
	ErrorTypeProcessing       ErrorType = "processing"
	ErrorTypeConfiguration    ErrorType = "configuration"
	ErrorTypeInternal         ErrorType = "internal"
)

// AppError represents an application-specific error with additional context
type AppError struct {
	Type       ErrorType `json:"type"`
	Code       string    `json:"code"`
	Message    string    `json:"message"`
	Details    string    `json:"details,omitempty"`
	Cause      error     `json:"-"`
	HTTPStatus int       `json:"-"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Details != "" {
		return fmt.Sprintf("%s: %s - %s", e.Code, e.Message, e.Details)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying error
func (e *AppError) Unwrap() error {
	return e.Cause
}

// Is checks if the error matches the target
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Type == t.Type && e.Code == t.Code
}

// WithDetails adds details to the error
func (e *AppError) WithDetails(details string) *AppError {
	e.Details = details
	return e
}

// NewAppError creates a new application error
func NewAppError(errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		HTTPStatus: getDefaultHTTPStatus(errType),
	}
}

// WrapError wraps an existing error with application context
func WrapError(err error, errType ErrorType, code, message string) *AppError {
	return &AppError{
		Type:       errType,
		Code:       code,
		Message:    message,
		Cause:      err,
		HTTPStatus: getDefaultHTTPStatus(errType),
	}
}

// NewValidationError creates a validation error
func NewValidationError(code, message string) *AppError {
	return NewAppError(ErrorTypeValidation, code, message)
}

// NewInsufficientDataError creates an insufficient-data error
func NewInsufficientDataError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeInsufficientData,
		Code:       CodeInsufficientData,
		Message:    message,
		Cause:      ErrInsufficientData,
		HTTPStatus: 422,
	}
}

// NewProcessingError creates a processing error
func NewProcessingError(code, message string) *AppError {
	return NewAppError(ErrorTypeProcessing, code, message)
}

// NewInternalError creates an internal error
func NewInternalError(message string) *AppError {
	return NewAppError(ErrorTypeInternal, CodeInternalError, message)
}

// getDefaultHTTPStatus returns the default HTTP status for an error type
func getDefaultHTTPStatus(errType ErrorType) int {
	switch errType {
	case ErrorTypeValidation, ErrorTypeConfiguration:
		return 400
	case ErrorTypeInsufficientData:
		return 422
	case ErrorTypeProcessing, ErrorTypeInternal:
		return 500
	default:
		return 500
	}
}

// Error codes for different error scenarios
const (
	// Validation error codes
	CodeInvalidInput     = "INVALID_INPUT"
	CodeInvalidConfig    = "INVALID_CONFIG"
	CodeInvalidAROrder   = "INVALID_AR_ORDER"
	CodeInvalidDiffOrder = "INVALID_DIFF_ORDER"
	CodeInvalidMAOrder   = "INVALID_MA_ORDER"
	CodeInvalidAlpha     = "INVALID_ALPHA"
	CodeInvalidBeta      = "INVALID_BETA"
	CodeInvalidGamma     = "INVALID_GAMMA"
	CodeInvalidDamping   = "INVALID_DAMPING"
	CodeInvalidSeason    = "INVALID_SEASONAL_PERIOD"
	CodeInvalidHorizon   = "INVALID_HORIZON"
	CodeInvalidModelKind = "INVALID_MODEL_KIND"

	// Data error codes
	CodeInsufficientData = "INSUFFICIENT_DATA"
	CodeEmptySeries      = "EMPTY_SERIES"

	// Processing error codes
	CodeFitFailed      = "FIT_FAILED"
	CodeForecastFailed = "FORECAST_FAILED"

	// Internal error codes
	CodeInternalError = "INTERNAL_ERROR"
)
