// Package errors provides the structured error type shared by the
// forecasting services and the HTTP layer. Handlers only ever render the
// Code and Message, never the wrapped internal error.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is matches any AppError carrying the same code, so a wrapped copy still
// satisfies errors.Is against its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}

	ErrInvalidAPIKey    = &AppError{Code: "INVALID_API_KEY", Message: "Invalid or missing API key", StatusCode: http.StatusUnauthorized}
	ErrPipelineDisabled = &AppError{Code: "PIPELINE_NOT_CONFIGURED", Message: "Pipeline endpoints are not configured", StatusCode: http.StatusServiceUnavailable}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Inventory and forecasting errors.
var (
	ErrMaterialNotFound = &AppError{Code: "MATERIAL_NOT_FOUND", Message: "Material not found", StatusCode: http.StatusNotFound}
	ErrDataInsufficient = &AppError{Code: "DATA_INSUFFICIENT", Message: "Not enough history to estimate a trend", StatusCode: http.StatusUnprocessableEntity}
	ErrMissingBounds    = &AppError{Code: "MISSING_SAFE_BOUNDS", Message: "Material has no safe-stock bounds", StatusCode: http.StatusUnprocessableEntity}
	ErrNoMaterials      = &AppError{Code: "NO_MATERIALS", Message: "No active materials to forecast", StatusCode: http.StatusUnprocessableEntity}
	ErrPersistence      = &AppError{Code: "PERSISTENCE_ERROR", Message: "Failed to persist forecasting data", StatusCode: http.StatusInternalServerError}
)

// Alert errors.
var (
	ErrAlertNotFound = &AppError{Code: "ALERT_NOT_FOUND", Message: "Alert not found or already handled", StatusCode: http.StatusNotFound}
)

// Cycle errors.
var (
	ErrCycleInProgress = &AppError{Code: "CYCLE_IN_PROGRESS", Message: "A cycle of this kind is already running", StatusCode: http.StatusConflict}
	ErrCycleTimeout    = &AppError{Code: "CYCLE_TIMEOUT", Message: "Cycle exceeded its time budget", StatusCode: http.StatusGatewayTimeout}
	ErrCycleCanceled   = &AppError{Code: "CYCLE_CANCELED", Message: "Cycle was canceled before it finished", StatusCode: http.StatusServiceUnavailable}
)
