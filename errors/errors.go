package errors

import (
	"fmt"
	"net/http"
)

// AppError is the unified application error type.
type AppError struct {
	// Code is a machine-readable error code.
	Code ErrorCode `json:"code"`
	// Message is a human-readable error message.
	Message string `json:"message"`
	// Retryable indicates if the operation can be retried.
	Retryable bool `json:"retryable"`
	// HTTPStatus is the recommended HTTP status code for this error.
	HTTPStatus int `json:"-"`
	// Details contains additional context for the error.
	Details map[string]any `json:"details,omitempty"`
	// Cause is the underlying error that caused this error.
	Cause error `json:"-"`
}

// Error returns the string representation of the error.
func (e *AppError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %s (cause: %v)", e.Code, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap returns the underlying cause of the error.
func (e *AppError) Unwrap() error { return e.Cause }

// WithCause sets the underlying cause of the error and returns the receiver.
func (e *AppError) WithCause(cause error) *AppError {
	e.Cause = cause
	return e
}

// WithDetail sets a single detail key-value pair and returns the receiver.
func (e *AppError) WithDetail(key string, value any) *AppError {
	if e.Details == nil {
		e.Details = make(map[string]any)
	}
	e.Details[key] = value
	return e
}

// New creates a new AppError with automatic retryable detection.
func New(code ErrorCode, message string, httpStatus int) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: httpStatus,
		Retryable:  IsRetryableCode(code),
	}
}

// --- Common Error Constructors ---

// ServiceUnavailable creates a new AppError for a service that is temporarily unavailable.
func ServiceUnavailable(service string) *AppError {
	return &AppError{
		Code: ErrCodeServiceUnavailable, Message: fmt.Sprintf("The %s is temporarily unavailable. Please try again.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// ConnectionFailed creates a new AppError for a failed connection to a service.
func ConnectionFailed(service string) *AppError {
	return &AppError{
		Code: ErrCodeConnectionFailed, Message: fmt.Sprintf("Unable to connect to %s. Please verify the service is running.", service),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"service": service},
	}
}

// Timeout creates a new AppError for a request that timed out.
func Timeout(operation string) *AppError {
	return &AppError{
		Code: ErrCodeTimeout, Message: "The request took too long. Please try again.",
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"operation": operation},
	}
}

// RateLimited creates a new AppError for too many requests.
func RateLimited() *AppError {
	return &AppError{
		Code: ErrCodeRateLimited, Message: "Too many requests. Please wait a moment and try again.",
		HTTPStatus: http.StatusTooManyRequests, Retryable: true,
	}
}

// CircuitOpen creates a new AppError for a call denied by an open circuit breaker.
func CircuitOpen(dependency string) *AppError {
	return &AppError{
		Code: ErrCodeCircuitOpen, Message: fmt.Sprintf("Calls to %s are suspended while it recovers. Please try again shortly.", dependency),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"dependency": dependency},
	}
}

// RetriesExhausted creates a new AppError for a call that failed every attempt.
func RetriesExhausted(dependency string, attempts int) *AppError {
	return &AppError{
		Code: ErrCodeRetriesExhausted, Message: fmt.Sprintf("The call to %s failed after %d attempts.", dependency, attempts),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"dependency": dependency, "attempts": attempts},
	}
}

// AttemptTimeout creates a new AppError for an attempt that exceeded its time budget.
func AttemptTimeout(dependency string) *AppError {
	return &AppError{
		Code: ErrCodeAttemptTimeout, Message: fmt.Sprintf("The call to %s timed out.", dependency),
		HTTPStatus: http.StatusGatewayTimeout, Retryable: true,
		Details: map[string]any{"dependency": dependency},
	}
}

// NonRetryable creates a new AppError for a failure classified as non-retryable.
func NonRetryable(dependency string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeNonRetryable, Message: fmt.Sprintf("The call to %s failed and cannot be retried.", dependency),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"dependency": dependency}, Cause: cause,
	}
}

// FallbackFailed creates a new AppError for a call whose fallback also failed.
func FallbackFailed(dependency string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeFallbackFailed, Message: fmt.Sprintf("Both %s and its fallback failed.", dependency),
		HTTPStatus: http.StatusBadGateway, Retryable: false,
		Details: map[string]any{"dependency": dependency}, Cause: cause,
	}
}

// Cancelled creates a new AppError for a caller-abandoned call.
func Cancelled(operation string) *AppError {
	return &AppError{
		Code: ErrCodeCancelled, Message: "The request was cancelled.",
		HTTPStatus: 499, Retryable: false,
		Details: map[string]any{"operation": operation},
	}
}

// ConcurrencyLimit creates a new AppError for a bulkhead rejection.
func ConcurrencyLimit(dependency string) *AppError {
	return &AppError{
		Code: ErrCodeConcurrencyLimit, Message: fmt.Sprintf("Too many concurrent calls to %s. Please try again.", dependency),
		HTTPStatus: http.StatusServiceUnavailable, Retryable: true,
		Details: map[string]any{"dependency": dependency},
	}
}

// InvalidInput creates a new AppError for invalid input.
func InvalidInput(field, reason string) *AppError {
	details := make(map[string]any)
	if field != "" {
		details["field"] = field
	}
	return &AppError{
		Code: ErrCodeInvalidInput, Message: fmt.Sprintf("Invalid input: %s", reason),
		HTTPStatus: http.StatusBadRequest, Retryable: false, Details: details,
	}
}

// Validation creates a new AppError for validation errors.
func Validation(message string) *AppError {
	return &AppError{
		Code: ErrCodeInvalidInput, Message: message,
		HTTPStatus: http.StatusBadRequest, Retryable: false,
	}
}

// MissingField creates a new AppError for a missing required field.
func MissingField(field string) *AppError {
	return &AppError{
		Code: ErrCodeMissingField, Message: fmt.Sprintf("Missing required field: %s", field),
		HTTPStatus: http.StatusBadRequest, Retryable: false,
		Details: map[string]any{"field": field},
	}
}

// Internal creates a new AppError for an internal error.
func Internal(cause error) *AppError {
	return &AppError{
		Code: ErrCodeInternal, Message: "An unexpected error occurred. Please try again or contact support.",
		HTTPStatus: http.StatusInternalServerError, Retryable: false, Cause: cause,
	}
}

// ExternalServiceError creates a new AppError for an error from an external service.
func ExternalServiceError(service string, cause error) *AppError {
	return &AppError{
		Code: ErrCodeExternalService, Message: fmt.Sprintf("The %s service encountered an error. Please try again.", service),
		HTTPStatus: http.StatusBadGateway, Retryable: true,
		Details: map[string]any{"service": service}, Cause: cause,
	}
}
