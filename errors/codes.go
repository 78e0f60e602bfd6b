package errors

// ErrorCode represents a machine-readable error code.
type ErrorCode string

// Connection/Availability errors (retryable)
const (
	// ErrCodeServiceUnavailable indicates the service is temporarily unavailable.
	ErrCodeServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	// ErrCodeConnectionFailed indicates a failed connection to a service.
	ErrCodeConnectionFailed ErrorCode = "CONNECTION_FAILED"
	// ErrCodeTimeout indicates the request timed out.
	ErrCodeTimeout ErrorCode = "TIMEOUT"
	// ErrCodeRateLimited indicates the client is rate limited.
	ErrCodeRateLimited ErrorCode = "RATE_LIMITED"
)

// Resilience outcome errors
const (
	// ErrCodeCircuitOpen indicates the circuit breaker denied the call.
	ErrCodeCircuitOpen ErrorCode = "CIRCUIT_OPEN"
	// ErrCodeRetriesExhausted indicates all permitted attempts failed.
	ErrCodeRetriesExhausted ErrorCode = "RETRIES_EXHAUSTED"
	// ErrCodeAttemptTimeout indicates a single attempt exceeded its time budget.
	ErrCodeAttemptTimeout ErrorCode = "ATTEMPT_TIMEOUT"
	// ErrCodeNonRetryable indicates the failure was classified as non-retryable.
	ErrCodeNonRetryable ErrorCode = "NON_RETRYABLE"
	// ErrCodeFallbackFailed indicates both the primary call and its fallback failed.
	ErrCodeFallbackFailed ErrorCode = "FALLBACK_FAILED"
	// ErrCodeCancelled indicates the caller abandoned the call.
	ErrCodeCancelled ErrorCode = "CANCELLED"
	// ErrCodeConcurrencyLimit indicates the bulkhead rejected the call.
	ErrCodeConcurrencyLimit ErrorCode = "CONCURRENCY_LIMIT"
)

// Validation errors
const (
	// ErrCodeInvalidInput indicates the input is invalid.
	ErrCodeInvalidInput ErrorCode = "INVALID_INPUT"
	// ErrCodeMissingField indicates a required field is missing.
	ErrCodeMissingField ErrorCode = "MISSING_FIELD"
	// ErrCodeInvalidFormat indicates a field has an invalid format.
	ErrCodeInvalidFormat ErrorCode = "INVALID_FORMAT"
)

// Internal errors
const (
	// ErrCodeInternal indicates an internal error.
	ErrCodeInternal ErrorCode = "INTERNAL_ERROR"
	// ErrCodeExternalService indicates an error from an external service.
	ErrCodeExternalService ErrorCode = "EXTERNAL_SERVICE_ERROR"
)

var retryableCodes = map[ErrorCode]bool{
	ErrCodeServiceUnavailable: true,
	ErrCodeConnectionFailed:   true,
	ErrCodeTimeout:            true,
	ErrCodeRateLimited:        true,
	ErrCodeAttemptTimeout:     true,
	ErrCodeCircuitOpen:        true,
	ErrCodeRetriesExhausted:   true,
	ErrCodeExternalService:    true,
	ErrCodeConcurrencyLimit:   true,
	ErrCodeNonRetryable:       false,
	ErrCodeFallbackFailed:     false,
	ErrCodeCancelled:          false,
	ErrCodeInternal:           false,
}

// IsRetryableCode returns true if the error code indicates a retryable error.
// Circuit-open and retries-exhausted outcomes are retryable from the caller's
// point of view: the dependency may recover, so a later call can succeed.
func IsRetryableCode(code ErrorCode) bool {
	return retryableCodes[code]
}
