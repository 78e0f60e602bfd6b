// Package errors provides unified error handling for Go services.
// It implements structured error types with error codes, HTTP status mapping,
// retryable detection, and conversion from resilience taxonomy errors.
package errors
