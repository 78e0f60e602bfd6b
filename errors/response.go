package errors

import (
	stderrors "errors"
	"net/http"
)

// ErrorResponse is the JSON error shape a service embedding the toolkit
// returns to its clients.
type ErrorResponse struct {
	Error ErrorBody `json:"error"`
}

// ErrorBody carries the client-facing error details. Retryable tells a
// well-behaved client whether backing off and trying again can help, and
// Dependency names the guarded downstream the failure belongs to.
type ErrorBody struct {
	Code       ErrorCode      `json:"code"`
	Message    string         `json:"message"`
	Retryable  bool           `json:"retryable"`
	Dependency string         `json:"dependency,omitempty"`
	Details    map[string]any `json:"details,omitempty"`
}

// ToResponse converts an AppError to its client-facing shape, lifting the
// dependency name out of the details when present.
func (e *AppError) ToResponse() ErrorResponse {
	body := ErrorBody{
		Code:      e.Code,
		Message:   e.Message,
		Retryable: e.Retryable,
		Details:   e.Details,
	}
	if dep, ok := e.Details["dependency"].(string); ok {
		body.Dependency = dep
	}
	return ErrorResponse{Error: body}
}

// ToHTTP maps any error to an HTTP status and response body. Errors outside
// the AppError taxonomy come back as an internal error so raw dependency
// messages never leak to clients.
func ToHTTP(err error) (int, ErrorResponse) {
	appErr, ok := AsAppError(err)
	if !ok {
		appErr = Internal(err)
	}
	status := appErr.HTTPStatus
	if status == 0 {
		status = http.StatusInternalServerError
	}
	return status, appErr.ToResponse()
}

// IsAppError checks if an error is an AppError.
func IsAppError(err error) bool {
	var appErr *AppError
	return stderrors.As(err, &appErr)
}

// AsAppError converts an error to an AppError if possible.
func AsAppError(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}
