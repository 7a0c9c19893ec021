package errors

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"
	CodeTimeout      = "TIMEOUT"
	CodeUnavailable  = "SERVICE_UNAVAILABLE"
	CodeInvalidInput = "INVALID_INPUT"
	CodeProcessing   = "PROCESSING"
	CodeKeyReused    = "IDEMPOTENCY_KEY_REUSED"
	CodeRateLimited  = "RATE_LIMITED"
	CodeTooLarge     = "PAYLOAD_TOO_LARGE"
	CodeMediaType    = "UNSUPPORTED_MEDIA_TYPE"
)

var statusByCode = map[string]int{
	CodeNotFound:     http.StatusNotFound,
	CodeValidation:   http.StatusUnprocessableEntity,
	CodeUnauthorized: http.StatusUnauthorized,
	CodeConflict:     http.StatusConflict,
	CodeInternal:     http.StatusInternalServerError,
	CodeTimeout:      http.StatusGatewayTimeout,
	CodeUnavailable:  http.StatusServiceUnavailable,
	CodeInvalidInput: http.StatusBadRequest,
	CodeProcessing:   http.StatusAccepted,
	CodeKeyReused:    http.StatusBadRequest,
	CodeRateLimited:  http.StatusTooManyRequests,
	CodeTooLarge:     http.StatusRequestEntityTooLarge,
	CodeMediaType:    http.StatusUnsupportedMediaType,
}

// AppError is the error every service and repository returns across package
// boundaries. Code is stable and machine readable, Message is safe to show a
// caller, and Err keeps the underlying cause for logs.
type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"error"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err == nil {
		return e.Code + ": " + e.Message
	}
	return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
}

func (e *AppError) Unwrap() error { return e.Err }

func (e *AppError) StatusCode() int { return e.HTTPStatus }

// Retryable reports whether the same request may succeed if sent again
// unchanged.
func (e *AppError) Retryable() bool {
	switch e.Code {
	case CodeUnavailable, CodeTimeout, CodeInternal, CodeProcessing:
		return true
	}
	return false
}

// ToJSON renders the error in the same shape the HTTP layer writes, so a
// stored outcome replays identically over either transport.
func (e *AppError) ToJSON() []byte {
	data, _ := json.Marshal(e)
	return data
}

func newError(code, message string, cause error) *AppError {
	return &AppError{
		Code:       code,
		Message:    message,
		HTTPStatus: statusByCode[code],
		Err:        cause,
	}
}

// Wrap attaches cause to an AppError with an explicit status.
func Wrap(cause error, code, message string, httpStatus int) *AppError {
	e := newError(code, message, cause)
	e.HTTPStatus = httpStatus
	return e
}

func NotFound(resource string) *AppError {
	return newError(CodeNotFound, resource+" not found", nil)
}

func NotFoundWithID(resource, id string) *AppError {
	e := NotFound(resource)
	e.Details = map[string]any{"resource": resource, "id": id}
	return e
}

func Validation(message string, details map[string]any) *AppError {
	e := newError(CodeValidation, message, nil)
	e.Details = details
	return e
}

func InvalidInput(message string) *AppError { return newError(CodeInvalidInput, message, nil) }

func Unauthorized(message string) *AppError { return newError(CodeUnauthorized, message, nil) }

func Conflict(message string) *AppError { return newError(CodeConflict, message, nil) }

func Internal(message string, err error) *AppError { return newError(CodeInternal, message, err) }

func Timeout(message string) *AppError { return newError(CodeTimeout, message, nil) }

func Unavailable(service string) *AppError {
	return newError(CodeUnavailable, service+" is temporarily unavailable", nil)
}

// Transient wraps an infrastructure failure (database, lock storage) that is
// safe to retry with the same request.
func Transient(message string, err error) *AppError {
	return newError(CodeUnavailable, message, err)
}

// Processing means another request holding the same idempotency key has not
// finished yet.
func Processing(message string) *AppError { return newError(CodeProcessing, message, nil) }

func KeyReused(key string) *AppError {
	e := newError(CodeKeyReused, "Idempotency key reused for a different request", nil)
	e.Details = map[string]any{"idempotency_key": key}
	return e
}

// Rejected builds the error for a request refused before reaching a handler,
// such as one over the rate limit or with the wrong Content-Type.
func Rejected(code, message string) *AppError { return newError(code, message, nil) }

func IsAppError(err error) bool {
	var appErr *AppError
	return errors.As(err, &appErr)
}

// AsAppError unwraps err to its AppError, treating anything else as internal.
func AsAppError(err error) *AppError {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying code.
func HasCode(err error, code string) bool {
	var appErr *AppError
	return errors.As(err, &appErr) && appErr.Code == code
}
