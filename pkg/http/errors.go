package http

import (
	"errors"
	"fmt"
)

// AppError represents application-level error with HTTP status.
type AppError struct {
	Code    string                 `json:"code"`
	Message string                 `json:"message"`
	Field   string                 `json:"field,omitempty"`
	Params  map[string]interface{} `json:"params,omitempty"`
	Status  int                    `json:"-"`
	Err     error                  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns underlying error.
func (e *AppError) Unwrap() error {
	return e.Err
}

// NewAppError creates a new application error.
func NewAppError(code, field, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Field:   field,
		Status:  status,
		Params:  make(map[string]interface{}),
	}
}

// WithParam sets a single error param.
func (e *AppError) WithParam(key string, value interface{}) *AppError {
	if e.Params == nil {
		e.Params = make(map[string]interface{})
	}
	e.Params[key] = value
	return e
}

// WithError wraps an underlying error.
func (e *AppError) WithError(err error) *AppError {
	e.Err = err
	return e
}

// Fetch failure taxonomy. Every failed Response carries one of these in Err.
var (
	ErrNetwork        = errors.New("network error")
	ErrTimeout        = errors.New("request timed out")
	ErrAborted        = errors.New("request aborted")
	ErrInvalidRequest = errors.New("invalid request")
	ErrDecode         = errors.New("decode response")
)

// HTTPError is a non-2xx response.
type HTTPError struct {
	StatusCode int
	Status     string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP %d: %s", e.StatusCode, e.Status)
}

// Outcome maps a fetch error to a short label used by logs and metrics.
func Outcome(err error) string {
	var httpErr *HTTPError
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, ErrAborted):
		return "aborted"
	case errors.Is(err, ErrTimeout):
		return "timeout"
	case errors.As(err, &httpErr):
		return "http_error"
	case errors.Is(err, ErrNetwork):
		return "network_error"
	case errors.Is(err, ErrDecode):
		return "decode_error"
	default:
		return "invalid"
	}
}
