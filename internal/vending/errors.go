package vending

import (
	"fmt"

	"github.com/pkg/errors"
)

// TransportError is a connection failure or a response body that could not be read
// or decoded.
type TransportError struct {
	Call string
	Err  error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport: %v", e.Call, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// StatusError is a non-2xx answer. Message holds the body's "error" field, if any.
type StatusError struct {
	Call       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: status %d: %s", e.Call, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s: status %d", e.Call, e.StatusCode)
}

// AppError is a failure reported by the backend inside a 2xx body
type AppError struct {
	Call    string
	Message string
}

func (e *AppError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s: %s", e.Call, e.Message)
	}
	return fmt.Sprintf("%s: unknown error", e.Call)
}

// ErrorMessage returns the text the backend supplied for err, or "" when the
// failure carried none (transport errors never do).
func ErrorMessage(err error) string {
	var se *StatusError
	if errors.As(err, &se) {
		return se.Message
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return ae.Message
	}
	return ""
}

// Outcome classifies err for metrics and logs
func Outcome(err error) string {
	if err == nil {
		return "ok"
	}
	var te *TransportError
	if errors.As(err, &te) {
		return "transport_error"
	}
	var se *StatusError
	if errors.As(err, &se) {
		return "status_error"
	}
	var ae *AppError
	if errors.As(err, &ae) {
		return "app_error"
	}
	return "error"
}
