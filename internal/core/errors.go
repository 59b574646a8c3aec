// Package core provides core types and interfaces for the LiteGPT gateway.
package core

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrorType represents the type of error that occurred
type ErrorType string

const (
	// ErrorTypeEmptyInput indicates the chat message was empty after trimming (400)
	ErrorTypeEmptyInput ErrorType = "empty_input"
	// ErrorTypeInvalidRequest indicates a malformed inbound request (400)
	ErrorTypeInvalidRequest ErrorType = "invalid_request"
	// ErrorTypeBackend indicates the generation backend answered with a failure status (500)
	ErrorTypeBackend ErrorType = "backend_error"
	// ErrorTypeBackendUnavailable indicates the generation backend could not be reached in time (503)
	ErrorTypeBackendUnavailable ErrorType = "backend_unavailable"
)

// GatewayError is the base error type for all gateway errors
type GatewayError struct {
	Type       ErrorType `json:"type"`
	Message    string    `json:"message"`
	StatusCode int       `json:"status_code"`
	Backend    string    `json:"backend,omitempty"`

	// BackendStatus and BackendBody hold what the backend returned for
	// ErrorTypeBackend. They are logged, never sent to clients.
	BackendStatus int    `json:"-"`
	BackendBody   string `json:"-"`

	// Original error for debugging (not exposed to clients)
	Err error `json:"-"`
}

// Error implements the error interface
func (e *GatewayError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("[%s] %s: %s", e.Backend, e.Type, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap implements the error unwrapping interface
func (e *GatewayError) Unwrap() error {
	return e.Err
}

// HTTPStatusCode returns the appropriate HTTP status code for this error
func (e *GatewayError) HTTPStatusCode() int {
	if e.StatusCode != 0 {
		return e.StatusCode
	}
	switch e.Type {
	case ErrorTypeEmptyInput, ErrorTypeInvalidRequest:
		return http.StatusBadRequest
	case ErrorTypeBackendUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// ToJSON converts the error to a JSON-compatible map
func (e *GatewayError) ToJSON() map[string]interface{} {
	return map[string]interface{}{
		"error": map[string]interface{}{
			"type":    e.Type,
			"message": e.Message,
		},
	}
}

// NewEmptyInputError creates the error returned for blank chat messages (400)
func NewEmptyInputError() *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeEmptyInput,
		Message:    "Message cannot be empty",
		StatusCode: http.StatusBadRequest,
	}
}

// NewInvalidRequestError creates a new invalid request error (400)
func NewInvalidRequestError(message string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeInvalidRequest,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Err:        err,
	}
}

// NewBackendError creates an error for a backend that answered with a
// non-success status. The status and body are preserved for logging.
func NewBackendError(backend string, status int, body []byte) *GatewayError {
	return &GatewayError{
		Type:          ErrorTypeBackend,
		Message:       fmt.Sprintf("Ollama Error: %d", status),
		StatusCode:    http.StatusInternalServerError,
		Backend:       backend,
		BackendStatus: status,
		BackendBody:   string(body),
	}
}

// NewBackendUnavailableError creates an error for a backend that could not be
// reached: connection refused, DNS failure or timeout (503)
func NewBackendUnavailableError(backend string, err error) *GatewayError {
	return &GatewayError{
		Type:       ErrorTypeBackendUnavailable,
		Message:    "Could not connect to Ollama.",
		StatusCode: http.StatusServiceUnavailable,
		Backend:    backend,
		Err:        err,
	}
}

// IsErrorType reports whether err is a GatewayError of the given type.
func IsErrorType(err error, t ErrorType) bool {
	var gatewayErr *GatewayError
	return errors.As(err, &gatewayErr) && gatewayErr.Type == t
}
