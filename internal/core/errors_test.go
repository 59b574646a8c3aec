package core

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestGatewayError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *GatewayError
		expected string
	}{
		{
			name: "error with backend",
			err: &GatewayError{
				Type:    ErrorTypeBackendUnavailable,
				Message: "Could not connect to Ollama.",
				Backend: "ollama",
			},
			expected: "[ollama] backend_unavailable: Could not connect to Ollama.",
		},
		{
			name: "error without backend",
			err: &GatewayError{
				Type:    ErrorTypeEmptyInput,
				Message: "Message cannot be empty",
			},
			expected: "empty_input: Message cannot be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.expected {
				t.Errorf("Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestGatewayError_Unwrap(t *testing.T) {
	originalErr := errors.New("dial tcp: connection refused")
	gatewayErr := NewBackendUnavailableError("ollama", originalErr)

	if unwrapped := gatewayErr.Unwrap(); unwrapped != originalErr {
		t.Errorf("Unwrap() = %v, want %v", unwrapped, originalErr)
	}
	if !errors.Is(gatewayErr, originalErr) {
		t.Error("errors.Is should find the original error")
	}
}

func TestGatewayError_HTTPStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		err      *GatewayError
		expected int
	}{
		{
			name:     "explicit status code",
			err:      &GatewayError{Type: ErrorTypeBackend, StatusCode: http.StatusTeapot},
			expected: http.StatusTeapot,
		},
		{
			name:     "empty input default",
			err:      &GatewayError{Type: ErrorTypeEmptyInput},
			expected: http.StatusBadRequest,
		},
		{
			name:     "invalid request default",
			err:      &GatewayError{Type: ErrorTypeInvalidRequest},
			expected: http.StatusBadRequest,
		},
		{
			name:     "backend error default",
			err:      &GatewayError{Type: ErrorTypeBackend},
			expected: http.StatusInternalServerError,
		},
		{
			name:     "backend unavailable default",
			err:      &GatewayError{Type: ErrorTypeBackendUnavailable},
			expected: http.StatusServiceUnavailable,
		},
		{
			name:     "unknown type",
			err:      &GatewayError{Type: "something_else"},
			expected: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.HTTPStatusCode(); got != tt.expected {
				t.Errorf("HTTPStatusCode() = %d, want %d", got, tt.expected)
			}
		})
	}
}

func TestNewBackendError_PreservesStatusAndBody(t *testing.T) {
	err := NewBackendError("ollama", http.StatusNotFound, []byte(`{"error":"model 'tinyllama' not found"}`))

	if err.Type != ErrorTypeBackend {
		t.Errorf("Type = %q, want %q", err.Type, ErrorTypeBackend)
	}
	if err.HTTPStatusCode() != http.StatusInternalServerError {
		t.Errorf("HTTPStatusCode() = %d, want 500", err.HTTPStatusCode())
	}
	if err.BackendStatus != http.StatusNotFound {
		t.Errorf("BackendStatus = %d, want 404", err.BackendStatus)
	}
	if err.BackendBody != `{"error":"model 'tinyllama' not found"}` {
		t.Errorf("BackendBody = %q", err.BackendBody)
	}
	if err.Message != "Ollama Error: 404" {
		t.Errorf("Message = %q, want %q", err.Message, "Ollama Error: 404")
	}
}

func TestNewEmptyInputError(t *testing.T) {
	err := NewEmptyInputError()
	if err.HTTPStatusCode() != http.StatusBadRequest {
		t.Errorf("HTTPStatusCode() = %d, want 400", err.HTTPStatusCode())
	}
	if err.Message != "Message cannot be empty" {
		t.Errorf("Message = %q", err.Message)
	}
}

func TestGatewayError_ToJSON(t *testing.T) {
	err := NewBackendUnavailableError("ollama", errors.New("timeout"))
	body := err.ToJSON()

	inner, ok := body["error"].(map[string]interface{})
	if !ok {
		t.Fatalf("expected error object, got %T", body["error"])
	}
	if inner["type"] != ErrorTypeBackendUnavailable {
		t.Errorf("type = %v, want %v", inner["type"], ErrorTypeBackendUnavailable)
	}
	if inner["message"] != "Could not connect to Ollama." {
		t.Errorf("message = %v", inner["message"])
	}
	if _, leaked := inner["backend"]; leaked {
		t.Error("backend name should not be exposed")
	}
}

func TestIsErrorType(t *testing.T) {
	wrapped := fmt.Errorf("generate: %w", NewBackendError("ollama", 500, nil))

	if !IsErrorType(wrapped, ErrorTypeBackend) {
		t.Error("expected wrapped backend error to match")
	}
	if IsErrorType(wrapped, ErrorTypeBackendUnavailable) {
		t.Error("did not expect backend_unavailable to match")
	}
	if IsErrorType(errors.New("plain"), ErrorTypeBackend) {
		t.Error("plain error should not match")
	}
}
