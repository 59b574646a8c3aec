package httpclient

import (
	"net/http"
	"testing"
	"time"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig(0)
	if cfg.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %v, want %v", cfg.Timeout, DefaultTimeout)
	}
	if cfg.ResponseHeaderTimeout != DefaultTimeout {
		t.Errorf("ResponseHeaderTimeout = %v, want %v", cfg.ResponseHeaderTimeout, DefaultTimeout)
	}
}

func TestDefaultConfig_ShortTimeoutCapsDial(t *testing.T) {
	cfg := DefaultConfig(2 * time.Second)
	if cfg.DialTimeout != 2*time.Second {
		t.Errorf("DialTimeout = %v, want 2s", cfg.DialTimeout)
	}
	if cfg.Timeout != 2*time.Second {
		t.Errorf("Timeout = %v, want 2s", cfg.Timeout)
	}
}

func TestNewHTTPClient(t *testing.T) {
	cfg := DefaultConfig(5 * time.Second)
	client := NewHTTPClient(&cfg)

	if client.Timeout != 5*time.Second {
		t.Errorf("client.Timeout = %v, want 5s", client.Timeout)
	}
	transport, ok := client.Transport.(*http.Transport)
	if !ok {
		t.Fatalf("expected *http.Transport, got %T", client.Transport)
	}
	if transport.ResponseHeaderTimeout != 5*time.Second {
		t.Errorf("ResponseHeaderTimeout = %v, want 5s", transport.ResponseHeaderTimeout)
	}
}

func TestNewHTTPClient_NilConfig(t *testing.T) {
	client := NewHTTPClient(nil)
	if client.Timeout != DefaultTimeout {
		t.Errorf("client.Timeout = %v, want %v", client.Timeout, DefaultTimeout)
	}
}
