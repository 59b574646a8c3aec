package app

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"litegpt/config"
)

func testConfig(baseURL string) *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Port:               "0",
			BodySizeLimit:      "1M",
			CORSAllowedOrigins: []string{"*"},
		},
		Backend: config.BackendConfig{
			BaseURL: baseURL,
			Model:   "tinyllama",
			Timeout: config.Duration(5 * time.Second),
		},
		Generation: config.GenerationConfig{Temperature: 0.2, TopP: 0.9, MaxTokens: 100},
		Metrics:    config.MetricsConfig{Enabled: true, Endpoint: "/metrics"},
		Logging:    config.LoggingConfig{Level: "info", Format: "json"},
	}
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewJSONHandler(io.Discard, nil))
}

// fakeOllama serves /api/generate and /api/tags and records what it receives.
func fakeOllama(t *testing.T, response string, calls *atomic.Int32) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/generate":
			calls.Add(1)
			var body map[string]any
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			if body["model"] != "tinyllama" || body["stream"] != false {
				w.WriteHeader(http.StatusBadRequest)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"response": response, "done": true})
		case "/api/tags":
			w.Header().Set("Content-Type", "application/json")
			_, _ = io.WriteString(w, `{"models":[]}`)
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestNew_RequiresConfig(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestApp_ChatRoundTrip(t *testing.T) {
	var calls atomic.Int32
	backend := fakeOllama(t, "The sky is blue.\nAssistant: anything else?", &calls)

	a, err := New(Config{AppConfig: testConfig(backend.URL), Logger: discardLogger()})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": "Why is the sky blue?"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"reply": "The sky is blue."}`, rec.Body.String())
	assert.Equal(t, int32(1), calls.Load())

	metricsReq := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	metricsRec := httptest.NewRecorder()
	a.Handler().ServeHTTP(metricsRec, metricsReq)

	require.Equal(t, http.StatusOK, metricsRec.Code)
	body := metricsRec.Body.String()
	assert.Contains(t, body, `litegpt_chat_requests_total{outcome="generated"} 1`)
	assert.Contains(t, body, "litegpt_backend_requests_total")
}

func TestApp_ChatServiceDirect(t *testing.T) {
	var calls atomic.Int32
	backend := fakeOllama(t, "unused", &calls)

	a, err := New(Config{AppConfig: testConfig(backend.URL), Logger: discardLogger()})
	require.NoError(t, err)

	resp, err := a.Chat().Reply(context.Background(), "i am carol")
	require.NoError(t, err)
	assert.Equal(t, "Nice to meet you, Carol! How can I help you?", resp.Reply)
	assert.Zero(t, calls.Load())
}

func TestApp_BackendDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	a, err := New(Config{AppConfig: testConfig(url), Logger: discardLogger()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": "hello"}`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)

	readyReq := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	readyRec := httptest.NewRecorder()
	a.Handler().ServeHTTP(readyRec, readyReq)
	assert.Equal(t, http.StatusServiceUnavailable, readyRec.Code)
}

func TestApp_MetricsDisabled(t *testing.T) {
	var calls atomic.Int32
	backend := fakeOllama(t, "ok", &calls)

	cfg := testConfig(backend.URL)
	cfg.Metrics.Enabled = false
	a, err := New(Config{AppConfig: cfg, Logger: discardLogger()})
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()
	a.Handler().ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestApp_ShutdownIdempotent(t *testing.T) {
	a, err := New(Config{AppConfig: testConfig("http://127.0.0.1:1"), Logger: discardLogger()})
	require.NoError(t, err)

	require.NoError(t, a.Shutdown(context.Background()))
	require.NoError(t, a.Shutdown(context.Background()))
	assert.Equal(t, ":0", a.Addr())
}
