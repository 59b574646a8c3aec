// Package ollama provides the Ollama generation backend for the LiteGPT gateway.
package ollama

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/tidwall/gjson"

	"litegpt/internal/core"
	"litegpt/internal/llmclient"
)

const (
	backendName = "ollama"

	// DefaultBaseURL is where a local Ollama listens out of the box.
	DefaultBaseURL = "http://localhost:11434"
	// DefaultModel is the model LiteGPT is tuned for.
	DefaultModel = "tinyllama"

	generateEndpoint = "/api/generate"
	tagsEndpoint     = "/api/tags"

	availabilityTimeout = 5 * time.Second
)

// Config holds the deployment settings for the Ollama backend.
type Config struct {
	BaseURL string
	Model   string
	Timeout time.Duration
	Hooks   llmclient.Hooks
	// Logger defaults to slog.Default()
	Logger *slog.Logger
}

// Provider implements core.Generator against Ollama's native generate API.
type Provider struct {
	client *llmclient.Client
	model  string
	logger *slog.Logger
}

// New creates a new Ollama provider.
func New(cfg Config) *Provider {
	return &Provider{
		client: llmclient.New(clientConfig(cfg), setHeaders),
		model:  modelOrDefault(cfg.Model),
		logger: loggerOrDefault(cfg.Logger),
	}
}

// NewWithHTTPClient creates a new Ollama provider with a custom HTTP client.
// If httpClient is nil, http.DefaultClient is used.
func NewWithHTTPClient(httpClient *http.Client, cfg Config) *Provider {
	return &Provider{
		client: llmclient.NewWithHTTPClient(httpClient, clientConfig(cfg), setHeaders),
		model:  modelOrDefault(cfg.Model),
		logger: loggerOrDefault(cfg.Logger),
	}
}

func clientConfig(cfg Config) llmclient.Config {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	c := llmclient.DefaultConfig(backendName, baseURL)
	if cfg.Timeout > 0 {
		c.Timeout = cfg.Timeout
	}
	c.Hooks = cfg.Hooks
	return c
}

func modelOrDefault(model string) string {
	if model == "" {
		return DefaultModel
	}
	return model
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}

// Model returns the model identifier sent with every request.
func (p *Provider) Model() string {
	return p.model
}

// setHeaders sets the headers for Ollama API requests
func setHeaders(req *http.Request) {
	if requestID := core.GetRequestID(req.Context()); requestID != "" {
		req.Header.Set(core.RequestIDHeader, requestID)
	}
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
	TopP        float64 `json:"top_p"`
	NumPredict  int     `json:"num_predict"`
}

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

// Generate sends a single non-streaming completion request and returns the
// raw generated text. A missing or malformed "response" field yields "".
func (p *Provider) Generate(ctx context.Context, prompt string, opts core.GenerationOptions) (string, error) {
	resp, err := p.client.Do(ctx, llmclient.Request{
		Method:   http.MethodPost,
		Endpoint: generateEndpoint,
		Model:    p.model,
		Body: generateRequest{
			Model:  p.model,
			Prompt: prompt,
			Stream: false,
			Options: generateOptions{
				Temperature: opts.Temperature,
				TopP:        opts.TopP,
				NumPredict:  opts.MaxTokens,
			},
		},
	})
	if err != nil {
		return "", err
	}

	if !gjson.ValidBytes(resp.Body) {
		p.logger.Warn("ollama returned a non-JSON body",
			"body_length", len(resp.Body),
			"request_id", core.GetRequestID(ctx),
		)
		return "", nil
	}
	field := gjson.GetBytes(resp.Body, "response")
	if field.Type != gjson.String {
		return "", nil
	}
	return field.Str, nil
}

// CheckAvailability verifies that Ollama is running and accessible.
// Makes a lightweight request to the tags endpoint.
func (p *Provider) CheckAvailability(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, availabilityTimeout)
	defer cancel()

	_, err := p.client.Do(ctx, llmclient.Request{
		Method:   http.MethodGet,
		Endpoint: tagsEndpoint,
	})
	return err
}
