// Package llmclient provides the base HTTP client for generation backends:
// - Request marshaling
// - A single bounded attempt per call, no retries
// - Classification of failures into backend errors and unavailability
// - Observability hooks around every exchange
package llmclient

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"litegpt/internal/core"
	"litegpt/internal/httpclient"
)

// Config holds configuration for the LLM client
type Config struct {
	// BackendName identifies the backend in errors, logs and metrics
	BackendName string

	// BaseURL is the API base URL
	BaseURL string

	// Timeout bounds each call, including reading the response body
	Timeout time.Duration

	// Hooks are invoked around every request
	Hooks Hooks
}

// DefaultConfig returns default client configuration
func DefaultConfig(backendName, baseURL string) Config {
	return Config{
		BackendName: backendName,
		BaseURL:     baseURL,
		Timeout:     httpclient.DefaultTimeout,
	}
}

// HeaderSetter is a function that sets headers on an HTTP request
type HeaderSetter func(req *http.Request)

// Client is a base HTTP client for generation backends
type Client struct {
	httpClient   *http.Client
	config       Config
	headerSetter HeaderSetter
}

// New creates a new client with the given configuration
func New(config Config, headerSetter HeaderSetter) *Client {
	httpCfg := httpclient.DefaultConfig(config.Timeout)
	return &Client{
		httpClient:   httpclient.NewHTTPClient(&httpCfg),
		config:       config,
		headerSetter: headerSetter,
	}
}

// NewWithHTTPClient creates a new client with a custom HTTP client
func NewWithHTTPClient(httpClient *http.Client, config Config, headerSetter HeaderSetter) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{
		httpClient:   httpClient,
		config:       config,
		headerSetter: headerSetter,
	}
}

// Request represents an HTTP request to be made
type Request struct {
	Method   string
	Endpoint string
	Body     interface{} // Will be JSON marshaled if not nil

	// Model labels the request for hooks; it is not sent anywhere
	Model string
}

// Response represents an HTTP response
type Response struct {
	StatusCode int
	Body       []byte
}

// Do executes a single request and returns the raw response body.
// Transport failures (refused, DNS, timeout, cancellation) become
// ErrorTypeBackendUnavailable; any status other than 200 becomes
// ErrorTypeBackend carrying the status and body.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	if c.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Timeout)
		defer cancel()
	}

	start := time.Now()
	ctx = c.hookStart(ctx, req)

	resp, err := c.doRequest(ctx, req)
	if err != nil {
		c.hookEnd(ctx, req, 0, start, err)
		return nil, err
	}

	if resp.StatusCode != http.StatusOK {
		backendErr := core.NewBackendError(c.config.BackendName, resp.StatusCode, resp.Body)
		c.hookEnd(ctx, req, resp.StatusCode, start, backendErr)
		return nil, backendErr
	}

	c.hookEnd(ctx, req, resp.StatusCode, start, nil)
	return resp, nil
}

// doRequest executes a single HTTP request
func (c *Client) doRequest(ctx context.Context, req Request) (*Response, error) {
	httpReq, err := c.buildRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, core.NewBackendUnavailableError(c.config.BackendName, err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, core.NewBackendUnavailableError(c.config.BackendName, err)
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Body:       body,
	}, nil
}

// buildRequest creates an HTTP request from a Request
func (c *Client) buildRequest(ctx context.Context, req Request) (*http.Request, error) {
	url := c.config.BaseURL + req.Endpoint

	var bodyReader io.Reader
	if req.Body != nil {
		bodyBytes, err := json.Marshal(req.Body)
		if err != nil {
			return nil, core.NewInvalidRequestError("failed to marshal request", err)
		}
		bodyReader = bytes.NewReader(bodyBytes)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, url, bodyReader)
	if err != nil {
		return nil, core.NewInvalidRequestError("failed to create request", err)
	}

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if c.headerSetter != nil {
		c.headerSetter(httpReq)
	}

	return httpReq, nil
}

func (c *Client) hookStart(ctx context.Context, req Request) context.Context {
	if c.config.Hooks.OnRequestStart == nil {
		return ctx
	}
	next := c.config.Hooks.OnRequestStart(ctx, RequestInfo{
		Backend:  c.config.BackendName,
		Model:    req.Model,
		Endpoint: req.Endpoint,
		Method:   req.Method,
	})
	if next == nil {
		return ctx
	}
	return next
}

func (c *Client) hookEnd(ctx context.Context, req Request, status int, start time.Time, err error) {
	if c.config.Hooks.OnRequestEnd == nil {
		return
	}
	c.config.Hooks.OnRequestEnd(ctx, ResponseInfo{
		Backend:    c.config.BackendName,
		Model:      req.Model,
		Endpoint:   req.Endpoint,
		StatusCode: status,
		Duration:   time.Since(start),
		Error:      err,
	})
}
