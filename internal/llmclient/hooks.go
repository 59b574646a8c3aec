package llmclient

import (
	"context"
	"time"
)

// RequestInfo describes an outbound backend request.
type RequestInfo struct {
	Backend  string
	Model    string
	Endpoint string
	Method   string
}

// ResponseInfo describes the outcome of an outbound backend request.
// StatusCode is zero when the backend was never reached.
type ResponseInfo struct {
	Backend    string
	Model      string
	Endpoint   string
	StatusCode int
	Duration   time.Duration
	Error      error
}

// Hooks lets observability code watch backend traffic without the client
// depending on a metrics library. Both callbacks are optional.
type Hooks struct {
	// OnRequestStart may return a derived context; nil keeps the original.
	OnRequestStart func(ctx context.Context, info RequestInfo) context.Context
	OnRequestEnd   func(ctx context.Context, info ResponseInfo)
}
