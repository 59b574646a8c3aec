package core

import "context"

// RequestIDHeader carries the per-request correlation ID: read from and
// echoed to gateway clients, and forwarded to the generation backend.
const RequestIDHeader = "X-Request-ID"

type requestIDKey struct{}

// WithRequestID attaches id to ctx. An empty id leaves ctx unchanged.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey{}, id)
}

// GetRequestID returns the ID stored by WithRequestID, or "".
func GetRequestID(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}
