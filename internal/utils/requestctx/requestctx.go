// Package requestctx carries the request ID across layer boundaries
// that only see a context.Context, so logs written deep in a service
// or an event handler can still be joined back to the HTTP request.
package requestctx

import "context"

type requestIDKey struct{}

// WithRequestID stores the request ID on the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, requestID)
}

// RequestID reads the request ID back, or "" when the context never
// passed through the request ID middleware.
func RequestID(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	s, _ := ctx.Value(requestIDKey{}).(string)
	return s
}
