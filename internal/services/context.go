package services

import "context"

type contextKey string

const (
	requestIDKey contextKey = "request_id"
	queryKey     contextKey = "query"
)

// WithRequestID annotates context with a correlation identifier.
func WithRequestID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, requestIDKey, id)
}

// RequestIDFromContext extracts the correlation identifier if present.
func RequestIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(requestIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithQuery annotates context with the title a recommendation was requested for.
func WithQuery(ctx context.Context, title string) context.Context {
	if title == "" {
		return ctx
	}
	return context.WithValue(ctx, queryKey, title)
}

// QueryFromContext returns the recommendation query title if present.
func QueryFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(queryKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}
