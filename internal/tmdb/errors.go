package tmdb

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"marquee/internal/services"
)

// ErrUnavailable reports a call rejected because the circuit breaker is open.
var ErrUnavailable = errors.New("tmdb temporarily unavailable")

// APIError describes a non-2xx TMDB response.
type APIError struct {
	StatusCode int
	Endpoint   string
	Body       string
	Latency    time.Duration
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("tmdb %s returned %d (latency=%v)", e.Endpoint, e.StatusCode, e.Latency)
	if e.Body != "" {
		msg += ": " + e.Body
	}
	return msg
}

// Is lets callers classify API errors with the shared service markers.
func (e *APIError) Is(target error) bool {
	switch target {
	case services.ErrExternal:
		return true
	case services.ErrConfiguration:
		return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
	case services.ErrTransient:
		return e.retryable()
	}
	return false
}

func (e *APIError) retryable() bool {
	return e.StatusCode == http.StatusTooManyRequests || e.StatusCode >= 500
}

// countsAsBreakerFailure reports whether err says something about TMDB health.
// Client-side mistakes such as an unknown movie ID leave the breaker alone.
func countsAsBreakerFailure(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.retryable()
	}
	return true
}

// cancelledByCaller reports whether the request was abandoned on our side,
// such as a closed browser tab or a sibling lookup failing first. These say
// nothing about TMDB and are neither successes nor failures to the breaker.
func cancelledByCaller(err error) bool {
	return errors.Is(err, context.Canceled)
}
