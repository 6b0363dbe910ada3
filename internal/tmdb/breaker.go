package tmdb

import (
	"errors"
	"fmt"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/services"
)

// BreakerSettings tunes the circuit breaker around TMDB calls.
type BreakerSettings struct {
	// FailureThreshold is the number of consecutive failures that opens the circuit.
	FailureThreshold uint32
	// OpenTimeout is how long the circuit stays open before a half-open trial request.
	OpenTimeout time.Duration
	// HalfOpenRequests caps concurrent trial requests while half-open. Defaults to 1.
	HalfOpenRequests uint32
}

const breakerName = "tmdb-api"

type breaker struct {
	cb *gobreaker.CircuitBreaker[struct{}]
}

func newBreaker(settings BreakerSettings, client *Client) *breaker {
	threshold := settings.FailureThreshold
	if threshold == 0 {
		threshold = 5
	}
	halfOpen := settings.HalfOpenRequests
	if halfOpen == 0 {
		halfOpen = 1
	}

	metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(0)

	cb := gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        breakerName,
		MaxRequests: halfOpen,
		Timeout:     settings.OpenTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= threshold
		},
		IsSuccessful: func(err error) bool {
			return !countsAsBreakerFailure(err)
		},
		IsExcluded: cancelledByCaller,
		OnStateChange: func(name string, from, to gobreaker.State) {
			metrics.CircuitBreakerState.WithLabelValues(name).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(name, from.String(), to.String()).Inc()
			attrs := []logging.Attr{
				logging.String("from", from.String()),
				logging.String("to", to.String()),
			}
			if to == gobreaker.StateOpen {
				logging.WarnWithContext(client.logger, "tmdb circuit opened", "tmdb_circuit_open",
					append(attrs,
						logging.String(logging.FieldErrorHint, "check TMDB status and the configured api token"),
						logging.String(logging.FieldImpact, "posters and trailers are skipped until the circuit closes"),
					)...)
				return
			}
			client.logger.Info("tmdb circuit state changed", logging.Args(attrs...)...)
		},
	})
	return &breaker{cb: cb}
}

func (b *breaker) execute(endpoint string, fn func() error) error {
	_, err := b.cb.Execute(func() (struct{}, error) {
		return struct{}{}, fn()
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		metrics.RecordTMDBRequest(endpoint, "rejected", 0)
		return services.Wrap(services.ErrExternal, "tmdb", endpoint, "request rejected",
			fmt.Errorf("%w: %w", ErrUnavailable, err))
	}
	return err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return 0
	}
}
