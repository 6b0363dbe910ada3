package tmdb

import (
	"log/slog"
	"net/http"

	"golang.org/x/time/rate"

	"marquee/internal/config"
)

// NewFromConfig builds a client from the [tmdb] section: timeout, shared rate
// limiter, and breaker. A requests_per_second of 0 disables throttling.
func NewFromConfig(cfg *config.Config, logger *slog.Logger) (*Client, error) {
	if err := cfg.RequireTMDB(); err != nil {
		return nil, err
	}
	opts := []Option{
		WithHTTPClient(&http.Client{Timeout: cfg.TMDBTimeout()}),
		WithLogger(logger),
	}
	if cfg.TMDB.RequestsPerSecond > 0 {
		opts = append(opts, WithRateLimiter(rate.NewLimiter(rate.Limit(cfg.TMDB.RequestsPerSecond), cfg.TMDB.Burst)))
	}
	if cfg.TMDB.Breaker.Enabled {
		opts = append(opts, WithBreaker(BreakerSettings{
			FailureThreshold: uint32(cfg.TMDB.Breaker.FailureThreshold),
			OpenTimeout:      cfg.BreakerOpenDuration(),
		}))
	}
	return New(cfg.TMDB.APIToken, cfg.TMDB.BaseURL, cfg.TMDB.Language, opts...)
}
