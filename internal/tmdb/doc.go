// Package tmdb provides the minimal TMDB API client used to enrich
// recommendations with posters and trailers.
//
// The bearer credential is injected at construction time and attached to every
// request. Movie detail and video lookups are strongly typed; Ping exists for
// preflight checks. Options let callers share an outbound rate limiter, wrap
// calls in a circuit breaker, or supply a custom HTTP client in tests.
package tmdb
