// Package metrics declares the Prometheus collectors exported on /metrics.
//
// Collectors are registered with the default registry at init via promauto,
// so any package may record into them without wiring.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// TMDB client
	TMDBRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_tmdb_requests_total",
			Help: "Total number of TMDB API requests",
		},
		[]string{"endpoint", "outcome"}, // outcome: "success", "http_error", "transport_error", "decode_error", "rejected", "cancelled"
	)

	TMDBRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_tmdb_request_duration_seconds",
			Help:    "Latency of TMDB API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	// Circuit breaker
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marquee_circuit_breaker_state",
			Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
		},
		[]string{"name"},
	)

	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_circuit_breaker_state_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"name", "from_state", "to_state"},
	)

	// Recommendation and enrichment
	Recommendations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_recommendations_total",
			Help: "Total number of recommendation queries",
		},
		[]string{"outcome"}, // "found", "not_found"
	)

	Enrichments = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_enrichment_total",
			Help: "Total number of per-movie enrichment attempts",
		},
		[]string{"outcome"}, // "success", "no_trailer", "degraded", "cancelled"
	)

	EnrichmentBatchDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "marquee_enrichment_batch_duration_seconds",
			Help:    "Wall time to enrich one batch of recommendations",
			Buckets: prometheus.DefBuckets,
		},
	)

	// Catalog
	CatalogMovies = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marquee_catalog_movies",
			Help: "Number of movies in the loaded catalog",
		},
	)

	// HTTP surface
	HTTPRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marquee_http_requests_total",
			Help: "Total number of HTTP requests served",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marquee_http_request_duration_seconds",
			Help:    "Latency of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordTMDBRequest records one TMDB call.
func RecordTMDBRequest(endpoint, outcome string, duration time.Duration) {
	TMDBRequests.WithLabelValues(endpoint, outcome).Inc()
	TMDBRequestDuration.WithLabelValues(endpoint).Observe(duration.Seconds())
}

// RecordHTTPRequest records one served HTTP request.
func RecordHTTPRequest(method, route string, status int, duration time.Duration) {
	HTTPRequests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
