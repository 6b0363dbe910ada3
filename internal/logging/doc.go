// Package logging assembles structured slog loggers and formatting helpers used
// across Marquee.
//
// It owns the configurable console/JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so handlers and enrichment
// fan-out automatically tag log lines with the request correlation ID and the
// queried title. The package also provides a no-op logger for tests and wiring
// code that cannot fail.
package logging
