// Package services defines shared error markers and request context helpers
// used by the recommendation flow and its external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp request correlation identifiers so logs from
//     the web handlers, the enrichment fan-out, and the TMDB client line up.
//   - Structured error markers plus the Wrap helper that let HTTP handlers and
//     CLI commands classify failures (not found vs configuration vs upstream).
//
// Use these helpers when wiring new components so error classification and
// observability stay uniform.
package services
