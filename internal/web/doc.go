// Package web serves the recommendation page, the JSON API under /api, a
// health check, and Prometheus metrics over a chi router.
//
// Pages are rendered from embedded html/template files. Each recommendation
// render builds fresh per-card view state, so trailer players always start
// collapsed.
package web
