// Package preflight provides readiness checks for the filesystem paths,
// catalog artifact, and TMDB credentials that Marquee depends on.
//
// The CLI "marquee status" command runs RunAll and renders each Result. The
// serve command reuses CheckCatalog to fail fast before binding a port.
package preflight
