// Package enrich decorates recommendations with poster and trailer URLs.
//
// Fetcher resolves one movie by issuing the TMDB details and videos requests
// concurrently. Orchestrator walks a recommendation list in fixed-size
// batches: fetches within a batch run concurrently, batches run one after
// another, and each completed batch is handed to a callback so callers can
// render progressively. A failing fetch degrades only its own card.
package enrich
