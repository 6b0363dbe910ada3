// Package recommend ranks catalog entries by similarity to a chosen title.
package recommend

import (
	"errors"
	"fmt"
	"sort"

	"marquee/internal/catalog"
	"marquee/internal/services"
)

// DefaultLimit is the number of recommendations returned when no limit is set.
const DefaultLimit = 6

// ErrTitleNotFound reports a query title that is not in the catalog.
var ErrTitleNotFound = errors.New("title not found in catalog")

// Ranker answers recommendation queries against an immutable catalog. It is
// safe for concurrent use.
type Ranker struct {
	catalog *catalog.Catalog
	limit   int
}

// Option customizes a Ranker.
type Option func(*Ranker)

// WithLimit caps the number of recommendations. Values <= 0 are ignored.
func WithLimit(n int) Option {
	return func(r *Ranker) {
		if n > 0 {
			r.limit = n
		}
	}
}

// NewRanker constructs a ranker over c.
func NewRanker(c *catalog.Catalog, opts ...Option) *Ranker {
	r := &Ranker{catalog: c, limit: DefaultLimit}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Limit reports the configured result cap.
func (r *Ranker) Limit() int {
	return r.limit
}

type scored struct {
	index int
	score float64
}

// Recommend returns up to Limit entries most similar to title, best first.
// The query title never appears in the result, even when the catalog holds
// duplicate entries for it. Equal scores keep catalog order.
func (r *Ranker) Recommend(title string) ([]catalog.Entry, error) {
	source, ok := r.catalog.IndexOf(title)
	if !ok {
		return nil, services.Wrap(services.ErrNotFound, "recommend", "lookup",
			fmt.Sprintf("%q", title), ErrTitleNotFound)
	}

	row := r.catalog.Row(source)
	candidates := make([]scored, 0, len(row))
	for j, score := range row {
		candidates = append(candidates, scored{index: j, score: score})
	}
	sort.SliceStable(candidates, func(a, b int) bool {
		return candidates[a].score > candidates[b].score
	})

	out := make([]catalog.Entry, 0, min(r.limit, len(candidates)))
	for _, cand := range candidates {
		if len(out) == r.limit {
			break
		}
		if cand.index == source {
			continue
		}
		entry, _ := r.catalog.Entry(cand.index)
		if entry.Title == title {
			continue
		}
		out = append(out, entry)
	}
	return out, nil
}

// RecommendTitles is Recommend reduced to titles.
func (r *Ranker) RecommendTitles(title string) ([]string, error) {
	entries, err := r.Recommend(title)
	if err != nil {
		return nil, err
	}
	titles := make([]string, len(entries))
	for i, entry := range entries {
		titles[i] = entry.Title
	}
	return titles, nil
}
