package catalog

import (
	"errors"
	"fmt"
	"math"
	"strings"

	"golang.org/x/text/cases"
)

// ErrInvalidArtifact reports a catalog whose entries and similarity rows do not line up.
var ErrInvalidArtifact = errors.New("invalid catalog artifact")

// Entry is one movie in the catalog.
type Entry struct {
	MovieID int64  `json:"movie_id"`
	Title   string `json:"title"`
}

// Catalog pairs the ordered movie list with its similarity matrix.
type Catalog struct {
	entries []Entry
	rows    [][]float64
	index   map[string]int
	folded  []string
}

// New validates and assembles a catalog. rows[i][j] is the similarity of
// entry i to entry j; higher is more similar.
func New(entries []Entry, rows [][]float64) (*Catalog, error) {
	n := len(entries)
	if n == 0 {
		return nil, fmt.Errorf("%w: catalog has no movies", ErrInvalidArtifact)
	}
	if len(rows) != n {
		return nil, fmt.Errorf("%w: %d movies but %d similarity rows", ErrInvalidArtifact, n, len(rows))
	}

	c := &Catalog{
		entries: make([]Entry, n),
		rows:    make([][]float64, n),
		index:   make(map[string]int, n),
		folded:  make([]string, n),
	}
	copy(c.entries, entries)

	folder := cases.Fold()
	for i, row := range rows {
		if len(row) != n {
			return nil, fmt.Errorf("%w: similarity row %d has %d scores, want %d", ErrInvalidArtifact, i, len(row), n)
		}
		for j, score := range row {
			if math.IsNaN(score) {
				return nil, fmt.Errorf("%w: similarity[%d][%d] is NaN", ErrInvalidArtifact, i, j)
			}
		}
		c.rows[i] = append([]float64(nil), row...)
	}
	for i, entry := range c.entries {
		if _, seen := c.index[entry.Title]; !seen {
			c.index[entry.Title] = i
		}
		c.folded[i] = folder.String(entry.Title)
	}
	return c, nil
}

// Len returns the number of movies.
func (c *Catalog) Len() int {
	return len(c.entries)
}

// Entries returns a copy of the catalog in index order.
func (c *Catalog) Entries() []Entry {
	out := make([]Entry, len(c.entries))
	copy(out, c.entries)
	return out
}

// Entry returns the movie at position i.
func (c *Catalog) Entry(i int) (Entry, bool) {
	if i < 0 || i >= len(c.entries) {
		return Entry{}, false
	}
	return c.entries[i], true
}

// Titles returns every title in catalog order, duplicates included.
func (c *Catalog) Titles() []string {
	out := make([]string, len(c.entries))
	for i, entry := range c.entries {
		out[i] = entry.Title
	}
	return out
}

// IndexOf returns the position of the first entry whose title matches exactly.
func (c *Catalog) IndexOf(title string) (int, bool) {
	i, ok := c.index[title]
	return i, ok
}

// Row returns a copy of the similarity scores from entry i to every entry.
func (c *Catalog) Row(i int) []float64 {
	if i < 0 || i >= len(c.rows) {
		return nil
	}
	return append([]float64(nil), c.rows[i]...)
}

// Search returns entries whose title contains query, ignoring case. An empty
// query matches everything. limit <= 0 means no limit.
func (c *Catalog) Search(query string, limit int) []Entry {
	needle := cases.Fold().String(strings.TrimSpace(query))
	var out []Entry
	for i, title := range c.folded {
		if needle != "" && !strings.Contains(title, needle) {
			continue
		}
		out = append(out, c.entries[i])
		if limit > 0 && len(out) >= limit {
			break
		}
	}
	return out
}
