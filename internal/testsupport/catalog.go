package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"marquee/internal/catalog"
)

// SampleTitles lists the catalog built by SampleCatalog in index order.
var SampleTitles = []string{
	"Avatar",
	"Aliens",
	"Titanic",
	"The Terminator",
	"The Abyss",
	"True Lies",
	"Piranha II",
	"Strange Days",
}

// SampleCatalog builds an eight-movie catalog whose similarity to entry i
// decreases with distance from i, so every row has a unique ranking. Movie IDs
// are 100+index.
func SampleCatalog(t testing.TB) *catalog.Catalog {
	t.Helper()

	n := len(SampleTitles)
	entries := make([]catalog.Entry, n)
	rows := make([][]float64, n)
	for i, title := range SampleTitles {
		entries[i] = catalog.Entry{MovieID: int64(100 + i), Title: title}
		rows[i] = make([]float64, n)
		for j := range rows[i] {
			d := i - j
			if d < 0 {
				d = -d
			}
			rows[i][j] = 1.0 - float64(d)/float64(n) - float64(j)*0.001
		}
	}
	return NewCatalog(t, entries, rows)
}

// NewCatalog builds a catalog or fails the test.
func NewCatalog(t testing.TB, entries []catalog.Entry, rows [][]float64) *catalog.Catalog {
	t.Helper()

	c, err := catalog.New(entries, rows)
	if err != nil {
		t.Fatalf("catalog.New: %v", err)
	}
	return c
}

// WriteArtifact imports c into a SQLite artifact at path.
func WriteArtifact(t testing.TB, path string, c *catalog.Catalog) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	if err := catalog.Import(context.Background(), path, c); err != nil {
		t.Fatalf("import artifact: %v", err)
	}
}
