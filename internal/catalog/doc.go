// Package catalog holds the fixed movie catalog and its precomputed pairwise
// similarity matrix.
//
// Entries are positionally aligned with the matrix: entry i owns row i and
// column i. A Catalog is immutable after construction and safe for concurrent
// readers. The on-disk artifact is a SQLite database written by Import and read
// by Load; ReadBundle decodes the JSON interchange format emitted by the
// offline tooling that computes the similarity scores.
package catalog
