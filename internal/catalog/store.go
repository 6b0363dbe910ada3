package catalog

import (
	"context"
	"database/sql"
	_ "embed"
	"encoding/binary"
	"errors"
	"fmt"
	"io/fs"
	"math"
	"os"
	"strings"
	"time"

	"github.com/gofrs/flock"
	_ "modernc.org/sqlite"

	"marquee/internal/services"
)

//go:embed schema.sql
var schemaSQL string

// schemaVersion is the artifact layout version. Bump it when schema.sql changes;
// older artifacts must be re-imported.
const schemaVersion = 1

var (
	// ErrSchemaMismatch indicates the artifact was written with a different layout version.
	ErrSchemaMismatch = errors.New("schema version mismatch")
	// ErrLocked indicates another import currently holds the artifact lock.
	ErrLocked = errors.New("catalog artifact is locked by another import")
)

const (
	sqliteBusyCode          = 5
	busyRetryAttempts       = 5
	busyRetryInitialBackoff = 10 * time.Millisecond
	busyRetryMaxBackoff     = 200 * time.Millisecond
	readLockRetryDelay      = 50 * time.Millisecond
	readLockTimeout         = 10 * time.Second
)

// Load reads the artifact at path. A shared lock on <path>.lock is held while
// reading so a concurrent Import never produces a torn read.
func Load(ctx context.Context, path string) (*Catalog, error) {
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, services.Wrap(services.ErrNotFound, "catalog", "load",
				fmt.Sprintf("no artifact at %s (run 'marquee catalog import')", path), err)
		}
		return nil, fmt.Errorf("stat catalog artifact: %w", err)
	}

	lock := flock.New(lockPath(path))
	lockCtx, cancel := context.WithTimeout(ctx, readLockTimeout)
	defer cancel()
	locked, err := lock.TryRLockContext(lockCtx, readLockRetryDelay)
	if err != nil && !errors.Is(err, context.DeadlineExceeded) {
		return nil, fmt.Errorf("acquire catalog read lock: %w", err)
	}
	if !locked {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, ErrLocked
	}
	defer func() { _ = lock.Unlock() }()

	db, err := openDB("file:" + path + "?mode=ro")
	if err != nil {
		return nil, err
	}
	defer db.Close()

	if err := checkSchema(ctx, db); err != nil {
		return nil, err
	}

	var (
		entries []Entry
		rows    [][]float64
	)
	if err := retryOnBusy(ctx, func() error {
		var readErr error
		entries, readErr = readMovies(ctx, db)
		return readErr
	}); err != nil {
		return nil, err
	}
	if err := retryOnBusy(ctx, func() error {
		var readErr error
		rows, readErr = readSimilarity(ctx, db, len(entries))
		return readErr
	}); err != nil {
		return nil, err
	}
	return New(entries, rows)
}

// Import writes c to path. The database is built at <path>.tmp and renamed
// into place while the exclusive lock is held. Import fails fast with
// ErrLocked when another import is running.
func Import(ctx context.Context, path string, c *Catalog) error {
	if c == nil {
		return fmt.Errorf("%w: nil catalog", ErrInvalidArtifact)
	}

	lock := flock.New(lockPath(path))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire catalog lock: %w", err)
	}
	if !locked {
		return ErrLocked
	}
	defer func() { _ = lock.Unlock() }()

	tmp := path + ".tmp"
	if err := os.Remove(tmp); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove stale temp artifact: %w", err)
	}

	if err := writeArtifact(ctx, tmp, c); err != nil {
		_ = os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("install catalog artifact: %w", err)
	}
	return nil
}

func writeArtifact(ctx context.Context, path string, c *Catalog) error {
	db, err := openDB(path)
	if err != nil {
		return err
	}
	defer db.Close()

	return retryOnBusy(ctx, func() error {
		tx, err := db.BeginTx(ctx, nil)
		if err != nil {
			return fmt.Errorf("begin import tx: %w", err)
		}
		defer func() { _ = tx.Rollback() }()

		if _, err := tx.ExecContext(ctx, schemaSQL); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
		if _, err := tx.ExecContext(ctx, "INSERT INTO schema_version (version) VALUES (?)", schemaVersion); err != nil {
			return fmt.Errorf("record schema version: %w", err)
		}

		movieStmt, err := tx.PrepareContext(ctx, "INSERT INTO movies (idx, movie_id, title) VALUES (?, ?, ?)")
		if err != nil {
			return fmt.Errorf("prepare movie insert: %w", err)
		}
		defer movieStmt.Close()
		rowStmt, err := tx.PrepareContext(ctx, "INSERT INTO similarity (idx, scores) VALUES (?, ?)")
		if err != nil {
			return fmt.Errorf("prepare similarity insert: %w", err)
		}
		defer rowStmt.Close()

		for i, entry := range c.entries {
			if _, err := movieStmt.ExecContext(ctx, i, entry.MovieID, entry.Title); err != nil {
				return fmt.Errorf("insert movie %d: %w", i, err)
			}
			if _, err := rowStmt.ExecContext(ctx, i, encodeScores(c.rows[i])); err != nil {
				return fmt.Errorf("insert similarity row %d: %w", i, err)
			}
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit import: %w", err)
		}
		return nil
	})
}

func openDB(dsn string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("apply pragma busy_timeout: %w", err)
	}
	return db, nil
}

func checkSchema(ctx context.Context, db *sql.DB) error {
	var tableExists int
	err := db.QueryRowContext(ctx,
		"SELECT COUNT(1) FROM sqlite_master WHERE type='table' AND name='schema_version'",
	).Scan(&tableExists)
	if err != nil {
		return fmt.Errorf("check schema_version table: %w", err)
	}
	if tableExists == 0 {
		return fmt.Errorf("%w: artifact has no schema_version table (re-run 'marquee catalog import')", ErrSchemaMismatch)
	}

	var version int
	if err := db.QueryRowContext(ctx, "SELECT version FROM schema_version LIMIT 1").Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if version != schemaVersion {
		return fmt.Errorf("%w: artifact has version %d, expected %d (re-run 'marquee catalog import')",
			ErrSchemaMismatch, version, schemaVersion)
	}
	return nil
}

func readMovies(ctx context.Context, db *sql.DB) ([]Entry, error) {
	rows, err := db.QueryContext(ctx, "SELECT idx, movie_id, title FROM movies ORDER BY idx")
	if err != nil {
		return nil, fmt.Errorf("query movies: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			idx   int
			entry Entry
		)
		if err := rows.Scan(&idx, &entry.MovieID, &entry.Title); err != nil {
			return nil, fmt.Errorf("scan movie: %w", err)
		}
		if idx != len(entries) {
			return nil, fmt.Errorf("%w: movie index %d out of sequence", ErrInvalidArtifact, idx)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate movies: %w", err)
	}
	return entries, nil
}

func readSimilarity(ctx context.Context, db *sql.DB, n int) ([][]float64, error) {
	rows, err := db.QueryContext(ctx, "SELECT idx, scores FROM similarity ORDER BY idx")
	if err != nil {
		return nil, fmt.Errorf("query similarity: %w", err)
	}
	defer rows.Close()

	out := make([][]float64, 0, n)
	for rows.Next() {
		var (
			idx  int
			blob []byte
		)
		if err := rows.Scan(&idx, &blob); err != nil {
			return nil, fmt.Errorf("scan similarity row: %w", err)
		}
		if idx != len(out) {
			return nil, fmt.Errorf("%w: similarity index %d out of sequence", ErrInvalidArtifact, idx)
		}
		scores, err := decodeScores(blob)
		if err != nil {
			return nil, fmt.Errorf("similarity row %d: %w", idx, err)
		}
		out = append(out, scores)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate similarity: %w", err)
	}
	return out, nil
}

func encodeScores(scores []float64) []byte {
	buf := make([]byte, 8*len(scores))
	for i, score := range scores {
		binary.LittleEndian.PutUint64(buf[i*8:], math.Float64bits(score))
	}
	return buf
}

func decodeScores(blob []byte) ([]float64, error) {
	if len(blob)%8 != 0 {
		return nil, fmt.Errorf("%w: score blob length %d is not a multiple of 8", ErrInvalidArtifact, len(blob))
	}
	scores := make([]float64, len(blob)/8)
	for i := range scores {
		scores[i] = math.Float64frombits(binary.LittleEndian.Uint64(blob[i*8:]))
	}
	return scores, nil
}

func lockPath(path string) string {
	return path + ".lock"
}

func isSQLiteBusy(err error) bool {
	if err == nil {
		return false
	}
	var coder interface{ Code() int }
	if errors.As(err, &coder) && coder.Code() == sqliteBusyCode {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") || strings.Contains(msg, "database is locked")
}

func retryOnBusy(ctx context.Context, op func() error) error {
	delay := busyRetryInitialBackoff
	var lastErr error
	for attempt := 0; attempt < busyRetryAttempts; attempt++ {
		lastErr = op()
		if lastErr == nil || !isSQLiteBusy(lastErr) || attempt == busyRetryAttempts-1 {
			break
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		delay = min(delay*2, busyRetryMaxBackoff)
	}
	return lastErr
}
