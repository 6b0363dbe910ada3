package catalog_test

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/gofrs/flock"

	"marquee/internal/catalog"
	"marquee/internal/services"
	"marquee/internal/testsupport"
)

func TestImportThenLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	want := testsupport.SampleCatalog(t)
	testsupport.WriteArtifact(t, path, want)

	got, err := catalog.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != want.Len() {
		t.Fatalf("Len = %d, want %d", got.Len(), want.Len())
	}
	for i := 0; i < want.Len(); i++ {
		we, _ := want.Entry(i)
		ge, _ := got.Entry(i)
		if we != ge {
			t.Fatalf("entry %d = %+v, want %+v", i, ge, we)
		}
		wr, gr := want.Row(i), got.Row(i)
		for j := range wr {
			if wr[j] != gr[j] {
				t.Fatalf("score[%d][%d] = %v, want %v", i, j, gr[j], wr[j])
			}
		}
	}
	if _, err := os.Stat(path + ".tmp"); !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("expected temp artifact removed, stat err = %v", err)
	}
}

func TestImportReplacesExistingArtifact(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	testsupport.WriteArtifact(t, path, testsupport.SampleCatalog(t))

	small := testsupport.NewCatalog(t,
		[]catalog.Entry{{MovieID: 1, Title: "A"}, {MovieID: 2, Title: "B"}},
		[][]float64{{1, 0.1}, {0.1, 1}},
	)
	testsupport.WriteArtifact(t, path, small)

	got, err := catalog.Load(context.Background(), path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Len() != 2 {
		t.Fatalf("expected replaced artifact with 2 movies, got %d", got.Len())
	}
}

func TestLoadMissingArtifact(t *testing.T) {
	_, err := catalog.Load(context.Background(), filepath.Join(t.TempDir(), "absent.db"))
	if !errors.Is(err, services.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLoadDetectsSchemaMismatch(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	testsupport.WriteArtifact(t, path, testsupport.SampleCatalog(t))

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, err := db.Exec("UPDATE schema_version SET version = 99"); err != nil {
		t.Fatalf("bump version: %v", err)
	}
	_ = db.Close()

	if _, err := catalog.Load(context.Background(), path); !errors.Is(err, catalog.ErrSchemaMismatch) {
		t.Fatalf("expected ErrSchemaMismatch, got %v", err)
	}
}

func TestImportFailsFastWhenLocked(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	holder := flock.New(path + ".lock")
	locked, err := holder.TryLock()
	if err != nil || !locked {
		t.Fatalf("hold lock: %v %v", locked, err)
	}
	defer func() { _ = holder.Unlock() }()

	err = catalog.Import(context.Background(), path, testsupport.SampleCatalog(t))
	if !errors.Is(err, catalog.ErrLocked) {
		t.Fatalf("expected ErrLocked, got %v", err)
	}
	if _, statErr := os.Stat(path); !errors.Is(statErr, os.ErrNotExist) {
		t.Fatalf("expected no artifact written, stat err = %v", statErr)
	}
}
