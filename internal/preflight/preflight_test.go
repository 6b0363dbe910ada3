package preflight

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"marquee/internal/testsupport"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if result.Detail == "" {
		t.Fatal("expected non-empty detail")
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckDirectoryAccess("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckCatalog_OK(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArtifact())
	result := CheckCatalog(context.Background(), cfg.Paths.CatalogPath)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.Contains(result.Detail, "8 movies") {
		t.Fatalf("expected movie count in detail, got %q", result.Detail)
	}
}

func TestCheckCatalog_Missing(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	result := CheckCatalog(context.Background(), cfg.Paths.CatalogPath)
	if result.Passed {
		t.Fatal("expected failure for missing artifact")
	}
	if !strings.Contains(result.Detail, "catalog import") {
		t.Fatalf("expected import hint, got %q", result.Detail)
	}
}

func TestCheckCatalog_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "catalog.db")
	if err := os.WriteFile(path, []byte("not sqlite"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckCatalog(context.Background(), path)
	if result.Passed {
		t.Fatal("expected failure for corrupt artifact")
	}
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

func TestCheckTMDB_SummarizesTimeout(t *testing.T) {
	result := CheckTMDB(context.Background(), pingerFunc(func(context.Context) error {
		return context.DeadlineExceeded
	}))
	if result.Passed {
		t.Fatal("expected failure")
	}
	if !strings.Contains(result.Detail, "timed out") {
		t.Fatalf("unexpected detail: %q", result.Detail)
	}
}

func TestCheckTMDB_AppliesDeadline(t *testing.T) {
	result := CheckTMDB(context.Background(), pingerFunc(func(ctx context.Context) error {
		if _, ok := ctx.Deadline(); !ok {
			return errors.New("no deadline")
		}
		return nil
	}))
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	results := RunAll(context.Background(), nil)
	if results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_AllPassing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/configuration" || r.Header.Get("Authorization") != "Bearer test" {
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"images":{"secure_base_url":"https://image.tmdb.org/t/p/"}}`))
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithArtifact(), testsupport.WithTMDBBaseURL(srv.URL))
	results := RunAll(context.Background(), cfg)
	if len(results) != 4 {
		t.Fatalf("expected 4 results, got %d", len(results))
	}
	for _, r := range results {
		if !r.Passed {
			t.Errorf("check %q failed: %s", r.Name, r.Detail)
		}
	}
	if Failed(results) {
		t.Fatal("expected no failures")
	}
}

func TestRunAll_ReportsMissingToken(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithArtifact(), testsupport.WithTMDBToken(""))
	results := RunAll(context.Background(), cfg)
	if !Failed(results) {
		t.Fatal("expected a failing check")
	}
	last := results[len(results)-1]
	if last.Name != "TMDB" || last.Passed {
		t.Fatalf("expected failing TMDB check, got %+v", last)
	}
	if !strings.Contains(last.Detail, "API_TOKEN") {
		t.Fatalf("expected env var hint, got %q", last.Detail)
	}
}

func TestRunAll_ReportsRejectedToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	cfg := testsupport.NewConfig(t, testsupport.WithArtifact(), testsupport.WithTMDBBaseURL(srv.URL))
	results := RunAll(context.Background(), cfg)
	last := results[len(results)-1]
	if last.Passed {
		t.Fatal("expected TMDB check to fail")
	}
	if !strings.Contains(last.Detail, "auth failed") {
		t.Fatalf("unexpected detail: %q", last.Detail)
	}
}
