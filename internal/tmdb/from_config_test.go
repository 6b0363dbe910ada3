package tmdb_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"marquee/internal/logging"
	"marquee/internal/testsupport"
	"marquee/internal/tmdb"
)

func TestNewFromConfigRequiresToken(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithTMDBToken(""))
	if _, err := tmdb.NewFromConfig(cfg, logging.NewNop()); err == nil {
		t.Fatal("expected error without token")
	}
}

func TestNewFromConfigUsesConfiguredEndpoint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer cfg-token" {
			t.Errorf("unexpected authorization %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "en-US" {
			t.Errorf("unexpected language %q", got)
		}
		_, _ = w.Write([]byte(`{"id":7,"title":"Aliens","poster_path":"/p.jpg"}`))
	}))
	t.Cleanup(server.Close)

	cfg := testsupport.NewConfig(t,
		testsupport.WithTMDBToken("cfg-token"),
		testsupport.WithTMDBBaseURL(server.URL))
	cfg.TMDB.RequestsPerSecond = 50
	cfg.TMDB.Breaker.Enabled = true

	client, err := tmdb.NewFromConfig(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("NewFromConfig: %v", err)
	}
	details, err := client.GetMovieDetails(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetMovieDetails: %v", err)
	}
	if details.PosterPath != "/p.jpg" {
		t.Fatalf("unexpected poster path %q", details.PosterPath)
	}
}
