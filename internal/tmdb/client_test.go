package tmdb_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/time/rate"

	"marquee/internal/services"
	"marquee/internal/tmdb"
)

func TestNewRequiresToken(t *testing.T) {
	_, err := tmdb.New("", "https://example.com", "en-US")
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := tmdb.New("token", " ", "en-US"); err == nil {
		t.Fatal("expected error when base url missing")
	}
}

func TestGetMovieDetailsSendsCredentialAndLanguage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/19995" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer secret" {
			t.Errorf("unexpected authorization header %q", got)
		}
		if got := r.Header.Get("Accept"); got != "application/json" {
			t.Errorf("unexpected accept header %q", got)
		}
		if got := r.URL.Query().Get("language"); got != "en-US" {
			t.Errorf("unexpected language %q", got)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"id":19995,"title":"Avatar","poster_path":"/kyeqWdyUXW608qlYkRqosgbbJyK.jpg"}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("secret", server.URL+"/", "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	details, err := client.GetMovieDetails(context.Background(), 19995)
	if err != nil {
		t.Fatalf("GetMovieDetails returned error: %v", err)
	}
	if details.PosterPath != "/kyeqWdyUXW608qlYkRqosgbbJyK.jpg" || details.Title != "Avatar" {
		t.Fatalf("unexpected details: %#v", details)
	}
}

func TestBearerPrefixIsNotDoubled(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer abc" {
			t.Errorf("unexpected authorization header %q", got)
		}
		_, _ = w.Write([]byte(`{"id":1,"results":[]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("Bearer abc", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.GetMovieVideos(context.Background(), 1); err != nil {
		t.Fatalf("GetMovieVideos returned error: %v", err)
	}
}

func TestGetMovieVideos(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movie/7/videos" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		_, _ = w.Write([]byte(`{"id":7,"results":[{"key":"abc","site":"YouTube","type":"Teaser"},{"key":"xyz","site":"YouTube","type":"Trailer"}]}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("token", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	videos, err := client.GetMovieVideos(context.Background(), 7)
	if err != nil {
		t.Fatalf("GetMovieVideos returned error: %v", err)
	}
	if len(videos.Results) != 2 || videos.Results[1].Key != "xyz" || videos.Results[1].Type != "Trailer" {
		t.Fatalf("unexpected videos: %#v", videos)
	}
}

func TestHTTPErrorIsAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"status_code":7,"status_message":"Invalid API key"}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("bad", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	_, err = client.GetMovieDetails(context.Background(), 1)
	var apiErr *tmdb.APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected APIError, got %v", err)
	}
	if apiErr.StatusCode != http.StatusUnauthorized || apiErr.Endpoint != "movie_details" {
		t.Fatalf("unexpected api error: %#v", apiErr)
	}
	if !errors.Is(err, services.ErrConfiguration) || !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected configuration and external markers, got %v", err)
	}
	if errors.Is(err, services.ErrTransient) {
		t.Fatal("401 should not be transient")
	}
}

func TestMalformedJSONFails(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"poster_path":`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("token", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.GetMovieDetails(context.Background(), 1); !errors.Is(err, services.ErrExternal) {
		t.Fatalf("expected external decode error, got %v", err)
	}
}

func TestInvalidMovieID(t *testing.T) {
	client, err := tmdb.New("token", "https://example.com", "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if _, err := client.GetMovieDetails(context.Background(), 0); !errors.Is(err, services.ErrValidation) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestBreakerOpensAfterConsecutiveFailures(t *testing.T) {
	var hits atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("token", server.URL, "en-US",
		tmdb.WithBreaker(tmdb.BreakerSettings{FailureThreshold: 2, OpenTimeout: time.Minute}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	ctx := context.Background()
	for i := 0; i < 2; i++ {
		if _, err := client.GetMovieDetails(ctx, 1); errors.Is(err, tmdb.ErrUnavailable) {
			t.Fatalf("call %d rejected before threshold", i)
		}
	}
	_, err = client.GetMovieDetails(ctx, 1)
	if !errors.Is(err, tmdb.ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable once open, got %v", err)
	}
	if got := hits.Load(); got != 2 {
		t.Fatalf("expected open circuit to skip the network, server saw %d requests", got)
	}
}

func TestBreakerIgnoresNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("token", server.URL, "en-US",
		tmdb.WithBreaker(tmdb.BreakerSettings{FailureThreshold: 1, OpenTimeout: time.Minute}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	for i := 0; i < 3; i++ {
		_, err := client.GetMovieVideos(context.Background(), 99)
		var apiErr *tmdb.APIError
		if !errors.As(err, &apiErr) || apiErr.StatusCode != http.StatusNotFound {
			t.Fatalf("call %d: expected 404 APIError, got %v", i, err)
		}
	}
}

func TestBreakerIgnoresCallerCancellation(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
			_, _ = w.Write([]byte(`{"id":7,"results":[]}`))
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	client, err := tmdb.New("token", server.URL, "en-US",
		tmdb.WithBreaker(tmdb.BreakerSettings{FailureThreshold: 3, OpenTimeout: time.Minute}))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	for i := 0; i < 3; i++ {
		ctx, cancel := context.WithTimeout(context.Background(), time.Hour)
		go func() {
			time.Sleep(10 * time.Millisecond)
			cancel()
		}()
		_, err := client.GetMovieVideos(ctx, 7)
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("call %d: expected context.Canceled, got %v", i, err)
		}
	}

	go func() {
		time.Sleep(10 * time.Millisecond)
		release <- struct{}{}
	}()
	if _, err := client.GetMovieVideos(context.Background(), 7); err != nil {
		t.Fatalf("expected cancelled calls to leave the circuit closed, got %v", err)
	}
}

func TestRateLimiterHonoursContext(t *testing.T) {
	client, err := tmdb.New("token", "https://example.invalid", "en-US",
		tmdb.WithRateLimiter(rate.NewLimiter(rate.Every(time.Hour), 1)))
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	// The single burst token is consumed by the first call's transport failure.
	_, _ = client.GetMovieDetails(ctx, 1)
	if _, err := client.GetMovieDetails(ctx, 1); !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("expected limiter wait to fail with timeout marker, got %v", err)
	}
}

func TestPing(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/configuration" {
			t.Errorf("unexpected path %q", r.URL.Path)
		}
		if r.URL.RawQuery != "" {
			t.Errorf("expected no query params, got %q", r.URL.RawQuery)
		}
		_, _ = w.Write([]byte(`{"images":{"secure_base_url":"https://image.tmdb.org/t/p/"}}`))
	}))
	t.Cleanup(server.Close)

	client, err := tmdb.New("token", server.URL, "en-US")
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	if err := client.Ping(context.Background()); err != nil {
		t.Fatalf("Ping returned error: %v", err)
	}
}
