package enrich_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"marquee/internal/enrich"
	"marquee/internal/tmdb"
)

type stubClient struct {
	details    *tmdb.MovieDetails
	videos     *tmdb.VideosResponse
	detailsErr error
	videosErr  error
}

func (s *stubClient) GetMovieDetails(context.Context, int64) (*tmdb.MovieDetails, error) {
	if s.detailsErr != nil {
		return nil, s.detailsErr
	}
	return s.details, nil
}

func (s *stubClient) GetMovieVideos(context.Context, int64) (*tmdb.VideosResponse, error) {
	if s.videosErr != nil {
		return nil, s.videosErr
	}
	return s.videos, nil
}

func TestFetchEnrichmentBuildsURLs(t *testing.T) {
	client := &stubClient{
		details: &tmdb.MovieDetails{PosterPath: "/abc.jpg"},
		videos: &tmdb.VideosResponse{Results: []tmdb.Video{
			{Key: "tease", Site: "YouTube", Type: "Teaser"},
			{Key: "vimeo", Site: "Vimeo", Type: "Trailer"},
			{Key: "xyz", Site: "YouTube", Type: "Trailer"},
			{Key: "later", Site: "YouTube", Type: "Trailer"},
		}},
	}
	got, err := enrich.NewFetcher(client, "").FetchEnrichment(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchEnrichment: %v", err)
	}
	if got.PosterURL != "https://image.tmdb.org/t/p/original/abc.jpg" {
		t.Fatalf("unexpected poster url %q", got.PosterURL)
	}
	if !strings.HasSuffix(got.PosterURL, "/abc.jpg") {
		t.Fatalf("poster url should end with the poster path, got %q", got.PosterURL)
	}
	if got.TrailerURL == nil || *got.TrailerURL != "https://www.youtube.com/watch?v=xyz" {
		t.Fatalf("unexpected trailer url %v", got.TrailerURL)
	}
}

func TestFetchEnrichmentWithoutTrailer(t *testing.T) {
	client := &stubClient{
		details: &tmdb.MovieDetails{PosterPath: "/p.jpg"},
		videos:  &tmdb.VideosResponse{Results: []tmdb.Video{{Key: "c", Site: "YouTube", Type: "Clip"}}},
	}
	got, err := enrich.NewFetcher(client, "https://img.example/w500/").FetchEnrichment(context.Background(), 1)
	if err != nil {
		t.Fatalf("FetchEnrichment: %v", err)
	}
	if got.TrailerURL != nil {
		t.Fatalf("expected no trailer, got %q", *got.TrailerURL)
	}
	if got.PosterURL != "https://img.example/w500/p.jpg" {
		t.Fatalf("unexpected poster url %q", got.PosterURL)
	}
}

func TestFetchEnrichmentMissingPoster(t *testing.T) {
	client := &stubClient{
		details: &tmdb.MovieDetails{PosterPath: ""},
		videos:  &tmdb.VideosResponse{},
	}
	_, err := enrich.NewFetcher(client, "").FetchEnrichment(context.Background(), 1)
	if !errors.Is(err, enrich.ErrPosterMissing) {
		t.Fatalf("expected ErrPosterMissing, got %v", err)
	}
}

func TestFetchEnrichmentFailsWhenEitherLookupFails(t *testing.T) {
	boom := errors.New("boom")
	cases := map[string]*stubClient{
		"details": {detailsErr: boom, videos: &tmdb.VideosResponse{}},
		"videos":  {details: &tmdb.MovieDetails{PosterPath: "/p.jpg"}, videosErr: boom},
	}
	for name, client := range cases {
		if _, err := enrich.NewFetcher(client, "").FetchEnrichment(context.Background(), 1); !errors.Is(err, boom) {
			t.Fatalf("%s: expected wrapped failure, got %v", name, err)
		}
	}
}
