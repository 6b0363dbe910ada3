package enrich

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"marquee/internal/services"
	"marquee/internal/tmdb"
)

// DefaultImageBaseURL is prefixed to TMDB poster paths.
const DefaultImageBaseURL = "https://image.tmdb.org/t/p/original"

const youTubeWatchURL = "https://www.youtube.com/watch?v="

// ErrPosterMissing reports a TMDB movie without a poster path.
var ErrPosterMissing = errors.New("movie has no poster")

// MetadataClient is the slice of the TMDB client the fetcher needs.
type MetadataClient interface {
	GetMovieDetails(ctx context.Context, movieID int64) (*tmdb.MovieDetails, error)
	GetMovieVideos(ctx context.Context, movieID int64) (*tmdb.VideosResponse, error)
}

// Enrichment is the display metadata for one recommended movie.
type Enrichment struct {
	PosterURL  string  `json:"poster_url"`
	TrailerURL *string `json:"trailer_url"`
}

// Fetcher resolves enrichment for individual movies.
type Fetcher struct {
	client       MetadataClient
	imageBaseURL string
}

// NewFetcher builds a fetcher. An empty imageBaseURL uses DefaultImageBaseURL.
func NewFetcher(client MetadataClient, imageBaseURL string) *Fetcher {
	imageBaseURL = strings.TrimRight(strings.TrimSpace(imageBaseURL), "/")
	if imageBaseURL == "" {
		imageBaseURL = DefaultImageBaseURL
	}
	return &Fetcher{client: client, imageBaseURL: imageBaseURL}
}

// FetchEnrichment issues the details and videos lookups concurrently and joins
// them. Any failure of either lookup, or a missing poster, fails the whole
// enrichment. A movie without a YouTube trailer yields a nil TrailerURL.
func (f *Fetcher) FetchEnrichment(ctx context.Context, movieID int64) (Enrichment, error) {
	var (
		details *tmdb.MovieDetails
		videos  *tmdb.VideosResponse
	)
	group, groupCtx := errgroup.WithContext(ctx)
	group.Go(func() error {
		var err error
		details, err = f.client.GetMovieDetails(groupCtx, movieID)
		return err
	})
	group.Go(func() error {
		var err error
		videos, err = f.client.GetMovieVideos(groupCtx, movieID)
		return err
	})
	if err := group.Wait(); err != nil {
		return Enrichment{}, fmt.Errorf("enrich movie %d: %w", movieID, err)
	}

	posterPath := strings.TrimSpace(details.PosterPath)
	if posterPath == "" {
		return Enrichment{}, services.Wrap(services.ErrExternal, "enrich", "poster",
			fmt.Sprintf("movie %d", movieID), ErrPosterMissing)
	}
	if !strings.HasPrefix(posterPath, "/") {
		posterPath = "/" + posterPath
	}

	return Enrichment{
		PosterURL:  f.imageBaseURL + posterPath,
		TrailerURL: trailerURL(videos),
	}, nil
}

func trailerURL(videos *tmdb.VideosResponse) *string {
	if videos == nil {
		return nil
	}
	for _, video := range videos.Results {
		if video.Type == "Trailer" && video.Site == "YouTube" && video.Key != "" {
			link := youTubeWatchURL + video.Key
			return &link
		}
	}
	return nil
}
