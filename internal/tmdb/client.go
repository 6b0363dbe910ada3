package tmdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/services"
)

const maxErrorBody = 512

// MovieDetails is the subset of GET /movie/{id} used for enrichment.
type MovieDetails struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Overview    string  `json:"overview"`
	ReleaseDate string  `json:"release_date"`
	PosterPath  string  `json:"poster_path"`
	VoteAverage float64 `json:"vote_average"`
}

// Video is one entry of GET /movie/{id}/videos.
type Video struct {
	Key      string `json:"key"`
	Name     string `json:"name"`
	Site     string `json:"site"`
	Type     string `json:"type"`
	Official bool   `json:"official"`
}

// VideosResponse models GET /movie/{id}/videos.
type VideosResponse struct {
	ID      int64   `json:"id"`
	Results []Video `json:"results"`
}

// Client provides authenticated access to the TMDB API.
type Client struct {
	authorization string
	baseURL       string
	language      string
	httpClient    *http.Client
	limiter       *rate.Limiter
	breaker       *breaker
	logger        *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithRateLimiter throttles outbound requests. The limiter may be shared.
func WithRateLimiter(limiter *rate.Limiter) Option {
	return func(c *Client) {
		c.limiter = limiter
	}
}

// WithBreaker wraps every request in a circuit breaker.
func WithBreaker(settings BreakerSettings) Option {
	return func(c *Client) {
		c.breaker = newBreaker(settings, c)
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a TMDB client. token is a TMDB read access token; a value that
// already carries the "Bearer " scheme is used as is.
func New(token, baseURL, language string, opts ...Option) (*Client, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "api token required", nil)
	}
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "tmdb", "new client", "base url required", nil)
	}
	client := &Client{
		authorization: bearer(token),
		baseURL:       strings.TrimRight(baseURL, "/"),
		language:      strings.TrimSpace(language),
		httpClient:    &http.Client{Timeout: 10 * time.Second},
	}
	for _, opt := range opts {
		opt(client)
	}
	client.logger = logging.NewComponentLogger(client.logger, "tmdb")
	return client, nil
}

func bearer(token string) string {
	if len(token) > 7 && strings.EqualFold(token[:7], "bearer ") {
		return token
	}
	return "Bearer " + token
}

// GetMovieDetails fetches movie details by TMDB ID.
func (c *Client) GetMovieDetails(ctx context.Context, movieID int64) (*MovieDetails, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "movie details", "movie id must be positive", nil)
	}
	var payload MovieDetails
	if err := c.get(ctx, "movie_details", fmt.Sprintf("/movie/%d", movieID), true, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// GetMovieVideos fetches the videos (trailers, teasers, clips) for a movie.
func (c *Client) GetMovieVideos(ctx context.Context, movieID int64) (*VideosResponse, error) {
	if movieID <= 0 {
		return nil, services.Wrap(services.ErrValidation, "tmdb", "movie videos", "movie id must be positive", nil)
	}
	var payload VideosResponse
	if err := c.get(ctx, "movie_videos", fmt.Sprintf("/movie/%d/videos", movieID), true, &payload); err != nil {
		return nil, err
	}
	return &payload, nil
}

// Ping verifies the credential and connectivity via GET /configuration.
func (c *Client) Ping(ctx context.Context) error {
	var payload struct {
		Images struct {
			SecureBaseURL string `json:"secure_base_url"`
		} `json:"images"`
	}
	return c.get(ctx, "configuration", "/configuration", false, &payload)
}

func (c *Client) get(ctx context.Context, endpoint, path string, localized bool, out any) error {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return services.Wrap(services.ErrTimeout, "tmdb", endpoint, "wait for rate limiter", err)
		}
	}
	params := url.Values{}
	if localized && c.language != "" {
		params.Set("language", c.language)
	}
	if c.breaker == nil {
		return c.do(ctx, endpoint, path, params, out)
	}
	return c.breaker.execute(endpoint, func() error {
		return c.do(ctx, endpoint, path, params, out)
	})
}

func (c *Client) do(ctx context.Context, endpoint, path string, params url.Values, out any) error {
	endpointURL, err := url.Parse(c.baseURL + path)
	if err != nil {
		return fmt.Errorf("parse tmdb url: %w", err)
	}
	endpointURL.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", c.authorization)
	req.Header.Set("Accept", "application/json")

	requestStart := time.Now()
	resp, err := c.httpClient.Do(req)
	latency := time.Since(requestStart)
	if err != nil {
		outcome := "transport_error"
		if cancelledByCaller(err) {
			outcome = "cancelled"
		}
		metrics.RecordTMDBRequest(endpoint, outcome, latency)
		marker := services.ErrExternal
		if errors.Is(err, context.DeadlineExceeded) {
			marker = services.ErrTimeout
		}
		return services.Wrap(marker, "tmdb", endpoint, fmt.Sprintf("execute request (latency=%v)", latency), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		metrics.RecordTMDBRequest(endpoint, "http_error", latency)
		c.logger.Debug("tmdb request failed",
			logging.String("endpoint", endpoint),
			logging.Int("status", resp.StatusCode),
			logging.Duration("latency", latency))
		return &APIError{
			StatusCode: resp.StatusCode,
			Endpoint:   endpoint,
			Body:       strings.TrimSpace(string(body)),
			Latency:    latency,
		}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		metrics.RecordTMDBRequest(endpoint, "decode_error", latency)
		return services.Wrap(services.ErrExternal, "tmdb", endpoint, "decode response", err)
	}
	metrics.RecordTMDBRequest(endpoint, "success", latency)
	c.logger.Debug("tmdb request complete",
		logging.String("endpoint", endpoint),
		logging.Duration("latency", latency))
	return nil
}
