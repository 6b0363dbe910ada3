package web

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"marquee/internal/catalog"
	"marquee/internal/config"
	"marquee/internal/enrich"
	"marquee/internal/logging"
	"marquee/internal/recommend"
)

const shutdownTimeout = 5 * time.Second

// Enricher attaches posters and trailers to a ranked list of movies.
type Enricher interface {
	Enrich(ctx context.Context, movies []catalog.Entry, onBatch func([]enrich.Card)) []enrich.Card
}

// Server serves the recommendation page, the JSON API, and metrics.
type Server struct {
	bind     string
	apiToken string
	catalog  *catalog.Catalog
	ranker   *recommend.Ranker
	enricher Enricher
	logger   *slog.Logger
	pages    *pageRenderer

	handler  http.Handler
	listener net.Listener
	server   *http.Server
	serveErr chan error
	stopped  chan struct{}
}

// New assembles the router. enricher may be nil, in which case cards are
// rendered without posters or trailers.
func New(cfg *config.Config, cat *catalog.Catalog, ranker *recommend.Ranker, enricher Enricher, logger *slog.Logger) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("web: config is required")
	}
	if cat == nil || ranker == nil {
		return nil, errors.New("web: catalog and ranker are required")
	}
	pages, err := newPageRenderer()
	if err != nil {
		return nil, err
	}

	s := &Server{
		bind:     strings.TrimSpace(cfg.Paths.APIBind),
		apiToken: strings.TrimSpace(cfg.Paths.APIToken),
		catalog:  cat,
		ranker:   ranker,
		enricher: enricher,
		logger:   logging.NewComponentLogger(logger, "web"),
		pages:    pages,
	}
	s.handler = s.routes(cfg.Server)
	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return s, nil
}

func (s *Server) routes(opts config.Server) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestID)
	r.Use(recordMetrics)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Authorization", "Content-Type", requestIDHeader},
		ExposedHeaders: []string{requestIDHeader},
		MaxAge:         300,
	}))

	r.Get("/", s.handleIndex)
	r.Get("/recommend", s.handleRecommendPage)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		if opts.RateLimitPerMinute > 0 {
			r.Use(httprate.LimitByIP(opts.RateLimitPerMinute, time.Minute))
		}
		r.Use(s.authMiddleware)
		r.Get("/titles", s.handleTitles)
		r.Get("/recommendations", s.handleRecommendations)
	})
	return r
}

// Handler exposes the router for embedding and tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start binds the listener and serves in the background until ctx is done.
func (s *Server) Start(ctx context.Context) error {
	if s.bind == "" {
		return errors.New("web: api_bind is empty")
	}
	listener, err := net.Listen("tcp", s.bind)
	if err != nil {
		return fmt.Errorf("web listen: %w", err)
	}
	s.listener = listener
	s.serveErr = make(chan error, 1)
	s.stopped = make(chan struct{})

	go func() {
		if err := s.server.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error("web server error", logging.Error(err))
			s.serveErr <- err
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
		close(s.stopped)
	}()

	s.logger.Info("web server listening",
		logging.String("address", listener.Addr().String()),
		logging.Int("movies", s.catalog.Len()),
		logging.Bool("api_auth", s.apiToken != ""))
	return nil
}

// Run serves until ctx is cancelled and the server has shut down, or until
// serving fails.
func (s *Server) Run(ctx context.Context) error {
	if err := s.Start(ctx); err != nil {
		return err
	}
	return s.wait()
}

func (s *Server) wait() error {
	select {
	case err := <-s.serveErr:
		s.Stop()
		return fmt.Errorf("web serve: %w", err)
	case <-s.stopped:
		s.logger.Info("web server stopped")
		return nil
	}
}

// Stop drains in-flight requests for up to five seconds.
func (s *Server) Stop() {
	if s.server != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		_ = s.server.Shutdown(shutdownCtx)
	}
}

// Addr reports the bound address once Start has succeeded.
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}
