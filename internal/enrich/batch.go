package enrich

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"marquee/internal/catalog"
	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/services"
)

// DefaultBatchSize is the number of movies enriched concurrently.
const DefaultBatchSize = 3

// EnrichmentFetcher resolves one movie's enrichment.
type EnrichmentFetcher interface {
	FetchEnrichment(ctx context.Context, movieID int64) (Enrichment, error)
}

// Card is one recommendation with its enrichment outcome. Err marks a degraded
// card that should render a placeholder poster and no trailer.
type Card struct {
	Index      int
	Movie      catalog.Entry
	Enrichment Enrichment
	Err        error
}

// Degraded reports whether enrichment failed for this card.
func (c Card) Degraded() bool {
	return c.Err != nil
}

// Orchestrator enriches recommendation lists in sequential batches.
type Orchestrator struct {
	fetcher   EnrichmentFetcher
	batchSize int
	logger    *slog.Logger
}

// NewOrchestrator builds an orchestrator. batchSize <= 0 uses DefaultBatchSize.
func NewOrchestrator(fetcher EnrichmentFetcher, batchSize int, logger *slog.Logger) *Orchestrator {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &Orchestrator{
		fetcher:   fetcher,
		batchSize: batchSize,
		logger:    logging.NewComponentLogger(logger, "enrich"),
	}
}

// BatchSize reports how many movies are enriched concurrently.
func (o *Orchestrator) BatchSize() int {
	return o.batchSize
}

// Enrich returns one card per movie in input order. Batches of BatchSize run
// one after another; fetches inside a batch run concurrently and are joined
// before the next batch starts. onBatch, when non-nil, receives each completed
// batch in order. Once ctx is done no further batch starts and the remaining
// cards carry the context error.
func (o *Orchestrator) Enrich(ctx context.Context, movies []catalog.Entry, onBatch func([]Card)) []Card {
	cards := make([]Card, len(movies))
	for i, movie := range movies {
		cards[i] = Card{Index: i, Movie: movie}
	}
	logger := logging.WithContext(ctx, o.logger)

	for start := 0; start < len(cards); start += o.batchSize {
		if err := ctx.Err(); err != nil {
			for i := start; i < len(cards); i++ {
				cards[i].Err = err
				metrics.Enrichments.WithLabelValues("cancelled").Inc()
			}
			logger.Info("enrichment cancelled",
				logging.Int("remaining", len(cards)-start),
				logging.Error(err))
			break
		}

		end := min(start+o.batchSize, len(cards))
		batch := cards[start:end]
		o.runBatch(ctx, logger, batch)
		if onBatch != nil {
			onBatch(append([]Card(nil), batch...))
		}
	}
	return cards
}

func (o *Orchestrator) runBatch(ctx context.Context, logger *slog.Logger, batch []Card) {
	batchStart := time.Now()
	var wg sync.WaitGroup
	for i := range batch {
		wg.Add(1)
		go func(card *Card) {
			defer wg.Done()
			card.Enrichment, card.Err = o.fetcher.FetchEnrichment(ctx, card.Movie.MovieID)
		}(&batch[i])
	}
	wg.Wait()
	metrics.EnrichmentBatchDuration.Observe(time.Since(batchStart).Seconds())

	for _, card := range batch {
		switch {
		case card.Err == nil && card.Enrichment.TrailerURL == nil:
			metrics.Enrichments.WithLabelValues("no_trailer").Inc()
		case card.Err == nil:
			metrics.Enrichments.WithLabelValues("success").Inc()
		case errors.Is(card.Err, context.Canceled) || errors.Is(card.Err, context.DeadlineExceeded):
			metrics.Enrichments.WithLabelValues("cancelled").Inc()
		default:
			metrics.Enrichments.WithLabelValues("degraded").Inc()
			logging.WarnWithContext(logger, "movie enrichment failed", "enrichment_failed",
				logging.Int64(logging.FieldMovieID, card.Movie.MovieID),
				logging.String("title", card.Movie.Title),
				logging.Error(card.Err),
				logging.String(logging.FieldErrorHint, errorHint(card.Err)),
				logging.String(logging.FieldImpact, "card shows a placeholder poster and no trailer"),
			)
		}
	}
	logger.Debug("enrichment batch complete",
		logging.Int("first_index", batch[0].Index),
		logging.Int("size", len(batch)),
		logging.Duration("elapsed", time.Since(batchStart)))
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, ErrPosterMissing):
		return "TMDB has no poster for this movie"
	case errors.Is(err, services.ErrConfiguration):
		return "verify tmdb.api_token or the API_TOKEN env var"
	case errors.Is(err, services.ErrTimeout):
		return "TMDB was slow to respond; raise tmdb.timeout_seconds if this persists"
	default:
		return "check TMDB availability and network connectivity"
	}
}
