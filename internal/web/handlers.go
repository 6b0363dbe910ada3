package web

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"marquee/internal/catalog"
	"marquee/internal/enrich"
	"marquee/internal/logging"
	"marquee/internal/metrics"
	"marquee/internal/services"
)

// RecommendationItem is one ranked movie in the JSON API.
type RecommendationItem struct {
	Rank       int     `json:"rank"`
	MovieID    int64   `json:"movie_id"`
	Title      string  `json:"title"`
	PosterURL  string  `json:"poster_url,omitempty"`
	TrailerURL *string `json:"trailer_url"`
	Error      string  `json:"error,omitempty"`
}

// RecommendationsResponse is the body of GET /api/recommendations.
type RecommendationsResponse struct {
	Query     string               `json:"query"`
	RequestID string               `json:"request_id,omitempty"`
	Enriched  bool                 `json:"enriched"`
	Items     []RecommendationItem `json:"items"`
}

// TitlesResponse is the body of GET /api/titles.
type TitlesResponse struct {
	Titles []string `json:"titles"`
}

// HealthResponse is the body of GET /healthz.
type HealthResponse struct {
	Status string `json:"status"`
	Movies int    `json:"movies"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Movies: s.catalog.Len()})
}

func (s *Server) handleTitles(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	limit := 0
	if raw := strings.TrimSpace(query.Get("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			s.writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = n
	}
	entries := s.catalog.Search(query.Get("q"), limit)
	titles := make([]string, 0, len(entries))
	for _, entry := range entries {
		titles = append(titles, entry.Title)
	}
	s.writeJSON(w, http.StatusOK, TitlesResponse{Titles: titles})
}

func (s *Server) handleRecommendations(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	if strings.TrimSpace(title) == "" {
		s.writeError(w, http.StatusBadRequest, "title is required")
		return
	}
	withEnrichment := true
	if raw := strings.TrimSpace(r.URL.Query().Get("enrich")); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			s.writeError(w, http.StatusBadRequest, "enrich must be a boolean")
			return
		}
		withEnrichment = v
	}

	ctx := services.WithQuery(r.Context(), title)
	cards, enriched, err := s.recommend(ctx, title, withEnrichment)
	if err != nil {
		s.writeError(w, services.HTTPStatus(err), err.Error())
		return
	}

	resp := RecommendationsResponse{
		Query:    title,
		Enriched: enriched,
		Items:    NewRecommendationItems(cards),
	}
	resp.RequestID, _ = services.RequestIDFromContext(ctx)
	s.writeJSON(w, http.StatusOK, resp)
}

// NewRecommendationItems converts cards to their API form. Degraded cards
// carry the error text and no poster or trailer.
func NewRecommendationItems(cards []enrich.Card) []RecommendationItem {
	items := make([]RecommendationItem, 0, len(cards))
	for _, card := range cards {
		item := RecommendationItem{
			Rank:    card.Index + 1,
			MovieID: card.Movie.MovieID,
			Title:   card.Movie.Title,
		}
		if card.Err != nil {
			item.Error = card.Err.Error()
		} else {
			item.PosterURL = card.Enrichment.PosterURL
			item.TrailerURL = card.Enrichment.TrailerURL
		}
		items = append(items, item)
	}
	return items
}

func (s *Server) handleIndex(w http.ResponseWriter, _ *http.Request) {
	s.renderPage(w, http.StatusOK, s.newPage(""))
}

func (s *Server) handleRecommendPage(w http.ResponseWriter, r *http.Request) {
	title := r.URL.Query().Get("title")
	page := s.newPage(title)
	if strings.TrimSpace(title) == "" {
		page.Notice = "Choose a movie to get recommendations."
		s.renderPage(w, http.StatusBadRequest, page)
		return
	}

	ctx := services.WithQuery(r.Context(), title)
	cards, _, err := s.recommend(ctx, title, true)
	if err != nil {
		page.Notice = noticeFor(title, err)
		s.renderPage(w, services.HTTPStatus(err), page)
		return
	}
	page.Rows = cardRows(cards, cardsPerRow)
	s.renderPage(w, http.StatusOK, page)
}

// recommend ranks title and, when requested and configured, enriches the
// result. The second return reports whether enrichment ran.
func (s *Server) recommend(ctx context.Context, title string, withEnrichment bool) ([]enrich.Card, bool, error) {
	logger := logging.WithContext(ctx, s.logger)
	movies, err := s.ranker.Recommend(title)
	if err != nil {
		metrics.Recommendations.WithLabelValues("not_found").Inc()
		logger.Info("recommendation lookup failed", logging.Error(err))
		return nil, false, err
	}
	metrics.Recommendations.WithLabelValues("found").Inc()

	if !withEnrichment || s.enricher == nil {
		return plainCards(movies), false, nil
	}
	cards := s.enricher.Enrich(ctx, movies, nil)
	degraded := 0
	for _, card := range cards {
		if card.Degraded() {
			degraded++
		}
	}
	logger.Info("recommendations served",
		logging.Int("count", len(cards)),
		logging.Int("degraded", degraded))
	return cards, true, nil
}

func plainCards(movies []catalog.Entry) []enrich.Card {
	cards := make([]enrich.Card, len(movies))
	for i, movie := range movies {
		cards[i] = enrich.Card{Index: i, Movie: movie}
	}
	return cards
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("failed to encode response", logging.Error(err))
	}
}

func (s *Server) writeError(w http.ResponseWriter, status int, message string) {
	s.writeJSON(w, status, map[string]string{"error": message})
}
