package web

import (
	"bytes"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/url"

	"marquee/internal/enrich"
	"marquee/internal/logging"
	"marquee/internal/recommend"
)

const (
	cardsPerRow     = 3
	youTubeEmbedURL = "https://www.youtube.com/embed/"
)

//go:embed templates/*.html
var templateFS embed.FS

type pageRenderer struct {
	index *template.Template
}

func newPageRenderer() (*pageRenderer, error) {
	tmpl, err := template.ParseFS(templateFS, "templates/index.html")
	if err != nil {
		return nil, fmt.Errorf("parse templates: %w", err)
	}
	return &pageRenderer{index: tmpl}, nil
}

// pageView is everything the index template renders.
type pageView struct {
	Titles   []string
	Selected string
	Notice   string
	Rows     [][]cardView
}

// cardView is per-card view state. Trailer players render as closed
// disclosures; the browser owns their open state after that.
type cardView struct {
	Index      int
	Rank       int
	Title      string
	PosterURL  string
	TrailerURL string
	EmbedURL   string
	Degraded   bool
	Error      string
}

func (s *Server) newPage(selected string) pageView {
	return pageView{
		Titles:   s.catalog.Titles(),
		Selected: selected,
	}
}

func (s *Server) renderPage(w http.ResponseWriter, status int, page pageView) {
	var buf bytes.Buffer
	if err := s.pages.index.Execute(&buf, page); err != nil {
		s.logger.Error("failed to render page", logging.Error(err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(buf.Bytes())
}

func cardRows(cards []enrich.Card, perRow int) [][]cardView {
	if perRow <= 0 {
		perRow = cardsPerRow
	}
	var rows [][]cardView
	for start := 0; start < len(cards); start += perRow {
		end := min(start+perRow, len(cards))
		row := make([]cardView, 0, end-start)
		for _, card := range cards[start:end] {
			row = append(row, newCardView(card))
		}
		rows = append(rows, row)
	}
	return rows
}

func newCardView(card enrich.Card) cardView {
	view := cardView{
		Index: card.Index,
		Rank:  card.Index + 1,
		Title: card.Movie.Title,
	}
	if card.Degraded() {
		view.Degraded = true
		view.Error = card.Err.Error()
		return view
	}
	view.PosterURL = card.Enrichment.PosterURL
	if card.Enrichment.TrailerURL != nil {
		view.TrailerURL = *card.Enrichment.TrailerURL
		view.EmbedURL = embedURL(view.TrailerURL)
	}
	return view
}

// embedURL turns a YouTube watch link into its embeddable player URL.
func embedURL(watchURL string) string {
	parsed, err := url.Parse(watchURL)
	if err != nil {
		return ""
	}
	key := parsed.Query().Get("v")
	if key == "" {
		return ""
	}
	return youTubeEmbedURL + url.PathEscape(key)
}

func noticeFor(title string, err error) string {
	if errors.Is(err, recommend.ErrTitleNotFound) {
		return fmt.Sprintf("%q is not in the catalog.", title)
	}
	return "Recommendations are unavailable right now."
}
