package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/enrich"
	"marquee/internal/metrics"
	"marquee/internal/recommend"
	"marquee/internal/services"
	"marquee/internal/web"
)

type recommendOutput struct {
	Query    string                   `json:"query"`
	Enriched bool                     `json:"enriched"`
	Items    []web.RecommendationItem `json:"items"`
}

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	var noEnrich bool

	cmd := &cobra.Command{
		Use:   "recommend <title>",
		Short: "Print the movies most similar to a catalog title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			if !noEnrich {
				if err := cfg.RequireTMDB(); err != nil {
					return err
				}
			}
			logger, err := ctx.ensureLogger()
			if err != nil {
				return err
			}

			runCtx := services.WithQuery(cmd.Context(), title)
			cat, err := ctx.loadCatalog(runCtx)
			if err != nil {
				return err
			}
			ranker := recommend.NewRanker(cat, recommend.WithLimit(cfg.Recommend.Count))
			movies, err := ranker.Recommend(title)
			if err != nil {
				metrics.Recommendations.WithLabelValues("not_found").Inc()
				return err
			}
			metrics.Recommendations.WithLabelValues("found").Inc()

			cards := make([]enrich.Card, len(movies))
			for i, movie := range movies {
				cards[i] = enrich.Card{Index: i, Movie: movie}
			}
			if !noEnrich {
				orchestrator, err := ctx.newOrchestrator(logger)
				if err != nil {
					return err
				}
				batches := (len(movies) + orchestrator.BatchSize() - 1) / orchestrator.BatchSize()
				done := 0
				cards = orchestrator.Enrich(runCtx, movies, func(batch []enrich.Card) {
					done++
					if !ctx.jsonOutput() {
						fmt.Fprintf(cmd.ErrOrStderr(), "Enriched batch %d/%d (%s)\n", done, batches, batchTitles(batch))
					}
				})
			}

			out := recommendOutput{
				Query:    title,
				Enriched: !noEnrich,
				Items:    web.NewRecommendationItems(cards),
			}
			return emit(cmd, ctx, out, func() string {
				return fmt.Sprintf("Recommendations for %q\n%s", title, renderRecommendations(out.Items, out.Enriched))
			})
		},
	}

	cmd.Flags().BoolVar(&noEnrich, "no-enrich", false, "Skip poster and trailer lookups")
	return cmd
}

func batchTitles(batch []enrich.Card) string {
	titles := make([]string, 0, len(batch))
	for _, card := range batch {
		titles = append(titles, card.Movie.Title)
	}
	return strings.Join(titles, ", ")
}

func renderRecommendations(items []web.RecommendationItem, enriched bool) string {
	columns := []column{
		{Header: "#", Align: alignRight},
		{Header: "Title"},
		{Header: "TMDB ID", Align: alignRight},
	}
	if enriched {
		columns = append(columns,
			column{Header: "Poster", MaxWidth: 60},
			column{Header: "Trailer", MaxWidth: 60},
		)
	}
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		row := []string{
			strconv.Itoa(item.Rank),
			item.Title,
			strconv.FormatInt(item.MovieID, 10),
		}
		if enriched {
			switch {
			case item.Error != "":
				row = append(row, "unavailable: "+item.Error, "-")
			case item.TrailerURL == nil:
				row = append(row, item.PosterURL, "none")
			default:
				row = append(row, item.PosterURL, *item.TrailerURL)
			}
		}
		rows = append(rows, row)
	}
	return renderTable(columns, rows)
}
