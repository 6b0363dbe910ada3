package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"marquee/internal/catalog"
	"marquee/internal/config"
)

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	catalogCmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the catalog artifact",
	}

	catalogCmd.AddCommand(newCatalogImportCommand(ctx))
	catalogCmd.AddCommand(newCatalogExportCommand(ctx))
	catalogCmd.AddCommand(newCatalogListCommand(ctx))
	catalogCmd.AddCommand(newCatalogStatsCommand(ctx))

	return catalogCmd
}

func newCatalogImportCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "import <bundle.json>",
		Short: "Build the catalog artifact from a JSON bundle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			source, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve bundle path: %w", err)
			}
			file, err := os.Open(source)
			if err != nil {
				return fmt.Errorf("open bundle: %w", err)
			}
			defer file.Close()

			cat, err := catalog.ReadBundle(file)
			if err != nil {
				return err
			}
			if err := catalog.Import(cmd.Context(), cfg.Paths.CatalogPath, cat); err != nil {
				return err
			}

			result := map[string]any{"movies": cat.Len(), "path": cfg.Paths.CatalogPath}
			return emit(cmd, ctx, result, func() string {
				return fmt.Sprintf("Imported %d movies into %s", cat.Len(), cfg.Paths.CatalogPath)
			})
		},
	}
}

func newCatalogExportCommand(ctx *commandContext) *cobra.Command {
	var targetPath string

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the catalog artifact as a JSON bundle",
		RunE: func(cmd *cobra.Command, args []string) error {
			cat, err := ctx.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			target := strings.TrimSpace(targetPath)
			if target == "" || target == "-" {
				return catalog.WriteBundle(cmd.OutOrStdout(), cat)
			}
			expanded, err := config.ExpandPath(target)
			if err != nil {
				return fmt.Errorf("resolve export path: %w", err)
			}
			file, err := os.Create(expanded)
			if err != nil {
				return fmt.Errorf("create bundle: %w", err)
			}
			if err := catalog.WriteBundle(file, cat); err != nil {
				_ = file.Close()
				return err
			}
			if err := file.Close(); err != nil {
				return fmt.Errorf("close bundle: %w", err)
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "Exported %d movies to %s\n", cat.Len(), expanded)
			return nil
		},
	}

	cmd.Flags().StringVarP(&targetPath, "output", "o", "", "Destination file (default stdout)")
	return cmd
}

func newCatalogListCommand(ctx *commandContext) *cobra.Command {
	var search string
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if limit < 0 {
				return fmt.Errorf("--limit must be non-negative")
			}
			cat, err := ctx.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			entries := cat.Search(search, limit)
			return emit(cmd, ctx, map[string]any{"movies": entries}, func() string {
				rows := make([][]string, 0, len(entries))
				for i, entry := range entries {
					rows = append(rows, []string{
						strconv.Itoa(i + 1),
						strconv.FormatInt(entry.MovieID, 10),
						entry.Title,
					})
				}
				return renderTable([]column{
					{Header: "#", Align: alignRight},
					{Header: "TMDB ID", Align: alignRight},
					{Header: "Title"},
				}, rows)
			})
		},
	}

	cmd.Flags().StringVarP(&search, "search", "s", "", "Only titles containing this text (case-insensitive)")
	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of titles (0 for all)")
	return cmd
}

type catalogStats struct {
	Path         string    `json:"path"`
	Movies       int       `json:"movies"`
	UniqueTitles int       `json:"unique_titles"`
	SizeBytes    int64     `json:"size_bytes"`
	ModifiedAt   time.Time `json:"modified_at"`
}

func newCatalogStatsCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Summarize the catalog artifact",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			cat, err := ctx.loadCatalog(cmd.Context())
			if err != nil {
				return err
			}
			info, err := os.Stat(cfg.Paths.CatalogPath)
			if err != nil {
				return fmt.Errorf("stat catalog: %w", err)
			}
			unique := make(map[string]struct{}, cat.Len())
			for _, title := range cat.Titles() {
				unique[title] = struct{}{}
			}
			stats := catalogStats{
				Path:         cfg.Paths.CatalogPath,
				Movies:       cat.Len(),
				UniqueTitles: len(unique),
				SizeBytes:    info.Size(),
				ModifiedAt:   info.ModTime().UTC(),
			}
			return emit(cmd, ctx, stats, func() string {
				return renderTable([]column{{Header: "Field"}, {Header: "Value"}}, [][]string{
					{"Path", stats.Path},
					{"Movies", strconv.Itoa(stats.Movies)},
					{"Unique titles", strconv.Itoa(stats.UniqueTitles)},
					{"Duplicate titles", yesNo(stats.UniqueTitles != stats.Movies)},
					{"Size", humanize.Bytes(uint64(stats.SizeBytes))},
					{"Modified", humanize.Time(stats.ModifiedAt)},
				})
			})
		},
	}
}
