package preflight

import (
	"context"
	"strings"

	"marquee/internal/config"
	"marquee/internal/logging"
	"marquee/internal/tmdb"
)

// CheckTMDBFromConfig evaluates TMDB status from config and connectivity.
func CheckTMDBFromConfig(ctx context.Context, cfg *config.Config) Result {
	const name = "TMDB"

	if cfg == nil {
		return Result{Name: name, Detail: "Unknown"}
	}
	if strings.TrimSpace(cfg.TMDB.APIToken) == "" {
		return Result{Name: name, Detail: "Missing API token (set API_TOKEN or tmdb.api_token)"}
	}
	client, err := tmdb.NewFromConfig(cfg, logging.NewNop())
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return CheckTMDB(ctx, client)
}
