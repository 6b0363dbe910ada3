package main

import (
	"context"
	"fmt"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"marquee/internal/logging"
	"marquee/internal/recommend"
	"marquee/internal/web"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the recommendation UI and JSON API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd.Context(), ctx)
		},
	}
}

func runServe(cmdCtx context.Context, ctx *commandContext) error {
	if cmdCtx == nil {
		cmdCtx = context.Background()
	}
	signalCtx, cancel := signal.NotifyContext(cmdCtx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if err := cfg.RequireTMDB(); err != nil {
		return err
	}
	logger, err := ctx.ensureLogger()
	if err != nil {
		return err
	}

	cat, err := ctx.loadCatalog(signalCtx)
	if err != nil {
		logger.Error("load catalog", logging.Error(err))
		return err
	}
	orchestrator, err := ctx.newOrchestrator(logger)
	if err != nil {
		return err
	}
	ranker := recommend.NewRanker(cat, recommend.WithLimit(cfg.Recommend.Count))

	srv, err := web.New(cfg, cat, ranker, orchestrator, logger)
	if err != nil {
		return err
	}
	if err := srv.Run(signalCtx); err != nil {
		return err
	}
	logger.Info("marquee shutting down")
	return nil
}
