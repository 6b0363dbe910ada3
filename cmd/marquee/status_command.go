package main

import (
	"strings"

	"github.com/spf13/cobra"

	"marquee/internal/preflight"
)

type statusCheck struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
	Detail string `json:"detail"`
}

type statusReport struct {
	ConfigPath string        `json:"config_path,omitempty"`
	APIBind    string        `json:"api_bind"`
	APIAuth    bool          `json:"api_auth"`
	Ready      bool          `json:"ready"`
	Checks     []statusCheck `json:"checks"`
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check catalog, directories, and TMDB connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			results := preflight.RunAll(cmd.Context(), cfg)

			report := statusReport{
				ConfigPath: ctx.configPath(),
				APIBind:    cfg.Paths.APIBind,
				APIAuth:    strings.TrimSpace(cfg.Paths.APIToken) != "",
				Ready:      !preflight.Failed(results),
				Checks:     make([]statusCheck, 0, len(results)),
			}
			for _, r := range results {
				report.Checks = append(report.Checks, statusCheck(r))
			}

			colorize := shouldColorize(cmd.OutOrStdout())
			return emit(cmd, ctx, report, func() string {
				return renderStatusReport(report, colorize)
			})
		},
	}
}

func renderStatusReport(report statusReport, colorize bool) string {
	lines := renderSectionHeader("System", colorize)
	lines = append(lines,
		renderStatusLine("Web UI", statusInfo, report.APIBind, colorize),
		renderStatusLine("API auth", statusInfo, yesNo(report.APIAuth), colorize),
	)
	lines = append(lines, "")
	lines = append(lines, renderSectionHeader("Checks", colorize)...)
	for _, check := range report.Checks {
		kind := statusOK
		if !check.Passed {
			kind = statusError
		}
		lines = append(lines, renderStatusLine(check.Name, kind, check.Detail, colorize))
	}
	return strings.Join(lines, "\n")
}
