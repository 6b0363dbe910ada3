package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"marquee/internal/logs"
)

func newLogsCommand(ctx *commandContext) *cobra.Command {
	var follow bool
	var lines int
	var contains string

	cmd := &cobra.Command{
		Use:   "logs",
		Short: "Display the Marquee log file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			path := cfg.LogFilePath()

			opts := logs.TailOptions{Offset: -1, Limit: lines, Contains: contains}
			if lines <= 0 {
				opts.Offset = 0
			}
			runCtx := cmd.Context()
			printed := false
			for {
				if follow {
					opts.Follow = true
					opts.Wait = time.Second
				}
				result, err := logs.Tail(runCtx, path, opts)
				if err != nil {
					if runCtx.Err() != nil {
						return nil
					}
					return fmt.Errorf("tail logs: %w", err)
				}
				for _, line := range result.Lines {
					fmt.Fprintln(cmd.OutOrStdout(), line)
					printed = true
				}
				if !follow {
					if !printed {
						fmt.Fprintln(cmd.OutOrStdout(), "No log entries available")
					}
					return nil
				}
				opts.Offset = result.Offset
				opts.Limit = 0
				if runCtx.Err() != nil {
					return nil
				}
			}
		},
	}

	cmd.Flags().BoolVarP(&follow, "follow", "f", false, "Follow log output")
	cmd.Flags().IntVarP(&lines, "lines", "n", 20, "Number of lines to show (0 for all)")
	cmd.Flags().StringVar(&contains, "grep", "", "Only lines containing this text, such as a request id")
	return cmd
}
