package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/john32b/cbae/internal/preflight"
	"github.com/john32b/cbae/internal/queue"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Check ffmpeg, directories and conversion history",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			colorize := isTerminal(out)

			for _, line := range renderSectionHeader("System Checks", colorize) {
				fmt.Fprintln(out, line)
			}
			results := preflight.RunAll(cmd.Context(), cfg)
			for _, r := range results {
				kind := statusOK
				if !r.Passed {
					kind = statusError
				}
				fmt.Fprintln(out, renderStatusLine(r.Name, kind, r.Detail, colorize))
			}
			fmt.Fprintln(out)

			for _, line := range renderSectionHeader("History", colorize) {
				fmt.Fprintln(out, line)
			}
			store, err := queue.Open(cfg)
			if err != nil {
				fmt.Fprintln(out, renderStatusLine("Database", statusError, err.Error(), colorize))
				return nil
			}
			defer store.Close()
			fmt.Fprintln(out, renderStatusLine("Database", statusInfo, store.Path(), colorize))
			stats, err := store.Stats(cmd.Context())
			if err != nil {
				return err
			}
			for _, status := range queue.AllStatuses() {
				kind := statusInfo
				switch {
				case status == queue.StatusFailed && stats[status] > 0:
					kind = statusWarn
				case status == queue.StatusInvalid && stats[status] > 0:
					kind = statusWarn
				}
				fmt.Fprintln(out, renderStatusLine(string(status), kind, fmt.Sprintf("%d", stats[status]), colorize))
			}
			return nil
		},
	}
}
