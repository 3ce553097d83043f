package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/john32b/cbae/internal/config"
	"github.com/john32b/cbae/internal/encoding"
	"github.com/john32b/cbae/internal/logging"
	"github.com/john32b/cbae/internal/notifications"
	"github.com/john32b/cbae/internal/preflight"
	"github.com/john32b/cbae/internal/queue"
	"github.com/john32b/cbae/internal/services/ffmpeg"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var (
		outputDir  string
		codec      string
		quality    int
		workers    int
		template   string
		overwrite  bool
		noHistory  bool
		skipChecks bool
	)

	cmd := &cobra.Command{
		Use:   "encode <sheet.cue|dir>...",
		Short: "Convert one or more cue sheets",
		Long: "Convert cue sheets into one file per track. Data tracks are copied to .bin files,\n" +
			"audio tracks are encoded with ffmpeg. Directories are scanned for .cue files.",
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			overrides := config.Overrides{
				OutputDir: outputDir,
				Codec:     codec,
				Overwrite: overwrite,
			}
			flags := cmd.Flags()
			if flags.Changed("quality") {
				overrides.Quality = &quality
			}
			if flags.Changed("threads") {
				overrides.Workers = &workers
			}
			if flags.Changed("template") {
				overrides.NameTemplate = &template
			}
			cfg, err := base.WithOverrides(overrides)
			if err != nil {
				return err
			}

			sheets, err := collectSheets(args)
			if err != nil {
				return err
			}

			interactive := isTerminal(cmd.ErrOrStderr())
			logger, err := ctx.newLogger(cfg, !interactive)
			if err != nil {
				return err
			}

			if !skipChecks {
				if failed := preflight.Failed(preflight.RunAll(cmd.Context(), cfg)); len(failed) > 0 {
					return preflightError(failed)
				}
			}

			opts := []encoding.Option{encoding.WithSessionID(ctx.sessionID)}
			if !noHistory {
				store, err := queue.Open(cfg)
				if err != nil {
					return err
				}
				defer store.Close()
				lock := flock.New(cfg.LockPath())
				if locked, lockErr := lock.TryLock(); lockErr == nil && locked {
					defer lock.Unlock()
					if n, err := store.ResetStuckConverting(cmd.Context()); err != nil {
						logger.Warn("failed to reset interrupted conversions", logging.Error(err))
					} else if n > 0 {
						logger.Info("marked interrupted conversions as failed", logging.Int64("count", n))
					}
				}
				opts = append(opts, encoding.WithStore(store))
			}

			reporter := newProgressReporter(cmd.ErrOrStderr(), interactive)
			opts = append(opts, encoding.WithProgress(reporter.update))

			enc, err := encoding.NewEncoder(cfg, logger, opts...)
			if err != nil {
				return err
			}
			started := time.Now()
			results, convErr := enc.ConvertAll(cmd.Context(), sheets)
			reporter.finish()
			publishBatch(cmd.Context(), notifications.NewService(cfg), logger, batchOutcome{
				codec:   cfg.Encoder.Codec,
				results: results,
				total:   len(sheets),
				elapsed: time.Since(started),
				err:     convErr,
			})

			if len(results) > 0 {
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"Disc", "Tracks", "Codec", "Source", "Elapsed", "Output"},
					buildEncodeRows(results, codecLabel(cfg.Encoder)),
					[]columnAlignment{alignLeft, alignRight, alignLeft, alignRight, alignRight, alignLeft},
				))
				fmt.Fprintln(cmd.OutOrStdout())
			}
			if convErr != nil {
				return fmt.Errorf("%d of %d sheets failed: %w", len(sheets)-len(results), len(sheets), convErr)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&outputDir, "output", "o", "", "Directory receiving converted discs (default: next to each sheet)")
	cmd.Flags().StringVarP(&codec, "codec", "c", "", "Audio codec ("+strings.Join(ffmpeg.CodecNames(), ", ")+")")
	cmd.Flags().IntVarP(&quality, "quality", "q", 0, "Codec quality (0 selects the codec default)")
	cmd.Flags().IntVarP(&workers, "threads", "t", 0, "Tracks converted in parallel")
	cmd.Flags().StringVar(&template, "template", "", "Track name template ({no} {tt} {ta} {cdt} {cda})")
	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "Replace existing output files")
	cmd.Flags().BoolVar(&noHistory, "no-history", false, "Do not record conversions in the history database")
	cmd.Flags().BoolVar(&skipChecks, "skip-checks", false, "Skip ffmpeg and directory checks")
	return cmd
}

// collectSheets expands directory arguments into the .cue files they hold
// and drops duplicates while keeping argument order.
func collectSheets(args []string) ([]string, error) {
	var sheets []string
	seen := make(map[string]struct{})
	add := func(path string) {
		abs, err := filepath.Abs(path)
		if err != nil {
			abs = path
		}
		if _, ok := seen[abs]; ok {
			return
		}
		seen[abs] = struct{}{}
		sheets = append(sheets, abs)
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("sheet %s: %w", arg, err)
		}
		if !info.IsDir() {
			add(arg)
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, fmt.Errorf("scan %s: %w", arg, err)
		}
		var found []string
		for _, entry := range entries {
			if !entry.IsDir() && strings.EqualFold(filepath.Ext(entry.Name()), ".cue") {
				found = append(found, filepath.Join(arg, entry.Name()))
			}
		}
		if len(found) == 0 {
			return nil, fmt.Errorf("no .cue files in %s", arg)
		}
		slices.Sort(found)
		for _, path := range found {
			add(path)
		}
	}
	return sheets, nil
}

func preflightError(failed []preflight.Result) error {
	parts := make([]string, 0, len(failed))
	for _, r := range failed {
		parts = append(parts, fmt.Sprintf("%s: %s", r.Name, r.Detail))
	}
	return errors.New("preflight failed (use --skip-checks to ignore): " + strings.Join(parts, "; "))
}

func codecLabel(enc config.Encoder) string {
	if q := enc.EffectiveQuality(); q != 0 {
		return fmt.Sprintf("%s q%d", enc.Codec, q)
	}
	return enc.Codec
}

func buildEncodeRows(results []*encoding.Result, codec string) [][]string {
	rows := make([][]string, 0, len(results))
	for _, res := range results {
		rows = append(rows, []string{
			res.Disc.Title,
			fmt.Sprintf("%d", len(res.Tracks)),
			codec,
			humanize.IBytes(uint64(res.Disc.TotalSize)),
			res.Elapsed.Round(100 * time.Millisecond).String(),
			res.OutputDir,
		})
	}
	return rows
}

type batchOutcome struct {
	codec   string
	results []*encoding.Result
	total   int
	elapsed time.Duration
	err     error
}

// publishBatch sends the per-disc, summary and error notifications for one
// encode run. A failed publish is logged and does not stop the others.
func publishBatch(ctx context.Context, notifier notifications.Service, logger *slog.Logger, batch batchOutcome) {
	ctx = context.WithoutCancel(ctx)
	publish := func(event notifications.Event, payload notifications.Payload) {
		if err := notifier.Publish(ctx, event, payload); err != nil {
			logger.Warn("notification failed",
				logging.String("event", string(event)),
				logging.Error(err),
			)
		}
	}
	for _, res := range batch.results {
		publish(notifications.EventDiscConverted, notifications.Payload{
			"disc":   res.Disc.Title,
			"tracks": len(res.Tracks),
			"codec":  batch.codec,
		})
	}
	publish(notifications.EventBatchCompleted, notifications.Payload{
		"converted": len(batch.results),
		"failed":    batch.total - len(batch.results),
		"elapsed":   batch.elapsed,
	})
	if batch.err != nil {
		publish(notifications.EventError, notifications.Payload{
			"context": fmt.Sprintf("%d of %d sheets", batch.total-len(batch.results), batch.total),
			"error":   batch.err.Error(),
		})
	}
}
