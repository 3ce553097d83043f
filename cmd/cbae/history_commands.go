package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/john32b/cbae/internal/encoding"
	"github.com/john32b/cbae/internal/queue"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var statusFlags []string
	var asJSON bool

	historyCmd := &cobra.Command{
		Use:   "history",
		Short: "List recorded conversions",
		RunE: func(cmd *cobra.Command, args []string) error {
			statuses, err := parseStatusFlags(statusFlags)
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				items, err := store.List(cmd.Context(), statuses...)
				if err != nil {
					return err
				}
				if asJSON {
					return writeJSON(cmd, items)
				}
				if len(items) == 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "No conversions recorded")
					return nil
				}
				fmt.Fprint(cmd.OutOrStdout(), renderTable(
					[]string{"ID", "Disc", "Status", "Codec", "Tracks", "Size", "Updated", "Error"},
					buildHistoryRows(items),
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignRight, alignRight, alignLeft, alignLeft},
				))
				fmt.Fprintln(cmd.OutOrStdout())
				return nil
			})
		},
	}
	historyCmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Filter by status (repeatable)")
	historyCmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")

	historyCmd.AddCommand(newHistoryShowCommand(ctx))
	historyCmd.AddCommand(newHistoryVerifyCommand(ctx))
	historyCmd.AddCommand(newHistoryRemoveCommand(ctx))
	historyCmd.AddCommand(newHistoryClearCommand(ctx))
	return historyCmd
}

func newHistoryShowCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show the tracks produced by one conversion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("conversion %d not found", id)
				}
				tracks, err := store.Tracks(cmd.Context(), id)
				if err != nil {
					return err
				}

				out := cmd.OutOrStdout()
				fmt.Fprintf(out, "Disc:    %s\n", item.DiscTitle)
				fmt.Fprintf(out, "Sheet:   %s\n", item.SheetPath)
				fmt.Fprintf(out, "Status:  %s\n", item.Status)
				if item.OutputDir != "" {
					fmt.Fprintf(out, "Output:  %s\n", item.OutputDir)
				}
				if item.ErrorMessage != "" {
					fmt.Fprintf(out, "Error:   %s\n", item.ErrorMessage)
				}
				if len(tracks) == 0 {
					return nil
				}
				rows := make([][]string, 0, len(tracks))
				for _, tr := range tracks {
					kind := "data"
					if tr.Audio {
						kind = "audio"
					}
					sha := tr.SHA1
					crc := ""
					if sha != "" {
						crc = tr.CRC32Hex()
					}
					rows = append(rows, []string{
						fmt.Sprintf("%02d", tr.Number),
						kind,
						tr.Name,
						humanize.IBytes(uint64(tr.ByteSize)),
						crc,
						sha,
					})
				}
				fmt.Fprint(out, renderTable(
					[]string{"#", "Kind", "Name", "Size", "CRC32", "SHA1"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignLeft, alignLeft},
				))
				fmt.Fprintln(out)
				return nil
			})
		},
	}
}

func newHistoryVerifyCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "verify <id>",
		Short: "Check a conversion's output files against the recorded checksums",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := parseItemID(args[0])
			if err != nil {
				return err
			}
			return ctx.withStore(func(store *queue.Store) error {
				item, err := store.GetByID(cmd.Context(), id)
				if err != nil {
					return err
				}
				if item == nil {
					return fmt.Errorf("conversion %d not found", id)
				}
				if item.Status != queue.StatusCompleted {
					return fmt.Errorf("conversion %d is %s; only completed conversions can be verified", id, item.Status)
				}
				tracks, err := store.Tracks(cmd.Context(), id)
				if err != nil {
					return err
				}

				checks := encoding.VerifyTracks(tracks)
				failed := 0
				rows := make([][]string, 0, len(checks))
				for _, check := range checks {
					if check.Failed() {
						failed++
					}
					rows = append(rows, []string{
						fmt.Sprintf("%02d", check.Number),
						string(check.State),
						filepath.Base(check.Path),
						check.Detail,
					})
				}
				out := cmd.OutOrStdout()
				fmt.Fprint(out, renderTable(
					[]string{"#", "State", "File", "Detail"},
					rows,
					[]columnAlignment{alignRight, alignLeft, alignLeft, alignLeft},
				))
				fmt.Fprintln(out)
				if failed > 0 {
					return fmt.Errorf("%d of %d tracks failed verification", failed, len(checks))
				}
				return nil
			})
		},
	}
}

func newHistoryRemoveCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "remove <id>...",
		Short: "Remove conversions from the history",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ids := make([]int64, 0, len(args))
			for _, arg := range args {
				id, err := parseItemID(arg)
				if err != nil {
					return err
				}
				ids = append(ids, id)
			}
			return ctx.withStore(func(store *queue.Store) error {
				out := cmd.OutOrStdout()
				for _, id := range ids {
					item, err := store.GetByID(cmd.Context(), id)
					if err != nil {
						return err
					}
					if item != nil && !item.Status.Terminal() {
						fmt.Fprintf(out, "Conversion %d is still %s; skipped\n", id, item.Status)
						continue
					}
					removed, err := store.Remove(cmd.Context(), id)
					if err != nil {
						return err
					}
					if removed {
						fmt.Fprintf(out, "Removed conversion %d\n", id)
					} else {
						fmt.Fprintf(out, "Conversion %d not found\n", id)
					}
				}
				return nil
			})
		},
	}
}

func newHistoryClearCommand(ctx *commandContext) *cobra.Command {
	var all bool
	var statusFlags []string

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Clear conversions from the history",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !all && len(statusFlags) == 0 {
				return errors.New("specify --all or --status")
			}
			if all && len(statusFlags) > 0 {
				return errors.New("--all and --status are mutually exclusive")
			}
			statuses, err := parseStatusFlags(statusFlags)
			if err != nil {
				return err
			}

			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			store, err := queue.Open(cfg)
			if errors.Is(err, queue.ErrSchemaMismatch) && all {
				if err := removeHistoryFiles(cfg.HistoryPath()); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Removed incompatible history database")
				return nil
			}
			if err != nil {
				return err
			}
			defer store.Close()

			n, err := store.Clear(cmd.Context(), statuses...)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d conversions\n", n)
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "Remove every conversion")
	cmd.Flags().StringSliceVarP(&statusFlags, "status", "s", nil, "Remove conversions with this status (repeatable)")
	return cmd
}

func parseStatusFlags(values []string) ([]queue.Status, error) {
	statuses := make([]queue.Status, 0, len(values))
	for _, value := range values {
		status, err := queue.ParseStatus(value)
		if err != nil {
			return nil, err
		}
		statuses = append(statuses, status)
	}
	return statuses, nil
}

func parseItemID(value string) (int64, error) {
	id, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid conversion id %q", value)
	}
	return id, nil
}

func removeHistoryFiles(path string) error {
	for _, p := range []string{path, path + "-wal", path + "-shm"} {
		if err := os.Remove(p); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", p, err)
		}
	}
	return nil
}

func buildHistoryRows(items []*queue.Item) [][]string {
	rows := make([][]string, 0, len(items))
	for _, item := range items {
		title := item.DiscTitle
		if title == "" {
			title = item.SheetPath
		}
		rows = append(rows, []string{
			strconv.FormatInt(item.ID, 10),
			title,
			string(item.Status),
			item.Codec,
			strconv.Itoa(item.TrackCount),
			humanize.IBytes(uint64(item.TotalBytes)),
			humanize.Time(item.UpdatedAt),
			truncate(item.ErrorMessage, 48),
		})
	}
	return rows
}

func truncate(value string, limit int) string {
	runes := []rune(value)
	if len(runes) <= limit {
		return value
	}
	return string(runes[:limit-1]) + "…"
}
