package main

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/john32b/cbae/internal/config"
	"github.com/john32b/cbae/internal/cue"
	"github.com/john32b/cbae/internal/queue"
	"github.com/john32b/cbae/internal/services/ffmpeg"
)

type trackInfo struct {
	Number    int      `json:"number"`
	Type      string   `json:"type"`
	Title     string   `json:"title,omitempty"`
	Performer string   `json:"performer,omitempty"`
	File      string   `json:"file"`
	Shared    bool     `json:"shared"`
	ByteStart int64    `json:"byte_start"`
	ByteSize  int64    `json:"byte_size"`
	Sectors   int64    `json:"sectors"`
	Pregap    string   `json:"pregap,omitempty"`
	Indexes   []string `json:"indexes"`
	Output    string   `json:"output"`
}

type discInfo struct {
	Sheet          string      `json:"sheet"`
	Title          string      `json:"title"`
	Performer      string      `json:"performer,omitempty"`
	TotalSize      int64       `json:"total_size"`
	Tracks         []trackInfo `json:"tracks"`
	LastConversion *queue.Item `json:"last_conversion,omitempty"`
}

func newInfoCommand(ctx *commandContext) *cobra.Command {
	var (
		codec    string
		template string
		asJSON   bool
	)

	cmd := &cobra.Command{
		Use:   "info <sheet.cue>",
		Short: "Show the track layout of a cue sheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			base, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			overrides := config.Overrides{Codec: codec}
			if cmd.Flags().Changed("template") {
				overrides.NameTemplate = &template
			}
			cfg, err := base.WithOverrides(overrides)
			if err != nil {
				return err
			}

			disc, err := cue.LoadFile(args[0])
			if err != nil {
				return err
			}
			info, err := describeDisc(disc, cfg)
			if err != nil {
				return err
			}
			info.LastConversion = lastConversion(cmd, ctx, disc.SheetPath)
			if asJSON {
				return writeJSON(cmd, info)
			}
			printDiscInfo(cmd, info)
			return nil
		},
	}

	cmd.Flags().StringVarP(&codec, "codec", "c", "", "Codec used for output names")
	cmd.Flags().StringVar(&template, "template", "", "Track name template used for output names")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Output as JSON")
	return cmd
}

func describeDisc(disc *cue.Disc, cfg *config.Config) (discInfo, error) {
	names, err := cue.TrackNames(disc, cfg.Workflow.NameTemplate)
	if err != nil {
		return discInfo{}, err
	}
	codec, _ := ffmpeg.LookupCodec(cfg.Encoder.Codec)

	info := discInfo{
		Sheet:     disc.SheetPath,
		Title:     disc.Title,
		Performer: disc.Performer,
		TotalSize: disc.TotalSize,
		Tracks:    make([]trackInfo, 0, len(disc.Tracks)),
	}
	for i, t := range disc.Tracks {
		ext := "bin"
		if t.IsAudio() {
			ext = codec.Extension
		}
		ti := trackInfo{
			Number:    t.Number,
			Type:      string(t.Type),
			Title:     t.Title,
			Performer: t.Performer,
			File:      t.Source.Name,
			Shared:    t.Source.IsShared(),
			ByteStart: t.ByteStart,
			ByteSize:  t.ByteSize,
			Sectors:   t.SectorCount(),
			Output:    names[i] + "." + ext,
		}
		if t.Pregap != nil {
			ti.Pregap = t.Pregap.String()
		}
		for _, idx := range t.Indexes {
			ti.Indexes = append(ti.Indexes, fmt.Sprintf("%02d %s", idx.Index, idx))
		}
		info.Tracks = append(info.Tracks, ti)
	}
	return info, nil
}

func printDiscInfo(cmd *cobra.Command, info discInfo) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title:      %s\n", info.Title)
	if info.Performer != "" {
		fmt.Fprintf(out, "Performer:  %s\n", info.Performer)
	}
	fmt.Fprintf(out, "Sheet:      %s\n", info.Sheet)
	fmt.Fprintf(out, "Total size: %s\n", humanize.IBytes(uint64(info.TotalSize)))
	if last := info.LastConversion; last != nil {
		fmt.Fprintf(out, "Converted:  %s %s (history id %d)\n", last.Status, humanize.Time(last.UpdatedAt), last.ID)
	}

	rows := make([][]string, 0, len(info.Tracks))
	for _, t := range info.Tracks {
		file := filepath.Base(t.File)
		if t.Shared {
			file += " (shared)"
		}
		rows = append(rows, []string{
			fmt.Sprintf("%02d", t.Number),
			t.Type,
			file,
			strconv.FormatInt(t.ByteStart, 10),
			humanize.IBytes(uint64(t.ByteSize)),
			strconv.FormatInt(t.Sectors, 10),
			strings.Join(t.Indexes, ", "),
			t.Output,
		})
	}
	fmt.Fprint(out, renderTable(
		[]string{"#", "Type", "File", "Start", "Size", "Sectors", "Indexes", "Output"},
		rows,
		[]columnAlignment{alignRight, alignLeft, alignLeft, alignRight, alignRight, alignRight, alignLeft, alignLeft},
	))
	fmt.Fprintln(out)
}

// lastConversion looks the sheet up in the history. A missing or unreadable
// history is not an error for info.
func lastConversion(cmd *cobra.Command, ctx *commandContext, sheetPath string) *queue.Item {
	var last *queue.Item
	_ = ctx.withStore(func(store *queue.Store) error {
		item, err := store.LatestForSheet(cmd.Context(), sheetPath)
		last = item
		return err
	})
	return last
}
