package preflight

import (
	"context"

	"github.com/john32b/cbae/internal/config"
)

// Result reports the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// RunAll executes all applicable preflight checks for the given config.
func RunAll(ctx context.Context, cfg *config.Config) []Result {
	if cfg == nil {
		return nil
	}

	var results []Result

	results = append(results, CheckDirectoryAccess("State directory", cfg.Paths.StateDir))
	results = append(results, CheckDirectoryAccess("Log directory", cfg.Paths.LogDir))

	// Output directory (when configured; otherwise discs land next to their sheets)
	if cfg.Paths.OutputDir != "" {
		results = append(results, CheckCreatable("Output directory", cfg.Paths.OutputDir))
	}

	results = append(results, CheckFFmpeg(ctx, cfg))
	results = append(results, CheckEncoder(ctx, cfg))

	return results
}

// Failed returns the results that did not pass.
func Failed(results []Result) []Result {
	var failed []Result
	for _, r := range results {
		if !r.Passed {
			failed = append(failed, r)
		}
	}
	return failed
}
