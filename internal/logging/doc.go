// Package logging assembles structured slog loggers and formatting helpers used
// across cbae.
//
// It owns the console and JSON handlers, centralizes level and output
// plumbing, and exposes context-aware helpers so pipeline code can tag log
// lines with the sheet, history item and track being processed. A no-op
// logger is provided for tests.
package logging
