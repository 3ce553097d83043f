package logging

import (
	"context"
	"log/slog"

	"github.com/john32b/cbae/internal/services"
)

const (
	// FieldComponent is the standardized structured logging key for component names.
	FieldComponent = "component"
	// FieldSessionID identifies one invocation of the CLI.
	FieldSessionID = "session_id"
	// FieldItemID is the standardized structured logging key for history item identifiers.
	FieldItemID = "item_id"
	// FieldSheet is the path of the sheet being converted.
	FieldSheet = "sheet"
	// FieldTrack is the track number a record refers to.
	FieldTrack = "track"
	// FieldEventType names the event for log filtering.
	FieldEventType = "event_type"
	// FieldErrorHint tells the operator what to try next.
	FieldErrorHint = "error_hint"
	// FieldImpact is the user-facing consequence of a warning.
	FieldImpact = "impact"
)

// ContextFields extracts standardized slog attributes from the provided context.
// The session identifier is left out because the root logger already carries it.
func ContextFields(ctx context.Context) []slog.Attr {
	if ctx == nil {
		return nil
	}
	fields := make([]slog.Attr, 0, 3)
	if id, ok := services.ItemIDFromContext(ctx); ok {
		fields = append(fields, slog.Int64(FieldItemID, id))
	}
	if sheet, ok := services.SheetFromContext(ctx); ok {
		fields = append(fields, slog.String(FieldSheet, sheet))
	}
	if track, ok := services.TrackFromContext(ctx); ok {
		fields = append(fields, slog.Int(FieldTrack, track))
	}
	return fields
}

// WithContext returns a logger augmented with structured fields derived from the supplied context.
func WithContext(ctx context.Context, logger *slog.Logger) *slog.Logger {
	if logger == nil {
		logger = NewNop()
	}
	fields := ContextFields(ctx)
	if len(fields) == 0 {
		return logger
	}
	args := make([]any, len(fields))
	for i, f := range fields {
		args[i] = f
	}
	return logger.With(args...)
}
