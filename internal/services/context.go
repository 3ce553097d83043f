package services

import "context"

type contextKey string

const (
	itemIDKey    contextKey = "item_id"
	sessionIDKey contextKey = "session_id"
	sheetKey     contextKey = "sheet"
	trackKey     contextKey = "track"
)

// WithItemID annotates context with the history item identifier.
func WithItemID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, itemIDKey, id)
}

// ItemIDFromContext extracts the history item identifier if present.
func ItemIDFromContext(ctx context.Context) (int64, bool) {
	v := ctx.Value(itemIDKey)
	if v == nil {
		return 0, false
	}
	switch val := v.(type) {
	case int64:
		return val, true
	case int:
		return int64(val), true
	default:
		return 0, false
	}
}

// WithSessionID annotates context with the identifier of the current run.
func WithSessionID(ctx context.Context, id string) context.Context {
	if id == "" {
		return ctx
	}
	return context.WithValue(ctx, sessionIDKey, id)
}

// SessionIDFromContext returns the run identifier if present.
func SessionIDFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sessionIDKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithSheet annotates context with the sheet being converted.
func WithSheet(ctx context.Context, path string) context.Context {
	if path == "" {
		return ctx
	}
	return context.WithValue(ctx, sheetKey, path)
}

// SheetFromContext returns the sheet path if present.
func SheetFromContext(ctx context.Context) (string, bool) {
	if v, ok := ctx.Value(sheetKey).(string); ok && v != "" {
		return v, true
	}
	return "", false
}

// WithTrack annotates context with a track number.
func WithTrack(ctx context.Context, number int) context.Context {
	if number <= 0 {
		return ctx
	}
	return context.WithValue(ctx, trackKey, number)
}

// TrackFromContext returns the track number if present.
func TrackFromContext(ctx context.Context) (int, bool) {
	if v, ok := ctx.Value(trackKey).(int); ok && v > 0 {
		return v, true
	}
	return 0, false
}
