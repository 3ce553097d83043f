// Package notifications publishes conversion events to ntfy.
//
// NewService returns a no-op Service when no topic is configured, so callers
// publish unconditionally. Per-disc events are only sent when the
// notifications.per_disc option is set; batch summaries and errors always go
// out.
package notifications
