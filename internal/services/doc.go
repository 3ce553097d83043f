// Package services defines shared utilities consumed by the conversion
// pipeline and its external tool clients.
//
// Key responsibilities:
//   - Context helpers that stamp run, sheet, history item and track
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent history statuses (failed vs invalid).
//
// External tools live in sub-packages (see services/ffmpeg) so they can be
// faked in tests.
package services
