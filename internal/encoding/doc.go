// Package encoding converts a cue sheet into a directory of per-track files.
//
// Data tracks are copied byte for byte into their own .bin file. Audio tracks
// are streamed through ffmpeg into the configured codec. Tracks run through a
// bounded worker pool; a regenerated sheet pointing at the new files is
// written last, so a directory holding a .cue is always complete. Each run is
// recorded in the history store together with per-track checksums.
package encoding
