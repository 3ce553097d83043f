// Package cue models the cue-sheet dialect used by game-disc images and
// resolves the byte layout of every track across its companion data files.
//
// Loading a sheet happens in two passes. The parser walks the sheet line by
// line as an explicit state machine (idle, file pending, track open) and
// produces the ordered track list plus disc-level metadata. The layout
// resolver then decides which tracks share a physical file, checks that every
// declared file exists next to the sheet, and computes each track's starting
// byte offset and byte length inside that file.
//
// A resolved Disc is immutable from the caller's point of view. Extents exposes
// the per-track byte ranges so copy and encode workers can process tracks in
// any order. TrackNames and BuildSheet derive output file names and a new
// sheet for the split, per-track files.
package cue
