// Command cbae converts game-disc cue/bin images into one file per track.
//
// Data tracks are copied into their own .bin files, audio tracks are encoded
// with ffmpeg, and a new sheet describing the result is written next to them.
// Run "cbae --help" for the list of subcommands.
package main
