// Package ffmpeg encodes raw CD-DA audio through the ffmpeg command-line tool.
//
// Audio tracks are streamed to ffmpeg's standard input as signed 16-bit
// little-endian stereo PCM at 44.1 kHz, which is exactly the layout of an
// AUDIO track inside a disc image.
package ffmpeg
