package ffmpeg

import (
	"sort"
	"strconv"
	"strings"
)

// Codec describes one supported output format.
type Codec struct {
	Name      string
	Extension string
	// Muxer is the ffmpeg output format, passed explicitly because the
	// encoder writes to a temporary name.
	Muxer string
	// Encoder is the ffmpeg audio encoder name.
	Encoder string
	// DefaultQuality is used when the caller passes 0.
	DefaultQuality int
	args           func(quality int) []string
}

// Args returns the ffmpeg output arguments for quality.
func (c Codec) Args(quality int) []string {
	if quality == 0 {
		quality = c.DefaultQuality
	}
	return append([]string{"-c:a", c.Encoder}, c.args(quality)...)
}

var codecs = map[string]Codec{
	"flac": {
		Name: "flac", Extension: "flac", Muxer: "flac", Encoder: "flac", DefaultQuality: 5,
		args: func(q int) []string { return []string{"-compression_level", strconv.Itoa(q)} },
	},
	"ogg": {
		Name: "ogg", Extension: "ogg", Muxer: "ogg", Encoder: "libvorbis", DefaultQuality: 6,
		args: func(q int) []string { return []string{"-q:a", strconv.Itoa(q)} },
	},
	"opus": {
		Name: "opus", Extension: "opus", Muxer: "opus", Encoder: "libopus", DefaultQuality: 128,
		args: func(q int) []string { return []string{"-b:a", strconv.Itoa(q) + "k"} },
	},
	"mp3": {
		// Quality runs 1-10 with 10 best; LAME's VBR scale runs the other way.
		Name: "mp3", Extension: "mp3", Muxer: "mp3", Encoder: "libmp3lame", DefaultQuality: 8,
		args: func(q int) []string { return []string{"-q:a", strconv.Itoa(10 - q)} },
	},
	"wav": {
		Name: "wav", Extension: "wav", Muxer: "wav", Encoder: "pcm_s16le",
		args: func(int) []string { return nil },
	},
}

// LookupCodec finds a codec by name, case-insensitively.
func LookupCodec(name string) (Codec, bool) {
	c, ok := codecs[strings.ToLower(strings.TrimSpace(name))]
	return c, ok
}

// CodecNames lists the supported codecs in alphabetical order.
func CodecNames() []string {
	names := make([]string, 0, len(codecs))
	for name := range codecs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
