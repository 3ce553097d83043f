package cue

import "strings"

// TrackType is the sector-format tag declared on a TRACK line.
type TrackType string

const (
	TrackAudio     TrackType = "AUDIO"
	TrackCDG       TrackType = "CDG"
	TrackMode12048 TrackType = "MODE1/2048"
	TrackMode12352 TrackType = "MODE1/2352"
	TrackMode22048 TrackType = "MODE2/2048"
	TrackMode22324 TrackType = "MODE2/2324"
	TrackMode22336 TrackType = "MODE2/2336"
	TrackMode22352 TrackType = "MODE2/2352"
	TrackCDI2336   TrackType = "CDI/2336"
	TrackCDI2352   TrackType = "CDI/2352"
)

var sectorSizes = map[TrackType]int64{
	TrackAudio:     2352,
	TrackCDG:       2448,
	TrackMode12048: 2048,
	TrackMode12352: 2352,
	TrackMode22048: 2048,
	TrackMode22324: 2324,
	TrackMode22336: 2336,
	TrackMode22352: 2352,
	TrackCDI2336:   2336,
	TrackCDI2352:   2352,
}

// FileType is the container tag declared on a FILE line.
type FileType string

const (
	FileBinary FileType = "BINARY"
	FileWave   FileType = "WAVE"
)

var fileTypes = map[FileType]struct{}{
	FileBinary: {},
	FileWave:   {},
}

// ParseTrackType normalizes tag and reports whether it has a known sector size.
func ParseTrackType(tag string) (TrackType, bool) {
	t := TrackType(strings.ToUpper(strings.TrimSpace(tag)))
	_, ok := sectorSizes[t]
	return t, ok
}

// SectorSize returns the byte size of one sector for the track type, or 0 for
// unknown types.
func (t TrackType) SectorSize() int64 {
	return sectorSizes[t]
}

// IsAudio reports whether the type carries CD-DA audio.
func (t TrackType) IsAudio() bool {
	return t == TrackAudio
}
