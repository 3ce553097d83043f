package cue

// SourceKind tells whether a track declared its data file or continues the
// file of an earlier track.
type SourceKind int

const (
	SourceUnresolved SourceKind = iota
	SourceOwned
	SourceShared
)

// Source names the physical file backing a track.
type Source struct {
	Kind SourceKind
	Name string
}

// Owned is the source of a track that opened its own FILE.
func Owned(name string) Source { return Source{Kind: SourceOwned, Name: name} }

// Shared is the source of a track spliced from an earlier track's file.
func Shared(name string) Source { return Source{Kind: SourceShared, Name: name} }

// IsOwned reports whether the track declared the file itself.
func (s Source) IsOwned() bool { return s.Kind == SourceOwned }

// IsShared reports whether the track reuses the file of a previous track.
func (s Source) IsShared() bool { return s.Kind == SourceShared }

// Track is one logical track of a disc.
type Track struct {
	Number    int
	Type      TrackType
	Title     string
	Performer string
	Source    Source
	Pregap    *TimeCode
	Indexes   []TimeCode

	// ByteStart and ByteSize locate the track inside Source.Name once the
	// layout has been resolved.
	ByteStart int64
	ByteSize  int64
}

// Index returns the index with the given number.
func (t *Track) Index(number int) (TimeCode, bool) {
	for _, idx := range t.Indexes {
		if idx.Index == number {
			return idx, true
		}
	}
	return TimeCode{}, false
}

// IsAudio reports whether the track holds CD-DA audio.
func (t *Track) IsAudio() bool {
	return t.Type.IsAudio()
}

// SectorCount is the number of sectors the track spans in its file.
func (t *Track) SectorCount() int64 {
	size := t.Type.SectorSize()
	if size == 0 {
		return 0
	}
	return t.ByteSize / size
}

func (t *Track) validate() error {
	if _, ok := t.Index(1); !ok {
		return newError(KindOrder, "track %02d has no INDEX 01", t.Number)
	}
	return nil
}
