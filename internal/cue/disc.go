package cue

import (
	"bytes"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/john32b/cbae/internal/textutil"
)

// StatFunc reports file metadata; it must return an error matching
// fs.ErrNotExist for missing files.
type StatFunc func(path string) (fs.FileInfo, error)

// Option configures a Disc before it is loaded.
type Option func(*Disc)

// WithStat overrides how declared data files are inspected.
func WithStat(fn StatFunc) Option {
	return func(d *Disc) {
		if fn != nil {
			d.stat = fn
		}
	}
}

// Disc is a loaded and resolved sheet.
type Disc struct {
	Title     string
	Performer string
	Tracks    []*Track
	// TotalSize sums the sizes of every distinct file declared by the sheet.
	TotalSize int64
	// BaseDir is the absolute directory holding the sheet.
	BaseDir string
	// SafeTitle is Title made safe for use as a file or directory name.
	SafeTitle string
	SheetPath string

	stat   StatFunc
	loaded bool
}

// NewDisc returns an empty Disc ready for a single Load.
func NewDisc(opts ...Option) *Disc {
	d := &Disc{stat: os.Stat}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// LoadFile reads, parses and resolves the sheet at path.
func LoadFile(path string, opts ...Option) (*Disc, error) {
	d := NewDisc(opts...)
	if err := d.Load(path); err != nil {
		return nil, err
	}
	return d, nil
}

// Load reads the sheet at path and resolves its layout. A Disc can be loaded
// once; after a failed load the instance should be discarded.
func (d *Disc) Load(path string) error {
	if d.loaded {
		return newError(KindState, "disc already loaded from %s", d.SheetPath)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		d.loaded = true
		return &Error{Kind: KindResource, Msg: "read sheet", Err: err}
	}
	return d.LoadReader(bytes.NewReader(data), path)
}

// LoadReader parses a sheet from r. sheetPath locates the data files and
// supplies the default disc title; the file itself is not read.
func (d *Disc) LoadReader(r io.Reader, sheetPath string) error {
	if d.loaded {
		return newError(KindState, "disc already loaded from %s", d.SheetPath)
	}
	d.loaded = true
	if d.stat == nil {
		d.stat = os.Stat
	}

	abs, err := filepath.Abs(sheetPath)
	if err != nil {
		return &Error{Kind: KindResource, Msg: "resolve sheet path", Err: err}
	}
	d.SheetPath = abs
	d.BaseDir = filepath.Dir(abs)

	parsed, err := parseSheet(r)
	if err != nil {
		return err
	}
	d.Title = parsed.title
	d.Performer = parsed.performer
	d.Tracks = parsed.tracks

	if strings.TrimSpace(d.Title) == "" {
		base := filepath.Base(abs)
		d.Title = strings.TrimSuffix(base, filepath.Ext(base))
	}
	d.SafeTitle = textutil.SanitizeFileName(d.Title)
	if d.SafeTitle == "" {
		d.SafeTitle = "disc"
	}

	return d.resolveLayout()
}

// Loaded reports whether Load has been called on the disc.
func (d *Disc) Loaded() bool {
	return d.loaded
}

// Path resolves a file name from the sheet against the sheet's directory.
func (d *Disc) Path(name string) string {
	if filepath.IsAbs(name) {
		return filepath.Clean(name)
	}
	return filepath.Join(d.BaseDir, filepath.FromSlash(name))
}

// AudioTrackCount returns how many tracks carry audio.
func (d *Disc) AudioTrackCount() int {
	n := 0
	for _, t := range d.Tracks {
		if t.IsAudio() {
			n++
		}
	}
	return n
}

// Track returns the track with the given number.
func (d *Disc) Track(number int) (*Track, bool) {
	for _, t := range d.Tracks {
		if t.Number == number {
			return t, true
		}
	}
	return nil, false
}

// Extent is the byte range of one track inside its physical file.
type Extent struct {
	Track     int
	Path      string
	ByteStart int64
	ByteSize  int64
	Audio     bool
}

func (e Extent) String() string {
	return fmt.Sprintf("track %02d %s [%d,+%d)", e.Track, filepath.Base(e.Path), e.ByteStart, e.ByteSize)
}

// Extents lists the resolved byte range of every track in disc order. The
// ranges are disjoint and may be processed concurrently.
func (d *Disc) Extents() []Extent {
	out := make([]Extent, 0, len(d.Tracks))
	for _, t := range d.Tracks {
		out = append(out, Extent{
			Track:     t.Number,
			Path:      d.Path(t.Source.Name),
			ByteStart: t.ByteStart,
			ByteSize:  t.ByteSize,
			Audio:     t.IsAudio(),
		})
	}
	return out
}
