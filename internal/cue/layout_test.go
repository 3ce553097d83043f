package cue

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestResolveLayoutSingleFileIsContiguous(t *testing.T) {
	input := `FILE "game.bin" BINARY
  TRACK 01 MODE1/2352
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    INDEX 00 00:02:00
    INDEX 01 00:04:00
  TRACK 03 AUDIO
    INDEX 01 00:06:30
`
	const size = 2352 * 1000
	d := mustLoadString(t, input, map[string]int64{"game.bin": size})

	wantStarts := []int64{0, 2352 * 300, 2352 * (6*75 + 30)}
	var sum int64
	for i, track := range d.Tracks {
		if track.ByteStart != wantStarts[i] {
			t.Fatalf("track %d start = %d, want %d", track.Number, track.ByteStart, wantStarts[i])
		}
		if i > 0 {
			prev := d.Tracks[i-1]
			if prev.ByteStart+prev.ByteSize != track.ByteStart {
				t.Fatalf("gap between track %d and %d", prev.Number, track.Number)
			}
			if track.Source != Shared("game.bin") {
				t.Fatalf("track %d source = %+v", track.Number, track.Source)
			}
		}
		sum += track.ByteSize
	}
	if sum != size {
		t.Fatalf("sizes sum to %d, want %d", sum, size)
	}
	if d.TotalSize != size {
		t.Fatalf("TotalSize = %d, want %d", d.TotalSize, size)
	}
	// track 2 spans frames 300..480
	if got := d.Tracks[1].SectorCount(); got != 180 {
		t.Fatalf("track 2 sector count = %d, want 180", got)
	}
}

func TestResolveLayoutSharedFormulaUsesOwnerSectorSize(t *testing.T) {
	input := `FILE "data.bin" BINARY
  TRACK 01 MODE1/2048
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    INDEX 01 00:10:00
`
	d := mustLoadString(t, input, map[string]int64{"data.bin": 10_000_000})

	// The owner is a 2048-byte track, so the shared track is addressed in 2048-byte sectors.
	want := int64(2048 * 750)
	if d.Tracks[1].ByteStart != want {
		t.Fatalf("shared start = %d, want %d", d.Tracks[1].ByteStart, want)
	}
	if d.Tracks[0].ByteSize != want {
		t.Fatalf("owner size = %d, want %d", d.Tracks[0].ByteSize, want)
	}
	if d.Tracks[1].ByteSize != 10_000_000-want {
		t.Fatalf("shared size = %d", d.Tracks[1].ByteSize)
	}
}

func TestResolveLayoutOneFilePerTrack(t *testing.T) {
	input := `TITLE "Multi"
FILE "Multi (Track 1).bin" BINARY
  TRACK 01 MODE2/2352
    INDEX 01 00:00:00
FILE "Multi (Track 2).bin" BINARY
  TRACK 02 AUDIO
    INDEX 00 00:00:00
    INDEX 01 00:02:00
FILE "Multi (Track 3).bin" BINARY
  TRACK 03 AUDIO
    INDEX 01 00:00:00
`
	sizes := map[string]int64{
		"Multi (Track 1).bin": 5_000_000,
		"Multi (Track 2).bin": 1_234_800,
		"Multi (Track 3).bin": 2_352,
	}
	d := mustLoadString(t, input, sizes)

	var total int64
	for _, track := range d.Tracks {
		if !track.Source.IsOwned() {
			t.Fatalf("track %d should own its file", track.Number)
		}
		if track.ByteStart != 0 || track.ByteSize != sizes[track.Source.Name] {
			t.Fatalf("track %d extent [%d,+%d)", track.Number, track.ByteStart, track.ByteSize)
		}
		total += track.ByteSize
	}
	if d.TotalSize != total {
		t.Fatalf("TotalSize = %d, want %d", d.TotalSize, total)
	}

	extents := d.Extents()
	if len(extents) != 3 {
		t.Fatalf("expected 3 extents, got %d", len(extents))
	}
	if extents[1].Path != filepath.Join("/discs", "Multi (Track 2).bin") || !extents[1].Audio {
		t.Fatalf("unexpected extent: %+v", extents[1])
	}
	if extents[0].Audio {
		t.Fatalf("data extent flagged as audio")
	}
}

func TestResolveLayoutMixedOwnersAndSharers(t *testing.T) {
	input := `FILE "data.bin" BINARY
  TRACK 01 MODE1/2352
    INDEX 01 00:00:00
FILE "audio.bin" BINARY
  TRACK 02 AUDIO
    INDEX 01 00:00:00
  TRACK 03 AUDIO
    INDEX 01 00:01:00
`
	d := mustLoadString(t, input, map[string]int64{"data.bin": 4704, "audio.bin": 2352 * 200})

	if d.Tracks[0].ByteSize != 4704 {
		t.Fatalf("data track size = %d", d.Tracks[0].ByteSize)
	}
	if d.Tracks[1].ByteSize != 2352*75 || d.Tracks[2].ByteStart != 2352*75 {
		t.Fatalf("unexpected split: %+v %+v", d.Tracks[1], d.Tracks[2])
	}
	if d.Tracks[2].Source != Shared("audio.bin") {
		t.Fatalf("track 3 source = %+v", d.Tracks[2].Source)
	}
	if d.TotalSize != 4704+2352*200 {
		t.Fatalf("TotalSize = %d", d.TotalSize)
	}
}

func TestResolveLayoutRejectsNegativeSizes(t *testing.T) {
	input := `FILE "a.bin" BINARY
  TRACK 01 MODE1/2352
    INDEX 01 00:00:00
  TRACK 02 AUDIO
    INDEX 01 00:10:00
  TRACK 03 AUDIO
    INDEX 01 00:05:00
`
	_, err := loadString(t, input, map[string]int64{"a.bin": 100_000_000})
	if !errors.Is(err, ErrLayout) {
		t.Fatalf("expected layout error, got %v", err)
	}
}

func TestResolveLayoutMissingFile(t *testing.T) {
	input := "FILE \"missing.bin\" BINARY\nTRACK 01 MODE1/2352\nINDEX 01 00:00:00\n"
	_, err := loadString(t, input, map[string]int64{})
	if KindOf(err) != KindResource {
		t.Fatalf("expected resource error, got %v", err)
	}
	if !errors.Is(err, ErrResource) {
		t.Fatalf("errors.Is(ErrResource) failed for %v", err)
	}
}

func TestLoadFileEndToEnd(t *testing.T) {
	dir := t.TempDir()
	sheetPath := filepath.Join(dir, "Example Disc.cue")
	sheetText := "FILE \"a.bin\" BINARY\n  TRACK 01 MODE1/2352\n    INDEX 01 00:00:00\n  TRACK 02 AUDIO\n    INDEX 01 02:00:00\n"
	if err := os.WriteFile(sheetPath, []byte(sheetText), 0o644); err != nil {
		t.Fatalf("write sheet: %v", err)
	}

	binPath := filepath.Join(dir, "a.bin")
	writeSparse(t, binPath, 30_000_000)

	d, err := LoadFile(sheetPath)
	if err != nil {
		t.Fatalf("LoadFile: %v", err)
	}
	if d.Title != "Example Disc" || d.SafeTitle != "Example Disc" {
		t.Fatalf("title fallback = %q / %q", d.Title, d.SafeTitle)
	}
	if d.BaseDir != dir {
		t.Fatalf("BaseDir = %q, want %q", d.BaseDir, dir)
	}
	t1, t2 := d.Tracks[0], d.Tracks[1]
	if t1.ByteStart != 0 || t2.ByteStart != 21_168_000 {
		t.Fatalf("starts = %d, %d", t1.ByteStart, t2.ByteStart)
	}
	if t1.ByteSize != 21_168_000 || t2.ByteSize != 30_000_000-21_168_000 {
		t.Fatalf("sizes = %d, %d", t1.ByteSize, t2.ByteSize)
	}
	if d.AudioTrackCount() != 1 {
		t.Fatalf("audio tracks = %d", d.AudioTrackCount())
	}

	// The same sheet over a 10,000,000 byte image cannot hold track 2.
	writeSparse(t, binPath, 10_000_000)
	if _, err := LoadFile(sheetPath); !errors.Is(err, ErrLayout) {
		t.Fatalf("expected layout error for short image, got %v", err)
	}
}

func TestDiscLoadsOnce(t *testing.T) {
	input := "FILE \"a.bin\" BINARY\nTRACK 01 AUDIO\nINDEX 01 00:00:00\n"
	d := mustLoadString(t, input, map[string]int64{"a.bin": 2352})
	if !d.Loaded() {
		t.Fatal("disc should report loaded")
	}
	if err := d.Load("/discs/other.cue"); KindOf(err) != KindState {
		t.Fatalf("expected state error on reload, got %v", err)
	}
}

func TestDiscPath(t *testing.T) {
	d := &Disc{BaseDir: "/discs"}
	if got := d.Path("sub/a.bin"); got != filepath.Join("/discs", "sub", "a.bin") {
		t.Fatalf("relative path = %q", got)
	}
	if got := d.Path("/images/a.bin"); got != "/images/a.bin" {
		t.Fatalf("absolute path = %q", got)
	}
}

func writeSparse(t *testing.T, path string, size int64) {
	t.Helper()
	f, err := os.Create(path)
	if err != nil {
		t.Fatalf("create %s: %v", path, err)
	}
	defer f.Close()
	if err := f.Truncate(size); err != nil {
		t.Fatalf("truncate %s: %v", path, err)
	}
}
