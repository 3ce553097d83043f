package cue

import (
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

type fakeInfo struct {
	name string
	size int64
}

func (f fakeInfo) Name() string       { return f.name }
func (f fakeInfo) Size() int64        { return f.size }
func (f fakeInfo) Mode() fs.FileMode  { return 0o644 }
func (f fakeInfo) ModTime() time.Time { return time.Time{} }
func (f fakeInfo) IsDir() bool        { return false }
func (f fakeInfo) Sys() any           { return nil }

// fakeFiles serves file sizes keyed by base name.
func fakeFiles(sizes map[string]int64) StatFunc {
	return func(path string) (fs.FileInfo, error) {
		name := filepath.Base(path)
		size, ok := sizes[name]
		if !ok {
			return nil, &fs.PathError{Op: "stat", Path: path, Err: fs.ErrNotExist}
		}
		return fakeInfo{name: name, size: size}, nil
	}
}

func loadString(t *testing.T, sheet string, sizes map[string]int64) (*Disc, error) {
	t.Helper()
	d := NewDisc(WithStat(fakeFiles(sizes)))
	err := d.LoadReader(strings.NewReader(sheet), "/discs/Game.cue")
	return d, err
}

func mustLoadString(t *testing.T, sheet string, sizes map[string]int64) *Disc {
	t.Helper()
	d, err := loadString(t, sheet, sizes)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	return d
}
