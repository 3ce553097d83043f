package cue

import (
	"errors"
	"io/fs"
)

// resolveLayout walks the tracks once, keeping the most recent file owner as
// a cursor. Shared tracks start at their INDEX 01 scaled by the owner's
// sector size; every track ends where the next track on the same file
// begins, or at the end of the file.
func (d *Disc) resolveLayout() error {
	var (
		owner    *Track
		openSize int64
	)
	d.TotalSize = 0

	for i, track := range d.Tracks {
		switch track.Source.Kind {
		case SourceOwned:
			size, err := d.fileSize(track.Source.Name)
			if err != nil {
				return err
			}
			openSize = size
			d.TotalSize += size
			owner = track
			track.ByteStart = 0
		default:
			if owner == nil {
				return newError(KindOrder, "track %02d has no preceding FILE", track.Number)
			}
			track.Source = Shared(owner.Source.Name)
		}

		var next *Track
		if i+1 < len(d.Tracks) {
			next = d.Tracks[i+1]
		}
		if next != nil && !next.Source.IsOwned() {
			start, _ := next.Index(1)
			next.ByteStart = owner.Type.SectorSize() * int64(start.FrameCount())
			track.ByteSize = next.ByteStart - track.ByteStart
		} else {
			track.ByteSize = openSize - track.ByteStart
		}

		if track.ByteSize < 0 {
			return newError(KindLayout, "track %02d ends before it starts in %q (start %d, size %d)",
				track.Number, owner.Source.Name, track.ByteStart, track.ByteSize)
		}
	}
	return nil
}

func (d *Disc) fileSize(name string) (int64, error) {
	path := d.Path(name)
	info, err := d.stat(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return 0, newError(KindResource, "file %q not found in %s", name, d.BaseDir)
		}
		return 0, &Error{Kind: KindResource, Msg: "stat " + path, Err: err}
	}
	if info.IsDir() {
		return 0, newError(KindResource, "%q is a directory", name)
	}
	return info.Size(), nil
}
