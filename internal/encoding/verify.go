package encoding

import (
	"errors"
	"fmt"
	"os"

	"github.com/john32b/cbae/internal/fileutil"
	"github.com/john32b/cbae/internal/queue"
)

// CheckState is the outcome of verifying one recorded track.
type CheckState string

const (
	CheckOK       CheckState = "ok"
	CheckMissing  CheckState = "missing"
	CheckMismatch CheckState = "mismatch"
	// CheckPresent marks encoded audio, which is lossy or re-muxed and can
	// only be checked for presence.
	CheckPresent CheckState = "present"
)

// TrackCheck reports the state of one output file against its history record.
type TrackCheck struct {
	Number int
	Path   string
	State  CheckState
	Detail string
}

// Failed reports whether the check found a problem.
func (c TrackCheck) Failed() bool {
	return c.State == CheckMissing || c.State == CheckMismatch
}

// VerifyTracks re-reads the outputs recorded for a conversion. Data tracks
// are compared byte for byte through their checksums; audio tracks must
// exist and be non-empty.
func VerifyTracks(tracks []queue.TrackResult) []TrackCheck {
	checks := make([]TrackCheck, 0, len(tracks))
	for _, tr := range tracks {
		checks = append(checks, verifyTrack(tr))
	}
	return checks
}

func verifyTrack(tr queue.TrackResult) TrackCheck {
	check := TrackCheck{Number: tr.Number, Path: tr.OutputPath}
	info, err := os.Stat(tr.OutputPath)
	switch {
	case errors.Is(err, os.ErrNotExist):
		check.State = CheckMissing
		return check
	case err != nil:
		check.State = CheckMissing
		check.Detail = err.Error()
		return check
	}

	if tr.Audio {
		if info.Size() == 0 && tr.ByteSize > 0 {
			check.State = CheckMismatch
			check.Detail = "empty file"
			return check
		}
		check.State = CheckPresent
		return check
	}

	if info.Size() != tr.ByteSize {
		check.State = CheckMismatch
		check.Detail = fmt.Sprintf("%d bytes, expected %d", info.Size(), tr.ByteSize)
		return check
	}
	if tr.SHA1 == "" {
		check.State = CheckOK
		check.Detail = "size only"
		return check
	}
	sums, err := fileutil.ChecksumRange(tr.OutputPath, 0, tr.ByteSize)
	if err != nil {
		check.State = CheckMismatch
		check.Detail = err.Error()
		return check
	}
	if sums.SHA1 != tr.SHA1 || sums.CRC32 != tr.CRC32 {
		check.State = CheckMismatch
		check.Detail = "checksum differs"
		return check
	}
	check.State = CheckOK
	return check
}
