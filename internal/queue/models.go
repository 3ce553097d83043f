package queue

import (
	"fmt"
	"strings"
	"time"
)

// Status represents the lifecycle of a conversion.
type Status string

const (
	StatusPending    Status = "pending"
	StatusConverting Status = "converting"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
	StatusInvalid    Status = "invalid"
)

// InterruptedReason is the error message set on conversions that were still
// running when the previous process exited.
const InterruptedReason = "Interrupted before completion"

var allStatuses = []Status{
	StatusPending,
	StatusConverting,
	StatusCompleted,
	StatusFailed,
	StatusInvalid,
}

// AllStatuses returns every known status in lifecycle order.
func AllStatuses() []Status {
	out := make([]Status, len(allStatuses))
	copy(out, allStatuses)
	return out
}

// ParseStatus maps user input onto a status.
func ParseStatus(value string) (Status, error) {
	candidate := Status(strings.ToLower(strings.TrimSpace(value)))
	for _, status := range allStatuses {
		if status == candidate {
			return status, nil
		}
	}
	return "", fmt.Errorf("unknown status %q", value)
}

// Terminal reports whether no further transition is expected.
func (s Status) Terminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusInvalid:
		return true
	default:
		return false
	}
}

// Item is one conversion of one cue sheet.
type Item struct {
	ID           int64
	SheetPath    string
	DiscTitle    string
	Codec        string
	OutputDir    string
	Status       Status
	ErrorMessage string
	TrackCount   int
	TotalBytes   int64
	SessionID    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// TrackResult records what was produced for a single track.
type TrackResult struct {
	ItemID     int64
	Number     int
	Name       string
	Audio      bool
	ByteStart  int64
	ByteSize   int64
	CRC32      uint32
	SHA1       string
	OutputPath string
}

// CRC32Hex formats the checksum the way redump-style listings do.
func (t TrackResult) CRC32Hex() string {
	return fmt.Sprintf("%08x", t.CRC32)
}
