package cue

import (
	"errors"
	"fmt"
	"strings"

	"github.com/john32b/cbae/internal/textutil"
)

const (
	untitledTrack = "untitled"
	unknownArtist = "unknown artist"

	templateTitled          = "{no}. {tt}"
	templateTitledPerformer = "{no}. {ta} - {tt}"
	templateFallback        = "{cdt} - Track {no}"
)

// ErrDuplicateName is returned when two tracks would be written to the same file name.
var ErrDuplicateName = errors.New("duplicate track file name")

// DefaultTemplate picks the naming template for d: titled tracks use their
// titles (with performers when any track has one), otherwise tracks are named
// after the disc.
func DefaultTemplate(d *Disc) string {
	allTitled := len(d.Tracks) > 0
	anyPerformer := false
	for _, t := range d.Tracks {
		if strings.TrimSpace(t.Title) == "" {
			allTitled = false
		}
		if strings.TrimSpace(t.Performer) != "" {
			anyPerformer = true
		}
	}
	switch {
	case allTitled && anyPerformer:
		return templateTitledPerformer
	case allTitled:
		return templateTitled
	default:
		return templateFallback
	}
}

// TrackNames expands template for every track of d and returns sanitized file
// names without extensions, in track order. An empty template selects
// DefaultTemplate.
func TrackNames(d *Disc, template string) ([]string, error) {
	if strings.TrimSpace(template) == "" {
		template = DefaultTemplate(d)
	}

	names := make([]string, 0, len(d.Tracks))
	seen := make(map[string]int, len(d.Tracks))
	for _, t := range d.Tracks {
		name := textutil.SanitizeFileName(expandTemplate(template, d, t))
		if name == "" {
			return nil, fmt.Errorf("template %q yields an empty name for track %02d", template, t.Number)
		}
		key := strings.ToLower(name)
		if other, dup := seen[key]; dup {
			return nil, fmt.Errorf("%w: tracks %02d and %02d both map to %q", ErrDuplicateName, other, t.Number, name)
		}
		seen[key] = t.Number
		names = append(names, name)
	}
	return names, nil
}

func expandTemplate(template string, d *Disc, t *Track) string {
	title := strings.TrimSpace(t.Title)
	if title == "" {
		title = untitledTrack
	}
	artist := strings.TrimSpace(t.Performer)
	if artist == "" {
		artist = unknownArtist
	}
	r := strings.NewReplacer(
		"{no}", fmt.Sprintf("%02d", t.Number),
		"{cdt}", d.Title,
		"{cda}", d.Performer,
		"{tt}", title,
		"{ta}", artist,
	)
	return r.Replace(template)
}
