package cue

import (
	"bufio"
	"fmt"
	"io"
	"strings"
)

const (
	dataExtension = "bin"
	indent        = "  "
)

// BuildSheet renders a sheet describing one output file per track. names
// holds the base file name of every track, in track order; data tracks get a
// .bin extension and audio tracks get audioExt. Index times are rebased on
// the first byte of each track's new file. For a track that shared its source
// file that byte is INDEX 01, so INDEX 01 becomes 00:00:00 and earlier
// indexes fold into the track's PREGAP. A track that owned its source file is
// copied from byte 0, lead-in included, so its indexes keep their times: an
// INDEX 00 00:00:00 / INDEX 01 00:02:00 track is written back unchanged.
//
// d must be a successfully loaded disc and len(names) must match its tracks.
func BuildSheet(d *Disc, names []string, audioExt string) []string {
	audioExt = strings.TrimPrefix(strings.TrimSpace(audioExt), ".")
	audioTag := strings.ToUpper(audioExt)

	lines := make([]string, 0, 2+len(d.Tracks)*5)
	if d.Title != "" {
		lines = append(lines, fmt.Sprintf(`TITLE "%s"`, d.Title))
	}
	if d.Performer != "" {
		lines = append(lines, fmt.Sprintf(`PERFORMER "%s"`, d.Performer))
	}

	for i, t := range d.Tracks {
		if t.IsAudio() {
			lines = append(lines, fmt.Sprintf(`FILE "%s" %s`, names[i]+"."+audioExt, audioTag))
		} else {
			lines = append(lines, fmt.Sprintf(`FILE "%s" %s`, names[i]+"."+dataExtension, FileBinary))
		}
		lines = append(lines, fmt.Sprintf("%sTRACK %02d %s", indent, t.Number, t.Type))
		if t.Title != "" {
			lines = append(lines, fmt.Sprintf(`%s%sTITLE "%s"`, indent, indent, t.Title))
		}
		if t.Performer != "" {
			lines = append(lines, fmt.Sprintf(`%s%sPERFORMER "%s"`, indent, indent, t.Performer))
		}

		indexes, pregap := renormalize(t)
		if pregap > 0 {
			lines = append(lines, fmt.Sprintf("%s%sPREGAP %s", indent, indent, TimeCodeFromFrames(0, pregap)))
		}
		for _, idx := range indexes {
			lines = append(lines, fmt.Sprintf("%s%sINDEX %02d %s", indent, indent, idx.Index, idx))
		}
	}
	return lines
}

// WriteSheet writes lines to w, one per line.
func WriteSheet(w io.Writer, lines []string) error {
	bw := bufio.NewWriter(w)
	for _, line := range lines {
		if _, err := bw.WriteString(line); err != nil {
			return err
		}
		if _, err := bw.WriteString("\n"); err != nil {
			return err
		}
	}
	return bw.Flush()
}

// renormalize shifts the track's indexes to the start of its extracted range.
// Owned tracks keep their positions because their range starts at byte 0;
// shared tracks start at INDEX 01. The returned pregap is the declared PREGAP
// plus whatever lead-in was cut off.
func renormalize(t *Track) ([]TimeCode, int) {
	origin := 0
	if !t.Source.IsOwned() {
		if start, ok := t.Index(1); ok {
			origin = start.FrameCount()
		}
	}

	pregap := 0
	if t.Pregap != nil {
		pregap = t.Pregap.FrameCount()
	}
	cut := 0
	out := make([]TimeCode, 0, len(t.Indexes))
	for _, idx := range t.Indexes {
		rel := idx.FrameCount() - origin
		if rel < 0 {
			if -rel > cut {
				cut = -rel
			}
			continue
		}
		out = append(out, TimeCodeFromFrames(idx.Index, rel))
	}
	return out, pregap + cut
}
