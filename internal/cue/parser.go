package cue

import (
	"bufio"
	"io"
	"regexp"
	"strconv"
	"strings"
)

type stateMode int

const (
	stateIdle stateMode = iota
	stateFilePending
	stateTrackOpen
)

func (m stateMode) String() string {
	switch m {
	case stateFilePending:
		return "file-pending"
	case stateTrackOpen:
		return "track-open"
	default:
		return "idle"
	}
}

// parserState is the cursor carried from one line to the next.
type parserState struct {
	mode        stateMode
	pendingFile string
	track       *Track
}

// sheet accumulates everything the parser produces.
type sheet struct {
	title     string
	performer string
	tracks    []*Track
}

// sheetLine keeps the untouched text next to an ASCII upper-cased copy of the
// same byte length, so match offsets in upper slice the original.
type sheetLine struct {
	number int
	raw    string
	upper  string
}

var (
	titlePattern     = regexp.MustCompile(`^TITLE\s+"(.*)"$`)
	performerPattern = regexp.MustCompile(`^PERFORMER\s+"(.*)"$`)
	filePattern      = regexp.MustCompile(`^FILE\s+"(.+)"\s+(\S+)$`)
	trackPattern     = regexp.MustCompile(`^TRACK\s+(\d{1,2})\s+(\S+)$`)
	indexPattern     = regexp.MustCompile(`^INDEX\s+(\d{1,2})\s+(\d{2}):(\d{2}):(\d{2})$`)
	pregapPattern    = regexp.MustCompile(`^PREGAP\s+(\d{2}):(\d{2}):(\d{2})$`)
)

// Commands of the full cue-sheet grammar that carry nothing this model needs.
var ignoredCommands = map[string]struct{}{
	"CATALOG":    {},
	"CDTEXTFILE": {},
	"FLAGS":      {},
	"ISRC":       {},
	"POSTGAP":    {},
	"SONGWRITER": {},
}

func parseSheet(r io.Reader) (*sheet, error) {
	out := &sheet{}
	st := parserState{mode: stateIdle}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 4096), 1<<20)
	number := 0
	for scanner.Scan() {
		number++
		raw := strings.TrimSpace(scanner.Text())
		if number == 1 {
			raw = strings.TrimSpace(strings.TrimPrefix(raw, "\ufeff"))
		}
		if raw == "" {
			continue
		}
		ln := sheetLine{number: number, raw: raw, upper: asciiUpper(raw)}
		next, err := out.step(st, ln)
		if err != nil {
			return nil, attachLine(err, ln)
		}
		st = next
	}
	if err := scanner.Err(); err != nil {
		return nil, &Error{Kind: KindSyntax, Msg: "read sheet", Err: err}
	}

	switch st.mode {
	case stateTrackOpen:
		if err := st.track.validate(); err != nil {
			return nil, err
		}
	case stateFilePending:
		return nil, newError(KindOrder, "FILE %q is not followed by a TRACK", st.pendingFile)
	}
	if len(out.tracks) == 0 {
		return nil, newError(KindOrder, "sheet declares no tracks")
	}
	return out, nil
}

func (s *sheet) step(st parserState, ln sheetLine) (parserState, error) {
	keyword := ln.upper
	if i := strings.IndexAny(keyword, " \t"); i >= 0 {
		keyword = keyword[:i]
	}
	if keyword == "REM" || strings.HasPrefix(keyword, ";") {
		return st, nil
	}

	switch keyword {
	case "TITLE":
		text, err := quotedArg(titlePattern, ln)
		if err != nil {
			return st, err
		}
		if st.mode == stateTrackOpen {
			st.track.Title = text
		} else {
			s.title = text
		}
		return st, nil

	case "PERFORMER":
		text, err := quotedArg(performerPattern, ln)
		if err != nil {
			return st, err
		}
		if st.mode == stateTrackOpen {
			st.track.Performer = text
		} else {
			s.performer = text
		}
		return st, nil

	case "FILE":
		return s.fileLine(st, ln)

	case "TRACK":
		return s.trackLine(st, ln)

	case "INDEX":
		return s.indexLine(st, ln)

	case "PREGAP":
		m := pregapPattern.FindStringSubmatch(ln.upper)
		if m == nil {
			return st, syntaxError(ln)
		}
		if st.mode != stateTrackOpen {
			return st, newError(KindOrder, "PREGAP before any TRACK")
		}
		tc, ok := timeCode(0, m[1], m[2], m[3])
		if !ok {
			return st, syntaxError(ln)
		}
		st.track.Pregap = &tc
		return st, nil
	}

	if _, ok := ignoredCommands[keyword]; ok {
		return st, nil
	}
	return st, syntaxError(ln)
}

func (s *sheet) fileLine(st parserState, ln sheetLine) (parserState, error) {
	m := filePattern.FindStringSubmatchIndex(ln.upper)
	if m == nil {
		return st, syntaxError(ln)
	}
	name := ln.raw[m[2]:m[3]]
	fileType := FileType(ln.upper[m[4]:m[5]])
	if _, ok := fileTypes[fileType]; !ok {
		return st, newError(KindUnsupported, "file type %q", fileType)
	}
	switch st.mode {
	case stateTrackOpen:
		if err := st.track.validate(); err != nil {
			return st, err
		}
	case stateFilePending:
		return st, newError(KindOrder, "FILE %q is not followed by a TRACK", st.pendingFile)
	}
	return parserState{mode: stateFilePending, pendingFile: name}, nil
}

func (s *sheet) trackLine(st parserState, ln sheetLine) (parserState, error) {
	m := trackPattern.FindStringSubmatch(ln.upper)
	if m == nil {
		return st, syntaxError(ln)
	}
	if st.mode != stateFilePending && len(s.tracks) == 0 {
		return st, newError(KindOrder, "TRACK before any FILE")
	}
	if st.mode == stateTrackOpen {
		if err := st.track.validate(); err != nil {
			return st, err
		}
	}
	trackType, ok := ParseTrackType(m[2])
	if !ok {
		return st, newError(KindUnsupported, "track type %q", m[2])
	}
	number, _ := strconv.Atoi(m[1])
	if number < 1 {
		return st, syntaxError(ln)
	}
	for _, existing := range s.tracks {
		if existing.Number == number {
			return st, newError(KindOrder, "duplicate track %02d", number)
		}
	}

	track := &Track{Number: number, Type: trackType}
	if st.mode == stateFilePending {
		track.Source = Owned(st.pendingFile)
	}
	s.tracks = append(s.tracks, track)
	return parserState{mode: stateTrackOpen, track: track}, nil
}

func (s *sheet) indexLine(st parserState, ln sheetLine) (parserState, error) {
	m := indexPattern.FindStringSubmatch(ln.upper)
	if m == nil {
		return st, syntaxError(ln)
	}
	if st.mode != stateTrackOpen {
		return st, newError(KindOrder, "INDEX before any TRACK")
	}
	number, _ := strconv.Atoi(m[1])
	if _, exists := st.track.Index(number); exists {
		return st, newError(KindOrder, "duplicate INDEX %02d in track %02d", number, st.track.Number)
	}
	tc, ok := timeCode(number, m[2], m[3], m[4])
	if !ok {
		return st, syntaxError(ln)
	}
	st.track.Indexes = append(st.track.Indexes, tc)
	return st, nil
}

func quotedArg(pattern *regexp.Regexp, ln sheetLine) (string, error) {
	m := pattern.FindStringSubmatchIndex(ln.upper)
	if m == nil {
		return "", syntaxError(ln)
	}
	return ln.raw[m[2]:m[3]], nil
}

// timeCode builds a time code from validated digit groups; seconds and frames
// must stay inside their ranges.
func timeCode(index int, mm, ss, ff string) (TimeCode, bool) {
	minutes, _ := strconv.Atoi(mm)
	seconds, _ := strconv.Atoi(ss)
	frames, _ := strconv.Atoi(ff)
	if seconds >= SecPerMin || frames >= CDFramesPerSec {
		return TimeCode{}, false
	}
	return TimeCode{Index: index, Minutes: minutes, Seconds: seconds, Frames: frames}, true
}

func syntaxError(ln sheetLine) *Error {
	return &Error{Kind: KindSyntax, Line: ln.number, Text: ln.raw}
}

func attachLine(err error, ln sheetLine) error {
	if ce, ok := err.(*Error); ok && ce.Line == 0 {
		ce.Line = ln.number
	}
	return err
}

func asciiUpper(s string) string {
	b := []byte(s)
	for i, c := range b {
		if c >= 'a' && c <= 'z' {
			b[i] = c - ('a' - 'A')
		}
	}
	return string(b)
}
