package cue

import (
	"errors"
	"fmt"
	"strings"
)

// Kind classifies a load failure.
type Kind int

const (
	// KindSyntax marks a line that does not match its expected shape.
	KindSyntax Kind = iota + 1
	// KindOrder marks a command that is valid on its own but illegal where it appears.
	KindOrder
	// KindUnsupported marks a FILE or TRACK type outside the supported set.
	KindUnsupported
	// KindResource marks a referenced data file that cannot be found or read.
	KindResource
	// KindState marks misuse of a Disc, such as loading twice.
	KindState
	// KindLayout marks track extents that cannot be laid out inside their file.
	KindLayout
)

var (
	ErrSyntax      = errors.New("syntax error")
	ErrOrder       = errors.New("invalid command order")
	ErrUnsupported = errors.New("unsupported value")
	ErrResource    = errors.New("resource error")
	ErrState       = errors.New("invalid state")
	ErrLayout      = errors.New("invalid layout")
)

func (k Kind) sentinel() error {
	switch k {
	case KindSyntax:
		return ErrSyntax
	case KindOrder:
		return ErrOrder
	case KindUnsupported:
		return ErrUnsupported
	case KindResource:
		return ErrResource
	case KindState:
		return ErrState
	case KindLayout:
		return ErrLayout
	default:
		return nil
	}
}

func (k Kind) String() string {
	if s := k.sentinel(); s != nil {
		return s.Error()
	}
	return "unknown error"
}

// Error describes why a sheet could not be loaded. Line is the 1-based line
// number when the failure is tied to a line of the sheet, 0 otherwise.
type Error struct {
	Kind Kind
	Line int
	Text string
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	var b strings.Builder
	if e.Line > 0 {
		fmt.Fprintf(&b, "line %d: ", e.Line)
	}
	b.WriteString(e.Kind.String())
	if e.Msg != "" {
		b.WriteString(": ")
		b.WriteString(e.Msg)
	}
	if e.Text != "" {
		fmt.Fprintf(&b, " (%q)", e.Text)
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap exposes both the kind sentinel and the underlying cause.
func (e *Error) Unwrap() []error {
	errs := make([]error, 0, 2)
	if s := e.Kind.sentinel(); s != nil {
		errs = append(errs, s)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// KindOf returns the Kind carried by err, or 0 when err is not a *Error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}

func newError(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}
