package main

import (
	"fmt"
	"io"
	"time"

	"github.com/schollz/progressbar/v3"

	"github.com/john32b/cbae/internal/encoding"
)

// progressReporter draws one byte-based bar per sheet on interactive
// terminals and prints a line per finished sheet otherwise.
type progressReporter struct {
	out         io.Writer
	interactive bool
	sheet       string
	bar         *progressbar.ProgressBar
}

func newProgressReporter(out io.Writer, interactive bool) *progressReporter {
	return &progressReporter{out: out, interactive: interactive}
}

func (r *progressReporter) update(p encoding.Progress) {
	if p.Sheet != r.sheet {
		r.finish()
		r.sheet = p.Sheet
		if r.interactive {
			r.bar = progressbar.NewOptions64(p.BytesTotal,
				progressbar.OptionSetWriter(r.out),
				progressbar.OptionSetDescription(p.Disc),
				progressbar.OptionShowBytes(true),
				progressbar.OptionSetWidth(30),
				progressbar.OptionThrottle(100*time.Millisecond),
				progressbar.OptionSetPredictTime(true),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(r.out) }),
			)
		}
	}
	if r.bar != nil {
		_ = r.bar.Set64(p.BytesDone)
		return
	}
	if p.Done == p.Total {
		fmt.Fprintf(r.out, "%s: %d/%d tracks converted\n", p.Disc, p.Done, p.Total)
	}
}

func (r *progressReporter) finish() {
	if r.bar != nil && !r.bar.IsFinished() {
		_ = r.bar.Finish()
	}
	r.bar = nil
	r.sheet = ""
}
