package encoding

import (
	"log/slog"
	"strconv"

	"github.com/john32b/cbae/internal/cue"
	"github.com/john32b/cbae/internal/logging"
	"github.com/john32b/cbae/internal/workpool"
)

// Progress reports a conversion after one more track finished.
type Progress struct {
	Sheet      string
	Disc       string
	Track      int
	Done       int
	Total      int
	BytesDone  int64
	BytesTotal int64
}

// Percent returns the share of source bytes processed so far.
func (p Progress) Percent() float64 {
	if p.BytesTotal <= 0 {
		if p.Total == 0 {
			return 100
		}
		return float64(p.Done) * 100 / float64(p.Total)
	}
	return float64(p.BytesDone) * 100 / float64(p.BytesTotal)
}

type progressTracker struct {
	base    Progress
	logger  *slog.Logger
	sampler *logging.ProgressSampler
	notify  func(Progress)
}

func newProgressTracker(disc *cue.Disc, plan conversionPlan, logger *slog.Logger, notify func(Progress)) *progressTracker {
	var total int64
	for _, job := range plan.jobs {
		total += job.Extent.ByteSize
	}
	return &progressTracker{
		base: Progress{
			Sheet:      disc.SheetPath,
			Disc:       disc.Title,
			Total:      len(plan.jobs),
			BytesTotal: total,
		},
		logger:  logger,
		sampler: logging.NewProgressSampler(25),
		notify:  notify,
	}
}

// finished is called serially by the worker pool.
func (t *progressTracker) finished(job trackJob, p workpool.Progress) {
	t.base.Track = job.Number
	t.base.Done = p.Done
	t.base.BytesDone += job.Extent.ByteSize

	if t.sampler.ShouldLog(t.base.Percent(), "tracks") {
		t.logger.Info("conversion progress",
			logging.Int("done", t.base.Done),
			logging.Int("total", t.base.Total),
			logging.String("percent", formatPercent(t.base.Percent())),
		)
	}
	if t.notify != nil {
		t.notify(t.base)
	}
}

func formatPercent(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64) + "%"
}
