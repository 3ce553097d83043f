package encoding

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/john32b/cbae/internal/config"
	"github.com/john32b/cbae/internal/cue"
	"github.com/john32b/cbae/internal/fileutil"
	"github.com/john32b/cbae/internal/logging"
	"github.com/john32b/cbae/internal/queue"
	"github.com/john32b/cbae/internal/services"
	"github.com/john32b/cbae/internal/services/ffmpeg"
	"github.com/john32b/cbae/internal/workpool"
)

const stageName = "encoding"

// Encoder converts sheets using the configured codec and worker count.
type Encoder struct {
	cfg        *config.Config
	store      *queue.Store
	logger     *slog.Logger
	client     ffmpeg.Client
	codec      ffmpeg.Codec
	sessionID  string
	onProgress func(Progress)
}

// Option configures an Encoder.
type Option func(*Encoder)

// WithClient replaces the ffmpeg client used for audio tracks.
func WithClient(client ffmpeg.Client) Option {
	return func(e *Encoder) {
		e.client = client
	}
}

// WithStore records every conversion in store.
func WithStore(store *queue.Store) Option {
	return func(e *Encoder) {
		e.store = store
	}
}

// WithSessionID tags history rows with the invocation that produced them.
func WithSessionID(id string) Option {
	return func(e *Encoder) {
		e.sessionID = id
	}
}

// WithProgress registers a callback invoked after every finished track.
// Calls are serialized.
func WithProgress(fn func(Progress)) Option {
	return func(e *Encoder) {
		e.onProgress = fn
	}
}

// Result describes a finished conversion.
type Result struct {
	Item      *queue.Item
	Disc      *cue.Disc
	OutputDir string
	SheetPath string
	Tracks    []queue.TrackResult
	Elapsed   time.Duration
}

// NewEncoder builds an Encoder for cfg. Unless overridden, audio tracks are
// encoded by the ffmpeg CLI named in the config.
func NewEncoder(cfg *config.Config, logger *slog.Logger, opts ...Option) (*Encoder, error) {
	if cfg == nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "init", "config is required", nil)
	}
	codec, ok := ffmpeg.LookupCodec(cfg.Encoder.Codec)
	if !ok {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "init", fmt.Sprintf("unsupported codec %q", cfg.Encoder.Codec), nil)
	}
	e := &Encoder{
		cfg:    cfg,
		logger: logging.NewComponentLogger(logger, stageName),
		codec:  codec,
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.client == nil {
		cli, err := ffmpeg.NewCLI(codec.Name,
			ffmpeg.WithBinary(cfg.FFmpegBinary()),
			ffmpeg.WithQuality(cfg.Encoder.Quality),
		)
		if err != nil {
			return nil, err
		}
		e.client = cli
	}
	return e, nil
}

// Convert turns the sheet at sheetPath into one file per track plus a new
// sheet. The outcome is recorded in the history store when one is attached.
func (e *Encoder) Convert(ctx context.Context, sheetPath string) (*Result, error) {
	abs, err := filepath.Abs(sheetPath)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "resolve sheet", sheetPath, err)
	}
	ctx = services.WithSheet(ctx, abs)

	item := e.startItem(ctx, abs)
	if item != nil {
		ctx = services.WithItemID(ctx, item.ID)
	}
	logger := logging.WithContext(ctx, e.logger)

	started := time.Now()
	result, err := e.convert(ctx, abs, item, logger)
	if result != nil {
		result.Item = item
		result.Elapsed = time.Since(started)
	}
	e.finishItem(ctx, item, result, err, logger)
	if err != nil {
		return nil, err
	}
	logger.Info("conversion complete",
		logging.String("output_dir", result.OutputDir),
		logging.Int("tracks", len(result.Tracks)),
		logging.Duration("elapsed", result.Elapsed),
		logging.String(logging.FieldEventType, "conversion_complete"),
	)
	return result, nil
}

// ConvertAll converts every sheet in order. A failing sheet is logged and
// skipped; the joined errors of all failures are returned with the results of
// the sheets that succeeded. Cancellation stops the batch.
func (e *Encoder) ConvertAll(ctx context.Context, sheets []string) ([]*Result, error) {
	results := make([]*Result, 0, len(sheets))
	var errs []error
	for _, sheet := range sheets {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		res, err := e.Convert(ctx, sheet)
		if err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", sheet, err))
			continue
		}
		results = append(results, res)
	}
	return results, errors.Join(errs...)
}

func (e *Encoder) convert(ctx context.Context, sheetPath string, item *queue.Item, logger *slog.Logger) (*Result, error) {
	disc, err := cue.LoadFile(sheetPath)
	if err != nil {
		return nil, services.WrapSheet(stageName, sheetPath, err)
	}
	names, err := cue.TrackNames(disc, e.cfg.Workflow.NameTemplate)
	if err != nil {
		return nil, services.Wrap(services.ErrValidation, stageName, "name tracks", e.cfg.Workflow.NameTemplate, err)
	}
	if disc.AudioTrackCount() > 0 && e.client == nil {
		return nil, services.Wrap(services.ErrConfiguration, stageName, "encode audio", "no audio encoder configured", nil)
	}

	outDir := filepath.Join(e.cfg.OutputRoot(disc.BaseDir), disc.SafeTitle)
	plan := planConversion(disc, names, outDir, e.codec.Extension)

	if item != nil {
		item.DiscTitle = disc.Title
		item.Codec = e.codec.Name
		item.OutputDir = outDir
		item.TrackCount = len(disc.Tracks)
		item.TotalBytes = disc.TotalSize
		item.Status = queue.StatusConverting
		if e.store != nil {
			if err := e.store.Update(ctx, item); err != nil {
				logger.Warn("failed to persist conversion plan", logging.Error(err))
			}
		}
	}

	unlock, err := lockOutputDir(outDir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := checkExisting(plan, e.cfg.Workflow.Overwrite); err != nil {
		return nil, err
	}

	logger.Info("converting disc",
		logging.String("title", disc.Title),
		logging.Int("tracks", len(plan.jobs)),
		logging.Int("audio_tracks", disc.AudioTrackCount()),
		logging.String("codec", e.codec.Name),
		logging.Int("workers", e.cfg.Workflow.Workers),
		logging.String("output_dir", outDir),
	)

	tracks, err := e.runJobs(ctx, disc, plan, logger)
	if err != nil {
		removeOutputs(plan, logger)
		return nil, err
	}
	if err := validateOutputs(plan, e.codec.Name); err != nil {
		removeOutputs(plan, logger)
		return nil, err
	}

	lines := cue.BuildSheet(disc, names, e.codec.Extension)
	if err := fileutil.WriteFileAtomic(plan.sheet, 0o644, func(w io.Writer) error {
		return cue.WriteSheet(w, lines)
	}); err != nil {
		removeOutputs(plan, logger)
		return nil, services.Wrap(services.ErrTransient, stageName, "write sheet", plan.sheet, err)
	}

	return &Result{
		Disc:      disc,
		OutputDir: outDir,
		SheetPath: plan.sheet,
		Tracks:    tracks,
	}, nil
}

func (e *Encoder) runJobs(ctx context.Context, disc *cue.Disc, plan conversionPlan, logger *slog.Logger) ([]queue.TrackResult, error) {
	results := make([]queue.TrackResult, len(plan.jobs))
	tasks := make([]workpool.Task, len(plan.jobs))
	byName := make(map[string]trackJob, len(plan.jobs))
	for i, job := range plan.jobs {
		byName[job.label()] = job
		tasks[i] = workpool.Task{
			Name: job.label(),
			Run: func(ctx context.Context) error {
				res, err := e.runJob(ctx, job, logger)
				if err != nil {
					return err
				}
				results[i] = res
				return nil
			},
		}
	}

	tracker := newProgressTracker(disc, plan, logger, e.onProgress)
	err := workpool.Run(ctx, e.cfg.Workflow.Workers, len(tasks), workpool.Slice(tasks), func(p workpool.Progress) {
		tracker.finished(byName[p.Last], p)
	})
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, services.Wrap(services.ErrTransient, stageName, "convert tracks", "interrupted", ctxErr)
		}
		return nil, err
	}
	return results, nil
}

func (e *Encoder) startItem(ctx context.Context, sheetPath string) *queue.Item {
	if e.store == nil {
		return nil
	}
	item, err := e.store.NewItem(ctx, sheetPath, e.sessionID)
	if err != nil {
		logging.WarnWithContext(e.logger, "failed to record conversion", "history_insert_failed",
			logging.Sheet(sheetPath),
			logging.Error(err),
			logging.String(logging.FieldImpact, "conversion will not appear in history"),
		)
		return nil
	}
	return item
}

func (e *Encoder) finishItem(ctx context.Context, item *queue.Item, result *Result, convErr error, logger *slog.Logger) {
	if convErr != nil {
		logging.ErrorWithContext(logger, "conversion failed", "conversion_failed",
			logging.Error(convErr),
			logging.String(logging.FieldErrorHint, errorHint(convErr)),
		)
	}
	if item == nil || e.store == nil {
		return
	}
	// History writes must land even when the conversion was cancelled.
	ctx = context.WithoutCancel(ctx)
	if convErr != nil {
		item.Status = services.FailureStatus(convErr)
		item.ErrorMessage = convErr.Error()
		if err := e.store.SetStatus(ctx, item.ID, item.Status, item.ErrorMessage); err != nil {
			logger.Warn("failed to persist conversion outcome", logging.Error(err))
		}
		return
	}
	item.Status = queue.StatusCompleted
	item.ErrorMessage = ""
	if err := e.store.RecordTracks(ctx, item.ID, result.Tracks); err != nil {
		logger.Warn("failed to record track results", logging.Error(err))
	}
	if err := e.store.Update(ctx, item); err != nil {
		logger.Warn("failed to persist conversion outcome", logging.Error(err))
	}
}

func errorHint(err error) string {
	switch {
	case errors.Is(err, services.ErrNotFound):
		return "make sure every FILE named by the sheet sits next to it"
	case errors.Is(err, services.ErrValidation):
		return "fix the sheet or pass --overwrite if the output already exists"
	case errors.Is(err, services.ErrExternalTool):
		return "run 'cbae status' to verify the ffmpeg installation"
	case errors.Is(err, services.ErrConfiguration):
		return "run 'cbae config validate'"
	default:
		return "check logs for details"
	}
}
