package encoding

import (
	"context"
	"io"
	"log/slog"

	"github.com/john32b/cbae/internal/fileutil"
	"github.com/john32b/cbae/internal/logging"
	"github.com/john32b/cbae/internal/queue"
	"github.com/john32b/cbae/internal/services"
)

func (e *Encoder) runJob(ctx context.Context, job trackJob, logger *slog.Logger) (queue.TrackResult, error) {
	ctx = services.WithTrack(ctx, job.Number)
	jobLogger := logger.With(logging.Track(job.Number))
	jobLogger.Debug("track started",
		logging.String("source", job.Extent.Path),
		logging.Int64("byte_start", job.Extent.ByteStart),
		logging.Int64("byte_size", job.Extent.ByteSize),
		logging.String("output", job.Output),
	)

	var (
		sums fileutil.Checksums
		err  error
	)
	if job.Extent.Audio {
		sums, err = e.encodeAudio(ctx, job)
	} else {
		sums, err = e.copyData(job)
	}
	if err != nil {
		return queue.TrackResult{}, err
	}
	if !e.cfg.Workflow.Checksums {
		sums = fileutil.Checksums{Size: sums.Size}
	}

	jobLogger.Debug("track finished", logging.String("crc32", sums.CRC32Hex()))
	return queue.TrackResult{
		Number:     job.Number,
		Name:       job.Name,
		Audio:      job.Extent.Audio,
		ByteStart:  job.Extent.ByteStart,
		ByteSize:   job.Extent.ByteSize,
		CRC32:      sums.CRC32,
		SHA1:       sums.SHA1,
		OutputPath: job.Output,
	}, nil
}

func (e *Encoder) copyData(job trackJob) (fileutil.Checksums, error) {
	sums, err := fileutil.CopyRange(job.Extent.Path, job.Extent.ByteStart, job.Extent.ByteSize, job.Output)
	if err != nil {
		return fileutil.Checksums{}, services.Wrap(services.ErrTransient, stageName, "copy data track", job.label(), err)
	}
	return sums, nil
}

func (e *Encoder) encodeAudio(ctx context.Context, job trackJob) (fileutil.Checksums, error) {
	src, err := fileutil.OpenRange(job.Extent.Path, job.Extent.ByteStart, job.Extent.ByteSize)
	if err != nil {
		return fileutil.Checksums{}, services.Wrap(services.ErrTransient, stageName, "open audio track", job.label(), err)
	}
	defer src.Close()

	hasher := fileutil.NewHasher()
	if err := e.client.Encode(ctx, io.TeeReader(src, hasher), job.Output); err != nil {
		return fileutil.Checksums{}, err
	}
	sums := hasher.Sum()
	if sums.Size != job.Extent.ByteSize {
		return fileutil.Checksums{}, services.Wrap(services.ErrExternalTool, stageName, "encode audio track", "encoder stopped reading before the end of "+job.label(), nil)
	}
	return sums, nil
}
