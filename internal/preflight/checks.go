package preflight

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sys/unix"

	"github.com/john32b/cbae/internal/config"
	"github.com/john32b/cbae/internal/deps"
	"github.com/john32b/cbae/internal/services/ffmpeg"
)

const toolCheckTimeout = 10 * time.Second

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, unix.R_OK|unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (read/write ok)", path)}
}

// CheckCreatable passes when path is an accessible directory or could be
// created under its nearest existing ancestor.
func CheckCreatable(name, path string) Result {
	if _, err := os.Stat(path); err == nil {
		return CheckDirectoryAccess(name, path)
	}
	ancestor := filepath.Dir(filepath.Clean(path))
	for {
		info, err := os.Stat(ancestor)
		if err == nil {
			if !info.IsDir() {
				return Result{Name: name, Detail: fmt.Sprintf("%s (error: %s is not a directory)", path, ancestor)}
			}
			break
		}
		parent := filepath.Dir(ancestor)
		if parent == ancestor {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: no existing parent)", path)}
		}
		ancestor = parent
	}
	if err := unix.Access(ancestor, unix.W_OK|unix.X_OK); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: cannot create under %s: %v)", path, ancestor, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (will be created)", path)}
}

// CheckFFmpeg resolves the configured ffmpeg binary and reports its version.
func CheckFFmpeg(ctx context.Context, cfg *config.Config) Result {
	const name = "FFmpeg"

	status := deps.ResolveFFmpeg(cfg.FFmpegBinary())
	if !status.Available {
		return Result{Name: name, Detail: status.Detail}
	}
	cli, err := ffmpeg.NewCLI(cfg.Encoder.Codec, ffmpeg.WithBinary(status.Command))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, toolCheckTimeout)
	defer cancel()
	version, err := cli.Version(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeToolError(err)}
	}
	return Result{Name: name, Passed: true, Detail: version}
}

// CheckEncoder verifies that ffmpeg was built with the encoder the
// configured codec needs.
func CheckEncoder(ctx context.Context, cfg *config.Config) Result {
	name := fmt.Sprintf("Encoder (%s)", cfg.Encoder.Codec)

	status := deps.ResolveFFmpeg(cfg.FFmpegBinary())
	if !status.Available {
		return Result{Name: name, Detail: "ffmpeg unavailable"}
	}
	cli, err := ffmpeg.NewCLI(cfg.Encoder.Codec, ffmpeg.WithBinary(status.Command))
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}

	checkCtx, cancel := context.WithTimeout(ctx, toolCheckTimeout)
	defer cancel()
	encoders, err := cli.Encoders(checkCtx)
	if err != nil {
		return Result{Name: name, Detail: summarizeToolError(err)}
	}
	encoder := cli.Codec().Encoder
	if !encoders[encoder] {
		return Result{Name: name, Detail: fmt.Sprintf("ffmpeg lacks the %s encoder", encoder)}
	}
	return Result{Name: name, Passed: true, Detail: encoder}
}

func summarizeToolError(err error) string {
	if errors.Is(err, context.DeadlineExceeded) {
		return "check timed out (ffmpeg unresponsive)"
	}
	return err.Error()
}
