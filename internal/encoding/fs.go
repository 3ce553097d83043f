package encoding

import (
	"errors"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"

	"github.com/john32b/cbae/internal/logging"
	"github.com/john32b/cbae/internal/services"
)

const outputLockName = ".cbae.lock"

// lockOutputDir creates dir and takes an exclusive lock on it so two runs
// never write the same disc at once.
func lockOutputDir(dir string) (func(), error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, services.Wrap(services.ErrTransient, stageName, "create output dir", dir, err)
	}
	lockPath := filepath.Join(dir, outputLockName)
	lock := flock.New(lockPath)
	locked, err := lock.TryLock()
	if err != nil {
		return nil, services.Wrap(services.ErrTransient, stageName, "lock output dir", dir, err)
	}
	if !locked {
		return nil, services.Wrap(services.ErrTransient, stageName, "lock output dir", "another conversion is writing "+dir, nil)
	}
	// The lock file is left in place so every run locks the same inode.
	return func() { _ = lock.Unlock() }, nil
}

// removeOutputs deletes what a failed conversion produced.
func removeOutputs(plan conversionPlan, logger *slog.Logger) {
	for _, path := range plan.outputs() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			logger.Warn("failed to remove partial output", logging.String("path", path), logging.Error(err))
		}
	}
}
