package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"
)

const logDateLayout = "2006-01-02"

// logFileDate reads the day out of a daily log file name.
func logFileDate(name string) (time.Time, bool) {
	stamp, ok := strings.CutPrefix(name, "cbae-")
	if !ok {
		return time.Time{}, false
	}
	stamp, ok = strings.CutSuffix(stamp, ".log")
	if !ok {
		return time.Time{}, false
	}
	day, err := time.ParseInLocation(logDateLayout, stamp, time.Local)
	if err != nil {
		return time.Time{}, false
	}
	return day, true
}

// PruneDailyLogs removes daily log files in dir whose day is more than
// retentionDays before now. The file for now is always kept and names that
// do not carry a date are left alone. A retentionDays of 0 disables pruning.
// It returns the number of files removed.
func PruneDailyLogs(logger *slog.Logger, dir string, retentionDays int, now time.Time) int {
	dir = strings.TrimSpace(dir)
	if retentionDays <= 0 || dir == "" {
		return 0
	}
	matches, err := filepath.Glob(filepath.Join(dir, LogFilePattern))
	if err != nil {
		return 0
	}

	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.Local)
	cutoff := today.AddDate(0, 0, -retentionDays)
	active := filepath.Base(LogFilePath(dir, now))

	removed := 0
	for _, path := range matches {
		name := filepath.Base(path)
		if name == active {
			continue
		}
		day, ok := logFileDate(name)
		if !ok || !day.Before(cutoff) {
			continue
		}
		if err := os.Remove(path); err != nil {
			WarnWithContext(logger, "log retention remove failed; file remains", "log_retention_failed",
				String("path", path),
				Error(err),
				String(FieldErrorHint, "check permissions on paths.log_dir"),
				String(FieldImpact, "old log file remains on disk"),
			)
			continue
		}
		removed++
		if logger != nil {
			logger.Debug("log pruned",
				String("path", path),
				String("day", day.Format(logDateLayout)),
				String(FieldEventType, "log_pruned"),
			)
		}
	}
	return removed
}
