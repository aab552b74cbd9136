package staging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rscapture/internal/logging"
)

// CleanStaleResult contains the outcome of a stale intermediate sweep.
type CleanStaleResult struct {
	Removed []string
	Errors  []CleanupError
}

// CleanupError pairs a file path with its removal error.
type CleanupError struct {
	Path  string
	Error error
}

// CleanStale removes staged intermediates older than maxAge. Intermediates
// normally vanish when a recording is saved or discarded; anything old
// enough to trip this sweep was left behind by a crashed run.
func CleanStale(stagingDir string, maxAge time.Duration, logger *slog.Logger) CleanStaleResult {
	result := CleanStaleResult{}

	stagingDir = strings.TrimSpace(stagingDir)
	if stagingDir == "" {
		return result
	}

	entries, err := os.ReadDir(stagingDir)
	if err != nil {
		if !os.IsNotExist(err) {
			result.Errors = append(result.Errors, CleanupError{Path: stagingDir, Error: err})
		}
		return result
	}

	cutoff := time.Now().Add(-maxAge)

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "recording-") {
			continue
		}

		path := filepath.Join(stagingDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		if err := os.Remove(path); err != nil {
			result.Errors = append(result.Errors, CleanupError{Path: path, Error: err})
			if logger != nil {
				logger.Warn("failed to remove stale intermediate",
					logging.String(logging.FieldPath, path),
					logging.Error(err),
				)
			}
			continue
		}
		result.Removed = append(result.Removed, path)
		if logger != nil {
			logger.Info("removed stale intermediate",
				logging.String(logging.FieldPath, path),
				logging.Duration("age", time.Since(info.ModTime())),
			)
		}
	}

	return result
}
