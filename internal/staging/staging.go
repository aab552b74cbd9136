// Package staging owns the scratch directory capture intermediates are
// written to before they are encoded into the output directory.
package staging

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"

	"rscapture/internal/logging"
)

// ErrNotConfigured is returned when the workspace root is blank.
var ErrNotConfigured = errors.New("staging directory not configured")

// Workspace hands out unique intermediate paths under a single staging
// root and cleans its own leavings up wholesale.
type Workspace struct {
	root   string
	logger *slog.Logger
}

// NewWorkspace builds a workspace rooted at dir. The directory is created
// lazily by NewIntermediate.
func NewWorkspace(dir string, logger *slog.Logger) *Workspace {
	return &Workspace{
		root:   strings.TrimSpace(dir),
		logger: logging.WithComponent(logger, "staging"),
	}
}

// Root returns the staging directory.
func (w *Workspace) Root() string {
	return w.root
}

// NewIntermediate reserves a fresh path for a capture intermediate. Names
// combine a wall-clock stamp for humans poking around the staging dir
// with a short random suffix so two recordings in the same second never
// collide. The file itself is created by the capture process.
func (w *Workspace) NewIntermediate() (string, error) {
	if w.root == "" {
		return "", ErrNotConfigured
	}
	if err := os.MkdirAll(w.root, 0o755); err != nil {
		return "", fmt.Errorf("create staging dir: %w", err)
	}
	stamp := time.Now().Format("20060102-150405")
	suffix := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return filepath.Join(w.root, fmt.Sprintf("recording-%s-%s.mkv", stamp, suffix)), nil
}

// Cleanup removes every intermediate left under the staging root. A
// missing root is fine; individual removal failures are logged and the
// sweep keeps going.
func (w *Workspace) Cleanup() error {
	if w.root == "" {
		return ErrNotConfigured
	}
	entries, err := os.ReadDir(w.root)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("read staging dir: %w", err)
	}

	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasPrefix(entry.Name(), "recording-") {
			continue
		}
		path := filepath.Join(w.root, entry.Name())
		if err := os.Remove(path); err != nil {
			w.logger.Warn("failed to remove staged file",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
			continue
		}
		removed++
	}
	if removed > 0 {
		w.logger.Debug("staging swept", logging.Int("removed", removed))
	}
	return nil
}
