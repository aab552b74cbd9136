// Package recorder coordinates the recording workflow. It wires the
// staging workspace, capture session, transcode pipeline, and history
// store into a single lifecycle with flock-based locking so only one
// recorder drives a display at a time. Individual steps live in their own
// packages; the recorder focuses on sequencing and bookkeeping.
package recorder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/gofrs/flock"

	"rscapture/internal/capture"
	"rscapture/internal/config"
	"rscapture/internal/history"
	"rscapture/internal/logging"
	"rscapture/internal/naming"
	"rscapture/internal/selection"
	"rscapture/internal/staging"
	"rscapture/internal/transcode"
)

var (
	// ErrBusy is returned when another recorder instance holds the lock.
	ErrBusy = errors.New("another recorder instance is running")
	// ErrRecordingActive is returned when an operation needs the capture
	// stopped first.
	ErrRecordingActive = errors.New("recording still active")
	// ErrNothingPending is returned when save or discard is called with
	// no stopped capture waiting for a decision.
	ErrNothingPending = errors.New("no recording pending")
)

// pending is a stopped capture awaiting save or discard.
type pending struct {
	id        int64
	path      string
	region    selection.Rect
	startedAt time.Time
}

// Option adjusts recorder construction, primarily for tests.
type Option func(*options)

type options struct {
	binary         string
	captureExtra   []capture.Option
	transcodeExtra []transcode.Option
}

// WithEncoderBinary overrides the encoder executable.
func WithEncoderBinary(binary string) Option {
	return func(o *options) { o.binary = binary }
}

// WithCaptureOptions forwards options to the capture session.
func WithCaptureOptions(extra ...capture.Option) Option {
	return func(o *options) { o.captureExtra = append(o.captureExtra, extra...) }
}

// WithTranscodeOptions forwards options to the transcode pipeline.
func WithTranscodeOptions(extra ...transcode.Option) Option {
	return func(o *options) { o.transcodeExtra = append(o.transcodeExtra, extra...) }
}

// Recorder owns one display's recording workflow.
type Recorder struct {
	cfg       *config.Config
	logger    *slog.Logger
	session   *capture.Session
	pipeline  *transcode.Pipeline
	workspace *staging.Workspace
	store     *history.Store

	lockPath string
	lock     *flock.Flock

	mu      sync.Mutex
	pending *pending
	current *pending
}

// Open builds a recorder and takes the instance lock. The caller owns the
// history store; the recorder owns the staging workspace and sweeps it on
// Close.
func Open(cfg *config.Config, store *history.Store, logger *slog.Logger, opts ...Option) (*Recorder, error) {
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("ensure directories: %w", err)
	}

	var o options
	o.binary = cfg.FFmpegBinary()
	for _, opt := range opts {
		opt(&o)
	}

	lockPath := filepath.Join(cfg.Paths.LogDir, "rscapture.lock")
	lock := flock.New(lockPath)
	ok, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquire lock %s: %w", lockPath, err)
	}
	if !ok {
		return nil, fmt.Errorf("%w (lock %s)", ErrBusy, lockPath)
	}

	log := logging.WithComponent(logger, "recorder")
	r := &Recorder{
		cfg:    cfg,
		logger: log,
		session: capture.NewSession(capture.Options{
			Binary:      o.binary,
			Display:     cfg.Capture.Display,
			Framerate:   cfg.Capture.Framerate,
			StopTimeout: time.Duration(cfg.Capture.StopTimeoutSeconds) * time.Second,
		}, logger, o.captureExtra...),
		pipeline: transcode.NewPipeline(transcode.Options{
			Binary: o.binary,
			Preset: cfg.Encode.Preset,
		}, logger, o.transcodeExtra...),
		workspace: staging.NewWorkspace(cfg.Paths.StagingDir, logger),
		store:     store,
		lockPath:  lockPath,
		lock:      lock,
	}
	log.Debug("recorder lock acquired", logging.String(logging.FieldPath, lockPath))

	// A crashed run leaves intermediates behind; sweep anything old enough
	// that no live session can still own it.
	if result := staging.CleanStale(cfg.Paths.StagingDir, 24*time.Hour, logger); len(result.Removed) > 0 {
		log.Info("swept stale intermediates", logging.Int("removed", len(result.Removed)))
	}
	return r, nil
}

// Close releases the instance lock and sweeps leftover intermediates. A
// capture still running is stopped first.
func (r *Recorder) Close() error {
	r.mu.Lock()
	if r.current != nil {
		r.mu.Unlock()
		_, _ = r.StopRecording(context.Background())
		r.mu.Lock()
	}
	r.pending = nil
	r.mu.Unlock()

	if err := r.workspace.Cleanup(); err != nil {
		r.logger.Warn("staging cleanup failed", logging.Error(err))
	}
	if err := r.lock.Unlock(); err != nil {
		return fmt.Errorf("release lock %s: %w", r.lockPath, err)
	}
	return nil
}

// StartRecording begins capturing the region into a fresh staging
// intermediate and opens a history row for it. A pending unsaved capture
// is discarded first; starting while a capture runs fails.
func (r *Recorder) StartRecording(ctx context.Context, region selection.Rect) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return capture.ErrAlreadyRunning
	}
	if r.pending != nil {
		r.discardPendingLocked(ctx)
	}

	path, err := r.workspace.NewIntermediate()
	if err != nil {
		return fmt.Errorf("reserve intermediate: %w", err)
	}
	if err := r.session.Start(region, path); err != nil {
		return err
	}

	rec, err := r.store.NewRecording(ctx, region.Normalize(), path)
	if err != nil {
		// The capture is healthy; history is advisory.
		r.logger.Warn("failed to record history row", logging.Error(err))
		rec = &history.Recording{}
	}
	r.current = &pending{
		id:        rec.ID,
		path:      path,
		region:    region.Normalize(),
		startedAt: time.Now(),
	}
	return nil
}

// StopRecording ends the running capture. The intermediate is kept as the
// pending recording until the caller saves or discards it.
func (r *Recorder) StopRecording(ctx context.Context) (string, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current == nil {
		return "", false
	}
	path, ok := r.session.Stop()
	if !ok {
		path = r.current.path
	}
	r.pending = r.current
	r.pending.path = path
	r.current = nil
	return path, true
}

// SaveRecording encodes the pending intermediate into the output
// directory under a name derived from title, then deletes the
// intermediate. The history row follows each step.
func (r *Recorder) SaveRecording(ctx context.Context, title string, quality transcode.Quality) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return "", ErrRecordingActive
	}
	if r.pending == nil {
		return "", ErrNothingPending
	}
	p := r.pending

	if err := r.store.MarkEncoding(ctx, p.id, quality.String()); err != nil {
		r.logger.Warn("failed to update history row", logging.Error(err))
	}

	dest := naming.OutputPath(r.cfg.Paths.OutputDir, title, p.startedAt)
	if err := r.pipeline.Encode(ctx, p.path, dest, quality); err != nil {
		if markErr := r.store.MarkFailed(ctx, p.id, err.Error()); markErr != nil {
			r.logger.Warn("failed to update history row", logging.Error(markErr))
		}
		return "", err
	}

	if err := r.store.MarkCompleted(ctx, p.id, dest); err != nil {
		r.logger.Warn("failed to update history row", logging.Error(err))
	}
	r.pipeline.DeleteIntermediate(p.path)
	r.pending = nil
	r.logger.Info("recording saved",
		logging.Int64(logging.FieldRecordingID, p.id),
		logging.String(logging.FieldPath, dest),
	)
	return dest, nil
}

// DiscardRecording throws the pending intermediate away.
func (r *Recorder) DiscardRecording(ctx context.Context) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.current != nil {
		return ErrRecordingActive
	}
	if r.pending == nil {
		return ErrNothingPending
	}
	r.discardPendingLocked(ctx)
	return nil
}

func (r *Recorder) discardPendingLocked(ctx context.Context) {
	p := r.pending
	if err := r.store.MarkDiscarded(ctx, p.id); err != nil {
		r.logger.Warn("failed to update history row", logging.Error(err))
	}
	r.pipeline.DeleteIntermediate(p.path)
	r.pending = nil
	r.logger.Info("recording discarded", logging.Int64(logging.FieldRecordingID, p.id))
}

// Status is a point-in-time snapshot for display surfaces.
type Status struct {
	Active      bool
	Elapsed     time.Duration
	Region      selection.Rect
	PendingPath string
}

// Status reports what the recorder is doing right now.
func (r *Recorder) Status() Status {
	r.mu.Lock()
	defer r.mu.Unlock()

	st := Status{
		Active:  r.session.IsActive(),
		Elapsed: r.session.Elapsed(),
	}
	if region, ok := r.session.Region(); ok {
		st.Region = region
	}
	if r.pending != nil {
		st.PendingPath = r.pending.path
	}
	return st
}
