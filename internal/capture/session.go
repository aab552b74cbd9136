package capture

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"rscapture/internal/deps"
	"rscapture/internal/logging"
	"rscapture/internal/selection"
)

var (
	// ErrAlreadyRunning is returned when Start is called while a recording
	// is in flight. The running session is left untouched.
	ErrAlreadyRunning = errors.New("capture already running")
	// ErrToolNotFound is returned when the encoder binary cannot be
	// resolved on PATH. Checked before any spawn attempt.
	ErrToolNotFound = errors.New("encoder binary not found")
	// ErrSpawnFailed is returned when the OS rejects the spawn. The
	// session stays idle.
	ErrSpawnFailed = errors.New("capture spawn failed")
	// ErrEmptyRegion is returned for a region without positive area.
	ErrEmptyRegion = errors.New("capture region has no area")
)

// State identifies the session lifecycle position.
type State int

const (
	StateIdle State = iota
	StateRunning
	StateStopping
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	default:
		return "unknown"
	}
}

// Options configures a capture session.
type Options struct {
	// Binary is the encoder executable. Defaults to "ffmpeg".
	Binary string
	// Display is the X11 display the grab reads from, e.g. ":0.0".
	Display string
	// Framerate for the grab. Defaults to 30.
	Framerate int
	// StopTimeout bounds the graceful-termination wait before the session
	// escalates to a forced kill. Defaults to 5 seconds.
	StopTimeout time.Duration
}

func (o *Options) normalize() {
	if o.Binary == "" {
		o.Binary = "ffmpeg"
	}
	if o.Display == "" {
		o.Display = ":0.0"
	}
	if o.Framerate <= 0 {
		o.Framerate = 30
	}
	if o.StopTimeout <= 0 {
		o.StopTimeout = 5 * time.Second
	}
}

// Option configures the session beyond Options.
type Option func(*Session)

// WithLauncher injects a custom process launcher (primarily for tests).
func WithLauncher(launcher Launcher) Option {
	return func(s *Session) {
		if launcher != nil {
			s.launcher = launcher
		}
	}
}

// Session owns the external capture process for the duration of one
// recording. It is Idle until Start spawns the encoder, Running while the
// grab is in flight, and returns to Idle after Stop. At most one recording
// runs per session; the process handle never leaves the session.
type Session struct {
	mu       sync.Mutex
	opts     Options
	launcher Launcher
	logger   *slog.Logger

	state     State
	proc      Process
	tempPath  string
	region    selection.Rect
	startedAt time.Time
}

// NewSession constructs an idle capture session.
func NewSession(opts Options, logger *slog.Logger, extra ...Option) *Session {
	opts.normalize()
	s := &Session{
		opts:     opts,
		launcher: commandLauncher{},
		logger:   logging.WithComponent(logger, "capture"),
	}
	for _, opt := range extra {
		opt(s)
	}
	return s
}

// Start spawns the external grab process non-blockingly, writing a
// lossless-class intermediate to outputPath. Quality selection happens
// later in the transcode step, so the grab always runs at the fastest
// preset with QP 0.
func (s *Session) Start(region selection.Rect, outputPath string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateIdle {
		s.logger.Warn("start ignored, capture already running", logging.String(logging.FieldPath, s.tempPath))
		return ErrAlreadyRunning
	}

	region = region.Normalize()
	if region.Empty() {
		return fmt.Errorf("%w: %s", ErrEmptyRegion, region)
	}
	if _, ok := deps.LookupBinary(s.opts.Binary); !ok {
		return fmt.Errorf("%w: %q", ErrToolNotFound, s.opts.Binary)
	}

	args := grabArgs(s.opts.Display, s.opts.Framerate, region, outputPath)
	proc, err := s.launcher.Launch(s.opts.Binary, args)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrSpawnFailed, err)
	}

	s.proc = proc
	s.tempPath = outputPath
	s.region = region
	s.startedAt = time.Now()
	s.state = StateRunning
	s.logger.Info("capture started",
		logging.String("region", region.String()),
		logging.String(logging.FieldPath, outputPath),
	)
	return nil
}

// Stop requests graceful termination and waits up to the configured
// timeout for the encoder to finalize the container. If the process is
// still alive after the timeout it is killed and waited on
// unconditionally; the resulting file may be truncated, which is the
// caller's concern, not an error. The stored temp path is always returned
// for a running session so the caller can attempt playback.
//
// Stopping an idle session returns ok=false and does nothing.
func (s *Session) Stop() (path string, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		s.logger.Debug("stop ignored, no active capture")
		return "", false
	}
	s.state = StateStopping

	if err := s.proc.Terminate(); err != nil {
		// Process already gone; the wait below returns immediately.
		s.logger.Debug("terminate failed", logging.Error(err))
	}

	select {
	case <-s.proc.Done():
		s.logger.Info("capture stopped", logging.Duration("elapsed", time.Since(s.startedAt)))
	case <-time.After(s.opts.StopTimeout):
		s.logger.Warn("capture did not exit in time, killing",
			logging.Duration("timeout", s.opts.StopTimeout),
		)
		if err := s.proc.Kill(); err != nil {
			s.logger.Debug("kill failed", logging.Error(err))
		}
		<-s.proc.Done()
	}

	path = s.tempPath
	s.proc = nil
	s.tempPath = ""
	s.region = selection.Rect{}
	s.state = StateIdle
	return path, true
}

// IsActive reports whether a recording is running and the process has not
// exited on its own. The session runs no watchdog; callers poll this to
// notice an unexpected encoder death.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return false
	}
	select {
	case <-s.proc.Done():
		return false
	default:
		return true
	}
}

// Elapsed returns how long the current recording has been running, or zero
// when idle.
func (s *Session) Elapsed() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return 0
	}
	return time.Since(s.startedAt)
}

// Region returns the normalized region of the recording in flight.
func (s *Session) Region() (selection.Rect, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state != StateRunning {
		return selection.Rect{}, false
	}
	return s.region, true
}
