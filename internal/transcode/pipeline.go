package transcode

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"rscapture/internal/deps"
	"rscapture/internal/logging"
)

var (
	// ErrSourceMissing is returned when the intermediate file to encode
	// does not exist.
	ErrSourceMissing = errors.New("transcode source missing")
	// ErrToolNotFound is returned when the encoder binary cannot be
	// resolved on PATH.
	ErrToolNotFound = errors.New("encoder binary not found")
)

// ToolError reports a failed encode run together with the encoder's
// combined output, which is the only useful diagnostic ffmpeg provides.
type ToolError struct {
	Source string
	Output string
	Err    error
}

func (e *ToolError) Error() string {
	if e.Output == "" {
		return fmt.Sprintf("transcode %s failed: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("transcode %s failed: %v\n%s", e.Source, e.Err, e.Output)
}

func (e *ToolError) Unwrap() error { return e.Err }

// Runner executes the encoder to completion and returns its combined
// output. Abstracted so tests can substitute stand-in processes.
type Runner interface {
	Run(ctx context.Context, binary string, args []string) (string, error)
}

// Options configures a transcode pipeline.
type Options struct {
	// Binary is the encoder executable. Defaults to "ffmpeg".
	Binary string
	// Preset is the x264 speed/efficiency preset. Defaults to "medium".
	Preset string
}

func (o *Options) normalize() {
	if o.Binary == "" {
		o.Binary = "ffmpeg"
	}
	if o.Preset == "" {
		o.Preset = "medium"
	}
}

// Option configures the pipeline beyond Options.
type Option func(*Pipeline)

// WithRunner injects a custom encoder runner (primarily for tests).
func WithRunner(runner Runner) Option {
	return func(p *Pipeline) {
		if runner != nil {
			p.runner = runner
		}
	}
}

// Pipeline turns the lossless capture intermediate into the final
// size-reduced recording. Encode runs the external encoder to completion;
// callers wanting a responsive surface run it from their own goroutine.
type Pipeline struct {
	opts   Options
	runner Runner
	logger *slog.Logger
}

// NewPipeline constructs a transcode pipeline.
func NewPipeline(opts Options, logger *slog.Logger, extra ...Option) *Pipeline {
	opts.normalize()
	p := &Pipeline{
		opts:   opts,
		runner: commandRunner{},
		logger: logging.WithComponent(logger, "transcode"),
	}
	for _, opt := range extra {
		opt(p)
	}
	return p
}

// Encode re-encodes source into dest at the requested quality, blocking
// until the encoder exits. Preconditions are checked in a fixed order so
// an unknown quality is rejected before the filesystem or PATH is
// consulted, and no partial work happens on any precondition failure.
func (p *Pipeline) Encode(ctx context.Context, source, dest string, quality Quality) error {
	if !quality.Valid() {
		return fmt.Errorf("%w: %d", ErrInvalidQuality, int(quality))
	}
	if _, err := os.Stat(source); err != nil {
		return fmt.Errorf("%w: %s", ErrSourceMissing, source)
	}
	if _, ok := deps.LookupBinary(p.opts.Binary); !ok {
		return fmt.Errorf("%w: %q", ErrToolNotFound, p.opts.Binary)
	}

	args := encodeArgs(source, dest, quality.CRF(), p.opts.Preset)
	p.logger.Info("transcode started",
		logging.String(logging.FieldPath, source),
		logging.String(logging.FieldQuality, quality.String()),
		logging.Int("crf", quality.CRF()),
	)
	started := time.Now()

	output, err := p.runner.Run(ctx, p.opts.Binary, args)
	if err != nil {
		return &ToolError{Source: source, Output: tail(output, 30), Err: err}
	}

	p.logger.Info("transcode finished",
		logging.String(logging.FieldPath, dest),
		logging.Duration("elapsed", time.Since(started)),
	)
	return nil
}

// DeleteIntermediate removes the capture intermediate after a successful
// encode. Best effort: a failure is logged and swallowed since the final
// recording already exists.
func (p *Pipeline) DeleteIntermediate(path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			p.logger.Warn("failed to remove intermediate",
				logging.String(logging.FieldPath, path),
				logging.Error(err),
			)
		}
		return
	}
	p.logger.Debug("intermediate removed", logging.String(logging.FieldPath, path))
}

// encodeArgs builds the re-encode invocation. Audio is copied untouched;
// only the video stream is re-encoded at the quality's CRF.
func encodeArgs(source, dest string, crf int, preset string) []string {
	return []string{
		"-i", source,
		"-c:v", "libx264",
		"-crf", strconv.Itoa(crf),
		"-preset", preset,
		"-c:a", "copy",
		"-y",
		dest,
	}
}

// tail keeps the last n lines of encoder output for diagnostics.
func tail(output string, n int) string {
	output = strings.TrimSpace(output)
	lines := strings.Split(output, "\n")
	if len(lines) <= n {
		return output
	}
	return strings.Join(lines[len(lines)-n:], "\n")
}
