// Package preflight runs fast local checks so the common failure modes
// (missing ffmpeg, unwritable directories, no display) surface before a
// recording is attempted.
package preflight

import (
	"fmt"
	"os"
	"strings"

	"golang.org/x/sys/unix"

	"rscapture/internal/config"
	"rscapture/internal/deps"
)

// Result describes the outcome of a single preflight check.
type Result struct {
	Name   string
	Passed bool
	Detail string
}

// Run evaluates every check for the given configuration.
func Run(cfg *config.Config) []Result {
	results := []Result{
		CheckEncoder(cfg.FFmpegBinary()),
		CheckDisplay(cfg.Capture.Display),
		CheckDirectoryAccess("Staging directory", cfg.Paths.StagingDir),
		CheckDirectoryAccess("Output directory", cfg.Paths.OutputDir),
	}
	return results
}

// CheckEncoder verifies the external encoder binary resolves on PATH.
func CheckEncoder(binary string) Result {
	const name = "FFmpeg"
	resolved, ok := deps.LookupBinary(binary)
	if !ok {
		return Result{Name: name, Detail: fmt.Sprintf("binary %q not found on PATH", binary)}
	}
	return Result{Name: name, Passed: true, Detail: resolved}
}

// CheckDisplay verifies a display source is configured for x11grab.
func CheckDisplay(display string) Result {
	const name = "Display"
	if strings.TrimSpace(display) == "" {
		return Result{Name: name, Detail: "no display configured and DISPLAY is unset"}
	}
	return Result{Name: name, Passed: true, Detail: display}
}

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
