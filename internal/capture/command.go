package capture

import (
	"fmt"
	"strconv"

	"rscapture/internal/selection"
)

// grabArgs builds the x11grab invocation for one recording. The grab is
// lossless (QP 0) at the fastest preset so the live encode never drops
// frames; size reduction happens in the transcode step afterwards.
func grabArgs(display string, framerate int, region selection.Rect, outputPath string) []string {
	return []string{
		"-f", "x11grab",
		"-video_size", region.Label(),
		"-framerate", strconv.Itoa(framerate),
		"-i", fmt.Sprintf("%s+%d,%d", display, region.X, region.Y),
		"-c:v", "libx264",
		"-preset", "ultrafast",
		"-qp", "0",
		outputPath,
	}
}
