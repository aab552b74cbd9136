package main

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"rscapture/internal/recorder"
	"rscapture/internal/selection"
	"rscapture/internal/transcode"
)

func newRecordCommand(ctx *commandContext) *cobra.Command {
	var fromFlag string
	var toFlag string
	var titleFlag string
	var qualityFlag string
	var durationFlag time.Duration
	var discardFlag bool

	cmd := &cobra.Command{
		Use:   "record",
		Short: "Record a screen region and encode the result",
		Long: `Record captures the rectangle spanned by --from and --to, in global
screen coordinates, until interrupted or until --duration elapses. The
corners may be given in any order. The capture is then encoded into the
output directory unless --discard is set.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			from, err := parsePoint(fromFlag)
			if err != nil {
				return fmt.Errorf("parse --from: %w", err)
			}
			to, err := parsePoint(toFlag)
			if err != nil {
				return fmt.Errorf("parse --to: %w", err)
			}

			qualityName := qualityFlag
			if strings.TrimSpace(qualityName) == "" {
				qualityName = cfg.Encode.DefaultQuality
			}
			quality, err := transcode.ParseQuality(qualityName)
			if err != nil {
				return err
			}

			logger := ctx.loggerValue()
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			rec, err := recorder.Open(cfg, store, logger)
			if err != nil {
				return err
			}
			defer func() { _ = rec.Close() }()

			// Drive the selection gesture from the supplied corners so the
			// emitted region is normalized the same way a pointer drag is.
			var region selection.Rect
			selected := false
			sel := selection.New(nil, func(r selection.Rect) {
				region = r
				selected = true
			}, logger)
			sel.Arm()
			sel.PointerDown(from)
			sel.PointerUp(to)
			if !selected {
				return fmt.Errorf("selection from %s to %s has no area",
					fromFlag, toFlag)
			}

			signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			if err := rec.StartRecording(signalCtx, region); err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if durationFlag > 0 {
				fmt.Fprintf(out, "Recording %s for %s (Ctrl-C stops early)\n", region, durationFlag)
			} else {
				fmt.Fprintf(out, "Recording %s; press Ctrl-C to stop\n", region)
			}

			var deadline <-chan time.Time
			if durationFlag > 0 {
				timer := time.NewTimer(durationFlag)
				defer timer.Stop()
				deadline = timer.C
			}
			select {
			case <-signalCtx.Done():
			case <-deadline:
			}

			// The signal context is likely cancelled; bookkeeping continues
			// on a fresh one.
			finishCtx := context.Background()
			intermediate, ok := rec.StopRecording(finishCtx)
			if !ok {
				return errors.New("capture was not running")
			}
			fmt.Fprintf(out, "Captured %s\n", intermediate)

			if discardFlag {
				if err := rec.DiscardRecording(finishCtx); err != nil {
					return err
				}
				fmt.Fprintln(out, "Recording discarded")
				return nil
			}

			fmt.Fprintf(out, "Encoding at %s quality (CRF %d)\n", quality, quality.CRF())
			dest, err := rec.SaveRecording(finishCtx, titleFlag, quality)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "Saved %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVar(&fromFlag, "from", "", "First corner of the region as X,Y (required)")
	cmd.Flags().StringVar(&toFlag, "to", "", "Opposite corner of the region as X,Y (required)")
	cmd.Flags().StringVarP(&titleFlag, "title", "t", "", "Title used for the output file name")
	cmd.Flags().StringVarP(&qualityFlag, "quality", "q", "", "Encode quality: low, medium, or high")
	cmd.Flags().DurationVarP(&durationFlag, "duration", "d", 0, "Stop automatically after this long")
	cmd.Flags().BoolVar(&discardFlag, "discard", false, "Throw the capture away instead of encoding it")
	_ = cmd.MarkFlagRequired("from")
	_ = cmd.MarkFlagRequired("to")

	return cmd
}

// parsePoint parses "X,Y" into a screen point.
func parsePoint(value string) (selection.Point, error) {
	parts := strings.Split(strings.TrimSpace(value), ",")
	if len(parts) != 2 {
		return selection.Point{}, fmt.Errorf("expected X,Y, got %q", value)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return selection.Point{}, fmt.Errorf("invalid X coordinate %q", parts[0])
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return selection.Point{}, fmt.Errorf("invalid Y coordinate %q", parts[1])
	}
	return selection.Point{X: x, Y: y}, nil
}
