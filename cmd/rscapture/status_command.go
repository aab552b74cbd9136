package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"rscapture/internal/history"
	"rscapture/internal/preflight"
)

func newStatusCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show environment readiness and the most recent recording",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			colorize := shouldColorize(out)

			printSection(out, "Environment", colorize)
			failures := 0
			for _, result := range preflight.Run(cfg) {
				kind := statusOK
				if !result.Passed {
					kind = statusError
					failures++
				}
				fmt.Fprintln(out, renderStatusLine(result.Name, kind, result.Detail, colorize))
			}

			printSection(out, "Paths", colorize)
			fmt.Fprintln(out, renderStatusLine("Staging", statusInfo, cfg.Paths.StagingDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Output", statusInfo, cfg.Paths.OutputDir, colorize))
			fmt.Fprintln(out, renderStatusLine("Logs", statusInfo, cfg.Paths.LogDir, colorize))

			printSection(out, "Last recording", colorize)
			if err := printLastRecording(cmd, ctx, out, colorize); err != nil {
				return err
			}

			if failures > 0 {
				return fmt.Errorf("%d environment check(s) failed", failures)
			}
			return nil
		},
	}
}

func printSection(out io.Writer, title string, colorize bool) {
	for _, line := range renderSectionHeader(title, colorize) {
		fmt.Fprintln(out, line)
	}
}

func printLastRecording(cmd *cobra.Command, ctx *commandContext, out io.Writer, colorize bool) error {
	store, err := ctx.openStore()
	if err != nil {
		return fmt.Errorf("open history: %w", err)
	}
	defer func() { _ = store.Close() }()

	recordings, err := store.List(cmd.Context(), 1)
	if err != nil {
		return err
	}
	if len(recordings) == 0 {
		fmt.Fprintln(out, renderStatusLine("Recording", statusInfo, "none yet", colorize))
		return nil
	}

	rec := recordings[0]
	kind := statusInfo
	detail := rec.Region.String()
	switch rec.Status {
	case history.StatusCompleted:
		kind = statusOK
		detail = rec.FinalPath
	case history.StatusFailed:
		kind = statusError
		detail = rec.ErrorMessage
	case history.StatusDiscarded:
		kind = statusWarn
	}
	fmt.Fprintln(out, renderStatusLine(string(rec.Status), kind, detail, colorize))
	fmt.Fprintln(out, renderStatusLine("When", statusInfo, rec.CreatedAt.Local().Format("2006-01-02 15:04:05"), colorize))
	return nil
}
