package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"rscapture/internal/history"
)

func newHistoryCommand(ctx *commandContext) *cobra.Command {
	var limitFlag int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "List past recordings",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := ctx.openStore()
			if err != nil {
				return fmt.Errorf("open history: %w", err)
			}
			defer func() { _ = store.Close() }()

			recordings, err := store.List(cmd.Context(), limitFlag)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(recordings) == 0 {
				fmt.Fprintln(out, "No recordings yet.")
				return nil
			}

			headers := []string{"ID", "Created", "Region", "Quality", "Status", "Output"}
			rows := make([][]string, 0, len(recordings))
			for _, rec := range recordings {
				rows = append(rows, []string{
					strconv.FormatInt(rec.ID, 10),
					rec.CreatedAt.Local().Format("2006-01-02 15:04"),
					rec.Region.String(),
					rec.Quality,
					string(rec.Status),
					outputColumn(rec),
				})
			}
			aligns := []columnAlignment{alignRight, alignLeft, alignLeft, alignLeft, alignLeft, alignLeft}
			fmt.Fprintln(out, renderTable(headers, rows, aligns))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limitFlag, "limit", "n", 20, "Maximum rows to show (0 for all)")

	return cmd
}

func outputColumn(rec *history.Recording) string {
	if rec.FinalPath != "" {
		return rec.FinalPath
	}
	if rec.Status == history.StatusRecording || rec.Status == history.StatusEncoding {
		return rec.IntermediatePath
	}
	return ""
}
