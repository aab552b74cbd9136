package main

import (
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"rscapture/internal/config"
	"rscapture/internal/naming"
	"rscapture/internal/transcode"
)

func newEncodeCommand(ctx *commandContext) *cobra.Command {
	var titleFlag string
	var qualityFlag string
	var deleteSource bool

	cmd := &cobra.Command{
		Use:   "encode SOURCE [DEST]",
		Short: "Re-encode a capture into the output directory",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}

			qualityName := qualityFlag
			if strings.TrimSpace(qualityName) == "" {
				qualityName = cfg.Encode.DefaultQuality
			}
			quality, err := transcode.ParseQuality(qualityName)
			if err != nil {
				return err
			}

			source, err := config.ExpandPath(args[0])
			if err != nil {
				return fmt.Errorf("resolve source: %w", err)
			}

			var dest string
			if len(args) == 2 {
				dest, err = config.ExpandPath(args[1])
				if err != nil {
					return fmt.Errorf("resolve destination: %w", err)
				}
			} else {
				title := titleFlag
				if strings.TrimSpace(title) == "" {
					base := filepath.Base(source)
					title = strings.TrimSuffix(base, filepath.Ext(base))
				}
				dest = naming.OutputPath(cfg.Paths.OutputDir, title, time.Now())
			}

			pipeline := transcode.NewPipeline(transcode.Options{
				Binary: cfg.FFmpegBinary(),
				Preset: cfg.Encode.Preset,
			}, ctx.loggerValue())

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Encoding %s at %s quality (CRF %d)\n", source, quality, quality.CRF())
			if err := pipeline.Encode(cmd.Context(), source, dest, quality); err != nil {
				return err
			}
			if deleteSource {
				pipeline.DeleteIntermediate(source)
			}
			fmt.Fprintf(out, "Saved %s\n", dest)
			return nil
		},
	}

	cmd.Flags().StringVarP(&titleFlag, "title", "t", "", "Title used for the output file name")
	cmd.Flags().StringVarP(&qualityFlag, "quality", "q", "", "Encode quality: low, medium, or high")
	cmd.Flags().BoolVar(&deleteSource, "delete-source", false, "Remove the source file after a successful encode")

	return cmd
}
