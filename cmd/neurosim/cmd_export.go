package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neurosim-go/neurosim/internal/store"
)

func newExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export persisted session data",
		Long: `Export the session store to a file for analysis.

Formats:
  jsonl       one full activity sample per line
  spikes-csv  one row per spike timestamp
  eeg-csv     one row per EEG sample per channel
  rolls-csv   one row per recorded intuition check`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			format, _ := cmd.Flags().GetString("format")
			out, _ := cmd.Flags().GetString("out")
			if out == "" {
				return fmt.Errorf("--out is required")
			}

			sessionStore, err := store.NewSessionStore(cfg.ResolveDataDir())
			if err != nil {
				return fmt.Errorf("opening session store: %w", err)
			}
			defer sessionStore.Close()

			ctx := context.Background()
			switch format {
			case "jsonl":
				err = sessionStore.ExportSamplesJSONL(ctx, out)
			case "spikes-csv":
				err = sessionStore.ExportSpikesCSV(ctx, out)
			case "eeg-csv":
				err = sessionStore.ExportEEGCSV(ctx, out)
			case "rolls-csv":
				err = sessionStore.ExportRollsCSV(ctx, out)
			default:
				return fmt.Errorf("unknown format: %s (valid: jsonl, spikes-csv, eeg-csv, rolls-csv)", format)
			}
			if err != nil {
				return fmt.Errorf("exporting %s: %w", format, err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]string{
					"status": "exported",
					"format": format,
					"path":   out,
				})
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Exported %s to %s\n", format, out)
			return nil
		},
	}

	cmd.Flags().String("format", "jsonl", "Export format (jsonl, spikes-csv, eeg-csv, rolls-csv)")
	cmd.Flags().String("out", "", "Output file path (required)")

	return cmd
}
