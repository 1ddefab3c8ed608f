package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/neurosim-go/neurosim/internal/config"
)

func newInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize the neurosim data directory",
		Long: `Create the data directory (~/.neurosim by default) and write a
config.yaml with the default settings for editing.

Existing files are left untouched.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			jsonOut, _ := cmd.Flags().GetBool("json")
			dataDir, _ := cmd.Flags().GetString("data-dir")

			cfg := config.Default()
			if dataDir != "" {
				cfg.DataDir = dataDir
			}
			dir := cfg.ResolveDataDir()

			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("creating data directory: %w", err)
			}

			configPath := filepath.Join(dir, "config.yaml")
			created := false
			if _, err := os.Stat(configPath); os.IsNotExist(err) {
				data, err := yaml.Marshal(cfg)
				if err != nil {
					return fmt.Errorf("marshaling default config: %w", err)
				}
				if err := os.WriteFile(configPath, data, 0644); err != nil {
					return fmt.Errorf("writing config.yaml: %w", err)
				}
				created = true
			}

			if jsonOut {
				json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"status":         "initialized",
					"path":           dir,
					"config_written": created,
				})
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Initialized %s\n", dir)
				if created {
					fmt.Fprintf(cmd.OutOrStdout(), "Wrote default config to %s\n", configPath)
				} else {
					fmt.Fprintf(cmd.OutOrStdout(), "Config already exists at %s\n", configPath)
				}
			}
			return nil
		},
	}

	cmd.Flags().String("data-dir", "", "Data directory to initialize (default ~/.neurosim)")

	return cmd
}
