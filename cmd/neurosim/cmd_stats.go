package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/neurosim-go/neurosim/internal/store"
)

func newStatsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show session statistics",
		Long: `Summarize everything persisted in the session store: sample and
roll counts, total spikes, and the mental state distribution.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			sessionStore, err := store.NewSessionStore(cfg.ResolveDataDir())
			if err != nil {
				return fmt.Errorf("opening session store: %w", err)
			}
			defer sessionStore.Close()

			ctx := context.Background()
			stats, err := sessionStore.SessionStats(ctx)
			if err != nil {
				return fmt.Errorf("computing session stats: %w", err)
			}

			jsonOut, _ := cmd.Flags().GetBool("json")
			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(stats)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Session statistics (%s):\n", cfg.ResolveDataDir())
			fmt.Fprintf(cmd.OutOrStdout(), "  Samples:             %d\n", stats.TotalSamples)
			fmt.Fprintf(cmd.OutOrStdout(), "  Rolls:               %d\n", stats.TotalRolls)
			fmt.Fprintf(cmd.OutOrStdout(), "  Total spikes:        %d\n", stats.TotalSpikes)
			fmt.Fprintf(cmd.OutOrStdout(), "  Total duration:      %.2fs\n", stats.TotalDurationS)
			fmt.Fprintf(cmd.OutOrStdout(), "  Average firing rate: %.2f Hz\n", stats.AverageFiringRate)
			if len(stats.StateDistribution) > 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "  States:")
				for state, count := range stats.StateDistribution {
					fmt.Fprintf(cmd.OutOrStdout(), "    %-8s %d\n", state, count)
				}
			}

			listRolls, _ := cmd.Flags().GetInt("rolls")
			if listRolls > 0 {
				rolls, err := sessionStore.ListRolls(ctx, listRolls)
				if err != nil {
					return fmt.Errorf("listing rolls: %w", err)
				}
				if len(rolls) > 0 {
					fmt.Fprintln(cmd.OutOrStdout(), "\nRecent rolls:")
					for _, r := range rolls {
						outcome := "failure"
						if r.Success {
							outcome = "success"
						}
						fmt.Fprintf(cmd.OutOrStdout(), "  %-10s d20=%2d total=%2d vs DC %2d  %s (%s)\n",
							r.CharacterName, r.D20Roll, r.TotalScore, r.Difficulty, outcome, r.State)
					}
				}
			}
			return nil
		},
	}

	cmd.Flags().Int("rolls", 0, "Also list up to N recorded rolls")

	return cmd
}
