package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neurosim-go/neurosim/internal/game"
	"github.com/neurosim-go/neurosim/internal/logging"
	"github.com/neurosim-go/neurosim/internal/store"
)

// demoChecks is the built-in demo scenario: a party facing a series of
// intuition checks of varying difficulty.
func demoChecks() []game.Check {
	return []game.Check{
		{CharacterName: "Gandalf", Wisdom: 18, Difficulty: 12, Context: "sense the balrog's presence"},
		{CharacterName: "Legolas", Wisdom: 14, Difficulty: 15, Context: "spot movement on the ridge"},
		{CharacterName: "Gimli", Wisdom: 10, Difficulty: 10, Context: "judge the stonework's age"},
		{CharacterName: "Frodo", Wisdom: 12, Difficulty: 18, Context: "resist the ring's pull"},
	}
}

func newGameCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "game",
		Short: "Run a demo game loop of intuition checks",
		Long: `Run a batch of intuition checks for a demo party, with critical
success and failure callbacks wired in. Pass --checks to run your own
batch from a JSON file instead ([{"character_name": ..., "wisdom": ...,
"difficulty": ..., "context": ...}, ...]).`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			checksPath, _ := cmd.Flags().GetString("checks")
			save, _ := cmd.Flags().GetBool("save")
			jsonOut, _ := cmd.Flags().GetBool("json")

			checks := demoChecks()
			if checksPath != "" {
				data, err := os.ReadFile(checksPath)
				if err != nil {
					return fmt.Errorf("reading checks file: %w", err)
				}
				checks = nil
				if err := json.Unmarshal(data, &checks); err != nil {
					return fmt.Errorf("parsing checks file: %w", err)
				}
				if len(checks) == 0 {
					return fmt.Errorf("checks file contains no checks")
				}
			}

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			trace := logging.NewTraceLogger(cfg.ResolveDataDir(), cfg.Logging.Level)
			defer trace.Close()

			agg := newAggregator(cfg)
			api := game.NewRollAPI(agg, logger)

			if !jsonOut {
				api.RegisterCallback(game.EventCriticalSuccess, func(r game.CheckResult) {
					fmt.Fprintf(cmd.OutOrStdout(), "*** %s rolled a natural 20! ***\n", r.CharacterName)
				})
				api.RegisterCallback(game.EventCriticalFailure, func(r game.CheckResult) {
					fmt.Fprintf(cmd.OutOrStdout(), "*** %s rolled a natural 1... ***\n", r.CharacterName)
				})
			}
			api.RegisterCallback(game.EventPostRoll, func(r game.CheckResult) {
				traceCheck(trace, agg, r)
			})

			rng := newRNG(cmd)
			results, err := api.BatchChecks(checks, rng)
			if err != nil {
				return err
			}
			stats := api.Stats()

			if save {
				sessionStore, err := store.NewSessionStore(cfg.ResolveDataDir())
				if err != nil {
					return fmt.Errorf("opening session store: %w", err)
				}
				defer sessionStore.Close()
				ctx := context.Background()
				for _, r := range results {
					if err := sessionStore.SaveRoll(ctx, r); err != nil {
						return fmt.Errorf("saving roll: %w", err)
					}
				}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"results":    results,
					"statistics": stats,
					"saved":      save,
				})
			}

			for _, r := range results {
				printCheckResult(cmd, r)
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Party results: %d/%d succeeded (%.0f%%), average roll %.1f\n",
				stats.SuccessCount, stats.TotalChecks, stats.SuccessRate*100, stats.AverageD20Roll)
			return nil
		},
	}

	cmd.Flags().String("checks", "", "Path to a JSON file of checks to run instead of the demo party")
	cmd.Flags().Bool("save", false, "Persist the rolls to the session store")

	return cmd
}
