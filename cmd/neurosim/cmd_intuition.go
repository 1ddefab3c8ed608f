package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neurosim-go/neurosim/internal/brain"
	"github.com/neurosim-go/neurosim/internal/game"
	"github.com/neurosim-go/neurosim/internal/logging"
	"github.com/neurosim-go/neurosim/internal/store"
)

func newIntuitionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "intuition",
		Short: "Perform a single intuition check",
		Long: `Roll a d20 intuition check for a character. The check's difficulty
relative to the character's wisdom picks a mental state and firing rate
range, a matching activity sample is generated, and the dice outcome is
reported alongside the neural summary.

Examples:
  neurosim intuition --character Gandalf --wisdom 18 --difficulty 12
  neurosim intuition --character Gimli --wisdom 10 --difficulty 18 --save --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			character, _ := cmd.Flags().GetString("character")
			wisdom, _ := cmd.Flags().GetInt("wisdom")
			difficulty, _ := cmd.Flags().GetInt("difficulty")
			checkContext, _ := cmd.Flags().GetString("context")
			duration, _ := cmd.Flags().GetFloat64("duration")
			save, _ := cmd.Flags().GetBool("save")
			jsonOut, _ := cmd.Flags().GetBool("json")

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			trace := logging.NewTraceLogger(cfg.ResolveDataDir(), cfg.Logging.Level)
			defer trace.Close()

			agg := newAggregator(cfg)
			api := game.NewRollAPI(agg, logger)
			rng := newRNG(cmd)

			result, err := api.IntuitionCheck(character, wisdom, difficulty, checkContext, duration, rng)
			if err != nil {
				return err
			}

			traceCheck(trace, agg, result)

			if save {
				sessionStore, err := store.NewSessionStore(cfg.ResolveDataDir())
				if err != nil {
					return fmt.Errorf("opening session store: %w", err)
				}
				defer sessionStore.Close()
				if err := sessionStore.SaveRoll(context.Background(), result); err != nil {
					return fmt.Errorf("saving roll: %w", err)
				}
			}

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(result)
			}

			printCheckResult(cmd, result)
			return nil
		},
	}

	cmd.Flags().String("character", "adventurer", "Character name")
	cmd.Flags().Int("wisdom", 10, "Character wisdom (1-30)")
	cmd.Flags().Int("difficulty", 10, "Check difficulty (1-30)")
	cmd.Flags().String("context", "", "What the check is for")
	cmd.Flags().Float64("duration", 1.0, "Neural sample duration in seconds")
	cmd.Flags().Bool("save", false, "Persist the roll to the session store")

	return cmd
}

// traceCheck logs a completed check together with the sample generated for
// it, so trace level carries the full activity payload behind the roll.
func traceCheck(trace *logging.TraceLogger, agg *brain.Aggregator, r game.CheckResult) {
	if trace == nil {
		return
	}
	extra := map[string]any{
		"character":   r.CharacterName,
		"d20_roll":    r.D20Roll,
		"total_score": r.TotalScore,
		"difficulty":  r.Difficulty,
		"success":     r.Success,
	}
	if sample, ok := agg.Sample(r.SampleID); ok {
		trace.LogSample("intuition_check", sample, extra)
		return
	}
	extra["event"] = "intuition_check"
	extra["sample_id"] = r.SampleID
	extra["state"] = r.State.String()
	trace.Log(extra)
}

func printCheckResult(cmd *cobra.Command, result game.CheckResult) {
	outcome := "FAILURE"
	if result.Success {
		outcome = "SUCCESS"
	}
	switch result.D20Roll {
	case 20:
		outcome = "CRITICAL SUCCESS"
	case 1:
		outcome = "CRITICAL FAILURE"
	}

	fmt.Fprintf(cmd.OutOrStdout(), "%s rolls intuition", result.CharacterName)
	if result.Context != "" {
		fmt.Fprintf(cmd.OutOrStdout(), " (%s)", result.Context)
	}
	fmt.Fprintln(cmd.OutOrStdout())
	fmt.Fprintf(cmd.OutOrStdout(), "  Roll:       %d + %d = %d vs DC %d\n",
		result.D20Roll, result.WisdomModifier, result.TotalScore, result.Difficulty)
	fmt.Fprintf(cmd.OutOrStdout(), "  Outcome:    %s\n", outcome)
	fmt.Fprintf(cmd.OutOrStdout(), "  State:      %s\n", result.State)
	fmt.Fprintf(cmd.OutOrStdout(), "  Activity:   %d spikes, %.2f Hz mean rate\n",
		result.TotalSpikes, result.MeanFiringRate)
}
