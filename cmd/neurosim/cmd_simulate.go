package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/neurosim-go/neurosim/internal/brain"
	"github.com/neurosim-go/neurosim/internal/config"
	"github.com/neurosim-go/neurosim/internal/eeg"
	"github.com/neurosim-go/neurosim/internal/logging"
	"github.com/neurosim-go/neurosim/internal/models"
	"github.com/neurosim-go/neurosim/internal/spikes"
	"github.com/neurosim-go/neurosim/internal/store"
)

// newAggregator builds the aggregator stack from the effective config.
func newAggregator(cfg *config.Config) *brain.Aggregator {
	return brain.New(
		cfg.BrainConfig(),
		spikes.New(cfg.SpikeParams()),
		eeg.New(cfg.EEGSynthConfig()),
	)
}

func newSimulateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Generate brain activity samples",
		Long: `Run one or more simulation ticks. Each tick draws a population of
spike trains and an EEG montage under the requested mental state, and
derives summary metrics.

Examples:
  neurosim simulate --state focused --duration 2
  neurosim simulate --state drowsy --count 5 --save
  neurosim simulate --state active --model burst --seed 42 --json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			stateStr, _ := cmd.Flags().GetString("state")
			duration, _ := cmd.Flags().GetFloat64("duration")
			count, _ := cmd.Flags().GetInt("count")
			modelStr, _ := cmd.Flags().GetString("model")
			rateMin, _ := cmd.Flags().GetFloat64("rate-min")
			rateMax, _ := cmd.Flags().GetFloat64("rate-max")
			save, _ := cmd.Flags().GetBool("save")
			jsonOut, _ := cmd.Flags().GetBool("json")

			state := models.MentalState(stateStr)
			if !state.Valid() {
				return fmt.Errorf("invalid state: %s (valid: %v)", stateStr, models.MentalStates)
			}
			if modelStr != "" {
				if !models.SpikeModel(modelStr).Valid() {
					return fmt.Errorf("invalid model: %s (valid: %v)", modelStr, models.SpikeModels)
				}
				cfg.Simulation.DefaultModel = modelStr
			}
			if count <= 0 {
				count = 1
			}
			if rateMin <= 0 {
				rateMin = cfg.Simulation.SpikeRateMinHz
			}
			if rateMax <= 0 {
				rateMax = cfg.Simulation.SpikeRateMaxHz
			}

			logger := logging.NewLogger(cfg.Logging.Level, os.Stderr)
			trace := logging.NewTraceLogger(cfg.ResolveDataDir(), cfg.Logging.Level)
			defer trace.Close()

			agg := newAggregator(cfg)
			rng := newRNG(cmd)

			var sessionStore *store.SessionStore
			if save {
				sessionStore, err = store.NewSessionStore(cfg.ResolveDataDir())
				if err != nil {
					return fmt.Errorf("opening session store: %w", err)
				}
				defer sessionStore.Close()
			}

			ctx := context.Background()
			samples := make([]models.BrainActivitySample, 0, count)
			for i := 0; i < count; i++ {
				sample, err := agg.SimulateActivity(duration, state, rateMin, rateMax, rng)
				if err != nil {
					return fmt.Errorf("simulating activity: %w", err)
				}
				samples = append(samples, sample)

				logger.Debug("simulated activity",
					"sample_id", sample.ID,
					"state", sample.State.String(),
					"total_spikes", sample.TotalSpikes(),
					"mean_firing_rate", sample.Metrics.MeanFiringRate,
				)
				trace.LogSample("simulate", sample, map[string]any{"tick": i + 1})

				if sessionStore != nil {
					if err := sessionStore.SaveSample(ctx, sample); err != nil {
						return fmt.Errorf("saving sample: %w", err)
					}
				}
			}

			summary := agg.SummaryStats()

			if jsonOut {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(map[string]interface{}{
					"samples": samples,
					"summary": summary,
					"saved":   save,
				})
			}

			for i, sample := range samples {
				fmt.Fprintf(cmd.OutOrStdout(), "Sample %d: %s\n", i+1, sample.ID)
				fmt.Fprintf(cmd.OutOrStdout(), "  State:            %s\n", sample.State)
				fmt.Fprintf(cmd.OutOrStdout(), "  Duration:         %.2fs\n", sample.DurationS)
				fmt.Fprintf(cmd.OutOrStdout(), "  Neurons:          %d\n", len(sample.SpikeTrains))
				fmt.Fprintf(cmd.OutOrStdout(), "  Channels:         %d\n", len(sample.EEGChannels))
				fmt.Fprintf(cmd.OutOrStdout(), "  Total spikes:     %d\n", sample.TotalSpikes())
				fmt.Fprintf(cmd.OutOrStdout(), "  Mean firing rate: %.2f Hz\n", sample.Metrics.MeanFiringRate)
				fmt.Fprintln(cmd.OutOrStdout())
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Total: %d simulation(s), %d spikes, average rate %.2f Hz\n",
				summary.TotalSimulations, summary.TotalSpikes, summary.AverageFiringRate)
			if save {
				fmt.Fprintf(cmd.OutOrStdout(), "Saved to %s\n", cfg.ResolveDataDir())
			}
			return nil
		},
	}

	cmd.Flags().String("state", "relaxed", "Mental state (relaxed, focused, drowsy, active)")
	cmd.Flags().Float64("duration", 1.0, "Simulation duration in seconds")
	cmd.Flags().Int("count", 1, "Number of simulation ticks")
	cmd.Flags().String("model", "", "Spike model override (poisson, refractory, burst)")
	cmd.Flags().Float64("rate-min", 0, "Minimum firing rate in Hz (default from config)")
	cmd.Flags().Float64("rate-max", 0, "Maximum firing rate in Hz (default from config)")
	cmd.Flags().Bool("save", false, "Persist samples to the session store")

	return cmd
}
