package main

import (
	"fmt"
	"math/rand/v2"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/neurosim-go/neurosim/internal/config"
)

var version = "0.1.0-dev"

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "neurosim",
		Short: "Synthetic neural activity generator",
		Long: `neurosim generates synthetic neural activity: spike trains, EEG band
waveforms, and aggregate brain activity samples.

It also exposes a gaming integration layer that maps d20-style intuition
checks onto generated activity, for games that want "neural" flavor in
their skill checks.`,
	}

	// Global flags
	rootCmd.PersistentFlags().Bool("json", false, "Output as JSON")
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default ~/.neurosim/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "Log level: info, debug, or trace")
	rootCmd.PersistentFlags().Uint64("seed", 0, "RNG seed (0 = time-based)")

	rootCmd.AddCommand(
		newVersionCmd(),
		newInitCmd(),
		newConfigCmd(),
		newSimulateCmd(),
		newIntuitionCmd(),
		newGameCmd(),
		newStatsCmd(),
		newExportCmd(),
	)

	return rootCmd
}

// loadConfig resolves the effective configuration for a command invocation:
// config file (explicit or default locations), then flag overrides.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")

	var cfg *config.Config
	var err error
	if configPath != "" {
		cfg, err = config.LoadFromFile(configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return nil, err
	}

	if level, _ := cmd.Flags().GetString("log-level"); level != "" {
		cfg.Logging.Level = level
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// newRNG builds the command's RNG stream from the --seed flag. A zero seed
// means a fresh time-based stream.
func newRNG(cmd *cobra.Command) *rand.Rand {
	seed, _ := cmd.Flags().GetUint64("seed")
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed))
}
