package simulation

import (
	"context"
	"fmt"
	"math/rand/v2"
	"testing"

	"github.com/neurosim-go/neurosim/internal/brain"
	"github.com/neurosim-go/neurosim/internal/eeg"
	"github.com/neurosim-go/neurosim/internal/game"
	"github.com/neurosim-go/neurosim/internal/logging"
	"github.com/neurosim-go/neurosim/internal/spikes"
	"github.com/neurosim-go/neurosim/internal/store"
)

// Runner orchestrates simulation experiments against the real synthesis
// stack and an isolated SQLite store.
type Runner struct {
	t     *testing.T
	agg   *brain.Aggregator
	api   *game.RollAPI
	store *store.SessionStore
	rng   *rand.Rand
}

// NewRunner creates a simulation runner with a default aggregator, an
// isolated SQLite store, a sandboxed HOME directory, and an RNG stream
// seeded from seed.
func NewRunner(t *testing.T, seed uint64) *Runner {
	t.Helper()
	return NewRunnerWithConfig(t, seed, brain.DefaultConfig(), spikes.DefaultParams(), eeg.DefaultConfig())
}

// NewRunnerWithConfig creates a runner with explicit synthesis configuration.
func NewRunnerWithConfig(t *testing.T, seed uint64, cfg brain.Config, params spikes.Params, eegCfg eeg.Config) *Runner {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)

	s, err := store.NewSessionStore(tmpDir)
	if err != nil {
		t.Fatalf("NewRunner: failed to create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })

	agg := brain.New(cfg, spikes.New(params), eeg.New(eegCfg))
	api := game.NewRollAPI(agg, logging.NewLogger("info", testWriter{t}))

	return &Runner{
		t:     t,
		agg:   agg,
		api:   api,
		store: s,
		rng:   rand.New(rand.NewPCG(seed, seed)),
	}
}

// Aggregator exposes the runner's aggregator for direct assertions.
func (r *Runner) Aggregator() *brain.Aggregator {
	return r.agg
}

// RollAPI exposes the runner's roll API for callback registration.
func (r *Runner) RollAPI() *game.RollAPI {
	return r.api
}

// RNG exposes the runner's RNG stream for scenarios that generate
// additional data outside Run.
func (r *Runner) RNG() *rand.Rand {
	return r.rng
}

// Run executes the scenario and returns the collected results.
func (r *Runner) Run(scenario Scenario) SimulationResult {
	r.t.Helper()
	ctx := context.Background()

	ticks := make([]TickResult, len(scenario.Ticks))
	for i, tick := range scenario.Ticks {
		rateMin := tick.RateMinHz
		rateMax := tick.RateMaxHz
		if rateMin <= 0 {
			rateMin = r.agg.Config().SpikeRateMinHz
		}
		if rateMax <= 0 {
			rateMax = r.agg.Config().SpikeRateMaxHz
		}

		sample, err := r.agg.SimulateActivity(tick.DurationS, tick.State, rateMin, rateMax, r.rng)
		if err != nil {
			r.t.Fatalf("%s: tick %d (%s): %v", scenario.Name, i, tick.Label, err)
		}
		ticks[i] = TickResult{Index: i, Label: tick.Label, Sample: sample}

		if scenario.Persist {
			if err := r.store.SaveSample(ctx, sample); err != nil {
				r.t.Fatalf("%s: tick %d: SaveSample: %v", scenario.Name, i, err)
			}
		}
	}

	rolls, err := r.api.BatchChecks(scenario.Checks, r.rng)
	if err != nil {
		r.t.Fatalf("%s: BatchChecks: %v", scenario.Name, err)
	}
	if scenario.Persist {
		for _, roll := range rolls {
			if err := r.store.SaveRoll(ctx, roll); err != nil {
				r.t.Fatalf("%s: SaveRoll(%s): %v", scenario.Name, roll.CharacterName, err)
			}
		}
	}

	return SimulationResult{
		Ticks: ticks,
		Rolls: rolls,
		Store: r.store,
	}
}

// FormatTickDebug returns a debug string for a tick result.
func FormatTickDebug(tr TickResult) string {
	s := fmt.Sprintf("Tick %d (%s): state=%s spikes=%d rate=%.2fHz\n",
		tr.Index, tr.Label, tr.Sample.State, tr.Sample.TotalSpikes(), tr.Sample.Metrics.MeanFiringRate)
	for _, ch := range tr.Sample.EEGChannels {
		s += fmt.Sprintf("  %s: %d samples, peak %.4f\n", ch.ChannelName, len(ch.Samples), ch.PeakAmplitude())
	}
	return s
}

// testWriter routes operational log output through the test log.
type testWriter struct {
	t *testing.T
}

func (w testWriter) Write(p []byte) (int, error) {
	w.t.Logf("%s", p)
	return len(p), nil
}
