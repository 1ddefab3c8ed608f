package simulation

import (
	"github.com/neurosim-go/neurosim/internal/game"
	"github.com/neurosim-go/neurosim/internal/models"
	"github.com/neurosim-go/neurosim/internal/store"
)

// Scenario defines a complete simulation experiment: a sequence of
// simulation ticks followed by a sequence of intuition checks, all sharing
// one seeded RNG stream.
type Scenario struct {
	Name string

	// Ticks are executed in order against the aggregator.
	Ticks []Tick

	// Checks are executed in order against the roll API, after all ticks.
	Checks []game.Check

	// Persist saves every sample and roll to the runner's SQLite store.
	Persist bool
}

// Tick describes one simulation step.
type Tick struct {
	DurationS float64
	State     models.MentalState

	// RateMinHz / RateMaxHz bound the per-neuron rate draw. Zero values
	// fall back to the aggregator's configured defaults.
	RateMinHz float64
	RateMaxHz float64

	// Label is an optional human-readable tag for debugging output.
	Label string
}

// TickResult captures one executed tick.
type TickResult struct {
	Index  int
	Label  string
	Sample models.BrainActivitySample
}

// SimulationResult captures all ticks and checks plus the final store state.
type SimulationResult struct {
	Ticks []TickResult
	Rolls []game.CheckResult
	Store *store.SessionStore
}

// Samples returns the generated samples in tick order.
func (r SimulationResult) Samples() []models.BrainActivitySample {
	out := make([]models.BrainActivitySample, len(r.Ticks))
	for i, tr := range r.Ticks {
		out[i] = tr.Sample
	}
	return out
}

// AllTrains returns every spike train across all ticks.
func (r SimulationResult) AllTrains() []models.SpikeTrain {
	var out []models.SpikeTrain
	for _, tr := range r.Ticks {
		out = append(out, tr.Sample.SpikeTrains...)
	}
	return out
}
