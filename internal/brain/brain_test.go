package brain

import (
	"errors"
	"math"
	"math/rand/v2"
	"reflect"
	"testing"

	"github.com/neurosim-go/neurosim/internal/eeg"
	"github.com/neurosim-go/neurosim/internal/models"
	"github.com/neurosim-go/neurosim/internal/spikes"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func newTestAggregator(neurons int) *Aggregator {
	cfg := DefaultConfig()
	cfg.NeuronCount = neurons
	cfg.Channels = []string{"C3", "C4"}
	return New(cfg, spikes.NewDefault(), eeg.NewDefault())
}

func TestSimulateActivity(t *testing.T) {
	a := newTestAggregator(20)

	sample, err := a.SimulateActivity(1.0, models.StateFocused, 10.0, 30.0, newRand(42))
	if err != nil {
		t.Fatalf("SimulateActivity() error: %v", err)
	}

	if len(sample.SpikeTrains) != 20 {
		t.Errorf("got %d spike trains, want 20", len(sample.SpikeTrains))
	}
	if len(sample.EEGChannels) != 2 {
		t.Errorf("got %d eeg channels, want 2", len(sample.EEGChannels))
	}
	if sample.State != models.StateFocused {
		t.Errorf("state = %v, want focused", sample.State)
	}
	if sample.ID == "" {
		t.Error("sample has no ID")
	}

	// Mean firing rate must equal total spikes / (neurons * duration).
	want := float64(sample.TotalSpikes()) / (20.0 * 1.0)
	if sample.Metrics.MeanFiringRate != want {
		t.Errorf("MeanFiringRate = %v, want %v", sample.Metrics.MeanFiringRate, want)
	}

	// Band power covers every band in the recipe.
	if len(sample.Metrics.BandPower) != 5 {
		t.Errorf("band power has %d entries, want 5", len(sample.Metrics.BandPower))
	}
	var total float64
	for band, p := range sample.Metrics.BandPower {
		if p <= 0 {
			t.Errorf("band %s power = %v, want > 0", band, p)
		}
		total += p
	}
	// Normalized amplitudes sum to 1, so total power is at most 1/2.
	if total > 0.5+1e-9 {
		t.Errorf("total band power = %v, want <= 0.5", total)
	}
}

func TestSimulateActivity_InvalidState(t *testing.T) {
	a := newTestAggregator(5)
	_, err := a.SimulateActivity(1.0, models.MentalState("asleep"), 10.0, 30.0, newRand(1))
	if !errors.Is(err, models.ErrUnsupportedMode) {
		t.Errorf("error = %v, want ErrUnsupportedMode", err)
	}
	if len(a.History()) != 0 {
		t.Error("failed simulation must not append to history")
	}
}

func TestSimulateActivity_HistoryAppendOnly(t *testing.T) {
	a := newTestAggregator(5)
	rng := newRand(2)

	for i := 0; i < 3; i++ {
		if _, err := a.SimulateActivity(0.5, models.StateActive, 10, 20, rng); err != nil {
			t.Fatalf("SimulateActivity() error: %v", err)
		}
	}

	history := a.History()
	if len(history) != 3 {
		t.Fatalf("history length = %d, want 3", len(history))
	}

	// History returns a snapshot; mutating it must not affect the owner.
	history[0].State = models.StateDrowsy
	if a.History()[0].State != models.StateActive {
		t.Error("History() exposed internal state to mutation")
	}
}

func TestSummaryStats(t *testing.T) {
	a := newTestAggregator(10)
	rng := newRand(5)

	if _, err := a.SimulateActivity(1.0, models.StateFocused, 10, 30, rng); err != nil {
		t.Fatalf("SimulateActivity() error: %v", err)
	}
	if _, err := a.SimulateActivity(2.0, models.StateFocused, 10, 30, rng); err != nil {
		t.Fatalf("SimulateActivity() error: %v", err)
	}
	if _, err := a.SimulateActivity(1.0, models.StateDrowsy, 5, 10, rng); err != nil {
		t.Fatalf("SimulateActivity() error: %v", err)
	}

	s := a.SummaryStats()
	if s.TotalSimulations != 3 {
		t.Errorf("TotalSimulations = %d, want 3", s.TotalSimulations)
	}
	if s.TotalDurationS != 4.0 {
		t.Errorf("TotalDurationS = %v, want 4.0", s.TotalDurationS)
	}
	if s.StateDistribution[models.StateFocused] != 2 || s.StateDistribution[models.StateDrowsy] != 1 {
		t.Errorf("StateDistribution = %v", s.StateDistribution)
	}

	var rateSum float64
	for _, sample := range a.History() {
		rateSum += sample.Metrics.MeanFiringRate
	}
	if want := rateSum / 3; math.Abs(s.AverageFiringRate-want) > 1e-12 {
		t.Errorf("AverageFiringRate = %v, want %v", s.AverageFiringRate, want)
	}
}

func TestSummaryStats_Idempotent(t *testing.T) {
	a := newTestAggregator(10)
	if _, err := a.SimulateActivity(1.0, models.StateRelaxed, 10, 30, newRand(3)); err != nil {
		t.Fatalf("SimulateActivity() error: %v", err)
	}

	first := a.SummaryStats()
	second := a.SummaryStats()
	if !reflect.DeepEqual(first, second) {
		t.Errorf("SummaryStats() not idempotent:\n%+v\n%+v", first, second)
	}
}

func TestSummaryStats_EmptyHistory(t *testing.T) {
	a := newTestAggregator(10)
	s := a.SummaryStats()
	if s.TotalSimulations != 0 || s.AverageFiringRate != 0 || s.TotalSpikes != 0 {
		t.Errorf("empty summary = %+v", s)
	}
}

func TestResolveIntuition(t *testing.T) {
	a := newTestAggregator(10)

	tests := []struct {
		name       string
		difficulty int
		wisdom     int
		wantState  models.MentalState
	}{
		{name: "strong margin is focused", difficulty: 10, wisdom: 18, wantState: models.StateFocused},
		{name: "small margin is active", difficulty: 15, wisdom: 18, wantState: models.StateActive},
		{name: "even match is active", difficulty: 15, wisdom: 15, wantState: models.StateActive},
		{name: "small deficit is relaxed", difficulty: 18, wisdom: 15, wantState: models.StateRelaxed},
		{name: "large deficit is drowsy", difficulty: 25, wisdom: 8, wantState: models.StateDrowsy},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tier, err := a.ResolveIntuition(tt.difficulty, tt.wisdom)
			if err != nil {
				t.Fatalf("ResolveIntuition() error: %v", err)
			}
			if tier.State != tt.wantState {
				t.Errorf("state = %v, want %v", tier.State, tt.wantState)
			}
		})
	}
}

func TestResolveIntuition_OutOfRange(t *testing.T) {
	a := newTestAggregator(10)

	tests := []struct {
		name       string
		difficulty int
		wisdom     int
	}{
		{name: "zero difficulty", difficulty: 0, wisdom: 10},
		{name: "difficulty above 30", difficulty: 31, wisdom: 10},
		{name: "zero wisdom", difficulty: 10, wisdom: 0},
		{name: "negative wisdom", difficulty: 10, wisdom: -3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := a.ResolveIntuition(tt.difficulty, tt.wisdom)
			if !errors.Is(err, models.ErrInvalidParameter) {
				t.Errorf("error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}

func TestGenerateIntuitionSignal_FavorableMargin(t *testing.T) {
	a := newTestAggregator(50)

	// wisdom 18 vs difficulty 15: favorable margin, so the mapped state is
	// an engaged one and the firing rate lands in the upper half of the
	// default 5-50 Hz range.
	sample, err := a.GenerateIntuitionSignal(15, 18, 1.0, newRand(42))
	if err != nil {
		t.Fatalf("GenerateIntuitionSignal() error: %v", err)
	}

	if sample.State != models.StateActive && sample.State != models.StateFocused {
		t.Errorf("state = %v, want an engaged state for a favorable margin", sample.State)
	}

	cfg := a.Config()
	upperHalf := (cfg.SpikeRateMinHz + cfg.SpikeRateMaxHz) / 2
	if sample.Metrics.MeanFiringRate <= upperHalf {
		t.Errorf("MeanFiringRate = %v, want above %v", sample.Metrics.MeanFiringRate, upperHalf)
	}
}
