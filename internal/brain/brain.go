// Package brain composes the spike and EEG synthesizers into unified brain
// activity samples. The aggregator is the only stateful piece of the core:
// it owns an append-only history of samples and derives summary statistics
// from it on demand.
package brain

import (
	"fmt"
	"math/rand/v2"
	"sync"
	"time"

	"github.com/neurosim-go/neurosim/internal/eeg"
	"github.com/neurosim-go/neurosim/internal/models"
	"github.com/neurosim-go/neurosim/internal/spikes"
)

// Config holds the aggregator's construction-time settings.
type Config struct {
	// NeuronCount is the size of the simulated population.
	NeuronCount int

	// Channels is the EEG channel list. Defaults to a 10-20 system subset.
	Channels []string

	// SamplingRateHz is the EEG sampling rate.
	SamplingRateHz float64

	// DefaultModel is the spike model used by SimulateActivity.
	DefaultModel models.SpikeModel

	// SpikeRateMinHz and SpikeRateMaxHz bound the per-neuron rate draw
	// when the caller does not supply a range.
	SpikeRateMinHz float64
	SpikeRateMaxHz float64

	// IntuitionTiers is the difficulty-to-state/rate transform, ordered by
	// descending MinMargin. See DefaultIntuitionTiers.
	IntuitionTiers []IntuitionTier
}

// DefaultChannels is the default EEG montage, a subset of the 10-20 system.
func DefaultChannels() []string {
	return []string{"Fp1", "Fp2", "F3", "F4", "C3", "C4", "P3", "P4"}
}

// DefaultConfig returns the default aggregator configuration.
func DefaultConfig() Config {
	return Config{
		NeuronCount:    100,
		Channels:       DefaultChannels(),
		SamplingRateHz: 250.0,
		DefaultModel:   models.SpikeModelPoisson,
		SpikeRateMinHz: 5.0,
		SpikeRateMaxHz: 50.0,
		IntuitionTiers: DefaultIntuitionTiers(),
	}
}

// Aggregator composes one spike population call and one EEG montage call per
// simulation tick and records the result.
//
// The history is append-only; an explicit lock guards the append and every
// read goes through a snapshot, so summary readers never race a writer.
type Aggregator struct {
	cfg    Config
	spikes *spikes.Synthesizer
	eeg    *eeg.Synthesizer

	mu      sync.Mutex
	history []models.BrainActivitySample
}

// New creates an aggregator over the given synthesizers, filling in defaults
// for zero-value config fields.
func New(cfg Config, sp *spikes.Synthesizer, es *eeg.Synthesizer) *Aggregator {
	if cfg.NeuronCount <= 0 {
		cfg.NeuronCount = 100
	}
	if len(cfg.Channels) == 0 {
		cfg.Channels = DefaultChannels()
	}
	if cfg.SamplingRateHz <= 0 {
		cfg.SamplingRateHz = 250.0
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = models.SpikeModelPoisson
	}
	if cfg.SpikeRateMinHz <= 0 {
		cfg.SpikeRateMinHz = 5.0
	}
	if cfg.SpikeRateMaxHz <= cfg.SpikeRateMinHz {
		cfg.SpikeRateMaxHz = cfg.SpikeRateMinHz + 45.0
	}
	if len(cfg.IntuitionTiers) == 0 {
		cfg.IntuitionTiers = DefaultIntuitionTiers()
	}
	return &Aggregator{cfg: cfg, spikes: sp, eeg: es}
}

// NewDefault creates an aggregator with default config and synthesizers.
func NewDefault() *Aggregator {
	return New(DefaultConfig(), spikes.NewDefault(), eeg.NewDefault())
}

// Config returns the effective configuration after defaulting.
func (a *Aggregator) Config() Config {
	return a.cfg
}

// SimulateActivity runs one simulation tick: a population spike draw and an
// EEG montage under the given state, over [rateMinHz, rateMaxHz). The
// resulting sample is appended to the history and returned.
func (a *Aggregator) SimulateActivity(durationS float64, state models.MentalState, rateMinHz, rateMaxHz float64, rng *rand.Rand) (models.BrainActivitySample, error) {
	trains, err := a.spikes.GeneratePopulation(a.cfg.NeuronCount, rateMinHz, rateMaxHz, durationS, a.cfg.DefaultModel, rng)
	if err != nil {
		return models.BrainActivitySample{}, fmt.Errorf("spike population: %w", err)
	}

	channels, err := a.eeg.GenerateMontage(a.cfg.Channels, durationS, state, a.cfg.SamplingRateHz, rng)
	if err != nil {
		return models.BrainActivitySample{}, fmt.Errorf("eeg montage: %w", err)
	}

	sample := models.BrainActivitySample{
		ID:          models.NewSampleID(),
		Timestamp:   time.Now().UTC(),
		DurationS:   durationS,
		State:       state,
		SpikeTrains: trains,
		EEGChannels: channels,
		Metrics:     deriveMetrics(trains, channels, durationS),
	}

	a.mu.Lock()
	a.history = append(a.history, sample)
	a.mu.Unlock()

	return sample, nil
}

// Simulate runs SimulateActivity with the configured default rate range.
func (a *Aggregator) Simulate(durationS float64, state models.MentalState, rng *rand.Rand) (models.BrainActivitySample, error) {
	return a.SimulateActivity(durationS, state, a.cfg.SpikeRateMinHz, a.cfg.SpikeRateMaxHz, rng)
}

// deriveMetrics computes the sample's derived metrics: the population mean
// firing rate, and per-band power as the mean squared amplitude contribution
// of each band. A unit-amplitude sum of sinusoids has mean square 1/2, so a
// band synthesized at normalized amplitude w contributes w*w/2.
func deriveMetrics(trains []models.SpikeTrain, channels []models.EEGChannelSignal, durationS float64) models.ActivityMetrics {
	var totalSpikes int
	for _, t := range trains {
		totalSpikes += len(t.Timestamps)
	}
	meanRate := float64(totalSpikes) / (float64(len(trains)) * durationS)

	bandPower := make(map[string]float64)
	if len(channels) > 0 {
		for name, comp := range channels[0].BandComposition {
			bandPower[name] = comp.Amplitude * comp.Amplitude / 2
		}
	}

	return models.ActivityMetrics{
		MeanFiringRate: meanRate,
		BandPower:      bandPower,
	}
}

// History returns a snapshot copy of the sample history.
func (a *Aggregator) History() []models.BrainActivitySample {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]models.BrainActivitySample, len(a.history))
	copy(out, a.history)
	return out
}

// Sample returns the history entry with the given ID, searching newest
// first.
func (a *Aggregator) Sample(id string) (models.BrainActivitySample, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := len(a.history) - 1; i >= 0; i-- {
		if a.history[i].ID == id {
			return a.history[i], true
		}
	}
	return models.BrainActivitySample{}, false
}

// Summary holds statistics recomputed from the full history.
type Summary struct {
	TotalSimulations  int                        `json:"total_simulations"`
	TotalDurationS    float64                    `json:"total_duration_s"`
	TotalSpikes       int                        `json:"total_spikes"`
	AverageFiringRate float64                    `json:"average_firing_rate"`
	StateDistribution map[models.MentalState]int `json:"state_distribution"`
}

// SummaryStats recomputes summary statistics from a consistent snapshot of
// the history. Calling it twice without an intervening simulation returns
// identical results.
func (a *Aggregator) SummaryStats() Summary {
	history := a.History()

	s := Summary{
		TotalSimulations:  len(history),
		StateDistribution: make(map[models.MentalState]int),
	}
	var rateSum float64
	for _, sample := range history {
		s.TotalDurationS += sample.DurationS
		s.TotalSpikes += sample.TotalSpikes()
		rateSum += sample.Metrics.MeanFiringRate
		s.StateDistribution[sample.State]++
	}
	if len(history) > 0 {
		s.AverageFiringRate = rateSum / float64(len(history))
	}
	return s
}
