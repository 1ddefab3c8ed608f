// Package spikes generates synthetic point-process spike trains under
// selectable firing models: a plain Poisson process, a Poisson process with
// an absolute refractory period, and a two-level bursting process.
//
// The synthesizer is stateless; every call draws from a caller-supplied
// *rand.Rand, so results are reproducible given the same seed and call order.
package spikes

import (
	"fmt"
	"math/rand/v2"
	"sort"

	"github.com/neurosim-go/neurosim/internal/models"
)

// Params holds per-model tuning parameters.
type Params struct {
	// RefractoryPeriodS is the minimum enforced gap between consecutive
	// spikes under the refractory model, in seconds.
	RefractoryPeriodS float64 `json:"refractory_period_s" yaml:"refractory_period_s"`

	// BurstRateHz is the rate of burst onsets under the burst model.
	BurstRateHz float64 `json:"burst_rate_hz" yaml:"burst_rate_hz"`

	// SpikesPerBurst is the number of spikes emitted per burst onset.
	SpikesPerBurst int `json:"spikes_per_burst" yaml:"spikes_per_burst"`

	// IntraBurstIntervalS is the spacing between spikes within a burst.
	IntraBurstIntervalS float64 `json:"intra_burst_interval_s" yaml:"intra_burst_interval_s"`
}

// DefaultParams returns the default model parameters.
func DefaultParams() Params {
	return Params{
		RefractoryPeriodS:   0.002,
		BurstRateHz:         2.0,
		SpikesPerBurst:      4,
		IntraBurstIntervalS: 0.005,
	}
}

// validate rejects non-positive tuning parameters for the model in use.
// A negative intra-burst interval would otherwise place spikes below zero,
// outside [0, durationS).
func (p Params) validate(model models.SpikeModel) error {
	switch model {
	case models.SpikeModelRefractory:
		if p.RefractoryPeriodS <= 0 {
			return fmt.Errorf("%w: refractory_period_s must be positive, got %v", models.ErrInvalidParameter, p.RefractoryPeriodS)
		}
	case models.SpikeModelBurst:
		if p.BurstRateHz <= 0 {
			return fmt.Errorf("%w: burst_rate_hz must be positive, got %v", models.ErrInvalidParameter, p.BurstRateHz)
		}
		if p.SpikesPerBurst <= 0 {
			return fmt.Errorf("%w: spikes_per_burst must be positive, got %d", models.ErrInvalidParameter, p.SpikesPerBurst)
		}
		if p.IntraBurstIntervalS <= 0 {
			return fmt.Errorf("%w: intra_burst_interval_s must be positive, got %v", models.ErrInvalidParameter, p.IntraBurstIntervalS)
		}
	}
	return nil
}

// Synthesizer generates spike trains. It holds no mutable state.
type Synthesizer struct {
	params Params
}

// New creates a synthesizer with the given model parameters.
func New(params Params) *Synthesizer {
	return &Synthesizer{params: params}
}

// NewDefault creates a synthesizer with DefaultParams.
func NewDefault() *Synthesizer {
	return New(DefaultParams())
}

// Generate produces one neuron's spike train under the given model.
//
// Under the refractory model the realized rate is capped below
// 1/RefractoryPeriodS; requesting a higher nominal rate silently yields a
// lower realized rate (compare SpikeTrain.RealizedRate against RateHz).
func (s *Synthesizer) Generate(neuronID int, rateHz, durationS float64, model models.SpikeModel, rng *rand.Rand) (models.SpikeTrain, error) {
	if rateHz <= 0 {
		return models.SpikeTrain{}, fmt.Errorf("%w: rate_hz must be positive, got %v", models.ErrInvalidParameter, rateHz)
	}
	if durationS <= 0 {
		return models.SpikeTrain{}, fmt.Errorf("%w: duration_s must be positive, got %v", models.ErrInvalidParameter, durationS)
	}
	if err := s.params.validate(model); err != nil {
		return models.SpikeTrain{}, err
	}

	var timestamps []float64
	switch model {
	case models.SpikeModelPoisson:
		timestamps = s.poisson(rateHz, durationS, rng)
	case models.SpikeModelRefractory:
		timestamps = s.refractory(rateHz, durationS, rng)
	case models.SpikeModelBurst:
		timestamps = s.burst(durationS, rng)
	default:
		return models.SpikeTrain{}, fmt.Errorf("%w: spike model %q (recognized: %v)", models.ErrUnsupportedMode, model, models.SpikeModels)
	}

	return models.SpikeTrain{
		NeuronID:   neuronID,
		RateHz:     rateHz,
		DurationS:  durationS,
		Model:      model,
		Timestamps: timestamps,
	}, nil
}

// GeneratePopulation generates one train per neuron, with each neuron's rate
// drawn uniformly from [rateMinHz, rateMaxHz). Neuron IDs run 0..nNeurons-1.
func (s *Synthesizer) GeneratePopulation(nNeurons int, rateMinHz, rateMaxHz, durationS float64, model models.SpikeModel, rng *rand.Rand) ([]models.SpikeTrain, error) {
	if nNeurons <= 0 {
		return nil, fmt.Errorf("%w: n_neurons must be positive, got %d", models.ErrInvalidParameter, nNeurons)
	}
	if rateMinHz <= 0 || rateMaxHz < rateMinHz {
		return nil, fmt.Errorf("%w: rate range [%v, %v] must be positive and ordered", models.ErrInvalidParameter, rateMinHz, rateMaxHz)
	}

	trains := make([]models.SpikeTrain, 0, nNeurons)
	for i := 0; i < nNeurons; i++ {
		rate := rateMinHz + rng.Float64()*(rateMaxHz-rateMinHz)
		train, err := s.Generate(i, rate, durationS, model, rng)
		if err != nil {
			return nil, err
		}
		trains = append(trains, train)
	}
	return trains, nil
}

// poisson accumulates exponential inter-spike intervals at rateHz until the
// next spike would overshoot durationS.
func (s *Synthesizer) poisson(rateHz, durationS float64, rng *rand.Rand) []float64 {
	var times []float64
	t := rng.ExpFloat64() / rateHz
	for t < durationS {
		times = append(times, t)
		t += rng.ExpFloat64() / rateHz
	}
	return times
}

// refractory runs the same exponential proposal process but rejects any
// proposal closer than RefractoryPeriodS to the last accepted spike. The
// proposal cursor keeps advancing past rejections, so the loop stays
// O(rateHz * durationS).
func (s *Synthesizer) refractory(rateHz, durationS float64, rng *rand.Rand) []float64 {
	rp := s.params.RefractoryPeriodS
	var times []float64
	last := -rp // allow a spike at t=0
	t := rng.ExpFloat64() / rateHz
	for t < durationS {
		if t-last >= rp {
			times = append(times, t)
			last = t
		}
		t += rng.ExpFloat64() / rateHz
	}
	return times
}

// burst draws burst onsets as a Poisson process at BurstRateHz, emits
// SpikesPerBurst spikes per onset spaced by IntraBurstIntervalS, and returns
// the sorted union clipped to durationS.
func (s *Synthesizer) burst(durationS float64, rng *rand.Rand) []float64 {
	onsets := s.poisson(s.params.BurstRateHz, durationS, rng)

	var times []float64
	for _, onset := range onsets {
		for i := 0; i < s.params.SpikesPerBurst; i++ {
			spike := onset + float64(i)*s.params.IntraBurstIntervalS
			if spike < durationS {
				times = append(times, spike)
			}
		}
	}
	sort.Float64s(times)

	// Overlapping bursts can land spikes on the same instant; drop
	// duplicates to keep timestamps strictly increasing.
	out := times[:0]
	for i, t := range times {
		if i == 0 || t > out[len(out)-1] {
			out = append(out, t)
		}
	}
	return out
}
