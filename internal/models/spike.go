// Package models defines the core data types for synthetic neural activity:
// spike trains, EEG channel signals, mental states, and the aggregate
// activity sample. All types are plain values; once produced by a generator
// they are never mutated.
package models

// SpikeModel selects the point-process model used to generate a spike train.
type SpikeModel string

const (
	// SpikeModelPoisson draws inter-spike intervals from an exponential
	// distribution at the requested rate.
	SpikeModelPoisson SpikeModel = "poisson"

	// SpikeModelRefractory is the Poisson process with an absolute
	// refractory period: proposals inside the dead time are resampled.
	SpikeModelRefractory SpikeModel = "refractory"

	// SpikeModelBurst emits clusters of closely spaced spikes at
	// Poisson-distributed burst onsets.
	SpikeModelBurst SpikeModel = "burst"
)

// SpikeModels lists the recognized models, in a stable order for error messages.
var SpikeModels = []SpikeModel{SpikeModelPoisson, SpikeModelRefractory, SpikeModelBurst}

// Valid returns true if the model is a recognized value.
func (m SpikeModel) Valid() bool {
	switch m {
	case SpikeModelPoisson, SpikeModelRefractory, SpikeModelBurst:
		return true
	}
	return false
}

// String returns the string representation of the model.
func (m SpikeModel) String() string {
	return string(m)
}

// SpikeTrain is one neuron's generated firing events.
//
// Timestamps are seconds from train onset, strictly increasing, each in
// [0, DurationS). RateHz is the requested nominal rate; under the refractory
// model the realized rate can be lower (see RealizedRate).
type SpikeTrain struct {
	NeuronID   int        `json:"neuron_id" yaml:"neuron_id"`
	RateHz     float64    `json:"rate_hz" yaml:"rate_hz"`
	DurationS  float64    `json:"duration_s" yaml:"duration_s"`
	Model      SpikeModel `json:"model" yaml:"model"`
	Timestamps []float64  `json:"timestamps" yaml:"timestamps"`
}

// SpikeCount returns the number of spikes in the train.
func (t SpikeTrain) SpikeCount() int {
	return len(t.Timestamps)
}

// RealizedRate returns the achieved firing rate in Hz. Comparing this
// against RateHz is how callers detect refractory rate capping; the
// reduction itself is silent, not an error.
func (t SpikeTrain) RealizedRate() float64 {
	if t.DurationS <= 0 {
		return 0
	}
	return float64(len(t.Timestamps)) / t.DurationS
}
