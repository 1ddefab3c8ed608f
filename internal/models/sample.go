package models

import (
	"time"

	"github.com/google/uuid"
)

// ActivityMetrics holds metrics derived from one simulation tick.
type ActivityMetrics struct {
	// MeanFiringRate is total spike count / (n_neurons * duration), in Hz.
	MeanFiringRate float64 `json:"mean_firing_rate" yaml:"mean_firing_rate"`

	// BandPower maps band name to the mean squared amplitude contribution
	// of that band under the recipe used for this sample.
	BandPower map[string]float64 `json:"band_power" yaml:"band_power"`
}

// BrainActivitySample is one unified activity record: the spike trains and
// EEG channels produced by a single simulation tick, plus derived metrics.
// Samples are immutable after creation and owned by the aggregator's history.
type BrainActivitySample struct {
	ID          string             `json:"id" yaml:"id"`
	Timestamp   time.Time          `json:"timestamp" yaml:"timestamp"`
	DurationS   float64            `json:"duration_s" yaml:"duration_s"`
	State       MentalState        `json:"state" yaml:"state"`
	SpikeTrains []SpikeTrain       `json:"spike_trains" yaml:"spike_trains"`
	EEGChannels []EEGChannelSignal `json:"eeg_channels" yaml:"eeg_channels"`
	Metrics     ActivityMetrics    `json:"metrics" yaml:"metrics"`
}

// NewSampleID returns a fresh unique sample identifier.
func NewSampleID() string {
	return uuid.NewString()
}

// TotalSpikes returns the spike count summed across the population.
func (s BrainActivitySample) TotalSpikes() int {
	var n int
	for _, t := range s.SpikeTrains {
		n += len(t.Timestamps)
	}
	return n
}
