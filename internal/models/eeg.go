package models

// MentalState is a named preset of band mixing weights.
type MentalState string

const (
	StateRelaxed MentalState = "relaxed" // alpha-dominant
	StateFocused MentalState = "focused" // beta-dominant
	StateDrowsy  MentalState = "drowsy"  // delta/theta-dominant
	StateActive  MentalState = "active"  // gamma/beta-dominant
)

// MentalStates lists the recognized states, in a stable order for error messages.
var MentalStates = []MentalState{StateRelaxed, StateFocused, StateDrowsy, StateActive}

// Valid returns true if the state is a recognized value.
func (s MentalState) Valid() bool {
	switch s {
	case StateRelaxed, StateFocused, StateDrowsy, StateActive:
		return true
	}
	return false
}

// String returns the string representation of the state.
func (s MentalState) String() string {
	return string(s)
}

// BandComponent describes one frequency band's contribution to a channel signal.
type BandComponent struct {
	FreqLowHz  float64 `json:"freq_low_hz" yaml:"freq_low_hz"`
	FreqHighHz float64 `json:"freq_high_hz" yaml:"freq_high_hz"`

	// Amplitude is the absolute amplitude this band was synthesized at
	// (its normalized recipe weight).
	Amplitude float64 `json:"amplitude" yaml:"amplitude"`

	// Weight is the raw recipe weight before normalization.
	Weight float64 `json:"weight" yaml:"weight"`
}

// EEGChannelSignal is one channel's synthesized waveform plus metadata.
//
// Samples are indexed by time i/SamplingRateHz. len(Samples) is exactly
// round(DurationS * SamplingRateHz).
type EEGChannelSignal struct {
	ChannelName     string                   `json:"channel_name" yaml:"channel_name"`
	SamplingRateHz  float64                  `json:"sampling_rate_hz" yaml:"sampling_rate_hz"`
	DurationS       float64                  `json:"duration_s" yaml:"duration_s"`
	State           MentalState              `json:"state" yaml:"state"`
	Samples         []float64                `json:"samples" yaml:"samples"`
	BandComposition map[string]BandComponent `json:"band_composition" yaml:"band_composition"`
}

// MeanAbsAmplitude returns the mean absolute sample value.
func (c EEGChannelSignal) MeanAbsAmplitude() float64 {
	if len(c.Samples) == 0 {
		return 0
	}
	var sum float64
	for _, v := range c.Samples {
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum / float64(len(c.Samples))
}

// PeakAmplitude returns the maximum absolute sample value.
func (c EEGChannelSignal) PeakAmplitude() float64 {
	var peak float64
	for _, v := range c.Samples {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}
	return peak
}
