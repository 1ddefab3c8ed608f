// Package eeg synthesizes continuous multi-band EEG-like waveforms.
//
// Each named band is a weighted sum of a few sinusoids with frequencies
// sampled inside the band's range and phases randomized per call. Mental
// states are fixed band-weight recipes mixed into a single signal with a
// Gaussian noise floor. The synthesizer is stateless; all randomness comes
// from the caller-supplied *rand.Rand.
package eeg

import (
	"fmt"
	"math"
	"math/rand/v2"
	"sort"

	"github.com/neurosim-go/neurosim/internal/models"
)

// Band is a named frequency range in Hz.
type Band struct {
	LowHz  float64 `json:"low_hz" yaml:"low_hz"`
	HighHz float64 `json:"high_hz" yaml:"high_hz"`
}

// Recipe maps band names to mixing weights. Weights are relative; they are
// normalized at synthesis time and need not sum to 1.
type Recipe map[string]float64

// DefaultBands returns the standard EEG frequency bands.
func DefaultBands() map[string]Band {
	return map[string]Band{
		"delta": {LowHz: 0.5, HighHz: 4},
		"theta": {LowHz: 4, HighHz: 8},
		"alpha": {LowHz: 8, HighHz: 13},
		"beta":  {LowHz: 13, HighHz: 30},
		"gamma": {LowHz: 30, HighHz: 45},
	}
}

// DefaultRecipes returns the band-weight recipe per mental state.
func DefaultRecipes() map[models.MentalState]Recipe {
	return map[models.MentalState]Recipe{
		models.StateRelaxed: {"alpha": 3.0, "theta": 1.0, "beta": 0.5, "delta": 0.5, "gamma": 0.2},
		models.StateFocused: {"beta": 3.0, "gamma": 2.0, "alpha": 0.5, "theta": 0.3, "delta": 0.2},
		models.StateDrowsy:  {"delta": 3.0, "theta": 2.0, "alpha": 0.5, "beta": 0.2, "gamma": 0.1},
		models.StateActive:  {"beta": 2.0, "gamma": 2.5, "alpha": 1.0, "theta": 0.5, "delta": 0.3},
	}
}

// Config holds the synthesizer's immutable lookup tables and defaults.
// Zero-value fields are filled in by New; tests can substitute alternate
// bands or recipes without process-wide side effects.
type Config struct {
	// Bands maps band names to frequency ranges.
	Bands map[string]Band

	// Recipes maps mental states to band-weight recipes.
	Recipes map[models.MentalState]Recipe

	// Components is the number of sinusoids summed per band.
	Components int

	// NoiseLevel is the default Gaussian noise stddev layered on
	// state-driven signals. Zero is backfilled like the other fields;
	// for noiseless output pass 0 to GenerateMixedSignal directly.
	NoiseLevel float64
}

// DefaultConfig returns the default synthesis configuration.
func DefaultConfig() Config {
	return Config{
		Bands:      DefaultBands(),
		Recipes:    DefaultRecipes(),
		Components: 3,
		NoiseLevel: 0.2,
	}
}

// Synthesizer generates EEG-like waveforms. It holds no mutable state.
type Synthesizer struct {
	cfg Config
}

// New creates a synthesizer, filling in defaults for zero-value config fields.
func New(cfg Config) *Synthesizer {
	if cfg.Bands == nil {
		cfg.Bands = DefaultBands()
	}
	if cfg.Recipes == nil {
		cfg.Recipes = DefaultRecipes()
	}
	if cfg.Components <= 0 {
		cfg.Components = 3
	}
	if cfg.NoiseLevel == 0 {
		cfg.NoiseLevel = 0.2
	}
	return &Synthesizer{cfg: cfg}
}

// NewDefault creates a synthesizer with DefaultConfig.
func NewDefault() *Synthesizer {
	return New(DefaultConfig())
}

// BandNames returns the recognized band names in sorted order.
func (s *Synthesizer) BandNames() []string {
	names := make([]string, 0, len(s.cfg.Bands))
	for name := range s.cfg.Bands {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Recipe returns the band-weight recipe for a state.
func (s *Synthesizer) Recipe(state models.MentalState) (Recipe, error) {
	recipe, ok := s.cfg.Recipes[state]
	if !ok {
		return nil, fmt.Errorf("%w: mental state %q (recognized: %v)", models.ErrUnsupportedMode, state, models.MentalStates)
	}
	return recipe, nil
}

func sampleCount(durationS, samplingRateHz float64) int {
	return int(math.Round(durationS * samplingRateHz))
}

func validateTiming(durationS, samplingRateHz float64) error {
	if durationS <= 0 {
		return fmt.Errorf("%w: duration_s must be positive, got %v", models.ErrInvalidParameter, durationS)
	}
	if samplingRateHz <= 0 {
		return fmt.Errorf("%w: sampling_rate_hz must be positive, got %v", models.ErrInvalidParameter, samplingRateHz)
	}
	return nil
}

// GenerateBand synthesizes a single band as a sum of Components sinusoids
// with frequencies inside the band's range, randomized phases, and random
// component weights normalized to sum 1. amplitude scales the result.
func (s *Synthesizer) GenerateBand(bandName string, durationS, amplitude, samplingRateHz float64, rng *rand.Rand) ([]float64, error) {
	if err := validateTiming(durationS, samplingRateHz); err != nil {
		return nil, err
	}
	band, ok := s.cfg.Bands[bandName]
	if !ok {
		return nil, fmt.Errorf("%w: band %q (recognized: %v)", models.ErrUnsupportedMode, bandName, s.BandNames())
	}

	type component struct {
		freq, phase, weight float64
	}
	comps := make([]component, s.cfg.Components)
	var totalWeight float64
	for i := range comps {
		comps[i].freq = band.LowHz + rng.Float64()*(band.HighHz-band.LowHz)
		comps[i].phase = rng.Float64() * 2 * math.Pi
		comps[i].weight = 0.5 + rng.Float64()*0.5
		totalWeight += comps[i].weight
	}
	for i := range comps {
		comps[i].weight /= totalWeight
	}

	n := sampleCount(durationS, samplingRateHz)
	signal := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / samplingRateHz
		var v float64
		for _, c := range comps {
			v += c.weight * math.Sin(2*math.Pi*c.freq*t+c.phase)
		}
		signal[i] = amplitude * v
	}
	return signal, nil
}

// GenerateMixedSignal linearly combines per-band signals. Weights are
// normalized across the provided bands; bands absent from the map contribute
// zero. Gaussian noise with stddev noiseLevel is added when positive.
//
// Bands are synthesized in sorted name order so a given rng seed always
// produces the same signal regardless of map iteration order.
func (s *Synthesizer) GenerateMixedSignal(durationS float64, bandWeights map[string]float64, noiseLevel, samplingRateHz float64, rng *rand.Rand) ([]float64, error) {
	if err := validateTiming(durationS, samplingRateHz); err != nil {
		return nil, err
	}
	if len(bandWeights) == 0 {
		return nil, fmt.Errorf("%w: band_weights must not be empty", models.ErrInvalidParameter)
	}

	names := make([]string, 0, len(bandWeights))
	var totalWeight float64
	for name, w := range bandWeights {
		if _, ok := s.cfg.Bands[name]; !ok {
			return nil, fmt.Errorf("%w: band %q (recognized: %v)", models.ErrUnsupportedMode, name, s.BandNames())
		}
		names = append(names, name)
		totalWeight += w
	}
	if totalWeight <= 0 {
		return nil, fmt.Errorf("%w: band weights must sum to a positive value", models.ErrInvalidParameter)
	}
	sort.Strings(names)

	n := sampleCount(durationS, samplingRateHz)
	signal := make([]float64, n)
	for _, name := range names {
		weight := bandWeights[name] / totalWeight
		if weight <= 0 {
			continue
		}
		bandSignal, err := s.GenerateBand(name, durationS, weight, samplingRateHz, rng)
		if err != nil {
			return nil, err
		}
		for i, v := range bandSignal {
			signal[i] += v
		}
	}

	if noiseLevel > 0 {
		for i := range signal {
			signal[i] += rng.NormFloat64() * noiseLevel
		}
	}
	return signal, nil
}

// GenerateMentalState synthesizes the mixed signal for a state's recipe
// using the configured default noise level.
func (s *Synthesizer) GenerateMentalState(state models.MentalState, durationS, samplingRateHz float64, rng *rand.Rand) ([]float64, error) {
	recipe, err := s.Recipe(state)
	if err != nil {
		return nil, err
	}
	return s.GenerateMixedSignal(durationS, recipe, s.cfg.NoiseLevel, samplingRateHz, rng)
}

// GenerateERP produces a deterministic event-related potential: a Gaussian
// bump of height peakAmplitude centered at peakLatencyS with stddev widthS,
// on a zero baseline. No randomness is involved.
func (s *Synthesizer) GenerateERP(durationS, peakLatencyS, peakAmplitude, widthS, samplingRateHz float64) ([]float64, error) {
	if err := validateTiming(durationS, samplingRateHz); err != nil {
		return nil, err
	}
	if widthS <= 0 {
		return nil, fmt.Errorf("%w: width_s must be positive, got %v", models.ErrInvalidParameter, widthS)
	}

	n := sampleCount(durationS, samplingRateHz)
	erp := make([]float64, n)
	for i := 0; i < n; i++ {
		t := float64(i) / samplingRateHz
		d := t - peakLatencyS
		erp[i] = peakAmplitude * math.Exp(-(d*d)/(2*widthS*widthS))
	}
	return erp, nil
}

// GenerateChannelData wraps GenerateMixedSignal for a state's recipe into an
// EEGChannelSignal with channel metadata and the band composition used.
func (s *Synthesizer) GenerateChannelData(channelName string, durationS float64, state models.MentalState, noiseLevel, samplingRateHz float64, rng *rand.Rand) (models.EEGChannelSignal, error) {
	recipe, err := s.Recipe(state)
	if err != nil {
		return models.EEGChannelSignal{}, err
	}
	signal, err := s.GenerateMixedSignal(durationS, recipe, noiseLevel, samplingRateHz, rng)
	if err != nil {
		return models.EEGChannelSignal{}, err
	}

	var totalWeight float64
	for _, w := range recipe {
		totalWeight += w
	}
	composition := make(map[string]models.BandComponent, len(recipe))
	for name, w := range recipe {
		band := s.cfg.Bands[name]
		composition[name] = models.BandComponent{
			FreqLowHz:  band.LowHz,
			FreqHighHz: band.HighHz,
			Amplitude:  w / totalWeight,
			Weight:     w,
		}
	}

	return models.EEGChannelSignal{
		ChannelName:     channelName,
		SamplingRateHz:  samplingRateHz,
		DurationS:       durationS,
		State:           state,
		Samples:         signal,
		BandComposition: composition,
	}, nil
}

// GenerateMontage generates one channel per name. Channels are independent
// draws from the single shared rng stream: the montage as a whole is
// reproducible for a given seed, but channels are not correlated with each
// other. Reusing an identically seeded rng per channel yields identical
// channels.
func (s *Synthesizer) GenerateMontage(channelNames []string, durationS float64, state models.MentalState, samplingRateHz float64, rng *rand.Rand) ([]models.EEGChannelSignal, error) {
	if len(channelNames) == 0 {
		return nil, fmt.Errorf("%w: channel_names must not be empty", models.ErrInvalidParameter)
	}

	montage := make([]models.EEGChannelSignal, 0, len(channelNames))
	for _, name := range channelNames {
		channel, err := s.GenerateChannelData(name, durationS, state, s.cfg.NoiseLevel, samplingRateHz, rng)
		if err != nil {
			return nil, err
		}
		montage = append(montage, channel)
	}
	return montage, nil
}
