// Package config provides unified configuration loading for neurosim.
// It supports loading from YAML files and environment variables.
//
// Every table the core would otherwise hardwire — channel lists, spike model
// parameters, band definitions, mental-state recipes, the intuition
// transform — is reachable here and overridable at construction time.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"

	"github.com/neurosim-go/neurosim/internal/brain"
	"github.com/neurosim-go/neurosim/internal/eeg"
	"github.com/neurosim-go/neurosim/internal/models"
	"github.com/neurosim-go/neurosim/internal/spikes"
)

// Config contains all neurosim configuration settings.
type Config struct {
	// Simulation configures the aggregator and spike synthesis.
	Simulation SimulationConfig `json:"simulation" yaml:"simulation"`

	// EEG configures waveform synthesis.
	EEG EEGConfig `json:"eeg" yaml:"eeg"`

	// Intuition is the difficulty-to-state/rate transform table, ordered
	// by descending min_margin with a catch-all last entry.
	Intuition []brain.IntuitionTier `json:"intuition" yaml:"intuition"`

	// Logging contains settings for operational and trace logging.
	Logging LoggingConfig `json:"logging" yaml:"logging"`

	// DataDir is where the session database and trace files live.
	// Defaults to ~/.neurosim.
	DataDir string `json:"data_dir,omitempty" yaml:"data_dir,omitempty"`
}

// SimulationConfig configures the simulated population.
type SimulationConfig struct {
	// NeuronCount is the number of simulated neurons.
	NeuronCount int `json:"neuron_count" yaml:"neuron_count"`

	// Channels is the EEG channel name list (10-20 system subset by default).
	Channels []string `json:"channels" yaml:"channels"`

	// SamplingRateHz is the EEG sampling rate.
	SamplingRateHz float64 `json:"sampling_rate_hz" yaml:"sampling_rate_hz"`

	// DefaultModel is the spike model used when none is requested:
	// "poisson", "refractory", or "burst".
	DefaultModel string `json:"default_model" yaml:"default_model"`

	// SpikeRateMinHz / SpikeRateMaxHz bound the default per-neuron rate draw.
	SpikeRateMinHz float64 `json:"spike_rate_min_hz" yaml:"spike_rate_min_hz"`
	SpikeRateMaxHz float64 `json:"spike_rate_max_hz" yaml:"spike_rate_max_hz"`

	// Spike holds the per-model tuning parameters.
	Spike spikes.Params `json:"spike" yaml:"spike"`
}

// EEGConfig configures waveform synthesis tables.
type EEGConfig struct {
	// NoiseLevel is the Gaussian noise stddev layered on state signals.
	NoiseLevel float64 `json:"noise_level" yaml:"noise_level"`

	// Components is the number of sinusoids summed per band.
	Components int `json:"components" yaml:"components"`

	// Bands maps band names to frequency ranges. Empty means the standard
	// delta/theta/alpha/beta/gamma table.
	Bands map[string]eeg.Band `json:"bands,omitempty" yaml:"bands,omitempty"`

	// Recipes maps mental state names to band-weight recipes. Empty means
	// the built-in recipe table.
	Recipes map[string]map[string]float64 `json:"recipes,omitempty" yaml:"recipes,omitempty"`
}

// LoggingConfig configures neurosim's logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "info" (default), "debug", or "trace".
	// "debug" enables the JSONL activity trace in DataDir.
	Level string `json:"level" yaml:"level"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Simulation: SimulationConfig{
			NeuronCount:    100,
			Channels:       brain.DefaultChannels(),
			SamplingRateHz: 250.0,
			DefaultModel:   models.SpikeModelPoisson.String(),
			SpikeRateMinHz: 5.0,
			SpikeRateMaxHz: 50.0,
			Spike:          spikes.DefaultParams(),
		},
		EEG: EEGConfig{
			NoiseLevel: 0.2,
			Components: 3,
		},
		Intuition: brain.DefaultIntuitionTiers(),
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from the default locations and environment variables.
// Order: defaults -> ~/.neurosim/config.yaml -> environment variables.
func Load() (*Config, error) {
	cfg := Default()

	homeDir, err := os.UserHomeDir()
	if err == nil {
		configPath := filepath.Join(homeDir, ".neurosim", "config.yaml")
		if _, statErr := os.Stat(configPath); statErr == nil {
			fileConfig, loadErr := LoadFromFile(configPath)
			if loadErr != nil {
				return nil, fmt.Errorf("loading config file: %w", loadErr)
			}
			cfg = fileConfig
		}
	}

	applyEnvOverrides(cfg)
	return cfg, nil
}

// LoadFromFile loads configuration from a specific YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Simulation.NeuronCount <= 0 {
		return fmt.Errorf("neuron_count must be positive, got %d", c.Simulation.NeuronCount)
	}
	if len(c.Simulation.Channels) == 0 {
		return fmt.Errorf("channels must not be empty")
	}
	if c.Simulation.SamplingRateHz <= 0 {
		return fmt.Errorf("sampling_rate_hz must be positive, got %v", c.Simulation.SamplingRateHz)
	}
	if !models.SpikeModel(c.Simulation.DefaultModel).Valid() {
		return fmt.Errorf("invalid default_model: %s (valid: %v)", c.Simulation.DefaultModel, models.SpikeModels)
	}
	if c.Simulation.SpikeRateMinHz <= 0 || c.Simulation.SpikeRateMaxHz < c.Simulation.SpikeRateMinHz {
		return fmt.Errorf("spike rate range [%v, %v] must be positive and ordered",
			c.Simulation.SpikeRateMinHz, c.Simulation.SpikeRateMaxHz)
	}
	if c.Simulation.Spike.RefractoryPeriodS <= 0 {
		return fmt.Errorf("refractory_period_s must be positive, got %v", c.Simulation.Spike.RefractoryPeriodS)
	}
	if c.Simulation.Spike.BurstRateHz <= 0 {
		return fmt.Errorf("burst_rate_hz must be positive, got %v", c.Simulation.Spike.BurstRateHz)
	}
	if c.Simulation.Spike.SpikesPerBurst <= 0 {
		return fmt.Errorf("spikes_per_burst must be positive, got %d", c.Simulation.Spike.SpikesPerBurst)
	}
	if c.Simulation.Spike.IntraBurstIntervalS <= 0 {
		return fmt.Errorf("intra_burst_interval_s must be positive, got %v", c.Simulation.Spike.IntraBurstIntervalS)
	}
	if c.EEG.NoiseLevel < 0 {
		return fmt.Errorf("noise_level must be non-negative, got %v", c.EEG.NoiseLevel)
	}
	for name, band := range c.EEG.Bands {
		if band.LowHz <= 0 || band.HighHz <= band.LowHz {
			return fmt.Errorf("band %s range [%v, %v] must be positive and ordered", name, band.LowHz, band.HighHz)
		}
	}
	for state := range c.EEG.Recipes {
		if !models.MentalState(state).Valid() {
			return fmt.Errorf("invalid recipe state: %s (valid: %v)", state, models.MentalStates)
		}
	}
	for _, tier := range c.Intuition {
		if !tier.State.Valid() {
			return fmt.Errorf("invalid intuition tier state: %s", tier.State)
		}
		if tier.RateMinHz <= 0 || tier.RateMaxHz < tier.RateMinHz {
			return fmt.Errorf("intuition tier rate range [%v, %v] must be positive and ordered", tier.RateMinHz, tier.RateMaxHz)
		}
	}

	validLevels := map[string]bool{"info": true, "debug": true, "trace": true}
	if c.Logging.Level != "" && !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s (valid: info, debug, trace, or empty for default)", c.Logging.Level)
	}
	return nil
}

// ResolveDataDir returns the effective data directory, defaulting to
// ~/.neurosim when unset.
func (c *Config) ResolveDataDir() string {
	if c.DataDir != "" {
		return c.DataDir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".neurosim"
	}
	return filepath.Join(homeDir, ".neurosim")
}

// SpikeParams returns the spike synthesizer parameters.
func (c *Config) SpikeParams() spikes.Params {
	return c.Simulation.Spike
}

// EEGSynthConfig builds the eeg synthesizer config from the tables here.
func (c *Config) EEGSynthConfig() eeg.Config {
	out := eeg.Config{
		Components: c.EEG.Components,
		NoiseLevel: c.EEG.NoiseLevel,
	}
	if len(c.EEG.Bands) > 0 {
		out.Bands = c.EEG.Bands
	}
	if len(c.EEG.Recipes) > 0 {
		out.Recipes = make(map[models.MentalState]eeg.Recipe, len(c.EEG.Recipes))
		for state, recipe := range c.EEG.Recipes {
			out.Recipes[models.MentalState(state)] = recipe
		}
	}
	return out
}

// BrainConfig builds the aggregator config.
func (c *Config) BrainConfig() brain.Config {
	return brain.Config{
		NeuronCount:    c.Simulation.NeuronCount,
		Channels:       c.Simulation.Channels,
		SamplingRateHz: c.Simulation.SamplingRateHz,
		DefaultModel:   models.SpikeModel(c.Simulation.DefaultModel),
		SpikeRateMinHz: c.Simulation.SpikeRateMinHz,
		SpikeRateMaxHz: c.Simulation.SpikeRateMaxHz,
		IntuitionTiers: c.Intuition,
	}
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("NEUROSIM_LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("NEUROSIM_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	if v := os.Getenv("NEUROSIM_NEURON_COUNT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Simulation.NeuronCount = n
		}
	}
	if v := os.Getenv("NEUROSIM_SAMPLING_RATE_HZ"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Simulation.SamplingRateHz = f
		}
	}
}
