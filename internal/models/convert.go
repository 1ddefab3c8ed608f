package models

import "time"

// The ToMap conversions flatten core types into nested maps of primitives
// (numbers, strings, slices). Serialization collaborators — the JSONL trace
// writer, the SQLite payload column, CSV export — consume these rather than
// depending on the concrete struct layout.

// ToMap returns the spike train as a nested mapping of primitives.
func (t SpikeTrain) ToMap() map[string]interface{} {
	return map[string]interface{}{
		"neuron_id":     t.NeuronID,
		"rate_hz":       t.RateHz,
		"duration_s":    t.DurationS,
		"model":         t.Model.String(),
		"timestamps":    append([]float64(nil), t.Timestamps...),
		"spike_count":   t.SpikeCount(),
		"realized_rate": t.RealizedRate(),
	}
}

// ToMap returns the channel signal as a nested mapping of primitives.
func (c EEGChannelSignal) ToMap() map[string]interface{} {
	bands := make(map[string]interface{}, len(c.BandComposition))
	for name, b := range c.BandComposition {
		bands[name] = map[string]interface{}{
			"freq_low_hz":  b.FreqLowHz,
			"freq_high_hz": b.FreqHighHz,
			"amplitude":    b.Amplitude,
			"weight":       b.Weight,
		}
	}
	return map[string]interface{}{
		"channel_name":     c.ChannelName,
		"sampling_rate_hz": c.SamplingRateHz,
		"duration_s":       c.DurationS,
		"state":            c.State.String(),
		"n_samples":        len(c.Samples),
		"samples":          append([]float64(nil), c.Samples...),
		"band_composition": bands,
		"mean_amplitude":   c.MeanAbsAmplitude(),
		"peak_amplitude":   c.PeakAmplitude(),
	}
}

// ToMap returns the activity sample as a nested mapping of primitives.
func (s BrainActivitySample) ToMap() map[string]interface{} {
	trains := make([]interface{}, len(s.SpikeTrains))
	for i, t := range s.SpikeTrains {
		trains[i] = t.ToMap()
	}
	channels := make([]interface{}, len(s.EEGChannels))
	for i, c := range s.EEGChannels {
		channels[i] = c.ToMap()
	}
	return map[string]interface{}{
		"id":           s.ID,
		"timestamp":    s.Timestamp.Format(time.RFC3339Nano),
		"duration_s":   s.DurationS,
		"state":        s.State.String(),
		"n_neurons":    len(s.SpikeTrains),
		"n_channels":   len(s.EEGChannels),
		"total_spikes": s.TotalSpikes(),
		"spike_trains": trains,
		"eeg_channels": channels,
		"metrics": map[string]interface{}{
			"mean_firing_rate": s.Metrics.MeanFiringRate,
			"band_power":       s.Metrics.BandPower,
		},
	}
}
