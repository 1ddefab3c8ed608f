package simulation

import (
	"math"
	"testing"

	"github.com/neurosim-go/neurosim/internal/models"
)

// AssertMeanRateNear asserts that the mean realized firing rate across all
// spike trains in all ticks falls within [want-tol, want+tol].
func AssertMeanRateNear(t *testing.T, result SimulationResult, want, tol float64) {
	t.Helper()
	trains := result.AllTrains()
	if len(trains) == 0 {
		t.Fatal("AssertMeanRateNear: no spike trains")
	}
	var sum float64
	for _, tr := range trains {
		sum += tr.RealizedRate()
	}
	mean := sum / float64(len(trains))
	if math.Abs(mean-want) > tol {
		t.Errorf("AssertMeanRateNear: mean realized rate %.3f Hz not within %.3f of %.3f (n=%d)",
			mean, tol, want, len(trains))
	}
}

// AssertSpikeInvariants asserts the structural invariants of every spike
// train: strictly increasing timestamps, each within [0, duration).
func AssertSpikeInvariants(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, tr := range result.AllTrains() {
		prev := -1.0
		for i, ts := range tr.Timestamps {
			if ts < 0 || ts >= tr.DurationS {
				t.Errorf("AssertSpikeInvariants: neuron %d spike %d at %.6f outside [0, %.3f)",
					tr.NeuronID, i, ts, tr.DurationS)
			}
			if ts <= prev {
				t.Errorf("AssertSpikeInvariants: neuron %d spike %d at %.6f not after %.6f",
					tr.NeuronID, i, ts, prev)
			}
			prev = ts
		}
	}
}

// AssertMinGap asserts that consecutive spikes in every train are separated
// by at least minGap seconds.
func AssertMinGap(t *testing.T, result SimulationResult, minGap float64) {
	t.Helper()
	for _, tr := range result.AllTrains() {
		for i := 1; i < len(tr.Timestamps); i++ {
			gap := tr.Timestamps[i] - tr.Timestamps[i-1]
			if gap < minGap {
				t.Errorf("AssertMinGap: neuron %d gap %.6f < %.6f between spikes %d and %d",
					tr.NeuronID, gap, minGap, i-1, i)
			}
		}
	}
}

// AssertEEGSampleCounts asserts that every channel in every tick has exactly
// round(duration * samplingRate) samples.
func AssertEEGSampleCounts(t *testing.T, result SimulationResult) {
	t.Helper()
	for _, tr := range result.Ticks {
		for _, ch := range tr.Sample.EEGChannels {
			want := int(math.Round(ch.DurationS * ch.SamplingRateHz))
			if len(ch.Samples) != want {
				t.Errorf("AssertEEGSampleCounts: tick %d channel %s has %d samples, want %d",
					tr.Index, ch.ChannelName, len(ch.Samples), want)
			}
		}
	}
}

// AssertAmplitudeBounded asserts that no EEG sample in any tick exceeds
// maxAbs in absolute value.
func AssertAmplitudeBounded(t *testing.T, result SimulationResult, maxAbs float64) {
	t.Helper()
	for _, tr := range result.Ticks {
		for _, ch := range tr.Sample.EEGChannels {
			if peak := ch.PeakAmplitude(); peak > maxAbs {
				t.Errorf("AssertAmplitudeBounded: tick %d channel %s peak %.4f > %.4f",
					tr.Index, ch.ChannelName, peak, maxAbs)
			}
		}
	}
}

// AssertStateDistribution asserts that the ticks' states match the expected
// counts exactly.
func AssertStateDistribution(t *testing.T, result SimulationResult, want map[models.MentalState]int) {
	t.Helper()
	got := make(map[models.MentalState]int)
	for _, tr := range result.Ticks {
		got[tr.Sample.State]++
	}
	for state, n := range want {
		if got[state] != n {
			t.Errorf("AssertStateDistribution: state %s count %d, want %d", state, got[state], n)
		}
	}
	for state, n := range got {
		if _, ok := want[state]; !ok {
			t.Errorf("AssertStateDistribution: unexpected state %s (count %d)", state, n)
		}
	}
}

// AssertRollsInState asserts that every recorded roll resolved to one of the
// allowed mental states.
func AssertRollsInState(t *testing.T, result SimulationResult, allowed ...models.MentalState) {
	t.Helper()
	ok := make(map[models.MentalState]bool, len(allowed))
	for _, s := range allowed {
		ok[s] = true
	}
	for i, roll := range result.Rolls {
		if !ok[roll.State] {
			t.Errorf("AssertRollsInState: roll %d (%s) state %s not in %v",
				i, roll.CharacterName, roll.State, allowed)
		}
	}
}

// AssertRollRatesWithin asserts that every roll's mean firing rate falls in
// [minHz, maxHz]. Use this to check the intuition transform's rate mapping.
func AssertRollRatesWithin(t *testing.T, result SimulationResult, minHz, maxHz float64) {
	t.Helper()
	for i, roll := range result.Rolls {
		if roll.MeanFiringRate < minHz || roll.MeanFiringRate > maxHz {
			t.Errorf("AssertRollRatesWithin: roll %d (%s) rate %.3f Hz not in [%.1f, %.1f]",
				i, roll.CharacterName, roll.MeanFiringRate, minHz, maxHz)
		}
	}
}

// AssertSamplesIdentical asserts that two ticks produced identical spike
// timestamps and EEG samples. Use this for determinism checks across
// identically seeded runs.
func AssertSamplesIdentical(t *testing.T, a, b models.BrainActivitySample) {
	t.Helper()
	if len(a.SpikeTrains) != len(b.SpikeTrains) {
		t.Fatalf("AssertSamplesIdentical: train counts differ: %d vs %d", len(a.SpikeTrains), len(b.SpikeTrains))
	}
	for i := range a.SpikeTrains {
		ta, tb := a.SpikeTrains[i], b.SpikeTrains[i]
		if len(ta.Timestamps) != len(tb.Timestamps) {
			t.Errorf("AssertSamplesIdentical: neuron %d spike counts differ: %d vs %d",
				ta.NeuronID, len(ta.Timestamps), len(tb.Timestamps))
			continue
		}
		for j := range ta.Timestamps {
			if ta.Timestamps[j] != tb.Timestamps[j] {
				t.Errorf("AssertSamplesIdentical: neuron %d spike %d differs: %v vs %v",
					ta.NeuronID, j, ta.Timestamps[j], tb.Timestamps[j])
				break
			}
		}
	}
	if len(a.EEGChannels) != len(b.EEGChannels) {
		t.Fatalf("AssertSamplesIdentical: channel counts differ: %d vs %d", len(a.EEGChannels), len(b.EEGChannels))
	}
	for i := range a.EEGChannels {
		ca, cb := a.EEGChannels[i], b.EEGChannels[i]
		if ca.ChannelName != cb.ChannelName {
			t.Errorf("AssertSamplesIdentical: channel %d name differs: %s vs %s", i, ca.ChannelName, cb.ChannelName)
		}
		for j := range ca.Samples {
			if ca.Samples[j] != cb.Samples[j] {
				t.Errorf("AssertSamplesIdentical: channel %s sample %d differs: %v vs %v",
					ca.ChannelName, j, ca.Samples[j], cb.Samples[j])
				break
			}
		}
	}
}

// MeanRealizedRate returns the mean realized firing rate across all trains.
func MeanRealizedRate(result SimulationResult) float64 {
	trains := result.AllTrains()
	if len(trains) == 0 {
		return 0
	}
	var sum float64
	for _, tr := range trains {
		sum += tr.RealizedRate()
	}
	return sum / float64(len(trains))
}

// MinInterSpikeGap returns the smallest gap between consecutive spikes
// across all trains, or +Inf when no train has two spikes.
func MinInterSpikeGap(result SimulationResult) float64 {
	min := math.Inf(1)
	for _, tr := range result.AllTrains() {
		for i := 1; i < len(tr.Timestamps); i++ {
			if gap := tr.Timestamps[i] - tr.Timestamps[i-1]; gap < min {
				min = gap
			}
		}
	}
	return min
}
