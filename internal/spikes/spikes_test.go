package spikes

import (
	"errors"
	"math"
	"math/rand/v2"
	"testing"

	"github.com/neurosim-go/neurosim/internal/models"
)

func newRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

func TestGenerate_InvalidParameters(t *testing.T) {
	s := NewDefault()

	tests := []struct {
		name     string
		rate     float64
		duration float64
		model    models.SpikeModel
		wantErr  error
	}{
		{name: "zero rate", rate: 0, duration: 1, model: models.SpikeModelPoisson, wantErr: models.ErrInvalidParameter},
		{name: "negative rate", rate: -5, duration: 1, model: models.SpikeModelPoisson, wantErr: models.ErrInvalidParameter},
		{name: "zero duration", rate: 10, duration: 0, model: models.SpikeModelPoisson, wantErr: models.ErrInvalidParameter},
		{name: "negative duration", rate: 10, duration: -1, model: models.SpikeModelBurst, wantErr: models.ErrInvalidParameter},
		{name: "unknown model", rate: 10, duration: 1, model: models.SpikeModel("tonic"), wantErr: models.ErrUnsupportedMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.Generate(0, tt.rate, tt.duration, tt.model, newRand(1))
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Generate() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestGenerate_InvalidModelParams(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Params)
		model  models.SpikeModel
	}{
		{name: "zero refractory period", mutate: func(p *Params) { p.RefractoryPeriodS = 0 }, model: models.SpikeModelRefractory},
		{name: "negative refractory period", mutate: func(p *Params) { p.RefractoryPeriodS = -0.002 }, model: models.SpikeModelRefractory},
		{name: "zero burst rate", mutate: func(p *Params) { p.BurstRateHz = 0 }, model: models.SpikeModelBurst},
		{name: "zero spikes per burst", mutate: func(p *Params) { p.SpikesPerBurst = 0 }, model: models.SpikeModelBurst},
		{name: "negative intra-burst interval", mutate: func(p *Params) { p.IntraBurstIntervalS = -0.5 }, model: models.SpikeModelBurst},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := DefaultParams()
			tt.mutate(&params)
			train, err := New(params).Generate(0, 10.0, 5.0, tt.model, newRand(1))
			if !errors.Is(err, models.ErrInvalidParameter) {
				t.Errorf("Generate() error = %v, want ErrInvalidParameter", err)
			}
			// A rejected train must never leak timestamps, negative or
			// otherwise.
			if len(train.Timestamps) != 0 {
				t.Errorf("rejected train carries %d timestamps: %v", len(train.Timestamps), train.Timestamps)
			}
		})
	}
}

// Bad burst params must not affect models that do not use them.
func TestGenerate_ParamsCheckedPerModel(t *testing.T) {
	params := DefaultParams()
	params.IntraBurstIntervalS = -0.5
	s := New(params)

	if _, err := s.Generate(0, 10.0, 1.0, models.SpikeModelPoisson, newRand(1)); err != nil {
		t.Errorf("poisson rejected over unused burst params: %v", err)
	}
	if _, err := s.Generate(0, 10.0, 1.0, models.SpikeModelRefractory, newRand(1)); err != nil {
		t.Errorf("refractory rejected over unused burst params: %v", err)
	}
}

func TestGenerate_TimestampsStrictlyIncreasingInRange(t *testing.T) {
	s := NewDefault()
	duration := 3.0

	for _, model := range models.SpikeModels {
		t.Run(model.String(), func(t *testing.T) {
			train, err := s.Generate(0, 40.0, duration, model, newRand(7))
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			for i, ts := range train.Timestamps {
				if ts < 0 || ts >= duration {
					t.Errorf("timestamp[%d] = %v outside [0, %v)", i, ts, duration)
				}
				if i > 0 && ts <= train.Timestamps[i-1] {
					t.Errorf("timestamps not strictly increasing at %d: %v <= %v", i, ts, train.Timestamps[i-1])
				}
			}
		})
	}
}

func TestGenerate_PoissonCountConverges(t *testing.T) {
	s := NewDefault()
	rng := newRand(42)

	const (
		rate     = 20.0
		duration = 5.0
		trials   = 200
	)

	var total int
	for i := 0; i < trials; i++ {
		train, err := s.Generate(0, rate, duration, models.SpikeModelPoisson, rng)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		total += train.SpikeCount()
	}

	mean := float64(total) / trials
	want := rate * duration // 100

	// Std of the per-trial count is 10, so the mean of 200 trials has
	// std ~0.7; a +-5 window is far outside noise for a fixed seed.
	if math.Abs(mean-want) > 5 {
		t.Errorf("mean spike count = %v, want %v +- 5", mean, want)
	}
}

func TestGenerate_Reproducible(t *testing.T) {
	s := NewDefault()

	for _, model := range models.SpikeModels {
		t.Run(model.String(), func(t *testing.T) {
			a, err := s.Generate(1, 20.0, 5.0, model, newRand(42))
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			b, err := s.Generate(1, 20.0, 5.0, model, newRand(42))
			if err != nil {
				t.Fatalf("Generate() error: %v", err)
			}
			if len(a.Timestamps) != len(b.Timestamps) {
				t.Fatalf("same seed produced %d vs %d spikes", len(a.Timestamps), len(b.Timestamps))
			}
			for i := range a.Timestamps {
				if a.Timestamps[i] != b.Timestamps[i] {
					t.Fatalf("timestamp[%d] differs: %v vs %v", i, a.Timestamps[i], b.Timestamps[i])
				}
			}
		})
	}
}

func TestGenerate_RefractoryEnforcesMinimumGap(t *testing.T) {
	params := DefaultParams()
	params.RefractoryPeriodS = 0.01
	s := New(params)

	// Nominal 500 Hz against a 10 ms dead time: realized rate must cap
	// below 100 Hz and every gap must respect the refractory period.
	train, err := s.Generate(0, 500.0, 10.0, models.SpikeModelRefractory, newRand(3))
	if err != nil {
		t.Fatalf("Generate() error: %v", err)
	}

	for i := 1; i < len(train.Timestamps); i++ {
		gap := train.Timestamps[i] - train.Timestamps[i-1]
		if gap < params.RefractoryPeriodS {
			t.Errorf("gap %v at index %d below refractory period %v", gap, i, params.RefractoryPeriodS)
		}
	}

	if realized := train.RealizedRate(); realized >= 1.0/params.RefractoryPeriodS {
		t.Errorf("realized rate %v not capped below %v", realized, 1.0/params.RefractoryPeriodS)
	}
	if train.SpikeCount() == 0 {
		t.Error("expected a non-empty refractory train at 500 Hz over 10 s")
	}
}

func TestGenerate_BurstStructure(t *testing.T) {
	params := DefaultParams()
	params.BurstRateHz = 3.0
	params.SpikesPerBurst = 4
	params.IntraBurstIntervalS = 0.005
	s := New(params)

	const (
		duration = 20.0
		trials   = 50
	)
	rng := newRand(11)

	var totalSpikes int
	for i := 0; i < trials; i++ {
		train, err := s.Generate(0, 1.0, duration, models.SpikeModelBurst, rng)
		if err != nil {
			t.Fatalf("Generate() error: %v", err)
		}
		totalSpikes += train.SpikeCount()

		for j := 1; j < len(train.Timestamps); j++ {
			if gap := train.Timestamps[j] - train.Timestamps[j-1]; gap <= 0 {
				t.Errorf("non-positive gap %v at index %d", gap, j)
			}
		}
	}

	// Expected onsets per trial = 3 Hz * 20 s = 60, each emitting ~4 spikes
	// (minus clipping/overlap). The mean spike count should land near 240.
	mean := float64(totalSpikes) / trials
	if mean < 180 || mean > 260 {
		t.Errorf("mean burst spike count = %v, want roughly 240", mean)
	}
}

func TestGeneratePopulation(t *testing.T) {
	s := NewDefault()

	trains, err := s.GeneratePopulation(10, 5.0, 50.0, 2.0, models.SpikeModelPoisson, newRand(9))
	if err != nil {
		t.Fatalf("GeneratePopulation() error: %v", err)
	}
	if len(trains) != 10 {
		t.Fatalf("got %d trains, want 10", len(trains))
	}
	for i, train := range trains {
		if train.NeuronID != i {
			t.Errorf("train %d has NeuronID %d", i, train.NeuronID)
		}
		if train.RateHz < 5.0 || train.RateHz >= 50.0 {
			t.Errorf("train %d rate %v outside [5, 50)", i, train.RateHz)
		}
	}
}

func TestGeneratePopulation_InvalidParameters(t *testing.T) {
	s := NewDefault()

	tests := []struct {
		name     string
		nNeurons int
		min, max float64
	}{
		{name: "zero neurons", nNeurons: 0, min: 5, max: 50},
		{name: "negative min rate", nNeurons: 5, min: -1, max: 50},
		{name: "inverted range", nNeurons: 5, min: 50, max: 5},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := s.GeneratePopulation(tt.nNeurons, tt.min, tt.max, 1.0, models.SpikeModelPoisson, newRand(1))
			if !errors.Is(err, models.ErrInvalidParameter) {
				t.Errorf("error = %v, want ErrInvalidParameter", err)
			}
		})
	}
}
