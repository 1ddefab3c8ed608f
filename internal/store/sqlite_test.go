package store

import (
	"context"
	"testing"
	"time"

	"github.com/neurosim-go/neurosim/internal/game"
	"github.com/neurosim-go/neurosim/internal/models"
)

func newTestStore(t *testing.T) *SessionStore {
	t.Helper()
	s, err := NewSessionStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewSessionStore() error: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func testSample(id string, state models.MentalState) models.BrainActivitySample {
	return models.BrainActivitySample{
		ID:        id,
		Timestamp: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC),
		DurationS: 1.0,
		State:     state,
		SpikeTrains: []models.SpikeTrain{
			{NeuronID: 0, RateHz: 10, DurationS: 1.0, Model: models.SpikeModelPoisson, Timestamps: []float64{0.1, 0.5, 0.9}},
			{NeuronID: 1, RateHz: 15, DurationS: 1.0, Model: models.SpikeModelPoisson, Timestamps: nil},
		},
		EEGChannels: []models.EEGChannelSignal{
			{ChannelName: "C3", SamplingRateHz: 4, DurationS: 1.0, State: state, Samples: []float64{0.1, -0.2, 0.3, -0.4}},
		},
		Metrics: models.ActivityMetrics{MeanFiringRate: 1.5, BandPower: map[string]float64{"beta": 0.2}},
	}
}

func TestSaveAndGetSample(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	sample := testSample(models.NewSampleID(), models.StateFocused)
	if err := s.SaveSample(ctx, sample); err != nil {
		t.Fatalf("SaveSample() error: %v", err)
	}

	got, err := s.GetSample(ctx, sample.ID)
	if err != nil {
		t.Fatalf("GetSample() error: %v", err)
	}
	if got.ID != sample.ID {
		t.Errorf("ID = %s, want %s", got.ID, sample.ID)
	}
	if got.State != models.StateFocused {
		t.Errorf("State = %v, want focused", got.State)
	}
	if got.TotalSpikes() != 3 {
		t.Errorf("TotalSpikes = %d, want 3", got.TotalSpikes())
	}
	if len(got.EEGChannels) != 1 || len(got.EEGChannels[0].Samples) != 4 {
		t.Errorf("EEG payload not preserved: %+v", got.EEGChannels)
	}
	if got.Metrics.MeanFiringRate != 1.5 {
		t.Errorf("MeanFiringRate = %v, want 1.5", got.Metrics.MeanFiringRate)
	}
}

func TestSaveSample_RequiresID(t *testing.T) {
	s := newTestStore(t)
	sample := testSample("", models.StateActive)
	if err := s.SaveSample(context.Background(), sample); err == nil {
		t.Error("expected error for sample without ID")
	}
}

func TestGetSample_NotFound(t *testing.T) {
	s := newTestStore(t)
	if _, err := s.GetSample(context.Background(), "missing"); err == nil {
		t.Error("expected error for missing sample")
	}
}

func TestListSamples(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i, state := range []models.MentalState{models.StateFocused, models.StateDrowsy, models.StateFocused} {
		sample := testSample(models.NewSampleID(), state)
		sample.Timestamp = sample.Timestamp.Add(time.Duration(i) * time.Minute)
		if err := s.SaveSample(ctx, sample); err != nil {
			t.Fatalf("SaveSample() error: %v", err)
		}
	}

	rows, err := s.ListSamples(ctx, 0)
	if err != nil {
		t.Fatalf("ListSamples() error: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("got %d rows, want 3", len(rows))
	}
	// Newest first.
	if !rows[0].CreatedAt.After(rows[2].CreatedAt) {
		t.Errorf("rows not ordered newest first: %v, %v", rows[0].CreatedAt, rows[2].CreatedAt)
	}

	limited, err := s.ListSamples(ctx, 2)
	if err != nil {
		t.Fatalf("ListSamples(limit) error: %v", err)
	}
	if len(limited) != 2 {
		t.Errorf("got %d rows with limit 2", len(limited))
	}
}

func TestSaveAndListRolls(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	result := game.CheckResult{
		CharacterName:  "Gandalf",
		Context:        "detect hidden trap",
		D20Roll:        17,
		WisdomModifier: 4,
		TotalScore:     21,
		Difficulty:     12,
		Wisdom:         18,
		Success:        true,
		SampleID:       models.NewSampleID(),
		State:          models.StateFocused,
		TotalSpikes:    120,
		MeanFiringRate: 40.5,
	}
	if err := s.SaveRoll(ctx, result); err != nil {
		t.Fatalf("SaveRoll() error: %v", err)
	}

	rolls, err := s.ListRolls(ctx, 0)
	if err != nil {
		t.Fatalf("ListRolls() error: %v", err)
	}
	if len(rolls) != 1 {
		t.Fatalf("got %d rolls, want 1", len(rolls))
	}
	got := rolls[0]
	if got.CharacterName != "Gandalf" || got.D20Roll != 17 || !got.Success {
		t.Errorf("roll not preserved: %+v", got)
	}
	if got.State != models.StateFocused {
		t.Errorf("State = %v, want focused", got.State)
	}
	if got.MeanFiringRate != 40.5 {
		t.Errorf("MeanFiringRate = %v, want 40.5", got.MeanFiringRate)
	}
}

func TestSessionStats(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	if err := s.SaveSample(ctx, testSample(models.NewSampleID(), models.StateFocused)); err != nil {
		t.Fatalf("SaveSample() error: %v", err)
	}
	if err := s.SaveSample(ctx, testSample(models.NewSampleID(), models.StateDrowsy)); err != nil {
		t.Fatalf("SaveSample() error: %v", err)
	}
	if err := s.SaveRoll(ctx, game.CheckResult{CharacterName: "Frodo", D20Roll: 3, State: models.StateRelaxed}); err != nil {
		t.Fatalf("SaveRoll() error: %v", err)
	}

	stats, err := s.SessionStats(ctx)
	if err != nil {
		t.Fatalf("SessionStats() error: %v", err)
	}
	if stats.TotalSamples != 2 {
		t.Errorf("TotalSamples = %d, want 2", stats.TotalSamples)
	}
	if stats.TotalRolls != 1 {
		t.Errorf("TotalRolls = %d, want 1", stats.TotalRolls)
	}
	if stats.TotalSpikes != 6 {
		t.Errorf("TotalSpikes = %d, want 6", stats.TotalSpikes)
	}
	if stats.TotalDurationS != 2.0 {
		t.Errorf("TotalDurationS = %v, want 2.0", stats.TotalDurationS)
	}
	if stats.AverageFiringRate != 1.5 {
		t.Errorf("AverageFiringRate = %v, want 1.5", stats.AverageFiringRate)
	}
	if stats.StateDistribution[models.StateFocused] != 1 || stats.StateDistribution[models.StateDrowsy] != 1 {
		t.Errorf("StateDistribution = %v", stats.StateDistribution)
	}
}

func TestSessionStats_Empty(t *testing.T) {
	s := newTestStore(t)
	stats, err := s.SessionStats(context.Background())
	if err != nil {
		t.Fatalf("SessionStats() error: %v", err)
	}
	if stats.TotalSamples != 0 || stats.TotalRolls != 0 || stats.AverageFiringRate != 0 {
		t.Errorf("empty stats = %+v", stats)
	}
}
