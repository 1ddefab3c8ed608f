package simulation

import (
	"testing"

	"github.com/neurosim-go/neurosim/internal/game"
	"github.com/neurosim-go/neurosim/internal/models"
)

// A large favorable margin (wisdom 18 vs DC 12) always resolves to the
// focused tier with its 30-60 Hz rate range.
func TestIntuitionFavorableMargin(t *testing.T) {
	r := NewRunner(t, 13)
	result := r.Run(Scenario{
		Name: "intuition-favorable",
		Checks: RepeatChecks(5, game.Check{
			CharacterName: "Gandalf",
			Wisdom:        18,
			Difficulty:    12,
			DurationS:     1.0,
		}),
	})

	if len(result.Rolls) != 5 {
		t.Fatalf("got %d rolls, want 5", len(result.Rolls))
	}
	AssertRollsInState(t, result, models.StateFocused)
	// Population mean of rates drawn from [30, 60) stays near 45.
	AssertRollRatesWithin(t, result, 25.0, 65.0)
}

// A large unfavorable margin (wisdom 8 vs DC 20) resolves to drowsy with
// its 5-20 Hz range.
func TestIntuitionUnfavorableMargin(t *testing.T) {
	r := NewRunner(t, 17)
	result := r.Run(Scenario{
		Name: "intuition-unfavorable",
		Checks: RepeatChecks(5, game.Check{
			CharacterName: "Pippin",
			Wisdom:        8,
			Difficulty:    20,
			DurationS:     1.0,
		}),
	})

	AssertRollsInState(t, result, models.StateDrowsy)
	AssertRollRatesWithin(t, result, 3.0, 22.0)
}

// Over many checks the d20 stays in range and totals follow roll + modifier.
func TestIntuitionDiceConsistency(t *testing.T) {
	r := NewRunner(t, 29)
	result := r.Run(Scenario{
		Name: "intuition-dice",
		Checks: RepeatChecks(40, game.Check{
			CharacterName: "Legolas",
			Wisdom:        14,
			Difficulty:    13,
			DurationS:     0.5,
		}),
	})

	for i, roll := range result.Rolls {
		if roll.D20Roll < 1 || roll.D20Roll > 20 {
			t.Errorf("roll %d: d20 = %d out of [1, 20]", i, roll.D20Roll)
		}
		if roll.WisdomModifier != 2 {
			t.Errorf("roll %d: modifier = %d, want 2 for wisdom 14", i, roll.WisdomModifier)
		}
		if roll.TotalScore != roll.D20Roll+roll.WisdomModifier {
			t.Errorf("roll %d: total %d != %d + %d", i, roll.TotalScore, roll.D20Roll, roll.WisdomModifier)
		}
		if roll.Success != (roll.TotalScore >= roll.Difficulty) {
			t.Errorf("roll %d: success flag inconsistent with total %d vs DC %d", i, roll.TotalScore, roll.Difficulty)
		}
	}

	stats := r.RollAPI().Stats()
	if stats.TotalChecks != 40 {
		t.Errorf("stats total = %d, want 40", stats.TotalChecks)
	}
	if stats.AverageD20Roll < 5.0 || stats.AverageD20Roll > 16.0 {
		t.Errorf("average d20 roll %.2f implausible for 40 rolls", stats.AverageD20Roll)
	}
}

// Every check also lands a sample in the aggregator history, so summaries
// track check volume.
func TestIntuitionFeedsHistory(t *testing.T) {
	r := NewRunner(t, 37)
	r.Run(Scenario{
		Name: "intuition-history",
		Checks: RepeatChecks(3, game.Check{
			CharacterName: "Gimli",
			Wisdom:        10,
			Difficulty:    10,
			DurationS:     1.0,
		}),
	})

	summary := r.Aggregator().SummaryStats()
	if summary.TotalSimulations != 3 {
		t.Errorf("history has %d simulations, want 3", summary.TotalSimulations)
	}

	// Recomputing without new activity is idempotent.
	again := r.Aggregator().SummaryStats()
	if summary.TotalSpikes != again.TotalSpikes || summary.AverageFiringRate != again.AverageFiringRate {
		t.Errorf("summary not idempotent: %+v vs %+v", summary, again)
	}
}
