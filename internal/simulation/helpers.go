package simulation

import (
	"github.com/neurosim-go/neurosim/internal/game"
	"github.com/neurosim-go/neurosim/internal/models"
)

// RepeatTicks returns n copies of the given tick. Use this for convergence
// scenarios that need many independent draws.
func RepeatTicks(n int, tick Tick) []Tick {
	out := make([]Tick, n)
	for i := range out {
		out[i] = tick
	}
	return out
}

// FixedRateTick builds a tick whose every neuron fires at exactly rateHz
// (a degenerate rate range), for rate convergence assertions.
func FixedRateTick(state models.MentalState, durationS, rateHz float64) Tick {
	return Tick{
		DurationS: durationS,
		State:     state,
		RateMinHz: rateHz,
		RateMaxHz: rateHz,
	}
}

// RepeatChecks returns n copies of the same intuition check.
func RepeatChecks(n int, check game.Check) []game.Check {
	out := make([]game.Check, n)
	for i := range out {
		out[i] = check
	}
	return out
}
