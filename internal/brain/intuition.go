package brain

import (
	"fmt"
	"math"
	"math/rand/v2"

	"github.com/neurosim-go/neurosim/internal/models"
)

// IntuitionTier maps a wisdom-vs-difficulty margin onto a mental state and
// a target firing-rate range. Tiers are matched in order against
// margin = wisdom - difficulty; the first tier with margin >= MinMargin wins,
// so the table must be ordered by descending MinMargin with a catch-all last.
type IntuitionTier struct {
	MinMargin int                `json:"min_margin" yaml:"min_margin"`
	State     models.MentalState `json:"state" yaml:"state"`
	RateMinHz float64            `json:"rate_min_hz" yaml:"rate_min_hz"`
	RateMaxHz float64            `json:"rate_max_hz" yaml:"rate_max_hz"`
}

// DefaultIntuitionTiers returns the default transform: the further wisdom
// exceeds difficulty, the more engaged the state and the higher the target
// firing rate — read downstream as "more confident intuition".
func DefaultIntuitionTiers() []IntuitionTier {
	return []IntuitionTier{
		{MinMargin: 5, State: models.StateFocused, RateMinHz: 30, RateMaxHz: 60},
		{MinMargin: 0, State: models.StateActive, RateMinHz: 20, RateMaxHz: 45},
		{MinMargin: -5, State: models.StateRelaxed, RateMinHz: 10, RateMaxHz: 30},
		{MinMargin: math.MinInt, State: models.StateDrowsy, RateMinHz: 5, RateMaxHz: 20},
	}
}

// attribute bounds for gaming checks, matching d20 convention.
const (
	minAttribute = 1
	maxAttribute = 30
)

// ResolveIntuition returns the tier matching (difficulty, wisdom) without
// generating any activity.
func (a *Aggregator) ResolveIntuition(difficulty, wisdom int) (IntuitionTier, error) {
	if difficulty < minAttribute || difficulty > maxAttribute {
		return IntuitionTier{}, fmt.Errorf("%w: difficulty %d outside [%d, %d]", models.ErrInvalidParameter, difficulty, minAttribute, maxAttribute)
	}
	if wisdom < minAttribute || wisdom > maxAttribute {
		return IntuitionTier{}, fmt.Errorf("%w: character_wisdom %d outside [%d, %d]", models.ErrInvalidParameter, wisdom, minAttribute, maxAttribute)
	}

	margin := wisdom - difficulty
	for _, tier := range a.cfg.IntuitionTiers {
		if margin >= tier.MinMargin {
			return tier, nil
		}
	}
	// Misconfigured table without a catch-all; treat as unsupported rather
	// than inventing a state.
	return IntuitionTier{}, fmt.Errorf("%w: no intuition tier matches margin %d", models.ErrUnsupportedMode, margin)
}

// GenerateIntuitionSignal maps (difficulty, wisdom) through the configured
// tier table and simulates activity in the resulting state and rate range.
// The sample's Metrics.MeanFiringRate is the scalar the gaming collaborator
// reads; no dice or success semantics live here.
func (a *Aggregator) GenerateIntuitionSignal(difficulty, wisdom int, durationS float64, rng *rand.Rand) (models.BrainActivitySample, error) {
	tier, err := a.ResolveIntuition(difficulty, wisdom)
	if err != nil {
		return models.BrainActivitySample{}, err
	}
	return a.SimulateActivity(durationS, tier.State, tier.RateMinHz, tier.RateMaxHz, rng)
}
