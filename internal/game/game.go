// Package game is the gaming integration layer over the synthesis core.
// It implements d20-style intuition checks backed by generated neural
// activity: the core supplies a sample and its mean firing rate, and this
// package owns the dice roll, success determination, and event callbacks.
package game

import (
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync"

	"github.com/neurosim-go/neurosim/internal/brain"
	"github.com/neurosim-go/neurosim/internal/models"
)

// Event names a callback hook point in the check lifecycle.
type Event string

const (
	EventPreRoll         Event = "pre_roll"
	EventPostRoll        Event = "post_roll"
	EventCriticalSuccess Event = "critical_success"
	EventCriticalFailure Event = "critical_failure"
)

// Events lists the recognized callback events.
var Events = []Event{EventPreRoll, EventPostRoll, EventCriticalSuccess, EventCriticalFailure}

// Valid returns true if the event is a recognized value.
func (e Event) Valid() bool {
	switch e {
	case EventPreRoll, EventPostRoll, EventCriticalSuccess, EventCriticalFailure:
		return true
	}
	return false
}

// CheckResult is the outcome of one intuition check.
type CheckResult struct {
	CharacterName string `json:"character_name"`
	Context       string `json:"context,omitempty"`

	// Dice semantics.
	D20Roll        int  `json:"d20_roll"`
	WisdomModifier int  `json:"wisdom_modifier"`
	TotalScore     int  `json:"total_score"`
	Difficulty     int  `json:"difficulty"`
	Wisdom         int  `json:"wisdom"`
	Success        bool `json:"success"`

	// Neural summary from the generated sample.
	SampleID       string             `json:"sample_id"`
	State          models.MentalState `json:"state"`
	TotalSpikes    int                `json:"total_spikes"`
	MeanFiringRate float64            `json:"mean_firing_rate"`
	DurationS      float64            `json:"duration_s"`
}

// Callback is invoked on check lifecycle events. A panicking or misbehaving
// callback must not abort the check; errors are logged and dropped.
type Callback func(CheckResult)

// RollAPI performs intuition checks against an aggregator and dispatches
// lifecycle callbacks. It keeps its own append-only log of results for
// statistics, guarded for single-owner use like the aggregator's history.
type RollAPI struct {
	brain  *brain.Aggregator
	logger *slog.Logger

	mu        sync.Mutex
	callbacks map[Event][]Callback
	results   []CheckResult
}

// NewRollAPI creates a roll API over the given aggregator. A nil logger
// falls back to slog.Default().
func NewRollAPI(b *brain.Aggregator, logger *slog.Logger) *RollAPI {
	if logger == nil {
		logger = slog.Default()
	}
	return &RollAPI{
		brain:     b,
		logger:    logger,
		callbacks: make(map[Event][]Callback),
	}
}

// RegisterCallback attaches a callback to a lifecycle event.
func (r *RollAPI) RegisterCallback(event Event, cb Callback) error {
	if !event.Valid() {
		return fmt.Errorf("%w: event %q (recognized: %v)", models.ErrUnsupportedMode, event, Events)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.callbacks[event] = append(r.callbacks[event], cb)
	return nil
}

func (r *RollAPI) trigger(event Event, result CheckResult) {
	r.mu.Lock()
	cbs := append([]Callback(nil), r.callbacks[event]...)
	r.mu.Unlock()

	for _, cb := range cbs {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("callback panicked", "event", string(event), "panic", rec)
				}
			}()
			cb(result)
		}()
	}
}

// IntuitionCheck generates the neural activity matching the check, rolls a
// d20 plus the character's wisdom modifier against difficulty, dispatches
// callbacks, and records the result.
//
// pre_roll fires before the signal and the dice are drawn: its CheckResult
// carries only the request fields (character, context, wisdom, difficulty),
// with the outcome fields still zero. The critical and post_roll callbacks
// receive the completed result.
func (r *RollAPI) IntuitionCheck(characterName string, wisdom, difficulty int, context string, durationS float64, rng *rand.Rand) (CheckResult, error) {
	r.trigger(EventPreRoll, CheckResult{
		CharacterName: characterName,
		Context:       context,
		Difficulty:    difficulty,
		Wisdom:        wisdom,
	})

	sample, err := r.brain.GenerateIntuitionSignal(difficulty, wisdom, durationS, rng)
	if err != nil {
		return CheckResult{}, fmt.Errorf("intuition signal for %s: %w", characterName, err)
	}

	roll := rng.IntN(20) + 1
	modifier := wisdomModifier(wisdom)
	total := roll + modifier

	result := CheckResult{
		CharacterName:  characterName,
		Context:        context,
		D20Roll:        roll,
		WisdomModifier: modifier,
		TotalScore:     total,
		Difficulty:     difficulty,
		Wisdom:         wisdom,
		Success:        total >= difficulty,
		SampleID:       sample.ID,
		State:          sample.State,
		TotalSpikes:    sample.TotalSpikes(),
		MeanFiringRate: sample.Metrics.MeanFiringRate,
		DurationS:      durationS,
	}

	switch roll {
	case 20:
		r.trigger(EventCriticalSuccess, result)
	case 1:
		r.trigger(EventCriticalFailure, result)
	}
	r.trigger(EventPostRoll, result)

	r.mu.Lock()
	r.results = append(r.results, result)
	r.mu.Unlock()

	return result, nil
}

// wisdomModifier is the d20 ability modifier: floor((wisdom-10)/2).
// Integer division in Go truncates toward zero, so negative odd deltas need
// the explicit floor.
func wisdomModifier(wisdom int) int {
	d := wisdom - 10
	if d < 0 {
		return -((-d + 1) / 2)
	}
	return d / 2
}

// Check describes one entry in a batch of intuition checks.
type Check struct {
	CharacterName string  `json:"character_name" yaml:"character_name"`
	Wisdom        int     `json:"wisdom" yaml:"wisdom"`
	Difficulty    int     `json:"difficulty" yaml:"difficulty"`
	Context       string  `json:"context,omitempty" yaml:"context,omitempty"`
	DurationS     float64 `json:"duration_s,omitempty" yaml:"duration_s,omitempty"`
}

// BatchChecks runs a sequence of checks, sharing one rng stream.
func (r *RollAPI) BatchChecks(checks []Check, rng *rand.Rand) ([]CheckResult, error) {
	results := make([]CheckResult, 0, len(checks))
	for _, c := range checks {
		duration := c.DurationS
		if duration <= 0 {
			duration = 1.0
		}
		result, err := r.IntuitionCheck(c.CharacterName, c.Wisdom, c.Difficulty, c.Context, duration, rng)
		if err != nil {
			return results, err
		}
		results = append(results, result)
	}
	return results, nil
}

// Results returns a snapshot copy of all recorded check results.
func (r *RollAPI) Results() []CheckResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CheckResult, len(r.results))
	copy(out, r.results)
	return out
}

// Statistics summarizes all recorded checks.
type Statistics struct {
	TotalChecks         int     `json:"total_checks"`
	SuccessCount        int     `json:"success_count"`
	SuccessRate         float64 `json:"success_rate"`
	CriticalSuccesses   int     `json:"critical_successes"`
	CriticalFailures    int     `json:"critical_failures"`
	AverageD20Roll      float64 `json:"average_d20_roll"`
	AverageTotalScore   float64 `json:"average_total_score"`
	AverageMeanFireRate float64 `json:"average_mean_firing_rate"`
}

// Stats computes statistics over the recorded check log.
func (r *RollAPI) Stats() Statistics {
	results := r.Results()

	s := Statistics{TotalChecks: len(results)}
	if len(results) == 0 {
		return s
	}

	var rollSum, scoreSum int
	var rateSum float64
	for _, res := range results {
		if res.Success {
			s.SuccessCount++
		}
		if res.D20Roll == 20 {
			s.CriticalSuccesses++
		}
		if res.D20Roll == 1 {
			s.CriticalFailures++
		}
		rollSum += res.D20Roll
		scoreSum += res.TotalScore
		rateSum += res.MeanFiringRate
	}
	n := float64(len(results))
	s.SuccessRate = float64(s.SuccessCount) / n
	s.AverageD20Roll = float64(rollSum) / n
	s.AverageTotalScore = float64(scoreSum) / n
	s.AverageMeanFireRate = rateSum / n
	return s
}
