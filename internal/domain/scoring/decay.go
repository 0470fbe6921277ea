package scoring

import (
	"math"
	"time"
)

// Staleness rules for opportunity signals.
const (
	StaleAfter       = 24 * time.Hour
	StaleDecayFactor = 0.8
)

// Decay decides when a signal is stale and how much a stale score loses.
type Decay struct {
	staleAfter time.Duration
	factor     float64
}

// NewDecay returns the default decay: StaleAfter and StaleDecayFactor.
func NewDecay() Decay {
	return Decay{staleAfter: StaleAfter, factor: StaleDecayFactor}
}

// StaleAfter returns the staleness threshold.
func (d Decay) StaleAfter() time.Duration { return d.staleAfter }

// Factor returns the multiplier for stale scores.
func (d Decay) Factor() float64 { return d.factor }

// IsStale reports whether a signal updated at updatedAt is older than the threshold at now.
func (d Decay) IsStale(now, updatedAt time.Time) bool {
	return now.Sub(updatedAt) > d.staleAfter
}

// EffectiveScore applies the decay to score when stale. A nil score stays nil.
func (d Decay) EffectiveScore(score *int, stale bool) *int {
	if score == nil {
		return nil
	}
	v := clampScore(*score)
	if stale {
		v = int(math.Round(float64(v) * d.factor))
	}
	return &v
}

// IsStale reports staleness using the default threshold.
func IsStale(now, updatedAt time.Time) bool {
	return NewDecay().IsStale(now, updatedAt)
}

// EffectiveScore applies the default decay factor.
func EffectiveScore(score *int, stale bool) *int {
	return NewDecay().EffectiveScore(score, stale)
}
