// Package scoring blends vote counts and opportunity signals into a single
// 0-100 priority score.
//
// All functions here are pure. Store access lives in the app layer, which
// gathers the inputs and hands them to a Scorer.
package scoring

import (
	"time"

	"github.com/okian/ideas/internal/domain/model"
)

// MaxScore is the upper bound of every score produced by this package.
const MaxScore = 100

// Option applies a configuration option to the Scorer.
type Option func(*Scorer)

// WithStaleAfter overrides the staleness threshold. Non-positive values are ignored.
func WithStaleAfter(d time.Duration) Option {
	return func(s *Scorer) {
		if d > 0 {
			s.decay.staleAfter = d
		}
	}
}

// WithDecayFactor overrides the multiplier applied to stale signals.
// Values outside (0,1] are ignored.
func WithDecayFactor(f float64) Option {
	return func(s *Scorer) {
		if f > 0 && f <= 1 {
			s.decay.factor = f
		}
	}
}

// WithClock sets the time source used when an Input carries no timestamp.
func WithClock(now func() time.Time) Option {
	return func(s *Scorer) {
		if now != nil {
			s.now = now
		}
	}
}

// Input carries everything needed to score one idea.
type Input struct {
	IdeaID   string
	Votes    int
	MaxVotes int
	Weight   int
	// Signal is nil when the idea has no opportunity row at all.
	Signal *model.OpportunitySignal
	// Now is the reference time for staleness. Zero means "ask the scorer's clock".
	Now time.Time
}

// Priority is the derived, never persisted, score record for one idea.
type Priority struct {
	IdeaID                    string `json:"idea_id"`
	VoteScore                 int    `json:"vote_score"`
	OpportunityScore          *int   `json:"opportunity_score"`
	EffectiveOpportunityScore *int   `json:"effective_opportunity_score"`
	PriorityScore             int    `json:"priority_score"`
	HasExternalSignal         bool   `json:"has_external_signal"`
	IsStale                   bool   `json:"is_stale"`
}

// Scorer runs the normalize -> decay -> combine pipeline.
type Scorer struct {
	decay Decay
	now   func() time.Time
}

// NewScorer creates a scorer with the default staleness rules.
func NewScorer(opts ...Option) *Scorer {
	s := &Scorer{
		decay: NewDecay(),
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Now returns the scorer's current time.
func (s *Scorer) Now() time.Time {
	return s.now()
}

// Decay returns the staleness rules in use.
func (s *Scorer) Decay() Decay {
	return s.decay
}

// Score computes the priority record for in.
func (s *Scorer) Score(in Input) Priority {
	now := in.Now
	if now.IsZero() {
		now = s.now()
	}

	p := Priority{
		IdeaID:    in.IdeaID,
		VoteScore: NormalizeVotes(in.Votes, in.MaxVotes),
	}

	if in.Signal != nil {
		p.OpportunityScore = in.Signal.OpportunityScore
		p.IsStale = s.decay.IsStale(now, in.Signal.UpdatedAt)
		p.EffectiveOpportunityScore = s.decay.EffectiveScore(p.OpportunityScore, p.IsStale)
	}
	p.HasExternalSignal = p.OpportunityScore != nil
	p.PriorityScore = Combine(p.VoteScore, p.EffectiveOpportunityScore, in.Weight)
	return p
}

// Combine blends voteScore and effective into one priority score using a
// weight in percent. A nil effective score ranks by votes alone.
//
// Inputs are already rounded integers; the blend is rounded once more here.
func Combine(voteScore int, effective *int, weight int) int {
	if effective == nil {
		return voteScore
	}
	w := ClampWeight(weight)
	// weight/100*vote + (1-weight/100)*opp, kept in integers until the final rounding.
	return divRoundHalfUp(w*voteScore+(100-w)*clampScore(*effective), 100)
}

// divRoundHalfUp returns round(num/den) with halves rounded up, for num >= 0 and den > 0.
func divRoundHalfUp(num, den int) int {
	return (2*num + den) / (2 * den)
}

func clampScore(v int) int {
	return max(0, min(MaxScore, v))
}
