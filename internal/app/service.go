// Package service assembles idea rankings from the stores and the scorer and
// implements the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync/atomic"
	"time"

	repository "github.com/okian/ideas/internal/adapters/repository"
	"github.com/okian/ideas/internal/domain/model"
	"github.com/okian/ideas/internal/domain/scoring"
	"github.com/okian/ideas/internal/domain/types"
	"github.com/okian/ideas/pkg/logger"
	"github.com/okian/ideas/pkg/metrics"
)

// Service ranks a creator's ideas and manages their priority weight.
type Service struct {
	ideas   repository.IdeaRepository
	weights repository.WeightRepository
	signals repository.SignalRepository

	scorer *scoring.Scorer
	logger logger.Logger

	rankingCalls  atomic.Int64
	priorityCalls atomic.Int64
	weightWrites  atomic.Int64
	ideasRanked   atomic.Int64
}

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithScorer replaces the default scorer, e.g. to change the decay rules.
func WithScorer(sc *scoring.Scorer) Option {
	return func(s *Service) {
		if sc != nil {
			s.scorer = sc
		}
	}
}

// New constructs a Service over the given stores.
func New(ideas repository.IdeaRepository, weights repository.WeightRepository, signals repository.SignalRepository, opts ...Option) *Service {
	s := &Service{
		ideas:   ideas,
		weights: weights,
		signals: signals,
		scorer:  scoring.NewScorer(),
		logger:  logger.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewFromStore is New with one backend serving all three repositories.
func NewFromStore(store repository.Store, opts ...Option) *Service {
	return New(store, store, store, opts...)
}

// GetPriorityWeight returns the creator's weight, DefaultWeight when none is stored.
func (s *Service) GetPriorityWeight(ctx context.Context, creatorID string) (int, error) {
	w, ok, err := s.weights.Weight(ctx, creatorID)
	if err != nil {
		metrics.RecordError("service", "weight_read")
		s.logger.Error(ctx, "failed to read priority weight",
			logger.String("creator_id", creatorID),
			logger.Error(err),
		)
		return 0, fmt.Errorf("get priority weight: %w", err)
	}
	if !ok {
		return scoring.DefaultWeight, nil
	}
	return scoring.ClampWeight(w), nil
}

// SetPriorityWeight stores weight clamped to [MinWeight, MaxWeight] and
// returns the stored value. It never rejects a value.
func (s *Service) SetPriorityWeight(ctx context.Context, creatorID string, weight int) (int, error) {
	stored := scoring.ClampWeight(weight)
	if err := s.weights.SetWeight(ctx, creatorID, stored); err != nil {
		metrics.RecordError("service", "weight_write")
		s.logger.Error(ctx, "failed to store priority weight",
			logger.String("creator_id", creatorID),
			logger.Error(err),
		)
		return 0, fmt.Errorf("set priority weight: %w", err)
	}

	clamped := stored != weight
	s.weightWrites.Add(1)
	metrics.RecordWeightUpdate(clamped)
	s.logger.Info(ctx, "priority weight updated",
		logger.String("creator_id", creatorID),
		logger.Int("requested", weight),
		logger.Int("stored", stored),
		logger.Bool("clamped", clamped),
	)
	return stored, nil
}

// GetRankedIdeas scores every idea of creatorID in status and returns them
// sorted by priority, highest first. Ties keep the store's order.
// An empty status means approved.
func (s *Service) GetRankedIdeas(ctx context.Context, creatorID, status string) ([]types.RankedIdea, error) {
	start := time.Now()
	s.rankingCalls.Add(1)
	defer recordLatency("batch", start)

	st, ok := model.ParseStatus(status)
	if !ok || !st.Rankable() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	ideas, err := s.ideas.ListIdeas(ctx, creatorID, st)
	if err != nil {
		return nil, s.storeFailure(ctx, "list_ideas", creatorID, err)
	}
	if len(ideas) == 0 {
		metrics.RecordRankedIdeas(0)
		return []types.RankedIdea{}, nil
	}

	votes := make([]int, len(ideas))
	ids := make([]string, len(ideas))
	for i, idea := range ideas {
		votes[i] = idea.Votes
		ids[i] = idea.ID
	}
	maxVotes := scoring.MaxVotes(votes...)

	weight, err := s.GetPriorityWeight(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	signals, err := s.signals.Signals(ctx, ids)
	if err != nil {
		return nil, s.storeFailure(ctx, "list_signals", creatorID, err)
	}

	now := s.scorer.Now()
	ranked := make([]types.RankedIdea, len(ideas))
	for i, idea := range ideas {
		var sig *model.OpportunitySignal
		if v, ok := signals[idea.ID]; ok {
			sig = &v
		}
		p := s.scorer.Score(scoring.Input{
			IdeaID:   idea.ID,
			Votes:    idea.Votes,
			MaxVotes: maxVotes,
			Weight:   weight,
			Signal:   sig,
			Now:      now,
		})
		recordSignal(p)
		ranked[i] = types.RankedIdea{Idea: idea, Priority: p, Signal: sig}
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Priority.PriorityScore > ranked[j].Priority.PriorityScore
	})

	s.ideasRanked.Add(int64(len(ranked)))
	metrics.RecordRankedIdeas(len(ranked))
	s.logger.Debug(ctx, "ideas ranked",
		logger.String("creator_id", creatorID),
		logger.String("status", string(st)),
		logger.Int("count", len(ranked)),
		logger.Int("weight", weight),
		logger.Duration("took", time.Since(start)),
	)
	return ranked, nil
}

// GetPriorityForIdea scores a single idea. It returns nil when the idea does
// not exist or belongs to another creator.
//
// The vote baseline is always the creator's approved ideas, whatever the
// target's own status.
func (s *Service) GetPriorityForIdea(ctx context.Context, ideaID, creatorID string) (*types.PriorityScore, error) {
	defer recordLatency("single", time.Now())
	s.priorityCalls.Add(1)

	idea, err := s.ideas.GetIdea(ctx, ideaID, creatorID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, s.storeFailure(ctx, "get_idea", creatorID, err)
	}

	approved, err := s.ideas.ListIdeas(ctx, creatorID, model.StatusApproved)
	if err != nil {
		return nil, s.storeFailure(ctx, "list_ideas", creatorID, err)
	}
	votes := make([]int, len(approved))
	for i, a := range approved {
		votes[i] = a.Votes
	}
	maxVotes := scoring.MaxVotes(votes...)

	weight, err := s.GetPriorityWeight(ctx, creatorID)
	if err != nil {
		return nil, err
	}

	var sig *model.OpportunitySignal
	got, err := s.signals.Signal(ctx, idea.ID)
	switch {
	case err == nil:
		sig = &got
	case errors.Is(err, repository.ErrNotFound):
	default:
		return nil, s.storeFailure(ctx, "get_signal", creatorID, err)
	}

	p := s.scorer.Score(scoring.Input{
		IdeaID:   idea.ID,
		Votes:    idea.Votes,
		MaxVotes: maxVotes,
		Weight:   weight,
		Signal:   sig,
	})
	recordSignal(p)
	return &p, nil
}

// GetStats returns service counters for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	d := s.scorer.Decay()
	return map[string]interface{}{
		"rankingRequests":  s.rankingCalls.Load(),
		"priorityRequests": s.priorityCalls.Load(),
		"weightWrites":     s.weightWrites.Load(),
		"ideasRanked":      s.ideasRanked.Load(),
		"staleAfter":       d.StaleAfter().String(),
		"staleDecayFactor": d.Factor(),
	}
}

func (s *Service) storeFailure(ctx context.Context, op, creatorID string, err error) error {
	metrics.RecordError("repository", op)
	s.logger.Error(ctx, "store call failed",
		logger.String("op", op),
		logger.String("creator_id", creatorID),
		logger.Error(err),
	)
	return fmt.Errorf("%s: %w", op, err)
}

func recordLatency(path string, start time.Time) {
	metrics.RecordRankingRequest(path, float64(time.Since(start).Microseconds())/1000)
}

// recordSignal counts ideas scored by votes alone, including those whose
// signal row carries no score, and scores that were actually decayed.
func recordSignal(p scoring.Priority) {
	if !p.HasExternalSignal {
		metrics.RecordMissingSignal()
		return
	}
	if p.IsStale {
		metrics.RecordStaleSignal()
	}
}
