package repository

import (
	"context"
	"sync"
	"time"

	"github.com/okian/ideas/internal/domain/model"
)

const driverMemory = "memory"

// MemoryStore is an in-process Store. Ideas are listed in insertion order.
// It serves development runs and tests; PutIdea and PutSignal stand in for
// the external writers (voting endpoints, analysis pipeline).
type MemoryStore struct {
	mu      sync.RWMutex
	ideas   map[string]model.Idea
	order   []string
	weights map[string]int
	signals map[string]model.OpportunitySignal
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		ideas:   make(map[string]model.Idea),
		weights: make(map[string]int),
		signals: make(map[string]model.OpportunitySignal),
	}
}

// PutIdea inserts or replaces an idea. Replacing keeps the original position.
func (s *MemoryStore) PutIdea(idea model.Idea) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.ideas[idea.ID]; !ok {
		s.order = append(s.order, idea.ID)
	}
	s.ideas[idea.ID] = idea
}

// PutSignal inserts or replaces the signal for sig.IdeaID.
func (s *MemoryStore) PutSignal(sig model.OpportunitySignal) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.signals[sig.IdeaID] = copySignal(sig)
}

// ListIdeas implements IdeaRepository.
func (s *MemoryStore) ListIdeas(ctx context.Context, creatorID string, status model.Status) ([]model.Idea, error) {
	defer observe(driverMemory, "list_ideas", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	var out []model.Idea
	for _, id := range s.order {
		idea := s.ideas[id]
		if idea.CreatorID == creatorID && idea.Status == status {
			out = append(out, idea)
		}
	}
	return out, nil
}

// GetIdea implements IdeaRepository.
func (s *MemoryStore) GetIdea(ctx context.Context, ideaID, creatorID string) (model.Idea, error) {
	defer observe(driverMemory, "get_idea", time.Now())
	if err := ctx.Err(); err != nil {
		return model.Idea{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	idea, ok := s.ideas[ideaID]
	if !ok || idea.CreatorID != creatorID {
		return model.Idea{}, ErrNotFound
	}
	return idea, nil
}

// Weight implements WeightRepository.
func (s *MemoryStore) Weight(ctx context.Context, creatorID string) (int, bool, error) {
	defer observe(driverMemory, "get_weight", time.Now())
	if err := ctx.Err(); err != nil {
		return 0, false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	w, ok := s.weights[creatorID]
	return w, ok, nil
}

// SetWeight implements WeightRepository.
func (s *MemoryStore) SetWeight(ctx context.Context, creatorID string, weight int) error {
	defer observe(driverMemory, "set_weight", time.Now())
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.weights[creatorID] = weight
	return nil
}

// Signal implements SignalRepository.
func (s *MemoryStore) Signal(ctx context.Context, ideaID string) (model.OpportunitySignal, error) {
	defer observe(driverMemory, "get_signal", time.Now())
	if err := ctx.Err(); err != nil {
		return model.OpportunitySignal{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	sig, ok := s.signals[ideaID]
	if !ok {
		return model.OpportunitySignal{}, ErrNotFound
	}
	return copySignal(sig), nil
}

// Signals implements SignalRepository under a single read lock.
func (s *MemoryStore) Signals(ctx context.Context, ideaIDs []string) (map[string]model.OpportunitySignal, error) {
	defer observe(driverMemory, "list_signals", time.Now())
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make(map[string]model.OpportunitySignal, len(ideaIDs))
	for _, id := range ideaIDs {
		if sig, ok := s.signals[id]; ok {
			out[id] = copySignal(sig)
		}
	}
	return out, nil
}

// copySignal detaches the score pointer so callers never share store memory.
func copySignal(sig model.OpportunitySignal) model.OpportunitySignal {
	if sig.OpportunityScore != nil {
		v := *sig.OpportunityScore
		sig.OpportunityScore = &v
	}
	return sig
}
