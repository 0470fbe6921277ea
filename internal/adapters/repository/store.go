// Package repository defines the idea, weight and signal stores the priority
// service reads from, and their implementations.
package repository

import (
	"context"

	"github.com/okian/ideas/internal/domain/model"
)

// IdeaRepository reads ideas.
type IdeaRepository interface {
	// ListIdeas returns a creator's ideas in the given status, in the store's natural order.
	ListIdeas(ctx context.Context, creatorID string, status model.Status) ([]model.Idea, error)
	// GetIdea returns the idea only when it belongs to creatorID.
	// Returns ErrNotFound otherwise.
	GetIdea(ctx context.Context, ideaID, creatorID string) (model.Idea, error)
}

// WeightRepository reads and writes the per-creator priority weight.
type WeightRepository interface {
	// Weight returns the stored weight; ok is false when none was ever stored.
	Weight(ctx context.Context, creatorID string) (weight int, ok bool, err error)
	// SetWeight stores weight as given. Clamping is the caller's job.
	SetWeight(ctx context.Context, creatorID string, weight int) error
}

// SignalRepository reads opportunity signals produced by the analysis pipeline.
type SignalRepository interface {
	// Signal returns the signal for one idea, or ErrNotFound.
	Signal(ctx context.Context, ideaID string) (model.OpportunitySignal, error)
	// Signals returns the signals for ideaIDs in a single round trip.
	// Ideas without a signal are absent from the map.
	Signals(ctx context.Context, ideaIDs []string) (map[string]model.OpportunitySignal, error)
}

// Store bundles the three repositories; every backend implements all of them.
type Store interface {
	IdeaRepository
	WeightRepository
	SignalRepository
}
