// Package model contains domain models passed between layers.
package model

import (
	"strings"
	"time"
)

// Status is an idea's lifecycle state.
type Status string

// Idea lifecycle states. Ranking only ever filters on Approved or Completed.
const (
	StatusPending   Status = "pending"
	StatusApproved  Status = "approved"
	StatusRejected  Status = "rejected"
	StatusCompleted Status = "completed"
)

// ParseStatus normalizes s into a Status. An empty string maps to StatusApproved.
// ok is false for anything that is not a known lifecycle state.
func ParseStatus(s string) (Status, bool) {
	switch Status(strings.ToLower(strings.TrimSpace(s))) {
	case "", StatusApproved:
		return StatusApproved, true
	case StatusCompleted:
		return StatusCompleted, true
	case StatusPending:
		return StatusPending, true
	case StatusRejected:
		return StatusRejected, true
	}
	return "", false
}

// Rankable reports whether ideas in this state can be ranked.
func (s Status) Rankable() bool {
	return s == StatusApproved || s == StatusCompleted
}

// Idea is a fan-submitted content idea owned by a creator.
type Idea struct {
	ID        string `json:"id"`
	CreatorID string `json:"creator_id"`
	Title     string `json:"title,omitempty"`
	Votes     int    `json:"votes"`
	Status    Status `json:"status"`
}

// OpportunitySignal is the externally computed opportunity data for one idea.
// OpportunityScore is nil until the analysis pipeline has produced a value.
type OpportunitySignal struct {
	IdeaID           string    `json:"idea_id"`
	OpportunityScore *int      `json:"opportunity_score"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// CreatorWeightConfig holds a creator's vote/opportunity blend weight.
type CreatorWeightConfig struct {
	CreatorID      string `json:"creator_id"`
	PriorityWeight int    `json:"weight"`
}
