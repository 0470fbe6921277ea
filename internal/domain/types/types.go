// Package types contains result shapes shared by the service and the HTTP API.
package types

import (
	"github.com/okian/ideas/internal/domain/model"
	"github.com/okian/ideas/internal/domain/scoring"
)

// PriorityScore is the computed priority of one idea.
type PriorityScore = scoring.Priority

// RankedIdea is one row of a creator's ranked idea list.
type RankedIdea struct {
	Idea     model.Idea               `json:"idea"`
	Priority PriorityScore            `json:"priority"`
	Signal   *model.OpportunitySignal `json:"signal"`
}
