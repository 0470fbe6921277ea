package api

import (
	"context"
	"errors"
	"net/http"

	service "github.com/okian/ideas/internal/app"
	"github.com/okian/ideas/pkg/logger"
)

// RankingDependencies defines the read operations behind the ranking routes.
type RankingDependencies interface {
	GetRankedIdeas(ctx context.Context, creatorID, status string) ([]RankedIdea, error)
	GetPriorityForIdea(ctx context.Context, ideaID, creatorID string) (*PriorityScore, error)
}

// RankingHandler serves ranked lists and single-idea priorities.
type RankingHandler struct {
	deps   RankingDependencies
	logger logger.Logger
}

// NewRankingHandler creates a new ranking handler.
func NewRankingHandler(deps RankingDependencies, l logger.Logger) *RankingHandler {
	return &RankingHandler{deps: deps, logger: l}
}

// HandleGetRanked handles GET /creators/{creatorID}/ideas/ranked?status=.
func (h *RankingHandler) HandleGetRanked(w http.ResponseWriter, r *http.Request) {
	creatorID := r.PathValue("creatorID")
	status := r.URL.Query().Get("status")

	ranked, err := h.deps.GetRankedIdeas(r.Context(), creatorID, status)
	if errors.Is(err, service.ErrInvalidStatus) {
		writeError(w, http.StatusBadRequest, "invalid_status", err)
		return
	}
	if err != nil {
		h.logger.Error(r.Context(), "ranking failed", logger.String("creator_id", creatorID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	writeJSON(w, http.StatusOK, ranked)
}

// HandleGetPriority handles GET /creators/{creatorID}/ideas/{ideaID}/priority.
func (h *RankingHandler) HandleGetPriority(w http.ResponseWriter, r *http.Request) {
	creatorID := r.PathValue("creatorID")
	ideaID := r.PathValue("ideaID")

	p, err := h.deps.GetPriorityForIdea(r.Context(), ideaID, creatorID)
	if err != nil {
		h.logger.Error(r.Context(), "priority lookup failed",
			logger.String("creator_id", creatorID),
			logger.String("idea_id", ideaID),
			logger.Error(err),
		)
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	if p == nil {
		writeError(w, http.StatusNotFound, "not_found", nil)
		return
	}
	writeJSON(w, http.StatusOK, p)
}
