package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/okian/ideas/pkg/logger"
)

// WeightDependencies defines the priority weight operations.
type WeightDependencies interface {
	GetPriorityWeight(ctx context.Context, creatorID string) (int, error)
	SetPriorityWeight(ctx context.Context, creatorID string, weight int) (int, error)
}

// WeightHandler reads and writes a creator's priority weight.
type WeightHandler struct {
	deps    WeightDependencies
	limiter *creatorLimiter
	logger  logger.Logger
}

// NewWeightHandler creates a new weight handler. Writes are admitted per
// creator by a token bucket of rps and burst.
func NewWeightHandler(deps WeightDependencies, rps rate.Limit, burst int, l logger.Logger) *WeightHandler {
	return &WeightHandler{deps: deps, limiter: newCreatorLimiter(rps, burst), logger: l}
}

type weightRequest struct {
	Weight *int `json:"weight"`
}

type weightResponse struct {
	CreatorID string `json:"creator_id"`
	Weight    int    `json:"weight"`
}

// HandleGetWeight handles GET /creators/{creatorID}/priority-weight.
func (h *WeightHandler) HandleGetWeight(w http.ResponseWriter, r *http.Request) {
	creatorID := r.PathValue("creatorID")
	weight, err := h.deps.GetPriorityWeight(r.Context(), creatorID)
	if err != nil {
		h.logger.Error(r.Context(), "weight read failed", logger.String("creator_id", creatorID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	writeJSON(w, http.StatusOK, weightResponse{CreatorID: creatorID, Weight: weight})
}

// HandlePutWeight handles PUT /creators/{creatorID}/priority-weight.
// Out-of-range weights are clamped, never rejected.
func (h *WeightHandler) HandlePutWeight(w http.ResponseWriter, r *http.Request) {
	creatorID := r.PathValue("creatorID")
	if !h.limiter.Allow(creatorID) {
		writeError(w, http.StatusTooManyRequests, "rate_limited", ErrRateLimited)
		return
	}

	var req weightRequest
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: %v", ErrBadRequest, err))
		return
	}
	if req.Weight == nil {
		writeError(w, http.StatusBadRequest, "bad_request", fmt.Errorf("%w: missing weight", ErrBadRequest))
		return
	}

	stored, err := h.deps.SetPriorityWeight(r.Context(), creatorID, *req.Weight)
	if err != nil {
		h.logger.Error(r.Context(), "weight write failed", logger.String("creator_id", creatorID), logger.Error(err))
		writeError(w, http.StatusInternalServerError, "internal_error", nil)
		return
	}
	writeJSON(w, http.StatusOK, weightResponse{CreatorID: creatorID, Weight: stored})
}
