// Package api declares HTTP contracts and route registration helpers.
package api

import (
	"context"
	"encoding/json"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/okian/ideas/internal/domain/types"
	"github.com/okian/ideas/pkg/logger"
)

// Dependencies required by HTTP handlers. Using an interface bundle keeps
// the handler layer loosely coupled to implementations in other packages.
type Dependencies interface {
	RankingDependencies
	WeightDependencies
	StatsProvider
}

// RankedIdea mirrors one row of the ranked list.
type RankedIdea = types.RankedIdea

// PriorityScore mirrors the single-idea priority shape.
type PriorityScore = types.PriorityScore

// Default token bucket for weight writes.
const (
	defaultWeightWriteRPS   = 5
	defaultWeightWriteBurst = 10
)

// Server wires HTTP routes for the business API.
type Server struct {
	healthHandler  *HealthHandler
	statsHandler   *StatsHandler
	rankingHandler *RankingHandler
	weightHandler  *WeightHandler

	logger logger.Logger
}

// Option applies a configuration option to the Server.
type Option func(*serverOptions)

type serverOptions struct {
	logger     logger.Logger
	writeRate  rate.Limit
	writeBurst int
}

// WithLogger sets the logger used by the handlers.
func WithLogger(l logger.Logger) Option {
	return func(o *serverOptions) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithWeightWriteLimit throttles PUT priority-weight to rps with the given
// burst, per creator.
func WithWeightWriteLimit(rps float64, burst int) Option {
	return func(o *serverOptions) {
		if rps > 0 && burst > 0 {
			o.writeRate = rate.Limit(rps)
			o.writeBurst = burst
		}
	}
}

// NewServer creates a new API server with all handlers.
func NewServer(deps Dependencies, opts ...Option) *Server {
	o := serverOptions{
		logger:     logger.Nop(),
		writeRate:  defaultWeightWriteRPS,
		writeBurst: defaultWeightWriteBurst,
	}
	for _, opt := range opts {
		opt(&o)
	}
	return &Server{
		healthHandler:  NewHealthHandler(),
		statsHandler:   NewStatsHandler(deps),
		rankingHandler: NewRankingHandler(deps, o.logger),
		weightHandler:  NewWeightHandler(deps, o.writeRate, o.writeBurst, o.logger),
		logger:         o.logger,
	}
}

// Register attaches all HTTP routes to mux.
func (s *Server) Register(ctx context.Context, mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", MetricsMiddleware(s.healthHandler.HandleHealth, "healthz"))
	mux.HandleFunc("GET /stats", s.wrap(s.statsHandler.HandleStats, "stats"))
	mux.HandleFunc("GET /creators/{creatorID}/ideas/ranked", s.wrap(s.rankingHandler.HandleGetRanked, "ranked"))
	mux.HandleFunc("GET /creators/{creatorID}/ideas/{ideaID}/priority", s.wrap(s.rankingHandler.HandleGetPriority, "priority"))
	mux.HandleFunc("GET /creators/{creatorID}/priority-weight", s.wrap(s.weightHandler.HandleGetWeight, "weight"))
	mux.HandleFunc("PUT /creators/{creatorID}/priority-weight", s.wrap(s.weightHandler.HandlePutWeight, "weight"))
	s.logger.Info(ctx, "http routes registered")
}

func (s *Server) wrap(h http.HandlerFunc, endpoint string) http.HandlerFunc {
	return RequestIDMiddleware(MetricsMiddleware(h, endpoint))
}

type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code string, err error) {
	msg := http.StatusText(status)
	if err != nil {
		msg = err.Error()
	}
	writeJSON(w, status, errorResponse{Code: code, Message: msg})
}
