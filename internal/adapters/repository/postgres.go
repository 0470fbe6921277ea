package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/okian/ideas/internal/domain/model"
	"github.com/okian/ideas/pkg/logger"
)

const driverPostgres = "postgres"

// DBPool abstracts *pgxpool.Pool so the store can be tested with pgxmock.
type DBPool interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

// PostgresStore implements Store on top of PostgreSQL.
//
// Expected schema (owned by the main application):
//
//	ideas(id text pk, creator_id text, title text not null, votes int, status text, created_at timestamptz)
//	creator_settings(creator_id text pk, priority_weight int)
//	opportunity_signals(idea_id text pk, opportunity_score int null, updated_at timestamptz)
type PostgresStore struct {
	pool DBPool
	opts storeOptions
	log  logger.Logger
}

// NewPostgresStore wraps pool.
func NewPostgresStore(pool DBPool, opts ...Option) *PostgresStore {
	o := newStoreOptions(opts)
	return &PostgresStore{pool: pool, opts: o, log: o.logger.Named("postgres")}
}

const (
	pgListIdeas = `
        SELECT id, creator_id, title, votes, status
        FROM ideas
        WHERE creator_id = $1 AND status = $2
        ORDER BY created_at ASC, id ASC`
	pgGetIdea = `
        SELECT id, creator_id, title, votes, status
        FROM ideas
        WHERE id = $1 AND creator_id = $2`
	pgGetWeight = `
        SELECT priority_weight
        FROM creator_settings
        WHERE creator_id = $1`
	pgSetWeight = `
        INSERT INTO creator_settings (creator_id, priority_weight)
        VALUES ($1, $2)
        ON CONFLICT (creator_id) DO UPDATE SET priority_weight = EXCLUDED.priority_weight`
	pgGetSignal = `
        SELECT idea_id, opportunity_score, updated_at
        FROM opportunity_signals
        WHERE idea_id = $1`
	pgListSignals = `
        SELECT idea_id, opportunity_score, updated_at
        FROM opportunity_signals
        WHERE idea_id = ANY($1)`
)

// ListIdeas implements IdeaRepository.
func (s *PostgresStore) ListIdeas(ctx context.Context, creatorID string, status model.Status) ([]model.Idea, error) {
	defer observe(driverPostgres, "list_ideas", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, pgListIdeas, creatorID, string(status))
	if err != nil {
		return nil, fmt.Errorf("failed to query ideas: %w", err)
	}
	defer rows.Close()

	var ideas []model.Idea
	for rows.Next() {
		idea, err := scanIdea(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan idea row: %w", err)
		}
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during idea iteration: %w", err)
	}
	return ideas, nil
}

// GetIdea implements IdeaRepository.
func (s *PostgresStore) GetIdea(ctx context.Context, ideaID, creatorID string) (model.Idea, error) {
	defer observe(driverPostgres, "get_idea", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	idea, err := scanIdea(s.pool.QueryRow(ctx, pgGetIdea, ideaID, creatorID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.Idea{}, ErrNotFound
	}
	if err != nil {
		return model.Idea{}, fmt.Errorf("failed to get idea %s: %w", ideaID, err)
	}
	return idea, nil
}

// Weight implements WeightRepository. A NULL column counts as unset.
func (s *PostgresStore) Weight(ctx context.Context, creatorID string) (int, bool, error) {
	defer observe(driverPostgres, "get_weight", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var w *int
	err := s.pool.QueryRow(ctx, pgGetWeight, creatorID).Scan(&w)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get priority weight: %w", err)
	}
	if w == nil {
		return 0, false, nil
	}
	return *w, true, nil
}

// SetWeight implements WeightRepository with a single-row upsert.
func (s *PostgresStore) SetWeight(ctx context.Context, creatorID string, weight int) error {
	defer observe(driverPostgres, "set_weight", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	tag, err := s.pool.Exec(ctx, pgSetWeight, creatorID, weight)
	if err != nil {
		return fmt.Errorf("failed to set priority weight: %w", err)
	}
	s.log.Debug(ctx, "priority weight stored",
		logger.String("creator_id", creatorID),
		logger.Int("weight", weight),
		logger.Int("rows", int(tag.RowsAffected())),
	)
	return nil
}

// Signal implements SignalRepository.
func (s *PostgresStore) Signal(ctx context.Context, ideaID string) (model.OpportunitySignal, error) {
	defer observe(driverPostgres, "get_signal", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	sig, err := scanSignal(s.pool.QueryRow(ctx, pgGetSignal, ideaID))
	if errors.Is(err, pgx.ErrNoRows) {
		return model.OpportunitySignal{}, ErrNotFound
	}
	if err != nil {
		return model.OpportunitySignal{}, fmt.Errorf("failed to get signal for %s: %w", ideaID, err)
	}
	return sig, nil
}

// Signals implements SignalRepository with one ANY($1) query.
func (s *PostgresStore) Signals(ctx context.Context, ideaIDs []string) (map[string]model.OpportunitySignal, error) {
	out := make(map[string]model.OpportunitySignal, len(ideaIDs))
	if len(ideaIDs) == 0 {
		return out, nil
	}
	defer observe(driverPostgres, "list_signals", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	rows, err := s.pool.Query(ctx, pgListSignals, ideaIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to query signals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sig, err := scanSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan signal row: %w", err)
		}
		out[sig.IdeaID] = sig
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error during signal iteration: %w", err)
	}
	return out, nil
}

func scanIdea(row pgx.Row) (model.Idea, error) {
	var (
		idea   model.Idea
		status string
	)
	if err := row.Scan(&idea.ID, &idea.CreatorID, &idea.Title, &idea.Votes, &status); err != nil {
		return model.Idea{}, err
	}
	idea.Status = model.Status(status)
	return idea, nil
}

func scanSignal(row pgx.Row) (model.OpportunitySignal, error) {
	var sig model.OpportunitySignal
	if err := row.Scan(&sig.IdeaID, &sig.OpportunityScore, &sig.UpdatedAt); err != nil {
		return model.OpportunitySignal{}, err
	}
	sig.UpdatedAt = sig.UpdatedAt.UTC()
	return sig, nil
}
