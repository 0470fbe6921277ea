package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/okian/ideas/internal/domain/model"
	"github.com/okian/ideas/pkg/logger"

	_ "modernc.org/sqlite" // registers the "sqlite" driver
)

const driverSQLite = "sqlite"

// SQLiteStore implements Store on an embedded SQLite database.
// Timestamps are stored as unix milliseconds.
type SQLiteStore struct {
	db   *sql.DB
	opts storeOptions
	log  logger.Logger
}

// OpenSQLite opens (or creates) the database at path and applies the schema.
// ":memory:" opens a private in-memory database per call.
func OpenSQLite(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	o := newStoreOptions(opts)

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if path == ":memory:" {
		// each connection gets its own in-memory database; pin the pool to one
		db.SetMaxOpenConns(1)
		db.SetConnMaxLifetime(0)
		db.SetConnMaxIdleTime(0)
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	if path != ":memory:" {
		if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
			_ = db.Close()
			return nil, fmt.Errorf("enable WAL mode: %w", err)
		}
	}

	s := &SQLiteStore{db: db, opts: o, log: o.logger.Named("sqlite")}
	if err := s.migrate(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	s.log.Info(ctx, "database initialized", logger.String("path", path))
	return s, nil
}

// Close releases the database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS ideas (
		id TEXT PRIMARY KEY,
		creator_id TEXT NOT NULL,
		title TEXT NOT NULL DEFAULT '',
		votes INTEGER NOT NULL DEFAULT 0,
		status TEXT NOT NULL,
		created_at INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_ideas_creator_status ON ideas(creator_id, status);

	CREATE TABLE IF NOT EXISTS creator_settings (
		creator_id TEXT PRIMARY KEY,
		priority_weight INTEGER
	);

	CREATE TABLE IF NOT EXISTS opportunity_signals (
		idea_id TEXT PRIMARY KEY,
		opportunity_score INTEGER,
		updated_at INTEGER NOT NULL
	);
	`
	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// ListIdeas implements IdeaRepository.
func (s *SQLiteStore) ListIdeas(ctx context.Context, creatorID string, status model.Status) ([]model.Idea, error) {
	defer observe(driverSQLite, "list_ideas", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, creator_id, title, votes, status
		FROM ideas
		WHERE creator_id = ? AND status = ?
		ORDER BY created_at ASC, rowid ASC`, creatorID, string(status))
	if err != nil {
		return nil, fmt.Errorf("query ideas: %w", err)
	}
	defer rows.Close()

	var ideas []model.Idea
	for rows.Next() {
		var idea model.Idea
		var st string
		if err := rows.Scan(&idea.ID, &idea.CreatorID, &idea.Title, &idea.Votes, &st); err != nil {
			return nil, fmt.Errorf("scan idea: %w", err)
		}
		idea.Status = model.Status(st)
		ideas = append(ideas, idea)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate ideas: %w", err)
	}
	return ideas, nil
}

// GetIdea implements IdeaRepository.
func (s *SQLiteStore) GetIdea(ctx context.Context, ideaID, creatorID string) (model.Idea, error) {
	defer observe(driverSQLite, "get_idea", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var idea model.Idea
	var st string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, creator_id, title, votes, status
		FROM ideas
		WHERE id = ? AND creator_id = ?`, ideaID, creatorID).
		Scan(&idea.ID, &idea.CreatorID, &idea.Title, &idea.Votes, &st)
	if errors.Is(err, sql.ErrNoRows) {
		return model.Idea{}, ErrNotFound
	}
	if err != nil {
		return model.Idea{}, fmt.Errorf("get idea %s: %w", ideaID, err)
	}
	idea.Status = model.Status(st)
	return idea, nil
}

// Weight implements WeightRepository.
func (s *SQLiteStore) Weight(ctx context.Context, creatorID string) (int, bool, error) {
	defer observe(driverSQLite, "get_weight", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	var w sql.NullInt64
	err := s.db.QueryRowContext(ctx,
		`SELECT priority_weight FROM creator_settings WHERE creator_id = ?`, creatorID).Scan(&w)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("get priority weight: %w", err)
	}
	if !w.Valid {
		return 0, false, nil
	}
	return int(w.Int64), true, nil
}

// SetWeight implements WeightRepository.
func (s *SQLiteStore) SetWeight(ctx context.Context, creatorID string, weight int) error {
	defer observe(driverSQLite, "set_weight", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO creator_settings (creator_id, priority_weight)
		VALUES (?, ?)
		ON CONFLICT(creator_id) DO UPDATE SET priority_weight = excluded.priority_weight`,
		creatorID, weight)
	if err != nil {
		return fmt.Errorf("set priority weight: %w", err)
	}
	return nil
}

// Signal implements SignalRepository.
func (s *SQLiteStore) Signal(ctx context.Context, ideaID string) (model.OpportunitySignal, error) {
	defer observe(driverSQLite, "get_signal", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	row := s.db.QueryRowContext(ctx, `
		SELECT idea_id, opportunity_score, updated_at
		FROM opportunity_signals
		WHERE idea_id = ?`, ideaID)
	sig, err := scanSQLiteSignal(row)
	if errors.Is(err, sql.ErrNoRows) {
		return model.OpportunitySignal{}, ErrNotFound
	}
	if err != nil {
		return model.OpportunitySignal{}, fmt.Errorf("get signal for %s: %w", ideaID, err)
	}
	return sig, nil
}

// Signals implements SignalRepository with a single query. The ids travel as
// one JSON array expanded by json_each, so the bound-parameter limit never
// applies.
func (s *SQLiteStore) Signals(ctx context.Context, ideaIDs []string) (map[string]model.OpportunitySignal, error) {
	out := make(map[string]model.OpportunitySignal, len(ideaIDs))
	if len(ideaIDs) == 0 {
		return out, nil
	}
	defer observe(driverSQLite, "list_signals", time.Now())
	ctx, cancel := s.opts.withTimeout(ctx)
	defer cancel()

	ids, err := json.Marshal(ideaIDs)
	if err != nil {
		return nil, fmt.Errorf("encode idea ids: %w", err)
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT idea_id, opportunity_score, updated_at
		FROM opportunity_signals
		WHERE idea_id IN (SELECT value FROM json_each(?))`, string(ids))
	if err != nil {
		return nil, fmt.Errorf("query signals: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		sig, err := scanSQLiteSignal(rows)
		if err != nil {
			return nil, fmt.Errorf("scan signal: %w", err)
		}
		out[sig.IdeaID] = sig
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate signals: %w", err)
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteSignal(row rowScanner) (model.OpportunitySignal, error) {
	var (
		sig     model.OpportunitySignal
		score   sql.NullInt64
		updated int64
	)
	if err := row.Scan(&sig.IdeaID, &score, &updated); err != nil {
		return model.OpportunitySignal{}, err
	}
	if score.Valid {
		v := int(score.Int64)
		sig.OpportunityScore = &v
	}
	sig.UpdatedAt = time.UnixMilli(updated).UTC()
	return sig, nil
}
