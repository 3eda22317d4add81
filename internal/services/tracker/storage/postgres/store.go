// Package postgres is the remote snapshot store. Alongside the versioned
// app_state row it maintains a denormalized projection with one row per match
// and one row per match player for reporting consumers.
package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	apperrors "github.com/louisbranch/pitchside/internal/platform/errors"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/snapshot"
	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
)

const schema = `
CREATE TABLE IF NOT EXISTS app_state (
	key TEXT PRIMARY KEY,
	version BIGINT NOT NULL,
	payload JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS matches (
	state_key TEXT NOT NULL,
	match_id BIGINT NOT NULL,
	opponent TEXT NOT NULL,
	venue TEXT NOT NULL,
	match_date TEXT NOT NULL,
	tag TEXT NOT NULL,
	description TEXT NOT NULL DEFAULT '',
	status TEXT NOT NULL,
	team_goals INTEGER NOT NULL,
	opponent_goals INTEGER NOT NULL,
	match_seconds INTEGER NOT NULL,
	PRIMARY KEY (state_key, match_id)
);

CREATE TABLE IF NOT EXISTS match_players (
	state_key TEXT NOT NULL,
	match_id BIGINT NOT NULL,
	player_id INTEGER NOT NULL,
	name TEXT NOT NULL,
	starting BOOLEAN NOT NULL,
	seconds INTEGER NOT NULL,
	goals INTEGER NOT NULL,
	assists INTEGER NOT NULL,
	notes TEXT NOT NULL,
	position_role TEXT,
	position_side TEXT,
	PRIMARY KEY (state_key, match_id, player_id)
);

ALTER TABLE matches ADD COLUMN IF NOT EXISTS description TEXT NOT NULL DEFAULT '';
ALTER TABLE match_players ADD COLUMN IF NOT EXISTS position_role TEXT;
ALTER TABLE match_players ADD COLUMN IF NOT EXISTS position_side TEXT;
`

const upsertState = `
INSERT INTO app_state (key, version, payload, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (key) DO UPDATE SET
	version = EXCLUDED.version,
	payload = EXCLUDED.payload,
	updated_at = EXCLUDED.updated_at
WHERE app_state.version < EXCLUDED.version
`

// Store provides Postgres-backed snapshot persistence.
type Store struct {
	pool *pgxpool.Pool

	mu          sync.Mutex
	schemaReady bool
}

// New creates a store without contacting the server; the pool connects on
// first use and the schema is ensured by the first successful Ping or save.
func New(ctx context.Context, url string) (*Store, error) {
	if strings.TrimSpace(url) == "" {
		return nil, fmt.Errorf("postgres url is required")
	}
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.schemaReady {
		return nil
	}
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return apperrors.Wrap(apperrors.CodeRemoteUnavailable, "ensure schema", err)
	}
	s.schemaReady = true
	return nil
}

// Close releases the pool.
func (s *Store) Close() error {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Ping checks that the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.pool == nil {
		return storage.ErrNotConfigured
	}
	if err := s.pool.Ping(ctx); err != nil {
		return apperrors.Wrap(apperrors.CodeRemoteUnavailable, "ping postgres", err)
	}
	return s.ensureSchema(ctx)
}

// SaveSnapshot upserts the app_state row when record is newer and rewrites
// the key's projection in the same transaction.
func (s *Store) SaveSnapshot(ctx context.Context, record storage.SnapshotRecord) error {
	if s == nil || s.pool == nil {
		return storage.ErrNotConfigured
	}
	if strings.TrimSpace(record.Key) == "" {
		return fmt.Errorf("snapshot key is required")
	}
	state, err := snapshot.Decode(record.Payload)
	if err != nil {
		return fmt.Errorf("project snapshot: %w", err)
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}
	matchRows, playerRows := project(record.Key, state)
	if err := s.ensureSchema(ctx); err != nil {
		return err
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeRemoteUnavailable, "begin save snapshot", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	tag, err := tx.Exec(ctx, upsertState, record.Key, record.Version, record.Payload, record.UpdatedAt)
	if err != nil {
		return apperrors.Wrap(apperrors.CodeRemoteUnavailable, "upsert app state", err)
	}
	if tag.RowsAffected() == 0 {
		return storage.ErrStale.WithMetadata("key", record.Key)
	}

	batch := &pgx.Batch{}
	batch.Queue(`DELETE FROM match_players WHERE state_key = $1`, record.Key)
	batch.Queue(`DELETE FROM matches WHERE state_key = $1`, record.Key)
	for _, row := range matchRows {
		batch.Queue(`
INSERT INTO matches (state_key, match_id, opponent, venue, match_date, tag, description, status, team_goals, opponent_goals, match_seconds)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			row.StateKey, row.MatchID, row.Opponent, row.Venue, row.Date, row.Tag, row.Description,
			row.Status, row.TeamGoals, row.OpponentGoals, row.Seconds,
		)
	}
	for _, row := range playerRows {
		batch.Queue(`
INSERT INTO match_players (state_key, match_id, player_id, name, starting, seconds, goals, assists, notes, position_role, position_side)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`,
			row.StateKey, row.MatchID, row.PlayerID, row.Name, row.Starting,
			row.Seconds, row.Goals, row.Assists, row.Notes, row.Role, row.Side,
		)
	}
	if err := tx.SendBatch(ctx, batch).Close(); err != nil {
		return apperrors.Wrap(apperrors.CodeRemoteUnavailable, "write projection", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return apperrors.Wrap(apperrors.CodeRemoteUnavailable, "commit save snapshot", err)
	}
	return nil
}

// LoadSnapshot returns the app_state row for key.
func (s *Store) LoadSnapshot(ctx context.Context, key string) (storage.SnapshotRecord, error) {
	if s == nil || s.pool == nil {
		return storage.SnapshotRecord{}, storage.ErrNotConfigured
	}
	if err := s.ensureSchema(ctx); err != nil {
		return storage.SnapshotRecord{}, err
	}
	record := storage.SnapshotRecord{Key: strings.TrimSpace(key)}
	err := s.pool.QueryRow(ctx,
		`SELECT version, payload::text, updated_at FROM app_state WHERE key = $1`,
		record.Key,
	).Scan(&record.Version, &record.Payload, &record.UpdatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return storage.SnapshotRecord{}, storage.ErrNotFound.WithMetadata("key", key)
	}
	if err != nil {
		return storage.SnapshotRecord{}, apperrors.Wrap(apperrors.CodeRemoteUnavailable, "load snapshot", err)
	}
	record.UpdatedAt = record.UpdatedAt.UTC()
	return record, nil
}

var _ storage.RemoteStore = (*Store)(nil)
