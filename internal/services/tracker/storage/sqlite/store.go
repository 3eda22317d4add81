// Package sqlite is the tracker's local durable store: the snapshot cache
// and the offline delivery queue share one database file.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	sqlitemigrate "github.com/louisbranch/pitchside/internal/platform/storage/sqlitemigrate"
	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
	"github.com/louisbranch/pitchside/internal/services/tracker/storage/sqlite/migrations"
	_ "modernc.org/sqlite"
)

const lastSyncMeta = "last_sync"

// Store provides SQLite-backed snapshot and queue persistence.
type Store struct {
	sqlDB *sql.DB
}

// Open opens a tracker SQLite store and applies migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	cleanPath := filepath.Clean(path)
	dsn := cleanPath + "?_journal_mode=WAL&_foreign_keys=ON&_busy_timeout=5000&_synchronous=NORMAL"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}

	store := &Store{sqlDB: sqlDB}
	if err := sqlitemigrate.ApplyMigrations(context.Background(), sqlDB, migrations.FS, ""); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return store, nil
}

// Close releases the SQLite connection.
func (s *Store) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

func (s *Store) ready(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if s == nil || s.sqlDB == nil {
		return storage.ErrNotConfigured
	}
	return nil
}

// SaveSnapshot upserts record when its version is newer than the stored one.
func (s *Store) SaveSnapshot(ctx context.Context, record storage.SnapshotRecord) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	record.Key = strings.TrimSpace(record.Key)
	if record.Key == "" {
		return fmt.Errorf("snapshot key is required")
	}
	if record.UpdatedAt.IsZero() {
		record.UpdatedAt = time.Now().UTC()
	}

	result, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO snapshots (key, version, payload, updated_at)
VALUES (?, ?, ?, ?)
ON CONFLICT(key) DO UPDATE SET
	version = excluded.version,
	payload = excluded.payload,
	updated_at = excluded.updated_at
WHERE snapshots.version < excluded.version
`,
		record.Key,
		record.Version,
		record.Payload,
		record.UpdatedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("save snapshot rows: %w", err)
	}
	if affected == 0 {
		return storage.ErrStale.WithMetadata("key", record.Key)
	}
	return nil
}

// LoadSnapshot returns the stored record for key.
func (s *Store) LoadSnapshot(ctx context.Context, key string) (storage.SnapshotRecord, error) {
	if err := s.ready(ctx); err != nil {
		return storage.SnapshotRecord{}, err
	}
	record := storage.SnapshotRecord{Key: strings.TrimSpace(key)}
	var updatedAt int64
	err := s.sqlDB.QueryRowContext(ctx,
		`SELECT version, payload, updated_at FROM snapshots WHERE key = ?`,
		record.Key,
	).Scan(&record.Version, &record.Payload, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.SnapshotRecord{}, storage.ErrNotFound.WithMetadata("key", key)
	}
	if err != nil {
		return storage.SnapshotRecord{}, fmt.Errorf("load snapshot: %w", err)
	}
	record.UpdatedAt = time.UnixMilli(updatedAt).UTC()
	return record, nil
}

// AppendQueueItem adds item to the tail of the queue.
func (s *Store) AppendQueueItem(ctx context.Context, item storage.QueueItem) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if strings.TrimSpace(item.ID) == "" {
		return fmt.Errorf("queue item id is required")
	}
	if item.EnqueuedAt.IsZero() {
		item.EnqueuedAt = time.Now().UTC()
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO sync_queue (id, key, version, payload, enqueued_at)
VALUES (?, ?, ?, ?, ?)
`,
		item.ID,
		item.Key,
		item.Version,
		item.Payload,
		item.EnqueuedAt.UTC().UnixMilli(),
	)
	if err != nil {
		return fmt.Errorf("append queue item: %w", err)
	}
	return nil
}

// ListQueueItems returns every queued item in enqueue order.
func (s *Store) ListQueueItems(ctx context.Context) ([]storage.QueueItem, error) {
	if err := s.ready(ctx); err != nil {
		return nil, err
	}
	rows, err := s.sqlDB.QueryContext(ctx, `
SELECT id, key, version, payload, enqueued_at
FROM sync_queue
ORDER BY seq ASC
`)
	if err != nil {
		return nil, fmt.Errorf("list queue items: %w", err)
	}
	defer rows.Close()

	var items []storage.QueueItem
	for rows.Next() {
		var item storage.QueueItem
		var enqueuedAt int64
		if err := rows.Scan(&item.ID, &item.Key, &item.Version, &item.Payload, &enqueuedAt); err != nil {
			return nil, fmt.Errorf("scan queue item: %w", err)
		}
		item.EnqueuedAt = time.UnixMilli(enqueuedAt).UTC()
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queue items: %w", err)
	}
	return items, nil
}

// DeleteQueueItems removes the items with the given ids in one transaction.
// Unknown ids are ignored.
func (s *Store) DeleteQueueItems(ctx context.Context, ids []string) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if len(ids) == 0 {
		return nil
	}
	tx, err := s.sqlDB.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete queue items: %w", err)
	}
	for _, id := range ids {
		if _, err := tx.ExecContext(ctx, `DELETE FROM sync_queue WHERE id = ?`, id); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("delete queue item %s: %w", id, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete queue items: %w", err)
	}
	return nil
}

// ClearQueue removes every queued item.
func (s *Store) ClearQueue(ctx context.Context) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	if _, err := s.sqlDB.ExecContext(ctx, `DELETE FROM sync_queue`); err != nil {
		return fmt.Errorf("clear queue: %w", err)
	}
	return nil
}

// LastSync returns when the queue was last drained.
func (s *Store) LastSync(ctx context.Context) (time.Time, error) {
	if err := s.ready(ctx); err != nil {
		return time.Time{}, err
	}
	var value int64
	err := s.sqlDB.QueryRowContext(ctx, `SELECT value FROM sync_meta WHERE name = ?`, lastSyncMeta).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, nil
	}
	if err != nil {
		return time.Time{}, fmt.Errorf("load last sync: %w", err)
	}
	return time.UnixMilli(value).UTC(), nil
}

// PutLastSync records when the queue was last drained.
func (s *Store) PutLastSync(ctx context.Context, at time.Time) error {
	if err := s.ready(ctx); err != nil {
		return err
	}
	_, err := s.sqlDB.ExecContext(ctx, `
INSERT INTO sync_meta (name, value) VALUES (?, ?)
ON CONFLICT(name) DO UPDATE SET value = excluded.value
`, lastSyncMeta, at.UTC().UnixMilli())
	if err != nil {
		return fmt.Errorf("put last sync: %w", err)
	}
	return nil
}

var (
	_ storage.SnapshotStore = (*Store)(nil)
	_ storage.QueueStore    = (*Store)(nil)
)
