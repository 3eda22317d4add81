// Package storage defines the persistence contracts the tracker depends on.
// Implementations live in the sqlite, postgres and redis subpackages.
package storage

import (
	"context"
	"time"

	apperrors "github.com/louisbranch/pitchside/internal/platform/errors"
)

var (
	// ErrNotFound is returned when no snapshot exists for a key.
	ErrNotFound = apperrors.New(apperrors.CodeNotFound, "snapshot not found")
	// ErrStale is returned when a store already holds the same or a newer
	// version of a snapshot. The write had no effect.
	ErrStale = apperrors.New(apperrors.CodeStaleSnapshot, "snapshot version is stale")
	// ErrNotConfigured is returned by nil or closed stores.
	ErrNotConfigured = apperrors.New(apperrors.CodeStorageNotConfigured, "storage is not configured")
)

// SnapshotRecord is one versioned season payload.
type SnapshotRecord struct {
	Key string
	// Version increases with every save from a session; stores refuse to
	// replace a record with one that is not newer.
	Version   int64
	Payload   []byte
	UpdatedAt time.Time
}

// SnapshotStore saves and loads season snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, record SnapshotRecord) error
	LoadSnapshot(ctx context.Context, key string) (SnapshotRecord, error)
}

// QueueItem is one snapshot awaiting delivery to the remote store.
type QueueItem struct {
	ID         string
	Key        string
	Version    int64
	Payload    []byte
	EnqueuedAt time.Time
}

// QueueStore persists the offline delivery queue in enqueue order.
type QueueStore interface {
	AppendQueueItem(ctx context.Context, item QueueItem) error
	ListQueueItems(ctx context.Context) ([]QueueItem, error)
	DeleteQueueItems(ctx context.Context, ids []string) error
	ClearQueue(ctx context.Context) error
	// LastSync returns the zero time when no drain has completed yet.
	LastSync(ctx context.Context) (time.Time, error)
	PutLastSync(ctx context.Context, at time.Time) error
}

// Pinger reports whether a remote store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// RemoteStore is a snapshot store reached over the network.
type RemoteStore interface {
	SnapshotStore
	Pinger
	Close() error
}
