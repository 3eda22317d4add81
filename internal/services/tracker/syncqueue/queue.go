// Package syncqueue holds snapshots produced while the remote store is
// unreachable and delivers them, in enqueue order, once it is reachable
// again.
//
// Delivery is at-least-once: an item is removed only after its apply call
// succeeds, and failed items are retried on every later drain with no cap.
// The apply func decides what counts as delivered: the tracker writer reports
// success for snapshots the remote refuses as stale or malformed, since no
// retry can land them.
// The queue survives restarts through its QueueStore.
package syncqueue

import (
	"context"
	"fmt"
	"log"
	"slices"
	"sync"
	"time"

	"github.com/bep/debounce"
	"github.com/google/uuid"
	"github.com/louisbranch/pitchside/internal/platform/timeouts"
	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

var tracer = otel.Tracer("github.com/louisbranch/pitchside/internal/services/tracker/syncqueue")

// ApplyFunc delivers one item to the remote store.
type ApplyFunc func(ctx context.Context, item storage.QueueItem) error

// SkipReason explains why a drain did nothing.
type SkipReason string

const (
	SkipOffline        SkipReason = "offline"
	SkipAlreadySyncing SkipReason = "already_syncing"
	SkipQueueEmpty     SkipReason = "queue_empty"
)

// DrainResult summarizes one drain.
type DrainResult struct {
	Total     int
	Succeeded int
	Failed    int
	Errors    []error
	// Skipped is set when the drain did not attempt any item.
	Skipped SkipReason
}

// Status is a point-in-time view of the queue.
type Status struct {
	Online   bool
	Syncing  bool
	Pending  int
	LastSync time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithLogf replaces log.Printf.
func WithLogf(logf func(format string, args ...any)) Option {
	return func(q *Queue) {
		if logf != nil {
			q.logf = logf
		}
	}
}

// WithSettleDelay sets how long the queue must stay online before the
// reconnect hook runs.
func WithSettleDelay(d time.Duration) Option {
	return func(q *Queue) {
		if d > 0 {
			q.settle = d
		}
	}
}

// WithNow replaces the clock used for timestamps.
func WithNow(now func() time.Time) Option {
	return func(q *Queue) {
		if now != nil {
			q.now = now
		}
	}
}

// Queue is the offline delivery queue. It is safe for concurrent use.
type Queue struct {
	store  storage.QueueStore
	logf   func(format string, args ...any)
	now    func() time.Time
	settle time.Duration

	mu          sync.Mutex
	items       []storage.QueueItem
	online      bool
	syncing     bool
	lastSync    time.Time
	onReconnect func()
	debounced   func(f func())
}

// New builds an empty, offline queue. Call Load to restore persisted items.
func New(store storage.QueueStore, opts ...Option) *Queue {
	q := &Queue{
		store:  store,
		logf:   log.Printf,
		now:    time.Now,
		settle: timeouts.OnlineSettle,
	}
	for _, opt := range opts {
		opt(q)
	}
	q.debounced = debounce.New(q.settle)
	return q
}

// OnReconnect registers fn to run once the queue has stayed online for the
// settle delay. fn runs on its own goroutine.
func (q *Queue) OnReconnect(fn func()) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.onReconnect = fn
}

// Load replaces the in-memory queue with the persisted one.
func (q *Queue) Load(ctx context.Context) error {
	if q.store == nil {
		return storage.ErrNotConfigured
	}
	items, err := q.store.ListQueueItems(ctx)
	if err != nil {
		return fmt.Errorf("load queue items: %w", err)
	}
	lastSync, err := q.store.LastSync(ctx)
	if err != nil {
		return fmt.Errorf("load last sync: %w", err)
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = items
	q.lastSync = lastSync
	return nil
}

// Enqueue appends a snapshot. The item is kept in memory even when
// persisting it fails; the returned error reports the persistence failure.
func (q *Queue) Enqueue(ctx context.Context, key string, version int64, payload []byte) (storage.QueueItem, error) {
	item := storage.QueueItem{
		ID:         uuid.NewString(),
		Key:        key,
		Version:    version,
		Payload:    slices.Clone(payload),
		EnqueuedAt: q.now().UTC(),
	}
	q.mu.Lock()
	q.items = append(q.items, item)
	q.mu.Unlock()

	if q.store == nil {
		return item, storage.ErrNotConfigured
	}
	if err := q.store.AppendQueueItem(ctx, item); err != nil {
		return item, fmt.Errorf("persist queue item %s: %w", item.ID, err)
	}
	return item, nil
}

// Drain applies every queued item in order and removes the ones that
// succeeded. Items enqueued while a drain runs wait for the next one.
func (q *Queue) Drain(ctx context.Context, apply ApplyFunc) DrainResult {
	q.mu.Lock()
	switch {
	case !q.online:
		q.mu.Unlock()
		return DrainResult{Skipped: SkipOffline}
	case q.syncing:
		q.mu.Unlock()
		return DrainResult{Skipped: SkipAlreadySyncing}
	case len(q.items) == 0:
		q.mu.Unlock()
		return DrainResult{Skipped: SkipQueueEmpty}
	}
	q.syncing = true
	batch := slices.Clone(q.items)
	q.mu.Unlock()

	ctx, span := tracer.Start(ctx, "syncqueue.drain")
	defer span.End()

	result := DrainResult{Total: len(batch)}
	delivered := make(map[string]struct{}, len(batch))
	ids := make([]string, 0, len(batch))
	for _, item := range batch {
		if err := apply(ctx, item); err != nil {
			result.Failed++
			result.Errors = append(result.Errors, fmt.Errorf("apply queue item %s: %w", item.ID, err))
			continue
		}
		result.Succeeded++
		delivered[item.ID] = struct{}{}
		ids = append(ids, item.ID)
	}

	if q.store != nil {
		if err := q.store.DeleteQueueItems(ctx, ids); err != nil {
			q.logf("syncqueue: remove delivered items: %v", err)
		}
	}
	syncedAt := q.now().UTC()
	q.mu.Lock()
	q.items = slices.DeleteFunc(q.items, func(item storage.QueueItem) bool {
		_, ok := delivered[item.ID]
		return ok
	})
	q.lastSync = syncedAt
	q.syncing = false
	q.mu.Unlock()

	if q.store != nil {
		if err := q.store.PutLastSync(ctx, syncedAt); err != nil {
			q.logf("syncqueue: record last sync: %v", err)
		}
	}

	span.SetAttributes(
		attribute.Int("syncqueue.total", result.Total),
		attribute.Int("syncqueue.succeeded", result.Succeeded),
		attribute.Int("syncqueue.failed", result.Failed),
	)
	if result.Failed > 0 {
		span.SetStatus(codes.Error, "some items failed")
	}
	q.logf("syncqueue: drained %d/%d items (%d failed)", result.Succeeded, result.Total, result.Failed)
	return result
}

// SetOnline records a connectivity change. Going online schedules the
// reconnect hook after the settle delay; going offline cancels it.
func (q *Queue) SetOnline(online bool) {
	q.mu.Lock()
	was := q.online
	q.online = online
	q.mu.Unlock()

	switch {
	case online && !was:
		q.logf("syncqueue: online, draining in %s", q.settle)
		q.debounced(q.settled)
	case !online && was:
		q.logf("syncqueue: offline")
		q.debounced(func() {})
	}
}

func (q *Queue) settled() {
	q.mu.Lock()
	online, hook := q.online, q.onReconnect
	q.mu.Unlock()
	if online && hook != nil {
		hook()
	}
}

// Online reports the last connectivity state.
func (q *Queue) Online() bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.online
}

// Pending returns how many items await delivery.
func (q *Queue) Pending() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Items returns a copy of the queued items in order.
func (q *Queue) Items() []storage.QueueItem {
	q.mu.Lock()
	defer q.mu.Unlock()
	return slices.Clone(q.items)
}

// Status returns a snapshot of the queue state.
func (q *Queue) Status() Status {
	q.mu.Lock()
	defer q.mu.Unlock()
	return Status{
		Online:   q.online,
		Syncing:  q.syncing,
		Pending:  len(q.items),
		LastSync: q.lastSync,
	}
}

// Clear drops every queued item. It is an explicit operator action: the
// dropped snapshots are never delivered.
func (q *Queue) Clear(ctx context.Context) error {
	if q.store != nil {
		if err := q.store.ClearQueue(ctx); err != nil {
			return fmt.Errorf("clear queue: %w", err)
		}
	}
	q.mu.Lock()
	dropped := len(q.items)
	q.items = nil
	q.mu.Unlock()
	q.logf("syncqueue: cleared %d items", dropped)
	return nil
}
