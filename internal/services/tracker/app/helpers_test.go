package app

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
)

var fixedNow = time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", what)
}

type logRecorder struct {
	mu    sync.Mutex
	lines []string
}

func (l *logRecorder) logf(format string, args ...any) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.lines = append(l.lines, fmt.Sprintf(format, args...))
}

func (l *logRecorder) contains(substr string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	for _, line := range l.lines {
		if strings.Contains(line, substr) {
			return true
		}
	}
	return false
}

// memStore is an in-memory SnapshotStore with the same version guard as the
// real stores.
type memStore struct {
	mu      sync.Mutex
	records map[string]storage.SnapshotRecord
	saveErr error
	loadErr error
	saves   int
}

func newMemStore() *memStore {
	return &memStore{records: make(map[string]storage.SnapshotRecord)}
}

func (m *memStore) SaveSnapshot(_ context.Context, record storage.SnapshotRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saves++
	if m.saveErr != nil {
		return m.saveErr
	}
	if existing, ok := m.records[record.Key]; ok && existing.Version >= record.Version {
		return storage.ErrStale
	}
	m.records[record.Key] = record
	return nil
}

func (m *memStore) LoadSnapshot(_ context.Context, key string) (storage.SnapshotRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.loadErr != nil {
		return storage.SnapshotRecord{}, m.loadErr
	}
	record, ok := m.records[key]
	if !ok {
		return storage.SnapshotRecord{}, storage.ErrNotFound
	}
	return record, nil
}

func (m *memStore) put(record storage.SnapshotRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[record.Key] = record
}

func (m *memStore) get(key string) (storage.SnapshotRecord, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.records[key]
	return record, ok
}

func (m *memStore) setSaveErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saveErr = err
}

func (m *memStore) saveCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.saves
}

// manualTicker fires only when the test sends on ch.
type manualTicker struct {
	ch      chan time.Time
	mu      sync.Mutex
	stopped bool
}

func (m *manualTicker) C() <-chan time.Time { return m.ch }

func (m *manualTicker) Stop() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopped = true
}

func (m *manualTicker) isStopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopped
}

type tickerFactory struct {
	mu      sync.Mutex
	tickers []*manualTicker
}

func (f *tickerFactory) new(time.Duration) Ticker {
	f.mu.Lock()
	defer f.mu.Unlock()
	ticker := &manualTicker{ch: make(chan time.Time)}
	f.tickers = append(f.tickers, ticker)
	return ticker
}

func (f *tickerFactory) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.tickers)
}

func (f *tickerFactory) last() *manualTicker {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.tickers[len(f.tickers)-1]
}
