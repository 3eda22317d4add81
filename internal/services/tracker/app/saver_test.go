package app

import (
	"sync/atomic"
	"testing"
	"time"
)

func TestSaverCoalescesBursts(t *testing.T) {
	var calls atomic.Int32
	s := NewSaver(20*time.Millisecond, func() { calls.Add(1) })

	for range 5 {
		s.Schedule()
	}
	waitFor(t, "debounced save", func() bool { return calls.Load() == 1 })
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Fatalf("saves = %d, want 1", got)
	}
	if s.Pending() {
		t.Fatal("expected nothing pending after save")
	}
}

func TestSaverFlush(t *testing.T) {
	var calls atomic.Int32
	s := NewSaver(time.Hour, func() { calls.Add(1) })

	s.Flush()
	if got := calls.Load(); got != 0 {
		t.Fatalf("saves after empty flush = %d, want 0", got)
	}

	s.Schedule()
	if !s.Pending() {
		t.Fatal("expected pending save")
	}
	s.Flush()
	if got := calls.Load(); got != 1 {
		t.Fatalf("saves after flush = %d, want 1", got)
	}
	s.Flush()
	if got := calls.Load(); got != 1 {
		t.Fatalf("saves after second flush = %d, want 1", got)
	}
}

func TestSaverDrop(t *testing.T) {
	var calls atomic.Int32
	s := NewSaver(20*time.Millisecond, func() { calls.Add(1) })

	s.Schedule()
	s.Drop()
	time.Sleep(60 * time.Millisecond)
	if got := calls.Load(); got != 0 {
		t.Fatalf("saves = %d, want 0", got)
	}
	if s.Pending() {
		t.Fatal("expected nothing pending after drop")
	}
}
