package app

import (
	"sync"
	"time"

	"github.com/bep/debounce"
)

// Saver coalesces save requests: save runs once after a quiet period with no
// further Schedule calls.
type Saver struct {
	debounced func(f func())
	save      func()

	mu      sync.Mutex
	pending bool
}

// NewSaver returns a Saver that calls save after quiet has elapsed.
func NewSaver(quiet time.Duration, save func()) *Saver {
	return &Saver{debounced: debounce.New(quiet), save: save}
}

// Schedule (re)starts the quiet period.
func (s *Saver) Schedule() {
	s.mu.Lock()
	s.pending = true
	s.mu.Unlock()
	s.debounced(s.fire)
}

// Flush runs a pending save immediately on the caller's goroutine.
func (s *Saver) Flush() {
	if s.takePending() {
		s.debounced(func() {})
		s.save()
	}
}

// Drop discards a pending save.
func (s *Saver) Drop() {
	s.takePending()
	s.debounced(func() {})
}

// Pending reports whether a save is waiting for its quiet period.
func (s *Saver) Pending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.pending
}

func (s *Saver) fire() {
	if s.takePending() {
		s.save()
	}
}

func (s *Saver) takePending() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	was := s.pending
	s.pending = false
	return was
}
