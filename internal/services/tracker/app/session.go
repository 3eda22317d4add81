package app

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/louisbranch/pitchside/internal/platform/timeouts"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/match"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/season"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/snapshot"
	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
)

// Persister receives encoded snapshots from a Session.
type Persister interface {
	Save(ctx context.Context, record storage.SnapshotRecord) error
}

// SessionConfig wires a Session.
type SessionConfig struct {
	Key          string
	Initial      Loaded
	Persister    Persister
	SaveDebounce time.Duration
	TickInterval time.Duration
	NewTicker    TickerFactory
	Now          func() time.Time
	Logf         func(format string, args ...any)
}

// Session owns the season. Every transition runs under one lock, so actions
// never interleave; the match clock and the debounced save are driven from
// here.
type Session struct {
	key       string
	persister Persister
	saver     *Saver
	interval  time.Duration
	newTicker TickerFactory
	now       func() time.Time
	logf      func(format string, args ...any)

	mu      sync.Mutex
	state   season.State
	version int64
	closed  bool

	// clockGen identifies the running clock goroutine. A tick carrying any
	// other generation is ignored, so a stopped clock cannot advance a match.
	clockGen   uint64
	clockStop  chan struct{}
	clockMatch int64
}

// NewSession builds a session and starts the clock if the current match is
// live and running.
func NewSession(cfg SessionConfig) *Session {
	if cfg.SaveDebounce <= 0 {
		cfg.SaveDebounce = timeouts.SaveDebounce
	}
	if cfg.TickInterval <= 0 {
		cfg.TickInterval = timeouts.Tick
	}
	if cfg.NewTicker == nil {
		cfg.NewTicker = NewTimeTicker
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Logf == nil {
		cfg.Logf = log.Printf
	}
	s := &Session{
		key:       cfg.Key,
		persister: cfg.Persister,
		interval:  cfg.TickInterval,
		newTicker: cfg.NewTicker,
		now:       cfg.Now,
		logf:      cfg.Logf,
		state:     cfg.Initial.State.Clone(),
		version:   cfg.Initial.Version,
	}
	s.saver = NewSaver(cfg.SaveDebounce, s.persist)

	s.mu.Lock()
	s.reconcileClockLocked()
	s.mu.Unlock()
	return s
}

// State returns a copy of the season.
func (s *Session) State() season.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Version returns the version of the last encoded snapshot.
func (s *Session) Version() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.version
}

// Dispatch applies a season action. Accepted actions schedule a save.
func (s *Session) Dispatch(act season.Action) season.Decision {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dispatchLocked(act)
}

// DispatchMatch applies a match action to the current match.
func (s *Session) DispatchMatch(act match.Action) season.Decision {
	return s.Dispatch(season.ApplyToCurrent{Action: act})
}

func (s *Session) dispatchLocked(act season.Action) season.Decision {
	decision := season.Decide(s.state, act, s.now)
	if decision.Rejected() {
		return decision
	}
	s.state = decision.State
	for _, w := range decision.Warnings {
		s.logf("tracker: %s: %s", w.Code, w.Message)
	}
	if !s.closed {
		s.saver.Schedule()
	}
	s.reconcileClockLocked()
	return decision
}

func (s *Session) tick(gen uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if gen != s.clockGen || s.closed {
		return
	}
	decision := s.dispatchLocked(season.ApplyToCurrent{Action: match.Tick{}})
	if decision.Rejected() {
		s.reconcileClockLocked()
	}
}

// reconcileClockLocked starts or stops the clock so that it runs exactly
// while the current match is live with its clock running.
func (s *Session) reconcileClockLocked() {
	current, ok := s.state.Current()
	want := ok && !s.closed && current.Status == match.StatusLive && current.ClockRunning
	running := s.clockStop != nil

	switch {
	case want && running && s.clockMatch == current.ID:
		return
	case !want && !running:
		return
	}
	if running {
		close(s.clockStop)
		s.clockStop = nil
		s.clockGen++
	}
	if want {
		s.clockGen++
		s.clockStop = make(chan struct{})
		s.clockMatch = current.ID
		go s.runClock(s.clockGen, s.clockStop, s.newTicker(s.interval))
	}
}

func (s *Session) runClock(gen uint64, stop <-chan struct{}, ticker Ticker) {
	defer ticker.Stop()
	for {
		select {
		case <-stop:
			return
		case <-ticker.C():
			s.tick(gen)
		}
	}
}

// ClockRunning reports whether a clock goroutine is active.
func (s *Session) ClockRunning() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.clockStop != nil
}

// Flush writes a pending save now.
func (s *Session) Flush() {
	s.saver.Flush()
}

// Close stops the clock and flushes any pending save. Later actions still
// change state but are no longer saved.
func (s *Session) Close() {
	s.mu.Lock()
	s.closed = true
	s.reconcileClockLocked()
	s.mu.Unlock()
	s.saver.Flush()
}

// persist encodes the current season under a new version and hands it to
// the persister.
func (s *Session) persist() {
	s.mu.Lock()
	payload, err := snapshot.Encode(s.state)
	if err != nil {
		s.mu.Unlock()
		s.logf("tracker: encode snapshot: %v", err)
		return
	}
	s.version = nextVersion(s.version, s.now())
	record := storage.SnapshotRecord{
		Key:       s.key,
		Version:   s.version,
		Payload:   payload,
		UpdatedAt: s.now().UTC(),
	}
	s.mu.Unlock()

	if s.persister == nil {
		return
	}
	if err := s.persister.Save(context.Background(), record); err != nil {
		s.logf("tracker: save snapshot v%d: %v", record.Version, err)
	}
}

// nextVersion is strictly greater than last and tracks wall-clock
// microseconds, so versions keep increasing across restarts.
func nextVersion(last int64, now time.Time) int64 {
	if v := now.UnixMicro(); v > last {
		return v
	}
	return last + 1
}
