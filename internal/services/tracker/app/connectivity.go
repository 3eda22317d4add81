package app

import (
	"context"
	"log"
	"time"

	"github.com/louisbranch/pitchside/internal/platform/timeouts"
	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
)

// Watcher probes the remote store and reports reachability changes.
type Watcher struct {
	pinger    storage.Pinger
	interval  time.Duration
	timeout   time.Duration
	onChange  func(online bool)
	logf      func(format string, args ...any)
	newTicker TickerFactory
}

// NewWatcher returns a Watcher calling onChange on every transition and once
// after the first probe.
func NewWatcher(pinger storage.Pinger, interval, timeout time.Duration, onChange func(bool), logf func(string, ...any)) *Watcher {
	if interval <= 0 {
		interval = timeouts.Probe
	}
	if timeout <= 0 {
		timeout = timeouts.RemoteRequest
	}
	if logf == nil {
		logf = log.Printf
	}
	return &Watcher{
		pinger:    pinger,
		interval:  interval,
		timeout:   timeout,
		onChange:  onChange,
		logf:      logf,
		newTicker: NewTimeTicker,
	}
}

// Run probes immediately, then on every interval until ctx is canceled.
func (w *Watcher) Run(ctx context.Context) error {
	ticker := w.newTicker(w.interval)
	defer ticker.Stop()

	wasOnline := w.probe(ctx)
	w.logf("tracker: remote store %s", onlineWord(wasOnline))
	w.onChange(wasOnline)

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C():
			isOnline := w.probe(ctx)
			if isOnline == wasOnline {
				continue
			}
			wasOnline = isOnline
			w.logf("tracker: remote store %s", onlineWord(isOnline))
			w.onChange(isOnline)
		}
	}
}

func (w *Watcher) probe(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	return w.pinger.Ping(ctx) == nil
}

func onlineWord(online bool) string {
	if online {
		return "reachable"
	}
	return "unreachable"
}
