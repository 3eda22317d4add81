package app

import (
	"context"
	"errors"
	"sync"
	"testing"
)

type scriptedPinger struct {
	mu      sync.Mutex
	results []bool
	calls   int
}

func (p *scriptedPinger) Ping(context.Context) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	idx := min(p.calls, len(p.results)-1)
	p.calls++
	if p.results[idx] {
		return nil
	}
	return errors.New("unreachable")
}

func TestWatcherReportsTransitions(t *testing.T) {
	pinger := &scriptedPinger{results: []bool{false, false, true, true, false}}
	changes := make(chan bool, 10)
	tickers := &tickerFactory{}
	logs := &logRecorder{}

	w := NewWatcher(pinger, 0, 0, func(online bool) { changes <- online }, logs.logf)
	w.newTicker = tickers.new

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	waitFor(t, "watcher ticker", func() bool { return tickers.count() == 1 })
	ticker := tickers.last()
	for range 4 {
		ticker.ch <- fixedNow
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("run: %v", err)
	}
	close(changes)

	var got []bool
	for online := range changes {
		got = append(got, online)
	}
	want := []bool{false, true, false}
	if len(got) != len(want) {
		t.Fatalf("changes = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("changes = %v, want %v", got, want)
		}
	}
	if !ticker.isStopped() {
		t.Fatal("expected ticker stopped after run")
	}
	if !logs.contains("reachable") {
		t.Fatal("expected transitions to be logged")
	}
}
