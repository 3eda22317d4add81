// Package timeouts defines shared durations used by the tracker runtime.
package timeouts

import "time"

// Tick is the wall-clock period of one match-clock second.
const Tick = time.Second

// SaveDebounce is the quiet period before a snapshot save is issued.
const SaveDebounce = 500 * time.Millisecond

// OnlineSettle delays the automatic drain after connectivity returns so a
// flapping connection does not trigger a drain per flap.
const OnlineSettle = time.Second

// Probe is the interval between remote reachability checks.
const Probe = 5 * time.Second

// RemoteRequest caps a single remote store round trip.
const RemoteRequest = 5 * time.Second

// ReadHeader limits how long an HTTP server waits for request headers.
const ReadHeader = 5 * time.Second

// Shutdown limits how long servers wait for in-flight work during graceful
// shutdown.
const Shutdown = 5 * time.Second
