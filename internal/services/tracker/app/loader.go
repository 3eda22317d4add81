package app

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/louisbranch/pitchside/internal/services/tracker/domain/season"
	"github.com/louisbranch/pitchside/internal/services/tracker/domain/snapshot"
	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
)

// LoadSource names where a loaded season came from.
type LoadSource string

const (
	SourceRemote LoadSource = "remote"
	SourceLocal  LoadSource = "local"
	SourceFresh  LoadSource = "fresh"
)

// Loaded is the season a session starts from.
type Loaded struct {
	State   season.State
	Version int64
	Source  LoadSource
}

// LoaderConfig wires LoadSeason.
type LoaderConfig struct {
	Key string
	// Remote may be nil.
	Remote        storage.SnapshotStore
	Local         storage.SnapshotStore
	RemoteTimeout time.Duration
	Fresh         func() season.State
	Logf          func(format string, args ...any)
}

// LoadSeason tries the remote store, then the local store, then falls back
// to a fresh season. A local snapshot newer than the remote one wins, since
// it holds edits not yet delivered. Undecodable payloads are logged as data
// loss and skipped.
func LoadSeason(ctx context.Context, cfg LoaderConfig) Loaded {
	logf := cfg.Logf
	if logf == nil {
		logf = log.Printf
	}

	var candidates []Loaded
	if cfg.Remote != nil {
		remoteCtx := ctx
		if cfg.RemoteTimeout > 0 {
			var cancel context.CancelFunc
			remoteCtx, cancel = context.WithTimeout(ctx, cfg.RemoteTimeout)
			defer cancel()
		}
		if loaded, ok := loadFrom(remoteCtx, cfg.Remote, cfg.Key, SourceRemote, logf); ok {
			candidates = append(candidates, loaded)
		}
	}
	if cfg.Local != nil {
		if loaded, ok := loadFrom(ctx, cfg.Local, cfg.Key, SourceLocal, logf); ok {
			candidates = append(candidates, loaded)
		}
	}

	if len(candidates) == 0 {
		fresh := season.NewState("")
		if cfg.Fresh != nil {
			fresh = cfg.Fresh()
		}
		logf("tracker: no saved season for %q, starting fresh", cfg.Key)
		return Loaded{State: fresh, Source: SourceFresh}
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if c.Version > best.Version {
			best = c
		}
	}
	logf("tracker: loaded season v%d from %s store", best.Version, best.Source)
	return best
}

func loadFrom(ctx context.Context, store storage.SnapshotStore, key string, source LoadSource, logf func(string, ...any)) (Loaded, bool) {
	record, err := store.LoadSnapshot(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return Loaded{}, false
	}
	if err != nil {
		logf("tracker: load %s snapshot: %v", source, err)
		return Loaded{}, false
	}
	state, err := snapshot.Decode(record.Payload)
	if err != nil {
		logf("tracker: DATA LOSS: %s snapshot %q v%d is unreadable and will be replaced: %v", source, key, record.Version, err)
		return Loaded{}, false
	}
	return Loaded{State: state, Version: record.Version, Source: source}, true
}
