package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	apperrors "github.com/louisbranch/pitchside/internal/platform/errors"
	"github.com/louisbranch/pitchside/internal/platform/timeouts"
	"github.com/louisbranch/pitchside/internal/services/tracker/storage"
	"github.com/louisbranch/pitchside/internal/services/tracker/syncqueue"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("github.com/louisbranch/pitchside/internal/services/tracker/app")

// ErrWriterStopped is returned for requests made after the writer exits.
var ErrWriterStopped = errors.New("outbound writer stopped")

type outboundRequest struct {
	record *storage.SnapshotRecord
	ctx    context.Context
	reply  chan outboundReply
}

type outboundReply struct {
	err   error
	drain syncqueue.DrainResult
}

// Writer is the single goroutine that writes snapshots outward. Direct saves
// and queue drains both pass through it, so they never interleave.
//
// A save always lands in the local store first. With a remote configured it
// is then written remotely when the queue reports online, and queued
// otherwise or when the remote write fails.
type Writer struct {
	local   storage.SnapshotStore
	remote  storage.SnapshotStore
	queue   *syncqueue.Queue
	timeout time.Duration
	logf    func(format string, args ...any)

	requests chan outboundRequest
	done     chan struct{}
}

// WriterConfig wires a Writer.
type WriterConfig struct {
	Local storage.SnapshotStore
	// Remote may be nil, in which case only the local store is written.
	Remote        storage.SnapshotStore
	Queue         *syncqueue.Queue
	RemoteTimeout time.Duration
	Logf          func(format string, args ...any)
}

// NewWriter builds a Writer; call Run to start it.
func NewWriter(cfg WriterConfig) *Writer {
	if cfg.RemoteTimeout <= 0 {
		cfg.RemoteTimeout = timeouts.RemoteRequest
	}
	if cfg.Logf == nil {
		cfg.Logf = log.Printf
	}
	return &Writer{
		local:    cfg.Local,
		remote:   cfg.Remote,
		queue:    cfg.Queue,
		timeout:  cfg.RemoteTimeout,
		logf:     cfg.Logf,
		requests: make(chan outboundRequest),
		done:     make(chan struct{}),
	}
}

// Run serves requests until ctx is canceled.
func (w *Writer) Run(ctx context.Context) error {
	defer close(w.done)
	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-w.requests:
			var reply outboundReply
			if req.record != nil {
				reply.err = w.save(req.ctx, *req.record)
			} else {
				reply.drain = w.drain(req.ctx)
			}
			req.reply <- reply
		}
	}
}

// Save writes record through the writer goroutine and waits for it.
func (w *Writer) Save(ctx context.Context, record storage.SnapshotRecord) error {
	reply, err := w.call(ctx, &record)
	if err != nil {
		return err
	}
	return reply.err
}

// Drain delivers queued snapshots through the writer goroutine.
func (w *Writer) Drain(ctx context.Context) (syncqueue.DrainResult, error) {
	reply, err := w.call(ctx, nil)
	if err != nil {
		return syncqueue.DrainResult{}, err
	}
	return reply.drain, nil
}

func (w *Writer) call(ctx context.Context, record *storage.SnapshotRecord) (outboundReply, error) {
	req := outboundRequest{record: record, ctx: ctx, reply: make(chan outboundReply, 1)}
	select {
	case w.requests <- req:
	case <-w.done:
		return outboundReply{}, ErrWriterStopped
	case <-ctx.Done():
		return outboundReply{}, ctx.Err()
	}
	return <-req.reply, nil
}

func (w *Writer) save(ctx context.Context, record storage.SnapshotRecord) error {
	ctx, span := tracer.Start(ctx, "tracker.save_snapshot", trace.WithAttributes(
		attribute.String("snapshot.key", record.Key),
		attribute.Int64("snapshot.version", record.Version),
	))
	defer span.End()

	var localErr error
	if w.local != nil {
		if err := w.local.SaveSnapshot(ctx, record); err != nil && !errors.Is(err, storage.ErrStale) {
			localErr = fmt.Errorf("save local snapshot: %w", err)
			w.logf("tracker: %v", localErr)
		}
	}
	if w.remote == nil {
		return localErr
	}
	if w.queue != nil && !w.queue.Online() {
		return errors.Join(localErr, w.enqueue(ctx, record))
	}

	err := w.saveRemote(ctx, record)
	switch {
	case err == nil:
		return localErr
	case errors.Is(err, storage.ErrStale):
		w.logf("tracker: remote already holds a newer snapshot than v%d; dropped", record.Version)
		return localErr
	case apperrors.IsCode(err, apperrors.CodeSnapshotMalformed):
		w.logf("tracker: remote rejected snapshot v%d, not queueing: %v", record.Version, err)
		return errors.Join(localErr, err)
	default:
		w.logf("tracker: remote save v%d failed, queueing: %v", record.Version, err)
		return errors.Join(localErr, w.enqueue(ctx, record))
	}
}

func (w *Writer) saveRemote(ctx context.Context, record storage.SnapshotRecord) error {
	ctx, cancel := context.WithTimeout(ctx, w.timeout)
	defer cancel()
	return w.remote.SaveSnapshot(ctx, record)
}

func (w *Writer) enqueue(ctx context.Context, record storage.SnapshotRecord) error {
	if w.queue == nil {
		return nil
	}
	if _, err := w.queue.Enqueue(ctx, record.Key, record.Version, record.Payload); err != nil {
		return fmt.Errorf("enqueue snapshot: %w", err)
	}
	return nil
}

func (w *Writer) drain(ctx context.Context) syncqueue.DrainResult {
	if w.queue == nil || w.remote == nil {
		return syncqueue.DrainResult{Skipped: syncqueue.SkipQueueEmpty}
	}
	result := w.queue.Drain(ctx, func(ctx context.Context, item storage.QueueItem) error {
		err := w.saveRemote(ctx, storage.SnapshotRecord{
			Key:       item.Key,
			Version:   item.Version,
			Payload:   item.Payload,
			UpdatedAt: item.EnqueuedAt,
		})
		switch {
		case errors.Is(err, storage.ErrStale):
			w.logf("tracker: queued snapshot v%d is older than remote; dropped", item.Version)
			return nil
		case apperrors.IsCode(err, apperrors.CodeSnapshotMalformed):
			w.logf("tracker: DATA LOSS: remote rejected queued snapshot v%d as malformed; dropped: %v", item.Version, err)
			return nil
		}
		return err
	})
	for _, err := range result.Errors {
		w.logf("tracker: %v", err)
	}
	return result
}
