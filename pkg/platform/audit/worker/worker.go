// Package worker decouples audit emission from audit persistence. The
// verification path appends to an in-process queue and returns; the worker
// drains the queue into the durable sink in the background.
package worker

import (
	"context"
	"fmt"
	"log/slog"

	audit "signet/pkg/platform/audit"
)

// Queue is a bounded in-process audit sink. Append never blocks the caller; a
// full queue returns an error so the emitter can log the loss.
type Queue struct {
	inbox chan audit.Event
}

func NewQueue(size int) *Queue {
	if size <= 0 {
		size = 256
	}
	return &Queue{inbox: make(chan audit.Event, size)}
}

func (q *Queue) Append(_ context.Context, event audit.Event) error {
	select {
	case q.inbox <- event:
		return nil
	default:
		return fmt.Errorf("audit queue is full")
	}
}

// Worker drains a queue into the durable sink.
type Worker struct {
	queue  *Queue
	sink   audit.Sink
	logger *slog.Logger
}

func NewWorker(queue *Queue, sink audit.Sink, logger *slog.Logger) *Worker {
	return &Worker{queue: queue, sink: sink, logger: logger}
}

// Run forwards queued events until the context is cancelled. Sink failures are
// logged and the event dropped; the trail is best-effort by contract and one
// poisoned event must not wedge the queue.
func (w *Worker) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			w.drain()
			return
		case event := <-w.queue.inbox:
			w.forward(ctx, event)
		}
	}
}

// drain flushes whatever is still queued at shutdown.
func (w *Worker) drain() {
	for {
		select {
		case event := <-w.queue.inbox:
			w.forward(context.Background(), event)
		default:
			return
		}
	}
}

func (w *Worker) forward(ctx context.Context, event audit.Event) {
	if err := w.sink.Append(ctx, event); err != nil && w.logger != nil {
		w.logger.Error("failed to persist audit event",
			"signature_id", event.SignatureID,
			"action", event.Action,
			"error", err,
		)
	}
}
