// Package worker defines the pool that drains the reaction queue and
// applies each event through the engine.
package worker

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strconv"
	"time"

	"github.com/spotline/spotline/internal/domain/fault"
	"github.com/spotline/spotline/internal/domain/model"
	"github.com/spotline/spotline/pkg/logger"
	"github.com/spotline/spotline/pkg/metrics"
)

// Default worker configuration constants.
const (
	defaultWorkerMultiplier = 2 // multiplier for runtime.NumCPU()
	workerShutdownTimeout   = 5 * time.Second
	poolShutdownTimeout     = 30 * time.Second
)

// Event is what workers read off the queue.
type Event = model.ReactionEvent

// Applier applies one reaction event: the mutation, the score
// recomputation and the signal evaluation that follows.
type Applier interface {
	ApplyReaction(ctx context.Context, ev Event) error
}

// Queue defines how workers receive events.
type Queue interface {
	Dequeue(ctx context.Context) <-chan Event
}

// Worker processes reaction events until stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown gracefully stops the worker.
	Shutdown(ctx context.Context) error
}

// ReactionWorker implements Worker over an Applier.
type ReactionWorker struct {
	queue   Queue
	applier Applier
	name    string

	// Shutdown control
	shutdown chan struct{}
	done     chan struct{}

	// Logging
	logger logger.Logger
}

// NewReactionWorker creates a new worker with configuration options.
func NewReactionWorker(queue Queue, applier Applier, opts ...Option) *ReactionWorker {
	w := &ReactionWorker{
		queue:    queue,
		applier:  applier,
		name:     "worker",
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   logger.Get().Named("worker"),
	}

	for _, opt := range opts {
		opt(w)
	}

	if w.name != "worker" {
		w.logger = w.logger.Named(w.name)
	}

	return w
}

// Run starts the worker loop.
func (w *ReactionWorker) Run(ctx context.Context) {
	defer close(w.done)

	eventChan := w.queue.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			if err := w.processEvent(ctx, event); err != nil {
				w.logger.Error(ctx, "error processing reaction event", logger.Error(err))
			}
		}
	}
}

// Shutdown gracefully stops the worker.
func (w *ReactionWorker) Shutdown(ctx context.Context) error {
	close(w.shutdown)

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

// processEvent applies a single reaction event. Fault-coded rejections
// (duplicate reaction, missing sighting) are expected under at-least-once
// delivery and are counted, not escalated.
func (w *ReactionWorker) processEvent(ctx context.Context, event Event) error {
	start := time.Now()
	defer func() {
		latency := time.Since(start).Milliseconds()
		metrics.RecordWorkerProcessingLatency(float64(latency))
	}()

	err := w.applier.ApplyReaction(ctx, event)
	if err != nil {
		var f *fault.Error
		if errors.As(err, &f) {
			metrics.RecordReactionRejected(string(f.Code))
			w.logger.Debug(ctx, "reaction event rejected",
				logger.String("eventID", event.EventID),
				logger.String("code", string(f.Code)),
			)
			return nil
		}

		metrics.RecordWorkerError()
		w.logger.Error(ctx, "applying reaction event failed",
			logger.String("eventID", event.EventID),
			logger.Error(err),
		)
		return fmt.Errorf("apply reaction event %s: %w", event.EventID, err)
	}

	metrics.RecordReactionProcessed()

	return nil
}

// Pool manages multiple workers.
type Pool struct {
	workers []*ReactionWorker
	queue   Queue
	applier Applier

	// Logging
	logger logger.Logger
}

// NewPool creates a new worker pool.
func NewPool(workerCount int, queue Queue, applier Applier) *Pool {
	if workerCount < 1 {
		workerCount = runtime.NumCPU() * defaultWorkerMultiplier
	}

	pool := &Pool{
		workers: make([]*ReactionWorker, workerCount),
		queue:   queue,
		applier: applier,
		logger:  logger.Get().Named("worker-pool"),
	}

	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewReactionWorker(
			queue,
			applier,
			WithName("worker-"+strconv.Itoa(i)),
		)
	}

	metrics.UpdateWorkerActiveCount(workerCount)

	return pool
}

// Start starts all workers in the pool.
func (p *Pool) Start(ctx context.Context) {
	for _, worker := range p.workers {
		go worker.Run(ctx)
	}
}

// Stop signals every worker and waits for each to finish.
func (p *Pool) Stop() {
	for _, worker := range p.workers {
		close(worker.shutdown)
	}

	for _, worker := range p.workers {
		select {
		case <-worker.done:
		case <-time.After(workerShutdownTimeout):
		}
	}

	metrics.UpdateWorkerActiveCount(0)
}

// Shutdown closes the queue and waits for every worker to drain.
func (p *Pool) Shutdown(ctx context.Context) error {
	if closer, ok := p.queue.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	shutdownCtx, cancel := context.WithTimeout(ctx, poolShutdownTimeout)
	defer cancel()

	for i, worker := range p.workers {
		select {
		case <-worker.done:
		case <-shutdownCtx.Done():
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}

	metrics.UpdateWorkerActiveCount(0)

	return nil
}
