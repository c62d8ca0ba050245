package jobs

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"dispatch/internal/core/ports"
	"dispatch/internal/observability"

	"golang.org/x/sync/errgroup"
)

const (
	DefaultMatchingWorkers   = 4
	DefaultMatchingQueueSize = 256
	DefaultMatchingTimeout   = 30 * time.Second
)

var (
	ErrExecutorQueueFull = errors.New("matching executor queue is full")
	ErrExecutorStopped   = errors.New("matching executor is stopped")
)

type queuedTask struct {
	name string
	run  ports.Task
}

// MatchingExecutor runs background tasks on a fixed pool of workers. It
// implements ports.TaskScheduler. Every task gets a fresh context bounded by
// the task timeout, independent of the request that scheduled it.
//
// Example:
//
//	executor := jobs.NewMatchingExecutor(4, 256, 30*time.Second, logger)
//	executor.Start()
//	defer executor.Stop(shutdownCtx)
type MatchingExecutor struct {
	queue   chan queuedTask
	workers int
	timeout time.Duration
	sync    bool
	logger  *slog.Logger

	mu      sync.RWMutex
	stopped bool
	group   errgroup.Group
}

// NewMatchingExecutor builds an asynchronous executor. Non-positive arguments
// fall back to the defaults.
func NewMatchingExecutor(workers, queueSize int, timeout time.Duration, logger *slog.Logger) *MatchingExecutor {
	if workers <= 0 {
		workers = DefaultMatchingWorkers
	}
	if queueSize <= 0 {
		queueSize = DefaultMatchingQueueSize
	}
	if timeout <= 0 {
		timeout = DefaultMatchingTimeout
	}
	return &MatchingExecutor{
		queue:   make(chan queuedTask, queueSize),
		workers: workers,
		timeout: timeout,
		logger:  logger.With("component", "MatchingExecutor"),
	}
}

// NewSyncExecutor runs every task inside Schedule, before it returns.
func NewSyncExecutor(timeout time.Duration, logger *slog.Logger) *MatchingExecutor {
	e := NewMatchingExecutor(1, 1, timeout, logger)
	e.sync = true
	return e
}

// Start launches the workers. It does nothing for a synchronous executor.
func (e *MatchingExecutor) Start() {
	if e.sync {
		return
	}
	for range e.workers {
		e.group.Go(func() error {
			for t := range e.queue {
				observability.ExecutorQueueDepth.Dec()
				e.execute(t)
			}
			return nil
		})
	}
	e.logger.Info("matching executor started", "workers", e.workers, "queue_size", cap(e.queue))
}

// Schedule queues task without blocking. It fails when the executor is
// stopped or its queue is full.
func (e *MatchingExecutor) Schedule(_ context.Context, name string, task ports.Task) error {
	t := queuedTask{name: name, run: task}

	e.mu.RLock()
	if e.stopped {
		e.mu.RUnlock()
		observability.ExecutorRejectedTotal.Inc()
		return ErrExecutorStopped
	}
	if e.sync {
		e.mu.RUnlock()
		e.execute(t)
		return nil
	}
	defer e.mu.RUnlock()

	select {
	case e.queue <- t:
		observability.ExecutorQueueDepth.Inc()
		return nil
	default:
		observability.ExecutorRejectedTotal.Inc()
		return ErrExecutorQueueFull
	}
}

// Stop refuses new tasks and waits for queued ones to finish, or for ctx to
// end. Tasks still queued when ctx ends are abandoned; the search expiry
// sweep recovers their jobs.
func (e *MatchingExecutor) Stop(ctx context.Context) error {
	e.mu.Lock()
	if e.stopped {
		e.mu.Unlock()
		return nil
	}
	e.stopped = true
	close(e.queue)
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		_ = e.group.Wait()
		close(done)
	}()

	select {
	case <-done:
		e.logger.Info("matching executor drained")
		return nil
	case <-ctx.Done():
		e.logger.Warn("matching executor stopped before draining", "pending", len(e.queue))
		return ctx.Err()
	}
}

func (e *MatchingExecutor) execute(t queuedTask) {
	ctx, cancel := context.WithTimeout(context.Background(), e.timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			e.logger.ErrorContext(ctx, "background task panicked", "task", t.name, "panic", r)
		}
	}()

	t.run(ctx)
}
