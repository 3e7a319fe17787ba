package queue

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"sync"
)

// ErrClosed is returned by Enqueue after Close.
var ErrClosed = errors.New("queue closed")

// ImmediateQueue runs each job on its own goroutine as soon as it is enqueued.
type ImmediateQueue struct {
	mu      sync.RWMutex
	handler Handler
	closed  bool
	wg      sync.WaitGroup
	logger  *slog.Logger
}

// NewImmediateQueue constructs the queue.
func NewImmediateQueue(logger *slog.Logger) *ImmediateQueue {
	if logger == nil {
		logger = slog.Default()
	}
	return &ImmediateQueue{logger: logger.With("component", "queue.immediate")}
}

// SetHandler replaces the handler used for queued jobs.
func (q *ImmediateQueue) SetHandler(handler Handler) {
	q.mu.Lock()
	q.handler = handler
	q.mu.Unlock()
}

// Enqueue encodes payload and invokes the handler asynchronously.
func (q *ImmediateQueue) Enqueue(ctx context.Context, name string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	q.mu.RLock()
	defer q.mu.RUnlock()
	if q.closed {
		return ErrClosed
	}
	handler := q.handler
	if handler == nil {
		return errors.New("queue handler not set")
	}
	q.wg.Add(1)
	go func() {
		defer q.wg.Done()
		if err := handler(ctx, name, encoded); err != nil {
			q.logger.Warn("job failed", "job", name, "error", err)
		}
	}()
	return nil
}

// Close rejects new jobs and waits for in-flight ones.
func (q *ImmediateQueue) Close() error {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
	q.wg.Wait()
	return nil
}

var _ HandlerQueue = (*ImmediateQueue)(nil)
