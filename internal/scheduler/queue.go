package scheduler

import (
	"context"
	"fmt"
	"time"

	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/entity"
)

// Queue is the bounded FIFO in front of the worker pool. The priority hint
// on a request is accepted and carried but never reorders the queue;
// arrival order is the only order.
type Queue struct {
	ch      chan entity.ProcessingRequest
	timeout time.Duration
}

// NewQueue builds a queue holding up to capacity requests. Enqueue gives up
// after enqueueTimeout when the queue stays full.
func NewQueue(capacity int, enqueueTimeout time.Duration) *Queue {
	if capacity <= 0 {
		capacity = 1000
	}
	if enqueueTimeout <= 0 {
		enqueueTimeout = 5 * time.Second
	}
	return &Queue{
		ch:      make(chan entity.ProcessingRequest, capacity),
		timeout: enqueueTimeout,
	}
}

// Enqueue appends a request, waiting up to the enqueue timeout for space.
// A full queue past the timeout is an overload, not an indefinite block.
func (q *Queue) Enqueue(ctx context.Context, req entity.ProcessingRequest) error {
	select {
	case q.ch <- req:
		return nil
	default:
	}

	timer := time.NewTimer(q.timeout)
	defer timer.Stop()
	select {
	case q.ch <- req:
		return nil
	case <-timer.C:
		return fmt.Errorf("%w: queue full", common.ErrOverloaded)
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Dequeue pops the oldest request, waiting at most poll before giving up.
// The second return is false on a poll expiry or a dead context, so the
// dispatcher can re-check its shutdown signal between waits.
func (q *Queue) Dequeue(ctx context.Context, poll time.Duration) (entity.ProcessingRequest, bool) {
	if poll <= 0 {
		poll = time.Second
	}
	timer := time.NewTimer(poll)
	defer timer.Stop()
	select {
	case req := <-q.ch:
		return req, true
	case <-timer.C:
		return entity.ProcessingRequest{}, false
	case <-ctx.Done():
		return entity.ProcessingRequest{}, false
	}
}

// Depth returns the number of queued requests.
func (q *Queue) Depth() int {
	return len(q.ch)
}
