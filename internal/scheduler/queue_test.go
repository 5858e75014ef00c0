package scheduler

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Ahzem/ocr-agent/internal/common"
	"github.com/Ahzem/ocr-agent/internal/entity"
)

// TestQueueFIFOOrder checks that requests come back in arrival order even
// when their priority hints say otherwise.
func TestQueueFIFOOrder(t *testing.T) {
	q := NewQueue(4, time.Second)
	ctx := context.Background()

	for i, id := range []string{"first", "second", "third"} {
		req := entity.ProcessingRequest{ID: id, Priority: 10 - i}
		if err := q.Enqueue(ctx, req); err != nil {
			t.Fatalf("Enqueue(%s) error: %v", id, err)
		}
	}
	if got := q.Depth(); got != 3 {
		t.Fatalf("Depth() = %d, want 3", got)
	}

	for _, want := range []string{"first", "second", "third"} {
		req, ok := q.Dequeue(ctx, time.Second)
		if !ok {
			t.Fatalf("Dequeue() gave up, want %s", want)
		}
		if req.ID != want {
			t.Errorf("Dequeue() = %s, want %s", req.ID, want)
		}
	}
	if got := q.Depth(); got != 0 {
		t.Errorf("Depth() after drain = %d, want 0", got)
	}
}

// TestQueueEnqueueTimesOutWhenFull checks that a full queue turns into an
// overload error after the enqueue timeout instead of blocking forever.
func TestQueueEnqueueTimesOutWhenFull(t *testing.T) {
	q := NewQueue(1, 30*time.Millisecond)
	ctx := context.Background()

	if err := q.Enqueue(ctx, entity.ProcessingRequest{ID: "only"}); err != nil {
		t.Fatalf("Enqueue(only) error: %v", err)
	}

	start := time.Now()
	err := q.Enqueue(ctx, entity.ProcessingRequest{ID: "overflow"})
	if !errors.Is(err, common.ErrOverloaded) {
		t.Fatalf("Enqueue(overflow) error = %v, want ErrOverloaded", err)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Enqueue(overflow) took %v, want prompt overload", elapsed)
	}
}

// TestQueueEnqueueCanceledContext checks that context cancellation wins over
// a long enqueue timeout when the queue is full.
func TestQueueEnqueueCanceledContext(t *testing.T) {
	q := NewQueue(1, time.Minute)
	if err := q.Enqueue(context.Background(), entity.ProcessingRequest{ID: "only"}); err != nil {
		t.Fatalf("Enqueue(only) error: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := q.Enqueue(ctx, entity.ProcessingRequest{ID: "overflow"}); !errors.Is(err, context.Canceled) {
		t.Fatalf("Enqueue() error = %v, want context.Canceled", err)
	}
}

// TestQueueDequeuePollExpiry checks that an empty queue returns ok=false
// after one poll interval so the dispatcher can re-check for shutdown.
func TestQueueDequeuePollExpiry(t *testing.T) {
	q := NewQueue(1, time.Second)

	start := time.Now()
	_, ok := q.Dequeue(context.Background(), 20*time.Millisecond)
	if ok {
		t.Fatal("Dequeue() on empty queue reported a request")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Dequeue() took %v, want one short poll", elapsed)
	}
}

// TestQueueDequeueCanceledContext checks that a dead context unblocks
// Dequeue before the poll interval runs out.
func TestQueueDequeueCanceledContext(t *testing.T) {
	q := NewQueue(1, time.Second)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	start := time.Now()
	if _, ok := q.Dequeue(ctx, time.Minute); ok {
		t.Fatal("Dequeue() with canceled context reported a request")
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Errorf("Dequeue() took %v, want immediate return", elapsed)
	}
}
