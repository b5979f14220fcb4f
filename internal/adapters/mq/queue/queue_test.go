package queue

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/okian/hackwreck/internal/domain/model"
)

func task(i int) Task {
	return Task{JobID: "job", Index: i, Item: model.BatchItem{GitHubURL: fmt.Sprintf("https://github.com/a/r%d", i), Status: "Winner"}}
}

func TestInMemoryQueue_BasicOperations(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}

	if !q.Enqueue(ctx, task(1)) {
		t.Error("expected enqueue to succeed")
	}
	if l := q.Len(ctx); l != 1 {
		t.Errorf("expected length 1, got %d", l)
	}

	got := <-q.Dequeue(ctx)
	if got.Index != 1 {
		t.Errorf("expected task 1, got %d", got.Index)
	}
	if l := q.Len(ctx); l != 0 {
		t.Errorf("expected length 0, got %d", l)
	}
}

func TestInMemoryQueue_Capacity(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(2))
	ctx := context.Background()

	if !q.Enqueue(ctx, task(1)) || !q.Enqueue(ctx, task(2)) {
		t.Fatal("expected first two enqueues to succeed")
	}
	if q.Enqueue(ctx, task(3)) {
		t.Error("expected enqueue to fail when full")
	}
	if q.Capacity() != 2 {
		t.Errorf("expected capacity 2, got %d", q.Capacity())
	}
}

func TestInMemoryQueue_Close(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(4))
	ctx := context.Background()
	q.Enqueue(ctx, task(1))

	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("second close should be a no-op, got %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, task(2)) {
		t.Error("expected enqueue on closed queue to fail")
	}

	// Buffered tasks drain before the channel closes.
	var got []int
	for tk := range q.Dequeue(ctx) {
		got = append(got, tk.Index)
	}
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("expected to drain [1], got %v", got)
	}
}

func TestInMemoryQueue_CancelledContext(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(1))
	ctx, cancel := context.WithCancel(context.Background())
	q.Enqueue(context.Background(), task(1))
	cancel()

	if q.Enqueue(ctx, task(2)) {
		t.Error("expected enqueue to fail on a full queue with a cancelled context")
	}
}

func TestInMemoryQueue_ConcurrentProducers(t *testing.T) {
	q := NewInMemoryQueue(WithCapacity(100))
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(base int) {
			defer wg.Done()
			for j := 0; j < 10; j++ {
				q.Enqueue(ctx, task(base*10+j))
			}
		}(i)
	}
	wg.Wait()

	if l := q.Len(ctx); l != 100 {
		t.Fatalf("expected 100 tasks, got %d", l)
	}

	out := q.Dequeue(ctx)
	seen := map[int]bool{}
	timeout := time.After(2 * time.Second)
	for len(seen) < 100 {
		select {
		case tk := <-out:
			seen[tk.Index] = true
		case <-timeout:
			t.Fatalf("timed out after %d tasks", len(seen))
		}
	}
	_ = q.Close()
}
