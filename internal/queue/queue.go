package queue

import (
	"context"
	"sync"
)

// Queue is an unbounded multi-producer FIFO. Push never blocks; Pop blocks
// until an entry is available or the context is done.
type Queue[T any] struct {
	mu      sync.Mutex
	entries []T
	head    int
	ready   chan struct{}
}

func New[T any]() *Queue[T] {
	return &Queue[T]{
		ready: make(chan struct{}, 1),
	}
}

// Push appends an entry and wakes a waiting consumer.
func (q *Queue[T]) Push(entry T) {
	q.mu.Lock()
	q.entries = append(q.entries, entry)
	q.mu.Unlock()

	select {
	case q.ready <- struct{}{}:
	default:
	}
}

// Pop removes the oldest entry, waiting for one if the queue is empty.
func (q *Queue[T]) Pop(ctx context.Context) (T, error) {
	for {
		if entry, ok := q.tryPop(); ok {
			return entry, nil
		}

		select {
		case <-ctx.Done():
			var zero T
			return zero, ctx.Err()
		case <-q.ready:
		}
	}
}

// Len returns the number of queued entries.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.entries) - q.head
}

func (q *Queue[T]) tryPop() (T, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()

	var zero T
	if q.head == len(q.entries) {
		return zero, false
	}

	entry := q.entries[q.head]
	q.entries[q.head] = zero
	q.head++

	// reclaim the consumed prefix once it dominates the backing array
	if q.head == len(q.entries) {
		q.entries, q.head = q.entries[:0], 0
	} else if q.head > 1024 && q.head*2 > len(q.entries) {
		q.entries = append(q.entries[:0:0], q.entries[q.head:]...)
		q.head = 0
	}

	return entry, true
}
