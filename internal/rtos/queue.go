package rtos

import (
	"context"
	"fmt"
)

// Queue is a bounded FIFO. Producers never block; the consumer may.
type Queue[T any] struct {
	ch chan T
}

// NewQueue creates a queue holding up to capacity items.
func NewQueue[T any](capacity int) (*Queue[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("rtos: queue capacity %d: %w", capacity, ErrResourceExhausted)
	}
	return &Queue[T]{ch: make(chan T, capacity)}, nil
}

// TrySend enqueues v, or drops it and returns false when the queue is full.
func (q *Queue[T]) TrySend(v T) bool {
	select {
	case q.ch <- v:
		return true
	default:
		return false
	}
}

// TryReceive dequeues one item without waiting.
func (q *Queue[T]) TryReceive() (T, bool) {
	select {
	case v := <-q.ch:
		return v, true
	default:
		var zero T
		return zero, false
	}
}

// Receive blocks until an item is available or ctx is done.
func (q *Queue[T]) Receive(ctx context.Context) (T, error) {
	select {
	case v := <-q.ch:
		return v, nil
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Len returns the number of queued items.
func (q *Queue[T]) Len() int {
	return len(q.ch)
}

// Cap returns the queue capacity.
func (q *Queue[T]) Cap() int {
	return cap(q.ch)
}
