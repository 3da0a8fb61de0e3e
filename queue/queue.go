// Package queue provides an unbounded first-in-first-out queue that can be shared between goroutines.
package queue

import (
	"context"
	"sync"
)

// Queue is an ordered list of values that never blocks the producer.
type Queue[T any] struct {
	mu     sync.Mutex
	items  []T
	ready  chan struct{}
	closed bool
}

// New creates an empty queue.
func New[T any]() *Queue[T] {
	q := Queue[T]{
		ready: make(chan struct{}, 1),
	}
	return &q
}

// Push adds the value to the back of the queue.  False is returned if the queue is closed.
func (q *Queue[T]) Push(v T) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.items = append(q.items, v)
	q.signal()
	return true
}

// Pop removes the value at the front of the queue, waiting for one to be pushed if it is empty.
// False is returned when the queue is closed and empty or the context is done.
func (q *Queue[T]) Pop(ctx context.Context) (T, bool) {
	var zero T
	for {
		q.mu.Lock()
		if len(q.items) != 0 {
			v := q.items[0]
			q.items[0] = zero
			q.items = q.items[1:]
			if len(q.items) != 0 {
				q.signal()
			}
			q.mu.Unlock()
			return v, true
		}
		if q.closed {
			q.signal()
			q.mu.Unlock()
			return zero, false
		}
		q.mu.Unlock()
		select { // BLOCKING
		case <-ctx.Done():
			return zero, false
		case <-q.ready:
		}
	}
}

// Len is the number of values in the queue.
func (q *Queue[T]) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Close stops values from being pushed.  Values already in the queue can still be popped.
func (q *Queue[T]) Close() {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.closed = true
	q.signal()
}

// signal wakes a waiting Pop without blocking.  The lock must be held.
func (q *Queue[T]) signal() {
	select {
	case q.ready <- struct{}{}:
	default:
	}
}
