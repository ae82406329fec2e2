// Package stream holds the channel primitives used to push state to subscribers.
package stream

import "sync"

// Latest is a single-slot channel where a newer value replaces an unread one.
// Offer never blocks, which makes it safe to call from listener callbacks.
type Latest[T any] struct {
	mu     sync.Mutex
	ch     chan T
	closed bool
}

// NewLatest creates an open Latest
func NewLatest[T any]() *Latest[T] {
	return &Latest[T]{ch: make(chan T, 1)}
}

// C returns the receive side. It is closed by Close.
func (l *Latest[T]) C() <-chan T {
	return l.ch
}

// Offer publishes v, dropping any value the consumer has not read yet.
// Returns false once the stream is closed.
func (l *Latest[T]) Offer(v T) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return false
	}
	select {
	case <-l.ch:
	default:
	}
	l.ch <- v
	return true
}

// Close discards any unread value and closes the channel.
// After Close returns a receiver observes no further values.
func (l *Latest[T]) Close() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.closed {
		return
	}
	l.closed = true
	select {
	case <-l.ch:
	default:
	}
	close(l.ch)
}

// Closed reports whether Close was called
func (l *Latest[T]) Closed() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closed
}
