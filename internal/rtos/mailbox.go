package rtos

import "fmt"

// Mailbox is a fixed-capacity slot paired with an admission semaphore.
// A value becomes receivable only after it has been written, so the
// admission count never runs ahead of the slot contents.
type Mailbox[T any] struct {
	slot  chan T
	admit *Semaphore
}

// NewMailbox creates a mailbox holding at most capacity values.
func NewMailbox[T any](capacity int) (*Mailbox[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("rtos: mailbox capacity %d: %w", capacity, ErrResourceExhausted)
	}
	return &Mailbox[T]{
		slot:  make(chan T, capacity),
		admit: NewSemaphore(capacity, 0),
	}, nil
}

// TrySend writes v if a slot is free. A full mailbox drops v and returns false.
func (m *Mailbox[T]) TrySend(v T) bool {
	select {
	case m.slot <- v:
		m.admit.Give()
		return true
	default:
		return false
	}
}

// TryReceive takes one admitted value, if any.
func (m *Mailbox[T]) TryReceive() (T, bool) {
	var zero T
	if !m.admit.TryTake() {
		return zero, false
	}
	select {
	case v := <-m.slot:
		return v, true
	default:
		// unreachable while every write is followed by Give
		return zero, false
	}
}

// Len returns the number of admitted values.
func (m *Mailbox[T]) Len() int {
	return m.admit.Count()
}

// Cap returns the mailbox capacity.
func (m *Mailbox[T]) Cap() int {
	return cap(m.slot)
}
