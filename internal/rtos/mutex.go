package rtos

import (
	"context"
	"time"
)

// TimedMutex is a mutual-exclusion lock whose acquisition can be bounded.
type TimedMutex struct {
	ch chan struct{}
}

// NewTimedMutex creates an unlocked mutex.
func NewTimedMutex() *TimedMutex {
	return &TimedMutex{ch: make(chan struct{}, 1)}
}

// TryLockFor waits up to d for the lock. A zero d polls once.
func (m *TimedMutex) TryLockFor(ctx context.Context, d time.Duration) bool {
	select {
	case m.ch <- struct{}{}:
		return true
	default:
	}
	if d <= 0 {
		return false
	}

	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case m.ch <- struct{}{}:
		return true
	case <-timer.C:
		return false
	case <-ctx.Done():
		return false
	}
}

// Lock waits for the lock until ctx is done.
func (m *TimedMutex) Lock(ctx context.Context) error {
	select {
	case m.ch <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Unlock releases the lock. Unlocking an unlocked mutex panics.
func (m *TimedMutex) Unlock() {
	select {
	case <-m.ch:
	default:
		panic("rtos: unlock of unlocked TimedMutex")
	}
}
