package rtos

import "sync/atomic"

// Semaphore is a bounded counting semaphore with non-blocking operations only.
type Semaphore struct {
	count atomic.Int32
	max   int32
}

// NewSemaphore creates a semaphore holding initial of max possible counts.
func NewSemaphore(max, initial int) *Semaphore {
	if max < 1 {
		max = 1
	}
	if initial < 0 {
		initial = 0
	}
	if initial > max {
		initial = max
	}
	s := &Semaphore{max: int32(max)}
	s.count.Store(int32(initial))
	return s
}

// Give raises the count by one. Returns false when already at max.
func (s *Semaphore) Give() bool {
	for {
		c := s.count.Load()
		if c >= s.max {
			return false
		}
		if s.count.CompareAndSwap(c, c+1) {
			return true
		}
	}
}

// TryTake lowers the count by one. Returns false when the count is zero.
func (s *Semaphore) TryTake() bool {
	for {
		c := s.count.Load()
		if c <= 0 {
			return false
		}
		if s.count.CompareAndSwap(c, c-1) {
			return true
		}
	}
}

// Count returns the current count.
func (s *Semaphore) Count() int {
	return int(s.count.Load())
}

// Max returns the upper bound.
func (s *Semaphore) Max() int {
	return int(s.max)
}
