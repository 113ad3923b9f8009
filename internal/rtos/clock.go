// Package rtos provides the small real-time substrate the game runs on:
// a tick-driven priority dispatcher, software timers, and the non-blocking
// primitives tasks use to talk to each other.
package rtos

import (
	"sync"
	"sync/atomic"
	"time"
)

// Clock is a monotonically increasing microsecond counter.
// Implementations are 64-bit so rollover never happens within a session.
type Clock interface {
	NowUs() uint64
}

// MonotonicClock reads the process monotonic clock.
type MonotonicClock struct {
	start time.Time
}

// NewMonotonicClock creates a clock that starts counting from zero now.
func NewMonotonicClock() *MonotonicClock {
	return &MonotonicClock{start: time.Now()}
}

// NowUs returns microseconds elapsed since the clock was created.
func (c *MonotonicClock) NowUs() uint64 {
	return uint64(time.Since(c.start).Microseconds())
}

// ManualClock only moves when told to. Used by tests and deterministic runs.
type ManualClock struct {
	now atomic.Uint64
}

// NewManualClock creates a manual clock at zero.
func NewManualClock() *ManualClock {
	return &ManualClock{}
}

// NowUs returns the current manual time.
func (c *ManualClock) NowUs() uint64 {
	return c.now.Load()
}

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) {
	c.now.Add(uint64(d.Microseconds()))
}

// AdvanceUs moves the clock forward by us microseconds.
func (c *ManualClock) AdvanceUs(us uint64) {
	c.now.Add(us)
}

// SimClock follows simulated time across ticks and host time within one,
// so a stepped run still measures what its task bodies cost. It never
// runs backwards: a tick that overran pushes the next one later.
type SimClock struct {
	mu   sync.Mutex
	base uint64
	last uint64
	mark time.Time
	now  func() time.Time
}

// NewSimClock creates a simulated clock at zero.
func NewSimClock() *SimClock {
	return &SimClock{mark: time.Now(), now: time.Now}
}

// NowUs returns simulated time plus host time since the last Advance.
func (c *SimClock) NowUs() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.base + uint64(c.now().Sub(c.mark).Microseconds())
	if t < c.last {
		t = c.last
	}
	c.last = t
	return t
}

// Advance starts the next simulated tick d after the previous one.
func (c *SimClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.base += uint64(d.Microseconds())
	if c.base < c.last {
		c.base = c.last
	}
	c.mark = c.now()
}
