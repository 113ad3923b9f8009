package game

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ClockStep is the game clock resolution.
const ClockStep = 10 * time.Millisecond

// Clock counts play time. It only advances while the game is running.
type Clock struct {
	elapsedMs atomic.Uint32
	stepMs    uint32
}

// NewClock creates a clock advancing by step per tick.
func NewClock(step time.Duration) *Clock {
	ms := uint32(step.Milliseconds())
	if ms == 0 {
		ms = uint32(ClockStep.Milliseconds())
	}
	return &Clock{stepMs: ms}
}

// Tick adds one step if running.
func (c *Clock) Tick(running bool) {
	if running {
		c.elapsedMs.Add(c.stepMs)
	}
}

// Reset zeroes the clock.
func (c *Clock) Reset() {
	c.elapsedMs.Store(0)
}

// ElapsedMs returns the play time.
func (c *Clock) ElapsedMs() uint32 {
	return c.elapsedMs.Load()
}

// FormatGameTime renders milliseconds as MM:SS:CC.
func FormatGameTime(ms uint32) string {
	totalCs := ms / 10
	minutes := totalCs / 6000
	rem := totalCs % 6000
	return fmt.Sprintf("%02d:%02d:%02d", minutes, rem/100, rem%100)
}
