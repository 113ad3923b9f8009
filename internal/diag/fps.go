package diag

import (
	"sync/atomic"
	"time"
)

// FrameCounter counts rendered frames between monitor samples.
type FrameCounter struct {
	frames atomic.Uint32
}

// Inc counts one frame.
func (c *FrameCounter) Inc() {
	c.frames.Add(1)
}

// Frames returns the frames counted so far in this window.
func (c *FrameCounter) Frames() uint32 {
	return c.frames.Load()
}

// DrainFPS returns frames per second averaged over window and restarts the count.
func (c *FrameCounter) DrainFPS(window time.Duration) uint32 {
	frames := uint64(c.frames.Swap(0))
	ms := uint64(window.Milliseconds())
	if ms == 0 {
		return 0
	}
	return uint32(frames * 1000 / ms)
}
