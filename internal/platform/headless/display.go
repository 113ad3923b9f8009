// Package headless drives snek without a terminal: a display that only
// counts what it is asked to draw, and an autopilot standing in for the
// player. The bench command runs on it.
package headless

import (
	"sync"

	"github.com/vovakirdan/snek/internal/diag"
	"github.com/vovakirdan/snek/internal/game"
)

// NullDisplay accepts every draw and remembers the last frame.
type NullDisplay struct {
	mu         sync.Mutex
	frames     uint64
	deaths     uint64
	last       game.Frame
	hasFrame   bool
	debugDraws uint64
	fatalTask  string
}

// NewNullDisplay returns an empty display.
func NewNullDisplay() *NullDisplay {
	return &NullDisplay{}
}

func (d *NullDisplay) DrawFrame(f game.Frame, _ diag.Diagnostics, debug bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.frames++
	if debug {
		d.debugDraws++
	}
	d.last = f
	d.hasFrame = true
}

func (d *NullDisplay) DrawDeathScreen(score, highScore int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.deaths++
}

func (d *NullDisplay) DrawFatalError(task string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.fatalTask = task
}

// Last returns the most recent frame and whether one was drawn.
func (d *NullDisplay) Last() (game.Frame, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.last, d.hasFrame
}

// Frames counts DrawFrame calls.
func (d *NullDisplay) Frames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.frames
}

// DebugFrames counts frames drawn with the overlay.
func (d *NullDisplay) DebugFrames() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.debugDraws
}

// Deaths counts death screens.
func (d *NullDisplay) Deaths() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.deaths
}

// FatalTask returns the task named by the fatal screen, if any.
func (d *NullDisplay) FatalTask() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.fatalTask
}
