package core

import (
	"sync"

	"github.com/vovakirdan/snek/internal/game"
)

// Action is a semantic input, abstracted from physical keys.
type Action int

const (
	ActionNone Action = iota
	ActionUp
	ActionDown
	ActionLeft
	ActionRight
	ActionUpRight
	ActionDownRight
	ActionDownLeft
	ActionUpLeft
	ActionPause
	ActionReset
	ActionDebug
	ActionQuit
)

// String returns a human-readable name for the action.
func (a Action) String() string {
	switch a {
	case ActionNone:
		return "None"
	case ActionUp:
		return "Up"
	case ActionDown:
		return "Down"
	case ActionLeft:
		return "Left"
	case ActionRight:
		return "Right"
	case ActionUpRight:
		return "UpRight"
	case ActionDownRight:
		return "DownRight"
	case ActionDownLeft:
		return "DownLeft"
	case ActionUpLeft:
		return "UpLeft"
	case ActionPause:
		return "Pause"
	case ActionReset:
		return "Reset"
	case ActionDebug:
		return "Debug"
	case ActionQuit:
		return "Quit"
	default:
		return "Unknown"
	}
}

// Joystick maps a directional action to a stick position.
func (a Action) Joystick() (game.JoystickDir, bool) {
	switch a {
	case ActionUp:
		return game.N, true
	case ActionUpRight:
		return game.NE, true
	case ActionRight:
		return game.E, true
	case ActionDownRight:
		return game.SE, true
	case ActionDown:
		return game.S, true
	case ActionDownLeft:
		return game.SW, true
	case ActionLeft:
		return game.W, true
	case ActionUpLeft:
		return game.NW, true
	default:
		return game.Center, false
	}
}

// InputLatch turns key events into the edge-triggered reads the input task
// polls. Button presses are latched until read once; the stick holds its last
// position until it is sampled, then returns to Center.
// Safe for concurrent use by one producer and one consumer.
type InputLatch struct {
	mu    sync.Mutex
	edges map[Action]bool
	stick game.JoystickDir
}

// NewInputLatch creates an empty latch.
func NewInputLatch() *InputLatch {
	return &InputLatch{edges: make(map[Action]bool)}
}

// Press records an action.
func (l *InputLatch) Press(a Action) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if j, ok := a.Joystick(); ok {
		l.stick = j
		return
	}
	if a != ActionNone {
		l.edges[a] = true
	}
}

// Take reports and clears a latched button edge.
func (l *InputLatch) Take(a Action) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.edges[a] {
		return false
	}
	delete(l.edges, a)
	return true
}

// Stick returns the latched stick position and recenters it.
func (l *InputLatch) Stick() game.JoystickDir {
	l.mu.Lock()
	defer l.mu.Unlock()
	j := l.stick
	l.stick = game.Center
	return j
}

// PauseRequested reports a pause edge.
func (l *InputLatch) PauseRequested() bool { return l.Take(ActionPause) }

// ResetRequested reports a reset edge.
func (l *InputLatch) ResetRequested() bool { return l.Take(ActionReset) }

// DebugToggled reports a debug-overlay edge.
func (l *InputLatch) DebugToggled() bool { return l.Take(ActionDebug) }

// Joystick returns the stick position for this sample.
func (l *InputLatch) Joystick() game.JoystickDir { return l.Stick() }
