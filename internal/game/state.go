package game

import "sync/atomic"

// State is the authoritative run/pause/reset/death record.
// Input may only toggle pause and request a reset; everything else is
// written by the engine.
type State struct {
	direction  atomic.Uint32
	running    atomic.Bool
	needsReset atomic.Bool
	killed     atomic.Bool
}

// NewState returns a running state heading Right.
func NewState() *State {
	s := &State{}
	s.direction.Store(uint32(Right))
	s.running.Store(true)
	return s
}

// Direction returns the current heading.
func (s *State) Direction() Direction { return Direction(s.direction.Load()) }

// Running reports whether the snake is moving.
func (s *State) Running() bool { return s.running.Load() }

// NeedsReset reports whether a reset is pending.
func (s *State) NeedsReset() bool { return s.needsReset.Load() }

// Killed reports whether the snake is dead.
func (s *State) Killed() bool { return s.killed.Load() }

// Phase names the state machine position.
func (s *State) Phase() Phase {
	switch {
	case s.Killed():
		return PhaseDead
	case s.Running():
		return PhaseRunning
	default:
		return PhasePaused
	}
}

// TogglePause flips Running and Paused. A dead snake stays dead.
// Returns the new running value.
func (s *State) TogglePause() bool {
	for {
		if s.killed.Load() {
			return false
		}
		old := s.running.Load()
		if s.running.CompareAndSwap(old, !old) {
			return !old
		}
	}
}

// RequestReset asks the engine to reinitialize on its next tick.
func (s *State) RequestReset() {
	s.needsReset.Store(true)
}

func (s *State) setDirection(d Direction) {
	s.direction.Store(uint32(d))
}

// kill enters Dead; running is cleared in the same step.
func (s *State) kill() {
	s.killed.Store(true)
	s.running.Store(false)
}

func (s *State) restart() {
	s.direction.Store(uint32(Right))
	s.killed.Store(false)
	s.running.Store(true)
	s.needsReset.Store(false)
}

// Phase is a position in the Running/Paused/Dead state machine.
type Phase uint8

const (
	PhaseRunning Phase = iota
	PhasePaused
	PhaseDead
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case PhaseRunning:
		return "running"
	case PhasePaused:
		return "paused"
	case PhaseDead:
		return "dead"
	default:
		return "unknown"
	}
}
