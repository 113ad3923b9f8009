package headless

import (
	"math/rand"
	"sync"

	"github.com/vovakirdan/snek/internal/game"
)

// FrameSource is where the autopilot looks at the board.
type FrameSource interface {
	Last() (game.Frame, bool)
	Deaths() uint64
}

// Autopilot plays snek by steering the head toward the fruit. With
// probability Noise a poll returns a random stick position instead.
// It presses reset once after every death.
type Autopilot struct {
	mu     sync.Mutex
	src    FrameSource
	rng    *rand.Rand
	noise  float64
	resets uint64
}

// NewAutopilot creates an autopilot reading frames from src.
func NewAutopilot(src FrameSource, seed int64, noise float64) *Autopilot {
	return &Autopilot{
		src:   src,
		rng:   rand.New(rand.NewSource(seed)),
		noise: noise,
	}
}

// Resets counts reset presses so far.
func (a *Autopilot) Resets() uint64 {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.resets
}

func (a *Autopilot) PauseRequested() bool { return false }

func (a *Autopilot) ResetRequested() bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	if d := a.src.Deaths(); d > a.resets {
		a.resets = d
		return true
	}
	return false
}

// DebugToggled is always false; bench sets the overlay from config.
func (a *Autopilot) DebugToggled() bool { return false }

func (a *Autopilot) Joystick() game.JoystickDir {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.noise > 0 && a.rng.Float64() < a.noise {
		return game.JoystickDir(1 + a.rng.Intn(8))
	}
	f, ok := a.src.Last()
	if !ok || !f.Running() || len(f.Snake) == 0 {
		return game.Center
	}
	return stickFor(Steer(f))
}

// Steer picks the next heading for f: toward the fruit along the shorter
// way around the torus, never reversing, and avoiding the body when some
// other heading is free.
func Steer(f game.Frame) game.Direction {
	head := f.Snake[0]
	var want []game.Direction
	if f.HasFruit {
		if dx := torusDelta(head.X, f.Fruit.X, f.Width); dx > 0 {
			want = append(want, game.Right)
		} else if dx < 0 {
			want = append(want, game.Left)
		}
		if dy := torusDelta(head.Y, f.Fruit.Y, f.Height); dy > 0 {
			want = append(want, game.Down)
		} else if dy < 0 {
			want = append(want, game.Up)
		}
	}
	want = append(want, f.Direction, game.Up, game.Right, game.Down, game.Left)

	body := make(map[game.Point]bool, len(f.Snake))
	// the tail moves out of the way this step
	for _, p := range f.Snake[:len(f.Snake)-1] {
		body[p] = true
	}

	for _, d := range want {
		if d == f.Direction.Opposite() {
			continue
		}
		dx, dy := d.Delta()
		if !body[head.Wrap(dx, dy, f.Width, f.Height)] {
			return d
		}
	}
	return f.Direction
}

// torusDelta is the signed shortest step count from a to b on a ring of n.
func torusDelta(a, b, n int) int {
	d := b - a
	switch {
	case d > n/2:
		d -= n
	case d < -n/2:
		d += n
	}
	return d
}

func stickFor(d game.Direction) game.JoystickDir {
	switch d {
	case game.Up:
		return game.N
	case game.Down:
		return game.S
	case game.Left:
		return game.W
	default:
		return game.E
	}
}
