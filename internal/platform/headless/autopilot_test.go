package headless

import (
	"testing"

	"github.com/vovakirdan/snek/internal/diag"
	"github.com/vovakirdan/snek/internal/game"
)

func frame(dir game.Direction, fruit game.Point, snake ...game.Point) game.Frame {
	return game.Frame{
		Width:     16,
		Height:    16,
		Snake:     snake,
		Fruit:     fruit,
		HasFruit:  true,
		Direction: dir,
		Phase:     game.PhaseRunning,
	}
}

func TestSteer(t *testing.T) {
	line := []game.Point{{X: 5, Y: 5}, {X: 4, Y: 5}, {X: 3, Y: 5}, {X: 2, Y: 5}}
	column := []game.Point{{X: 5, Y: 5}, {X: 5, Y: 6}, {X: 5, Y: 7}, {X: 5, Y: 8}}

	tests := []struct {
		name string
		f    game.Frame
		want game.Direction
	}{
		{"fruit ahead", frame(game.Right, game.Point{X: 9, Y: 5}, line...), game.Right},
		{"fruit below", frame(game.Right, game.Point{X: 5, Y: 9}, line...), game.Down},
		{"fruit above", frame(game.Right, game.Point{X: 5, Y: 1}, line...), game.Up},
		{"fruit behind turns instead of reversing", frame(game.Right, game.Point{X: 0, Y: 5}, line...), game.Right},
		{"shorter way wraps left", frame(game.Up, game.Point{X: 14, Y: 5}, column...), game.Left},
		{"shorter way wraps up", frame(game.Right, game.Point{X: 5, Y: 15}, line...), game.Up},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Steer(tt.f); got != tt.want {
				t.Errorf("Steer() = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestSteerAvoidsBody(t *testing.T) {
	// head at (5,5) heading up; the body wraps around its right side
	f := frame(game.Up, game.Point{X: 9, Y: 5},
		game.Point{X: 5, Y: 5},
		game.Point{X: 5, Y: 6},
		game.Point{X: 6, Y: 6},
		game.Point{X: 6, Y: 5},
		game.Point{X: 6, Y: 4},
		game.Point{X: 7, Y: 4},
	)

	if got := Steer(f); got != game.Up {
		t.Errorf("Steer() = %v, expected up", got)
	}
}

func TestAutopilotJoystick(t *testing.T) {
	d := NewNullDisplay()
	a := NewAutopilot(d, 1, 0)

	if got := a.Joystick(); got != game.Center {
		t.Errorf("Joystick() before any frame = %v, expected Center", got)
	}

	d.DrawFrame(frame(game.Right, game.Point{X: 5, Y: 9}, game.Point{X: 5, Y: 5}, game.Point{X: 4, Y: 5}), diag.Diagnostics{}, false)
	if got := a.Joystick(); got != game.S {
		t.Errorf("Joystick() = %v, expected S", got)
	}

	paused := frame(game.Right, game.Point{X: 5, Y: 9}, game.Point{X: 5, Y: 5})
	paused.Phase = game.PhasePaused
	d.DrawFrame(paused, diag.Diagnostics{}, false)
	if got := a.Joystick(); got != game.Center {
		t.Errorf("Joystick() while paused = %v, expected Center", got)
	}
}

func TestAutopilotNoiseIsSeeded(t *testing.T) {
	d := NewNullDisplay()
	a := NewAutopilot(d, 42, 1)
	b := NewAutopilot(d, 42, 1)

	for i := 0; i < 50; i++ {
		ja, jb := a.Joystick(), b.Joystick()
		if ja != jb {
			t.Fatalf("poll %d: %v != %v with the same seed", i, ja, jb)
		}
		if ja == game.Center {
			t.Fatalf("poll %d: noise should never be Center", i)
		}
	}
}

func TestAutopilotResetsOncePerDeath(t *testing.T) {
	d := NewNullDisplay()
	a := NewAutopilot(d, 1, 0)

	if a.ResetRequested() {
		t.Error("no reset before a death")
	}
	d.DrawDeathScreen(3, 3)
	d.DrawDeathScreen(3, 3)
	if !a.ResetRequested() {
		t.Error("reset expected after death")
	}
	if a.ResetRequested() {
		t.Error("reset should be pressed once")
	}
	d.DrawDeathScreen(1, 3)
	if !a.ResetRequested() || a.Resets() != 3 {
		t.Errorf("Resets() = %d after a third death screen, expected 3", a.Resets())
	}
	if a.PauseRequested() || a.DebugToggled() {
		t.Error("autopilot never pauses or toggles debug")
	}
}

func TestNullDisplay(t *testing.T) {
	d := NewNullDisplay()
	if _, ok := d.Last(); ok {
		t.Error("Last() reported a frame before any draw")
	}

	d.DrawFrame(game.Frame{Seq: 1}, diag.Diagnostics{}, false)
	d.DrawFrame(game.Frame{Seq: 2}, diag.Diagnostics{}, true)
	d.DrawFatalError("Render")

	f, ok := d.Last()
	if !ok || f.Seq != 2 {
		t.Errorf("Last() = %d, %v, expected 2, true", f.Seq, ok)
	}
	if d.Frames() != 2 || d.DebugFrames() != 1 {
		t.Errorf("Frames() = %d, DebugFrames() = %d, expected 2, 1", d.Frames(), d.DebugFrames())
	}
	if d.FatalTask() != "Render" {
		t.Errorf("FatalTask() = %q, expected Render", d.FatalTask())
	}
}
