package tui

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/game"
)

// blockingRunner runs until its context ends, or returns err at once.
type blockingRunner struct {
	err error
}

func (r blockingRunner) Run(ctx context.Context) error {
	if r.err != nil {
		return r.err
	}
	<-ctx.Done()
	return ctx.Err()
}

func testModel(t *testing.T, r Runner) (Model, *core.InputLatch, context.CancelFunc) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	latch := core.NewInputLatch()
	m := newModel(NewDisplay(8, 8), latch, 10*time.Millisecond, start(ctx, r), cancel)
	return m, latch, cancel
}

func TestModelForwardsKeys(t *testing.T) {
	m, latch, _ := testModel(t, blockingRunner{})

	next, cmd := m.Update(runeKey('d'))
	if cmd != nil {
		t.Error("steering should not produce a command")
	}
	m = next.(Model)
	if got := latch.Stick(); got != game.E {
		t.Errorf("stick = %v, expected E", got)
	}

	m.Update(runeKey('p'))
	m.Update(runeKey('r'))
	if !latch.PauseRequested() || !latch.ResetRequested() {
		t.Error("pause and reset should be latched")
	}
	if latch.DebugToggled() {
		t.Error("debug was never pressed")
	}
}

func TestModelQuitCancelsLoop(t *testing.T) {
	m, _, _ := testModel(t, blockingRunner{})

	next, cmd := m.Update(runeKey('q'))
	if cmd == nil {
		t.Fatal("quit should return tea.Quit")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Error("quit command should produce tea.QuitMsg")
	}
	if next.(Model).View() != "" {
		t.Error("quitting model should render nothing")
	}

	msg := m.run.wait()
	stopped, ok := msg.(stoppedMsg)
	if !ok || !errors.Is(stopped.err, context.Canceled) {
		t.Errorf("wait() = %#v, expected cancellation", msg)
	}
}

func TestModelKeepsScreenAfterHalt(t *testing.T) {
	halt := errors.New("halted")
	m, latch, _ := testModel(t, blockingRunner{err: halt})
	m.display.DrawFatalError("Render")

	next, cmd := m.Update(m.run.wait())
	if cmd != nil {
		t.Error("a halted loop should leave the program running")
	}
	m = next.(Model)
	if !errors.Is(m.Err(), halt) {
		t.Errorf("Err() = %v, expected %v", m.Err(), halt)
	}

	view := m.View()
	if !strings.Contains(view, "STACK OVERFLOW") || !strings.Contains(view, "stopped: halted") {
		t.Errorf("view should keep the fatal screen and status:\n%s", view)
	}

	// input is ignored once stopped
	m.Update(runeKey('r'))
	if latch.ResetRequested() {
		t.Error("keys should not reach a stopped loop")
	}

	if _, cmd := m.Update(TickMsg(time.Now())); cmd != nil {
		t.Error("no repaint ticks after the loop stopped")
	}
}

func TestModelTickReschedules(t *testing.T) {
	m, _, _ := testModel(t, blockingRunner{})

	if _, cmd := m.Update(TickMsg(time.Now())); cmd == nil {
		t.Error("tick should schedule the next repaint")
	}
}

func TestModelHelpToggle(t *testing.T) {
	m, _, _ := testModel(t, blockingRunner{})

	short := m.View()
	next, _ := m.Update(runeKey('?'))
	full := next.(Model).View()

	if !strings.Contains(full, "NW") || strings.Contains(short, "NW") {
		t.Error("full help should list the diagonals only after ?")
	}
}
