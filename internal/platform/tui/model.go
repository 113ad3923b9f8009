package tui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snek/internal/core"
)

// Runner is the control loop driven behind the terminal, usually a
// *system.System.
type Runner interface {
	Run(ctx context.Context) error
}

// run tracks one Runner goroutine.
type run struct {
	done chan struct{}
	err  error
}

func start(ctx context.Context, r Runner) *run {
	rn := &run{done: make(chan struct{})}
	go func() {
		defer close(rn.done)
		rn.err = r.Run(ctx)
	}()
	return rn
}

// stoppedMsg reports that the control loop returned.
type stoppedMsg struct{ err error }

func (rn *run) wait() tea.Msg {
	<-rn.done
	return stoppedMsg{err: rn.err}
}

var statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))

// Model is the Bubble Tea model for one snek session. It forwards keys to
// the input latch and repaints from the Display on a fixed refresh.
type Model struct {
	display *Display
	latch   *core.InputLatch
	keys    KeyMap
	help    help.Model
	refresh time.Duration
	run     *run
	cancel  context.CancelFunc

	stopped  bool
	err      error
	quitting bool
}

func newModel(display *Display, latch *core.InputLatch, refresh time.Duration, rn *run, cancel context.CancelFunc) Model {
	h := help.New()
	h.ShowAll = false
	return Model{
		display: display,
		latch:   latch,
		keys:    DefaultKeyMap(),
		help:    h,
		refresh: refresh,
		run:     rn,
		cancel:  cancel,
	}
}

// Init starts the repaint loop and watches the control loop.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tickCmd(m.refresh), m.run.wait)
}

// Update handles messages and updates the model state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.help.Width = msg.Width
		return m, nil

	case TickMsg:
		if m.stopped {
			return m, nil
		}
		return m, tickCmd(m.refresh)

	case stoppedMsg:
		m.stopped = true
		m.err = msg.err
		if errors.Is(msg.err, context.Canceled) || errors.Is(msg.err, context.DeadlineExceeded) {
			m.quitting = true
			return m, tea.Quit
		}
		// keep the fatal screen up until the user quits
		return m, nil
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.String() == "?" {
		m.help.ShowAll = !m.help.ShowAll
		return m, nil
	}

	action := m.keys.MapKey(msg)
	if action == core.ActionQuit {
		m.quitting = true
		m.cancel()
		return m, tea.Quit
	}
	if action != core.ActionNone && !m.stopped {
		m.latch.Press(action)
	}
	return m, nil
}

// View renders the display and the help footer.
func (m Model) View() string {
	if m.quitting {
		return ""
	}

	footer := m.help.View(m.keys)
	if m.stopped {
		status := "stopped"
		if m.err != nil {
			status = "stopped: " + m.err.Error()
		}
		footer = statusStyle.Render(status) + "  " + footer
	}
	return m.display.View() + "\n" + footer
}

// Err returns the control loop's exit error once it has stopped.
func (m Model) Err() error {
	return m.err
}

// Play runs r behind a Bubble Tea program until the user quits or the
// control loop stops on its own and the user dismisses it.
func Play(ctx context.Context, r Runner, display *Display, latch *core.InputLatch, refresh time.Duration, opts ...tea.ProgramOption) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	rn := start(ctx, r)
	model := newModel(display, latch, refresh, rn, cancel)

	p := tea.NewProgram(model, append([]tea.ProgramOption{tea.WithAltScreen()}, opts...)...)
	_, err := p.Run()

	cancel()
	<-rn.done
	if err != nil {
		return err
	}
	if rn.err != nil && !errors.Is(rn.err, context.Canceled) {
		return rn.err
	}
	return nil
}
