// Package system wires the snek tasks onto the scheduler: input, simulation,
// render, monitor, the game clock timer and the buzzer.
package system

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/errgroup"

	"github.com/vovakirdan/snek/internal/audio"
	"github.com/vovakirdan/snek/internal/config"
	"github.com/vovakirdan/snek/internal/diag"
	"github.com/vovakirdan/snek/internal/game"
	"github.com/vovakirdan/snek/internal/rtos"
)

// Task names as they appear in the monitor report.
const (
	TaskInput   = "Input"
	TaskSnek    = "Snek"
	TaskRender  = "Render"
	TaskMonitor = "Monitor"
	TaskBuzzer  = "Buzzer"
	TimerChrono = "Chrono"
)

// Display draws frames. None of its methods may block indefinitely.
type Display interface {
	DrawFrame(f game.Frame, d diag.Diagnostics, debug bool)
	DrawDeathScreen(score, highScore int)
	DrawFatalError(task string)
}

// InputDevice is polled by the input task. Buttons are edge-triggered.
type InputDevice interface {
	PauseRequested() bool
	ResetRequested() bool
	DebugToggled() bool
	Joystick() game.JoystickDir
}

// DiagnosticsSink receives every monitor sample off the scheduler.
type DiagnosticsSink interface {
	RecordDiagnostics(d diag.Diagnostics) error
}

// Deps are the collaborators a System runs against.
type Deps struct {
	Display Display
	Input   InputDevice
	Sink    audio.Sink
	Clock   rtos.Clock
	Logger  *log.Logger
	Sinks   []DiagnosticsSink
	Seed    int64
}

const diagQueueLen = 4

// System owns every task and every shared object between them.
type System struct {
	cfg    config.Config
	logger *log.Logger
	clock  rtos.Clock

	kernel  *rtos.Kernel
	state   *game.State
	engine  *game.Engine
	dirs    *rtos.Mailbox[game.Direction]
	gate    *rtos.Gate
	lcd     *rtos.TimedMutex
	emitter *audio.Emitter
	filter  *game.DirectionFilter

	display Display
	input   InputDevice
	sinks   []DiagnosticsSink
	diagQ   *rtos.Queue[diag.Diagnostics]

	renderTiming *diag.TimingSampler
	frames       diag.FrameCounter
	board        diag.Board
	lastSampleUs uint64
	sampled      bool
	debug        atomic.Bool
	fatalTask    atomic.Pointer[string]
}

// New builds the system. Any allocation failure is returned before a task
// has run.
func New(cfg config.Config, deps Deps) (*System, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("system: %w", err)
	}
	if deps.Display == nil || deps.Input == nil {
		return nil, errors.New("system: display and input are required")
	}
	if deps.Logger == nil {
		deps.Logger = log.Default()
	}
	if deps.Clock == nil {
		deps.Clock = rtos.NewMonotonicClock()
	}

	s := &System{
		cfg:          cfg,
		logger:       deps.Logger,
		clock:        deps.Clock,
		gate:         &rtos.Gate{},
		lcd:          rtos.NewTimedMutex(),
		filter:       game.NewDirectionFilter(),
		display:      deps.Display,
		input:        deps.Input,
		sinks:        deps.Sinks,
		renderTiming: diag.NewTimingSampler(uint32(cfg.Tasks.Render.Period.Microseconds())),
	}
	s.debug.Store(cfg.Display.Debug)

	var err error
	if s.dirs, err = rtos.NewMailbox[game.Direction](1); err != nil {
		return nil, fmt.Errorf("system: direction channel: %w", err)
	}
	if s.diagQ, err = rtos.NewQueue[diag.Diagnostics](diagQueueLen); err != nil {
		return nil, fmt.Errorf("system: diagnostics queue: %w", err)
	}
	if s.emitter, err = audio.NewEmitter(cfg.Audio.QueueLength, deps.Sink, deps.Logger); err != nil {
		return nil, fmt.Errorf("system: tone queue: %w", err)
	}

	s.state = game.NewState()
	s.engine = game.NewEngine(game.Config{
		Width:       cfg.Grid.Width,
		Height:      cfg.Grid.Height,
		StartLength: cfg.Grid.StartLength,
	}, s.state, s.dirs, s.gate, s.emitter, game.NewClock(cfg.Tasks.Chrono), deps.Seed)

	s.kernel = rtos.NewKernel(rtos.Config{
		Tick:            cfg.Kernel.Tick,
		MaxTasks:        cfg.Kernel.MaxTasks,
		TimerStackWords: uint32(cfg.Kernel.TimerStackWords),
		Clock:           deps.Clock,
		Logger:          deps.Logger,
	})
	s.kernel.SetFatalHook(s.fatal)

	if err := s.createTasks(); err != nil {
		return nil, fmt.Errorf("system: %w", err)
	}
	return s, nil
}

func (s *System) createTasks() error {
	t := s.cfg.Tasks
	specs := []rtos.TaskSpec{
		{Name: TaskInput, Period: t.Input.Period, Priority: rtos.Priority(t.Input.Priority), StackWords: uint32(t.Input.StackWords), Body: s.inputTask},
		{Name: TaskSnek, Period: t.Snek.Period, Priority: rtos.Priority(t.Snek.Priority), StackWords: uint32(t.Snek.StackWords), Body: s.snekTask},
		{Name: TaskRender, Period: t.Render.Period, Priority: rtos.Priority(t.Render.Priority), StackWords: uint32(t.Render.StackWords), Body: s.renderTask},
		// the first sample covers a full period
		{Name: TaskMonitor, Period: t.Monitor.Period, Priority: rtos.Priority(t.Monitor.Priority), StackWords: uint32(t.Monitor.StackWords), Body: s.monitorTask, Phase: t.Monitor.Period},
	}
	for _, spec := range specs {
		if _, err := s.kernel.CreateTask(spec); err != nil {
			return err
		}
	}

	if _, err := s.kernel.Spawn(TaskBuzzer, uint32(t.Buzzer.StackWords), s.emitter.Run); err != nil {
		return err
	}

	_, err := s.kernel.CreateTimer(TimerChrono, t.Chrono, func() {
		s.engine.Clock().Tick(s.state.Running())
	})
	return err
}

// Run starts the buzzer and the diagnostics pump, then schedules tasks until
// ctx is done. After a stack overflow it returns rtos.ErrHalted.
func (s *System) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return s.kernel.Run(gctx)
	})
	if len(s.sinks) > 0 {
		g.Go(func() error {
			return s.pump(gctx)
		})
	}

	s.logger.Info("snek started",
		"grid", fmt.Sprintf("%dx%d", s.cfg.Grid.Width, s.cfg.Grid.Height),
		"tick", s.cfg.Kernel.Tick,
		"sinks", len(s.sinks))

	err := g.Wait()
	if errors.Is(err, rtos.ErrHalted) {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}
	return err
}

// Step runs one scheduler tick synchronously. The buzzer and pump only run
// under Run.
func (s *System) Step() {
	s.kernel.Step()
}

// pump forwards monitor samples to the sinks until ctx is done.
func (s *System) pump(ctx context.Context) error {
	for {
		d, err := s.diagQ.Receive(ctx)
		if err != nil {
			return nil
		}
		s.deliver(d)
	}
}

func (s *System) deliver(d diag.Diagnostics) {
	for _, sink := range s.sinks {
		if err := sink.RecordDiagnostics(d); err != nil {
			s.logger.Warn("diagnostics sink failed", "seq", d.Seq, "error", err)
		}
	}
}

// FlushDiagnostics delivers queued samples synchronously. Used after Step
// driven runs, where no pump goroutine exists.
func (s *System) FlushDiagnostics() int {
	n := 0
	for {
		d, ok := s.diagQ.TryReceive()
		if !ok {
			return n
		}
		s.deliver(d)
		n++
	}
}

// fatal is the kernel's overflow hook. It paints the fatal screen if the
// display can be had in time.
func (s *System) fatal(task string) {
	s.fatalTask.Store(&task)
	s.logger.Error("fatal: stack overflow, scheduler halted", "task", task)

	if !s.lcd.TryLockFor(context.Background(), s.cfg.Display.LockTimeout) {
		s.logger.Warn("display busy, fatal screen not drawn", "task", task)
		return
	}
	defer s.lcd.Unlock()
	s.display.DrawFatalError(task)
}

// Engine returns the simulation engine.
func (s *System) Engine() *game.Engine { return s.engine }

// State returns the shared game state.
func (s *System) State() *game.State { return s.state }

// Kernel returns the scheduler.
func (s *System) Kernel() *rtos.Kernel { return s.kernel }

// Emitter returns the tone emitter.
func (s *System) Emitter() *audio.Emitter { return s.emitter }

// Diagnostics returns the latest monitor sample.
func (s *System) Diagnostics() diag.Diagnostics { return s.board.Load() }

// Debug reports whether the debug overlay is on.
func (s *System) Debug() bool { return s.debug.Load() }

// Halted reports whether a stack overflow stopped the system.
func (s *System) Halted() bool { return s.kernel.Halted() }

// FatalTask returns the task that overflowed, if any.
func (s *System) FatalTask() (string, bool) {
	if p := s.fatalTask.Load(); p != nil {
		return *p, true
	}
	return "", false
}

// Uptime returns the scheduler time covered so far.
func (s *System) Uptime() time.Duration {
	return time.Duration(s.kernel.Ticks()) * s.kernel.TickDuration()
}
