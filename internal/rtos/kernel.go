package rtos

import (
	"context"
	"errors"
	"fmt"
	"math/bits"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
)

// Priority orders tasks released on the same tick. Higher runs first.
type Priority uint8

// MaxPriority is the highest priority a task may use.
const MaxPriority Priority = 31

const (
	// IdleTaskName is the pseudo-task that owns all unaccounted runtime.
	IdleTaskName = "IDLE"
	// TimerTaskName is the pseudo-task that runs software timer callbacks.
	TimerTaskName = "Tmr Svc"
)

// TaskFunc is the body of a periodic task. It runs to completion once per release.
type TaskFunc func(tc *TaskContext)

// SpawnFunc is the body of an event-driven task. It owns its own loop and
// returns when ctx is done.
type SpawnFunc func(ctx context.Context, tc *TaskContext) error

// TaskSpec describes a periodic task.
type TaskSpec struct {
	Name       string
	Period     time.Duration
	Priority   Priority
	StackWords uint32
	Body       TaskFunc

	// Phase delays the first release. Zero releases on the next tick.
	Phase time.Duration
}

// TaskStatus is one row of the scheduler's runtime report.
type TaskStatus struct {
	Name       string
	Priority   Priority
	Runtime    uint64 // accumulated microseconds
	StackWords uint32
	HighWater  uint32 // minimum free stack words ever observed
	Runs       uint64
}

// Config configures a Kernel.
type Config struct {
	// Tick is the length of one scheduler tick.
	Tick time.Duration

	// MaxTasks bounds the number of tasks that can be created,
	// periodic and event-driven combined.
	MaxTasks int

	// TimerStackWords is the stack budget of the timer service.
	TimerStackWords uint32

	Clock  Clock
	Logger *log.Logger
}

// DefaultConfig returns a 1 ms tick kernel config tracking up to 10 tasks.
func DefaultConfig() Config {
	return Config{
		Tick:            time.Millisecond,
		MaxTasks:        10,
		TimerStackWords: 256,
	}
}

type task struct {
	spec        TaskSpec
	spawn       SpawnFunc
	periodTicks uint64
	nextRelease uint64

	runtime atomic.Uint64
	peak    atomic.Uint32
	runs    atomic.Uint64

	tc *TaskContext
}

// Timer is an auto-reloading software timer.
type Timer struct {
	name        string
	periodTicks uint64
	nextFire    uint64
	fn          func()
	active      atomic.Bool
}

// Name returns the timer name.
func (t *Timer) Name() string { return t.name }

// Stop prevents further callbacks.
func (t *Timer) Stop() { t.active.Store(false) }

// Kernel is a tick-driven priority dispatcher. Each tick it fires due timers,
// then runs every released task to completion, highest priority first.
// Task bodies never overlap each other.
type Kernel struct {
	cfg    Config
	clock  Clock
	logger *log.Logger

	mu       sync.RWMutex
	tasks    []*task
	timers   []*Timer
	timerSvc *task
	ticks    uint64
	startUs  uint64
	started  bool

	runCtx atomic.Pointer[context.Context]

	halted    atomic.Bool
	haltOnce  sync.Once
	haltCh    chan struct{}
	fatalHook func(taskName string)
}

// NewKernel creates a kernel. Zero config fields take DefaultConfig values.
func NewKernel(cfg Config) *Kernel {
	def := DefaultConfig()
	if cfg.Tick <= 0 {
		cfg.Tick = def.Tick
	}
	if cfg.MaxTasks <= 0 {
		cfg.MaxTasks = def.MaxTasks
	}
	if cfg.TimerStackWords == 0 {
		cfg.TimerStackWords = def.TimerStackWords
	}
	if cfg.Clock == nil {
		cfg.Clock = NewMonotonicClock()
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}

	k := &Kernel{
		cfg:    cfg,
		clock:  cfg.Clock,
		logger: cfg.Logger,
		haltCh: make(chan struct{}),
	}
	k.timerSvc = &task{
		spec: TaskSpec{Name: TimerTaskName, Priority: MaxPriority, StackWords: cfg.TimerStackWords},
	}
	k.timerSvc.tc = &TaskContext{k: k, t: k.timerSvc}
	return k
}

// Clock returns the kernel's time source.
func (k *Kernel) Clock() Clock { return k.clock }

// TickDuration returns the configured tick length.
func (k *Kernel) TickDuration() time.Duration { return k.cfg.Tick }

// MaxTasks returns the configured task limit.
func (k *Kernel) MaxTasks() int { return k.cfg.MaxTasks }

// SetFatalHook installs the function called once when a task overflows its stack.
func (k *Kernel) SetFatalHook(fn func(taskName string)) {
	k.mu.Lock()
	k.fatalHook = fn
	k.mu.Unlock()
}

// CreateTask registers a periodic task. Its first release is the next tick.
func (k *Kernel) CreateTask(spec TaskSpec) (*TaskContext, error) {
	if spec.Name == "" || spec.Body == nil || spec.Period <= 0 {
		return nil, fmt.Errorf("rtos: task %q: %w", spec.Name, ErrInvalidTask)
	}
	if spec.Priority > MaxPriority {
		return nil, fmt.Errorf("rtos: task %q priority %d above %d: %w", spec.Name, spec.Priority, MaxPriority, ErrInvalidTask)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.tasks) >= k.cfg.MaxTasks {
		return nil, fmt.Errorf("rtos: task %q: %d tasks already created: %w", spec.Name, len(k.tasks), ErrResourceExhausted)
	}

	t := &task{
		spec:        spec,
		periodTicks: k.durationToTicks(spec.Period),
		nextRelease: k.ticks + 1,
	}
	if spec.Phase > 0 {
		t.nextRelease += uint64(spec.Phase / k.cfg.Tick)
	}
	t.tc = &TaskContext{k: k, t: t}
	k.tasks = append(k.tasks, t)
	return t.tc, nil
}

// Spawn registers an event-driven task. It starts when Run starts and owns its
// own loop; runtime is charged through TaskContext.Busy.
func (k *Kernel) Spawn(name string, stackWords uint32, fn SpawnFunc) (*TaskContext, error) {
	if name == "" || fn == nil {
		return nil, fmt.Errorf("rtos: task %q: %w", name, ErrInvalidTask)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	if len(k.tasks) >= k.cfg.MaxTasks {
		return nil, fmt.Errorf("rtos: task %q: %d tasks already created: %w", name, len(k.tasks), ErrResourceExhausted)
	}

	t := &task{
		spec:  TaskSpec{Name: name, StackWords: stackWords},
		spawn: fn,
	}
	t.tc = &TaskContext{k: k, t: t}
	k.tasks = append(k.tasks, t)
	return t.tc, nil
}

// CreateTimer registers an auto-reloading software timer. Callbacks run on
// the timer service before any task released on the same tick.
func (k *Kernel) CreateTimer(name string, period time.Duration, fn func()) (*Timer, error) {
	if name == "" || fn == nil || period <= 0 {
		return nil, fmt.Errorf("rtos: timer %q: %w", name, ErrInvalidTask)
	}

	k.mu.Lock()
	defer k.mu.Unlock()

	pt := k.durationToTicks(period)
	tm := &Timer{
		name:        name,
		periodTicks: pt,
		nextFire:    k.ticks + pt,
		fn:          fn,
	}
	tm.active.Store(true)
	k.timers = append(k.timers, tm)
	return tm, nil
}

func (k *Kernel) durationToTicks(d time.Duration) uint64 {
	n := uint64(d / k.cfg.Tick)
	if n == 0 {
		n = 1
	}
	return n
}

// Step advances the scheduler by one tick and runs everything that is due.
// It does nothing once the kernel has halted.
func (k *Kernel) Step() {
	if k.halted.Load() {
		return
	}

	k.mu.Lock()
	if !k.started {
		k.startUs = k.clock.NowUs()
		k.started = true
	}
	k.ticks++
	now := k.ticks

	var dueTimers []*Timer
	for _, tm := range k.timers {
		if tm.active.Load() && tm.nextFire <= now {
			tm.nextFire += tm.periodTicks
			dueTimers = append(dueTimers, tm)
		}
	}

	// Ready set: one bucket per priority, bitmap of non-empty buckets.
	var buckets [MaxPriority + 1][]*task
	var ready uint32
	for _, t := range k.tasks {
		if t.spawn != nil || t.nextRelease > now {
			continue
		}
		t.nextRelease += t.periodTicks
		buckets[t.spec.Priority] = append(buckets[t.spec.Priority], t)
		ready |= 1 << t.spec.Priority
	}
	k.mu.Unlock()

	for _, tm := range dueTimers {
		if k.halted.Load() {
			return
		}
		k.timerSvc.tc.Busy(tm.fn)
	}

	for ready != 0 {
		p := 31 - bits.LeadingZeros32(ready)
		ready &^= 1 << p
		for _, t := range buckets[p] {
			if k.halted.Load() {
				return
			}
			t.runs.Add(1)
			t.tc.Busy(func() { t.spec.Body(t.tc) })
		}
	}
}

// Run drives Step from a ticker until ctx is done or the kernel halts.
// Event-driven tasks run alongside and are waited for before Run returns.
func (k *Kernel) Run(ctx context.Context) error {
	runCtx, cancel := context.WithCancel(ctx)
	k.runCtx.Store(&runCtx)

	var wg sync.WaitGroup
	defer wg.Wait()
	defer cancel()

	k.mu.RLock()
	spawned := make([]*task, 0, len(k.tasks))
	for _, t := range k.tasks {
		if t.spawn != nil {
			spawned = append(spawned, t)
		}
	}
	taskCount := len(k.tasks)
	k.mu.RUnlock()

	for _, t := range spawned {
		wg.Add(1)
		go func(t *task) {
			defer wg.Done()
			err := t.spawn(runCtx, t.tc)
			if err != nil && !errors.Is(err, context.Canceled) {
				k.logger.Error("task exited", "task", t.spec.Name, "error", err)
			}
		}(t)
	}

	k.logger.Debug("scheduler started", "tasks", taskCount, "tick", k.cfg.Tick)

	ticker := time.NewTicker(k.cfg.Tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-k.haltCh:
			return ErrHalted
		case <-ticker.C:
			k.Step()
		}
	}
}

// Halted reports whether a fatal overflow stopped the scheduler.
func (k *Kernel) Halted() bool {
	return k.halted.Load()
}

// Ticks returns the number of ticks processed.
func (k *Kernel) Ticks() uint64 {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.ticks
}

// StartUs returns the clock reading taken at the first tick.
func (k *Kernel) StartUs() (uint64, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	return k.startUs, k.started
}

// SystemState reports every task, the timer service and the idle pseudo-task,
// together with the total runtime since the first tick.
func (k *Kernel) SystemState() ([]TaskStatus, uint64) {
	k.mu.RLock()
	defer k.mu.RUnlock()

	var total uint64
	if k.started {
		total = k.clock.NowUs() - k.startUs
	}

	out := make([]TaskStatus, 0, len(k.tasks)+2)
	var busy uint64
	for _, t := range k.tasks {
		st := t.status()
		busy += st.Runtime
		out = append(out, st)
	}
	svc := k.timerSvc.status()
	busy += svc.Runtime
	out = append(out, svc)

	var idle uint64
	if total > busy {
		idle = total - busy
	}
	out = append(out, TaskStatus{Name: IdleTaskName, Runtime: idle})
	return out, total
}

// StackHighWater returns the minimum free stack words observed for a task.
func (k *Kernel) StackHighWater(name string) (uint32, bool) {
	k.mu.RLock()
	defer k.mu.RUnlock()
	if name == TimerTaskName {
		return k.timerSvc.status().HighWater, true
	}
	for _, t := range k.tasks {
		if t.spec.Name == name {
			return t.status().HighWater, true
		}
	}
	return 0, false
}

func (k *Kernel) overflow(name string) {
	k.haltOnce.Do(func() {
		k.halted.Store(true)
		k.logger.Error("stack overflow", "task", name)

		k.mu.RLock()
		hook := k.fatalHook
		k.mu.RUnlock()
		if hook != nil {
			hook(name)
		}
		close(k.haltCh)
	})
}

func (k *Kernel) context() context.Context {
	if p := k.runCtx.Load(); p != nil {
		return *p
	}
	return context.Background()
}

func (t *task) status() TaskStatus {
	peak := t.peak.Load()
	var hw uint32
	if peak < t.spec.StackWords {
		hw = t.spec.StackWords - peak
	}
	return TaskStatus{
		Name:       t.spec.Name,
		Priority:   t.spec.Priority,
		Runtime:    t.runtime.Load(),
		StackWords: t.spec.StackWords,
		HighWater:  hw,
		Runs:       t.runs.Load(),
	}
}
