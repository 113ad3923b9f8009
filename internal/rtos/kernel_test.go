package rtos

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func newTestKernel(clock Clock) *Kernel {
	return NewKernel(Config{Tick: time.Millisecond, MaxTasks: 10, Clock: clock})
}

func TestKernelRunsHighestPriorityFirst(t *testing.T) {
	k := newTestKernel(NewManualClock())
	var order []string

	add := func(name string, prio Priority) {
		_, err := k.CreateTask(TaskSpec{
			Name:       name,
			Period:     time.Millisecond,
			Priority:   prio,
			StackWords: 64,
			Body:       func(tc *TaskContext) { order = append(order, tc.Name()) },
		})
		require.NoError(t, err)
	}
	add("low", 1)
	add("high", 4)
	add("mid-a", 2)
	add("mid-b", 2)

	k.Step()

	require.Equal(t, []string{"high", "mid-a", "mid-b", "low"}, order)
}

func TestKernelPeriodicRelease(t *testing.T) {
	k := newTestKernel(NewManualClock())
	var runs int

	_, err := k.CreateTask(TaskSpec{
		Name:       "input",
		Period:     20 * time.Millisecond,
		Priority:   4,
		StackWords: 64,
		Body:       func(*TaskContext) { runs++ },
	})
	require.NoError(t, err)

	for i := 0; i < 100; i++ {
		k.Step()
	}

	// released on ticks 1, 21, 41, 61, 81
	require.Equal(t, 5, runs)
	require.Equal(t, uint64(100), k.Ticks())
}

func TestKernelTimerRunsBeforeTasks(t *testing.T) {
	k := newTestKernel(NewManualClock())
	var order []string

	_, err := k.CreateTimer("chrono", 10*time.Millisecond, func() { order = append(order, "timer") })
	require.NoError(t, err)
	_, err = k.CreateTask(TaskSpec{
		Name:       "task",
		Period:     10 * time.Millisecond,
		Priority:   MaxPriority,
		StackWords: 64,
		Body:       func(*TaskContext) { order = append(order, "task") },
	})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		k.Step()
	}

	// task released on tick 1, timer first fires on tick 10
	require.Equal(t, []string{"task", "timer"}, order)

	for i := 0; i < 10; i++ {
		k.Step()
	}
	require.Equal(t, []string{"task", "timer", "task", "timer"}, order[:4])
}

func TestKernelTimerStop(t *testing.T) {
	k := newTestKernel(NewManualClock())
	var fired int
	tm, err := k.CreateTimer("chrono", time.Millisecond, func() { fired++ })
	require.NoError(t, err)

	k.Step()
	tm.Stop()
	k.Step()

	require.Equal(t, 1, fired)
}

func TestKernelRuntimeAccounting(t *testing.T) {
	clock := NewManualClock()
	k := newTestKernel(clock)

	_, err := k.CreateTask(TaskSpec{
		Name:       "render",
		Period:     time.Millisecond,
		Priority:   3,
		StackWords: 64,
		Body:       func(*TaskContext) { clock.AdvanceUs(300) },
	})
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		k.Step()
		clock.AdvanceUs(700)
	}

	state, total := k.SystemState()
	require.Equal(t, uint64(10_000), total)

	byName := map[string]TaskStatus{}
	for _, st := range state {
		byName[st.Name] = st
	}
	require.Equal(t, uint64(3000), byName["render"].Runtime)
	require.Equal(t, uint64(10), byName["render"].Runs)
	require.Equal(t, uint64(7000), byName[IdleTaskName].Runtime)
	require.Contains(t, byName, TimerTaskName)
}

func TestKernelStackHighWater(t *testing.T) {
	k := newTestKernel(NewManualClock())
	_, err := k.CreateTask(TaskSpec{
		Name:       "snek",
		Period:     time.Millisecond,
		Priority:   2,
		StackWords: 29,
		Body:       func(tc *TaskContext) { tc.UseStack(20) },
	})
	require.NoError(t, err)

	k.Step()

	hw, ok := k.StackHighWater("snek")
	require.True(t, ok)
	require.Equal(t, uint32(9), hw)
	require.False(t, k.Halted())

	_, ok = k.StackHighWater("missing")
	require.False(t, ok)
}

func TestKernelStackOverflowHalts(t *testing.T) {
	k := newTestKernel(NewManualClock())

	var hookCalls atomic.Int32
	var hookTask string
	k.SetFatalHook(func(name string) {
		hookCalls.Add(1)
		hookTask = name
	})

	var lowRuns int
	_, err := k.CreateTask(TaskSpec{
		Name:       "greedy",
		Period:     time.Millisecond,
		Priority:   4,
		StackWords: 16,
		Body:       func(tc *TaskContext) { tc.UseStack(64) },
	})
	require.NoError(t, err)
	_, err = k.CreateTask(TaskSpec{
		Name:       "low",
		Period:     time.Millisecond,
		Priority:   1,
		StackWords: 16,
		Body:       func(*TaskContext) { lowRuns++ },
	})
	require.NoError(t, err)

	k.Step()
	k.Step()
	k.Step()

	require.True(t, k.Halted())
	require.Equal(t, int32(1), hookCalls.Load())
	require.Equal(t, "greedy", hookTask)
	require.Equal(t, 0, lowRuns)
	require.Equal(t, uint64(1), k.Ticks())
}

func TestKernelTaskLimit(t *testing.T) {
	k := NewKernel(Config{MaxTasks: 2, Clock: NewManualClock()})
	body := func(*TaskContext) {}

	_, err := k.CreateTask(TaskSpec{Name: "a", Period: time.Millisecond, Body: body})
	require.NoError(t, err)
	_, err = k.Spawn("b", 64, func(ctx context.Context, _ *TaskContext) error { return nil })
	require.NoError(t, err)
	_, err = k.CreateTask(TaskSpec{Name: "c", Period: time.Millisecond, Body: body})
	require.Error(t, err)
	require.True(t, errors.Is(err, ErrResourceExhausted))
}

func TestKernelRejectsInvalidTasks(t *testing.T) {
	k := newTestKernel(NewManualClock())
	body := func(*TaskContext) {}

	tests := []struct {
		name string
		spec TaskSpec
	}{
		{"empty name", TaskSpec{Period: time.Millisecond, Body: body}},
		{"no body", TaskSpec{Name: "x", Period: time.Millisecond}},
		{"zero period", TaskSpec{Name: "x", Body: body}},
		{"priority too high", TaskSpec{Name: "x", Period: time.Millisecond, Priority: MaxPriority + 1, Body: body}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := k.CreateTask(tt.spec)
			require.True(t, errors.Is(err, ErrInvalidTask))
		})
	}

	_, err := k.CreateTimer("", time.Millisecond, func() {})
	require.True(t, errors.Is(err, ErrInvalidTask))
}

func TestKernelRunStopsOnContext(t *testing.T) {
	k := newTestKernel(NewMonotonicClock())

	var spawnedExited atomic.Bool
	_, err := k.Spawn("buzzer", 64, func(ctx context.Context, _ *TaskContext) error {
		<-ctx.Done()
		spawnedExited.Store(true)
		return ctx.Err()
	})
	require.NoError(t, err)

	var runs atomic.Int32
	_, err = k.CreateTask(TaskSpec{
		Name:       "input",
		Period:     time.Millisecond,
		Priority:   4,
		StackWords: 64,
		Body:       func(*TaskContext) { runs.Add(1) },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	err = k.Run(ctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
	require.True(t, spawnedExited.Load())
	require.True(t, runs.Load() > 0)
}

func TestKernelRunReturnsHalted(t *testing.T) {
	k := newTestKernel(NewMonotonicClock())
	_, err := k.CreateTask(TaskSpec{
		Name:       "greedy",
		Period:     time.Millisecond,
		Priority:   1,
		StackWords: 8,
		Body:       func(tc *TaskContext) { tc.UseStack(9) },
	})
	require.NoError(t, err)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err = k.Run(ctx)
	require.True(t, errors.Is(err, ErrHalted))
}

func TestTaskContextDuringRun(t *testing.T) {
	k := newTestKernel(NewManualClock())
	var got context.Context
	tc, err := k.CreateTask(TaskSpec{
		Name:       "probe",
		Period:     time.Millisecond,
		StackWords: 8,
		Body:       func(tc *TaskContext) { got = tc.Context() },
	})
	require.NoError(t, err)
	require.Equal(t, "probe", tc.Name())
	require.Equal(t, uint32(8), tc.StackWords())

	k.Step()
	require.NotNil(t, got)
}

func TestKernelPhaseDelaysFirstRelease(t *testing.T) {
	k := newTestKernel(NewManualClock())
	var releases []uint64

	_, err := k.CreateTask(TaskSpec{
		Name:       "monitor",
		Period:     2000 * time.Millisecond,
		Phase:      2000 * time.Millisecond,
		Priority:   1,
		StackWords: 73,
		Body:       func(tc *TaskContext) { releases = append(releases, tc.Ticks()) },
	})
	require.NoError(t, err)

	for i := 0; i < 4001; i++ {
		k.Step()
	}

	require.Equal(t, []uint64{2001, 4001}, releases)
}
