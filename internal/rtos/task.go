package rtos

import "context"

// TaskContext is handed to a task body. It carries the task's identity and
// its accounting hooks.
type TaskContext struct {
	k *Kernel
	t *task
}

// Name returns the task name.
func (tc *TaskContext) Name() string {
	return tc.t.spec.Name
}

// StackWords returns the task's stack allocation.
func (tc *TaskContext) StackWords() uint32 {
	return tc.t.spec.StackWords
}

// Context returns the context of the running kernel, or Background before Run.
func (tc *TaskContext) Context() context.Context {
	return tc.k.context()
}

// Ticks returns the kernel tick count.
func (tc *TaskContext) Ticks() uint64 {
	return tc.k.Ticks()
}

// UseStack records that the body needed words of stack. Exceeding the
// allocation is fatal: the kernel runs its fatal hook and halts.
func (tc *TaskContext) UseStack(words uint32) {
	for {
		peak := tc.t.peak.Load()
		if words <= peak || tc.t.peak.CompareAndSwap(peak, words) {
			break
		}
	}
	if words > tc.t.spec.StackWords {
		tc.k.overflow(tc.t.spec.Name)
	}
}

// Busy runs fn and charges its duration to the task.
func (tc *TaskContext) Busy(fn func()) {
	start := tc.k.clock.NowUs()
	fn()
	if end := tc.k.clock.NowUs(); end > start {
		tc.t.runtime.Add(end - start)
	}
}
