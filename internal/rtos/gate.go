package rtos

import "sync/atomic"

// Gate is a dirty counter. Producers mark it, one consumer takes it.
type Gate struct {
	pending atomic.Uint32
}

// MarkDirty records that new work is ready.
func (g *Gate) MarkDirty() {
	g.pending.Add(1)
}

// TakeIfDirty clears the gate and reports whether anything was pending.
func (g *Gate) TakeIfDirty() bool {
	return g.pending.Swap(0) != 0
}

// Pending returns the number of marks since the last take.
func (g *Gate) Pending() uint32 {
	return g.pending.Load()
}
