package diag

import (
	"sync/atomic"
	"time"
)

// Diagnostics is one complete monitor sample.
type Diagnostics struct {
	SampledAt      time.Time
	Seq            uint64
	FPS            uint32
	CPUUtilization uint8
	NumTasks       int
	Tasks          []TaskCPU
	Stacks         []StackUsage
	Timing         TimingReport
	ToneDrops      uint64
}

// Board holds the latest Diagnostics. Readers only ever see a complete sample.
type Board struct {
	latest atomic.Pointer[Diagnostics]
	seq    atomic.Uint64
}

// Publish replaces the current sample and stamps its sequence number.
func (b *Board) Publish(d Diagnostics) Diagnostics {
	d.Seq = b.seq.Add(1)
	b.latest.Store(&d)
	return d
}

// Load returns the latest sample, or a zero value before the first publish.
func (b *Board) Load() Diagnostics {
	if d := b.latest.Load(); d != nil {
		return *d
	}
	return Diagnostics{}
}
