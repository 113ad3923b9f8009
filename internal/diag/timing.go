// Package diag collects runtime diagnostics: task period and execution
// timing, CPU share, stack usage and frame rate.
package diag

import (
	"math"
	"sync"
)

// EmptyMin is the identity value of a window minimum.
const EmptyMin = math.MaxUint32

// Window accumulates min, max, sum and count of microsecond samples.
type Window struct {
	Min   uint32
	Max   uint32
	Sum   uint64
	Count uint32
}

// NewWindow returns an empty window.
func NewWindow() Window {
	return Window{Min: EmptyMin}
}

// Observe adds one sample.
func (w *Window) Observe(us uint32) {
	if us < w.Min {
		w.Min = us
	}
	if us > w.Max {
		w.Max = us
	}
	w.Sum += uint64(us)
	w.Count++
}

// Avg returns the integer mean, or 0 for an empty window.
func (w Window) Avg() uint32 {
	if w.Count == 0 {
		return 0
	}
	return uint32(w.Sum / uint64(w.Count))
}

// Empty reports whether the window holds no samples.
func (w Window) Empty() bool {
	return w.Count == 0
}

// Reset restores the identity values.
func (w *Window) Reset() {
	*w = NewWindow()
}

// TimingReport is what one drain of a TimingSampler yields.
type TimingReport struct {
	AvgPeriodUs  uint32
	LastJitterUs int32
	AvgExecUs    uint32
	MaxExecUs    uint32

	// Window bounds as they were before the reset.
	MinPeriodUs uint32
	MaxPeriodUs uint32
	MinExecUs   uint32
	PeriodCount uint32
	ExecCount   uint32
}

// TimingSampler measures the period and execution time of one task.
// The sampled task records; the monitor drains.
type TimingSampler struct {
	mu               sync.Mutex
	expectedPeriodUs uint32

	lastUs     uint64
	primed     bool
	lastJitter int32
	period     Window

	execStartUs uint64
	execOpen    bool
	exec        Window
}

// NewTimingSampler creates a sampler for a task with the given nominal period.
func NewTimingSampler(expectedPeriodUs uint32) *TimingSampler {
	return &TimingSampler{
		expectedPeriodUs: expectedPeriodUs,
		period:           NewWindow(),
		exec:             NewWindow(),
	}
}

// ExpectedPeriodUs returns the nominal period.
func (s *TimingSampler) ExpectedPeriodUs() uint32 {
	return s.expectedPeriodUs
}

// RecordPeriod marks one activation. The first call only primes the sampler.
func (s *TimingSampler) RecordPeriod(nowUs uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.primed {
		actual := clampUs(nowUs - s.lastUs)
		s.lastJitter = int32(int64(actual) - int64(s.expectedPeriodUs))
		s.period.Observe(actual)
	}
	s.lastUs = nowUs
	s.primed = true
}

// RecordExecStart marks the start of the measured work.
func (s *TimingSampler) RecordExecStart(nowUs uint64) {
	s.mu.Lock()
	s.execStartUs = nowUs
	s.execOpen = true
	s.mu.Unlock()
}

// RecordExecEnd closes the measurement opened by RecordExecStart.
func (s *TimingSampler) RecordExecEnd(nowUs uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.execOpen {
		return
	}
	s.execOpen = false
	if nowUs < s.execStartUs {
		return
	}
	s.exec.Observe(clampUs(nowUs - s.execStartUs))
}

// DrainAndReset reports the current windows and resets them.
// The last jitter value survives the reset.
func (s *TimingSampler) DrainAndReset() TimingReport {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := TimingReport{
		AvgPeriodUs:  s.period.Avg(),
		LastJitterUs: s.lastJitter,
		AvgExecUs:    s.exec.Avg(),
		MaxExecUs:    s.exec.Max,
		MinPeriodUs:  s.period.Min,
		MaxPeriodUs:  s.period.Max,
		MinExecUs:    s.exec.Min,
		PeriodCount:  s.period.Count,
		ExecCount:    s.exec.Count,
	}
	s.period.Reset()
	s.exec.Reset()
	return r
}

func clampUs(d uint64) uint32 {
	if d > math.MaxUint32 {
		return math.MaxUint32
	}
	return uint32(d)
}
