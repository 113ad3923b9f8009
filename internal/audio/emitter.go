// Package audio plays the buzzer tones posted by gameplay: a bounded tone
// queue, the emitter task that drains it, and the sinks that make sound.
package audio

import (
	"context"
	"errors"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"

	"github.com/vovakirdan/snek/internal/game"
	"github.com/vovakirdan/snek/internal/rtos"
)

// EmitterStackWords is the stack the emitter body reports per tone.
const EmitterStackWords = 96

// Sink drives the speaker. Start begins a continuous tone, Stop silences it.
type Sink interface {
	Start(freqHz uint32)
	Stop()
}

// Emitter owns the tone queue and plays its requests one at a time.
type Emitter struct {
	queue  *rtos.Queue[game.Tone]
	sink   Sink
	logger *log.Logger

	dropped atomic.Uint64
	played  atomic.Uint64
}

// NewEmitter creates an emitter with a queue of queueLen tones.
func NewEmitter(queueLen int, sink Sink, logger *log.Logger) (*Emitter, error) {
	q, err := rtos.NewQueue[game.Tone](queueLen)
	if err != nil {
		return nil, err
	}
	if sink == nil {
		sink = SilentSink{}
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Emitter{queue: q, sink: sink, logger: logger}, nil
}

// PostTone enqueues a tone without blocking. A full queue drops it.
func (e *Emitter) PostTone(freqHz, durationMs uint32) bool {
	if e.queue.TrySend(game.Tone{FreqHz: freqHz, DurationMs: durationMs}) {
		return true
	}
	e.dropped.Add(1)
	return false
}

// Dropped returns how many tones were lost to a full queue.
func (e *Emitter) Dropped() uint64 { return e.dropped.Load() }

// Played returns how many tones were played to completion.
func (e *Emitter) Played() uint64 { return e.played.Load() }

// Pending returns the number of queued tones.
func (e *Emitter) Pending() int { return e.queue.Len() }

// Run is the emitter task body. It blocks on the queue and plays each
// audible tone for its full duration. Returns nil when ctx is cancelled.
func (e *Emitter) Run(ctx context.Context, tc *rtos.TaskContext) error {
	for {
		tone, err := e.queue.Receive(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil
			}
			return err
		}
		if !tone.Audible() {
			continue
		}
		if tc != nil {
			tc.UseStack(EmitterStackWords)
		}

		if !e.play(ctx, tc, tone) {
			return nil
		}
	}
}

func (e *Emitter) play(ctx context.Context, tc *rtos.TaskContext, tone game.Tone) bool {
	busy(tc, func() { e.sink.Start(tone.FreqHz) })
	defer busy(tc, e.sink.Stop)

	timer := time.NewTimer(time.Duration(tone.DurationMs) * time.Millisecond)
	defer timer.Stop()

	select {
	case <-timer.C:
		e.played.Add(1)
		return true
	case <-ctx.Done():
		return false
	}
}

func busy(tc *rtos.TaskContext, fn func()) {
	if tc == nil {
		fn()
		return
	}
	tc.Busy(fn)
}

// SilentSink logs tones instead of playing them.
type SilentSink struct {
	Logger *log.Logger
}

// Start logs the tone at debug level.
func (s SilentSink) Start(freqHz uint32) {
	if s.Logger != nil {
		s.Logger.Debug("tone", "freq", freqHz)
	}
}

// Stop does nothing.
func (s SilentSink) Stop() {}
