package audio

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/gopxl/beep"
	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/snek/internal/game"
)

type event struct {
	start bool
	freq  uint32
	at    time.Time
}

type recordingSink struct {
	mu     sync.Mutex
	events []event
}

func (r *recordingSink) Start(freqHz uint32) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{start: true, freq: freqHz, at: time.Now()})
}

func (r *recordingSink) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event{at: time.Now()})
}

func (r *recordingSink) snapshot() []event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event(nil), r.events...)
}

func TestPostToneDropsWhenFull(t *testing.T) {
	e, err := NewEmitter(2, &recordingSink{}, nil)
	require.NoError(t, err)

	require.True(t, e.PostTone(250, 15))
	require.True(t, e.PostTone(750, 30))
	require.False(t, e.PostTone(250, 15))
	require.Equal(t, uint64(1), e.Dropped())
	require.Equal(t, 2, e.Pending())
}

func TestNewEmitterRejectsEmptyQueue(t *testing.T) {
	_, err := NewEmitter(0, nil, nil)
	require.Error(t, err)
}

func TestEmitterPlaysInOrderWithoutOverlap(t *testing.T) {
	sink := &recordingSink{}
	e, err := NewEmitter(10, sink, nil)
	require.NoError(t, err)

	require.Equal(t, 3, game.PostTones(e, game.EatTones...))
	require.True(t, e.PostTone(0, 50))  // silent
	require.True(t, e.PostTone(900, 0)) // silent

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, nil) }()

	require.Eventually(t, func() bool { return e.Played() == 3 }, 2*time.Second, 5*time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	events := sink.snapshot()
	require.Len(t, events, 6)
	for i, tone := range game.EatTones {
		start, stop := events[2*i], events[2*i+1]
		require.True(t, start.start)
		require.Equal(t, tone.FreqHz, start.freq)
		require.False(t, stop.start)
		require.GreaterOrEqual(t, stop.at.Sub(start.at), time.Duration(tone.DurationMs)*time.Millisecond)
	}
}

func TestEmitterStopsOnCancelMidTone(t *testing.T) {
	sink := &recordingSink{}
	e, err := NewEmitter(1, sink, nil)
	require.NoError(t, err)
	require.True(t, e.PostTone(440, 10_000))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- e.Run(ctx, nil) }()

	require.Eventually(t, func() bool { return len(sink.snapshot()) == 1 }, time.Second, time.Millisecond)
	cancel()
	require.NoError(t, <-done)

	events := sink.snapshot()
	require.Len(t, events, 2)
	require.False(t, events[1].start, "the sink must be silenced on exit")
	require.Zero(t, e.Played())
}

func TestToneStreamerDuty(t *testing.T) {
	wave, err := toneStreamer(beep.SampleRate(8000), 1000, 1)
	require.NoError(t, err)

	samples := make([][2]float64, 8)
	n, ok := beep.Take(8, wave).Stream(samples)
	require.True(t, ok)
	require.Equal(t, 8, n)

	high := 0
	for _, s := range samples {
		require.InDelta(t, 1, math.Abs(s[0]), 1e-9)
		require.Equal(t, s[0], s[1])
		if s[0] > 0 {
			high++
		}
	}
	require.Equal(t, 4, high)
}

func TestToneStreamerVolume(t *testing.T) {
	quiet, err := toneStreamer(beep.SampleRate(8000), 1000, 0.5)
	require.NoError(t, err)
	samples := make([][2]float64, 4)
	beep.Take(4, quiet).Stream(samples)
	require.InDelta(t, 0.5, math.Abs(samples[0][0]), 1e-9)

	muted, err := toneStreamer(beep.SampleRate(8000), 1000, 0)
	require.NoError(t, err)
	beep.Take(4, muted).Stream(samples)
	for _, s := range samples {
		require.Zero(t, s[0])
	}
}

func TestToneStreamerRejectsAliasedTone(t *testing.T) {
	_, err := toneStreamer(beep.SampleRate(8000), 4000, 1)
	require.Error(t, err)
}
