package rtos

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSemaphore(t *testing.T) {
	s := NewSemaphore(2, 0)

	require.False(t, s.TryTake())
	require.True(t, s.Give())
	require.True(t, s.Give())
	require.False(t, s.Give(), "give beyond max must fail")
	require.Equal(t, 2, s.Count())
	require.True(t, s.TryTake())
	require.True(t, s.TryTake())
	require.False(t, s.TryTake())
	require.Equal(t, 2, s.Max())
}

func TestSemaphoreClampsInitial(t *testing.T) {
	tests := []struct {
		max, initial, want int
	}{
		{1, 0, 0},
		{1, 5, 1},
		{3, -1, 0},
		{0, 0, 0},
	}
	for _, tt := range tests {
		s := NewSemaphore(tt.max, tt.initial)
		if s.Count() != tt.want {
			t.Errorf("NewSemaphore(%d, %d).Count() = %d, expected %d", tt.max, tt.initial, s.Count(), tt.want)
		}
	}
}

func TestGate(t *testing.T) {
	var g Gate

	require.False(t, g.TakeIfDirty())

	g.MarkDirty()
	g.MarkDirty()
	require.Equal(t, uint32(2), g.Pending())
	require.True(t, g.TakeIfDirty())
	require.Equal(t, uint32(0), g.Pending())
	require.False(t, g.TakeIfDirty(), "a take consumes every pending mark")
}

func TestTimedMutex(t *testing.T) {
	m := NewTimedMutex()
	ctx := context.Background()

	require.True(t, m.TryLockFor(ctx, 0))
	require.False(t, m.TryLockFor(ctx, 0))

	start := time.Now()
	require.False(t, m.TryLockFor(ctx, 20*time.Millisecond))
	require.GreaterOrEqual(t, int64(time.Since(start)), int64(20*time.Millisecond))

	go func() {
		time.Sleep(5 * time.Millisecond)
		m.Unlock()
	}()
	require.True(t, m.TryLockFor(ctx, time.Second))
	m.Unlock()

	require.NoError(t, m.Lock(ctx))
	cctx, cancel := context.WithCancel(ctx)
	cancel()
	require.True(t, errors.Is(m.Lock(cctx), context.Canceled))
	m.Unlock()
}

func TestTimedMutexUnlockUnlockedPanics(t *testing.T) {
	m := NewTimedMutex()
	require.Panics(t, func() { m.Unlock() })
}

func TestQueue(t *testing.T) {
	_, err := NewQueue[int](0)
	require.True(t, errors.Is(err, ErrResourceExhausted))

	q, err := NewQueue[int](2)
	require.NoError(t, err)
	require.True(t, q.TrySend(1))
	require.True(t, q.TrySend(2))
	require.False(t, q.TrySend(3), "full queue drops")
	require.Equal(t, 2, q.Len())
	require.Equal(t, 2, q.Cap())

	ctx := context.Background()
	v, err := q.Receive(ctx)
	require.NoError(t, err)
	require.Equal(t, 1, v)
	v, ok := q.TryReceive()
	require.True(t, ok)
	require.Equal(t, 2, v)

	_, ok = q.TryReceive()
	require.False(t, ok)

	cctx, cancel := context.WithTimeout(ctx, 10*time.Millisecond)
	defer cancel()
	_, err = q.Receive(cctx)
	require.True(t, errors.Is(err, context.DeadlineExceeded))
}

func TestManualClock(t *testing.T) {
	c := NewManualClock()
	require.Equal(t, uint64(0), c.NowUs())
	c.Advance(3 * time.Millisecond)
	c.AdvanceUs(250)
	require.Equal(t, uint64(3250), c.NowUs())
}

func TestMonotonicClockAdvances(t *testing.T) {
	c := NewMonotonicClock()
	a := c.NowUs()
	time.Sleep(2 * time.Millisecond)
	require.Greater(t, c.NowUs(), a)
}
