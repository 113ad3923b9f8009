package rtos

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSimClock(t *testing.T) {
	host := time.Unix(0, 0)
	c := &SimClock{mark: host, now: func() time.Time { return host }}

	require.Zero(t, c.NowUs())

	// work inside a tick shows up
	host = host.Add(300 * time.Microsecond)
	require.Equal(t, uint64(300), c.NowUs())

	// the next tick starts on simulated time
	c.Advance(time.Millisecond)
	require.Equal(t, uint64(1000), c.NowUs())
	host = host.Add(50 * time.Microsecond)
	require.Equal(t, uint64(1050), c.NowUs())
}

func TestSimClockOverrunPushesTickLater(t *testing.T) {
	host := time.Unix(0, 0)
	c := &SimClock{mark: host, now: func() time.Time { return host }}

	host = host.Add(1500 * time.Microsecond)
	require.Equal(t, uint64(1500), c.NowUs())

	c.Advance(time.Millisecond)
	require.Equal(t, uint64(1500), c.NowUs(), "clock must not run backwards")

	c.Advance(time.Millisecond)
	require.Equal(t, uint64(2500), c.NowUs())
}
