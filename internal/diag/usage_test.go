package diag

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vovakirdan/snek/internal/rtos"
)

func TestSampleCPUUsage(t *testing.T) {
	tasks := []TaskRuntime{
		{Name: "Input", Runtime: 50},
		{Name: "Render", Runtime: 333},
		{Name: "Snek", Runtime: 17},
		{Name: rtos.IdleTaskName, Runtime: 600},
	}

	usage, util := SampleCPUUsage(tasks, 1000, 10)

	require.Len(t, usage, 4)
	require.Equal(t, uint8(5), usage[0].Percent)
	require.Equal(t, uint8(33), usage[1].Percent, "percentages are floored")
	require.Equal(t, uint8(1), usage[2].Percent)
	require.Equal(t, uint8(60), usage[3].Percent)
	require.Equal(t, uint8(40), util, "idle is excluded from utilization")
}

func TestSampleCPUUsageCapsTasks(t *testing.T) {
	tasks := make([]TaskRuntime, 12)
	for i := range tasks {
		tasks[i] = TaskRuntime{Name: "t", Runtime: 1}
	}

	usage, _ := SampleCPUUsage(tasks, 12, 10)
	require.Len(t, usage, 10)
}

func TestSampleCPUUsageZeroTotal(t *testing.T) {
	usage, util := SampleCPUUsage([]TaskRuntime{{Name: "Input"}}, 0, 10)
	require.Equal(t, uint8(0), usage[0].Percent)
	require.Equal(t, uint8(0), util)
}

func TestSampleStackUsage(t *testing.T) {
	tests := []struct {
		allocated, highWater, want uint32
	}{
		{67, 20, 47},
		{29, 29, 0},
		{350, 0, 350},
		{10, 12, 0},
	}

	for _, tt := range tests {
		got := SampleStackUsage("task", tt.allocated, tt.highWater)
		if got.Used != tt.want {
			t.Errorf("SampleStackUsage(%d, %d).Used = %d, expected %d", tt.allocated, tt.highWater, got.Used, tt.want)
		}
	}
}

func TestRuntimesFromStatus(t *testing.T) {
	rt := RuntimesFromStatus([]rtos.TaskStatus{{Name: "Input", Runtime: 4}, {Name: "IDLE", Runtime: 6}})
	require.Equal(t, []TaskRuntime{{Name: "Input", Runtime: 4}, {Name: "IDLE", Runtime: 6}}, rt)
}

func TestFrameCounter(t *testing.T) {
	var c FrameCounter
	for i := 0; i < 53; i++ {
		c.Inc()
	}
	require.Equal(t, uint32(53), c.Frames())
	require.Equal(t, uint32(26), c.DrainFPS(2*time.Second))
	require.Equal(t, uint32(0), c.Frames())
	require.Equal(t, uint32(0), c.DrainFPS(0))
}

func TestBoard(t *testing.T) {
	var b Board
	require.Equal(t, uint64(0), b.Load().Seq)

	first := b.Publish(Diagnostics{FPS: 13})
	second := b.Publish(Diagnostics{FPS: 14})

	require.Equal(t, uint64(1), first.Seq)
	require.Equal(t, uint64(2), second.Seq)
	require.Equal(t, uint32(14), b.Load().FPS)
}
