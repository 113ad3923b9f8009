package diag

import "github.com/vovakirdan/snek/internal/rtos"

// TaskRuntime is a raw runtime counter for one task.
type TaskRuntime struct {
	Name    string
	Runtime uint64
}

// TaskCPU is a task's share of total runtime.
type TaskCPU struct {
	Name    string
	Runtime uint64
	Percent uint8
}

// StackUsage is a task's stack budget and worst-case use, in words.
type StackUsage struct {
	Name      string
	Allocated uint32
	HighWater uint32
	Used      uint32
}

// SampleCPUUsage computes floor percentages of total runtime per task, keeping
// at most maxTasks entries, and the overall utilization of non-idle tasks.
func SampleCPUUsage(tasks []TaskRuntime, totalRuntime uint64, maxTasks int) ([]TaskCPU, uint8) {
	if totalRuntime == 0 {
		totalRuntime = 1
	}
	if maxTasks > 0 && len(tasks) > maxTasks {
		tasks = tasks[:maxTasks]
	}

	out := make([]TaskCPU, len(tasks))
	var active uint64
	for i, t := range tasks {
		out[i] = TaskCPU{
			Name:    t.Name,
			Runtime: t.Runtime,
			Percent: percent(t.Runtime, totalRuntime),
		}
		if t.Name != rtos.IdleTaskName {
			active += t.Runtime
		}
	}
	return out, percent(active, totalRuntime)
}

// SampleStackUsage derives worst-case use from the allocation and high-water mark.
func SampleStackUsage(name string, allocated, highWater uint32) StackUsage {
	u := StackUsage{Name: name, Allocated: allocated, HighWater: highWater}
	if highWater < allocated {
		u.Used = allocated - highWater
	}
	return u
}

// RuntimesFromStatus adapts a scheduler report for SampleCPUUsage.
func RuntimesFromStatus(state []rtos.TaskStatus) []TaskRuntime {
	out := make([]TaskRuntime, len(state))
	for i, st := range state {
		out[i] = TaskRuntime{Name: st.Name, Runtime: st.Runtime}
	}
	return out
}

func percent(part, total uint64) uint8 {
	p := part * 100 / total
	if p > 100 {
		p = 100
	}
	return uint8(p)
}
