package telemetry

import (
	"github.com/golang/protobuf/proto"

	"github.com/vovakirdan/snek/internal/diag"
)

// DiagnosticsMessage is the wire form of one monitor sample.
type DiagnosticsMessage struct {
	DeviceID       string      `protobuf:"bytes,1,opt,name=device_id,proto3" json:"device_id,omitempty"`
	Seq            uint64      `protobuf:"varint,2,opt,name=seq,proto3" json:"seq,omitempty"`
	SampledAtMs    int64       `protobuf:"varint,3,opt,name=sampled_at_ms,proto3" json:"sampled_at_ms,omitempty"`
	FPS            uint32      `protobuf:"varint,4,opt,name=fps,proto3" json:"fps,omitempty"`
	CPUUtilization uint32      `protobuf:"varint,5,opt,name=cpu_utilization,proto3" json:"cpu_utilization,omitempty"`
	NumTasks       uint32      `protobuf:"varint,6,opt,name=num_tasks,proto3" json:"num_tasks,omitempty"`
	Tasks          []*TaskStat `protobuf:"bytes,7,rep,name=tasks,proto3" json:"tasks,omitempty"`
	AvgPeriodUs    uint32      `protobuf:"varint,8,opt,name=avg_period_us,proto3" json:"avg_period_us,omitempty"`
	JitterUs       int32       `protobuf:"varint,9,opt,name=jitter_us,proto3" json:"jitter_us,omitempty"`
	AvgExecUs      uint32      `protobuf:"varint,10,opt,name=avg_exec_us,proto3" json:"avg_exec_us,omitempty"`
	MaxExecUs      uint32      `protobuf:"varint,11,opt,name=max_exec_us,proto3" json:"max_exec_us,omitempty"`
	ToneDrops      uint64      `protobuf:"varint,12,opt,name=tone_drops,proto3" json:"tone_drops,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *DiagnosticsMessage) ProtoMessage() {}

// Reset implements proto.Message.
func (m *DiagnosticsMessage) Reset() { *m = DiagnosticsMessage{} }

// String implements proto.Message.
func (m *DiagnosticsMessage) String() string { return proto.CompactTextString(m) }

// TaskStat is one task's CPU share and stack use.
type TaskStat struct {
	Name           string `protobuf:"bytes,1,opt,name=name,proto3" json:"name,omitempty"`
	Runtime        uint64 `protobuf:"varint,2,opt,name=runtime,proto3" json:"runtime,omitempty"`
	Percent        uint32 `protobuf:"varint,3,opt,name=percent,proto3" json:"percent,omitempty"`
	StackAllocated uint32 `protobuf:"varint,4,opt,name=stack_allocated,proto3" json:"stack_allocated,omitempty"`
	StackUsed      uint32 `protobuf:"varint,5,opt,name=stack_used,proto3" json:"stack_used,omitempty"`
}

// ProtoMessage implements proto.Message.
func (m *TaskStat) ProtoMessage() {}

// Reset implements proto.Message.
func (m *TaskStat) Reset() { *m = TaskStat{} }

// String implements proto.Message.
func (m *TaskStat) String() string { return proto.CompactTextString(m) }

// NewDiagnosticsMessage converts a sample. CPU and stack rows for the same
// task share one TaskStat.
func NewDiagnosticsMessage(deviceID string, d diag.Diagnostics) *DiagnosticsMessage {
	m := &DiagnosticsMessage{
		DeviceID:       deviceID,
		Seq:            d.Seq,
		FPS:            d.FPS,
		CPUUtilization: uint32(d.CPUUtilization),
		NumTasks:       uint32(d.NumTasks),
		AvgPeriodUs:    d.Timing.AvgPeriodUs,
		JitterUs:       d.Timing.LastJitterUs,
		AvgExecUs:      d.Timing.AvgExecUs,
		MaxExecUs:      d.Timing.MaxExecUs,
		ToneDrops:      d.ToneDrops,
	}
	if !d.SampledAt.IsZero() {
		m.SampledAtMs = d.SampledAt.UnixMilli()
	}

	byName := make(map[string]*TaskStat)
	for _, t := range d.Tasks {
		ts := &TaskStat{Name: t.Name, Runtime: t.Runtime, Percent: uint32(t.Percent)}
		byName[t.Name] = ts
		m.Tasks = append(m.Tasks, ts)
	}
	for _, st := range d.Stacks {
		ts, ok := byName[st.Name]
		if !ok {
			ts = &TaskStat{Name: st.Name}
			byName[st.Name] = ts
			m.Tasks = append(m.Tasks, ts)
		}
		ts.StackAllocated = st.Allocated
		ts.StackUsed = st.Used
	}
	return m
}

// Encode serializes the message.
func (m *DiagnosticsMessage) Encode() ([]byte, error) {
	return proto.Marshal(m)
}

// DecodeDiagnostics parses an encoded DiagnosticsMessage.
func DecodeDiagnostics(data []byte) (*DiagnosticsMessage, error) {
	var m DiagnosticsMessage
	if err := proto.Unmarshal(data, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
