package config

import (
	_ "embed"
	"time"
)

//go:embed defaults/snek.yaml
var defaultSnekYAML []byte

// DefaultConfig returns the hardcoded configuration. It matches the
// embedded defaults/snek.yaml.
func DefaultConfig() Config {
	return Config{
		Grid: GridConfig{
			Width:       16,
			Height:      16,
			StartLength: 4,
		},
		Kernel: KernelConfig{
			Tick:            time.Millisecond,
			MaxTasks:        10,
			TimerStackWords: 256,
		},
		Tasks: TasksConfig{
			Input:   TaskConfig{Period: 20 * time.Millisecond, Priority: 4, StackWords: 67},
			Render:  TaskConfig{Period: 38 * time.Millisecond, Priority: 3, StackWords: 350},
			Snek:    TaskConfig{Period: 69 * time.Millisecond, Priority: 2, StackWords: 29},
			Monitor: TaskConfig{Period: 2000 * time.Millisecond, Priority: 1, StackWords: 73},
			Buzzer:  TaskConfig{Priority: 2, StackWords: 256},
			Chrono:  10 * time.Millisecond,
		},
		Display: DisplayConfig{
			LockTimeout: 30 * time.Millisecond,
		},
		Audio: AudioConfig{
			Enabled:     true,
			QueueLength: 10,
			SampleRate:  44100,
			Volume:      0.3,
		},
		Trace: TraceConfig{
			Path: "snek-trace.db",
		},
		Telemetry: TelemetryConfig{
			Broker:  "tcp://localhost:1883",
			Topic:   "snek/diagnostics",
			QoS:     0,
			Timeout: 2 * time.Second,
		},
		SSH: SSHConfig{
			Host:        "0.0.0.0",
			Port:        2222,
			HostKeyPath: ".ssh/snek_ed25519",
			MaxSessions: 8,
		},
	}
}

// DefaultYAML returns the embedded default configuration file.
func DefaultYAML() []byte {
	return defaultSnekYAML
}
