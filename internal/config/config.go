// Package config provides YAML-based configuration loading and validation
// for the snek control loop.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config is the complete runtime configuration.
type Config struct {
	Grid      GridConfig      `yaml:"grid"`
	Kernel    KernelConfig    `yaml:"kernel"`
	Tasks     TasksConfig     `yaml:"tasks"`
	Display   DisplayConfig   `yaml:"display"`
	Audio     AudioConfig     `yaml:"audio"`
	Trace     TraceConfig     `yaml:"trace"`
	Telemetry TelemetryConfig `yaml:"telemetry"`
	SSH       SSHConfig       `yaml:"ssh"`
	Seed      int64           `yaml:"seed"` // 0 = time-based
}

// GridConfig sizes the playfield.
type GridConfig struct {
	Width       int `yaml:"width"`
	Height      int `yaml:"height"`
	StartLength int `yaml:"start_length"`
}

// KernelConfig tunes the scheduler.
type KernelConfig struct {
	Tick            time.Duration `yaml:"tick"`
	MaxTasks        int           `yaml:"max_tasks"`
	TimerStackWords int           `yaml:"timer_stack_words"`
}

// TaskConfig describes one periodic task.
type TaskConfig struct {
	Period     time.Duration `yaml:"period"`
	Priority   int           `yaml:"priority"`
	StackWords int           `yaml:"stack_words"`
}

// TasksConfig holds every task in the system.
type TasksConfig struct {
	Input   TaskConfig    `yaml:"input"`
	Render  TaskConfig    `yaml:"render"`
	Snek    TaskConfig    `yaml:"snek"`
	Monitor TaskConfig    `yaml:"monitor"`
	Buzzer  TaskConfig    `yaml:"buzzer"` // event-driven; period unused
	Chrono  time.Duration `yaml:"chrono"` // game clock timer period
}

// DisplayConfig controls the render path.
type DisplayConfig struct {
	LockTimeout time.Duration `yaml:"lock_timeout"`
	Debug       bool          `yaml:"debug"` // debug overlay on at start
}

// AudioConfig controls the tone emitter.
type AudioConfig struct {
	Enabled     bool    `yaml:"enabled"`
	QueueLength int     `yaml:"queue_length"`
	SampleRate  int     `yaml:"sample_rate"`
	Volume      float64 `yaml:"volume"` // 0.0 - 1.0
}

// TraceConfig controls the sqlite trace store.
type TraceConfig struct {
	Enabled bool   `yaml:"enabled"`
	Path    string `yaml:"path"`
}

// TelemetryConfig controls the MQTT diagnostics publisher.
type TelemetryConfig struct {
	Enabled bool          `yaml:"enabled"`
	Broker  string        `yaml:"broker"`
	Topic   string        `yaml:"topic"`
	QoS     byte          `yaml:"qos"`
	Timeout time.Duration `yaml:"timeout"`
}

// SSHConfig controls the wish server.
type SSHConfig struct {
	Host        string `yaml:"host"`
	Port        int    `yaml:"port"`
	HostKeyPath string `yaml:"host_key_path"`
	MaxSessions int    `yaml:"max_sessions"` // 0 = unlimited
}

// MinGrid and MaxGrid bound each side of the playfield.
const (
	MinGrid = 4
	MaxGrid = 16
)

// ErrInvalid is returned by Validate.
var ErrInvalid = errors.New("invalid config")

// NumTasks is the number of kernel tasks the configuration creates,
// counting the buzzer and the timer service.
const NumTasks = 6

// Validate checks the configuration for values the system cannot run with.
func (c Config) Validate() error {
	if c.Grid.Width < MinGrid || c.Grid.Width > MaxGrid ||
		c.Grid.Height < MinGrid || c.Grid.Height > MaxGrid {
		return fmt.Errorf("%w: grid %dx%d outside %d..%d", ErrInvalid, c.Grid.Width, c.Grid.Height, MinGrid, MaxGrid)
	}
	if c.Grid.StartLength < 1 || c.Grid.StartLength > c.Grid.Width {
		return fmt.Errorf("%w: start_length %d", ErrInvalid, c.Grid.StartLength)
	}
	if c.Kernel.Tick <= 0 {
		return fmt.Errorf("%w: kernel.tick must be positive", ErrInvalid)
	}
	if c.Kernel.MaxTasks < NumTasks {
		return fmt.Errorf("%w: kernel.max_tasks %d < %d tasks", ErrInvalid, c.Kernel.MaxTasks, NumTasks)
	}
	if c.Kernel.TimerStackWords <= 0 {
		return fmt.Errorf("%w: kernel.timer_stack_words must be positive", ErrInvalid)
	}

	periodic := map[string]TaskConfig{
		"input":   c.Tasks.Input,
		"render":  c.Tasks.Render,
		"snek":    c.Tasks.Snek,
		"monitor": c.Tasks.Monitor,
	}
	for name, t := range periodic {
		if t.Period <= 0 {
			return fmt.Errorf("%w: tasks.%s.period must be positive", ErrInvalid, name)
		}
		if t.StackWords <= 0 {
			return fmt.Errorf("%w: tasks.%s.stack_words must be positive", ErrInvalid, name)
		}
		if t.Priority < 1 || t.Priority > 31 {
			return fmt.Errorf("%w: tasks.%s.priority %d outside 1..31", ErrInvalid, name, t.Priority)
		}
	}
	if c.Tasks.Buzzer.StackWords <= 0 {
		return fmt.Errorf("%w: tasks.buzzer.stack_words must be positive", ErrInvalid)
	}
	if c.Tasks.Chrono <= 0 {
		return fmt.Errorf("%w: tasks.chrono must be positive", ErrInvalid)
	}

	if c.Display.LockTimeout <= 0 {
		return fmt.Errorf("%w: display.lock_timeout must be positive", ErrInvalid)
	}
	if c.Audio.QueueLength < 1 {
		return fmt.Errorf("%w: audio.queue_length must be at least 1", ErrInvalid)
	}
	if c.Audio.Volume < 0 || c.Audio.Volume > 1 {
		return fmt.Errorf("%w: audio.volume %.2f outside 0..1", ErrInvalid, c.Audio.Volume)
	}
	if c.Audio.Enabled && c.Audio.SampleRate <= 0 {
		return fmt.Errorf("%w: audio.sample_rate must be positive", ErrInvalid)
	}
	if c.Trace.Enabled && c.Trace.Path == "" {
		return fmt.Errorf("%w: trace.path required when tracing", ErrInvalid)
	}
	if c.Telemetry.Enabled && (c.Telemetry.Broker == "" || c.Telemetry.Topic == "") {
		return fmt.Errorf("%w: telemetry needs broker and topic", ErrInvalid)
	}
	if c.SSH.MaxSessions < 0 {
		return fmt.Errorf("%w: ssh.max_sessions must not be negative", ErrInvalid)
	}
	if c.Telemetry.QoS > 2 {
		return fmt.Errorf("%w: telemetry.qos %d outside 0..2", ErrInvalid, c.Telemetry.QoS)
	}
	return nil
}
