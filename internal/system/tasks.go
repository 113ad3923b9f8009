package system

import (
	"time"

	"github.com/vovakirdan/snek/internal/diag"
	"github.com/vovakirdan/snek/internal/game"
	"github.com/vovakirdan/snek/internal/rtos"
)

// Stack each body reports per run, in words.
const (
	inputStackWords   = 48
	snekStackWords    = 24
	renderStackWords  = 260
	overlayStackWords = 60
	monitorStackWords = 64
)

func (s *System) inputTask(tc *rtos.TaskContext) {
	tc.UseStack(inputStackWords)

	if s.input.PauseRequested() {
		s.state.TogglePause()
		if !s.state.Killed() {
			s.gate.MarkDirty()
		}
		s.emitter.PostTone(game.PauseTone.FreqHz, game.PauseTone.DurationMs)
	}
	if s.input.ResetRequested() {
		s.state.RequestReset()
		s.filter.Reset()
		// a heading queued before the reset must not steer the new snake
		s.dirs.TryReceive()
		s.emitter.PostTone(game.ResetTone.FreqHz, game.ResetTone.DurationMs)
	}
	if s.input.DebugToggled() {
		s.debug.Store(!s.debug.Load())
		s.gate.MarkDirty()
	}

	s.filter.Offer(s.input.Joystick(), s.state.Running(), s.dirs)
}

func (s *System) snekTask(tc *rtos.TaskContext) {
	tc.UseStack(snekStackWords)
	s.engine.Tick()
}

func (s *System) renderTask(tc *rtos.TaskContext) {
	if !s.gate.TakeIfDirty() {
		return
	}

	start := s.clock.NowUs()
	s.renderTiming.RecordPeriod(start)
	s.renderTiming.RecordExecStart(start)

	debug := s.debug.Load()
	words := uint32(renderStackWords)
	if debug {
		words += overlayStackWords
	}
	tc.UseStack(words)
	if s.kernel.Halted() {
		return
	}

	if !s.lcd.TryLockFor(tc.Context(), s.cfg.Display.LockTimeout) {
		s.logger.Debug("display busy, frame dropped")
		return
	}
	s.draw(debug)

	s.frames.Inc()
	s.renderTiming.RecordExecEnd(s.clock.NowUs())
}

func (s *System) draw(debug bool) {
	defer s.lcd.Unlock()

	f := s.engine.Frame()
	if f.Killed() {
		s.display.DrawDeathScreen(f.Score, f.HighScore)
		return
	}
	s.display.DrawFrame(f, s.board.Load(), debug)
}

func (s *System) monitorTask(tc *rtos.TaskContext) {
	tc.UseStack(monitorStackWords)

	now := s.clock.NowUs()
	if !s.sampled {
		s.lastSampleUs, _ = s.kernel.StartUs()
		s.sampled = true
	}
	window := time.Duration(now-s.lastSampleUs) * time.Microsecond
	s.lastSampleUs = now

	state, total := s.kernel.SystemState()
	tasks, util := diag.SampleCPUUsage(diag.RuntimesFromStatus(state), total, s.kernel.MaxTasks())

	stacks := make([]diag.StackUsage, 0, len(state))
	numTasks := 0
	for _, st := range state {
		if st.Name == rtos.IdleTaskName {
			continue
		}
		numTasks++
		stacks = append(stacks, diag.SampleStackUsage(st.Name, st.StackWords, st.HighWater))
	}

	d := s.board.Publish(diag.Diagnostics{
		SampledAt:      time.Now(),
		FPS:            s.frames.DrainFPS(window),
		CPUUtilization: util,
		NumTasks:       numTasks,
		Tasks:          tasks,
		Stacks:         stacks,
		Timing:         s.renderTiming.DrainAndReset(),
		ToneDrops:      s.emitter.Dropped(),
	})

	if len(s.sinks) > 0 && !s.diagQ.TrySend(d) {
		s.logger.Debug("diagnostics queue full, sample dropped", "seq", d.Seq)
	}

	s.logger.Debug("monitor",
		"seq", d.Seq,
		"fps", d.FPS,
		"cpu", d.CPUUtilization,
		"jitter_us", d.Timing.LastJitterUs,
		"exec_us", d.Timing.AvgExecUs)
}
