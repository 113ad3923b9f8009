package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/audio"
	"github.com/vovakirdan/snek/internal/platform/headless"
	"github.com/vovakirdan/snek/internal/platform/tui"
	"github.com/vovakirdan/snek/internal/rtos"
	"github.com/vovakirdan/snek/internal/system"
)

var (
	flagTicks     uint64
	flagNoise     float64
	flagTracePath string
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Run headless with an autopilot",
	Long: `Run the scheduler on simulated time with an autopilot steering toward
the fruit, then print the last monitor sample and game totals.

Ticks follow simulated time, kernel.tick apart, while task bodies are
timed on the host clock, so CPU and exec figures are real but the run takes
only as long as the work. The buzzer does not run on simulated time; queued tones are
reported as dropped once the queue is full.

Examples:
  snek bench
  snek bench --ticks 600000 --seed 7
  snek bench --trace bench.db && snek trace --db bench.db`,
	Args: cobra.NoArgs,
	Run:  exitOnError(runBench),
}

func init() {
	benchCmd.Flags().Uint64Var(&flagTicks, "ticks", 60_000, "Scheduler ticks to run")
	benchCmd.Flags().Float64Var(&flagNoise, "noise", 0.05, "Probability of a random stick reading per poll")
	benchCmd.Flags().StringVar(&flagTracePath, "trace", "", "Record monitor samples to this database")
}

func runBench(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagTracePath != "" {
		cfg.Trace.Enabled = true
		cfg.Trace.Path = flagTracePath
	}
	logger, err := newLogger(os.Stderr, "bench")
	if err != nil {
		return err
	}

	out := openOutputs(cfg, logger)
	defer out.Close()

	display := headless.NewNullDisplay()
	pilot := headless.NewAutopilot(display, cfg.Seed, flagNoise)
	clock := rtos.NewSimClock()

	sys, err := system.New(cfg, system.Deps{
		Display: display,
		Input:   pilot,
		Sink:    audio.SilentSink{Logger: logger},
		Clock:   clock,
		Logger:  logger,
		Sinks:   out.sinks("bench"),
		Seed:    cfg.Seed,
	})
	if err != nil {
		return err
	}

	start := time.Now()
	for i := uint64(0); i < flagTicks && !sys.Halted(); i++ {
		clock.Advance(cfg.Kernel.Tick)
		sys.Step()
		sys.FlushDiagnostics()
	}
	wall := time.Since(start)

	printBench(sys, display, pilot, wall)
	if task, ok := sys.FatalTask(); ok {
		return fmt.Errorf("stack overflow in task %s", task)
	}
	return nil
}

func printBench(sys *system.System, display *headless.NullDisplay, pilot *headless.Autopilot, wall time.Duration) {
	d := sys.Diagnostics()
	e := sys.Engine()

	fmt.Printf("Simulated %s in %s\n", sys.Uptime(), wall.Round(time.Millisecond))
	fmt.Println()
	fmt.Printf("  Frames drawn:  %d\n", display.Frames())
	fmt.Printf("  Deaths:        %d (resets %d)\n", display.Deaths(), pilot.Resets())
	fmt.Printf("  Score:         %d (high %d)\n", e.Score(), e.HighScore())
	fmt.Printf("  Tones dropped: %d\n", sys.Emitter().Dropped())
	fmt.Println()

	if d.Seq == 0 {
		fmt.Println("No monitor sample yet; run more ticks.")
		return
	}

	fmt.Printf("Monitor sample #%d\n", d.Seq)
	fmt.Printf("  FPS: %d  CPU: %d%%  Tasks: %d\n", d.FPS, d.CPUUtilization, d.NumTasks)
	fmt.Printf("  Render period %dus, jitter %dus, exec %d/%dus\n",
		d.Timing.AvgPeriodUs, d.Timing.LastJitterUs, d.Timing.AvgExecUs, d.Timing.MaxExecUs)
	fmt.Println()

	stacks := make(map[string][2]uint32, len(d.Stacks))
	for _, st := range d.Stacks {
		stacks[st.Name] = [2]uint32{st.Used, st.Allocated}
	}
	rows := make([]tui.Row, 0, len(d.Tasks))
	for _, t := range d.Tasks {
		stack := "-"
		if st, ok := stacks[t.Name]; ok {
			stack = fmt.Sprintf("%d/%d", st[0], st[1])
		}
		rows = append(rows, tui.Row{t.Name, fmt.Sprintf("%d%%", t.Percent), fmt.Sprintf("%d", t.Runtime), stack})
	}
	fmt.Println(tui.RenderTable([]tui.Column{
		{Title: "Task", Width: 10},
		{Title: "CPU", Width: 5},
		{Title: "Runtime us", Width: 12},
		{Title: "Stack", Width: 9},
	}, rows))
}
