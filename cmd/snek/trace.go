package main

import (
	"fmt"
	"sort"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/platform/tui"
	"github.com/vovakirdan/snek/internal/storage"
)

var (
	flagTraceDB   string
	flagTraceRun  int64
	flagTraceLast int
	flagTraceList bool
)

var traceCmd = &cobra.Command{
	Use:   "trace",
	Short: "Show recorded monitor samples",
	Long: `Read a trace database written with trace.enabled (or bench --trace)
and print a run's summary and its most recent samples.

Examples:
  snek trace --list
  snek trace                  # newest run
  snek trace --run 3 --last 20
  snek trace --db bench.db`,
	Args: cobra.NoArgs,
	Run:  exitOnError(runTrace),
}

func init() {
	traceCmd.Flags().StringVar(&flagTraceDB, "db", "", "Trace database (default: trace.path from config)")
	traceCmd.Flags().Int64Var(&flagTraceRun, "run", 0, "Run ID (0 = newest)")
	traceCmd.Flags().IntVar(&flagTraceLast, "last", 10, "Number of samples to show")
	traceCmd.Flags().BoolVar(&flagTraceList, "list", false, "List runs instead")
}

func runTrace(_ *cobra.Command, _ []string) error {
	path := flagTraceDB
	if path == "" {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path = cfg.Trace.Path
	}

	store, err := storage.Open(path)
	if err != nil {
		return fmt.Errorf("cannot open trace database: %w", err)
	}
	defer store.Close()

	if flagTraceList {
		return listRuns(store)
	}

	runID := flagTraceRun
	if runID == 0 {
		if runID, err = store.LatestRun(); err != nil {
			fmt.Println("No runs recorded yet.")
			return nil
		}
	}

	sum, err := store.Summary(runID)
	if err != nil {
		return err
	}
	fmt.Printf("Run %d (%s): %d samples\n", sum.RunID, sum.Label, sum.Samples)
	if sum.Samples == 0 {
		return nil
	}
	fmt.Printf("  FPS avg %.1f, min %d\n", sum.AvgFPS, sum.MinFPS)
	fmt.Printf("  CPU avg %.1f%%, max %d%%\n", sum.AvgCPU, sum.MaxCPU)
	fmt.Printf("  Render jitter max %dus, exec max %dus\n", sum.MaxJitter, sum.MaxExecUs)
	fmt.Printf("  Tone drops %d\n", sum.ToneDrops)

	names := make([]string, 0, len(sum.PeakStacks))
	for name := range sum.PeakStacks {
		names = append(names, name)
	}
	sort.Strings(names)
	fmt.Print("  Peak stack:")
	for _, name := range names {
		fmt.Printf(" %s:%d", name, sum.PeakStacks[name])
	}
	fmt.Println()
	fmt.Println()

	samples, err := store.RecentSamples(runID, flagTraceLast)
	if err != nil {
		return err
	}
	rows := make([]tui.Row, len(samples))
	for i, s := range samples {
		rows[i] = tui.Row{
			fmt.Sprintf("%d", s.Seq),
			s.SampledAt.Format("15:04:05"),
			fmt.Sprintf("%d", s.FPS),
			fmt.Sprintf("%d%%", s.CPUUtilization),
			fmt.Sprintf("%d", s.Timing.LastJitterUs),
			fmt.Sprintf("%d/%d", s.Timing.AvgExecUs, s.Timing.MaxExecUs),
		}
	}
	fmt.Println(tui.RenderTable([]tui.Column{
		{Title: "Seq", Width: 6},
		{Title: "Time", Width: 9},
		{Title: "FPS", Width: 4},
		{Title: "CPU", Width: 5},
		{Title: "Jitter", Width: 7},
		{Title: "Exec us", Width: 11},
	}, rows))
	return nil
}

func listRuns(store *storage.Store) error {
	runs, err := store.Runs(20)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("No runs recorded yet.")
		return nil
	}

	rows := make([]tui.Row, len(runs))
	for i, r := range runs {
		rows[i] = tui.Row{
			fmt.Sprintf("%d", r.ID),
			r.Label,
			fmt.Sprintf("%d", r.Samples),
			r.CreatedAt.Format("2006-01-02 15:04"),
		}
	}
	fmt.Println(tui.RenderTable([]tui.Column{
		{Title: "Run", Width: 5},
		{Title: "Label", Width: 16},
		{Title: "Samples", Width: 8},
		{Title: "Started", Width: 17},
	}, rows))
	return nil
}
