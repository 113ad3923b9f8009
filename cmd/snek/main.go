// snek is a snake game driven by a small cooperative scheduler: input,
// simulation, render and monitor run as fixed-period tasks on a 1 ms tick.
//
// Usage:
//
//	snek play               - Play in this terminal
//	snek serve              - Start SSH server for remote play
//	snek window             - Play in a 128x128 LCD window
//	snek bench              - Run headless with an autopilot and report timing
//	snek tasks              - Show the task table
//	snek trace              - Show recorded monitor samples
//	snek config             - Print the effective configuration
//
// Global flags:
//
//	--config <path>     - Config YAML (default: ~/.snek/config.yaml, then embedded)
//	--log-level <level> - debug, info, warn or error
//	--seed <value>      - RNG seed for reproducible fruit
//	--debug             - Start with the debug overlay on
package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/config"
)

var (
	// Global flags
	flagConfig   string
	flagLogLevel string
	flagSeed     int64
	flagDebug    bool
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "snek",
	Short: "snek - a snake game on a cooperative task scheduler",
	Long: `snek plays snake on a 16x16 wrapping grid. Input, simulation, rendering
and a diagnostics monitor run as periodic tasks on a 1 ms scheduler tick,
with a game clock timer and an event-driven buzzer.

Available commands:
  play     - Play in this terminal
  serve    - Start SSH server for remote play
  window   - Play in an emulated 128x128 LCD window
  bench    - Run headless with an autopilot and report timing
  tasks    - Show the task table
  trace    - Show recorded monitor samples
  config   - Print the effective configuration

Examples:
  snek play
  snek play --debug --seed 42
  snek serve --ssh :2222
  snek bench --ticks 120000 --trace bench.db
  snek trace --db bench.db`,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to config YAML")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	rootCmd.PersistentFlags().Int64Var(&flagSeed, "seed", 0, "RNG seed (0 = config value, then time)")
	rootCmd.PersistentFlags().BoolVar(&flagDebug, "debug", false, "Start with the debug overlay on")

	rootCmd.AddCommand(playCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(windowCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.AddCommand(tasksCmd)
	rootCmd.AddCommand(traceCmd)
	rootCmd.AddCommand(configCmd)
}

// exitOnError adapts a command body that returns an error.
func exitOnError(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) {
	return func(cmd *cobra.Command, args []string) {
		if err := fn(cmd, args); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}
}

// loadConfig loads the config chain and applies global flag overrides.
func loadConfig() (config.Config, error) {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		return cfg, err
	}
	if flagSeed != 0 {
		cfg.Seed = flagSeed
	}
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}
	if flagDebug {
		cfg.Display.Debug = true
	}
	return cfg, nil
}

// newLogger builds a logger at --log-level.
func newLogger(w io.Writer, prefix string) (*log.Logger, error) {
	level, err := log.ParseLevel(strings.ToLower(flagLogLevel))
	if err != nil {
		return nil, fmt.Errorf("invalid --log-level %q", flagLogLevel)
	}
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		Prefix:          prefix,
		Level:           level,
	}), nil
}
