package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/platform/lcd"
	"github.com/vovakirdan/snek/internal/system"
)

var windowCmd = &cobra.Command{
	Use:   "window",
	Short: "Play in an emulated LCD window",
	Long: `Open a desktop window showing the 128x128 panel, scaled 4x.
Keys are the same as in the terminal. Requires a cgo build.

Examples:
  snek window
  snek window --debug`,
	Args: cobra.NoArgs,
	Run:  exitOnError(runWindow),
}

func runWindow(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger, err := newLogger(os.Stderr, "snek")
	if err != nil {
		return err
	}

	sink, closeSink := openSpeaker(cfg, logger)
	defer closeSink()
	out := openOutputs(cfg, logger)
	defer out.Close()

	display := lcd.NewDisplay(cfg.Grid.Width, cfg.Grid.Height)
	latch := core.NewInputLatch()
	sys, err := system.New(cfg, system.Deps{
		Display: display,
		Input:   latch,
		Sink:    sink,
		Logger:  logger,
		Sinks:   out.sinks("window"),
		Seed:    cfg.Seed,
	})
	if err != nil {
		return err
	}

	return lcd.Run(context.Background(), sys, display, latch)
}
