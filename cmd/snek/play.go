package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/platform/tui"
	"github.com/vovakirdan/snek/internal/system"
)

var flagLogFile string

var playCmd = &cobra.Command{
	Use:   "play",
	Short: "Play in this terminal",
	Long: `Start snek in the terminal.

Controls:
  Arrows/WASD/HJKL - Steer
  Y/U/B/N          - Diagonal stick (resolves counterclockwise)
  P/Space          - Pause
  R                - Reset
  Tab              - Debug overlay
  ?                - Full help
  Q/Ctrl+C         - Quit

Examples:
  snek play
  snek play --debug
  snek play --log-file snek.log --log-level debug`,
	Args: cobra.NoArgs,
	Run:  exitOnError(runPlay),
}

func init() {
	playCmd.Flags().StringVar(&flagLogFile, "log-file", "", "Write logs to this file (the screen is busy)")
}

func runPlay(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var logOut io.Writer = io.Discard
	if flagLogFile != "" {
		f, openErr := os.OpenFile(flagLogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if openErr != nil {
			return fmt.Errorf("cannot open log file: %w", openErr)
		}
		defer f.Close()
		logOut = f
	}
	logger, err := newLogger(logOut, "snek")
	if err != nil {
		return err
	}

	display := tui.NewDisplay(cfg.Grid.Width, cfg.Grid.Height)
	if w, h, termErr := term.GetSize(int(os.Stdout.Fd())); termErr == nil {
		needW, needH := display.Size()
		needH++ // help footer
		if w < needW || h < needH {
			return fmt.Errorf("terminal is %dx%d, snek needs at least %dx%d", w, h, needW, needH)
		}
	}

	sink, closeSink := openSpeaker(cfg, logger)
	defer closeSink()
	out := openOutputs(cfg, logger)
	defer out.Close()

	latch := core.NewInputLatch()
	sys, err := system.New(cfg, system.Deps{
		Display: display,
		Input:   latch,
		Sink:    sink,
		Logger:  logger,
		Sinks:   out.sinks("play"),
		Seed:    cfg.Seed,
	})
	if err != nil {
		return err
	}

	return tui.Play(context.Background(), sys, display, latch, cfg.Tasks.Render.Period)
}
