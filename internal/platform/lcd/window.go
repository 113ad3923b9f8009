//go:build cgo

package lcd

import (
	"context"
	"errors"
	"fmt"
	"image"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/vovakirdan/snek/internal/core"
)

// Runner is the control loop behind the window.
type Runner interface {
	Run(ctx context.Context) error
}

// Run opens the panel window and runs r until the window closes or the
// user quits. A halted loop leaves the window open on its last screen.
// It must be called from the main goroutine.
func Run(ctx context.Context, r Runner, display *Display, latch *core.InputLatch) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	w := &window{
		display: display,
		latch:   latch,
		ctx:     ctx,
		img:     image.NewRGBA(image.Rect(0, 0, Size, Size)),
		fb:      ebiten.NewImage(Size, Size),
	}

	ebiten.SetWindowTitle("snek")
	ebiten.SetWindowSize(Size*Scale, Size*Scale)
	ebiten.SetTPS(60)
	runErr := ebiten.RunGame(w)

	cancel()
	loopErr := <-done
	if runErr != nil {
		return fmt.Errorf("lcd: window: %w", runErr)
	}
	if loopErr != nil && !errors.Is(loopErr, context.Canceled) {
		return loopErr
	}
	return nil
}

// keys mirrors the terminal key map.
var keys = map[ebiten.Key]core.Action{
	ebiten.KeyArrowUp:    core.ActionUp,
	ebiten.KeyW:          core.ActionUp,
	ebiten.KeyK:          core.ActionUp,
	ebiten.KeyArrowDown:  core.ActionDown,
	ebiten.KeyS:          core.ActionDown,
	ebiten.KeyJ:          core.ActionDown,
	ebiten.KeyArrowLeft:  core.ActionLeft,
	ebiten.KeyA:          core.ActionLeft,
	ebiten.KeyH:          core.ActionLeft,
	ebiten.KeyArrowRight: core.ActionRight,
	ebiten.KeyD:          core.ActionRight,
	ebiten.KeyL:          core.ActionRight,
	ebiten.KeyY:          core.ActionUpLeft,
	ebiten.KeyU:          core.ActionUpRight,
	ebiten.KeyB:          core.ActionDownLeft,
	ebiten.KeyN:          core.ActionDownRight,
	ebiten.KeyP:          core.ActionPause,
	ebiten.KeySpace:      core.ActionPause,
	ebiten.KeyR:          core.ActionReset,
	ebiten.KeyTab:        core.ActionDebug,
	ebiten.KeyQ:          core.ActionQuit,
	ebiten.KeyEscape:     core.ActionQuit,
}

type window struct {
	display *Display
	latch   *core.InputLatch
	ctx     context.Context
	img     *image.RGBA
	fb      *ebiten.Image
	text    []TextLine
}

func (w *window) Update() error {
	if w.ctx.Err() != nil {
		return ebiten.Termination
	}
	for k, action := range keys {
		if !inpututil.IsKeyJustPressed(k) {
			continue
		}
		if action == core.ActionQuit {
			return ebiten.Termination
		}
		w.latch.Press(action)
	}
	return nil
}

func (w *window) Draw(screen *ebiten.Image) {
	w.text = w.display.Snapshot(w.img.Pix)
	w.fb.WritePixels(w.img.Pix)
	screen.DrawImage(w.fb, nil)
	for _, t := range w.text {
		ebitenutil.DebugPrintAt(screen, t.Text, t.X, t.Y)
	}
}

func (w *window) Layout(outsideWidth, outsideHeight int) (int, int) {
	return Size, Size
}
