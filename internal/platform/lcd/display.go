// Package lcd emulates the 128×128 colour LCD in a desktop window.
// Drawing goes to an in-memory RGBA framebuffer; text is kept as lines the
// window prints over it with the debug font.
package lcd

import (
	"fmt"
	"image"
	"image/color"
	"sync"

	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/diag"
	"github.com/vovakirdan/snek/internal/game"
)

// Panel geometry.
const (
	Size       = 128 // pixels per side
	Scale      = 4   // window pixels per panel pixel
	lineHeight = 16  // debug font row
)

// TextLine is text printed over the framebuffer at pixel (X, Y).
type TextLine struct {
	X, Y int
	Text string
}

// Display paints snek frames into the panel framebuffer. It satisfies
// system.Display.
type Display struct {
	mu     sync.Mutex
	img    *image.RGBA
	text   []TextLine
	cellPx int
	draws  uint64
}

// NewDisplay sizes cells so a gridW×gridH board fills the panel.
func NewDisplay(gridW, gridH int) *Display {
	cell := Size / core.Max(core.Max(gridW, gridH), 1)
	return &Display{
		img:    image.NewRGBA(image.Rect(0, 0, Size, Size)),
		cellPx: core.Max(cell, 1),
	}
}

// CellPixels returns the side of one grid cell in panel pixels.
func (d *Display) CellPixels() int { return d.cellPx }

func (d *Display) DrawFrame(f game.Frame, diagnostics diag.Diagnostics, debug bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws++

	d.fill(core.ColorBlack)
	d.text = d.text[:0]

	if f.HasFruit {
		d.cell(f.Fruit, core.ColorRed)
	}
	for i := len(f.Snake) - 1; i >= 0; i-- {
		c := core.ColorGreen
		if i == 0 {
			c = core.ColorCyan
		}
		d.cell(f.Snake[i], c)
	}

	if !debug {
		return
	}
	d.println(fmt.Sprintf("FPS:%d CPU:%d%%", diagnostics.FPS, diagnostics.CPUUtilization))
	d.println(fmt.Sprintf("Tasks:%d %s", diagnostics.NumTasks, f.Time()))
	for _, t := range diagnostics.Tasks {
		d.println(fmt.Sprintf("%-7s %3d%%", t.Name, t.Percent))
	}
}

func (d *Display) DrawDeathScreen(score, highScore int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws++

	d.fill(core.ColorBlack)
	d.text = d.text[:0]
	d.text = append(d.text,
		TextLine{X: 31, Y: 24, Text: "SNEK IS KIL"},
		TextLine{X: 16, Y: 56, Text: fmt.Sprintf("High Score: %d", highScore)},
		TextLine{X: 34, Y: 72, Text: fmt.Sprintf("Score: %d", score)},
	)
}

func (d *Display) DrawFatalError(task string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws++

	d.fill(core.ColorBlue)
	d.text = d.text[:0]
	d.text = append(d.text,
		TextLine{X: 4, Y: 40, Text: "ERROR:"},
		TextLine{X: 4, Y: 56, Text: "STACK OVERFLOW"},
		TextLine{X: 4, Y: 72, Text: "task: " + task},
	)
}

// Snapshot copies the framebuffer pixels into dst and returns the text
// lines to print over them.
func (d *Display) Snapshot(dst []byte) []TextLine {
	d.mu.Lock()
	defer d.mu.Unlock()
	copy(dst, d.img.Pix)
	return append([]TextLine(nil), d.text...)
}

// At returns one framebuffer pixel.
func (d *Display) At(x, y int) color.RGBA {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.img.RGBAAt(x, y)
}

// Draws counts completed draw calls.
func (d *Display) Draws() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}

func (d *Display) fill(c core.Color) {
	r, g, b := c.RGB()
	px := d.img.Pix
	for i := 0; i+3 < len(px); i += 4 {
		px[i], px[i+1], px[i+2], px[i+3] = r, g, b, 0xff
	}
}

func (d *Display) cell(p game.Point, c core.Color) {
	r, g, b := c.RGB()
	rgba := color.RGBA{R: r, G: g, B: b, A: 0xff}
	x0, y0 := p.X*d.cellPx, p.Y*d.cellPx
	for y := y0; y < y0+d.cellPx; y++ {
		for x := x0; x < x0+d.cellPx; x++ {
			d.img.SetRGBA(x, y, rgba)
		}
	}
}

func (d *Display) println(s string) {
	y := len(d.text) * lineHeight
	if y+lineHeight > Size {
		return
	}
	d.text = append(d.text, TextLine{X: 0, Y: y, Text: s})
}
