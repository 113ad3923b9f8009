package tui

import (
	"fmt"
	"sync"

	"github.com/vovakirdan/snek/internal/core"
	"github.com/vovakirdan/snek/internal/diag"
	"github.com/vovakirdan/snek/internal/game"
)

// Layout constants, in terminal cells.
const (
	cellW        = 2  // each grid cell is two characters wide
	hudRows      = 1  // score line above the playfield
	overlayGap   = 2  // space between playfield and debug overlay
	overlayWidth = 26 // debug overlay column width
)

var (
	bodyCell  = core.Cell{Rune: '█', Color: core.ColorGreen}
	headCell  = core.Cell{Rune: '█', Color: core.ColorCyan}
	fruitCell = core.Cell{Rune: '●', Color: core.ColorRed}
	panelCell = core.Cell{Rune: ' ', Bg: core.ColorBlack}
)

// Display draws snek frames into a colored character screen. It satisfies
// system.Display; View returns the last drawn screen for Bubble Tea.
type Display struct {
	mu      sync.Mutex
	screen  *core.Screen
	field   core.Rect
	overlay core.Rect
	gridW   int
	gridH   int
	draws   uint64
}

// NewDisplay sizes a display for a gridW×gridH playfield.
func NewDisplay(gridW, gridH int) *Display {
	field := core.NewRect(0, hudRows, gridW*cellW+2, gridH+2)
	overlay := core.NewRect(field.Right()+overlayGap, 0, overlayWidth, field.Bottom())
	return &Display{
		screen:  core.NewScreen(overlay.Right(), field.Bottom()),
		field:   field,
		overlay: overlay,
		gridW:   gridW,
		gridH:   gridH,
	}
}

// Size returns the screen size in terminal cells.
func (d *Display) Size() (w, h int) {
	return d.screen.Width(), d.screen.Height()
}

// DrawFrame paints the playfield, the HUD and, when debug is set, the
// diagnostics overlay.
func (d *Display) DrawFrame(f game.Frame, diagnostics diag.Diagnostics, debug bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws++

	s := d.screen
	s.Clear()

	hud := fmt.Sprintf("SCORE %d  HI %d  %s", f.Score, f.HighScore, f.Time())
	s.DrawText(0, 0, hud, core.ColorWhite)
	if f.Phase == game.PhasePaused {
		s.DrawText(d.field.Right()-6, 0, "PAUSED", core.ColorYellow)
	}

	s.DrawBox(d.field, core.ColorGray)
	if f.HasFruit {
		d.plot(f.Fruit, fruitCell)
	}
	for i := len(f.Snake) - 1; i >= 0; i-- {
		c := bodyCell
		if i == 0 {
			c = headCell
		}
		d.plot(f.Snake[i], c)
	}

	if debug {
		d.drawOverlay(diagnostics)
	}
}

// plot fills one grid cell, two characters wide. Points off the grid are
// not drawn, so the border stays intact.
func (d *Display) plot(p game.Point, c core.Cell) {
	inner := d.field.Inset(1)
	x := inner.X + p.X*cellW
	y := inner.Y + p.Y
	if !inner.Contains(x, y) || !inner.Contains(x+cellW-1, y) {
		return
	}
	for i := 0; i < cellW; i++ {
		d.screen.SetCell(x+i, y, c)
	}
}

func (d *Display) drawOverlay(diagnostics diag.Diagnostics) {
	s := d.screen
	s.FillRect(d.overlay, panelCell)
	x, y := d.overlay.X, d.overlay.Y

	line := func(text string, fg core.Color) {
		if y < d.overlay.Bottom() {
			s.DrawText(x, y, text, fg)
		}
		y++
	}

	line(fmt.Sprintf("FPS: %d", diagnostics.FPS), core.ColorWhite)
	line(fmt.Sprintf("Total CPU Util: %d%%", diagnostics.CPUUtilization), core.UsageColor(diagnostics.CPUUtilization))
	line(fmt.Sprintf("Tasks: %d", diagnostics.NumTasks), core.ColorWhite)
	for _, t := range diagnostics.Tasks {
		line(fmt.Sprintf(" %-8s %3d%%", t.Name, t.Percent), core.UsageColor(t.Percent))
	}
	line("", core.ColorDefault)

	for i := 0; i < len(diagnostics.Stacks); i += stacksPerLine {
		prefix := "     "
		if i == 0 {
			prefix = "STK: "
		}
		end := min(i+stacksPerLine, len(diagnostics.Stacks))
		line(prefix+stackLine(diagnostics.Stacks[i:end]), worstStackColor(diagnostics.Stacks[i:end]))
	}
	line("", core.ColorDefault)

	tm := diagnostics.Timing
	line(fmt.Sprintf("Period: %dus", tm.AvgPeriodUs), core.ColorWhite)
	line(fmt.Sprintf("Jitter: %dus", tm.LastJitterUs), core.ColorWhite)
	line(fmt.Sprintf("Exec: %d/%dus", tm.AvgExecUs, tm.MaxExecUs), core.ColorWhite)
	if diagnostics.ToneDrops > 0 {
		line(fmt.Sprintf("Tone drops: %d", diagnostics.ToneDrops), core.ColorYellow)
	}
}

const stacksPerLine = 3

// stackLine abbreviates each task to its initial: "S:24 R:260 I:48".
func stackLine(stacks []diag.StackUsage) string {
	out := ""
	for i, st := range stacks {
		if i > 0 {
			out += " "
		}
		initial := "?"
		if st.Name != "" {
			initial = st.Name[:1]
		}
		out += fmt.Sprintf("%s:%d", initial, st.Used)
	}
	return out
}

func worstStackColor(stacks []diag.StackUsage) core.Color {
	var worst uint8
	for _, st := range stacks {
		if st.Allocated == 0 {
			continue
		}
		if p := uint8(uint64(st.Used) * 100 / uint64(st.Allocated)); p > worst {
			worst = p
		}
	}
	return core.UsageColor(worst)
}

// DrawDeathScreen shows the final score.
func (d *Display) DrawDeathScreen(score, highScore int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws++

	s := d.screen
	s.Clear()
	s.DrawBox(d.field, core.ColorRed)

	mid := d.field.Y + d.field.H/2
	d.centerInField(mid-2, "SNEK IS KIL", core.ColorRed)
	d.centerInField(mid, fmt.Sprintf("High Score: %d", highScore), core.ColorWhite)
	d.centerInField(mid+1, fmt.Sprintf("Score: %d", score), core.ColorWhite)
	d.centerInField(mid+3, "press r", core.ColorGray)
}

// DrawFatalError paints the stack overflow screen.
func (d *Display) DrawFatalError(task string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.draws++

	s := d.screen
	s.Fill(core.Cell{Rune: ' ', Bg: core.ColorBlue})

	mid := s.Height() / 2
	s.DrawTextCentered(mid-1, "ERROR: STACK OVERFLOW", core.ColorWhite)
	s.DrawTextCentered(mid+1, "task: "+task, core.ColorWhite)
}

func (d *Display) centerInField(y int, text string, fg core.Color) {
	x := d.field.X + (d.field.W-len([]rune(text)))/2
	d.screen.DrawText(core.Clamp(x, d.field.X, d.field.Right()-1), y, text, fg)
}

// View renders the current screen with colors.
func (d *Display) View() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return RenderScreen(d.screen)
}

// Plain returns the current screen without colors.
func (d *Display) Plain() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen.String()
}

// Cell returns one screen cell.
func (d *Display) Cell(x, y int) core.Cell {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.screen.GetCell(x, y)
}

// Draws counts completed draw calls.
func (d *Display) Draws() uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.draws
}
