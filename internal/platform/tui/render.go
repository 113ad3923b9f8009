package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/snek/internal/core"
)

// ansi maps core.Color to terminal color codes. ColorDefault has none.
var ansi = map[core.Color]lipgloss.Color{
	core.ColorBlack:   lipgloss.Color("0"),
	core.ColorRed:     lipgloss.Color("9"),
	core.ColorGreen:   lipgloss.Color("10"),
	core.ColorYellow:  lipgloss.Color("11"),
	core.ColorBlue:    lipgloss.Color("4"),
	core.ColorMagenta: lipgloss.Color("13"),
	core.ColorCyan:    lipgloss.Color("14"),
	core.ColorWhite:   lipgloss.Color("15"),
	core.ColorOrange:  lipgloss.Color("208"),
	core.ColorGray:    lipgloss.Color("245"),
}

type colorPair struct{ fg, bg core.Color }

func styleFor(p colorPair) lipgloss.Style {
	st := lipgloss.NewStyle()
	if c, ok := ansi[p.fg]; ok {
		st = st.Foreground(c)
	}
	if c, ok := ansi[p.bg]; ok {
		st = st.Background(c)
	}
	return st
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Adjacent cells with the same colors share one escape sequence.
func RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	styles := make(map[colorPair]lipgloss.Style)
	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}

		x := 0
		for x < s.Width() {
			cell := s.GetCell(x, y)
			pair := colorPair{cell.Color, cell.Bg}

			var run strings.Builder
			for x < s.Width() {
				cell = s.GetCell(x, y)
				if (colorPair{cell.Color, cell.Bg}) != pair {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}

			if pair == (colorPair{}) {
				sb.WriteString(run.String())
				continue
			}
			st, ok := styles[pair]
			if !ok {
				st = styleFor(pair)
				styles[pair] = st
			}
			sb.WriteString(st.Render(run.String()))
		}
	}
	return sb.String()
}
