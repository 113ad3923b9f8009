package tui

import (
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/lipgloss"
)

// Column is a table column: title and width in cells.
type Column = table.Column

// Row is one table row.
type Row = table.Row

// RenderTable lays rows out under a bordered header, tall enough to show
// every row. No row is highlighted.
func RenderTable(columns []Column, rows []Row) string {
	t := table.New(
		table.WithColumns(columns),
		table.WithRows(rows),
		table.WithFocused(false),
		table.WithHeight(len(rows)+1),
	)

	s := table.DefaultStyles()
	s.Header = s.Header.
		BorderStyle(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("240")).
		BorderBottom(true).
		Bold(true)
	// DefaultStyles highlights the cursor row even when unfocused
	s.Selected = lipgloss.NewStyle()
	t.SetStyles(s)

	return t.View()
}
