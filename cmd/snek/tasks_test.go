package main

import (
	"testing"

	"github.com/vovakirdan/snek/internal/config"
)

func TestTaskRows(t *testing.T) {
	rows := taskRows(config.DefaultConfig())

	tests := []struct {
		name     string
		period   string
		priority string
	}{
		{"Input", "20ms", "4"},
		{"Render", "38ms", "3"},
		{"Snek", "69ms", "2"},
		{"Monitor", "2s", "1"},
		{"Buzzer", "event", "2"},
		{"Chrono", "10ms", "timer"},
	}
	if len(rows) != len(tests) {
		t.Fatalf("taskRows() returned %d rows, expected %d", len(rows), len(tests))
	}
	for i, tt := range tests {
		row := rows[i]
		if row[0] != tt.name || row[1] != tt.period || row[2] != tt.priority {
			t.Errorf("row %d = %v, expected %s %s %s", i, row, tt.name, tt.period, tt.priority)
		}
	}
}
