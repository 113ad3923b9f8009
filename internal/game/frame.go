package game

// Frame is a read-only copy of everything the display needs.
type Frame struct {
	Seq       uint64
	Width     int
	Height    int
	Snake     []Point // head first
	Fruit     Point
	HasFruit  bool
	Score     int
	HighScore int
	Direction Direction
	Phase     Phase
	ElapsedMs uint32
}

// Killed reports whether the frame shows a dead snake.
func (f Frame) Killed() bool { return f.Phase == PhaseDead }

// Running reports whether the snake was moving.
func (f Frame) Running() bool { return f.Phase == PhaseRunning }

// Time returns the play time as MM:SS:CC.
func (f Frame) Time() string { return FormatGameTime(f.ElapsedMs) }
