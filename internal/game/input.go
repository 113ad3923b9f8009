package game

// JoystickDir is an 8-way stick reading.
type JoystickDir uint8

const (
	Center JoystickDir = iota
	N
	NE
	E
	SE
	S
	SW
	W
	NW
)

// Direction maps the stick to a heading. Each diagonal resolves to the
// cardinal 45 degrees counterclockwise of it. Center yields no heading.
func (j JoystickDir) Direction() (Direction, bool) {
	switch j {
	case N, NE:
		return Up, true
	case S, SW:
		return Down, true
	case E, SE:
		return Right, true
	case W, NW:
		return Left, true
	default:
		return 0, false
	}
}

// String returns the compass name.
func (j JoystickDir) String() string {
	switch j {
	case N:
		return "N"
	case NE:
		return "NE"
	case E:
		return "E"
	case SE:
		return "SE"
	case S:
		return "S"
	case SW:
		return "SW"
	case W:
		return "W"
	case NW:
		return "NW"
	default:
		return "Center"
	}
}

// DirectionSink accepts a direction without blocking.
type DirectionSink interface {
	TrySend(d Direction) bool
}

// DirectionFilter decides which joystick headings are forwarded to the
// simulation. It remembers the last heading that was actually delivered and
// the current candidate, which survives Center readings and failed sends.
type DirectionFilter struct {
	last      Direction
	candidate Direction
}

// NewDirectionFilter creates a filter that assumes the snake heads Right.
func NewDirectionFilter() *DirectionFilter {
	f := &DirectionFilter{}
	f.Reset()
	return f
}

// Reset forgets history; the snake heads Right after a reset.
func (f *DirectionFilter) Reset() {
	f.last = Right
	f.candidate = Right
}

// Last returns the last delivered heading.
func (f *DirectionFilter) Last() Direction {
	return f.last
}

// Candidate returns the heading waiting to be delivered.
func (f *DirectionFilter) Candidate() Direction {
	return f.candidate
}

// Offer folds one joystick sample into the candidate and forwards it when it
// is new, the game is running and it does not reverse the last heading.
// Reports whether a direction was delivered.
func (f *DirectionFilter) Offer(j JoystickDir, running bool, sink DirectionSink) bool {
	if d, ok := j.Direction(); ok {
		f.candidate = d
	}

	if f.candidate == f.last || !running || f.candidate == f.last.Opposite() {
		return false
	}
	if !sink.TrySend(f.candidate) {
		return false
	}
	f.last = f.candidate
	return true
}
