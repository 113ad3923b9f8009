package game

// MaxLength is the longest snake a 16×16 grid can hold.
const MaxLength = 256

// Snake is a fixed-capacity body with the head at index 0.
// One slot past the tail keeps the previous tail so growth can reveal it.
type Snake struct {
	cells  [MaxLength + 1]Point
	length int
}

// Place lays out a straight snake of n cells with its head at head and the
// body trailing opposite to dir.
func (s *Snake) Place(head Point, n int, dir Direction, w, h int) {
	if n < 1 {
		n = 1
	}
	if n > MaxLength {
		n = MaxLength
	}
	dx, dy := dir.Opposite().Delta()
	s.length = n
	p := head
	for i := 0; i < n; i++ {
		s.cells[i] = p
		p = p.Wrap(dx, dy, w, h)
	}
	s.cells[n] = p
}

// Len returns the number of body cells.
func (s *Snake) Len() int { return s.length }

// Head returns the head cell.
func (s *Snake) Head() Point { return s.cells[0] }

// At returns body cell i.
func (s *Snake) At(i int) Point { return s.cells[i] }

// Cells returns a copy of the body, head first.
func (s *Snake) Cells() []Point {
	out := make([]Point, s.length)
	copy(out, s.cells[:s.length])
	return out
}

// Step shifts the body one cell toward the head, then moves the head one
// cell in dir, wrapping around the w×h grid.
func (s *Snake) Step(dir Direction, w, h int) {
	for i := s.length; i > 0; i-- {
		s.cells[i] = s.cells[i-1]
	}
	dx, dy := dir.Delta()
	s.cells[0] = s.cells[0].Wrap(dx, dy, w, h)
}

// Grow extends the snake by one cell, reusing the cell the tail just left.
// Returns false at MaxLength.
func (s *Snake) Grow() bool {
	if s.length >= MaxLength {
		return false
	}
	s.length++
	return true
}

// Contains reports whether p is any body cell.
func (s *Snake) Contains(p Point) bool {
	for i := 0; i < s.length; i++ {
		if s.cells[i] == p {
			return true
		}
	}
	return false
}

// HeadHitsBody reports whether the head shares a cell with the rest of the body.
func (s *Snake) HeadHitsBody() bool {
	head := s.cells[0]
	for i := 1; i < s.length; i++ {
		if s.cells[i] == head {
			return true
		}
	}
	return false
}
