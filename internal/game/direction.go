// Package game holds the snake simulation: the shared game state, the snake
// body on a toroidal grid, fruit, scoring and the game clock.
package game

// Direction is the snake's heading.
type Direction uint8

const (
	Up Direction = iota
	Down
	Left
	Right
)

// Opposite returns the reverse heading.
func (d Direction) Opposite() Direction {
	switch d {
	case Up:
		return Down
	case Down:
		return Up
	case Left:
		return Right
	default:
		return Left
	}
}

// Delta returns the grid step for one move.
func (d Direction) Delta() (dx, dy int) {
	switch d {
	case Up:
		return 0, -1
	case Down:
		return 0, 1
	case Left:
		return -1, 0
	default:
		return 1, 0
	}
}

// String returns a human-readable name for the direction.
func (d Direction) String() string {
	switch d {
	case Up:
		return "up"
	case Down:
		return "down"
	case Left:
		return "left"
	case Right:
		return "right"
	default:
		return "unknown"
	}
}

// Point is a grid cell.
type Point struct {
	X, Y int
}

// Wrap moves p by (dx, dy) on a w×h torus.
func (p Point) Wrap(dx, dy, w, h int) Point {
	return Point{
		X: ((p.X+dx)%w + w) % w,
		Y: ((p.Y+dy)%h + h) % h,
	}
}
