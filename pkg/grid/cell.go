package grid

import "fmt"

// Cell is a (row, column) coordinate on the torus.
type Cell struct {
	Row int
	Col int
}

// Less orders cells row-major.
func (c Cell) Less(o Cell) bool {
	if c.Row != o.Row {
		return c.Row < o.Row
	}
	return c.Col < o.Col
}

// String renders the cell as [x,y], column first, matching the wire order.
func (c Cell) String() string {
	return fmt.Sprintf("[%d,%d]", c.Col, c.Row)
}

// Direction is one of the four grid moves.
type Direction uint8

// The iota order is the neighbour expansion order used by the path index.
const (
	Up Direction = iota
	Right
	Down
	Left
)

// NumDirections is the size of the 4-neighbourhood.
const NumDirections = 4

// Directions lists every direction in expansion order.
var Directions = [NumDirections]Direction{Up, Right, Down, Left}

// Opposite returns the direction that undoes d.
func (d Direction) Opposite() Direction {
	return (d + 2) % NumDirections
}

func (d Direction) String() string {
	switch d {
	case Up:
		return "UP"
	case Right:
		return "RIGHT"
	case Down:
		return "DOWN"
	case Left:
		return "LEFT"
	}
	return "UNKNOWN"
}

// Arrow returns the single-character glyph used in path renderings.
func (d Direction) Arrow() byte {
	switch d {
	case Up:
		return '^'
	case Right:
		return '>'
	case Down:
		return 'v'
	case Left:
		return '<'
	}
	return '?'
}

// delta returns the unwrapped row/column offset of one step.
func (d Direction) delta() (int, int) {
	switch d {
	case Up:
		return -1, 0
	case Down:
		return 1, 0
	case Left:
		return 0, -1
	case Right:
		return 0, 1
	}
	return 0, 0
}
