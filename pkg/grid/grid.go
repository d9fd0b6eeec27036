// Package grid models the static toroidal game board: typed cells, walls,
// and wrap-around stepping.
package grid

import (
	"errors"
	"fmt"
	"strings"
)

// ErrMalformed reports map input that does not describe a rectangular grid.
var ErrMalformed = errors.New("grid: malformed map")

// WallChar marks an impassable cell in map rows. Every other character is floor.
const WallChar = '#'

// Kind classifies a board cell.
type Kind uint8

const (
	Free Kind = iota
	Wall
)

// Grid is an immutable rows x cols board. Stepping off any edge reappears on
// the opposite edge.
type Grid struct {
	rows  int
	cols  int
	kinds []Kind // flat [row*cols + col]
	text  []string
}

// New builds a grid from map rows. All rows must share the first row's length.
func New(rows []string) (*Grid, error) {
	if len(rows) == 0 || len(rows[0]) == 0 {
		return nil, fmt.Errorf("%w: empty map", ErrMalformed)
	}
	h, w := len(rows), len(rows[0])
	kinds := make([]Kind, h*w)
	text := make([]string, h)
	for r, row := range rows {
		if len(row) != w {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d", ErrMalformed, r, len(row), w)
		}
		for c := 0; c < w; c++ {
			if row[c] == WallChar {
				kinds[r*w+c] = Wall
			}
		}
		text[r] = row
	}
	return &Grid{rows: h, cols: w, kinds: kinds, text: text}, nil
}

// Parse builds a grid from a declared width and height, checking the rows
// against them. Short rows are padded with floor, since trailing spaces are
// often stripped in transit.
func Parse(width, height int, rows []string) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: size %dx%d", ErrMalformed, width, height)
	}
	if len(rows) != height {
		return nil, fmt.Errorf("%w: got %d rows, want %d", ErrMalformed, len(rows), height)
	}
	padded := make([]string, height)
	for i, row := range rows {
		if len(row) > width {
			return nil, fmt.Errorf("%w: row %d has length %d, want %d", ErrMalformed, i, len(row), width)
		}
		padded[i] = row + strings.Repeat(" ", width-len(row))
	}
	return New(padded)
}

// Rows returns the grid height.
func (g *Grid) Rows() int { return g.rows }

// Cols returns the grid width.
func (g *Grid) Cols() int { return g.cols }

// Size returns the total number of cells, walls included.
func (g *Grid) Size() int { return g.rows * g.cols }

// IsValid reports whether c lies inside the board without wrapping.
func (g *Grid) IsValid(c Cell) bool {
	return c.Row >= 0 && c.Col >= 0 && c.Row < g.rows && c.Col < g.cols
}

// IsFree reports whether c is a valid floor cell.
func (g *Grid) IsFree(c Cell) bool {
	return g.IsValid(c) && g.kinds[c.Row*g.cols+c.Col] == Free
}

// IsWall reports whether c is a valid wall cell.
func (g *Grid) IsWall(c Cell) bool {
	return g.IsValid(c) && g.kinds[c.Row*g.cols+c.Col] == Wall
}

// Wrap canonicalizes any integer coordinate onto the torus.
func (g *Grid) Wrap(c Cell) Cell {
	return Cell{Row: mod(c.Row, g.rows), Col: mod(c.Col, g.cols)}
}

// Step moves c one cell in direction d, wrapping around the edges.
func (g *Grid) Step(c Cell, d Direction) Cell {
	dr, dc := d.delta()
	return g.Wrap(Cell{Row: c.Row + dr, Col: c.Col + dc})
}

// Index returns the dense row-major index of a valid cell.
func (g *Grid) Index(c Cell) int {
	return c.Row*g.cols + c.Col
}

// CellAt is the inverse of Index.
func (g *Grid) CellAt(idx int) Cell {
	return Cell{Row: idx / g.cols, Col: idx % g.cols}
}

// Center returns the middle of the board, used as the idle parking spot.
func (g *Grid) Center() Cell {
	return Cell{Row: g.rows / 2, Col: g.cols / 2}
}

// FreeCells returns every floor cell in row-major order.
func (g *Grid) FreeCells() []Cell {
	var cells []Cell
	for i, k := range g.kinds {
		if k == Free {
			cells = append(cells, g.CellAt(i))
		}
	}
	return cells
}

// Text returns a copy of the map rows the grid was built from.
func (g *Grid) Text() []string {
	out := make([]string, len(g.text))
	copy(out, g.text)
	return out
}

func (g *Grid) String() string {
	return strings.Join(g.text, "\n")
}

func mod(a, n int) int {
	a %= n
	if a < 0 {
		a += n
	}
	return a
}
