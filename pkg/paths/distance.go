// Package paths precomputes shortest routes between every pair of floor cells
// on a toroidal grid and answers distance and path queries from the result.
package paths

import (
	"math"
	"strconv"

	"github.com/freeeve/pacgrid/pkg/grid"
)

// Distance is a hop count between two cells. Unreachable is its own value,
// larger than any real distance, so minimum searches need no special case.
type Distance int32

// Unreachable is returned for pairs with no connecting path.
const Unreachable Distance = math.MaxInt32

// Reachable reports whether d is a real hop count.
func (d Distance) Reachable() bool { return d != Unreachable }

func (d Distance) String() string {
	if !d.Reachable() {
		return "unreachable"
	}
	return strconv.Itoa(int(d))
}

// Path is a sequence of moves from a source cell. Its length equals the
// distance to the destination.
type Path []grid.Direction

// Replay applies p to start and returns every cell visited after start.
func (p Path) Replay(g *grid.Grid, start grid.Cell) []grid.Cell {
	cells := make([]grid.Cell, 0, len(p))
	cur := start
	for _, d := range p {
		cur = g.Step(cur, d)
		cells = append(cells, cur)
	}
	return cells
}

// End returns the cell reached by replaying p from start.
func (p Path) End(g *grid.Grid, start grid.Cell) grid.Cell {
	cur := start
	for _, d := range p {
		cur = g.Step(cur, d)
	}
	return cur
}

func (p Path) String() string {
	b := make([]byte, len(p))
	for i, d := range p {
		b[i] = d.Arrow()
	}
	return string(b)
}

// Querier answers shortest-path queries. Distance returns Unreachable and
// Path returns an empty path when no route exists; a zero-length path at the
// same cell is told apart by checking Distance.
type Querier interface {
	Distance(src, dst grid.Cell) Distance
	Path(src, dst grid.Cell) Path
}

// Route returns the path from src to dst and whether dst is reachable.
func Route(q Querier, src, dst grid.Cell) (Path, bool) {
	if !q.Distance(src, dst).Reachable() {
		return nil, false
	}
	return q.Path(src, dst), true
}
