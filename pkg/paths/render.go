package paths

import (
	"fmt"
	"strings"

	"github.com/freeeve/pacgrid/pkg/grid"
)

// Render draws the board with the shortest path from src to dst overlaid:
// '#' walls, 's' source, 'f' destination, arrows along the path, '_' other
// floor. A header line states the distance. Debugging aid only.
func Render(g *grid.Grid, q Querier, src, dst grid.Cell) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Distance from %v to %v = %v\n", src, dst, q.Distance(src, dst))

	onPath := make(map[grid.Cell]grid.Direction)
	cur := src
	for _, d := range q.Path(src, dst) {
		onPath[cur] = d
		cur = g.Step(cur, d)
	}

	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			p := grid.Cell{Row: r, Col: c}
			switch d, ok := onPath[p]; {
			case g.IsWall(p):
				b.WriteByte(grid.WallChar)
			case p == src:
				b.WriteByte('s')
			case p == dst:
				b.WriteByte('f')
			case ok:
				b.WriteByte(d.Arrow())
			default:
				b.WriteByte('_')
			}
		}
		b.WriteByte('\n')
	}
	return b.String()
}

// RenderDistances draws the distance from src to every cell: '#' for walls,
// 'X' for unreachable floor, otherwise the hop count. Each entry takes at
// least two columns.
func RenderDistances(g *grid.Grid, q Querier, src grid.Cell) string {
	var b strings.Builder
	for r := 0; r < g.Rows(); r++ {
		for c := 0; c < g.Cols(); c++ {
			p := grid.Cell{Row: r, Col: c}
			if g.IsWall(p) {
				b.WriteString("# ")
				continue
			}
			d := q.Distance(src, p)
			if !d.Reachable() {
				b.WriteString("X ")
				continue
			}
			fmt.Fprintf(&b, "%-2d", int(d))
		}
		b.WriteByte('\n')
	}
	return b.String()
}
