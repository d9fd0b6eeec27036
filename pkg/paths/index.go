package paths

import (
	"github.com/freeeve/pacgrid/pkg/grid"
)

// Index holds pre-computed shortest paths between all pairs of floor cells.
// Computed once per map via BFS from each floor cell; read-only afterwards.
type Index struct {
	layout
	n    int
	dist []Distance       // flat [src*n + dst]
	via  []grid.Direction // flat [src*n + dst]
}

// Build runs a BFS from every floor cell of g in row-major order.
// Time is O(V·(V+E)) and memory O(V²) for V floor cells.
func Build(g *grid.Grid) *Index {
	ix := newIndex(g)
	var queue []int32
	for src := range ix.n {
		queue = ix.bfs(src, ix.row(src), queue)
	}
	return ix
}

func newIndex(g *grid.Grid) *Index {
	l := newLayout(g)
	n := len(l.cells)
	ix := &Index{
		layout: l,
		n:      n,
		dist:   make([]Distance, n*n),
		via:    make([]grid.Direction, n*n),
	}
	for i := range ix.dist {
		ix.dist[i] = Unreachable
	}
	return ix
}

func (ix *Index) row(src int) tree {
	lo, hi := src*ix.n, (src+1)*ix.n
	return tree{dist: ix.dist[lo:hi], via: ix.via[lo:hi]}
}

// Grid returns the board the index was built for.
func (ix *Index) Grid() *grid.Grid { return ix.g }

// Len returns the number of floor cells covered.
func (ix *Index) Len() int { return ix.n }

// Footprint returns the approximate table size in bytes.
func (ix *Index) Footprint() int {
	return len(ix.dist)*4 + len(ix.via)
}

// Covers reports whether src has a row in the table.
func (ix *Index) Covers(src grid.Cell) bool {
	return ix.lookup(src) >= 0
}

// Distance returns the hop count from src to dst, or Unreachable.
func (ix *Index) Distance(src, dst grid.Cell) Distance {
	si, di := ix.lookup(src), ix.lookup(dst)
	if si < 0 || di < 0 {
		return Unreachable
	}
	return ix.dist[si*ix.n+di]
}

// Path returns the moves from src to dst; empty when src == dst or when dst
// cannot be reached.
func (ix *Index) Path(src, dst grid.Cell) Path {
	si, di := ix.lookup(src), ix.lookup(dst)
	if si < 0 || di < 0 {
		return nil
	}
	return ix.path(ix.row(si), di)
}
