package paths

import (
	"sync"
	"sync/atomic"

	"github.com/freeeve/pacgrid/pkg/grid"
)

// Lazy answers the same queries as Index but runs each source's BFS on first
// use and memoizes it. Safe for concurrent queries.
type Lazy struct {
	layout
	trees []tree
	once  []sync.Once
	done  atomic.Int64
}

// NewLazy prepares a lazy index for g without running any search.
func NewLazy(g *grid.Grid) *Lazy {
	l := newLayout(g)
	n := len(l.cells)
	return &Lazy{
		layout: l,
		trees:  make([]tree, n),
		once:   make([]sync.Once, n),
	}
}

// Len returns the number of floor cells covered.
func (lz *Lazy) Len() int { return len(lz.cells) }

// Computed returns how many sources have been searched so far.
func (lz *Lazy) Computed() int {
	return int(lz.done.Load())
}

func (lz *Lazy) source(src int) tree {
	lz.once[src].Do(func() {
		t := newTree(len(lz.cells))
		lz.bfs(src, t, nil)
		lz.trees[src] = t
		lz.done.Add(1)
	})
	return lz.trees[src]
}

// Distance returns the hop count from src to dst, or Unreachable.
func (lz *Lazy) Distance(src, dst grid.Cell) Distance {
	si, di := lz.lookup(src), lz.lookup(dst)
	if si < 0 || di < 0 {
		return Unreachable
	}
	return lz.source(si).dist[di]
}

// Path returns the moves from src to dst; empty when src == dst or when dst
// cannot be reached.
func (lz *Lazy) Path(src, dst grid.Cell) Path {
	si, di := lz.lookup(src), lz.lookup(dst)
	if si < 0 || di < 0 {
		return nil
	}
	return lz.path(lz.source(si), di)
}
