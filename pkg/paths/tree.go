package paths

import "github.com/freeeve/pacgrid/pkg/grid"

// layout assigns dense indices 0..n-1 to the floor cells of a grid.
type layout struct {
	g     *grid.Grid
	slot  []int32     // grid index → dense index; -1 for walls
	cells []grid.Cell // dense index → cell
}

func newLayout(g *grid.Grid) layout {
	slot := make([]int32, g.Size())
	for i := range slot {
		slot[i] = -1
	}
	cells := g.FreeCells()
	for i, c := range cells {
		slot[g.Index(c)] = int32(i)
	}
	return layout{g: g, slot: slot, cells: cells}
}

// lookup returns the dense index of c, or -1 when c is not a floor cell.
func (l *layout) lookup(c grid.Cell) int {
	if !l.g.IsFree(c) {
		return -1
	}
	return int(l.slot[l.g.Index(c)])
}

// tree is one source's BFS result. via[d] is the last move on the shortest
// path into d, so the path to d is the path to its parent plus via[d], and
// the parent is one step back along via[d].
type tree struct {
	dist []Distance
	via  []grid.Direction
}

// bfs fills t from src and returns the queue for reuse. t.dist must be all
// Unreachable on entry.
func (l *layout) bfs(src int, t tree, queue []int32) []int32 {
	t.dist[src] = 0
	queue = append(queue[:0], int32(src))
	for head := 0; head < len(queue); head++ {
		cur := queue[head]
		c := l.cells[cur]
		next := t.dist[cur] + 1
		for _, d := range grid.Directions {
			ni := l.slot[l.g.Index(l.g.Step(c, d))]
			if ni < 0 || t.dist[ni] != Unreachable {
				continue
			}
			t.dist[ni] = next
			t.via[ni] = d
			queue = append(queue, ni)
		}
	}
	return queue
}

// path walks parent links back from dst and returns the moves in order.
func (l *layout) path(t tree, dst int) Path {
	n := t.dist[dst]
	if n == 0 || !n.Reachable() {
		return nil
	}
	p := make(Path, n)
	cur := dst
	for i := int(n) - 1; i >= 0; i-- {
		d := t.via[cur]
		p[i] = d
		cur = int(l.slot[l.g.Index(l.g.Step(l.cells[cur], d.Opposite()))])
		if cur < 0 || t.dist[cur] != Distance(i) {
			panic("paths: broken BFS tree")
		}
	}
	return p
}

// verify reports the first cell of t whose parent link does not lead one
// step closer to src, or -1 when every reachable cell is consistent.
func (l *layout) verify(src int, t tree) int {
	for d, n := range t.dist {
		if d == src || !n.Reachable() {
			continue
		}
		if n <= 0 || t.via[d] >= grid.NumDirections {
			return d
		}
		p := l.slot[l.g.Index(l.g.Step(l.cells[d], t.via[d].Opposite()))]
		if p < 0 || t.dist[p] != n-1 {
			return d
		}
	}
	return -1
}

func newTree(n int) tree {
	t := tree{dist: make([]Distance, n), via: make([]grid.Direction, n)}
	for i := range t.dist {
		t.dist[i] = Unreachable
	}
	return t
}
