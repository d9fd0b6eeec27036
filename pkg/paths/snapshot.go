package paths

import (
	"errors"
	"fmt"

	"github.com/freeeve/pacgrid/pkg/grid"
)

// ErrSnapshotMismatch reports a snapshot that does not belong to the grid it
// is restored against.
var ErrSnapshotMismatch = errors.New("paths: snapshot does not match grid")

// Snapshot is the serializable form of an Index. Dist uses -1 for
// unreachable pairs.
type Snapshot struct {
	Rows int     `json:"rows"`
	Cols int     `json:"cols"`
	Free int     `json:"free"`
	Dist []int32 `json:"dist"`
	Via  []byte  `json:"via"`
}

// Snapshot exports the index tables.
func (ix *Index) Snapshot() *Snapshot {
	dist := make([]int32, len(ix.dist))
	for i, d := range ix.dist {
		if d.Reachable() {
			dist[i] = int32(d)
		} else {
			dist[i] = -1
		}
	}
	via := make([]byte, len(ix.via))
	for i, d := range ix.via {
		via[i] = byte(d)
	}
	return &Snapshot{
		Rows: ix.g.Rows(),
		Cols: ix.g.Cols(),
		Free: ix.n,
		Dist: dist,
		Via:  via,
	}
}

// Restore rebuilds an Index for g from a snapshot taken on the same map.
func Restore(g *grid.Grid, s *Snapshot) (*Index, error) {
	if s == nil {
		return nil, fmt.Errorf("%w: nil snapshot", ErrSnapshotMismatch)
	}
	if s.Rows != g.Rows() || s.Cols != g.Cols() {
		return nil, fmt.Errorf("%w: size %dx%d, grid %dx%d", ErrSnapshotMismatch, s.Cols, s.Rows, g.Cols(), g.Rows())
	}
	ix := newIndex(g)
	if s.Free != ix.n || len(s.Dist) != ix.n*ix.n || len(s.Via) != ix.n*ix.n {
		return nil, fmt.Errorf("%w: %d floor cells, grid has %d", ErrSnapshotMismatch, s.Free, ix.n)
	}
	for i, d := range s.Dist {
		if d >= 0 {
			ix.dist[i] = Distance(d)
		}
	}
	for i, v := range s.Via {
		if v >= grid.NumDirections {
			return nil, fmt.Errorf("%w: bad direction %d at %d", ErrSnapshotMismatch, v, i)
		}
		ix.via[i] = grid.Direction(v)
	}
	for i := range ix.n {
		if ix.dist[i*ix.n+i] != 0 {
			return nil, fmt.Errorf("%w: cell %v has no self distance", ErrSnapshotMismatch, ix.cells[i])
		}
		if d := ix.verify(i, ix.row(i)); d >= 0 {
			return nil, fmt.Errorf("%w: broken path %v -> %v", ErrSnapshotMismatch, ix.cells[i], ix.cells[d])
		}
	}
	return ix, nil
}
