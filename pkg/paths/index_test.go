package paths

import (
	"testing"

	"github.com/freeeve/pacgrid/pkg/grid"
)

// pacMap is a small wrap-around arena with a tunnel on the middle row.
var pacMap = []string{
	"###########",
	"#   #     #",
	"# # # ### #",
	"  #     #  ",
	"# ### # # #",
	"#     #   #",
	"###########",
}

func mustGrid(t testing.TB, rows ...string) *grid.Grid {
	t.Helper()
	g, err := grid.New(rows)
	if err != nil {
		t.Fatalf("new grid: %v", err)
	}
	return g
}

func cell(row, col int) grid.Cell { return grid.Cell{Row: row, Col: col} }

func TestBuild_SelfDistanceZero(t *testing.T) {
	g := mustGrid(t, pacMap...)
	ix := Build(g)
	for _, a := range g.FreeCells() {
		if d := ix.Distance(a, a); d != 0 {
			t.Errorf("%v: expected self distance 0, got %v", a, d)
		}
		if p := ix.Path(a, a); len(p) != 0 {
			t.Errorf("%v: expected empty self path, got %v", a, p)
		}
	}
}

func TestBuild_Symmetric(t *testing.T) {
	g := mustGrid(t, pacMap...)
	ix := Build(g)
	free := g.FreeCells()
	for _, a := range free {
		for _, b := range free {
			if ix.Distance(a, b) != ix.Distance(b, a) {
				t.Fatalf("%v<->%v: %v vs %v", a, b, ix.Distance(a, b), ix.Distance(b, a))
			}
		}
	}
}

func TestBuild_PathsReplayToDestination(t *testing.T) {
	g := mustGrid(t, pacMap...)
	ix := Build(g)
	free := g.FreeCells()
	for _, a := range free {
		for _, b := range free {
			d := ix.Distance(a, b)
			if !d.Reachable() {
				continue
			}
			p := ix.Path(a, b)
			if len(p) != int(d) {
				t.Fatalf("%v->%v: path length %d, distance %v", a, b, len(p), d)
			}
			for i, c := range p.Replay(g, a) {
				if !g.IsFree(c) {
					t.Fatalf("%v->%v: step %d enters non-floor %v", a, b, i, c)
				}
			}
			if end := p.End(g, a); end != b {
				t.Fatalf("%v->%v: path ends at %v", a, b, end)
			}
		}
	}
}

func TestBuild_TriangleInequality(t *testing.T) {
	g := mustGrid(t, pacMap...)
	ix := Build(g)
	free := g.FreeCells()
	for _, a := range free {
		for _, b := range free {
			ab := ix.Distance(a, b)
			if !ab.Reachable() {
				continue
			}
			for _, c := range free {
				bc, ac := ix.Distance(b, c), ix.Distance(a, c)
				if !bc.Reachable() {
					continue
				}
				if ac > ab+bc {
					t.Fatalf("d(%v,%v)=%v > d(%v,%v)+d(%v,%v)=%v", a, c, ac, a, b, b, c, ab+bc)
				}
			}
		}
	}
}

func TestBuild_WrapsAroundEdges(t *testing.T) {
	g := mustGrid(t, "     ")
	ix := Build(g)
	if d := ix.Distance(cell(0, 0), cell(0, 4)); d != 1 {
		t.Fatalf("expected wrap distance 1, got %v", d)
	}
	p := ix.Path(cell(0, 0), cell(0, 4))
	if len(p) != 1 || p[0] != grid.Left {
		t.Errorf("expected [LEFT], got %v", p)
	}
}

func TestBuild_TunnelShortcut(t *testing.T) {
	g := mustGrid(t, pacMap...)
	ix := Build(g)
	// Row 3 is open at both edges, so the ends are neighbours.
	if d := ix.Distance(cell(3, 0), cell(3, 10)); d != 1 {
		t.Errorf("expected tunnel distance 1, got %v", d)
	}
}

func TestBuild_OpenGridDistances(t *testing.T) {
	g := mustGrid(t, "   ", "   ", "   ")
	ix := Build(g)
	tests := []struct {
		dst  grid.Cell
		want Distance
	}{
		{cell(0, 1), 1},
		{cell(1, 1), 2},
		{cell(2, 2), 2},
		{cell(2, 0), 1},
	}
	for _, tt := range tests {
		if d := ix.Distance(cell(0, 0), tt.dst); d != tt.want {
			t.Errorf("(0,0)->%v: expected %v, got %v", tt.dst, tt.want, d)
		}
	}
}

func TestBuild_DisconnectedComponents(t *testing.T) {
	// Two wall rows split the torus into two horizontal rings.
	g := mustGrid(t,
		"###",
		"   ",
		"###",
		"   ",
	)
	ix := Build(g)
	d := ix.Distance(cell(1, 0), cell(3, 0))
	if d.Reachable() {
		t.Fatalf("expected unreachable across wall rows, got %v", d)
	}
	if d != Unreachable {
		t.Errorf("expected Unreachable sentinel, got %d", int32(d))
	}
	if p := ix.Path(cell(1, 0), cell(3, 0)); len(p) != 0 {
		t.Errorf("expected empty path, got %v", p)
	}
	if _, ok := Route(ix, cell(1, 0), cell(3, 0)); ok {
		t.Error("expected Route to report unreachable")
	}
	if d := ix.Distance(cell(1, 0), cell(1, 2)); d != 1 {
		t.Errorf("expected same-ring distance 1, got %v", d)
	}
}

func TestBuild_IsolatedCell(t *testing.T) {
	g := mustGrid(t,
		"###",
		"# #",
		"###",
	)
	ix := Build(g)
	if ix.Len() != 1 {
		t.Fatalf("expected 1 floor cell, got %d", ix.Len())
	}
	if d := ix.Distance(cell(1, 1), cell(1, 1)); d != 0 {
		t.Errorf("expected 0, got %v", d)
	}
}

func TestBuild_DenseWhenOpen(t *testing.T) {
	g := mustGrid(t, "    ", "    ", "    ")
	ix := Build(g)
	free := g.FreeCells()
	for _, a := range free {
		for _, b := range free {
			if !ix.Distance(a, b).Reachable() {
				t.Fatalf("%v->%v: expected reachable on an open grid", a, b)
			}
		}
	}
}

func TestDistance_WallAndInvalidCells(t *testing.T) {
	g := mustGrid(t, pacMap...)
	ix := Build(g)
	if d := ix.Distance(cell(1, 1), cell(0, 0)); d.Reachable() {
		t.Errorf("expected wall destination unreachable, got %v", d)
	}
	if d := ix.Distance(cell(-1, 3), cell(1, 1)); d.Reachable() {
		t.Errorf("expected invalid source unreachable, got %v", d)
	}
	if ix.Covers(cell(0, 0)) {
		t.Error("expected wall not to be covered")
	}
	if !ix.Covers(cell(1, 1)) {
		t.Error("expected floor to be covered")
	}
}

func TestDistance_UnreachableOrdersLast(t *testing.T) {
	if !(Distance(1<<30) < Unreachable) {
		t.Error("expected every real distance to sort before Unreachable")
	}
	if Unreachable.String() != "unreachable" {
		t.Errorf("unexpected string %q", Unreachable.String())
	}
	if Distance(7).String() != "7" {
		t.Errorf("unexpected string %q", Distance(7).String())
	}
}

func TestFootprint(t *testing.T) {
	g := mustGrid(t, "   ", "   ")
	ix := Build(g)
	if got, want := ix.Footprint(), 36*5; got != want {
		t.Errorf("expected %d bytes, got %d", want, got)
	}
}

func BenchmarkBuild(b *testing.B) {
	g := mustGrid(b, pacMap...)
	for b.Loop() {
		Build(g)
	}
}
