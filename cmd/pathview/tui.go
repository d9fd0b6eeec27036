package main

import (
	"fmt"

	"github.com/gdamore/tcell/v2"

	"github.com/freeeve/pacgrid/pkg/grid"
	"github.com/freeeve/pacgrid/pkg/paths"
)

var (
	wallStyle   = tcell.StyleDefault.Foreground(tcell.ColorBlue)
	floorStyle  = tcell.StyleDefault.Foreground(tcell.ColorGray)
	pathStyle   = tcell.StyleDefault.Foreground(tcell.ColorYellow)
	srcStyle    = tcell.StyleDefault.Foreground(tcell.ColorGreen).Bold(true)
	dstStyle    = tcell.StyleDefault.Foreground(tcell.ColorRed).Bold(true)
	statusStyle = tcell.StyleDefault.Foreground(tcell.ColorWhite)
)

// viewer moves the source or destination around the torus with the arrow
// keys and redraws the shortest path between them.
type viewer struct {
	g        *grid.Grid
	q        paths.Querier
	src, dst grid.Cell
	editSrc  bool // arrows move src instead of dst
}

func runTUI(g *grid.Grid, q paths.Querier, src, dst grid.Cell) error {
	screen, err := tcell.NewScreen()
	if err != nil {
		return fmt.Errorf("create screen: %w", err)
	}
	if err := screen.Init(); err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer screen.Fini()

	v := &viewer{g: g, q: q, src: src, dst: dst}
	for {
		v.draw(screen)
		screen.Show()
		switch ev := screen.PollEvent().(type) {
		case *tcell.EventKey:
			if !v.handleKey(ev) {
				return nil
			}
		case *tcell.EventResize:
			screen.Sync()
		}
	}
}

// handleKey applies one key press and reports whether the viewer should keep
// running.
func (v *viewer) handleKey(ev *tcell.EventKey) bool {
	var dir grid.Direction
	switch ev.Key() {
	case tcell.KeyEscape, tcell.KeyCtrlC:
		return false
	case tcell.KeyTab:
		v.editSrc = !v.editSrc
		return true
	case tcell.KeyUp:
		dir = grid.Up
	case tcell.KeyRight:
		dir = grid.Right
	case tcell.KeyDown:
		dir = grid.Down
	case tcell.KeyLeft:
		dir = grid.Left
	case tcell.KeyRune:
		if ev.Rune() == 'q' {
			return false
		}
		return true
	default:
		return true
	}
	if v.editSrc {
		v.src = v.g.Step(v.src, dir)
	} else {
		v.dst = v.g.Step(v.dst, dir)
	}
	return true
}

// draw paints the board at the top-left corner with a status line under it.
func (v *viewer) draw(s tcell.Screen) {
	s.Clear()
	onPath := make(map[grid.Cell]grid.Direction)
	cur := v.src
	for _, d := range v.q.Path(v.src, v.dst) {
		onPath[cur] = d
		cur = v.g.Step(cur, d)
	}

	for r := 0; r < v.g.Rows(); r++ {
		for c := 0; c < v.g.Cols(); c++ {
			p := grid.Cell{Row: r, Col: c}
			ch, style := '.', floorStyle
			switch d, ok := onPath[p]; {
			case p == v.src:
				ch, style = 's', srcStyle
			case p == v.dst:
				ch, style = 'f', dstStyle
			case v.g.IsWall(p):
				ch, style = '#', wallStyle
			case ok:
				ch, style = rune(d.Arrow()), pathStyle
			}
			if (v.editSrc && p == v.src) || (!v.editSrc && p == v.dst) {
				style = style.Reverse(true)
			}
			s.SetContent(c, r, ch, nil, style)
		}
	}

	editing := "dst"
	if v.editSrc {
		editing = "src"
	}
	status := fmt.Sprintf("%v -> %v  dist %v  [%s] tab:switch q:quit", v.src, v.dst, v.q.Distance(v.src, v.dst), editing)
	for i, ch := range status {
		s.SetContent(i, v.g.Rows()+1, ch, nil, statusStyle)
	}
}
