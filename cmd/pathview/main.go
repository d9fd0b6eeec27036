// Command pathview prints shortest paths on a map for debugging.
//
// The map is read in referee format ("width height" then the rows) from -map
// or stdin. Cells are given as "x,y" (column, row).
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/rs/zerolog/log"

	"github.com/freeeve/pacgrid/internal/logger"
	"github.com/freeeve/pacgrid/internal/protocol"
	"github.com/freeeve/pacgrid/pkg/grid"
	"github.com/freeeve/pacgrid/pkg/paths"
)

func main() {
	mapPath := flag.String("map", "", "map file (default stdin)")
	srcFlag := flag.String("src", "", "source cell as x,y")
	dstFlag := flag.String("dst", "", "destination cell as x,y (omit for a distance table)")
	tui := flag.Bool("tui", false, "interactive viewer")
	flag.Parse()

	logger.Init()

	in := os.Stdin
	if *mapPath != "" {
		f, err := os.Open(*mapPath)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to open map")
		}
		defer f.Close()
		in = f
	}
	g, err := protocol.NewReader(in).ReadMap()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to read map")
	}
	ix := paths.Build(g)
	log.Info().Int("rows", g.Rows()).Int("cols", g.Cols()).Int("floor", ix.Len()).Msg("Path index built")

	free := g.FreeCells()
	if len(free) == 0 {
		log.Fatal().Msg("Map has no floor")
	}
	src, dst := free[0], free[len(free)-1]
	if *srcFlag != "" {
		if src, err = parseCell(*srcFlag); err != nil {
			log.Fatal().Err(err).Msg("Bad -src")
		}
	}
	if *dstFlag != "" {
		if dst, err = parseCell(*dstFlag); err != nil {
			log.Fatal().Err(err).Msg("Bad -dst")
		}
	}

	if *tui {
		if err := runTUI(g, ix, src, dst); err != nil {
			log.Fatal().Err(err).Msg("Viewer failed")
		}
		return
	}

	if *dstFlag == "" {
		fmt.Print(paths.RenderDistances(g, ix, src))
		return
	}
	fmt.Print(paths.Render(g, ix, src, dst))
	if p, ok := paths.Route(ix, src, dst); ok {
		fmt.Printf("Path: %s\n", p)
	}
}

func parseCell(s string) (grid.Cell, error) {
	x, y, ok := strings.Cut(s, ",")
	if !ok {
		return grid.Cell{}, fmt.Errorf("cell %q: want x,y", s)
	}
	col, err := strconv.Atoi(strings.TrimSpace(x))
	if err != nil {
		return grid.Cell{}, fmt.Errorf("cell %q: %w", s, err)
	}
	row, err := strconv.Atoi(strings.TrimSpace(y))
	if err != nil {
		return grid.Cell{}, fmt.Errorf("cell %q: %w", s, err)
	}
	return grid.Cell{Row: row, Col: col}, nil
}
