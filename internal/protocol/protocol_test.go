package protocol

import (
	"bytes"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/freeeve/pacgrid/internal/assign"
	"github.com/freeeve/pacgrid/pkg/grid"
)

const sampleInput = "5 3\n" +
	"#####\n" +
	"     \n" +
	"#####\n" +
	"10 7\n" +
	"3\n" +
	"0 1 1 1 ROCK 0 0\n" +
	"0 0 3 1 PAPER 2 5\n" +
	"1 1 4 1 SCISSORS 0 10\n" +
	"2\n" +
	"2 1 1\n" +
	"0 1 10\n"

func TestReadMap(t *testing.T) {
	r := NewReader(strings.NewReader(sampleInput))
	g, err := r.ReadMap()
	if err != nil {
		t.Fatalf("read map: %v", err)
	}
	if g.Rows() != 3 || g.Cols() != 5 {
		t.Fatalf("expected 3x5, got %dx%d", g.Rows(), g.Cols())
	}
	if !g.IsWall(grid.Cell{Row: 0, Col: 2}) || !g.IsFree(grid.Cell{Row: 1, Col: 4}) {
		t.Error("unexpected cell kinds")
	}
	if r.Line() != 4 {
		t.Errorf("expected 4 lines consumed, got %d", r.Line())
	}
}

func TestReadMap_StrippedTrailingSpaces(t *testing.T) {
	r := NewReader(strings.NewReader("4 2\n#  #\n\n"))
	g, err := r.ReadMap()
	if err != nil {
		t.Fatalf("read map: %v", err)
	}
	if len(g.FreeCells()) != 6 {
		t.Errorf("expected 6 free cells, got %d", len(g.FreeCells()))
	}
}

func TestReadMap_Errors(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  error
	}{
		{"truncated rows", "3 2\n   \n", io.ErrUnexpectedEOF},
		{"bad size", "x 2\n", ErrSyntax},
		{"zero size", "0 2\n", ErrSyntax},
		{"row too long", "2 1\n    \n", grid.ErrMalformed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewReader(strings.NewReader(tt.input)).ReadMap()
			if !errors.Is(err, tt.want) {
				t.Errorf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestReadTick(t *testing.T) {
	r := NewReader(strings.NewReader(sampleInput))
	if _, err := r.ReadMap(); err != nil {
		t.Fatalf("read map: %v", err)
	}
	f, err := r.ReadTick()
	if err != nil {
		t.Fatalf("read tick: %v", err)
	}
	if f.MyScore != 10 || f.OpponentScore != 7 {
		t.Errorf("expected scores 10/7, got %d/%d", f.MyScore, f.OpponentScore)
	}
	if len(f.Pacs) != 3 {
		t.Fatalf("expected 3 pacs, got %d", len(f.Pacs))
	}
	want := Pac{ID: 0, Mine: false, Cell: grid.Cell{Row: 1, Col: 3}, Type: Paper, SpeedTurnsLeft: 2, AbilityCooldown: 5}
	if f.Pacs[1] != want {
		t.Errorf("expected %+v, got %+v", want, f.Pacs[1])
	}

	agents := f.Agents()
	if len(agents) != 2 || agents[0].ID != 0 || agents[1].ID != 1 {
		t.Fatalf("expected own pacs 0 and 1, got %+v", agents)
	}
	if agents[0].Cell != (grid.Cell{Row: 1, Col: 1}) {
		t.Errorf("expected x=1 y=1 to map to row 1 col 1, got %v", agents[0].Cell)
	}
	if opp := f.Opponents(); len(opp) != 1 || opp[0].Type != Paper {
		t.Errorf("expected one PAPER opponent, got %+v", opp)
	}

	pellets := f.Tick().Pellets
	if len(pellets) != 2 {
		t.Fatalf("expected 2 pellets, got %d", len(pellets))
	}
	if pellets[1].Cell != (grid.Cell{Row: 1, Col: 0}) || !pellets[1].IsSuper() {
		t.Errorf("expected super pellet at row 1 col 0, got %+v", pellets[1])
	}

	if _, err := r.ReadTick(); err != io.EOF {
		t.Errorf("expected io.EOF at end of input, got %v", err)
	}
}

func TestFrame_SkipsDeadPacs(t *testing.T) {
	f := &Frame{Pacs: []Pac{
		{ID: 0, Mine: true, Type: Rock},
		{ID: 1, Mine: true, Type: Dead},
		{ID: 2, Mine: false, Type: Dead},
	}}
	if agents := f.Agents(); len(agents) != 1 || agents[0].ID != 0 {
		t.Errorf("expected only pac 0 alive, got %+v", agents)
	}
	if fallen := f.Fallen(); len(fallen) != 1 || fallen[0] != 1 {
		t.Errorf("expected pac 1 fallen, got %v", fallen)
	}
}

func TestReadTick_Truncated(t *testing.T) {
	r := NewReader(strings.NewReader("1 2\n2\n0 1 1 1 ROCK 0 0\n"))
	if _, err := r.ReadTick(); !errors.Is(err, io.ErrUnexpectedEOF) {
		t.Errorf("expected unexpected EOF, got %v", err)
	}
}

func TestReadTick_BadPacType(t *testing.T) {
	r := NewReader(strings.NewReader("0 0\n1\n0 1 1 1 LIZARD 0 0\n0\n"))
	if _, err := r.ReadTick(); !errors.Is(err, ErrSyntax) {
		t.Errorf("expected syntax error, got %v", err)
	}
}

func TestWriteMoves(t *testing.T) {
	var buf bytes.Buffer
	w := NewWriter(&buf)
	err := w.WriteMoves([]assign.Decision{
		{AgentID: 0, Target: grid.Cell{Row: 5, Col: 12}},
		{AgentID: 3, Target: grid.Cell{Row: 1, Col: 2}},
	})
	if err != nil {
		t.Fatalf("write moves: %v", err)
	}
	if got, want := buf.String(), "MOVE 0 12 5 | MOVE 3 2 1\n"; got != want {
		t.Errorf("expected %q, got %q", want, got)
	}

	buf.Reset()
	if err := w.WriteMoves(nil); err != nil {
		t.Fatalf("write empty: %v", err)
	}
	if buf.String() != "\n" {
		t.Errorf("expected bare newline, got %q", buf.String())
	}
}

func TestPacType(t *testing.T) {
	tests := []struct {
		tag       string
		want      PacType
		dominator PacType
	}{
		{"ROCK", Rock, Paper},
		{"PAPER", Paper, Scissors},
		{"SCISSORS", Scissors, Rock},
		{"DEAD", Dead, Dead},
	}
	for _, tt := range tests {
		got, err := ParsePacType(tt.tag)
		if err != nil {
			t.Fatalf("parse %s: %v", tt.tag, err)
		}
		if got != tt.want || got.String() != tt.tag {
			t.Errorf("%s: got %v", tt.tag, got)
		}
		if got.Dominator() != tt.dominator {
			t.Errorf("%s: expected dominator %v, got %v", tt.tag, tt.dominator, got.Dominator())
		}
	}
	if !Paper.Beats(Rock) || Rock.Beats(Paper) || Rock.Beats(Rock) || Dead.Beats(Rock) {
		t.Error("unexpected Beats results")
	}
}
