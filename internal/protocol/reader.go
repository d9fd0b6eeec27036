// Package protocol reads the referee's line-oriented game input and writes
// the bot's move commands.
//
// Input starts with the map: "width height" followed by height raw rows in
// which '#' is a wall. Every tick then sends the score pair, the visible pacs
// and the visible pellets. Coordinates on the wire are "x y", i.e. column
// then row.
package protocol

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/freeeve/pacgrid/internal/assign"
	"github.com/freeeve/pacgrid/pkg/grid"
)

// ErrSyntax reports input that does not match the expected line layout.
var ErrSyntax = errors.New("protocol: syntax error")

// maxLine bounds a single input line; map rows are the longest.
const maxLine = 1 << 20

// Pac is one visible unit.
type Pac struct {
	ID              int
	Mine            bool
	Cell            grid.Cell
	Type            PacType
	SpeedTurnsLeft  int
	AbilityCooldown int
}

// Frame is everything the referee reports for one tick.
type Frame struct {
	MyScore       int
	OpponentScore int
	Pacs          []Pac
	Pellets       []assign.Pellet
}

// Agents returns the caller's living pacs, in the order they were reported.
func (f *Frame) Agents() []assign.Agent {
	var agents []assign.Agent
	for _, p := range f.Pacs {
		if p.Mine && p.Type != Dead {
			agents = append(agents, assign.Agent{ID: p.ID, Cell: p.Cell})
		}
	}
	return agents
}

// Opponents returns the visible pacs owned by the other player.
func (f *Frame) Opponents() []Pac {
	var out []Pac
	for _, p := range f.Pacs {
		if !p.Mine {
			out = append(out, p)
		}
	}
	return out
}

// Fallen returns the IDs of the caller's pacs reported dead.
func (f *Frame) Fallen() []int {
	var ids []int
	for _, p := range f.Pacs {
		if p.Mine && p.Type == Dead {
			ids = append(ids, p.ID)
		}
	}
	return ids
}

// Tick converts the frame to assignment input.
func (f *Frame) Tick() assign.Tick {
	return assign.Tick{Agents: f.Agents(), Pellets: f.Pellets}
}

// Reader decodes referee input from a stream.
type Reader struct {
	scanner *bufio.Scanner
	line    int
}

// NewReader creates a Reader over r.
func NewReader(r io.Reader) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLine)
	return &Reader{scanner: sc}
}

// Line returns the number of lines consumed so far.
func (r *Reader) Line() int { return r.line }

// ReadMap reads the map header and rows.
func (r *Reader) ReadMap() (*grid.Grid, error) {
	size, err := r.ints(2)
	if err != nil {
		return nil, fmt.Errorf("read map size: %w", err)
	}
	width, height := size[0], size[1]
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: line %d: map size %dx%d", ErrSyntax, r.line, width, height)
	}
	rows := make([]string, height)
	for i := range rows {
		row, err := r.next()
		if err != nil {
			return nil, fmt.Errorf("read map row %d: %w", i, unexpected(err))
		}
		rows[i] = row
	}
	g, err := grid.Parse(width, height, rows)
	if err != nil {
		return nil, fmt.Errorf("parse map: %w", err)
	}
	return g, nil
}

// ReadTick reads one tick. It returns io.EOF when the input ends cleanly
// before a new tick starts.
func (r *Reader) ReadTick() (*Frame, error) {
	score, err := r.ints(2)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, fmt.Errorf("read scores: %w", err)
	}
	f := &Frame{MyScore: score[0], OpponentScore: score[1]}

	count, err := r.count()
	if err != nil {
		return nil, fmt.Errorf("read pac count: %w", err)
	}
	f.Pacs = make([]Pac, 0, count)
	for i := 0; i < count; i++ {
		p, err := r.pac()
		if err != nil {
			return nil, fmt.Errorf("read pac %d: %w", i, err)
		}
		f.Pacs = append(f.Pacs, p)
	}

	count, err = r.count()
	if err != nil {
		return nil, fmt.Errorf("read pellet count: %w", err)
	}
	f.Pellets = make([]assign.Pellet, 0, count)
	for i := 0; i < count; i++ {
		v, err := r.ints(3)
		if err != nil {
			return nil, fmt.Errorf("read pellet %d: %w", i, unexpected(err))
		}
		f.Pellets = append(f.Pellets, assign.Pellet{
			Cell:  grid.Cell{Row: v[1], Col: v[0]},
			Value: v[2],
		})
	}
	return f, nil
}

// pac parses "id mine x y type speedTurnsLeft abilityCooldown".
func (r *Reader) pac() (Pac, error) {
	f, err := r.fields(7)
	if err != nil {
		return Pac{}, unexpected(err)
	}
	var n [6]int
	for i, idx := range [...]int{0, 1, 2, 3, 5, 6} {
		if n[i], err = strconv.Atoi(f[idx]); err != nil {
			return Pac{}, fmt.Errorf("%w: line %d: %q is not a number", ErrSyntax, r.line, f[idx])
		}
	}
	typ, err := ParsePacType(f[4])
	if err != nil {
		return Pac{}, fmt.Errorf("%w: line %d: %v", ErrSyntax, r.line, err)
	}
	return Pac{
		ID:              n[0],
		Mine:            n[1] != 0,
		Cell:            grid.Cell{Row: n[3], Col: n[2]},
		Type:            typ,
		SpeedTurnsLeft:  n[4],
		AbilityCooldown: n[5],
	}, nil
}

func (r *Reader) count() (int, error) {
	v, err := r.ints(1)
	if err != nil {
		return 0, unexpected(err)
	}
	if v[0] < 0 {
		return 0, fmt.Errorf("%w: line %d: negative count %d", ErrSyntax, r.line, v[0])
	}
	return v[0], nil
}

func (r *Reader) ints(n int) ([]int, error) {
	f, err := r.fields(n)
	if err != nil {
		return nil, err
	}
	out := make([]int, n)
	for i := range out {
		v, err := strconv.Atoi(f[i])
		if err != nil {
			return nil, fmt.Errorf("%w: line %d: %q is not a number", ErrSyntax, r.line, f[i])
		}
		out[i] = v
	}
	return out, nil
}

// fields reads the next line and splits it on whitespace, requiring at
// least n fields.
func (r *Reader) fields(n int) ([]string, error) {
	line, err := r.next()
	if err != nil {
		return nil, err
	}
	f := strings.Fields(line)
	if len(f) < n {
		return nil, fmt.Errorf("%w: line %d: got %d fields, want %d", ErrSyntax, r.line, len(f), n)
	}
	return f, nil
}

// next returns the next raw line without its terminator.
func (r *Reader) next() (string, error) {
	if !r.scanner.Scan() {
		if err := r.scanner.Err(); err != nil {
			return "", err
		}
		return "", io.EOF
	}
	r.line++
	return strings.TrimSuffix(r.scanner.Text(), "\r"), nil
}

func unexpected(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}
	return err
}
