package protocol

import (
	"bufio"
	"fmt"
	"io"
	"strconv"

	"github.com/freeeve/pacgrid/internal/assign"
)

// CommandSeparator joins the per-pac commands of one tick.
const CommandSeparator = " | "

// Writer encodes move commands. Each tick is flushed as a single line.
type Writer struct {
	w *bufio.Writer
}

// NewWriter creates a Writer over w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{w: bufio.NewWriter(w)}
}

// WriteMoves emits "MOVE id x y" for every decision, in order, on one line.
// An empty decision list still terminates the line so the referee is not
// left waiting.
func (w *Writer) WriteMoves(decisions []assign.Decision) error {
	for i, d := range decisions {
		if i > 0 {
			w.w.WriteString(CommandSeparator)
		}
		w.w.WriteString("MOVE ")
		w.w.WriteString(strconv.Itoa(d.AgentID))
		w.w.WriteByte(' ')
		w.w.WriteString(strconv.Itoa(d.Target.Col))
		w.w.WriteByte(' ')
		w.w.WriteString(strconv.Itoa(d.Target.Row))
	}
	w.w.WriteByte('\n')
	if err := w.w.Flush(); err != nil {
		return fmt.Errorf("write moves: %w", err)
	}
	return nil
}
