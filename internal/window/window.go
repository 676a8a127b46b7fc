// Package window implements the Window abstraction (spec.md §4.4): couples
// one PTY host (C1) with one Grid (C3) through an ANSI parser instance (C2),
// feeding PTY output through the parser into the grid and stdin back into
// the PTY, and propagating resize to both.
package window

import (
	"fmt"
	"io"
	"log"

	"github.com/danielgatis/go-ansicode"

	"github.com/dgatis/sm/internal/grid"
	"github.com/dgatis/sm/internal/ptyhost"
)

// Window owns a child PTY, its Grid, and the parser feeding it.
type Window struct {
	pty      *ptyhost.PTY
	events   <-chan ptyhost.ByteEvent
	grid     *grid.Grid
	decoder  *ansicode.Decoder
	lastSize ptyhost.Winsize
	logger   *log.Logger
}

// New spawns command with args on a fresh PTY at size, builds a Grid of the
// matching dimensions, and wires a fresh ansicode.Decoder over it. logger
// may be nil.
func New(command string, args []string, size ptyhost.Winsize, logger *log.Logger) (*Window, error) {
	p, events, err := ptyhost.Spawn(command, args, size)
	if err != nil {
		return nil, err
	}

	g := grid.New(int(size.Cols), int(size.Rows), p, logger)
	w := &Window{
		pty:      p,
		events:   events,
		grid:     g,
		decoder:  ansicode.NewDecoder(g),
		lastSize: size,
		logger:   logger,
	}
	return w, nil
}

// Events exposes the window's raw byte stream for the session to fan in.
func (w *Window) Events() <-chan ptyhost.ByteEvent { return w.events }

// ReceiveStdin writes data to the PTY master (spec.md §4.4).
func (w *Window) ReceiveStdin(data []byte) error {
	if _, err := w.pty.Write(data); err != nil {
		return fmt.Errorf("window: write stdin: %w", err)
	}
	return nil
}

// PtyUpdate feeds one byte of child output through the parser into the
// grid; the grid's device-report replies write back through the same PTY
// master handle it was constructed with (spec.md §4.4, §9).
func (w *Window) PtyUpdate(b byte) {
	if _, err := w.decoder.Write([]byte{b}); err != nil {
		w.logf("window: decode error: %v", err)
	}
}

// Resize is a no-op if size matches the last applied size; otherwise it
// resizes the grid, issues the PTY ioctl, and marks the grid fully dirty.
func (w *Window) Resize(size ptyhost.Winsize) error {
	if size == w.lastSize {
		return nil
	}
	w.lastSize = size
	w.grid.Resize(int(size.Cols), int(size.Rows))
	if err := w.pty.Resize(size); err != nil {
		w.logf("window: resize: %v", err)
		return err
	}
	return nil
}

// MarkDirty marks the grid fully dirty (e.g. on selection).
func (w *Window) MarkDirty() { w.grid.MarkAllDirty() }

// Redraw delegates to the grid's draw routine.
func (w *Window) Redraw(writer io.Writer) error {
	return w.grid.Draw(writer)
}

// Close releases the underlying PTY.
func (w *Window) Close() error { return w.pty.Close() }

func (w *Window) logf(format string, args ...any) {
	if w.logger != nil {
		w.logger.Printf(format, args...)
	}
}
