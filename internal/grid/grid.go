// Package grid implements the terminal-emulation grid described in
// spec.md §4.3: a 2D cell buffer driven by an ANSI/ECMA-48 state machine,
// with cursor motion, scrolling regions, SGR attributes, erase/insert/
// delete, device reports, and dirty-row tracking for incremental redraw.
//
// Grid implements github.com/danielgatis/go-ansicode's Handler interface
// (handler.go); this file holds the buffer itself and the coordinate/
// scrolling arithmetic every handler method is built from.
package grid

import (
	"fmt"
	"io"
	"log"
)

// region is the half-open scrolling region [Top, Bottom) within [0, height).
type region struct {
	Top    int
	Bottom int
}

// Grid is the terminal emulator's display buffer (spec.md §3 "Grid").
type Grid struct {
	width, height int
	cells         []Cell

	cursor      Position
	savedCursor Position

	scrollRegion region
	template     Template

	dirty map[int]struct{}

	// writer receives device-status replies (spec.md §4.3.9); it is the
	// PTY master the window owns, wired in by the caller.
	writer io.Writer

	logger *log.Logger
}

// New allocates a Grid of the given size, with a scrolling region
// spanning the whole screen. writer receives device-status report bytes;
// logger receives diagnostics for no-op handler calls (may be nil).
func New(width, height int, writer io.Writer, logger *log.Logger) *Grid {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	g := &Grid{
		width:        width,
		height:       height,
		cells:        make([]Cell, width*height),
		scrollRegion: region{Top: 0, Bottom: height},
		template:     DefaultTemplate(),
		dirty:        make(map[int]struct{}),
		writer:       writer,
		logger:       logger,
	}
	for i := range g.cells {
		g.cells[i] = NewCell()
	}
	return g
}

// Width returns the number of columns.
func (g *Grid) Width() int { return g.width }

// Height returns the number of rows.
func (g *Grid) Height() int { return g.height }

// Cursor returns the current cursor position.
func (g *Grid) Cursor() Position { return g.cursor }

// Cell returns a copy of the cell at (row, col). Panics on out-of-range
// input, matching the invariant (§3.6) that every index is always valid.
func (g *Grid) Cell(row, col int) Cell {
	return g.cells[g.index(row, col)]
}

func (g *Grid) index(row, col int) int {
	return row*g.width + col
}

func (g *Grid) setCell(row, col int, c Cell) {
	g.cells[g.index(row, col)] = c
	g.markDirty(row)
}

func (g *Grid) markDirty(row int) {
	g.dirty[row] = struct{}{}
}

// markAllDirty marks every row for redraw.
func (g *Grid) markAllDirty() {
	for r := 0; r < g.height; r++ {
		g.markDirty(r)
	}
}

// MarkAllDirty is the exported form used by Window on attach/resize.
func (g *Grid) MarkAllDirty() { g.markAllDirty() }

// ---- coordinate arithmetic (spec.md §4.3.1) ----

type displaceKind int

const (
	displaceAbsolute displaceKind = iota
	displaceRelative
	displaceToStart
	displaceToTabStop
)

type displacement struct {
	kind  displaceKind
	value int
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// moveHorizontal updates cursor.Col, clamped to [0, width).
func (g *Grid) moveHorizontal(d displacement) {
	switch d.kind {
	case displaceAbsolute:
		g.cursor.Col = clampInt(d.value, 0, g.width-1)
	case displaceRelative:
		g.cursor.Col = clampInt(g.cursor.Col+d.value, 0, g.width-1)
	case displaceToStart:
		g.cursor.Col = 0
	case displaceToTabStop:
		g.cursor.Col = clampInt((g.cursor.Col+8) &^ 7, 0, g.width-1)
	}
}

// moveVertical updates cursor.Row, clamped to [0, height). Never scrolls.
func (g *Grid) moveVertical(d displacement) {
	switch d.kind {
	case displaceAbsolute:
		g.cursor.Row = clampInt(d.value, 0, g.height-1)
	case displaceRelative:
		g.cursor.Row = clampInt(g.cursor.Row+d.value, 0, g.height-1)
	case displaceToStart:
		g.cursor.Row = 0
	case displaceToTabStop:
		g.logger.Printf("grid: vertical tab stop requested, unsupported")
	}
}

// ---- scrolling (spec.md §4.3.4) ----

// scrollUpInRegion shifts rows [start, end) up by n: row r takes the
// content of row r+n, or a blank row once r+n reaches end.
func (g *Grid) scrollUpInRegion(start, end, n int) {
	if n <= 0 || start >= end {
		return
	}
	for r := start; r < end; r++ {
		if r+n < end {
			g.copyRow(r+n, r)
		} else {
			g.blankRow(r)
		}
	}
}

// scrollDownInRegion shifts rows [start, end) down by n, iterating in
// descending order so a row is never overwritten before it is read.
func (g *Grid) scrollDownInRegion(start, end, n int) {
	if n <= 0 || start >= end {
		return
	}
	for r := end - 1; r >= start; r-- {
		if r-n >= start {
			g.copyRow(r-n, r)
		} else {
			g.blankRow(r)
		}
	}
}

func (g *Grid) copyRow(src, dst int) {
	copy(g.cells[g.index(dst, 0):g.index(dst, 0)+g.width], g.cells[g.index(src, 0):g.index(src, 0)+g.width])
	g.markDirty(dst)
}

func (g *Grid) blankRow(row int) {
	for c := 0; c < g.width; c++ {
		g.cells[g.index(row, c)] = NewCell()
	}
	g.markDirty(row)
}

func (g *Grid) scrollUp(n int) {
	g.scrollUpInRegion(g.scrollRegion.Top, g.scrollRegion.Bottom, n)
}

func (g *Grid) scrollDown(n int) {
	g.scrollDownInRegion(g.scrollRegion.Top, g.scrollRegion.Bottom, n)
}

// ---- resize (spec.md §4.3.11) ----

// Resize adjusts the grid to (newWidth, newHeight), scrolling occupied rows
// up when shrinking height so content near the cursor survives, and
// re-flowing the scrolling region bounds. Reflow of long lines on width
// shrink is explicitly not implemented (spec.md §1 Non-goals).
func (g *Grid) Resize(newWidth, newHeight int) {
	if newWidth <= 0 || newHeight <= 0 {
		return
	}

	if newHeight < g.height {
		occupied := g.cursor.Row
		if g.cursor.Col != 0 {
			occupied++
		}
		if occupied > newHeight {
			shift := occupied - newHeight
			g.scrollUpInRegion(0, occupied, shift)
			g.cursor.Row = clampInt(g.cursor.Row-shift, 0, newHeight-1)
		}
		if g.scrollRegion.Bottom > newHeight {
			g.scrollRegion.Bottom = newHeight
		}
		g.savedCursor.Row = clampInt(g.savedCursor.Row, 0, newHeight-1)
	}

	if newHeight > g.height && g.scrollRegion.Bottom == g.height {
		g.scrollRegion.Bottom = newHeight
	}

	g.resizeRows(newHeight)
	g.height = newHeight

	if newWidth < g.width {
		g.cursor.Row = clampInt(g.cursor.Row, 0, newWidth-1)
		g.savedCursor.Row = clampInt(g.savedCursor.Row, 0, newWidth-1)
	}

	g.resizeCols(newWidth)
	g.width = newWidth

	g.cursor.Col = clampInt(g.cursor.Col, 0, g.width-1)
	g.cursor.Row = clampInt(g.cursor.Row, 0, g.height-1)
	g.savedCursor.Col = clampInt(g.savedCursor.Col, 0, g.width-1)
	g.savedCursor.Row = clampInt(g.savedCursor.Row, 0, g.height-1)

	g.markAllDirty()
}

// resizeRows truncates or extends the row count, keeping the current width.
func (g *Grid) resizeRows(newHeight int) {
	rows := make([][]Cell, newHeight)
	for r := 0; r < newHeight; r++ {
		row := make([]Cell, g.width)
		if r < g.height {
			copy(row, g.cells[g.index(r, 0):g.index(r, 0)+g.width])
		} else {
			for c := range row {
				row[c] = NewCell()
			}
		}
		rows[r] = row
	}
	flat := make([]Cell, 0, newHeight*g.width)
	for _, row := range rows {
		flat = append(flat, row...)
	}
	g.cells = flat
}

// resizeCols truncates or extends each row to the new width. It derives the
// row count from the current cell buffer, so it runs after resizeRows.
func (g *Grid) resizeCols(newWidth int) {
	oldWidth := g.width
	rowCount := len(g.cells) / oldWidth
	flat := make([]Cell, 0, rowCount*newWidth)
	for r := 0; r < rowCount; r++ {
		row := make([]Cell, newWidth)
		for c := 0; c < newWidth; c++ {
			if c < oldWidth {
				row[c] = g.cells[r*oldWidth+c]
			} else {
				row[c] = NewCell()
			}
		}
		flat = append(flat, row...)
	}
	g.cells = flat
}

// ---- dirty tracking and draw (spec.md §4.3.10) ----

// Draw writes the ANSI sequences needed to redraw every dirty row to w,
// positions the cursor, and clears the dirty set. Foreground color is
// emitted per cell; background is intentionally skipped to keep the
// emitted stream small (spec.md marks it optional).
func (g *Grid) Draw(w io.Writer) error {
	rows := make([]int, 0, len(g.dirty))
	for r := range g.dirty {
		rows = append(rows, r)
	}
	sortInts(rows)

	for _, r := range rows {
		if _, err := fmt.Fprintf(w, "\x1b[%d;%dH", r+1, 1); err != nil {
			return err
		}
		if err := g.drawRow(w, r); err != nil {
			return err
		}
	}

	if _, err := fmt.Fprintf(w, "\x1b[%d;%dH", g.cursor.Row+1, g.cursor.Col+1); err != nil {
		return err
	}

	g.dirty = make(map[int]struct{})
	return nil
}

func (g *Grid) drawRow(w io.Writer, row int) error {
	var lastFg Color
	for c := 0; c < g.width; c++ {
		cell := g.cells[g.index(row, c)]
		if cell.Fg != lastFg {
			rgba := ResolveColor(cell.Fg, true)
			if _, err := fmt.Fprintf(w, "\x1b[38;2;%d;%d;%dm", rgba.R, rgba.G, rgba.B); err != nil {
				return err
			}
			lastFg = cell.Fg
		}
		if _, err := fmt.Fprintf(w, "%c", cell.Ch); err != nil {
			return err
		}
	}
	_, err := fmt.Fprint(w, "\x1b[0m")
	return err
}

func sortInts(s []int) {
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}

// DirtyRows reports the rows currently marked dirty, for tests.
func (g *Grid) DirtyRows() []int {
	rows := make([]int, 0, len(g.dirty))
	for r := range g.dirty {
		rows = append(rows, r)
	}
	sortInts(rows)
	return rows
}

// ScrollRegion reports the current scrolling region bounds.
func (g *Grid) ScrollRegion() (top, bottom int) {
	return g.scrollRegion.Top, g.scrollRegion.Bottom
}

// SavedCursor reports the position save_cursor_position last captured.
func (g *Grid) SavedCursor() Position { return g.savedCursor }
