package grid

import (
	"fmt"
	"image/color"

	"github.com/danielgatis/go-ansicode"
)

var _ ansicode.Handler = (*Grid)(nil)

// ---- C0 execute ----

// Bell has no sink wired in this system; the terminal bell is the user's
// own terminal emulator's concern, not the grid's.
func (g *Grid) Bell() {}

// Backspace moves the cursor left one column, stopping at column 0.
func (g *Grid) Backspace() {
	g.moveHorizontal(displacement{kind: displaceRelative, value: -1})
}

// CarriageReturn moves the cursor to column 0 of the current row.
func (g *Grid) CarriageReturn() {
	g.moveHorizontal(displacement{kind: displaceToStart})
}

// Input writes a printable glyph at the cursor (spec.md §4.3.2). Wide
// glyphs and combining marks are not handled (spec.md §1 Non-goals, §9);
// every rune is assumed to occupy exactly one cell.
func (g *Grid) Input(r rune) {
	if g.cursor.Col == 0 && g.cursor.Row == g.scrollRegion.Bottom {
		g.scrollUp(1)
		g.cursor.Row--
	}

	g.setCell(g.cursor.Row, g.cursor.Col, g.template.Cell(r))
	g.cursor.Col++

	if g.cursor.Col == g.width {
		g.cursor.Row++
		g.cursor.Col = 0
	}
}

// Substitute replaces the glyph under the cursor with '?' without moving it.
func (g *Grid) Substitute() {
	g.setCell(g.cursor.Row, g.cursor.Col, g.template.Cell('?'))
}

// LineFeed advances the cursor one row, scrolling the region if the cursor
// sits on its last row (spec.md §4.3.3).
func (g *Grid) LineFeed() {
	switch {
	case g.cursor.Row+1 == g.scrollRegion.Bottom:
		g.scrollUp(1)
	case g.cursor.Row+1 < g.height:
		g.cursor.Row++
	default:
		g.logger.Printf("grid: linefeed below last row %d ignored", g.cursor.Row)
	}
}

// ReverseIndex moves the cursor up one row, scrolling down if the cursor
// sits on the scrolling region's top row (spec.md §4.3.3).
func (g *Grid) ReverseIndex() {
	if g.cursor.Row == g.scrollRegion.Top {
		g.scrollDown(1)
		return
	}
	g.moveVertical(displacement{kind: displaceRelative, value: -1})
}

// ---- cursor motion (spec.md §4.3.1) ----

func (g *Grid) Goto(row, col int) {
	g.moveVertical(displacement{kind: displaceAbsolute, value: row})
	g.moveHorizontal(displacement{kind: displaceAbsolute, value: col})
}

func (g *Grid) GotoCol(col int) {
	g.moveHorizontal(displacement{kind: displaceAbsolute, value: col})
}

func (g *Grid) GotoLine(row int) {
	g.moveVertical(displacement{kind: displaceAbsolute, value: row})
}

func (g *Grid) MoveUp(n int) {
	g.moveVertical(displacement{kind: displaceRelative, value: -n})
}

func (g *Grid) MoveDown(n int) {
	g.moveVertical(displacement{kind: displaceRelative, value: n})
}

func (g *Grid) MoveForward(n int) {
	g.moveHorizontal(displacement{kind: displaceRelative, value: n})
}

func (g *Grid) MoveBackward(n int) {
	g.moveHorizontal(displacement{kind: displaceRelative, value: -n})
}

func (g *Grid) MoveDownCr(n int) {
	g.MoveDown(n)
	g.CarriageReturn()
}

func (g *Grid) MoveUpCr(n int) {
	g.MoveUp(n)
	g.CarriageReturn()
}

// ---- tabs ----
//
// Dynamic tab-stop storage (HorizontalTabSet/ClearTabs) has no semantic
// effect in this system (spec.md §4.2 permits logging tabs as a no-op);
// tab stops are always every 8th column, which is what moveHorizontal's
// ToTabStop displacement already computes.

func (g *Grid) Tab(n int) {
	for i := 0; i < n; i++ {
		g.moveHorizontal(displacement{kind: displaceToTabStop})
	}
}

func (g *Grid) MoveForwardTabs(n int) {
	g.Tab(n)
}

func (g *Grid) MoveBackwardTabs(n int) {
	for i := 0; i < n && g.cursor.Col > 0; i++ {
		g.cursor.Col = (g.cursor.Col - 1) &^ 7
	}
}

func (g *Grid) HorizontalTabSet() {
	g.logger.Printf("grid: horizontal tab set at col %d ignored, tab stops are fixed at every 8th column", g.cursor.Col)
}

func (g *Grid) ClearTabs(mode ansicode.TabulationClearMode) {
	g.logger.Printf("grid: clear tabs (mode %v) ignored, tab stops are fixed at every 8th column", mode)
}

// ---- scrolling region (spec.md §4.3.6) ----

// SetScrollingRegion takes 1-indexed arguments; after decoding it sets the
// region to [top-1, min(bottom, height)) and homes the cursor.
func (g *Grid) SetScrollingRegion(top, bottom int) {
	top--
	if bottom <= 0 || bottom > g.height {
		bottom = g.height
	}
	if top < 0 {
		top = 0
	}
	if top >= bottom {
		g.logger.Printf("grid: invalid scrolling region [%d,%d) ignored", top, bottom)
		return
	}
	g.scrollRegion = region{Top: top, Bottom: bottom}
	g.Goto(0, 0)
}

func (g *Grid) ScrollUp(n int) {
	g.scrollUp(n)
}

func (g *Grid) ScrollDown(n int) {
	g.scrollDown(n)
}

// InsertBlankLines scrolls the tail of the scrolling region down by n,
// only when the cursor is inside it (spec.md §4.3.4).
func (g *Grid) InsertBlankLines(n int) {
	if g.cursor.Row >= g.scrollRegion.Top && g.cursor.Row < g.scrollRegion.Bottom {
		g.scrollDownInRegion(g.cursor.Row, g.scrollRegion.Bottom, n)
	}
}

// DeleteLines scrolls the tail of the scrolling region up by n, only when
// the cursor is inside it.
func (g *Grid) DeleteLines(n int) {
	if g.cursor.Row >= g.scrollRegion.Top && g.cursor.Row < g.scrollRegion.Bottom {
		g.scrollUpInRegion(g.cursor.Row, g.scrollRegion.Bottom, n)
	}
}

// ---- erase and insert within a row (spec.md §4.3.5) ----

func (g *Grid) clearRowRange(row, start, end int) {
	for c := start; c < end; c++ {
		g.setCell(row, c, NewCell())
	}
}

func (g *Grid) EraseChars(n int) {
	g.clearRowRange(g.cursor.Row, g.cursor.Col, clampInt(g.cursor.Col+n, 0, g.width))
}

// DeleteChars left-shifts the tail of the row by n, filling the vacated
// right edge with defaults.
func (g *Grid) DeleteChars(n int) {
	row := g.cursor.Row
	for c := g.cursor.Col; c < g.width; c++ {
		if src := c + n; src < g.width {
			g.setCell(row, c, g.Cell(row, src))
		} else {
			g.setCell(row, c, NewCell())
		}
	}
}

// InsertBlank right-shifts the tail of the row by n, filling the vacated
// window starting at the cursor with defaults. Iterates right-to-left so a
// cell is never overwritten before it is read.
func (g *Grid) InsertBlank(n int) {
	row := g.cursor.Row
	for c := g.width - 1; c >= g.cursor.Col; c-- {
		if src := c - n; src >= g.cursor.Col {
			g.setCell(row, c, g.Cell(row, src))
		} else {
			g.setCell(row, c, NewCell())
		}
	}
}

func (g *Grid) ClearLine(mode ansicode.LineClearMode) {
	switch mode {
	case ansicode.LineClearModeRight:
		g.clearRowRange(g.cursor.Row, g.cursor.Col, g.width)
	case ansicode.LineClearModeLeft:
		g.clearRowRange(g.cursor.Row, 0, g.cursor.Col)
	case ansicode.LineClearModeAll:
		g.clearRowRange(g.cursor.Row, 0, g.width)
	}
}

// ClearScreen clears by lexicographic position relative to the cursor
// (spec.md §4.3.5): Below is >= cursor, Above is < cursor.
func (g *Grid) ClearScreen(mode ansicode.ClearMode) {
	switch mode {
	case ansicode.ClearModeBelow:
		g.clearRowRange(g.cursor.Row, g.cursor.Col, g.width)
		for r := g.cursor.Row + 1; r < g.height; r++ {
			g.blankRow(r)
		}
	case ansicode.ClearModeAbove:
		for r := 0; r < g.cursor.Row; r++ {
			g.blankRow(r)
		}
		g.clearRowRange(g.cursor.Row, 0, g.cursor.Col)
	case ansicode.ClearModeAll, ansicode.ClearModeSaved:
		for r := 0; r < g.height; r++ {
			g.blankRow(r)
		}
	}
}

// ---- cursor save/restore (spec.md §4.3.7) ----

func (g *Grid) SaveCursorPosition() {
	g.savedCursor = g.cursor
}

func (g *Grid) RestoreCursorPosition() {
	g.cursor = Position{
		Row: clampInt(g.savedCursor.Row, 0, g.height-1),
		Col: clampInt(g.savedCursor.Col, 0, g.width-1),
	}
}

// ---- SGR attributes (spec.md §4.3.8) ----

func (g *Grid) SetTerminalCharAttribute(attr ansicode.TerminalCharAttribute) {
	switch attr.Attr {
	case ansicode.CharAttributeReset:
		g.template = DefaultTemplate()
	case ansicode.CharAttributeForeground:
		g.template.Fg = g.resolveAttrColor(attr, true)
	case ansicode.CharAttributeBackground:
		g.template.Bg = g.resolveAttrColor(attr, false)
	default:
		g.logger.Printf("grid: char attribute %v has no rendering effect, ignored", attr.Attr)
	}
}

func (g *Grid) resolveAttrColor(attr ansicode.TerminalCharAttribute, fg bool) Color {
	switch {
	case attr.RGBColor != nil:
		return RGBColor{R: attr.RGBColor.R, G: attr.RGBColor.G, B: attr.RGBColor.B}
	case attr.IndexedColor != nil:
		return IndexedColor{Index: attr.IndexedColor.Index}
	case attr.NamedColor != nil:
		return NamedColor{ID: NamedColorID(*attr.NamedColor)}
	case fg:
		return DefaultForeground
	default:
		return DefaultBackground
	}
}

// ---- device reports (spec.md §4.3.9) ----

func (g *Grid) DeviceStatus(n int) {
	switch n {
	case 5:
		fmt.Fprint(g.writer, "\x1b[0n")
	case 6:
		fmt.Fprintf(g.writer, "\x1b[%d;%dR", g.cursor.Row+1, g.cursor.Col+1)
	default:
		g.logger.Printf("grid: device status report %d not supported", n)
	}
}

func (g *Grid) IdentifyTerminal(b byte) {
	fmt.Fprint(g.writer, "\x1b[?62;c")
}

// TextAreaSizeChars reports the grid's dimensions, matching the device
// report style of DeviceStatus even though spec.md doesn't name it
// explicitly among the C2 contract's device reports.
func (g *Grid) TextAreaSizeChars() {
	fmt.Fprintf(g.writer, "\x1b[8;%d;%dt", g.height, g.width)
}

// ---- reset ----

func (g *Grid) ResetState() {
	for i := range g.cells {
		g.cells[i] = NewCell()
	}
	g.cursor = Position{}
	g.savedCursor = Position{}
	g.scrollRegion = region{Top: 0, Bottom: g.height}
	g.template = DefaultTemplate()
	g.markAllDirty()
}

// Decaln fills the screen with 'E', the DEC screen-alignment test pattern.
func (g *Grid) Decaln() {
	for r := 0; r < g.height; r++ {
		for c := 0; c < g.width; c++ {
			g.setCell(r, c, g.template.Cell('E'))
		}
	}
}

// ---- handlers with no semantic effect in this system (spec.md §4.2) ----
//
// Charset selection, cursor style, keypad application mode, clipboard,
// dynamic/indexed color queries, hyperlinks, the kitty keyboard-protocol
// stack, window title, working-directory reporting, and image protocols
// (Sixel) have no renderable effect on the grid; each logs on every call
// and returns (PushTitle and PopTitle return without logging), as
// spec.md §4.2 explicitly permits.

func (g *Grid) SetMode(mode ansicode.TerminalMode) {
	g.logger.Printf("grid: set mode %v has no effect in this implementation", mode)
}

func (g *Grid) UnsetMode(mode ansicode.TerminalMode) {
	g.logger.Printf("grid: unset mode %v has no effect in this implementation", mode)
}

func (g *Grid) SetKeypadApplicationMode() {
	g.logger.Printf("grid: keypad application mode ignored")
}

func (g *Grid) UnsetKeypadApplicationMode() {
	g.logger.Printf("grid: keypad application mode ignored")
}

func (g *Grid) SetActiveCharset(n int) {
	g.logger.Printf("grid: charset selection ignored, index %d", n)
}

func (g *Grid) ConfigureCharset(index ansicode.CharsetIndex, charset ansicode.Charset) {
	g.logger.Printf("grid: charset configuration ignored (%v -> %v)", index, charset)
}

func (g *Grid) SetCursorStyle(style ansicode.CursorStyle) {
	g.logger.Printf("grid: cursor style %v ignored", style)
}

func (g *Grid) SetTitle(title string) {
	g.logger.Printf("grid: title %q ignored, no title sink wired", title)
}

func (g *Grid) PushTitle() {}

func (g *Grid) PopTitle() {}

func (g *Grid) ClipboardLoad(clipboard byte, terminator string) {
	g.logger.Printf("grid: clipboard load ignored, clipboard integration is out of scope")
}

func (g *Grid) ClipboardStore(clipboard byte, data []byte) {
	g.logger.Printf("grid: clipboard store ignored, clipboard integration is out of scope")
}

func (g *Grid) ResetColor(i int) {
	g.logger.Printf("grid: reset color %d ignored, palette is fixed", i)
}

func (g *Grid) SetColor(index int, c color.Color) {
	g.logger.Printf("grid: set color %d ignored, palette is fixed", index)
}

func (g *Grid) SetDynamicColor(prefix string, index int, terminator string) {
	g.logger.Printf("grid: dynamic color query %q ignored", prefix)
}

func (g *Grid) SetHyperlink(hyperlink *ansicode.Hyperlink) {
	g.logger.Printf("grid: hyperlink ignored, no hyperlink sink wired")
}

func (g *Grid) SetKeyboardMode(mode ansicode.KeyboardMode, behavior ansicode.KeyboardModeBehavior) {
	g.logger.Printf("grid: keyboard protocol mode ignored")
}

func (g *Grid) PushKeyboardMode(mode ansicode.KeyboardMode) {
	g.logger.Printf("grid: keyboard protocol mode ignored")
}

func (g *Grid) PopKeyboardMode(n int) {
	g.logger.Printf("grid: keyboard protocol mode ignored")
}

func (g *Grid) ReportKeyboardMode() {
	g.logger.Printf("grid: keyboard protocol mode query ignored")
}

func (g *Grid) SetModifyOtherKeys(modify ansicode.ModifyOtherKeys) {
	g.logger.Printf("grid: modifyOtherKeys setting ignored")
}

func (g *Grid) ReportModifyOtherKeys() {
	g.logger.Printf("grid: modifyOtherKeys query ignored")
}

func (g *Grid) ApplicationCommandReceived(data []byte) {
	g.logger.Printf("grid: APC sequence (%d bytes) ignored", len(data))
}

func (g *Grid) PrivacyMessageReceived(data []byte) {
	g.logger.Printf("grid: PM sequence (%d bytes) ignored", len(data))
}

func (g *Grid) StartOfStringReceived(data []byte) {
	g.logger.Printf("grid: SOS sequence (%d bytes) ignored", len(data))
}

func (g *Grid) SetWorkingDirectory(uri string) {
	g.logger.Printf("grid: working directory report %q ignored", uri)
}

func (g *Grid) WorkingDirectory() string { return "" }

func (g *Grid) WorkingDirectoryPath() string { return "" }

func (g *Grid) CellSizePixels() {
	g.logger.Printf("grid: cell size in pixels not tracked, query ignored")
}

func (g *Grid) TextAreaSizePixels() {
	g.logger.Printf("grid: text area size in pixels not tracked, query ignored")
}

func (g *Grid) SixelReceived(params [][]uint16, data []byte) {
	g.logger.Printf("grid: sixel graphics (%d bytes) ignored, image rendering is out of scope", len(data))
}
