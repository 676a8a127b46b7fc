package grid

import (
	"bytes"
	"testing"

	"github.com/danielgatis/go-ansicode"
)

func newTestGrid(width, height int) (*Grid, *bytes.Buffer) {
	var buf bytes.Buffer
	return New(width, height, &buf, nil), &buf
}

func rowGlyphs(g *Grid, row int) []rune {
	out := make([]rune, g.Width())
	for c := 0; c < g.Width(); c++ {
		out[c] = g.Cell(row, c).Ch
	}
	return out
}

// S2: goto and move.
func TestGotoAndMove(t *testing.T) {
	g, _ := newTestGrid(4, 4)

	g.Goto(1, 1)
	if got := g.Cursor(); got != (Position{Row: 1, Col: 1}) {
		t.Fatalf("after Goto(1,1): cursor = %+v, want (1,1)", got)
	}

	g.MoveUpCr(1)
	if got := g.Cursor(); got != (Position{Row: 0, Col: 0}) {
		t.Fatalf("after MoveUpCr(1): cursor = %+v, want (0,0)", got)
	}

	g.MoveDown(6)
	if got := g.Cursor(); got != (Position{Row: 3, Col: 0}) {
		t.Fatalf("after MoveDown(6): cursor = %+v, want (3,0)", got)
	}
}

// S3: input then scroll on overflow.
func TestInputThenScrollOnOverflow(t *testing.T) {
	g, _ := newTestGrid(4, 2)

	for _, r := range "Hello" {
		g.Input(r)
	}

	wantRow0 := []rune{'H', 'e', 'l', 'l'}
	wantRow1 := []rune{'o', defaultGlyph, defaultGlyph, defaultGlyph}
	if got := rowGlyphs(g, 0); !runesEqual(got, wantRow0) {
		t.Fatalf("after \"Hello\": row 0 = %q, want %q", string(got), string(wantRow0))
	}
	if got := rowGlyphs(g, 1); !runesEqual(got, wantRow1) {
		t.Fatalf("after \"Hello\": row 1 = %q, want %q", string(got), string(wantRow1))
	}

	for _, r := range "World!" {
		g.Input(r)
	}

	wantRow0 = []rune{'o', 'W', 'o', 'r'}
	wantRow1 = []rune{'l', 'd', '!', defaultGlyph}
	if got := rowGlyphs(g, 0); !runesEqual(got, wantRow0) {
		t.Fatalf("after \"World!\": row 0 = %q, want %q", string(got), string(wantRow0))
	}
	if got := rowGlyphs(g, 1); !runesEqual(got, wantRow1) {
		t.Fatalf("after \"World!\": row 1 = %q, want %q", string(got), string(wantRow1))
	}
	if got := g.Cursor(); got != (Position{Row: 1, Col: 3}) {
		t.Fatalf("after \"World!\": cursor = %+v, want (3,1) i.e. Row=1,Col=3", got)
	}
}

func runesEqual(a, b []rune) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// S4: device status.
func TestDeviceStatus(t *testing.T) {
	g, buf := newTestGrid(4, 4)
	g.Goto(2, 3)

	g.DeviceStatus(6)
	if got := buf.String(); got != "\x1b[3;4R" {
		t.Fatalf("DeviceStatus(6) wrote %q, want %q", got, "\x1b[3;4R")
	}

	buf.Reset()
	g.DeviceStatus(5)
	if got := buf.String(); got != "\x1b[0n" {
		t.Fatalf("DeviceStatus(5) wrote %q, want %q", got, "\x1b[0n")
	}

	buf.Reset()
	g.DeviceStatus(12)
	if got := buf.String(); got != "" {
		t.Fatalf("DeviceStatus(12) wrote %q, want nothing", got)
	}
}

// S6: resize-driven scroll-up.
func TestResizeDrivenScrollUp(t *testing.T) {
	g, _ := newTestGrid(4, 4)
	for _, r := range "Hello World" {
		g.Input(r)
	}
	if got := g.Cursor(); got != (Position{Row: 2, Col: 3}) {
		t.Fatalf("after \"Hello World\": cursor = %+v, want Row=2,Col=3", got)
	}

	g.Resize(4, 3)
	if got := g.Cursor(); got != (Position{Row: 2, Col: 3}) {
		t.Fatalf("after Resize(4,3) (no scroll expected): cursor = %+v, want Row=2,Col=3", got)
	}

	g.Resize(4, 2)
	wantRow0 := []rune{'o', ' ', 'W', 'o'}
	wantRow1 := []rune{'r', 'l', 'd', defaultGlyph}
	if got := rowGlyphs(g, 0); !runesEqual(got, wantRow0) {
		t.Fatalf("after Resize(4,2): row 0 = %q, want %q", string(got), string(wantRow0))
	}
	if got := rowGlyphs(g, 1); !runesEqual(got, wantRow1) {
		t.Fatalf("after Resize(4,2): row 1 = %q, want %q", string(got), string(wantRow1))
	}
	if got := g.Cursor(); got != (Position{Row: 1, Col: 3}) {
		t.Fatalf("after Resize(4,2): cursor = %+v, want Row=1,Col=3", got)
	}
}

// Invariant: cursor stays in bounds and grid length is stable across a
// sequence of handler calls (spec.md §8 property 1).
func TestCursorStaysInBounds(t *testing.T) {
	g, _ := newTestGrid(5, 5)

	g.Goto(100, 100)
	if c := g.Cursor(); c.Row < 0 || c.Row >= g.Height() || c.Col < 0 || c.Col >= g.Width() {
		t.Fatalf("cursor out of bounds after Goto overshoot: %+v", c)
	}

	g.MoveUp(1000)
	if c := g.Cursor(); c.Row != 0 {
		t.Fatalf("MoveUp overshoot: cursor row = %d, want 0", c.Row)
	}

	g.MoveForward(1000)
	if c := g.Cursor(); c.Col != g.Width()-1 {
		t.Fatalf("MoveForward overshoot: cursor col = %d, want %d", c.Col, g.Width()-1)
	}
}

// Invariant: save/restore round trip with no intervening resize (spec.md §8
// property 2).
func TestSaveRestoreCursorRoundTrip(t *testing.T) {
	g, _ := newTestGrid(6, 6)
	g.Goto(3, 2)
	g.SaveCursorPosition()
	g.Goto(5, 5)
	g.RestoreCursorPosition()

	if got := g.Cursor(); got != (Position{Row: 3, Col: 2}) {
		t.Fatalf("after save/restore: cursor = %+v, want (3,2)", got)
	}
}

// Invariant: scrolling within a region never touches rows outside it
// (spec.md §8 property 3) — every cell originally above (or below) the
// scrolled window is unchanged by scroll_up(n) followed by scroll_down(n)
// inside that region.
func TestScrollRegionLeavesOutsideRowsUnchanged(t *testing.T) {
	g, _ := newTestGrid(3, 6)
	for r := 0; r < 6; r++ {
		for c := 0; c < 3; c++ {
			g.setCell(r, c, DefaultTemplate().Cell(rune('a'+r)))
		}
	}
	g.scrollRegion = region{Top: 1, Bottom: 5}

	beforeAbove := append([]rune(nil), rowGlyphs(g, 0)...)
	beforeBelow := append([]rune(nil), rowGlyphs(g, 5)...)

	g.scrollUp(2)
	g.scrollDown(2)

	if got := rowGlyphs(g, 0); !runesEqual(got, beforeAbove) {
		t.Fatalf("row above the scrolling region changed: got %q, want %q", string(got), string(beforeAbove))
	}
	if got := rowGlyphs(g, 5); !runesEqual(got, beforeBelow) {
		t.Fatalf("row below the scrolling region changed: got %q, want %q", string(got), string(beforeBelow))
	}
}

// Invariant: dirty rows clear after draw (spec.md §8 property 4).
func TestDirtyRowsClearAfterDraw(t *testing.T) {
	g, _ := newTestGrid(4, 4)
	g.Input('x')
	if len(g.DirtyRows()) == 0 {
		t.Fatal("expected dirty rows after Input, got none")
	}

	var out bytes.Buffer
	if err := g.Draw(&out); err != nil {
		t.Fatalf("Draw: %v", err)
	}
	if got := g.DirtyRows(); len(got) != 0 {
		t.Fatalf("dirty rows after Draw = %v, want empty", got)
	}
}

// Invariant: growing resize preserves the top-left region (spec.md §8
// property 5).
func TestResizeGrowPreservesTopLeft(t *testing.T) {
	g, _ := newTestGrid(3, 3)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			g.setCell(r, c, DefaultTemplate().Cell(rune('A' + r*3 + c)))
		}
	}

	g.Resize(5, 5)

	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			want := rune('A' + r*3 + c)
			if got := g.Cell(r, c).Ch; got != want {
				t.Fatalf("after grow resize, cell(%d,%d) = %q, want %q", r, c, got, want)
			}
		}
	}
}

func TestClearLineBoundaries(t *testing.T) {
	g, _ := newTestGrid(5, 1)
	for _, r := range "ABCDE" {
		g.Input(r)
	}
	g.Goto(0, 2)

	g.ClearLine(ansicode.LineClearModeLeft)
	got := rowGlyphs(g, 0)
	want := []rune{defaultGlyph, defaultGlyph, 'C', 'D', 'E'}
	if !runesEqual(got, want) {
		t.Fatalf("ClearLine(Left) at col 2 = %q, want %q (exclusive of cursor column)", string(got), string(want))
	}
}

func TestClearScreenBelowAndAbove(t *testing.T) {
	g, _ := newTestGrid(3, 3)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			g.setCell(r, c, DefaultTemplate().Cell('x'))
		}
	}

	g.Goto(1, 1)
	g.ClearScreen(ansicode.ClearModeBelow)
	if got := g.Cell(1, 1).Ch; got != defaultGlyph {
		t.Fatalf("ClearModeBelow should clear the cursor cell itself, got %q", got)
	}
	if got := g.Cell(1, 0).Ch; got != 'x' {
		t.Fatalf("ClearModeBelow should not clear before the cursor on its row, got %q", got)
	}
	if got := g.Cell(2, 0).Ch; got != defaultGlyph {
		t.Fatalf("ClearModeBelow should clear rows after the cursor, got %q", got)
	}

	g2, _ := newTestGrid(3, 3)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			g2.setCell(r, c, DefaultTemplate().Cell('x'))
		}
	}
	g2.Goto(1, 1)
	g2.ClearScreen(ansicode.ClearModeAbove)
	if got := g2.Cell(1, 1).Ch; got != 'x' {
		t.Fatalf("ClearModeAbove should not clear the cursor cell itself, got %q", got)
	}
	if got := g2.Cell(1, 0).Ch; got != defaultGlyph {
		t.Fatalf("ClearModeAbove should clear before the cursor on its row, got %q", got)
	}
	if got := g2.Cell(0, 2).Ch; got != defaultGlyph {
		t.Fatalf("ClearModeAbove should clear rows before the cursor, got %q", got)
	}
}

func TestSetScrollingRegionHomesCursor(t *testing.T) {
	g, _ := newTestGrid(4, 10)
	g.Goto(5, 2)

	g.SetScrollingRegion(2, 8)

	top, bottom := g.ScrollRegion()
	if top != 1 || bottom != 8 {
		t.Fatalf("ScrollRegion = (%d,%d), want (1,8)", top, bottom)
	}
	if got := g.Cursor(); got != (Position{Row: 0, Col: 0}) {
		t.Fatalf("after SetScrollingRegion: cursor = %+v, want (0,0)", got)
	}
}
