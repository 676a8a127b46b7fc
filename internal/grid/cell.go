package grid

// Cell is one character position in the grid: a glyph plus the foreground
// and background colors it was printed with (spec.md §3).
type Cell struct {
	Ch rune
	Fg Color
	Bg Color
}

// defaultGlyph is the character a blank cell renders as. The original
// session-manager source used '.' for visibility during development; any
// non-visible default works equally well for §4.3's fidelity requirements,
// so a real space is used here instead.
const defaultGlyph = ' '

// NewCell returns a cell in its default (blank) state.
func NewCell() Cell {
	return Cell{Ch: defaultGlyph, Fg: DefaultForeground, Bg: DefaultBackground}
}

// Template holds the SGR attributes (sgr_template in spec.md §3) applied to
// characters printed by subsequent Input calls.
type Template struct {
	Fg Color
	Bg Color
}

// DefaultTemplate is the SGR state after a terminal reset.
func DefaultTemplate() Template {
	return Template{Fg: DefaultForeground, Bg: DefaultBackground}
}

// Cell materializes a glyph using this template's current colors.
func (t Template) Cell(ch rune) Cell {
	return Cell{Ch: ch, Fg: t.Fg, Bg: t.Bg}
}
