package grid

import "image/color"

// NamedColorID identifies one of the ANSI palette slots or a semantic
// terminal role (foreground, background, cursor) rather than a fixed RGB
// value, so a renderer can remap the whole palette without touching cells.
type NamedColorID int

const (
	ColorBlack NamedColorID = iota
	ColorRed
	ColorGreen
	ColorYellow
	ColorBlue
	ColorMagenta
	ColorCyan
	ColorWhite
	ColorBrightBlack
	ColorBrightRed
	ColorBrightGreen
	ColorBrightYellow
	ColorBrightBlue
	ColorBrightMagenta
	ColorBrightCyan
	ColorBrightWhite
	ColorForeground
	ColorBackground
	ColorCursor
	ColorDimBlack
	ColorDimRed
	ColorDimGreen
	ColorDimYellow
	ColorDimBlue
	ColorDimMagenta
	ColorDimCyan
	ColorDimWhite
)

// NamedColor is a Color backed by a semantic palette slot.
type NamedColor struct {
	ID NamedColorID
}

// IndexedColor is a Color backed by one of the 256 palette entries.
type IndexedColor struct {
	Index uint8
}

// RGBColor is a Color carrying an explicit RGB triple (24-bit "true color" SGR).
type RGBColor struct {
	R, G, B uint8
}

// Color is the tagged union described in spec.md §3: Named | Indexed | Spec(rgb).
// All three concrete types satisfy image/color.Color so callers that only
// need a renderable value can use ResolveColor without a type switch.
type Color interface {
	color.Color
	isGridColor()
}

func (NamedColor) isGridColor()   {}
func (IndexedColor) isGridColor() {}
func (RGBColor) isGridColor()     {}

// RGBA implements color.Color by resolving against the default palette.
func (c NamedColor) RGBA() (r, g, b, a uint32) {
	return asRGBA(ResolveNamedColor(c.ID))
}

func (c IndexedColor) RGBA() (r, g, b, a uint32) {
	return asRGBA(DefaultPalette[c.Index])
}

func (c RGBColor) RGBA() (r, g, b, a uint32) {
	return asRGBA(color.RGBA{R: c.R, G: c.G, B: c.B, A: 255})
}

func asRGBA(c color.RGBA) (r, g, b, a uint32) {
	return uint32(c.R) * 0x101, uint32(c.G) * 0x101, uint32(c.B) * 0x101, uint32(c.A) * 0x101
}

// DefaultForeground is the color newly-constructed cells print with.
var DefaultForeground = NamedColor{ID: ColorForeground}

// DefaultBackground is the color newly-constructed cells are filled with.
var DefaultBackground = NamedColor{ID: ColorBackground}

// DefaultPalette is the standard 256-color palette: 16 named colors (0-15),
// a 216-entry color cube (16-231), and 24 grayscale steps (232-255).
var DefaultPalette [256]color.RGBA

func init() {
	base := [16]color.RGBA{
		{0, 0, 0, 255}, {205, 49, 49, 255}, {13, 188, 121, 255}, {229, 229, 16, 255},
		{36, 114, 200, 255}, {188, 63, 188, 255}, {17, 168, 205, 255}, {229, 229, 229, 255},
		{102, 102, 102, 255}, {241, 76, 76, 255}, {35, 209, 139, 255}, {245, 245, 67, 255},
		{59, 142, 234, 255}, {214, 112, 214, 255}, {41, 184, 219, 255}, {255, 255, 255, 255},
	}
	copy(DefaultPalette[:16], base[:])

	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				DefaultPalette[i] = color.RGBA{R: uint8(r * 51), G: uint8(g * 51), B: uint8(b * 51), A: 255}
				i++
			}
		}
	}

	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		DefaultPalette[232+j] = color.RGBA{R: gray, G: gray, B: gray, A: 255}
	}
}

var baseForegroundRGBA = color.RGBA{R: 229, G: 229, B: 229, A: 255}
var baseBackgroundRGBA = color.RGBA{R: 0, G: 0, B: 0, A: 255}
var baseCursorRGBA = color.RGBA{R: 229, G: 229, B: 229, A: 255}

// ResolveNamedColor maps a semantic color slot to a concrete RGBA value.
func ResolveNamedColor(id NamedColorID) color.RGBA {
	switch {
	case id >= ColorBlack && id <= ColorBrightWhite:
		return DefaultPalette[id]
	case id == ColorForeground:
		return baseForegroundRGBA
	case id == ColorBackground:
		return baseBackgroundRGBA
	case id == ColorCursor:
		return baseCursorRGBA
	case id >= ColorDimBlack && id <= ColorDimWhite:
		base := DefaultPalette[int(id-ColorDimBlack)]
		return dim(base)
	default:
		return baseForegroundRGBA
	}
}

func dim(c color.RGBA) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * 0.66),
		G: uint8(float64(c.G) * 0.66),
		B: uint8(float64(c.B) * 0.66),
		A: 255,
	}
}

// ResolveColor converts any Color (or nil) into a concrete RGBA value.
// A nil fg resolves to the default foreground, nil bg to the default background.
func ResolveColor(c Color, fg bool) color.RGBA {
	if c == nil {
		if fg {
			return baseForegroundRGBA
		}
		return baseBackgroundRGBA
	}
	r, g, b, a := c.RGBA()
	return color.RGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}
