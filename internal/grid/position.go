package grid

// Position is a zero-indexed (col, row) grid coordinate, ordered
// lexicographically by row then col (spec.md §3).
type Position struct {
	Row int
	Col int
}

// Before reports whether p sorts strictly before other in (row, col) order.
func (p Position) Before(other Position) bool {
	if p.Row != other.Row {
		return p.Row < other.Row
	}
	return p.Col < other.Col
}
