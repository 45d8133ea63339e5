package spreadsheet

import "strings"

// Cell represents one grid cell. Value is always display text: what was
// typed for a literal, or the snapshot of the last evaluation for a
// formula cell.
type Cell struct {
	Value   string // last entered or computed display text
	Formula string // original formula text including "=", empty for literals
}

// HasFormula reports whether the cell was entered as a formula
func (c Cell) HasFormula() bool {
	return c.Formula != ""
}

// IsFormula reports whether text is routed through the formula engine.
func IsFormula(text string) bool {
	return strings.HasPrefix(text, "=")
}

// CellReader is the read side of the grid, all the formula engine needs.
type CellReader interface {
	// Lookup returns the cell stored at key, false when absent.
	Lookup(key CellKey) (Cell, bool)
}

// CellMap is a plain map-backed CellReader, handy for evaluating against
// a fixed set of values.
type CellMap map[CellKey]Cell

func (m CellMap) Lookup(key CellKey) (Cell, bool) {
	c, ok := m[key]
	return c, ok
}
