package spreadsheet

import (
	"cmp"
	"maps"
	"slices"
)

// Grid is a sparse store of cells addressed by CellKey. absent keys are
// empty cells. a Grid is not safe for concurrent use.
type Grid struct {
	cells    map[CellKey]*Cell
	formulas *FormulaTable
	engine   *Engine
	cfg      *config
}

// NewGrid creates an empty grid
func NewGrid(opts ...Option) *Grid {
	g := &Grid{
		cells:    make(map[CellKey]*Cell),
		formulas: NewFormulaTable(),
		cfg:      applyOptions(opts),
	}
	g.engine = newEngine(g, g.cfg)
	return g
}

// NewGridFromTable creates a grid seeded from rows, see Seed
func NewGridFromTable(rows [][]string, opts ...Option) (*Grid, error) {
	g := NewGrid(opts...)
	if err := g.Seed(rows); err != nil {
		return nil, err
	}
	return g, nil
}

// Seed writes rows into the grid as literal cells. row i lands on grid row
// offset+i (offset 2 unless configured), column j on letter A+j. seed
// text is never evaluated, even when it starts with "=".
func (g *Grid) Seed(rows [][]string) error {
	// validate first so a bad table leaves the grid untouched
	for i, row := range rows {
		if len(row) > MaxColumns {
			return newApplicationErrorf(OutOfRange, "seed row %d has %d columns, at most %d fit in A-Z", i, len(row), MaxColumns)
		}
	}

	for i, row := range rows {
		for j, value := range row {
			key, err := EncodeCellKey(j, g.cfg.seedRowOffset+i)
			if err != nil {
				return err
			}
			g.store(key, Cell{Value: value})
		}
	}
	return nil
}

// Lookup implements CellReader
func (g *Grid) Lookup(key CellKey) (Cell, bool) {
	cell, ok := g.cells[key]
	if !ok {
		return Cell{}, false
	}
	return *cell, true
}

// Get returns the cell at key. keys are matched case-insensitively.
func (g *Grid) Get(key CellKey) (Cell, bool) {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return Cell{}, false
	}
	return g.Lookup(normalized)
}

// Set writes text into the cell at key. formulas are evaluated right away
// against the current grid and the result is stored as the cell's value
// next to the formula text as entered. evaluation failures are stored as
// the error marker, they are not returned.
func (g *Grid) Set(key CellKey, text string) error {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	g.store(normalized, g.computeCell(normalized, text))
	return nil
}

// computeCell builds the cell for text without storing it
func (g *Grid) computeCell(key CellKey, text string) Cell {
	if !IsFormula(text) {
		return Cell{Value: text}
	}
	ast, err := g.formulas.Parse(text)
	if err != nil {
		return Cell{Value: g.engine.fail(text, err).String(), Formula: text}
	}
	return Cell{Value: g.engine.evaluateNode(text, ast).String(), Formula: text}
}

// store replaces the cell at key and keeps the formula table in step
func (g *Grid) store(key CellKey, cell Cell) {
	if cell.HasFormula() {
		// a formula that does not parse keeps no table entry, Display
		// re-parses it and fails again
		_, _ = g.formulas.InternFormula(cell.Formula, key)
	} else {
		g.formulas.ReleaseCell(key)
	}
	c := cell
	g.cells[key] = &c
}

// Remove deletes the cell at key. removing an absent cell is a no-op.
func (g *Grid) Remove(key CellKey) error {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return err
	}
	g.formulas.ReleaseCell(normalized)
	delete(g.cells, normalized)
	return nil
}

// Clear removes every cell, seeded ones included
func (g *Grid) Clear() {
	clear(g.cells)
	g.formulas.Clear()
}

// Display returns the text shown for the cell at key. a formula cell is
// re-evaluated against the cached values of the cells it references,
// those cells are not re-evaluated themselves.
func (g *Grid) Display(key CellKey) string {
	normalized, err := NormalizeKey(key)
	if err != nil {
		return ""
	}
	cell, ok := g.cells[normalized]
	if !ok {
		return ""
	}
	if !cell.HasFormula() {
		return cell.Value
	}
	if ast, ok := g.formulas.GetASTAtCell(normalized); ok {
		return g.engine.evaluateNode(cell.Formula, ast).String()
	}
	return g.engine.Evaluate(cell.Formula).String()
}

// Evaluate evaluates text against the grid without storing anything
func (g *Grid) Evaluate(text string) Result {
	return g.engine.Evaluate(text)
}

// Engine returns the formula engine reading from this grid
func (g *Grid) Engine() *Engine {
	return g.engine
}

// Snapshot returns a copy of every stored cell
func (g *Grid) Snapshot() map[CellKey]Cell {
	out := make(map[CellKey]Cell, len(g.cells))
	for key, cell := range g.cells {
		out[key] = *cell
	}
	return out
}

// Keys returns the stored keys in row-major order
func (g *Grid) Keys() []CellKey {
	keys := slices.Collect(maps.Keys(g.cells))
	slices.SortFunc(keys, func(a, b CellKey) int {
		return compareAddress(MustParseCellKey(a), MustParseCellKey(b))
	})
	return keys
}

// compareAddress orders addresses row-major
func compareAddress(a, b CellAddress) int {
	if c := cmp.Compare(a.Row, b.Row); c != 0 {
		return c
	}
	return cmp.Compare(a.Column, b.Column)
}

// Len returns the number of stored cells
func (g *Grid) Len() int {
	return len(g.cells)
}

// Bounds returns how many columns and rows a rendering of the grid needs.
// at least three columns (A-C) are shown; an empty grid shows two rows.
func (g *Grid) Bounds() (cols int, rows int) {
	maxCol := 2
	maxRow := 0
	for key := range g.cells {
		addr := MustParseCellKey(key)
		maxCol = max(maxCol, int(addr.Column))
		maxRow = max(maxRow, int(addr.Row))
	}
	if maxRow == 0 {
		maxRow = 2
	}
	return maxCol + 1, maxRow
}
