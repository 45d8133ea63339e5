package spreadsheet

import "iter"

// MaxRegionCells bounds the rectangles that are materialized cell by cell,
// by ResolveRange and by a fill. aggregates stream their range and are
// not limited by it.
const MaxRegionCells = 1 << 16

// RangeValue is one position of a resolved range
type RangeValue struct {
	Key     CellKey
	Number  float64
	Numeric bool // value parsed as a number
	Present bool // cell exists in the grid
}

// Range represents a lazy rectangle of cells
type Range interface {
	GetBounds() RangeAddress
	Iterate() iter.Seq[RangeValue]
}

// CellRange implements Range over a CellReader
type CellRange struct {
	bounds RangeAddress
	cells  CellReader
	cfg    *config
}

// NewCellRange creates a lazy range over cells. corners may be given in
// any order.
func NewCellRange(cells CellReader, addr RangeAddress, opts ...Option) *CellRange {
	return newCellRange(cells, addr, applyOptions(opts))
}

func newCellRange(cells CellReader, addr RangeAddress, cfg *config) *CellRange {
	return &CellRange{
		bounds: addr.Normalize(),
		cells:  cells,
		cfg:    cfg,
	}
}

// GetBounds returns the normalized range boundaries
func (r *CellRange) GetBounds() RangeAddress {
	return r.bounds
}

// Iterate yields every position of the range in row-major order (row
// outer, column inner). absent cells are yielded too, with Present false.
func (r *CellRange) Iterate() iter.Seq[RangeValue] {
	return func(yield func(RangeValue) bool) {
		if r.cells == nil {
			return
		}

		for row := r.bounds.Start.Row; row <= r.bounds.End.Row; row++ {
			for col := r.bounds.Start.Column; col <= r.bounds.End.Column; col++ {
				key := CellAddress{Column: col, Row: row}.Key()
				value := RangeValue{Key: key}
				if cell, ok := r.cells.Lookup(key); ok {
					value.Present = true
					value.Number, value.Numeric = r.cfg.parseNumber(cell.Value)
				}
				if !yield(value) {
					return
				}
			}
		}
	}
}

// ResolveRange returns one RangeValue per position of the rectangle
// spanned by start and end, in row-major order. swapping the corners
// gives the same result. rectangles over MaxRegionCells are OutOfRange.
func ResolveRange(cells CellReader, start, end CellKey, opts ...Option) ([]RangeValue, error) {
	startAddr, err := ParseCellKey(start)
	if err != nil {
		return nil, err
	}
	endAddr, err := ParseCellKey(end)
	if err != nil {
		return nil, err
	}
	bounds := RangeAddress{Start: startAddr, End: endAddr}
	if err := checkRegionSize(bounds); err != nil {
		return nil, err
	}
	return collectRange(newCellRange(cells, bounds, applyOptions(opts))), nil
}

func checkRegionSize(r RangeAddress) error {
	if size := r.Size(); size > MaxRegionCells {
		return newApplicationErrorf(OutOfRange, "range %s covers %d cells, at most %d are allowed", r.Normalize(), size, MaxRegionCells)
	}
	return nil
}

func collectRange(r Range) []RangeValue {
	values := make([]RangeValue, 0, r.GetBounds().Size())
	for v := range r.Iterate() {
		values = append(values, v)
	}
	return values
}

// RangeNumbers returns the numeric sample of a resolved range: absent,
// blank and non-numeric cells are skipped.
func RangeNumbers(values []RangeValue) []float64 {
	var out []float64
	for _, v := range values {
		if v.Numeric {
			out = append(out, v.Number)
		}
	}
	return out
}
