package spreadsheet

import (
	"context"
	"strings"

	"go.alis.build/alog"
)

// TranslateFormula shifts every cell reference in formula by the given
// offsets, the way a relative reference moves when a formula is copied.
// both endpoints of a range move independently. references are emitted in
// upper case, the rest of the text is kept as is. fails with OutOfRange
// when a reference names a row outside 1..MaxRows or would be moved there,
// or would leave A-Z.
func TranslateFormula(formula string, rowOffset, colOffset int) (string, error) {
	spans := scanReferences(formula)
	if len(spans) == 0 {
		return formula, nil
	}

	runes := []rune(formula)
	var b strings.Builder
	b.Grow(len(formula) + len(spans))

	last := 0
	for _, span := range spans {
		if !span.Valid {
			return "", newApplicationErrorf(OutOfRange, "%s is not an addressable cell", strings.ToUpper(span.Word))
		}
		shifted, err := span.Address.Offset(rowOffset, colOffset)
		if err != nil {
			return "", newApplicationErrorf(OutOfRange, "cannot move %s by %d rows and %d columns: %v", span.Address, rowOffset, colOffset, err)
		}
		b.WriteString(string(runes[last:span.Start]))
		b.WriteString(string(shifted.Key()))
		last = span.End
	}
	b.WriteString(string(runes[last:]))

	return b.String(), nil
}

// Fill copies the source cell over the rectangle spanned by source and
// target, source included. see FillRange.
func (g *Grid) Fill(source, target CellKey) error {
	targetAddr, err := ParseCellKey(target)
	if err != nil {
		return err
	}
	sourceAddr, err := ParseCellKey(source)
	if err != nil {
		return err
	}
	return g.FillRange(source, RangeAddress{Start: sourceAddr, End: targetAddr})
}

// FillRange copies the source cell into every cell of region. a formula
// source is translated by each destination's own offset from the source
// and evaluated against the grid as it was before the fill; a literal
// source copies its value. nothing is written unless every destination
// can be computed. regions over MaxRegionCells are OutOfRange.
func (g *Grid) FillRange(source CellKey, region RangeAddress) error {
	sourceKey, err := NormalizeKey(source)
	if err != nil {
		return err
	}
	src, ok := g.cells[sourceKey]
	if !ok {
		return newApplicationErrorf(NotFound, "fill source %s is empty", sourceKey)
	}
	sourceAddr := MustParseCellKey(sourceKey)

	bounds := region.Normalize()
	if err := checkRegionSize(bounds); err != nil {
		alog.Warnf(context.Background(), "fill %s into %s: %v", sourceKey, bounds, err)
		return err
	}

	type write struct {
		key  CellKey
		cell Cell
	}
	writes := make([]write, 0, bounds.Size())

	for row := bounds.Start.Row; row <= bounds.End.Row; row++ {
		for col := bounds.Start.Column; col <= bounds.End.Column; col++ {
			dest := CellAddress{Column: col, Row: row}

			if !src.HasFormula() {
				writes = append(writes, write{key: dest.Key(), cell: Cell{Value: src.Value}})
				continue
			}

			rowOffset := int(row) - int(sourceAddr.Row)
			colOffset := int(col) - int(sourceAddr.Column)
			formula, err := TranslateFormula(src.Formula, rowOffset, colOffset)
			if err != nil {
				alog.Warnf(context.Background(), "fill %s into %s: %v", sourceKey, bounds, err)
				return err
			}
			writes = append(writes, write{key: dest.Key(), cell: g.computeCell(dest.Key(), formula)})
		}
	}

	for _, w := range writes {
		g.store(w.key, w.cell)
	}
	return nil
}
