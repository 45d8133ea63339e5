package spreadsheet

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslateFormula(t *testing.T) {
	tests := []struct {
		name      string
		formula   string
		rowOffset int
		colOffset int
		want      string
	}{
		{"both axes", "=A1+B1", 1, 1, "=B2+C2"},
		{"range endpoints", "=SUMME(A1:A3)", 0, 2, "=SUMME(C1:C3)"},
		{"lower case", "=a1*b2", 2, 0, "=A3*B4"},
		{"no offset", "=SUMME(B2:A1)", 0, 0, "=SUMME(B2:A1)"},
		{"function names kept", "=LOG10(A1)", 1, 0, "=LOG10(A2)"},
		{"unsupported syntax still shifted", "=WENN(A1>1;B1;0)", 1, 0, "=WENN(A2>1;B2;0)"},
		{"no references", "=1+2", 5, 5, "=1+2"},
		{"moving up", "=A5-A4", -3, 0, "=A2-A1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := TranslateFormula(tt.formula, tt.rowOffset, tt.colOffset)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTranslateFormulaOutOfRange(t *testing.T) {
	for _, tt := range []struct {
		formula   string
		rowOffset int
		colOffset int
	}{
		{"=Z1", 0, 1},
		{"=A1", 0, -1},
		{"=A1", -1, 0},
		{"=SUMME(A2:Y2)", 0, 2},
		{"=A1048576", 1, 0},
		{"=SUMME(A1:A1048576)", 1, 0},
		{"=A4294967295", 1, 0},
		{"=A4294967295", 0, 0},
		{"=A0+B1", 0, 0},
	} {
		t.Run(tt.formula, func(t *testing.T) {
			_, err := TranslateFormula(tt.formula, tt.rowOffset, tt.colOffset)
			assert.ErrorIs(t, err, ErrOutOfRange)
		})
	}
}

func TestFillFormulaDown(t *testing.T) {
	grid, err := NewGridFromTable([][]string{
		{"1", "10"},
		{"2", "20"},
		{"3", "30"},
	})
	require.NoError(t, err)

	require.NoError(t, grid.Set("C2", "=A2+B2"))
	require.NoError(t, grid.Fill("C2", "C4"))

	assert.Equal(t, "11.00", grid.Display("C2"))
	assert.Equal(t, "22.00", grid.Display("C3"))
	assert.Equal(t, "33.00", grid.Display("C4"))

	cell, ok := grid.Get("C4")
	require.True(t, ok)
	assert.Equal(t, "=A4+B4", cell.Formula)
	assert.Equal(t, "33.00", cell.Value)
}

func TestFillRectangle(t *testing.T) {
	grid := NewGrid()
	require.NoError(t, grid.Set("B2", "=A1"))
	require.NoError(t, grid.Fill("B2", "C3"))

	want := map[CellKey]string{
		"B2": "=A1",
		"C2": "=B1",
		"B3": "=A2",
		"C3": "=B2",
	}
	for key, formula := range want {
		cell, ok := grid.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, formula, cell.Formula, key)
	}
	assert.Equal(t, 4, grid.Len())
}

func TestFillLiteralCopiesValue(t *testing.T) {
	grid := NewGrid()
	require.NoError(t, grid.Set("A1", "hallo"))
	require.NoError(t, grid.Fill("A1", "C1"))

	for _, key := range []CellKey{"A1", "B1", "C1"} {
		cell, ok := grid.Get(key)
		require.True(t, ok, key)
		assert.Equal(t, "hallo", cell.Value)
		assert.False(t, cell.HasFormula())
	}
}

func TestFillReadsGridBeforeWrites(t *testing.T) {
	grid := NewGrid()
	require.NoError(t, grid.Set("A1", "1"))
	require.NoError(t, grid.Set("A2", "=A1+1"))
	require.NoError(t, grid.Fill("A2", "A4"))

	// A3 reads A2's snapshot, A4 reads A3 which had no value before the fill
	assert.Equal(t, "3.00", grid.Display("A3"))
	cell, _ := grid.Get("A4")
	assert.Equal(t, "1.00", cell.Value)
}

func TestFillIsAtomic(t *testing.T) {
	grid := NewGrid()
	require.NoError(t, grid.Set("Y1", "=Z1"))

	// Y1 and Y2 translate fine, Z1 would need column AA
	err := grid.Fill("Y1", "Z2")
	assert.ErrorIs(t, err, ErrOutOfRange)

	assert.Equal(t, 1, grid.Len())
	_, ok := grid.Get("Y2")
	assert.False(t, ok)
}

func TestFillMissingSource(t *testing.T) {
	grid := NewGrid()
	assert.ErrorIs(t, grid.Fill("A1", "A3"), ErrNotFound)
	assert.ErrorIs(t, grid.Fill("A0", "A3"), ErrInvalidArgument)
	assert.Equal(t, 0, grid.Len())
}

func TestFillLastRow(t *testing.T) {
	grid := NewGrid()
	require.NoError(t, grid.Set("A1048576", "7"))
	require.NoError(t, grid.Set("B1048576", "=A1048576*2"))

	require.NoError(t, grid.Fill("B1048576", "C1048576"))
	cell, ok := grid.Get("C1048576")
	require.True(t, ok)
	assert.Equal(t, "=B1048576*2", cell.Formula)
	assert.Equal(t, 3, grid.Len())

	// one row further down does not exist
	assert.ErrorIs(t, grid.Fill("B1048576", "B1048577"), ErrInvalidArgument)
}

func TestFillRegionTooLarge(t *testing.T) {
	grid := NewGrid()
	require.NoError(t, grid.Set("A1", "1"))

	err := grid.Fill("A1", "Z1048576")
	assert.ErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, 1, grid.Len())
}

func TestFillRange(t *testing.T) {
	grid := NewGrid()
	require.NoError(t, grid.Set("A1", "2"))
	require.NoError(t, grid.Set("A2", "=A1*3"))

	region, err := ParseRange("B2:C2")
	require.NoError(t, err)
	require.NoError(t, grid.FillRange("A2", region))

	cell, _ := grid.Get("C2")
	assert.Equal(t, "=C1*3", cell.Formula)
	assert.Equal(t, "0.00", cell.Value)

	// the source is only copied when it is inside the region
	src, _ := grid.Get("A2")
	assert.Equal(t, "6.00", src.Value)
}
