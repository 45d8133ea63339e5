package spreadsheet

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveRangeRowMajor(t *testing.T) {
	cells := CellMap{
		"A1": {Value: "1"},
		"B1": {Value: "x"},
		"A2": {Value: " 3 "},
	}

	values, err := ResolveRange(cells, "A1", "B2")
	require.NoError(t, err)

	keys := make([]CellKey, 0, len(values))
	for _, v := range values {
		keys = append(keys, v.Key)
	}
	assert.Equal(t, []CellKey{"A1", "B1", "A2", "B2"}, keys)

	assert.Equal(t, RangeValue{Key: "A1", Number: 1, Numeric: true, Present: true}, values[0])
	assert.Equal(t, RangeValue{Key: "B1", Present: true}, values[1])
	assert.Equal(t, RangeValue{Key: "A2", Number: 3, Numeric: true, Present: true}, values[2])
	assert.Equal(t, RangeValue{Key: "B2"}, values[3])

	assert.Equal(t, []float64{1, 3}, RangeNumbers(values))
}

func TestResolveRangeOrderIndependent(t *testing.T) {
	cells := CellMap{
		"A2": {Value: "2"},
		"A3": {Value: ""},
		"A4": {Value: "4"},
		"A5": {Value: "abc"},
	}

	forward, err := ResolveRange(cells, "A2", "A5")
	require.NoError(t, err)
	backward, err := ResolveRange(cells, "A5", "A2")
	require.NoError(t, err)
	assert.Equal(t, forward, backward)

	diagonal, err := ResolveRange(cells, "B5", "a2")
	require.NoError(t, err)
	other, err := ResolveRange(cells, "A5", "B2")
	require.NoError(t, err)
	assert.Equal(t, diagonal, other)
}

func TestResolveRangeRejectsBadKeys(t *testing.T) {
	_, err := ResolveRange(CellMap{}, "A0", "B2")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestResolveRangeLimits(t *testing.T) {
	cells := CellMap{"A1048576": {Value: "5"}}

	values, err := ResolveRange(cells, "A1048576", "a1048576")
	require.NoError(t, err)
	require.Len(t, values, 1)
	assert.Equal(t, CellKey("A1048576"), values[0].Key)

	_, err = ResolveRange(cells, "A4294967295", "A4294967295")
	assert.ErrorIs(t, err, ErrInvalidArgument)

	_, err = ResolveRange(cells, "A1", "Z1048576")
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCellRangeIterateLastRow(t *testing.T) {
	r := NewCellRange(CellMap{}, RangeAddress{Start: MustParseCellKey("B1048575"), End: MustParseCellKey("A1048576")})

	var keys []CellKey
	for v := range r.Iterate() {
		keys = append(keys, v.Key)
		require.LessOrEqual(t, len(keys), 4)
	}
	assert.Equal(t, []CellKey{"A1048575", "B1048575", "A1048576", "B1048576"}, keys)
}

func TestAggregateLastRow(t *testing.T) {
	engine := NewEngine(CellMap{"A1048575": {Value: "2"}, "A1048576": {Value: "3"}})

	assert.Equal(t, "5", engine.Evaluate("=SUMME(A1048575:A1048576)").String())
	assert.Equal(t, "3", engine.Evaluate("=MAX(A1:A1048576)").String())
	assert.True(t, engine.Evaluate("=SUMME(A4294967295:A4294967295)").Failed())
}

func TestRangeNumbersSkipsNaN(t *testing.T) {
	cells := CellMap{
		"A1": {Value: "NaN"},
		"A2": {Value: "Infinity"},
		"A3": {Value: "-Infinity"},
		"A4": {Value: "inf"},
		"A5": {Value: "+Inf"},
		"A6": {Value: "1e999"},
	}
	values, err := ResolveRange(cells, "A1", "A6")
	require.NoError(t, err)
	assert.Equal(t, []float64{math.Inf(1), math.Inf(-1), math.Inf(1)}, RangeNumbers(values))
}

func TestNumberPrefixes(t *testing.T) {
	tests := []struct {
		value   string
		want    float64
		numeric bool
	}{
		{"12 kg", 12, true},
		{"1,5", 1, true},
		{" 3.25 ", 3.25, true},
		{".5", 0.5, true},
		{"-.5e1x", -5, true},
		{"7.", 7, true},
		{"2e", 2, true},
		{"Infinityx", math.Inf(1), true},
		{"kg 12", 0, false},
		{"infinity", 0, false},
		{"-", 0, false},
		{"", 0, false},
	}

	cfg := applyOptions(nil)
	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			got, numeric := cfg.parseNumber(tt.value)
			assert.Equal(t, tt.numeric, numeric)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSummeReadsNumberPrefixes(t *testing.T) {
	cells := CellMap{"A1": {Value: "12 kg"}, "A2": {Value: "1,5"}, "A3": {Value: "inf"}}

	assert.Equal(t, "13", NewEngine(cells).Evaluate("=SUMME(A1:A2)").String())
	assert.Equal(t, "0", NewEngine(cells).Evaluate("=SUMME(A3:A3)").String())
	assert.Equal(t, "0", NewEngine(cells, WithStrictNumbers()).Evaluate("=SUMME(A1:A2)").String())
}

func TestStrictNumbers(t *testing.T) {
	cells := CellMap{"A1": {Value: "12 kg"}, "A2": {Value: " 4 "}, "A3": {Value: "-Infinity"}}

	strict, err := ResolveRange(cells, "A1", "A3", WithStrictNumbers())
	require.NoError(t, err)
	assert.Equal(t, []float64{4, math.Inf(-1)}, RangeNumbers(strict))

	prefixed, err := ResolveRange(cells, "A1", "A3")
	require.NoError(t, err)
	assert.Equal(t, []float64{12, 4, math.Inf(-1)}, RangeNumbers(prefixed))
}

func TestCellRangeIterateStopsEarly(t *testing.T) {
	r := NewCellRange(CellMap{}, RangeAddress{Start: MustParseCellKey("A1"), End: MustParseCellKey("Z100")})
	assert.Equal(t, CellKey("A1"), r.GetBounds().Start.Key())

	seen := 0
	for range r.Iterate() {
		seen++
		if seen == 3 {
			break
		}
	}
	assert.Equal(t, 3, seen)
}
