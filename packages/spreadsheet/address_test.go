package spreadsheet

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCellKey(t *testing.T) {
	tests := []struct {
		key     CellKey
		want    CellAddress
		wantErr bool
	}{
		{key: "A1", want: CellAddress{Column: 0, Row: 1}},
		{key: "Z99", want: CellAddress{Column: 25, Row: 99}},
		{key: "c7", want: CellAddress{Column: 2, Row: 7}},
		{key: "B0012", want: CellAddress{Column: 1, Row: 12}},
		{key: "Z1048576", want: CellAddress{Column: 25, Row: MaxRows}},
		{key: "A1048577", wantErr: true},
		{key: "A4294967295", wantErr: true},
		{key: "A99999999999", wantErr: true},
		{key: "A0", wantErr: true},
		{key: "AA1", wantErr: true},
		{key: "1A", wantErr: true},
		{key: "A", wantErr: true},
		{key: "", wantErr: true},
		{key: "Ä1", wantErr: true},
		{key: "A-1", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(string(tt.key), func(t *testing.T) {
			got, err := ParseCellKey(tt.key)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, ErrInvalidArgument))
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestEncodeCellKey(t *testing.T) {
	key, err := EncodeCellKey(0, 1)
	require.NoError(t, err)
	assert.Equal(t, CellKey("A1"), key)

	key, err = EncodeCellKey(25, 40)
	require.NoError(t, err)
	assert.Equal(t, CellKey("Z40"), key)

	_, err = EncodeCellKey(26, 1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = EncodeCellKey(-1, 1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = EncodeCellKey(0, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = EncodeCellKey(0, MaxRows+1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCellKeyRoundTrip(t *testing.T) {
	for col := 0; col < MaxColumns; col++ {
		for _, row := range []int{1, 2, 10, 999} {
			key, err := EncodeCellKey(col, row)
			require.NoError(t, err)
			addr, err := ParseCellKey(key)
			require.NoError(t, err)
			assert.Equal(t, Column(col), addr.Column)
			assert.Equal(t, uint32(row), addr.Row)
		}
	}
}

func TestColumnShift(t *testing.T) {
	c, err := Column(1).Shift(2)
	require.NoError(t, err)
	assert.Equal(t, byte('D'), c.Letter())

	_, err = Column(25).Shift(1)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = Column(0).Shift(-1)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestCellAddressOffset(t *testing.T) {
	addr := MustParseCellKey("B2")

	moved, err := addr.Offset(3, 1)
	require.NoError(t, err)
	assert.Equal(t, CellKey("C5"), moved.Key())

	_, err = addr.Offset(-2, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	last := MustParseCellKey("A1048576")
	_, err = last.Offset(1, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = addr.Offset(1<<40, 0)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestParseRange(t *testing.T) {
	r, err := ParseRange("b3:a1")
	require.NoError(t, err)
	assert.Equal(t, "B3:A1", r.String())

	n := r.Normalize()
	assert.Equal(t, CellKey("A1"), n.Start.Key())
	assert.Equal(t, CellKey("B3"), n.End.Key())
	assert.Equal(t, 6, r.Size())
	assert.True(t, r.Contains(MustParseCellKey("A2")))
	assert.False(t, r.Contains(MustParseCellKey("C2")))

	_, err = ParseRange("A1")
	assert.ErrorIs(t, err, ErrInvalidArgument)
	_, err = ParseRange("A1:B")
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestAppErrorIs(t *testing.T) {
	err := newApplicationErrorf(NotFound, "cell %s missing", "A1")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.NotErrorIs(t, err, ErrOutOfRange)
	assert.Equal(t, "cell A1 missing", err.Error())
	assert.Equal(t, "NOT_FOUND", err.Code.String())
}
