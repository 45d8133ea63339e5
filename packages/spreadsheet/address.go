package spreadsheet

import (
	"fmt"
	"strconv"
	"strings"
)

// MaxColumns is the number of addressable columns, A through Z.
const MaxColumns = 26

// MaxRows is the last addressable row, the same limit Excel has.
const MaxRows = 1 << 20

// CellKey is the textual address of a cell, e.g. "B12". one column letter
// followed by a 1-based row number.
type CellKey string

// Column is a zero-based column index, A=0 through Z=25.
type Column uint8

// Letter returns the column letter.
func (c Column) Letter() byte {
	return 'A' + byte(c)
}

// Shift moves the column by delta, failing when the result leaves A-Z.
func (c Column) Shift(delta int) (Column, error) {
	shifted := int(c) + delta
	if shifted < 0 || shifted >= MaxColumns {
		return 0, newApplicationErrorf(OutOfRange, "column %c shifted by %d is outside A-Z", c.Letter(), delta)
	}
	return Column(shifted), nil
}

// CellAddress is a decoded CellKey
type CellAddress struct {
	Column Column
	Row    uint32 // 1-based
}

// Key encodes the address back into its CellKey.
func (a CellAddress) Key() CellKey {
	return CellKey(string(a.Column.Letter()) + strconv.FormatUint(uint64(a.Row), 10))
}

func (a CellAddress) String() string {
	return string(a.Key())
}

// Offset returns the address moved by the given row and column deltas.
func (a CellAddress) Offset(rowOffset, colOffset int) (CellAddress, error) {
	col, err := a.Column.Shift(colOffset)
	if err != nil {
		return CellAddress{}, err
	}
	row := int64(a.Row) + int64(rowOffset)
	if row < 1 {
		return CellAddress{}, newApplicationErrorf(OutOfRange, "row %d shifted by %d is before row 1", a.Row, rowOffset)
	}
	if row > MaxRows {
		return CellAddress{}, newApplicationErrorf(OutOfRange, "row %d shifted by %d is past row %d", a.Row, rowOffset, MaxRows)
	}
	return CellAddress{Column: col, Row: uint32(row)}, nil
}

// ParseCellKey decodes a key like "c7" or "C7" into its address. the
// column must be a single letter and the row must be within 1..MaxRows.
func ParseCellKey(key CellKey) (CellAddress, error) {
	col, row, ok := splitCellKey(string(key))
	if !ok {
		return CellAddress{}, newApplicationErrorf(InvalidArgument, "invalid cell key: %q", key)
	}
	return CellAddress{Column: col, Row: row}, nil
}

// MustParseCellKey is like ParseCellKey but panics on a malformed key.
// intended for literals in tests and examples.
func MustParseCellKey(key CellKey) CellAddress {
	addr, err := ParseCellKey(key)
	if err != nil {
		panic(err)
	}
	return addr
}

// EncodeCellKey is the inverse of ParseCellKey. col is zero-based, row is
// 1-based.
func EncodeCellKey(col int, row int) (CellKey, error) {
	if col < 0 || col >= MaxColumns {
		return "", newApplicationErrorf(OutOfRange, "column index %d is outside A-Z", col)
	}
	if row < 1 || row > MaxRows {
		return "", newApplicationErrorf(OutOfRange, "row %d is outside 1-%d", row, MaxRows)
	}
	return CellAddress{Column: Column(col), Row: uint32(row)}.Key(), nil
}

// NormalizeKey upper-cases a valid key, e.g. "b3" -> "B3".
func NormalizeKey(key CellKey) (CellKey, error) {
	addr, err := ParseCellKey(key)
	if err != nil {
		return "", err
	}
	return addr.Key(), nil
}

// splitCellKey is shared by the lexer and the address model
func splitCellKey(s string) (Column, uint32, bool) {
	if !hasReferenceShape(s) {
		return 0, 0, false
	}
	row, err := strconv.ParseUint(s[1:], 10, 32)
	if err != nil || row < 1 || row > MaxRows {
		return 0, 0, false
	}
	letter := strings.ToUpper(s[:1])[0]
	return Column(letter - 'A'), uint32(row), true
}

// hasReferenceShape reports whether s is one ASCII letter followed by
// digits, whatever the row value
func hasReferenceShape(s string) bool {
	if len(s) < 2 || !isLetter(rune(s[0])) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isDigit(rune(s[i])) {
			return false
		}
	}
	return true
}

func isLetter(ch rune) bool {
	return (ch >= 'a' && ch <= 'z') || (ch >= 'A' && ch <= 'Z')
}

func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// RangeAddress is a rectangle named by two corners, in the order they were
// written. use Normalize before iterating.
type RangeAddress struct {
	Start CellAddress
	End   CellAddress
}

// ParseRange parses "A1:B3" style text. corners may be given in any order.
func ParseRange(text string) (RangeAddress, error) {
	parts := strings.Split(text, ":")
	if len(parts) != 2 {
		return RangeAddress{}, newApplicationErrorf(InvalidArgument, "invalid range format: %q", text)
	}
	start, err := ParseCellKey(CellKey(strings.TrimSpace(parts[0])))
	if err != nil {
		return RangeAddress{}, newApplicationErrorf(InvalidArgument, "invalid start cell in range: %q", parts[0])
	}
	end, err := ParseCellKey(CellKey(strings.TrimSpace(parts[1])))
	if err != nil {
		return RangeAddress{}, newApplicationErrorf(InvalidArgument, "invalid end cell in range: %q", parts[1])
	}
	return RangeAddress{Start: start, End: end}, nil
}

// Normalize returns the rectangle with Start at the top-left corner and End
// at the bottom-right, regardless of which corner was written first.
func (r RangeAddress) Normalize() RangeAddress {
	return RangeAddress{
		Start: CellAddress{
			Column: min(r.Start.Column, r.End.Column),
			Row:    min(r.Start.Row, r.End.Row),
		},
		End: CellAddress{
			Column: max(r.Start.Column, r.End.Column),
			Row:    max(r.Start.Row, r.End.Row),
		},
	}
}

// Contains reports whether addr lies inside the rectangle
func (r RangeAddress) Contains(addr CellAddress) bool {
	n := r.Normalize()
	return addr.Row >= n.Start.Row && addr.Row <= n.End.Row &&
		addr.Column >= n.Start.Column && addr.Column <= n.End.Column
}

// Size returns the number of cells covered by the rectangle.
func (r RangeAddress) Size() int {
	n := r.Normalize()
	return int(n.End.Row-n.Start.Row+1) * int(n.End.Column-n.Start.Column+1)
}

func (r RangeAddress) String() string {
	return fmt.Sprintf("%s:%s", r.Start, r.End)
}
