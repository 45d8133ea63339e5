package seedfile

import (
	"github.com/extrame/xls"
	"github.com/tealeg/xlsx"
)

type csvf struct{ records [][]string }

func (x csvf) Sheets() int {
	return 1
}

func (x csvf) Rows(sheet int) int {
	return len(x.records)
}

func (x csvf) Cols(sheet, row int) int {
	return len(x.records[row])
}

func (x csvf) Cell(sheet, row, col int) string {
	return x.records[row][col]
}

type xlsxf struct{ x *xlsx.File }

func (x xlsxf) Sheets() int {
	return len(x.x.Sheets)
}

func (x xlsxf) Rows(sheet int) int {
	return len(x.x.Sheets[sheet].Rows)
}

func (x xlsxf) Cols(sheet, row int) int {
	r := x.x.Sheets[sheet].Rows[row]
	if r == nil {
		return 0
	}
	return len(r.Cells)
}

func (x xlsxf) Cell(sheet, row, col int) string {
	c := x.x.Sheets[sheet].Rows[row].Cells[col]
	if c == nil {
		return ""
	}
	return c.String()
}

type xlsf struct{ x *xls.WorkBook }

func (x xlsf) Sheets() int {
	return x.x.NumSheets()
}

func (x xlsf) Rows(sheet int) int {
	s := x.x.GetSheet(sheet)
	if s == nil {
		return 0
	}
	return int(s.MaxRow) + 1
}

// rows missing from the sheet come back nil
func (x xlsf) Cols(sheet, row int) int {
	r := x.x.GetSheet(sheet).Row(row)
	if r == nil {
		return 0
	}
	return r.LastCol() + 1
}

func (x xlsf) Cell(sheet, row, col int) string {
	r := x.x.GetSheet(sheet).Row(row)
	if r == nil {
		return ""
	}
	return r.Col(col)
}
