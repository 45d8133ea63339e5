// Package seedfile reads exercise seed tables from .csv, .xlsx and .xls
// files, in the [][]string shape spreadsheet.Grid.Seed expects.
package seedfile

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/extrame/xls"
	"github.com/tealeg/xlsx"
	"go.alis.build/alog"

	"github.com/mathe-trainer/exceltrainer/packages/spreadsheet"
)

// xler is the common read side of the supported workbook formats
type xler interface {
	Sheets() int
	Rows(sheet int) int
	Cols(sheet, row int) int
	Cell(sheet, row, col int) string
}

// Option configures Load.
type Option func(*config)

type config struct {
	sheet int
	comma rune
}

// WithSheet selects the worksheet to read, zero-based. csv files have a
// single sheet.
func WithSheet(sheet int) Option {
	return func(c *config) {
		c.sheet = sheet
	}
}

// WithComma sets the csv field separator. ',' unless configured.
func WithComma(comma rune) Option {
	return func(c *config) {
		c.comma = comma
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{comma: ','}
	for _, opt := range opts {
		opt(cfg)
	}
	return cfg
}

// Load reads one sheet of the file at path. the format follows the file
// extension. trailing empty rows are dropped, ragged rows are kept as
// they are.
func Load(path string, opts ...Option) ([][]string, error) {
	cfg := applyOptions(opts)

	x, err := open(path, cfg)
	if err != nil {
		return nil, err
	}

	if cfg.sheet < 0 || cfg.sheet >= x.Sheets() {
		return nil, spreadsheet.NewApplicationError(spreadsheet.OutOfRange,
			fmt.Sprintf("%s has %d sheets, sheet %d requested", path, x.Sheets(), cfg.sheet))
	}

	rows := readSheet(x, cfg.sheet)
	alog.Debugf(context.Background(), "seedfile: read %d rows from %s sheet %d", len(rows), path, cfg.sheet)
	return rows, nil
}

func open(path string, cfg *config) (xler, error) {
	ext := strings.ToLower(filepath.Ext(path))
	switch ext {
	case ".xlsx":
		f, err := xlsx.OpenFile(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return xlsxf{f}, nil
	case ".csv", ".txt":
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		defer f.Close()

		r := csv.NewReader(f)
		r.Comma = cfg.comma
		r.LazyQuotes = true
		r.FieldsPerRecord = -1
		records, err := r.ReadAll()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		return csvf{records}, nil
	case ".xls":
		f, err := xls.Open(path, "")
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", path, err)
		}
		return xlsf{f}, nil
	default:
		return nil, spreadsheet.NewApplicationError(spreadsheet.InvalidArgument,
			fmt.Sprintf("'%s' is not a supported seed format", ext))
	}
}

func readSheet(x xler, sheet int) [][]string {
	rows := make([][]string, 0, x.Rows(sheet))
	for r := 0; r < x.Rows(sheet); r++ {
		cols := x.Cols(sheet, r)
		row := make([]string, cols)
		for c := 0; c < cols; c++ {
			row[c] = x.Cell(sheet, r, c)
		}
		rows = append(rows, row)
	}

	// drop trailing empty rows, spreadsheet tools like to leave some
	for len(rows) > 0 && isEmptyRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return rows
}

func isEmptyRow(row []string) bool {
	for _, v := range row {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}
