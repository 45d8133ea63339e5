package main

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode"

	"github.com/mathe-trainer/exceltrainer/packages/spreadsheet"
)

const helpText = `commands:
  set <KEY> <text>                  write a literal or a formula
  show [KEY]                        display one cell or the whole grid
  fill <SRC> <TARGET>               copy SRC over the rectangle up to TARGET
  translate <formula> <dRow> <dCol> shift the formula's references
  resolve <formula>                 replace function calls by their results
  recalc                            recalculate formulas in dependency order
  deps <KEY>                        cells whose formulas read KEY
  suggest <prefix>                  function names starting with prefix
  clear                             remove every cell
  help                              this text
  :quit                             exit`

var errQuit = errors.New("quit")

// session runs REPL commands against one grid
type session struct {
	grid *spreadsheet.Grid
	out  io.Writer
}

func newSession(grid *spreadsheet.Grid, out io.Writer) *session {
	return &session{grid: grid, out: out}
}

// exec runs one command line. errQuit ends the session, other errors are
// reported to the user and the session goes on.
func (s *session) exec(line string) error {
	line = strings.TrimSpace(line)
	if line == "" {
		return nil
	}

	cmd, rest, _ := strings.Cut(line, " ")
	rest = strings.TrimSpace(rest)

	switch strings.ToLower(cmd) {
	case ":quit", ":q", "quit", "exit":
		return errQuit
	case "help", "?":
		fmt.Fprintln(s.out, helpText)
		return nil
	case "set":
		key, text, ok := strings.Cut(rest, " ")
		if !ok {
			// "set A1" clears the cell text
			text = ""
		}
		if err := s.grid.Set(spreadsheet.CellKey(key), strings.TrimSpace(text)); err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s = %s\n", strings.ToUpper(key), s.grid.Display(spreadsheet.CellKey(key)))
		return nil
	case "show":
		if rest != "" {
			return s.showCell(spreadsheet.CellKey(rest))
		}
		s.showGrid()
		return nil
	case "fill":
		args := strings.Fields(rest)
		if len(args) != 2 {
			return errors.New("usage: fill <SRC> <TARGET>")
		}
		if err := s.grid.Fill(spreadsheet.CellKey(args[0]), spreadsheet.CellKey(args[1])); err != nil {
			return err
		}
		s.showGrid()
		return nil
	case "translate":
		args := strings.Fields(rest)
		if len(args) < 3 {
			return errors.New("usage: translate <formula> <dRow> <dCol>")
		}
		dRow, err := strconv.Atoi(args[len(args)-2])
		if err != nil {
			return fmt.Errorf("dRow: %w", err)
		}
		dCol, err := strconv.Atoi(args[len(args)-1])
		if err != nil {
			return fmt.Errorf("dCol: %w", err)
		}
		formula := strings.Join(args[:len(args)-2], " ")
		translated, err := spreadsheet.TranslateFormula(formula, dRow, dCol)
		if err != nil {
			return err
		}
		fmt.Fprintln(s.out, translated)
		return nil
	case "resolve":
		residual, err := s.grid.Engine().ResolveFunctions(rest)
		if err != nil {
			return err
		}
		fmt.Fprintf(s.out, "%s -> %s\n", residual, s.grid.Engine().EvaluateExpression(residual))
		return nil
	case "recalc":
		if err := s.grid.Recalculate(); err != nil {
			return err
		}
		s.showGrid()
		return nil
	case "deps":
		deps, err := s.grid.Dependents(spreadsheet.CellKey(rest))
		if err != nil {
			return err
		}
		if len(deps) == 0 {
			fmt.Fprintln(s.out, "(none)")
			return nil
		}
		names := make([]string, 0, len(deps))
		for _, d := range deps {
			names = append(names, string(d))
		}
		fmt.Fprintln(s.out, strings.Join(names, " "))
		return nil
	case "clear":
		s.grid.Clear()
		fmt.Fprintln(s.out, "grid cleared")
		return nil
	case "suggest":
		fmt.Fprintln(s.out, strings.Join(spreadsheet.Suggest(rest), " "))
		return nil
	default:
		// a bare formula is evaluated without storing it
		if spreadsheet.IsFormula(line) {
			fmt.Fprintln(s.out, s.grid.Evaluate(line))
			return nil
		}
		return fmt.Errorf("unknown command %q, type help", cmd)
	}
}

func (s *session) showCell(key spreadsheet.CellKey) error {
	if _, err := spreadsheet.ParseCellKey(key); err != nil {
		return err
	}
	cell, ok := s.grid.Get(key)
	switch {
	case !ok:
		fmt.Fprintf(s.out, "%s is empty\n", strings.ToUpper(string(key)))
	case cell.HasFormula():
		fmt.Fprintf(s.out, "%s = %s  (%s, stored %s)\n", strings.ToUpper(string(key)), s.grid.Display(key), cell.Formula, cell.Value)
	default:
		fmt.Fprintf(s.out, "%s = %s\n", strings.ToUpper(string(key)), cell.Value)
	}
	return nil
}

// showGrid prints the used part of the grid as a table
func (s *session) showGrid() {
	cols, rows := s.grid.Bounds()

	fmt.Fprintf(s.out, "%4s", "")
	for c := 0; c < cols; c++ {
		fmt.Fprintf(s.out, " %-10c", rune('A'+c))
	}
	fmt.Fprintln(s.out)

	for r := 1; r <= rows; r++ {
		fmt.Fprintf(s.out, "%4d", r)
		for c := 0; c < cols; c++ {
			key, err := spreadsheet.EncodeCellKey(c, r)
			if err != nil {
				continue
			}
			fmt.Fprintf(s.out, " %-10s", clip(s.grid.Display(key), 10))
		}
		fmt.Fprintln(s.out)
	}
}

func clip(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-1]) + "…"
}

// complete offers function names for the word being typed after "="
func complete(line string) []string {
	if !strings.Contains(line, "=") {
		return nil
	}
	start := len(line)
	for start > 0 {
		r := rune(line[start-1])
		if !unicode.IsLetter(r) {
			break
		}
		start--
	}
	word := line[start:]
	if word == "" {
		return nil
	}

	var out []string
	for _, name := range spreadsheet.Suggest(word) {
		out = append(out, line[:start]+name+"(")
	}
	return out
}
