// Command exceltrainer is an interactive practice grid: seed it from a
// table file, type formulas, fill them across cells and watch the
// results.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/peterh/liner"
	"go.alis.build/alog"

	"github.com/mathe-trainer/exceltrainer/packages/seedfile"
	"github.com/mathe-trainer/exceltrainer/packages/spreadsheet"
)

func main() {
	seed := flag.String("seed", "", "seed table (.csv, .xlsx or .xls)")
	sheet := flag.Int("sheet", 0, "worksheet of the seed file, zero-based")
	offset := flag.Int("offset", spreadsheet.DefaultSeedRowOffset, "grid row of the first seed row")
	strict := flag.Bool("strict", false, "only count cell values that are numbers as a whole")
	verbose := flag.Bool("v", false, "debug logging")
	history := flag.String("history", defaultHistoryPath(), "history file, empty to disable")
	flag.Parse()

	alog.SetLoggingEnvironment(alog.LOCAL)
	if *verbose {
		alog.SetLevel(alog.LevelDebug)
	}

	opts := []spreadsheet.Option{spreadsheet.WithSeedRowOffset(*offset)}
	if *strict {
		opts = append(opts, spreadsheet.WithStrictNumbers())
	}

	grid, err := loadGrid(*seed, *sheet, opts)
	if err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}

	if err := repl(grid, *history); err != nil {
		fmt.Fprintln(os.Stderr, red(err.Error()))
		os.Exit(1)
	}
}

func loadGrid(path string, sheet int, opts []spreadsheet.Option) (*spreadsheet.Grid, error) {
	if path == "" {
		return spreadsheet.NewGrid(opts...), nil
	}
	rows, err := seedfile.Load(path, seedfile.WithSheet(sheet))
	if err != nil {
		return nil, err
	}
	return spreadsheet.NewGridFromTable(rows, opts...)
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".exceltrainer_history")
}

func repl(grid *spreadsheet.Grid, historyPath string) error {
	fmt.Println("exceltrainer (type help for commands, :quit to exit)")

	ln := liner.NewLiner()
	defer ln.Close()
	ln.SetCtrlCAborts(true)
	ln.SetCompleter(complete)

	if historyPath != "" {
		if f, err := os.Open(historyPath); err == nil {
			_, _ = ln.ReadHistory(f)
			f.Close()
		}
		defer func() {
			if f, err := os.Create(historyPath); err == nil {
				_, _ = ln.WriteHistory(f)
				f.Close()
			}
		}()
	}

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt, syscall.SIGTERM, syscall.SIGHUP)
	go func() {
		<-sigc
		ln.Close()
		os.Exit(130)
	}()

	s := newSession(grid, os.Stdout)
	if grid.Len() > 0 {
		s.showGrid()
	}

	for {
		line, err := ln.Prompt("» ")
		if err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, liner.ErrPromptAborted) {
				fmt.Println()
				return nil
			}
			return err
		}
		if line == "" {
			continue
		}
		ln.AppendHistory(line)

		if err := s.exec(line); err != nil {
			if errors.Is(err, errQuit) {
				return nil
			}
			fmt.Fprintln(os.Stderr, red(err.Error()))
		}
	}
}

func red(s string) string {
	return "\x1b[31m" + s + "\x1b[0m"
}
