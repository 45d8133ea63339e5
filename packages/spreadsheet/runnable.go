package spreadsheet

import (
	"fmt"
	"maps"
	"slices"
)

// RunnableGrid provides a chainable interface for grid operations. wraps
// a Grid and tracks the first error; later calls are no-ops until Reset.
type RunnableGrid struct {
	grid    *Grid
	err     error
	printLn func(string)
}

// NewRunnableGrid creates a new RunnableGrid. printLn is required and
// will be used by CheckError and Print.
func NewRunnableGrid(printLn func(string), opts ...Option) *RunnableGrid {
	return &RunnableGrid{
		grid:    NewGrid(opts...),
		printLn: printLn,
	}
}

// Seed writes a seed table (chainable)
func (r *RunnableGrid) Seed(rows [][]string) *RunnableGrid {
	if r.err != nil {
		return r // no-op if there's already an error
	}
	r.err = r.grid.Seed(rows)
	return r
}

// Set writes a literal or formula (chainable)
func (r *RunnableGrid) Set(key CellKey, text string) *RunnableGrid {
	if r.err != nil {
		return r
	}
	r.err = r.grid.Set(key, text)
	return r
}

// SetBatch writes several cells in row-major order (chainable)
func (r *RunnableGrid) SetBatch(cells map[CellKey]string) *RunnableGrid {
	if r.err != nil {
		return r
	}

	normalized := make(map[CellKey]string, len(cells))
	for key, text := range cells {
		k, err := NormalizeKey(key)
		if err != nil {
			r.err = err
			return r
		}
		normalized[k] = text
	}

	keys := slices.Collect(maps.Keys(normalized))
	slices.SortFunc(keys, func(a, b CellKey) int {
		return compareAddress(MustParseCellKey(a), MustParseCellKey(b))
	})
	for _, key := range keys {
		if err := r.grid.Set(key, normalized[key]); err != nil {
			r.err = err
			return r
		}
	}
	return r
}

// Remove deletes a cell (chainable)
func (r *RunnableGrid) Remove(key CellKey) *RunnableGrid {
	if r.err != nil {
		return r
	}
	r.err = r.grid.Remove(key)
	return r
}

// Fill copies source over the rectangle up to target (chainable)
func (r *RunnableGrid) Fill(source, target CellKey) *RunnableGrid {
	if r.err != nil {
		return r
	}
	r.err = r.grid.Fill(source, target)
	return r
}

// Recalculate runs a dependency-ordered recalculation (chainable)
func (r *RunnableGrid) Recalculate() *RunnableGrid {
	if r.err != nil {
		return r
	}
	r.err = r.grid.Recalculate()
	return r
}

// Print writes the display text of key using printLn (chainable)
func (r *RunnableGrid) Print(key CellKey) *RunnableGrid {
	if r.err != nil {
		return r
	}
	r.printLn(fmt.Sprintf("%s: %s", key, r.grid.Display(key)))
	return r
}

// Run returns the grid and any error. unlike Recalculate it evaluates
// nothing, cells keep the values they were written with.
func (r *RunnableGrid) Run() (*Grid, error) {
	if r.err != nil {
		return nil, r.err
	}
	return r.grid, nil
}

// RunOrPanic returns the grid and panics if there's an error. useful for
// examples and tests where you want to fail fast
func (r *RunnableGrid) RunOrPanic() *Grid {
	grid, err := r.Run()
	if err != nil {
		panic(err)
	}
	return grid
}

// Error returns the current error state
func (r *RunnableGrid) Error() error {
	return r.err
}

// CheckError logs the current error using the printLn function (chainable)
func (r *RunnableGrid) CheckError() *RunnableGrid {
	if r.err != nil {
		r.printLn(fmt.Sprintf("ERROR: %v", r.err))
	} else {
		r.printLn("No errors")
	}
	return r
}

// Grid returns the underlying grid. use with caution as it bypasses
// error tracking.
func (r *RunnableGrid) Grid() *Grid {
	return r.grid
}

// Reset clears the error state (chainable)
func (r *RunnableGrid) Reset() *RunnableGrid {
	r.err = nil
	return r
}

// Then allows conditional execution based on current error state
func (r *RunnableGrid) Then(fn func(*RunnableGrid) *RunnableGrid) *RunnableGrid {
	if r.err != nil {
		return r
	}
	return fn(r)
}

// OnError allows error handling in the chain
func (r *RunnableGrid) OnError(fn func(error) error) *RunnableGrid {
	if r.err != nil {
		r.err = fn(r.err)
	}
	return r
}

// Must panics if there's an error (chainable)
func (r *RunnableGrid) Must() *RunnableGrid {
	if r.err != nil {
		panic(r.err)
	}
	return r
}
