// Package dataset provides Frame, the row-aligned columnar table that
// strategies populate and writers consume.
//
// Cells hold scalar values only: int64, float64, string, bool or nil.
// Every column in a Frame has exactly Len() cells at all times.
package dataset

import (
	"fmt"
	"math/rand/v2"
	"slices"
)

// Frame is an ordered collection of named, row-aligned columns.
//
// Frame is not safe for concurrent use. A run owns its frame exclusively.
type Frame struct {
	rows  int
	names []string
	cols  map[string][]any
}

// New creates an empty frame with a fixed row count and no columns.
func New(rows int) *Frame {
	if rows < 0 {
		rows = 0
	}
	return &Frame{rows: rows, cols: make(map[string][]any)}
}

// FromColumns builds a frame from parallel column slices.
// All slices must share the same length.
func FromColumns(names []string, columns [][]any) (*Frame, error) {
	if len(names) != len(columns) {
		return nil, fmt.Errorf("dataset: %d names for %d columns", len(names), len(columns))
	}
	rows := 0
	if len(columns) > 0 {
		rows = len(columns[0])
	}
	f := New(rows)
	for i, name := range names {
		if err := f.Set(name, columns[i]); err != nil {
			return nil, err
		}
	}
	return f, nil
}

// Len returns the number of rows.
func (f *Frame) Len() int { return f.rows }

// Width returns the number of columns.
func (f *Frame) Width() int { return len(f.names) }

// Columns returns the column names in insertion order.
func (f *Frame) Columns() []string { return slices.Clone(f.names) }

// Has reports whether the frame contains the named column.
func (f *Frame) Has(name string) bool {
	_, ok := f.cols[name]
	return ok
}

// Column returns the cells of the named column, or nil if absent.
// The returned slice aliases the frame's storage.
func (f *Frame) Column(name string) []any { return f.cols[name] }

// Ensure adds the named column filled with nil if it does not exist.
func (f *Frame) Ensure(name string) {
	if f.Has(name) {
		return
	}
	f.names = append(f.names, name)
	f.cols[name] = make([]any, f.rows)
}

// Set replaces the named column (adding it if needed). values must have
// exactly Len() entries.
func (f *Frame) Set(name string, values []any) error {
	if len(values) != f.rows {
		return fmt.Errorf("dataset: column %q has %d values, frame has %d rows", name, len(values), f.rows)
	}
	if !f.Has(name) {
		f.names = append(f.names, name)
	}
	f.cols[name] = values
	return nil
}

// SetRows writes values into the given row positions of the named column,
// leaving every other row untouched. The column is created if missing.
func (f *Frame) SetRows(name string, rows []int, values []any) error {
	if len(rows) != len(values) {
		return fmt.Errorf("dataset: %d rows selected for %d values in %q", len(rows), len(values), name)
	}
	f.Ensure(name)
	col := f.cols[name]
	for i, r := range rows {
		if r < 0 || r >= f.rows {
			return fmt.Errorf("dataset: row %d out of range [0,%d)", r, f.rows)
		}
		col[r] = values[i]
	}
	return nil
}

// Subset returns a new frame containing copies of the given rows in order.
func (f *Frame) Subset(rows []int) *Frame {
	out := New(len(rows))
	for _, name := range f.names {
		src := f.cols[name]
		dst := make([]any, len(rows))
		for i, r := range rows {
			dst[i] = src[r]
		}
		out.names = append(out.names, name)
		out.cols[name] = dst
	}
	return out
}

// Slice returns a new frame holding rows [start, end).
func (f *Frame) Slice(start, end int) *Frame {
	start = max(0, min(start, f.rows))
	end = max(start, min(end, f.rows))
	out := New(end - start)
	for _, name := range f.names {
		out.names = append(out.names, name)
		out.cols[name] = slices.Clone(f.cols[name][start:end])
	}
	return out
}

// Append adds the rows of other to f. Both frames must have the same
// columns; an empty, column-less f adopts other's layout.
func (f *Frame) Append(other *Frame) error {
	if other == nil {
		return nil
	}
	if len(f.names) == 0 && f.rows == 0 {
		for _, name := range other.names {
			f.names = append(f.names, name)
			f.cols[name] = slices.Clone(other.cols[name])
		}
		f.rows = other.rows
		return nil
	}
	if !slices.Equal(f.names, other.names) {
		return fmt.Errorf("dataset: cannot append frame with columns %v to %v", other.names, f.names)
	}
	for _, name := range f.names {
		f.cols[name] = append(f.cols[name], other.cols[name]...)
	}
	f.rows += other.rows
	return nil
}

// Drop removes the named columns. Unknown names are ignored.
func (f *Frame) Drop(names ...string) {
	for _, name := range names {
		if !f.Has(name) {
			continue
		}
		delete(f.cols, name)
		f.names = slices.DeleteFunc(f.names, func(n string) bool { return n == name })
	}
}

// Shuffle permutes rows in place, keeping columns aligned.
func (f *Frame) Shuffle(rng *rand.Rand) {
	perm := rng.Perm(f.rows)
	for _, name := range f.names {
		src := f.cols[name]
		dst := make([]any, f.rows)
		for i, p := range perm {
			dst[i] = src[p]
		}
		f.cols[name] = dst
	}
}

// Row returns row i as a column-name keyed map.
func (f *Frame) Row(i int) map[string]any {
	row := make(map[string]any, len(f.names))
	for _, name := range f.names {
		row[name] = f.cols[name][i]
	}
	return row
}

// Values returns row i as a slice ordered like Columns().
func (f *Frame) Values(i int) []any {
	vals := make([]any, len(f.names))
	for j, name := range f.names {
		vals[j] = f.cols[name][i]
	}
	return vals
}

// Records returns every row as an ordered record.
func (f *Frame) Records() []Record {
	out := make([]Record, f.rows)
	for i := range out {
		out[i] = Record{names: f.names, values: f.Values(i)}
	}
	return out
}

// CellCount returns the total number of populated cell slots (rows times
// columns), used to check row alignment.
func (f *Frame) CellCount() int {
	n := 0
	for _, name := range f.names {
		n += len(f.cols[name])
	}
	return n
}
