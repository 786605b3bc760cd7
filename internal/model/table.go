// Package model holds the tabular result types shared by the processors,
// the exporter and the TUI.
package model

import (
	"sort"
	"strconv"
	"time"
)

// NoDataMarker is the display form of a cell that was never collected.
// "Not collected" is deliberately distinct from a zero value.
const NoDataMarker = "NO DATA"

// Cell is one table value: either a concrete string rendering or the
// explicit no-data state.
type Cell struct {
	value string
	valid bool
}

// NoData returns the marker cell for values that were not collected.
func NoData() Cell { return Cell{} }

// String builds a valid cell from a string.
func String(s string) Cell { return Cell{value: s, valid: true} }

// Int builds a valid cell from an integer.
func Int(n int64) Cell { return Cell{value: strconv.FormatInt(n, 10), valid: true} }

// Float builds a valid cell with two decimal places.
func Float(f float64) Cell { return Cell{value: strconv.FormatFloat(f, 'f', 2, 64), valid: true} }

// Bool builds a valid cell from a bool.
func Bool(b bool) Cell { return Cell{value: strconv.FormatBool(b), valid: true} }

// EpochMillis builds a valid cell from a controller timestamp.
func EpochMillis(ms int64) Cell {
	t := time.UnixMilli(ms).UTC()
	return Cell{value: t.Format("01/02/2006 03:04:05 PM"), valid: true}
}

// HasData reports whether the cell holds a collected value.
func (c Cell) HasData() bool { return c.valid }

// Value returns the rendered value, or "" for a no-data cell.
func (c Cell) Value() string {
	if !c.valid {
		return ""
	}
	return c.value
}

// Display returns the rendered value, or the no-data marker.
func (c Cell) Display() string {
	if !c.valid {
		return NoDataMarker
	}
	return c.value
}

// Row maps column name to cell.
type Row map[string]Cell

// Table is one named result set. Columns keep first-seen order so exports
// stay stable across runs.
type Table struct {
	Name    string
	Columns []string
	Rows    []Row

	seen map[string]struct{}
}

// NewTable returns an empty named table.
func NewTable(name string) *Table {
	return &Table{Name: name, seen: make(map[string]struct{})}
}

// AddColumns registers columns ahead of any row, fixing their order.
func (t *Table) AddColumns(names ...string) {
	for _, n := range names {
		t.addColumn(n)
	}
}

func (t *Table) addColumn(name string) {
	if t.seen == nil {
		t.seen = make(map[string]struct{})
	}
	if _, ok := t.seen[name]; ok {
		return
	}
	t.seen[name] = struct{}{}
	t.Columns = append(t.Columns, name)
}

// AddRow appends a row, registering any unseen columns.
func (t *Table) AddRow(r Row) {
	cols := make([]string, 0, len(r))
	for c := range r {
		cols = append(cols, c)
	}
	sort.Strings(cols)
	for _, c := range cols {
		t.addColumn(c)
	}
	t.Rows = append(t.Rows, r)
}

// Append copies all rows of other into t.
func (t *Table) Append(other *Table) {
	if other == nil {
		return
	}
	for _, r := range other.Rows {
		t.AddRow(r)
	}
}

// Cell returns the value at (row, column); absent columns read as no-data.
func (t *Table) Cell(row int, column string) Cell {
	if row < 0 || row >= len(t.Rows) {
		return NoData()
	}
	c, ok := t.Rows[row][column]
	if !ok {
		return NoData()
	}
	return c
}

// Empty reports whether the table holds no rows.
func (t *Table) Empty() bool { return t == nil || len(t.Rows) == 0 }

// Len returns the row count.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}
