package entity

import (
	"math"
	"time"
)

// ColumnKind is the value type shared by every non-missing cell of a column.
type ColumnKind string

const (
	KindString ColumnKind = "string"
	KindInt    ColumnKind = "int"
	KindFloat  ColumnKind = "float"
	KindBool   ColumnKind = "bool"
	KindTime   ColumnKind = "time"
)

// Column is a named, typed column. A nil entry in Values is a missing value;
// other entries are string, int64, float64, bool or time.Time matching Kind.
type Column struct {
	Name   string
	Kind   ColumnKind
	Values []any
}

// Table is an ordered set of equally long columns.
type Table struct {
	Columns []Column
}

// Len returns the number of rows.
func (t Table) Len() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return len(t.Columns[0].Values)
}

// ColumnNames returns the column names in table order.
func (t Table) ColumnNames() []string {
	names := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		names[i] = c.Name
	}
	return names
}

// Index returns the position of the column named name, or -1.
func (t Table) Index(name string) int {
	for i, c := range t.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}

// Column returns the column named name.
func (t Table) Column(name string) (Column, bool) {
	i := t.Index(name)
	if i < 0 {
		return Column{}, false
	}
	return t.Columns[i], true
}

// Row returns the values of row i in column order.
func (t Table) Row(i int) []any {
	row := make([]any, len(t.Columns))
	for c := range t.Columns {
		row[c] = t.Columns[c].Values[i]
	}
	return row
}

// MoveToFront returns a copy of t whose column at index i comes first; the
// other columns keep their relative order.
func (t Table) MoveToFront(i int) Table {
	cols := make([]Column, 0, len(t.Columns))
	cols = append(cols, t.Columns[i])
	cols = append(cols, t.Columns[:i]...)
	cols = append(cols, t.Columns[i+1:]...)
	return Table{Columns: cols}
}

// Float reads v as a float64. Missing and non-numeric values report false.
func Float(v any) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, !math.IsNaN(val)
	case int64:
		return float64(val), true
	case bool:
		if val {
			return 1, true
		}
		return 0, true
	default:
		return 0, false
	}
}

// Time reads v as a time.Time.
func Time(v any) (time.Time, bool) {
	ts, ok := v.(time.Time)
	return ts, ok
}
