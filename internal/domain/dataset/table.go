package dataset

import (
	"fmt"
)

var ErrSchemaMismatch = fmt.Errorf("tables do not share a column layout")

// ColumnType is the physical type of a column's values.
type ColumnType string

const (
	String  ColumnType = "string"
	Int8    ColumnType = "int8"
	Int16   ColumnType = "int16"
	Int32   ColumnType = "int32"
	Int64   ColumnType = "int64"
	Float64 ColumnType = "float64"
)

// Column holds one named series. Values are string, int8, int16, int32,
// int64 or float64 according to Type; nil marks a null.
type Column struct {
	Name   string
	Type   ColumnType
	Values []any
}

func (c Column) Len() int { return len(c.Values) }

// Table is an ordered set of equally long columns.
type Table struct {
	Columns []Column
}

// NewTable checks that all columns have the same length.
func NewTable(columns ...Column) (*Table, error) {
	for _, c := range columns[min(1, len(columns)):] {
		if c.Len() != columns[0].Len() {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", c.Name, c.Len(), columns[0].Len())
		}
	}
	return &Table{Columns: columns}, nil
}

func (t *Table) NumRows() int {
	if len(t.Columns) == 0 {
		return 0
	}
	return t.Columns[0].Len()
}

// Column looks up a column by name.
func (t *Table) Column(name string) (Column, bool) {
	for _, c := range t.Columns {
		if c.Name == name {
			return c, true
		}
	}
	return Column{}, false
}

// Slice returns rows [start, end) sharing the underlying value storage.
func (t *Table) Slice(start, end int) *Table {
	out := &Table{Columns: make([]Column, len(t.Columns))}
	for i, c := range t.Columns {
		out.Columns[i] = Column{Name: c.Name, Type: c.Type, Values: c.Values[start:end]}
	}
	return out
}

// Concat stacks tables vertically. All tables must have the same column names
// and types in the same order.
func Concat(tables ...*Table) (*Table, error) {
	if len(tables) == 0 {
		return &Table{}, nil
	}
	head := tables[0]
	out := &Table{Columns: make([]Column, len(head.Columns))}
	for i, c := range head.Columns {
		out.Columns[i] = Column{Name: c.Name, Type: c.Type}
	}
	for n, t := range tables {
		if len(t.Columns) != len(head.Columns) {
			return nil, fmt.Errorf("table %d has %d columns, expected %d: %w", n, len(t.Columns), len(head.Columns), ErrSchemaMismatch)
		}
		for i, c := range t.Columns {
			if c.Name != head.Columns[i].Name || c.Type != head.Columns[i].Type {
				return nil, fmt.Errorf("table %d column %d is %s %s, expected %s %s: %w",
					n, i, c.Name, c.Type, head.Columns[i].Name, head.Columns[i].Type, ErrSchemaMismatch)
			}
			out.Columns[i].Values = append(out.Columns[i].Values, c.Values...)
		}
	}
	return out, nil
}
