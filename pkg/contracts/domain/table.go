package domain

import (
	"errors"
	"fmt"
	"sort"
)

var (
	// ErrRaggedTable is returned when columns of a table differ in length
	ErrRaggedTable = errors.New("columns have different lengths")
	// ErrDuplicateColumn is returned when a column name appears twice
	ErrDuplicateColumn = errors.New("duplicate column name")
	// ErrMixedKinds is returned when a column holds values of another kind
	ErrMixedKinds = errors.New("column holds values of mixed kinds")
)

// Column is a named, homogeneous sequence of values.
type Column struct {
	Name   string
	Kind   Kind
	Values []Value
}

// NewColumn builds a column and checks that every value matches kind
func NewColumn(name string, kind Kind, values []Value) (Column, error) {
	for i, v := range values {
		if v.Kind() != kind {
			return Column{}, fmt.Errorf("column %q row %d: %w (%s in %s column)", name, i, ErrMixedKinds, v.Kind(), kind)
		}
	}
	return Column{Name: name, Kind: kind, Values: values}, nil
}

// Len returns the number of values
func (c Column) Len() int { return len(c.Values) }

// Nulls counts missing values
func (c Column) Nulls() int {
	n := 0
	for _, v := range c.Values {
		if v.IsNull() {
			n++
		}
	}
	return n
}

func (c Column) clone() Column {
	values := make([]Value, len(c.Values))
	copy(values, c.Values)
	return Column{Name: c.Name, Kind: c.Kind, Values: values}
}

// NullCount is the number of missing values in one column
type NullCount struct {
	Column string `json:"column"`
	Nulls  int    `json:"nulls"`
}

// Table is an ordered set of equally long columns. A Table is never
// mutated after construction; every transformation returns a new Table.
type Table struct {
	columns []Column
	index   map[string]int
	rows    int
}

// NewTable builds a table. Column slices are copied.
func NewTable(columns ...Column) (*Table, error) {
	t := &Table{
		columns: make([]Column, 0, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	for i, c := range columns {
		if _, dup := t.index[c.Name]; dup {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateColumn, c.Name)
		}
		if i == 0 {
			t.rows = c.Len()
		} else if c.Len() != t.rows {
			return nil, fmt.Errorf("%w: %q has %d rows, expected %d", ErrRaggedTable, c.Name, c.Len(), t.rows)
		}
		t.index[c.Name] = i
		t.columns = append(t.columns, c.clone())
	}
	return t, nil
}

// MustTable is NewTable that panics on error. Intended for fixtures.
func MustTable(columns ...Column) *Table {
	t, err := NewTable(columns...)
	if err != nil {
		panic(err)
	}
	return t
}

// Len returns the number of rows
func (t *Table) Len() int { return t.rows }

// Width returns the number of columns
func (t *Table) Width() int { return len(t.columns) }

// Names returns column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, c := range t.columns {
		names[i] = c.Name
	}
	return names
}

// Has reports whether a column exists
func (t *Table) Has(name string) bool {
	_, ok := t.index[name]
	return ok
}

// Schema returns the set of column names present
func (t *Table) Schema() Schema {
	return NewSchema(t.Names()...)
}

// Column returns a copy of the named column
func (t *Table) Column(name string) (Column, bool) {
	i, ok := t.index[name]
	if !ok {
		return Column{}, false
	}
	return t.columns[i].clone(), true
}

// Columns returns copies of every column in order
func (t *Table) Columns() []Column {
	out := make([]Column, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.clone()
	}
	return out
}

// Value returns one cell. Unknown columns or rows yield a text null.
func (t *Table) Value(name string, row int) Value {
	i, ok := t.index[name]
	if !ok || row < 0 || row >= t.rows {
		return Null(KindText)
	}
	return t.columns[i].Values[row]
}

// Row returns the rendered cells of one row in column order
func (t *Table) Row(row int) []string {
	out := make([]string, len(t.columns))
	for i, c := range t.columns {
		out[i] = c.Values[row].String()
	}
	return out
}

// WithColumn returns a new table with c appended, or replacing the
// column of the same name in place.
func (t *Table) WithColumn(c Column) (*Table, error) {
	cols := t.Columns()
	if i, ok := t.index[c.Name]; ok {
		cols[i] = c
	} else {
		cols = append(cols, c)
	}
	return NewTable(cols...)
}

// SelectRows returns a new table holding the given rows in the given order
func (t *Table) SelectRows(rows []int) *Table {
	cols := make([]Column, len(t.columns))
	for i, c := range t.columns {
		values := make([]Value, len(rows))
		for j, r := range rows {
			values[j] = c.Values[r]
		}
		cols[i] = Column{Name: c.Name, Kind: c.Kind, Values: values}
	}
	out := &Table{columns: cols, index: make(map[string]int, len(cols)), rows: len(rows)}
	for i, c := range cols {
		out.index[c.Name] = i
	}
	return out
}

// Filter keeps the rows for which keep returns true
func (t *Table) Filter(keep func(row int) bool) *Table {
	rows := make([]int, 0, t.rows)
	for r := 0; r < t.rows; r++ {
		if keep(r) {
			rows = append(rows, r)
		}
	}
	return t.SelectRows(rows)
}

// NullCounts returns per-column missing counts in column order
func (t *Table) NullCounts() []NullCount {
	out := make([]NullCount, len(t.columns))
	for i, c := range t.columns {
		out[i] = NullCount{Column: c.Name, Nulls: c.Nulls()}
	}
	return out
}

// Schema is the set of columns a table offers. Components check it once
// instead of probing for optional columns at every call site.
type Schema struct {
	names map[string]struct{}
}

// NewSchema builds a schema from column names
func NewSchema(names ...string) Schema {
	s := Schema{names: make(map[string]struct{}, len(names))}
	for _, n := range names {
		s.names[n] = struct{}{}
	}
	return s
}

// Has reports whether every given column is present
func (s Schema) Has(names ...string) bool {
	for _, n := range names {
		if _, ok := s.names[n]; !ok {
			return false
		}
	}
	return true
}

// Missing returns the given columns that are absent, preserving order
func (s Schema) Missing(names ...string) []string {
	var missing []string
	for _, n := range names {
		if _, ok := s.names[n]; !ok {
			missing = append(missing, n)
		}
	}
	return missing
}

// Names returns the column names sorted alphabetically
func (s Schema) Names() []string {
	out := make([]string, 0, len(s.names))
	for n := range s.names {
		out = append(out, n)
	}
	sort.Strings(out)
	return out
}
