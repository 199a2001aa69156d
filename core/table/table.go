// Package table provides the in-memory tabular datasets that grouping
// and ranking operate on. A Table pairs an ordered schema with rows of
// core/value cells; helpers cover the row-pipeline operations reports
// need (filter, sort, project, derived columns) without any query
// machinery.
package table

import (
	"sort"

	tberrors "github.com/FocuswithJustin/TallyBook/core/errors"
	"github.com/FocuswithJustin/TallyBook/core/value"
)

// Column describes one schema column.
type Column struct {
	Name string
	Kind value.Kind
}

// Schema is an ordered column list.
type Schema []Column

// Index returns the position of the named column.
func (s Schema) Index(name string) (int, bool) {
	for i, c := range s {
		if c.Name == name {
			return i, true
		}
	}
	return 0, false
}

// Names returns the column names in order.
func (s Schema) Names() []string {
	names := make([]string, len(s))
	for i, c := range s {
		names[i] = c.Name
	}
	return names
}

// Row is one record; cells align with the table schema.
type Row []value.Value

// Table is an immutable-schema, append-only dataset.
type Table struct {
	schema Schema
	rows   []Row
}

// New creates an empty table with the given schema.
func New(schema Schema) *Table {
	s := make(Schema, len(schema))
	copy(s, schema)
	return &Table{schema: s}
}

// Schema returns the table schema.
func (t *Table) Schema() Schema { return t.schema }

// Len returns the row count.
func (t *Table) Len() int { return len(t.rows) }

// Rows returns the backing rows. Callers must not mutate them.
func (t *Table) Rows() []Row { return t.rows }

// Row returns the i-th row.
func (t *Table) Row(i int) Row { return t.rows[i] }

// ColumnIndex returns the position of the named column.
func (t *Table) ColumnIndex(name string) (int, bool) {
	return t.schema.Index(name)
}

// AppendRow adds a row, which must match the schema arity.
func (t *Table) AppendRow(row Row) error {
	if len(row) != len(t.schema) {
		return tberrors.Wrapf(tberrors.ErrInvalidInput,
			"row has %d cells, schema has %d columns", len(row), len(t.schema))
	}
	t.rows = append(t.rows, row)
	return nil
}

// MustAppendRow adds a row and panics on arity mismatch. Intended for
// building fixed datasets.
func (t *Table) MustAppendRow(cells ...value.Value) {
	if err := t.AppendRow(Row(cells)); err != nil {
		panic(err)
	}
}

// Filter returns a new table holding the rows pred accepts. Rows are
// shared, not copied.
func (t *Table) Filter(pred func(Row) bool) *Table {
	out := New(t.schema)
	for _, r := range t.rows {
		if pred(r) {
			out.rows = append(out.rows, r)
		}
	}
	return out
}

// Sort returns a new table with rows ordered by less, stably.
func (t *Table) Sort(less func(a, b Row) bool) *Table {
	out := New(t.schema)
	out.rows = make([]Row, len(t.rows))
	copy(out.rows, t.rows)
	sort.SliceStable(out.rows, func(i, j int) bool {
		return less(out.rows[i], out.rows[j])
	})
	return out
}

// Select projects the named columns into a new table.
func (t *Table) Select(names ...string) (*Table, error) {
	idx := make([]int, len(names))
	schema := make(Schema, len(names))
	for i, name := range names {
		j, ok := t.schema.Index(name)
		if !ok {
			return nil, tberrors.NewUnknownColumn(name, "schema")
		}
		idx[i] = j
		schema[i] = t.schema[j]
	}
	out := New(schema)
	out.rows = make([]Row, len(t.rows))
	for ri, r := range t.rows {
		row := make(Row, len(idx))
		for i, j := range idx {
			row[i] = r[j]
		}
		out.rows[ri] = row
	}
	return out, nil
}

// Derive appends a computed column. fn sees each source row; derived
// cells default to NULL when fn returns the zero Value.
func (t *Table) Derive(col Column, fn func(Row) value.Value) (*Table, error) {
	if col.Name == "" {
		return nil, tberrors.Wrap(tberrors.ErrInvalidInput, "derive: empty column name")
	}
	if _, exists := t.schema.Index(col.Name); exists {
		return nil, tberrors.Wrapf(tberrors.ErrInvalidInput, "derive: column %q already exists", col.Name)
	}
	schema := make(Schema, len(t.schema), len(t.schema)+1)
	copy(schema, t.schema)
	schema = append(schema, col)

	out := New(schema)
	out.rows = make([]Row, len(t.rows))
	for ri, r := range t.rows {
		row := make(Row, len(r), len(r)+1)
		copy(row, r)
		out.rows[ri] = append(row, fn(r))
	}
	return out, nil
}

// Values returns the named column's cells in row order.
func (t *Table) Values(name string) ([]value.Value, error) {
	i, ok := t.schema.Index(name)
	if !ok {
		return nil, tberrors.NewUnknownColumn(name, "schema")
	}
	out := make([]value.Value, len(t.rows))
	for ri, r := range t.rows {
		out[ri] = r[i]
	}
	return out, nil
}
