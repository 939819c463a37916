// Package schema describes the ordered, typed columns of a table or view.
package schema

import (
	"fmt"
	"strings"
	"sync/atomic"

	"livedb/pkg/dberror"
	"livedb/pkg/types"
)

// Column describes one named, typed column.
type Column struct {
	Name     string
	Type     types.Type
	Nullable bool
}

func (c Column) String() string {
	if c.Nullable {
		return fmt.Sprintf("%s %s NULL", c.Name, c.Type)
	}
	return fmt.Sprintf("%s %s NOT NULL", c.Name, c.Type)
}

// Schema is an ordered list of uniquely named columns.
//
// A Schema starts mutable and is frozen the first time a view attaches to the
// table that owns it. Column lookups never change after construction, so the
// frozen flag is the only mutable state and is safe to read concurrently.
type Schema struct {
	columns []Column
	index   map[string]int
	frozen  atomic.Bool
}

// New creates a Schema from the given columns.
//
// Parameters:
//   - columns: the columns in order; names must be non-empty and unique
//
// Returns:
//   - *Schema: newly created schema
//   - error: SchemaViolation if a name is empty or repeated, or a type is invalid
func New(columns ...Column) (*Schema, error) {
	s := &Schema{
		columns: make([]Column, len(columns)),
		index:   make(map[string]int, len(columns)),
	}
	copy(s.columns, columns)

	for i, c := range s.columns {
		if c.Name == "" {
			return nil, dberror.SchemaViolation("column %d has an empty name", i)
		}
		if c.Type == types.NullType || c.Type > types.DateTimeType {
			return nil, dberror.SchemaViolation("column %q has invalid type %v", c.Name, c.Type)
		}
		if _, dup := s.index[c.Name]; dup {
			return nil, dberror.SchemaViolation("duplicate column %q", c.Name)
		}
		s.index[c.Name] = i
	}
	return s, nil
}

// MustNew is New for schemas known to be valid, such as literals in tests.
func MustNew(columns ...Column) *Schema {
	s, err := New(columns...)
	if err != nil {
		panic(err)
	}
	return s
}

// Len returns the number of columns.
func (s *Schema) Len() int {
	return len(s.columns)
}

// Column returns the i-th column definition.
func (s *Schema) Column(i int) Column {
	return s.columns[i]
}

// Columns returns a copy of the column definitions.
func (s *Schema) Columns() []Column {
	out := make([]Column, len(s.columns))
	copy(out, s.columns)
	return out
}

// Names returns the column names in order.
func (s *Schema) Names() []string {
	out := make([]string, len(s.columns))
	for i, c := range s.columns {
		out[i] = c.Name
	}
	return out
}

// Index returns the position of the named column.
//
// Parameters:
//   - name: column name, matched exactly
//
// Returns:
//   - int: zero-based column position, or -1
//   - bool: whether the column exists
func (s *Schema) Index(name string) (int, bool) {
	i, ok := s.index[name]
	if !ok {
		return -1, false
	}
	return i, true
}

// Lookup is Index returning a ColumnNotFound error instead of a bool.
func (s *Schema) Lookup(name string) (int, error) {
	i, ok := s.index[name]
	if !ok {
		return -1, dberror.ColumnNotFound(name)
	}
	return i, nil
}

// Freeze marks the schema immutable. It is idempotent.
func (s *Schema) Freeze() {
	s.frozen.Store(true)
}

// Frozen reports whether a view has attached to the owning table.
func (s *Schema) Frozen() bool {
	return s.frozen.Load()
}

// With returns a new, unfrozen schema with col appended.
func (s *Schema) With(col Column) (*Schema, error) {
	return New(append(s.Columns(), col)...)
}

// Check validates a single value against the column's type and nullability.
func (c Column) Check(v types.Value) error {
	if v.IsNull() {
		if !c.Nullable {
			return dberror.SchemaViolation("column %q is not nullable", c.Name)
		}
		return nil
	}
	if v.Type() != c.Type {
		return dberror.SchemaViolation("column %q expects %v, got %v", c.Name, c.Type, v.Type())
	}
	return nil
}

// CheckValue validates a single value against column i.
func (s *Schema) CheckValue(i int, v types.Value) error {
	return s.columns[i].Check(v)
}

// Validate checks that row has one value per column and that every value
// matches its column's type and nullability.
//
// Parameters:
//   - row: values in schema order
//
// Returns:
//   - error: SchemaViolation describing the first offending column, or nil
func (s *Schema) Validate(row types.Row) error {
	if len(row) != len(s.columns) {
		return dberror.SchemaViolation("row has %d values, schema has %d columns", len(row), len(s.columns))
	}
	for i, v := range row {
		if err := s.CheckValue(i, v); err != nil {
			return err
		}
	}
	return nil
}

// RowFromRecord orders a name-addressed record into a Row. Columns missing
// from the record become Null, which Validate then rejects for non-nullable
// columns. Names the schema does not know are rejected.
func (s *Schema) RowFromRecord(rec types.Record) (types.Row, error) {
	for name := range rec {
		if _, ok := s.index[name]; !ok {
			return nil, dberror.SchemaViolation("unknown column %q", name)
		}
	}
	row := make(types.Row, len(s.columns))
	for i, c := range s.columns {
		v, ok := rec[c.Name]
		if !ok && !c.Nullable {
			return nil, dberror.SchemaViolation("missing required column %q", c.Name)
		}
		row[i] = v
	}
	if err := s.Validate(row); err != nil {
		return nil, err
	}
	return row, nil
}

// Record converts a row in schema order into a name-addressed Record.
func (s *Schema) Record(row types.Row) types.Record {
	rec := make(types.Record, len(s.columns))
	for i, c := range s.columns {
		if i < len(row) {
			rec[c.Name] = row[i]
		}
	}
	return rec
}

func (s *Schema) String() string {
	parts := make([]string, len(s.columns))
	for i, c := range s.columns {
		parts[i] = c.String()
	}
	return "(" + strings.Join(parts, ", ") + ")"
}
