package view

import (
	"livedb/pkg/dberror"
	"livedb/pkg/schema"
	"livedb/pkg/types"
)

// ComputeFunc derives a value from a source row. It must be deterministic.
type ComputeFunc func(row types.Row) types.Value

// Computed is its source with one synthesized column appended. The column is
// evaluated on every read.
type Computed struct {
	Base
	src    Source
	schema *schema.Schema
	col    schema.Column
	fn     ComputeFunc
}

// NewComputed appends col to src's columns, computing it with fn.
//
// Returns:
//   - *Computed: the new view
//   - error: SchemaViolation if col's name is already taken or its type is invalid
func NewComputed(src Source, name string, col schema.Column, fn ComputeFunc) (*Computed, error) {
	c := &Computed{src: src, col: col, fn: fn}
	if err := c.init(name, KindComputed); err != nil {
		return nil, err
	}
	sch, err := src.Schema().With(col)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSchemaViolation, "NewComputed", "Computed")
	}
	c.schema = sch
	c.state = Synced
	return c, nil
}

func (c *Computed) Schema() *schema.Schema { return c.schema }

func (c *Computed) Len() (int, error) { return c.src.Len() }

// Row returns the source row plus the computed value. A value that does not
// fit the declared column fails with SchemaViolation.
func (c *Computed) Row(i int) (types.Row, error) {
	row, err := c.src.Row(i)
	if err != nil {
		return nil, err
	}
	v := c.fn(row)
	if err := c.col.Check(v); err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSchemaViolation, "Row", "Computed")
	}
	out := make(types.Row, len(row), len(row)+1)
	copy(out, row)
	return append(out, v), nil
}

func (c *Computed) Value(i int, column string) (types.Value, error) {
	return valueOf(c, i, column)
}
