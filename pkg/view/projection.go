package view

import (
	"livedb/pkg/dberror"
	"livedb/pkg/schema"
	"livedb/pkg/types"
)

// Projection exposes a subset of its source's columns, in the requested
// order. It holds no rows and is always Synced.
type Projection struct {
	Base
	src    Source
	schema *schema.Schema
	cols   []int
}

// NewProjection selects columns from src. Unknown columns fail with
// ColumnNotFound and repeated ones with SchemaViolation.
func NewProjection(src Source, name string, columns []string) (*Projection, error) {
	p := &Projection{src: src}
	if err := p.init(name, KindProjection); err != nil {
		return nil, err
	}
	if len(columns) == 0 {
		return nil, dberror.SchemaViolation("projection %q selects no columns", name).At("NewProjection", "Projection")
	}

	parent := src.Schema()
	defs := make([]schema.Column, len(columns))
	p.cols = make([]int, len(columns))
	for i, col := range columns {
		c, err := parent.Lookup(col)
		if err != nil {
			return nil, dberror.Wrap(err, dberror.CodeColumnNotFound, "NewProjection", "Projection")
		}
		p.cols[i] = c
		defs[i] = parent.Column(c)
	}

	sch, err := schema.New(defs...)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSchemaViolation, "NewProjection", "Projection")
	}
	p.schema = sch
	p.state = Synced
	return p, nil
}

func (p *Projection) Schema() *schema.Schema { return p.schema }

func (p *Projection) Len() (int, error) { return p.src.Len() }

func (p *Projection) Row(i int) (types.Row, error) {
	row, err := p.src.Row(i)
	if err != nil {
		return nil, err
	}
	out := make(types.Row, len(p.cols))
	for j, c := range p.cols {
		out[j] = row[c]
	}
	return out, nil
}

func (p *Projection) Value(i int, column string) (types.Value, error) {
	return valueOf(p, i, column)
}
