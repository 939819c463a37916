package view

import (
	"errors"
	"weak"

	"livedb/pkg/dberror"
	"livedb/pkg/schema"
	"livedb/pkg/table"
	"livedb/pkg/types"
)

// parentRef is a weak reference to a parent table.
type parentRef struct {
	ptr  weak.Pointer[table.Table]
	name string
}

func refTo(t *table.Table) parentRef {
	return parentRef{ptr: weak.Make(t), name: t.Name()}
}

// get returns the live parent, or DanglingParent once it has been dropped or
// collected.
func (p parentRef) get() (*table.Table, error) {
	t := p.ptr.Value()
	if t == nil || t.Dropped() {
		return nil, dberror.DanglingParent(p.name)
	}
	return t, nil
}

// tableSource adapts a table to Source without keeping it alive.
type tableSource struct {
	parent parentRef
	schema *schema.Schema
}

// Of wraps t as a Source for Projection and Computed views. The table's
// schema is frozen from then on.
func Of(t *table.Table) Source {
	sch := t.Schema()
	sch.Freeze()
	return &tableSource{parent: refTo(t), schema: sch}
}

func (s *tableSource) Name() string           { return s.parent.name }
func (s *tableSource) Schema() *schema.Schema { return s.schema }

func (s *tableSource) Len() (int, error) {
	t, err := s.parent.get()
	if err != nil {
		return 0, err
	}
	return t.Len(), nil
}

func (s *tableSource) Row(i int) (types.Row, error) {
	t, err := s.parent.get()
	if err != nil {
		return nil, err
	}
	row, err := t.Row(i)
	if errors.Is(err, dberror.ErrTableDropped) {
		return nil, dberror.DanglingParent(s.parent.name)
	}
	return row, err
}
