package view

import (
	"slices"
	"sort"

	"github.com/RoaringBitmap/roaring"

	"livedb/pkg/changeset"
	"livedb/pkg/expr"
	"livedb/pkg/schema"
	"livedb/pkg/table"
	"livedb/pkg/types"
)

// Filter holds the rows of a table that satisfy a predicate, in table order.
type Filter struct {
	live
	schema *schema.Schema
	pred   expr.Predicate
	// matches holds parent indices in ascending order.
	matches []int
}

// NewFilter creates a filter view over t. pred must be deterministic.
func NewFilter(t *table.Table, name string, pred expr.Predicate) (*Filter, error) {
	f := &Filter{pred: pred}
	if err := f.init(name, KindFilter); err != nil {
		return nil, err
	}
	f.schema = t.Schema()
	if err := f.attach(t, f); err != nil {
		return nil, err
	}
	return f, nil
}

// NewFilterExpr creates a filter view from an expression such as
// "age >= 18 AND name IS NOT NULL".
func NewFilterExpr(t *table.Table, name, expression string) (*Filter, error) {
	pred, err := expr.CompileString(expression, t.Schema())
	if err != nil {
		return nil, err
	}
	return NewFilter(t, name, pred)
}

// Schema is the parent's schema.
func (f *Filter) Schema() *schema.Schema { return f.schema }

// Len returns the number of matching rows.
func (f *Filter) Len() (int, error) {
	var n int
	err := f.read(func(table.Reader) error {
		n = len(f.matches)
		return nil
	})
	return n, err
}

// Row returns the i-th matching row.
func (f *Filter) Row(i int) (types.Row, error) {
	var row types.Row
	err := f.read(func(r table.Reader) error {
		if err := checkIndex(i, len(f.matches), "Row", f.kind); err != nil {
			return err
		}
		row = r.Row(f.matches[i])
		return nil
	})
	return row, err
}

// Value returns one cell of the i-th matching row.
func (f *Filter) Value(i int, column string) (types.Value, error) {
	return valueOf(f, i, column)
}

// ParentIndex returns the table index of the i-th matching row.
func (f *Filter) ParentIndex(i int) (int, error) {
	var p int
	err := f.read(func(table.Reader) error {
		if err := checkIndex(i, len(f.matches), "ParentIndex", f.kind); err != nil {
			return err
		}
		p = f.matches[i]
		return nil
	})
	return p, err
}

// Matches returns the parent indices of all matching rows.
func (f *Filter) Matches() (*roaring.Bitmap, error) {
	bm := roaring.New()
	err := f.read(func(table.Reader) error {
		for _, p := range f.matches {
			bm.Add(uint32(p))
		}
		return nil
	})
	return bm, err
}

func (f *Filter) size() int { return len(f.matches) }

func (f *Filter) rebuild(r table.Reader) {
	f.matches = f.matches[:0]
	for i, n := 0, r.Len(); i < n; i++ {
		if f.pred(r.Row(i)) {
			f.matches = append(f.matches, i)
		}
	}
}

func (f *Filter) apply(cs changeset.Changeset) {
	for _, e := range cs.Entries {
		switch e.Kind {
		case changeset.Insert:
			i := sort.SearchInts(f.matches, e.Index)
			shift(f.matches[i:], 1)
			if f.pred(e.Row) {
				f.matches = slices.Insert(f.matches, i, e.Index)
			}

		case changeset.Delete:
			i := sort.SearchInts(f.matches, e.Index)
			if i < len(f.matches) && f.matches[i] == e.Index {
				f.matches = slices.Delete(f.matches, i, i+1)
			}
			shift(f.matches[i:], -1)

		case changeset.Update:
			i := sort.SearchInts(f.matches, e.Index)
			present := i < len(f.matches) && f.matches[i] == e.Index
			switch match := f.pred(e.Row); {
			case present && !match:
				f.matches = slices.Delete(f.matches, i, i+1)
			case !present && match:
				f.matches = slices.Insert(f.matches, i, e.Index)
			}
		}
	}
}

func (f *Filter) settle(table.Reader) {}

func shift(idx []int, by int) {
	for i := range idx {
		idx[i] += by
	}
}
