package view

import (
	"cmp"
	"fmt"
	"slices"
	"sort"

	"livedb/pkg/changeset"
	"livedb/pkg/dberror"
	"livedb/pkg/schema"
	"livedb/pkg/storage/sequence"
	"livedb/pkg/table"
	"livedb/pkg/types"
)

// Order is a sort direction.
type Order int

const (
	Asc Order = iota
	Desc
)

// NullOrder places Null keys independently of the direction.
type NullOrder int

const (
	NullsLast NullOrder = iota
	NullsFirst
)

// SortKey orders rows by one column.
type SortKey struct {
	Column string
	Order  Order
	Nulls  NullOrder
}

type sortKey struct {
	col   int
	desc  bool
	first bool
}

// entry is one row of the sorted permutation: its parent index and a copy
// of its sort key values.
type entry struct {
	parent int
	keys   []types.Value
}

// Sorted presents every row of a table ordered by one or more keys. Ties are
// broken by table index, so the order is total and deterministic.
type Sorted struct {
	live
	schema  *schema.Schema
	keys    []sortKey
	backend sequence.Kind
	seq     sequence.Sequence[entry]
}

// NewSorted creates a sorted view over t. The permutation is stored on the
// table's sequence backend.
func NewSorted(t *table.Table, name string, keys []SortKey) (*Sorted, error) {
	s := &Sorted{}
	if err := s.init(name, KindSorted); err != nil {
		return nil, err
	}
	if len(keys) == 0 {
		return nil, dberror.SchemaViolation("sorted view %q needs at least one key", name).At("NewSorted", "Sorted")
	}

	s.schema = t.Schema()
	s.keys = make([]sortKey, len(keys))
	for i, k := range keys {
		c, err := s.schema.Lookup(k.Column)
		if err != nil {
			return nil, dberror.Wrap(err, dberror.CodeColumnNotFound, "NewSorted", "Sorted")
		}
		s.keys[i] = sortKey{col: c, desc: k.Order == Desc, first: k.Nulls == NullsFirst}
	}
	s.backend = t.Storage()
	s.seq = sequence.New[entry](s.backend)

	if err := s.attach(t, s); err != nil {
		return nil, err
	}
	return s, nil
}

// Schema is the parent's schema.
func (s *Sorted) Schema() *schema.Schema { return s.schema }

// Len returns the number of rows, which always equals the parent's.
func (s *Sorted) Len() (int, error) {
	var n int
	err := s.read(func(table.Reader) error {
		n = s.seq.Len()
		return nil
	})
	return n, err
}

// Row returns the i-th row in sort order.
func (s *Sorted) Row(i int) (types.Row, error) {
	var row types.Row
	err := s.read(func(r table.Reader) error {
		if err := checkIndex(i, s.seq.Len(), "Row", s.kind); err != nil {
			return err
		}
		row = r.Row(s.seq.Get(i).parent)
		return nil
	})
	return row, err
}

func (s *Sorted) Value(i int, column string) (types.Value, error) {
	return valueOf(s, i, column)
}

// ParentIndex returns the table index of the i-th row in sort order.
func (s *Sorted) ParentIndex(i int) (int, error) {
	var p int
	err := s.read(func(table.Reader) error {
		if err := checkIndex(i, s.seq.Len(), "ParentIndex", s.kind); err != nil {
			return err
		}
		p = s.seq.Get(i).parent
		return nil
	})
	return p, err
}

func (s *Sorted) entryFor(parent int, row types.Row) entry {
	keys := make([]types.Value, len(s.keys))
	for i, k := range s.keys {
		keys[i] = row[k.col]
	}
	return entry{parent: parent, keys: keys}
}

func (s *Sorted) compare(a, b entry) int {
	for i, k := range s.keys {
		av, bv := a.keys[i], b.keys[i]
		switch an, bn := av.IsNull(), bv.IsNull(); {
		case an && bn:
			continue
		case an:
			if k.first {
				return -1
			}
			return 1
		case bn:
			if k.first {
				return 1
			}
			return -1
		}
		c := types.Compare(av, bv)
		if k.desc {
			c = -c
		}
		if c != 0 {
			return c
		}
	}
	return cmp.Compare(a.parent, b.parent)
}

// search returns the position of the first entry not less than e.
func (s *Sorted) search(e entry) int {
	return sort.Search(s.seq.Len(), func(i int) bool {
		return s.compare(s.seq.Get(i), e) >= 0
	})
}

func (s *Sorted) insert(e entry) {
	s.seq.Insert(s.search(e), e)
}

func (s *Sorted) remove(e entry) {
	i := s.search(e)
	if i >= s.seq.Len() || s.seq.Get(i).parent != e.parent {
		panic(fmt.Sprintf("view: sorted %q lost row %d", s.name, e.parent))
	}
	s.seq.Remove(i)
}

// shiftFrom moves every parent index >= from by delta. The shift is
// monotonic, so the permutation stays ordered.
func (s *Sorted) shiftFrom(from, delta int) {
	for i, n := 0, s.seq.Len(); i < n; i++ {
		if e := s.seq.Get(i); e.parent >= from {
			e.parent += delta
			s.seq.Set(i, e)
		}
	}
}

func (s *Sorted) touchesKey(col int) bool {
	for _, k := range s.keys {
		if k.col == col {
			return true
		}
	}
	return false
}

func (s *Sorted) size() int { return s.seq.Len() }

func (s *Sorted) rebuild(r table.Reader) {
	n := r.Len()
	all := make([]entry, n)
	for i := range all {
		all[i] = s.entryFor(i, r.Row(i))
	}
	slices.SortFunc(all, s.compare)

	s.seq = sequence.New[entry](s.backend)
	for _, e := range all {
		s.seq.Append(e)
	}
}

func (s *Sorted) apply(cs changeset.Changeset) {
	if len(cs.Entries) > 1 && cs.IsTailAppend(s.seq.Len()) {
		s.mergeTail(cs.Entries)
		return
	}

	for _, e := range cs.Entries {
		switch e.Kind {
		case changeset.Insert:
			s.shiftFrom(e.Index, 1)
			s.insert(s.entryFor(e.Index, e.Row))

		case changeset.Delete:
			s.remove(s.entryFor(e.Index, e.Row))
			s.shiftFrom(e.Index+1, -1)

		case changeset.Update:
			if !s.touchesKey(e.Column) {
				continue
			}
			s.remove(s.entryFor(e.Index, e.OldRow()))
			s.insert(s.entryFor(e.Index, e.Row))
		}
	}
}

// mergeTail merges a batch of rows appended at the end of the parent in one
// pass. Their parent indices exceed every existing one, so nothing shifts.
func (s *Sorted) mergeTail(entries []changeset.Entry) {
	batch := make([]entry, len(entries))
	for i, e := range entries {
		batch[i] = s.entryFor(e.Index, e.Row)
	}
	slices.SortFunc(batch, s.compare)

	old := sequence.Collect(s.seq)
	merged := sequence.New[entry](s.backend)
	i, j := 0, 0
	for i < len(old) || j < len(batch) {
		if j == len(batch) || (i < len(old) && s.compare(old[i], batch[j]) <= 0) {
			merged.Append(old[i])
			i++
		} else {
			merged.Append(batch[j])
			j++
		}
	}
	s.seq = merged
}

func (s *Sorted) settle(table.Reader) {}
