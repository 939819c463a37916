package column

import (
	"livedb/pkg/storage/interner"
	"livedb/pkg/storage/sequence"
	"livedb/pkg/types"
)

// store is the physical half of a column: non-null values only, with nulls
// already filtered out by Column.
type store interface {
	get(i int) types.Value
	set(i int, v types.Value)
	insert(i int, v types.Value)
	remove(i int)
	// zero stores the placeholder used under a null flag.
	zero(i int)
	insertZero(i int)
}

type typedStore[T any] struct {
	seq sequence.Sequence[T]
	c   codec[T]
}

func newTypedStore[T any](kind sequence.Kind, c codec[T]) *typedStore[T] {
	return &typedStore[T]{seq: sequence.New[T](kind), c: c}
}

func (s *typedStore[T]) get(i int) types.Value    { return s.c.decode(s.seq.Get(i)) }
func (s *typedStore[T]) set(i int, v types.Value) { s.seq.Set(i, s.c.encode(v)) }
func (s *typedStore[T]) insert(i int, v types.Value) {
	s.seq.Insert(i, s.c.encode(v))
}
func (s *typedStore[T]) remove(i int) { s.seq.Remove(i) }

func (s *typedStore[T]) zero(i int) {
	var z T
	s.seq.Set(i, z)
}

func (s *typedStore[T]) insertZero(i int) {
	var z T
	s.seq.Insert(i, z)
}

// internedStore keeps string ids. Slots under a null flag hold noID and own
// no reference.
type internedStore struct {
	ids sequence.Sequence[uint32]
	in  *interner.Interner
}

const noID = ^uint32(0)

func (s *internedStore) get(i int) types.Value {
	return types.String(s.in.MustLookup(s.ids.Get(i)))
}

func (s *internedStore) set(i int, v types.Value) {
	str, _ := v.Str()
	id := s.in.Intern(str)
	s.release(s.ids.Get(i))
	s.ids.Set(i, id)
}

func (s *internedStore) insert(i int, v types.Value) {
	str, _ := v.Str()
	s.ids.Insert(i, s.in.Intern(str))
}

func (s *internedStore) remove(i int) {
	s.release(s.ids.Remove(i))
}

func (s *internedStore) zero(i int) {
	s.release(s.ids.Get(i))
	s.ids.Set(i, noID)
}

func (s *internedStore) insertZero(i int) {
	s.ids.Insert(i, noID)
}

func (s *internedStore) release(id uint32) {
	if id != noID {
		s.in.Release(id)
	}
}
