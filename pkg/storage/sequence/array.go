package sequence

import "slices"

// ArraySequence is a Sequence over one contiguous slice.
type ArraySequence[T any] struct {
	data []T
}

// NewArray returns an empty ArraySequence with room for capacity elements.
func NewArray[T any](capacity int) *ArraySequence[T] {
	return &ArraySequence[T]{data: make([]T, 0, capacity)}
}

func (a *ArraySequence[T]) Len() int { return len(a.data) }

func (a *ArraySequence[T]) Get(i int) T {
	checkIndex(i, len(a.data))
	return a.data[i]
}

func (a *ArraySequence[T]) Set(i int, v T) {
	checkIndex(i, len(a.data))
	a.data[i] = v
}

func (a *ArraySequence[T]) Insert(i int, v T) {
	checkInsert(i, len(a.data))
	a.data = slices.Insert(a.data, i, v)
}

func (a *ArraySequence[T]) Remove(i int) T {
	checkIndex(i, len(a.data))
	v := a.data[i]
	a.data = slices.Delete(a.data, i, i+1)
	return v
}

func (a *ArraySequence[T]) Append(v T) {
	a.data = append(a.data, v)
}
