// Package sequence implements the fixed-width storage primitive that columns
// and sorted views are built on.
//
// Two backends share one contract:
//
//   - Array keeps a single contiguous slice. Get and Set are O(1); Insert and
//     Remove shift the tail, O(N).
//   - Tiered splits the data into power-of-two sized circular chunks. Every
//     chunk but the last is full, so locating an element is pure arithmetic
//     (O(1)), while Insert and Remove rotate inside one chunk and carry a
//     single element across the rest, O(√N).
//
// Indices outside the valid range are programming errors and panic; callers
// validate user-supplied indices before reaching this layer.
package sequence

import "fmt"

// Kind selects a Sequence backend.
type Kind int

const (
	// Array is tuned for reads and appends.
	Array Kind = iota
	// Tiered is tuned for inserts and deletes in the middle.
	Tiered
)

func (k Kind) String() string {
	switch k {
	case Array:
		return "array"
	case Tiered:
		return "tiered"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Sequence is a logical array of values indexed 0..Len()-1.
type Sequence[T any] interface {
	Len() int
	Get(i int) T
	Set(i int, v T)
	// Insert places v at i, shifting elements at i and after up by one.
	// i may equal Len().
	Insert(i int, v T)
	// Remove deletes and returns the element at i.
	Remove(i int) T
	Append(v T)
}

// New returns an empty Sequence using the requested backend.
func New[T any](kind Kind) Sequence[T] {
	if kind == Tiered {
		return NewTiered[T]()
	}
	return NewArray[T](0)
}

// Collect copies the contents of s into a new slice.
func Collect[T any](s Sequence[T]) []T {
	out := make([]T, s.Len())
	for i := range out {
		out[i] = s.Get(i)
	}
	return out
}

func checkIndex(i, n int) {
	if i < 0 || i >= n {
		panic(fmt.Sprintf("sequence: index %d out of range [0, %d)", i, n))
	}
}

func checkInsert(i, n int) {
	if i < 0 || i > n {
		panic(fmt.Sprintf("sequence: insert position %d out of range [0, %d]", i, n))
	}
}
