package sequence

import (
	"fmt"
	"testing"
)

// BenchmarkFrontInsert measures inserting at the front, the worst case for
// Array and the case Tiered exists for.
func BenchmarkFrontInsert(b *testing.B) {
	sizes := []int{1_000, 10_000, 100_000}

	for name, mk := range backends() {
		for _, size := range sizes {
			b.Run(fmt.Sprintf("%s/%d", name, size), func(b *testing.B) {
				s := mk()
				for i := 0; i < size; i++ {
					s.Append(i)
				}

				b.ResetTimer()
				for i := 0; i < b.N; i++ {
					s.Insert(0, i)
					s.Remove(s.Len() - 1)
				}
			})
		}
	}
}

// BenchmarkRandomGet measures positional reads.
func BenchmarkRandomGet(b *testing.B) {
	const size = 100_000

	for name, mk := range backends() {
		b.Run(name, func(b *testing.B) {
			s := mk()
			for i := 0; i < size; i++ {
				s.Append(i)
			}

			b.ResetTimer()
			sum := 0
			for i := 0; i < b.N; i++ {
				sum += s.Get((i * 7919) % size)
			}
			_ = sum
		})
	}
}
