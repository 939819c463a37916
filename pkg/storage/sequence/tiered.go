package sequence

const minChunkBits = 3

// ring is one fixed-capacity chunk. Logical slot j lives at buf[(head+j)&mask].
type ring[T any] struct {
	buf  []T
	head int
	n    int
}

func newRing[T any](capacity int) *ring[T] {
	return &ring[T]{buf: make([]T, capacity)}
}

func (r *ring[T]) mask() int  { return len(r.buf) - 1 }
func (r *ring[T]) full() bool { return r.n == len(r.buf) }

func (r *ring[T]) slot(j int) int { return (r.head + j) & r.mask() }

func (r *ring[T]) pushFront(v T) {
	r.head = (r.head - 1) & r.mask()
	r.buf[r.head] = v
	r.n++
}

func (r *ring[T]) pushBack(v T) {
	r.buf[r.slot(r.n)] = v
	r.n++
}

func (r *ring[T]) popFront() T {
	var zero T
	v := r.buf[r.head]
	r.buf[r.head] = zero
	r.head = (r.head + 1) & r.mask()
	r.n--
	return v
}

func (r *ring[T]) popBack() T {
	var zero T
	r.n--
	s := r.slot(r.n)
	v := r.buf[s]
	r.buf[s] = zero
	return v
}

// insertAt shifts whichever side of j is shorter. The ring must not be full.
func (r *ring[T]) insertAt(j int, v T) {
	if j < r.n/2 {
		r.head = (r.head - 1) & r.mask()
		for k := 0; k < j; k++ {
			r.buf[r.slot(k)] = r.buf[r.slot(k+1)]
		}
	} else {
		for k := r.n; k > j; k-- {
			r.buf[r.slot(k)] = r.buf[r.slot(k-1)]
		}
	}
	r.buf[r.slot(j)] = v
	r.n++
}

func (r *ring[T]) removeAt(j int) T {
	var zero T
	v := r.buf[r.slot(j)]
	if j < r.n/2 {
		for k := j; k > 0; k-- {
			r.buf[r.slot(k)] = r.buf[r.slot(k-1)]
		}
		r.buf[r.head] = zero
		r.head = (r.head + 1) & r.mask()
	} else {
		for k := j; k < r.n-1; k++ {
			r.buf[r.slot(k)] = r.buf[r.slot(k+1)]
		}
		r.buf[r.slot(r.n-1)] = zero
	}
	r.n--
	return v
}

// TieredSequence is a Sequence over rotated fixed-capacity chunks.
//
// Every chunk except the last holds exactly 1<<bits elements, which is what
// makes Get a shift and a mask. Chunk capacity follows √N: the structure is
// rebuilt with a larger or smaller chunk when the chunk count leaves
// [C/4, 4C].
type TieredSequence[T any] struct {
	chunks []*ring[T]
	bits   uint
	n      int
}

// NewTiered returns an empty TieredSequence.
func NewTiered[T any]() *TieredSequence[T] {
	return &TieredSequence[T]{bits: minChunkBits}
}

func (t *TieredSequence[T]) Len() int { return t.n }

func (t *TieredSequence[T]) chunkCap() int { return 1 << t.bits }

func (t *TieredSequence[T]) locate(i int) (*ring[T], int) {
	return t.chunks[i>>t.bits], i & (t.chunkCap() - 1)
}

func (t *TieredSequence[T]) Get(i int) T {
	checkIndex(i, t.n)
	c, j := t.locate(i)
	return c.buf[c.slot(j)]
}

func (t *TieredSequence[T]) Set(i int, v T) {
	checkIndex(i, t.n)
	c, j := t.locate(i)
	c.buf[c.slot(j)] = v
}

func (t *TieredSequence[T]) Append(v T) {
	t.Insert(t.n, v)
}

func (t *TieredSequence[T]) Insert(i int, v T) {
	checkInsert(i, t.n)

	if t.n == len(t.chunks)*t.chunkCap() {
		t.chunks = append(t.chunks, newRing[T](t.chunkCap()))
	}

	k := i >> t.bits
	j := i & (t.chunkCap() - 1)
	c := t.chunks[k]

	if !c.full() {
		c.insertAt(j, v)
	} else {
		carry := c.popBack()
		c.insertAt(j, v)
		for k++; ; k++ {
			next := t.chunks[k]
			if !next.full() {
				next.pushFront(carry)
				break
			}
			spill := next.popBack()
			next.pushFront(carry)
			carry = spill
		}
	}
	t.n++
	t.rebalance()
}

func (t *TieredSequence[T]) Remove(i int) T {
	checkIndex(i, t.n)

	k := i >> t.bits
	v := t.chunks[k].removeAt(i & (t.chunkCap() - 1))
	for k++; k < len(t.chunks); k++ {
		t.chunks[k-1].pushBack(t.chunks[k].popFront())
	}
	if last := t.chunks[len(t.chunks)-1]; last.n == 0 {
		t.chunks[len(t.chunks)-1] = nil
		t.chunks = t.chunks[:len(t.chunks)-1]
	}
	t.n--
	t.rebalance()
	return v
}

func (t *TieredSequence[T]) rebalance() {
	c := t.chunkCap()
	switch {
	case len(t.chunks) > 4*c:
		t.retier(t.bits + 1)
	case t.bits > minChunkBits && len(t.chunks) < c/4:
		t.retier(t.bits - 1)
	}
}

// retier rebuilds all chunks at capacity 1<<bits with zero rotation.
func (t *TieredSequence[T]) retier(bits uint) {
	items := Collect[T](t)
	t.bits = bits
	c := t.chunkCap()
	t.chunks = make([]*ring[T], 0, (len(items)+c-1)/c)
	for start := 0; start < len(items); start += c {
		r := newRing[T](c)
		r.n = copy(r.buf, items[start:min(start+c, len(items))])
		t.chunks = append(t.chunks, r)
	}
}
