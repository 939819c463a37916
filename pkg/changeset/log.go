package changeset

// Log is an append-only list of changesets addressed by sequence number.
//
// Sequence numbers are dense: the changeset at position i of the retained
// slice has Seq base+i. Consumers remember a cursor (the next Seq they have
// not seen) and the owner compacts entries every consumer has passed.
// Log is not safe for concurrent use; the owning table guards it.
type Log struct {
	base uint64
	sets []Changeset
}

// Append records entries as the next changeset and returns it.
func (l *Log) Append(entries []Entry) Changeset {
	cs := Changeset{Seq: l.End(), Entries: entries}
	l.sets = append(l.sets, cs)
	return cs
}

// Base is the oldest sequence number still retained.
func (l *Log) Base() uint64 { return l.base }

// End is the sequence number the next changeset will get. A consumer whose
// cursor equals End is fully caught up.
func (l *Log) End() uint64 { return l.base + uint64(len(l.sets)) }

// Len is the number of retained changesets.
func (l *Log) Len() int { return len(l.sets) }

// Since returns the changesets with Seq >= cursor. It reports false when
// some of them were already compacted away, in which case the consumer
// cannot catch up incrementally.
func (l *Log) Since(cursor uint64) ([]Changeset, bool) {
	if cursor < l.base {
		return nil, false
	}
	if cursor >= l.End() {
		return nil, true
	}
	return l.sets[cursor-l.base:], true
}

// Compact drops changesets with Seq < upTo.
func (l *Log) Compact(upTo uint64) {
	if upTo <= l.base {
		return
	}
	if upTo > l.End() {
		upTo = l.End()
	}
	n := int(upTo - l.base)
	clear(l.sets[:n])
	l.sets = append(l.sets[:0], l.sets[n:]...)
	l.base = upTo
}
