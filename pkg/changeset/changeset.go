// Package changeset describes the row-level deltas a table emits on every
// mutation, and the per-table log views consume them from.
package changeset

import (
	"livedb/pkg/types"
)

// Kind is the operation an Entry records.
type Kind uint8

const (
	Insert Kind = iota
	Update
	Delete
	// Reset discards everything before it; consumers must rebuild.
	Reset
)

func (k Kind) String() string {
	switch k {
	case Insert:
		return "insert"
	case Update:
		return "update"
	case Delete:
		return "delete"
	case Reset:
		return "reset"
	default:
		return "unknown"
	}
}

// Entry is one row-level change.
//
// Row carries the inserted row for Insert, the removed row for Delete, and
// the row as it is after the change for Update. Column, Old and New are only
// set for Update.
type Entry struct {
	Kind   Kind
	Index  int
	Row    types.Row
	Column int
	Old    types.Value
	New    types.Value
}

func InsertEntry(index int, row types.Row) Entry {
	return Entry{Kind: Insert, Index: index, Row: row}
}

func DeleteEntry(index int, old types.Row) Entry {
	return Entry{Kind: Delete, Index: index, Row: old}
}

func UpdateEntry(index, column int, old, new types.Value, row types.Row) Entry {
	return Entry{Kind: Update, Index: index, Column: column, Old: old, New: new, Row: row}
}

func ResetEntry() Entry {
	return Entry{Kind: Reset}
}

// OldRow reconstructs an Update's row as it was before the change.
func (e Entry) OldRow() types.Row {
	if e.Kind != Update {
		return e.Row
	}
	old := e.Row.Clone()
	old[e.Column] = e.Old
	return old
}

// Changeset is the batch of entries produced by one caller operation.
type Changeset struct {
	Seq     uint64
	Entries []Entry
}

// HasReset reports whether any entry is a Reset.
func (c Changeset) HasReset() bool {
	for _, e := range c.Entries {
		if e.Kind == Reset {
			return true
		}
	}
	return false
}

// IsTailAppend reports whether the changeset only appends rows, in order,
// starting at position start. Such batches can be merged in one pass.
func (c Changeset) IsTailAppend(start int) bool {
	if len(c.Entries) == 0 {
		return false
	}
	for i, e := range c.Entries {
		if e.Kind != Insert || e.Index != start+i {
			return false
		}
	}
	return true
}
