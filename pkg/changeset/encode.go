package changeset

import (
	"github.com/goccy/go-json"

	"livedb/pkg/types"
)

type wireEntry struct {
	Op     string       `json:"op"`
	Index  *int         `json:"index,omitempty"`
	Row    types.Row    `json:"row,omitempty"`
	Column string       `json:"column,omitempty"`
	Old    *types.Value `json:"old,omitempty"`
	New    *types.Value `json:"new,omitempty"`
}

type wireChangeset struct {
	Seq     uint64      `json:"seq"`
	Entries []wireEntry `json:"entries"`
}

// Encode renders changesets as JSON for consumers outside the engine, such as
// a sync layer forwarding deltas to clients. columns names the table's
// columns so updates can be addressed by name.
func Encode(columns []string, sets []Changeset) ([]byte, error) {
	out := make([]wireChangeset, len(sets))
	for i, cs := range sets {
		w := wireChangeset{Seq: cs.Seq, Entries: make([]wireEntry, len(cs.Entries))}
		for j, e := range cs.Entries {
			we := wireEntry{Op: e.Kind.String()}
			if e.Kind != Reset {
				idx := e.Index
				we.Index = &idx
			}
			switch e.Kind {
			case Insert, Delete:
				we.Row = e.Row
			case Update:
				if e.Column < len(columns) {
					we.Column = columns[e.Column]
				}
				old, nv := e.Old, e.New
				we.Old, we.New = &old, &nv
			}
			w.Entries[j] = we
		}
		out[i] = w
	}
	return json.Marshal(out)
}
