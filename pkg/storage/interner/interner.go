// Package interner maps strings to small reference-counted integer ids so
// that string columns can store fixed-width values.
package interner

import (
	"fmt"
	"sync"
)

// Stats describes the current contents of an Interner.
type Stats struct {
	UniqueStrings   int
	TotalReferences int
}

// Interner is safe for concurrent use. Ids are only meaningful to the
// Interner that issued them.
type Interner struct {
	mu      sync.Mutex
	ids     map[string]uint32
	strings []string
	refs    []uint32
	free    []uint32
}

// New returns an empty Interner.
func New() *Interner {
	return &Interner{ids: make(map[string]uint32)}
}

// Intern returns the id for s and takes one reference on it.
func (in *Interner) Intern(s string) uint32 {
	in.mu.Lock()
	defer in.mu.Unlock()

	if id, ok := in.ids[s]; ok {
		in.refs[id]++
		return id
	}

	var id uint32
	if n := len(in.free); n > 0 {
		id = in.free[n-1]
		in.free = in.free[:n-1]
		in.strings[id] = s
		in.refs[id] = 1
	} else {
		id = uint32(len(in.strings))
		in.strings = append(in.strings, s)
		in.refs = append(in.refs, 1)
	}
	in.ids[s] = id
	return id
}

// Lookup returns the string for a live id.
func (in *Interner) Lookup(id uint32) (string, bool) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if int(id) >= len(in.strings) || in.refs[id] == 0 {
		return "", false
	}
	return in.strings[id], true
}

// MustLookup is Lookup for ids the caller holds a reference on.
func (in *Interner) MustLookup(id uint32) string {
	s, ok := in.Lookup(id)
	if !ok {
		panic(fmt.Sprintf("interner: id %d is not live", id))
	}
	return s
}

// Release drops one reference on id. When the count reaches zero the string
// is forgotten and the id becomes reusable.
func (in *Interner) Release(id uint32) {
	in.mu.Lock()
	defer in.mu.Unlock()

	if int(id) >= len(in.refs) || in.refs[id] == 0 {
		panic(fmt.Sprintf("interner: release of dead id %d", id))
	}
	in.refs[id]--
	if in.refs[id] == 0 {
		delete(in.ids, in.strings[id])
		in.strings[id] = ""
		in.free = append(in.free, id)
	}
}

// Stats reports the number of live strings and the references held on them.
func (in *Interner) Stats() Stats {
	in.mu.Lock()
	defer in.mu.Unlock()

	total := 0
	for _, r := range in.refs {
		total += int(r)
	}
	return Stats{UniqueStrings: len(in.ids), TotalReferences: total}
}
