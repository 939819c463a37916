// Package view implements derived, read-only datasets over tables.
//
// Filter, Sorted and Aggregate views register with their parent table and
// maintain their state incrementally from its changesets. Projection and
// Computed views are stateless and evaluate every read against their source.
// Join views materialize at build time and are rebuilt on request.
//
// Views reference their parent tables weakly: a view never keeps a table
// alive, and once the table is dropped every read fails with DanglingParent.
package view

import (
	"log/slog"
	"sync"

	"livedb/pkg/dberror"
	"livedb/pkg/logging"
	"livedb/pkg/schema"
	"livedb/pkg/types"
)

// Kind identifies the view variant.
type Kind int

const (
	KindFilter Kind = iota
	KindProjection
	KindComputed
	KindSorted
	KindJoin
	KindAggregate
)

func (k Kind) String() string {
	switch k {
	case KindFilter:
		return "filter"
	case KindProjection:
		return "projection"
	case KindComputed:
		return "computed"
	case KindSorted:
		return "sorted"
	case KindJoin:
		return "join"
	case KindAggregate:
		return "aggregate"
	default:
		return "unknown"
	}
}

// State is where a view stands relative to its parents.
type State int

const (
	// Building is the state until the first build completes.
	Building State = iota
	// Synced views reflect every parent change they were notified of.
	Synced
	// Stale views have changesets queued that can be applied incrementally.
	Stale
	// Dirty views must be rebuilt from their parents.
	Dirty
)

func (s State) String() string {
	switch s {
	case Building:
		return "building"
	case Synced:
		return "synced"
	case Stale:
		return "stale"
	case Dirty:
		return "dirty"
	default:
		return "unknown"
	}
}

// View is the read surface shared by every view kind. The set of
// implementations is closed to this package.
type View interface {
	Name() string
	Kind() Kind
	State() State
	Schema() *schema.Schema
	Len() (int, error)
	Row(i int) (types.Row, error)
	Value(i int, column string) (types.Value, error)

	isView()
}

// Syncer is implemented by views that can catch up with their parents.
type Syncer interface {
	Sync() error
}

// Refresher is implemented by views that can be rebuilt from scratch.
type Refresher interface {
	Refresh() error
}

// Source is anything a stateless view can read rows from: a table wrapped
// with Of, or another view.
type Source interface {
	Name() string
	Schema() *schema.Schema
	Len() (int, error)
	Row(i int) (types.Row, error)
}

// Base carries the identity and state every view kind shares.
type Base struct {
	name   string
	kind   Kind
	mu     sync.Mutex
	state  State
	logger *slog.Logger
}

func (b *Base) init(name string, kind Kind) error {
	if name == "" {
		return dberror.SchemaViolation("view name cannot be empty").At("New", kind.String())
	}
	b.name = name
	b.kind = kind
	b.state = Building
	b.logger = logging.WithView(name, kind.String())
	return nil
}

// Name returns the view name.
func (b *Base) Name() string { return b.name }

// Kind returns the view variant.
func (b *Base) Kind() Kind { return b.kind }

// State returns the current state.
func (b *Base) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

func (b *Base) isView() {}

// valueOf resolves a named cell through v's schema and Row.
func valueOf(v View, i int, column string) (types.Value, error) {
	c, err := v.Schema().Lookup(column)
	if err != nil {
		return types.Null(), dberror.Wrap(err, dberror.CodeColumnNotFound, "Value", v.Kind().String())
	}
	row, err := v.Row(i)
	if err != nil {
		return types.Null(), err
	}
	return row[c], nil
}

func checkIndex(i, n int, op string, kind Kind) error {
	if i < 0 || i >= n {
		return dberror.IndexOutOfRange(i, n).At(op, kind.String())
	}
	return nil
}
