package table

import "livedb/pkg/storage/sequence"

// SyncMode controls when registered views see a mutation.
type SyncMode int

const (
	// Immediate syncs every registered view right after each mutation.
	Immediate SyncMode = iota
	// Deferred only marks views stale; they catch up on Sync, on their next
	// read, or on Propagate.
	Deferred
)

func (m SyncMode) String() string {
	if m == Deferred {
		return "deferred"
	}
	return "immediate"
}

// ConflictPolicy controls what a mutation does when the table is busy.
type ConflictPolicy int

const (
	// Wait blocks until the write lock is free.
	Wait ConflictPolicy = iota
	// FailFast returns ConcurrentMutationConflict instead of blocking.
	FailFast
)

type options struct {
	storage   sequence.Kind
	interning bool
	mode      SyncMode
	conflict  ConflictPolicy
	limit     int
}

func defaultOptions() options {
	return options{
		storage: sequence.Array,
		mode:    Immediate,
		limit:   4,
	}
}

// Option configures a Table at construction.
type Option func(*options)

// WithStorage picks the sequence backend for every column and for sorted
// views built on the table. Array suits append-heavy tables; Tiered suits
// frequent inserts and deletes in the middle.
func WithStorage(kind sequence.Kind) Option {
	return func(o *options) { o.storage = kind }
}

// WithInterning stores string columns as ids in a per-table interner.
func WithInterning(on bool) Option {
	return func(o *options) { o.interning = on }
}

// WithSyncMode sets when registered views are synced.
func WithSyncMode(mode SyncMode) Option {
	return func(o *options) { o.mode = mode }
}

// WithConflictPolicy sets the behaviour of a mutation that finds the table locked.
func WithConflictPolicy(p ConflictPolicy) Option {
	return func(o *options) { o.conflict = p }
}

// WithPropagationLimit bounds how many views Propagate syncs concurrently.
func WithPropagationLimit(n int) Option {
	return func(o *options) {
		if n > 0 {
			o.limit = n
		}
	}
}
