// Package table implements root tables: the only directly mutable nodes of
// the view graph.
//
// A Table owns its columns exclusively. Every successful mutation is
// validated in full before any column is touched, appends exactly one
// changeset to the table's log, and then notifies the registered views
// outside the table lock.
package table

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"livedb/pkg/changeset"
	"livedb/pkg/dberror"
	"livedb/pkg/logging"
	"livedb/pkg/schema"
	"livedb/pkg/storage/column"
	"livedb/pkg/storage/interner"
	"livedb/pkg/storage/sequence"
	"livedb/pkg/types"
)

// Subscriber is a view registered for changeset delivery.
type Subscriber interface {
	// Notify is called after a mutation commits, without the table lock held.
	Notify(cs changeset.Changeset)

	// Sync applies everything the subscriber has been notified of.
	Sync() error

	// Cursor is the sequence number of the first changeset the subscriber
	// has not applied yet.
	Cursor() uint64
}

// Table is a named, schema-typed, columnar set of rows.
type Table struct {
	name   string
	opts   options
	logger *slog.Logger

	mu       sync.RWMutex
	schema   *schema.Schema
	cols     []*column.Column
	interner *interner.Interner
	log      changeset.Log
	n        int

	version atomic.Uint64
	dropped atomic.Bool

	subMu sync.Mutex
	subs  []Subscriber
}

// New creates an empty table.
//
// Parameters:
//   - name: table name, used in errors and logs
//   - sch: the table's schema; it is owned by the table from now on
//   - opts: storage backend, interning, sync mode and conflict policy
//
// Returns:
//   - *Table: the new table
//   - error: SchemaViolation if the name is empty or the schema has no columns
func New(name string, sch *schema.Schema, opts ...Option) (*Table, error) {
	if name == "" {
		return nil, dberror.SchemaViolation("table name cannot be empty").At("New", "Table")
	}
	if sch == nil || sch.Len() == 0 {
		return nil, dberror.SchemaViolation("table %q needs at least one column", name).At("New", "Table")
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	t := &Table{
		name:   name,
		opts:   o,
		schema: sch,
		logger: logging.WithTable(name),
	}
	if o.interning {
		t.interner = interner.New()
	}
	t.cols = t.newColumns(sch)

	t.logger.Debug("table created",
		"columns", sch.Len(),
		"storage", o.storage.String(),
		"sync", o.mode.String())
	return t, nil
}

func (t *Table) newColumns(sch *schema.Schema) []*column.Column {
	cols := make([]*column.Column, sch.Len())
	for i := range cols {
		cols[i] = column.New(sch.Column(i), t.opts.storage, t.interner)
	}
	return cols
}

// Name returns the table name.
func (t *Table) Name() string { return t.name }

// Storage returns the sequence backend the table was created with.
func (t *Table) Storage() sequence.Kind { return t.opts.storage }

// SyncMode returns the table's view sync mode.
func (t *Table) SyncMode() SyncMode { return t.opts.mode }

// Version increases by one with every committed mutation.
func (t *Table) Version() uint64 { return t.version.Load() }

// Dropped reports whether Drop has been called.
func (t *Table) Dropped() bool { return t.dropped.Load() }

// Schema returns the current schema.
func (t *Table) Schema() *schema.Schema {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.schema
}

// Len returns the number of rows.
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.n
}

// Row returns a copy of row i.
func (t *Table) Row(i int) (types.Row, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.checkReadable(i, "Row"); err != nil {
		return nil, err
	}
	return t.row(i), nil
}

// Value returns one cell.
func (t *Table) Value(i int, columnName string) (types.Value, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.checkReadable(i, "Value"); err != nil {
		return types.Null(), err
	}
	c, ok := t.schema.Index(columnName)
	if !ok {
		return types.Null(), dberror.ColumnNotFound(columnName).At("Value", "Table")
	}
	return t.cols[c].Get(i), nil
}

// Record returns row i addressed by column name.
func (t *Table) Record(i int) (types.Record, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if err := t.checkReadable(i, "Record"); err != nil {
		return nil, err
	}
	return t.schema.Record(t.row(i)), nil
}

// InternerStats reports string interning usage. Tables created without
// interning report zeros.
func (t *Table) InternerStats() interner.Stats {
	t.mu.RLock()
	defer t.mu.RUnlock()
	if t.interner == nil {
		return interner.Stats{}
	}
	return t.interner.Stats()
}

func (t *Table) checkReadable(i int, op string) error {
	if t.dropped.Load() {
		return dberror.TableDropped(t.name).At(op, "Table")
	}
	if i < 0 || i >= t.n {
		return dberror.IndexOutOfRange(i, t.n).At(op, "Table")
	}
	return nil
}

// row must be called with the lock held.
func (t *Table) row(i int) types.Row {
	r := make(types.Row, len(t.cols))
	for c, col := range t.cols {
		r[c] = col.Get(i)
	}
	return r
}

// Subscribe registers a view for changeset delivery and freezes the schema.
func (t *Table) Subscribe(s Subscriber) {
	t.mu.RLock()
	t.schema.Freeze()
	t.mu.RUnlock()

	t.subMu.Lock()
	defer t.subMu.Unlock()
	t.subs = append(t.subs, s)
}

// Unsubscribe removes a previously registered view.
func (t *Table) Unsubscribe(s Subscriber) {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	for i, sub := range t.subs {
		if sub == s {
			t.subs = append(t.subs[:i], t.subs[i+1:]...)
			return
		}
	}
}

func (t *Table) subscribers() []Subscriber {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	out := make([]Subscriber, len(t.subs))
	copy(out, t.subs)
	return out
}

// Subscribers returns the number of registered views.
func (t *Table) Subscribers() int {
	t.subMu.Lock()
	defer t.subMu.Unlock()
	return len(t.subs)
}

// Drop destroys the table's data. Views over it fail with DanglingParent
// from then on; further mutations fail with TableDropped.
func (t *Table) Drop() {
	t.mu.Lock()
	if t.dropped.Swap(true) {
		t.mu.Unlock()
		return
	}
	t.cols = nil
	t.n = 0
	t.log = changeset.Log{}
	t.mu.Unlock()

	t.subMu.Lock()
	t.subs = nil
	t.subMu.Unlock()

	t.logger.Debug("table dropped")
}
