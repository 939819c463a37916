package table

import (
	"context"
	"time"

	"golang.org/x/sync/errgroup"

	"livedb/pkg/changeset"
	"livedb/pkg/dberror"
	"livedb/pkg/logging"
	"livedb/pkg/types"
)

// Reader is a read-only view of a table used inside Snapshot. Its methods do
// no locking and no bounds checking beyond what the caller has established.
type Reader interface {
	Len() int
	Row(i int) types.Row
	Value(i, col int) types.Value
	// Since returns the changesets at or after cursor, or false when the log
	// no longer reaches back that far.
	Since(cursor uint64) ([]changeset.Changeset, bool)
	// End is the cursor of a reader that has seen everything.
	End() uint64
	Version() uint64
}

type reader struct{ t *Table }

func (r reader) Len() int                     { return r.t.n }
func (r reader) Row(i int) types.Row          { return r.t.row(i) }
func (r reader) Value(i, col int) types.Value { return r.t.cols[col].Get(i) }
func (r reader) End() uint64                  { return r.t.log.End() }
func (r reader) Version() uint64              { return r.t.version.Load() }

func (r reader) Since(cursor uint64) ([]changeset.Changeset, bool) {
	return r.t.log.Since(cursor)
}

// Snapshot runs fn with the read lock held, so everything fn observes belongs
// to a single table version.
func (t *Table) Snapshot(fn func(r Reader) error) error {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.dropped.Load() {
		return dberror.TableDropped(t.name).At("Snapshot", "Table")
	}
	return fn(reader{t: t})
}

// publish delivers cs to every subscriber. In Immediate mode each one is
// synced right away and the log is compacted afterwards.
func (t *Table) publish(cs changeset.Changeset) {
	subs := t.subscribers()
	for _, s := range subs {
		s.Notify(cs)
	}
	if t.opts.mode != Immediate {
		return
	}
	for _, s := range subs {
		if err := s.Sync(); err != nil {
			logging.WithError(err).Warn("view sync failed", "table", t.name, "seq", cs.Seq)
		}
	}
	t.compact(subs)
}

// compact drops changesets every subscriber has applied. Under FailFast it
// skips the work rather than wait for the lock.
func (t *Table) compact(subs []Subscriber) {
	if t.opts.conflict == FailFast {
		if !t.mu.TryLock() {
			return
		}
	} else {
		t.mu.Lock()
	}
	defer t.mu.Unlock()

	upTo := t.log.End()
	for _, s := range subs {
		if c := s.Cursor(); c < upTo {
			upTo = c
		}
	}
	t.log.Compact(upTo)
}

// PendingChanges returns how many changesets the log still retains.
func (t *Table) PendingChanges() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.log.Len()
}

// ChangesSince returns copies of the retained changesets at or after cursor,
// for consumers outside the view graph such as a sync layer.
func (t *Table) ChangesSince(cursor uint64) ([]changeset.Changeset, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	sets, ok := t.log.Since(cursor)
	if !ok {
		return nil, false
	}
	out := make([]changeset.Changeset, len(sets))
	copy(out, sets)
	return out, true
}

// Propagate syncs every registered view, at most the configured limit at a
// time, and then compacts the log. It returns the first sync error.
func (t *Table) Propagate(ctx context.Context) error {
	if t.dropped.Load() {
		return dberror.TableDropped(t.name).At("Propagate", "Table")
	}

	start := time.Now()
	subs := t.subscribers()

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(t.opts.limit)
	for _, s := range subs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			return s.Sync()
		})
	}
	err := g.Wait()
	t.compact(subs)

	t.logger.Debug("propagated",
		"views", len(subs),
		"retained", t.PendingChanges(),
		"elapsed", time.Since(start))
	return err
}
