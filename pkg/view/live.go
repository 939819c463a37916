package view

import (
	"errors"
	"sync/atomic"

	"livedb/pkg/changeset"
	"livedb/pkg/dberror"
	"livedb/pkg/table"
)

// maintainer is the kind-specific half of a registered view.
type maintainer interface {
	// rebuild recomputes the whole state from the parent.
	rebuild(r table.Reader)
	// apply patches the state with one changeset.
	apply(cs changeset.Changeset)
	// settle finishes an incremental catch-up, e.g. by rescanning the parent.
	settle(r table.Reader)
	// size is the number of output rows.
	size() int
}

// live is the registration and state machine shared by Filter, Sorted and
// Aggregate. The embedding view supplies the maintainer.
type live struct {
	Base
	parent parentRef
	cursor atomic.Uint64
	impl   maintainer
	self   table.Subscriber
}

// attach registers the view with t and runs the first build.
func (l *live) attach(t *table.Table, self interface {
	table.Subscriber
	maintainer
}) error {
	l.parent = refTo(t)
	l.impl = self
	l.self = self

	t.Subscribe(self)
	l.mu.Lock()
	err := l.within(nil)
	l.mu.Unlock()
	if err != nil {
		t.Unsubscribe(self)
	}
	return err
}

// Notify marks the view Stale, or Dirty when the changeset resets the parent.
func (l *live) Notify(cs changeset.Changeset) {
	l.mu.Lock()
	defer l.mu.Unlock()

	switch {
	case l.state == Building || l.state == Dirty:
	case cs.HasReset():
		l.state = Dirty
	default:
		l.state = Stale
	}
}

// Cursor is the first changeset sequence number the view has not applied.
func (l *live) Cursor() uint64 {
	return l.cursor.Load()
}

// Sync applies queued changesets, or rebuilds a Dirty view.
func (l *live) Sync() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.within(nil)
}

// Refresh rebuilds the view from its parent.
func (l *live) Refresh() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state = Dirty
	return l.within(nil)
}

// Close unregisters the view. A closed view no longer follows its parent.
func (l *live) Close() {
	if t := l.parent.ptr.Value(); t != nil {
		t.Unsubscribe(l.self)
	}
}

// read catches up and then runs fn against the same parent version.
func (l *live) read(fn func(r table.Reader) error) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.within(fn)
}

// within must be called with l.mu held.
func (l *live) within(fn func(r table.Reader) error) error {
	t, err := l.parent.get()
	if err != nil {
		return err
	}
	err = t.Snapshot(func(r table.Reader) error {
		l.catchUp(r)
		if fn == nil {
			return nil
		}
		return fn(r)
	})
	if errors.Is(err, dberror.ErrTableDropped) {
		return dberror.DanglingParent(l.parent.name)
	}
	return err
}

func (l *live) catchUp(r table.Reader) {
	if l.state != Building && l.state != Dirty {
		sets, ok := r.Since(l.cursor.Load())
		if !ok {
			l.logger.Warn("changes compacted past view cursor, rebuilding",
				"cursor", l.cursor.Load())
			l.state = Dirty
		}
		for _, cs := range sets {
			if cs.HasReset() {
				l.state = Dirty
				break
			}
			l.impl.apply(cs)
		}
	}

	if l.state == Building || l.state == Dirty {
		rebuilt := l.state == Dirty
		l.impl.rebuild(r)
		l.logger.Debug("view built", "rows", l.impl.size(), "rebuild", rebuilt)
	} else {
		l.impl.settle(r)
	}
	l.cursor.Store(r.End())
	l.state = Synced
}
