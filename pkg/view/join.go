package view

import (
	"livedb/pkg/dberror"
	"livedb/pkg/join"
	"livedb/pkg/schema"
	"livedb/pkg/table"
	"livedb/pkg/types"
)

// RightPrefix is prepended to the right table's column names in a join. It
// is repeated until the name no longer clashes with an earlier column.
const RightPrefix = "right_"

// Join is the equi-join of two tables, materialized when it is built. It does
// not follow changes: State reports Stale once either table has moved on, and
// Refresh rebuilds it.
type Join struct {
	Base
	left, right         parentRef
	leftCols, rightCols []int
	joinKind            join.Kind
	schema              *schema.Schema
	rightWidth          int

	rows                      []types.Row
	leftVersion, rightVersion uint64
}

// NewJoin joins left and right on leftKeys[i] = rightKeys[i].
//
// Parameters:
//   - left, right: the joined tables; they may be the same table
//   - leftKeys, rightKeys: key column names, pairwise
//   - kind: join.Inner or join.Left
//
// Returns:
//   - *Join: the built view
//   - error: SchemaViolation for empty keys, KeyCountMismatch when the key
//     lists differ in length, ColumnNotFound for an unknown key column
func NewJoin(left, right *table.Table, name string, leftKeys, rightKeys []string, kind join.Kind) (*Join, error) {
	j := &Join{joinKind: kind}
	if err := j.init(name, KindJoin); err != nil {
		return nil, err
	}
	if len(leftKeys) == 0 || len(rightKeys) == 0 {
		return nil, dberror.SchemaViolation("join %q needs at least one key on each side", name).At("NewJoin", "Join")
	}
	if len(leftKeys) != len(rightKeys) {
		return nil, dberror.KeyCountMismatch(len(leftKeys), len(rightKeys)).At("NewJoin", "Join")
	}

	ls, rs := left.Schema(), right.Schema()
	var err error
	if j.leftCols, err = lookupAll(ls, leftKeys); err != nil {
		return nil, err
	}
	if j.rightCols, err = lookupAll(rs, rightKeys); err != nil {
		return nil, err
	}

	cols := ls.Columns()
	used := make(map[string]bool, len(cols)+rs.Len())
	for _, c := range cols {
		used[c.Name] = true
	}
	for _, c := range rs.Columns() {
		c.Name = RightPrefix + c.Name
		for used[c.Name] {
			c.Name = RightPrefix + c.Name
		}
		used[c.Name] = true
		c.Nullable = c.Nullable || kind == join.Left
		cols = append(cols, c)
	}
	if j.schema, err = schema.New(cols...); err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSchemaViolation, "NewJoin", "Join")
	}
	j.rightWidth = rs.Len()

	ls.Freeze()
	rs.Freeze()
	j.left, j.right = refTo(left), refTo(right)

	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.build(); err != nil {
		return nil, err
	}
	return j, nil
}

func lookupAll(sch *schema.Schema, names []string) ([]int, error) {
	out := make([]int, len(names))
	for i, n := range names {
		c, err := sch.Lookup(n)
		if err != nil {
			return nil, dberror.Wrap(err, dberror.CodeColumnNotFound, "NewJoin", "Join")
		}
		out[i] = c
	}
	return out, nil
}

// JoinKind returns whether the view is an inner or left join.
func (j *Join) JoinKind() join.Kind { return j.joinKind }

func (j *Join) Schema() *schema.Schema { return j.schema }

// State reports Stale when either parent changed after the last build.
func (j *Join) State() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state == Synced && j.moved() {
		return Stale
	}
	return j.state
}

func (j *Join) moved() bool {
	l, lerr := j.left.get()
	r, rerr := j.right.get()
	if lerr != nil || rerr != nil {
		return true
	}
	return l.Version() != j.leftVersion || r.Version() != j.rightVersion
}

// Sync rebuilds the join if either parent changed.
func (j *Join) Sync() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.state == Synced && !j.moved() {
		return nil
	}
	return j.build()
}

// Refresh rebuilds the join unconditionally.
func (j *Join) Refresh() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.build()
}

// Len returns the number of joined rows as of the last build.
func (j *Join) Len() (int, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.alive(); err != nil {
		return 0, err
	}
	return len(j.rows), nil
}

// Row returns the i-th joined row as of the last build.
func (j *Join) Row(i int) (types.Row, error) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if err := j.alive(); err != nil {
		return nil, err
	}
	if err := checkIndex(i, len(j.rows), "Row", j.kind); err != nil {
		return nil, err
	}
	return j.rows[i].Clone(), nil
}

func (j *Join) Value(i int, column string) (types.Value, error) {
	return valueOf(j, i, column)
}

func (j *Join) alive() error {
	if _, err := j.left.get(); err != nil {
		return err
	}
	_, err := j.right.get()
	return err
}

// snapshot copies every row of p along with the version they belong to.
func snapshot(p parentRef) ([]types.Row, uint64, error) {
	t, err := p.get()
	if err != nil {
		return nil, 0, err
	}
	var (
		rows    []types.Row
		version uint64
	)
	err = t.Snapshot(func(r table.Reader) error {
		rows = make([]types.Row, r.Len())
		for i := range rows {
			rows[i] = r.Row(i)
		}
		version = r.Version()
		return nil
	})
	if err != nil {
		return nil, 0, dberror.DanglingParent(p.name)
	}
	return rows, version, nil
}

// build must be called with j.mu held. Each side is read under its own
// snapshot, so a self-join never takes the same read lock twice.
func (j *Join) build() error {
	left, lv, err := snapshot(j.left)
	if err != nil {
		return err
	}
	right, rv, err := snapshot(j.right)
	if err != nil {
		return err
	}

	matches := join.Run(j.joinKind, left, right, j.leftCols, j.rightCols)
	rows := make([]types.Row, len(matches))
	for i, m := range matches {
		row := make(types.Row, 0, len(left[m.Left])+j.rightWidth)
		row = append(row, left[m.Left]...)
		if m.Right < 0 {
			row = append(row, make(types.Row, j.rightWidth)...)
		} else {
			row = append(row, right[m.Right]...)
		}
		rows[i] = row
	}

	rebuilt := j.state != Building
	j.rows = rows
	j.leftVersion, j.rightVersion = lv, rv
	j.state = Synced
	j.logger.Debug("view built", "rows", len(rows), "join", j.joinKind.String(), "rebuild", rebuilt)
	return nil
}
