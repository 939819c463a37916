package table

import (
	"fmt"

	"github.com/RoaringBitmap/roaring"

	"livedb/pkg/changeset"
	"livedb/pkg/dberror"
	"livedb/pkg/schema"
	"livedb/pkg/storage/column"
	"livedb/pkg/storage/interner"
	"livedb/pkg/types"
)

// lockWrite acquires the write lock according to the conflict policy.
func (t *Table) lockWrite(op string) error {
	if t.dropped.Load() {
		return dberror.TableDropped(t.name).At(op, "Table")
	}
	if t.opts.conflict == FailFast {
		if !t.mu.TryLock() {
			return dberror.MutationConflict(t.name).At(op, "Table")
		}
	} else {
		t.mu.Lock()
	}
	if t.dropped.Load() {
		t.mu.Unlock()
		return dberror.TableDropped(t.name).At(op, "Table")
	}
	return nil
}

// commit records entries and bumps the version. Called with the write lock held.
func (t *Table) commit(entries []changeset.Entry) changeset.Changeset {
	cs := t.log.Append(entries)
	t.version.Add(1)
	return cs
}

// finish releases the write lock and delivers cs to subscribers.
func (t *Table) finish(cs changeset.Changeset) {
	t.mu.Unlock()
	t.publish(cs)
}

// mustStore panics on a column write failure, which cannot happen once the
// row has passed schema validation.
func mustStore(err error) {
	if err != nil {
		panic("table: validated write rejected: " + err.Error())
	}
}

func (t *Table) insertAt(i int, row types.Row) {
	for c, col := range t.cols {
		mustStore(col.Insert(i, row[c]))
	}
	t.n++
}

// AppendRow adds one row at the end.
func (t *Table) AppendRow(row types.Row) error {
	if err := t.lockWrite("AppendRow"); err != nil {
		return err
	}
	if err := t.schema.Validate(row); err != nil {
		t.mu.Unlock()
		return dberror.Wrap(err, dberror.CodeSchemaViolation, "AppendRow", "Table")
	}

	row = row.Clone()
	idx := t.n
	t.insertAt(idx, row)
	t.finish(t.commit([]changeset.Entry{changeset.InsertEntry(idx, row)}))
	return nil
}

// AppendRecord adds one row given by column name. Unknown names and missing
// non-nullable columns fail with SchemaViolation.
func (t *Table) AppendRecord(rec types.Record) error {
	row, err := t.Schema().RowFromRecord(rec)
	if err != nil {
		return dberror.Wrap(err, dberror.CodeSchemaViolation, "AppendRecord", "Table")
	}
	return t.AppendRow(row)
}

// AppendRows adds rows at the end as one batch. Every row is validated
// before any is stored, so either all rows are committed or none are.
//
// Returns:
//   - int: number of rows appended
//   - error: SchemaViolation naming the first bad row
func (t *Table) AppendRows(rows []types.Row) (int, error) {
	if err := t.lockWrite("AppendRows"); err != nil {
		return 0, err
	}
	for i, row := range rows {
		if err := t.schema.Validate(row); err != nil {
			t.mu.Unlock()
			e := dberror.Wrap(err, dberror.CodeSchemaViolation, "AppendRows", "Table")
			e.Hint = "no rows were appended"
			if e.Detail != "" {
				e.Detail = fmt.Sprintf("row %d: %s", i, e.Detail)
			}
			return 0, e
		}
	}
	if len(rows) == 0 {
		t.mu.Unlock()
		return 0, nil
	}

	entries := make([]changeset.Entry, len(rows))
	for i, row := range rows {
		row = row.Clone()
		idx := t.n
		t.insertAt(idx, row)
		entries[i] = changeset.InsertEntry(idx, row)
	}
	t.finish(t.commit(entries))
	return len(rows), nil
}

// InsertRow places row at index i, shifting rows at i and after down by one.
// i may equal Len().
func (t *Table) InsertRow(i int, row types.Row) error {
	if err := t.lockWrite("InsertRow"); err != nil {
		return err
	}
	if i < 0 || i > t.n {
		n := t.n
		t.mu.Unlock()
		return dberror.IndexOutOfRange(i, n).At("InsertRow", "Table")
	}
	if err := t.schema.Validate(row); err != nil {
		t.mu.Unlock()
		return dberror.Wrap(err, dberror.CodeSchemaViolation, "InsertRow", "Table")
	}

	row = row.Clone()
	t.insertAt(i, row)
	t.finish(t.commit([]changeset.Entry{changeset.InsertEntry(i, row)}))
	return nil
}

func (t *Table) removeAt(i int) types.Row {
	old := make(types.Row, len(t.cols))
	for c, col := range t.cols {
		old[c] = col.Remove(i)
	}
	t.n--
	return old
}

// DeleteRow removes row i and returns it.
func (t *Table) DeleteRow(i int) (types.Row, error) {
	if err := t.lockWrite("DeleteRow"); err != nil {
		return nil, err
	}
	if i < 0 || i >= t.n {
		n := t.n
		t.mu.Unlock()
		return nil, dberror.IndexOutOfRange(i, n).At("DeleteRow", "Table")
	}

	old := t.removeAt(i)
	t.finish(t.commit([]changeset.Entry{changeset.DeleteEntry(i, old)}))
	return old.Clone(), nil
}

// DeleteRows removes every row whose index is in rows, as one batch. Rows are
// removed from the highest index down, so each entry's index is valid at the
// time it is applied.
func (t *Table) DeleteRows(rows *roaring.Bitmap) (int, error) {
	if err := t.lockWrite("DeleteRows"); err != nil {
		return 0, err
	}
	if rows == nil || rows.IsEmpty() {
		t.mu.Unlock()
		return 0, nil
	}
	if maxIdx := int(rows.Maximum()); maxIdx >= t.n {
		n := t.n
		t.mu.Unlock()
		return 0, dberror.IndexOutOfRange(maxIdx, n).At("DeleteRows", "Table")
	}

	entries := make([]changeset.Entry, 0, rows.GetCardinality())
	it := rows.ReverseIterator()
	for it.HasNext() {
		i := int(it.Next())
		entries = append(entries, changeset.DeleteEntry(i, t.removeAt(i)))
	}
	t.finish(t.commit(entries))
	return len(entries), nil
}

// SetValue overwrites one cell.
func (t *Table) SetValue(i int, columnName string, v types.Value) error {
	if err := t.lockWrite("SetValue"); err != nil {
		return err
	}
	if i < 0 || i >= t.n {
		n := t.n
		t.mu.Unlock()
		return dberror.IndexOutOfRange(i, n).At("SetValue", "Table")
	}
	c, ok := t.schema.Index(columnName)
	if !ok {
		t.mu.Unlock()
		return dberror.ColumnNotFound(columnName).At("SetValue", "Table")
	}
	if err := t.schema.CheckValue(c, v); err != nil {
		t.mu.Unlock()
		return dberror.Wrap(err, dberror.CodeSchemaViolation, "SetValue", "Table")
	}

	old := t.cols[c].Get(i)
	mustStore(t.cols[c].Set(i, v))
	entry := changeset.UpdateEntry(i, c, old, v, t.row(i))
	t.finish(t.commit([]changeset.Entry{entry}))
	return nil
}

// Truncate removes every row. Views over the table see a Reset and rebuild.
func (t *Table) Truncate() error {
	if err := t.lockWrite("Truncate"); err != nil {
		return err
	}
	removed := t.n
	if t.interner != nil {
		t.interner = interner.New()
	}
	t.cols = t.newColumns(t.schema)
	t.n = 0
	cs := t.commit([]changeset.Entry{changeset.ResetEntry()})
	t.logger.Debug("table truncated", "rows", removed)
	t.finish(cs)
	return nil
}

// AddColumn appends a column to the schema, filling existing rows with def.
// It fails with SchemaViolation once a view has attached to the table.
func (t *Table) AddColumn(col schema.Column, def types.Value) error {
	if err := t.lockWrite("AddColumn"); err != nil {
		return err
	}
	defer t.mu.Unlock()

	if t.schema.Frozen() {
		return dberror.SchemaViolation("schema of %q is frozen by an attached view", t.name).
			At("AddColumn", "Table").
			WithHint("add columns before creating views")
	}
	if err := col.Check(def); err != nil {
		return dberror.Wrap(err, dberror.CodeSchemaViolation, "AddColumn", "Table")
	}
	wider, err := t.schema.With(col)
	if err != nil {
		return dberror.Wrap(err, dberror.CodeSchemaViolation, "AddColumn", "Table")
	}

	c := column.New(col, t.opts.storage, t.interner)
	for i := 0; i < t.n; i++ {
		mustStore(c.Append(def))
	}
	t.schema = wider
	t.cols = append(t.cols, c)
	t.version.Add(1)
	return nil
}
