package table

import (
	"livedb/pkg/aggregation"
	"livedb/pkg/dberror"
	"livedb/pkg/types"
)

// numericColumn resolves a column for the aggregate helpers.
// Must be called with the read lock held.
func (t *Table) numericColumn(name, op string) (int, error) {
	if t.dropped.Load() {
		return -1, dberror.TableDropped(t.name).At(op, "Table")
	}
	c, ok := t.schema.Index(name)
	if !ok {
		return -1, dberror.ColumnNotFound(name).At(op, "Table")
	}
	if !t.schema.Column(c).Type.IsNumeric() {
		return -1, dberror.SchemaViolation("column %q is not numeric", name).At(op, "Table")
	}
	return c, nil
}

// fold accumulates column c the way an aggregate view does, so both paths
// agree to the last bit. Must be called with the read lock held.
func (t *Table) fold(c int) *aggregation.GroupState {
	st := aggregation.NewGroupState(false)
	for i := 0; i < t.n; i++ {
		if f, ok := t.cols[c].Get(i).Float(); ok {
			st.Add(f)
		}
	}
	return st
}

// Sum adds every non-null value of a numeric column exactly. An empty column
// sums to 0.
func (t *Table) Sum(columnName string) (float64, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, err := t.numericColumn(columnName, "Sum")
	if err != nil {
		return 0, err
	}
	return t.fold(c).Sum(), nil
}

// CountNonNull counts the non-null values of any column.
func (t *Table) CountNonNull(columnName string) (int, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.dropped.Load() {
		return 0, dberror.TableDropped(t.name).At("CountNonNull", "Table")
	}
	c, ok := t.schema.Index(columnName)
	if !ok {
		return 0, dberror.ColumnNotFound(columnName).At("CountNonNull", "Table")
	}
	count := 0
	for i := 0; i < t.n; i++ {
		if !t.cols[c].Get(i).IsNull() {
			count++
		}
	}
	return count, nil
}

// Avg returns the mean of the non-null values as Float64, or Null when there
// are none.
func (t *Table) Avg(columnName string) (types.Value, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, err := t.numericColumn(columnName, "Avg")
	if err != nil {
		return types.Null(), err
	}
	return t.fold(c).Result(aggregation.Of(aggregation.Avg)), nil
}

// Min returns the smallest non-null value in the column's own type, or Null.
func (t *Table) Min(columnName string) (types.Value, error) {
	return t.extreme(columnName, "Min", -1)
}

// Max returns the largest non-null value in the column's own type, or Null.
func (t *Table) Max(columnName string) (types.Value, error) {
	return t.extreme(columnName, "Max", 1)
}

func (t *Table) extreme(columnName, op string, sign int) (types.Value, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()

	c, err := t.numericColumn(columnName, op)
	if err != nil {
		return types.Null(), err
	}
	best := types.Null()
	for i := 0; i < t.n; i++ {
		v := t.cols[c].Get(i)
		if v.IsNull() || v.IsNaN() {
			continue
		}
		if best.IsNull() || types.Compare(v, best)*sign > 0 {
			best = v
		}
	}
	return best, nil
}
