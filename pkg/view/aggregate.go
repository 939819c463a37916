package view

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"

	"livedb/pkg/aggregation"
	"livedb/pkg/changeset"
	"livedb/pkg/dberror"
	"livedb/pkg/schema"
	"livedb/pkg/table"
	"livedb/pkg/types"
)

// group is one output row of an aggregate view. states holds one entry per
// source column, shared by every function over that column.
type group struct {
	key    types.Row
	id     string
	rows   int
	states []*aggregation.GroupState
}

// measure is a resolved aggregation.Spec. src indexes Aggregate.sources and
// is -1 for a row count, which reads group.rows.
type measure struct {
	col int
	src int
	fn  aggregation.Func
}

// source is a parent column feeding one GroupState per group. track is set
// when any function over the column needs the sorted values.
type source struct {
	col   int
	track bool
}

// Aggregate groups a table's rows by key columns and maintains one or more
// aggregate functions per group. Groups are ordered by key with Null first,
// so incremental maintenance and a rebuild produce identical output.
type Aggregate struct {
	live
	schema   *schema.Schema
	groupBy  []int
	measures []measure
	sources  []source
	groups   map[string]*group
	ordered  []*group
}

// NewAggregate creates an aggregate view over t.
//
// Parameters:
//   - groupBy: key columns; empty means a single group over all rows
//   - specs: output columns; an empty Column with Count counts rows, and an
//     empty Name is derived from the function and column
//
// Returns:
//   - *Aggregate: the built view
//   - error: ColumnNotFound, InvalidPercentile, or SchemaViolation for a
//     non-numeric column under anything but Count
func NewAggregate(t *table.Table, name string, groupBy []string, specs []aggregation.Spec) (*Aggregate, error) {
	a := &Aggregate{groups: make(map[string]*group)}
	if err := a.init(name, KindAggregate); err != nil {
		return nil, err
	}
	if len(specs) == 0 {
		return nil, dberror.SchemaViolation("aggregate %q has no functions", name).At("NewAggregate", "Aggregate")
	}

	parent := t.Schema()
	out := make([]schema.Column, 0, len(groupBy)+len(specs))
	for _, g := range groupBy {
		c, err := parent.Lookup(g)
		if err != nil {
			return nil, dberror.Wrap(err, dberror.CodeColumnNotFound, "NewAggregate", "Aggregate")
		}
		a.groupBy = append(a.groupBy, c)
		out = append(out, parent.Column(c))
	}

	for _, sp := range specs {
		m, err := resolveMeasure(parent, sp)
		if err != nil {
			return nil, err
		}
		a.measures = append(a.measures, a.bind(m))
		out = append(out, schema.Column{
			Name:     outputName(sp),
			Type:     sp.Func.ResultType(),
			Nullable: sp.Func.Op != aggregation.Count && sp.Func.Op != aggregation.Sum,
		})
	}

	sch, err := schema.New(out...)
	if err != nil {
		return nil, dberror.Wrap(err, dberror.CodeSchemaViolation, "NewAggregate", "Aggregate")
	}
	a.schema = sch

	if err := a.attach(t, a); err != nil {
		return nil, err
	}
	return a, nil
}

func resolveMeasure(parent *schema.Schema, sp aggregation.Spec) (measure, error) {
	if err := sp.Func.Validate(); err != nil {
		return measure{}, dberror.Wrap(err, dberror.CodeInvalidPercentile, "NewAggregate", "Aggregate")
	}
	if sp.Column == "" {
		if sp.Func.Op != aggregation.Count {
			return measure{}, dberror.SchemaViolation("%s needs a column", sp.Func).At("NewAggregate", "Aggregate")
		}
		return measure{col: -1, src: -1, fn: sp.Func}, nil
	}

	c, err := parent.Lookup(sp.Column)
	if err != nil {
		return measure{}, dberror.Wrap(err, dberror.CodeColumnNotFound, "NewAggregate", "Aggregate")
	}
	if !parent.Column(c).Type.IsNumeric() && !sp.Func.AcceptsNonNumeric() {
		return measure{}, dberror.SchemaViolation("%s over non-numeric column %q", sp.Func, sp.Column).
			At("NewAggregate", "Aggregate")
	}
	return measure{col: c, fn: sp.Func}, nil
}

// bind points m at the source for its column, creating it on first use.
func (a *Aggregate) bind(m measure) measure {
	if m.col < 0 {
		return m
	}
	for i := range a.sources {
		if a.sources[i].col == m.col {
			a.sources[i].track = a.sources[i].track || m.fn.NeedsValues()
			m.src = i
			return m
		}
	}
	a.sources = append(a.sources, source{col: m.col, track: m.fn.NeedsValues()})
	m.src = len(a.sources) - 1
	return m
}

// outputName derives a column name such as "sum_amount", "p90_latency" or
// "count" when sp.Name is empty.
func outputName(sp aggregation.Spec) string {
	if sp.Name != "" {
		return sp.Name
	}
	fn := strings.ToLower(sp.Func.Op.String())
	if sp.Func.Op == aggregation.Percentile {
		pct := math.Round(sp.Func.P*100*1e6) / 1e6
		fn = "p" + strconv.FormatFloat(pct, 'f', -1, 64)
	}
	if sp.Column == "" {
		return fn
	}
	return fmt.Sprintf("%s_%s", fn, sp.Column)
}

// Schema is the group-by columns followed by one column per function.
func (a *Aggregate) Schema() *schema.Schema { return a.schema }

// Len returns the number of groups.
func (a *Aggregate) Len() (int, error) {
	var n int
	err := a.read(func(table.Reader) error {
		n = len(a.ordered)
		return nil
	})
	return n, err
}

// Row returns the i-th group: its key followed by the function results.
func (a *Aggregate) Row(i int) (types.Row, error) {
	var row types.Row
	err := a.read(func(table.Reader) error {
		if err := checkIndex(i, len(a.ordered), "Row", a.kind); err != nil {
			return err
		}
		row = a.output(a.ordered[i])
		return nil
	})
	return row, err
}

func (a *Aggregate) Value(i int, column string) (types.Value, error) {
	return valueOf(a, i, column)
}

// Lookup returns the output row of the group with the given key, or false
// when no row has that key.
func (a *Aggregate) Lookup(key ...types.Value) (types.Row, bool, error) {
	var (
		row   types.Row
		found bool
	)
	err := a.read(func(table.Reader) error {
		if g, ok := a.groups[types.KeyOf(key...)]; ok {
			row, found = a.output(g), true
		}
		return nil
	})
	return row, found, err
}

func (a *Aggregate) output(g *group) types.Row {
	row := make(types.Row, 0, len(g.key)+len(a.measures))
	row = append(row, g.key...)
	for _, m := range a.measures {
		if m.src < 0 {
			row = append(row, types.Int64(int64(g.rows)))
			continue
		}
		row = append(row, g.states[m.src].Result(m.fn))
	}
	return row
}

func (a *Aggregate) keyOf(row types.Row) (types.Row, string) {
	key := make(types.Row, len(a.groupBy))
	for i, c := range a.groupBy {
		key[i] = row[c]
	}
	return key, key.Key()
}

// sample extracts the source value of row. It reports false for Null,
// which no function counts. Non-numeric values only reach Count.
func (s source) sample(row types.Row) (float64, bool) {
	v := row[s.col]
	if v.IsNull() {
		return 0, false
	}
	f, _ := v.Float()
	return f, true
}

func compareKeys(a, b types.Row) int {
	for i := range a {
		if c := types.Compare(a[i], b[i]); c != 0 {
			return c
		}
	}
	return 0
}

func (a *Aggregate) position(key types.Row) int {
	return sort.Search(len(a.ordered), func(i int) bool {
		return compareKeys(a.ordered[i].key, key) >= 0
	})
}

func (a *Aggregate) add(row types.Row) {
	key, id := a.keyOf(row)
	g, ok := a.groups[id]
	if !ok {
		g = &group{key: key, id: id, states: make([]*aggregation.GroupState, len(a.sources))}
		for i, src := range a.sources {
			g.states[i] = aggregation.NewGroupState(src.track)
		}
		a.groups[id] = g
		pos := a.position(key)
		a.ordered = append(a.ordered, nil)
		copy(a.ordered[pos+1:], a.ordered[pos:])
		a.ordered[pos] = g
	}

	g.rows++
	for i, src := range a.sources {
		if v, ok := src.sample(row); ok {
			g.states[i].Add(v)
		}
	}
}

func (a *Aggregate) remove(row types.Row) {
	_, id := a.keyOf(row)
	g, ok := a.groups[id]
	if !ok {
		panic(fmt.Sprintf("view: aggregate %q has no group for %v", a.name, row))
	}

	g.rows--
	if g.rows == 0 {
		delete(a.groups, id)
		pos := a.position(g.key)
		a.ordered = append(a.ordered[:pos], a.ordered[pos+1:]...)
		return
	}
	for i, src := range a.sources {
		if v, ok := src.sample(row); ok {
			g.states[i].Remove(v)
		}
	}
}

func (a *Aggregate) size() int { return len(a.ordered) }

func (a *Aggregate) rebuild(r table.Reader) {
	a.groups = make(map[string]*group)
	a.ordered = a.ordered[:0]
	for i, n := 0, r.Len(); i < n; i++ {
		a.add(r.Row(i))
	}
}

func (a *Aggregate) apply(cs changeset.Changeset) {
	for _, e := range cs.Entries {
		switch e.Kind {
		case changeset.Insert:
			a.add(e.Row)
		case changeset.Delete:
			a.remove(e.Row)
		case changeset.Update:
			a.remove(e.OldRow())
			a.add(e.Row)
		}
	}
}

// settle recomputes extrema invalidated by removals with one parent scan.
func (a *Aggregate) settle(r table.Reader) {
	stale := make(map[string]*group)
	for _, g := range a.ordered {
		for _, st := range g.states {
			if st.Stale() {
				stale[g.id] = g
				break
			}
		}
	}
	if len(stale) == 0 {
		return
	}

	values := make(map[string][][]float64, len(stale))
	for i, n := 0, r.Len(); i < n; i++ {
		row := r.Row(i)
		_, id := a.keyOf(row)
		if _, ok := stale[id]; !ok {
			continue
		}
		vals, ok := values[id]
		if !ok {
			vals = make([][]float64, len(a.sources))
			values[id] = vals
		}
		for j, src := range a.sources {
			if v, ok := src.sample(row); ok {
				vals[j] = append(vals[j], v)
			}
		}
	}

	for id, g := range stale {
		vals := values[id]
		for j, st := range g.states {
			if !st.Stale() {
				continue
			}
			var column []float64
			if vals != nil {
				column = vals[j]
			}
			st.Rescan(column)
		}
	}
}
