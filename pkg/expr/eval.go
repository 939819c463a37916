package expr

import (
	"livedb/pkg/schema"
	"livedb/pkg/types"
)

// Predicate reports whether a row, in the compiled schema's order, matches.
type Predicate func(row types.Row) bool

// Compile binds e to sch. Unknown columns fail with ColumnNotFound.
func Compile(e Expr, sch *schema.Schema) (Predicate, error) {
	switch n := e.(type) {
	case Compare:
		i, err := sch.Lookup(n.Column)
		if err != nil {
			return nil, err
		}
		return func(row types.Row) bool {
			return compare(row[i], n.Op, n.Literal)
		}, nil

	case IsNull:
		i, err := sch.Lookup(n.Column)
		if err != nil {
			return nil, err
		}
		if n.Negated {
			return func(row types.Row) bool { return !row[i].IsNull() }, nil
		}
		return func(row types.Row) bool { return row[i].IsNull() }, nil

	case And:
		l, r, err := compilePair(n.Left, n.Right, sch)
		if err != nil {
			return nil, err
		}
		return func(row types.Row) bool { return l(row) && r(row) }, nil

	case Or:
		l, r, err := compilePair(n.Left, n.Right, sch)
		if err != nil {
			return nil, err
		}
		return func(row types.Row) bool { return l(row) || r(row) }, nil

	case Not:
		inner, err := Compile(n.Inner, sch)
		if err != nil {
			return nil, err
		}
		return func(row types.Row) bool { return !inner(row) }, nil
	}
	panic("expr: unknown node")
}

func compilePair(a, b Expr, sch *schema.Schema) (Predicate, Predicate, error) {
	l, err := Compile(a, sch)
	if err != nil {
		return nil, nil, err
	}
	r, err := Compile(b, sch)
	if err != nil {
		return nil, nil, err
	}
	return l, r, nil
}

// CompileString parses and compiles in one step.
func CompileString(input string, sch *schema.Schema) (Predicate, error) {
	e, err := Parse(input)
	if err != nil {
		return nil, err
	}
	return Compile(e, sch)
}

// compare applies SQL-style rules: anything compared with Null is false,
// ints and floats compare numerically, bools only support equality, and
// values of unrelated types never match. NaN is unordered, so it only
// satisfies !=.
func compare(v types.Value, op types.Predicate, lit types.Value) bool {
	if !types.Comparable(v, lit) {
		return false
	}
	if v.IsNaN() || lit.IsNaN() {
		return op == types.NotEqual
	}
	if v.Type() == types.BoolType && op != types.Equals && op != types.NotEqual {
		return false
	}
	return op.Holds(types.Compare(v, lit))
}
