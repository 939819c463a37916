package expr

import (
	"fmt"
	"strconv"

	"livedb/pkg/types"
)

// Expr is a node of a parsed filter expression.
type Expr interface {
	exprNode()
	String() string
}

// Compare is `column op literal`.
type Compare struct {
	Column  string
	Op      types.Predicate
	Literal types.Value
}

// IsNull is `column IS NULL`, or `column IS NOT NULL` when Negated.
type IsNull struct {
	Column  string
	Negated bool
}

type And struct{ Left, Right Expr }
type Or struct{ Left, Right Expr }
type Not struct{ Inner Expr }

func (Compare) exprNode() {}
func (IsNull) exprNode()  {}
func (And) exprNode()     {}
func (Or) exprNode()      {}
func (Not) exprNode()     {}

func (c Compare) String() string {
	lit := c.Literal.String()
	if s, ok := c.Literal.Str(); ok {
		lit = strconv.Quote(s)
	}
	return fmt.Sprintf("%s %s %s", c.Column, c.Op, lit)
}

func (n IsNull) String() string {
	if n.Negated {
		return n.Column + " IS NOT NULL"
	}
	return n.Column + " IS NULL"
}

func (a And) String() string { return "(" + a.Left.String() + " AND " + a.Right.String() + ")" }
func (o Or) String() string  { return "(" + o.Left.String() + " OR " + o.Right.String() + ")" }
func (n Not) String() string { return "NOT " + n.Inner.String() }

// Columns lists the columns e references, in first-seen order without
// duplicates.
func Columns(e Expr) []string {
	var out []string
	seen := map[string]bool{}
	var walk func(Expr)
	walk = func(e Expr) {
		switch n := e.(type) {
		case Compare:
			if !seen[n.Column] {
				seen[n.Column] = true
				out = append(out, n.Column)
			}
		case IsNull:
			if !seen[n.Column] {
				seen[n.Column] = true
				out = append(out, n.Column)
			}
		case And:
			walk(n.Left)
			walk(n.Right)
		case Or:
			walk(n.Left)
			walk(n.Right)
		case Not:
			walk(n.Inner)
		}
	}
	walk(e)
	return out
}
