package expr

import (
	"strconv"

	"livedb/pkg/dberror"
	"livedb/pkg/types"
)

var operators = map[string]types.Predicate{
	"=":  types.Equals,
	"==": types.Equals,
	"!=": types.NotEqual,
	"<":  types.LessThan,
	"<=": types.LessThanOrEqual,
	">":  types.GreaterThan,
	">=": types.GreaterThanOrEqual,
}

// Parser is a recursive-descent parser over the filter grammar:
//
//	expr       := or
//	or         := and ( OR and )*
//	and        := not ( AND not )*
//	not        := NOT not | primary
//	primary    := '(' expr ')' | comparison
//	comparison := IDENT op literal | IDENT IS [NOT] NULL
type Parser struct {
	lexer   *Lexer
	current Token
}

// Parse parses a complete filter expression.
func Parse(input string) (Expr, error) {
	p := &Parser{lexer: NewLexer(input)}
	p.advance()

	e, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.current.Type != EOF {
		return nil, p.errorf("unexpected %s %q", p.current.Type, p.current.Value)
	}
	return e, nil
}

func (p *Parser) advance() {
	p.current = p.lexer.NextToken()
}

func (p *Parser) errorf(format string, args ...any) error {
	e := dberror.InvalidExpression(format, args...).At("Parse", "Expr")
	e.Detail += " at position " + strconv.Itoa(p.current.Position)
	return e
}

func (p *Parser) parseOr() (Expr, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.current.Type == OR {
		p.advance()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseAnd() (Expr, error) {
	left, err := p.parseNot()
	if err != nil {
		return nil, err
	}
	for p.current.Type == AND {
		p.advance()
		right, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		left = And{Left: left, Right: right}
	}
	return left, nil
}

func (p *Parser) parseNot() (Expr, error) {
	if p.current.Type == NOT {
		p.advance()
		inner, err := p.parseNot()
		if err != nil {
			return nil, err
		}
		return Not{Inner: inner}, nil
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() (Expr, error) {
	if p.current.Type == LPAREN {
		p.advance()
		e, err := p.parseOr()
		if err != nil {
			return nil, err
		}
		if p.current.Type != RPAREN {
			return nil, p.errorf("expected ')'")
		}
		p.advance()
		return e, nil
	}
	return p.parseComparison()
}

func (p *Parser) parseComparison() (Expr, error) {
	if p.current.Type != IDENTIFIER {
		return nil, p.errorf("expected column name, got %s %q", p.current.Type, p.current.Value)
	}
	column := p.current.Value
	p.advance()

	if p.current.Type == IS {
		p.advance()
		negated := false
		if p.current.Type == NOT {
			negated = true
			p.advance()
		}
		if p.current.Type != NULL {
			return nil, p.errorf("expected NULL after IS")
		}
		p.advance()
		return IsNull{Column: column, Negated: negated}, nil
	}

	if p.current.Type != OPERATOR {
		return nil, p.errorf("expected comparison operator, got %s %q", p.current.Type, p.current.Value)
	}
	op := operators[p.current.Value]
	p.advance()

	lit, err := p.parseLiteral()
	if err != nil {
		return nil, err
	}
	return Compare{Column: column, Op: op, Literal: lit}, nil
}

func (p *Parser) parseLiteral() (types.Value, error) {
	tok := p.current
	var v types.Value

	switch tok.Type {
	case INT:
		n, err := strconv.ParseInt(tok.Value, 10, 64)
		if err != nil {
			return v, p.errorf("bad integer %q", tok.Value)
		}
		v = types.Int64(n)
	case FLOAT:
		f, err := strconv.ParseFloat(tok.Value, 64)
		if err != nil {
			return v, p.errorf("bad number %q", tok.Value)
		}
		v = types.Float64(f)
	case STRING:
		v = types.String(tok.Value)
	case TRUE:
		v = types.Bool(true)
	case FALSE:
		v = types.Bool(false)
	case NULL:
		v = types.Null()
	default:
		return v, p.errorf("expected literal value, got %s %q", tok.Type, tok.Value)
	}
	p.advance()
	return v, nil
}
