package expr

// TokenType identifies the lexical class of a Token.
type TokenType int

const (
	IDENTIFIER TokenType = iota
	INT
	FLOAT
	STRING
	TRUE
	FALSE
	NULL

	AND
	OR
	NOT
	IS

	OPERATOR
	LPAREN
	RPAREN

	INVALID
	EOF
)

func (t TokenType) String() string {
	switch t {
	case IDENTIFIER:
		return "IDENTIFIER"
	case INT:
		return "INT"
	case FLOAT:
		return "FLOAT"
	case STRING:
		return "STRING"
	case TRUE:
		return "TRUE"
	case FALSE:
		return "FALSE"
	case NULL:
		return "NULL"
	case AND:
		return "AND"
	case OR:
		return "OR"
	case NOT:
		return "NOT"
	case IS:
		return "IS"
	case OPERATOR:
		return "OPERATOR"
	case LPAREN:
		return "LPAREN"
	case RPAREN:
		return "RPAREN"
	case INVALID:
		return "INVALID"
	case EOF:
		return "EOF"
	default:
		return "UNKNOWN"
	}
}

// Token is one lexeme and where it started in the input.
type Token struct {
	Type     TokenType
	Value    string
	Position int
}
