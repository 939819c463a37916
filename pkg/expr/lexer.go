package expr

import (
	"strings"
	"unicode"
)

// keywords maps upper-cased keywords to their token types.
var keywords = map[string]TokenType{
	"AND":   AND,
	"OR":    OR,
	"NOT":   NOT,
	"IS":    IS,
	"NULL":  NULL,
	"TRUE":  TRUE,
	"FALSE": FALSE,
}

// escapes maps the character after a backslash inside a string literal.
var escapes = map[byte]byte{
	'n':  '\n',
	't':  '\t',
	'\\': '\\',
	'\'': '\'',
	'"':  '"',
}

// Lexer splits a filter expression into tokens. Unlike identifiers and
// string contents, keywords are matched case-insensitively.
type Lexer struct {
	input  string
	pos    int
	length int
}

// NewLexer creates a Lexer over input.
func NewLexer(input string) *Lexer {
	return &Lexer{input: input, length: len(input)}
}

// NextToken scans and returns the next token, or EOF at the end of input.
func (l *Lexer) NextToken() Token {
	l.skipWhitespace()

	if l.pos >= l.length {
		return Token{Type: EOF, Position: l.pos}
	}

	start := l.pos
	ch := l.input[l.pos]

	switch {
	case ch == '(':
		l.pos++
		return Token{Type: LPAREN, Value: "(", Position: start}
	case ch == ')':
		l.pos++
		return Token{Type: RPAREN, Value: ")", Position: start}
	case ch == '=' || ch == '<' || ch == '>' || ch == '!':
		return l.readOperator(start)
	case ch == '\'' || ch == '"':
		return l.readString(start)
	case ch == '-' && l.pos+1 < l.length && (isDigit(l.input[l.pos+1]) || l.input[l.pos+1] == '.'):
		l.pos++
		return l.readNumber(start)
	case isDigit(ch):
		return l.readNumber(start)
	case unicode.IsLetter(rune(ch)) || ch == '_':
		return l.readIdentifier(start)
	default:
		l.pos++
		return Token{Type: INVALID, Value: string(ch), Position: start}
	}
}

func isDigit(ch byte) bool {
	return ch >= '0' && ch <= '9'
}

func (l *Lexer) skipWhitespace() {
	for l.pos < l.length && unicode.IsSpace(rune(l.input[l.pos])) {
		l.pos++
	}
}

// readOperator reads ==, =, !=, <, <=, > or >=. A lone '!' is INVALID.
func (l *Lexer) readOperator(start int) Token {
	ch := l.input[l.pos]
	l.pos++
	if l.pos < l.length && l.input[l.pos] == '=' {
		l.pos++
		return Token{Type: OPERATOR, Value: string(ch) + "=", Position: start}
	}
	if ch == '!' {
		return Token{Type: INVALID, Value: "!", Position: start}
	}
	return Token{Type: OPERATOR, Value: string(ch), Position: start}
}

// readString reads a quoted literal. An unterminated string is INVALID.
func (l *Lexer) readString(start int) Token {
	quote := l.input[l.pos]
	l.pos++

	var b strings.Builder
	for l.pos < l.length {
		ch := l.input[l.pos]
		switch {
		case ch == quote:
			l.pos++
			return Token{Type: STRING, Value: b.String(), Position: start}
		case ch == '\\' && l.pos+1 < l.length:
			next := l.input[l.pos+1]
			if esc, ok := escapes[next]; ok {
				b.WriteByte(esc)
			} else {
				b.WriteByte(next)
			}
			l.pos += 2
		default:
			b.WriteByte(ch)
			l.pos++
		}
	}
	return Token{Type: INVALID, Value: l.input[start:], Position: start}
}

// readNumber reads an integer or decimal literal; the sign, if any, has
// already been consumed and is part of the token value.
func (l *Lexer) readNumber(start int) Token {
	isFloat := false
	for l.pos < l.length {
		ch := l.input[l.pos]
		if ch == '.' && !isFloat {
			isFloat = true
		} else if !isDigit(ch) {
			break
		}
		l.pos++
	}
	if isFloat {
		return Token{Type: FLOAT, Value: l.input[start:l.pos], Position: start}
	}
	return Token{Type: INT, Value: l.input[start:l.pos], Position: start}
}

func (l *Lexer) readIdentifier(start int) Token {
	for l.pos < l.length {
		ch := rune(l.input[l.pos])
		if !unicode.IsLetter(ch) && !unicode.IsDigit(ch) && ch != '_' {
			break
		}
		l.pos++
	}
	word := l.input[start:l.pos]
	if tt, ok := keywords[strings.ToUpper(word)]; ok {
		return Token{Type: tt, Value: word, Position: start}
	}
	return Token{Type: IDENTIFIER, Value: word, Position: start}
}
