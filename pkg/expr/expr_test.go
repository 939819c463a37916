package expr

import (
	"errors"
	"math"
	"testing"

	"livedb/pkg/dberror"
	"livedb/pkg/schema"
	"livedb/pkg/types"
)

func testSchema() *schema.Schema {
	return schema.MustNew(
		schema.Column{Name: "age", Type: types.Int32Type, Nullable: true},
		schema.Column{Name: "name", Type: types.StringType},
		schema.Column{Name: "score", Type: types.Float64Type, Nullable: true},
		schema.Column{Name: "active", Type: types.BoolType},
	)
}

func testRow() types.Row {
	return types.Row{types.Int32(30), types.String("Alice"), types.Float64(85.5), types.Bool(true)}
}

// ============================================================================
// LEXER TESTS
// ============================================================================

func TestLexerTokens(t *testing.T) {
	l := NewLexer(`age >= -5 and name != 'it\'s' OR x IS not null`)
	want := []struct {
		typ TokenType
		val string
	}{
		{IDENTIFIER, "age"}, {OPERATOR, ">="}, {INT, "-5"}, {AND, "and"},
		{IDENTIFIER, "name"}, {OPERATOR, "!="}, {STRING, "it's"}, {OR, "OR"},
		{IDENTIFIER, "x"}, {IS, "IS"}, {NOT, "not"}, {NULL, "null"}, {EOF, ""},
	}
	for i, w := range want {
		tok := l.NextToken()
		if tok.Type != w.typ || tok.Value != w.val {
			t.Fatalf("token %d = %s %q, want %s %q", i, tok.Type, tok.Value, w.typ, w.val)
		}
	}
}

func TestLexerInvalid(t *testing.T) {
	for _, input := range []string{"!", "'open", "#"} {
		if tok := NewLexer(input).NextToken(); tok.Type != INVALID {
			t.Errorf("NextToken(%q) = %s, want INVALID", input, tok.Type)
		}
	}
}

// ============================================================================
// EVALUATION TESTS
// ============================================================================

func TestEvaluate(t *testing.T) {
	tests := []struct {
		expr string
		want bool
	}{
		{"age > 25", true},
		{"age == 30", true},
		{"age = 30", true},
		{"age < 30", false},
		{"age <= 30.0", true},
		{"score > 85", true},
		{"score >= 85.5", true},
		{"name = 'Alice'", true},
		{`name = "Bob"`, false},
		{"name < 'B'", true},
		{"active = TRUE", true},
		{"active != false", true},
		{"active > false", false},
		{"age = 'thirty'", false},
		{"age = NULL", false},
		{"age > 18 AND score > 80", true},
		{"age > 40 OR name = 'Alice'", true},
		{"NOT age > 40", true},
		{"NOT (age > 18 AND score > 90)", true},
		{"age > 18 AND (score > 90 OR active = true)", true},
		{"score IS NOT NULL", true},
		{"score is null", false},
		{"age > -1", true},
	}

	sch := testSchema()
	row := testRow()
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			pred, err := CompileString(tt.expr, sch)
			if err != nil {
				t.Fatalf("CompileString: %v", err)
			}
			if got := pred(row); got != tt.want {
				t.Errorf("%s = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

func TestNullNeverCompares(t *testing.T) {
	sch := testSchema()
	row := types.Row{types.Null(), types.String("x"), types.Null(), types.Bool(false)}

	for _, e := range []string{"age > 0", "age < 0", "age = 0", "age != 0", "score != 1.5"} {
		pred, err := CompileString(e, sch)
		if err != nil {
			t.Fatalf("CompileString(%q): %v", e, err)
		}
		if pred(row) {
			t.Errorf("%s matched a NULL", e)
		}
	}

	pred, _ := CompileString("age IS NULL AND score IS NULL", sch)
	if !pred(row) {
		t.Errorf("IS NULL should match")
	}
}

func TestNaNIsUnordered(t *testing.T) {
	sch := testSchema()
	row := types.Row{types.Int32(1), types.String("x"), types.Float64(math.NaN()), types.Bool(true)}

	tests := []struct {
		expr string
		want bool
	}{
		{"score < 5", false},
		{"score <= 5", false},
		{"score > 5", false},
		{"score >= 5", false},
		{"score = 5", false},
		{"score != 5", true},
		{"score IS NOT NULL", true},
	}
	for _, tt := range tests {
		t.Run(tt.expr, func(t *testing.T) {
			pred, err := CompileString(tt.expr, sch)
			if err != nil {
				t.Fatalf("CompileString: %v", err)
			}
			if got := pred(row); got != tt.want {
				t.Errorf("%s on NaN = %v, want %v", tt.expr, got, tt.want)
			}
		})
	}
}

// ============================================================================
// ERROR TESTS
// ============================================================================

func TestParseErrors(t *testing.T) {
	for _, input := range []string{
		"",
		"age >",
		"age 5",
		"(age > 5",
		"age > 5 extra",
		"age IS 5",
		"5 > age",
		"name = 'unterminated",
	} {
		if _, err := Parse(input); !errors.Is(err, dberror.ErrInvalidExpression) {
			t.Errorf("Parse(%q) err = %v, want InvalidExpression", input, err)
		}
	}
}

func TestCompileUnknownColumn(t *testing.T) {
	if _, err := CompileString("height > 2 OR age > 1", testSchema()); !errors.Is(err, dberror.ErrColumnNotFound) {
		t.Errorf("err = %v, want ColumnNotFound", err)
	}
}

func TestColumnsAndString(t *testing.T) {
	e, err := Parse("(age > 1 AND name = 'x') OR NOT age IS NULL")
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	cols := Columns(e)
	if len(cols) != 2 || cols[0] != "age" || cols[1] != "name" {
		t.Errorf("Columns() = %v", cols)
	}
	if got := e.String(); got != `((age > 1 AND name = "x") OR NOT age IS NULL)` {
		t.Errorf("String() = %s", got)
	}
}
