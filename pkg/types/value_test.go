package types

import (
	"math"
	"testing"
	"time"
)

// ============================================================================
// COMPARISON TESTS
// ============================================================================

func TestCompare(t *testing.T) {
	tests := []struct {
		name string
		a, b Value
		want int
	}{
		{"null before int", Null(), Int32(-5), -1},
		{"null equals null", Null(), Null(), 0},
		{"int32 vs int64", Int32(7), Int64(7), 0},
		{"int vs float", Int64(2), Float64(2.5), -1},
		{"float32 vs float64", Float32(1.5), Float64(1.5), 0},
		{"strings", String("apple"), String("banana"), -1},
		{"bools", Bool(true), Bool(false), 1},
		{"dates", Date(10), Date(3), 1},
		{"nan first", Float64(math.NaN()), Float64(-1e300), -1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Compare(tt.a, tt.b); got != tt.want {
				t.Errorf("Compare(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestComparable(t *testing.T) {
	if !Comparable(Int32(1), Float64(2)) {
		t.Errorf("numerics should be comparable")
	}
	if Comparable(String("1"), Int32(1)) {
		t.Errorf("string and int should not be comparable")
	}
	if Comparable(Null(), Null()) {
		t.Errorf("null is never comparable")
	}
}

func TestPredicateHolds(t *testing.T) {
	c := Compare(Int64(3), Int64(5))
	for p, want := range map[Predicate]bool{
		Equals: false, NotEqual: true, LessThan: true,
		LessThanOrEqual: true, GreaterThan: false, GreaterThanOrEqual: false,
	} {
		if got := p.Holds(c); got != want {
			t.Errorf("%v.Holds(%d) = %v, want %v", p, c, got, want)
		}
	}
}

// ============================================================================
// KEY TESTS
// ============================================================================

func TestKeyNormalizesWholeNumbers(t *testing.T) {
	if Int32(1).Key() != Int64(1).Key() || Int64(1).Key() != Float64(1).Key() {
		t.Errorf("whole numbers should share a key")
	}
	if Float64(1.5).Key() == Int64(1).Key() {
		t.Errorf("1.5 and 1 must not collide")
	}
	if String("1").Key() == Int64(1).Key() {
		t.Errorf("string and int must not collide")
	}
}

func TestKeyOfIsUnambiguous(t *testing.T) {
	a := KeyOf(String("a:b"), String("c"))
	b := KeyOf(String("a"), String("b:c"))
	if a == b {
		t.Errorf("composite keys collided: %q", a)
	}
	if KeyOf(Null(), Int32(1)) == KeyOf(Int32(1), Null()) {
		t.Errorf("order must matter")
	}
}

// ============================================================================
// RENDERING TESTS
// ============================================================================

func TestString(t *testing.T) {
	day := time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		v    Value
		want string
	}{
		{Null(), "NULL"},
		{Int32(-4), "-4"},
		{Float64(99.99), "99.99"},
		{Float32(0.5), "0.5"},
		{Bool(true), "true"},
		{String("x"), "x"},
		{DateOf(day.Add(5 * time.Hour)), "2024-03-15"},
		{DateTimeOf(day.Add(1500 * time.Millisecond)), "2024-03-15T00:00:01.500Z"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}

func TestMarshalJSON(t *testing.T) {
	tests := []struct {
		v    Value
		want string
	}{
		{Null(), "null"},
		{Int64(42), "42"},
		{Float64(2.5), "2.5"},
		{String(`say "hi"`), `"say \"hi\""`},
		{Bool(false), "false"},
		{Date(0), `"1970-01-01"`},
		{Float64(math.Inf(1)), `"+Inf"`},
	}
	for _, tt := range tests {
		got, err := tt.v.MarshalJSON()
		if err != nil {
			t.Fatalf("MarshalJSON(%v): %v", tt.v, err)
		}
		if string(got) != tt.want {
			t.Errorf("MarshalJSON(%v) = %s, want %s", tt.v, got, tt.want)
		}
	}
}

func TestParseType(t *testing.T) {
	for name, want := range map[string]Type{
		"int": Int32Type, "BIGINT": Int64Type, "double": Float64Type,
		"text": StringType, "bool": BoolType, "timestamp": DateTimeType,
	} {
		got, err := ParseType(name)
		if err != nil || got != want {
			t.Errorf("ParseType(%q) = %v, %v; want %v", name, got, err, want)
		}
	}
	if _, err := ParseType("blob"); err == nil {
		t.Errorf("expected error for unknown type")
	}
}

func TestRowEqualAndClone(t *testing.T) {
	r := Row{Int32(1), String("a"), Null()}
	c := r.Clone()
	c[1] = String("b")

	if r.Equal(c) {
		t.Errorf("clone should be independent")
	}
	if !r.Equal(Row{Int64(1), String("a"), Null()}) {
		t.Errorf("rows should be equal across int widths")
	}
	if r.String() != "(1, a, NULL)" {
		t.Errorf("String() = %q", r.String())
	}
}
