package interner

import "testing"

func TestInternSharesIDs(t *testing.T) {
	in := New()
	a := in.Intern("alice")
	b := in.Intern("bob")
	a2 := in.Intern("alice")

	if a != a2 {
		t.Errorf("same string got ids %d and %d", a, a2)
	}
	if a == b {
		t.Errorf("different strings share id %d", a)
	}

	stats := in.Stats()
	if stats.UniqueStrings != 2 || stats.TotalReferences != 3 {
		t.Errorf("Stats() = %+v, want {2 3}", stats)
	}
}

func TestReleaseFreesAndReuses(t *testing.T) {
	in := New()
	a := in.Intern("x")
	in.Intern("x")

	in.Release(a)
	if s, ok := in.Lookup(a); !ok || s != "x" {
		t.Fatalf("id should survive while referenced, got %q %v", s, ok)
	}

	in.Release(a)
	if _, ok := in.Lookup(a); ok {
		t.Fatalf("id should be dead after last release")
	}

	b := in.Intern("y")
	if b != a {
		t.Errorf("expected freed id %d to be reused, got %d", a, b)
	}
	if in.MustLookup(b) != "y" {
		t.Errorf("reused id resolves to stale string")
	}
	if got := in.Stats(); got.UniqueStrings != 1 || got.TotalReferences != 1 {
		t.Errorf("Stats() = %+v", got)
	}
}

func TestReleaseDeadIDPanics(t *testing.T) {
	in := New()
	defer func() {
		if recover() == nil {
			t.Errorf("expected panic")
		}
	}()
	in.Release(3)
}
