package changeset

import (
	"testing"

	"livedb/pkg/types"
)

func TestLogCursorAndCompact(t *testing.T) {
	var l Log
	for i := 0; i < 3; i++ {
		cs := l.Append([]Entry{InsertEntry(i, types.Row{types.Int32(int32(i))})})
		if cs.Seq != uint64(i) {
			t.Fatalf("Seq = %d, want %d", cs.Seq, i)
		}
	}

	sets, ok := l.Since(1)
	if !ok || len(sets) != 2 || sets[0].Seq != 1 {
		t.Fatalf("Since(1) = %v, %v", sets, ok)
	}
	if sets, ok := l.Since(l.End()); !ok || len(sets) != 0 {
		t.Errorf("Since(End) = %v, %v", sets, ok)
	}

	l.Compact(2)
	if l.Base() != 2 || l.Len() != 1 || l.End() != 3 {
		t.Errorf("after Compact(2): base=%d len=%d end=%d", l.Base(), l.Len(), l.End())
	}
	if _, ok := l.Since(1); ok {
		t.Errorf("Since(1) after compaction should report a gap")
	}
	if sets, ok := l.Since(2); !ok || len(sets) != 1 || sets[0].Entries[0].Index != 2 {
		t.Errorf("Since(2) = %v, %v", sets, ok)
	}

	l.Compact(100)
	if l.Len() != 0 || l.Base() != 3 {
		t.Errorf("Compact past End: len=%d base=%d", l.Len(), l.Base())
	}
	if cs := l.Append(nil); cs.Seq != 3 {
		t.Errorf("Seq after compaction = %d, want 3", cs.Seq)
	}
}

func TestOldRow(t *testing.T) {
	e := UpdateEntry(4, 1, types.String("old"), types.String("new"),
		types.Row{types.Int32(1), types.String("new")})

	old := e.OldRow()
	if old[1] != types.String("old") || e.Row[1] != types.String("new") {
		t.Errorf("OldRow() = %v, Row = %v", old, e.Row)
	}
}

func TestIsTailAppend(t *testing.T) {
	tests := []struct {
		name  string
		cs    Changeset
		start int
		want  bool
	}{
		{"dense tail", Changeset{Entries: []Entry{InsertEntry(5, nil), InsertEntry(6, nil)}}, 5, true},
		{"gap", Changeset{Entries: []Entry{InsertEntry(5, nil), InsertEntry(7, nil)}}, 5, false},
		{"mid insert", Changeset{Entries: []Entry{InsertEntry(2, nil)}}, 5, false},
		{"delete", Changeset{Entries: []Entry{DeleteEntry(5, nil)}}, 5, false},
		{"empty", Changeset{}, 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.cs.IsTailAppend(tt.start); got != tt.want {
				t.Errorf("IsTailAppend(%d) = %v, want %v", tt.start, got, tt.want)
			}
		})
	}
}

func TestEncode(t *testing.T) {
	sets := []Changeset{
		{Seq: 7, Entries: []Entry{
			InsertEntry(0, types.Row{types.Int32(1), types.String("Alice")}),
			UpdateEntry(0, 1, types.String("Alice"), types.Null(), types.Row{types.Int32(1), types.Null()}),
			DeleteEntry(0, types.Row{types.Int32(1), types.Null()}),
		}},
		{Seq: 8, Entries: []Entry{ResetEntry()}},
	}

	got, err := Encode([]string{"id", "name"}, sets)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	want := `[{"seq":7,"entries":[` +
		`{"op":"insert","index":0,"row":[1,"Alice"]},` +
		`{"op":"update","index":0,"column":"name","old":"Alice","new":null},` +
		`{"op":"delete","index":0,"row":[1,null]}]},` +
		`{"seq":8,"entries":[{"op":"reset"}]}]`
	if string(got) != want {
		t.Errorf("Encode() =\n%s\nwant\n%s", got, want)
	}
}
