package dberror

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestIsMatchesByCode(t *testing.T) {
	err := ColumnNotFound("age").At("NewProjection", "ProjectionView")

	if !errors.Is(err, ErrColumnNotFound) {
		t.Fatalf("expected errors.Is to match ErrColumnNotFound")
	}
	if errors.Is(err, ErrSchemaViolation) {
		t.Errorf("did not expect a match against ErrSchemaViolation")
	}

	wrapped := fmt.Errorf("building view: %w", err)
	if !errors.Is(wrapped, ErrColumnNotFound) {
		t.Errorf("expected match through fmt wrapping")
	}
}

func TestErrorFormat(t *testing.T) {
	err := IndexOutOfRange(7, 3).At("Row", "Table")
	got := err.Error()

	for _, want := range []string{"[INDEX_OUT_OF_RANGE]", "index 7, length 3", "operation: Row", "component: Table"} {
		if !strings.Contains(got, want) {
			t.Errorf("Error() = %q, missing %q", got, want)
		}
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil, CodeInternal, "op", "comp") != nil {
		t.Fatalf("Wrap(nil) should return nil")
	}

	cause := errors.New("boom")
	err := Wrap(cause, CodeInternal, "Sync", "SortedView")
	if err.Category != ErrCategorySystem {
		t.Errorf("Category = %v, want system", err.Category)
	}
	if !errors.Is(err, cause) {
		t.Errorf("expected cause to be reachable")
	}

	existing := KeyCountMismatch(1, 2)
	if got := Wrap(existing, CodeInternal, "NewJoin", "JoinView"); got != existing || got.Operation != "NewJoin" {
		t.Errorf("Wrap should enrich an existing DBError in place")
	}
}

func TestFormatStack(t *testing.T) {
	err := TableDropped("users")
	if !strings.HasPrefix(err.FormatStack(), "Stack trace:") {
		t.Errorf("expected a captured stack")
	}
	if ErrTableDropped.FormatStack() != "" {
		t.Errorf("sentinels carry no stack")
	}
}
