package dberror

import "fmt"

// SchemaViolation reports a value or row that does not fit a schema.
func SchemaViolation(format string, args ...any) *DBError {
	e := New(ErrCategoryUser, CodeSchemaViolation, "schema violation")
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// IndexOutOfRange reports a row index outside [0, length).
func IndexOutOfRange(index, length int) *DBError {
	e := New(ErrCategoryUser, CodeIndexOutOfRange, "index out of range")
	e.Detail = fmt.Sprintf("index %d, length %d", index, length)
	return e
}

// ColumnNotFound reports a reference to a column the schema does not have.
func ColumnNotFound(column string) *DBError {
	e := New(ErrCategoryUser, CodeColumnNotFound, "column not found")
	e.Detail = fmt.Sprintf("column %q", column)
	return e
}

// KeyCountMismatch reports join key lists of different length.
func KeyCountMismatch(left, right int) *DBError {
	e := New(ErrCategoryUser, CodeKeyCountMismatch, "join key count mismatch")
	e.Detail = fmt.Sprintf("%d left keys, %d right keys", left, right)
	e.Hint = "pass the same number of key columns for both sides"
	return e
}

// InvalidPercentile reports a percentile outside [0, 1].
func InvalidPercentile(p float64) *DBError {
	e := New(ErrCategoryUser, CodeInvalidPercentile, "percentile out of range")
	e.Detail = fmt.Sprintf("p=%g", p)
	e.Hint = "percentiles are fractions between 0.0 and 1.0"
	return e
}

// DanglingParent reports a view whose parent table no longer exists.
func DanglingParent(parent string) *DBError {
	e := New(ErrCategoryData, CodeDanglingParent, "parent table is gone")
	e.Detail = fmt.Sprintf("table %q", parent)
	return e
}

// MutationConflict reports a write that lost the table lock to another caller.
func MutationConflict(table string) *DBError {
	e := New(ErrCategoryConcurrency, CodeMutationConflict, "concurrent mutation conflict")
	e.Detail = fmt.Sprintf("table %q is locked by another reader or writer", table)
	e.Hint = "retry the mutation"
	return e
}

// TableDropped reports an operation on a table after Drop.
func TableDropped(table string) *DBError {
	e := New(ErrCategorySystem, CodeTableDropped, "table was dropped")
	e.Detail = fmt.Sprintf("table %q", table)
	return e
}

// InvalidExpression reports a filter expression that failed to parse.
func InvalidExpression(format string, args ...any) *DBError {
	e := New(ErrCategoryUser, CodeInvalidExpression, "invalid expression")
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// TableExists reports a CreateTable with a name already in use.
func TableExists(table string) *DBError {
	e := New(ErrCategoryUser, CodeTableExists, "table already exists")
	e.Detail = fmt.Sprintf("table %q", table)
	return e
}

// TableNotFound reports a lookup of a table the database does not have.
func TableNotFound(table string) *DBError {
	e := New(ErrCategoryUser, CodeTableNotFound, "table not found")
	e.Detail = fmt.Sprintf("table %q", table)
	return e
}
