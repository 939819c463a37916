package dberror

import (
	"fmt"
	"runtime"
	"strings"
)

// ErrorCategory classifies errors by how a caller is expected to react to them.
type ErrorCategory int

const (
	// ErrCategoryUser represents errors caused by an invalid request: a row
	// that does not fit the schema, an unknown column, a bad percentile.
	// Fixing the request fixes the error.
	ErrCategoryUser ErrorCategory = iota

	// ErrCategoryTransient represents errors that may succeed on retry.
	ErrCategoryTransient

	// ErrCategorySystem represents errors that point at misuse of the engine
	// itself, such as touching a table after it was dropped.
	ErrCategorySystem

	// ErrCategoryData represents errors where derived state can no longer be
	// trusted, for example a view whose parent is gone.
	ErrCategoryData

	// ErrCategoryConcurrency represents conflicts between concurrent writers.
	// These are usually resolved by retrying the mutation.
	ErrCategoryConcurrency
)

// String returns the lower-case name of the category.
func (c ErrorCategory) String() string {
	switch c {
	case ErrCategoryUser:
		return "user"
	case ErrCategoryTransient:
		return "transient"
	case ErrCategorySystem:
		return "system"
	case ErrCategoryData:
		return "data"
	case ErrCategoryConcurrency:
		return "concurrency"
	default:
		return "unknown"
	}
}

// Error codes surfaced by the engine.
const (
	CodeSchemaViolation   = "SCHEMA_VIOLATION"
	CodeIndexOutOfRange   = "INDEX_OUT_OF_RANGE"
	CodeColumnNotFound    = "COLUMN_NOT_FOUND"
	CodeKeyCountMismatch  = "KEY_COUNT_MISMATCH"
	CodeInvalidPercentile = "INVALID_PERCENTILE"
	CodeDanglingParent    = "DANGLING_PARENT"
	CodeMutationConflict  = "CONCURRENT_MUTATION_CONFLICT"
	CodeTableDropped      = "TABLE_DROPPED"
	CodeTableExists       = "TABLE_EXISTS"
	CodeTableNotFound     = "TABLE_NOT_FOUND"
	CodeInvalidExpression = "INVALID_EXPRESSION"
	CodeInternal          = "INTERNAL"
)

// Sentinels usable with errors.Is. A DBError matches a sentinel when the codes
// are equal, regardless of message or context.
var (
	ErrSchemaViolation   = &DBError{Code: CodeSchemaViolation, Category: ErrCategoryUser}
	ErrIndexOutOfRange   = &DBError{Code: CodeIndexOutOfRange, Category: ErrCategoryUser}
	ErrColumnNotFound    = &DBError{Code: CodeColumnNotFound, Category: ErrCategoryUser}
	ErrKeyCountMismatch  = &DBError{Code: CodeKeyCountMismatch, Category: ErrCategoryUser}
	ErrInvalidPercentile = &DBError{Code: CodeInvalidPercentile, Category: ErrCategoryUser}
	ErrDanglingParent    = &DBError{Code: CodeDanglingParent, Category: ErrCategoryData}
	ErrMutationConflict  = &DBError{Code: CodeMutationConflict, Category: ErrCategoryConcurrency}
	ErrTableDropped      = &DBError{Code: CodeTableDropped, Category: ErrCategorySystem}
	ErrTableExists       = &DBError{Code: CodeTableExists, Category: ErrCategoryUser}
	ErrTableNotFound     = &DBError{Code: CodeTableNotFound, Category: ErrCategoryUser}
	ErrInvalidExpression = &DBError{Code: CodeInvalidExpression, Category: ErrCategoryUser}
)

// DBError represents a structured engine error with rich context information.
type DBError struct {
	// Code is a unique identifier for this error type (e.g., "COLUMN_NOT_FOUND").
	Code string

	// Category classifies the error for appropriate handling strategy.
	Category ErrorCategory

	// Message is a human-readable description of what went wrong.
	Message string

	// Detail provides additional context about the specific error instance.
	// Example: "column 'age' is not nullable" where Message might be "schema violation".
	Detail string

	// Hint suggests how the caller might fix or work around this error.
	Hint string

	// Operation identifies the operation that was being performed when the error occurred.
	// Examples: "AppendRow", "NewJoin", "Sync".
	Operation string

	// Component identifies where the error originated.
	// Examples: "Table", "FilterView", "Column".
	Component string

	// Cause is the underlying error that triggered this error.
	Cause error

	// Stack contains the call stack where this error was created.
	// Used for debugging and is automatically captured in New() and Wrap().
	Stack []uintptr
}

// New creates a new DBError with the specified code, category, and message.
func New(category ErrorCategory, code, message string) *DBError {
	return &DBError{
		Code:     code,
		Category: category,
		Message:  message,
		Stack:    captureStack(),
	}
}

// Wrap wraps an existing error with operation and component context.
// If the error is already a DBError, it enriches the existing error
// (only fields that are not already set are filled in).
func Wrap(err error, code, operation, component string) *DBError {
	if err == nil {
		return nil
	}

	if dbErr, ok := err.(*DBError); ok {
		if dbErr.Operation == "" {
			dbErr.Operation = operation
		}
		if dbErr.Component == "" {
			dbErr.Component = component
		}
		return dbErr
	}

	return &DBError{
		Code:      code,
		Category:  ErrCategorySystem,
		Message:   err.Error(),
		Operation: operation,
		Component: component,
		Cause:     err,
		Stack:     captureStack(),
	}
}

// WithDetail sets Detail using a format string and returns the receiver.
func (e *DBError) WithDetail(format string, args ...any) *DBError {
	e.Detail = fmt.Sprintf(format, args...)
	return e
}

// WithHint sets Hint and returns the receiver.
func (e *DBError) WithHint(hint string) *DBError {
	e.Hint = hint
	return e
}

// At records where the error happened and returns the receiver.
func (e *DBError) At(operation, component string) *DBError {
	e.Operation = operation
	e.Component = component
	return e
}

// captureStack skips captureStack, New/Wrap and the immediate caller.
func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[0:n]
}

// Error implements the standard Go error interface.
//
// The format follows the pattern:
// [ERROR_CODE] Message: Detail (operation: Operation, component: Component) caused by: underlying error
func (e *DBError) Error() string {
	var b strings.Builder

	b.WriteString(fmt.Sprintf("[%s] %s", e.Code, e.Message))

	if e.Detail != "" {
		b.WriteString(fmt.Sprintf(": %s", e.Detail))
	}

	if e.Operation != "" {
		b.WriteString(fmt.Sprintf(" (operation: %s", e.Operation))
		if e.Component != "" {
			b.WriteString(fmt.Sprintf(", component: %s", e.Component))
		}
		b.WriteString(")")
	}

	if e.Cause != nil {
		b.WriteString(fmt.Sprintf(" caused by: %v", e.Cause))
	}

	return b.String()
}

// Unwrap returns the underlying cause error.
func (e *DBError) Unwrap() error {
	return e.Cause
}

// Is reports whether target is a DBError with the same code.
func (e *DBError) Is(target error) bool {
	t, ok := target.(*DBError)
	if !ok {
		return false
	}
	return t.Code == e.Code
}

// FormatStack returns a human-readable stack trace for debugging purposes.
func (e *DBError) FormatStack() string {
	if len(e.Stack) == 0 {
		return ""
	}

	var b strings.Builder
	frames := runtime.CallersFrames(e.Stack)

	b.WriteString("Stack trace:\n")
	for {
		f, more := frames.Next()
		b.WriteString(fmt.Sprintf("  %s\n    %s:%d\n",
			f.Function, f.File, f.Line))
		if !more {
			break
		}
	}

	return b.String()
}
