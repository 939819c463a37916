package types

import (
	"fmt"
	"strings"
)

// Type is the logical type of a column or value.
type Type int

const (
	// NullType is only ever the type of the Null value; no column has it.
	NullType Type = iota
	Int32Type
	Int64Type
	Float32Type
	Float64Type
	StringType
	BoolType
	// DateType holds days since the Unix epoch.
	DateType
	// DateTimeType holds milliseconds since the Unix epoch.
	DateTimeType
)

// String returns a string representation of the type
func (t Type) String() string {
	switch t {
	case NullType:
		return "NULL"
	case Int32Type:
		return "INT32"
	case Int64Type:
		return "INT64"
	case Float32Type:
		return "FLOAT32"
	case Float64Type:
		return "FLOAT64"
	case StringType:
		return "STRING"
	case BoolType:
		return "BOOL"
	case DateType:
		return "DATE"
	case DateTimeType:
		return "DATETIME"
	default:
		return "UNKNOWN"
	}
}

// IsNumeric reports whether values of t can take part in arithmetic.
func (t Type) IsNumeric() bool {
	switch t {
	case Int32Type, Int64Type, Float32Type, Float64Type:
		return true
	default:
		return false
	}
}

// IsInteger reports whether t is stored as a whole number.
func (t Type) IsInteger() bool {
	switch t {
	case Int32Type, Int64Type, DateType, DateTimeType:
		return true
	default:
		return false
	}
}

// ParseType maps a type name such as "int64" or "datetime" to a Type.
func ParseType(name string) (Type, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "INT32", "INT", "INTEGER":
		return Int32Type, nil
	case "INT64", "BIGINT":
		return Int64Type, nil
	case "FLOAT32", "REAL":
		return Float32Type, nil
	case "FLOAT64", "FLOAT", "DOUBLE":
		return Float64Type, nil
	case "STRING", "TEXT", "VARCHAR":
		return StringType, nil
	case "BOOL", "BOOLEAN":
		return BoolType, nil
	case "DATE":
		return DateType, nil
	case "DATETIME", "TIMESTAMP":
		return DateTimeType, nil
	default:
		return NullType, fmt.Errorf("unknown type %q", name)
	}
}
