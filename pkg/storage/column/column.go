// Package column implements typed, optionally nullable value containers on
// top of sequence.Sequence.
//
// A column keeps one values sequence in the physical type of its logical
// type (int32 for Int32 and Date, int64 for Int64 and DateTime, and so on).
// Nullable columns add a second Sequence[bool] of null flags. String columns
// may intern their values, in which case the values sequence holds uint32 ids
// issued by a shared interner.Interner.
package column

import (
	"livedb/pkg/schema"
	"livedb/pkg/storage/interner"
	"livedb/pkg/storage/sequence"
	"livedb/pkg/types"
)

// Column is a single typed column. It is not safe for concurrent mutation;
// the owning table serializes writers.
type Column struct {
	def   schema.Column
	data  store
	nulls sequence.Sequence[bool]
	n     int
}

// New creates an empty column for def on the given backend. Passing a
// non-nil interner enables interning for String columns; it is ignored for
// every other type.
func New(def schema.Column, kind sequence.Kind, in *interner.Interner) *Column {
	c := &Column{def: def}
	if def.Nullable {
		c.nulls = sequence.New[bool](kind)
	}

	switch def.Type {
	case types.Int32Type:
		c.data = newTypedStore(kind, int32Codec)
	case types.Int64Type:
		c.data = newTypedStore(kind, int64Codec)
	case types.Float32Type:
		c.data = newTypedStore(kind, float32Codec)
	case types.Float64Type:
		c.data = newTypedStore(kind, float64Codec)
	case types.BoolType:
		c.data = newTypedStore(kind, boolCodec)
	case types.DateType:
		c.data = newTypedStore(kind, dateCodec)
	case types.DateTimeType:
		c.data = newTypedStore(kind, dateTimeCodec)
	case types.StringType:
		if in != nil {
			c.data = &internedStore{ids: sequence.New[uint32](kind), in: in}
		} else {
			c.data = newTypedStore(kind, stringCodec)
		}
	default:
		panic("column: unsupported type " + def.Type.String())
	}
	return c
}

// Def returns the column definition.
func (c *Column) Def() schema.Column { return c.def }

// Name returns the column name.
func (c *Column) Name() string { return c.def.Name }

// Len returns the number of values.
func (c *Column) Len() int { return c.n }

// Interned reports whether values are stored as interner ids.
func (c *Column) Interned() bool {
	_, ok := c.data.(*internedStore)
	return ok
}

// Check validates v against the column's type and nullability without
// storing it.
func (c *Column) Check(v types.Value) error {
	return c.def.Check(v)
}

// Get returns the value at i.
func (c *Column) Get(i int) types.Value {
	if c.nulls != nil && c.nulls.Get(i) {
		return types.Null()
	}
	return c.data.get(i)
}

// Set replaces the value at i.
func (c *Column) Set(i int, v types.Value) error {
	if err := c.def.Check(v); err != nil {
		return err
	}
	if v.IsNull() {
		if !c.nulls.Get(i) {
			c.data.zero(i)
			c.nulls.Set(i, true)
		}
		return nil
	}
	c.data.set(i, v)
	if c.nulls != nil {
		c.nulls.Set(i, false)
	}
	return nil
}

// Insert places v at i, shifting later values down.
func (c *Column) Insert(i int, v types.Value) error {
	if err := c.def.Check(v); err != nil {
		return err
	}
	if v.IsNull() {
		c.data.insertZero(i)
		c.nulls.Insert(i, true)
	} else {
		c.data.insert(i, v)
		if c.nulls != nil {
			c.nulls.Insert(i, false)
		}
	}
	c.n++
	return nil
}

// Append adds v at the end.
func (c *Column) Append(v types.Value) error {
	return c.Insert(c.n, v)
}

// Remove deletes and returns the value at i.
func (c *Column) Remove(i int) types.Value {
	v := c.Get(i)
	if c.nulls != nil {
		c.nulls.Remove(i)
	}
	c.data.remove(i)
	c.n--
	return v
}
