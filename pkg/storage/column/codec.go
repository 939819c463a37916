package column

import (
	"golang.org/x/exp/constraints"

	"livedb/pkg/types"
)

// codec converts between the tagged Value union and a column's physical
// element type.
type codec[T any] struct {
	encode func(types.Value) T
	decode func(T) types.Value
}

func signedCodec[T constraints.Signed](wrap func(T) types.Value) codec[T] {
	return codec[T]{
		encode: func(v types.Value) T {
			i, _ := v.Int()
			return T(i)
		},
		decode: wrap,
	}
}

func floatCodec[T constraints.Float](wrap func(T) types.Value) codec[T] {
	return codec[T]{
		encode: func(v types.Value) T {
			f, _ := v.Float()
			return T(f)
		},
		decode: wrap,
	}
}

var (
	int32Codec    = signedCodec(types.Int32)
	int64Codec    = signedCodec(types.Int64)
	dateCodec     = signedCodec(types.Date)
	dateTimeCodec = signedCodec(types.DateTime)
	float32Codec  = floatCodec(types.Float32)
	float64Codec  = floatCodec(types.Float64)

	boolCodec = codec[bool]{
		encode: func(v types.Value) bool {
			b, _ := v.Boolean()
			return b
		},
		decode: types.Bool,
	}

	stringCodec = codec[string]{
		encode: func(v types.Value) string {
			s, _ := v.Str()
			return s
		},
		decode: types.String,
	}
)
