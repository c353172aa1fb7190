package document

import "math/big"

// ValueKind discriminates the Value union.
type ValueKind uint8

const (
	KindString ValueKind = iota
	KindInteger
	KindFloat
	KindBoolean
	KindNull
	KindPositiveInfinity
	KindNegativeInfinity
	KindNaN
)

func (k ValueKind) String() string {
	switch k {
	case KindString:
		return "string"
	case KindInteger:
		return "integer"
	case KindFloat:
		return "float"
	case KindBoolean:
		return "boolean"
	case KindNull:
		return "null"
	case KindPositiveInfinity:
		return "inf"
	case KindNegativeInfinity:
		return "-inf"
	case KindNaN:
		return "nan"
	default:
		return "unknown"
	}
}

// Value is the discriminated union of KDL argument/property values.
// Integer is stored as an arbitrary-precision big.Int checked against the
// i128 bound at parse time (see internal/strnum); Float always carries the
// source text that produced it so overflow/underflow round-trip.
type Value struct {
	Kind          ValueKind
	Str           StringRef
	Integer       *big.Int
	Float         float64
	FloatOriginal StringRef
	Bool          bool
}

func NewString(ref StringRef) Value { return Value{Kind: KindString, Str: ref} }

func NewInteger(v *big.Int) Value { return Value{Kind: KindInteger, Integer: v} }

func NewFloat(v float64, original StringRef) Value {
	return Value{Kind: KindFloat, Float: v, FloatOriginal: original}
}

func NewBool(b bool) Value { return Value{Kind: KindBoolean, Bool: b} }

func NewNull() Value { return Value{Kind: KindNull} }

func NewPositiveInfinity() Value { return Value{Kind: KindPositiveInfinity} }

func NewNegativeInfinity() Value { return Value{Kind: KindNegativeInfinity} }

func NewNaN() Value { return Value{Kind: KindNaN} }
