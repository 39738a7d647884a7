// Package align holds the small pure helpers the codec builds on: rounding an
// offset up to a byte boundary, and classifying Go types into the shapes the
// codec knows how to lay out.
package align

import "reflect"

// Integer is any fixed or platform sized integer type.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Up rounds value up to the next multiple of boundary.
// A boundary of 0 or 1 leaves the value untouched.
func Up[T Integer](value, boundary T) T {
	if boundary <= 1 {
		return value
	}
	return boundary * ((value + (boundary - 1)) / boundary)
}

// Padding returns how many bytes have to be skipped from value to reach the
// next multiple of boundary.
func Padding[T Integer](value, boundary T) T {
	return Up(value, boundary) - value
}

// Kind is the layout shape of a type.
type Kind uint8

const (
	// Unsupported types have no fixed binary layout.
	Unsupported Kind = iota
	// Primitive is a 1, 2, 4 or 8 byte number or bool.
	Primitive
	// Vector is a fixed-size array of primitives.
	Vector
	// Matrix is a fixed-size array of vectors (or of deeper aggregates).
	Matrix
)

func (k Kind) String() string {
	switch k {
	case Primitive:
		return "primitive"
	case Vector:
		return "vector"
	case Matrix:
		return "matrix"
	default:
		return "unsupported"
	}
}

// Classify reports the layout shape of t.
//
// Only explicitly sized numbers count as primitives: int, uint and uintptr
// change width with the platform and are Unsupported.
func Classify(t reflect.Type) Kind {
	if t == nil {
		return Unsupported
	}
	switch t.Kind() {
	case reflect.Bool,
		reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return Primitive
	case reflect.Array:
		switch Classify(t.Elem()) {
		case Primitive:
			return Vector
		case Vector, Matrix:
			return Matrix
		}
	}
	return Unsupported
}
