package binaryio

import "reflect"

// Pointer is an offset field. The generic codec reads and writes it with the
// cursor's address width instead of a fixed 8 bytes.
type Pointer uint64

// Common float aggregates. Matrices are stored column by column.
type (
	Vec2 [2]float32
	Vec3 [3]float32
	Vec4 [4]float32
	Mat3 [3]Vec3
	Mat4 [4]Vec4
)

var pointerType = reflect.TypeOf(Pointer(0))
