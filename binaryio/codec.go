package binaryio

import (
	"math"
	"reflect"
	"unsafe"

	"github.com/burninrubber0/libbinaryio/utils/align"
)

// Number is the set of primitive types with a fixed binary size, including
// named types over them.
type Number interface {
	~int8 | ~uint8 | ~int16 | ~uint16 | ~int32 | ~uint32 | ~int64 | ~uint64 |
		~float32 | ~float64
}

// Read decodes one primitive in the reader's byte order.
func Read[T Number](r *Reader) (T, error) {
	var v T
	size := int(unsafe.Sizeof(v))
	bits, err := r.readUint(size, "read")
	if err != nil {
		return v, err
	}
	return fromBits[T](bits), nil
}

// Write encodes one primitive in the writer's byte order.
func Write[T Number](w *Writer, v T) error {
	return w.writeUint(toBits(v), int(unsafe.Sizeof(v)))
}

// Decode reads any supported value: primitives, vectors, matrices, Pointer
// and string. On failure the cursor is left where it was.
func Decode[T any](r *Reader) (T, error) {
	var v T
	err := r.ReadValue(&v)
	return v, err
}

// Encode writes any supported value.
func Encode[T any](w *Writer, v T) error {
	return w.WriteValue(v)
}

// Verify decodes a value and compares it with expected under the reader's
// verify mode. A mismatch is reported at the offset of the value itself, so
// a Pointer is aligned before the offset is taken.
func Verify[T comparable](r *Reader, expected T) error {
	if _, ok := any(expected).(Pointer); ok {
		if err := r.AlignPointer(); err != nil {
			return err
		}
	}
	start := r.Offset()
	actual, err := Decode[T](r)
	if err != nil {
		return err
	}
	if actual == expected {
		return nil
	}
	return r.mismatch(start, expected, actual)
}

// fromBits reinterprets the low sizeof(T) bytes of bits as a T.
func fromBits[T Number](bits uint64) T {
	var v T
	switch unsafe.Sizeof(v) {
	case 1:
		u := uint8(bits)
		v = *(*T)(unsafe.Pointer(&u))
	case 2:
		u := uint16(bits)
		v = *(*T)(unsafe.Pointer(&u))
	case 4:
		u := uint32(bits)
		v = *(*T)(unsafe.Pointer(&u))
	default:
		v = *(*T)(unsafe.Pointer(&bits))
	}
	return v
}

func toBits[T Number](v T) uint64 {
	switch unsafe.Sizeof(v) {
	case 1:
		return uint64(*(*uint8)(unsafe.Pointer(&v)))
	case 2:
		return uint64(*(*uint16)(unsafe.Pointer(&v)))
	case 4:
		return uint64(*(*uint32)(unsafe.Pointer(&v)))
	default:
		return *(*uint64)(unsafe.Pointer(&v))
	}
}

// valueBits returns the bit pattern of a primitive reflect.Value.
func valueBits(v reflect.Value) uint64 {
	switch v.Kind() {
	case reflect.Bool:
		if v.Bool() {
			return 1
		}
		return 0
	case reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return uint64(v.Int())
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return v.Uint()
	case reflect.Float32:
		return uint64(math.Float32bits(float32(v.Float())))
	case reflect.Float64:
		return math.Float64bits(v.Float())
	}
	return 0
}

// setValueBits stores a bit pattern into a primitive reflect.Value.
func setValueBits(v reflect.Value, bits uint64) {
	switch v.Kind() {
	case reflect.Bool:
		v.SetBool(bits != 0)
	case reflect.Int8:
		v.SetInt(int64(int8(bits)))
	case reflect.Int16:
		v.SetInt(int64(int16(bits)))
	case reflect.Int32:
		v.SetInt(int64(int32(bits)))
	case reflect.Int64:
		v.SetInt(int64(bits))
	case reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		v.SetUint(bits)
	case reflect.Float32:
		v.SetFloat(float64(math.Float32frombits(uint32(bits))))
	case reflect.Float64:
		v.SetFloat(math.Float64frombits(bits))
	}
}

// readValue decodes into v element by element.
func (r *Reader) readValue(v reflect.Value) error {
	t := v.Type()
	if t == pointerType {
		p, err := r.ReadPointer()
		if err != nil {
			return err
		}
		v.SetUint(p)
		return nil
	}
	if t.Kind() == reflect.String {
		s, err := r.CString()
		if err != nil {
			return err
		}
		v.SetString(s)
		return nil
	}

	switch align.Classify(t) {
	case align.Primitive:
		bits, err := r.readUint(int(t.Size()), "read "+t.String())
		if err != nil {
			return err
		}
		setValueBits(v, bits)
		return nil
	case align.Vector, align.Matrix:
		for i := 0; i < v.Len(); i++ {
			if err := r.readValue(v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return &OffsetError{Op: "decode " + t.String(), Offset: r.Offset(), Err: ErrUnsupportedType}
}

// writeValue encodes v element by element.
func (w *Writer) writeValue(v reflect.Value) error {
	t := v.Type()
	if t == pointerType {
		return w.WritePointer(v.Uint())
	}
	if t.Kind() == reflect.String {
		return w.WriteString(v.String(), true)
	}

	switch align.Classify(t) {
	case align.Primitive:
		return w.writeUint(valueBits(v), int(t.Size()))
	case align.Vector, align.Matrix:
		for i := 0; i < v.Len(); i++ {
			if err := w.writeValue(v.Index(i)); err != nil {
				return err
			}
		}
		return nil
	}
	return &OffsetError{Op: "encode " + t.String(), Offset: w.Offset(), Err: ErrUnsupportedType}
}
