package layout

import (
	"fmt"
	"math"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/burninrubber0/libbinaryio/binaryio"
)

const (
	typePtr = "ptr"
	typePad = "pad"
)

// kind is the codec of one field type. verify is nil for types that cannot
// be compared.
type kind struct {
	sized  bool
	decode func(r *binaryio.Reader, f *Field) (any, error)
	encode func(w *binaryio.Writer, f *Field, v any) error
	verify func(r *binaryio.Reader, f *Field, expect any) error
}

var kinds = map[string]kind{
	"u8":  number(unsigned[uint8]),
	"u16": number(unsigned[uint16]),
	"u32": number(unsigned[uint32]),
	"u64": number(unsigned[uint64]),
	"i8":  number(signed[int8]),
	"i16": number(signed[int16]),
	"i32": number(signed[int32]),
	"i64": number(signed[int64]),
	"f32": number(float[float32]),
	"f64": number(float[float64]),

	"vec2": aggregate[binaryio.Vec2](),
	"vec3": aggregate[binaryio.Vec3](),
	"vec4": aggregate[binaryio.Vec4](),
	"mat3": aggregate[binaryio.Mat3](),
	"mat4": aggregate[binaryio.Mat4](),

	"bool": {
		decode: func(r *binaryio.Reader, _ *Field) (any, error) {
			b, err := r.Bool()
			return b, err
		},
		encode: func(w *binaryio.Writer, _ *Field, v any) error {
			b, err := toBool(v)
			if err != nil {
				return err
			}
			return w.Bool(b)
		},
		verify: func(r *binaryio.Reader, _ *Field, expect any) error {
			b, err := toBool(expect)
			if err != nil {
				return err
			}
			return binaryio.Verify(r, b)
		},
	},

	typePtr: {
		decode: func(r *binaryio.Reader, _ *Field) (any, error) {
			p, err := r.ReadPointer()
			return binaryio.Pointer(p), err
		},
		encode: func(w *binaryio.Writer, _ *Field, v any) error {
			p, err := toUint64(v)
			if err != nil {
				return err
			}
			return w.WritePointer(p)
		},
		verify: func(r *binaryio.Reader, _ *Field, expect any) error {
			p, err := toUint64(expect)
			if err != nil {
				return err
			}
			return r.VerifyPointer(p)
		},
	},

	"cstr": {
		decode: func(r *binaryio.Reader, _ *Field) (any, error) {
			s, err := r.CString()
			return s, err
		},
		encode: func(w *binaryio.Writer, _ *Field, v any) error {
			s, err := toString(v)
			if err != nil {
				return err
			}
			return w.WriteString(s, true)
		},
		verify: func(r *binaryio.Reader, _ *Field, expect any) error {
			s, err := toString(expect)
			if err != nil {
				return err
			}
			return binaryio.Verify(r, s)
		},
	},

	// Fixed-size text. Trailing zero padding is dropped on decode and
	// added back on encode.
	"str": {
		sized: true,
		decode: func(r *binaryio.Reader, f *Field) (any, error) {
			s, err := r.String(f.Length)
			return strings.TrimRight(s, "\x00"), err
		},
		encode: func(w *binaryio.Writer, f *Field, v any) error {
			s, err := toString(v)
			if err != nil {
				return err
			}
			return writePadded(w, []byte(s), f.Length)
		},
	},

	"bytes": {
		sized: true,
		decode: func(r *binaryio.Reader, f *Field) (any, error) {
			b, err := r.ReadBytes(f.Length)
			return hexutil.Bytes(b), err
		},
		encode: func(w *binaryio.Writer, f *Field, v any) error {
			b, err := toBytes(v)
			if err != nil {
				return err
			}
			return writePadded(w, b, f.Length)
		},
	},

	typePad: {
		sized: true,
		decode: func(r *binaryio.Reader, f *Field) (any, error) {
			return nil, r.Skip(int64(f.Length))
		},
		encode: func(w *binaryio.Writer, f *Field, _ any) error {
			return w.WriteBytes(make([]byte, f.Length))
		},
	},
}

func number[T binaryio.Number](conv func(any) (T, error)) kind {
	return kind{
		decode: func(r *binaryio.Reader, _ *Field) (any, error) {
			x, err := binaryio.Read[T](r)
			return x, err
		},
		encode: func(w *binaryio.Writer, _ *Field, v any) error {
			x, err := conv(v)
			if err != nil {
				return err
			}
			return binaryio.Write(w, x)
		},
		verify: func(r *binaryio.Reader, _ *Field, expect any) error {
			x, err := conv(expect)
			if err != nil {
				return err
			}
			return binaryio.Verify(r, x)
		},
	}
}

func aggregate[V comparable]() kind {
	return kind{
		decode: func(r *binaryio.Reader, _ *Field) (any, error) {
			x, err := binaryio.Decode[V](r)
			return x, err
		},
		encode: func(w *binaryio.Writer, _ *Field, v any) error {
			x, err := floatArray[V](v)
			if err != nil {
				return err
			}
			return binaryio.Encode(w, x)
		},
		verify: func(r *binaryio.Reader, _ *Field, expect any) error {
			x, err := floatArray[V](expect)
			if err != nil {
				return err
			}
			return binaryio.Verify(r, x)
		},
	}
}

func writePadded(w *binaryio.Writer, b []byte, size int) error {
	if len(b) > size {
		return fmt.Errorf("%d bytes do not fit in %d", len(b), size)
	}
	if err := w.WriteBytes(b); err != nil {
		return err
	}
	return w.WriteBytes(make([]byte, size-len(b)))
}

func unsigned[T uint8 | uint16 | uint32 | uint64](v any) (T, error) {
	u, err := toUint64(v)
	if err != nil {
		return 0, err
	}
	if uint64(T(u)) != u {
		return 0, fmt.Errorf("%d overflows %T", u, T(0))
	}
	return T(u), nil
}

func signed[T int8 | int16 | int32 | int64](v any) (T, error) {
	i, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if int64(T(i)) != i {
		return 0, fmt.Errorf("%d overflows %T", i, T(0))
	}
	return T(i), nil
}

func float[T float32 | float64](v any) (T, error) {
	f, err := toFloat64(v)
	return T(f), err
}

// The to* helpers accept what yaml.v3 produces for scalars: int, uint64,
// float64, bool and string. A nil value is the zero value.

func toUint64(v any) (uint64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		if x < 0 {
			return 0, fmt.Errorf("negative value %d", x)
		}
		return uint64(x), nil
	case uint64:
		return x, nil
	case float64:
		if x < 0 || x != math.Trunc(x) || x >= math.MaxUint64 {
			return 0, fmt.Errorf("%v is not an unsigned integer", x)
		}
		return uint64(x), nil
	case string:
		return strconv.ParseUint(strings.TrimSpace(x), 0, 64)
	}
	return 0, fmt.Errorf("cannot use %T as an unsigned integer", v)
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, fmt.Errorf("%d overflows int64", x)
		}
		return int64(x), nil
	case float64:
		if x != math.Trunc(x) || x < math.MinInt64 || x >= math.MaxInt64 {
			return 0, fmt.Errorf("%v is not an integer", x)
		}
		return int64(x), nil
	case string:
		return strconv.ParseInt(strings.TrimSpace(x), 0, 64)
	}
	return 0, fmt.Errorf("cannot use %T as an integer", v)
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case nil:
		return 0, nil
	case int:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	case float64:
		return x, nil
	case string:
		return strconv.ParseFloat(strings.TrimSpace(x), 64)
	}
	return 0, fmt.Errorf("cannot use %T as a float", v)
}

func toBool(v any) (bool, error) {
	switch x := v.(type) {
	case nil:
		return false, nil
	case bool:
		return x, nil
	case string:
		return strconv.ParseBool(x)
	}
	return false, fmt.Errorf("cannot use %T as a bool", v)
}

func toString(v any) (string, error) {
	switch x := v.(type) {
	case nil:
		return "", nil
	case string:
		return x, nil
	}
	return "", fmt.Errorf("cannot use %T as a string", v)
}

// toBytes takes a 0x-prefixed hex string.
func toBytes(v any) ([]byte, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case string:
		return hexutil.Decode(x)
	}
	return nil, fmt.Errorf("cannot use %T as hex bytes", v)
}

// floatArray builds a vector or column-major matrix from nested lists.
func floatArray[V any](v any) (V, error) {
	var out V
	err := fill(reflect.ValueOf(&out).Elem(), v)
	return out, err
}

func fill(dst reflect.Value, v any) error {
	if v == nil {
		return nil
	}
	if dst.Kind() != reflect.Array {
		f, err := toFloat64(v)
		if err != nil {
			return err
		}
		dst.SetFloat(f)
		return nil
	}
	items, ok := v.([]any)
	if !ok || len(items) != dst.Len() {
		return fmt.Errorf("want a list of %d values", dst.Len())
	}
	for i, item := range items {
		if err := fill(dst.Index(i), item); err != nil {
			return err
		}
	}
	return nil
}
