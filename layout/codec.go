package layout

import (
	"fmt"
	"io"
	"strconv"

	"github.com/ethereum/go-ethereum/common/hexutil"

	"github.com/burninrubber0/libbinaryio/binaryio"
)

// Value is one decoded field element.
type Value struct {
	Offset int64
	Name   string
	Type   string
	Data   any
}

// String renders the value as a dump line.
func (v Value) String() string {
	return fmt.Sprintf("0x%08x  %s  %s  %s", v.Offset, v.Name, v.Type, FormatData(v.Data))
}

// FormatData renders decoded data: pointers and byte strings in hex, text
// quoted, everything else in its natural Go form.
func FormatData(data any) string {
	switch x := data.(type) {
	case binaryio.Pointer:
		return hexutil.Uint64(x).String()
	case hexutil.Bytes:
		return x.String()
	case string:
		return strconv.Quote(x)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	}
	return fmt.Sprint(data)
}

// Decode reads the fields of l from r in order, switching r to the layout's
// byte order and address width first. Fields with an expected value are
// verified under r's verify mode; in strict mode the first mismatch stops
// decoding and the values read so far, including the mismatching one, are
// returned with the error.
func Decode(r *binaryio.Reader, l *Layout) ([]Value, error) {
	r.SetBigEndian(l.BigEndian)
	r.Set64Bit(l.Wide())

	var values []Value
	for i := range l.Fields {
		f := &l.Fields[i]
		k := kinds[f.Type]
		if err := alignReader(r, f); err != nil {
			return values, fieldError(f, err)
		}
		for j := 0; j < f.count(); j++ {
			expect, err := f.element(f.Expect, j)
			if err != nil {
				return values, fieldError(f, fmt.Errorf("expect: %w", err))
			}
			start := r.Offset()
			data, err := k.decode(r, f)
			if err != nil {
				return values, fieldError(f, err)
			}
			if f.Type != typePad {
				values = append(values, Value{Offset: start, Name: f.elementName(j), Type: f.Type, Data: data})
			}
			if expect == nil {
				continue
			}
			if _, err := r.Seek(start, io.SeekStart); err != nil {
				return values, fieldError(f, err)
			}
			if err := k.verify(r, f, expect); err != nil {
				return values, fieldError(f, err)
			}
		}
	}
	return values, nil
}

// Encode writes the fields of l at w's cursor, switching w to the layout's
// byte order and address width first. Pointer targets are resolved by
// deferred patches inside a scope of their own, so patches already queued on
// w are left alone.
func Encode(w *binaryio.Writer, l *Layout) error {
	w.SetBigEndian(l.BigEndian)
	w.Set64Bit(l.Wide())

	labels := make(map[string]int64)
	return w.Scope(func(w *binaryio.Writer) error {
		for i := range l.Fields {
			f := &l.Fields[i]
			if err := alignWriter(w, f); err != nil {
				return fieldError(f, err)
			}
			if f.Label != "" {
				labels[f.Label] = w.Offset()
			}
			if f.Target != "" {
				at, err := w.ReservePointer()
				if err != nil {
					return fieldError(f, err)
				}
				w.DeferAt(at, targetPatch(f, labels))
				continue
			}
			k := kinds[f.Type]
			for j := 0; j < f.count(); j++ {
				v, err := f.element(f.Value, j)
				if err != nil {
					return fieldError(f, fmt.Errorf("value: %w", err))
				}
				if err := k.encode(w, f, v); err != nil {
					return fieldError(f, err)
				}
			}
		}
		return nil
	})
}

// targetPatch writes the offset of the labelled field. Labels are looked up
// when the patch runs, after every field has been placed.
func targetPatch(f *Field, labels map[string]int64) binaryio.Patch {
	return func(w *binaryio.Writer) error {
		off, ok := labels[f.Target]
		if !ok {
			return fieldError(f, fmt.Errorf("%w: unknown target %q", ErrInvalidLayout, f.Target))
		}
		if err := w.WritePointer(uint64(off)); err != nil {
			return fieldError(f, err)
		}
		return nil
	}
}

// Pointers are aligned before a label is taken so the label points at the
// pointer itself.
func alignReader(r *binaryio.Reader, f *Field) error {
	if f.Align > 0 {
		if err := r.Align(f.Align); err != nil {
			return err
		}
	}
	if f.Type == typePtr {
		return r.AlignPointer()
	}
	return nil
}

func alignWriter(w *binaryio.Writer, f *Field) error {
	if f.Align > 0 {
		if err := w.Align(f.Align); err != nil {
			return err
		}
	}
	if f.Type == typePtr {
		return w.AlignPointer()
	}
	return nil
}

func fieldError(f *Field, err error) error {
	return fmt.Errorf("field %s (%s): %w", f.Name, f.Type, err)
}
