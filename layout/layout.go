// Package layout describes binary records declaratively in YAML and runs them
// through the binaryio cursors.
//
// A layout is an ordered list of fields:
//
//	big_endian: false
//	address_width: 32
//	fields:
//	  - {name: magic, type: u32, expect: 0x4b434150}
//	  - {name: names, type: ptr, target: strings}
//	  - {name: count, type: u16, value: 2}
//	  - {name: _, type: pad, length: 2}
//	  - {name: first, type: cstr, label: strings, value: one}
//
// Pointer fields with a target are written as placeholders and patched once
// the labelled field has been placed, so targets may appear later in the
// layout than the pointer.
package layout

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/burninrubber0/libbinaryio/binaryio"
)

// ErrInvalidLayout is returned for layouts that fail validation.
var ErrInvalidLayout = errors.New("invalid layout")

// Layout is one record description.
type Layout struct {
	BigEndian    bool    `yaml:"big_endian"`
	AddressWidth int     `yaml:"address_width"`
	Fields       []Field `yaml:"fields"`
}

// Field is a single entry of a layout.
type Field struct {
	Name string `yaml:"name"`
	// Label names the offset of this field so pointer fields can target it.
	Label string `yaml:"label,omitempty"`
	Type  string `yaml:"type"`
	// Count repeats the field. Zero means one.
	Count int `yaml:"count,omitempty"`
	// Length is the byte size of str, bytes and pad fields. A str value is
	// zero padded to Length on encode and its trailing zero bytes are dropped
	// on decode, so text that itself ends in a zero byte does not survive a
	// round trip. Use bytes for data where trailing zeros matter.
	Length int `yaml:"length,omitempty"`
	// Value is written by Encode. A missing value encodes as zero.
	Value any `yaml:"value,omitempty"`
	// Expect is checked by Decode under the reader's verify mode.
	Expect any `yaml:"expect,omitempty"`
	// Target is the label a ptr field points at.
	Target string `yaml:"target,omitempty"`
	// Align moves the cursor to a multiple of Align before the field.
	Align int64 `yaml:"align,omitempty"`
}

// Wide reports whether the layout uses 64-bit pointers.
func (l *Layout) Wide() bool {
	return l.AddressWidth == 64
}

// Config returns base with the layout's byte order and address width.
func (l *Layout) Config(base binaryio.Config) binaryio.Config {
	base.BigEndian = l.BigEndian
	base.Wide = l.Wide()
	return base
}

// Load reads and validates a layout file.
func Load(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read layout file: %w", err)
	}
	l, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return l, nil
}

// Parse decodes a layout document. Unknown keys are rejected.
func Parse(data []byte) (*Layout, error) {
	var l Layout
	decoder := yaml.NewDecoder(bytes.NewReader(data))
	decoder.KnownFields(true)
	if err := decoder.Decode(&l); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}
	if err := l.Validate(); err != nil {
		return nil, err
	}
	return &l, nil
}

// Validate checks field types, sizes and pointer targets.
func (l *Layout) Validate() error {
	switch l.AddressWidth {
	case 0, 32, 64:
	default:
		return fmt.Errorf("%w: address_width must be 32 or 64, got %d", ErrInvalidLayout, l.AddressWidth)
	}
	if len(l.Fields) == 0 {
		return fmt.Errorf("%w: no fields", ErrInvalidLayout)
	}

	labels := make(map[string]bool)
	for i := range l.Fields {
		f := &l.Fields[i]
		if f.Label == "" {
			continue
		}
		if labels[f.Label] {
			return f.invalid(i, "duplicate label %q", f.Label)
		}
		labels[f.Label] = true
	}

	for i := range l.Fields {
		f := &l.Fields[i]
		k, ok := kinds[f.Type]
		switch {
		case !ok:
			return f.invalid(i, "unknown type %q", f.Type)
		case f.Name == "" && f.Type != typePad:
			return f.invalid(i, "name is required")
		case f.Count < 0:
			return f.invalid(i, "negative count")
		case f.Align < 0:
			return f.invalid(i, "negative align")
		case k.sized && f.Length <= 0:
			return f.invalid(i, "%s needs a positive length", f.Type)
		case !k.sized && f.Length != 0:
			return f.invalid(i, "%s does not take a length", f.Type)
		case f.Expect != nil && k.verify == nil:
			return f.invalid(i, "%s cannot be verified", f.Type)
		}
		if f.Target == "" {
			continue
		}
		switch {
		case f.Type != typePtr:
			return f.invalid(i, "only ptr fields take a target")
		case f.Value != nil:
			return f.invalid(i, "target and value are exclusive")
		case f.count() != 1:
			return f.invalid(i, "a targeted pointer cannot repeat")
		case !labels[f.Target]:
			return f.invalid(i, "unknown target %q", f.Target)
		}
	}
	return nil
}

func (f *Field) invalid(i int, format string, args ...any) error {
	return fmt.Errorf("%w: field %d (%s): %s", ErrInvalidLayout, i, f.Name, fmt.Sprintf(format, args...))
}

func (f *Field) count() int {
	if f.Count == 0 {
		return 1
	}
	return f.Count
}

// elementName is the field name, indexed when the field repeats.
func (f *Field) elementName(i int) string {
	if f.Count == 0 {
		return f.Name
	}
	return fmt.Sprintf("%s[%d]", f.Name, i)
}

// element picks the i-th entry of a repeated value. A nil value stays nil.
func (f *Field) element(v any, i int) (any, error) {
	if v == nil || f.Count == 0 {
		return v, nil
	}
	items, ok := v.([]any)
	if !ok || len(items) != f.Count {
		return nil, fmt.Errorf("want a list of %d values", f.Count)
	}
	return items[i], nil
}
