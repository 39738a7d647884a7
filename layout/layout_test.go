package layout

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/burninrubber0/libbinaryio/binaryio"
)

const packLayout = `
big_endian: false
address_width: 32
fields:
  - {name: magic, type: u32, value: 0x4b434150, expect: 0x4b434150}
  - {name: names, type: ptr, target: strings}
  - {name: count, type: u16, value: 2}
  - {type: pad, length: 2}
  - {name: scale, type: f32, value: 1.5}
  - {name: origin, type: vec3, value: [1, 2, 3]}
  - {name: flags, type: u8, count: 2, value: [1, 0xff]}
  - {name: first, type: cstr, label: strings, value: one}
  - {name: second, type: cstr, value: two}
`

func quietConfig(verify binaryio.VerifyMode) (binaryio.Config, *logtest.Hook) {
	logger, hook := logtest.NewNullLogger()
	return binaryio.Config{Verify: verify, Logger: logger}, hook
}

func build(t *testing.T, doc string) (*Layout, []byte) {
	l, err := Parse([]byte(doc))
	require.NoError(t, err)
	cfg, _ := quietConfig(binaryio.VerifyStrict)
	w := binaryio.NewWriter(cfg)
	require.NoError(t, Encode(w, l))
	return l, w.Bytes()
}

func TestEncode_ForwardPointer(t *testing.T) {
	_, data := build(t, packLayout)

	require.Len(t, data, 38)
	assert.Equal(t, []byte{0x50, 0x41, 0x43, 0x4b}, data[0:4])
	assert.Equal(t, []byte{0x1e, 0, 0, 0}, data[4:8], "pointer patched to the labelled string")
	assert.Equal(t, []byte{2, 0, 0, 0}, data[8:12])
	assert.Equal(t, []byte{0, 0, 0xc0, 0x3f}, data[12:16])
	assert.Equal(t, []byte{1, 0xff}, data[28:30])
	assert.Equal(t, "one\x00two\x00", string(data[30:]))
}

func TestDecode_RoundTrip(t *testing.T) {
	l, data := build(t, packLayout)
	cfg, hook := quietConfig(binaryio.VerifyStrict)

	values, err := Decode(binaryio.NewReader(data, cfg), l)
	require.NoError(t, err)
	assert.Empty(t, hook.Entries)

	var lines []string
	for _, v := range values {
		lines = append(lines, v.String())
	}
	assert.Equal(t, []string{
		`0x00000000  magic  u32  1262698832`,
		`0x00000004  names  ptr  0x1e`,
		`0x00000008  count  u16  2`,
		`0x0000000c  scale  f32  1.5`,
		`0x00000010  origin  vec3  [1 2 3]`,
		`0x0000001c  flags[0]  u8  1`,
		`0x0000001d  flags[1]  u8  255`,
		`0x0000001e  first  cstr  "one"`,
		`0x00000022  second  cstr  "two"`,
	}, lines)

	ptr := values[1].Data.(binaryio.Pointer)
	target, err := binaryio.NewReader(data, cfg).Follow(uint64(ptr))
	require.NoError(t, err)
	s, err := target.CString()
	require.NoError(t, err)
	assert.Equal(t, "one", s)
}

func TestDecode_Verify(t *testing.T) {
	doc := `
fields:
  - {name: magic, type: u32, expect: 7}
  - {name: version, type: u16, expect: 2}
`
	l, err := Parse([]byte(doc))
	require.NoError(t, err)
	data := []byte{1, 0, 0, 0, 2, 0}

	t.Run("strict", func(t *testing.T) {
		cfg, hook := quietConfig(binaryio.VerifyStrict)
		values, err := Decode(binaryio.NewReader(data, cfg), l)
		require.ErrorIs(t, err, binaryio.ErrVerifyMismatch)
		assert.Contains(t, err.Error(), "field magic (u32)")
		require.Len(t, values, 1, "the mismatching value is still reported")
		assert.Equal(t, uint32(1), values[0].Data)
		require.Len(t, hook.Entries, 1)
		assert.Equal(t, logrus.ErrorLevel, hook.LastEntry().Level)
	})

	t.Run("lenient", func(t *testing.T) {
		cfg, hook := quietConfig(binaryio.VerifyLenient)
		values, err := Decode(binaryio.NewReader(data, cfg), l)
		require.NoError(t, err)
		require.Len(t, values, 2)
		assert.Equal(t, uint16(2), values[1].Data)
		require.Len(t, hook.Entries, 1)
		assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	})
}

func TestEncode_WideBigEndian(t *testing.T) {
	doc := `
big_endian: true
address_width: 64
fields:
  - {name: tag, type: u8, value: 9}
  - {name: body, type: ptr, target: body}
  - {name: id, type: bytes, length: 4, value: "0xdeadbeef"}
  - {name: title, type: str, length: 6, value: abc}
  - {name: basis, type: mat3, label: body, align: 16, value: [[1, 0, 0], [0, 1, 0], [0, 0, 1]]}
  - {name: depth, type: i16, value: -2}
`
	l, data := build(t, doc)

	require.Len(t, data, 32+36+2)
	assert.Equal(t, []byte{0, 0, 0, 0, 0, 0, 0, 32}, data[8:16], "label taken after the field is aligned")
	assert.Equal(t, []byte{0xde, 0xad, 0xbe, 0xef}, data[16:20])
	assert.Equal(t, []byte{0x3f, 0x80, 0, 0}, data[32:36], "first column starts with 1.0")
	assert.Equal(t, []byte{0xff, 0xfe}, data[68:70])

	cfg, _ := quietConfig(binaryio.VerifyStrict)
	r := binaryio.NewReader(data, cfg)
	values, err := Decode(r, l)
	require.NoError(t, err)
	assert.True(t, r.IsBigEndian())
	assert.True(t, r.Is64Bit())

	require.Len(t, values, 6)
	assert.Equal(t, binaryio.Pointer(32), values[1].Data)
	assert.Equal(t, "0xdeadbeef", FormatData(values[2].Data))
	assert.Equal(t, "abc", values[3].Data)
	assert.Equal(t, int64(32), values[4].Offset)
	assert.Equal(t, binaryio.Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}, values[4].Data)
	assert.Equal(t, int16(-2), values[5].Data)
}

func TestEncode_KeepsOuterPatches(t *testing.T) {
	l, err := Parse([]byte(packLayout))
	require.NoError(t, err)
	cfg, _ := quietConfig(binaryio.VerifyStrict)
	w := binaryio.NewWriter(cfg)

	at, err := w.Reserve(4)
	require.NoError(t, err)
	w.DeferAt(at, func(w *binaryio.Writer) error {
		return w.U32(uint32(w.Len()))
	})

	require.NoError(t, Encode(w, l))
	require.Equal(t, 1, w.Pending())
	require.Zero(t, w.ScopeDepth())
	require.NoError(t, w.Drain())

	data := w.Bytes()
	assert.Equal(t, []byte{42, 0, 0, 0}, data[0:4])
	assert.Equal(t, []byte{0x22, 0, 0, 0}, data[8:12], "labels are absolute offsets in the writer")
}

func TestDecode_FixedStringPadding(t *testing.T) {
	doc := `
fields:
  - {name: title, type: str, length: 4, value: "ab\0"}
  - {name: raw, type: bytes, length: 4, value: "0x61620000"}
`
	l, data := build(t, doc)
	assert.Equal(t, []byte("ab\x00\x00ab\x00\x00"), data)

	cfg, _ := quietConfig(binaryio.VerifyStrict)
	values, err := Decode(binaryio.NewReader(data, cfg), l)
	require.NoError(t, err)
	require.Len(t, values, 2)
	assert.Equal(t, "ab", values[0].Data, "trailing zero bytes are padding")
	assert.Equal(t, "0x61620000", FormatData(values[1].Data), "bytes keep them")
}

func TestEncode_ValueErrors(t *testing.T) {
	for name, doc := range map[string]string{
		"overflows uint8":   `fields: [{name: a, type: u8, value: 300}]`,
		"want a list of 2":  `fields: [{name: a, type: u8, count: 2, value: [1]}]`,
		"do not fit in 2":   `fields: [{name: a, type: str, length: 2, value: abc}]`,
		"want a list of 3":  `fields: [{name: a, type: vec3, value: [1, 2]}]`,
		"as an unsigned":    `fields: [{name: a, type: u32, value: [1]}]`,
		"negative value":    `fields: [{name: a, type: ptr, value: -1}]`,
		"without 0x prefix": `fields: [{name: a, type: bytes, length: 1, value: "zz"}]`,
	} {
		t.Run(name, func(t *testing.T) {
			l, err := Parse([]byte(doc))
			require.NoError(t, err)
			err = Encode(binaryio.NewWriter(binaryio.Config{}), l)
			require.Error(t, err)
			assert.Contains(t, err.Error(), name)
			assert.Contains(t, err.Error(), "field a")
		})
	}
}

func TestParse_Invalid(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown type":            `fields: [{name: a, type: u24}]`,
		"name is required":        `fields: [{type: u8}]`,
		"needs a positive length": `fields: [{name: a, type: str}]`,
		"does not take a length":  `fields: [{name: a, type: u8, length: 2}]`,
		"cannot be verified":      `fields: [{name: a, type: bytes, length: 2, expect: "0x0000"}]`,
		"only ptr fields":         `fields: [{name: a, type: u32, target: b}, {name: b, type: u8, label: b}]`,
		"unknown target":          `fields: [{name: a, type: ptr, target: nowhere}]`,
		"duplicate label":         `fields: [{name: a, type: u8, label: x}, {name: b, type: u8, label: x}]`,
		"exclusive":               `fields: [{name: a, type: ptr, target: a, label: a, value: 1}]`,
		"address_width":           "address_width: 16\nfields: [{name: a, type: u8}]",
		"no fields":               `big_endian: true`,
		"negative count":          `fields: [{name: a, type: u8, count: -1}]`,
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.ErrorIs(t, err, ErrInvalidLayout)
			assert.Contains(t, err.Error(), name)
		})
	}

	_, err := Parse([]byte(`fields: [{name: a, type: u8, vlaue: 1}]`))
	require.Error(t, err, "unknown keys are rejected")
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pack.yaml")
	require.NoError(t, os.WriteFile(path, []byte(packLayout), 0o600))

	l, err := Load(path)
	require.NoError(t, err)
	assert.Len(t, l.Fields, 9)
	assert.False(t, l.Wide())

	cfg := l.Config(binaryio.Config{BigEndian: true, Wide: true, Verify: binaryio.VerifyLenient})
	assert.False(t, cfg.BigEndian)
	assert.False(t, cfg.Wide)
	assert.Equal(t, binaryio.VerifyLenient, cfg.Verify)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	require.Error(t, err)
}
