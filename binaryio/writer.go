package binaryio

import (
	"errors"
	"fmt"
	"io"
	"math"
	"reflect"

	"github.com/sirupsen/logrus"

	"github.com/burninrubber0/libbinaryio/utils/align"
	"github.com/burninrubber0/libbinaryio/utils/fast"
)

// Writer is a sequential cursor over an owned buffer that grows as needed.
// Offsets handed out by a Writer stay valid for its whole lifetime.
type Writer struct {
	buf       *fast.Writer
	bigEndian bool
	wide      bool
	log       logrus.FieldLogger
	patches   patchStack
}

// NewWriter creates an empty Writer.
func NewWriter(cfg Config) *Writer {
	return &Writer{
		buf:       fast.NewWriter(make([]byte, 0, 256)),
		bigEndian: cfg.BigEndian,
		wide:      cfg.Wide,
		log:       cfg.logger(),
	}
}

// Offset is the current cursor position.
func (w *Writer) Offset() int64 {
	return int64(w.buf.Position())
}

// Len is the size of the buffer.
func (w *Writer) Len() int64 {
	return int64(w.buf.Len())
}

// Bytes materialises the buffer. The returned slice is a copy.
func (w *Writer) Bytes() []byte {
	out := make([]byte, w.buf.Len())
	copy(out, w.buf.Bytes())
	return out
}

// IsBigEndian reports the current byte order.
func (w *Writer) IsBigEndian() bool {
	return w.bigEndian
}

// SetBigEndian changes the byte order of subsequent writes.
func (w *Writer) SetBigEndian(big bool) {
	w.bigEndian = big
}

// Is64Bit reports whether pointers are 8 bytes wide.
func (w *Writer) Is64Bit() bool {
	return w.wide
}

// Set64Bit changes the address width of subsequent pointer writes.
func (w *Writer) Set64Bit(wide bool) {
	w.wide = wide
}

// PointerSize is 8 in 64-bit mode and 4 otherwise.
func (w *Writer) PointerSize() int {
	return pointerSize(w.wide)
}

// Seek moves the cursor relative to whence (io.SeekStart, io.SeekCurrent or
// io.SeekEnd). Seeking past the end zero-fills the buffer up to the new
// position first.
func (w *Writer) Seek(offset int64, whence int) (int64, error) {
	abs, err := resolveSeek(w.Offset(), w.Len(), offset, whence)
	if err != nil {
		return w.Offset(), err
	}
	if abs > fast.MaxSize {
		return w.Offset(), &OffsetError{Op: "seek", Offset: abs, Err: ErrOutOfBounds}
	}
	if err := w.buf.SetPosition(int(abs)); err != nil {
		if errors.Is(err, fast.ErrTooLarge) {
			err = ErrOutOfBounds
		} else {
			err = ErrNegativeOffset
		}
		return w.Offset(), &OffsetError{Op: "seek", Offset: abs, Err: err}
	}
	return abs, nil
}

// Skip advances the cursor by n bytes, zero-filling past the end.
func (w *Writer) Skip(n int64) error {
	_, err := w.Seek(n, io.SeekCurrent)
	return err
}

// Align moves the cursor to the next multiple of n.
func (w *Writer) Align(n int64) error {
	if n < 1 {
		return &OffsetError{Op: fmt.Sprintf("align %d", n), Offset: w.Offset(), Err: ErrInvalidAlignment}
	}
	return w.Skip(align.Padding(w.Offset(), n))
}

// AlignPointer aligns to the address width.
func (w *Writer) AlignPointer() error {
	return w.Align(int64(w.PointerSize()))
}

// Reserve steps over n bytes and returns the offset where they start. Bytes
// that did not exist yet read back as zero.
func (w *Writer) Reserve(n int64) (int64, error) {
	start := w.Offset()
	return start, w.Skip(n)
}

// writeUint stores the low size bytes of v in the writer's byte order.
func (w *Writer) writeUint(v uint64, size int) error {
	var tmp [8]byte
	for i := 0; i < size; i++ {
		b := byte(v >> (8 * i))
		if w.bigEndian {
			tmp[size-1-i] = b
		} else {
			tmp[i] = b
		}
	}
	_, err := w.buf.Write(tmp[:size])
	return err
}

func (w *Writer) U8(v uint8) error {
	return w.writeUint(uint64(v), 1)
}

func (w *Writer) U16(v uint16) error {
	return w.writeUint(uint64(v), 2)
}

func (w *Writer) U32(v uint32) error {
	return w.writeUint(uint64(v), 4)
}

func (w *Writer) U64(v uint64) error {
	return w.writeUint(v, 8)
}

func (w *Writer) I8(v int8) error {
	return w.writeUint(uint64(v), 1)
}

func (w *Writer) I16(v int16) error {
	return w.writeUint(uint64(v), 2)
}

func (w *Writer) I32(v int32) error {
	return w.writeUint(uint64(v), 4)
}

func (w *Writer) I64(v int64) error {
	return w.writeUint(uint64(v), 8)
}

func (w *Writer) F32(v float32) error {
	return w.writeUint(uint64(math.Float32bits(v)), 4)
}

func (w *Writer) F64(v float64) error {
	return w.writeUint(math.Float64bits(v), 8)
}

// Bool writes 1 for true and 0 for false.
func (w *Writer) Bool(v bool) error {
	if v {
		return w.writeUint(1, 1)
	}
	return w.writeUint(0, 1)
}

// WriteBytes writes raw bytes at the cursor.
func (w *Writer) WriteBytes(b []byte) error {
	_, err := w.buf.Write(b)
	return err
}

// WriteValue encodes any supported value. See Encode.
func (w *Writer) WriteValue(v any) error {
	if v == nil {
		return &OffsetError{Op: "encode <nil>", Offset: w.Offset(), Err: ErrUnsupportedType}
	}
	return w.writeValue(reflect.ValueOf(v))
}

// WritePointer aligns to the address width and writes a 4 or 8 byte pointer.
// In 32-bit mode values above math.MaxUint32 are rejected.
func (w *Writer) WritePointer(v uint64) error {
	if !w.wide && v > math.MaxUint32 {
		return &OffsetError{Op: fmt.Sprintf("write pointer 0x%x", v), Offset: w.Offset(), Err: ErrPointerOverflow}
	}
	if err := w.AlignPointer(); err != nil {
		return err
	}
	return w.writeUint(v, w.PointerSize())
}

// ReservePointer aligns, writes a null pointer and returns its offset so it
// can be patched once the target is known.
func (w *Writer) ReservePointer() (int64, error) {
	if err := w.AlignPointer(); err != nil {
		return w.Offset(), err
	}
	at := w.Offset()
	return at, w.writeUint(0, w.PointerSize())
}

// WriteString writes the bytes of s followed by a zero byte when
// nullTerminate is set. An empty string is a lone terminator or nothing.
func (w *Writer) WriteString(s string, nullTerminate bool) error {
	if _, err := w.buf.Write([]byte(s)); err != nil {
		return err
	}
	if nullTerminate {
		return w.buf.WriteByte(0)
	}
	return nil
}

// WriteAt runs p with the cursor at offset, then puts the cursor back.
func (w *Writer) WriteAt(offset int64, p Patch) error {
	prev := w.Offset()
	if _, err := w.Seek(offset, io.SeekStart); err != nil {
		return err
	}
	err := p(w)
	_ = w.buf.SetPosition(int(prev))
	return err
}

// Visit is WriteAt that also reports where the next 4 byte aligned field
// after the written data would start.
func (w *Writer) Visit(offset int64, p Patch) (int64, error) {
	prev := w.Offset()
	if _, err := w.Seek(offset, io.SeekStart); err != nil {
		return offset, err
	}
	err := p(w)
	next := align.Up(w.Offset(), 4)
	_ = w.buf.SetPosition(int(prev))
	return next, err
}

// Append copies the whole content of src to the end of w and leaves the
// cursor after it. It returns the offset at which src now starts. An empty
// src changes nothing. Patches still queued on src are not carried over.
func (w *Writer) Append(src *Writer) int64 {
	base := w.Len()
	if src == nil || src.Len() == 0 {
		return base
	}
	data := src.buf.Bytes()
	if src == w {
		data = src.Bytes()
	}
	_ = w.buf.SetPosition(int(base))
	_, _ = w.buf.Write(data)
	return base
}
