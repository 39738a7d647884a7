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

// Reader is a sequential cursor over an immutable byte buffer.
type Reader struct {
	buf       *fast.Reader
	bigEndian bool
	wide      bool
	verify    VerifyMode
	log       logrus.FieldLogger
}

// NewReader creates a Reader at offset 0. The buffer is borrowed and never
// modified.
func NewReader(data []byte, cfg Config) *Reader {
	return &Reader{
		buf:       fast.NewReader(data),
		bigEndian: cfg.BigEndian,
		wide:      cfg.Wide,
		verify:    cfg.Verify,
		log:       cfg.logger(),
	}
}

// Clone returns an independent Reader over the same buffer with the same
// configuration and position.
func (r *Reader) Clone() *Reader {
	cp := *r
	cp.buf = r.buf.Clone()
	return &cp
}

// CloneAt is Clone positioned at an absolute offset.
func (r *Reader) CloneAt(offset int64) (*Reader, error) {
	cp := r.Clone()
	if _, err := cp.Seek(offset, io.SeekStart); err != nil {
		return nil, err
	}
	return cp, nil
}

// Follow returns a clone positioned at the target of a pointer value.
func (r *Reader) Follow(ptr uint64) (*Reader, error) {
	if ptr > math.MaxInt64 {
		return nil, &OffsetError{Op: "follow pointer", Offset: r.Offset(), Err: ErrOutOfBounds}
	}
	return r.CloneAt(int64(ptr))
}

// Offset is the current cursor position.
func (r *Reader) Offset() int64 {
	return int64(r.buf.Position())
}

// Len is the size of the underlying buffer.
func (r *Reader) Len() int64 {
	return int64(r.buf.Len())
}

// Remaining is the number of bytes after the cursor.
func (r *Reader) Remaining() int64 {
	return int64(r.buf.Remaining())
}

// EOF reports whether the cursor is at or past the end of the buffer.
func (r *Reader) EOF() bool {
	return r.buf.Empty()
}

// Bytes returns the underlying buffer. Callers must not modify it.
func (r *Reader) Bytes() []byte {
	return r.buf.Bytes()
}

// IsBigEndian reports the current byte order.
func (r *Reader) IsBigEndian() bool {
	return r.bigEndian
}

// SetBigEndian changes the byte order of subsequent reads.
func (r *Reader) SetBigEndian(big bool) {
	r.bigEndian = big
}

// Is64Bit reports whether pointers are 8 bytes wide.
func (r *Reader) Is64Bit() bool {
	return r.wide
}

// Set64Bit changes the address width of subsequent pointer reads.
func (r *Reader) Set64Bit(wide bool) {
	r.wide = wide
}

// PointerSize is 8 in 64-bit mode and 4 otherwise.
func (r *Reader) PointerSize() int {
	return pointerSize(r.wide)
}

func (r *Reader) VerifyMode() VerifyMode {
	return r.verify
}

// Seek moves the cursor relative to whence (io.SeekStart, io.SeekCurrent or
// io.SeekEnd) and returns the new absolute offset. Positions past the end are
// accepted; the next read fails instead.
func (r *Reader) Seek(offset int64, whence int) (int64, error) {
	abs, err := resolveSeek(r.Offset(), r.Len(), offset, whence)
	if err != nil {
		return r.Offset(), err
	}
	if int64(int(abs)) != abs {
		return r.Offset(), &OffsetError{Op: "seek", Offset: abs, Err: ErrOutOfBounds}
	}
	if err := r.buf.SetPosition(int(abs)); err != nil {
		return r.Offset(), &OffsetError{Op: "seek", Offset: abs, Err: ErrNegativeOffset}
	}
	return abs, nil
}

// Skip advances the cursor by n bytes.
func (r *Reader) Skip(n int64) error {
	_, err := r.Seek(n, io.SeekCurrent)
	return err
}

// Align moves the cursor to the next multiple of n.
func (r *Reader) Align(n int64) error {
	if n < 1 {
		return &OffsetError{Op: fmt.Sprintf("align %d", n), Offset: r.Offset(), Err: ErrInvalidAlignment}
	}
	return r.Skip(align.Padding(r.Offset(), n))
}

// AlignPointer aligns to the address width.
func (r *Reader) AlignPointer() error {
	return r.Align(int64(r.PointerSize()))
}

// readUint assembles size bytes into an unsigned accumulator honouring the
// byte order.
func (r *Reader) readUint(size int, op string) (uint64, error) {
	start := r.Offset()
	b, err := r.buf.Read(size)
	if err != nil {
		return 0, r.wrapError(op, start, err)
	}
	var v uint64
	for i := 0; i < size; i++ {
		if r.bigEndian {
			v |= uint64(b[size-1-i]) << (8 * i)
		} else {
			v |= uint64(b[i]) << (8 * i)
		}
	}
	return v, nil
}

func (r *Reader) wrapError(op string, offset int64, err error) error {
	if errors.Is(err, fast.ErrShortBuffer) {
		err = ErrOutOfBounds
	}
	return &OffsetError{Op: op, Offset: offset, Err: err}
}

func (r *Reader) U8() (uint8, error) {
	start := r.Offset()
	b, err := r.buf.ReadByte()
	if err != nil {
		return 0, r.wrapError("read u8", start, err)
	}
	return b, nil
}

func (r *Reader) U16() (uint16, error) {
	v, err := r.readUint(2, "read u16")
	return uint16(v), err
}

func (r *Reader) U32() (uint32, error) {
	v, err := r.readUint(4, "read u32")
	return uint32(v), err
}

func (r *Reader) U64() (uint64, error) {
	return r.readUint(8, "read u64")
}

func (r *Reader) I8() (int8, error) {
	v, err := r.readUint(1, "read i8")
	return int8(v), err
}

func (r *Reader) I16() (int16, error) {
	v, err := r.readUint(2, "read i16")
	return int16(v), err
}

func (r *Reader) I32() (int32, error) {
	v, err := r.readUint(4, "read i32")
	return int32(v), err
}

func (r *Reader) I64() (int64, error) {
	v, err := r.readUint(8, "read i64")
	return int64(v), err
}

func (r *Reader) F32() (float32, error) {
	v, err := r.readUint(4, "read f32")
	return math.Float32frombits(uint32(v)), err
}

func (r *Reader) F64() (float64, error) {
	v, err := r.readUint(8, "read f64")
	return math.Float64frombits(v), err
}

// Bool reads one byte; any non-zero value is true.
func (r *Reader) Bool() (bool, error) {
	v, err := r.readUint(1, "read bool")
	return v != 0, err
}

// ReadBytes returns a copy of the next n bytes.
func (r *Reader) ReadBytes(n int) ([]byte, error) {
	start := r.Offset()
	b, err := r.buf.Read(n)
	if err != nil {
		return nil, r.wrapError(fmt.Sprintf("read %d bytes", n), start, err)
	}
	out := make([]byte, n)
	copy(out, b)
	return out, nil
}

// ReadValue decodes into the value dst points to. See Decode.
func (r *Reader) ReadValue(dst any) error {
	rv := reflect.ValueOf(dst)
	if rv.Kind() != reflect.Pointer || rv.IsNil() {
		return &OffsetError{Op: fmt.Sprintf("decode %T", dst), Offset: r.Offset(), Err: ErrUnsupportedType}
	}
	start := r.Offset()
	if err := r.readValue(rv.Elem()); err != nil {
		_ = r.buf.SetPosition(int(start))
		return err
	}
	return nil
}

// ReadPointer aligns to the address width and reads a 4 or 8 byte pointer,
// zero-extended to 64 bits.
func (r *Reader) ReadPointer() (uint64, error) {
	start := r.Offset()
	if err := r.AlignPointer(); err != nil {
		return 0, err
	}
	v, err := r.readUint(r.PointerSize(), "read pointer")
	if err != nil {
		_ = r.buf.SetPosition(int(start))
		return 0, err
	}
	return v, nil
}

// SkipPointer aligns to the address width and steps over one pointer.
func (r *Reader) SkipPointer() error {
	if err := r.AlignPointer(); err != nil {
		return err
	}
	return r.Skip(int64(r.PointerSize()))
}

// VerifyPointer reads a pointer and compares it with expected under the
// verify mode.
func (r *Reader) VerifyPointer(expected uint64) error {
	if err := r.AlignPointer(); err != nil {
		return err
	}
	start := r.Offset()
	actual, err := r.ReadPointer()
	if err != nil {
		return err
	}
	if actual == expected {
		return nil
	}
	return r.mismatch(start, expected, actual)
}

// CString reads bytes up to a zero terminator. The terminator is consumed but
// not returned.
func (r *Reader) CString() (string, error) {
	start := r.Offset()
	n := r.buf.IndexByte(0)
	if n < 0 {
		return "", &OffsetError{Op: "read cstring", Offset: start, Err: ErrOutOfBounds}
	}
	b, err := r.buf.Read(n + 1)
	if err != nil {
		return "", r.wrapError("read cstring", start, err)
	}
	return string(b[:n]), nil
}

// CStringAligned reads a C string and then aligns to the address width, the
// way string tables padded to pointer size are laid out.
func (r *Reader) CStringAligned() (string, error) {
	s, err := r.CString()
	if err != nil {
		return "", err
	}
	return s, r.AlignPointer()
}

// String reads exactly n bytes, zero bytes included.
func (r *Reader) String(n int) (string, error) {
	start := r.Offset()
	b, err := r.buf.Read(n)
	if err != nil {
		return "", r.wrapError(fmt.Sprintf("read string[%d]", n), start, err)
	}
	return string(b), nil
}

// mismatch applies the verify policy to a failed comparison.
func (r *Reader) mismatch(offset int64, expected, actual any) error {
	err := &MismatchError{Offset: offset, Expected: expected, Actual: actual}
	entry := r.log.WithFields(logrus.Fields{
		"offset":   fmt.Sprintf("0x%x", offset),
		"expected": expected,
		"actual":   actual,
	})
	if r.verify == VerifyLenient {
		entry.Warn("verify mismatch")
		return nil
	}
	entry.Error("verify mismatch")
	return err
}

// resolveSeek turns a (offset, whence) pair into an absolute position.
func resolveSeek(cur, size, offset int64, whence int) (int64, error) {
	var abs int64
	switch whence {
	case io.SeekStart:
		abs = offset
	case io.SeekCurrent:
		abs = cur + offset
	case io.SeekEnd:
		abs = size + offset
	default:
		return cur, &OffsetError{Op: fmt.Sprintf("seek whence %d", whence), Offset: cur, Err: ErrInvalidWhence}
	}
	if abs < 0 {
		return cur, &OffsetError{Op: "seek", Offset: abs, Err: ErrNegativeOffset}
	}
	return abs, nil
}
