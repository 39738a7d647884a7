package fast

// buffer.go provides the raw byte cursors the codec is layered on.
//
// - Reader is a non-owning view over an immutable slice with a movable offset.
//   Every read is bounds checked and fails with ErrShortBuffer instead of
//   panicking; the offset is left unchanged on failure.
// - Writer owns its slice. Writes overwrite in place and append past the end,
//   and seeking past the end zero-extends the slice so the gap reads back as
//   zeroes.
//
// Neither type is safe for concurrent use.

import (
	"errors"
	"math"
)

var (
	// ErrShortBuffer is returned when a read needs more bytes than remain.
	ErrShortBuffer = errors.New("fast: short buffer")
	// ErrNegativePosition is returned when seeking before the start.
	ErrNegativePosition = errors.New("fast: negative position")
	// ErrTooLarge is returned when a Writer would grow past MaxSize.
	ErrTooLarge = errors.New("fast: buffer too large")
)

// MaxSize is the largest position a Writer cursor may reach.
const MaxSize = math.MaxInt32

type Reader struct {
	// buf is the underlying data source. It is never written to.
	buf []byte
	// offset tracks the current reading position (cursor). It may point past
	// the end; the next read then fails.
	offset int
}

type Writer struct {
	// buf is the accumulating byte slice.
	buf []byte
	// offset is where the next write lands.
	offset int
}

// NewReader creates a Reader to consume the provided byte slice.
func NewReader(bb []byte) *Reader {
	return &Reader{
		buf:    bb,
		offset: 0,
	}
}

// NewWriter creates a Writer that continues after the provided initial slice.
// Often called with `make([]byte, 0, capacity)` to pre-allocate memory.
func NewWriter(bb []byte) *Writer {
	return &Writer{
		buf:    bb,
		offset: len(bb),
	}
}

// Clone returns an independent Reader over the same buffer at the same offset.
func (b *Reader) Clone() *Reader {
	cp := *b
	return &cp
}

// Read consumes and returns the next 'n' bytes from the buffer.
//
// The returned slice shares memory with the original buffer.
func (b *Reader) Read(n int) ([]byte, error) {
	if n < 0 || b.offset+n > len(b.buf) || b.offset+n < b.offset {
		return nil, ErrShortBuffer
	}
	res := b.buf[b.offset : b.offset+n]
	b.offset += n
	return res, nil
}

// ReadByte consumes and returns a single byte.
func (b *Reader) ReadByte() (byte, error) {
	if b.offset >= len(b.buf) {
		return 0, ErrShortBuffer
	}
	res := b.buf[b.offset]
	b.offset++
	return res, nil
}

// IndexByte returns the distance from the cursor to the next occurrence of c,
// or -1 if c does not occur before the end.
func (b *Reader) IndexByte(c byte) int {
	if b.offset >= len(b.buf) {
		return -1
	}
	for i, v := range b.buf[b.offset:] {
		if v == c {
			return i
		}
	}
	return -1
}

// SetPosition moves the cursor. Positions past the end are allowed.
func (b *Reader) SetPosition(pos int) error {
	if pos < 0 {
		return ErrNegativePosition
	}
	b.offset = pos
	return nil
}

// Position returns the current cursor index of the Reader.
func (b *Reader) Position() int {
	return b.offset
}

// Bytes returns the entire underlying buffer of the Reader.
func (b *Reader) Bytes() []byte {
	return b.buf
}

// Len returns the size of the underlying buffer.
func (b *Reader) Len() int {
	return len(b.buf)
}

// Remaining returns how many bytes are left after the cursor.
func (b *Reader) Remaining() int {
	if b.offset >= len(b.buf) {
		return 0
	}
	return len(b.buf) - b.offset
}

// Empty checks if the Reader has reached the end of the buffer.
func (b *Reader) Empty() bool {
	return b.offset >= len(b.buf)
}

// WriteByte stores a single byte at the cursor.
func (b *Writer) WriteByte(v byte) error {
	if b.offset == len(b.buf) {
		b.buf = append(b.buf, v)
	} else {
		b.buf[b.offset] = v
	}
	b.offset++
	return nil
}

// Write stores a slice of bytes (bulk write) at the cursor, overwriting what
// is there and growing the buffer as needed.
func (b *Writer) Write(v []byte) (int, error) {
	n := copy(b.buf[b.offset:], v)
	b.buf = append(b.buf, v[n:]...)
	b.offset += len(v)
	return len(v), nil
}

// Extend appends n zero bytes to the end of the buffer without moving the
// cursor.
func (b *Writer) Extend(n int) {
	if n <= 0 {
		return
	}
	b.buf = append(b.buf, make([]byte, n)...)
}

// SetPosition moves the cursor, zero-filling the buffer up to pos first when
// pos lies past the end. Positions beyond MaxSize fail with ErrTooLarge.
func (b *Writer) SetPosition(pos int) error {
	if pos < 0 {
		return ErrNegativePosition
	}
	if pos > MaxSize {
		return ErrTooLarge
	}
	if pos > len(b.buf) {
		b.Extend(pos - len(b.buf))
	}
	b.offset = pos
	return nil
}

// Position returns the current cursor index of the Writer.
func (b *Writer) Position() int {
	return b.offset
}

// Len returns the size of the accumulated content.
func (b *Writer) Len() int {
	return len(b.buf)
}

// Bytes returns the accumulated content of the Writer. The slice aliases the
// Writer's storage until the next write.
func (b *Writer) Bytes() []byte {
	return b.buf
}
