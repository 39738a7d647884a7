package binaryio

import (
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriter_SeekZeroExtends(t *testing.T) {
	require := require.New(t)
	w := NewWriter(DefaultConfig())

	off, err := w.Seek(8, io.SeekStart)
	require.NoError(err)
	require.Equal(int64(8), off)
	require.Equal(int64(8), w.Len())
	require.Equal(make([]byte, 8), w.Bytes())

	require.NoError(w.U8(0xFF))
	off, err = w.Seek(3, io.SeekCurrent)
	require.NoError(err)
	require.Equal(int64(12), off)
	require.Equal(int64(12), w.Len())

	off, err = w.Seek(4, io.SeekEnd)
	require.NoError(err)
	require.Equal(int64(16), off)
	require.Equal([]byte{0, 0, 0, 0, 0, 0, 0, 0, 0xFF, 0, 0, 0, 0, 0, 0, 0}, w.Bytes())

	_, err = w.Seek(-17, io.SeekEnd)
	require.ErrorIs(err, ErrNegativeOffset)
	_, err = w.Seek(0, -1)
	require.ErrorIs(err, ErrInvalidWhence)

	// Seeking back and overwriting does not grow the buffer.
	_, err = w.Seek(0, io.SeekStart)
	require.NoError(err)
	require.NoError(w.U32(0x01020304))
	require.Equal(int64(16), w.Len())
	require.Equal(int64(4), w.Offset())
}

func TestWriter_SeekTooFar(t *testing.T) {
	w := NewWriter(DefaultConfig())
	require.NoError(t, w.U32(1))

	_, err := w.Seek(1<<62, io.SeekStart)
	require.ErrorIs(t, err, ErrOutOfBounds)
	assert.Equal(t, int64(4), w.Offset())
	assert.Equal(t, int64(4), w.Len())

	require.ErrorIs(t, w.Skip(1<<40), ErrOutOfBounds)
	_, err = w.Reserve(1 << 40)
	require.ErrorIs(t, err, ErrOutOfBounds)
	require.ErrorIs(t, w.WriteAt(1<<40, func(*Writer) error { return nil }), ErrOutOfBounds)

	w.DeferAt(1<<40, func(w *Writer) error { return w.U8(1) })
	require.ErrorIs(t, w.Drain(), ErrOutOfBounds)
	assert.Equal(t, int64(4), w.Offset())
	assert.Equal(t, int64(4), w.Len())
}

func TestWriter_BytesIsACopy(t *testing.T) {
	w := NewWriter(DefaultConfig())
	require.NoError(t, w.U8(1))
	b := w.Bytes()
	b[0] = 2
	assert.Equal(t, []byte{1}, w.Bytes())
}

func TestWriter_AlignAndReserve(t *testing.T) {
	require := require.New(t)
	w := NewWriter(DefaultConfig())

	require.NoError(w.U8(1))
	require.NoError(w.Align(4))
	require.Equal(int64(4), w.Offset())
	require.NoError(w.Align(4))
	require.Equal(int64(4), w.Offset())
	require.NoError(w.Align(1))
	require.Equal(int64(4), w.Offset())
	require.ErrorIs(w.Align(-4), ErrInvalidAlignment)

	at, err := w.Reserve(6)
	require.NoError(err)
	require.Equal(int64(4), at)
	require.Equal(int64(10), w.Offset())
	require.Equal(int64(10), w.Len())

	require.NoError(w.AlignPointer())
	require.Equal(int64(12), w.Offset())
}

// TestPointer_WidthSwitching writes a 32-bit pointer, switches to 64-bit and
// writes another; each is aligned for its own width.
func TestPointer_WidthSwitching(t *testing.T) {
	require := require.New(t)
	for _, big := range []bool{false, true} {
		w := NewWriter(Config{BigEndian: big})

		require.NoError(w.U8(0xEE))
		require.NoError(w.WritePointer(0xDEADBEEF))
		require.Equal(int64(8), w.Offset(), "32-bit pointer aligned to 4 and 4 wide")

		require.NoError(w.U8(0xEE))
		w.Set64Bit(true)
		require.True(w.Is64Bit())
		require.Equal(8, w.PointerSize())
		require.NoError(w.WritePointer(0x0123456789ABCDEF))
		require.Equal(int64(24), w.Offset(), "64-bit pointer aligned to 8 and 8 wide")

		r := NewReader(w.Bytes(), Config{BigEndian: big})
		_, err := r.U8()
		require.NoError(err)
		p, err := r.ReadPointer()
		require.NoError(err)
		require.Equal(uint64(0xDEADBEEF), p)
		require.Equal(int64(8), r.Offset())

		_, err = r.U8()
		require.NoError(err)
		r.Set64Bit(true)
		p, err = r.ReadPointer()
		require.NoError(err)
		require.Equal(uint64(0x0123456789ABCDEF), p)
		require.Equal(int64(24), r.Offset())
	}
}

func TestPointer_SkipVerifyOverflow(t *testing.T) {
	w := NewWriter(DefaultConfig())
	require.NoError(t, w.U16(1))
	err := w.WritePointer(1 << 32)
	require.ErrorIs(t, err, ErrPointerOverflow)
	require.Equal(t, int64(2), w.Offset(), "rejected pointer writes nothing")

	require.NoError(t, w.WritePointer(0x40))
	require.NoError(t, w.WritePointer(0x80))

	r := NewReader(w.Bytes(), DefaultConfig())
	require.NoError(t, r.Skip(2))
	require.NoError(t, r.SkipPointer())
	require.Equal(t, int64(8), r.Offset())
	require.NoError(t, r.VerifyPointer(0x80))

	// Zero-extension of 32-bit pointers.
	r = NewReader([]byte{0xFF, 0xFF, 0xFF, 0xFF}, DefaultConfig())
	p, err := r.ReadPointer()
	require.NoError(t, err)
	require.Equal(t, uint64(0xFFFFFFFF), p)

	// A pointer that does not fit restores the pre-alignment position.
	r = NewReader([]byte{1, 2, 3, 4, 5, 6}, DefaultConfig())
	require.NoError(t, r.Skip(1))
	_, err = r.ReadPointer()
	require.ErrorIs(t, err, ErrOutOfBounds)
	require.Equal(t, int64(1), r.Offset())
}

func TestWriter_ReservePointer(t *testing.T) {
	w := NewWriter(Config{Wide: true})
	require.NoError(t, w.U8(1))
	at, err := w.ReservePointer()
	require.NoError(t, err)
	require.Equal(t, int64(8), at)
	require.Equal(t, int64(16), w.Len())
}

func TestWriter_Strings(t *testing.T) {
	w := NewWriter(DefaultConfig())
	require.NoError(t, w.WriteString("ab", true))
	require.NoError(t, w.WriteString("cd", false))
	require.NoError(t, w.WriteString("", false))
	require.NoError(t, w.WriteString("", true))
	assert.Equal(t, []byte{'a', 'b', 0, 'c', 'd', 0}, w.Bytes())
}

func TestWriter_Append(t *testing.T) {
	require := require.New(t)

	main := NewWriter(DefaultConfig())
	require.NoError(main.U32(0x11111111))
	_, err := main.Seek(0, io.SeekStart)
	require.NoError(err)

	sub := NewWriter(DefaultConfig())
	require.NoError(sub.U16(0x2222))

	base := main.Append(sub)
	require.Equal(int64(4), base)
	require.Equal(int64(6), main.Offset(), "cursor moves to the new end")
	require.Equal([]byte{0x11, 0x11, 0x11, 0x11, 0x22, 0x22}, main.Bytes())

	empty := NewWriter(DefaultConfig())
	require.Equal(int64(6), main.Append(empty))
	require.Equal(int64(6), main.Append(nil))
	require.Equal(int64(6), main.Len())

	require.Equal(int64(6), main.Append(main))
	require.Equal(int64(12), main.Len())
	require.Equal(main.Bytes()[:6], main.Bytes()[6:])

	require.Equal(int64(2), sub.Len(), "source is left untouched")
}

func TestWriter_WriteAtAndVisit(t *testing.T) {
	require := require.New(t)
	w := NewWriter(DefaultConfig())
	require.NoError(w.U64(0))

	require.NoError(w.WriteAt(2, func(w *Writer) error {
		return w.U16(0xBEEF)
	}))
	require.Equal(int64(8), w.Offset())
	require.Equal([]byte{0, 0, 0xEF, 0xBE, 0, 0, 0, 0}, w.Bytes())

	next, err := w.Visit(12, func(w *Writer) error {
		return w.WriteString("abc", true)
	})
	require.NoError(err)
	require.Equal(int64(16), next, "next field after 12+4 bytes")
	require.Equal(int64(8), w.Offset())
	require.Equal(int64(16), w.Len())

	next, err = w.Visit(16, func(w *Writer) error {
		return w.WriteString("abcde", true)
	})
	require.NoError(err)
	require.Equal(int64(24), next)

	err = w.WriteAt(-1, func(w *Writer) error { return nil })
	require.ErrorIs(err, ErrNegativeOffset)
}
