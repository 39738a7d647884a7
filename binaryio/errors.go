package binaryio

import (
	"errors"
	"fmt"
)

var (
	// ErrOutOfBounds is returned when a read would consume bytes past the
	// end of the buffer.
	ErrOutOfBounds = errors.New("out of bounds")
	// ErrVerifyMismatch is wrapped by MismatchError.
	ErrVerifyMismatch = errors.New("verify mismatch")
	// ErrUnbalancedScope is returned by PopScope when no scope was pushed or
	// the scope still holds patches that never ran.
	ErrUnbalancedScope = errors.New("unbalanced patch scope")
	// ErrNegativeOffset is returned when a seek resolves before the start.
	ErrNegativeOffset = errors.New("negative offset")
	// ErrInvalidWhence is returned for a seek origin other than io.SeekStart,
	// io.SeekCurrent or io.SeekEnd.
	ErrInvalidWhence = errors.New("invalid seek origin")
	// ErrInvalidAlignment is returned for alignment boundaries below 1.
	ErrInvalidAlignment = errors.New("invalid alignment")
	// ErrUnsupportedType is returned for types without a fixed layout.
	ErrUnsupportedType = errors.New("unsupported type")
	// ErrPointerOverflow is returned when a pointer does not fit the current
	// address width.
	ErrPointerOverflow = errors.New("pointer overflows address width")
)

// OffsetError records the operation and byte offset at which a cursor
// operation failed.
type OffsetError struct {
	Op     string
	Offset int64
	Err    error
}

func (e *OffsetError) Error() string {
	return fmt.Sprintf("binaryio: %s at offset 0x%x: %v", e.Op, e.Offset, e.Err)
}

func (e *OffsetError) Unwrap() error {
	return e.Err
}

// MismatchError is reported when a verified value differs from the expected
// one.
type MismatchError struct {
	Offset   int64
	Expected any
	Actual   any
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("binaryio: verify mismatch at offset 0x%x: expected %v, got %v", e.Offset, e.Expected, e.Actual)
}

func (e *MismatchError) Unwrap() error {
	return ErrVerifyMismatch
}
