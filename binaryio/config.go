package binaryio

import (
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
)

// VerifyMode selects what happens when a verified value does not match.
type VerifyMode uint8

const (
	// VerifyStrict logs the mismatch at error level and returns a
	// *MismatchError. Callers are expected to abort decoding.
	VerifyStrict VerifyMode = iota
	// VerifyLenient logs the mismatch at warning level and continues.
	VerifyLenient
)

func (m VerifyMode) String() string {
	switch m {
	case VerifyStrict:
		return "strict"
	case VerifyLenient:
		return "lenient"
	default:
		return fmt.Sprintf("VerifyMode(%d)", uint8(m))
	}
}

// ParseVerifyMode parses "strict" or "lenient".
func ParseVerifyMode(s string) (VerifyMode, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "strict", "":
		return VerifyStrict, nil
	case "lenient":
		return VerifyLenient, nil
	}
	return VerifyStrict, fmt.Errorf("unknown verify mode %q (want strict|lenient)", s)
}

// Config is the initial configuration of a cursor. Byte order and address
// width can be changed later on the cursor; the verify mode and logger are
// fixed at construction.
type Config struct {
	// BigEndian selects most-significant-byte-first order.
	BigEndian bool
	// Wide selects 64-bit pointers (8 byte aligned). The default is 32-bit.
	Wide bool
	// Verify is the mismatch policy of Readers.
	Verify VerifyMode
	// Logger receives verification reports and scope traces. Nil means
	// logrus.StandardLogger().
	Logger logrus.FieldLogger
}

// DefaultConfig is little-endian, 32-bit, strict.
func DefaultConfig() Config {
	return Config{
		Logger: logrus.StandardLogger(),
	}
}

func (c Config) logger() logrus.FieldLogger {
	if c.Logger == nil {
		return logrus.StandardLogger()
	}
	return c.Logger
}

// pointerSize is the byte width (and alignment) of a pointer.
func pointerSize(wide bool) int {
	if wide {
		return 8
	}
	return 4
}
