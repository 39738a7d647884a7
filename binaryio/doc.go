// Package binaryio decodes and encodes byte-precise binary layouts.
//
// A Reader walks an immutable buffer and a Writer builds an owned, growable
// one. Both honour a per-cursor byte order and address width (4 or 8 byte
// pointers), and both can be moved freely with Seek.
//
// Values are dispatched over a closed set of shapes:
//
//	primitive   bool, int8..int64, uint8..uint64, float32, float64 and
//	            named types over them (enumerations)
//	vector      [N]P of primitives, written element by element
//	matrix      [M]V of vectors (column-major: each column is one vector)
//	pointer     Pointer, aligned to and sized by the address width
//	string      C string with a single zero terminator
//
// Forward references are handled on the write side with deferred patches:
//
//	ptr, _ := w.ReservePointer()
//	w.DeferAt(ptr, func(w *binaryio.Writer) error {
//		return w.WritePointer(uint64(tableOffset))
//	})
//	... write the rest ...
//	err := w.Drain()
//
// Patches live in a stack of FIFO queues. PushScope starts a fresh queue for a
// sub-structure; PopScope refuses to discard patches that were never run.
//
// Cursors are not safe for concurrent use. Cloned Readers over the same
// buffer may be used from different goroutines.
package binaryio
