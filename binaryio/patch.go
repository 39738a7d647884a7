package binaryio

import (
	"fmt"

	"github.com/sirupsen/logrus"
)

// Patch is a deferred write. It receives the writer it was queued on and may
// queue further patches.
type Patch func(w *Writer) error

// patchQueue is one FIFO of deferred writes.
type patchQueue struct {
	items []Patch
}

func (q *patchQueue) push(p Patch) {
	q.items = append(q.items, p)
}

func (q *patchQueue) pop() (Patch, bool) {
	if len(q.items) == 0 {
		return nil, false
	}
	p := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	return p, true
}

func (q *patchQueue) len() int {
	return len(q.items)
}

// patchStack holds the active queue and the queues displaced by PushScope.
type patchStack struct {
	active patchQueue
	saved  []patchQueue
}

// Defer queues p on the active scope. It does not run until Drain.
func (w *Writer) Defer(p Patch) {
	w.patches.active.push(p)
}

// DeferAt queues p to run with the cursor at offset. The cursor is restored
// once p returns.
func (w *Writer) DeferAt(offset int64, p Patch) {
	w.Defer(func(w *Writer) error {
		return w.WriteAt(offset, p)
	})
}

// Drain runs the active scope's patches in FIFO order until none are left,
// including patches queued while draining. The first failing patch stops the
// drain and its error is returned; patches behind it stay queued.
//
// The cursor is back where it was when Drain was called once it returns.
func (w *Writer) Drain() error {
	start := w.Offset()
	ran := 0
	for {
		p, ok := w.patches.active.pop()
		if !ok {
			break
		}
		ran++
		if err := p(w); err != nil {
			_ = w.buf.SetPosition(int(start))
			return fmt.Errorf("deferred patch %d: %w", ran, err)
		}
	}
	w.log.WithFields(logrus.Fields{
		"depth":   w.ScopeDepth(),
		"patches": ran,
	}).Debug("drained patch scope")
	return w.buf.SetPosition(int(start))
}

// Pending is the number of patches waiting in the active scope.
func (w *Writer) Pending() int {
	return w.patches.active.len()
}

// ScopeDepth is the number of scopes pushed and not yet popped.
func (w *Writer) ScopeDepth() int {
	return len(w.patches.saved)
}

// PushScope saves the active patch queue and starts an empty one.
func (w *Writer) PushScope() {
	w.patches.saved = append(w.patches.saved, w.patches.active)
	w.patches.active = patchQueue{}
	w.log.WithField("depth", w.ScopeDepth()).Debug("pushed patch scope")
}

// PopScope restores the queue saved by the matching PushScope. It fails with
// ErrUnbalancedScope, leaving the writer untouched, when there is no scope to
// pop or when the current scope still holds patches that never ran.
func (w *Writer) PopScope() error {
	depth := len(w.patches.saved)
	if depth == 0 {
		return fmt.Errorf("pop scope: %w: no scope pushed", ErrUnbalancedScope)
	}
	if n := w.patches.active.len(); n > 0 {
		return fmt.Errorf("pop scope at depth %d: %w: %d patches not drained", depth, ErrUnbalancedScope, n)
	}
	w.patches.active = w.patches.saved[depth-1]
	w.patches.saved = w.patches.saved[:depth-1]
	w.log.WithField("depth", w.ScopeDepth()).Debug("popped patch scope")
	return nil
}

// Scope runs fn inside a fresh patch scope, drains what fn deferred and pops
// the scope again.
func (w *Writer) Scope(fn func(w *Writer) error) error {
	w.PushScope()
	if err := fn(w); err != nil {
		w.discardScope()
		return err
	}
	if err := w.Drain(); err != nil {
		w.discardScope()
		return err
	}
	return w.PopScope()
}

// discardScope drops the active scope and whatever it still holds. Only used
// to unwind Scope after a failure.
func (w *Writer) discardScope() {
	w.patches.active = patchQueue{}
	_ = w.PopScope()
}
