// Package logbuf implements the bounded FIFO ("the ring") that holds
// recently-seen entries so deep search can retroactively mark them and the
// writer can render a context window around a match.
package logbuf

import (
	"container/list"

	"github.com/google/uuid"

	"github.com/bascanada/yategrep/pkg/entry"
	mylog "github.com/bascanada/yategrep/pkg/log"
)

// LogBuf is a fixed-capacity FIFO of *entry.Entry. It replaces the
// intrusive next-pointer the original engine threaded through the entry
// itself with a plain container/list, so Entry stays free of any
// LogBuf-specific bookkeeping.
type LogBuf struct {
	id    string
	size  int
	items *list.List
}

// New creates an empty LogBuf with the given capacity. size must be > 0.
func New(size int) *LogBuf {
	return &LogBuf{
		id:    uuid.NewString(),
		size:  size,
		items: list.New(),
	}
}

// Len returns the number of entries currently held.
func (b *LogBuf) Len() int {
	return b.items.Len()
}

// Push appends e at the tail. It panics if the buffer is already at
// capacity; callers are expected to use PushPop for the rolling-window
// usage pattern instead.
func (b *LogBuf) Push(e *entry.Entry) {
	if b.items.Len() >= b.size {
		panic("logbuf: push on a full buffer")
	}
	b.items.PushBack(e)
}

// Pop removes and returns the head entry, or nil if the buffer is empty.
func (b *LogBuf) Pop() *entry.Entry {
	front := b.items.Front()
	if front == nil {
		return nil
	}
	b.items.Remove(front)
	return front.Value.(*entry.Entry)
}

// PushPop is the rolling-window primitive: if e is nil it behaves as Pop.
// Otherwise it pushes e and, if that pushed the buffer over capacity, pops
// and returns the head; it returns nil when the buffer still has room.
func (b *LogBuf) PushPop(e *entry.Entry) *entry.Entry {
	if e == nil {
		return b.Pop()
	}
	b.items.PushBack(e)
	if b.items.Len() > b.size {
		return b.Pop()
	}
	return nil
}

// Each walks the buffer head to tail, calling fn with mutable access to
// each entry. It stops early if fn returns false.
func (b *LogBuf) Each(fn func(*entry.Entry) bool) {
	for el := b.items.Front(); el != nil; el = el.Next() {
		if !fn(el.Value.(*entry.Entry)) {
			return
		}
	}
}

// Close reports a leak diagnostic if the buffer still holds entries; the
// bug surface this guards is entries that never reached the writer.
// Callers should drain the buffer (Pop until empty) before calling Close.
func (b *LogBuf) Close() {
	if n := b.items.Len(); n > 0 {
		mylog.Warn("logbuf %s destroyed with %d entries still queued", b.id, n)
	}
}
