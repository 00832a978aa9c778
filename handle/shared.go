package handle

import (
	"github.com/wippyai/incrstruct/layout"
	"github.com/wippyai/incrstruct/storage"
)

// Shared is a reference-counted owner of a completed value. Clones
// share one payload and one count; the payload is destroyed when the
// last clone drops. Clone and Drop are safe to call from different
// goroutines.
type Shared[T any] struct {
	blk     *storage.Block[T]
	plan    *layout.Plan[T]
	dropped bool
}

// NewShared wraps a fully initialized shared block and sets its
// reference count to one.
// Used by the build package's completion step. This is not an external API.
func NewShared[T any](blk *storage.Block[T], plan *layout.Plan[T]) *Shared[T] {
	if !blk.Shared() {
		panic("handle: NewShared over an exclusive block")
	}
	blk.Refs().Store(1)
	return &Shared[T]{blk: blk, plan: plan}
}

// Get returns the payload.
func (h *Shared[T]) Get() *T {
	if h.dropped {
		panic("handle: use after Drop")
	}
	return h.blk.Payload()
}

// Clone returns a new handle over the same payload, incrementing the
// count. The payload is not touched.
func (h *Shared[T]) Clone() *Shared[T] {
	if h.dropped {
		panic("handle: Clone after Drop")
	}
	h.blk.Refs().Add(1)
	return &Shared[T]{blk: h.blk, plan: h.plan}
}

// Refs returns the current reference count. Racy by nature; meant for
// tests and diagnostics.
func (h *Shared[T]) Refs() int64 {
	return h.blk.Refs().Load()
}

// Drop releases this handle's reference. When the count reaches zero
// the managed fields are destroyed in reverse declaration order and
// the storage is released; the atomic decrement orders that destruction
// after every other clone's last use. Dropping one handle twice panics.
func (h *Shared[T]) Drop() {
	if h.dropped {
		panic("handle: Drop called twice")
	}
	h.dropped = true

	if h.blk.Refs().Add(-1) != 0 {
		return
	}

	v := h.blk.Payload()
	h.plan.DropAll(v)
	h.blk.Release()
}
