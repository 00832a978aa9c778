package handle

import (
	"github.com/wippyai/incrstruct/layout"
	"github.com/wippyai/incrstruct/storage"
)

// Unique is the sole owner of a completed value. It is transferable:
// hand the pointer to the new owner and stop using it. Exactly one
// Drop must happen over the handle's lifetime.
type Unique[T any] struct {
	blk     *storage.Block[T]
	plan    *layout.Plan[T]
	dropped bool
}

// NewUnique wraps a fully initialized exclusive block.
// Used by the build package's completion step. This is not an external API.
func NewUnique[T any](blk *storage.Block[T], plan *layout.Plan[T]) *Unique[T] {
	if blk.Shared() {
		panic("handle: NewUnique over a shared block")
	}
	return &Unique[T]{blk: blk, plan: plan}
}

// Get returns the payload. The address is the same one every tail
// initializer observed during construction.
func (h *Unique[T]) Get() *T {
	if h.dropped {
		panic("handle: use after Drop")
	}
	return h.blk.Payload()
}

// Drop destroys every managed field in reverse declaration order and
// releases the storage. Dropping twice panics.
func (h *Unique[T]) Drop() {
	if h.dropped {
		panic("handle: Drop called twice")
	}
	h.dropped = true

	v := h.blk.Payload()
	h.plan.DropAll(v)
	h.blk.Release()
}
