package storage

import (
	"sync/atomic"
	"unsafe"

	"github.com/wippyai/incrstruct"
	"github.com/wippyai/incrstruct/errors"

	// Interior pointers into blocks assume heap objects never move.
	_ "go4.org/unsafe/assume-no-moving-gc"
)

// sharedCell keeps the reference count and the payload in a single
// allocation. The count is reachable independent of payload state.
type sharedCell[T any] struct {
	refs    atomic.Int64
	payload T
}

// Block is a single fixed-address allocation for one construction
// attempt. The payload address never changes between allocation and
// release.
type Block[T any] struct {
	payload  *T
	refs     *atomic.Int64 // nil for exclusive blocks
	free     func()        // nil when the GC owns the memory
	released bool
}

// NewExclusive allocates a heap block sized exactly for T.
func NewExclusive[T any]() *Block[T] {
	return &Block[T]{payload: new(T)}
}

// NewShared allocates a heap block holding T plus a reference count.
// The count starts at zero; completion sets it to one.
func NewShared[T any]() *Block[T] {
	cell := new(sharedCell[T])
	return &Block[T]{payload: &cell.payload, refs: &cell.refs}
}

// NewExclusiveIn allocates an exclusive block from a. Allocation
// failure is fatal and panics, consistent with Go's own allocator.
func NewExclusiveIn[T any](a incrstruct.Allocator) *Block[T] {
	var zero T
	size, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)

	ptr := alloc(a, size, align)
	p := (*T)(ptr)
	*p = zero // allocator memory may be dirty

	return &Block[T]{
		payload: p,
		free:    func() { a.Free(ptr, size, align) },
	}
}

// NewSharedIn allocates a shared block from a.
func NewSharedIn[T any](a incrstruct.Allocator) *Block[T] {
	var zero sharedCell[T]
	size, align := unsafe.Sizeof(zero), unsafe.Alignof(zero)

	ptr := alloc(a, size, align)
	cell := (*sharedCell[T])(ptr)
	*cell = zero

	return &Block[T]{
		payload: &cell.payload,
		refs:    &cell.refs,
		free:    func() { a.Free(ptr, size, align) },
	}
}

func alloc(a incrstruct.Allocator, size, align uintptr) unsafe.Pointer {
	ptr := a.Alloc(size, align)
	if ptr == nil && size > 0 {
		panic(errors.AllocationFailed(size, align))
	}
	return ptr
}

// Payload returns the fixed address of the value under construction.
func (b *Block[T]) Payload() *T { return b.payload }

// Shared reports whether the block carries a reference count.
func (b *Block[T]) Shared() bool { return b.refs != nil }

// Refs returns the reference count slot. Nil for exclusive blocks.
func (b *Block[T]) Refs() *atomic.Int64 { return b.refs }

// Released reports whether the block's storage has been returned.
func (b *Block[T]) Released() bool { return b.released }

// Release returns the block's storage. Callable only when no field in
// the block remains initialized: before any write, or after unwind or
// final destruction. Releasing twice panics.
func (b *Block[T]) Release() {
	if b.released {
		panic("storage: block released twice")
	}
	b.released = true
	b.payload = nil
	b.refs = nil
	if b.free != nil {
		b.free()
	}
}
