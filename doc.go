// Package incrstruct provides incremental, address-stable construction of
// self-referential structs.
//
// A struct is self-referential when one of its fields holds a pointer into
// a sibling field of the same value. Such a value cannot be built the usual
// way (fill a temporary, move it into place): the address the interior
// pointers capture must already be the value's final address. This library
// splits construction into two phases at one fixed heap address. The head
// fields are plain values written first; the tail fields are initialized
// afterwards and may point back into the heads.
//
// # Architecture Overview
//
// The library is organized into several packages with distinct
// responsibilities:
//
//	incrstruct/         Root package with Allocator, Dropper and Header
//	├── layout/         Per-struct plans: field order, head/tail roles, destructors
//	├── storage/        Fixed-address blocks, exclusive and reference-counted
//	├── build/          Linear construction cursors, unwind on failure, ForceInit
//	├── handle/         Owning handles: Unique and Shared
//	├── compile/        Reflect-based plan derivation from struct tags
//	├── errors/         Structured error types for debugging
//	└── cmd/structviz/  TUI for stepping through construction of declared layouts
//
// # Quick Start
//
// Declare the split with struct tags and drive a cursor through the fields
// in declaration order:
//
//	type Pair struct {
//		A   int
//		B   int
//		Sum *int `incr:"tail"`
//	}
//
//	var pairPlan = compile.MustPlan[Pair]()
//
//	func NewPair(a, b int) *handle.Unique[Pair] {
//		cur := build.Begin[Pair](pairPlan)
//		cur = cur.Head(func(p *Pair) { p.A = a })
//		cur = cur.Head(func(p *Pair) { p.B = b })
//		cur, _ = cur.Tail(func(p *Pair) error { p.Sum = &p.A; return nil })
//		return cur.Finish()
//	}
//
// Tail initializers may fail. When one returns an error, every field
// written so far is destroyed in reverse declaration order, the storage is
// released, and the error is returned to the caller unchanged. Nothing
// partial ever escapes.
//
// # Ownership
//
// Finish produces a handle.Unique, a sole-owner pointer whose Drop tears
// the value down. BeginShared/FinishShared produce a handle.Shared instead:
// the payload and an atomic reference count live in one allocation, Clone
// increments the count, and the last Drop destroys the payload.
//
// # Fields That Own Resources
//
// A field type may implement incrstruct.Dropper. Plans derived by the
// compile package call Drop on such fields during unwind and handle
// destruction, exactly once each, in reverse declaration order.
package incrstruct
