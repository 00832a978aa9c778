// Package storage provides the fixed-address allocation a construction
// writes into.
//
// A Block is one allocation for one construction attempt. Exclusive
// blocks hold exactly the payload; shared blocks hold the payload next
// to an atomic reference count in the same allocation, so the count
// stays reachable no matter what state the payload is in.
//
// Blocks come from the Go heap by default. The Go runtime does not move
// heap objects, which is what makes interior pointers into a block safe;
// the assume-no-moving-gc import turns that assumption into a build-time
// assertion. Blocks can instead be placed in caller-provided memory via
// an incrstruct.Allocator, e.g. an arena.
//
// Exactly one allocation happens per Block and Release runs at most
// once; releasing twice is a bug in the caller and panics.
package storage
