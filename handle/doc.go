// Package handle provides the owning handles a finished construction is
// converted into.
//
// Unique is a sole-owner pointer: whoever holds it may mutate the
// payload and must eventually call Drop, which destroys the managed
// fields in reverse declaration order and releases the storage.
//
// Shared is a reference-counted pointer over the same storage and plan
// machinery. Clone and Drop touch only the atomic count; the last Drop
// destroys the payload exactly once, regardless of which goroutine it
// happens on.
//
// Handles are produced by the build package's Finish operations; the
// constructors here are not meant to be called with partially
// initialized blocks.
package handle
