// Package build drives incremental construction of one value at a fixed
// address.
//
// Begin allocates storage for the plan's struct type and returns a cursor
// positioned at the first field. A cursor is linear: every operation
// consumes it and returns the successor, so each field is written exactly
// once, in declaration order. Go cannot reject an out-of-order write at
// compile time, so the cursor carries the next expected position and
// panics on misuse; a panic here always means a bug in the generated
// calling sequence, never a runtime condition to handle.
//
// Head writes are infallible. Tail initializers receive the payload
// pointer — the head view — whose address never changes, and may return an
// error. On error the cursor destroys every field written so far in
// reverse declaration order, releases the storage, and hands the error
// back unchanged. Finish and FinishShared convert a fully written block
// into an owning handle.
//
// ForceInit and EnsureInit re-run tail initialization on a value that was
// copied out of its handle, for structs that embed incrstruct.Header.
package build
