package incrstruct

import "unsafe"

// Allocator provides raw, fixed-address storage for construction blocks.
// Implementations must return memory that is never relocated for the
// lifetime of the allocation; arenas qualify, growable buffers do not.
type Allocator interface {
	// Alloc returns a pointer to size bytes aligned to align.
	// Returning nil is treated as allocator exhaustion and is fatal.
	Alloc(size, align uintptr) unsafe.Pointer

	// Free returns an allocation obtained from Alloc. It is called at
	// most once per allocation, and only when no field constructed in
	// the allocation remains live.
	Free(ptr unsafe.Pointer, size, align uintptr)
}

// Dropper is optionally implemented by field values that need cleanup
// when the struct holding them is destroyed or unwound.
type Dropper interface {
	Drop()
}

// State tracks how far a header-carrying struct has been initialized.
type State uint32

const (
	// Uninited means head fields are written but tail fields are not.
	Uninited State = iota
	// Initing means a tail-field initializer is currently running.
	Initing
	// Inited means every field is initialized.
	Inited
)

var stateNames = [...]string{
	Uninited: "uninited",
	Initing:  "initing",
	Inited:   "inited",
}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Header records the initialization state of a struct whose tail fields
// can be re-initialized after the value has been copied out of its
// handle. Embed it in the struct to opt in:
//
//	type Conn struct {
//		incrstruct.Header
//		Endpoint string
//		view     *string `incr:"tail"`
//	}
//
// The construction engine maintains the state; a struct without a
// Header still constructs normally but cannot use ForceInit.
type Header struct {
	state State
}

// IncrHeader returns the header itself. Embedding Header promotes this
// method, which is how the engine locates the header inside a payload.
func (h *Header) IncrHeader() *Header { return h }

// State reports the current initialization state.
func (h *Header) State() State { return h.state }

// SetState records a new initialization state.
// Used by the construction engine. This is not an external API.
func (h *Header) SetState(s State) { h.state = s }

// HasHeader is satisfied by any struct that embeds Header.
type HasHeader interface {
	IncrHeader() *Header
}
