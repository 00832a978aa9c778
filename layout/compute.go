package layout

// FieldDesc is an untyped field declaration: a name, a role, and the
// size and alignment the field would have in memory. Used by tooling
// that lays out structs declared in configuration rather than Go code.
type FieldDesc struct {
	Name  string
	Role  Role
	Size  uintptr
	Align uintptr
}

// Computed is the resolved placement of a declared field list.
type Computed struct {
	Size    uintptr
	Align   uintptr
	Offsets []uintptr
}

// refCountSize is the reference-count slot a shared block prepends to
// the payload: one 64-bit counter.
const refCountSize = 8

// AlignTo rounds offset up to the next multiple of align. Align must be
// a power of two; zero is treated as one.
func AlignTo(offset, align uintptr) uintptr {
	if align <= 1 {
		return offset
	}
	return (offset + align - 1) &^ (align - 1)
}

// Compute resolves offsets for the declared fields using standard
// struct packing: each field is placed at the next offset aligned for
// it, and the total size is rounded up to the largest alignment.
func Compute(fields []FieldDesc) Computed {
	if len(fields) == 0 {
		return Computed{Size: 0, Align: 1}
	}

	offsets := make([]uintptr, len(fields))
	maxAlign := uintptr(1)
	offset := uintptr(0)

	for i, f := range fields {
		align := f.Align
		if align < 1 {
			align = 1
		}
		offset = AlignTo(offset, align)
		offsets[i] = offset

		if align > maxAlign {
			maxAlign = align
		}
		offset += f.Size
	}

	return Computed{
		Size:    AlignTo(offset, maxAlign),
		Align:   maxAlign,
		Offsets: offsets,
	}
}

// ComputeShared resolves the layout of a shared block for the declared
// fields: a reference-count slot followed by the payload. It returns
// the block layout with offsets relative to the block start, and the
// offset at which the payload begins.
func ComputeShared(fields []FieldDesc) (Computed, uintptr) {
	payload := Compute(fields)

	align := payload.Align
	if align < refCountSize {
		align = refCountSize
	}
	payloadOff := AlignTo(refCountSize, payload.Align)

	offsets := make([]uintptr, len(payload.Offsets))
	for i, off := range payload.Offsets {
		offsets[i] = payloadOff + off
	}

	return Computed{
		Size:    AlignTo(payloadOff+payload.Size, align),
		Align:   align,
		Offsets: offsets,
	}, payloadOff
}
