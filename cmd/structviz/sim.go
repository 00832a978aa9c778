package main

import (
	"fmt"

	"github.com/wippyai/incrstruct/layout"
)

type eventKind int

const (
	evAlloc eventKind = iota
	evWrite
	evFail
	evDrop
	evRelease
	evFinish
)

// event is one step of a simulated construction.
type event struct {
	Kind  eventKind
	Field string
	Index int
	Note  string
}

// simulation replays the construction protocol over a declared layout:
// allocate, write fields in order, optionally fail at one tail field,
// then either finish into a handle or unwind and release.
type simulation struct {
	name    string
	fields  []layout.FieldDesc
	comp    layout.Computed
	shared  bool
	payload uintptr // payload offset inside a shared block
	failAt  string
}

func newSimulation(s structBlock, shared bool, failAt string) (*simulation, error) {
	fds, err := descs(s)
	if err != nil {
		return nil, err
	}

	sim := &simulation{
		name:   s.Name,
		fields: fds,
		shared: shared,
		failAt: failAt,
	}
	if shared {
		sim.comp, sim.payload = layout.ComputeShared(fds)
	} else {
		sim.comp = layout.Compute(fds)
	}

	if failAt != "" {
		found := false
		for _, f := range fds {
			if f.Name == failAt {
				if f.Role != layout.Tail {
					return nil, fmt.Errorf("field %q is a head field; only tail initializers can fail", failAt)
				}
				found = true
			}
		}
		if !found {
			return nil, fmt.Errorf("struct %q has no field %q", s.Name, failAt)
		}
	}
	return sim, nil
}

// events returns the full step sequence for this simulation.
func (s *simulation) events() []event {
	kind := "exclusive"
	if s.shared {
		kind = "shared"
	}
	out := []event{{
		Kind: evAlloc,
		Note: fmt.Sprintf("%s block: %d bytes, align %d", kind, s.comp.Size, s.comp.Align),
	}}

	written := 0
	for i, f := range s.fields {
		if f.Role == layout.Tail && f.Name == s.failAt {
			out = append(out, event{
				Kind:  evFail,
				Field: f.Name,
				Index: i,
				Note:  "initializer returned an error",
			})

			// Unwind: destroy the written prefix in reverse order,
			// then release the storage exactly once.
			for j := written - 1; j >= 0; j-- {
				out = append(out, event{
					Kind:  evDrop,
					Field: s.fields[j].Name,
					Index: j,
				})
			}
			out = append(out, event{Kind: evRelease, Note: "storage returned, error surfaced to caller"})
			return out
		}

		out = append(out, event{
			Kind:  evWrite,
			Field: f.Name,
			Index: i,
			Note:  fmt.Sprintf("%s at offset %d", f.Role, s.comp.Offsets[i]),
		})
		written++
	}

	note := "unique handle"
	if s.shared {
		note = fmt.Sprintf("shared handle, refcount=1 at offset 0 (payload at %d)", s.payload)
	}
	out = append(out, event{Kind: evFinish, Note: note})
	return out
}

func (e event) String() string {
	switch e.Kind {
	case evAlloc:
		return "alloc    " + e.Note
	case evWrite:
		return fmt.Sprintf("write    %-12s %s", e.Field, e.Note)
	case evFail:
		return fmt.Sprintf("FAIL     %-12s %s", e.Field, e.Note)
	case evDrop:
		return fmt.Sprintf("drop     %-12s reverse-order unwind", e.Field)
	case evRelease:
		return "release  " + e.Note
	case evFinish:
		return "finish   " + e.Note
	default:
		return "unknown"
	}
}
