package layout

import (
	"reflect"

	"github.com/wippyai/incrstruct/errors"
)

// Role tags a field as head or tail.
type Role uint8

const (
	// Head fields are written first and may be referenced by tail fields.
	Head Role = iota
	// Tail fields are initialized after all head fields and may hold
	// pointers into them. Only tail initialization can fail.
	Tail
)

var roleNames = [...]string{
	Head: "head",
	Tail: "tail",
}

func (r Role) String() string {
	if int(r) < len(roleNames) {
		return roleNames[r]
	}
	return "unknown"
}

// Field describes one managed field of T, in declaration order.
type Field[T any] struct {
	Name string
	Role Role

	// Drop releases resources held by the field. Nil when the field's
	// type holds nothing that needs explicit cleanup.
	Drop func(*T)
}

// Info is the reflect-derived placement of a field inside T.
type Info struct {
	Size   uintptr
	Align  uintptr
	Offset uintptr
}

// Plan is the construction descriptor for struct type T. A Plan is
// immutable after New and safe for concurrent use by any number of
// constructions.
type Plan[T any] struct {
	fields []Field[T]
	infos  []Info
	heads  int
	typ    reflect.Type
}

// New validates the field list against T and builds a Plan.
//
// Fields of T not listed are left unmanaged: they stay zero-valued and
// are never dropped. Unexported fields may be listed by name.
func New[T any](fields ...Field[T]) (*Plan[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if typ.Kind() != reflect.Struct {
		return nil, errors.New(errors.PhaseLayout, errors.KindNotStruct).
			GoType(typ.String()).
			Detail("plans can only describe struct types").
			Build()
	}

	byName := make(map[string]reflect.StructField, typ.NumField())
	for i := 0; i < typ.NumField(); i++ {
		f := typ.Field(i)
		byName[f.Name] = f
	}

	seen := make(map[string]struct{}, len(fields))
	infos := make([]Info, len(fields))
	heads := 0
	sawTail := false

	for i, f := range fields {
		sf, ok := byName[f.Name]
		if !ok {
			return nil, errors.UnknownField(errors.PhaseLayout, typ.Name(), f.Name)
		}
		if _, dup := seen[f.Name]; dup {
			return nil, errors.DuplicateField(errors.PhaseLayout, typ.Name(), f.Name)
		}
		seen[f.Name] = struct{}{}

		switch f.Role {
		case Head:
			if sawTail {
				return nil, errors.FieldOrder(errors.PhaseLayout, typ.Name(), f.Name)
			}
			heads++
		case Tail:
			sawTail = true
		default:
			return nil, errors.New(errors.PhaseLayout, errors.KindInvalidInput).
				GoType(typ.Name()).
				Field(f.Name).
				Detail("unknown role %d", f.Role).
				Build()
		}

		infos[i] = Info{
			Size:   sf.Type.Size(),
			Align:  uintptr(sf.Type.Align()),
			Offset: sf.Offset,
		}
	}

	return &Plan[T]{
		fields: append([]Field[T](nil), fields...),
		infos:  infos,
		heads:  heads,
		typ:    typ,
	}, nil
}

// MustNew is New but panics on validation failure. Intended for plans
// built at package init by generated code.
func MustNew[T any](fields ...Field[T]) *Plan[T] {
	p, err := New(fields...)
	if err != nil {
		panic(err)
	}
	return p
}

// Len returns the number of managed fields.
func (p *Plan[T]) Len() int { return len(p.fields) }

// Heads returns the number of head fields.
func (p *Plan[T]) Heads() int { return p.heads }

// Tails returns the number of tail fields.
func (p *Plan[T]) Tails() int { return len(p.fields) - p.heads }

// Fallible reports whether construction of T can fail. Only tail
// initializers return errors, so a plan with no tail fields describes a
// constructor with no error path.
func (p *Plan[T]) Fallible() bool { return p.Tails() > 0 }

// Field returns the descriptor at position i.
func (p *Plan[T]) Field(i int) Field[T] { return p.fields[i] }

// Info returns the placement of the field at position i.
func (p *Plan[T]) Info(i int) Info { return p.infos[i] }

// TypeName returns T's name for diagnostics.
func (p *Plan[T]) TypeName() string { return p.typ.Name() }

// Size returns T's total size in bytes.
func (p *Plan[T]) Size() uintptr { return p.typ.Size() }

// Align returns T's alignment in bytes.
func (p *Plan[T]) Align() uintptr { return uintptr(p.typ.Align()) }

// DropRange destroys fields [from, to) of v in reverse declaration
// order. Callers guarantee every field in the range is initialized and
// is not dropped again afterwards.
func (p *Plan[T]) DropRange(v *T, from, to int) {
	for i := to - 1; i >= from; i-- {
		if d := p.fields[i].Drop; d != nil {
			d(v)
		}
	}
}

// DropPrefix destroys the first n fields of v in reverse declaration
// order.
func (p *Plan[T]) DropPrefix(v *T, n int) {
	p.DropRange(v, 0, n)
}

// DropTails destroys all tail fields of v in reverse declaration order,
// leaving the head fields intact.
func (p *Plan[T]) DropTails(v *T) {
	p.DropRange(v, p.heads, len(p.fields))
}

// DropAll destroys every managed field of v in reverse declaration order.
func (p *Plan[T]) DropAll(v *T) {
	p.DropRange(v, 0, len(p.fields))
}
