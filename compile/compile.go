package compile

import (
	"reflect"
	"sync"
	"unsafe"

	"github.com/wippyai/incrstruct"
	"github.com/wippyai/incrstruct/errors"
	"github.com/wippyai/incrstruct/layout"
)

const tagName = "incr"

var (
	planCache sync.Map // reflect.Type -> *layout.Plan[T]

	dropperType = reflect.TypeOf((*incrstruct.Dropper)(nil)).Elem()
	headerType  = reflect.TypeOf((*incrstruct.Header)(nil)).Elem()
)

// Plan derives the construction plan for T from its `incr` struct tags.
// Derivation runs once per type; subsequent calls return the cached plan.
func Plan[T any]() (*layout.Plan[T], error) {
	typ := reflect.TypeOf((*T)(nil)).Elem()
	if cached, ok := planCache.Load(typ); ok {
		return cached.(*layout.Plan[T]), nil
	}

	if typ.Kind() != reflect.Struct {
		return nil, errors.NotStruct(typ.String())
	}

	var fields []layout.Field[T]
	for i := 0; i < typ.NumField(); i++ {
		sf := typ.Field(i)
		if sf.Type == headerType {
			// The construction engine tracks the header itself.
			continue
		}

		var role layout.Role
		switch tag := sf.Tag.Get(tagName); tag {
		case "", "head":
			role = layout.Head
		case "tail":
			role = layout.Tail
		case "-":
			continue
		default:
			return nil, errors.InvalidTag(typ.Name(), sf.Name, tag)
		}

		fields = append(fields, layout.Field[T]{
			Name: sf.Name,
			Role: role,
			Drop: dropFunc[T](sf),
		})
	}

	p, err := layout.New[T](fields...)
	if err != nil {
		return nil, err
	}

	planCache.Store(typ, p)
	return p, nil
}

// MustPlan is Plan but panics on failure. Intended for package-level
// plan variables.
func MustPlan[T any]() *layout.Plan[T] {
	p, err := Plan[T]()
	if err != nil {
		panic(err)
	}
	return p
}

// dropFunc builds a destructor for a field whose type implements
// Dropper, addressing the field through its offset so unexported
// fields work too. Returns nil for fields with nothing to clean up.
func dropFunc[T any](sf reflect.StructField) func(*T) {
	ft := sf.Type
	if !reflect.PointerTo(ft).Implements(dropperType) {
		return nil
	}

	off := sf.Offset
	return func(v *T) {
		fp := reflect.NewAt(ft, unsafe.Add(unsafe.Pointer(v), off))
		fp.Interface().(incrstruct.Dropper).Drop()
	}
}
