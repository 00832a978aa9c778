package build

import (
	"go.uber.org/zap"

	"github.com/wippyai/incrstruct"
	"github.com/wippyai/incrstruct/layout"
)

// ForceInit re-runs tail initialization on v in place, even if v is
// already initialized. It exists for one situation: the value was
// copied out of its handle, so its tail fields still point into the
// old copy. T must embed incrstruct.Header so the state survives the
// copy; one initializer must be supplied per tail field, in
// declaration order.
//
// If v is initialized, its tail fields are dropped first. If an
// initializer fails, the tail fields initialized before it are dropped
// in reverse order, v is left with only its head fields live, and the
// error is returned unchanged. Head fields are never touched.
func ForceInit[T any](v *T, plan *layout.Plan[T], tails ...func(*T) error) error {
	if v == nil {
		panic("build: ForceInit of nil value")
	}
	if plan == nil {
		panic("build: nil plan")
	}
	if len(tails) != plan.Tails() {
		panic("build: initializer count does not match the plan's tail fields")
	}

	hc, ok := any(v).(incrstruct.HasHeader)
	if !ok {
		panic("build: ForceInit requires the struct to embed incrstruct.Header")
	}
	hdr := hc.IncrHeader()

	switch hdr.State() {
	case incrstruct.Uninited:
		// Tail fields hold garbage from the copy; overwrite, don't drop.
	case incrstruct.Inited:
		plan.DropTails(v)
	case incrstruct.Initing:
		panic("build: recursive ForceInit")
	}
	hdr.SetState(incrstruct.Initing)

	heads := plan.Heads()
	for k, init := range tails {
		if err := init(v); err != nil {
			Logger().Debug("reinit failed, dropping tails",
				zap.String("type", plan.TypeName()),
				zap.String("field", plan.Field(heads+k).Name),
				zap.Error(err))

			plan.DropRange(v, heads, heads+k)
			hdr.SetState(incrstruct.Uninited)
			return err
		}
	}

	hdr.SetState(incrstruct.Inited)
	return nil
}

// EnsureInit runs ForceInit only when v is not already initialized.
// Safe to call repeatedly; a fully initialized value is left alone.
func EnsureInit[T any](v *T, plan *layout.Plan[T], tails ...func(*T) error) error {
	if hc, ok := any(v).(incrstruct.HasHeader); ok {
		if hc.IncrHeader().State() == incrstruct.Inited {
			return nil
		}
	}
	return ForceInit(v, plan, tails...)
}
