package build

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/wippyai/incrstruct"
	"github.com/wippyai/incrstruct/handle"
	"github.com/wippyai/incrstruct/layout"
	"github.com/wippyai/incrstruct/storage"
)

// construction is the shared state behind every cursor of one attempt.
// pos is the next expected field; -1 once the attempt has ended by
// finish, unwind or abandonment.
type construction[T any] struct {
	blk  *storage.Block[T]
	plan *layout.Plan[T]
	pos  int
}

// Cursor is a linear handle over an in-progress construction. The zero
// Cursor is invalid. A cursor is consumed by the operation applied to
// it; using a consumed or stale cursor panics.
type Cursor[T any] struct {
	con *construction[T]
	pos int
}

// Begin allocates exclusive heap storage for T and returns the cursor
// for its first field.
func Begin[T any](plan *layout.Plan[T]) Cursor[T] {
	return begin(plan, storage.NewExclusive[T]())
}

// BeginShared allocates reference-counted storage for T. The finished
// cursor must be completed with FinishShared.
func BeginShared[T any](plan *layout.Plan[T]) Cursor[T] {
	return begin(plan, storage.NewShared[T]())
}

// BeginIn is Begin with storage drawn from a.
func BeginIn[T any](plan *layout.Plan[T], a incrstruct.Allocator) Cursor[T] {
	return begin(plan, storage.NewExclusiveIn[T](a))
}

// BeginSharedIn is BeginShared with storage drawn from a.
func BeginSharedIn[T any](plan *layout.Plan[T], a incrstruct.Allocator) Cursor[T] {
	return begin(plan, storage.NewSharedIn[T](a))
}

func begin[T any](plan *layout.Plan[T], blk *storage.Block[T]) Cursor[T] {
	if plan == nil {
		panic("build: nil plan")
	}

	if hdr := header(blk.Payload()); hdr != nil {
		hdr.SetState(incrstruct.Uninited)
	}

	Logger().Debug("construction started",
		zap.String("type", plan.TypeName()),
		zap.Int("fields", plan.Len()),
		zap.Bool("shared", blk.Shared()))

	return Cursor[T]{con: &construction[T]{blk: blk, plan: plan}, pos: 0}
}

// View returns the payload address without consuming the cursor. The
// address is fixed for the whole construction and equals the finished
// handle's payload address.
func (c Cursor[T]) View() *T {
	return c.check().blk.Payload()
}

// Pos returns the index of the next field to write.
func (c Cursor[T]) Pos() int {
	return c.check().pos
}

// Head writes the head field at the current position and returns the
// cursor for the next field. The write cannot fail; callers validate
// head data before starting construction.
func (c Cursor[T]) Head(write func(*T)) Cursor[T] {
	con := c.check()
	c.expect(layout.Head)

	write(con.blk.Payload())
	con.pos++
	return Cursor[T]{con: con, pos: con.pos}
}

// Tail runs the initializer for the tail field at the current position.
// The initializer receives the stable payload address and may read any
// head field and any earlier tail field.
//
// On error, every field written so far is destroyed in reverse
// declaration order, the storage is released, and the initializer's
// error is returned unchanged. The construction is over; no cursor
// remains usable.
func (c Cursor[T]) Tail(init func(*T) error) (Cursor[T], error) {
	con := c.check()
	c.expect(layout.Tail)

	v := con.blk.Payload()
	hdr := header(v)

	if c.pos == con.plan.Heads() && hdr != nil {
		hdr.SetState(incrstruct.Initing)
	}

	if err := init(v); err != nil {
		Logger().Debug("tail initializer failed, unwinding",
			zap.String("type", con.plan.TypeName()),
			zap.String("field", con.plan.Field(c.pos).Name),
			zap.Int("written", c.pos),
			zap.Error(err))

		con.plan.DropPrefix(v, c.pos)
		con.blk.Release()
		con.pos = -1
		return Cursor[T]{}, err
	}

	con.pos++
	return Cursor[T]{con: con, pos: con.pos}, nil
}

// Abandon stops the construction, destroying every field written so far
// in reverse declaration order and releasing the storage.
func (c Cursor[T]) Abandon() {
	con := c.check()
	v := con.blk.Payload()

	Logger().Debug("construction abandoned",
		zap.String("type", con.plan.TypeName()),
		zap.Int("written", c.pos))

	con.plan.DropPrefix(v, c.pos)
	con.blk.Release()
	con.pos = -1
}

// Finish converts a fully written exclusive block into its owning
// handle. Panics if fields remain unwritten or the construction was
// begun with BeginShared.
func (c Cursor[T]) Finish() *handle.Unique[T] {
	con := c.terminal()
	if con.blk.Shared() {
		panic("build: Finish on a shared construction, use FinishShared")
	}

	if hdr := header(con.blk.Payload()); hdr != nil {
		hdr.SetState(incrstruct.Inited)
	}
	con.pos = -1

	Logger().Debug("construction finished",
		zap.String("type", con.plan.TypeName()))

	return handle.NewUnique(con.blk, con.plan)
}

// FinishShared converts a fully written shared block into its owning
// handle, setting the reference count to one.
func (c Cursor[T]) FinishShared() *handle.Shared[T] {
	con := c.terminal()
	if !con.blk.Shared() {
		panic("build: FinishShared on an exclusive construction, use Finish")
	}

	if hdr := header(con.blk.Payload()); hdr != nil {
		hdr.SetState(incrstruct.Inited)
	}
	con.pos = -1

	Logger().Debug("construction finished",
		zap.String("type", con.plan.TypeName()),
		zap.Bool("shared", true))

	return handle.NewShared(con.blk, con.plan)
}

func (c Cursor[T]) check() *construction[T] {
	if c.con == nil {
		panic("build: zero cursor")
	}
	if c.con.pos < 0 {
		panic("build: cursor used after construction ended")
	}
	if c.pos != c.con.pos {
		panic("build: cursor already consumed")
	}
	return c.con
}

// expect panics unless the current field exists and has the given role.
func (c Cursor[T]) expect(role layout.Role) {
	plan := c.con.plan
	if c.pos >= plan.Len() {
		panic(fmt.Sprintf("build: %s write past the last field of %s",
			role, plan.TypeName()))
	}
	if f := plan.Field(c.pos); f.Role != role {
		panic(fmt.Sprintf("build: field %s.%s is a %s field, wrote it as %s",
			plan.TypeName(), f.Name, f.Role, role))
	}
}

func (c Cursor[T]) terminal() *construction[T] {
	con := c.check()
	if con.pos != con.plan.Len() {
		panic(fmt.Sprintf("build: finish of %s with %d of %d fields written",
			con.plan.TypeName(), con.pos, con.plan.Len()))
	}
	return con
}

// header returns the embedded header of v, or nil when T does not
// embed incrstruct.Header.
func header[T any](v *T) *incrstruct.Header {
	if hc, ok := any(v).(incrstruct.HasHeader); ok {
		return hc.IncrHeader()
	}
	return nil
}
