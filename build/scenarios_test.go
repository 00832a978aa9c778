package build

import (
	"errors"
	"sync"
	"testing"
	"unsafe"

	"github.com/wippyai/incrstruct/layout"
)

// countingAllocator is a test allocator that tracks the alloc/free pairing.
type countingAllocator struct {
	allocs int
	frees  int
	live   map[unsafe.Pointer][]byte
}

func newCountingAllocator() *countingAllocator {
	return &countingAllocator{live: make(map[unsafe.Pointer][]byte)}
}

func (c *countingAllocator) Alloc(size, align uintptr) unsafe.Pointer {
	buf := make([]byte, size+align)
	base := uintptr(unsafe.Pointer(unsafe.SliceData(buf)))
	off := uintptr(0)
	if align > 1 {
		off = (align - base%align) % align
	}
	ptr := unsafe.Pointer(unsafe.SliceData(buf[off:]))
	c.live[ptr] = buf
	c.allocs++
	return ptr
}

func (c *countingAllocator) Free(ptr unsafe.Pointer, size, align uintptr) {
	if _, ok := c.live[ptr]; !ok {
		panic("free of unknown pointer")
	}
	delete(c.live, ptr)
	c.frees++
}

// Scenario: two head ints and one infallible tail derived from the first
// head field.
func TestScenario_DerivedTail(t *testing.T) {
	type pair struct {
		X   int
		Y   int
		Sum *int
	}
	plan := layout.MustNew[pair](
		layout.Field[pair]{Name: "X", Role: layout.Head},
		layout.Field[pair]{Name: "Y", Role: layout.Head},
		layout.Field[pair]{Name: "Sum", Role: layout.Tail},
	)

	cur := Begin[pair](plan)
	cur = cur.Head(func(p *pair) { p.X = 40 })
	cur = cur.Head(func(p *pair) { p.Y = 2 })
	cur, err := cur.Tail(func(p *pair) error { p.Sum = &p.X; return nil })
	if err != nil {
		t.Fatalf("infallible tail returned %v", err)
	}
	h := cur.Finish()
	defer h.Drop()

	if got := *h.Get().Sum; got != 40 {
		t.Fatalf("derived tail = %d, want 40", got)
	}
}

// Scenario: one head field and a tail initializer that always fails. The
// head's destructor must run exactly once and the storage must be
// released exactly once.
func TestScenario_FailingTailLeakCheck(t *testing.T) {
	type guarded struct {
		Name string
		Ref  *string
	}
	errBad := errors.New("bad")

	headDrops := 0
	plan := layout.MustNew[guarded](
		layout.Field[guarded]{Name: "Name", Role: layout.Head, Drop: func(*guarded) { headDrops++ }},
		layout.Field[guarded]{Name: "Ref", Role: layout.Tail},
	)

	alloc := newCountingAllocator()
	cur := BeginIn[guarded](plan, alloc)
	cur = cur.Head(func(g *guarded) { g.Name = "doomed" })
	_, err := cur.Tail(func(*guarded) error { return errBad })

	if err != errBad {
		t.Fatalf("constructor error = %v, want errBad", err)
	}
	if headDrops != 1 {
		t.Fatalf("head destructor ran %d times, want 1", headDrops)
	}
	if alloc.allocs != 1 || alloc.frees != 1 {
		t.Fatalf("alloc/free = %d/%d, want 1/1", alloc.allocs, alloc.frees)
	}
}

// Scenario: shared ownership. Construct once, clone twice, drop all three
// in an arbitrary order; the payload destructor fires exactly once, after
// the last drop.
func TestScenario_SharedCloneDrop(t *testing.T) {
	type ring struct {
		Data []int
		Head *int
	}

	payloadDrops := 0
	plan := layout.MustNew[ring](
		layout.Field[ring]{Name: "Data", Role: layout.Head, Drop: func(*ring) { payloadDrops++ }},
		layout.Field[ring]{Name: "Head", Role: layout.Tail},
	)

	cur := BeginShared[ring](plan)
	cur = cur.Head(func(r *ring) { r.Data = []int{1, 2, 3} })
	cur, err := cur.Tail(func(r *ring) error { r.Head = &r.Data[0]; return nil })
	if err != nil {
		t.Fatal(err)
	}
	h1 := cur.FinishShared()

	h2 := h1.Clone()
	h3 := h2.Clone()
	if h1.Refs() != 3 {
		t.Fatalf("count = %d, want 3", h1.Refs())
	}

	h2.Drop()
	h1.Drop()
	if payloadDrops != 0 {
		t.Fatal("payload destroyed while a clone is live")
	}
	if *h3.Get().Head != 1 {
		t.Fatal("payload unusable while a clone is live")
	}
	h3.Drop()
	if payloadDrops != 1 {
		t.Fatalf("payload destroyed %d times, want 1", payloadDrops)
	}
}

// Concurrent variant: clone and drop racing across goroutines must still
// destroy the payload exactly once.
func TestScenario_SharedConcurrent(t *testing.T) {
	type box struct {
		V    int
		Self *int
	}

	var mu sync.Mutex
	drops := 0
	plan := layout.MustNew[box](
		layout.Field[box]{Name: "V", Role: layout.Head},
		layout.Field[box]{Name: "Self", Role: layout.Tail, Drop: func(*box) {
			mu.Lock()
			drops++
			mu.Unlock()
		}},
	)

	cur := BeginShared[box](plan)
	cur = cur.Head(func(b *box) { b.V = 9 })
	cur, _ = cur.Tail(func(b *box) error { b.Self = &b.V; return nil })
	h := cur.FinishShared()

	const workers = 16
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		c := h.Clone()
		wg.Add(1)
		go func() {
			defer wg.Done()
			cc := c.Clone()
			if *cc.Get().Self != 9 {
				t.Error("payload corrupted")
			}
			cc.Drop()
			c.Drop()
		}()
	}
	h.Drop()
	wg.Wait()

	if drops != 1 {
		t.Fatalf("payload destroyed %d times, want exactly 1", drops)
	}
}

// Scenario: a struct with zero tail fields constructs without any error
// path and completes synchronously.
func TestScenario_NoTails(t *testing.T) {
	type flat struct {
		A int
		B string
	}
	plan := layout.MustNew[flat](
		layout.Field[flat]{Name: "A", Role: layout.Head},
		layout.Field[flat]{Name: "B", Role: layout.Head},
	)
	if plan.Fallible() {
		t.Fatal("zero-tail plan must be infallible")
	}

	cur := Begin[flat](plan)
	cur = cur.Head(func(f *flat) { f.A = 1 })
	cur = cur.Head(func(f *flat) { f.B = "done" })
	h := cur.Finish()
	defer h.Drop()

	if h.Get().A != 1 || h.Get().B != "done" {
		t.Fatal("heads not written")
	}
}

// Success path leak check: every managed field is destroyed exactly once
// when the finished handle drops, and arena storage is freed exactly once.
func TestScenario_SuccessLeakCheck(t *testing.T) {
	type guarded struct {
		Name string
		Ref  *string
	}

	drops := map[string]int{}
	plan := layout.MustNew[guarded](
		layout.Field[guarded]{Name: "Name", Role: layout.Head, Drop: func(*guarded) { drops["Name"]++ }},
		layout.Field[guarded]{Name: "Ref", Role: layout.Tail, Drop: func(*guarded) { drops["Ref"]++ }},
	)

	alloc := newCountingAllocator()
	cur := BeginIn[guarded](plan, alloc)
	cur = cur.Head(func(g *guarded) { g.Name = "ok" })
	cur, err := cur.Tail(func(g *guarded) error { g.Ref = &g.Name; return nil })
	if err != nil {
		t.Fatal(err)
	}
	h := cur.Finish()
	h.Drop()

	if drops["Name"] != 1 || drops["Ref"] != 1 {
		t.Fatalf("drops = %v, want each exactly 1", drops)
	}
	if alloc.allocs != 1 || alloc.frees != 1 {
		t.Fatalf("alloc/free = %d/%d, want 1/1", alloc.allocs, alloc.frees)
	}
}
