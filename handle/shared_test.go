package handle

import (
	"sync"
	"sync/atomic"
	"testing"

	"github.com/wippyai/incrstruct/layout"
	"github.com/wippyai/incrstruct/storage"
)

func countingPlan(drops *atomic.Int32) *layout.Plan[node] {
	return layout.MustNew[node](
		layout.Field[node]{Name: "ID", Role: layout.Head},
		layout.Field[node]{Name: "Self", Role: layout.Tail, Drop: func(*node) { drops.Add(1) }},
	)
}

func newSharedNode(drops *atomic.Int32) *Shared[node] {
	blk := storage.NewShared[node]()
	v := blk.Payload()
	v.ID = 1
	v.Self = &v.ID
	return NewShared(blk, countingPlan(drops))
}

func TestShared_CloneDropCounts(t *testing.T) {
	var drops atomic.Int32
	h1 := newSharedNode(&drops)

	if h1.Refs() != 1 {
		t.Fatalf("fresh count = %d, want 1", h1.Refs())
	}

	h2 := h1.Clone()
	h3 := h1.Clone()
	if h1.Refs() != 3 {
		t.Fatalf("count after two clones = %d, want 3", h1.Refs())
	}
	if h2.Get() != h1.Get() || h3.Get() != h1.Get() {
		t.Fatal("clones disagree on payload address")
	}

	// Drop in an order unrelated to creation order.
	h2.Drop()
	if drops.Load() != 0 {
		t.Fatal("payload destroyed before last drop")
	}
	h1.Drop()
	if drops.Load() != 0 {
		t.Fatal("payload destroyed before last drop")
	}
	h3.Drop()
	if drops.Load() != 1 {
		t.Fatalf("payload destroyed %d times, want 1", drops.Load())
	}
}

func TestShared_CloneNeverTouchesPayload(t *testing.T) {
	var drops atomic.Int32
	h := newSharedNode(&drops)
	defer h.Drop()

	before := *h.Get()
	c := h.Clone()
	after := *h.Get()

	if before.ID != after.ID || before.Self != after.Self {
		t.Fatal("Clone modified the payload")
	}
	c.Drop()
	if drops.Load() != 0 {
		t.Fatal("non-final drop destroyed the payload")
	}
}

func TestShared_ConcurrentCloneDrop(t *testing.T) {
	var drops atomic.Int32
	h := newSharedNode(&drops)

	const workers = 32
	var wg sync.WaitGroup
	clones := make([]*Shared[node], workers)
	for i := range clones {
		clones[i] = h.Clone()
	}
	h.Drop()

	for _, c := range clones {
		wg.Add(1)
		go func(c *Shared[node]) {
			defer wg.Done()
			if c.Get().ID != 1 {
				t.Error("payload corrupted")
			}
			c.Drop()
		}(c)
	}
	wg.Wait()

	if drops.Load() != 1 {
		t.Fatalf("payload destroyed %d times, want exactly 1", drops.Load())
	}
}

func TestShared_DoubleDropPanics(t *testing.T) {
	var drops atomic.Int32
	h := newSharedNode(&drops)
	c := h.Clone()
	c.Drop()

	defer func() {
		if recover() == nil {
			t.Fatal("second Drop of one handle should panic")
		}
		h.Drop()
	}()
	c.Drop()
}

func TestNewShared_ExclusiveBlockPanics(t *testing.T) {
	var drops atomic.Int32

	defer func() {
		if recover() == nil {
			t.Fatal("NewShared over an exclusive block should panic")
		}
	}()
	NewShared(storage.NewExclusive[node](), countingPlan(&drops))
}
