package pqueue

import (
	"errors"
	"math/rand"
	"testing"
)

type item struct {
	cost  float64
	tie   float64
	index int
}

func (it *item) HeapIndex() int     { return it.index }
func (it *item) SetHeapIndex(i int) { it.index = i }

// lower cost wins, then lower tie
func byCost(a, b *item) int {
	switch {
	case a.cost < b.cost:
		return 1
	case a.cost > b.cost:
		return -1
	case a.tie < b.tie:
		return 1
	case a.tie > b.tie:
		return -1
	}
	return 0
}

func TestHeapOrdering(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	h := New[*item](200, byCost)
	for i := 0; i < 200; i++ {
		h.Add(&item{cost: float64(rng.Intn(20)), tie: float64(rng.Intn(5))})
		if err := h.Validate(); err != nil {
			t.Fatalf("after add %d: %v", i, err)
		}
	}

	prev := h.RemoveTop()
	for h.Count() > 0 {
		next := h.RemoveTop()
		if byCost(next, prev) > 0 {
			t.Fatalf("popped (%v,%v) after (%v,%v)", next.cost, next.tie, prev.cost, prev.tie)
		}
		if err := h.Validate(); err != nil {
			t.Fatal(err)
		}
		prev = next
	}
}

func TestHeapIndexInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	h := New[*item](64, byCost)
	var live []*item

	for step := 0; step < 500; step++ {
		switch op := rng.Intn(3); {
		case op == 0 && h.Count() < h.Cap():
			it := &item{cost: rng.Float64() * 100}
			h.Add(it)
			live = append(live, it)
		case op == 1 && h.Count() > 0:
			top := h.RemoveTop()
			if top.HeapIndex() != -1 {
				t.Fatalf("removed element kept index %d", top.HeapIndex())
			}
			for i, it := range live {
				if it == top {
					live = append(live[:i], live[i+1:]...)
					break
				}
			}
		case op == 2 && len(live) > 0:
			it := live[rng.Intn(len(live))]
			it.cost -= rng.Float64() * 10
			h.UpdateElement(it)
		}

		if err := h.Validate(); err != nil {
			t.Fatalf("step %d: %v", step, err)
		}
		for _, it := range live {
			if !h.Contains(it) {
				t.Fatalf("step %d: live element not contained", step)
			}
		}
	}
}

func TestHeapContains(t *testing.T) {
	h := New[*item](4, byCost)
	a := &item{cost: 1}
	b := &item{cost: 2}
	outsider := &item{cost: 3, index: 0}

	h.Add(a)
	h.Add(b)
	if !h.Contains(a) || !h.Contains(b) {
		t.Fatal("expected both elements to be contained")
	}
	if h.Contains(outsider) {
		t.Error("element with stale index must not be contained")
	}

	h.RemoveTop()
	if h.Contains(a) {
		t.Error("removed element still contained")
	}
}

func TestHeapUpdateElement(t *testing.T) {
	h := New[*item](8, byCost)
	items := []*item{{cost: 5}, {cost: 4}, {cost: 3}, {cost: 9}}
	for _, it := range items {
		h.Add(it)
	}

	items[3].cost = 1
	h.UpdateElement(items[3])

	if top := h.RemoveTop(); top != items[3] {
		t.Errorf("expected updated element on top, got cost %v", top.cost)
	}
}

func TestHeapTieBreak(t *testing.T) {
	h := New[*item](3, byCost)
	far := &item{cost: 10, tie: 6}
	near := &item{cost: 10, tie: 2}
	h.Add(far)
	h.Add(near)

	if top := h.RemoveTop(); top != near {
		t.Error("equal cost should prefer the smaller tie value")
	}
}

func TestHeapOverflowPanics(t *testing.T) {
	h := New[*item](1, byCost)
	h.Add(&item{})

	defer func() {
		r := recover()
		err, ok := r.(error)
		if !ok || !errors.Is(err, ErrOverflow) {
			t.Fatalf("expected ErrOverflow panic, got %v", r)
		}
	}()
	h.Add(&item{})
}

func TestHeapRemoveEmptyPanics(t *testing.T) {
	h := New[*item](1, byCost)
	defer func() {
		if r := recover(); r != ErrEmpty {
			t.Fatalf("expected ErrEmpty panic, got %v", r)
		}
	}()
	h.RemoveTop()
}

func TestHeapValidateDetectsCorruption(t *testing.T) {
	h := New[*item](4, byCost)
	a := &item{cost: 1}
	h.Add(a)
	h.Add(&item{cost: 2})

	a.index = 1
	if err := h.Validate(); !errors.Is(err, ErrInconsistentIndex) {
		t.Errorf("expected ErrInconsistentIndex, got %v", err)
	}
}

func TestHeapClear(t *testing.T) {
	h := New[*item](4, byCost)
	a := &item{cost: 1}
	h.Add(a)
	h.Clear()

	if h.Count() != 0 {
		t.Errorf("Count = %d after Clear", h.Count())
	}
	if a.HeapIndex() != -1 || h.Contains(a) {
		t.Error("cleared element still looks live")
	}
	if _, ok := h.Peek(); ok {
		t.Error("Peek on empty heap returned ok")
	}
}
