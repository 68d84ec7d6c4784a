// Package pqueue provides a fixed-capacity binary heap whose elements track
// their own position in the backing array.
package pqueue

import (
	"errors"
	"fmt"
)

var (
	// ErrOverflow is the panic value (wrapped) when Add exceeds capacity.
	ErrOverflow = errors.New("pqueue: heap capacity exceeded")
	// ErrEmpty is the panic value (wrapped) when RemoveTop is called on an empty heap.
	ErrEmpty = errors.New("pqueue: remove from empty heap")
	// ErrInconsistentIndex is returned by Validate when an element's
	// self-reported index disagrees with its slot.
	ErrInconsistentIndex = errors.New("pqueue: inconsistent heap index")
)

// Indexed is implemented by heap elements. The heap writes the element's slot
// through SetHeapIndex on every move and sets it to -1 on removal.
type Indexed interface {
	comparable
	HeapIndex() int
	SetHeapIndex(i int)
}

// Heap is an array-backed binary heap with max-priority extraction.
// compare(a, b) > 0 means a has higher priority than b.
type Heap[T Indexed] struct {
	items   []T
	count   int
	compare func(a, b T) int
}

// New creates a heap that can hold at most capacity elements.
func New[T Indexed](capacity int, compare func(a, b T) int) *Heap[T] {
	if capacity < 0 {
		capacity = 0
	}
	return &Heap[T]{
		items:   make([]T, capacity),
		compare: compare,
	}
}

// Count returns the number of live elements.
func (h *Heap[T]) Count() int { return h.count }

// Cap returns the fixed capacity.
func (h *Heap[T]) Cap() int { return len(h.items) }

// Add inserts e and sifts it up. Panics if the heap is full.
func (h *Heap[T]) Add(e T) {
	if h.count >= len(h.items) {
		panic(fmt.Errorf("%w: capacity %d", ErrOverflow, len(h.items)))
	}
	e.SetHeapIndex(h.count)
	h.items[h.count] = e
	h.count++
	h.up(h.count - 1)
}

// RemoveTop removes and returns the highest-priority element.
// Callers must check Count() > 0 first.
func (h *Heap[T]) RemoveTop() T {
	if h.count == 0 {
		panic(ErrEmpty)
	}
	top := h.items[0]
	h.count--
	last := h.items[h.count]
	var zero T
	h.items[h.count] = zero
	if h.count > 0 {
		h.items[0] = last
		last.SetHeapIndex(0)
		h.down(0)
	}
	top.SetHeapIndex(-1)
	return top
}

// Peek returns the highest-priority element without removing it.
func (h *Heap[T]) Peek() (T, bool) {
	if h.count == 0 {
		var zero T
		return zero, false
	}
	return h.items[0], true
}

// Contains reports whether e is a live member, using its stored index.
func (h *Heap[T]) Contains(e T) bool {
	i := e.HeapIndex()
	if i < 0 || i >= h.count {
		return false
	}
	return h.items[i] == e
}

// UpdateElement restores heap order after e's priority increased.
// Only sifts upward.
func (h *Heap[T]) UpdateElement(e T) {
	if !h.Contains(e) {
		return
	}
	h.up(e.HeapIndex())
}

// Clear drops every element without reallocating.
func (h *Heap[T]) Clear() {
	var zero T
	for i := 0; i < h.count; i++ {
		h.items[i].SetHeapIndex(-1)
		h.items[i] = zero
	}
	h.count = 0
}

// Validate checks that every live element reports its actual slot and that
// no child outranks its parent.
func (h *Heap[T]) Validate() error {
	for i := 0; i < h.count; i++ {
		if got := h.items[i].HeapIndex(); got != i {
			return fmt.Errorf("%w: slot %d reports %d", ErrInconsistentIndex, i, got)
		}
		if i > 0 {
			parent := (i - 1) / 2
			if h.compare(h.items[i], h.items[parent]) > 0 {
				return fmt.Errorf("pqueue: slot %d outranks parent %d", i, parent)
			}
		}
	}
	return nil
}

func (h *Heap[T]) up(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.compare(h.items[i], h.items[parent]) <= 0 {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *Heap[T]) down(i int) {
	for {
		left := 2*i + 1
		if left >= h.count {
			return
		}
		best := left
		if right := left + 1; right < h.count && h.compare(h.items[right], h.items[left]) > 0 {
			best = right
		}
		if h.compare(h.items[best], h.items[i]) <= 0 {
			return
		}
		h.swap(i, best)
		i = best
	}
}

func (h *Heap[T]) swap(i, j int) {
	h.items[i], h.items[j] = h.items[j], h.items[i]
	h.items[i].SetHeapIndex(i)
	h.items[j].SetHeapIndex(j)
}
