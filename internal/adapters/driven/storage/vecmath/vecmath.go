// Package vecmath provides exact nearest-neighbour search for the local vector stores.
package vecmath

import (
	"container/heap"
	"sort"
)

// SquaredL2 returns the squared euclidean distance between two vectors.
// Vectors of different length are compared over the shorter prefix, with
// the excess of the longer one counted against it.
func SquaredL2(a, b []float32) float64 {
	n := min(len(a), len(b))

	var sum float64
	for i := 0; i < n; i++ {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	for _, v := range a[n:] {
		sum += float64(v) * float64(v)
	}
	for _, v := range b[n:] {
		sum += float64(v) * float64(v)
	}
	return sum
}

// Scored pairs an item with its distance to the query.
type Scored[T any] struct {
	Item     T
	Distance float64
}

// Nearest keeps the k closest items offered to it.
// It uses a max-heap on distance so the worst kept candidate is evicted first.
// Time Complexity: O(n log k) for n offers.
type Nearest[T any] struct {
	k int
	h *scoredHeap[T]
}

// NewNearest creates a collector for the k closest items.
func NewNearest[T any](k int) *Nearest[T] {
	h := &scoredHeap[T]{}
	heap.Init(h)
	return &Nearest[T]{k: k, h: h}
}

// Offer considers one candidate.
func (n *Nearest[T]) Offer(item T, distance float64) {
	if n.k <= 0 {
		return
	}
	if n.h.Len() < n.k {
		heap.Push(n.h, Scored[T]{Item: item, Distance: distance})
		return
	}
	if distance < (*n.h)[0].Distance {
		(*n.h)[0] = Scored[T]{Item: item, Distance: distance}
		heap.Fix(n.h, 0)
	}
}

// Sorted returns the kept items, closest first.
func (n *Nearest[T]) Sorted() []Scored[T] {
	out := make([]Scored[T], n.h.Len())
	copy(out, *n.h)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Distance < out[j].Distance
	})
	return out
}

// scoredHeap implements heap.Interface as a max-heap on distance.
type scoredHeap[T any] []Scored[T]

func (h scoredHeap[T]) Len() int           { return len(h) }
func (h scoredHeap[T]) Less(i, j int) bool { return h[i].Distance > h[j].Distance }
func (h scoredHeap[T]) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }

func (h *scoredHeap[T]) Push(x any) {
	*h = append(*h, x.(Scored[T]))
}

func (h *scoredHeap[T]) Pop() any {
	old := *h
	n := len(old)
	item := old[n-1]
	*h = old[:n-1]
	return item
}
