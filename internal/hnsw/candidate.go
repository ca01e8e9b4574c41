package hnsw

import "container/heap"

// Candidate is one point considered during searchLayer: a point id
// paired with its distance to the query at the time it was pushed. Point
// ids are the monotonically-assigned uint32 ids the Graph Store hands
// out, so a Candidate never needs to carry the vector itself.
type Candidate struct {
	ID       uint32
	Distance float32
}

// candidateHeap is a container/heap over Candidates, ordered by an
// injected comparator rather than two near-identical Less
// implementations. searchLayer keeps one ascending by distance (the
// frontier still to explore, closest first) and one descending (the
// best ef results found so far, worst at the root so it can be evicted
// in O(log ef) as better candidates arrive).
type candidateHeap struct {
	items []*Candidate
	less  func(a, b *Candidate) bool
}

func newCandidateHeap(less func(a, b *Candidate) bool) *candidateHeap {
	return &candidateHeap{less: less}
}

func ascendingByDistance(a, b *Candidate) bool  { return a.Distance < b.Distance }
func descendingByDistance(a, b *Candidate) bool { return a.Distance > b.Distance }

func (h *candidateHeap) Len() int           { return len(h.items) }
func (h *candidateHeap) Less(i, j int) bool { return h.less(h.items[i], h.items[j]) }
func (h *candidateHeap) Swap(i, j int)      { h.items[i], h.items[j] = h.items[j], h.items[i] }

func (h *candidateHeap) Push(x interface{}) {
	h.items = append(h.items, x.(*Candidate))
}

func (h *candidateHeap) Pop() interface{} {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}

// push adds a candidate, preserving the heap invariant.
func (h *candidateHeap) push(c *Candidate) { heap.Push(h, c) }

// pop removes and returns the root candidate, or nil if the heap is empty.
func (h *candidateHeap) pop() *Candidate {
	if h.Len() == 0 {
		return nil
	}
	return heap.Pop(h).(*Candidate)
}

// top returns the root candidate without removing it, or nil if the
// heap is empty.
func (h *candidateHeap) top() *Candidate {
	if h.Len() == 0 {
		return nil
	}
	return h.items[0]
}
