package orderbookv1

import "container/heap"

// beforeFunc reports whether entry a should be served before entry b.
// Both sides share one queue type; only the comparison differs.
type beforeFunc func(a, b OrderIndex) bool

// bidBefore orders the bid side: higher price first, earlier submission
// breaking ties.
func bidBefore(a, b OrderIndex) bool {
	if a.Price != b.Price {
		return a.Price > b.Price
	}
	return submittedEarlier(a, b)
}

// askBefore orders the ask side: lower price first, earlier submission
// breaking ties.
func askBefore(a, b OrderIndex) bool {
	if a.Price != b.Price {
		return a.Price < b.Price
	}
	return submittedEarlier(a, b)
}

// submittedEarlier is the shared time tie-break. Entries with equal price
// and equal timestamp compare equal for ordering purposes; their relative
// order is unspecified but stable within one queue.
func submittedEarlier(a, b OrderIndex) bool {
	return a.CreatedAt.Before(b.CreatedAt)
}

// beforeFor selects the comparison for a side. Keeping the selection here,
// instead of two queue types, keeps bid and ask ordering logic from
// drifting apart.
func beforeFor(side Side) beforeFunc {
	if side == SideBid {
		return bidBefore
	}
	return askBefore
}

// indexHeap implements heap.Interface over OrderIndex entries.
type indexHeap struct {
	entries []OrderIndex
	before  beforeFunc
}

func (h *indexHeap) Len() int           { return len(h.entries) }
func (h *indexHeap) Less(i, j int) bool { return h.before(h.entries[i], h.entries[j]) }
func (h *indexHeap) Swap(i, j int)      { h.entries[i], h.entries[j] = h.entries[j], h.entries[i] }

func (h *indexHeap) Push(x any) {
	h.entries = append(h.entries, x.(OrderIndex))
}

func (h *indexHeap) Pop() any {
	old := h.entries
	n := len(old)
	entry := old[n-1]
	h.entries = old[:n-1]
	return entry
}

// sideQueue is the priority queue for one side of a sticker book.
type sideQueue struct {
	h *indexHeap
}

// newSideQueue creates an empty queue ordered for the given side.
func newSideQueue(side Side) *sideQueue {
	return &sideQueue{
		h: &indexHeap{before: beforeFor(side)},
	}
}

func (q *sideQueue) push(idx OrderIndex) {
	heap.Push(q.h, idx)
}

// peek returns the best entry without removing it.
func (q *sideQueue) peek() (OrderIndex, bool) {
	if q.h.Len() == 0 {
		return OrderIndex{}, false
	}
	return q.h.entries[0], true
}

// pop removes and returns the best entry.
func (q *sideQueue) pop() (OrderIndex, bool) {
	if q.h.Len() == 0 {
		return OrderIndex{}, false
	}
	return heap.Pop(q.h).(OrderIndex), true
}

func (q *sideQueue) len() int {
	return q.h.Len()
}
