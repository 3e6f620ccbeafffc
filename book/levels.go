package book

import "container/heap"

// level is one aggregated price level. The teacher's engine/queue.go
// keyed its heap on individual orders (price, time, sequence); this
// book has no order identity (spec.md §3, "Book side"), so the heap
// below is generalized to hold one entry per distinct price instead of
// one per order.
type level struct {
	price float64
	qty   float64
	index int
}

// levelHeap is a container/heap priority queue of price levels, best
// price at index 0. isBid selects max-heap-by-price (bids) vs
// min-heap-by-price (asks), mirroring the teacher's priceTimeQueue
// bid/ask symmetry.
type levelHeap struct {
	entries []*level
	isBid   bool
}

func (h levelHeap) Len() int { return len(h.entries) }

func (h levelHeap) Less(i, j int) bool {
	if h.isBid {
		return h.entries[i].price > h.entries[j].price
	}
	return h.entries[i].price < h.entries[j].price
}

func (h levelHeap) Swap(i, j int) {
	h.entries[i], h.entries[j] = h.entries[j], h.entries[i]
	h.entries[i].index = i
	h.entries[j].index = j
}

func (h *levelHeap) Push(x any) {
	lvl := x.(*level)
	lvl.index = len(h.entries)
	h.entries = append(h.entries, lvl)
}

func (h *levelHeap) Pop() any {
	old := h.entries
	n := len(old)
	lvl := old[n-1]
	lvl.index = -1
	h.entries = old[:n-1]
	return lvl
}

// bookSide pairs the priority heap with a by-price index for O(1)
// lookup and saturating cancel/consume, keeping every stored level at
// quantity >= 1 (spec.md §3 invariant; zero-quantity levels never
// exist).
type bookSide struct {
	heap    levelHeap
	byPrice map[float64]*level
}

func newBookSide(isBid bool) *bookSide {
	return &bookSide{
		heap:    levelHeap{isBid: isBid},
		byPrice: make(map[float64]*level),
	}
}

func (s *bookSide) len() int { return len(s.byPrice) }

// best returns the top level without removing it, or nil if empty.
func (s *bookSide) best() *level {
	if len(s.heap.entries) == 0 {
		return nil
	}
	return s.heap.entries[0]
}

// rest adds qty to price, creating the level if absent.
func (s *bookSide) rest(price, qty float64) {
	if lvl, ok := s.byPrice[price]; ok {
		lvl.qty += qty
		heap.Fix(&s.heap, lvl.index)
		return
	}
	lvl := &level{price: price, qty: qty}
	heap.Push(&s.heap, lvl)
	s.byPrice[price] = lvl
}

// cancel removes up to qty from the exact price level. Saturating: a
// cancel quantity exceeding the resting level zeroes (removes) it
// rather than erroring (spec.md §9, "Open question — saturating
// cancel"). Returns true if a level existed at that price; OrderBook
// ignores the result, since a cancel of an absent level still counts
// as a successful Apply (spec.md §4.1).
func (s *bookSide) cancel(price, qty float64) bool {
	lvl, ok := s.byPrice[price]
	if !ok {
		return false
	}
	lvl.qty -= qty
	if lvl.qty <= 0 {
		heap.Remove(&s.heap, lvl.index)
		delete(s.byPrice, price)
	} else {
		heap.Fix(&s.heap, lvl.index)
	}
	return true
}

// consume walks the book from the best price, removing up to qty units
// total across levels. It returns the quantity actually removed, which
// is min(qty, total depth) per spec.md §8 "Conservation on Market".
func (s *bookSide) consume(qty float64) float64 {
	remaining := qty
	for remaining > 0 {
		lvl := s.best()
		if lvl == nil {
			break
		}
		took := remaining
		if lvl.qty < took {
			took = lvl.qty
		}
		lvl.qty -= took
		remaining -= took
		if lvl.qty <= 0 {
			heap.Remove(&s.heap, lvl.index)
			delete(s.byPrice, lvl.price)
		} else {
			heap.Fix(&s.heap, lvl.index)
		}
	}
	return qty - remaining
}

// depth returns the total resting quantity on this side.
func (s *bookSide) depth() float64 {
	var total float64
	for _, lvl := range s.byPrice {
		total += lvl.qty
	}
	return total
}
