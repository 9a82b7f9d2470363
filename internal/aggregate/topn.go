package aggregate

import (
	"container/heap"
	"sort"

	"github.com/zjrosen/rdapgw/internal/registrar"
)

// RegistrarSummary is the slice of a record shown in top-N lists.
type RegistrarSummary struct {
	IANAID      int
	Name        string
	DomainCount int64
	RDAPURL     string
}

func summarize(r registrar.Record) RegistrarSummary {
	return RegistrarSummary{IANAID: r.IANAID, Name: r.Name, DomainCount: r.DomainCount, RDAPURL: r.RDAPURL}
}

// ranksAbove orders registrars by domain count descending, then IANA id
// ascending.
func ranksAbove(a, b RegistrarSummary) bool {
	if a.DomainCount != b.DomainCount {
		return a.DomainCount > b.DomainCount
	}
	return a.IANAID < b.IANAID
}

// minHeap keeps the weakest of the current top entries at the root.
type minHeap []RegistrarSummary

func (h minHeap) Len() int           { return len(h) }
func (h minHeap) Less(i, j int) bool { return ranksAbove(h[j], h[i]) }
func (h minHeap) Swap(i, j int)      { h[i], h[j] = h[j], h[i] }
func (h *minHeap) Push(x any)        { *h = append(*h, x.(RegistrarSummary)) }
func (h *minHeap) Pop() any {
	old := *h
	n := len(old)
	x := old[n-1]
	*h = old[:n-1]
	return x
}

// topN selects the n best registrars without sorting the whole input.
type topN struct {
	n int
	h minHeap
}

func newTopN(n int) *topN {
	return &topN{n: n, h: make(minHeap, 0, max(n, 0))}
}

func (t *topN) offer(s RegistrarSummary) {
	if t.n <= 0 {
		return
	}
	if len(t.h) < t.n {
		heap.Push(&t.h, s)
		return
	}
	if ranksAbove(s, t.h[0]) {
		t.h[0] = s
		heap.Fix(&t.h, 0)
	}
}

// sorted returns the selection best first.
func (t *topN) sorted() []RegistrarSummary {
	out := make([]RegistrarSummary, len(t.h))
	copy(out, t.h)
	sort.Slice(out, func(i, j int) bool { return ranksAbove(out[i], out[j]) })
	return out
}
