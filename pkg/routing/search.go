package routing

import (
	"errors"

	"traffic_router/pkg/geo"
	"traffic_router/pkg/graph"
)

// ErrNoRoute indicates no path exists between the resolved segments.
var ErrNoRoute = errors.New("no route found")

// Locator resolves a coordinate to its nearest segment. Satisfied by
// both *graph.Graph (linear scan) and *graph.Locator (r-tree).
type Locator interface {
	FindClosest(p geo.Point) (*graph.Segment, bool)
}

// MinHeap is a concrete-typed min-heap for the search frontier.
// Avoids interface boxing overhead of container/heap.
type MinHeap struct {
	items []PQItem
	seq   int
}

// PQItem is a frontier entry. Cost is the cumulative path length up to
// but not including the segment itself. seq orders equal-cost entries
// by insertion so results are deterministic.
type PQItem struct {
	Seg  *graph.Segment
	Cost float64
	seq  int
}

func (h *MinHeap) Len() int { return len(h.items) }

func (h *MinHeap) Push(s *graph.Segment, cost float64) {
	h.items = append(h.items, PQItem{s, cost, h.seq})
	h.seq++
	h.siftUp(len(h.items) - 1)
}

func (h *MinHeap) Pop() PQItem {
	n := len(h.items)
	item := h.items[0]
	h.items[0] = h.items[n-1]
	h.items = h.items[:n-1]
	if len(h.items) > 0 {
		h.siftDown(0)
	}
	return item
}

func (h *MinHeap) Reset() {
	h.items = h.items[:0]
	h.seq = 0
}

func (h *MinHeap) less(i, j int) bool {
	if h.items[i].Cost != h.items[j].Cost {
		return h.items[i].Cost < h.items[j].Cost
	}
	return h.items[i].seq < h.items[j].seq
}

func (h *MinHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if !h.less(i, parent) {
			break
		}
		h.items[i], h.items[parent] = h.items[parent], h.items[i]
		i = parent
	}
}

func (h *MinHeap) siftDown(i int) {
	n := len(h.items)
	for {
		smallest := i
		left := 2*i + 1
		right := 2*i + 2
		if left < n && h.less(left, smallest) {
			smallest = left
		}
		if right < n && h.less(right, smallest) {
			smallest = right
		}
		if smallest == i {
			break
		}
		h.items[i], h.items[smallest] = h.items[smallest], h.items[i]
		i = smallest
	}
}

// label records the best known way to reach a segment: the route taken
// (excluding the origin, including the segment itself) and its cost,
// the sum of the lengths of all segments traversed before it.
type label struct {
	path []*graph.Segment
	cost float64
}

// Shortest resolves start and end to their nearest segments and returns
// the shortest route between them. The route excludes the origin
// segment and includes the destination segment; identical origin and
// destination yield an empty route. Returns ErrNoRoute when either
// point resolves to nothing or the destination is unreachable.
func Shortest(g *graph.Graph, loc Locator, start, end geo.Point) ([]*graph.Segment, error) {
	from, ok := loc.FindClosest(start)
	if !ok {
		return nil, ErrNoRoute
	}
	to, ok := loc.FindClosest(end)
	if !ok {
		return nil, ErrNoRoute
	}
	return ShortestBetween(g, from, to)
}

// ShortestBetween runs a least-cumulative-length search from one
// segment to another over the derived adjacency.
func ShortestBetween(g *graph.Graph, from, to *graph.Segment) ([]*graph.Segment, error) {
	visited := map[int]label{from.ID: {}}

	var frontier MinHeap
	frontier.Push(from, 0)

	for frontier.Len() > 0 {
		item := frontier.Pop()
		cur := visited[item.Seg.ID]
		if item.Cost > cur.cost {
			continue // superseded by a cheaper relaxation
		}
		if item.Seg.ID == to.ID {
			return cur.path, nil
		}

		candidate := cur.cost + item.Seg.Length
		for _, id := range item.Seg.Edges {
			next, ok := g.Segment(id)
			if !ok {
				continue
			}
			if prev, seen := visited[id]; seen && prev.cost <= candidate {
				continue
			}
			path := make([]*graph.Segment, len(cur.path), len(cur.path)+1)
			copy(path, cur.path)
			visited[id] = label{path: append(path, next), cost: candidate}
			frontier.Push(next, candidate)
		}
	}

	return nil, ErrNoRoute
}
