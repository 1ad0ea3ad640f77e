package routing

import (
	"math"

	"github.com/rhartert/yagh"

	"traffic_router/pkg/geo"
	"traffic_router/pkg/graph"
)

// Reachable returns every segment whose shortest cumulative path length
// from the segment nearest p stays within maxDist meters, mapped to
// that length. The origin segment is always included at distance 0.
// Returns nil when p resolves to no segment.
func Reachable(g *graph.Graph, loc Locator, p geo.Point, maxDist float64) map[int]float64 {
	from, ok := loc.FindClosest(p)
	if !ok {
		return nil
	}
	return ReachableFrom(g, from, maxDist)
}

// ReachableFrom is Reachable starting at a known segment.
func ReachableFrom(g *graph.Graph, from *graph.Segment, maxDist float64) map[int]float64 {
	costs := make([]float64, g.Len())
	for i := range costs {
		costs[i] = math.Inf(1)
	}

	h := yagh.New[float64](g.Len())
	h.Put(from.ID, 0)
	costs[from.ID] = 0

	for h.Size() > 0 {
		entry := h.Pop()
		seg, ok := g.Segment(entry.Elem)
		if !ok {
			continue
		}

		for _, id := range seg.Edges {
			newCost := entry.Cost + seg.Length
			if newCost > maxDist || newCost >= costs[id] {
				continue
			}
			costs[id] = newCost
			h.Put(id, newCost)
		}
	}

	out := make(map[int]float64)
	for id, c := range costs {
		if !math.IsInf(c, 1) {
			out[id] = c
		}
	}
	return out
}
