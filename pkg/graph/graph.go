package graph

import (
	"strconv"

	"traffic_router/pkg/geo"
)

// Segment is a directed road segment built from one traffic-flow link.
type Segment struct {
	ID     int
	Start  geo.Point
	End    geo.Point
	Length float64 // meters, as reported by the source data
	Name   string

	// Edges holds the ids of segments whose Start coincides exactly
	// with this segment's End. Derived once by ConnectSegments; do not
	// mutate it elsewhere.
	Edges []int
}

// Graph owns all segments, indexed by id and by exact start coordinate.
//
// A Graph is populated by AddSegment calls and finalized by a single
// ConnectSegments pass. After finalization it is read-only and safe for
// concurrent searches.
type Graph struct {
	segments []*Segment
	byStart  map[string][]*Segment
}

// New creates an empty graph.
func New() *Graph {
	return &Graph{byStart: make(map[string][]*Segment)}
}

// coordKey formats a point into the exact-equality index key. Two
// points join only if both coordinates are bit-identical; the flow
// sources report shared endpoints verbatim, so no quantization is
// applied.
func coordKey(p geo.Point) string {
	return strconv.FormatFloat(p.Lat, 'f', -1, 64) + "," + strconv.FormatFloat(p.Lng, 'f', -1, 64)
}

// AddSegment stores s, assigns the next sequential id and indexes the
// segment by its start coordinate. No geometry validation is performed;
// zero-length and duplicate segments are accepted.
func (g *Graph) AddSegment(s *Segment) int {
	s.ID = len(g.segments)
	g.segments = append(g.segments, s)
	key := coordKey(s.Start)
	g.byStart[key] = append(g.byStart[key], s)
	return s.ID
}

// Segment returns the segment with the given id.
func (g *Graph) Segment(id int) (*Segment, bool) {
	if id < 0 || id >= len(g.segments) {
		return nil, false
	}
	return g.segments[id], true
}

// SegmentsAt returns all segments whose start equals p exactly.
func (g *Graph) SegmentsAt(p geo.Point) []*Segment {
	return g.byStart[coordKey(p)]
}

// FindClosest scans every segment and returns the one whose start is
// nearest to p by great-circle distance. Ties resolve to the earliest
// inserted segment. Linear in segment count; see Locator for the
// indexed variant.
func (g *Graph) FindClosest(p geo.Point) (*Segment, bool) {
	var best *Segment
	bestDist := 0.0
	for _, s := range g.segments {
		d := geo.Dist(p, s.Start)
		if best == nil || d < bestDist {
			best = s
			bestDist = d
		}
	}
	return best, best != nil
}

// ForEach applies fn to every segment in insertion order.
func (g *Graph) ForEach(fn func(*Segment)) {
	for _, s := range g.segments {
		fn(s)
	}
}

// Len returns the number of segments.
func (g *Graph) Len() int {
	return len(g.segments)
}

// ConnectSegments derives adjacency: for every segment, Edges becomes
// the ids of all segments starting at that segment's end. Call exactly
// once, after all insertions; the graph is read-only afterwards.
func (g *Graph) ConnectSegments() {
	g.ForEach(func(s *Segment) {
		next := g.SegmentsAt(s.End)
		edges := make([]int, 0, len(next))
		for _, n := range next {
			edges = append(edges, n.ID)
		}
		s.Edges = edges
	})
}
