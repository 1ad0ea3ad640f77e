package graph

import (
	"traffic_router/pkg/flow"
	"traffic_router/pkg/geo"
)

// Build creates a finalized Graph from a traffic-flow response.
//
// Each link becomes one segment: start is the link's first point, end
// its last, length the reported link length and name the location's
// description. Intermediate points are discarded. Links with fewer
// than two points produce degenerate start==end segments rather than
// being rejected; flow payloads are noisy and the graph tolerates them.
func Build(resp *flow.Response) *Graph {
	g := New()
	for _, result := range resp.Results {
		loc := result.Location
		for _, link := range loc.Shape.Links {
			var start, end geo.Point
			if n := len(link.Points); n > 0 {
				start = link.Points[0]
				end = link.Points[n-1]
			}
			g.AddSegment(&Segment{
				Start:  start,
				End:    end,
				Length: link.Length,
				Name:   loc.Description,
			})
		}
	}
	g.ConnectSegments()
	return g
}
