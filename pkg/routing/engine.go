package routing

import (
	"context"

	"traffic_router/pkg/geo"
	"traffic_router/pkg/graph"
)

// RouteResult is the output of a route query.
type RouteResult struct {
	TotalLengthMeters float64
	TravelTimeSeconds float64 // 0 when no speed readings are loaded
	Segments          []*graph.Segment
}

// Router is the interface for route queries.
type Router interface {
	Route(ctx context.Context, start, end geo.Point) (*RouteResult, error)
}

// Engine implements Router over a finalized graph. Speed readings are
// optional; when present they feed the travel-time estimate.
type Engine struct {
	g      *graph.Graph
	loc    Locator
	speeds map[int]float64 // km/h by segment id
}

// NewEngine creates a routing engine backed by an r-tree locator.
func NewEngine(g *graph.Graph) *Engine {
	return &Engine{g: g, loc: graph.NewLocator(g)}
}

// SetSpeeds replaces the per-segment speed readings (km/h).
func (e *Engine) SetSpeeds(speeds map[int]float64) {
	e.speeds = speeds
}

// Route computes the shortest route between two coordinates. The
// returned segments exclude the origin segment and include the
// destination segment.
func (e *Engine) Route(ctx context.Context, start, end geo.Point) (*RouteResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	route, err := Shortest(e.g, e.loc, start, end)
	if err != nil {
		return nil, err
	}

	result := &RouteResult{Segments: route}
	for _, s := range route {
		result.TotalLengthMeters += s.Length
	}

	if e.speeds != nil && len(route) > 0 {
		if seconds, err := TravelTime(route, e.speeds); err == nil {
			result.TravelTimeSeconds = seconds
		}
	}

	return result, nil
}
