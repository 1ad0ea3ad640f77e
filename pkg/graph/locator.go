package graph

import (
	"math"

	"github.com/tidwall/rtree"

	"traffic_router/pkg/geo"
)

// Locator answers nearest-start queries through an R-tree instead of
// the linear scan in Graph.FindClosest. Same contract: the returned
// segment's start is nearest to the query point by great-circle
// distance, ties resolve to the lowest id. Build it once over a
// finalized graph.
//
// Candidate segments are measured with the exact haversine distance;
// tree boxes are ranked by a haversine lower bound, so Nearby yields
// segments in true meter order even where a degree of longitude is
// much shorter than a degree of latitude.
type Locator struct {
	tr rtree.RTreeG[*Segment]
}

// NewLocator indexes every segment's start point.
func NewLocator(g *Graph) *Locator {
	l := &Locator{}
	g.ForEach(func(s *Segment) {
		pt := [2]float64{s.Start.Lng, s.Start.Lat}
		l.tr.Insert(pt, pt, s)
	})
	return l
}

// FindClosest returns the segment whose start is nearest to p.
func (l *Locator) FindClosest(p geo.Point) (*Segment, bool) {
	var best *Segment
	bestDist := 0.0
	l.tr.Nearby(
		func(min, max [2]float64, s *Segment, item bool) float64 {
			if item {
				return geo.Dist(p, s.Start)
			}
			return boxDist(p, min, max)
		},
		func(min, max [2]float64, s *Segment, dist float64) bool {
			if best == nil {
				best, bestDist = s, dist
				return true
			}
			if dist > bestDist {
				return false
			}
			// Equidistant candidate: keep the earliest inserted.
			if s.ID < best.ID {
				best = s
			}
			return true
		},
	)
	return best, best != nil
}

const (
	earthRadiusMeters = 6_371_000.0
	degToRad          = math.Pi / 180
)

// boxDist lower-bounds the great-circle distance in meters from p to
// any point inside the lng/lat box. It feeds the haversine formula the
// per-axis gaps and the smallest cosine the box's latitudes allow, so
// every point in the box is at least this far away and Nearby's
// ordering stays correct.
func boxDist(p geo.Point, min, max [2]float64) float64 {
	dLat := axisGap(p.Lat, min[1], max[1]) * degToRad
	dLng := axisGap(p.Lng, min[0], max[0]) * degToRad

	cosBox := math.Cos(math.Max(math.Abs(min[1]), math.Abs(max[1])) * degToRad)
	cosP := math.Cos(p.Lat * degToRad)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		cosP*cosBox*math.Sin(dLng/2)*math.Sin(dLng/2)
	return 2 * earthRadiusMeters * math.Asin(math.Sqrt(math.Min(1, a)))
}

// axisGap is the distance from v to the interval [lo, hi], zero inside.
func axisGap(v, lo, hi float64) float64 {
	switch {
	case v < lo:
		return lo - v
	case v > hi:
		return v - hi
	}
	return 0
}
