// Package sensor models roadside traffic sensors and places their
// readings onto graph segments.
package sensor

import (
	"traffic_router/pkg/geo"
	"traffic_router/pkg/graph"
)

// Side is the measured traffic direction reported by a sensor site.
type Side string

const (
	SideUnknown        Side = "unknown"
	SideNorthBound     Side = "northBound"
	SideSouthBound     Side = "southBound"
	SideEastBound      Side = "eastBound"
	SideWestBound      Side = "westBound"
	SideNorthWestBound Side = "northWestBound"
	SideNorthEastBound Side = "northEastBound"
	SideSouthWestBound Side = "southWestBound"
	SideSouthEastBound Side = "southEastBound"
)

// Data is one sensor reading: flow rate in vehicles per hour and
// average speed in km/h, measured at a point for one lane and side.
type Data struct {
	SiteID       int
	FlowRate     float64
	AverageSpeed float64
	Point        geo.Point
	Lane         int
	Side         Side
}

// clusterRadiusMeters bounds how far apart two lane sensors of the same
// site group may sit and still be treated as one measurement point.
const clusterRadiusMeters = 10.0

// Cluster groups per-lane sensors that measure the same stretch of
// road: within clusterRadiusMeters of the cluster's first sensor, on
// the same side, and on a lane the cluster does not already cover.
// Cluster membership is greedy in input order.
func Cluster(sensors []Data) [][]Data {
	var clusters [][]Data

outer:
	for _, s := range sensors {
		for i, cluster := range clusters {
			first := cluster[0]
			if geo.Dist(s.Point, first.Point) >= clusterRadiusMeters || s.Side != first.Side {
				continue
			}
			seen := false
			for _, member := range cluster {
				if member.Lane == s.Lane {
					seen = true
					break
				}
			}
			if !seen {
				clusters[i] = append(clusters[i], s)
				continue outer
			}
		}
		clusters = append(clusters, []Data{s})
	}

	return clusters
}

// Merge collapses a cluster into a single sensor by averaging flow
// rate, speed and position. The merged sensor takes the first member's
// site id and side, and lane 1.
func Merge(cluster []Data) Data {
	var flowRate, averageSpeed float64
	var p geo.Point
	for _, s := range cluster {
		flowRate += s.FlowRate
		averageSpeed += s.AverageSpeed
		p.Lat += s.Point.Lat
		p.Lng += s.Point.Lng
	}

	n := float64(len(cluster))
	return Data{
		SiteID:       cluster[0].SiteID,
		FlowRate:     flowRate / n,
		AverageSpeed: averageSpeed / n,
		Point:        geo.Point{Lat: p.Lat / n, Lng: p.Lng / n},
		Lane:         1,
		Side:         cluster[0].Side,
	}
}

// MergeAll clusters sensors and merges each cluster.
func MergeAll(sensors []Data) []Data {
	clusters := Cluster(sensors)
	merged := make([]Data, 0, len(clusters))
	for _, c := range clusters {
		merged = append(merged, Merge(c))
	}
	return merged
}

// Locator resolves a coordinate to its nearest segment.
type Locator interface {
	FindClosest(p geo.Point) (*graph.Segment, bool)
}

// Assign attaches each sensor to the segment whose start is nearest to
// it, returning readings grouped by segment id. Sensors are expected to
// be merged first; several sites may still land on one segment.
func Assign(loc Locator, sensors []Data) map[int][]Data {
	assigned := make(map[int][]Data)
	for _, s := range sensors {
		seg, ok := loc.FindClosest(s.Point)
		if !ok {
			continue
		}
		assigned[seg.ID] = append(assigned[seg.ID], s)
	}
	return assigned
}

// Speeds reduces assigned readings to one average speed (km/h) per
// segment, for travel-time estimation. Segments whose readings average
// to zero or below are omitted.
func Speeds(assigned map[int][]Data) map[int]float64 {
	speeds := make(map[int]float64)
	for id, readings := range assigned {
		sum := 0.0
		for _, r := range readings {
			sum += r.AverageSpeed
		}
		avg := sum / float64(len(readings))
		if avg > 0 {
			speeds[id] = avg
		}
	}
	return speeds
}
