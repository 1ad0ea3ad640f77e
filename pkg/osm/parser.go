// Package osm converts OpenStreetMap PBF extracts into traffic-flow
// responses so the graph builder can consume them like any other road
// source.
package osm

import (
	"context"
	"fmt"
	"io"
	"log"

	"github.com/paulmach/osm"
	"github.com/paulmach/osm/osmpbf"

	"traffic_router/pkg/flow"
	"traffic_router/pkg/geo"
)

// carHighways lists highway tag values accessible by car.
var carHighways = map[string]bool{
	"motorway":       true,
	"motorway_link":  true,
	"trunk":          true,
	"trunk_link":     true,
	"primary":        true,
	"primary_link":   true,
	"secondary":      true,
	"secondary_link": true,
	"tertiary":       true,
	"tertiary_link":  true,
	"unclassified":   true,
	"residential":    true,
	"living_street":  true,
	"service":        true,
}

// isCarAccessible returns true if the way is drivable by car.
func isCarAccessible(tags osm.Tags) bool {
	hw := tags.Find("highway")
	if !carHighways[hw] {
		return false
	}

	// Skip area highways (pedestrian plazas).
	if tags.Find("area") == "yes" {
		return false
	}

	// Skip restricted access.
	access := tags.Find("access")
	if access == "no" || access == "private" {
		return false
	}
	if tags.Find("motor_vehicle") == "no" {
		return false
	}

	return true
}

// directionFlags returns (forward, backward) based on highway type and oneway tags.
func directionFlags(tags osm.Tags) (forward, backward bool) {
	// Default: bidirectional.
	forward = true
	backward = true

	hw := tags.Find("highway")

	// Implied oneway for motorways and roundabouts.
	if hw == "motorway" || hw == "motorway_link" || tags.Find("junction") == "roundabout" {
		backward = false
	}

	// Explicit oneway tag overrides.
	oneway := tags.Find("oneway")
	switch oneway {
	case "yes", "true", "1":
		forward = true
		backward = false
	case "-1", "reverse":
		forward = false
		backward = true
	case "no":
		forward = true
		backward = true
	case "reversible":
		// Time-dependent — skip entirely.
		forward = false
		backward = false
	}

	return forward, backward
}

// wayName picks a human-readable description for a way.
func wayName(tags osm.Tags) string {
	if name := tags.Find("name"); name != "" {
		return name
	}
	if ref := tags.Find("ref"); ref != "" {
		return ref
	}
	return tags.Find("highway")
}

// wayInfo holds parsed way data collected during the first pass.
type wayInfo struct {
	Name     string
	NodeIDs  []osm.NodeID
	Forward  bool
	Backward bool
}

// BBox defines a geographic bounding box for filtering.
// If non-zero, only links with both endpoints inside the box are kept.
type BBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// IsZero returns true if the bbox is unset.
func (b BBox) IsZero() bool {
	return b.MinLat == 0 && b.MaxLat == 0 && b.MinLng == 0 && b.MaxLng == 0
}

// Contains returns true if the point is inside the bounding box.
func (b BBox) Contains(p geo.Point) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat && p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// ParseOptions configures the converter.
type ParseOptions struct {
	BBox BBox // if non-zero, keep only links inside this bounding box
}

// Parse reads an OSM PBF extract and returns one location per drivable
// way, with one link per consecutive node pair and geodesic lengths.
// Bidirectional ways get a reversed link for each pair. The reader is
// consumed twice (seeks back to start for the second pass), so it must
// implement io.ReadSeeker.
func Parse(ctx context.Context, rs io.ReadSeeker, opts ...ParseOptions) (*flow.Response, error) {
	var opt ParseOptions
	if len(opts) > 0 {
		opt = opts[0]
	}
	useBBox := !opt.BBox.IsZero()

	// Pass 1: scan ways to collect referenced node ids and way info.
	referencedNodes := make(map[osm.NodeID]struct{})
	var ways []wayInfo

	scanner := osmpbf.New(ctx, rs, 1)
	scanner.SkipNodes = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		w, ok := scanner.Object().(*osm.Way)
		if !ok {
			continue
		}

		if !isCarAccessible(w.Tags) {
			continue
		}
		if len(w.Nodes) < 2 {
			continue
		}

		fwd, bwd := directionFlags(w.Tags)
		if !fwd && !bwd {
			continue
		}

		nodeIDs := make([]osm.NodeID, len(w.Nodes))
		for i, wn := range w.Nodes {
			nodeIDs[i] = wn.ID
			referencedNodes[wn.ID] = struct{}{}
		}

		ways = append(ways, wayInfo{
			Name:     wayName(w.Tags),
			NodeIDs:  nodeIDs,
			Forward:  fwd,
			Backward: bwd,
		})
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 1 (ways): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 1 complete: %d ways, %d referenced nodes", len(ways), len(referencedNodes))

	// Pass 2: scan nodes to collect coordinates for referenced nodes only.
	if _, err := rs.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("seek for pass 2: %w", err)
	}

	coords := make(map[osm.NodeID]geo.Point, len(referencedNodes))

	scanner = osmpbf.New(ctx, rs, 1)
	scanner.SkipWays = true
	scanner.SkipRelations = true

	for scanner.Scan() {
		n, ok := scanner.Object().(*osm.Node)
		if !ok {
			continue
		}
		if _, needed := referencedNodes[n.ID]; !needed {
			continue
		}
		coords[n.ID] = geo.Point{Lat: n.Lat, Lng: n.Lon}
	}
	if err := scanner.Err(); err != nil {
		scanner.Close()
		return nil, fmt.Errorf("pass 2 (nodes): %w", err)
	}
	scanner.Close()

	log.Printf("Pass 2 complete: %d node coordinates collected", len(coords))

	resp := &flow.Response{}
	var skippedLinks, bboxFiltered int

	for _, w := range ways {
		var links []flow.Link

		for i := 0; i < len(w.NodeIDs)-1; i++ {
			from, fromOk := coords[w.NodeIDs[i]]
			to, toOk := coords[w.NodeIDs[i+1]]
			if !fromOk || !toOk {
				skippedLinks++
				continue
			}

			if useBBox && (!opt.BBox.Contains(from) || !opt.BBox.Contains(to)) {
				bboxFiltered++
				continue
			}

			length := geo.Dist(from, to)
			if w.Forward {
				links = append(links, flow.Link{Points: []geo.Point{from, to}, Length: length})
			}
			if w.Backward {
				links = append(links, flow.Link{Points: []geo.Point{to, from}, Length: length})
			}
		}

		if len(links) == 0 {
			continue
		}
		resp.Results = append(resp.Results, flow.LocationResult{
			Location: flow.Location{
				Description: w.Name,
				Shape:       flow.Shape{Links: links},
			},
		})
	}

	if skippedLinks > 0 {
		log.Printf("Warning: skipped %d links due to missing node coordinates", skippedLinks)
	}
	if bboxFiltered > 0 {
		log.Printf("Filtered %d links outside bounding box", bboxFiltered)
	}
	log.Printf("Built %d locations", len(resp.Results))

	return resp, nil
}
