// Command route answers a single shortest-route query against a
// traffic-flow JSON file and prints the result as GeoJSON.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"traffic_router/pkg/flow"
	"traffic_router/pkg/geo"
	"traffic_router/pkg/graph"
	"traffic_router/pkg/routing"
)

func main() {
	flowPath := flag.String("flow", "", "Path to a traffic-flow JSON file")
	startFlag := flag.String("start", "", "Start coordinate as lat,lng")
	endFlag := flag.String("end", "", "End coordinate as lat,lng")
	out := flag.String("o", "", "Output GeoJSON path (default stdout)")
	flag.Parse()

	if *flowPath == "" || *startFlag == "" || *endFlag == "" {
		log.Fatal("-flow, -start and -end are required")
	}

	start, err := parsePoint(*startFlag)
	if err != nil {
		log.Fatalf("Invalid -start: %v", err)
	}
	end, err := parsePoint(*endFlag)
	if err != nil {
		log.Fatalf("Invalid -end: %v", err)
	}

	resp, err := flow.ReadFile(*flowPath)
	if err != nil {
		log.Fatalf("Failed to load roads: %v", err)
	}
	g := graph.Build(resp)
	log.Printf("Loaded %d segments", g.Len())

	engine := routing.NewEngine(g)
	result, err := engine.Route(context.Background(), start, end)
	if err != nil {
		log.Fatalf("Routing failed: %v", err)
	}
	log.Printf("Route: %d segments, %.1f m", len(result.Segments), result.TotalLengthMeters)

	fc := toGeoJSON(result)
	data, err := json.MarshalIndent(fc, "", "  ")
	if err != nil {
		log.Fatalf("Failed to encode GeoJSON: %v", err)
	}

	if *out == "" {
		fmt.Println(string(data))
		return
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}
}

// toGeoJSON renders each route segment as a LineString feature.
func toGeoJSON(result *routing.RouteResult) *geojson.FeatureCollection {
	fc := geojson.NewFeatureCollection()
	for _, seg := range result.Segments {
		f := geojson.NewFeature(orb.LineString{
			{seg.Start.Lng, seg.Start.Lat},
			{seg.End.Lng, seg.End.Lat},
		})
		f.Properties["id"] = seg.ID
		f.Properties["name"] = seg.Name
		f.Properties["length_meters"] = seg.Length
		fc.Append(f)
	}
	return fc
}

func parsePoint(s string) (geo.Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return geo.Point{}, fmt.Errorf("want lat,lng, got %q", s)
	}
	lat, err := strconv.ParseFloat(strings.TrimSpace(parts[0]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("latitude %q: %w", parts[0], err)
	}
	lng, err := strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
	if err != nil {
		return geo.Point{}, fmt.Errorf("longitude %q: %w", parts[1], err)
	}
	return geo.Point{Lat: lat, Lng: lng}, nil
}
