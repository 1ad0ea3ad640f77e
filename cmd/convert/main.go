// Command convert turns OSM PBF extracts or GeoPackage road databases
// into traffic-flow JSON files the server can load directly.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"traffic_router/pkg/flow"
	"traffic_router/pkg/gpkg"
	"traffic_router/pkg/osm"
)

func main() {
	osmPath := flag.String("osm", "", "Path to an OSM PBF extract")
	gpkgPath := flag.String("gpkg", "", "Path to a GeoPackage road database")
	gpkgWhere := flag.String("gpkg-where", "", "Optional SQL filter for the road table, e.g. \"WHERE Vagnummer_Huvudnummer_Vard = 222\"")
	bboxFlag := flag.String("bbox", "", "Bounding box minLat,minLng,maxLat,maxLng (OSM only)")
	out := flag.String("o", "roads.json", "Output flow JSON path")
	flag.Parse()

	if (*osmPath == "") == (*gpkgPath == "") {
		log.Fatal("Exactly one of -osm or -gpkg is required")
	}

	start := time.Now()

	var (
		resp *flow.Response
		err  error
	)
	switch {
	case *osmPath != "":
		resp, err = convertOSM(*osmPath, *bboxFlag)
	case *gpkgPath != "":
		resp, err = gpkg.Read(*gpkgPath, gpkg.Options{Where: *gpkgWhere})
	}
	if err != nil {
		log.Fatalf("Conversion failed: %v", err)
	}

	if err := flow.WriteFile(*out, resp); err != nil {
		log.Fatalf("Failed to write %s: %v", *out, err)
	}

	log.Printf("Wrote %d locations to %s in %s",
		len(resp.Results), *out, time.Since(start).Round(time.Millisecond))
}

func convertOSM(path, bboxFlag string) (*flow.Response, error) {
	bbox, err := parseBBox(bboxFlag)
	if err != nil {
		return nil, err
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open osm extract: %w", err)
	}
	defer f.Close()

	return osm.Parse(context.Background(), f, osm.ParseOptions{BBox: bbox})
}

func parseBBox(s string) (osm.BBox, error) {
	if s == "" {
		return osm.BBox{}, nil
	}

	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return osm.BBox{}, fmt.Errorf("bbox needs 4 comma-separated values, got %d", len(parts))
	}
	vals := make([]float64, 4)
	for i, p := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return osm.BBox{}, fmt.Errorf("bbox value %q: %w", p, err)
		}
		vals[i] = v
	}
	return osm.BBox{MinLat: vals[0], MinLng: vals[1], MaxLat: vals[2], MaxLng: vals[3]}, nil
}
