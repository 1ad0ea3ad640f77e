package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"traffic_router/pkg/api"
	"traffic_router/pkg/flow"
	"traffic_router/pkg/gpkg"
	"traffic_router/pkg/graph"
	"traffic_router/pkg/osm"
	"traffic_router/pkg/routing"
	"traffic_router/pkg/sensor"
	"traffic_router/pkg/store"
)

func main() {
	flowPath := flag.String("flow", "", "Path to a traffic-flow JSON file")
	gpkgPath := flag.String("gpkg", "", "Path to a GeoPackage road database")
	osmPath := flag.String("osm", "", "Path to an OSM PBF extract")
	port := flag.Int("port", 8080, "HTTP port")
	corsOrigin := flag.String("cors-origin", "", "CORS allowed origin (empty = same-origin)")
	sensors := flag.Bool("sensors", false, "Load sensor readings from MongoDB (see .env)")
	maxAge := flag.Duration("sensor-max-age", time.Hour, "Maximum age of sensor data points")
	flag.Parse()

	// Mongo settings come from the environment; .env is optional.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Warning: could not load .env: %v", err)
	}

	start := time.Now()

	resp, err := loadRoads(*flowPath, *gpkgPath, *osmPath)
	if err != nil {
		log.Fatalf("Failed to load roads: %v", err)
	}

	g := graph.Build(resp)
	components := graph.Components(g)
	log.Printf("Loaded %d segments in %d components", g.Len(), len(components))

	engine := routing.NewEngine(g)
	loc := graph.NewLocator(g)

	numSensors := 0
	if *sensors {
		readings, err := loadReadings(*maxAge)
		if err != nil {
			log.Fatalf("Failed to load sensor readings: %v", err)
		}
		merged := sensor.MergeAll(readings)
		assigned := sensor.Assign(loc, merged)
		engine.SetSpeeds(sensor.Speeds(assigned))
		numSensors = len(merged)
		log.Printf("Attached %d merged sensors (%d raw readings)", numSensors, len(readings))
	}

	log.Printf("Ready in %s", time.Since(start).Round(time.Millisecond))

	addr := fmt.Sprintf(":%d", *port)
	cfg := api.DefaultConfig(addr)
	cfg.CORSOrigin = *corsOrigin

	stats := api.StatsResponse{
		NumSegments:   g.Len(),
		NumComponents: len(components),
		NumSensors:    numSensors,
	}

	handlers := api.NewHandlers(engine, g, loc, stats)
	srv := api.NewServer(cfg, handlers)

	if err := api.ListenAndServe(srv); err != nil {
		log.Printf("Server stopped: %v", err)
		os.Exit(1)
	}
}

// loadRoads reads road data from whichever source was given. Multiple
// sources merge into one response; segments only join where their
// endpoints agree exactly.
func loadRoads(flowPath, gpkgPath, osmPath string) (*flow.Response, error) {
	merged := &flow.Response{}
	var sources []string

	if flowPath != "" {
		resp, err := flow.ReadFile(flowPath)
		if err != nil {
			return nil, fmt.Errorf("read flow file: %w", err)
		}
		merged.Results = append(merged.Results, resp.Results...)
		sources = append(sources, "flow")
	}
	if gpkgPath != "" {
		resp, err := gpkg.Read(gpkgPath, gpkg.Options{})
		if err != nil {
			return nil, fmt.Errorf("read geopackage: %w", err)
		}
		merged.Results = append(merged.Results, resp.Results...)
		sources = append(sources, "gpkg")
	}
	if osmPath != "" {
		f, err := os.Open(osmPath)
		if err != nil {
			return nil, fmt.Errorf("open osm extract: %w", err)
		}
		defer f.Close()
		resp, err := osm.Parse(context.Background(), f)
		if err != nil {
			return nil, fmt.Errorf("parse osm extract: %w", err)
		}
		merged.Results = append(merged.Results, resp.Results...)
		sources = append(sources, "osm")
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no road source given: use -flow, -gpkg or -osm")
	}
	log.Printf("Road sources: %s", strings.Join(sources, ", "))
	return merged, nil
}

// loadReadings connects to MongoDB and fetches the latest reading per
// sensor site within the max-age window.
func loadReadings(maxAge time.Duration) ([]sensor.Data, error) {
	opts := store.Options{
		URI:                  envOr("MONGO_URI", "mongodb://localhost:27017"),
		Database:             envOr("MONGO_DB", "traffic"),
		SensorsCollection:    envOr("MONGO_SENSORS_COLLECTION", "sensors"),
		DataPointsCollection: envOr("MONGO_DATA_POINTS_COLLECTION", "data_points"),
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	s, err := store.Open(ctx, opts)
	if err != nil {
		return nil, err
	}
	defer s.Close(ctx)

	return s.ReadingsAt(ctx, time.Now(), maxAge)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
