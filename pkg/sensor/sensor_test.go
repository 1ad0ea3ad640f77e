package sensor

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"

	"traffic_router/pkg/geo"
	"traffic_router/pkg/graph"
)

// One degree of latitude is roughly 111.32 km.
func nudgeLat(p geo.Point, meters float64) geo.Point {
	return geo.Point{Lat: p.Lat + meters/111_320.0, Lng: p.Lng}
}

func TestClusterGroupsLanesAtOneSite(t *testing.T) {
	p := geo.Point{Lat: 59.35, Lng: 18.03}
	sensors := []Data{
		{SiteID: 1, Lane: 1, Side: SideNorthBound, Point: p},
		{SiteID: 1, Lane: 2, Side: SideNorthBound, Point: nudgeLat(p, 2)},
		{SiteID: 1, Lane: 3, Side: SideNorthBound, Point: nudgeLat(p, 4)},
	}

	clusters := Cluster(sensors)
	if len(clusters) != 1 {
		t.Fatalf("Cluster = %d groups, want 1", len(clusters))
	}
	if len(clusters[0]) != 3 {
		t.Errorf("cluster size = %d, want 3", len(clusters[0]))
	}
}

func TestClusterSeparatesSides(t *testing.T) {
	p := geo.Point{Lat: 59.35, Lng: 18.03}
	sensors := []Data{
		{SiteID: 1, Lane: 1, Side: SideNorthBound, Point: p},
		{SiteID: 1, Lane: 1, Side: SideSouthBound, Point: nudgeLat(p, 1)},
	}

	if clusters := Cluster(sensors); len(clusters) != 2 {
		t.Errorf("Cluster = %d groups, want 2 (opposite sides)", len(clusters))
	}
}

func TestClusterSeparatesDuplicateLanes(t *testing.T) {
	p := geo.Point{Lat: 59.35, Lng: 18.03}
	sensors := []Data{
		{SiteID: 1, Lane: 1, Side: SideNorthBound, Point: p},
		{SiteID: 2, Lane: 1, Side: SideNorthBound, Point: nudgeLat(p, 1)},
	}

	// Same lane twice cannot be one measurement point.
	if clusters := Cluster(sensors); len(clusters) != 2 {
		t.Errorf("Cluster = %d groups, want 2 (duplicate lane)", len(clusters))
	}
}

func TestClusterSeparatesDistantSites(t *testing.T) {
	p := geo.Point{Lat: 59.35, Lng: 18.03}
	sensors := []Data{
		{SiteID: 1, Lane: 1, Side: SideNorthBound, Point: p},
		{SiteID: 2, Lane: 2, Side: SideNorthBound, Point: nudgeLat(p, 50)},
	}

	if clusters := Cluster(sensors); len(clusters) != 2 {
		t.Errorf("Cluster = %d groups, want 2 (50 m apart)", len(clusters))
	}
}

func TestMergeAverages(t *testing.T) {
	cluster := []Data{
		{SiteID: 7, FlowRate: 100, AverageSpeed: 80, Lane: 1, Side: SideEastBound, Point: geo.Point{Lat: 10, Lng: 20}},
		{SiteID: 7, FlowRate: 300, AverageSpeed: 60, Lane: 2, Side: SideEastBound, Point: geo.Point{Lat: 12, Lng: 22}},
	}

	got := Merge(cluster)
	want := Data{
		SiteID:       7,
		FlowRate:     200,
		AverageSpeed: 70,
		Point:        geo.Point{Lat: 11, Lng: 21},
		Lane:         1,
		Side:         SideEastBound,
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Merge mismatch (-want +got):\n%s", diff)
	}
}

func TestAssignToNearestSegment(t *testing.T) {
	g := graph.New()
	g.AddSegment(&graph.Segment{Start: geo.Point{Lat: 0, Lng: 0}, End: geo.Point{Lat: 1, Lng: 1}})
	g.AddSegment(&graph.Segment{Start: geo.Point{Lat: 1, Lng: 1}, End: geo.Point{Lat: 2, Lng: 2}})
	g.ConnectSegments()

	sensors := []Data{
		{SiteID: 1, AverageSpeed: 50, Point: geo.Point{Lat: 0.1, Lng: 0.1}},
		{SiteID: 2, AverageSpeed: 70, Point: geo.Point{Lat: 1.1, Lng: 1.1}},
		{SiteID: 3, AverageSpeed: 90, Point: geo.Point{Lat: 0.9, Lng: 0.9}},
	}

	assigned := Assign(g, sensors)
	if len(assigned[0]) != 1 || assigned[0][0].SiteID != 1 {
		t.Errorf("segment 0 readings = %v, want site 1", assigned[0])
	}
	if len(assigned[1]) != 2 {
		t.Fatalf("segment 1 readings = %d, want 2", len(assigned[1]))
	}
}

func TestSpeeds(t *testing.T) {
	assigned := map[int][]Data{
		0: {{AverageSpeed: 60}, {AverageSpeed: 80}},
		1: {{AverageSpeed: 0}},
	}

	got := Speeds(assigned)
	if len(got) != 1 {
		t.Fatalf("Speeds = %d entries, want 1 (zero-speed omitted)", len(got))
	}
	if math.Abs(got[0]-70) > 1e-9 {
		t.Errorf("Speeds[0] = %v, want 70", got[0])
	}
}
