package graph

import (
	"math/rand"
	"testing"

	"traffic_router/pkg/geo"
)

func TestLocatorMatchesLinearScan(t *testing.T) {
	rng := rand.New(rand.NewSource(42))

	g := New()
	for i := 0; i < 200; i++ {
		start := geo.Point{Lat: 59.2 + rng.Float64()*0.3, Lng: 17.9 + rng.Float64()*0.3}
		end := geo.Point{Lat: 59.2 + rng.Float64()*0.3, Lng: 17.9 + rng.Float64()*0.3}
		g.AddSegment(&Segment{Start: start, End: end, Length: 100})
	}
	g.ConnectSegments()

	loc := NewLocator(g)

	for i := 0; i < 100; i++ {
		q := geo.Point{Lat: 59.2 + rng.Float64()*0.3, Lng: 17.9 + rng.Float64()*0.3}

		want, ok1 := g.FindClosest(q)
		got, ok2 := loc.FindClosest(q)
		if !ok1 || !ok2 {
			t.Fatalf("query %d: linear ok=%v, locator ok=%v", i, ok1, ok2)
		}
		if want.ID != got.ID {
			t.Errorf("query %d at %+v: linear=%d (%.2fm), locator=%d (%.2fm)",
				i, q, want.ID, geo.Dist(q, want.Start), got.ID, geo.Dist(q, got.Start))
		}
	}
}

func TestLocatorRanksByMeters(t *testing.T) {
	// At lat 59 a degree of longitude is roughly half a degree of
	// latitude in meters. The eastern start is farther in degrees but
	// nearer in meters; both lookups must agree on it.
	g := New()
	g.AddSegment(&Segment{Start: geo.Point{Lat: 59.10, Lng: 18.00}, Name: "north"})
	g.AddSegment(&Segment{Start: geo.Point{Lat: 59.00, Lng: 18.12}, Name: "east"})
	g.ConnectSegments()

	q := geo.Point{Lat: 59.00, Lng: 18.00}

	want, ok := g.FindClosest(q)
	if !ok || want.Name != "east" {
		t.Fatalf("linear scan picked %+v, want the eastern segment", want)
	}

	got, ok := NewLocator(g).FindClosest(q)
	if !ok {
		t.Fatal("FindClosest returned no segment")
	}
	if got.ID != want.ID {
		t.Errorf("locator picked %q (%.0fm), linear scan picked %q (%.0fm)",
			got.Name, geo.Dist(q, got.Start), want.Name, geo.Dist(q, want.Start))
	}
}

func TestLocatorTieBreaksByID(t *testing.T) {
	g := New()
	p := geo.Point{Lat: 59.35, Lng: 18.03}
	g.AddSegment(&Segment{Start: p})
	g.AddSegment(&Segment{Start: p})
	g.AddSegment(&Segment{Start: p})
	g.ConnectSegments()

	loc := NewLocator(g)
	s, ok := loc.FindClosest(p)
	if !ok {
		t.Fatal("FindClosest returned no segment")
	}
	if s.ID != 0 {
		t.Errorf("tie resolved to id %d, want 0", s.ID)
	}
}

func TestLocatorEmptyGraph(t *testing.T) {
	loc := NewLocator(New())
	if _, ok := loc.FindClosest(geo.Point{Lat: 1, Lng: 1}); ok {
		t.Error("FindClosest on empty locator = ok, want absent")
	}
}
