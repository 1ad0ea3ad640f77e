package graph

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"traffic_router/pkg/geo"
)

func TestAddSegmentAssignsSequentialIDs(t *testing.T) {
	g := New()
	for i := 0; i < 5; i++ {
		id := g.AddSegment(&Segment{Start: geo.Point{Lat: float64(i)}, End: geo.Point{Lat: float64(i + 1)}})
		if id != i {
			t.Errorf("AddSegment #%d returned id %d, want %d", i, id, i)
		}
	}
	if g.Len() != 5 {
		t.Fatalf("Len = %d, want 5", g.Len())
	}
	for i := 0; i < 5; i++ {
		s, ok := g.Segment(i)
		if !ok {
			t.Fatalf("Segment(%d) not found", i)
		}
		if s.ID != i {
			t.Errorf("Segment(%d).ID = %d", i, s.ID)
		}
	}
}

func TestSegmentUnknownID(t *testing.T) {
	g := New()
	g.AddSegment(&Segment{})

	if _, ok := g.Segment(7); ok {
		t.Error("Segment(7) = ok, want absent")
	}
	if _, ok := g.Segment(-1); ok {
		t.Error("Segment(-1) = ok, want absent")
	}
}

func TestSegmentsAtExactEquality(t *testing.T) {
	g := New()
	p := geo.Point{Lat: 59.35, Lng: 18.03}
	a := &Segment{Start: p, End: geo.Point{Lat: 59.36, Lng: 18.04}}
	b := &Segment{Start: p, End: geo.Point{Lat: 59.34, Lng: 18.02}}
	// Start differs from p by one ulp-scale nudge: must not match.
	c := &Segment{Start: geo.Point{Lat: 59.35 + 1e-12, Lng: 18.03}}
	g.AddSegment(a)
	g.AddSegment(b)
	g.AddSegment(c)

	at := g.SegmentsAt(p)
	if len(at) != 2 {
		t.Fatalf("SegmentsAt = %d segments, want 2", len(at))
	}
	if at[0] != a || at[1] != b {
		t.Errorf("SegmentsAt returned wrong segments: %v", at)
	}

	if got := g.SegmentsAt(geo.Point{Lat: 1, Lng: 1}); len(got) != 0 {
		t.Errorf("SegmentsAt(unknown point) = %d segments, want 0", len(got))
	}
}

func TestFindClosest(t *testing.T) {
	g := New()
	g.AddSegment(&Segment{Start: geo.Point{Lat: 0, Lng: 0}})
	g.AddSegment(&Segment{Start: geo.Point{Lat: 1, Lng: 1}})
	g.AddSegment(&Segment{Start: geo.Point{Lat: 2, Lng: 2}})

	s, ok := g.FindClosest(geo.Point{Lat: 1.1, Lng: 1.1})
	if !ok {
		t.Fatal("FindClosest returned no segment")
	}
	if s.ID != 1 {
		t.Errorf("FindClosest id = %d, want 1", s.ID)
	}
}

func TestFindClosestTieBreaksByInsertionOrder(t *testing.T) {
	g := New()
	p := geo.Point{Lat: 59.35, Lng: 18.03}
	g.AddSegment(&Segment{Start: p, Name: "first"})
	g.AddSegment(&Segment{Start: p, Name: "second"})

	s, ok := g.FindClosest(p)
	if !ok {
		t.Fatal("FindClosest returned no segment")
	}
	if s.ID != 0 {
		t.Errorf("FindClosest tie resolved to id %d, want 0", s.ID)
	}
}

func TestFindClosestEmptyGraph(t *testing.T) {
	g := New()
	if _, ok := g.FindClosest(geo.Point{Lat: 1, Lng: 1}); ok {
		t.Error("FindClosest on empty graph = ok, want absent")
	}
}

func TestForEachInsertionOrder(t *testing.T) {
	g := New()
	g.AddSegment(&Segment{Name: "a"})
	g.AddSegment(&Segment{Name: "b"})
	g.AddSegment(&Segment{Name: "c"})

	var names []string
	g.ForEach(func(s *Segment) { names = append(names, s.Name) })

	if diff := cmp.Diff([]string{"a", "b", "c"}, names); diff != "" {
		t.Errorf("ForEach order mismatch (-want +got):\n%s", diff)
	}
}

func TestConnectSegments(t *testing.T) {
	g := New()
	shared := geo.Point{Lat: 1, Lng: 1}
	a := &Segment{Start: geo.Point{Lat: 0, Lng: 0}, End: shared}
	b := &Segment{Start: shared, End: geo.Point{Lat: 2, Lng: 2}}
	c := &Segment{Start: shared, End: geo.Point{Lat: 3, Lng: 3}}
	g.AddSegment(a)
	g.AddSegment(b)
	g.AddSegment(c)
	g.ConnectSegments()

	if diff := cmp.Diff([]int{1, 2}, a.Edges); diff != "" {
		t.Errorf("a.Edges mismatch (-want +got):\n%s", diff)
	}
	// b and c end nowhere another segment starts: sinks.
	if len(b.Edges) != 0 {
		t.Errorf("b.Edges = %v, want empty", b.Edges)
	}
	if len(c.Edges) != 0 {
		t.Errorf("c.Edges = %v, want empty", c.Edges)
	}
}
