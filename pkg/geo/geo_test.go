package geo

import (
	"math"
	"testing"
)

func TestHaversineZeroDistance(t *testing.T) {
	d := Haversine(59.3293, 18.0686, 59.3293, 18.0686)
	if d != 0 {
		t.Errorf("Haversine(same point) = %f, want 0", d)
	}
}

func TestHaversineKnownDistance(t *testing.T) {
	// Stockholm city hall to Uppsala cathedral, roughly 63.5 km.
	d := Haversine(59.3275, 18.0544, 59.8586, 17.6326)
	if d < 62_000 || d > 65_000 {
		t.Errorf("Haversine = %f m, want ~63500 m", d)
	}
}

func TestHaversineSymmetry(t *testing.T) {
	d1 := Haversine(59.30, 18.01, 59.35, 18.03)
	d2 := Haversine(59.35, 18.03, 59.30, 18.01)
	if math.Abs(d1-d2) > 1e-9 {
		t.Errorf("Haversine not symmetric: %f vs %f", d1, d2)
	}
}

func TestDistMatchesHaversine(t *testing.T) {
	a := Point{Lat: 59.30, Lng: 18.01}
	b := Point{Lat: 59.35, Lng: 18.03}
	if got, want := Dist(a, b), Haversine(a.Lat, a.Lng, b.Lat, b.Lng); got != want {
		t.Errorf("Dist = %f, want %f", got, want)
	}
}

func TestEquirectangularCloseToHaversine(t *testing.T) {
	// Short distance at mid latitude: approximation should be within 1%.
	h := Haversine(59.30, 18.00, 59.31, 18.02)
	e := EquirectangularDist(59.30, 18.00, 59.31, 18.02)
	if math.Abs(h-e)/h > 0.01 {
		t.Errorf("equirectangular off by more than 1%%: haversine=%f approx=%f", h, e)
	}
}

func TestMidpoint(t *testing.T) {
	m := Midpoint(Point{Lat: 10, Lng: 20}, Point{Lat: 20, Lng: 40})
	if m.Lat != 15 || m.Lng != 30 {
		t.Errorf("Midpoint = %+v, want {15 30}", m)
	}
}
