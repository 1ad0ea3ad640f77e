package flow

import (
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"traffic_router/pkg/geo"
)

func TestDecode(t *testing.T) {
	payload := `{
		"results": [
			{
				"location": {
					"description": "E4 Norrtull",
					"shape": {
						"links": [
							{"points": [{"lat": 59.35, "lng": 18.03}, {"lat": 59.36, "lng": 18.04}], "length": 1250.5},
							{"points": [{"lat": 59.36, "lng": 18.04}, {"lat": 59.37, "lng": 18.05}], "length": 980}
						]
					}
				}
			},
			{
				"location": {
					"description": "Empty road",
					"shape": {"links": []}
				}
			}
		]
	}`

	resp, err := Decode(strings.NewReader(payload))
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}

	want := &Response{
		Results: []LocationResult{
			{Location: Location{
				Description: "E4 Norrtull",
				Shape: Shape{Links: []Link{
					{Points: []geo.Point{{Lat: 59.35, Lng: 18.03}, {Lat: 59.36, Lng: 18.04}}, Length: 1250.5},
					{Points: []geo.Point{{Lat: 59.36, Lng: 18.04}, {Lat: 59.37, Lng: 18.05}}, Length: 980},
				}},
			}},
			{Location: Location{
				Description: "Empty road",
				Shape:       Shape{Links: []Link{}},
			}},
		},
	}

	if diff := cmp.Diff(want, resp); diff != "" {
		t.Errorf("Decode mismatch (-want +got):\n%s", diff)
	}
}

func TestDecodeInvalidJSON(t *testing.T) {
	if _, err := Decode(strings.NewReader("not json")); err == nil {
		t.Error("Decode(garbage) = nil error, want error")
	}
}
