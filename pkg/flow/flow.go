// Package flow models traffic-flow responses: the normalized road
// geometry payload produced by the collection layer. All road sources
// (provider flow APIs, OSM extracts, GeoPackage databases) are reduced
// to this shape before graph construction.
package flow

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"traffic_router/pkg/geo"
)

// Response is one traffic-flow payload: a set of named road locations.
type Response struct {
	Results []LocationResult `json:"results"`
}

// LocationResult describes one road location and its geometry.
type LocationResult struct {
	Location Location `json:"location"`
}

// Location carries the descriptive label and the shape of a road.
type Location struct {
	Description string `json:"description"`
	Shape       Shape  `json:"shape"`
}

// Shape is an ordered sequence of links making up a road's polyline.
type Shape struct {
	Links []Link `json:"links"`
}

// Link is one polyline piece with the provider-reported length in
// meters. The length comes from the source data and is not required to
// equal the geodesic distance between the link's endpoints.
type Link struct {
	Points []geo.Point `json:"points"`
	Length float64     `json:"length"`
}

// Decode reads a flow response from r.
func Decode(r io.Reader) (*Response, error) {
	var resp Response
	if err := json.NewDecoder(r).Decode(&resp); err != nil {
		return nil, fmt.Errorf("decode flow response: %w", err)
	}
	return &resp, nil
}

// ReadFile loads a flow response from a JSON file.
func ReadFile(path string) (*Response, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open flow response: %w", err)
	}
	defer f.Close()
	return Decode(f)
}

// WriteFile writes a flow response as JSON, used by the converters.
func WriteFile(path string, resp *Response) error {
	data, err := json.Marshal(resp)
	if err != nil {
		return fmt.Errorf("encode flow response: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write flow response: %w", err)
	}
	return nil
}
