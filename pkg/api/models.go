package api

// RouteRequest is the JSON body for POST /api/v1/route.
type RouteRequest struct {
	Start LatLngJSON `json:"start"`
	End   LatLngJSON `json:"end"`
}

// LatLngJSON represents a lat/lng pair in JSON.
type LatLngJSON struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// RouteResponse is the JSON response for a successful route query.
type RouteResponse struct {
	TotalLengthMeters float64       `json:"total_length_meters"`
	TravelTimeSeconds float64       `json:"travel_time_seconds,omitempty"`
	Segments          []SegmentJSON `json:"segments"`
}

// SegmentJSON represents one road segment along the route.
type SegmentJSON struct {
	ID           int        `json:"id"`
	Name         string     `json:"name,omitempty"`
	LengthMeters float64    `json:"length_meters"`
	Start        LatLngJSON `json:"start"`
	End          LatLngJSON `json:"end"`
}

// ReachableRequest is the JSON body for POST /api/v1/reachable.
type ReachableRequest struct {
	Origin            LatLngJSON `json:"origin"`
	MaxDistanceMeters float64    `json:"max_distance_meters"`
}

// ReachableResponse maps reachable segment ids to their cumulative
// distance from the origin segment.
type ReachableResponse struct {
	Segments map[int]float64 `json:"segments"`
}

// ErrorResponse is the JSON response for errors.
type ErrorResponse struct {
	Error string `json:"error"`
	Field string `json:"field,omitempty"`
}

// StatsResponse is the JSON response for GET /api/v1/stats.
type StatsResponse struct {
	NumSegments   int `json:"num_segments"`
	NumComponents int `json:"num_components"`
	NumSensors    int `json:"num_sensors"`
}

// HealthResponse is the JSON response for GET /api/v1/health.
type HealthResponse struct {
	Status string `json:"status"`
}
