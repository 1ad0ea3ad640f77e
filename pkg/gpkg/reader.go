// Package gpkg reads road networks from GeoPackage files, the national
// road database export format, and converts them into traffic-flow
// responses for the graph builder.
package gpkg

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkb"
	_ "modernc.org/sqlite"

	"traffic_router/pkg/flow"
	"traffic_router/pkg/geo"
)

// Options configures which roads to read.
type Options struct {
	Table string // road table name, defaults to "SverigepaketTP"
	Where string // optional SQL filter, e.g. "WHERE Vagnummer_Huvudnummer_Vard = 222"
}

// carNetwork is the road network type covering drivable roads.
const carNetwork = "bilnät"

// Read opens a GeoPackage and returns one location per drivable road
// row. Each consecutive coordinate pair becomes a link with a geodesic
// length; roads with a forbidden travel direction get links only the
// allowed way. Geometry is expected in WGS84 lng/lat order.
func Read(path string, opts Options) (*flow.Response, error) {
	table := opts.Table
	if table == "" {
		table = "SverigepaketTP"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open geopackage: %w", err)
	}
	defer db.Close()

	query := fmt.Sprintf(`SELECT geom,
		Vagnummer_Huvudnummer_Vard,
		Vagtrafiknat_Vagtrafiknattyp,
		ForbjudenFardriktning_F,
		ForbjudenFardriktning_B
		FROM %s %s`, table, opts.Where)

	rows, err := db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("query roads: %w", err)
	}
	defer rows.Close()

	resp := &flow.Response{}
	for rows.Next() {
		var (
			geom       []byte
			mainNumber int
			roadType   sql.NullString
			fdF, fdB   sql.NullString
		)
		if err := rows.Scan(&geom, &mainNumber, &roadType, &fdF, &fdB); err != nil {
			return nil, fmt.Errorf("scan road row: %w", err)
		}

		if roadType.Valid && roadType.String != carNetwork {
			continue
		}

		polyline, err := decodeGeometry(geom)
		if err != nil {
			return nil, fmt.Errorf("road %d: %w", mainNumber, err)
		}
		if len(polyline) < 2 {
			continue
		}

		// ForbjudenFardriktning = forbidden travel direction, -1 when set.
		forward := !(fdF.Valid && fdF.String == "-1")
		backward := !(fdB.Valid && fdB.String == "-1")
		if !forward && !backward {
			continue
		}

		var links []flow.Link
		for i := 0; i < len(polyline)-1; i++ {
			from, to := polyline[i], polyline[i+1]
			length := geo.Dist(from, to)
			if forward {
				links = append(links, flow.Link{Points: []geo.Point{from, to}, Length: length})
			}
			if backward {
				links = append(links, flow.Link{Points: []geo.Point{to, from}, Length: length})
			}
		}

		resp.Results = append(resp.Results, flow.LocationResult{
			Location: flow.Location{
				Description: fmt.Sprintf("Väg %d", mainNumber),
				Shape:       flow.Shape{Links: links},
			},
		})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roads: %w", err)
	}

	return resp, nil
}

// GeoPackage geometry blob header: magic "GP", version, flags, 4-byte
// SRS id, then an optional envelope whose size the flags encode, then
// standard WKB.
const headerLen = 8

func geometryWKB(blob []byte) ([]byte, error) {
	if len(blob) < headerLen || blob[0] != 'G' || blob[1] != 'P' {
		return nil, errors.New("not a geopackage geometry blob")
	}
	flags := blob[3]
	if flags&0x20 != 0 {
		return nil, errors.New("extended geometry not supported")
	}
	if flags&0x10 != 0 {
		return nil, nil // empty geometry
	}

	var envLen int
	switch (flags >> 1) & 0x07 {
	case 0:
		envLen = 0
	case 1:
		envLen = 32
	case 2, 3:
		envLen = 48
	case 4:
		envLen = 64
	default:
		return nil, fmt.Errorf("invalid envelope indicator %d", (flags>>1)&0x07)
	}

	start := headerLen + envLen
	if len(blob) < start {
		return nil, errors.New("geometry blob shorter than its envelope")
	}
	return blob[start:], nil
}

// decodeGeometry parses a GeoPackage blob into a polyline. LineStrings
// decode directly; MultiLineString parts are concatenated.
func decodeGeometry(blob []byte) ([]geo.Point, error) {
	data, err := geometryWKB(blob)
	if err != nil {
		return nil, err
	}
	if data == nil {
		return nil, nil
	}

	g, err := wkb.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("decode wkb: %w", err)
	}

	switch geom := g.(type) {
	case orb.LineString:
		return toPoints(geom), nil
	case orb.MultiLineString:
		var pts []geo.Point
		for _, ls := range geom {
			pts = append(pts, toPoints(ls)...)
		}
		return pts, nil
	default:
		return nil, fmt.Errorf("unsupported geometry type %T", g)
	}
}

func toPoints(ls orb.LineString) []geo.Point {
	pts := make([]geo.Point, 0, len(ls))
	for _, p := range ls {
		pts = append(pts, geo.Point{Lat: p.Lat(), Lng: p.Lon()})
	}
	return pts
}
