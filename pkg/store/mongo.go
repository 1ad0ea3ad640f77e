// Package store loads sensor metadata and measurements from MongoDB.
package store

import (
	"context"
	"fmt"
	"time"
	"unicode"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"traffic_router/pkg/geo"
	"traffic_router/pkg/sensor"
)

// Options configures the MongoDB connection and collection names.
type Options struct {
	URI                  string
	Database             string
	SensorsCollection    string
	DataPointsCollection string
}

// Store reads sensor sites and their time-series data points.
type Store struct {
	client     *mongo.Client
	sensors    *mongo.Collection
	dataPoints *mongo.Collection
}

// Sensor is one stored sensor site: its document id plus the static
// metadata. FlowRate and AverageSpeed on Data are zero until joined
// with a data point.
type Sensor struct {
	ID   primitive.ObjectID
	Data sensor.Data
}

// DataPoint is one measurement for a sensor site.
type DataPoint struct {
	Time         time.Time
	FlowRate     float64
	AverageSpeed float64
}

// Open connects to MongoDB and verifies the connection.
func Open(ctx context.Context, opts Options) (*Store, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(opts.URI))
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	db := client.Database(opts.Database)
	return &Store{
		client:     client,
		sensors:    db.Collection(opts.SensorsCollection),
		dataPoints: db.Collection(opts.DataPointsCollection),
	}, nil
}

// Close disconnects from MongoDB.
func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

// Stored documents use PascalCase field names except the GeoJSON
// location, which keeps the lowercase type/coordinates pair.
type sensorDoc struct {
	ID              primitive.ObjectID `bson:"_id"`
	SiteID          int32              `bson:"SiteId"`
	Location        locationDoc        `bson:"Location"`
	MeasurementSide string             `bson:"MeasurementSide"`
	SpecificLane    int32              `bson:"SpecificLane"`
}

type locationDoc struct {
	Type        string     `bson:"type"`
	Coordinates [2]float64 `bson:"coordinates"`
}

type dataPointDoc struct {
	SensorID     primitive.ObjectID `bson:"SensorId"`
	Time         time.Time          `bson:"Time"`
	FlowRate     float64            `bson:"FlowRate"`
	AverageSpeed float64            `bson:"AverageSpeed"`
}

// Sensors returns all stored sensor sites.
func (s *Store) Sensors(ctx context.Context) ([]Sensor, error) {
	cursor, err := s.sensors.Find(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("find sensors: %w", err)
	}
	defer cursor.Close(ctx)

	var sensors []Sensor
	for cursor.Next(ctx) {
		var doc sensorDoc
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode sensor: %w", err)
		}
		sensors = append(sensors, Sensor{
			ID: doc.ID,
			Data: sensor.Data{
				SiteID: int(doc.SiteID),
				// GeoJSON coordinate order is lng, lat.
				Point: geo.Point{Lat: doc.Location.Coordinates[1], Lng: doc.Location.Coordinates[0]},
				Lane:  int(doc.SpecificLane),
				Side:  parseSide(doc.MeasurementSide),
			},
		})
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate sensors: %w", err)
	}

	return sensors, nil
}

// DataPointsAt returns, for each sensor, its most recent data point in
// the window [at-maxAge, at], keyed by site id. Sensors without a data
// point in the window are absent from the result.
func (s *Store) DataPointsAt(ctx context.Context, sensors []Sensor, at time.Time, maxAge time.Duration) (map[int]DataPoint, error) {
	points := make(map[int]DataPoint)

	for _, sen := range sensors {
		filter := bson.D{
			{Key: "SensorId", Value: sen.ID},
			{Key: "Time", Value: bson.D{
				{Key: "$lte", Value: at},
				{Key: "$gte", Value: at.Add(-maxAge)},
			}},
		}
		opts := options.FindOne().SetSort(bson.D{{Key: "Time", Value: -1}})

		var doc dataPointDoc
		err := s.dataPoints.FindOne(ctx, filter, opts).Decode(&doc)
		if err == mongo.ErrNoDocuments {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("find data point for site %d: %w", sen.Data.SiteID, err)
		}

		points[sen.Data.SiteID] = DataPoint{
			Time:         doc.Time,
			FlowRate:     doc.FlowRate,
			AverageSpeed: doc.AverageSpeed,
		}
	}

	return points, nil
}

// ReadingsAt joins sensor metadata with the latest data point per site,
// producing readings ready for clustering and assignment. Sensors
// without a data point in the window are skipped.
func (s *Store) ReadingsAt(ctx context.Context, at time.Time, maxAge time.Duration) ([]sensor.Data, error) {
	sensors, err := s.Sensors(ctx)
	if err != nil {
		return nil, err
	}
	points, err := s.DataPointsAt(ctx, sensors, at, maxAge)
	if err != nil {
		return nil, err
	}

	readings := make([]sensor.Data, 0, len(points))
	for _, sen := range sensors {
		dp, ok := points[sen.Data.SiteID]
		if !ok {
			continue
		}
		d := sen.Data
		d.FlowRate = dp.FlowRate
		d.AverageSpeed = dp.AverageSpeed
		readings = append(readings, d)
	}
	return readings, nil
}

// parseSide normalizes a stored side string. Metadata documents carry
// PascalCase values; raw feeds use camelCase.
func parseSide(s string) sensor.Side {
	if s == "" {
		return sensor.SideUnknown
	}
	runes := []rune(s)
	runes[0] = unicode.ToLower(runes[0])
	switch side := sensor.Side(string(runes)); side {
	case sensor.SideNorthBound, sensor.SideSouthBound, sensor.SideEastBound, sensor.SideWestBound,
		sensor.SideNorthWestBound, sensor.SideNorthEastBound, sensor.SideSouthWestBound, sensor.SideSouthEastBound:
		return side
	default:
		return sensor.SideUnknown
	}
}
