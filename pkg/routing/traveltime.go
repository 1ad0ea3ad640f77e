package routing

import (
	"errors"

	"traffic_router/pkg/graph"
)

// ErrNoReadings indicates no segment along the route carried a speed
// reading, so no travel time can be estimated.
var ErrNoReadings = errors.New("no speed readings along route")

// KmhToMs converts kilometers per hour to meters per second.
func KmhToMs(v float64) float64 { return v * 1000 / 3600 }

// MsToKmh converts meters per second to kilometers per hour.
func MsToKmh(v float64) float64 { return v * 3600 / 1000 }

// TravelTime estimates the seconds needed to traverse route, given
// average speed readings in km/h keyed by segment id. Readings are
// sparse; speed between two consecutive readings is interpolated
// linearly over distance, which makes each stretch a trapezoid:
//
//	head   d/v1        up to the first reading at the first speed
//	middle 2d/(v1+v2)  between consecutive readings
//	tail   d/vlast     past the last reading at its speed
//
// Non-positive readings are ignored. Returns ErrNoReadings when the
// route carries no usable reading.
func TravelTime(route []*graph.Segment, speeds map[int]float64) (float64, error) {
	type mark struct {
		dist  float64 // cumulative meters at the end of the segment
		speed float64 // m/s
	}

	var marks []mark
	total := 0.0
	for _, s := range route {
		total += s.Length
		if v, ok := speeds[s.ID]; ok && v > 0 {
			marks = append(marks, mark{dist: total, speed: KmhToMs(v)})
		}
	}
	if len(marks) == 0 {
		return 0, ErrNoReadings
	}

	prev := marks[0]
	seconds := prev.dist / prev.speed
	for _, next := range marks[1:] {
		seconds += 2 * (next.dist - prev.dist) / (prev.speed + next.speed)
		prev = next
	}
	seconds += (total - prev.dist) / prev.speed

	return seconds, nil
}
