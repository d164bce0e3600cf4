// Package geo evaluates great-circle distances between classroom and student coordinates.
package geo

import (
	"errors"
	"math"
)

// earthRadiusKm is the mean earth radius (IUGG) in kilometres.
const earthRadiusKm = 6371.0088

const feetPerKm = 3280.839895

// ErrInvalidCoordinate is returned by Point.Validate for out-of-range values.
var ErrInvalidCoordinate = errors.New("coordinate out of range")

// Point is a latitude/longitude pair in decimal degrees.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks lat ∈ [-90, 90] and lon ∈ [-180, 180].
func (p Point) Validate() error {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) {
		return ErrInvalidCoordinate
	}
	if p.Lat < -90 || p.Lat > 90 || p.Lon < -180 || p.Lon > 180 {
		return ErrInvalidCoordinate
	}
	return nil
}

// Distance returns the haversine distance between a and b in feet.
func Distance(a, b Point) float64 {
	if a == b {
		return 0
	}

	lat1 := toRadians(a.Lat)
	lat2 := toRadians(b.Lat)
	dLat := lat2 - lat1
	dLon := toRadians(b.Lon - a.Lon)

	h := math.Pow(math.Sin(dLat/2), 2) + math.Cos(lat1)*math.Cos(lat2)*math.Pow(math.Sin(dLon/2), 2)
	// Rounding can push h marginally past 1 for antipodal points.
	h = math.Min(1, math.Max(0, h))

	return 2 * earthRadiusKm * feetPerKm * math.Asin(math.Sqrt(h))
}

// WithinDistance reports whether candidate lies at most maxFeet from reference.
// The boundary is inclusive.
func WithinDistance(candidate, reference Point, maxFeet float64) bool {
	return Distance(candidate, reference) <= maxFeet
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
