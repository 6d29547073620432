// Package geo provides great-circle distance between coordinate pairs.
package geo

import (
	"fmt"
	"math"

	"backend/internal/apperr"
)

// EarthRadiusKm is the mean earth radius used by the haversine formula.
const EarthRadiusKm = 6371.0

// Point is a WGS84 coordinate pair in degrees.
type Point struct {
	Lat float64
	Lng float64
}

// Valid reports whether the point lies within ±90 latitude and ±180 longitude.
func (p Point) Valid() bool {
	return p.Lat >= -90 && p.Lat <= 90 && p.Lng >= -180 && p.Lng <= 180
}

// Distance returns the haversine distance between a and b in kilometers.
// It is symmetric and returns 0 for identical points. Coordinates outside
// ±90/±180 fail with apperr.ErrInvalidLocation.
func Distance(a, b Point) (float64, error) {
	if !a.Valid() {
		return 0, fmt.Errorf("coordinates (%v, %v) out of range: %w", a.Lat, a.Lng, apperr.ErrInvalidLocation)
	}
	if !b.Valid() {
		return 0, fmt.Errorf("coordinates (%v, %v) out of range: %w", b.Lat, b.Lng, apperr.ErrInvalidLocation)
	}

	dLat := deg2rad(b.Lat - a.Lat)
	dLng := deg2rad(b.Lng - a.Lng)

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(deg2rad(a.Lat))*math.Cos(deg2rad(b.Lat))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return EarthRadiusKm * c, nil
}

func deg2rad(deg float64) float64 {
	return deg * (math.Pi / 180)
}
