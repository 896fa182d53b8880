// Package geo resolves customer locations and driving distances for delivery
// quoting.
package geo

import (
	"context"
	"math"
)

const earthRadiusMiles = 3958.8

type Coordinate struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Provider is the external geocoding and routing capability. A nil coordinate
// or distance with a nil error means the lookup found nothing.
type Provider interface {
	Geocode(ctx context.Context, query string) (*Coordinate, error)
	DrivingDistanceMiles(ctx context.Context, origin, destination Coordinate) (*float64, error)
}

// Haversine returns the great-circle distance in miles.
func Haversine(lat1, lng1, lat2, lng2 float64) float64 {
	rad := func(d float64) float64 { return d * math.Pi / 180.0 }
	dlat := rad(lat2 - lat1)
	dlng := rad(lng2 - lng1)
	a := math.Sin(dlat/2)*math.Sin(dlat/2) + math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dlng/2)*math.Sin(dlng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusMiles * c
}
