// utils/geo.go
package utils

import (
	"math"
)

// EarthRadiusMeters is the mean Earth radius used for great-circle distances.
const EarthRadiusMeters = 6371000.0

// CollectionRadiusMeters is how close a collector must be to the reported
// location for a GPS match. Fixed system policy, not user-configurable.
const CollectionRadiusMeters = 100.0

// HaversineDistance returns the great-circle surface distance in meters
// between two coordinates given in degrees. NaN inputs propagate NaN.
func HaversineDistance(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusMeters * c
}

// WithinRadius reports whether a distance passes the collection proximity
// policy. The boundary distance itself passes.
func WithinRadius(distance float64) bool {
	return distance <= CollectionRadiusMeters
}
