// Package geo evaluates the geofence around a session's location.
package geo

import (
	"math"

	"github.com/campusware/rollcall/internal/domain"
)

// earthRadiusMeters is the mean spherical earth radius. The haversine
// approximation is accurate well below the tens-of-meters scale of a
// geofence radius; no ellipsoidal correction is needed.
const earthRadiusMeters = 6371000.0

// DistanceMeters returns the great-circle distance between two
// coordinates using the haversine formulation.
func DistanceMeters(lat1, lng1, lat2, lng2 float64) float64 {
	phi1 := lat1 * math.Pi / 180
	phi2 := lat2 * math.Pi / 180
	dPhi := (lat2 - lat1) * math.Pi / 180
	dLambda := (lng2 - lng1) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Decide maps a distance to an attendance status. The boundary is
// inclusive: standing exactly on the radius counts as Present.
func Decide(distanceMeters, radiusMeters float64) domain.AttendanceStatus {
	if distanceMeters <= radiusMeters {
		return domain.StatusPresent
	}
	return domain.StatusRejected
}
