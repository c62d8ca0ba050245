package kernel

import "math"

// DistanceKm returns the haversine great-circle distance in kilometres between
// two points given in decimal degrees. It is symmetric, returns 0 for identical
// points and has no error conditions.
func DistanceKm(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLng := toRadians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// NormalizeProximity maps a distance onto [0, 1]: 1 at the pickup point,
// falling linearly to 0 at radiusKm and staying 0 beyond it. A non-positive
// radius yields 0.
func NormalizeProximity(distanceKm, radiusKm float64) float64 {
	if radiusKm <= 0 {
		return 0
	}
	return math.Max(0, 1-distanceKm/radiusKm)
}

func toRadians(deg float64) float64 {
	return deg * math.Pi / 180
}
