// Package geo holds the great-circle math shared by the position calculator
// and the movement threshold check in the scheduler.
package geo

import "math"

const earthRadiusMeters = 6371000.0

// HaversineMeters returns the great-circle distance in meters between two
// WGS84 coordinates.
func HaversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := radians(lat2 - lat1)
	dLng := radians(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(radians(lat1))*math.Cos(radians(lat2))*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return earthRadiusMeters * c
}

// Lerp linearly interpolates between two coordinates by fraction t in [0,1].
func Lerp(lat1, lng1, lat2, lng2, t float64) (lat, lng float64) {
	return lat1 + (lat2-lat1)*t, lng1 + (lng2-lng1)*t
}

// ValidLatLng reports whether the coordinates are finite and within WGS84 range.
func ValidLatLng(lat, lng float64) bool {
	if math.IsNaN(lat) || math.IsInf(lat, 0) || math.IsNaN(lng) || math.IsInf(lng, 0) {
		return false
	}
	return lat >= -90 && lat <= 90 && lng >= -180 && lng <= 180
}

func radians(d float64) float64 {
	return d * math.Pi / 180
}
