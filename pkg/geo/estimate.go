package geo

import "github.com/golang/geo/s2"

const (
	// EarthRadiusKm is the mean radius of Earth in kilometers.
	EarthRadiusKm = 6371.0

	// AverageSpeedKmph is the assumed average urban driving speed, used to
	// estimate travel time when the routing provider is unavailable.
	AverageSpeedKmph = 25.0
)

// Point is a WGS-84 coordinate pair
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// GreatCircleKm returns the great-circle distance between two points in kilometers
func GreatCircleKm(a, b Point) float64 {
	p1 := s2.LatLngFromDegrees(a.Lat, a.Lng)
	p2 := s2.LatLngFromDegrees(b.Lat, b.Lng)
	return p1.Distance(p2).Radians() * EarthRadiusKm
}

// RouteDistanceKm returns the total great-circle length of an ordered route
// in kilometers. Routes with fewer than two points have zero length.
func RouteDistanceKm(route []Point) float64 {
	total := 0.0
	for i := 0; i < len(route)-1; i++ {
		total += GreatCircleKm(route[i], route[i+1])
	}
	return total
}

// EstimateDurationMinutes converts a distance to travel time at AverageSpeedKmph.
// Crow-flies distance at an assumed speed, not a routed estimate.
func EstimateDurationMinutes(distanceKm float64) float64 {
	return distanceKm / AverageSpeedKmph * 60.0
}
