package geo

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGreatCircleKm(t *testing.T) {
	// One degree of longitude on the equator is about 111.2 km
	a := Point{Lat: 0, Lng: 0}
	b := Point{Lat: 0, Lng: 1}
	assert.InDelta(t, 111.2, GreatCircleKm(a, b), 0.5)

	// Colombo Fort to Galle Face is roughly 1.5 km
	fort := Point{Lat: 6.9344, Lng: 79.8428}
	galleFace := Point{Lat: 6.9271, Lng: 79.8425}
	assert.InDelta(t, 0.8, GreatCircleKm(fort, galleFace), 0.3)

	assert.Zero(t, GreatCircleKm(a, a))
}

func TestRouteDistanceKm(t *testing.T) {
	route := []Point{
		{Lat: 0, Lng: 0},
		{Lat: 0, Lng: 1},
		{Lat: 0, Lng: 2},
	}

	total := RouteDistanceKm(route)
	assert.InDelta(t, 222.4, total, 1.0)

	// Degenerate routes have zero length
	assert.Zero(t, RouteDistanceKm(nil))
	assert.Zero(t, RouteDistanceKm(route[:1]))
}

func TestEstimateDurationMinutes(t *testing.T) {
	// 25 km at 25 km/h is exactly an hour
	assert.InDelta(t, 60.0, EstimateDurationMinutes(25.0), 0.001)
	assert.Zero(t, EstimateDurationMinutes(0))
}
