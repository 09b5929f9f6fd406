package utils

import (
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// WithinRadiusKm reports whether two GPS coordinates lie within the given
// great-circle distance of each other.
func WithinRadiusKm(lat1, lng1, lat2, lng2, radiusKm float64) bool {
	a := orb.Point{lng1, lat1}
	b := orb.Point{lng2, lat2}
	return geo.Distance(a, b) <= radiusKm*1000
}
