package geo

import "github.com/golang/geo/s2"

// EarthRadiusMiles is the mean Earth radius (6371008.8 m) in statute miles.
const EarthRadiusMiles = 3958.7613

// MilesToKm converts statute miles to kilometres.
func MilesToKm(miles float64) float64 { return miles * 1.609344 }

func toS2(p Point) s2.Point {
	return s2.PointFromLatLng(s2.LatLngFromDegrees(p.Lat, p.Lon))
}

// DistanceMiles is the great-circle distance between two points.
func DistanceMiles(a, b Point) float64 {
	return toS2(a).Distance(toS2(b)).Radians() * EarthRadiusMiles
}

// segmentDistanceMiles is the great-circle distance from x to the closest
// point of the edge ab. Degenerate edges fall back to the vertex distance.
func segmentDistanceMiles(x, a, b s2.Point) float64 {
	if a == b {
		return x.Distance(a).Radians() * EarthRadiusMiles
	}
	return s2.DistanceFromSegment(x, a, b).Radians() * EarthRadiusMiles
}
