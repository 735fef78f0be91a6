package geo

import "math"

const (
	earthRadiusM = 6371000.0
	// metersPerDegree is the approximate length of one degree of latitude,
	// also used (cosine-corrected) for longitude spans.
	metersPerDegree = 111000.0
)

// DistanceM returns the great-circle distance between two points in meters.
func DistanceM(lat1, lng1, lat2, lng2 float64) float64 {
	dLat := (lat2 - lat1) * math.Pi / 180.0
	dLng := (lng2 - lng1) * math.Pi / 180.0
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1*math.Pi/180.0)*math.Cos(lat2*math.Pi/180.0)*
			math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusM * c
}

// lensFraction returns the intersection area of two equal circles of radius r
// whose centers are d apart, as a fraction of one circle's area. Callers
// guarantee d < 2r.
func lensFraction(d, r float64) float64 {
	if d <= 0 {
		return 1
	}
	lens := 2*r*r*math.Acos(d/(2*r)) - (d/2)*math.Sqrt(4*r*r-d*d)
	return lens / (math.Pi * r * r)
}
