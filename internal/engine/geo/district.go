package geo

import (
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"

	"vendormap/internal/model"
)

// DistrictHits maps each district name to the codes of vendors whose service
// area intersects the district. A service area intersects a polygon iff the
// vendor center is inside the ring (boundary included) or any ring segment
// passes within radiusM of the center. Vendor codes per district come out in
// store order (ascending), and every district appears in the result even when
// no vendor hits it.
func DistrictHits(vendors []model.VendorRecord, districts []model.DistrictPolygon, radiusM float64) map[string][]string {
	hits := make(map[string][]string, len(districts))
	for _, d := range districts {
		hits[d.Name] = []string{}
	}
	for _, v := range vendors {
		if !v.HasLocation {
			continue
		}
		center := v.Point()
		for _, d := range districts {
			if planar.RingContains(d.Ring, center) || ringWithin(d.Ring, center, v.Lat, radiusM) {
				hits[d.Name] = append(hits[d.Name], v.Code)
			}
		}
	}
	return hits
}

// ringWithin reports whether any segment of the ring comes within radiusM
// meters of the center point.
func ringWithin(ring orb.Ring, center orb.Point, centerLat, radiusM float64) bool {
	for i := 0; i+1 < len(ring); i++ {
		if segmentDistanceM(center, ring[i], ring[i+1], centerLat) <= radiusM {
			return true
		}
	}
	return false
}

// segmentDistanceM returns the distance in meters from point p to segment ab.
// Coordinates are projected onto a local plane around the point's latitude;
// at city scale the error is negligible.
func segmentDistanceM(p, a, b orb.Point, lat float64) float64 {
	cos := math.Cos(lat * math.Pi / 180.0)
	ax := (a[0] - p[0]) * metersPerDegree * cos
	ay := (a[1] - p[1]) * metersPerDegree
	bx := (b[0] - p[0]) * metersPerDegree * cos
	by := (b[1] - p[1]) * metersPerDegree

	dx, dy := bx-ax, by-ay
	lenSq := dx*dx + dy*dy
	t := 0.0
	if lenSq > 0 {
		t = -(ax*dx + ay*dy) / lenSq
		t = math.Max(0, math.Min(1, t))
	}
	cx, cy := ax+t*dx, ay+t*dy
	return math.Hypot(cx, cy)
}
