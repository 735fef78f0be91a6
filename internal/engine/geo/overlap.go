// Package geo implements the geospatial computations of the coverage engine:
// pairwise service-area overlap and vendor-district intersection.
package geo

import (
	"math"
	"sort"

	"vendormap/internal/model"
)

// Overlaps computes the set of overlapping vendor pairs among the given
// vendors. Two service areas overlap iff the center distance is strictly less
// than 2×radiusM. Vendors without a location never overlap anything.
//
// When more than maxExact vendors carry a location the exact quadratic scan is
// replaced by a spatial-grid approximation (see gridOverlaps); the returned
// degraded flag reports which mode ran. Output is sorted by code pair in both
// modes, so identical input always yields identical output.
func Overlaps(vendors []model.VendorRecord, radiusM float64, maxExact int, meanLat float64) ([]model.OverlapEdge, bool) {
	located := make([]model.VendorRecord, 0, len(vendors))
	for _, v := range vendors {
		if v.HasLocation {
			located = append(located, v)
		}
	}

	var edges []model.OverlapEdge
	degraded := len(located) > maxExact
	if degraded {
		edges = gridOverlaps(located, radiusM, meanLat)
	} else {
		edges = exactOverlaps(located, radiusM)
	}

	sort.Slice(edges, func(i, j int) bool {
		if edges[i].CodeA != edges[j].CodeA {
			return edges[i].CodeA < edges[j].CodeA
		}
		return edges[i].CodeB < edges[j].CodeB
	})
	return edges, degraded
}

func exactOverlaps(vendors []model.VendorRecord, radiusM float64) []model.OverlapEdge {
	threshold := 2 * radiusM
	var edges []model.OverlapEdge
	for i := 0; i < len(vendors); i++ {
		for j := i + 1; j < len(vendors); j++ {
			if e, ok := edgeBetween(vendors[i], vendors[j], threshold, radiusM); ok {
				edges = append(edges, e)
			}
		}
	}
	return edges
}

// gridOverlaps partitions vendors into cells of roughly 2×radius on a side
// and only tests pairs in the same or adjacent cells. Pairs straddling a cell
// boundary at nearly the threshold distance can be missed; that small
// false-negative risk is the documented price of sub-quadratic cost.
func gridOverlaps(vendors []model.VendorRecord, radiusM, meanLat float64) []model.OverlapEdge {
	threshold := 2 * radiusM
	cellLat := threshold / metersPerDegree
	cellLng := threshold / (metersPerDegree * math.Cos(meanLat*math.Pi/180.0))

	type cell struct{ row, col int }
	cells := make(map[cell][]int)
	for i, v := range vendors {
		c := cell{int(math.Floor(v.Lat / cellLat)), int(math.Floor(v.Lng / cellLng))}
		cells[c] = append(cells[c], i)
	}

	var edges []model.OverlapEdge
	for c, members := range cells {
		for dr := -1; dr <= 1; dr++ {
			for dc := -1; dc <= 1; dc++ {
				neighbor := cell{c.row + dr, c.col + dc}
				others, ok := cells[neighbor]
				if !ok {
					continue
				}
				for _, i := range members {
					for _, j := range others {
						// Index ordering keeps each pair tested once across
						// the cell/neighbor sweep.
						if j <= i {
							continue
						}
						if e, ok := edgeBetween(vendors[i], vendors[j], threshold, radiusM); ok {
							edges = append(edges, e)
						}
					}
				}
			}
		}
	}
	return edges
}

func edgeBetween(a, b model.VendorRecord, threshold, radiusM float64) (model.OverlapEdge, bool) {
	d := DistanceM(a.Lat, a.Lng, b.Lat, b.Lng)
	if d >= threshold {
		return model.OverlapEdge{}, false
	}
	codeA, codeB := model.EdgeKey(a.Code, b.Code)
	return model.OverlapEdge{
		CodeA:        codeA,
		CodeB:        codeB,
		DistanceM:    d,
		AreaFraction: lensFraction(d, radiusM),
	}, true
}
