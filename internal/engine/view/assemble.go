// Package view composes store, overlap, ranking, and visibility output into
// one immutable snapshot for the rendering layer.
package view

import (
	"time"

	"vendormap/internal/model"
)

// Input carries everything Assemble needs. All slices and maps must have been
// computed against the same visibility snapshot.
type Input struct {
	Criterion    string
	TotalVendors int
	Visible      []model.VendorRecord
	Hidden       []string
	Edges        []model.OverlapEdge
	DistrictHits map[string][]string
	Rankings     []model.RankingEntry
	TopN         map[string][]model.RankingEntry
	Degraded     bool
}

// Assemble builds the snapshot. It derives per-vendor overlap counts and
// district membership and computes the aggregate statistics block.
func Assemble(in Input) model.ViewSnapshot {
	overlapCount := make(map[string]int)
	for _, e := range in.Edges {
		overlapCount[e.CodeA]++
		overlapCount[e.CodeB]++
	}

	memberships := make(map[string][]string)
	for district, codes := range in.DistrictHits {
		for _, code := range codes {
			memberships[code] = append(memberships[code], district)
		}
	}

	vendors := make([]model.VendorView, 0, len(in.Visible))
	for _, v := range in.Visible {
		vendors = append(vendors, model.VendorView{
			VendorRecord:  v,
			IsOverlapping: overlapCount[v.Code] > 0,
			OverlapCount:  overlapCount[v.Code],
			Districts:     memberships[v.Code],
		})
	}

	return model.ViewSnapshot{
		Criterion:   in.Criterion,
		GeneratedAt: time.Now().UTC(),
		Vendors:     vendors,
		Edges:       in.Edges,
		Districts:   in.DistrictHits,
		Rankings:    in.Rankings,
		TopN:        in.TopN,
		Stats:       statistics(in, len(overlapCount)),
		Hidden:      in.Hidden,
		Degraded:    in.Degraded,
	}
}

func statistics(in Input, overlapping int) model.Statistics {
	st := model.Statistics{
		TotalVendors:       in.TotalVendors,
		ActiveVendors:      len(in.Visible),
		HiddenVendors:      len(in.Hidden),
		OverlappingVendors: overlapping,
		OverlapPairs:       len(in.Edges),
	}
	if st.ActiveVendors > 0 {
		st.OverlapRate = float64(overlapping) / float64(st.ActiveVendors) * 100
	}

	var latMin, latMax, lngMin, lngMax, latSum, lngSum float64
	located := 0
	for _, v := range in.Visible {
		st.TotalOrders += v.TotalOrders
		if v.TotalOrders > st.MaxOrders {
			st.MaxOrders = v.TotalOrders
		}
		if !v.HasLocation {
			continue
		}
		if located == 0 {
			latMin, latMax, lngMin, lngMax = v.Lat, v.Lat, v.Lng, v.Lng
		} else {
			latMin = min(latMin, v.Lat)
			latMax = max(latMax, v.Lat)
			lngMin = min(lngMin, v.Lng)
			lngMax = max(lngMax, v.Lng)
		}
		latSum += v.Lat
		lngSum += v.Lng
		located++
	}
	if st.ActiveVendors > 0 {
		st.AvgOrders = float64(st.TotalOrders) / float64(st.ActiveVendors)
	}
	if located > 0 {
		st.CenterLat = latSum / float64(located)
		st.CenterLng = lngSum / float64(located)
		st.LatSpan = latMax - latMin
		st.LngSpan = lngMax - lngMin
		// Rough span-box area in km², matching the source system's density.
		areaKm2 := st.LatSpan * st.LngSpan * 111 * 111
		if areaKm2 > 0 {
			st.VendorDensity = float64(located) / areaKm2
		}
	}
	return st
}
