package view

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendormap/internal/model"
)

func TestAssembleDerivesOverlapCounts(t *testing.T) {
	snap := Assemble(Input{
		Criterion:    "Total Orders",
		TotalVendors: 3,
		Visible: []model.VendorRecord{
			{Code: "V001", HasLocation: true, Lat: 35.70, Lng: 51.40},
			{Code: "V002", HasLocation: true, Lat: 35.71, Lng: 51.41},
			{Code: "V003", HasLocation: true, Lat: 35.72, Lng: 51.42},
		},
		Hidden: []string{},
		Edges: []model.OverlapEdge{
			{CodeA: "V001", CodeB: "V002"},
			{CodeA: "V001", CodeB: "V003"},
		},
		DistrictHits: map[string][]string{"Central": {"V001"}},
	})

	require.Len(t, snap.Vendors, 3)
	byCode := map[string]model.VendorView{}
	for _, v := range snap.Vendors {
		byCode[v.Code] = v
	}

	assert.Equal(t, 2, byCode["V001"].OverlapCount)
	assert.Equal(t, 1, byCode["V002"].OverlapCount)
	assert.True(t, byCode["V003"].IsOverlapping)
	assert.Equal(t, []string{"Central"}, byCode["V001"].Districts)
	assert.Empty(t, byCode["V002"].Districts)

	assert.Equal(t, 3, snap.Stats.OverlappingVendors)
	assert.Equal(t, 2, snap.Stats.OverlapPairs)
	assert.InDelta(t, 100.0, snap.Stats.OverlapRate, 1e-9)
}

func TestAssembleStatisticsSkipUnlocatedForGeometry(t *testing.T) {
	snap := Assemble(Input{
		TotalVendors: 2,
		Visible: []model.VendorRecord{
			{Code: "V001", HasLocation: true, Lat: 35.70, Lng: 51.40, TotalOrders: 100},
			{Code: "V002", TotalOrders: 300}, // no coordinates
		},
	})

	st := snap.Stats
	assert.Equal(t, 400, st.TotalOrders)
	assert.Equal(t, 300, st.MaxOrders)
	assert.InDelta(t, 200.0, st.AvgOrders, 1e-9)
	// Geometry uses only the located vendor.
	assert.InDelta(t, 35.70, st.CenterLat, 1e-9)
	assert.Equal(t, 0.0, st.LatSpan)
	assert.Equal(t, 0.0, st.VendorDensity, "a single point spans no area")
}

func TestAssembleEmptyVisibleSet(t *testing.T) {
	snap := Assemble(Input{TotalVendors: 5, Hidden: []string{"V001", "V002", "V003", "V004", "V005"}})

	assert.Empty(t, snap.Vendors)
	assert.Equal(t, 5, snap.Stats.TotalVendors)
	assert.Equal(t, 0, snap.Stats.ActiveVendors)
	assert.Equal(t, 5, snap.Stats.HiddenVendors)
	assert.Equal(t, 0.0, snap.Stats.OverlapRate)
	assert.False(t, snap.GeneratedAt.IsZero())
}
