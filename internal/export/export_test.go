package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendormap/internal/model"
)

func sampleSnapshot() model.ViewSnapshot {
	return model.ViewSnapshot{
		Criterion: "Total Orders",
		Vendors: []model.VendorView{
			{
				VendorRecord: model.VendorRecord{
					Code: "V001", Name: "Cafe Naderi",
					Lat: 35.6892, Lng: 51.3890, HasLocation: true,
					TotalOrders: 1250, AvgDailyOrders: 7.5,
				},
				IsOverlapping: true,
				OverlapCount:  1,
				Districts:     []string{"Central"},
			},
			{
				VendorRecord: model.VendorRecord{Code: "V002", Name: "Tableless"},
			},
		},
		Districts: map[string][]string{"Central": {"V001"}},
		Hidden:    []string{},
	}
}

func sampleDistricts() []model.DistrictPolygon {
	return []model.DistrictPolygon{{
		Name: "Central",
		Ring: orb.Ring{{51.35, 35.65}, {51.45, 35.65}, {51.45, 35.75}, {51.35, 35.75}, {51.35, 35.65}},
	}}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteCSV(&buf, sampleSnapshot()))

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3) // header + two vendors

	assert.Equal(t, "vendor_code", records[0][0])
	assert.Equal(t, "V001", records[1][0])
	assert.Equal(t, "35.689200", records[1][2])
	assert.Equal(t, "1250", records[1][4])
	assert.Equal(t, "true", records[1][9])
	assert.Equal(t, "Central", records[1][11])
}

func TestWriteJSONRoundTrips(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, sampleSnapshot()))

	var decoded model.ViewSnapshot
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "Total Orders", decoded.Criterion)
	require.Len(t, decoded.Vendors, 2)
	assert.Equal(t, "V001", decoded.Vendors[0].Code)
}

func TestWriteGeoJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteGeoJSON(&buf, sampleSnapshot(), sampleDistricts()))

	var fc struct {
		Type     string `json:"type"`
		Features []struct {
			Geometry struct {
				Type string `json:"type"`
			} `json:"geometry"`
			Properties map[string]any `json:"properties"`
		} `json:"features"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &fc))

	assert.Equal(t, "FeatureCollection", fc.Type)
	// One point (the located vendor only) plus one district polygon.
	require.Len(t, fc.Features, 2)
	assert.Equal(t, "Point", fc.Features[0].Geometry.Type)
	assert.Equal(t, "V001", fc.Features[0].Properties["vendor_code"])
	assert.Equal(t, "Polygon", fc.Features[1].Geometry.Type)
	assert.Equal(t, "Central", fc.Features[1].Properties["name"])
}

func TestWriteDispatch(t *testing.T) {
	for _, format := range Formats {
		var buf bytes.Buffer
		require.NoError(t, Write(&buf, format, sampleSnapshot(), sampleDistricts()), format)
		assert.NotZero(t, buf.Len(), format)
	}

	err := Write(&bytes.Buffer{}, "xlsx", sampleSnapshot(), nil)
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "unsupported"))
}
