package geo

import (
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vendormap/internal/model"
)

// A square roughly 11×9 km around central Tehran.
func centralRing() orb.Ring {
	return orb.Ring{
		{51.35, 35.65}, {51.45, 35.65}, {51.45, 35.75}, {51.35, 35.75}, {51.35, 35.65},
	}
}

func TestDistrictHitsCenterInside(t *testing.T) {
	districts := []model.DistrictPolygon{{Name: "Central", Ring: centralRing()}}
	vendors := []model.VendorRecord{located("V001", 35.70, 51.40)}

	hits := DistrictHits(vendors, districts, 3000)
	assert.Equal(t, []string{"V001"}, hits["Central"])
}

func TestDistrictHitsOutsideButWithinRadius(t *testing.T) {
	districts := []model.DistrictPolygon{{Name: "Central", Ring: centralRing()}}
	// ~0.01 degrees (~1.1 km) west of the ring's western edge.
	vendors := []model.VendorRecord{located("V001", 35.70, 51.34)}

	hits := DistrictHits(vendors, districts, 3000)
	assert.Equal(t, []string{"V001"}, hits["Central"])
}

func TestDistrictHitsFarOutside(t *testing.T) {
	districts := []model.DistrictPolygon{{Name: "Central", Ring: centralRing()}}
	// ~9 km west of the western edge, beyond the 3 km radius.
	vendors := []model.VendorRecord{located("V001", 35.70, 51.25)}

	hits := DistrictHits(vendors, districts, 3000)
	assert.Empty(t, hits["Central"])
}

func TestDistrictHitsCenterOnBoundary(t *testing.T) {
	districts := []model.DistrictPolygon{{Name: "Central", Ring: centralRing()}}
	vendors := []model.VendorRecord{located("V001", 35.70, 51.35)} // on the western edge

	hits := DistrictHits(vendors, districts, 3000)
	assert.Equal(t, []string{"V001"}, hits["Central"])
}

func TestDistrictHitsSkipsVendorsWithoutLocation(t *testing.T) {
	districts := []model.DistrictPolygon{{Name: "Central", Ring: centralRing()}}
	vendors := []model.VendorRecord{{Code: "V001", Name: "tableless"}}

	hits := DistrictHits(vendors, districts, 3000)
	assert.Empty(t, hits["Central"])
}

func TestDistrictHitsEveryDistrictPresent(t *testing.T) {
	districts := []model.DistrictPolygon{
		{Name: "Central", Ring: centralRing()},
		{Name: "Empty", Ring: orb.Ring{
			{50.60, 35.05}, {50.65, 35.05}, {50.65, 35.10}, {50.60, 35.10}, {50.60, 35.05},
		}},
	}

	hits := DistrictHits(nil, districts, 3000)
	require.Len(t, hits, 2)
	assert.NotNil(t, hits["Central"])
	assert.NotNil(t, hits["Empty"])
}

func TestDistanceMKnownPair(t *testing.T) {
	// One degree of latitude at constant longitude is ~111.19 km.
	d := DistanceM(35.0, 51.0, 36.0, 51.0)
	assert.InDelta(t, 111195, d, 100)

	assert.Equal(t, 0.0, DistanceM(35.7, 51.4, 35.7, 51.4))
}
