// Package store builds the immutable GeoRecord snapshot: vendor attributes
// joined with coordinates, plus validated district polygons. Nothing here
// errors on a bad row; bad rows are dropped and counted in the Report.
package store

import (
	"fmt"
	"sort"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"vendormap/internal/config"
	"vendormap/internal/ingest"
	"vendormap/internal/model"
)

// Report counts what ingestion accepted and what it dropped, per reason.
type Report struct {
	OrderRows   int `json:"order_rows"`
	GeoRows     int `json:"geo_rows"`
	PolygonRows int `json:"polygon_rows"`

	Vendors   int `json:"vendors"`
	Districts int `json:"districts"`

	DroppedJoin    int  `json:"dropped_join"`    // present in only one source
	DroppedBounds  int  `json:"dropped_bounds"`  // coordinates outside the city box
	DroppedMetric  int  `json:"dropped_metric"`  // non-numeric required metric
	DroppedName    int  `json:"dropped_name"`    // no vendor name in either source
	DroppedRing    int  `json:"dropped_ring"`    // malformed polygon ring
	NoLocation     int  `json:"no_location"`     // kept, excluded from geospatial computation
	DuplicateCodes int  `json:"duplicate_codes"` // later occurrences discarded
	Empty          bool `json:"empty"`
}

func (r Report) String() string {
	return fmt.Sprintf("vendors=%d districts=%d dropped: join=%d bounds=%d metric=%d name=%d ring=%d dup=%d no_location=%d",
		r.Vendors, r.Districts, r.DroppedJoin, r.DroppedBounds, r.DroppedMetric,
		r.DroppedName, r.DroppedRing, r.DuplicateCodes, r.NoLocation)
}

// Store is the process-lifetime snapshot of vendors and districts. Read-only
// after Build; safe for concurrent use without locking.
type Store struct {
	vendors   []model.VendorRecord // sorted by code
	byCode    map[string]int
	districts []model.DistrictPolygon
	meanLat   float64
}

// Build joins order rows and geo rows on vendor_code (inner join), validates
// coordinates against bounds, and parses district rings. An empty joined set
// yields a valid empty store with Report.Empty set; deciding whether that is
// fatal is the caller's job.
func Build(orderRows, geoRows, polygonRows []ingest.Row, bounds config.Bounds) (*Store, Report) {
	rep := Report{
		OrderRows:   len(orderRows),
		GeoRows:     len(geoRows),
		PolygonRows: len(polygonRows),
	}

	// Geo duplicates keep the first occurrence, matching the source system.
	geoByCode := make(map[string]ingest.Row, len(geoRows))
	for _, row := range geoRows {
		code := row["vendor_code"]
		if code == "" {
			rep.DroppedJoin++
			continue
		}
		if _, ok := geoByCode[code]; ok {
			rep.DuplicateCodes++
			continue
		}
		geoByCode[code] = row
	}

	s := &Store{byCode: make(map[string]int)}
	seen := make(map[string]bool, len(orderRows))
	matched := make(map[string]bool, len(geoRows))
	var latSum float64
	var located int

	for _, row := range orderRows {
		code := row["vendor_code"]
		if code == "" {
			rep.DroppedJoin++
			continue
		}
		if seen[code] {
			rep.DuplicateCodes++
			continue
		}
		geo, ok := geoByCode[code]
		if !ok {
			rep.DroppedJoin++
			continue
		}
		seen[code] = true
		matched[code] = true

		name := row["vendor_name"]
		if name == "" {
			name = geo["vendor_name"]
		}
		if name == "" {
			rep.DroppedName++
			continue
		}

		rec := model.VendorRecord{Code: code, Name: name}
		if !parseMetrics(&rec, row) {
			rep.DroppedMetric++
			continue
		}

		lat, latErr := strconv.ParseFloat(geo["latitude"], 64)
		lng, lngErr := strconv.ParseFloat(geo["longitude"], 64)
		switch {
		case latErr != nil || lngErr != nil:
			// Malformed coordinates: keep for tabular display and ranking,
			// skip in geospatial computation.
			rep.NoLocation++
		case !bounds.Contains(lat, lng):
			rep.DroppedBounds++
			continue
		default:
			rec.Lat, rec.Lng, rec.HasLocation = lat, lng, true
			latSum += lat
			located++
		}

		s.vendors = append(s.vendors, rec)
	}

	for code := range geoByCode {
		if !matched[code] {
			rep.DroppedJoin++
		}
	}

	sort.Slice(s.vendors, func(i, j int) bool { return s.vendors[i].Code < s.vendors[j].Code })
	for i, v := range s.vendors {
		s.byCode[v.Code] = i
	}
	if located > 0 {
		s.meanLat = latSum / float64(located)
	} else {
		s.meanLat = (bounds.LatMin + bounds.LatMax) / 2
	}

	seenDistricts := make(map[string]bool, len(polygonRows))
	for _, row := range polygonRows {
		name := row["name"]
		if name == "" {
			name = row["Name"]
		}
		ring, ok := parseRing(row)
		if !ok || name == "" || seenDistricts[name] {
			rep.DroppedRing++
			continue
		}
		seenDistricts[name] = true
		s.districts = append(s.districts, model.DistrictPolygon{Name: name, Ring: ring})
	}
	sort.Slice(s.districts, func(i, j int) bool { return s.districts[i].Name < s.districts[j].Name })

	rep.Vendors = len(s.vendors)
	rep.Districts = len(s.districts)
	rep.Empty = len(s.vendors) == 0
	return s, rep
}

// parseMetrics fills the numeric metrics from an order row. Empty cells count
// as zero (the source leaves blanks for inactive vendors); present but
// non-numeric cells reject the row. A missing ratio is derived from the
// organic and non-organic counts.
func parseMetrics(rec *model.VendorRecord, row ingest.Row) bool {
	intField := func(key string) (int, bool) {
		val := row[key]
		if val == "" {
			return 0, true
		}
		// Counts sometimes arrive as "1250.0" from spreadsheet exports.
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return 0, false
		}
		return int(f), true
	}
	floatField := func(key string) (float64, bool) {
		val := row[key]
		if val == "" {
			return 0, true
		}
		f, err := strconv.ParseFloat(val, 64)
		if err != nil || f < 0 {
			return 0, false
		}
		return f, true
	}

	var ok bool
	if rec.TotalOrders, ok = intField(model.MetricTotalOrders); !ok {
		return false
	}
	if rec.OrganicOrders, ok = intField(model.MetricOrganicOrders); !ok {
		return false
	}
	if rec.NonOrganicOrders, ok = intField(model.MetricNonOrganicOrders); !ok {
		return false
	}
	if rec.AvgDailyOrders, ok = floatField(model.MetricAvgDailyOrders); !ok {
		return false
	}
	if row[model.MetricOrganicRatio] != "" {
		if rec.OrganicRatio, ok = floatField(model.MetricOrganicRatio); !ok {
			return false
		}
	} else if rec.NonOrganicOrders > 0 {
		rec.OrganicRatio = float64(rec.OrganicOrders) / float64(rec.NonOrganicOrders)
	}
	return true
}

// parseRing parses the WKT cell of a polygon row into a validated closed ring.
func parseRing(row ingest.Row) (orb.Ring, bool) {
	text := row["WKT"]
	if text == "" {
		text = row["wkt"]
	}
	if text == "" {
		return nil, false
	}

	geom, err := wkt.Unmarshal(text)
	if err != nil {
		return nil, false
	}

	var ring orb.Ring
	switch g := geom.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return nil, false
		}
		ring = g[0]
	case orb.MultiPolygon:
		if len(g) == 0 || len(g[0]) == 0 {
			return nil, false
		}
		ring = g[0][0]
	default:
		return nil, false
	}

	if len(ring) < 4 || !ring.Closed() || selfIntersects(ring) {
		return nil, false
	}
	return ring, true
}

// selfIntersects reports whether any two non-adjacent ring segments cross.
// Rings are small (district outlines), so the quadratic check is fine.
func selfIntersects(ring orb.Ring) bool {
	n := len(ring) - 1 // ring is closed, last point repeats the first
	for i := 0; i < n; i++ {
		for j := i + 2; j < n; j++ {
			// Segment 0 and segment n-1 are adjacent through the closure.
			if i == 0 && j == n-1 {
				continue
			}
			if segmentsCross(ring[i], ring[i+1], ring[j], ring[j+1]) {
				return true
			}
		}
	}
	return false
}

func segmentsCross(p1, p2, q1, q2 orb.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(a, b, p orb.Point) float64 {
	return (b[0]-a[0])*(p[1]-a[1]) - (b[1]-a[1])*(p[0]-a[0])
}

// Vendors returns all records sorted by code. The slice is shared; callers
// must not modify it.
func (s *Store) Vendors() []model.VendorRecord { return s.vendors }

// Vendor looks a record up by code.
func (s *Store) Vendor(code string) (model.VendorRecord, bool) {
	i, ok := s.byCode[code]
	if !ok {
		return model.VendorRecord{}, false
	}
	return s.vendors[i], true
}

// Has reports whether a vendor code exists in the store.
func (s *Store) Has(code string) bool {
	_, ok := s.byCode[code]
	return ok
}

// Districts returns all district polygons sorted by name.
func (s *Store) Districts() []model.DistrictPolygon { return s.districts }

// Len is the vendor count.
func (s *Store) Len() int { return len(s.vendors) }

// MeanLat is the mean latitude of located vendors, used for grid cell sizing.
func (s *Store) MeanLat() float64 { return s.meanLat }
