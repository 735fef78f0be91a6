package model

import "github.com/paulmach/orb"

// Metric keys understood by the ranking engine. These match the column names
// of the vendor order source.
const (
	MetricTotalOrders      = "total_order_count"
	MetricOrganicOrders    = "organic_order_count"
	MetricNonOrganicOrders = "non_organic_order_count"
	MetricOrganicRatio     = "organic_to_non_organic_ratio"
	MetricAvgDailyOrders   = "avg_daily_orders"
)

// VendorRecord is one vendor after the ingestion join. Immutable once built.
type VendorRecord struct {
	Code string `json:"vendor_code"`
	Name string `json:"vendor_name"`

	Lat float64 `json:"latitude"`
	Lng float64 `json:"longitude"`
	// HasLocation is false when the source coordinates were missing or
	// unparseable. Such vendors stay in the store for tabular display and
	// ranking but are skipped by all geospatial computation.
	HasLocation bool `json:"has_location"`

	TotalOrders      int     `json:"total_order_count"`
	OrganicOrders    int     `json:"organic_order_count"`
	NonOrganicOrders int     `json:"non_organic_order_count"`
	OrganicRatio     float64 `json:"organic_to_non_organic_ratio"`
	AvgDailyOrders   float64 `json:"avg_daily_orders"`
}

// Metric returns the numeric value for a metric key. The second return is
// false for unknown keys.
func (v VendorRecord) Metric(key string) (float64, bool) {
	switch key {
	case MetricTotalOrders:
		return float64(v.TotalOrders), true
	case MetricOrganicOrders:
		return float64(v.OrganicOrders), true
	case MetricNonOrganicOrders:
		return float64(v.NonOrganicOrders), true
	case MetricOrganicRatio:
		return v.OrganicRatio, true
	case MetricAvgDailyOrders:
		return v.AvgDailyOrders, true
	}
	return 0, false
}

// Point returns the vendor location as an orb point ([lng, lat] order).
func (v VendorRecord) Point() orb.Point {
	return orb.Point{v.Lng, v.Lat}
}

// DistrictPolygon is a named marketing area. The ring is closed
// (first vertex == last vertex) and validated at ingestion.
type DistrictPolygon struct {
	Name string   `json:"name"`
	Ring orb.Ring `json:"-"`
}
