package model

import "time"

// OverlapEdge records that two vendors' service areas intersect. Codes are
// stored in ascending order so (a,b) and (b,a) are the same edge.
type OverlapEdge struct {
	CodeA string `json:"vendor_a"`
	CodeB string `json:"vendor_b"`
	// DistanceM is the great-circle distance between the two centers.
	DistanceM float64 `json:"distance_m"`
	// AreaFraction is the lens intersection area divided by one disk's area,
	// in (0, 1].
	AreaFraction float64 `json:"area_fraction"`
}

// EdgeKey returns the canonical (ascending) code pair for an edge.
func EdgeKey(a, b string) (string, string) {
	if b < a {
		return b, a
	}
	return a, b
}

// RankingEntry is one row of a criterion ranking.
type RankingEntry struct {
	Rank  int     `json:"rank"`
	Code  string  `json:"vendor_code"`
	Name  string  `json:"vendor_name"`
	Value float64 `json:"value"`
}

// VendorView is a vendor plus its derived per-snapshot attributes.
type VendorView struct {
	VendorRecord
	IsOverlapping bool     `json:"is_overlapping"`
	OverlapCount  int      `json:"overlap_count"`
	Districts     []string `json:"districts"`
}

// Statistics are the aggregate numbers for one visibility snapshot.
type Statistics struct {
	TotalVendors       int     `json:"total_vendors"`
	ActiveVendors      int     `json:"active_vendors"`
	HiddenVendors      int     `json:"hidden_vendors"`
	OverlappingVendors int     `json:"overlapping_vendors"`
	OverlapPairs       int     `json:"overlap_pairs"`
	OverlapRate        float64 `json:"overlap_rate"` // percent of visible vendors
	AvgOrders          float64 `json:"avg_orders"`
	MaxOrders          int     `json:"max_orders"`
	TotalOrders        int     `json:"total_orders"`
	VendorDensity      float64 `json:"vendor_density"` // vendors per km² of span box
	CenterLat          float64 `json:"lat_center"`
	CenterLng          float64 `json:"lon_center"`
	LatSpan            float64 `json:"lat_span"`
	LngSpan            float64 `json:"lon_span"`
}

// ViewSnapshot is the single renderable artifact handed to the serving layer.
// Every derived number in it was computed against the same hidden set.
type ViewSnapshot struct {
	Criterion   string    `json:"criterion"`
	GeneratedAt time.Time `json:"generated_at"`

	Vendors   []VendorView              `json:"vendors"`
	Edges     []OverlapEdge             `json:"edges"`
	Districts map[string][]string       `json:"districts"` // district name → visible vendor codes
	Rankings  []RankingEntry            `json:"rankings"`  // active criterion
	TopN      map[string][]RankingEntry `json:"top_n"`     // per criterion display name

	Stats  Statistics `json:"statistics"`
	Hidden []string   `json:"hidden"`
	// Degraded is true when the overlap engine used the approximate grid
	// mode instead of exact pairwise comparison.
	Degraded bool `json:"degraded"`
}
