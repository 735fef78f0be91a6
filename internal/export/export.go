// Package export serializes view snapshots to CSV, JSON, and GeoJSON.
package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"

	"vendormap/internal/model"
)

// Formats lists the supported export format names.
var Formats = []string{"csv", "json", "geojson"}

// Write serializes the snapshot in the named format.
func Write(w io.Writer, format string, snap model.ViewSnapshot, districts []model.DistrictPolygon) error {
	switch format {
	case "csv":
		return WriteCSV(w, snap)
	case "json":
		return WriteJSON(w, snap)
	case "geojson":
		return WriteGeoJSON(w, snap, districts)
	}
	return fmt.Errorf("unsupported format: %s (supported: %s)", format, strings.Join(Formats, ", "))
}

// WriteCSV writes the visible vendors as CSV rows.
func WriteCSV(w io.Writer, snap model.ViewSnapshot) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	cw.Write([]string{
		"vendor_code", "vendor_name", "latitude", "longitude",
		"total_order_count", "organic_order_count", "non_organic_order_count",
		"organic_to_non_organic_ratio", "avg_daily_orders",
		"is_overlapping", "overlap_count", "districts",
	})

	for _, v := range snap.Vendors {
		cw.Write([]string{
			v.Code,
			v.Name,
			fmt.Sprintf("%.6f", v.Lat),
			fmt.Sprintf("%.6f", v.Lng),
			strconv.Itoa(v.TotalOrders),
			strconv.Itoa(v.OrganicOrders),
			strconv.Itoa(v.NonOrganicOrders),
			fmt.Sprintf("%.4f", v.OrganicRatio),
			fmt.Sprintf("%.2f", v.AvgDailyOrders),
			strconv.FormatBool(v.IsOverlapping),
			strconv.Itoa(v.OverlapCount),
			strings.Join(v.Districts, ";"),
		})
	}
	cw.Flush()
	return cw.Error()
}

// WriteJSON writes the whole snapshot as indented JSON.
func WriteJSON(w io.Writer, snap model.ViewSnapshot) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// WriteGeoJSON writes a FeatureCollection of vendor points and district
// polygons. Vendors without a location are omitted.
func WriteGeoJSON(w io.Writer, snap model.ViewSnapshot, districts []model.DistrictPolygon) error {
	fc := geojson.NewFeatureCollection()

	for _, v := range snap.Vendors {
		if !v.HasLocation {
			continue
		}
		f := geojson.NewFeature(v.Point())
		f.Properties = geojson.Properties{
			"vendor_code":       v.Code,
			"vendor_name":       v.Name,
			"total_order_count": v.TotalOrders,
			"is_overlapping":    v.IsOverlapping,
			"overlap_count":     v.OverlapCount,
			"districts":         v.Districts,
		}
		fc.Append(f)
	}

	hits := snap.Districts
	for _, d := range districts {
		f := geojson.NewFeature(orb.Polygon{d.Ring})
		f.Properties = geojson.Properties{
			"name":    d.Name,
			"vendors": hits[d.Name],
		}
		fc.Append(f)
	}

	data, err := json.Marshal(fc)
	if err != nil {
		return fmt.Errorf("marshaling feature collection: %w", err)
	}
	_, err = w.Write(data)
	return err
}
