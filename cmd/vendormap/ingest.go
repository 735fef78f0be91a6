package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"vendormap/internal/ingest"
	"vendormap/internal/storage"
)

func runIngest(args []string) error {
	var orders, geo, districts, outputDir, name string

	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	fs.StringVar(&orders, "orders", "", "Vendor order metrics CSV (required)")
	fs.StringVar(&geo, "geo", "", "Vendor coordinates CSV (required)")
	fs.StringVar(&districts, "districts", "", "District polygons CSV (required)")
	fs.StringVar(&outputDir, "output", ".", "Output directory for the dataset")
	fs.StringVar(&name, "name", "", "Dataset name (default: timestamped)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vendormap ingest [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  vendormap ingest -orders orders.csv -geo geo.csv -districts polygons.csv -output ./datasets\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if orders == "" || geo == "" || districts == "" {
		return fmt.Errorf("-orders, -geo and -districts are required")
	}

	orderRows, err := ingest.ReadFile(orders)
	if err != nil {
		return err
	}
	geoRows, err := ingest.ReadFile(geo)
	if err != nil {
		return err
	}
	districtRows, err := ingest.ReadFile(districts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if name == "" {
		name = fmt.Sprintf("vendormap_%s", time.Now().Format("20060102_150405"))
	}
	dbPath := filepath.Join(outputDir, name+".db")

	ds, err := storage.Open(dbPath)
	if err != nil {
		return err
	}
	defer ds.Close()

	nOrders, err := ds.InsertOrderRows(orderRows)
	if err != nil {
		return fmt.Errorf("storing order rows: %w", err)
	}
	nGeo, err := ds.InsertGeoRows(geoRows)
	if err != nil {
		return fmt.Errorf("storing geo rows: %w", err)
	}
	nDistricts, err := ds.InsertDistrictRows(districtRows)
	if err != nil {
		return fmt.Errorf("storing district rows: %w", err)
	}

	fmt.Fprintf(os.Stderr, "Dataset: %s\n", dbPath)
	fmt.Fprintf(os.Stderr, "  Orders:    %d read, %d stored\n", len(orderRows), nOrders)
	fmt.Fprintf(os.Stderr, "  Geo:       %d read, %d stored\n", len(geoRows), nGeo)
	fmt.Fprintf(os.Stderr, "  Districts: %d read, %d stored\n", len(districtRows), nDistricts)
	return nil
}
