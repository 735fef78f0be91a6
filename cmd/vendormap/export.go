package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"vendormap/internal/config"
	"vendormap/internal/export"
)

func runExport(args []string) error {
	var src sourceFlags
	var configPath, outputPath, format, criterion string

	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.StringVar(&src.dbPath, "db", "", "Path to dataset .db")
	fs.StringVar(&src.orders, "orders", "", "Vendor order metrics CSV")
	fs.StringVar(&src.geo, "geo", "", "Vendor coordinates CSV")
	fs.StringVar(&src.districts, "districts", "", "District polygons CSV")
	fs.StringVar(&configPath, "config", "", "Config file (optional)")
	fs.StringVar(&outputPath, "output", "", "Output file (default: next to the dataset)")
	fs.StringVar(&format, "format", "csv", "Export format: csv, json, geojson")
	fs.StringVar(&criterion, "criterion", "", "Ranking criterion (default: Total Orders)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vendormap export [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vendormap export -db ./datasets/tehran.db\n")
		fmt.Fprintf(os.Stderr, "  vendormap export -db tehran.db -format geojson -output coverage.geojson\n")
	}

	if err := fs.Parse(args); err != nil {
		return err
	}
	if err := src.validate(); err != nil {
		return err
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	eng, report, err := buildEngine(src, cfg, zap.NewNop())
	if err != nil {
		return err
	}
	if report.Empty {
		return fmt.Errorf("no vendors survived ingestion (%s)", report)
	}

	snap, err := eng.GetView(criterion)
	if err != nil {
		return err
	}

	if outputPath == "" {
		base := "vendormap"
		if src.dbPath != "" {
			dir := filepath.Dir(src.dbPath)
			base = filepath.Join(dir, strings.TrimSuffix(filepath.Base(src.dbPath), ".db"))
		}
		outputPath = base + "." + format
	}

	f, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	if err := export.Write(f, format, snap, eng.Store().Districts()); err != nil {
		return err
	}

	fmt.Fprintf(os.Stderr, "Exported %d vendors to %s (%s)\n", len(snap.Vendors), outputPath, format)
	return nil
}
