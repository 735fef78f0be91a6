package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"

	"vendormap/internal/config"
	"vendormap/internal/tui"
)

func runView(args []string) error {
	var src sourceFlags
	var configPath string

	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.StringVar(&src.dbPath, "db", "", "Path to dataset .db")
	fs.StringVar(&src.orders, "orders", "", "Vendor order metrics CSV")
	fs.StringVar(&src.geo, "geo", "", "Vendor coordinates CSV")
	fs.StringVar(&src.districts, "districts", "", "District polygons CSV")
	fs.StringVar(&configPath, "config", "", "Config file (optional)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vendormap view [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExample:\n")
		fmt.Fprintf(os.Stderr, "  vendormap view -db ./datasets/tehran.db\n")
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

	// The TUI owns the terminal; keep the engine quiet.
	eng, report, err := buildEngine(src, cfg, zap.NewNop())
	if err != nil {
		return err
	}
	if report.Empty {
		return fmt.Errorf("no vendors survived ingestion (%s)", report)
	}

	return tui.Run(eng, cfg)
}
