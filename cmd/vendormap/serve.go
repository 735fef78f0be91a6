package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"vendormap/internal/config"
	"vendormap/internal/server"
)

func runServe(args []string) error {
	var src sourceFlags
	var configPath string
	var port int

	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	fs.StringVar(&src.dbPath, "db", "", "Path to dataset .db (alternative to CSV flags)")
	fs.StringVar(&src.orders, "orders", "", "Vendor order metrics CSV")
	fs.StringVar(&src.geo, "geo", "", "Vendor coordinates CSV")
	fs.StringVar(&src.districts, "districts", "", "District polygons CSV (name + WKT)")
	fs.StringVar(&configPath, "config", "", "Config file (optional, defaults apply)")
	fs.IntVar(&port, "port", 0, "Listen port (overrides config)")

	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: vendormap serve [flags]\n\nFlags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  vendormap serve -db ./datasets/tehran.db\n")
		fmt.Fprintf(os.Stderr, "  vendormap serve -orders orders.csv -geo geo.csv -districts polygons.csv -port 8080\n")
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
	if port != 0 {
		cfg.Server.Port = port
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return err
	}
	defer logger.Sync()

	eng, report, err := buildEngine(src, cfg, logger)
	if err != nil {
		return err
	}
	logger.Info("dataset loaded", zap.String("report", report.String()))
	if report.Empty {
		return fmt.Errorf("no vendors survived ingestion (%s)", report)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		logger.Info("shutting down")
		cancel()
	}()

	return server.New(eng, cfg, logger).Run(ctx)
}
