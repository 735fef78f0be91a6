package main

import (
	"fmt"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"vendormap/internal/config"
	"vendormap/internal/engine"
	"vendormap/internal/engine/store"
	"vendormap/internal/ingest"
	"vendormap/internal/storage"
)

// sourceFlags are the shared dataset/CSV input flags of serve, view, export.
type sourceFlags struct {
	dbPath    string
	orders    string
	geo       string
	districts string
}

func (f *sourceFlags) validate() error {
	if f.dbPath != "" {
		return nil
	}
	if f.orders == "" || f.geo == "" || f.districts == "" {
		return fmt.Errorf("either -db or all of -orders/-geo/-districts are required")
	}
	return nil
}

// loadRows reads the three raw sources from a dataset .db or from CSV files.
func loadRows(f sourceFlags) (orderRows, geoRows, districtRows []ingest.Row, err error) {
	if f.dbPath != "" {
		ds, err := storage.Open(f.dbPath)
		if err != nil {
			return nil, nil, nil, fmt.Errorf("opening dataset: %w", err)
		}
		defer ds.Close()
		return ds.LoadRows()
	}

	if orderRows, err = ingest.ReadFile(f.orders); err != nil {
		return nil, nil, nil, err
	}
	if geoRows, err = ingest.ReadFile(f.geo); err != nil {
		return nil, nil, nil, err
	}
	if districtRows, err = ingest.ReadFile(f.districts); err != nil {
		return nil, nil, nil, err
	}
	return orderRows, geoRows, districtRows, nil
}

// buildEngine loads the sources, builds the record store, and wires the
// engine. The ingestion report is returned for the caller to print or log.
func buildEngine(f sourceFlags, cfg *config.Config, log *zap.Logger) (*engine.Engine, store.Report, error) {
	orderRows, geoRows, districtRows, err := loadRows(f)
	if err != nil {
		return nil, store.Report{}, err
	}
	s, report := store.Build(orderRows, geoRows, districtRows, cfg.CityBounds)
	return engine.New(s, cfg, log), report, nil
}

// newLogger builds the zap logger for a subcommand. Mode "debug" gets the
// human-readable development encoder.
func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, fmt.Errorf("parsing log_level %q: %w", cfg.LogLevel, err)
	}

	zc := zap.NewProductionConfig()
	if cfg.Server.Mode == "debug" {
		zc = zap.NewDevelopmentConfig()
	}
	zc.Level = zap.NewAtomicLevelAt(level)
	logger, err := zc.Build()
	if err != nil {
		return nil, fmt.Errorf("building logger: %w", err)
	}
	return logger, nil
}
