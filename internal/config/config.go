// Package config holds every tunable of the vendor coverage engine and its
// serving layer. Values come from an optional vendormap.yaml plus VENDORMAP_*
// environment overrides; defaults describe the Tehran deployment.
package config

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Bounds is the city bounding box used to validate vendor coordinates.
type Bounds struct {
	LatMin float64 `mapstructure:"lat_min"`
	LatMax float64 `mapstructure:"lat_max"`
	LngMin float64 `mapstructure:"lon_min"`
	LngMax float64 `mapstructure:"lon_max"`
}

// Contains reports whether the point lies inside the box (edges inclusive).
func (b Bounds) Contains(lat, lng float64) bool {
	return lat >= b.LatMin && lat <= b.LatMax && lng >= b.LngMin && lng <= b.LngMax
}

// Server holds HTTP server tunables.
type Server struct {
	Port            int           `mapstructure:"port"`
	Mode            string        `mapstructure:"mode"` // "debug" | "release"
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// Config is the full application configuration.
type Config struct {
	// ServiceRadiusM is the vendor service-area radius in meters.
	ServiceRadiusM float64 `mapstructure:"service_radius_m"`
	// MaxVendorsForOverlap is the visible-vendor count above which the
	// overlap engine switches to the approximate grid mode.
	MaxVendorsForOverlap int `mapstructure:"max_vendors_for_overlap"`
	// Criteria maps ranking display names to metric keys.
	Criteria map[string]string `mapstructure:"ranking_criteria"`
	// TopN is the length of the per-criterion ranking summaries.
	TopN int `mapstructure:"top_n"`

	CityBounds Bounds `mapstructure:"city_bounds"`
	Server     Server `mapstructure:"server"`

	LogLevel string `mapstructure:"log_level"`
}

// Default returns the built-in configuration (Tehran, 3km service radius).
func Default() *Config {
	return &Config{
		ServiceRadiusM:       3000,
		MaxVendorsForOverlap: 500,
		TopN:                 10,
		Criteria: map[string]string{
			"Total Orders":              "total_order_count",
			"Organic Orders":            "organic_order_count",
			"Non-Organic Orders":        "non_organic_order_count",
			"Organic/Non-Organic Ratio": "organic_to_non_organic_ratio",
			"Avg Daily Orders":          "avg_daily_orders",
		},
		CityBounds: Bounds{LatMin: 35.0, LatMax: 36.0, LngMin: 50.5, LngMax: 52.0},
		Server: Server{
			Port:            5000,
			Mode:            "release",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    30 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		LogLevel: "info",
	}
}

// Load reads configuration from path (optional, "" = defaults only) and the
// environment, then validates.
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("VENDORMAP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := Default()
	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := v.Unmarshal(cfg); err != nil {
			return nil, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects configurations the engine cannot run with. Errors name the
// offending value so the caller can correct and retry.
func (c *Config) Validate() error {
	if c.ServiceRadiusM <= 0 {
		return fmt.Errorf("service_radius_m must be positive, got %g", c.ServiceRadiusM)
	}
	if c.MaxVendorsForOverlap <= 0 {
		return fmt.Errorf("max_vendors_for_overlap must be positive, got %d", c.MaxVendorsForOverlap)
	}
	if len(c.Criteria) == 0 {
		return fmt.Errorf("ranking_criteria must not be empty")
	}
	for name, key := range c.Criteria {
		if key == "" {
			return fmt.Errorf("ranking criterion %q has an empty metric key", name)
		}
	}
	if c.CityBounds.LatMin >= c.CityBounds.LatMax || c.CityBounds.LngMin >= c.CityBounds.LngMax {
		return fmt.Errorf("city_bounds are inverted: [%g,%g] x [%g,%g]",
			c.CityBounds.LatMin, c.CityBounds.LatMax, c.CityBounds.LngMin, c.CityBounds.LngMax)
	}
	if c.TopN <= 0 {
		return fmt.Errorf("top_n must be positive, got %d", c.TopN)
	}
	return nil
}

// CriterionNames returns display names in deterministic (sorted) order.
func (c *Config) CriterionNames() []string {
	names := make([]string, 0, len(c.Criteria))
	for name := range c.Criteria {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
