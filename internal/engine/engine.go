// Package engine is the facade over the coverage core: it owns the immutable
// GeoRecord store, the visibility state, and the configuration, and exposes
// the two operations the serving layer calls — ApplyFilter and GetView.
package engine

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync/atomic"

	"go.uber.org/zap"

	"vendormap/internal/config"
	"vendormap/internal/engine/geo"
	"vendormap/internal/engine/rank"
	"vendormap/internal/engine/store"
	"vendormap/internal/engine/view"
	"vendormap/internal/engine/visibility"
	"vendormap/internal/model"
)

// ErrInvalidCriterion marks a ranking request for a criterion that is not in
// the configured set.
var ErrInvalidCriterion = errors.New("invalid ranking criterion")

// AppliedFilterResult reports what an ApplyFilter call did.
type AppliedFilterResult struct {
	// Accepted are the hidden codes now in effect.
	Accepted []string `json:"accepted"`
	// UnknownCodes were requested but do not exist in the store. They are
	// ignored, never an error.
	UnknownCodes []string `json:"unknown_codes"`
}

// Engine computes consistent view snapshots over one dataset.
type Engine struct {
	store *store.Store
	cfg   *config.Config
	vis   *visibility.State
	log   *zap.Logger

	degradeLogged atomic.Bool
}

// New wires an engine around a built store. The config must already be
// validated.
func New(s *store.Store, cfg *config.Config, log *zap.Logger) *Engine {
	if log == nil {
		log = zap.NewNop()
	}
	return &Engine{store: s, cfg: cfg, vis: visibility.New(), log: log}
}

// Store exposes the underlying immutable record store.
func (e *Engine) Store() *store.Store { return e.store }

// Criteria returns the configured criterion display names, sorted.
func (e *Engine) Criteria() []string { return e.cfg.CriterionNames() }

// DefaultCriterion picks the criterion used when a caller does not name one.
func (e *Engine) DefaultCriterion() string {
	if _, ok := e.cfg.Criteria["Total Orders"]; ok {
		return "Total Orders"
	}
	return e.cfg.CriterionNames()[0]
}

// ApplyFilter replaces the hidden vendor set. Unknown codes are accepted and
// reported back, not applied and not an error. The swap is atomic: any GetView
// started after this call observes exactly the new set.
func (e *Engine) ApplyFilter(codes []string) AppliedFilterResult {
	known := make([]string, 0, len(codes))
	var unknown []string
	for _, c := range codes {
		if c == "" {
			continue
		}
		if e.store.Has(c) {
			known = append(known, c)
		} else {
			unknown = append(unknown, c)
		}
	}
	sort.Strings(unknown)

	snap := e.vis.Apply(known)
	if len(unknown) > 0 {
		e.log.Warn("filter referenced unknown vendor codes",
			zap.Strings("unknown", unknown))
	}
	return AppliedFilterResult{Accepted: snap.Codes(), UnknownCodes: unknown}
}

// HiddenCodes returns the hidden set currently in effect.
func (e *Engine) HiddenCodes() []string {
	return e.vis.Current().Codes()
}

// GetView computes a fresh snapshot for the given criterion display name
// (empty = default). Every derived number is computed against the visibility
// snapshot read once at the start of the call.
func (e *Engine) GetView(criterion string) (model.ViewSnapshot, error) {
	if criterion == "" {
		criterion = e.DefaultCriterion()
	}
	_, ok := e.cfg.Criteria[criterion]
	if !ok {
		return model.ViewSnapshot{}, fmt.Errorf("%w: %q (allowed: %s)",
			ErrInvalidCriterion, criterion, strings.Join(e.cfg.CriterionNames(), ", "))
	}

	snap := e.vis.Current()
	visible := make([]model.VendorRecord, 0, e.store.Len())
	for _, v := range e.store.Vendors() {
		if !snap.Hidden(v.Code) {
			visible = append(visible, v)
		}
	}

	edges, degraded := geo.Overlaps(visible, e.cfg.ServiceRadiusM, e.cfg.MaxVendorsForOverlap, e.store.MeanLat())
	if degraded && !e.degradeLogged.Swap(true) {
		e.log.Info("overlap computation degraded to grid approximation",
			zap.Int("visible_vendors", len(visible)),
			zap.Int("max_exact", e.cfg.MaxVendorsForOverlap))
	}
	hits := geo.DistrictHits(visible, e.store.Districts(), e.cfg.ServiceRadiusM)

	topN := make(map[string][]model.RankingEntry, len(e.cfg.Criteria))
	var rankings []model.RankingEntry
	for _, name := range e.cfg.CriterionNames() {
		entries := rank.Rank(visible, e.cfg.Criteria[name])
		topN[name] = rank.Top(entries, e.cfg.TopN)
		if name == criterion {
			rankings = entries
		}
	}

	return view.Assemble(view.Input{
		Criterion:    criterion,
		TotalVendors: e.store.Len(),
		Visible:      visible,
		Hidden:       snap.Codes(),
		Edges:        edges,
		DistrictHits: hits,
		Rankings:     rankings,
		TopN:         topN,
		Degraded:     degraded,
	}), nil
}
