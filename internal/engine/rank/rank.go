// Package rank orders vendors by a numeric metric.
package rank

import (
	"sort"

	"vendormap/internal/model"
)

// Rank sorts the given vendors by metricKey descending, ties broken by vendor
// code ascending, and numbers them from 1. The ordering is a strict total
// order: re-running on the same input yields identical output. An empty input
// yields an empty (non-nil) slice. Callers validate metricKey against the
// configured criteria before calling; unknown keys rank every vendor at zero.
func Rank(vendors []model.VendorRecord, metricKey string) []model.RankingEntry {
	entries := make([]model.RankingEntry, 0, len(vendors))
	for _, v := range vendors {
		value, _ := v.Metric(metricKey)
		entries = append(entries, model.RankingEntry{
			Code:  v.Code,
			Name:  v.Name,
			Value: value,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Value != entries[j].Value {
			return entries[i].Value > entries[j].Value
		}
		return entries[i].Code < entries[j].Code
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries
}

// Top returns the first n entries of a ranking, or all of them when fewer.
func Top(entries []model.RankingEntry, n int) []model.RankingEntry {
	if n >= len(entries) {
		return entries
	}
	return entries[:n]
}
