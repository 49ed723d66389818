// Package trends computes the aggregated skill statistics: per-cell rows,
// All rollups, momentum against the previous period, and the mode/seniority
// pivot view.
package trends

import (
	"fmt"
	"sort"

	"jobpulse/trends-service/internal/model"
)

// Momentum thresholds for trend classification. Fixed, not configurable.
const (
	risingThreshold  = 0.20
	fallingThreshold = -0.20
)

const descRankBase = 100_000_000

// DescRank encodes a count as a zero-padded string that sorts ascending
// where the count sorts descending, so range scans return biggest-first.
func DescRank(count int) string {
	return fmt.Sprintf("%09d", descRankBase-count)
}

// CountMap is an ordered count accumulator. Iteration and top-N truncation
// order is descending count with ties broken by first insertion, so repeated
// runs over the same input produce identical output.
type CountMap struct {
	counts map[string]int
	order  []string
}

func NewCountMap() *CountMap {
	return &CountMap{counts: make(map[string]int)}
}

// Add increments key by n.
func (m *CountMap) Add(key string, n int) {
	if key == "" || n == 0 {
		return
	}
	if _, seen := m.counts[key]; !seen {
		m.order = append(m.order, key)
	}
	m.counts[key] += n
}

// Merge folds another count map into this one.
func (m *CountMap) Merge(other *CountMap) {
	if other == nil {
		return
	}
	for _, k := range other.order {
		m.Add(k, other.counts[k])
	}
}

// Len reports the number of distinct keys.
func (m *CountMap) Len() int { return len(m.order) }

// TopN returns up to n entries sorted by descending count, ties broken by
// first-seen key.
func (m *CountMap) TopN(n int) []model.CountEntry {
	if len(m.order) == 0 {
		return nil
	}
	firstSeen := make(map[string]int, len(m.order))
	for i, k := range m.order {
		firstSeen[k] = i
	}
	keys := append([]string(nil), m.order...)
	sort.SliceStable(keys, func(i, j int) bool {
		ci, cj := m.counts[keys[i]], m.counts[keys[j]]
		if ci != cj {
			return ci > cj
		}
		return firstSeen[keys[i]] < firstSeen[keys[j]]
	})
	if n > 0 && len(keys) > n {
		keys = keys[:n]
	}
	out := make([]model.CountEntry, len(keys))
	for i, k := range keys {
		out[i] = model.CountEntry{Key: k, Count: m.counts[k]}
	}
	return out
}

// WeightedValue pairs an observation with its weight, usually a sub-row's
// statistic weighted by that sub-row's job count.
type WeightedValue struct {
	Value  float64
	Weight int
}

// WeightedMedian sorts pairs by value and returns the first value at which
// the cumulative weight crosses half of the total weight. Returns false when
// no pair carries positive weight.
func WeightedMedian(pairs []WeightedValue) (float64, bool) {
	total := 0
	for _, p := range pairs {
		if p.Weight > 0 {
			total += p.Weight
		}
	}
	if total == 0 {
		return 0, false
	}
	sorted := append([]WeightedValue(nil), pairs...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Value < sorted[j].Value })

	half := float64(total) / 2
	cum := 0
	for _, p := range sorted {
		if p.Weight <= 0 {
			continue
		}
		cum += p.Weight
		if float64(cum) > half {
			return p.Value, true
		}
	}
	return sorted[len(sorted)-1].Value, true
}

// ChangePct returns (current-previous)/previous, or false when the previous
// value is zero or missing.
func ChangePct(current, previous float64) (float64, bool) {
	if previous == 0 {
		return 0, false
	}
	return (current - previous) / previous, true
}

// SignalFor classifies momentum. An undefined delta reads as steady.
func SignalFor(deltaPct *float64) model.TrendSignal {
	if deltaPct == nil {
		return model.SignalSteady
	}
	switch {
	case *deltaPct >= risingThreshold:
		return model.SignalRising
	case *deltaPct <= fallingThreshold:
		return model.SignalFalling
	default:
		return model.SignalSteady
	}
}

func ptr(v float64) *float64 { return &v }
