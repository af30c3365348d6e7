// Package stats contains the aggregations behind the dashboard panels and their text rendering.
package stats

import (
	"errors"
	"math"
	"sort"
	"strconv"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

// ErrNoData marks an aggregation over zero rows. It is a warning, not a failure.
var ErrNoData = errors.New("no data")

// Mean is one group of a GroupMean result. A group without rows has N == 0 and a NaN value.
type Mean struct {
	Group string
	Value float64
	N     int
}

// Missing reports whether the group had no rows.
func (m Mean) Missing() bool { return m.N == 0 }

// Count is one entry of a ValueCounts result.
type Count struct {
	Key string `json:"key"`
	N   int    `json:"n"`
}

// GroupMean averages valueKey per distinct groupKey label. When levels are given the result
// has exactly those groups in that order, and rows with other labels are ignored; otherwise
// groups follow first appearance in t.
func GroupMean(t dataset.Table, groupKey, valueKey string, levels ...string) ([]Mean, error) {
	if err := dataset.RequireColumns(t, groupKey); err != nil {
		return nil, err
	}
	if err := dataset.RequireNumeric(t, valueKey); err != nil {
		return nil, err
	}
	if len(levels) == 0 {
		var err error
		if levels, err = dataset.Levels(t, groupKey); err != nil {
			return nil, err
		}
	}
	pos := make(map[string]int, len(levels))
	out := make([]Mean, 0, len(levels))
	for _, level := range levels {
		if _, ok := pos[level]; ok {
			continue
		}
		pos[level] = len(out)
		out = append(out, Mean{Group: level})
	}
	sums := make([]float64, len(out))
	for i := 0; i < t.Len(); i++ {
		p, ok := pos[t.Label(i, groupKey)]
		if !ok {
			continue
		}
		sums[p] += t.Value(i, valueKey)
		out[p].N++
	}
	for i := range out {
		if out[i].N == 0 {
			out[i].Value = math.NaN()
			continue
		}
		out[i].Value = sums[i] / float64(out[i].N)
	}
	return out, nil
}

// ValueCounts counts rows per label of key, by descending count. Ties keep first appearance.
func ValueCounts(t dataset.Table, key string) ([]Count, error) {
	if err := dataset.RequireColumns(t, key); err != nil {
		return nil, err
	}
	pos := map[string]int{}
	var out []Count
	for i := 0; i < t.Len(); i++ {
		label := t.Label(i, key)
		p, ok := pos[label]
		if !ok {
			p = len(out)
			pos[label] = p
			out = append(out, Count{Key: label})
		}
		out[p].N++
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].N > out[j].N
	})
	return out, nil
}

// Shares converts counts to fractions of their total.
func Shares(counts []Count) []float64 {
	total := 0
	for _, c := range counts {
		total += c.N
	}
	out := make([]float64, len(counts))
	if total == 0 {
		return out
	}
	for i, c := range counts {
		out[i] = float64(c.N) / float64(total)
	}
	return out
}

// Cards are the headline numbers shown above the tabs.
type Cards struct {
	Meals        int
	MeanCalories float64
	MeanPrepTime float64
	HealthyShare float64
}

// SummaryCards computes headline numbers over t. Means are NaN when t is empty or the
// column is absent.
func SummaryCards(t dataset.Table) Cards {
	cards := Cards{
		Meals:        t.Len(),
		MeanCalories: columnMean(t, dataset.ColCalories),
		MeanPrepTime: columnMean(t, dataset.ColPrepTime),
		HealthyShare: columnMean(t, dataset.ColHealthy),
	}
	return cards
}

func columnMean(t dataset.Table, key string) float64 {
	if t.Len() == 0 || dataset.RequireNumeric(t, key) != nil {
		return math.NaN()
	}
	var sum float64
	for i := 0; i < t.Len(); i++ {
		sum += t.Value(i, key)
	}
	return sum / float64(t.Len())
}

// orderedLevels returns labels in first-appearance order for categories and in numeric
// order for number and flag columns.
func orderedLevels(t dataset.Table, key string) ([]string, error) {
	levels, err := dataset.Levels(t, key)
	if err != nil {
		return nil, err
	}
	if kind, _ := t.Kind(key); kind == dataset.KindCategory {
		return levels, nil
	}
	sort.SliceStable(levels, func(i, j int) bool {
		a, aerr := strconv.ParseFloat(levels[i], 64)
		b, berr := strconv.ParseFloat(levels[j], 64)
		if aerr != nil || berr != nil {
			return levels[i] < levels[j]
		}
		return a < b
	})
	return levels, nil
}
