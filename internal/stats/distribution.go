package stats

import (
	"fmt"
	"math"
	"sort"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

// Crosstab counts rows per pair of labels.
type Crosstab struct {
	RowKey string   `json:"row_key"`
	ColKey string   `json:"col_key"`
	Rows   []string `json:"rows"`
	Cols   []string `json:"cols"`
	Counts [][]int  `json:"counts"`
}

// RowTotal returns the count across all columns of row r.
func (c Crosstab) RowTotal(r int) int {
	total := 0
	for _, n := range c.Counts[r] {
		total += n
	}
	return total
}

// CrossCounts counts rows of t for each rowKey label split by colKey label.
func CrossCounts(t dataset.Table, rowKey, colKey string) (Crosstab, error) {
	rows, err := orderedLevels(t, rowKey)
	if err != nil {
		return Crosstab{}, err
	}
	cols, err := orderedLevels(t, colKey)
	if err != nil {
		return Crosstab{}, err
	}
	rowPos := indexOf(rows)
	colPos := indexOf(cols)
	counts := make([][]int, len(rows))
	for i := range counts {
		counts[i] = make([]int, len(cols))
	}
	for i := 0; i < t.Len(); i++ {
		counts[rowPos[t.Label(i, rowKey)]][colPos[t.Label(i, colKey)]]++
	}
	return Crosstab{RowKey: rowKey, ColKey: colKey, Rows: rows, Cols: cols, Counts: counts}, nil
}

// Box holds five-number summary statistics for one group.
type Box struct {
	Group  string  `json:"group"`
	N      int     `json:"n"`
	Min    float64 `json:"min"`
	Q1     float64 `json:"q1"`
	Median float64 `json:"median"`
	Q3     float64 `json:"q3"`
	Max    float64 `json:"max"`
	Mean   float64 `json:"mean"`
}

// Describe computes box statistics of valueKey per groupKey label.
// Quartiles use linear interpolation between closest ranks.
func Describe(t dataset.Table, groupKey, valueKey string) ([]Box, error) {
	if err := dataset.RequireNumeric(t, valueKey); err != nil {
		return nil, err
	}
	groups, err := orderedLevels(t, groupKey)
	if err != nil {
		return nil, err
	}
	pos := indexOf(groups)
	values := make([][]float64, len(groups))
	for i := 0; i < t.Len(); i++ {
		p := pos[t.Label(i, groupKey)]
		values[p] = append(values[p], t.Value(i, valueKey))
	}
	out := make([]Box, 0, len(groups))
	for i, g := range groups {
		vals := values[i]
		sort.Float64s(vals)
		var sum float64
		for _, v := range vals {
			sum += v
		}
		out = append(out, Box{
			Group:  g,
			N:      len(vals),
			Min:    vals[0],
			Q1:     Quantile(vals, 0.25),
			Median: Quantile(vals, 0.5),
			Q3:     Quantile(vals, 0.75),
			Max:    vals[len(vals)-1],
			Mean:   sum / float64(len(vals)),
		})
	}
	return out, nil
}

// Quantile returns the q-th quantile of sorted values using linear interpolation.
func Quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	frac := pos - float64(lo)
	return sorted[lo]*(1-frac) + sorted[hi]*frac
}

// Histogram is a set of equal-width bins, one count series per color label.
type Histogram struct {
	Key    string       `json:"key"`
	Edges  []float64    `json:"edges"`
	Series []HistSeries `json:"series"`
}

// HistSeries counts rows per bin for one label.
type HistSeries struct {
	Name   string `json:"name"`
	Counts []int  `json:"counts"`
}

// Totals sums counts across series per bin.
func (h Histogram) Totals() []int {
	if len(h.Edges) < 2 {
		return nil
	}
	out := make([]int, len(h.Edges)-1)
	for _, s := range h.Series {
		for i, n := range s.Counts {
			out[i] += n
		}
	}
	return out
}

// BuildHistogram bins key into the given number of equal-width bins between its minimum
// and maximum. When colorKey is set, each of its labels gets its own series.
func BuildHistogram(t dataset.Table, key string, bins int, colorKey string) (Histogram, error) {
	if bins < 1 {
		return Histogram{}, fmt.Errorf("histogram needs at least one bin, got %d", bins)
	}
	if err := dataset.RequireNumeric(t, key); err != nil {
		return Histogram{}, err
	}
	names := []string{"all"}
	if colorKey != "" {
		var err error
		if names, err = orderedLevels(t, colorKey); err != nil {
			return Histogram{}, err
		}
	}
	if t.Len() == 0 {
		return Histogram{}, ErrNoData
	}

	lo, hi := math.Inf(1), math.Inf(-1)
	for i := 0; i < t.Len(); i++ {
		v := t.Value(i, key)
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi == lo {
		hi = lo + 1
	}
	width := (hi - lo) / float64(bins)
	edges := make([]float64, bins+1)
	for i := range edges {
		edges[i] = lo + float64(i)*width
	}
	edges[bins] = hi

	series := make([]HistSeries, len(names))
	pos := indexOf(names)
	for i, name := range names {
		series[i] = HistSeries{Name: name, Counts: make([]int, bins)}
	}
	for i := 0; i < t.Len(); i++ {
		b := int((t.Value(i, key) - lo) / width)
		if b >= bins {
			b = bins - 1
		}
		s := 0
		if colorKey != "" {
			s = pos[t.Label(i, colorKey)]
		}
		series[s].Counts[b]++
	}
	return Histogram{Key: key, Edges: edges, Series: series}, nil
}

// PointSeries is one colored group of a scatter plot.
type PointSeries struct {
	Name string    `json:"name"`
	X    []float64 `json:"x"`
	Y    []float64 `json:"y"`
}

// Points collects (xKey, yKey) pairs, split into one series per colorKey label.
func Points(t dataset.Table, xKey, yKey, colorKey string) ([]PointSeries, error) {
	if err := dataset.RequireNumeric(t, xKey, yKey); err != nil {
		return nil, err
	}
	names := []string{"all"}
	if colorKey != "" {
		var err error
		if names, err = orderedLevels(t, colorKey); err != nil {
			return nil, err
		}
	}
	pos := indexOf(names)
	out := make([]PointSeries, len(names))
	for i, name := range names {
		out[i].Name = name
	}
	for i := 0; i < t.Len(); i++ {
		s := 0
		if colorKey != "" {
			s = pos[t.Label(i, colorKey)]
		}
		out[s].X = append(out[s].X, t.Value(i, xKey))
		out[s].Y = append(out[s].Y, t.Value(i, yKey))
	}
	return out, nil
}

func indexOf(items []string) map[string]int {
	out := make(map[string]int, len(items))
	for i, item := range items {
		out[item] = i
	}
	return out
}
