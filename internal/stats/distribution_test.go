package stats

import (
	"errors"
	"testing"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

func TestQuantileLinear(t *testing.T) {
	vals := []float64{1, 2, 3, 4}
	cases := map[float64]float64{0: 1, 0.25: 1.75, 0.5: 2.5, 0.75: 3.25, 1: 4}
	for q, want := range cases {
		if got := Quantile(vals, q); got != want {
			t.Fatalf("q=%v: expected %v, got %v", q, want, got)
		}
	}
}

func TestDescribeByHealth(t *testing.T) {
	ds := scenario(t)
	boxes, err := Describe(ds, dataset.ColHealthy, dataset.ColCalories)
	if err != nil {
		t.Fatalf("describe: %v", err)
	}
	if len(boxes) != 2 || boxes[0].Group != "0" || boxes[1].Group != "1" {
		t.Fatalf("expected groups 0 then 1, got %+v", boxes)
	}
	keto := boxes[0]
	if keto.N != 2 || keto.Min != 0 || keto.Max != 600 || keto.Median != 300 || keto.Q1 != 150 {
		t.Fatalf("unexpected box: %+v", keto)
	}
}

func TestCrossCounts(t *testing.T) {
	ds := scenario(t)
	ct, err := CrossCounts(ds, dataset.ColDiet, dataset.ColHealthy)
	if err != nil {
		t.Fatalf("cross counts: %v", err)
	}
	if ct.Rows[0] != "Vegan" || ct.Cols[0] != "0" || ct.Cols[1] != "1" {
		t.Fatalf("unexpected axes: %v %v", ct.Rows, ct.Cols)
	}
	if ct.Counts[0][1] != 2 || ct.Counts[0][0] != 0 || ct.Counts[1][0] != 2 {
		t.Fatalf("unexpected counts: %v", ct.Counts)
	}
	if ct.RowTotal(1) != 2 {
		t.Fatalf("unexpected row total: %d", ct.RowTotal(1))
	}
}

func TestBuildHistogramEdges(t *testing.T) {
	ds := scenario(t)
	h, err := BuildHistogram(ds, dataset.ColIngredients, 3, dataset.ColHealthy)
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	if len(h.Edges) != 4 || h.Edges[0] != 2 || h.Edges[3] != 8 {
		t.Fatalf("unexpected edges: %v", h.Edges)
	}
	totals := h.Totals()
	if totals[0] != 1 || totals[1] != 1 || totals[2] != 2 {
		t.Fatalf("max value belongs in the last bin, got %v", totals)
	}
	if h.Series[0].Name != "0" || h.Series[0].Counts[2] != 1 {
		t.Fatalf("unexpected series split: %+v", h.Series)
	}
}

func TestBuildHistogramConstantColumn(t *testing.T) {
	ds := loadMeals(t, []string{"diet_type", "num_ingredients"}, [][]string{{"A", "5"}, {"A", "5"}})
	h, err := BuildHistogram(ds, dataset.ColIngredients, 4, "")
	if err != nil {
		t.Fatalf("histogram: %v", err)
	}
	if h.Edges[0] != 5 || h.Edges[4] != 6 || h.Totals()[0] != 2 {
		t.Fatalf("unexpected histogram: %+v", h)
	}
	if _, err := BuildHistogram(ds, dataset.ColIngredients, 0, ""); err == nil {
		t.Fatalf("expected error for zero bins")
	}
}

func TestPointsSplitByColor(t *testing.T) {
	ds := scenario(t)
	series, err := Points(ds, dataset.ColPrepTime, dataset.ColCalories, dataset.ColHealthy)
	if err != nil {
		t.Fatalf("points: %v", err)
	}
	if len(series) != 2 || len(series[1].X) != 2 || series[1].Y[1] != 400 {
		t.Fatalf("unexpected series: %+v", series)
	}
	var keyErr *dataset.KeyError
	if _, err := Points(ds, dataset.ColDiet, dataset.ColCalories, ""); !errors.As(err, &keyErr) {
		t.Fatalf("expected KeyError, got %v", err)
	}
}
