package stats

import (
	"errors"
	"math"
	"testing"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

func TestDerivedRatioReplacesZeroOnCopy(t *testing.T) {
	ds := loadMeals(t, []string{"diet_type", "calories", "prep_time"}, [][]string{{"A", "120", "0"}, {"B", "150", "30"}})
	got, err := DerivedRatio(ds, dataset.ColCalories, dataset.ColPrepTime, ReplaceZeroWith(1))
	if err != nil {
		t.Fatalf("derived ratio: %v", err)
	}
	if got[0] != 120 || got[1] != 5 {
		t.Fatalf("expected [120 5], got %v", got)
	}
	if ds.Value(0, dataset.ColPrepTime) != 0 {
		t.Fatalf("prep_time must stay 0, got %v", ds.Value(0, dataset.ColPrepTime))
	}
}

func TestDerivedRatioDefaultPolicyYieldsNaN(t *testing.T) {
	ds := loadMeals(t, []string{"diet_type", "calories", "prep_time"}, [][]string{{"A", "120", "0"}, {"B", "150", "30"}})
	got, err := DerivedRatio(ds, dataset.ColCalories, dataset.ColPrepTime, ZeroPolicy{})
	if err != nil {
		t.Fatalf("derived ratio: %v", err)
	}
	if !math.IsNaN(got[0]) || got[1] != 5 {
		t.Fatalf("expected [NaN 5], got %v", got)
	}
}

func TestDerivedRatioUnknownColumn(t *testing.T) {
	ds := scenario(t)
	var keyErr *dataset.KeyError
	if _, err := DerivedRatio(ds, dataset.ColCalories, "cook_time", CalPerMinPolicy); !errors.As(err, &keyErr) {
		t.Fatalf("expected KeyError, got %v", err)
	}
}

func TestAppendCalPerMin(t *testing.T) {
	ds := scenario(t)
	want := []float64{200, 40, 30, 0}
	for i, w := range want {
		if got := ds.Value(i, dataset.ColCalPerMin); got != w {
			t.Fatalf("row %d: expected %v, got %v", i, w, got)
		}
	}
	if err := AppendCalPerMin(ds); err == nil {
		t.Fatalf("expected error when appending twice")
	}
}
