package filter

import (
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

func scenario(t *testing.T) *dataset.Dataset {
	t.Helper()
	opts := dataset.DefaultOptions()
	opts.Required = []string{dataset.ColDiet, dataset.ColCalories, dataset.ColPrepTime}
	ds, err := dataset.Normalize(
		[]string{"Diet", "Calories", "prep_time"},
		[][]string{
			{"Vegan", "200", "0"},
			{"Vegan", "400", "10"},
			{"Keto", "600", "20"},
			{"Keto", "0", "0"},
		},
		opts,
	)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return ds
}

func TestApplyKeepsSelectedRowsInOrder(t *testing.T) {
	ds := scenario(t)
	v := Apply(ds, NewSelection("Vegan"))
	if v.Len() != 2 {
		t.Fatalf("expected 2 rows, got %d", v.Len())
	}
	if v.Value(0, dataset.ColCalories) != 200 || v.Value(1, dataset.ColCalories) != 400 {
		t.Fatalf("row order not preserved: %+v", v.Records())
	}
}

func TestApplyAllIsIdentity(t *testing.T) {
	ds := scenario(t)
	v := Apply(ds, All(ds))
	if v.Len() != ds.Len() {
		t.Fatalf("expected %d rows, got %d", ds.Len(), v.Len())
	}
	for i, idx := range v.Indices() {
		if idx != i {
			t.Fatalf("expected identity indices, got %v", v.Indices())
		}
	}
}

func TestApplyEmptySelection(t *testing.T) {
	ds := scenario(t)
	if v := Apply(ds, NewSelection()); v.Len() != 0 {
		t.Fatalf("expected empty view, got %d rows", v.Len())
	}
}

func TestApplyIgnoresUnknownValues(t *testing.T) {
	ds := scenario(t)
	v := Apply(ds, NewSelection("Keto", "Carnivore"))
	if v.Len() != 2 {
		t.Fatalf("expected 2 Keto rows, got %d", v.Len())
	}
	if got := Observed(ds, NewSelection("Keto", "Carnivore")); strings.Join(got, ",") != "Keto" {
		t.Fatalf("unexpected observed values: %v", got)
	}
}

func TestApplyCountMatchesMembership(t *testing.T) {
	ds := scenario(t)
	for _, sel := range []Selection{NewSelection("Vegan"), NewSelection("Keto"), NewSelection("Vegan", "Keto")} {
		want := 0
		for _, rec := range ds.Records() {
			if sel.Contains(rec.DietType) {
				want++
			}
		}
		if got := Apply(ds, sel).Len(); got != want {
			t.Fatalf("selection %s: expected %d rows, got %d", sel, want, got)
		}
	}
}

func TestApplyDoesNotTouchDataset(t *testing.T) {
	ds := scenario(t)
	_ = Apply(ds, NewSelection("Keto"))
	if ds.Len() != 4 {
		t.Fatalf("dataset changed size: %d", ds.Len())
	}
}

func TestMatch(t *testing.T) {
	ds := scenario(t)
	v, err := Match(ds, dataset.ColPrepTime, "0")
	if err != nil {
		t.Fatalf("match: %v", err)
	}
	if v.Len() != 2 {
		t.Fatalf("expected 2 rows with zero prep time, got %d", v.Len())
	}
	_, err = Match(ds, "vegan", "1")
	var keyErr *dataset.KeyError
	if !errors.As(err, &keyErr) {
		t.Fatalf("expected KeyError, got %v", err)
	}
}

func TestHealthy(t *testing.T) {
	opts := dataset.DefaultOptions()
	opts.Required = []string{dataset.ColDiet, dataset.ColHealthy}
	ds, err := dataset.Normalize(
		[]string{"Diet", "is_healthy"},
		[][]string{{"Vegan", "1"}, {"Keto", "0"}, {"Vegan", "1"}},
		opts,
	)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if _, err := Healthy(scenario(t), true); err == nil {
		t.Fatalf("expected KeyError without an is_healthy column")
	}
	yes, err := Healthy(ds, true)
	if err != nil {
		t.Fatalf("healthy: %v", err)
	}
	no, err := Healthy(ds, false)
	if err != nil {
		t.Fatalf("not healthy: %v", err)
	}
	if yes.Len()+no.Len() != ds.Len() {
		t.Fatalf("expected views to partition %d rows, got %d and %d", ds.Len(), yes.Len(), no.Len())
	}
	if yes.Len() != 2 {
		t.Fatalf("expected 2 healthy rows, got %d", yes.Len())
	}
	for i := 0; i < yes.Len(); i++ {
		if !yes.Record(i).IsHealthy {
			t.Fatalf("row %d of healthy view is not healthy", i)
		}
	}
}

func TestSelectionToggleAndRestrict(t *testing.T) {
	sel := NewSelection("Vegan", " ", "Keto", "Vegan")
	if sel.Len() != 2 {
		t.Fatalf("expected 2 values, got %v", sel.Values())
	}
	sel = sel.Toggle("Vegan")
	if sel.Contains("Vegan") || !sel.Contains("Keto") {
		t.Fatalf("toggle off failed: %v", sel.Values())
	}
	sel = sel.Toggle("Paleo")
	if !sel.Contains("Paleo") {
		t.Fatalf("toggle on failed: %v", sel.Values())
	}
	restricted := sel.Restrict([]string{"Paleo", "Vegan"})
	if strings.Join(restricted.Values(), ",") != "Paleo" {
		t.Fatalf("unexpected restricted selection: %v", restricted.Values())
	}
	if NewSelection().String() != "none" {
		t.Fatalf("empty selection should render as none")
	}
}
