package stats

import (
	"testing"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

var mealHeader = []string{"Diet", "Calories", "Protein", "Fat", "Carbs", "prep_time", "num_ingredients", "is_healthy", "vegan"}

// scenarioRows holds two Vegan and two Keto meals; Keto includes a zero-calorie, zero-prep row.
var scenarioRows = [][]string{
	{"Vegan", "200", "10", "5", "30", "0", "4", "1", "1"},
	{"Vegan", "400", "20", "15", "50", "10", "6", "1", "1"},
	{"Keto", "600", "40", "45", "5", "20", "8", "0", "0"},
	{"Keto", "0", "0", "0", "0", "0", "2", "0", "0"},
}

func loadMeals(t *testing.T, header []string, rows [][]string) *dataset.Dataset {
	t.Helper()
	opts := dataset.DefaultOptions()
	opts.Required = []string{dataset.ColDiet}
	ds, err := dataset.Normalize(header, rows, opts)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	return ds
}

func scenario(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds := loadMeals(t, mealHeader, scenarioRows)
	if err := AppendCalPerMin(ds); err != nil {
		t.Fatalf("append cal_per_min: %v", err)
	}
	return ds
}
