package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	st, err := Open(filepath.Join(t.TempDir(), "nested", "mealboard.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		_ = st.Close()
	})
	return st
}

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	opts := dataset.DefaultOptions()
	opts.Required = []string{dataset.ColDiet}
	ds, err := dataset.Normalize(
		[]string{"Diet", "Calories", "prep_time", "num_ingredients", "is_healthy"},
		[][]string{
			{"Vegan", "200", "0", "4", "1"},
			{"Keto", "600", "20", "8", "0"},
			{"Vegan", "400.5", "10", "6", "1"},
		},
		opts,
	)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	ds.SetSource("meals.csv")
	return ds
}

func TestImportAndLoadDataset(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	src := sampleDataset(t)

	if _, err := st.ImportDataset(ctx, "sample", src, false); err != nil {
		t.Fatalf("import: %v", err)
	}
	ds, info, err := st.LoadDataset(ctx, "sample")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if info.Source != "meals.csv" || info.Rows != 3 || len(info.Columns) != 5 {
		t.Fatalf("unexpected info: %+v", info)
	}
	if ds.Len() != 3 {
		t.Fatalf("expected 3 records, got %d", ds.Len())
	}
	for i := 0; i < ds.Len(); i++ {
		if ds.Record(i) != src.Record(i) {
			t.Fatalf("row %d differs: %+v vs %+v", i, ds.Record(i), src.Record(i))
		}
	}
	if ds.HasColumn(dataset.ColVegan) || !ds.HasColumn(dataset.ColHealthy) {
		t.Fatalf("present columns not preserved: %v", ds.Columns())
	}
	if ds.Summary().Source != "sqlite:sample" {
		t.Fatalf("unexpected source %q", ds.Summary().Source)
	}
}

func TestLoadDatasetKeepsNormalizeCounts(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	opts := dataset.DefaultOptions()
	opts.Required = []string{dataset.ColDiet, dataset.ColCalories}
	opts.OnInvalid = dataset.PolicyDrop
	opts.OnNegative = dataset.PolicyClip
	src, err := dataset.Normalize(
		[]string{"Diet", "Calories"},
		[][]string{{"Vegan", "-5"}, {"Keto", "abc"}, {"Paleo", "300"}},
		opts,
	)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if _, err := st.ImportDataset(ctx, "messy", src, false); err != nil {
		t.Fatalf("import: %v", err)
	}
	ds, _, err := st.LoadDataset(ctx, "messy")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	want := dataset.Summary{Source: "sqlite:messy", Read: 3, Kept: 2, Dropped: 1, Clipped: 1}
	if got := ds.Summary(); got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}
}

func TestImportDatasetReplace(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	src := sampleDataset(t)

	if _, err := st.ImportDataset(ctx, "sample", src, false); err != nil {
		t.Fatalf("import: %v", err)
	}
	if _, err := st.ImportDataset(ctx, "sample", src, false); !errors.Is(err, ErrExists) {
		t.Fatalf("expected ErrExists, got %v", err)
	}
	if _, err := st.ImportDataset(ctx, "sample", src, true); err != nil {
		t.Fatalf("replace: %v", err)
	}
	list, err := st.ListDatasets(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(list) != 1 || list[0].Name != "sample" {
		t.Fatalf("expected one dataset after replace, got %+v", list)
	}
	ds, _, err := st.LoadDataset(ctx, "sample")
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Len() != 3 {
		t.Fatalf("replace should not duplicate meals, got %d", ds.Len())
	}
}

func TestListDiets(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	if _, err := st.ImportDataset(ctx, "sample", sampleDataset(t), false); err != nil {
		t.Fatalf("import: %v", err)
	}
	diets, err := st.ListDiets(ctx, "sample")
	if err != nil {
		t.Fatalf("list diets: %v", err)
	}
	if len(diets) != 2 || diets[0] != (DietCount{Diet: "Vegan", Meals: 2}) || diets[1].Diet != "Keto" {
		t.Fatalf("unexpected diets: %+v", diets)
	}
}

func TestDeleteAndMissingDataset(t *testing.T) {
	st := openStore(t)
	ctx := context.Background()
	if _, err := st.ImportDataset(ctx, "sample", sampleDataset(t), false); err != nil {
		t.Fatalf("import: %v", err)
	}
	if err := st.DeleteDataset(ctx, "sample"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, _, err := st.LoadDataset(ctx, "sample"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := st.DeleteDataset(ctx, "sample"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
	if _, err := st.ImportDataset(ctx, "  ", sampleDataset(t), false); err == nil {
		t.Fatalf("expected error for blank name")
	}
}
