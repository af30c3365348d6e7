package export

import (
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/mealboard/internal/dataset"
	"github.com/verte-zerg/mealboard/internal/filter"
	"github.com/verte-zerg/mealboard/internal/stats"
)

func sampleDataset(t *testing.T) *dataset.Dataset {
	t.Helper()
	ds, err := dataset.Normalize(
		[]string{"Diet", "Calories", "Protein", "Fat", "Carbs", "prep_time", "num_ingredients", "is_healthy", "vegan"},
		[][]string{
			{"Vegan", "200", "10", "5", "30", "0", "4", "1", "1"},
			{"Vegan", "400", "20", "15", "50", "10", "6", "1", "1"},
			{"Keto", "600", "40", "45", "5", "20", "8", "0", "0"},
			{"Keto", "0", "0", "0", "0", "0", "2", "0", "0"},
		},
		dataset.DefaultOptions(),
	)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := stats.AppendCalPerMin(ds); err != nil {
		t.Fatalf("append cal_per_min: %v", err)
	}
	return ds
}

func TestWriteWorkbook(t *testing.T) {
	ds := sampleDataset(t)
	report := stats.BuildReport(ds, filter.NewSelection("Keto"), stats.Options{Bins: 4})
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := Write(path, ds, report); err != nil {
		t.Fatalf("write: %v", err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() {
		_ = f.Close()
	})

	sheets := f.GetSheetList()
	want := SheetNames(report)
	if len(sheets) != len(want) {
		t.Fatalf("expected sheets %v, got %v", want, sheets)
	}
	for i := range want {
		if sheets[i] != want[i] {
			t.Fatalf("expected sheets %v, got %v", want, sheets)
		}
	}

	diets, err := f.GetCellValue(SummarySheet, "B2")
	if err != nil || diets != "Keto" {
		t.Fatalf("unexpected summary diets %q (%v)", diets, err)
	}

	means, err := f.GetRows(stats.PanelDietMeans)
	if err != nil {
		t.Fatalf("read diet means: %v", err)
	}
	if len(means) != 3 || means[1][0] != "Vegan" || len(means[1]) > 2 && means[1][2] != "" {
		t.Fatalf("missing Vegan mean should be a blank cell, got %v", means)
	}

	rows, err := f.GetRows(DataSheet)
	if err != nil {
		t.Fatalf("read data: %v", err)
	}
	if len(rows) != 3 || rows[0][0] != dataset.ColDiet || rows[1][0] != "Keto" {
		t.Fatalf("expected header plus two Keto rows, got %v", rows)
	}
}

func TestDataSheetReloads(t *testing.T) {
	ds := sampleDataset(t)
	report := stats.BuildReport(ds, filter.All(ds), stats.Options{})
	path := filepath.Join(t.TempDir(), "report.xlsx")
	if err := Write(path, ds, report); err != nil {
		t.Fatalf("write: %v", err)
	}
	reloaded, err := dataset.LoadXLSX(path, DataSheet, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if reloaded.Len() != ds.Len() {
		t.Fatalf("expected %d rows, got %d", ds.Len(), reloaded.Len())
	}
	for i := 0; i < ds.Len(); i++ {
		if reloaded.Record(i) != ds.Record(i) {
			t.Fatalf("row %d differs: %+v vs %+v", i, reloaded.Record(i), ds.Record(i))
		}
	}
}

func TestBuildRecordsPanelErrors(t *testing.T) {
	opts := dataset.DefaultOptions()
	opts.Required = []string{dataset.ColDiet}
	ds, err := dataset.Normalize([]string{"Diet", "Calories"}, [][]string{{"Vegan", "100"}}, opts)
	if err != nil {
		t.Fatalf("normalize: %v", err)
	}
	report := stats.BuildReport(ds, filter.All(ds), stats.Options{})
	f, err := Build(ds, report)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	t.Cleanup(func() {
		_ = f.Close()
	})
	got, err := f.GetCellValue(stats.PanelHealthyShare, "A2")
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got == "" || got == "ok" {
		t.Fatalf("expected error status, got %q", got)
	}
}
