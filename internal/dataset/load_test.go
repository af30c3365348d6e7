package dataset

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestLoadCSVFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meals.csv")
	content := "\ufeff" + capitalizedCSV
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write csv: %v", err)
	}
	ds, err := Load(path, DefaultOptions())
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", ds.Len())
	}
	if ds.Summary().Source != path {
		t.Fatalf("expected source %q, got %q", path, ds.Summary().Source)
	}
}

func TestReadCSVEmpty(t *testing.T) {
	if _, err := ReadCSV(strings.NewReader(""), DefaultOptions()); err == nil {
		t.Fatalf("expected error for empty input")
	}
}

func TestLoadXLSXFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "meals.xlsx")
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	rows := [][]any{
		{"Diet", "Calories", "Protein", "Fat", "Carbs", "prep_time", "num_ingredients", "is_healthy", "vegan"},
		{"Vegan", 200, 10, 5, 30, 0, 4, 1, 1},
		{"Keto", 600, 40, 45, 5, 20, 7, 0, 0},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			t.Fatalf("cell name: %v", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	_ = f.Close()

	ds, err := Load(path, DefaultOptions())
	if err != nil {
		t.Fatalf("load xlsx: %v", err)
	}
	if ds.Len() != 2 {
		t.Fatalf("expected 2 records, got %d", ds.Len())
	}
	if rec := ds.Record(1); rec.DietType != "Keto" || rec.Calories != 600 || rec.IsHealthy {
		t.Fatalf("unexpected record: %+v", rec)
	}
}
