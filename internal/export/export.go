// Package export writes dashboard reports to xlsx workbooks.
package export

import (
	"fmt"
	"math"

	"github.com/xuri/excelize/v2"

	"github.com/verte-zerg/mealboard/internal/dataset"
	"github.com/verte-zerg/mealboard/internal/filter"
	"github.com/verte-zerg/mealboard/internal/stats"
)

// Sheet names besides the per-panel sheets, which are named by panel ID.
const (
	SummarySheet = "Summary"
	DataSheet    = "Data"
)

// Write saves a workbook for report to path. ds must be the table report was built from.
func Write(path string, ds dataset.Table, report stats.Report) error {
	f, err := Build(ds, report)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			// Best-effort close after save.
			_ = cerr
		}
	}()
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("failed to save workbook: %w", err)
	}
	return nil
}

// Build assembles the workbook in memory: a summary sheet, one sheet per panel and the
// selected rows.
func Build(ds dataset.Table, report stats.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	w := &writer{f: f}
	if err := f.SetSheetName(f.GetSheetName(0), SummarySheet); err != nil {
		return nil, err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, err
	}
	w.header = bold

	w.summary(report)
	for _, p := range report.Panels {
		w.panel(p)
	}
	w.data(filter.Apply(ds, report.Selection))
	if w.err != nil {
		_ = f.Close()
		return nil, w.err
	}
	return f, nil
}

// writer keeps the first error so sheet builders stay linear.
type writer struct {
	f      *excelize.File
	header int
	err    error
}

func (w *writer) sheet(name string) {
	if w.err != nil {
		return
	}
	if name == SummarySheet {
		return
	}
	_, w.err = w.f.NewSheet(name)
}

func (w *writer) row(sheet string, rowNum int, values ...any) {
	if w.err != nil {
		return
	}
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		w.err = err
		return
	}
	w.err = w.f.SetSheetRow(sheet, cell, &values)
}

func (w *writer) headerRow(sheet string, rowNum int, values ...any) {
	w.row(sheet, rowNum, values...)
	if w.err != nil || len(values) == 0 {
		return
	}
	first, _ := excelize.CoordinatesToCellName(1, rowNum)
	last, _ := excelize.CoordinatesToCellName(len(values), rowNum)
	w.err = w.f.SetCellStyle(sheet, first, last, w.header)
}

func (w *writer) summary(r stats.Report) {
	s := SummarySheet
	w.headerRow(s, 1, "Setting", "Value")
	w.row(s, 2, "Diets", r.Selection.String())
	w.row(s, 3, "Meals in view", r.Rows)
	w.row(s, 4, "Meals total", r.Total)
	w.row(s, 5, "Avg calories", number(r.Cards.MeanCalories))
	w.row(s, 6, "Avg prep time", number(r.Cards.MeanPrepTime))
	w.row(s, 7, "Healthy share", number(r.Cards.HealthyShare))
	w.headerRow(s, 9, "Panel", "Title", "Rows", "Status")
	for i, p := range r.Panels {
		w.row(s, 10+i, p.ID, p.Title, p.Rows, status(p))
	}
}

func (w *writer) panel(p stats.Panel) {
	w.sheet(p.ID)
	if p.Err != nil {
		w.row(p.ID, 1, p.Title)
		w.row(p.ID, 2, status(p))
		return
	}
	switch data := p.Data.(type) {
	case stats.ShareData:
		w.headerRow(p.ID, 1, "Group", "Meals", "Share")
		for i, c := range data.Counts {
			w.row(p.ID, i+2, stats.HealthLabel(c.Key), c.N, data.Shares[i])
		}
	case stats.Crosstab:
		header := []any{"Diet"}
		for _, col := range data.Cols {
			header = append(header, stats.HealthLabel(col))
		}
		w.headerRow(p.ID, 1, append(header, "Total")...)
		for r, label := range data.Rows {
			row := []any{label}
			for _, n := range data.Counts[r] {
				row = append(row, n)
			}
			w.row(p.ID, r+2, append(row, data.RowTotal(r))...)
		}
	case []stats.Box:
		w.headerRow(p.ID, 1, "Group", "N", "Min", "Q1", "Median", "Q3", "Max", "Mean")
		for i, b := range data {
			w.row(p.ID, i+2, stats.HealthLabel(b.Group), b.N, b.Min, b.Q1, b.Median, b.Q3, b.Max, b.Mean)
		}
	case stats.Matrix:
		header := []any{""}
		for _, key := range data.Keys {
			header = append(header, key)
		}
		w.headerRow(p.ID, 1, header...)
		for i, key := range data.Keys {
			row := []any{key}
			for _, v := range data.Values[i] {
				row = append(row, number(v))
			}
			w.row(p.ID, i+2, row...)
		}
	case []stats.PointSeries:
		w.headerRow(p.ID, 1, "Group", dataset.ColPrepTime, dataset.ColCalories)
		rowNum := 2
		for _, s := range data {
			for i := range s.X {
				w.row(p.ID, rowNum, stats.HealthLabel(s.Name), s.X[i], s.Y[i])
				rowNum++
			}
		}
	case stats.Histogram:
		header := []any{"From", "To"}
		for _, s := range data.Series {
			header = append(header, stats.HealthLabel(s.Name))
		}
		w.headerRow(p.ID, 1, header...)
		for b := 0; b+1 < len(data.Edges); b++ {
			row := []any{data.Edges[b], data.Edges[b+1]}
			for _, s := range data.Series {
				row = append(row, s.Counts[b])
			}
			w.row(p.ID, b+2, row...)
		}
	case stats.DietMeans:
		w.headerRow(p.ID, 1, "Diet", "Meals", "Avg calories", "Avg cal/min")
		for i, m := range data.Calories {
			perMin := any(nil)
			if i < len(data.CalPerMin) {
				perMin = number(data.CalPerMin[i].Value)
			}
			w.row(p.ID, i+2, m.Group, m.N, number(m.Value), perMin)
		}
	}
}

func (w *writer) data(v *dataset.View) {
	w.sheet(DataSheet)
	parent, ok := tableColumns(v)
	if !ok {
		return
	}
	header := make([]any, len(parent))
	for i, col := range parent {
		header[i] = col
	}
	w.headerRow(DataSheet, 1, header...)
	for i := 0; i < v.Len(); i++ {
		row := make([]any, len(parent))
		for c, col := range parent {
			if kind, _ := v.Kind(col); kind == dataset.KindCategory {
				row[c] = v.Label(i, col)
				continue
			}
			row[c] = number(v.Value(i, col))
		}
		w.row(DataSheet, i+2, row...)
	}
}

// tableColumns lists the columns present in v, base columns first.
func tableColumns(v *dataset.View) ([]string, bool) {
	var cols []string
	for _, col := range append(append([]string(nil), dataset.BaseColumns...), dataset.ColCalPerMin) {
		if _, ok := v.Kind(col); ok {
			cols = append(cols, col)
		}
	}
	return cols, len(cols) > 0
}

func status(p stats.Panel) string {
	switch {
	case p.Empty():
		return "no data"
	case p.Failed():
		return "error: " + p.Err.Error()
	default:
		return "ok"
	}
}

// number leaves NaN cells blank.
func number(v float64) any {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return nil
	}
	return v
}

// SheetNames lists the sheets Build creates for report, in order.
func SheetNames(report stats.Report) []string {
	out := []string{SummarySheet}
	for _, p := range report.Panels {
		out = append(out, p.ID)
	}
	return append(out, DataSheet)
}
