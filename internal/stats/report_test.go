package stats

import (
	"errors"
	"testing"

	"github.com/verte-zerg/mealboard/internal/dataset"
	"github.com/verte-zerg/mealboard/internal/filter"
)

func TestBuildReportRespectsSelection(t *testing.T) {
	ds := scenario(t)
	report := BuildReport(ds, filter.NewSelection("Vegan"), Options{})
	if len(report.Panels) != len(PanelIDs()) {
		t.Fatalf("expected %d panels, got %d", len(PanelIDs()), len(report.Panels))
	}
	if report.Rows != 2 || report.Total != 4 || report.Cards.Meals != 2 {
		t.Fatalf("unexpected counts: rows=%d total=%d cards=%+v", report.Rows, report.Total, report.Cards)
	}
	for _, p := range report.Panels {
		if p.Err != nil {
			t.Fatalf("panel %s failed: %v", p.ID, p.Err)
		}
		want := 2
		if p.Unfiltered {
			want = 4
		}
		if p.Rows != want {
			t.Fatalf("panel %s: expected %d rows, got %d", p.ID, want, p.Rows)
		}
	}

	p, ok := report.Panel(PanelDietMeans)
	if !ok {
		t.Fatalf("diet means panel missing")
	}
	means := p.Data.(DietMeans)
	if len(means.Calories) != 2 || means.Calories[0].Value != 300 || !means.Calories[1].Missing() {
		t.Fatalf("expected Vegan mean and a missing Keto marker, got %+v", means.Calories)
	}
	if means.CalPerMin[0].Value != 120 {
		t.Fatalf("expected Vegan cal/min 120, got %v", means.CalPerMin[0].Value)
	}

	hist, _ := report.Panel(PanelIngredientHist)
	if h := hist.Data.(Histogram); len(h.Edges) != DefaultBins+1 {
		t.Fatalf("expected default bins, got %d edges", len(h.Edges))
	}
}

func TestBuildReportEmptySelection(t *testing.T) {
	ds := scenario(t)
	report := BuildReport(ds, filter.NewSelection(), Options{Bins: 5})
	for _, p := range report.Panels {
		if p.Unfiltered {
			if p.Err != nil || p.Data == nil {
				t.Fatalf("unfiltered panel %s should still have data, got %v", p.ID, p.Err)
			}
			continue
		}
		if !p.Empty() || p.Failed() {
			t.Fatalf("panel %s should be empty, got err=%v", p.ID, p.Err)
		}
	}
}

func TestBuildReportIsolatesPanelFailures(t *testing.T) {
	ds := loadMeals(t, mealHeader[:7], [][]string{
		{"Vegan", "200", "10", "5", "30", "0", "4"},
		{"Keto", "600", "40", "45", "5", "20", "8"},
	})
	report := BuildReport(ds, filter.All(ds), Options{})

	var keyErr *dataset.KeyError
	failing := map[string]bool{
		PanelHealthyShare:   true,
		PanelDietCounts:     true,
		PanelCaloriesBox:    true,
		PanelPrepScatter:    true,
		PanelIngredientHist: true,
		PanelDietMeans:      true,
	}
	for _, p := range report.Panels {
		if failing[p.ID] {
			if !p.Failed() || !errors.As(p.Err, &keyErr) {
				t.Fatalf("panel %s: expected KeyError, got %v", p.ID, p.Err)
			}
			continue
		}
		if p.Err != nil {
			t.Fatalf("panel %s should not fail: %v", p.ID, p.Err)
		}
	}
}

func TestPanelsForTab(t *testing.T) {
	report := BuildReport(scenario(t), filter.NewSelection("Keto"), Options{})
	counts := map[Tab]int{}
	for tab := range TabNames {
		counts[Tab(tab)] = len(report.PanelsFor(Tab(tab)))
	}
	if counts[TabOverview] != 2 || counts[TabNutrition] != 2 || counts[TabPrep] != 3 {
		t.Fatalf("unexpected panels per tab: %v", counts)
	}
	if TabPrep.String() != "Prep Insights" || Tab(9).String() != "unknown" {
		t.Fatalf("unexpected tab names")
	}
}
