package stats

import (
	"bytes"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/verte-zerg/mealboard/internal/filter"
)

func TestRenderReport(t *testing.T) {
	report := BuildReport(scenario(t), filter.NewSelection("Vegan"), Options{Bins: 4})
	var buf bytes.Buffer
	if err := RenderReport(&buf, report, RenderOptions{Width: 100, Height: 6}); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	for _, want := range []string{
		"Diets: Vegan (2 of 4 meals)",
		"== Overview ==",
		"== Prep Insights ==",
		"Macronutrient Correlation (all diets)",
		"Healthy",
		"Non-Healthy",
		"no data",
		"Legend:",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("expected %q in output:\n%s", want, out)
		}
	}
}

func TestRenderPanelEmptyState(t *testing.T) {
	report := BuildReport(scenario(t), filter.NewSelection(), Options{})
	p, _ := report.Panel(PanelDietCounts)
	var buf bytes.Buffer
	if err := RenderPanel(&buf, p, RenderOptions{}); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !strings.Contains(buf.String(), "No data for the current selection.") {
		t.Fatalf("expected empty state, got %q", buf.String())
	}
}

type failingWriter struct{ writes int }

func (w *failingWriter) Write(p []byte) (int, error) {
	if w.writes == 0 {
		return 0, errors.New("disk full")
	}
	w.writes--
	return len(p), nil
}

func TestRenderScatterPanel(t *testing.T) {
	report := BuildReport(scenario(t), filter.NewSelection("Vegan", "Keto"), Options{})
	p, ok := report.Panel(PanelPrepScatter)
	if !ok {
		t.Fatalf("missing scatter panel")
	}
	lines, err := PanelLines(p, RenderOptions{Width: 80, Height: 6})
	if err != nil {
		t.Fatalf("panel lines: %v", err)
	}
	if len(lines) < 6 {
		t.Fatalf("expected at least 6 plot rows, got %d", len(lines))
	}

	err = RenderPanel(&failingWriter{writes: 1}, p, RenderOptions{Width: 80, Height: 6})
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("expected write error to surface, got %v", err)
	}
}

func TestCardLinesMissingValues(t *testing.T) {
	lines := CardLines(SummaryCards(filter.Apply(scenario(t), filter.NewSelection())))
	if len(lines) != 4 || !strings.HasSuffix(lines[1], "no data") {
		t.Fatalf("unexpected card lines: %q", lines)
	}
}

func TestReportJSONUsesNullForMissing(t *testing.T) {
	report := BuildReport(scenario(t), filter.NewSelection("Keto"), Options{})
	raw, err := json.Marshal(report)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	var decoded struct {
		Selection []string `json:"selection"`
		Panels    []struct {
			ID     string          `json:"id"`
			Status string          `json:"status"`
			Data   json.RawMessage `json:"data"`
		} `json:"panels"`
	}
	if err := json.Unmarshal(raw, &decoded); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(decoded.Selection) != 1 || decoded.Selection[0] != "Keto" {
		t.Fatalf("unexpected selection: %v", decoded.Selection)
	}
	for _, p := range decoded.Panels {
		if p.Status != "ok" {
			t.Fatalf("panel %s: expected ok, got %s", p.ID, p.Status)
		}
		if p.ID == PanelDietMeans && !strings.Contains(string(p.Data), `"value":null`) {
			t.Fatalf("expected null for the missing Vegan mean: %s", p.Data)
		}
	}

	empty, err := json.Marshal(BuildReport(scenario(t), filter.NewSelection(), Options{}))
	if err != nil {
		t.Fatalf("marshal empty report: %v", err)
	}
	if !strings.Contains(string(empty), `"selection":[]`) || !strings.Contains(string(empty), `"status":"empty"`) {
		t.Fatalf("unexpected empty report json: %s", empty)
	}
}
