package stats

import (
	"testing"
	"unicode/utf8"
)

func TestPlotWidthFor(t *testing.T) {
	axisWidth := axisLabelWidth + utf8.RuneCountInString(axisSeparator)
	total := 80
	expected := total - axisWidth
	if got := PlotWidthFor(total); got != expected {
		t.Fatalf("expected width %d, got %d", expected, got)
	}
	if got := PlotWidthFor(0); got != minPlotWidth {
		t.Fatalf("expected min width %d, got %d", minPlotWidth, got)
	}
	if got := PlotWidthFor(12); got != minPlotWidth {
		t.Fatalf("expected min width %d for narrow terminals, got %d", minPlotWidth, got)
	}
}
