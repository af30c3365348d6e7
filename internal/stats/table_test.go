package stats

import "testing"

func TestFormatTableAlignsColumns(t *testing.T) {
	headers := []string{"Diet", "Meals", "Calories"}
	rows := [][]string{
		{"Vegan", "2", "300.0"},
		{"Mediterranean", "12", "1450.5"},
	}
	rightAlign := map[int]bool{1: true, 2: true}

	lines := formatTable(headers, rows, rightAlign)
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d", len(lines))
	}
	if lines[0] != "Diet           Meals  Calories" {
		t.Fatalf("unexpected header line: %q", lines[0])
	}
	if lines[1] != "Vegan              2     300.0" {
		t.Fatalf("unexpected row line: %q", lines[1])
	}
	if lines[2] != "Mediterranean     12    1450.5" {
		t.Fatalf("unexpected row line: %q", lines[2])
	}
}

func TestFormatTableWideRunes(t *testing.T) {
	lines := formatTable([]string{"Diet", "N"}, [][]string{{"和食", "1"}, {"Keto", "2"}}, nil)
	if lines[1] != "和食  1" {
		t.Fatalf("wide runes should count as two cells: %q", lines[1])
	}
}
