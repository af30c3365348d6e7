package stats

import (
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/verte-zerg/mealboard/internal/dataset"
)

const (
	noDataText   = "no data"
	barRune      = "█"
	defaultBarW  = 30
	minBarWidth  = 5
	barLabelRoom = 40
)

// RenderOptions control text rendering of panels.
type RenderOptions struct {
	Width  int
	Height int
	Color  bool
}

// HealthLabel maps is_healthy labels to their display names.
func HealthLabel(label string) string {
	switch label {
	case "1":
		return "Healthy"
	case "0":
		return "Non-Healthy"
	default:
		return label
	}
}

// FormatNumber renders v with prec decimals, or "no data" for NaN.
func FormatNumber(v float64, prec int) string {
	if math.IsNaN(v) {
		return noDataText
	}
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// FormatPercent renders a fraction as a percentage.
func FormatPercent(v float64) string {
	if math.IsNaN(v) {
		return noDataText
	}
	return fmt.Sprintf("%.1f%%", v*100)
}

// CardLines renders the summary cards as label/value lines.
func CardLines(c Cards) []string {
	return formatTable(nil, [][]string{
		{"Meals", strconv.Itoa(c.Meals)},
		{"Avg calories", FormatNumber(c.MeanCalories, 1)},
		{"Avg prep time", FormatNumber(c.MeanPrepTime, 1) + minutesSuffix(c.MeanPrepTime)},
		{"Healthy", FormatPercent(c.HealthyShare)},
	}, map[int]bool{1: true})
}

func minutesSuffix(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return " min"
}

// RenderReport writes the cards and every panel grouped by tab.
func RenderReport(w io.Writer, r Report, opts RenderOptions) error {
	if _, err := fmt.Fprintf(w, "Diets: %s (%d of %d meals)\n\n", r.Selection, r.Rows, r.Total); err != nil {
		return err
	}
	for _, line := range CardLines(r.Cards) {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	for i, name := range TabNames {
		if _, err := fmt.Fprintf(w, "\n== %s ==\n\n", name); err != nil {
			return err
		}
		for _, p := range r.PanelsFor(Tab(i)) {
			if err := RenderPanel(w, p, opts); err != nil {
				return err
			}
			if _, err := fmt.Fprintln(w); err != nil {
				return err
			}
		}
	}
	return nil
}

// RenderPanel writes one panel with its title. Empty and failed panels render their state
// instead of data.
func RenderPanel(w io.Writer, p Panel, opts RenderOptions) error {
	title := p.Title
	if p.Unfiltered {
		title += " (all diets)"
	}
	if _, err := fmt.Fprintln(w, title); err != nil {
		return err
	}
	switch {
	case p.Empty():
		_, err := fmt.Fprintln(w, "  No data for the current selection.")
		return err
	case p.Failed():
		_, err := fmt.Fprintf(w, "  Unavailable: %v\n", p.Err)
		return err
	}
	lines, err := PanelLines(p, opts)
	if err != nil {
		_, err = fmt.Fprintf(w, "  Unavailable: %v\n", err)
		return err
	}
	return writeLines(w, lines)
}

// PanelLines renders the body of a panel that holds data.
func PanelLines(p Panel, opts RenderOptions) ([]string, error) {
	width := opts.Width
	if width <= 0 {
		width = terminalWidthBackup
	}
	switch data := p.Data.(type) {
	case ShareData:
		return shareLines(data, width), nil
	case Crosstab:
		return crosstabLines(data, width), nil
	case []Box:
		return boxLines(data), nil
	case Matrix:
		return matrixLines(data), nil
	case []PointSeries:
		var b strings.Builder
		if err := PlotScatterWithColor(&b, "", healthSeries(data), PlotWidthFor(width), opts.Height, opts.Color); err != nil {
			return nil, fmt.Errorf("scatter plot: %w", err)
		}
		return strings.Split(strings.TrimRight(b.String(), "\n"), "\n"), nil
	case Histogram:
		return histogramLines(data, width), nil
	case DietMeans:
		return dietMeanLines(data), nil
	default:
		return nil, nil
	}
}

func writeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
	return nil
}

func shareLines(d ShareData, width int) []string {
	maxN := 0
	for _, c := range d.Counts {
		maxN = max(maxN, c.N)
	}
	bw := barWidth(width)
	rows := make([][]string, len(d.Counts))
	for i, c := range d.Counts {
		rows[i] = []string{HealthLabel(c.Key), strconv.Itoa(c.N), FormatPercent(d.Shares[i]), bar(c.N, maxN, bw)}
	}
	return formatTable([]string{"Group", "Meals", "Share", ""}, rows, map[int]bool{1: true, 2: true})
}

func crosstabLines(c Crosstab, width int) []string {
	headers := []string{"Diet"}
	for _, col := range c.Cols {
		headers = append(headers, HealthLabel(col))
	}
	headers = append(headers, "Total", "")
	maxTotal := 0
	for r := range c.Rows {
		maxTotal = max(maxTotal, c.RowTotal(r))
	}
	right := map[int]bool{}
	for i := 1; i <= len(c.Cols)+1; i++ {
		right[i] = true
	}
	bw := barWidth(width)
	rows := make([][]string, len(c.Rows))
	for r, label := range c.Rows {
		row := []string{label}
		for _, n := range c.Counts[r] {
			row = append(row, strconv.Itoa(n))
		}
		row = append(row, strconv.Itoa(c.RowTotal(r)), bar(c.RowTotal(r), maxTotal, bw))
		rows[r] = row
	}
	return formatTable(headers, rows, right)
}

func boxLines(boxes []Box) []string {
	rows := make([][]string, len(boxes))
	for i, b := range boxes {
		rows[i] = []string{
			HealthLabel(b.Group),
			strconv.Itoa(b.N),
			FormatNumber(b.Min, 1),
			FormatNumber(b.Q1, 1),
			FormatNumber(b.Median, 1),
			FormatNumber(b.Q3, 1),
			FormatNumber(b.Max, 1),
			FormatNumber(b.Mean, 1),
		}
	}
	return formatTable(
		[]string{"Group", "N", "Min", "Q1", "Median", "Q3", "Max", "Mean"},
		rows,
		map[int]bool{1: true, 2: true, 3: true, 4: true, 5: true, 6: true, 7: true},
	)
}

func matrixLines(m Matrix) []string {
	headers := []string{""}
	right := map[int]bool{}
	for i, key := range m.Keys {
		headers = append(headers, ColumnTitle(key))
		right[i+1] = true
	}
	rows := make([][]string, len(m.Keys))
	for i, key := range m.Keys {
		row := []string{ColumnTitle(key)}
		for _, v := range m.Values[i] {
			if math.IsNaN(v) {
				row = append(row, "n/a")
				continue
			}
			row = append(row, strconv.FormatFloat(v, 'f', 2, 64))
		}
		rows[i] = row
	}
	return formatTable(headers, rows, right)
}

func histogramLines(h Histogram, width int) []string {
	headers := []string{"Bin"}
	right := map[int]bool{}
	for i, s := range h.Series {
		headers = append(headers, HealthLabel(s.Name))
		right[i+1] = true
	}
	headers = append(headers, "")
	totals := h.Totals()
	maxTotal := 0
	for _, n := range totals {
		maxTotal = max(maxTotal, n)
	}
	bw := barWidth(width)
	rows := make([][]string, 0, len(totals))
	for b, total := range totals {
		row := []string{binLabel(h.Edges[b], h.Edges[b+1], b == len(totals)-1)}
		for _, s := range h.Series {
			row = append(row, strconv.Itoa(s.Counts[b]))
		}
		rows = append(rows, append(row, bar(total, maxTotal, bw)))
	}
	return formatTable(headers, rows, right)
}

func binLabel(lo, hi float64, last bool) string {
	closing := ")"
	if last {
		closing = "]"
	}
	return fmt.Sprintf("[%s, %s%s", trimFloat(lo), trimFloat(hi), closing)
}

func trimFloat(v float64) string {
	return strconv.FormatFloat(math.Round(v*100)/100, 'f', -1, 64)
}

func dietMeanLines(d DietMeans) []string {
	perMin := map[string]Mean{}
	for _, m := range d.CalPerMin {
		perMin[m.Group] = m
	}
	rows := make([][]string, len(d.Calories))
	for i, m := range d.Calories {
		rows[i] = []string{
			m.Group,
			strconv.Itoa(m.N),
			FormatNumber(m.Value, 1),
			FormatNumber(perMin[m.Group].Value, 2),
		}
		if _, ok := perMin[m.Group]; !ok {
			rows[i][3] = noDataText
		}
	}
	return formatTable(
		[]string{"Diet", "Meals", "Avg calories", "Avg cal/min"},
		rows,
		map[int]bool{1: true, 2: true, 3: true},
	)
}

func healthSeries(series []PointSeries) []PointSeries {
	out := make([]PointSeries, len(series))
	for i, s := range series {
		s.Name = HealthLabel(s.Name)
		out[i] = s
	}
	return out
}

func barWidth(total int) int {
	w := total - barLabelRoom
	if w > defaultBarW {
		w = defaultBarW
	}
	if w < minBarWidth {
		w = minBarWidth
	}
	return w
}

func bar(n, maxN, width int) string {
	if maxN <= 0 || n <= 0 {
		return ""
	}
	cells := int(math.Round(float64(n) / float64(maxN) * float64(width)))
	if cells < 1 {
		cells = 1
	}
	return strings.Repeat(barRune, cells)
}

// ColumnTitle returns a display name for a canonical column key.
func ColumnTitle(key string) string {
	switch key {
	case dataset.ColDiet:
		return "Diet"
	case dataset.ColPrepTime:
		return "Prep time"
	case dataset.ColIngredients:
		return "Ingredients"
	case dataset.ColHealthy:
		return "Healthy"
	case dataset.ColCalPerMin:
		return "Cal/min"
	default:
		if key == "" {
			return key
		}
		return strings.ToUpper(key[:1]) + key[1:]
	}
}
