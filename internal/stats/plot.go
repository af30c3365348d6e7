package stats

import (
	"fmt"
	"io"
	"math"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
)

type bounds struct {
	minX, maxX float64
	minY, maxY float64
}

type ansiColor struct {
	name string
	code string
}

const (
	defaultPlotHeight   = 12
	minPlotWidth        = 10
	axisLabelWidth      = 7
	axisSeparator       = " │ "
	colorReset          = "\x1b[0m"
	terminalWidthBackup = 80
)

var colorPalette = []ansiColor{
	{name: "cyan", code: "\x1b[36m"},
	{name: "magenta", code: "\x1b[35m"},
	{name: "yellow", code: "\x1b[33m"},
	{name: "green", code: "\x1b[32m"},
	{name: "blue", code: "\x1b[34m"},
}

// PlotScatter renders point series as a braille scatter plot on shared axes.
func PlotScatter(w io.Writer, title string, series []PointSeries, width, height int) error {
	return plotScatter(w, title, series, width, height, false)
}

// PlotScatterWithColor renders a scatter plot with optional forced color output.
func PlotScatterWithColor(w io.Writer, title string, series []PointSeries, width, height int, forceColor bool) error {
	return plotScatter(w, title, series, width, height, forceColor)
}

func plotScatter(w io.Writer, title string, series []PointSeries, width, height int, forceColor bool) error {
	series = filterPoints(series)
	if len(series) == 0 {
		return nil
	}
	if height <= 0 {
		height = defaultPlotHeight
	}
	if width <= 0 {
		width = autoPlotWidth()
	}
	if width < minPlotWidth {
		width = minPlotWidth
	}

	b := pointBounds(series)
	dotsX, dotsY := width*2, height*4
	seriesCells := make([][][]uint8, 0, len(series))
	for _, s := range series {
		cells := makeCells(height, width)
		for i := range s.X {
			px := scaleToDot(s.X[i], b.minX, b.maxX, dotsX)
			py := dotsY - 1 - scaleToDot(s.Y[i], b.minY, b.maxY, dotsY)
			setBrailleDot(cells, px, py)
		}
		seriesCells = append(seriesCells, cells)
	}

	useColor := shouldUseColor(w, forceColor)
	axisLabels := makeAxisLabels(height, b.minY, b.maxY)

	if title != "" {
		if _, err := fmt.Fprintln(w, title); err != nil {
			return err
		}
	}
	for y := 0; y < height; y++ {
		var row strings.Builder
		fmt.Fprintf(&row, "%*s%s", axisLabelWidth, axisLabels[y], axisSeparator)
		for x := 0; x < width; x++ {
			mask, colorIdx := composeCell(seriesCells, x, y)
			ch := brailleFromMask(mask)
			if useColor && colorIdx >= 0 {
				row.WriteString(colorPalette[colorIdx%len(colorPalette)].code)
				row.WriteRune(ch)
				row.WriteString(colorReset)
			} else {
				row.WriteRune(ch)
			}
		}
		if _, err := fmt.Fprintln(w, row.String()); err != nil {
			return err
		}
	}
	if _, err := fmt.Fprintln(w, xAxisLine(b, width)); err != nil {
		return err
	}
	if _, err := fmt.Fprintln(w, renderLegend(series, useColor)); err != nil {
		return err
	}
	return nil
}

func filterPoints(series []PointSeries) []PointSeries {
	out := make([]PointSeries, 0, len(series))
	for _, s := range series {
		if len(s.X) == 0 || len(s.X) != len(s.Y) {
			continue
		}
		out = append(out, s)
	}
	return out
}

func pointBounds(series []PointSeries) bounds {
	b := bounds{minX: math.Inf(1), maxX: math.Inf(-1), minY: math.Inf(1), maxY: math.Inf(-1)}
	for _, s := range series {
		for i := range s.X {
			b.minX = math.Min(b.minX, s.X[i])
			b.maxX = math.Max(b.maxX, s.X[i])
			b.minY = math.Min(b.minY, s.Y[i])
			b.maxY = math.Max(b.maxY, s.Y[i])
		}
	}
	if math.Abs(b.maxX-b.minX) < 1e-9 {
		b.minX--
		b.maxX++
	}
	if math.Abs(b.maxY-b.minY) < 1e-9 {
		b.minY--
		b.maxY++
	}
	return b
}

func scaleToDot(v, lo, hi float64, dots int) int {
	if dots <= 1 {
		return 0
	}
	pos := (v - lo) / (hi - lo)
	d := int(math.Round(pos * float64(dots-1)))
	if d < 0 {
		d = 0
	}
	if d >= dots {
		d = dots - 1
	}
	return d
}

func autoPlotWidth() int {
	return PlotWidthFor(terminalWidth())
}

// PlotWidthFor computes a plot width that fits within the total available width.
func PlotWidthFor(totalWidth int) int {
	if totalWidth <= 0 {
		return minPlotWidth
	}
	plotWidth := totalWidth - axisLabelWidth - utf8.RuneCountInString(axisSeparator)
	if plotWidth < minPlotWidth {
		plotWidth = minPlotWidth
	}
	return plotWidth
}

func terminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil || width <= 0 {
		return terminalWidthBackup
	}
	return width
}

func shouldUseColor(w io.Writer, force bool) bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if force {
		return true
	}
	file, ok := w.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func makeAxisLabels(height int, lo, hi float64) []string {
	labels := make([]string, height)
	if height <= 0 {
		return labels
	}
	labels[0] = shortNumber(hi)
	if height > 2 {
		labels[height/2] = shortNumber((lo + hi) / 2)
	}
	if height > 1 {
		labels[height-1] = shortNumber(lo)
	}
	return labels
}

func xAxisLine(b bounds, width int) string {
	left := shortNumber(b.minX)
	right := shortNumber(b.maxX)
	gap := width - utf8.RuneCountInString(left) - utf8.RuneCountInString(right)
	if gap < 1 {
		gap = 1
	}
	pad := strings.Repeat(" ", axisLabelWidth+utf8.RuneCountInString(axisSeparator))
	return pad + left + strings.Repeat(" ", gap) + right
}

func shortNumber(v float64) string {
	switch av := math.Abs(v); {
	case av >= 10000:
		return fmt.Sprintf("%.0fk", v/1000)
	case av >= 100 || v == math.Trunc(v):
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%.1f", v)
	}
}

func makeCells(height, width int) [][]uint8 {
	cells := make([][]uint8, height)
	for y := 0; y < height; y++ {
		cells[y] = make([]uint8, width)
	}
	return cells
}

func composeCell(seriesCells [][][]uint8, x, y int) (uint8, int) {
	var mask uint8
	colorIdx := -1
	for i, cells := range seriesCells {
		if y < 0 || y >= len(cells) || x < 0 || x >= len(cells[y]) {
			continue
		}
		cellMask := cells[y][x]
		if cellMask == 0 {
			continue
		}
		if colorIdx == -1 {
			colorIdx = i
		}
		mask |= cellMask
	}
	return mask, colorIdx
}

func renderLegend(series []PointSeries, useColor bool) string {
	parts := make([]string, 0, len(series))
	marker := brailleFromMask(0x1b)
	for i, s := range series {
		label := fmt.Sprintf("%c %s (%d)", marker, s.Name, len(s.X))
		if useColor {
			label = colorPalette[i%len(colorPalette)].code + label + colorReset
		}
		parts = append(parts, label)
	}
	return "Legend: " + strings.Join(parts, "  ")
}

func setBrailleDot(cells [][]uint8, x, y int) {
	if y < 0 || x < 0 {
		return
	}
	cellY := y / 4
	cellX := x / 2
	if cellY >= len(cells) || cellX >= len(cells[cellY]) {
		return
	}
	cells[cellY][cellX] |= brailleDotMask(x%2, y%4)
}

func brailleDotMask(x, y int) uint8 {
	switch {
	case x == 0 && y == 0:
		return 0x01
	case x == 0 && y == 1:
		return 0x02
	case x == 0 && y == 2:
		return 0x04
	case x == 0 && y == 3:
		return 0x40
	case x == 1 && y == 0:
		return 0x08
	case x == 1 && y == 1:
		return 0x10
	case x == 1 && y == 2:
		return 0x20
	case x == 1 && y == 3:
		return 0x80
	default:
		return 0
	}
}

func brailleFromMask(mask uint8) rune {
	return rune(0x2800 + int(mask))
}
