package statsui

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

type wrapRune struct {
	r       rune
	width   int
	isSpace bool
}

func buildWrapRunes(s string) []wrapRune {
	out := make([]wrapRune, 0, len(s))
	for _, r := range s {
		out = append(out, wrapRune{r: r, width: runewidth.RuneWidth(r), isSpace: r == ' '})
	}
	return out
}

func renderWrapRunes(runes []wrapRune) string {
	var b strings.Builder
	for _, item := range runes {
		b.WriteRune(item.r)
	}
	return b.String()
}

// wrapText breaks s into lines of at most width cells, preferring breaks at spaces.
func wrapText(s string, width int) []string {
	if s == "" {
		return nil
	}
	runes := buildWrapRunes(s)
	if width <= 0 {
		return []string{s}
	}
	var out []string
	line := make([]wrapRune, 0, len(runes))
	lineWidth := 0
	lastSpaceIdx := -1

	for i := 0; i < len(runes); {
		item := runes[i]
		if lineWidth+item.width > width && len(line) > 0 {
			if lastSpaceIdx >= 0 {
				out = append(out, renderWrapRunes(line[:lastSpaceIdx]))
				line = append([]wrapRune{}, line[lastSpaceIdx+1:]...)
				lineWidth = lineWidthOf(line)
				lastSpaceIdx = lastSpaceIndex(line)
			} else {
				out = append(out, renderWrapRunes(line))
				line = line[:0]
				lineWidth = 0
				lastSpaceIdx = -1
			}
			continue
		}
		line = append(line, item)
		lineWidth += item.width
		if item.isSpace {
			lastSpaceIdx = len(line) - 1
		}
		i++
	}
	return append(out, renderWrapRunes(line))
}

func lineWidthOf(line []wrapRune) int {
	total := 0
	for _, item := range line {
		total += item.width
	}
	return total
}

func lastSpaceIndex(line []wrapRune) int {
	for i := len(line) - 1; i >= 0; i-- {
		if line[i].isSpace {
			return i
		}
	}
	return -1
}
