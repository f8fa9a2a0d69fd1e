package ui

import (
	"fmt"
	"strings"
)

// ProgressBar renders value/total as a colored bar of width cells.
func ProgressBar(value int, total int, width int) string {
	if total <= 0 {
		total = 1
	}
	if width <= 3 {
		width = 3
	}
	if value < 0 {
		value = 0
	}
	if value > total {
		value = total
	}
	filled := value * width / total
	return "[" + BarFilled.Render(strings.Repeat("█", filled)) + BarEmpty.Render(strings.Repeat("░", width-filled)) + "]"
}

// Bar is one labelled value in a horizontal bar chart.
type Bar struct {
	Label string
	Value int
}

// BarChart renders bars scaled to the largest value, one per line.
func BarChart(bars []Bar, width int) string {
	if width <= 0 {
		width = 30
	}
	max := 0
	labelW := 0
	for _, b := range bars {
		if b.Value > max {
			max = b.Value
		}
		if n := len([]rune(b.Label)); n > labelW {
			labelW = n
		}
	}

	var out strings.Builder
	for _, b := range bars {
		n := 0
		if max > 0 {
			n = b.Value * width / max
		}
		if b.Value > 0 && n == 0 {
			n = 1
		}
		label := b.Label + strings.Repeat(" ", labelW-len([]rune(b.Label)))
		fmt.Fprintf(&out, "%s %s %s\n", Key.Render(label), BarFilled.Render(strings.Repeat("█", n)), Muted.Render(Minutes(b.Value)))
	}
	return out.String()
}
