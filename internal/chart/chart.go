// Package chart provides sparkline rendering with color-coded value
// thresholds, minute tick marks, and timeline labels. It is unit
// agnostic: the dashboard uses it for both °C and %RH series.
package chart

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
)

var sparkBlocks = []rune{'▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}

// Point is one value on a sparkline.
type Point struct {
	Value float64
	Time  time.Time
}

// ValueColor returns the appropriate color for a value given warn/crit
// thresholds.
func ValueColor(v, high, crit float64) lipgloss.Color {
	switch {
	case v >= crit:
		return lipgloss.Color("196") // red
	case v >= high:
		return lipgloss.Color("208") // orange
	case v >= high*0.85:
		return lipgloss.Color("220") // yellow
	default:
		return lipgloss.Color("78") // soft green
	}
}

// RenderSparkline renders a sparkline chart with color-coded blocks and
// a subtle pipe at each minute boundary. Series shorter than width are
// left-padded with a dim dashed line.
func RenderSparkline(points []Point, width int, rangeMin, rangeMax, high, crit float64) string {
	if width <= 0 {
		return ""
	}

	dim := lipgloss.NewStyle().Foreground(lipgloss.Color("236"))
	if len(points) == 0 {
		return dim.Render(strings.Repeat("╌", width))
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)
	span := rangeMax - rangeMin
	if span <= 0 {
		span = 1
	}

	var sb strings.Builder
	for i := 0; i < padLen; i++ {
		sb.WriteString(dim.Render("╌"))
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))

	for i, p := range points {
		norm := (p.Value - rangeMin) / span
		norm = math.Max(0, math.Min(1, norm))

		idx := int(norm * 7)
		if idx > 7 {
			idx = 7
		}

		if isMinuteTick(points, i) {
			sb.WriteString(tickStyle.Render("│"))
			continue
		}

		ch := string(sparkBlocks[idx])
		color := ValueColor(p.Value, high, crit)
		style := lipgloss.NewStyle().Foreground(color)
		if p.Value >= crit {
			style = style.Bold(true)
		}
		sb.WriteString(style.Render(ch))
	}

	return sb.String()
}

func isMinuteTick(points []Point, i int) bool {
	p := points[i]
	if p.Time.IsZero() {
		return false
	}
	if p.Time.Second() == 0 {
		return true
	}
	if i > 0 && !points[i-1].Time.IsZero() {
		return p.Time.Minute() != points[i-1].Time.Minute()
	}
	return false
}

// RenderTimeline renders the time labels under a sparkline, showing
// HH:MM at each minute tick position.
func RenderTimeline(points []Point, width int) string {
	if len(points) == 0 || width <= 0 {
		return ""
	}

	if len(points) > width {
		points = points[len(points)-width:]
	}

	padLen := width - len(points)

	line := make([]rune, width)
	for i := range line {
		line[i] = ' '
	}

	type tick struct {
		pos   int
		label string
	}
	var ticks []tick

	for i, p := range points {
		if isMinuteTick(points, i) {
			ticks = append(ticks, tick{pos: padLen + i, label: p.Time.Format("15:04")})
		}
	}

	lastEnd := -1
	for _, t := range ticks {
		start := t.pos - 2
		if start < 0 {
			start = 0
		}
		end := start + len(t.label)
		if end > width {
			continue
		}
		if start <= lastEnd+1 {
			continue
		}
		for j, ch := range t.label {
			line[start+j] = ch
		}
		lastEnd = end
	}

	tickStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("239"))
	return tickStyle.Render(string(line))
}

// RenderValue renders a value with its unit, color coded by thresholds.
func RenderValue(v float64, unit string, high, crit float64) string {
	s := fmt.Sprintf("%5.1f%s", v, unit)
	style := lipgloss.NewStyle().Foreground(ValueColor(v, high, crit))
	if v >= crit {
		style = style.Bold(true)
	}
	return style.Render(s)
}
