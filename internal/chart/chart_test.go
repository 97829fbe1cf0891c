package chart

import (
	"strings"
	"testing"
	"time"
)

func TestSparkline(t *testing.T) {
	var pts []Point
	for _, v := range []float64{30, 35, 40, 50, 60, 70, 80, 90, 100} {
		pts = append(pts, Point{Value: v})
	}
	result := RenderSparkline(pts, 20, 20, 110, 80, 100)
	if len(result) == 0 {
		t.Error("sparkline should not be empty")
	}
	t.Logf("Sparkline: %s", result)
}

func TestSparklineMinuteTicks(t *testing.T) {
	base := time.Date(2026, 2, 21, 14, 0, 50, 0, time.Local)
	var pts []Point
	for i := 0; i < 20; i++ {
		pts = append(pts, Point{
			Value: float64(40 + i%5),
			Time:  base.Add(time.Duration(i) * time.Second),
		})
	}

	result := RenderSparkline(pts, 20, 30, 55, 80, 100)
	if len(result) == 0 {
		t.Error("sparkline should not be empty")
	}
	if !strings.Contains(result, "│") {
		t.Error("expected minute tick mark in sparkline")
	}
	t.Logf("Sparkline with ticks: %s", result)
}

func TestSparklineEmpty(t *testing.T) {
	result := RenderSparkline(nil, 10, 0, 50, 30, 40)
	if len(result) == 0 {
		t.Error("empty series should still render a placeholder line")
	}
}

func TestTimeline(t *testing.T) {
	base := time.Date(2026, 2, 21, 14, 0, 55, 0, time.Local)
	var pts []Point
	for i := 0; i < 30; i++ {
		pts = append(pts, Point{
			Value: 45.0,
			Time:  base.Add(time.Duration(i) * time.Second),
		})
	}

	result := RenderTimeline(pts, 30)
	if !strings.Contains(result, "14:01") {
		t.Errorf("expected 14:01 label in timeline, got %q", result)
	}
}
