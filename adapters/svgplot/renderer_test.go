package svgplot

import (
	"context"
	"math"
	"strings"
	"testing"

	"bubbleviz/domain/chart"
	"bubbleviz/internal/display"
)

func TestPointsTableDropsNonFinite(t *testing.T) {
	trs := []chart.Trace{
		{Name: "A", X: chart.Values{1, math.NaN()}, Y: chart.Values{2, 3}, Text: []string{"id: 1<br />note: x", "id: 2"}, Marker: chart.Marker{Size: chart.Values{3, 4}}},
		{Name: "B", X: chart.Values{5}, Y: chart.Values{6}, Text: []string{""}, Marker: chart.Marker{Size: chart.Values{math.Inf(1)}}},
	}
	_, n := pointsTable(trs)
	if n != 1 {
		t.Fatalf("expected 1 finite point, got %d", n)
	}
}

func TestTooltip(t *testing.T) {
	if got := tooltip("A", "id: 1<br />note: x"); got != "A\nid: 1\nnote: x" {
		t.Errorf("unexpected tooltip %q", got)
	}
	if got := tooltip("A", ""); got != "A" {
		t.Errorf("unexpected tooltip %q", got)
	}
}

func TestEmptyChartRendersBlankSVG(t *testing.T) {
	target := display.NewBuffer()
	r := NewRenderer(200, 100, "")
	if err := r.NewPlot(context.Background(), target, nil, nil, chart.DefaultLayout(), chart.DefaultDisplayOptions()); err != nil {
		t.Fatalf("NewPlot failed: %v", err)
	}
	content, _ := target.Content()
	if content.MediaType != MediaType {
		t.Errorf("expected %s, got %s", MediaType, content.MediaType)
	}
	if !strings.Contains(string(content.Body), `width="200"`) {
		t.Errorf("expected sized svg, got %s", content.Body)
	}
}

func TestRenderSVG(t *testing.T) {
	trs := []chart.Trace{
		{Name: "A", X: chart.Values{1, 4}, Y: chart.Values{2, 5}, Text: []string{"id: 1", "id: 2"}, Marker: chart.Marker{Size: chart.Values{3, 6}}},
		{Name: "B", X: chart.Values{7}, Y: chart.Values{8}, Text: []string{"id: 3"}, Marker: chart.Marker{Size: chart.Values{9}}},
	}
	target := display.NewBuffer()
	if err := NewRenderer(400, 300, "bubbles").NewPlot(context.Background(), target, nil, trs, chart.DefaultLayout(), chart.DefaultDisplayOptions()); err != nil {
		t.Fatalf("NewPlot failed: %v", err)
	}
	content, _ := target.Content()
	if !strings.Contains(string(content.Body), "<svg") {
		t.Errorf("expected svg output")
	}
}
