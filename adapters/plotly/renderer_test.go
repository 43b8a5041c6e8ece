package plotly

import (
	"context"
	"math"
	"strings"
	"testing"

	"bubbleviz/domain/chart"
	"bubbleviz/internal/display"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTraces() []chart.Trace {
	return []chart.Trace{{
		Name:   "A</script>",
		Mode:   "markers",
		X:      chart.Values{1, math.NaN()},
		Y:      chart.Values{2, 5},
		Text:   []string{"id: 1", "id: 2"},
		Marker: chart.Marker{Size: chart.Values{3, 6}},
	}}
}

func TestFragmentRenderer(t *testing.T) {
	target := display.NewBuffer()
	r := NewFragmentRenderer()

	err := r.NewPlot(context.Background(), target, nil, sampleTraces(), chart.DefaultLayout(), chart.DefaultDisplayOptions())
	require.NoError(t, err)

	content, rev := target.Content()
	require.Equal(t, 1, rev)
	assert.Equal(t, MediaType, content.MediaType)

	body := string(content.Body)
	assert.Contains(t, body, `<div id="`+target.ID()+`"`)
	assert.Contains(t, body, `Plotly.newPlot(document.getElementById("`+target.ID()+`")`)
	assert.Contains(t, body, `"x":[1,null]`)
	assert.Contains(t, body, `"marker":{"size":[3,6]}`)
	assert.Contains(t, body, `{"hovermode":"closest","margin":{"t":0}}`)
	assert.Contains(t, body, `{"showLink":false,"displayModeBar":false}`)
	assert.NotContains(t, body, "A</script>")
	assert.NotContains(t, body, "<script src=")
}

func TestPageRendererInlinesLibrary(t *testing.T) {
	target := display.NewBuffer()
	lib := &chart.Library{URL: "https://cdn.example/plotly-1.30.0.min.js", Version: "1.30.0", Source: []byte("var Plotly={newPlot:function(){}};")}

	err := NewPageRenderer("bubbles").NewPlot(context.Background(), target, lib, sampleTraces(), chart.DefaultLayout(), chart.DefaultDisplayOptions())
	require.NoError(t, err)

	content, _ := target.Content()
	body := string(content.Body)
	assert.True(t, strings.HasPrefix(body, "<!DOCTYPE html>"))
	assert.Contains(t, body, "<title>bubbles</title>")
	assert.Contains(t, body, "var Plotly={newPlot:function(){}};")
	assert.NotContains(t, body, lib.URL)
}

func TestPageRendererReferencesURL(t *testing.T) {
	target := display.NewBuffer()
	lib := &chart.Library{URL: "https://cdn.example/plotly-1.30.0.min.js"}

	err := NewPageRenderer("bubbles").NewPlot(context.Background(), target, lib, nil, chart.DefaultLayout(), chart.DefaultDisplayOptions())
	require.NoError(t, err)

	content, _ := target.Content()
	assert.Contains(t, string(content.Body), `<script src="https://cdn.example/plotly-1.30.0.min.js"></script>`)
	assert.Contains(t, string(content.Body), `, [], {`)
}

func TestPageRendererNeedsLibrary(t *testing.T) {
	target := display.NewBuffer()
	err := NewPageRenderer("x").NewPlot(context.Background(), target, nil, nil, chart.DefaultLayout(), chart.DefaultDisplayOptions())
	assert.Error(t, err)

	_, rev := target.Content()
	assert.Equal(t, 0, rev)
}

func TestNewPlotRespectsCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	target := display.NewBuffer()
	err := NewFragmentRenderer().NewPlot(ctx, target, nil, sampleTraces(), chart.DefaultLayout(), chart.DefaultDisplayOptions())
	assert.ErrorIs(t, err, context.Canceled)
}
