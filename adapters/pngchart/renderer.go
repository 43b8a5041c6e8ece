package pngchart

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"

	"bubbleviz/domain/chart"
	"bubbleviz/internal/errors"
	"bubbleviz/internal/traces"
	"bubbleviz/ports"

	gochart "github.com/wcharczuk/go-chart/v2"
)

// MediaType of the rendered output
const MediaType = "image/png"

// Bubble diameters are scaled into this pixel range
const (
	minDotPx = 4
	maxDotPx = 24
)

// Renderer draws bubble charts as PNG images with go-chart. Like the SVG
// renderer it has no runtime library to wait for.
type Renderer struct {
	width, height int
	title         string
}

// NewRenderer creates a PNG renderer producing width x height images
func NewRenderer(width, height int, title string) *Renderer {
	return &Renderer{width: width, height: height, title: title}
}

// Name identifies the renderer in logs and errors
func (r *Renderer) Name() string {
	return "png"
}

// NewPlot draws trs as a PNG image and shows it on target
func (r *Renderer) NewPlot(ctx context.Context, target ports.Target, _ *chart.Library, trs []chart.Trace, _ chart.Layout, _ chart.DisplayOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	scale := traces.NewSizeScale(trs, minDotPx, maxDotPx)
	var series []gochart.Series
	var allX, allY []float64
	for i, tr := range trs {
		xs, ys, zs := traces.FinitePoints(tr)
		if len(xs) == 0 {
			continue
		}
		allX = append(allX, xs...)
		allY = append(allY, ys...)

		sizes := make([]float64, len(zs))
		for j, z := range zs {
			sizes[j] = scale.Pixels(z)
		}
		series = append(series, gochart.ContinuousSeries{
			Name:    tr.Name,
			XValues: xs,
			YValues: ys,
			Style: gochart.Style{
				StrokeWidth: gochart.Disabled,
				DotColor:    gochart.GetDefaultColor(i).WithAlpha(180),
				DotWidthProvider: func(_, _ gochart.Range, index int, _, _ float64) float64 {
					return sizes[index]
				},
			},
		})
	}

	var buf bytes.Buffer
	if len(series) == 0 {
		if err := blank(&buf, r.width, r.height); err != nil {
			return errors.RenderError(r.Name(), err)
		}
		target.Show(ports.Content{MediaType: MediaType, Body: buf.Bytes()})
		return nil
	}

	ch := gochart.Chart{
		Title:      r.title,
		Width:      r.width,
		Height:     r.height,
		Background: gochart.Style{Padding: gochart.Box{Top: 20, Left: 16, Right: 16, Bottom: 16}},
		XAxis:      gochart.XAxis{Range: paddedRange(allX)},
		YAxis:      gochart.YAxis{Range: paddedRange(allY)},
		Series:     series,
	}
	ch.Elements = []gochart.Renderable{gochart.Legend(&ch)}

	if err := ch.Render(gochart.PNG, &buf); err != nil {
		return errors.RenderError(r.Name(), err)
	}
	target.Show(ports.Content{MediaType: MediaType, Body: buf.Bytes()})
	return nil
}

// paddedRange widens the data extent by 10% so edge bubbles are not clipped.
// go-chart rejects zero-width ranges, so a single value gets ±1.
func paddedRange(vs []float64) *gochart.ContinuousRange {
	lo, hi := math.Inf(1), math.Inf(-1)
	for _, v := range vs {
		lo = math.Min(lo, v)
		hi = math.Max(hi, v)
	}
	if hi <= lo {
		return &gochart.ContinuousRange{Min: lo - 1, Max: hi + 1}
	}
	pad := (hi - lo) * 0.1
	return &gochart.ContinuousRange{Min: lo - pad, Max: hi + pad}
}

func blank(buf *bytes.Buffer, w, h int) error {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: color.White}, image.Point{}, draw.Src)
	return png.Encode(buf, img)
}
