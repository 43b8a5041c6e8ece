package svgplot

import (
	"bytes"
	"context"
	"fmt"
	"math"
	"strings"

	"bubbleviz/domain/chart"
	"bubbleviz/internal/errors"
	"bubbleviz/internal/traces"
	"bubbleviz/ports"

	"github.com/aclements/go-gg/gg"
	"github.com/aclements/go-gg/table"
)

// MediaType of the rendered output
const MediaType = "image/svg+xml"

// Renderer draws bubble charts as static SVG. It needs no chart library, so
// the lib argument of NewPlot is ignored.
type Renderer struct {
	width, height int
	title         string
}

// NewRenderer creates an SVG renderer producing width x height images
func NewRenderer(width, height int, title string) *Renderer {
	return &Renderer{width: width, height: height, title: title}
}

// Name identifies the renderer in logs and errors
func (r *Renderer) Name() string {
	return "svg"
}

// NewPlot draws trs as a SVG image and shows it on target
func (r *Renderer) NewPlot(ctx context.Context, target ports.Target, _ *chart.Library, trs []chart.Trace, _ chart.Layout, _ chart.DisplayOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	tab, n := pointsTable(trs)
	var buf bytes.Buffer
	if n == 0 {
		// go-gg cannot train scales on an empty table
		fmt.Fprintf(&buf, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d"></svg>`, r.width, r.height)
	} else {
		p := gg.NewPlot(tab)
		p.Add(gg.LayerPoints{X: "x", Y: "y", Color: "group", Size: "size"})
		p.Add(gg.LayerTooltips{X: "x", Y: "y", Label: "text"})
		if r.title != "" {
			p.Add(gg.Title(r.title))
		}
		if err := p.WriteSVG(&buf, r.width, r.height); err != nil {
			return errors.RenderError(r.Name(), err)
		}
	}

	target.Show(ports.Content{MediaType: MediaType, Body: buf.Bytes()})
	return nil
}

// pointsTable flattens the traces into one long table with a group column.
// Points with a non-finite coordinate or size are dropped.
func pointsTable(trs []chart.Trace) (*table.Table, int) {
	var xs, ys, sizes []float64
	var groups, texts []string
	for _, tr := range trs {
		z := tr.Z()
		for i := range tr.X {
			fx, fy, fz := tr.X[i], tr.Y[i], z[i]
			if !isFinite(fx) || !isFinite(fy) || !isFinite(fz) {
				continue
			}
			xs = append(xs, fx)
			ys = append(ys, fy)
			sizes = append(sizes, fz)
			groups = append(groups, tr.Name)
			texts = append(texts, tooltip(tr.Name, tr.Text[i]))
		}
	}
	tab := new(table.Builder).
		Add("x", xs).
		Add("y", ys).
		Add("size", sizes).
		Add("group", groups).
		Add("text", texts).
		Done()
	return tab, len(xs)
}

func tooltip(group, hover string) string {
	lines := []string{group}
	if hover != "" {
		lines = append(lines, strings.Split(hover, traces.HoverSeparator)...)
	}
	return strings.Join(lines, "\n")
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
