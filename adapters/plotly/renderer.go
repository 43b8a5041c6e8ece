package plotly

import (
	"bytes"
	"context"
	"encoding/json"
	"html/template"

	"bubbleviz/domain/chart"
	"bubbleviz/internal/errors"
	"bubbleviz/ports"
)

// MediaType of everything this renderer produces
const MediaType = "text/html; charset=utf-8"

var fragmentTmpl = template.Must(template.New("fragment").Parse(`<div id="{{.ID}}" class="bubbleviz-chart" style="width:100%;height:100%"></div>
{{if .IncludeLibrary}}{{if .Inline}}<script>{{.Source}}</script>{{else}}<script src="{{.URL}}"></script>{{end}}
{{end}}<script>Plotly.newPlot(document.getElementById({{.ID}}), {{.Traces}}, {{.Layout}}, {{.Options}});</script>
`))

var pageTmpl = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Title}}</title>
</head>
<body>
{{.Fragment}}
</body>
</html>
`))

// Renderer draws traces with Plotly.newPlot. In fragment mode the output is
// meant to be dropped into a page that already loaded Plotly; in standalone
// mode it is a complete HTML document carrying the library.
type Renderer struct {
	standalone bool
	title      string
}

// NewFragmentRenderer renders a chart container plus the newPlot call only
func NewFragmentRenderer() *Renderer {
	return &Renderer{}
}

// NewPageRenderer renders self contained HTML documents
func NewPageRenderer(title string) *Renderer {
	return &Renderer{standalone: true, title: title}
}

// Name identifies the renderer in logs and errors
func (r *Renderer) Name() string {
	return "plotly"
}

type fragmentData struct {
	ID             string
	IncludeLibrary bool
	Inline         bool
	Source         template.JS
	URL            string
	Traces         template.JS
	Layout         template.JS
	Options        template.JS
}

// NewPlot renders traces and shows the result on target
func (r *Renderer) NewPlot(ctx context.Context, target ports.Target, lib *chart.Library, traces []chart.Trace, layout chart.Layout, opts chart.DisplayOptions) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if r.standalone && lib == nil {
		return errors.RenderError(r.Name(), errors.InvalidInput("standalone page needs a loaded library"))
	}

	body, err := r.render(target.ID(), lib, traces, layout, opts)
	if err != nil {
		return errors.RenderError(r.Name(), err)
	}
	target.Show(ports.Content{MediaType: MediaType, Body: body})
	return nil
}

func (r *Renderer) render(id string, lib *chart.Library, traces []chart.Trace, layout chart.Layout, opts chart.DisplayOptions) ([]byte, error) {
	if traces == nil {
		traces = []chart.Trace{}
	}
	tracesJSON, err := json.Marshal(traces)
	if err != nil {
		return nil, err
	}
	layoutJSON, err := json.Marshal(layout)
	if err != nil {
		return nil, err
	}
	optsJSON, err := json.Marshal(opts)
	if err != nil {
		return nil, err
	}

	data := fragmentData{
		ID:             id,
		IncludeLibrary: r.standalone,
		Traces:         template.JS(tracesJSON),
		Layout:         template.JS(layoutJSON),
		Options:        template.JS(optsJSON),
	}
	if lib != nil {
		data.Inline = lib.Inline()
		data.Source = template.JS(lib.Source)
		data.URL = lib.URL
	}

	var frag bytes.Buffer
	if err := fragmentTmpl.Execute(&frag, data); err != nil {
		return nil, err
	}
	if !r.standalone {
		return frag.Bytes(), nil
	}

	var page bytes.Buffer
	err = pageTmpl.Execute(&page, struct {
		Title    string
		Fragment template.HTML
	}{r.title, template.HTML(frag.String())})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}
