package ports

import (
	"context"

	"bubbleviz/domain/chart"
)

// Content is one rendered output shown on a display target
type Content struct {
	MediaType string
	Body      []byte
}

// Target is the display area a visualization draws into. Show replaces
// whatever the target held before.
type Target interface {
	ID() string
	Show(content Content)
}

// ChartRenderer draws traces into a target using an already loaded library
type ChartRenderer interface {
	Name() string
	NewPlot(ctx context.Context, target Target, lib *chart.Library, traces []chart.Trace, layout chart.Layout, opts chart.DisplayOptions) error
}

// LibraryLoader resolves the chart library once and hands the same result to
// every waiter.
type LibraryLoader interface {
	Wait(ctx context.Context) (*chart.Library, error)
}
