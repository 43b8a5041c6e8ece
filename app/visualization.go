package app

import (
	"context"
	"fmt"
	"log"
	"sync"

	"bubbleviz/domain/chart"
	"bubbleviz/domain/table"
	"bubbleviz/internal/columnselector"
	"bubbleviz/internal/errors"
	"bubbleviz/internal/traces"
	"bubbleviz/ports"
)

// PlaceholderMediaType is the media type of the not-ready message
const PlaceholderMediaType = "text/html; charset=utf-8"

var _ ports.Visualization = (*BubbleVisualization)(nil)

// BubbleVisualization renders a table as a bubble chart grouped by category.
// It owns its role configuration through a column selector transformation.
type BubbleVisualization struct {
	target         ports.Target
	transformation *columnselector.Transformation
	loader         ports.LibraryLoader
	renderer       ports.ChartRenderer
	options        traces.Options

	// queued draws run one at a time in request order
	queueMu  sync.Mutex
	queue    []drawJob
	draining bool
}

// drawJob is one queued RenderAsync. Nil traces mean the placeholder.
type drawJob struct {
	traces []chart.Trace
	done   chan error
}

// NewBubbleVisualization binds a visualization to its display target. The
// loader should already be fetching; every Render waits on it.
func NewBubbleVisualization(target ports.Target, cfg *chart.AxisConfig, loader ports.LibraryLoader, renderer ports.ChartRenderer, opts traces.Options) *BubbleVisualization {
	return &BubbleVisualization{
		target:         target,
		transformation: columnselector.New(cfg),
		loader:         loader,
		renderer:       renderer,
		options:        opts,
	}
}

// Transformation exposes the column selector to the host
func (v *BubbleVisualization) Transformation() ports.Transformation {
	return v.transformation
}

// Config returns the current role configuration
func (v *BubbleVisualization) Config() chart.AxisConfig {
	return v.transformation.Config()
}

// Ready reports whether Render would draw a chart
func (v *BubbleVisualization) Ready() bool {
	cfg := v.transformation.Config()
	return cfg.Ready()
}

// Target returns the display target charts are drawn into
func (v *BubbleVisualization) Target() ports.Target {
	return v.target
}

// Render builds traces from tbl and draws them once the chart library is
// loaded. With incomplete roles it shows the placeholder and returns nil.
func (v *BubbleVisualization) Render(ctx context.Context, tbl *table.Table) error {
	trs, err := v.prepare(tbl)
	if err != nil || trs == nil {
		return err
	}
	return v.draw(ctx, trs)
}

// RenderAsync builds traces immediately and queues the draw behind the
// library load. The returned channel yields the draw result exactly once.
// Queued draws run in call order, so the target ends up showing the table of
// the last call.
func (v *BubbleVisualization) RenderAsync(tbl *table.Table) <-chan error {
	done := make(chan error, 1)
	trs, ready, err := v.build(tbl)
	if err != nil {
		done <- err
		close(done)
		return done
	}

	v.queueMu.Lock()
	defer v.queueMu.Unlock()
	if !ready && !v.draining {
		// nothing queued ahead of it, so the placeholder can go up now
		v.hideChart()
		done <- nil
		close(done)
		return done
	}
	if !ready {
		trs = nil
	}
	v.queue = append(v.queue, drawJob{traces: trs, done: done})
	if !v.draining {
		v.draining = true
		go v.drain()
	}
	return done
}

// drain runs queued draws until the queue is empty
func (v *BubbleVisualization) drain() {
	for {
		v.queueMu.Lock()
		if len(v.queue) == 0 {
			v.draining = false
			v.queueMu.Unlock()
			return
		}
		job := v.queue[0]
		v.queue = v.queue[1:]
		v.queueMu.Unlock()

		var err error
		if job.traces == nil {
			v.hideChart()
		} else {
			err = v.draw(context.Background(), job.traces)
		}
		job.done <- err
		close(job.done)
	}
}

// prepare returns nil traces and a nil error when the placeholder was shown
func (v *BubbleVisualization) prepare(tbl *table.Table) ([]chart.Trace, error) {
	trs, ready, err := v.build(tbl)
	if err != nil {
		return nil, err
	}
	if !ready {
		v.hideChart()
		return nil, nil
	}
	return trs, nil
}

// build turns tbl into traces under the current configuration. ready is
// false when a role is unset and the placeholder should be shown instead.
func (v *BubbleVisualization) build(tbl *table.Table) ([]chart.Trace, bool, error) {
	cfg := v.transformation.Config()
	if !cfg.Ready() {
		return nil, false, nil
	}
	if err := checkIndexes(tbl, &cfg); err != nil {
		return nil, false, err
	}

	trs, err := traces.BuildTracesWithOptions(tbl, &cfg, v.options)
	if errors.Is(err, traces.ErrNotReady) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(err, "failed to build traces")
	}
	if trs == nil {
		trs = []chart.Trace{}
	}
	return trs, true, nil
}

func (v *BubbleVisualization) draw(ctx context.Context, trs []chart.Trace) error {
	lib, err := v.loader.Wait(ctx)
	if err != nil {
		log.Printf("[Render] Chart library unavailable for %s: %v", v.target.ID(), err)
		return errors.Wrap(err, "chart library unavailable")
	}

	if err := v.renderer.NewPlot(ctx, v.target, lib, trs, chart.DefaultLayout(), chart.DefaultDisplayOptions()); err != nil {
		log.Printf("[Render] %s renderer failed for %s: %v", v.renderer.Name(), v.target.ID(), err)
		return err
	}
	log.Printf("[Render] Drew %d traces into %s", len(trs), v.target.ID())
	return nil
}

func (v *BubbleVisualization) hideChart() {
	v.target.Show(ports.Content{MediaType: PlaceholderMediaType, Body: PlaceholderHTML()})
}

// checkIndexes rejects configurations that point past the table's columns,
// which happens when a host keeps a selection across result sets.
func checkIndexes(tbl *table.Table, cfg *chart.AxisConfig) error {
	if tbl == nil {
		return errors.InvalidInput("no table to render")
	}
	for _, r := range chart.Roles {
		col := cfg.Get(r)
		if col.Index < 0 || col.Index >= len(tbl.Columns) {
			return errors.InvalidInput(fmt.Sprintf("%s column %q (index %d) is not in the table", r, col.Name, col.Index))
		}
	}
	return nil
}
