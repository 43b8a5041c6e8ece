package app

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"bubbleviz/domain/chart"
	"bubbleviz/domain/table"
	"bubbleviz/internal/display"
	"bubbleviz/internal/errors"
	"bubbleviz/internal/scriptload"
	"bubbleviz/internal/traces"
	"bubbleviz/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingRenderer shows the JSON of the traces it was given
type recordingRenderer struct {
	mu    sync.Mutex
	calls [][]chart.Trace
	libs  []*chart.Library
}

func (r *recordingRenderer) Name() string { return "recording" }

func (r *recordingRenderer) NewPlot(_ context.Context, target ports.Target, lib *chart.Library, trs []chart.Trace, layout chart.Layout, opts chart.DisplayOptions) error {
	r.mu.Lock()
	r.calls = append(r.calls, trs)
	r.libs = append(r.libs, lib)
	r.mu.Unlock()

	body, err := json.Marshal(trs)
	if err != nil {
		return err
	}
	target.Show(ports.Content{MediaType: "application/json", Body: body})
	return nil
}

func (r *recordingRenderer) callCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

// gateLoader resolves when release is called
type gateLoader struct {
	once sync.Once
	done chan struct{}
	lib  *chart.Library
	err  error
}

func newGateLoader() *gateLoader { return &gateLoader{done: make(chan struct{})} }

func (g *gateLoader) release(lib *chart.Library, err error) {
	g.once.Do(func() {
		g.lib, g.err = lib, err
		close(g.done)
	})
}

func (g *gateLoader) Wait(ctx context.Context) (*chart.Library, error) {
	select {
	case <-g.done:
		return g.lib, g.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func scenario() *table.Table {
	return table.New(
		[]string{"id", "x", "y", "z", "cat", "extra"},
		[][]string{
			{"1", "1.0", "2.0", "3.0", "A", "foo"},
			{"2", "4.0", "5.0", "6.0", "A", "bar"},
			{"3", "7.0", "8.0", "9.0", "B", "baz"},
		},
	)
}

func selectAll(t *testing.T, v *BubbleVisualization, tbl *table.Table) {
	t.Helper()
	tr := v.Transformation()
	require.NoError(t, tr.SelectByName(tbl, chart.RoleXAxis, "x"))
	require.NoError(t, tr.SelectByName(tbl, chart.RoleYAxis, "y"))
	require.NoError(t, tr.SelectByName(tbl, chart.RoleZAxis, "z"))
	require.NoError(t, tr.SelectByName(tbl, chart.RoleCategory, "cat"))
}

func TestRender_PlaceholderUntilReady(t *testing.T) {
	tbl := scenario()
	renderer := &recordingRenderer{}
	target := display.NewBuffer()
	v := NewBubbleVisualization(target, nil, scriptload.Resolved(&chart.Library{}), renderer, traces.Options{})

	names := map[chart.Role]string{chart.RoleXAxis: "x", chart.RoleYAxis: "y", chart.RoleZAxis: "z"}
	for _, role := range chart.Roles[:3] {
		require.NoError(t, v.Transformation().SelectByName(tbl, role, names[role]))

		require.NoError(t, v.Render(context.Background(), tbl))
		content, _ := target.Content()
		assert.Equal(t, PlaceholderMediaType, content.MediaType)
		assert.Contains(t, string(content.Body), "Please set axes in <em>Settings</em>")
	}
	assert.False(t, v.Ready())
	assert.Equal(t, 0, renderer.callCount())
}

func TestRender_EndToEnd(t *testing.T) {
	tbl := scenario()
	renderer := &recordingRenderer{}
	target := display.NewBuffer()
	lib := &chart.Library{URL: "u"}
	v := NewBubbleVisualization(target, nil, scriptload.Resolved(lib), renderer, traces.Options{})
	selectAll(t, v, tbl)

	require.NoError(t, v.Render(context.Background(), tbl))
	require.Equal(t, 1, renderer.callCount())
	assert.Same(t, lib, renderer.libs[0])

	trs := renderer.calls[0]
	require.Len(t, trs, 2)
	assert.Equal(t, "A", trs[0].Name)
	assert.Equal(t, chart.Values{1, 4}, trs[0].X)
	assert.Equal(t, "B", trs[1].Name)
	assert.Equal(t, chart.Values{9}, trs[1].Z())

	content, _ := target.Content()
	assert.Equal(t, "application/json", content.MediaType)
}

func categoryTable(cat string) *table.Table {
	return table.New(
		[]string{"id", "x", "y", "z", "cat", "extra"},
		[][]string{{"1", "1", "2", "3", cat, "e"}},
	)
}

func TestRenderAsync_QueuedDrawsFireInCallOrder(t *testing.T) {
	renderer := &recordingRenderer{}
	target := display.NewBuffer()
	loader := newGateLoader()
	v := NewBubbleVisualization(target, nil, loader, renderer, traces.Options{})
	selectAll(t, v, scenario())

	const n = 8
	var results []<-chan error
	for i := 0; i < n; i++ {
		results = append(results, v.RenderAsync(categoryTable(fmt.Sprintf("g%d", i))))
	}
	// nothing may draw before the library resolves
	time.Sleep(20 * time.Millisecond)
	assert.Equal(t, 0, renderer.callCount())

	loader.release(&chart.Library{}, nil)
	for _, ch := range results {
		select {
		case err := <-ch:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Fatal("queued draw never fired")
		}
	}
	require.Equal(t, n, renderer.callCount())
	for i, trs := range renderer.calls {
		require.Len(t, trs, 1)
		assert.Equal(t, fmt.Sprintf("g%d", i), trs[0].Name)
	}

	content, rev := target.Content()
	assert.Equal(t, n, rev)
	assert.Contains(t, string(content.Body), `"name":"g7"`)
}

func TestRenderAsync_PlaceholderQueuesBehindPendingDraws(t *testing.T) {
	renderer := &recordingRenderer{}
	target := display.NewBuffer()
	loader := newGateLoader()
	v := NewBubbleVisualization(target, nil, loader, renderer, traces.Options{})
	selectAll(t, v, scenario())

	drawn := v.RenderAsync(scenario())
	require.NoError(t, v.Transformation().Clear(chart.RoleZAxis))
	hidden := v.RenderAsync(scenario())

	_, rev := target.Content()
	assert.Equal(t, 0, rev, "placeholder must wait for the queued draw")

	loader.release(&chart.Library{}, nil)
	require.NoError(t, <-drawn)
	require.NoError(t, <-hidden)

	content, rev := target.Content()
	assert.Equal(t, 2, rev)
	assert.Equal(t, PlaceholderMediaType, content.MediaType)
}

func TestRender_LastWriteWins(t *testing.T) {
	renderer := &recordingRenderer{}
	target := display.NewBuffer()
	v := NewBubbleVisualization(target, nil, scriptload.Resolved(&chart.Library{}), renderer, traces.Options{})

	first := scenario()
	selectAll(t, v, first)
	require.NoError(t, v.Render(context.Background(), first))

	second := table.New(
		[]string{"id", "x", "y", "z", "cat", "extra"},
		[][]string{{"9", "1", "1", "1", "only", "x"}},
	)
	require.NoError(t, v.Render(context.Background(), second))

	content, rev := target.Content()
	assert.Equal(t, 2, rev)
	assert.Contains(t, string(content.Body), `"name":"only"`)
}

func TestRender_LibraryFailureLeavesTarget(t *testing.T) {
	tbl := scenario()
	renderer := &recordingRenderer{}
	target := display.NewBuffer()
	loader := newGateLoader()
	loader.release(nil, errors.ExternalServiceError("chart library CDN", io.ErrUnexpectedEOF))

	v := NewBubbleVisualization(target, nil, loader, renderer, traces.Options{})
	selectAll(t, v, tbl)

	err := v.Render(context.Background(), tbl)
	require.Error(t, err)
	assert.Equal(t, errors.CodeExternalService, errors.GetCode(err))
	assert.Equal(t, 0, renderer.callCount())

	_, rev := target.Content()
	assert.Equal(t, 0, rev)
}

func TestRender_ContextCancelledWhileWaiting(t *testing.T) {
	tbl := scenario()
	v := NewBubbleVisualization(display.NewBuffer(), nil, newGateLoader(), &recordingRenderer{}, traces.Options{})
	selectAll(t, v, tbl)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	err := v.Render(ctx, tbl)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestRender_SelectionOutsideTable(t *testing.T) {
	v := NewBubbleVisualization(display.NewBuffer(), nil, scriptload.Resolved(nil), &recordingRenderer{}, traces.Options{})
	selectAll(t, v, scenario())

	narrow := table.New([]string{"id", "x"}, [][]string{{"1", "2"}})
	err := v.Render(context.Background(), narrow)
	require.Error(t, err)
	assert.Equal(t, errors.CodeInvalidInput, errors.GetCode(err))
	assert.True(t, strings.Contains(err.Error(), "yAxis"), fmt.Sprint(err))
}

func TestPlaceholderHTML(t *testing.T) {
	html := string(PlaceholderHTML())
	assert.Contains(t, html, "margin-top: 60px")
	assert.Contains(t, html, "<em>Settings</em>")
}
