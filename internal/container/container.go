package container

import (
	"context"
	"fmt"

	"bubbleviz/adapters/plotly"
	"bubbleviz/adapters/pngchart"
	"bubbleviz/adapters/postgres"
	"bubbleviz/adapters/svgplot"
	"bubbleviz/app"
	"bubbleviz/internal"
	"bubbleviz/internal/api"
	"bubbleviz/internal/config"
	"bubbleviz/internal/display"
	"bubbleviz/internal/scriptload"
	"bubbleviz/internal/traces"
	"bubbleviz/ports"

	"github.com/jmoiron/sqlx"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *internal.Logger

	// Infrastructure
	DB *sqlx.DB

	// Chart pipeline
	Loader        ports.LibraryLoader
	Renderer      ports.ChartRenderer
	Target        *display.Buffer
	Visualization *app.BubbleVisualization
	SSEHub        *api.SSEHub
}

// New creates a new dependency injection container. The chart library fetch
// starts here so it overlaps with the rest of startup.
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	c := &Container{
		Config: cfg,
		Logger: internal.NewDefaultLogger().With("Container"),
	}

	renderer, err := NewRenderer(cfg, false)
	if err != nil {
		return nil, err
	}
	c.Renderer = renderer
	c.Loader = NewLoader(cfg)
	c.Target = display.NewBuffer()
	c.SSEHub = api.NewSSEHub()
	c.Visualization = app.NewBubbleVisualization(c.Target, nil, c.Loader, c.Renderer, traces.Options{SortGroups: cfg.Chart.SortGroups})

	c.Logger.Info("Chart pipeline ready: renderer=%s target=%s", renderer.Name(), c.Target.ID())
	return c, nil
}

// NewLoader builds the library loader for the configured renderer. Only the
// plotly renderer needs the script; the others get an already resolved loader.
func NewLoader(cfg *config.Config) ports.LibraryLoader {
	if cfg.Chart.Renderer != config.RendererPlotly {
		return scriptload.Resolved(nil)
	}
	return scriptload.New(cfg.Script.URL,
		scriptload.WithTimeout(cfg.Script.LoadTimeout),
		scriptload.WithInline(cfg.Script.Inline),
	)
}

// NewRenderer picks the renderer named by the configuration. Standalone
// plotly output embeds the library and is meant for files rather than pages.
func NewRenderer(cfg *config.Config, standalone bool) (ports.ChartRenderer, error) {
	switch cfg.Chart.Renderer {
	case config.RendererPlotly:
		if standalone {
			return plotly.NewPageRenderer("Bubble chart"), nil
		}
		return plotly.NewFragmentRenderer(), nil
	case config.RendererSVG:
		return svgplot.NewRenderer(cfg.Chart.Width, cfg.Chart.Height, ""), nil
	case config.RendererPNG:
		return pngchart.NewRenderer(cfg.Chart.Width, cfg.Chart.Height, ""), nil
	}
	return nil, fmt.Errorf("unknown renderer %q", cfg.Chart.Renderer)
}

// InitWithDatabase connects the optional SQL table source
func (c *Container) InitWithDatabase(ctx context.Context) error {
	if c.Config.Database.URL == "" {
		return nil
	}
	db, err := postgres.Connect(ctx, c.Config.Database.URL)
	if err != nil {
		return err
	}
	c.DB = db
	c.Logger.Info("Database connection established")
	return nil
}

// Shutdown gracefully shuts down all components
func (c *Container) Shutdown(ctx context.Context) error {
	if c.SSEHub != nil {
		c.SSEHub.Close()
	}

	// Close database connection
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}
