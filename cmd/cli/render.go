package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"bubbleviz/app"
	"bubbleviz/domain/chart"
	"bubbleviz/internal/config"
	"bubbleviz/internal/container"
	"bubbleviz/internal/display"
	"bubbleviz/internal/errors"
	"bubbleviz/internal/traces"
	"bubbleviz/ports"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

// maxParallelRenders bounds how many inputs are fetched and drawn at once
const maxParallelRenders = 4

var extensions = map[string]string{
	config.RendererPlotly: ".html",
	config.RendererSVG:    ".svg",
	config.RendererPNG:    ".png",
}

func newRenderCmd() *cobra.Command {
	var outDir, format, query, databaseURL string
	var sortGroups bool
	var roles *roleFlags

	cmd := &cobra.Command{
		Use:   "render [files...]",
		Short: "Render tables to chart files",
		Long: `Render one or more tables as bubble charts, one output file per input.

Inputs are CSV or XLSX files, or %table text files. --sql adds the result of
a read-only query against --database-url. Inputs are rendered concurrently and
share a single chart library download.

Example: bubbleviz render sales.csv --x price --y volume --z margin --category region`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if format != "" {
				cfg.Chart.Renderer = format
			}
			if cmd.Flags().Changed("sort") {
				cfg.Chart.SortGroups = sortGroups
			}
			if _, ok := extensions[cfg.Chart.Renderer]; !ok {
				return errors.InvalidInput(fmt.Sprintf("unknown format %q", cfg.Chart.Renderer))
			}
			if databaseURL == "" {
				databaseURL = cfg.Database.URL
			}
			return runRender(cmd.Context(), cfg, args, query, databaseURL, outDir, roles)
		},
	}

	cmd.Flags().StringVar(&outDir, "out-dir", ".", "directory for the chart files")
	cmd.Flags().StringVar(&format, "format", "", "plotly, svg or png (default from RENDERER)")
	cmd.Flags().BoolVar(&sortGroups, "sort", false, "order traces by category name")
	cmd.Flags().StringVar(&query, "sql", "", "render the result of this query as an extra input")
	cmd.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection URL (default from DATABASE_URL)")
	roles = addRoleFlags(cmd)

	return cmd
}

func runRender(ctx context.Context, cfg *config.Config, files []string, query, databaseURL, outDir string, roles *roleFlags) error {
	inputs, cleanup, err := resolveInputs(ctx, files, query, databaseURL)
	if err != nil {
		return err
	}
	defer cleanup()

	if err := os.MkdirAll(outDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create output directory")
	}

	renderer, err := container.NewRenderer(cfg, true)
	if err != nil {
		return err
	}
	loader := container.NewLoader(cfg)

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxParallelRenders)
	for _, in := range inputs {
		g.Go(func() error {
			path := filepath.Join(outDir, in.name+extensions[cfg.Chart.Renderer])
			if err := renderOne(ctx, cfg, in, loader, renderer, path, roles); err != nil {
				return errors.Wrapf(err, "render %s", in.name)
			}
			fmt.Println(path)
			return nil
		})
	}
	return g.Wait()
}

func renderOne(ctx context.Context, cfg *config.Config, in input, loader ports.LibraryLoader, renderer ports.ChartRenderer, path string, roles *roleFlags) error {
	tbl, err := in.source.Fetch(ctx)
	if err != nil {
		return err
	}
	if err := tbl.Validate(); err != nil {
		return errors.InvalidInput(err.Error())
	}

	target := display.NewFile(path)
	viz := app.NewBubbleVisualization(target, nil, loader, renderer, traces.Options{SortGroups: cfg.Chart.SortGroups})
	if err := roles.apply(viz.Transformation(), tbl); err != nil {
		return err
	}
	if !viz.Ready() {
		selected := viz.Config()
		missing := make([]string, 0, len(chart.Roles))
		for _, r := range selected.Missing() {
			missing = append(missing, string(r))
		}
		return errors.NotReady("no column for " + strings.Join(missing, ", "))
	}

	if err := viz.Render(ctx, tbl); err != nil {
		return err
	}
	return target.Err()
}
